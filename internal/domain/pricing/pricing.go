// Package pricing computes EMI payment breakdowns and month-plan handling.
package pricing

import (
	"strconv"
	"strings"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrInvalidMonthPlan is returned when an admin-entered month plan cannot be
// parsed into a strictly increasing list of positive integers.
var ErrInvalidMonthPlan = errors.New("invalid EMI month plan")

// Breakdown is the EMI split for a purchase: the down payment, the balance
// remaining after it, and the per-month installment. All values keep full
// decimal precision; round only at presentation boundaries via Rounded.
type Breakdown struct {
	Down      decimal.Decimal
	Remaining decimal.Decimal
	Monthly   decimal.Decimal
}

// ComputeEMI splits total into a down payment and monthly installments.
//
//	remaining = max(0, total - down)
//	monthly   = months > 0 ? remaining / months : 0
//
// A zero months value means no plan has been selected yet. The function is
// pure: identical inputs always yield identical output.
func ComputeEMI(total, down decimal.Decimal, months int) Breakdown {
	remaining := total.Sub(down)
	if remaining.IsNegative() {
		remaining = decimal.Zero
	}

	monthly := decimal.Zero
	if months > 0 {
		monthly = remaining.Div(decimal.NewFromInt(int64(months)))
	}

	return Breakdown{Down: down, Remaining: remaining, Monthly: monthly}
}

// Rounded returns the breakdown with every amount rounded to 2 decimal
// places for currency display.
func (b Breakdown) Rounded() Breakdown {
	return Breakdown{
		Down:      b.Down.Round(2),
		Remaining: b.Remaining.Round(2),
		Monthly:   b.Monthly.Round(2),
	}
}

// MonthPlan is the ordered set of installment month counts a product allows.
type MonthPlan []int

// ParseMonthPlan parses an admin-entered plan such as "3,6,9" into a
// MonthPlan. Entries must be positive integers in strictly increasing order;
// anything else is rejected so bad plans are caught at entry time instead of
// being re-parsed defensively on every read. An empty string is a valid
// empty plan (EMI not offered).
func ParseMonthPlan(s string) (MonthPlan, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}

	parts := strings.Split(s, ",")
	plan := make(MonthPlan, 0, len(parts))
	prev := 0
	for _, part := range parts {
		m, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, errors.Wrapf(ErrInvalidMonthPlan, "entry %q", part)
		}
		if m <= 0 || m <= prev {
			return nil, errors.Wrapf(ErrInvalidMonthPlan, "entry %d out of order", m)
		}
		plan = append(plan, m)
		prev = m
	}
	return plan, nil
}

// FirstMonths is the defensive legacy read of a plan string: the first token
// parsed as an integer, or 0 when the string is empty or malformed. Kept for
// stored plans that predate strict validation.
func FirstMonths(s string) int {
	first, _, _ := strings.Cut(s, ",")
	m, err := strconv.Atoi(strings.TrimSpace(first))
	if err != nil || m < 0 {
		return 0
	}
	return m
}

// Contains reports whether the plan allows the given month count.
func (p MonthPlan) Contains(months int) bool {
	for _, m := range p {
		if m == months {
			return true
		}
	}
	return false
}

// String renders the plan back to its comma-separated storage form.
func (p MonthPlan) String() string {
	if len(p) == 0 {
		return ""
	}
	parts := make([]string, len(p))
	for i, m := range p {
		parts[i] = strconv.Itoa(m)
	}
	return strings.Join(parts, ",")
}
