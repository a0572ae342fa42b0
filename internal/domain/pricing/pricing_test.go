package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestComputeEMI(t *testing.T) {
	tests := []struct {
		name          string
		total         string
		down          string
		months        int
		wantRemaining string
		wantMonthly   string
	}{
		{
			name:          "standard split",
			total:         "12000",
			down:          "2000",
			months:        6,
			wantRemaining: "10000",
			wantMonthly:   "1666.67",
		},
		{
			name:          "no down payment",
			total:         "4199",
			down:          "0",
			months:        3,
			wantRemaining: "4199",
			wantMonthly:   "1399.67",
		},
		{
			name:          "zero months means no installment",
			total:         "5000",
			down:          "1000",
			months:        0,
			wantRemaining: "4000",
			wantMonthly:   "0",
		},
		{
			name:          "overpaid down clamps remaining to zero",
			total:         "1000",
			down:          "1500",
			months:        6,
			wantRemaining: "0",
			wantMonthly:   "0",
		},
		{
			name:          "zero total",
			total:         "0",
			down:          "0",
			months:        12,
			wantRemaining: "0",
			wantMonthly:   "0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := ComputeEMI(dec(tt.total), dec(tt.down), tt.months).Rounded()
			assert.True(t, dec(tt.wantRemaining).Equal(b.Remaining),
				"remaining: want %s got %s", tt.wantRemaining, b.Remaining)
			assert.True(t, dec(tt.wantMonthly).Equal(b.Monthly),
				"monthly: want %s got %s", tt.wantMonthly, b.Monthly)
		})
	}
}

// remaining + min(down, total) must reconstruct the total whenever the down
// payment does not exceed it, and monthly*months never exceeds remaining
// beyond rounding.
func TestComputeEMI_Invariants(t *testing.T) {
	totals := []string{"0", "999.99", "4199", "12000", "250000"}
	downs := []string{"0", "500", "2000", "12000", "24000"}
	months := []int{0, 1, 3, 6, 9, 12, 24}

	epsilon := dec("0.000000000001")

	for _, ts := range totals {
		for _, ds := range downs {
			for _, m := range months {
				total, down := dec(ts), dec(ds)
				b := ComputeEMI(total, down, m)

				assert.False(t, b.Remaining.IsNegative())
				assert.True(t, decimal.Max(total.Sub(down), decimal.Zero).Equal(b.Remaining))

				if down.LessThanOrEqual(total) {
					sum := b.Remaining.Add(decimal.Min(down, total))
					assert.True(t, sum.Equal(total),
						"total=%s down=%s months=%d: remaining+down = %s", ts, ds, m, sum)
				}

				if m > 0 {
					paid := b.Monthly.Mul(decimal.NewFromInt(int64(m)))
					assert.True(t, paid.Sub(b.Remaining).Abs().LessThanOrEqual(epsilon),
						"total=%s down=%s months=%d: monthly*months = %s vs remaining %s",
						ts, ds, m, paid, b.Remaining)
				}
			}
		}
	}
}

func TestComputeEMI_Idempotent(t *testing.T) {
	total, down := dec("12345.67"), dec("999.99")
	first := ComputeEMI(total, down, 7)
	second := ComputeEMI(total, down, 7)

	assert.Equal(t, first, second)
	assert.Equal(t, first.Monthly.String(), second.Monthly.String())
}

func TestParseMonthPlan(t *testing.T) {
	tests := []struct {
		input   string
		want    MonthPlan
		wantErr bool
	}{
		{input: "3,6,9", want: MonthPlan{3, 6, 9}},
		{input: " 6 , 12 ", want: MonthPlan{6, 12}},
		{input: "12", want: MonthPlan{12}},
		{input: "", want: nil},
		{input: "6,3", wantErr: true},  // not increasing
		{input: "3,3", wantErr: true},  // duplicate
		{input: "0,6", wantErr: true},  // non-positive
		{input: "3,x", wantErr: true},  // not a number
		{input: "-3,6", wantErr: true}, // negative
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			plan, err := ParseMonthPlan(tt.input)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidMonthPlan)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, plan)
		})
	}
}

func TestFirstMonths(t *testing.T) {
	tests := []struct {
		input string
		want  int
	}{
		{"3,6,9", 3},
		{"6,12", 6},
		{"12", 12},
		{"", 0},
		{"abc", 0},
		{" , 6", 0},
		{"-4,6", 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FirstMonths(tt.input), "input %q", tt.input)
	}
}

func TestMonthPlan_ContainsAndString(t *testing.T) {
	plan := MonthPlan{3, 6, 9}
	assert.True(t, plan.Contains(6))
	assert.False(t, plan.Contains(12))
	assert.Equal(t, "3,6,9", plan.String())
	assert.Equal(t, "", MonthPlan(nil).String())
}
