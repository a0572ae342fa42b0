// Package offer evaluates time-boxed product discounts.
//
// An offer is a percentage discount attached to a product together with an
// absolute end timestamp. The evaluator answers "is the discount still
// running, and how long is left" as a pure function of its inputs, so the
// countdown can be re-evaluated every second without drift.
package offer

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Window is the evaluated state of a product's offer at a point in time.
type Window struct {
	Active    bool
	Remaining time.Duration
}

// Evaluate computes the offer window for the given end timestamp.
// A nil end means the product carries no offer. Remaining is never negative:
// once now has passed the end, the window is Expired with Remaining zero.
func Evaluate(end *time.Time, now time.Time) Window {
	if end == nil {
		return Window{}
	}
	remaining := end.Sub(now)
	if remaining <= 0 {
		return Window{}
	}
	return Window{Active: true, Remaining: remaining}
}

// FormatRemaining renders a countdown as zero-padded "mm:ss". Durations of an
// hour or more wrap within the hour, matching the storefront display. Expired
// or negative durations render as "00:00".
func FormatRemaining(d time.Duration) string {
	if d <= 0 {
		return "00:00"
	}
	minutes := int(d/time.Minute) % 60
	seconds := int(d/time.Second) % 60
	return fmt.Sprintf("%02d:%02d", minutes, seconds)
}

// DailyWindowEnd resolves a recurring daily "HH:MM" offer time to the next
// absolute end timestamp in now's location. If today's occurrence has already
// passed, the end rolls over to tomorrow. An empty or malformed value yields
// nil (no offer).
func DailyWindowEnd(hhmm string, now time.Time) *time.Time {
	h, m, ok := parseClock(hhmm)
	if !ok {
		return nil
	}
	end := time.Date(now.Year(), now.Month(), now.Day(), h, m, 0, 0, now.Location())
	if now.After(end) {
		end = end.AddDate(0, 0, 1)
	}
	return &end
}

func parseClock(s string) (hour, minute int, ok bool) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, 0, false
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, 0, false
	}
	return h, m, true
}
