package status

import (
	"math"
	"time"

	"github.com/estatedesk/backend/internal/domain/buyer"
)

// Predicate is one side-effect-free condition over a buyer record. The
// evaluation instant is passed in so the whole rule set can be evaluated
// against a single consistent "today".
type Predicate func(b *buyer.Buyer, now time.Time) bool

func and(predicates ...Predicate) Predicate {
	return func(b *buyer.Buyer, now time.Time) bool {
		for _, p := range predicates {
			if !p(b, now) {
				return false
			}
		}
		return true
	}
}

func or(predicates ...Predicate) Predicate {
	return func(b *buyer.Buyer, now time.Time) bool {
		for _, p := range predicates {
			if p(b, now) {
				return true
			}
		}
		return false
	}
}

func not(p Predicate) Predicate {
	return func(b *buyer.Buyer, now time.Time) bool {
		return !p(b, now)
	}
}

// dateField selects one of the buyer's date fields
type dateField func(b *buyer.Buyer) *time.Time

// stringField selects one of the buyer's string fields
type stringField func(b *buyer.Buyer) string

func isBlank(field stringField) Predicate {
	return func(b *buyer.Buyer, now time.Time) bool {
		return field(b) == ""
	}
}

func isNotBlank(field stringField) Predicate {
	return func(b *buyer.Buyer, now time.Time) bool {
		return field(b) != ""
	}
}

func equals(field stringField, value string) Predicate {
	return func(b *buyer.Buyer, now time.Time) bool {
		return field(b) == value
	}
}

// startOfDay truncates to the calendar day in t's own location
func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// fieldDay rebuilds a stored date's calendar day at the evaluator's
// location. Field dates are UTC midnights, so the day must be read in UTC;
// converting the instant into a non-UTC zone first would land it on the
// wrong local day.
func fieldDay(d time.Time, now time.Time) time.Time {
	u := d.In(time.UTC)
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, now.Location())
}

// daysAgo returns the elapsed whole calendar days from d to now in the
// evaluator's zone; negative when d is in the future. Rounding absorbs the
// odd-length day a DST transition produces.
func daysAgo(d time.Time, now time.Time) int {
	hours := startOfDay(now).Sub(fieldDay(d, now)).Hours()
	return int(math.Round(hours / 24))
}

// Date predicates all treat a missing date as non-matching.

func isToday(field dateField) Predicate {
	return func(b *buyer.Buyer, now time.Time) bool {
		d := field(b)
		return d != nil && daysAgo(*d, now) == 0
	}
}

func isTomorrow(field dateField) Predicate {
	return func(b *buyer.Buyer, now time.Time) bool {
		d := field(b)
		return d != nil && daysAgo(*d, now) == -1
	}
}

func isPast(field dateField) Predicate {
	return func(b *buyer.Buyer, now time.Time) bool {
		d := field(b)
		return d != nil && daysAgo(*d, now) > 0
	}
}

func isTodayOrPast(field dateField) Predicate {
	return func(b *buyer.Buyer, now time.Time) bool {
		d := field(b)
		return d != nil && daysAgo(*d, now) >= 0
	}
}

func isFuture(field dateField) Predicate {
	return func(b *buyer.Buyer, now time.Time) bool {
		d := field(b)
		return d != nil && daysAgo(*d, now) < 0
	}
}

func isDaysFromToday(field dateField, n int) Predicate {
	return func(b *buyer.Buyer, now time.Time) bool {
		d := field(b)
		return d != nil && daysAgo(*d, now) == -n
	}
}

// isWithinDaysAgo matches when the elapsed whole days since the date fall
// in the inclusive window; the bounds are given most-days-ago first.
func isWithinDaysAgo(field dateField, mostDaysAgo, leastDaysAgo int) Predicate {
	return func(b *buyer.Buyer, now time.Time) bool {
		d := field(b)
		if d == nil {
			return false
		}
		elapsed := daysAgo(*d, now)
		return elapsed >= leastDaysAgo && elapsed <= mostDaysAgo
	}
}

func isAfterOrEqual(field dateField, cutoff func(now time.Time) time.Time) Predicate {
	return func(b *buyer.Buyer, now time.Time) bool {
		d := field(b)
		return d != nil && !fieldDay(*d, now).Before(startOfDay(cutoff(now)))
	}
}

func isSet(field dateField) Predicate {
	return func(b *buyer.Buyer, now time.Time) bool {
		return field(b) != nil
	}
}

func isUnset(field dateField) Predicate {
	return func(b *buyer.Buyer, now time.Time) bool {
		return field(b) == nil
	}
}
