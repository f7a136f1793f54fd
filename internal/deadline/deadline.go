// Package deadline resolves relative deadlines into absolute calendar dates.
package deadline

import (
	"time"

	"github.com/skriv/kontrakt/internal/models"
)

// approachingWindowDays is the lookahead window for IsApproaching.
const approachingWindowDays = 3

// Resolve converts a relative deadline into an absolute date using ref as the
// reference date. Calendar offsets add or subtract exact days; working
// offsets walk one calendar day at a time, counting only Monday through
// Friday. Time of day is discarded.
func Resolve(rd models.RelativeDate, ref time.Time) time.Time {
	ref = truncate(ref)
	step := 1
	if rd.Direction == models.DirectionBefore {
		step = -1
	}
	if rd.Type == models.DateWorking {
		d := ref
		for counted := 0; counted < rd.Value; {
			d = d.AddDate(0, 0, step)
			if isWorkday(d) {
				counted++
			}
		}
		return d
	}
	return ref.AddDate(0, 0, step*rd.Value)
}

// IsOverdue reports whether date is strictly before today, comparing dates only.
func IsOverdue(date, today time.Time) bool {
	return truncate(date).Before(truncate(today))
}

// IsApproaching reports whether date falls within the next three days,
// today included.
func IsApproaching(date, today time.Time) bool {
	days := DaysUntil(date, today)
	return days >= 0 && days <= approachingWindowDays
}

// DaysUntil returns the number of whole days from today until date; negative
// when date is in the past.
func DaysUntil(date, today time.Time) int {
	return int(truncate(date).Sub(truncate(today)).Hours() / 24)
}

func isWorkday(d time.Time) bool {
	wd := d.Weekday()
	return wd != time.Saturday && wd != time.Sunday
}

func truncate(d time.Time) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
}
