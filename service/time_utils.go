package service

import (
	"time"
)

type systemClock struct{}

// SystemClock returns a Clock reading the wall clock in UTC
func SystemClock() Clock {
	return systemClock{}
}

func (systemClock) Now() time.Time {
	return time.Now().UTC()
}

// ElapsedMonths counts whole calendar months between from and to. A final
// partial month, where to's day of month is before from's, does not count.
// The result is never negative.
func ElapsedMonths(from, to time.Time) int {
	from, to = from.UTC(), to.UTC()

	months := (to.Year()-from.Year())*12 + int(to.Month()) - int(from.Month())
	if to.Day() < from.Day() {
		months--
	}
	if months < 0 {
		return 0
	}
	return months
}
