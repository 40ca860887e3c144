package service

import (
	"strconv"
	"time"
)

// MonthlyRate is the fixed monthly compounding rate applied to pledges
const MonthlyRate = 0.30

// CompoundValue returns principal compounded at MonthlyRate once per whole
// month elapsed between createdAt and now, rounded to two decimals, along
// with the month count.
//
// The growth is applied as one float multiplication per month rather than a
// closed-form power so that results match ledgers valued the same way.
func CompoundValue(principal float64, createdAt, now time.Time) (float64, int) {
	months := ElapsedMonths(createdAt, now)

	value := principal
	for i := 0; i < months; i++ {
		value *= 1 + MonthlyRate
	}

	return Round2(value), months
}

// Round2 rounds the exact binary value of v to two decimal places, ties to
// even. 2.675 is stored as 2.67499... and so becomes 2.67.
func Round2(v float64) float64 {
	f, err := strconv.ParseFloat(strconv.FormatFloat(v, 'f', 2, 64), 64)
	if err != nil {
		return v
	}
	return f
}
