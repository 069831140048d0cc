package pricing

import (
	"math"
	"time"

	apperrors "arrive/internal/errors"
)

// Quote is the priced breakdown for a requested window. Cost is what the
// host earns (stored as the booking's total price); ServiceFee is the 10%
// surcharge tracked as its own line item; Total is the amount charged to
// the renter.
type Quote struct {
	Cost       int64
	ServiceFee int64
	Total      int64
}

const serviceFeePercent = 10

// ComputeCost prices a half-open [start, end) window against a listing's
// hourly and daily rates, both in cents.
//
// Partial hours round up. Once at least one full day is booked, a remainder
// of up to two hours is absorbed into the day rate; longer remainders are
// billed hourly on top of the day rate.
func ComputeCost(start, end time.Time, hourlyRate, dailyRate int64) (Quote, error) {
	if !end.After(start) {
		return Quote{}, apperrors.ErrInvalidWindow
	}
	if hourlyRate < 0 || dailyRate < 0 {
		return Quote{}, apperrors.ErrInvalidRate
	}

	totalHours := int64(math.Ceil(end.Sub(start).Hours()))
	fullDays := totalHours / 24
	remainderHours := totalHours % 24

	var cost int64
	switch {
	case fullDays > 0 && remainderHours <= 2:
		cost = fullDays * dailyRate
	case fullDays > 0:
		cost = fullDays*dailyRate + remainderHours*hourlyRate
	default:
		cost = totalHours * hourlyRate
	}

	fee := (cost*serviceFeePercent + 50) / 100

	return Quote{
		Cost:       cost,
		ServiceFee: fee,
		Total:      cost + fee,
	}, nil
}

// Cents converts a dollar amount from an API payload to cents.
func Cents(dollars float64) int64 {
	return int64(math.Round(dollars * 100))
}

// Dollars converts cents back to the dollar amount used in API payloads.
func Dollars(cents int64) float64 {
	return float64(cents) / 100
}
