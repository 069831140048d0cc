package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBookingStatusTransitions(t *testing.T) {
	allowed := map[BookingStatus][]BookingStatus{
		BookingPending:   {BookingConfirmed, BookingCancelled},
		BookingConfirmed: {BookingActive, BookingCancelled},
		BookingActive:    {BookingCompleted},
		BookingCompleted: {},
		BookingCancelled: {},
	}
	all := []BookingStatus{BookingPending, BookingConfirmed, BookingActive, BookingCompleted, BookingCancelled}

	for from, nexts := range allowed {
		ok := map[BookingStatus]bool{}
		for _, n := range nexts {
			ok[n] = true
		}
		for _, to := range all {
			assert.Equal(t, ok[to], from.CanTransitionTo(to), "%s -> %s", from, to)
		}
	}
}
