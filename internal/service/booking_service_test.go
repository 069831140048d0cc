package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"arrive/internal/clock"
	"arrive/internal/db"
	"arrive/internal/entities"
	apperrors "arrive/internal/errors"
)

var testNow = time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)

func newBookingFixture(t *testing.T) (*BookingService, *fakeStore, *fakePayments, *fakeNotifier) {
	t.Helper()
	store := newFakeStore()
	store.addUser(db.User{UserID: "renter-1", Email: "renter@test.com", FirstName: "Renter", PhoneNumber: "+15550001111"})
	store.addUser(db.User{UserID: "owner-1", Email: "owner@test.com", FirstName: "Owner"})
	store.addListing(db.Listing{
		SpaceID:         "space-1",
		HostID:          "owner-1",
		Title:           "Downtown Lot",
		HourlyRateCents: 1000,
		DailyRateCents:  8000,
		Status:          db.ListingActive,
	})

	payments := &fakePayments{}
	notifier := &fakeNotifier{}
	svc := NewBookingService(store, store, payments, notifier, clock.NewFixed(testNow))
	return svc, store, payments, notifier
}

func bookingReq(start, end time.Time) entities.CreateBookingRequest {
	return entities.CreateBookingRequest{
		ListingID:    "space-1",
		StartTime:    start,
		EndTime:      end,
		LicensePlate: "TESLA1",
		VehicleModel: "Model 3",
		VehicleMake:  "Tesla",
		VehicleYear:  2023,
	}
}

func TestRequestBooking(t *testing.T) {
	ctx := context.Background()
	start := testNow.Add(2 * time.Hour)

	t.Run("creates pending booking with computed price", func(t *testing.T) {
		svc, _, payments, _ := newBookingFixture(t)

		booking, clientSecret, err := svc.RequestBooking(ctx, "renter-1", bookingReq(start, start.Add(2*time.Hour)))
		require.NoError(t, err)

		assert.Equal(t, db.BookingPending, booking.Status)
		assert.Equal(t, int64(2000), booking.TotalPriceCents)
		assert.Equal(t, int64(200), booking.ServiceFeeCents)
		assert.Equal(t, db.PaymentPending, booking.PaymentStatus)
		assert.Equal(t, "cs_"+booking.BookingID, clientSecret)
		assert.Len(t, payments.intents, 1)

		// Round-trip: fetching by id returns the stored state unchanged.
		got, err := svc.GetBooking(ctx, booking.BookingID)
		require.NoError(t, err)
		assert.Equal(t, db.BookingPending, got.Status)
		assert.Equal(t, int64(2000), got.TotalPriceCents)
	})

	t.Run("rejects empty license plate", func(t *testing.T) {
		svc, _, _, _ := newBookingFixture(t)
		req := bookingReq(start, start.Add(time.Hour))
		req.LicensePlate = "  "
		_, _, err := svc.RequestBooking(ctx, "renter-1", req)
		assert.ErrorIs(t, err, apperrors.ErrInvalidVehicle)
	})

	t.Run("rejects inverted window", func(t *testing.T) {
		svc, _, _, _ := newBookingFixture(t)
		_, _, err := svc.RequestBooking(ctx, "renter-1", bookingReq(start, start))
		assert.ErrorIs(t, err, apperrors.ErrInvalidWindow)
	})

	t.Run("unknown listing is not found", func(t *testing.T) {
		svc, _, _, _ := newBookingFixture(t)
		req := bookingReq(start, start.Add(time.Hour))
		req.ListingID = "nope"
		_, _, err := svc.RequestBooking(ctx, "renter-1", req)
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})

	t.Run("payment failure leaves booking pending without secret", func(t *testing.T) {
		svc, store, payments, _ := newBookingFixture(t)
		payments.fail = true

		booking, clientSecret, err := svc.RequestBooking(ctx, "renter-1", bookingReq(start, start.Add(time.Hour)))
		require.NoError(t, err)
		assert.Empty(t, clientSecret)

		got, err := store.GetBooking(ctx, booking.BookingID)
		require.NoError(t, err)
		assert.Equal(t, db.BookingPending, got.Status)
	})
}

func TestRequestBookingOverlap(t *testing.T) {
	ctx := context.Background()
	day := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	at := func(h int) time.Time { return day.Add(time.Duration(h) * time.Hour) }

	seed := func(store *fakeStore, status db.BookingStatus, startH, endH int) {
		store.addBooking(db.Booking{
			BookingID: "seed-" + string(status),
			SpaceID:   "space-1",
			RenterID:  "renter-1",
			StartTime: at(startH),
			EndTime:   at(endH),
			Status:    status,
		})
	}

	t.Run("rejects overlap with confirmed booking", func(t *testing.T) {
		svc, store, _, _ := newBookingFixture(t)
		seed(store, db.BookingConfirmed, 10, 12)
		_, _, err := svc.RequestBooking(ctx, "renter-1", bookingReq(at(11), at(13)))
		assert.ErrorIs(t, err, apperrors.ErrOverlapConflict)
	})

	t.Run("rejects overlap with active booking", func(t *testing.T) {
		svc, store, _, _ := newBookingFixture(t)
		seed(store, db.BookingActive, 10, 12)
		_, _, err := svc.RequestBooking(ctx, "renter-1", bookingReq(at(9), at(11)))
		assert.ErrorIs(t, err, apperrors.ErrOverlapConflict)
	})

	t.Run("adjacent windows coexist", func(t *testing.T) {
		svc, store, _, _ := newBookingFixture(t)
		seed(store, db.BookingConfirmed, 10, 12)
		_, _, err := svc.RequestBooking(ctx, "renter-1", bookingReq(at(12), at(14)))
		assert.NoError(t, err)
	})

	t.Run("pending bookings do not block", func(t *testing.T) {
		svc, store, _, _ := newBookingFixture(t)
		seed(store, db.BookingPending, 10, 12)
		_, _, err := svc.RequestBooking(ctx, "renter-1", bookingReq(at(10), at(12)))
		assert.NoError(t, err)
	})

	t.Run("cancelled bookings do not block", func(t *testing.T) {
		svc, store, _, _ := newBookingFixture(t)
		seed(store, db.BookingCancelled, 10, 12)
		_, _, err := svc.RequestBooking(ctx, "renter-1", bookingReq(at(10), at(12)))
		assert.NoError(t, err)
	})
}

func TestConfirmBooking(t *testing.T) {
	ctx := context.Background()
	start := testNow.Add(2 * time.Hour)

	t.Run("confirms pending booking", func(t *testing.T) {
		svc, _, _, notifier := newBookingFixture(t)
		booking, _, err := svc.RequestBooking(ctx, "renter-1", bookingReq(start, start.Add(time.Hour)))
		require.NoError(t, err)

		confirmed, err := svc.ConfirmBooking(ctx, booking.BookingID)
		require.NoError(t, err)
		assert.Equal(t, db.BookingConfirmed, confirmed.Status)
		assert.Equal(t, []string{"CONFIRMED"}, notifier.statuses)
	})

	t.Run("confirming twice fails", func(t *testing.T) {
		svc, _, _, _ := newBookingFixture(t)
		booking, _, err := svc.RequestBooking(ctx, "renter-1", bookingReq(start, start.Add(time.Hour)))
		require.NoError(t, err)

		_, err = svc.ConfirmBooking(ctx, booking.BookingID)
		require.NoError(t, err)
		_, err = svc.ConfirmBooking(ctx, booking.BookingID)
		assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)
	})

	t.Run("at most one winner for overlapping pendings", func(t *testing.T) {
		svc, store, _, _ := newBookingFixture(t)
		first, _, err := svc.RequestBooking(ctx, "renter-1", bookingReq(start, start.Add(2*time.Hour)))
		require.NoError(t, err)
		second, _, err := svc.RequestBooking(ctx, "renter-1", bookingReq(start.Add(time.Hour), start.Add(3*time.Hour)))
		require.NoError(t, err)

		_, err = svc.ConfirmBooking(ctx, first.BookingID)
		require.NoError(t, err)

		_, err = svc.ConfirmBooking(ctx, second.BookingID)
		assert.ErrorIs(t, err, apperrors.ErrOverlapConflict)

		// The loser stays PENDING for the renter to rebook.
		loser, err := store.GetBooking(ctx, second.BookingID)
		require.NoError(t, err)
		assert.Equal(t, db.BookingPending, loser.Status)
	})

	t.Run("unknown booking is not found", func(t *testing.T) {
		svc, _, _, _ := newBookingFixture(t)
		_, err := svc.ConfirmBooking(ctx, "nope")
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})
}

func TestCancelBooking(t *testing.T) {
	ctx := context.Background()
	start := testNow.Add(2 * time.Hour)

	t.Run("cancels from pending and confirmed", func(t *testing.T) {
		svc, _, _, _ := newBookingFixture(t)

		pending, _, err := svc.RequestBooking(ctx, "renter-1", bookingReq(start, start.Add(time.Hour)))
		require.NoError(t, err)
		cancelled, err := svc.CancelBooking(ctx, pending.BookingID)
		require.NoError(t, err)
		assert.Equal(t, db.BookingCancelled, cancelled.Status)

		confirmed, _, err := svc.RequestBooking(ctx, "renter-1", bookingReq(start.Add(2*time.Hour), start.Add(3*time.Hour)))
		require.NoError(t, err)
		_, err = svc.ConfirmBooking(ctx, confirmed.BookingID)
		require.NoError(t, err)
		_, err = svc.CancelBooking(ctx, confirmed.BookingID)
		assert.NoError(t, err)
	})

	t.Run("cancelling twice fails", func(t *testing.T) {
		svc, _, _, _ := newBookingFixture(t)
		booking, _, err := svc.RequestBooking(ctx, "renter-1", bookingReq(start, start.Add(time.Hour)))
		require.NoError(t, err)

		_, err = svc.CancelBooking(ctx, booking.BookingID)
		require.NoError(t, err)
		_, err = svc.CancelBooking(ctx, booking.BookingID)
		assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)
	})

	t.Run("active and completed cannot be cancelled", func(t *testing.T) {
		svc, store, _, _ := newBookingFixture(t)
		store.addBooking(db.Booking{BookingID: "b-active", SpaceID: "space-1", RenterID: "renter-1", Status: db.BookingActive})
		store.addBooking(db.Booking{BookingID: "b-done", SpaceID: "space-1", RenterID: "renter-1", Status: db.BookingCompleted})

		_, err := svc.CancelBooking(ctx, "b-active")
		assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)
		_, err = svc.CancelBooking(ctx, "b-done")
		assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)
	})

	t.Run("paid booking is refunded", func(t *testing.T) {
		svc, store, payments, _ := newBookingFixture(t)
		booking, _, err := svc.RequestBooking(ctx, "renter-1", bookingReq(start, start.Add(time.Hour)))
		require.NoError(t, err)
		require.NoError(t, svc.MarkPaymentSucceeded(ctx, "pi_"+booking.BookingID))

		cancelled, err := svc.CancelBooking(ctx, booking.BookingID)
		require.NoError(t, err)
		assert.Equal(t, db.PaymentRefunded, cancelled.PaymentStatus)
		assert.Equal(t, []string{"pi_" + booking.BookingID}, payments.refunds)

		got, err := store.GetBooking(ctx, booking.BookingID)
		require.NoError(t, err)
		assert.Equal(t, db.PaymentRefunded, got.PaymentStatus)
	})
}

func TestActivateAndCompleteBooking(t *testing.T) {
	ctx := context.Background()

	t.Run("activation is gated on start time", func(t *testing.T) {
		svc, store, _, _ := newBookingFixture(t)
		store.addBooking(db.Booking{
			BookingID: "b-1", SpaceID: "space-1", RenterID: "renter-1",
			StartTime: testNow.Add(time.Hour), EndTime: testNow.Add(2 * time.Hour),
			Status: db.BookingConfirmed,
		})

		_, err := svc.ActivateBooking(ctx, "b-1")
		assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)

		store.addBooking(db.Booking{
			BookingID: "b-2", SpaceID: "space-1", RenterID: "renter-1",
			StartTime: testNow.Add(-time.Hour), EndTime: testNow.Add(2 * time.Hour),
			Status: db.BookingConfirmed,
		})
		activated, err := svc.ActivateBooking(ctx, "b-2")
		require.NoError(t, err)
		assert.Equal(t, db.BookingActive, activated.Status)
	})

	t.Run("completion emits an earning", func(t *testing.T) {
		svc, store, _, _ := newBookingFixture(t)
		store.addBooking(db.Booking{
			BookingID: "b-1", SpaceID: "space-1", RenterID: "renter-1",
			StartTime: testNow.Add(-3 * time.Hour), EndTime: testNow.Add(-time.Hour),
			TotalPriceCents: 2000, Status: db.BookingActive,
		})

		completed, err := svc.CompleteBooking(ctx, "b-1")
		require.NoError(t, err)
		assert.Equal(t, db.BookingCompleted, completed.Status)

		require.Len(t, store.earnings, 1)
		assert.Equal(t, "b-1", store.earnings[0].BookingID)
		assert.Equal(t, "owner-1", store.earnings[0].HostID)
		assert.Equal(t, int64(2000), store.earnings[0].AmountCents)
		assert.Equal(t, db.EarningPending, store.earnings[0].Status)
	})

	t.Run("completion before end time fails", func(t *testing.T) {
		svc, store, _, _ := newBookingFixture(t)
		store.addBooking(db.Booking{
			BookingID: "b-1", SpaceID: "space-1", RenterID: "renter-1",
			StartTime: testNow.Add(-time.Hour), EndTime: testNow.Add(time.Hour),
			Status: db.BookingActive,
		})
		_, err := svc.CompleteBooking(ctx, "b-1")
		assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)
	})
}

func TestUpdateBooking(t *testing.T) {
	ctx := context.Background()
	start := testNow.Add(2 * time.Hour)

	t.Run("reprices the new window", func(t *testing.T) {
		svc, _, _, _ := newBookingFixture(t)
		booking, _, err := svc.RequestBooking(ctx, "renter-1", bookingReq(start, start.Add(time.Hour)))
		require.NoError(t, err)

		updated, err := svc.UpdateBooking(ctx, booking.BookingID, entities.UpdateBookingRequest{
			StartTime: start,
			EndTime:   start.Add(3 * time.Hour),
		})
		require.NoError(t, err)
		assert.Equal(t, int64(3000), updated.TotalPriceCents)
	})

	t.Run("only pending bookings can move", func(t *testing.T) {
		svc, _, _, _ := newBookingFixture(t)
		booking, _, err := svc.RequestBooking(ctx, "renter-1", bookingReq(start, start.Add(time.Hour)))
		require.NoError(t, err)
		_, err = svc.ConfirmBooking(ctx, booking.BookingID)
		require.NoError(t, err)

		_, err = svc.UpdateBooking(ctx, booking.BookingID, entities.UpdateBookingRequest{
			StartTime: start,
			EndTime:   start.Add(2 * time.Hour),
		})
		assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)
	})
}

func TestListBookingsByRole(t *testing.T) {
	ctx := context.Background()
	svc, store, _, _ := newBookingFixture(t)
	store.addVehicle(db.Vehicle{VehicleID: "v-1", OwnerID: "renter-1", Make: "Tesla", Model: "Model 3", Year: 2023, LicensePlate: "TESLA1"})
	store.addBooking(db.Booking{BookingID: "b-1", SpaceID: "space-1", RenterID: "renter-1", VehicleID: "v-1", Status: db.BookingConfirmed})

	asRenter, err := svc.ListBookings(ctx, "renter-1", "renter")
	require.NoError(t, err)
	require.Len(t, asRenter, 1)
	assert.Equal(t, "Downtown Lot", asRenter[0].ListingTitle)
	assert.Equal(t, "TESLA1", asRenter[0].LicensePlate)

	asHost, err := svc.ListBookings(ctx, "owner-1", "host")
	require.NoError(t, err)
	assert.Len(t, asHost, 1)

	empty, err := svc.ListBookings(ctx, "owner-1", "renter")
	require.NoError(t, err)
	assert.Empty(t, empty)
}
