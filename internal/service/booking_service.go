package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"arrive/internal/clock"
	"arrive/internal/db"
	"arrive/internal/entities"
	apperrors "arrive/internal/errors"
	"arrive/internal/pricing"
)

// BookingRepository is the storage contract the booking service depends
// on. The Postgres implementation lives in internal/repository; tests use
// an in-memory fake.
type BookingRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	GetListingForUpdate(ctx context.Context, spaceID string) (*db.Listing, error)
	CountConflicting(ctx context.Context, spaceID string, start, end time.Time, excludeID string) (int, error)
	CreateBooking(ctx context.Context, b *db.Booking) error
	GetBooking(ctx context.Context, id string) (*db.Booking, error)
	ListBookingsByRenter(ctx context.Context, renterID string) ([]db.BookingListRow, error)
	ListBookingsByHost(ctx context.Context, hostID string) ([]db.BookingListRow, error)
	UpdateBookingStatus(ctx context.Context, id string, status db.BookingStatus) error
	UpdateBookingWindow(ctx context.Context, id string, start, end time.Time, priceCents, feeCents int64) error
	UpdateBookingPayment(ctx context.Context, id, paymentStatus, paymentIntentID string) error
	GetBookingByPaymentIntent(ctx context.Context, paymentIntentID string) (*db.Booking, error)
	UpsertVehicle(ctx context.Context, v *db.Vehicle) error
	CreateEarning(ctx context.Context, e *db.Earning) error
}

// UserStore resolves renters for notifications.
type UserStore interface {
	GetUserByID(ctx context.Context, id string) (*db.User, error)
}

// PaymentProvider owns the client secret handed back to the mobile client.
type PaymentProvider interface {
	CreatePaymentIntent(amountCents int64, bookingID, receiptEmail string) (clientSecret, paymentIntentID string, err error)
	RefundPaymentIntent(paymentIntentID string) error
}

// Notifier delivers booking status updates to renters. Implementations
// must not block the request path.
type Notifier interface {
	BookingStatusChanged(data entities.BookingEmailData, email, phone string)
}

type BookingService struct {
	Repo     BookingRepository
	Users    UserStore
	Payments PaymentProvider
	Notify   Notifier
	Clock    clock.Clock
}

func NewBookingService(repo BookingRepository, users UserStore, payments PaymentProvider, notify Notifier, clk clock.Clock) *BookingService {
	return &BookingService{
		Repo:     repo,
		Users:    users,
		Payments: payments,
		Notify:   notify,
		Clock:    clk,
	}
}

// RequestBooking prices the requested window, checks it against existing
// CONFIRMED/ACTIVE bookings for the listing, and creates a PENDING
// booking. The overlap check and insert run inside one transaction holding
// the listing row lock, so two concurrent requests for overlapping windows
// cannot both succeed.
func (s *BookingService) RequestBooking(ctx context.Context, renterID string, req entities.CreateBookingRequest) (*db.Booking, string, error) {
	if strings.TrimSpace(req.LicensePlate) == "" {
		return nil, "", apperrors.ErrInvalidVehicle
	}

	now := s.Clock.Now()
	booking := &db.Booking{
		BookingID:     uuid.New().String(),
		SpaceID:       req.ListingID,
		RenterID:      renterID,
		StartTime:     req.StartTime,
		EndTime:       req.EndTime,
		Status:        db.BookingPending,
		PaymentStatus: db.PaymentPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	err := s.Repo.WithTx(ctx, func(txCtx context.Context) error {
		listing, err := s.Repo.GetListingForUpdate(txCtx, req.ListingID)
		if err != nil {
			return err
		}

		quote, err := pricing.ComputeCost(req.StartTime, req.EndTime, listing.HourlyRateCents, listing.DailyRateCents)
		if err != nil {
			return err
		}

		conflicts, err := s.Repo.CountConflicting(txCtx, req.ListingID, req.StartTime, req.EndTime, "")
		if err != nil {
			return err
		}
		if conflicts > 0 {
			return apperrors.ErrOverlapConflict
		}

		vehicle := &db.Vehicle{
			VehicleID:    uuid.New().String(),
			OwnerID:      renterID,
			Make:         req.VehicleMake,
			Model:        req.VehicleModel,
			Year:         req.VehicleYear,
			LicensePlate: req.LicensePlate,
		}
		if err := s.Repo.UpsertVehicle(txCtx, vehicle); err != nil {
			return err
		}

		booking.VehicleID = vehicle.VehicleID
		booking.TotalPriceCents = quote.Cost
		booking.ServiceFeeCents = quote.ServiceFee
		return s.Repo.CreateBooking(txCtx, booking)
	})
	if err != nil {
		return nil, "", err
	}

	clientSecret := s.collectPayment(ctx, booking)
	return booking, clientSecret, nil
}

// collectPayment opens a payment intent for the booking's total charge
// (price plus service fee). A payment failure leaves the booking PENDING
// and unpaid; the client retries payment separately.
func (s *BookingService) collectPayment(ctx context.Context, booking *db.Booking) string {
	if s.Payments == nil {
		return ""
	}
	email := ""
	if renter, err := s.Users.GetUserByID(ctx, booking.RenterID); err == nil {
		email = renter.Email
	}

	total := booking.TotalPriceCents + booking.ServiceFeeCents
	clientSecret, intentID, err := s.Payments.CreatePaymentIntent(total, booking.BookingID, email)
	if err != nil {
		log.Printf("Payment intent creation failed for booking %s: %v", booking.BookingID, err)
		return ""
	}
	booking.StripePaymentIntentID = intentID
	if err := s.Repo.UpdateBookingPayment(ctx, booking.BookingID, booking.PaymentStatus, intentID); err != nil {
		log.Printf("Failed to store payment intent for booking %s: %v", booking.BookingID, err)
	}
	return clientSecret
}

// ConfirmBooking moves a PENDING booking to CONFIRMED, re-validating that
// no overlapping booking won the slot since the request. Under concurrent
// confirmations at most one wins; the loser gets ErrOverlapConflict and
// its booking stays PENDING for the renter to rebook.
func (s *BookingService) ConfirmBooking(ctx context.Context, id string) (*db.Booking, error) {
	var booking *db.Booking
	err := s.Repo.WithTx(ctx, func(txCtx context.Context) error {
		b, err := s.Repo.GetBooking(txCtx, id)
		if err != nil {
			return err
		}
		if !b.Status.CanTransitionTo(db.BookingConfirmed) {
			return fmt.Errorf("confirm booking %s from %s: %w", id, b.Status, apperrors.ErrInvalidTransition)
		}

		if _, err := s.Repo.GetListingForUpdate(txCtx, b.SpaceID); err != nil {
			return err
		}
		conflicts, err := s.Repo.CountConflicting(txCtx, b.SpaceID, b.StartTime, b.EndTime, b.BookingID)
		if err != nil {
			return err
		}
		if conflicts > 0 {
			return apperrors.ErrOverlapConflict
		}

		if err := s.Repo.UpdateBookingStatus(txCtx, id, db.BookingConfirmed); err != nil {
			return err
		}
		b.Status = db.BookingConfirmed
		booking = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifyStatusChange(ctx, booking)
	return booking, nil
}

// CancelBooking cancels a PENDING or CONFIRMED booking. Paid bookings are
// refunded. Cancellation is a status transition; the record is preserved
// for reporting.
func (s *BookingService) CancelBooking(ctx context.Context, id string) (*db.Booking, error) {
	var booking *db.Booking
	err := s.Repo.WithTx(ctx, func(txCtx context.Context) error {
		b, err := s.Repo.GetBooking(txCtx, id)
		if err != nil {
			return err
		}
		if !b.Status.CanTransitionTo(db.BookingCancelled) {
			return fmt.Errorf("cancel booking %s from %s: %w", id, b.Status, apperrors.ErrInvalidTransition)
		}
		if err := s.Repo.UpdateBookingStatus(txCtx, id, db.BookingCancelled); err != nil {
			return err
		}
		b.Status = db.BookingCancelled
		booking = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	if booking.PaymentStatus == db.PaymentPaid && booking.StripePaymentIntentID != "" && s.Payments != nil {
		if err := s.Payments.RefundPaymentIntent(booking.StripePaymentIntentID); err != nil {
			log.Printf("Refund failed for booking %s: %v", booking.BookingID, err)
		} else if err := s.Repo.UpdateBookingPayment(ctx, booking.BookingID, db.PaymentRefunded, booking.StripePaymentIntentID); err != nil {
			log.Printf("Failed to record refund for booking %s: %v", booking.BookingID, err)
		} else {
			booking.PaymentStatus = db.PaymentRefunded
		}
	}

	s.notifyStatusChange(ctx, booking)
	return booking, nil
}

// ActivateBooking moves a CONFIRMED booking to ACTIVE once its start time
// has been reached.
func (s *BookingService) ActivateBooking(ctx context.Context, id string) (*db.Booking, error) {
	return s.advance(ctx, id, db.BookingActive, func(b *db.Booking, now time.Time) bool {
		return !now.Before(b.StartTime)
	}, nil)
}

// CompleteBooking moves an ACTIVE booking to COMPLETED once its end time
// has been reached, and emits the host's pending earning.
func (s *BookingService) CompleteBooking(ctx context.Context, id string) (*db.Booking, error) {
	return s.advance(ctx, id, db.BookingCompleted, func(b *db.Booking, now time.Time) bool {
		return !now.Before(b.EndTime)
	}, func(txCtx context.Context, b *db.Booking) error {
		listing, err := s.Repo.GetListingForUpdate(txCtx, b.SpaceID)
		if err != nil {
			return err
		}
		return s.Repo.CreateEarning(txCtx, &db.Earning{
			EarningID:   uuid.New().String(),
			BookingID:   b.BookingID,
			HostID:      listing.HostID,
			AmountCents: b.TotalPriceCents,
			Status:      db.EarningPending,
			CreatedAt:   s.Clock.Now(),
		})
	})
}

func (s *BookingService) advance(ctx context.Context, id string, to db.BookingStatus, due func(*db.Booking, time.Time) bool, after func(context.Context, *db.Booking) error) (*db.Booking, error) {
	var booking *db.Booking
	err := s.Repo.WithTx(ctx, func(txCtx context.Context) error {
		b, err := s.Repo.GetBooking(txCtx, id)
		if err != nil {
			return err
		}
		if !b.Status.CanTransitionTo(to) {
			return fmt.Errorf("advance booking %s from %s to %s: %w", id, b.Status, to, apperrors.ErrInvalidTransition)
		}
		if !due(b, s.Clock.Now()) {
			return fmt.Errorf("booking %s not yet due for %s: %w", id, to, apperrors.ErrInvalidTransition)
		}
		if err := s.Repo.UpdateBookingStatus(txCtx, id, to); err != nil {
			return err
		}
		b.Status = to
		if after != nil {
			if err := after(txCtx, b); err != nil {
				return err
			}
		}
		booking = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return booking, nil
}

// UpdateBooking moves a PENDING booking to a new window, repricing it and
// re-running the overlap check.
func (s *BookingService) UpdateBooking(ctx context.Context, id string, req entities.UpdateBookingRequest) (*db.Booking, error) {
	var booking *db.Booking
	err := s.Repo.WithTx(ctx, func(txCtx context.Context) error {
		b, err := s.Repo.GetBooking(txCtx, id)
		if err != nil {
			return err
		}
		if b.Status != db.BookingPending {
			return fmt.Errorf("update booking %s in status %s: %w", id, b.Status, apperrors.ErrInvalidTransition)
		}

		listing, err := s.Repo.GetListingForUpdate(txCtx, b.SpaceID)
		if err != nil {
			return err
		}
		quote, err := pricing.ComputeCost(req.StartTime, req.EndTime, listing.HourlyRateCents, listing.DailyRateCents)
		if err != nil {
			return err
		}
		conflicts, err := s.Repo.CountConflicting(txCtx, b.SpaceID, req.StartTime, req.EndTime, b.BookingID)
		if err != nil {
			return err
		}
		if conflicts > 0 {
			return apperrors.ErrOverlapConflict
		}

		if err := s.Repo.UpdateBookingWindow(txCtx, id, req.StartTime, req.EndTime, quote.Cost, quote.ServiceFee); err != nil {
			return err
		}
		b.StartTime = req.StartTime
		b.EndTime = req.EndTime
		b.TotalPriceCents = quote.Cost
		b.ServiceFeeCents = quote.ServiceFee
		booking = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return booking, nil
}

func (s *BookingService) GetBooking(ctx context.Context, id string) (*db.Booking, error) {
	return s.Repo.GetBooking(ctx, id)
}

// ListBookings returns the caller's bookings, as renter by default or
// across their listings when role is "host".
func (s *BookingService) ListBookings(ctx context.Context, userID, role string) ([]db.BookingListRow, error) {
	if role == "host" {
		return s.Repo.ListBookingsByHost(ctx, userID)
	}
	return s.Repo.ListBookingsByRenter(ctx, userID)
}

// MarkPaymentSucceeded flips the booking's payment status when Stripe
// reports a successful charge.
func (s *BookingService) MarkPaymentSucceeded(ctx context.Context, paymentIntentID string) error {
	b, err := s.Repo.GetBookingByPaymentIntent(ctx, paymentIntentID)
	if err != nil {
		return err
	}
	return s.Repo.UpdateBookingPayment(ctx, b.BookingID, db.PaymentPaid, paymentIntentID)
}

func (s *BookingService) notifyStatusChange(ctx context.Context, booking *db.Booking) {
	if s.Notify == nil || booking == nil {
		return
	}
	renter, err := s.Users.GetUserByID(ctx, booking.RenterID)
	if err != nil {
		log.Printf("Skipping notification for booking %s: %v", booking.BookingID, err)
		return
	}

	data := entities.BookingEmailData{
		RenterName:         renter.FirstName,
		BookingID:          booking.BookingID,
		StartTimeFormatted: booking.StartTime.Format("02 Jan 2006 15:04 MST"),
		EndTimeFormatted:   booking.EndTime.Format("02 Jan 2006 15:04 MST"),
		Status:             string(booking.Status),
		CurrentYear:        s.Clock.Now().Year(),
	}
	s.Notify.BookingStatusChanged(data, renter.Email, renter.PhoneNumber)
}
