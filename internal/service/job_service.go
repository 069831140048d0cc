package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"arrive/internal/clock"
	"arrive/internal/db"
	"arrive/internal/repository"
)

// JobService is the scheduled trigger behind the forward-only booking
// transitions: CONFIRMED bookings whose start passed become ACTIVE, ACTIVE
// bookings whose end passed become COMPLETED (emitting earnings), and
// stale PENDING requests are cancelled.
type JobService struct {
	Repo  *repository.JobRepository
	Clock clock.Clock
}

// Pending bookings older than this are considered abandoned.
const stalePendingAge = 24 * time.Hour

func NewJobService(repo *repository.JobRepository, clk clock.Clock) *JobService {
	return &JobService{Repo: repo, Clock: clk}
}

// ActivateStartedBookings moves confirmed bookings past their start time
// to ACTIVE.
func (s *JobService) ActivateStartedBookings(ctx context.Context) error {
	ids, err := s.Repo.ListConfirmedDueForActivation(ctx, s.Clock.Now())
	if err != nil {
		return fmt.Errorf("rollover job: failed to get confirmed bookings past start time: %w", err)
	}
	if len(ids) == 0 {
		return nil
	}

	log.Printf("Rollover job: activating %d bookings", len(ids))
	if err := s.Repo.UpdateBookingStatuses(ctx, ids, db.BookingActive); err != nil {
		return fmt.Errorf("rollover job: failed to activate bookings: %w", err)
	}
	return nil
}

// CompleteFinishedBookings moves active bookings past their end time to
// COMPLETED and records a pending earning per booking.
func (s *JobService) CompleteFinishedBookings(ctx context.Context) error {
	due, err := s.Repo.ListActiveDueForCompletion(ctx, s.Clock.Now())
	if err != nil {
		return fmt.Errorf("rollover job: failed to get active bookings past end time: %w", err)
	}
	if len(due) == 0 {
		return nil
	}

	ids := make([]string, 0, len(due))
	for _, d := range due {
		ids = append(ids, d.BookingID)
	}
	log.Printf("Rollover job: completing %d bookings", len(ids))

	if err := s.Repo.UpdateBookingStatuses(ctx, ids, db.BookingCompleted); err != nil {
		return fmt.Errorf("rollover job: failed to complete bookings: %w", err)
	}

	now := s.Clock.Now()
	for _, d := range due {
		earning := &db.Earning{
			EarningID:   uuid.New().String(),
			BookingID:   d.BookingID,
			HostID:      d.HostID,
			AmountCents: d.AmountCents,
			Status:      db.EarningPending,
			CreatedAt:   now,
		}
		if err := s.Repo.InsertEarning(ctx, earning); err != nil {
			log.Printf("Rollover job: failed to record earning for booking %s: %v", d.BookingID, err)
		}
	}
	return nil
}

// CancelStalePendingBookings cancels pending bookings that were never
// confirmed.
func (s *JobService) CancelStalePendingBookings(ctx context.Context) error {
	cutoff := s.Clock.Now().Add(-stalePendingAge)
	n, err := s.Repo.CancelStalePending(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("rollover job: failed to cancel stale pending bookings: %w", err)
	}
	if n > 0 {
		log.Printf("Rollover job: cancelled %d stale pending bookings", n)
	}
	return nil
}

// Run executes one full rollover pass.
func (s *JobService) Run(ctx context.Context) {
	if err := s.ActivateStartedBookings(ctx); err != nil {
		log.Printf("%v", err)
	}
	if err := s.CompleteFinishedBookings(ctx); err != nil {
		log.Printf("%v", err)
	}
	if err := s.CancelStalePendingBookings(ctx); err != nil {
		log.Printf("%v", err)
	}
}
