package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/lib/pq"

	"arrive/internal/db"
)

type JobRepository struct {
	DB *sql.DB
}

func NewJobRepository(database *sql.DB) *JobRepository {
	return &JobRepository{DB: database}
}

// DueBooking is a booking the rollover job must transition, joined with
// the listing owner so completions can emit earnings.
type DueBooking struct {
	BookingID   string
	HostID      string
	AmountCents int64
}

// ListConfirmedDueForActivation returns CONFIRMED bookings whose start
// time has passed.
func (r *JobRepository) ListConfirmedDueForActivation(ctx context.Context, now time.Time) ([]string, error) {
	query := `SELECT booking_id FROM bookings WHERE status = $1 AND start_time <= $2`
	rows, err := r.DB.QueryContext(ctx, query, db.BookingConfirmed, now)
	if err != nil {
		return nil, fmt.Errorf("error querying confirmed bookings past start time: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("error scanning booking ID: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ListActiveDueForCompletion returns ACTIVE bookings whose end time has
// passed.
func (r *JobRepository) ListActiveDueForCompletion(ctx context.Context, now time.Time) ([]DueBooking, error) {
	query := `
		SELECT b.booking_id, l.host_id, b.total_price_cents
		FROM bookings b
		JOIN listings l ON l.space_id = b.space_id
		WHERE b.status = $1 AND b.end_time <= $2`
	rows, err := r.DB.QueryContext(ctx, query, db.BookingActive, now)
	if err != nil {
		return nil, fmt.Errorf("error querying active bookings past end time: %w", err)
	}
	defer rows.Close()

	var due []DueBooking
	for rows.Next() {
		var d DueBooking
		if err := rows.Scan(&d.BookingID, &d.HostID, &d.AmountCents); err != nil {
			return nil, fmt.Errorf("error scanning due booking: %w", err)
		}
		due = append(due, d)
	}
	return due, rows.Err()
}

// UpdateBookingStatuses moves a batch of bookings to newStatus.
func (r *JobRepository) UpdateBookingStatuses(ctx context.Context, ids []string, newStatus db.BookingStatus) error {
	if len(ids) == 0 {
		return nil
	}
	query := `UPDATE bookings SET status = $1, updated_at = NOW() WHERE booking_id = ANY($2)`
	result, err := r.DB.ExecContext(ctx, query, newStatus, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("error updating booking statuses: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		log.Printf("Could not get rows affected: %v", err)
	} else {
		log.Printf("Updated status for %d bookings to '%s'", rowsAffected, newStatus)
	}
	return nil
}

func (r *JobRepository) InsertEarning(ctx context.Context, e *db.Earning) error {
	query := `
		INSERT INTO earnings (earning_id, booking_id, host_id, amount_cents, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (booking_id) DO NOTHING`
	_, err := r.DB.ExecContext(ctx, query,
		e.EarningID, e.BookingID, e.HostID, e.AmountCents, e.Status, e.CreatedAt)
	if err != nil {
		return fmt.Errorf("error inserting earning: %w", err)
	}
	return nil
}

// CancelStalePending cancels PENDING bookings created before the cutoff.
// Bookings are never deleted; cancellation preserves history.
func (r *JobRepository) CancelStalePending(ctx context.Context, before time.Time) (int64, error) {
	query := `UPDATE bookings SET status = $1, updated_at = NOW() WHERE status = $2 AND created_at < $3`
	result, err := r.DB.ExecContext(ctx, query, db.BookingCancelled, db.BookingPending, before)
	if err != nil {
		return 0, fmt.Errorf("error cancelling stale pending bookings: %w", err)
	}
	return result.RowsAffected()
}
