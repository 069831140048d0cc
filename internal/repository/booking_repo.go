package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"arrive/internal/db"
	apperrors "arrive/internal/errors"
)

// Postgres SQLSTATE raised when the bookings exclusion constraint rejects
// an overlapping CONFIRMED/ACTIVE window.
const exclusionViolation = "23P01"

type BookingRepository struct {
	DB *sql.DB
}

func NewBookingRepository(database *sql.DB) *BookingRepository {
	return &BookingRepository{DB: database}
}

// WithTx runs fn inside a transaction. The overlap check and the insert or
// status update it guards must share one transaction; the exclusion
// constraint in the schema backstops the check against concurrent writers.
func (r *BookingRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return runInTx(ctx, r.DB, fn)
}

// GetListingForUpdate locks the listing row for the rest of the
// transaction, serializing overlap checks per listing.
func (r *BookingRepository) GetListingForUpdate(ctx context.Context, spaceID string) (*db.Listing, error) {
	query := `
		SELECT space_id, host_id, title, address, latitude, longitude, space_type,
		       hourly_rate_cents, daily_rate_cents, status, created_at, updated_at
		FROM listings WHERE space_id = $1
		FOR UPDATE`
	return scanListing(querier(ctx, r.DB).QueryRowContext(ctx, query, spaceID))
}

// CountConflicting counts CONFIRMED/ACTIVE bookings of the listing whose
// half-open window intersects [start, end). Touching endpoints do not
// conflict. excludeID skips the booking being re-validated on confirm.
func (r *BookingRepository) CountConflicting(ctx context.Context, spaceID string, start, end time.Time, excludeID string) (int, error) {
	query := `
		SELECT COUNT(*) FROM bookings
		WHERE space_id = $1
		  AND status IN ('CONFIRMED', 'ACTIVE')
		  AND start_time < $3
		  AND end_time > $2
		  AND booking_id::text <> $4`
	var n int
	err := querier(ctx, r.DB).QueryRowContext(ctx, query, spaceID, start, end, excludeID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("error counting conflicting bookings: %w", err)
	}
	return n, nil
}

func (r *BookingRepository) CreateBooking(ctx context.Context, b *db.Booking) error {
	query := `
		INSERT INTO bookings
		(booking_id, space_id, renter_id, vehicle_id, start_time, end_time,
		 total_price_cents, service_fee_cents, status, payment_status,
		 stripe_payment_intent_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING created_at, updated_at`
	err := querier(ctx, r.DB).QueryRowContext(ctx, query,
		b.BookingID,
		b.SpaceID,
		b.RenterID,
		b.VehicleID,
		b.StartTime,
		b.EndTime,
		b.TotalPriceCents,
		b.ServiceFeeCents,
		b.Status,
		b.PaymentStatus,
		b.StripePaymentIntentID,
		b.CreatedAt,
		b.UpdatedAt,
	).Scan(&b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == exclusionViolation {
			return apperrors.ErrOverlapConflict
		}
		return fmt.Errorf("error inserting booking: %w", err)
	}
	return nil
}

func (r *BookingRepository) GetBooking(ctx context.Context, id string) (*db.Booking, error) {
	query := `
		SELECT booking_id, space_id, renter_id, vehicle_id, start_time, end_time,
		       total_price_cents, service_fee_cents, status, payment_status,
		       COALESCE(stripe_payment_intent_id, ''), created_at, updated_at
		FROM bookings WHERE booking_id = $1`
	var b db.Booking
	err := querier(ctx, r.DB).QueryRowContext(ctx, query, id).Scan(
		&b.BookingID, &b.SpaceID, &b.RenterID, &b.VehicleID, &b.StartTime, &b.EndTime,
		&b.TotalPriceCents, &b.ServiceFeeCents, &b.Status, &b.PaymentStatus,
		&b.StripePaymentIntentID, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("error querying booking: %w", err)
	}
	return &b, nil
}

func (r *BookingRepository) ListBookingsByRenter(ctx context.Context, renterID string) ([]db.BookingListRow, error) {
	query := bookingListQuery + ` WHERE b.renter_id = $1 ORDER BY b.start_time DESC`
	return r.listBookings(ctx, query, renterID)
}

func (r *BookingRepository) ListBookingsByHost(ctx context.Context, hostID string) ([]db.BookingListRow, error) {
	query := bookingListQuery + ` WHERE l.host_id = $1 ORDER BY b.start_time DESC`
	return r.listBookings(ctx, query, hostID)
}

const bookingListQuery = `
	SELECT b.booking_id, b.space_id, b.renter_id, b.vehicle_id, b.start_time, b.end_time,
	       b.total_price_cents, b.service_fee_cents, b.status, b.payment_status,
	       COALESCE(b.stripe_payment_intent_id, ''), b.created_at, b.updated_at,
	       v.license_plate, v.make || ' ' || v.model, l.title
	FROM bookings b
	JOIN listings l ON l.space_id = b.space_id
	JOIN vehicles v ON v.vehicle_id = b.vehicle_id`

func (r *BookingRepository) listBookings(ctx context.Context, query string, arg any) ([]db.BookingListRow, error) {
	rows, err := querier(ctx, r.DB).QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("error querying bookings: %w", err)
	}
	defer rows.Close()

	var result []db.BookingListRow
	for rows.Next() {
		var row db.BookingListRow
		err := rows.Scan(
			&row.BookingID, &row.SpaceID, &row.RenterID, &row.VehicleID, &row.StartTime, &row.EndTime,
			&row.TotalPriceCents, &row.ServiceFeeCents, &row.Status, &row.PaymentStatus,
			&row.StripePaymentIntentID, &row.CreatedAt, &row.UpdatedAt,
			&row.LicensePlate, &row.VehicleModel, &row.ListingTitle,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning booking row: %w", err)
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

func (r *BookingRepository) UpdateBookingStatus(ctx context.Context, id string, status db.BookingStatus) error {
	query := `UPDATE bookings SET status = $2, updated_at = NOW() WHERE booking_id = $1`
	res, err := querier(ctx, r.DB).ExecContext(ctx, query, id, status)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == exclusionViolation {
			return apperrors.ErrOverlapConflict
		}
		return fmt.Errorf("error updating booking status: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// UpdateBookingWindow moves a booking to a new window with its recomputed
// price. Callers must hold the listing lock and have re-checked overlap.
func (r *BookingRepository) UpdateBookingWindow(ctx context.Context, id string, start, end time.Time, priceCents, feeCents int64) error {
	query := `
		UPDATE bookings
		SET start_time = $2, end_time = $3, total_price_cents = $4, service_fee_cents = $5, updated_at = NOW()
		WHERE booking_id = $1`
	res, err := querier(ctx, r.DB).ExecContext(ctx, query, id, start, end, priceCents, feeCents)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == exclusionViolation {
			return apperrors.ErrOverlapConflict
		}
		return fmt.Errorf("error updating booking window: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// UpdateBookingPayment records the payment outcome reported by Stripe.
func (r *BookingRepository) UpdateBookingPayment(ctx context.Context, id, paymentStatus, paymentIntentID string) error {
	query := `
		UPDATE bookings
		SET payment_status = $2, stripe_payment_intent_id = $3, updated_at = NOW()
		WHERE booking_id = $1`
	res, err := querier(ctx, r.DB).ExecContext(ctx, query, id, paymentStatus, paymentIntentID)
	if err != nil {
		return fmt.Errorf("error updating booking payment: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// GetBookingByPaymentIntent resolves the booking a Stripe webhook event
// refers to.
func (r *BookingRepository) GetBookingByPaymentIntent(ctx context.Context, paymentIntentID string) (*db.Booking, error) {
	var id string
	err := querier(ctx, r.DB).QueryRowContext(ctx,
		`SELECT booking_id FROM bookings WHERE stripe_payment_intent_id = $1`, paymentIntentID).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("error querying booking by payment intent: %w", err)
	}
	return r.GetBooking(ctx, id)
}

// UpsertVehicle stores the renter's vehicle descriptor, keyed by owner and
// plate, and fills in the vehicle id.
func (r *BookingRepository) UpsertVehicle(ctx context.Context, v *db.Vehicle) error {
	query := `
		INSERT INTO vehicles (vehicle_id, owner_id, make, model, year, license_plate)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (owner_id, license_plate)
		DO UPDATE SET make = EXCLUDED.make, model = EXCLUDED.model, year = EXCLUDED.year
		RETURNING vehicle_id`
	err := querier(ctx, r.DB).QueryRowContext(ctx, query,
		v.VehicleID, v.OwnerID, v.Make, v.Model, v.Year, v.LicensePlate,
	).Scan(&v.VehicleID)
	if err != nil {
		return fmt.Errorf("error upserting vehicle: %w", err)
	}
	return nil
}

func (r *BookingRepository) CreateEarning(ctx context.Context, e *db.Earning) error {
	query := `
		INSERT INTO earnings (earning_id, booking_id, host_id, amount_cents, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := querier(ctx, r.DB).ExecContext(ctx, query,
		e.EarningID, e.BookingID, e.HostID, e.AmountCents, e.Status, e.CreatedAt)
	if err != nil {
		return fmt.Errorf("error inserting earning: %w", err)
	}
	return nil
}

func scanListing(row *sql.Row) (*db.Listing, error) {
	var l db.Listing
	err := row.Scan(
		&l.SpaceID, &l.HostID, &l.Title, &l.Address, &l.Latitude, &l.Longitude,
		&l.SpaceType, &l.HourlyRateCents, &l.DailyRateCents, &l.Status,
		&l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("error scanning listing: %w", err)
	}
	return &l, nil
}
