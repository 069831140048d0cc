package repository

import (
	"context"
	"database/sql"
	"fmt"

	"arrive/internal/db"
)

// ReportRepository serves the owner dashboard's read queries. The reporter
// folds these rows in memory; absence of data is not an error.
type ReportRepository struct {
	DB *sql.DB
}

func NewReportRepository(database *sql.DB) *ReportRepository {
	return &ReportRepository{DB: database}
}

func (r *ReportRepository) ListOwnerBookings(ctx context.Context, ownerID string) ([]db.OwnerBookingRow, error) {
	query := `
		SELECT b.booking_id, b.space_id, l.title, l.status, b.status,
		       b.total_price_cents, b.start_time, b.end_time,
		       v.year, v.make, v.model
		FROM bookings b
		JOIN listings l ON l.space_id = b.space_id
		JOIN vehicles v ON v.vehicle_id = b.vehicle_id
		WHERE l.host_id = $1
		ORDER BY b.created_at`
	rows, err := r.DB.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("error querying owner bookings: %w", err)
	}
	defer rows.Close()

	var result []db.OwnerBookingRow
	for rows.Next() {
		var row db.OwnerBookingRow
		err := rows.Scan(
			&row.BookingID, &row.SpaceID, &row.ListingTitle, &row.ListingStatus, &row.Status,
			&row.TotalPriceCents, &row.StartTime, &row.EndTime,
			&row.VehicleYear, &row.VehicleMake, &row.VehicleModel,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning owner booking row: %w", err)
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

func (r *ReportRepository) ListActiveListings(ctx context.Context, ownerID string) ([]db.Listing, error) {
	query := `SELECT ` + listingColumns + ` FROM listings WHERE host_id = $1 AND status = $2 ORDER BY space_id`
	rows, err := r.DB.QueryContext(ctx, query, ownerID, db.ListingActive)
	if err != nil {
		return nil, fmt.Errorf("error querying active listings: %w", err)
	}
	defer rows.Close()

	var listings []db.Listing
	for rows.Next() {
		var l db.Listing
		err := rows.Scan(
			&l.SpaceID, &l.HostID, &l.Title, &l.Address, &l.Latitude, &l.Longitude,
			&l.SpaceType, &l.HourlyRateCents, &l.DailyRateCents, &l.Status,
			&l.CreatedAt, &l.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning listing row: %w", err)
		}
		listings = append(listings, l)
	}
	return listings, rows.Err()
}
