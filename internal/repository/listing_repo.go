package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	"arrive/internal/db"
	apperrors "arrive/internal/errors"
)

type ListingRepository struct {
	DB *sql.DB
}

func NewListingRepository(database *sql.DB) *ListingRepository {
	return &ListingRepository{DB: database}
}

const listingColumns = `space_id, host_id, title, address, latitude, longitude, space_type,
	hourly_rate_cents, daily_rate_cents, status, created_at, updated_at`

func (r *ListingRepository) CreateListing(ctx context.Context, l *db.Listing) error {
	query := `
		INSERT INTO listings
		(space_id, host_id, title, address, latitude, longitude, space_type,
		 hourly_rate_cents, daily_rate_cents, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING created_at, updated_at`
	err := r.DB.QueryRowContext(ctx, query,
		l.SpaceID, l.HostID, l.Title, l.Address, l.Latitude, l.Longitude, l.SpaceType,
		l.HourlyRateCents, l.DailyRateCents, l.Status, l.CreatedAt, l.UpdatedAt,
	).Scan(&l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return fmt.Errorf("error inserting listing: %w", err)
	}
	return nil
}

func (r *ListingRepository) GetListing(ctx context.Context, spaceID string) (*db.Listing, error) {
	query := `SELECT ` + listingColumns + ` FROM listings WHERE space_id = $1`
	return scanListing(r.DB.QueryRowContext(ctx, query, spaceID))
}

func (r *ListingRepository) ListListings(ctx context.Context, status string) ([]db.Listing, error) {
	query := `SELECT ` + listingColumns + ` FROM listings WHERE 1=1`
	args := []interface{}{}
	idx := 1

	if status != "" {
		query += " AND status = $" + strconv.Itoa(idx)
		args = append(args, status)
		idx++
	}
	query += " ORDER BY created_at DESC"

	return r.listListings(ctx, query, args...)
}

func (r *ListingRepository) ListListingsByHost(ctx context.Context, hostID string) ([]db.Listing, error) {
	query := `SELECT ` + listingColumns + ` FROM listings WHERE host_id = $1 ORDER BY created_at DESC`
	return r.listListings(ctx, query, hostID)
}

func (r *ListingRepository) listListings(ctx context.Context, query string, args ...interface{}) ([]db.Listing, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying listings: %w", err)
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

func (r *ListingRepository) UpdateListing(ctx context.Context, l *db.Listing) error {
	query := `
		UPDATE listings
		SET title = $3, address = $4, latitude = $5, longitude = $6, space_type = $7,
		    hourly_rate_cents = $8, daily_rate_cents = $9, status = $10, updated_at = NOW()
		WHERE space_id = $1 AND host_id = $2`
	res, err := r.DB.ExecContext(ctx, query,
		l.SpaceID, l.HostID, l.Title, l.Address, l.Latitude, l.Longitude, l.SpaceType,
		l.HourlyRateCents, l.DailyRateCents, l.Status,
	)
	if err != nil {
		return fmt.Errorf("error updating listing: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// DeactivateListing retires a listing. Listings are never deleted so
// booking history stays intact.
func (r *ListingRepository) DeactivateListing(ctx context.Context, spaceID, hostID string) error {
	query := `UPDATE listings SET status = $3, updated_at = NOW() WHERE space_id = $1 AND host_id = $2`
	res, err := r.DB.ExecContext(ctx, query, spaceID, hostID, db.ListingInactive)
	if err != nil {
		return fmt.Errorf("error deactivating listing: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
