package service

import (
	"context"
	"fmt"
	"sort"

	"arrive/internal/clock"
	"arrive/internal/db"
	"arrive/internal/entities"
	"arrive/internal/pricing"
)

type ReportRepository interface {
	ListOwnerBookings(ctx context.Context, ownerID string) ([]db.OwnerBookingRow, error)
	ListActiveListings(ctx context.Context, ownerID string) ([]db.Listing, error)
}

// ReportService is the read-only fold behind the owner dashboard. An
// unknown owner yields zeroed results, never an error.
type ReportService struct {
	Repo  ReportRepository
	Clock clock.Clock
}

func NewReportService(repo ReportRepository, clk clock.Clock) *ReportService {
	return &ReportService{Repo: repo, Clock: clk}
}

// OwnerDashboard summarizes a host's bookings and listings.
//
// Earnings count COMPLETED bookings only; confirmed-but-future revenue is
// excluded. bookingsNotStarted counts CONFIRMED bookings with a future
// start (PENDING requests are not yet commitments).
func (s *ReportService) OwnerDashboard(ctx context.Context, ownerID string) (entities.OwnerDashboard, error) {
	rows, err := s.Repo.ListOwnerBookings(ctx, ownerID)
	if err != nil {
		return entities.OwnerDashboard{}, fmt.Errorf("owner dashboard bookings: %w", err)
	}
	listings, err := s.Repo.ListActiveListings(ctx, ownerID)
	if err != nil {
		return entities.OwnerDashboard{}, fmt.Errorf("owner dashboard listings: %w", err)
	}

	now := s.Clock.Now()
	dashboard := entities.OwnerDashboard{TopActiveListings: []entities.ListingStat{}}

	earningsByListing := make(map[string]int64)
	var totalCents int64
	for _, row := range rows {
		switch row.Status {
		case db.BookingCompleted:
			totalCents += row.TotalPriceCents
			earningsByListing[row.SpaceID] += row.TotalPriceCents
		case db.BookingActive:
			dashboard.SpotsCurrentlyInUse++
		case db.BookingConfirmed:
			if row.StartTime.After(now) {
				dashboard.BookingsNotStarted++
			}
		}
	}
	dashboard.TotalEarningsAllTime = pricing.Dollars(totalCents)

	for _, l := range listings {
		dashboard.TopActiveListings = append(dashboard.TopActiveListings, entities.ListingStat{
			ListingID:        l.SpaceID,
			ListingName:      l.Title,
			LifetimeEarnings: pricing.Dollars(earningsByListing[l.SpaceID]),
		})
	}
	// Rank by lifetime earnings; ties break by listing id for determinism.
	sort.SliceStable(dashboard.TopActiveListings, func(i, j int) bool {
		a, b := dashboard.TopActiveListings[i], dashboard.TopActiveListings[j]
		if a.LifetimeEarnings != b.LifetimeEarnings {
			return a.LifetimeEarnings > b.LifetimeEarnings
		}
		return a.ListingID < b.ListingID
	})

	return dashboard, nil
}

// OwnerBookings lists every booking across the owner's listings with no
// status filtering.
func (s *ReportService) OwnerBookings(ctx context.Context, ownerID string) ([]entities.OwnerBooking, error) {
	rows, err := s.Repo.ListOwnerBookings(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("owner bookings: %w", err)
	}

	result := make([]entities.OwnerBooking, 0, len(rows))
	for _, row := range rows {
		result = append(result, entities.OwnerBooking{
			BookingID:         row.BookingID,
			CarModelName:      fmt.Sprintf("%d %s %s", row.VehicleYear, row.VehicleMake, row.VehicleModel),
			BookingStatus:     string(row.Status),
			BookingTotalPrice: pricing.Dollars(row.TotalPriceCents),
		})
	}
	return result, nil
}
