package service

import (
	"context"

	"github.com/google/uuid"

	"arrive/internal/clock"
	"arrive/internal/db"
	"arrive/internal/entities"
	apperrors "arrive/internal/errors"
	"arrive/internal/pricing"
)

type ListingRepository interface {
	CreateListing(ctx context.Context, l *db.Listing) error
	GetListing(ctx context.Context, spaceID string) (*db.Listing, error)
	ListListings(ctx context.Context, status string) ([]db.Listing, error)
	ListListingsByHost(ctx context.Context, hostID string) ([]db.Listing, error)
	UpdateListing(ctx context.Context, l *db.Listing) error
	DeactivateListing(ctx context.Context, spaceID, hostID string) error
}

type ListingService struct {
	Repo  ListingRepository
	Clock clock.Clock
}

func NewListingService(repo ListingRepository, clk clock.Clock) *ListingService {
	return &ListingService{Repo: repo, Clock: clk}
}

func (s *ListingService) CreateListing(ctx context.Context, hostID string, req entities.ListingRequest) (*db.Listing, error) {
	if req.HourlyRate < 0 || req.DailyRate < 0 {
		return nil, apperrors.ErrInvalidRate
	}
	status := req.Status
	if status == "" {
		status = db.ListingActive
	}

	now := s.Clock.Now()
	listing := &db.Listing{
		SpaceID:         uuid.New().String(),
		HostID:          hostID,
		Title:           req.Title,
		Address:         req.Address,
		Latitude:        req.Latitude,
		Longitude:       req.Longitude,
		SpaceType:       req.SpaceType,
		HourlyRateCents: pricing.Cents(req.HourlyRate),
		DailyRateCents:  pricing.Cents(req.DailyRate),
		Status:          status,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.Repo.CreateListing(ctx, listing); err != nil {
		return nil, err
	}
	return listing, nil
}

func (s *ListingService) GetListing(ctx context.Context, spaceID string) (*db.Listing, error) {
	return s.Repo.GetListing(ctx, spaceID)
}

func (s *ListingService) ListListings(ctx context.Context, status string) ([]db.Listing, error) {
	return s.Repo.ListListings(ctx, status)
}

func (s *ListingService) ListMyListings(ctx context.Context, hostID string) ([]db.Listing, error) {
	return s.Repo.ListListingsByHost(ctx, hostID)
}

func (s *ListingService) UpdateListing(ctx context.Context, hostID, spaceID string, req entities.ListingRequest) (*db.Listing, error) {
	if req.HourlyRate < 0 || req.DailyRate < 0 {
		return nil, apperrors.ErrInvalidRate
	}
	listing, err := s.Repo.GetListing(ctx, spaceID)
	if err != nil {
		return nil, err
	}
	if listing.HostID != hostID {
		return nil, apperrors.ErrNotFound
	}

	listing.Title = req.Title
	listing.Address = req.Address
	listing.Latitude = req.Latitude
	listing.Longitude = req.Longitude
	listing.SpaceType = req.SpaceType
	listing.HourlyRateCents = pricing.Cents(req.HourlyRate)
	listing.DailyRateCents = pricing.Cents(req.DailyRate)
	if req.Status != "" {
		listing.Status = req.Status
	}

	if err := s.Repo.UpdateListing(ctx, listing); err != nil {
		return nil, err
	}
	return listing, nil
}

// DeleteListing deactivates the listing instead of removing it, so its
// booking history survives.
func (s *ListingService) DeleteListing(ctx context.Context, hostID, spaceID string) error {
	return s.Repo.DeactivateListing(ctx, spaceID, hostID)
}
