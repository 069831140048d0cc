package entities

import (
	"arrive/internal/db"
	"arrive/internal/pricing"
)

type ListingRequest struct {
	Title      string  `json:"title"`
	Address    string  `json:"address"`
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
	SpaceType  string  `json:"spaceType"`
	HourlyRate float64 `json:"hourlyRate"`
	DailyRate  float64 `json:"dailyRate"`
	Status     string  `json:"status,omitempty"`
}

type ListingResponse struct {
	ID         string  `json:"id"`
	HostID     string  `json:"hostId"`
	Title      string  `json:"title"`
	Address    string  `json:"address"`
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
	SpaceType  string  `json:"spaceType"`
	HourlyRate float64 `json:"hourlyRate"`
	DailyRate  float64 `json:"dailyRate"`
	Status     string  `json:"status"`
}

func NewListingResponse(l db.Listing) ListingResponse {
	return ListingResponse{
		ID:         l.SpaceID,
		HostID:     l.HostID,
		Title:      l.Title,
		Address:    l.Address,
		Latitude:   l.Latitude,
		Longitude:  l.Longitude,
		SpaceType:  l.SpaceType,
		HourlyRate: pricing.Dollars(l.HourlyRateCents),
		DailyRate:  pricing.Dollars(l.DailyRateCents),
		Status:     l.Status,
	}
}
