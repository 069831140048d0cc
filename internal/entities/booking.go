package entities

import (
	"time"

	"arrive/internal/db"
	"arrive/internal/pricing"
)

type CreateBookingRequest struct {
	ListingID    string    `json:"listingId"`
	StartTime    time.Time `json:"startTime"`
	EndTime      time.Time `json:"endTime"`
	LicensePlate string    `json:"licensePlate"`
	VehicleModel string    `json:"vehicleModel"`
	VehicleMake  string    `json:"vehicleMake,omitempty"`
	VehicleYear  int       `json:"vehicleYear,omitempty"`
}

type UpdateBookingRequest struct {
	StartTime time.Time `json:"startTime"`
	EndTime   time.Time `json:"endTime"`
}

type BookingResponse struct {
	ID            string    `json:"id"`
	ListingID     string    `json:"listingId"`
	ListingTitle  string    `json:"listingTitle,omitempty"`
	RenterID      string    `json:"renterId"`
	StartTime     time.Time `json:"startTime"`
	EndTime       time.Time `json:"endTime"`
	TotalPrice    float64   `json:"totalPrice"`
	ServiceFee    float64   `json:"serviceFee"`
	Status        string    `json:"status"`
	PaymentStatus string    `json:"paymentStatus"`
	LicensePlate  string    `json:"licensePlate,omitempty"`
	VehicleModel  string    `json:"vehicleModel,omitempty"`
}

type CreateBookingResponse struct {
	Booking      BookingResponse `json:"booking"`
	ClientSecret string          `json:"clientSecret"`
}

// NewBookingResponse maps a stored booking to its API shape. Monetary
// amounts move from cents to dollars here and nowhere else.
func NewBookingResponse(b db.Booking) BookingResponse {
	return BookingResponse{
		ID:            b.BookingID,
		ListingID:     b.SpaceID,
		RenterID:      b.RenterID,
		StartTime:     b.StartTime,
		EndTime:       b.EndTime,
		TotalPrice:    pricing.Dollars(b.TotalPriceCents),
		ServiceFee:    pricing.Dollars(b.ServiceFeeCents),
		Status:        string(b.Status),
		PaymentStatus: b.PaymentStatus,
	}
}

// NewBookingListResponse maps a joined booking row, carrying the vehicle
// and listing fields the booking screens display.
func NewBookingListResponse(row db.BookingListRow) BookingResponse {
	resp := NewBookingResponse(row.Booking)
	resp.ListingTitle = row.ListingTitle
	resp.LicensePlate = row.LicensePlate
	resp.VehicleModel = row.VehicleModel
	return resp
}
