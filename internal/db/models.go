package db

import "time"

// Booking status values form a strict state machine:
// PENDING -> CONFIRMED -> ACTIVE -> COMPLETED, with CANCELLED reachable
// from PENDING or CONFIRMED only.
type BookingStatus string

const (
	BookingPending   BookingStatus = "PENDING"
	BookingConfirmed BookingStatus = "CONFIRMED"
	BookingActive    BookingStatus = "ACTIVE"
	BookingCompleted BookingStatus = "COMPLETED"
	BookingCancelled BookingStatus = "CANCELLED"
)

// CanTransitionTo reports whether the state machine permits moving from s
// to next. COMPLETED and CANCELLED are terminal.
func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	switch s {
	case BookingPending:
		return next == BookingConfirmed || next == BookingCancelled
	case BookingConfirmed:
		return next == BookingActive || next == BookingCancelled
	case BookingActive:
		return next == BookingCompleted
	default:
		return false
	}
}

// Payment status is an independent axis from booking status.
const (
	PaymentPending  = "pending"
	PaymentPaid     = "paid"
	PaymentRefunded = "refunded"
)

// Listing status values as used by the marketplace.
const (
	ListingActive   = "active"
	ListingPending  = "pending"
	ListingDraft    = "draft"
	ListingInactive = "inactive"
)

type User struct {
	UserID       string
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	PhoneNumber  string
	CreatedAt    time.Time
}

// Listing is a parking space offered by a host. SpaceID is the primary key
// that bookings reference; REST payloads call it listingId.
type Listing struct {
	SpaceID         string
	HostID          string
	Title           string
	Address         string
	Latitude        float64
	Longitude       float64
	SpaceType       string
	HourlyRateCents int64
	DailyRateCents  int64
	Status          string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type Vehicle struct {
	VehicleID    string
	OwnerID      string
	Make         string
	Model        string
	Year         int
	LicensePlate string
}

type Booking struct {
	BookingID             string
	SpaceID               string
	RenterID              string
	VehicleID             string
	StartTime             time.Time
	EndTime               time.Time
	TotalPriceCents       int64
	ServiceFeeCents       int64
	Status                BookingStatus
	PaymentStatus         string
	StripePaymentIntentID string
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// Earning ties a completed booking to a host payout.
type Earning struct {
	EarningID   string
	BookingID   string
	HostID      string
	AmountCents int64
	Status      string
	PayoutDate  *time.Time
	CreatedAt   time.Time
}

// Earning status values.
const (
	EarningPending = "pending"
	EarningPaid    = "paid"
)

// BookingListRow is a booking joined with its vehicle and listing title for
// list endpoints.
type BookingListRow struct {
	Booking
	LicensePlate string
	VehicleModel string
	ListingTitle string
}

// OwnerBookingRow is a booking joined with its listing and vehicle, as the
// owner reporter consumes it.
type OwnerBookingRow struct {
	BookingID       string
	SpaceID         string
	ListingTitle    string
	ListingStatus   string
	Status          BookingStatus
	TotalPriceCents int64
	StartTime       time.Time
	EndTime         time.Time
	VehicleYear     int
	VehicleMake     string
	VehicleModel    string
}
