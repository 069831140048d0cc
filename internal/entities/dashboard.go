package entities

// Owner dashboard shapes. Field names follow the GraphQL schema exactly.

type ListingStat struct {
	ListingID        string  `json:"listingId"`
	ListingName      string  `json:"listingName"`
	LifetimeEarnings float64 `json:"lifetimeEarnings"`
}

type OwnerDashboard struct {
	TotalEarningsAllTime float64       `json:"totalEarningsAllTime"`
	SpotsCurrentlyInUse  int           `json:"spotsCurrentlyInUse"`
	BookingsNotStarted   int           `json:"bookingsNotStarted"`
	TopActiveListings    []ListingStat `json:"topActiveListings"`
}

type OwnerBooking struct {
	BookingID         string  `json:"bookingId"`
	CarModelName      string  `json:"carModelName"`
	BookingStatus     string  `json:"bookingStatus"`
	BookingTotalPrice float64 `json:"bookingTotalPrice"`
}
