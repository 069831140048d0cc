package entities

// BookingEmailData feeds the booking notification email template.
type BookingEmailData struct {
	RenterName         string
	BookingID          string
	StartTimeFormatted string
	EndTimeFormatted   string
	Status             string
	CurrentYear        int
}
