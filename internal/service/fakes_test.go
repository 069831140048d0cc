package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"arrive/internal/db"
	"arrive/internal/entities"
	apperrors "arrive/internal/errors"
)

// fakeStore is an in-memory stand-in for the Postgres repositories. WithTx
// serializes callers with a mutex, which is enough to mirror the listing
// row lock the real repository takes.
type fakeStore struct {
	mu       sync.Mutex
	listings map[string]db.Listing
	bookings map[string]db.Booking
	vehicles map[string]db.Vehicle
	earnings []db.Earning
	users    map[string]db.User
	seq      int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		listings: map[string]db.Listing{},
		bookings: map[string]db.Booking{},
		vehicles: map[string]db.Vehicle{},
		users:    map[string]db.User{},
	}
}

func (f *fakeStore) addListing(l db.Listing) { f.listings[l.SpaceID] = l }
func (f *fakeStore) addUser(u db.User)       { f.users[u.UserID] = u }

func (f *fakeStore) addBooking(b db.Booking) {
	f.seq++
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Unix(int64(f.seq), 0)
	}
	f.bookings[b.BookingID] = b
}

func (f *fakeStore) addVehicle(v db.Vehicle) { f.vehicles[v.VehicleID] = v }

func (f *fakeStore) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return fn(ctx)
}

func (f *fakeStore) GetListingForUpdate(ctx context.Context, spaceID string) (*db.Listing, error) {
	l, ok := f.listings[spaceID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &l, nil
}

func (f *fakeStore) CountConflicting(ctx context.Context, spaceID string, start, end time.Time, excludeID string) (int, error) {
	n := 0
	for _, b := range f.bookings {
		if b.SpaceID != spaceID || b.BookingID == excludeID {
			continue
		}
		if b.Status != db.BookingConfirmed && b.Status != db.BookingActive {
			continue
		}
		if b.StartTime.Before(end) && b.EndTime.After(start) {
			n++
		}
	}
	return n, nil
}

func (f *fakeStore) CreateBooking(ctx context.Context, b *db.Booking) error {
	f.seq++
	stored := *b
	stored.CreatedAt = time.Unix(int64(f.seq), 0)
	f.bookings[b.BookingID] = stored
	return nil
}

func (f *fakeStore) GetBooking(ctx context.Context, id string) (*db.Booking, error) {
	b, ok := f.bookings[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &b, nil
}

func (f *fakeStore) ListBookingsByRenter(ctx context.Context, renterID string) ([]db.BookingListRow, error) {
	var rows []db.BookingListRow
	for _, b := range f.bookings {
		if b.RenterID == renterID {
			rows = append(rows, f.toListRow(b))
		}
	}
	return rows, nil
}

func (f *fakeStore) ListBookingsByHost(ctx context.Context, hostID string) ([]db.BookingListRow, error) {
	var rows []db.BookingListRow
	for _, b := range f.bookings {
		if l, ok := f.listings[b.SpaceID]; ok && l.HostID == hostID {
			rows = append(rows, f.toListRow(b))
		}
	}
	return rows, nil
}

func (f *fakeStore) toListRow(b db.Booking) db.BookingListRow {
	row := db.BookingListRow{Booking: b}
	if l, ok := f.listings[b.SpaceID]; ok {
		row.ListingTitle = l.Title
	}
	if v, ok := f.vehicles[b.VehicleID]; ok {
		row.LicensePlate = v.LicensePlate
		row.VehicleModel = v.Make + " " + v.Model
	}
	return row
}

func (f *fakeStore) UpdateBookingStatus(ctx context.Context, id string, status db.BookingStatus) error {
	b, ok := f.bookings[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	b.Status = status
	f.bookings[id] = b
	return nil
}

func (f *fakeStore) UpdateBookingWindow(ctx context.Context, id string, start, end time.Time, priceCents, feeCents int64) error {
	b, ok := f.bookings[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	b.StartTime = start
	b.EndTime = end
	b.TotalPriceCents = priceCents
	b.ServiceFeeCents = feeCents
	f.bookings[id] = b
	return nil
}

func (f *fakeStore) UpdateBookingPayment(ctx context.Context, id, paymentStatus, paymentIntentID string) error {
	b, ok := f.bookings[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	b.PaymentStatus = paymentStatus
	b.StripePaymentIntentID = paymentIntentID
	f.bookings[id] = b
	return nil
}

func (f *fakeStore) GetBookingByPaymentIntent(ctx context.Context, paymentIntentID string) (*db.Booking, error) {
	for _, b := range f.bookings {
		if b.StripePaymentIntentID == paymentIntentID {
			return &b, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (f *fakeStore) UpsertVehicle(ctx context.Context, v *db.Vehicle) error {
	for _, existing := range f.vehicles {
		if existing.OwnerID == v.OwnerID && existing.LicensePlate == v.LicensePlate {
			v.VehicleID = existing.VehicleID
			existing.Make = v.Make
			existing.Model = v.Model
			existing.Year = v.Year
			f.vehicles[existing.VehicleID] = existing
			return nil
		}
	}
	f.vehicles[v.VehicleID] = *v
	return nil
}

func (f *fakeStore) CreateEarning(ctx context.Context, e *db.Earning) error {
	f.earnings = append(f.earnings, *e)
	return nil
}

func (f *fakeStore) GetUserByID(ctx context.Context, id string) (*db.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &u, nil
}

func (f *fakeStore) GetUserByEmail(ctx context.Context, email string) (*db.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (f *fakeStore) CreateUser(ctx context.Context, u *db.User) error {
	f.users[u.UserID] = *u
	return nil
}

func (f *fakeStore) ListOwnerBookings(ctx context.Context, ownerID string) ([]db.OwnerBookingRow, error) {
	var rows []db.OwnerBookingRow
	for _, b := range f.bookings {
		l, ok := f.listings[b.SpaceID]
		if !ok || l.HostID != ownerID {
			continue
		}
		row := db.OwnerBookingRow{
			BookingID:       b.BookingID,
			SpaceID:         b.SpaceID,
			ListingTitle:    l.Title,
			ListingStatus:   l.Status,
			Status:          b.Status,
			TotalPriceCents: b.TotalPriceCents,
			StartTime:       b.StartTime,
			EndTime:         b.EndTime,
		}
		if v, ok := f.vehicles[b.VehicleID]; ok {
			row.VehicleYear = v.Year
			row.VehicleMake = v.Make
			row.VehicleModel = v.Model
		}
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool {
		return f.bookings[rows[i].BookingID].CreatedAt.Before(f.bookings[rows[j].BookingID].CreatedAt)
	})
	return rows, nil
}

func (f *fakeStore) ListActiveListings(ctx context.Context, ownerID string) ([]db.Listing, error) {
	var listings []db.Listing
	for _, l := range f.listings {
		if l.HostID == ownerID && l.Status == db.ListingActive {
			listings = append(listings, l)
		}
	}
	sort.Slice(listings, func(i, j int) bool { return listings[i].SpaceID < listings[j].SpaceID })
	return listings, nil
}

type fakePayments struct {
	intents []string
	refunds []string
	fail    bool
}

func (p *fakePayments) CreatePaymentIntent(amountCents int64, bookingID, receiptEmail string) (string, string, error) {
	if p.fail {
		return "", "", fmt.Errorf("stripe unavailable")
	}
	intentID := "pi_" + bookingID
	p.intents = append(p.intents, intentID)
	return "cs_" + bookingID, intentID, nil
}

func (p *fakePayments) RefundPaymentIntent(paymentIntentID string) error {
	p.refunds = append(p.refunds, paymentIntentID)
	return nil
}

type fakeNotifier struct {
	statuses []string
}

func (n *fakeNotifier) BookingStatusChanged(data entities.BookingEmailData, email, phone string) {
	n.statuses = append(n.statuses, data.Status)
}
