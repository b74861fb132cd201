package domain

import "time"

type BookingStatus string

const (
	BookingStatusWaiting  BookingStatus = "WAITING"
	BookingStatusApproved BookingStatus = "APPROVED"
	BookingStatusRejected BookingStatus = "REJECTED"
)

type Booking struct {
	ID       int64
	Start    time.Time
	End      time.Time
	ItemID   int64
	ItemName string // joined from items on read
	OwnerID  int64  // joined from items on read
	BookerID int64
	Status   BookingStatus
	Created  time.Time
}

// NewBooking is the input of a reservation request.
type NewBooking struct {
	ItemID     int64
	BookerID   int64
	Start      time.Time
	End        time.Time
	RequestKey string // optional idempotency key
}

// BookingScope selects whose bookings a listing returns.
type BookingScope string

const (
	ScopeBooker BookingScope = "booker"
	ScopeOwner  BookingScope = "owner"
)

// Involves reports whether userID booked the item or owns it.
func (b *Booking) Involves(userID int64) bool {
	return b.BookerID == userID || b.OwnerID == userID
}
