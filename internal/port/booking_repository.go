package port

import (
	"context"
	"time"

	"github.com/rl1809/shareit/internal/core/domain"
)

// BookingQuery selects bookings of one user in one scope, classified at Now.
type BookingQuery struct {
	UserID int64
	Scope  domain.BookingScope
	State  domain.BookingState
	Now    time.Time
}

// FinishedBookingQuery matches bookings of BookerID on ItemID that ended before Before.
// An empty Statuses slice matches any status.
type FinishedBookingQuery struct {
	BookerID int64
	ItemID   int64
	Before   time.Time
	Statuses []domain.BookingStatus
}

type BookingRepository interface {
	// CreateBooking persists a new booking and assigns its ID
	CreateBooking(ctx context.Context, booking *domain.Booking) error

	// GetBooking retrieves a booking with its item name and owner, nil if absent
	GetBooking(ctx context.Context, id int64) (*domain.Booking, error)

	// TransitionStatus atomically moves a booking from one status to another,
	// returns false if the stored status is not from
	TransitionStatus(ctx context.Context, id int64, from, to domain.BookingStatus) (bool, error)

	// ListBookings returns bookings matching the query sorted by start descending
	ListBookings(ctx context.Context, q BookingQuery) ([]domain.Booking, error)

	// ApprovedBookingsForItems returns every approved booking of the given items in one pass
	ApprovedBookingsForItems(ctx context.Context, itemIDs []int64) ([]domain.Booking, error)

	// HasFinishedBooking reports whether any booking matches the query
	HasFinishedBooking(ctx context.Context, q FinishedBookingQuery) (bool, error)
}
