package service

import (
	"context"
	"fmt"

	"github.com/rl1809/shareit/internal/core/domain"
	"github.com/rl1809/shareit/internal/port"
)

// ListBookings classifies the user's bookings, as booker or as item owner, into
// the requested state. "Now" is taken once so that a booking on the boundary
// lands in exactly one of PAST, CURRENT and FUTURE.
func (s *BookingService) ListBookings(ctx context.Context, state domain.BookingState, userID int64, scope domain.BookingScope) ([]domain.Booking, error) {
	if state == "" {
		state = domain.StateAll
	}
	if !state.Valid() {
		return nil, &domain.ParseError{Field: "state", Value: string(state)}
	}
	if _, err := requireUser(ctx, s.users, userID); err != nil {
		return nil, err
	}

	switch scope {
	case domain.ScopeBooker:
	case domain.ScopeOwner:
		n, err := s.items.CountItemsByOwner(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("count items: %w", err)
		}
		if n == 0 {
			return nil, ErrNoOwnedItems
		}
	default:
		return nil, &domain.ParseError{Field: "scope", Value: string(scope)}
	}

	bookings, err := s.bookings.ListBookings(ctx, port.BookingQuery{
		UserID: userID,
		Scope:  scope,
		State:  state,
		Now:    s.now(),
	})
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	return bookings, nil
}
