package domain

import (
	"strings"
	"time"
)

// BookingState is a query-time view over status and time. It is never stored.
type BookingState string

const (
	StateAll      BookingState = "ALL"
	StateCurrent  BookingState = "CURRENT"
	StatePast     BookingState = "PAST"
	StateFuture   BookingState = "FUTURE"
	StateWaiting  BookingState = "WAITING"
	StateRejected BookingState = "REJECTED"
	StateApproved BookingState = "APPROVED"
)

// statePredicates is the single source of truth for classification.
// The SQL adapter keeps a clause for every key, checked by tests.
var statePredicates = map[BookingState]func(b *Booking, now time.Time) bool{
	StateAll: func(*Booking, time.Time) bool { return true },
	StateCurrent: func(b *Booking, now time.Time) bool {
		return !b.Start.After(now) && !b.End.Before(now)
	},
	StatePast:     func(b *Booking, now time.Time) bool { return b.End.Before(now) },
	StateFuture:   func(b *Booking, now time.Time) bool { return b.Start.After(now) },
	StateWaiting:  func(b *Booking, _ time.Time) bool { return b.Status == BookingStatusWaiting },
	StateRejected: func(b *Booking, _ time.Time) bool { return b.Status == BookingStatusRejected },
	StateApproved: func(b *Booking, _ time.Time) bool { return b.Status == BookingStatusApproved },
}

// BookingStates lists every state in display order.
func BookingStates() []BookingState {
	return []BookingState{StateAll, StateCurrent, StatePast, StateFuture, StateWaiting, StateRejected, StateApproved}
}

// ParseBookingState is case-insensitive; an empty string means ALL.
func ParseBookingState(s string) (BookingState, error) {
	if strings.TrimSpace(s) == "" {
		return StateAll, nil
	}
	st := BookingState(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := statePredicates[st]; !ok {
		return "", &ParseError{Field: "state", Value: s}
	}
	return st, nil
}

// Matches classifies b against the state at the given instant.
func (s BookingState) Matches(b *Booking, now time.Time) bool {
	pred, ok := statePredicates[s]
	if !ok {
		return false
	}
	return pred(b, now)
}

func (s BookingState) Valid() bool {
	_, ok := statePredicates[s]
	return ok
}
