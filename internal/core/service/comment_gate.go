package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rl1809/shareit/internal/core/domain"
	"github.com/rl1809/shareit/internal/port"
)

var ErrCommentNotAllowed = domain.NewError(domain.ErrValidation, "user did not complete a booking for this item")

// CommentPolicy decides which finished bookings let a user comment on an item.
type CommentPolicy string

const (
	// CommentPolicyApproved counts only approved bookings.
	CommentPolicyApproved CommentPolicy = "approved"
	// CommentPolicyAny counts a finished booking in any status, including rejected.
	CommentPolicyAny CommentPolicy = "any"
)

func ParseCommentPolicy(s string) (CommentPolicy, error) {
	switch p := CommentPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return CommentPolicyApproved, nil
	case CommentPolicyApproved, CommentPolicyAny:
		return p, nil
	default:
		return "", &domain.ParseError{Field: "comment policy", Value: s}
	}
}

type CommentGate struct {
	bookings port.BookingRepository
	policy   CommentPolicy
}

func NewCommentGate(bookings port.BookingRepository, policy CommentPolicy) *CommentGate {
	if policy == "" {
		policy = CommentPolicyApproved
	}
	return &CommentGate{bookings: bookings, policy: policy}
}

func (g *CommentGate) Policy() CommentPolicy { return g.policy }

func (g *CommentGate) CanComment(ctx context.Context, userID, itemID int64, now time.Time) (bool, error) {
	q := port.FinishedBookingQuery{BookerID: userID, ItemID: itemID, Before: now}
	if g.policy == CommentPolicyApproved {
		q.Statuses = []domain.BookingStatus{domain.BookingStatusApproved}
	}
	ok, err := g.bookings.HasFinishedBooking(ctx, q)
	if err != nil {
		return false, fmt.Errorf("finished booking lookup: %w", err)
	}
	return ok, nil
}
