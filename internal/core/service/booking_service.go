package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/rl1809/shareit/internal/core/domain"
	"github.com/rl1809/shareit/internal/port"
)

var (
	ErrDuplicateRequest = domain.NewError(domain.ErrConflict, "duplicate request")
	ErrInvalidRange     = domain.NewError(domain.ErrValidation, "end date must be after start date")
	ErrItemUnavailable  = domain.NewError(domain.ErrValidation, "item not available for booking")
	ErrNotItemOwner     = domain.NewError(domain.ErrForbidden, "only the item owner can confirm a booking")
	ErrAlreadyDecided   = domain.NewError(domain.ErrConflict, "booking already decided")
	ErrNoOwnedItems     = domain.NewError(domain.ErrNotFound, "user has no items")
)

// BookingService owns the booking lifecycle: reservation, owner decision and
// authorized reads.
type BookingService struct {
	bookings port.BookingRepository
	items    port.ItemRepository
	users    port.UserRepository
	cache    port.CacheRepository
	log      *zap.Logger
	now      func() time.Time
}

func NewBookingService(
	bookings port.BookingRepository,
	items port.ItemRepository,
	users port.UserRepository,
	cache port.CacheRepository,
	log *zap.Logger,
	opts ...Option,
) *BookingService {
	o := applyOptions(opts)
	return &BookingService{
		bookings: bookings,
		items:    items,
		users:    users,
		cache:    cache,
		log:      log,
		now:      o.now,
	}
}

func (s *BookingService) CreateBooking(ctx context.Context, req domain.NewBooking) (*domain.Booking, error) {
	if !req.End.After(req.Start) {
		return nil, ErrInvalidRange
	}
	if _, err := requireUser(ctx, s.users, req.BookerID); err != nil {
		return nil, err
	}

	item, err := s.items.GetItem(ctx, req.ItemID)
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	if item == nil {
		return nil, domain.NewError(domain.ErrNotFound, "item %d not found", req.ItemID)
	}
	if !item.Available {
		return nil, ErrItemUnavailable
	}

	var idempotencyKey string
	if req.RequestKey != "" {
		idempotencyKey = fmt.Sprintf("booking:%d:%s", req.BookerID, req.RequestKey)
		ok, err := s.cache.SetIdempotency(ctx, idempotencyKey)
		if err != nil {
			return nil, fmt.Errorf("idempotency check failed: %w", err)
		}
		if !ok {
			return nil, ErrDuplicateRequest
		}
	}

	booking := &domain.Booking{
		Start:    req.Start,
		End:      req.End,
		ItemID:   item.ID,
		ItemName: item.Name,
		OwnerID:  item.OwnerID,
		BookerID: req.BookerID,
		Status:   domain.BookingStatusWaiting,
		Created:  s.now(),
	}
	if err := s.bookings.CreateBooking(ctx, booking); err != nil {
		if idempotencyKey != "" {
			if rollbackErr := s.cache.ReleaseIdempotency(ctx, idempotencyKey); rollbackErr != nil {
				s.log.Error("release idempotency key failed",
					zap.String("key", idempotencyKey), zap.Error(rollbackErr))
			}
		}
		return nil, fmt.Errorf("create booking: %w", err)
	}

	s.log.Debug("booking created",
		zap.Int64("booking_id", booking.ID),
		zap.Int64("item_id", booking.ItemID),
		zap.Int64("booker_id", booking.BookerID))
	return booking, nil
}

// ConfirmBooking approves or rejects a waiting booking on behalf of the item owner.
// The status change is a single compare-and-set, so of two concurrent decisions
// exactly one wins and the other gets ErrAlreadyDecided.
func (s *BookingService) ConfirmBooking(ctx context.Context, bookingID, actorID int64, approve bool) (*domain.Booking, error) {
	booking, err := s.bookings.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("get booking: %w", err)
	}
	if booking == nil {
		return nil, bookingNotFound(bookingID)
	}
	if booking.OwnerID != actorID {
		return nil, ErrNotItemOwner
	}

	to := domain.BookingStatusRejected
	if approve {
		to = domain.BookingStatusApproved
	}

	ok, err := s.bookings.TransitionStatus(ctx, bookingID, domain.BookingStatusWaiting, to)
	if err != nil {
		return nil, fmt.Errorf("transition booking: %w", err)
	}
	if !ok {
		return nil, ErrAlreadyDecided
	}

	booking.Status = to
	s.log.Debug("booking decided",
		zap.Int64("booking_id", bookingID),
		zap.Int64("owner_id", actorID),
		zap.String("status", string(to)))
	return booking, nil
}

// GetBooking hides bookings the actor is not part of behind the same not-found
// error a missing booking produces.
func (s *BookingService) GetBooking(ctx context.Context, bookingID, actorID int64) (*domain.Booking, error) {
	booking, err := s.bookings.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("get booking: %w", err)
	}
	if booking == nil || !booking.Involves(actorID) {
		return nil, bookingNotFound(bookingID)
	}
	return booking, nil
}

func bookingNotFound(id int64) error {
	return domain.NewError(domain.ErrNotFound, "booking %d not found", id)
}

func requireUser(ctx context.Context, users port.UserRepository, id int64) (*domain.User, error) {
	user, err := users.GetUser(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		return nil, domain.NewError(domain.ErrNotFound, "user %d not found", id)
	}
	return user, nil
}
