package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rl1809/shareit/internal/core/domain"
	"github.com/rl1809/shareit/internal/port"
)

type Annotator struct {
	bookings port.BookingRepository
}

func NewAnnotator(bookings port.BookingRepository) *Annotator {
	return &Annotator{bookings: bookings}
}

// Annotate attaches last and next approved booking dates to each item using a
// single store query for the whole batch.
func (a *Annotator) Annotate(ctx context.Context, items []domain.Item, now time.Time) ([]domain.AnnotatedItem, error) {
	ids := make([]int64, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ID)
	}

	var bookings []domain.Booking
	if len(ids) > 0 {
		var err error
		bookings, err = a.bookings.ApprovedBookingsForItems(ctx, ids)
		if err != nil {
			return nil, fmt.Errorf("approved bookings: %w", err)
		}
	}
	return annotate(items, bookings, now), nil
}

func annotate(items []domain.Item, bookings []domain.Booking, now time.Time) []domain.AnnotatedItem {
	type window struct {
		last, next *time.Time
	}
	byItem := make(map[int64]*window, len(items))
	for i := range bookings {
		b := &bookings[i]
		if b.Status != domain.BookingStatusApproved {
			continue
		}
		w := byItem[b.ItemID]
		if w == nil {
			w = &window{}
			byItem[b.ItemID] = w
		}
		if b.End.Before(now) && (w.last == nil || b.End.After(*w.last)) {
			w.last = &b.End
		}
		if b.Start.After(now) && (w.next == nil || b.Start.Before(*w.next)) {
			w.next = &b.Start
		}
	}

	out := make([]domain.AnnotatedItem, 0, len(items))
	for _, it := range items {
		ai := domain.AnnotatedItem{Item: it}
		if w := byItem[it.ID]; w != nil {
			if w.last != nil {
				d := domain.DateOf(*w.last)
				ai.LastBooking = &d
			}
			if w.next != nil {
				d := domain.DateOf(*w.next)
				ai.NextBooking = &d
			}
		}
		out = append(out, ai)
	}
	return out
}
