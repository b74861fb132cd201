package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rl1809/shareit/internal/adapter/storage"
	"github.com/rl1809/shareit/internal/core/domain"
)

var fixedNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	store    *storage.MemoryAdapter
	cache    *storage.MemoryCache
	bookings *BookingService
	items    *ItemService
	users    *UserService
	requests *RequestService
	seq      int
}

func newFixture(t *testing.T, policy CommentPolicy) *fixture {
	t.Helper()
	store := storage.NewMemoryAdapter()
	cache := storage.NewMemoryCache()
	clock := WithClock(func() time.Time { return fixedNow })
	log := zap.NewNop()

	return &fixture{
		store:    store,
		cache:    cache,
		bookings: NewBookingService(store, store, store, cache, log, clock),
		items: NewItemService(store, store, store,
			NewAnnotator(store), NewCommentGate(store, policy), log, clock),
		users:    NewUserService(store, log),
		requests: NewRequestService(store, store, store, clock),
	}
}

func (f *fixture) user(t *testing.T, name string) domain.User {
	t.Helper()
	f.seq++
	u, err := f.users.CreateUser(context.Background(), domain.User{
		Name:  name,
		Email: fmt.Sprintf("%s-%d@test.local", name, f.seq),
	})
	require.NoError(t, err)
	return *u
}

func (f *fixture) item(t *testing.T, owner domain.User, available bool) domain.Item {
	t.Helper()
	it, err := f.items.CreateItem(context.Background(), owner.ID, domain.Item{
		Name:        "Drill",
		Description: "cordless drill",
		Available:   available,
	})
	require.NoError(t, err)
	return *it
}

// booking stores a booking directly, bypassing the reservation checks, so tests
// can place bookings in the past.
func (f *fixture) booking(t *testing.T, booker domain.User, item domain.Item, start, end time.Time, status domain.BookingStatus) domain.Booking {
	t.Helper()
	b := domain.Booking{
		Start:    start,
		End:      end,
		ItemID:   item.ID,
		BookerID: booker.ID,
		Status:   status,
		Created:  fixedNow,
	}
	require.NoError(t, f.store.CreateBooking(context.Background(), &b))
	return b
}
