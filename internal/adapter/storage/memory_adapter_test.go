package storage

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rl1809/shareit/internal/core/domain"
	"github.com/rl1809/shareit/internal/port"
)

func TestMemoryBooking_IDsAreSequential(t *testing.T) {
	m := NewMemoryAdapter()
	ctx := context.Background()
	start := time.Now().Add(time.Hour)

	_, booker, item, first := seedBooking(t, m, start, start.Add(time.Hour), domain.BookingStatusWaiting)
	second := domain.Booking{Start: start, End: start.Add(time.Hour), ItemID: item.ID, BookerID: booker.ID, Status: domain.BookingStatusWaiting}
	if err := m.CreateBooking(ctx, &second); err != nil {
		t.Fatalf("CreateBooking failed: %v", err)
	}

	if first.ID != 1 || second.ID != 2 {
		t.Errorf("expected ids 1 and 2, got %d and %d", first.ID, second.ID)
	}
	if second.ItemName != item.Name {
		t.Errorf("expected joined item name %q, got %q", item.Name, second.ItemName)
	}
}

func TestMemoryBooking_GetOutOfRange(t *testing.T) {
	m := NewMemoryAdapter()

	for _, id := range []int64{-1, 0, 1, 99} {
		got, err := m.GetBooking(context.Background(), id)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != nil {
			t.Errorf("expected nil for id %d", id)
		}
	}
}

func TestMemoryBooking_TransitionStatusConcurrent(t *testing.T) {
	m := NewMemoryAdapter()
	ctx := context.Background()
	start := time.Now().Add(time.Hour)
	_, _, _, booking := seedBooking(t, m, start, start.Add(time.Hour), domain.BookingStatusWaiting)

	var successCount atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, _ := m.TransitionStatus(ctx, booking.ID, domain.BookingStatusWaiting, domain.BookingStatusApproved)
			if ok {
				successCount.Add(1)
			}
		}()
	}
	wg.Wait()

	if successCount.Load() != 1 {
		t.Errorf("expected exactly 1 transition, got %d", successCount.Load())
	}
}

func TestMemoryBooking_ListSortedAndScoped(t *testing.T) {
	m := NewMemoryAdapter()
	ctx := context.Background()
	now := time.Now()

	owner, booker, item, early := seedBooking(t, m, now.Add(time.Hour), now.Add(2*time.Hour), domain.BookingStatusWaiting)
	late := domain.Booking{Start: now.Add(5 * time.Hour), End: now.Add(6 * time.Hour), ItemID: item.ID, BookerID: booker.ID, Status: domain.BookingStatusWaiting}
	tie := domain.Booking{Start: now.Add(5 * time.Hour), End: now.Add(7 * time.Hour), ItemID: item.ID, BookerID: booker.ID, Status: domain.BookingStatusWaiting}
	for _, b := range []*domain.Booking{&late, &tie} {
		if err := m.CreateBooking(ctx, b); err != nil {
			t.Fatalf("CreateBooking failed: %v", err)
		}
	}

	got, err := m.ListBookings(ctx, port.BookingQuery{UserID: booker.ID, Scope: domain.ScopeBooker, State: domain.StateAll, Now: now})
	if err != nil {
		t.Fatalf("ListBookings failed: %v", err)
	}
	want := []int64{tie.ID, late.ID, early.ID}
	if len(got) != len(want) {
		t.Fatalf("expected %d bookings, got %d", len(want), len(got))
	}
	for i, id := range want {
		if got[i].ID != id {
			t.Errorf("position %d: expected id %d, got %d", i, id, got[i].ID)
		}
	}

	asOwner, _ := m.ListBookings(ctx, port.BookingQuery{UserID: owner.ID, Scope: domain.ScopeOwner, State: domain.StateFuture, Now: now})
	if len(asOwner) != 3 {
		t.Errorf("expected owner to see 3 bookings, got %d", len(asOwner))
	}
	asBooker, _ := m.ListBookings(ctx, port.BookingQuery{UserID: owner.ID, Scope: domain.ScopeBooker, State: domain.StateAll, Now: now})
	if len(asBooker) != 0 {
		t.Errorf("expected owner to have no bookings as booker, got %d", len(asBooker))
	}
}

func TestMemoryBooking_ApprovedBookingsForItems(t *testing.T) {
	m := NewMemoryAdapter()
	ctx := context.Background()
	now := time.Now()

	_, _, item, waiting := seedBooking(t, m, now.Add(time.Hour), now.Add(2*time.Hour), domain.BookingStatusWaiting)
	approved := domain.Booking{Start: now.Add(3 * time.Hour), End: now.Add(4 * time.Hour), ItemID: item.ID, BookerID: waiting.BookerID, Status: domain.BookingStatusApproved}
	if err := m.CreateBooking(ctx, &approved); err != nil {
		t.Fatalf("CreateBooking failed: %v", err)
	}

	got, err := m.ApprovedBookingsForItems(ctx, []int64{item.ID})
	if err != nil {
		t.Fatalf("ApprovedBookingsForItems failed: %v", err)
	}
	if len(got) != 1 || got[0].ID != approved.ID {
		t.Errorf("expected only approved booking, got %+v", got)
	}
}

func TestMemoryBooking_HasFinishedBooking(t *testing.T) {
	m := NewMemoryAdapter()
	ctx := context.Background()
	now := time.Now()

	_, booker, item, _ := seedBooking(t, m, now.Add(-2*time.Hour), now.Add(-time.Hour), domain.BookingStatusRejected)

	q := port.FinishedBookingQuery{BookerID: booker.ID, ItemID: item.ID, Before: now}
	ok, _ := m.HasFinishedBooking(ctx, q)
	if !ok {
		t.Error("expected finished booking in any status")
	}

	q.Statuses = []domain.BookingStatus{domain.BookingStatusApproved}
	ok, _ = m.HasFinishedBooking(ctx, q)
	if ok {
		t.Error("rejected booking must not count when only approved are accepted")
	}

	q.Statuses = nil
	q.Before = now.Add(-90 * time.Minute)
	ok, _ = m.HasFinishedBooking(ctx, q)
	if ok {
		t.Error("booking ending after the cutoff must not count")
	}
}

func TestMemoryUser_EmailUnique(t *testing.T) {
	m := NewMemoryAdapter()
	ctx := context.Background()

	a := domain.User{Name: "a", Email: "a@test.local"}
	b := domain.User{Name: "b", Email: "b@test.local"}
	if err := m.CreateUser(ctx, &a); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	if err := m.CreateUser(ctx, &b); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	if err := m.CreateUser(ctx, &domain.User{Name: "c", Email: "a@test.local"}); err != port.ErrEmailTaken {
		t.Errorf("expected ErrEmailTaken, got %v", err)
	}

	b.Email = "a@test.local"
	if err := m.UpdateUser(ctx, b); err != port.ErrEmailTaken {
		t.Errorf("expected ErrEmailTaken on update, got %v", err)
	}

	ok, err := m.DeleteUser(ctx, a.ID)
	if err != nil || !ok {
		t.Fatalf("DeleteUser failed: %v %v", ok, err)
	}
	if err := m.UpdateUser(ctx, b); err != nil {
		t.Errorf("expected freed email to be reusable, got %v", err)
	}
	ok, _ = m.DeleteUser(ctx, a.ID)
	if ok {
		t.Error("expected second delete to report missing user")
	}
}

func TestMemoryItem_SearchAvailableOnly(t *testing.T) {
	m := NewMemoryAdapter()
	ctx := context.Background()

	for _, it := range []domain.Item{
		{Name: "Drill", Description: "cordless", Available: true, OwnerID: 1},
		{Name: "Saw", Description: "a drill bit set", Available: true, OwnerID: 1},
		{Name: "Drill press", Description: "heavy", Available: false, OwnerID: 1},
	} {
		it := it
		if err := m.CreateItem(ctx, &it); err != nil {
			t.Fatalf("CreateItem failed: %v", err)
		}
	}

	got, _ := m.SearchItems(ctx, "DRILL")
	if len(got) != 2 {
		t.Errorf("expected 2 available matches, got %d", len(got))
	}
}

func TestMemoryRequest_ListNewestFirst(t *testing.T) {
	m := NewMemoryAdapter()
	ctx := context.Background()
	now := time.Now()

	old := domain.ItemRequest{Description: "old", RequestorID: 1, Created: now.Add(-time.Hour)}
	recent := domain.ItemRequest{Description: "recent", RequestorID: 1, Created: now}
	other := domain.ItemRequest{Description: "other", RequestorID: 2, Created: now}
	for _, r := range []*domain.ItemRequest{&old, &recent, &other} {
		if err := m.CreateRequest(ctx, r); err != nil {
			t.Fatalf("CreateRequest failed: %v", err)
		}
	}

	own, _ := m.ListRequestsByRequestor(ctx, 1)
	if len(own) != 2 || own[0].ID != recent.ID || own[1].ID != old.ID {
		t.Errorf("unexpected order: %+v", own)
	}
	others, _ := m.ListRequestsExcept(ctx, 1)
	if len(others) != 1 || others[0].ID != other.ID {
		t.Errorf("unexpected others: %+v", others)
	}
}

func TestMemoryCache_Idempotency(t *testing.T) {
	c := NewMemoryCache()
	now := time.Now()
	c.now = func() time.Time { return now }
	ctx := context.Background()

	if ok, _ := c.SetIdempotency(ctx, "k"); !ok {
		t.Fatal("expected first set to succeed")
	}
	if ok, _ := c.SetIdempotency(ctx, "k"); ok {
		t.Error("expected duplicate set to fail")
	}

	now = now.Add(idempotencyKeyTTL + time.Second)
	if ok, _ := c.SetIdempotency(ctx, "k"); !ok {
		t.Error("expected expired key to be reusable")
	}

	if err := c.ReleaseIdempotency(ctx, "k"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok, _ := c.SetIdempotency(ctx, "k"); !ok {
		t.Error("expected released key to be reusable")
	}
}

func TestMemoryCache_ExpiredKeysAreSwept(t *testing.T) {
	c := NewMemoryCache()
	now := time.Now()
	c.now = func() time.Time { return now }
	ctx := context.Background()

	for _, key := range []string{"a", "b", "c"} {
		if ok, _ := c.SetIdempotency(ctx, key); !ok {
			t.Fatalf("expected set of %q to succeed", key)
		}
	}

	now = now.Add(idempotencyKeyTTL + time.Second)
	if ok, _ := c.SetIdempotency(ctx, "d"); !ok {
		t.Fatal("expected set of a fresh key to succeed")
	}
	if len(c.keys) != 1 {
		t.Errorf("expected expired keys to be dropped, %d left", len(c.keys))
	}
}

func TestMemoryComment_AuthorNameFollowsUser(t *testing.T) {
	m := NewMemoryAdapter()
	ctx := context.Background()

	author := domain.User{Name: "before", Email: "author@test.local"}
	if err := m.CreateUser(ctx, &author); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	c := domain.Comment{Text: "great", ItemID: 1, AuthorID: author.ID, AuthorName: author.Name, Created: time.Now()}
	if err := m.CreateComment(ctx, &c); err != nil {
		t.Fatalf("CreateComment failed: %v", err)
	}

	author.Name = "after"
	if err := m.UpdateUser(ctx, author); err != nil {
		t.Fatalf("UpdateUser failed: %v", err)
	}
	got, _ := m.ListComments(ctx, []int64{1})
	if len(got) != 1 || got[0].AuthorName != "after" {
		t.Errorf("expected current author name, got %+v", got)
	}

	if _, err := m.DeleteUser(ctx, author.ID); err != nil {
		t.Fatalf("DeleteUser failed: %v", err)
	}
	got, _ = m.ListComments(ctx, []int64{1})
	if len(got) != 1 || got[0].AuthorName != "" {
		t.Errorf("expected empty author name after delete, got %+v", got)
	}
}
