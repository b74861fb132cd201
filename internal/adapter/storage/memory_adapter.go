package storage

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rl1809/shareit/internal/core/domain"
	"github.com/rl1809/shareit/internal/port"
)

// MemoryAdapter keeps every entity in process. Bookings, items, comments and
// requests live in append-only arenas where the ID is the slot index plus one,
// so IDs are assigned monotonically and never reused.
type MemoryAdapter struct {
	mu       sync.RWMutex
	bookings []domain.Booking
	items    []domain.Item
	comments []domain.Comment
	requests []domain.ItemRequest
	users    map[int64]domain.User
	emails   map[string]int64
	userSeq  int64
}

func NewMemoryAdapter() *MemoryAdapter {
	return &MemoryAdapter{
		users:  make(map[int64]domain.User),
		emails: make(map[string]int64),
	}
}

// bookings

func (m *MemoryAdapter) CreateBooking(ctx context.Context, b *domain.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	b.ID = int64(len(m.bookings)) + 1
	stored := *b
	stored.ItemName, stored.OwnerID = "", 0
	m.bookings = append(m.bookings, stored)
	m.joinItem(b)
	return nil
}

func (m *MemoryAdapter) GetBooking(ctx context.Context, id int64) (*domain.Booking, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if id < 1 || id > int64(len(m.bookings)) {
		return nil, nil
	}
	b := m.bookings[id-1]
	m.joinItem(&b)
	return &b, nil
}

func (m *MemoryAdapter) TransitionStatus(ctx context.Context, id int64, from, to domain.BookingStatus) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if id < 1 || id > int64(len(m.bookings)) {
		return false, nil
	}
	b := &m.bookings[id-1]
	if b.Status != from {
		return false, nil
	}
	b.Status = to
	return true, nil
}

func (m *MemoryAdapter) ListBookings(ctx context.Context, q port.BookingQuery) ([]domain.Booking, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := []domain.Booking{}
	for _, b := range m.bookings {
		m.joinItem(&b)
		switch q.Scope {
		case domain.ScopeBooker:
			if b.BookerID != q.UserID {
				continue
			}
		case domain.ScopeOwner:
			if b.OwnerID != q.UserID {
				continue
			}
		default:
			continue
		}
		if !q.State.Matches(&b, q.Now) {
			continue
		}
		out = append(out, b)
	}
	sortByStartDesc(out)
	return out, nil
}

func (m *MemoryAdapter) ApprovedBookingsForItems(ctx context.Context, itemIDs []int64) ([]domain.Booking, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	wanted := idSet(itemIDs)
	out := []domain.Booking{}
	for _, b := range m.bookings {
		if b.Status != domain.BookingStatusApproved || !wanted[b.ItemID] {
			continue
		}
		m.joinItem(&b)
		out = append(out, b)
	}
	return out, nil
}

func (m *MemoryAdapter) HasFinishedBooking(ctx context.Context, q port.FinishedBookingQuery) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, b := range m.bookings {
		if b.BookerID != q.BookerID || b.ItemID != q.ItemID || !b.End.Before(q.Before) {
			continue
		}
		if len(q.Statuses) == 0 {
			return true, nil
		}
		for _, st := range q.Statuses {
			if b.Status == st {
				return true, nil
			}
		}
	}
	return false, nil
}

// joinItem fills the read-side item fields; callers hold the lock.
func (m *MemoryAdapter) joinItem(b *domain.Booking) {
	if b.ItemID < 1 || b.ItemID > int64(len(m.items)) {
		return
	}
	it := m.items[b.ItemID-1]
	b.ItemName = it.Name
	b.OwnerID = it.OwnerID
}

// items

func (m *MemoryAdapter) CreateItem(ctx context.Context, item *domain.Item) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	item.ID = int64(len(m.items)) + 1
	m.items = append(m.items, cloneItem(*item))
	return nil
}

func (m *MemoryAdapter) UpdateItem(ctx context.Context, item domain.Item) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if item.ID < 1 || item.ID > int64(len(m.items)) {
		return nil
	}
	stored := &m.items[item.ID-1]
	stored.Name = item.Name
	stored.Description = item.Description
	stored.Available = item.Available
	return nil
}

func (m *MemoryAdapter) GetItem(ctx context.Context, id int64) (*domain.Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if id < 1 || id > int64(len(m.items)) {
		return nil, nil
	}
	it := cloneItem(m.items[id-1])
	return &it, nil
}

func (m *MemoryAdapter) ListItemsByOwner(ctx context.Context, ownerID int64) ([]domain.Item, error) {
	return m.filterItems(func(it *domain.Item) bool { return it.OwnerID == ownerID }), nil
}

func (m *MemoryAdapter) CountItemsByOwner(ctx context.Context, ownerID int64) (int, error) {
	return len(m.filterItems(func(it *domain.Item) bool { return it.OwnerID == ownerID })), nil
}

func (m *MemoryAdapter) SearchItems(ctx context.Context, text string) ([]domain.Item, error) {
	needle := strings.ToLower(text)
	return m.filterItems(func(it *domain.Item) bool {
		return it.Available &&
			(strings.Contains(strings.ToLower(it.Name), needle) ||
				strings.Contains(strings.ToLower(it.Description), needle))
	}), nil
}

func (m *MemoryAdapter) ListItemsByRequests(ctx context.Context, requestIDs []int64) ([]domain.Item, error) {
	wanted := idSet(requestIDs)
	return m.filterItems(func(it *domain.Item) bool {
		return it.RequestID != nil && wanted[*it.RequestID]
	}), nil
}

func (m *MemoryAdapter) filterItems(keep func(*domain.Item) bool) []domain.Item {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := []domain.Item{}
	for i := range m.items {
		if keep(&m.items[i]) {
			out = append(out, cloneItem(m.items[i]))
		}
	}
	return out
}

func (m *MemoryAdapter) CreateComment(ctx context.Context, c *domain.Comment) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	c.ID = int64(len(m.comments)) + 1
	m.comments = append(m.comments, *c)
	return nil
}

func (m *MemoryAdapter) ListComments(ctx context.Context, itemIDs []int64) ([]domain.Comment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	wanted := idSet(itemIDs)
	out := []domain.Comment{}
	for _, c := range m.comments {
		if !wanted[c.ItemID] {
			continue
		}
		if u, ok := m.users[c.AuthorID]; ok {
			c.AuthorName = u.Name
		} else {
			c.AuthorName = ""
		}
		out = append(out, c)
	}
	return out, nil
}

// users

func (m *MemoryAdapter) CreateUser(ctx context.Context, u *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, taken := m.emails[u.Email]; taken {
		return port.ErrEmailTaken
	}
	m.userSeq++
	u.ID = m.userSeq
	m.users[u.ID] = *u
	m.emails[u.Email] = u.ID
	return nil
}

func (m *MemoryAdapter) UpdateUser(ctx context.Context, u domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	old, ok := m.users[u.ID]
	if !ok {
		return nil
	}
	if owner, taken := m.emails[u.Email]; taken && owner != u.ID {
		return port.ErrEmailTaken
	}
	delete(m.emails, old.Email)
	m.emails[u.Email] = u.ID
	m.users[u.ID] = u
	return nil
}

func (m *MemoryAdapter) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (m *MemoryAdapter) DeleteUser(ctx context.Context, id int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[id]
	if !ok {
		return false, nil
	}
	delete(m.users, id)
	delete(m.emails, u.Email)
	return true, nil
}

// requests

func (m *MemoryAdapter) CreateRequest(ctx context.Context, r *domain.ItemRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	r.ID = int64(len(m.requests)) + 1
	stored := *r
	stored.Items = nil
	m.requests = append(m.requests, stored)
	return nil
}

func (m *MemoryAdapter) GetRequest(ctx context.Context, id int64) (*domain.ItemRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if id < 1 || id > int64(len(m.requests)) {
		return nil, nil
	}
	r := m.requests[id-1]
	return &r, nil
}

func (m *MemoryAdapter) ListRequestsByRequestor(ctx context.Context, requestorID int64) ([]domain.ItemRequest, error) {
	return m.filterRequests(func(r *domain.ItemRequest) bool { return r.RequestorID == requestorID }), nil
}

func (m *MemoryAdapter) ListRequestsExcept(ctx context.Context, userID int64) ([]domain.ItemRequest, error) {
	return m.filterRequests(func(r *domain.ItemRequest) bool { return r.RequestorID != userID }), nil
}

func (m *MemoryAdapter) filterRequests(keep func(*domain.ItemRequest) bool) []domain.ItemRequest {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := []domain.ItemRequest{}
	for i := range m.requests {
		if keep(&m.requests[i]) {
			out = append(out, m.requests[i])
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Created.Equal(out[j].Created) {
			return out[i].Created.After(out[j].Created)
		}
		return out[i].ID > out[j].ID
	})
	return out
}

func sortByStartDesc(bookings []domain.Booking) {
	sort.SliceStable(bookings, func(i, j int) bool {
		if !bookings[i].Start.Equal(bookings[j].Start) {
			return bookings[i].Start.After(bookings[j].Start)
		}
		return bookings[i].ID > bookings[j].ID
	})
}

func cloneItem(it domain.Item) domain.Item {
	if it.RequestID != nil {
		id := *it.RequestID
		it.RequestID = &id
	}
	return it
}

func idSet(ids []int64) map[int64]bool {
	set := make(map[int64]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

// MemoryCache is the in-process CacheRepository used when no Redis is configured.
type MemoryCache struct {
	mu        sync.Mutex
	ttl       time.Duration
	keys      map[string]time.Time
	now       func() time.Time
	lastSweep time.Time
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{ttl: idempotencyKeyTTL, keys: make(map[string]time.Time), now: time.Now}
}

func (c *MemoryCache) SetIdempotency(ctx context.Context, key string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if exp, ok := c.keys[key]; ok && now.Before(exp) {
		return false, nil
	}
	c.sweep(now)
	c.keys[key] = now.Add(c.ttl)
	return true, nil
}

// sweep drops expired keys, at most once per ttl.
func (c *MemoryCache) sweep(now time.Time) {
	if now.Sub(c.lastSweep) < c.ttl {
		return
	}
	for key, exp := range c.keys {
		if !now.Before(exp) {
			delete(c.keys, key)
		}
	}
	c.lastSweep = now
}

func (c *MemoryCache) ReleaseIdempotency(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.keys, key)
	return nil
}
