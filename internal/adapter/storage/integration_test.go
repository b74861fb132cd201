package storage_test

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/rl1809/shareit/internal/adapter/storage"
	"github.com/rl1809/shareit/internal/core/domain"
	"github.com/rl1809/shareit/internal/core/service"
)

type testEnv struct {
	db       *storage.MySQLAdapter
	bookings *service.BookingService
	items    *service.ItemService
	users    *service.UserService
}

func setupTestEnv(t *testing.T) *testEnv {
	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}

	mysqlDSN := os.Getenv("MYSQL_DSN")
	if mysqlDSN == "" {
		mysqlDSN = "root:root@tcp(localhost:3306)/shareit?parseTime=true"
	}

	rdb := redis.NewClient(&redis.Options{Addr: redisAddr})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		t.Skipf("Redis not available: %v", err)
	}

	db, err := sql.Open("mysql", mysqlDSN)
	if err != nil {
		t.Skipf("MySQL not available: %v", err)
	}
	if err := db.Ping(); err != nil {
		rdb.Close()
		t.Skipf("MySQL not available: %v", err)
	}
	t.Cleanup(func() {
		rdb.Close()
		db.Close()
	})

	adapter := storage.NewMySQLAdapter(db)
	if err := adapter.Migrate(context.Background()); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	cache := storage.NewRedisAdapter(rdb)
	log := zap.NewNop()

	return &testEnv{
		db:       adapter,
		bookings: service.NewBookingService(adapter, adapter, adapter, cache, log),
		items: service.NewItemService(adapter, adapter, adapter,
			service.NewAnnotator(adapter), service.NewCommentGate(adapter, service.CommentPolicyApproved), log),
		users: service.NewUserService(adapter, log),
	}
}

func (e *testEnv) user(t *testing.T, name string) *domain.User {
	t.Helper()
	u, err := e.users.CreateUser(context.Background(), domain.User{
		Name:  name,
		Email: fmt.Sprintf("%s-%s@it.local", name, uuid.NewString()),
	})
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	return u
}

func TestIntegration_BookingLifecycle(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	owner, booker := env.user(t, "owner"), env.user(t, "booker")
	item, err := env.items.CreateItem(ctx, owner.ID, domain.Item{Name: "Tent", Description: "four season tent", Available: true})
	if err != nil {
		t.Fatalf("CreateItem failed: %v", err)
	}

	start := time.Now().Add(time.Hour)
	key := uuid.NewString()
	req := domain.NewBooking{ItemID: item.ID, BookerID: booker.ID, Start: start, End: start.Add(time.Hour), RequestKey: key}

	booking, err := env.bookings.CreateBooking(ctx, req)
	if err != nil {
		t.Fatalf("CreateBooking failed: %v", err)
	}
	if _, err := env.bookings.CreateBooking(ctx, req); !errors.Is(err, service.ErrDuplicateRequest) {
		t.Errorf("expected ErrDuplicateRequest, got: %v", err)
	}

	// Read-your-writes: the booking is visible straight away.
	got, err := env.bookings.GetBooking(ctx, booking.ID, owner.ID)
	if err != nil {
		t.Fatalf("GetBooking failed: %v", err)
	}
	if got.Status != domain.BookingStatusWaiting {
		t.Errorf("expected WAITING, got %s", got.Status)
	}

	var successCount, decidedCount atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(approve bool) {
			defer wg.Done()
			_, err := env.bookings.ConfirmBooking(ctx, booking.ID, owner.ID, approve)
			switch {
			case err == nil:
				successCount.Add(1)
			case errors.Is(err, service.ErrAlreadyDecided):
				decidedCount.Add(1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(i%2 == 0)
	}
	wg.Wait()

	if successCount.Load() != 1 || decidedCount.Load() != 19 {
		t.Errorf("expected 1 success and 19 already decided, got %d/%d", successCount.Load(), decidedCount.Load())
	}

	future, err := env.bookings.ListBookings(ctx, domain.StateFuture, booker.ID, domain.ScopeBooker)
	if err != nil {
		t.Fatalf("ListBookings failed: %v", err)
	}
	if len(future) != 1 || future[0].ID != booking.ID {
		t.Errorf("expected the booking in FUTURE, got %+v", future)
	}
}

func TestIntegration_AnnotationAndComments(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	now := time.Now()

	owner, booker := env.user(t, "owner"), env.user(t, "booker")
	item, err := env.items.CreateItem(ctx, owner.ID, domain.Item{Name: "Bike", Description: "road bike", Available: true})
	if err != nil {
		t.Fatalf("CreateItem failed: %v", err)
	}

	past := domain.Booking{Start: now.Add(-72 * time.Hour), End: now.Add(-48 * time.Hour), ItemID: item.ID, BookerID: booker.ID, Status: domain.BookingStatusApproved, Created: now}
	next := domain.Booking{Start: now.Add(72 * time.Hour), End: now.Add(96 * time.Hour), ItemID: item.ID, BookerID: booker.ID, Status: domain.BookingStatusApproved, Created: now}
	for _, b := range []*domain.Booking{&past, &next} {
		if err := env.db.CreateBooking(ctx, b); err != nil {
			t.Fatalf("CreateBooking failed: %v", err)
		}
	}

	if _, err := env.items.AddComment(ctx, item.ID, booker.ID, "smooth ride"); err != nil {
		t.Fatalf("AddComment failed: %v", err)
	}

	got, err := env.items.GetItem(ctx, item.ID, owner.ID)
	if err != nil {
		t.Fatalf("GetItem failed: %v", err)
	}
	if got.LastBooking == nil || got.LastBooking.String() != domain.DateOf(past.End.UTC()).String() {
		t.Errorf("unexpected last booking %v", got.LastBooking)
	}
	if got.NextBooking == nil || got.NextBooking.String() != domain.DateOf(next.Start.UTC()).String() {
		t.Errorf("unexpected next booking %v", got.NextBooking)
	}
	if len(got.Comments) != 1 || got.Comments[0].AuthorName != "booker" {
		t.Errorf("unexpected comments %+v", got.Comments)
	}
}
