package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"sync"
	"sync/atomic"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"

	"github.com/rl1809/shareit/internal/adapter/storage"
	"github.com/rl1809/shareit/internal/core/domain"
	"github.com/rl1809/shareit/internal/core/service"
	"github.com/rl1809/shareit/internal/port"
)

// Fires concurrent approve/reject decisions at one waiting booking. Exactly one
// must win; every other caller must see the booking as already decided.
// Set MYSQL_DSN to race against MySQL instead of the in-memory store.

const totalDeciders = 50

type store interface {
	port.BookingRepository
	port.ItemRepository
	port.UserRepository
}

func main() {
	ctx := context.Background()

	repo, cleanup := openStore(ctx)
	defer cleanup()

	svc := service.NewBookingService(repo, repo, repo, storage.NewMemoryCache(), zap.NewNop())

	suffix := time.Now().UnixNano()
	owner := &domain.User{Name: "owner", Email: fmt.Sprintf("owner-%d@stress.test", suffix)}
	booker := &domain.User{Name: "booker", Email: fmt.Sprintf("booker-%d@stress.test", suffix)}
	for _, u := range []*domain.User{owner, booker} {
		if err := repo.CreateUser(ctx, u); err != nil {
			log.Fatalf("failed to create user: %v", err)
		}
	}
	item := &domain.Item{Name: "drill", Description: "cordless drill", Available: true, OwnerID: owner.ID}
	if err := repo.CreateItem(ctx, item); err != nil {
		log.Fatalf("failed to create item: %v", err)
	}

	start := time.Now().Add(time.Hour)
	booking, err := svc.CreateBooking(ctx, domain.NewBooking{
		ItemID:   item.ID,
		BookerID: booker.ID,
		Start:    start,
		End:      start.Add(24 * time.Hour),
	})
	if err != nil {
		log.Fatalf("failed to create booking: %v", err)
	}

	var successCount, decidedCount, otherCount atomic.Int32
	var wg sync.WaitGroup
	began := time.Now()

	for i := 0; i < totalDeciders; i++ {
		wg.Add(1)
		go func(approve bool) {
			defer wg.Done()

			_, err := svc.ConfirmBooking(ctx, booking.ID, owner.ID, approve)
			switch {
			case err == nil:
				successCount.Add(1)
			case errors.Is(err, service.ErrAlreadyDecided):
				decidedCount.Add(1)
			default:
				otherCount.Add(1)
				log.Printf("unexpected error: %v", err)
			}
		}(i%2 == 0)
	}

	wg.Wait()
	elapsed := time.Since(began)

	final, err := svc.GetBooking(ctx, booking.ID, owner.ID)
	if err != nil {
		log.Fatalf("failed to read booking: %v", err)
	}

	fmt.Println("========== DECISION RACE RESULTS ==========")
	fmt.Printf("Deciders:         %d\n", totalDeciders)
	fmt.Printf("Successful:       %d\n", successCount.Load())
	fmt.Printf("Already decided:  %d\n", decidedCount.Load())
	fmt.Printf("Other errors:     %d\n", otherCount.Load())
	fmt.Printf("Final status:     %s\n", final.Status)
	fmt.Printf("Duration:         %v\n", elapsed)
	fmt.Println("===========================================")

	if successCount.Load() == 1 && decidedCount.Load() == totalDeciders-1 && final.Status != domain.BookingStatusWaiting {
		fmt.Println("PASS: exactly one decision applied")
		return
	}
	fmt.Println("FAIL: expected exactly one decision to apply")
	os.Exit(1)
}

func openStore(ctx context.Context) (store, func()) {
	dsn := os.Getenv("MYSQL_DSN")
	if dsn == "" {
		return storage.NewMemoryAdapter(), func() {}
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		log.Fatalf("failed to connect mysql: %v", err)
	}
	db.SetMaxOpenConns(totalDeciders)
	if err := db.PingContext(ctx); err != nil {
		log.Fatalf("failed to ping mysql: %v", err)
	}
	adapter := storage.NewMySQLAdapter(db)
	if err := adapter.Migrate(ctx); err != nil {
		log.Fatalf("failed to migrate: %v", err)
	}
	return adapter, func() { db.Close() }
}
