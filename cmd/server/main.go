package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"google.golang.org/grpc"

	"github.com/rl1809/shareit/internal/adapter/handler"
	"github.com/rl1809/shareit/internal/adapter/storage"
	"github.com/rl1809/shareit/internal/config"
	"github.com/rl1809/shareit/internal/core/service"
	"github.com/rl1809/shareit/internal/logger"
	"github.com/rl1809/shareit/internal/obs"
	"github.com/rl1809/shareit/internal/port"
)

const serviceName = "shareit"

type repositories struct {
	bookings port.BookingRepository
	items    port.ItemRepository
	users    port.UserRepository
	requests port.RequestRepository
	cache    port.CacheRepository
	closers  []func() error
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(cfg, log); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg config.App, log *zap.Logger) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	policy, err := service.ParseCommentPolicy(cfg.CommentPolicy)
	if err != nil {
		return err
	}

	shutdownTracer, err := obs.InitTracer(ctx, serviceName, cfg.OTLPEndpoint)
	if err != nil {
		return err
	}
	defer func() {
		tctx, tcancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer tcancel()
		if err := shutdownTracer(tctx); err != nil {
			log.Warn("tracer shutdown", zap.Error(err))
		}
	}()

	repos, err := openRepositories(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := repos.close(); err != nil {
			log.Warn("close connection", zap.Error(err))
		}
		log.Info("connections closed")
	}()

	bookingService := service.NewBookingService(repos.bookings, repos.items, repos.users, repos.cache, log)
	itemService := service.NewItemService(repos.items, repos.users, repos.requests,
		service.NewAnnotator(repos.bookings), service.NewCommentGate(repos.bookings, policy), log)
	userService := service.NewUserService(repos.users, log)
	requestService := service.NewRequestService(repos.requests, repos.items, repos.users)

	// gRPC
	grpcServer := grpc.NewServer(grpc.ChainUnaryInterceptor(handler.UnaryLogger(log)))
	handler.RegisterBookingServiceServer(grpcServer, handler.NewGRPCHandler(bookingService))

	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", cfg.GRPCAddr, err)
	}
	go func() {
		log.Info("gRPC server listening", zap.String("addr", cfg.GRPCAddr))
		if err := grpcServer.Serve(lis); err != nil {
			log.Error("gRPC server error", zap.Error(err))
		}
	}()

	// HTTP
	httpHandler := handler.NewHTTPHandler(bookingService, itemService, userService, requestService, log)
	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           httpHandler.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Info("HTTP server listening", zap.String("addr", cfg.HTTPAddr))
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Info("shutting down", zap.String("signal", sig.String()))

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Warn("HTTP shutdown", zap.Error(err))
	}
	log.Info("HTTP server stopped")

	grpcServer.GracefulStop()
	log.Info("gRPC server stopped")

	return nil
}

// close runs the closers in reverse order of opening.
func (r *repositories) close() error {
	var errs []error
	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	r.closers = nil
	return errors.Join(errs...)
}

func openRepositories(ctx context.Context, cfg config.App, log *zap.Logger) (*repositories, error) {
	repos := &repositories{}

	switch cfg.Storage {
	case config.StorageMemory:
		mem := storage.NewMemoryAdapter()
		repos.bookings, repos.items, repos.users, repos.requests = mem, mem, mem, mem
		log.Info("using in-memory storage")
	default:
		db, err := sql.Open("mysql", cfg.MySQLDSN)
		if err != nil {
			return nil, fmt.Errorf("open mysql: %w", err)
		}
		db.SetMaxOpenConns(cfg.MySQLMaxOpenConns)
		db.SetMaxIdleConns(cfg.MySQLMaxIdleConns)
		db.SetConnMaxLifetime(5 * time.Minute)

		if err := db.PingContext(ctx); err != nil {
			db.Close()
			return nil, fmt.Errorf("ping mysql: %w", err)
		}
		mysqlAdapter := storage.NewMySQLAdapter(db)
		if err := mysqlAdapter.Migrate(ctx); err != nil {
			db.Close()
			return nil, err
		}
		repos.bookings, repos.items, repos.users, repos.requests = mysqlAdapter, mysqlAdapter, mysqlAdapter, mysqlAdapter
		repos.closers = append(repos.closers, db.Close)
		log.Info("connected to mysql")
	}

	if cfg.RedisAddr == "" {
		repos.cache = storage.NewMemoryCache()
		return repos, nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		PoolSize: 100,
	})
	redisAdapter := storage.NewRedisAdapter(rdb)
	if err := redisAdapter.Ping(ctx); err != nil {
		rdb.Close()
		repos.close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	repos.cache = redisAdapter
	repos.closers = append(repos.closers, rdb.Close)
	log.Info("connected to redis", zap.String("addr", cfg.RedisAddr))
	return repos, nil
}
