package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type App struct {
	// Network
	HTTPAddr string `envconfig:"HTTP_ADDR" default:":8080"`
	GRPCAddr string `envconfig:"GRPC_ADDR" default:":50051"`

	// Storage
	Storage           string `envconfig:"STORAGE" default:"mysql"`
	MySQLDSN          string `envconfig:"MYSQL_DSN" default:"root:root@tcp(localhost:3306)/shareit?parseTime=true"`
	MySQLMaxOpenConns int    `envconfig:"MYSQL_MAX_OPEN_CONNS" default:"50"`
	MySQLMaxIdleConns int    `envconfig:"MYSQL_MAX_IDLE_CONNS" default:"25"`
	RedisAddr         string `envconfig:"REDIS_ADDR"` // empty keeps idempotency keys in process

	// Behaviour
	CommentPolicy string `envconfig:"COMMENT_POLICY" default:"approved"`

	// Observability
	LogLevel     string `envconfig:"LOG_LEVEL" default:"info"`
	OTLPEndpoint string `envconfig:"OTEL_EXPORTER_OTLP_ENDPOINT"`

	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"5s"`
}

const (
	StorageMySQL  = "mysql"
	StorageMemory = "memory"
)

// Load reads an optional .env file, then the environment.
func Load(envFiles ...string) (App, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return App{}, fmt.Errorf("load %s: %w", f, err)
		}
	}

	var c App
	if err := envconfig.Process("", &c); err != nil {
		return App{}, err
	}
	if c.Storage != StorageMySQL && c.Storage != StorageMemory {
		return App{}, fmt.Errorf("STORAGE must be %q or %q, got %q", StorageMySQL, StorageMemory, c.Storage)
	}
	return c, nil
}
