package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"
)

const mysqlDuplicateEntry = 1062

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		email VARCHAR(512) NOT NULL,
		UNIQUE KEY uq_users_email (email)
	)`,
	`CREATE TABLE IF NOT EXISTS requests (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		description TEXT NOT NULL,
		requestor_id BIGINT NOT NULL,
		created_at DATETIME(6) NOT NULL,
		KEY idx_requests_requestor (requestor_id, created_at)
	)`,
	`CREATE TABLE IF NOT EXISTS items (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		description TEXT NOT NULL,
		available BOOLEAN NOT NULL,
		owner_id BIGINT NOT NULL,
		request_id BIGINT NULL,
		KEY idx_items_owner (owner_id),
		KEY idx_items_request (request_id)
	)`,
	`CREATE TABLE IF NOT EXISTS bookings (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		start_at DATETIME(6) NOT NULL,
		end_at DATETIME(6) NOT NULL,
		item_id BIGINT NOT NULL,
		booker_id BIGINT NOT NULL,
		status VARCHAR(16) NOT NULL,
		created_at DATETIME(6) NOT NULL,
		KEY idx_bookings_booker (booker_id, start_at),
		KEY idx_bookings_item (item_id, status),
		CONSTRAINT chk_bookings_range CHECK (start_at < end_at)
	)`,
	`CREATE TABLE IF NOT EXISTS comments (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		text TEXT NOT NULL,
		item_id BIGINT NOT NULL,
		author_id BIGINT NOT NULL,
		created_at DATETIME(6) NOT NULL,
		KEY idx_comments_item (item_id)
	)`,
}

// MySQLAdapter implements every repository port on one connection pool.
type MySQLAdapter struct {
	db *sql.DB
}

func NewMySQLAdapter(db *sql.DB) *MySQLAdapter {
	return &MySQLAdapter{db: db}
}

// Migrate creates missing tables. It is safe to run on every start.
func (m *MySQLAdapter) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := m.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

func isDuplicateEntry(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == mysqlDuplicateEntry
}

// inClause returns "(?, ?, ...)" and the matching args.
func inClause(ids []int64) (string, []any) {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return "(" + strings.TrimSuffix(strings.Repeat("?, ", len(ids)), ", ") + ")", args
}
