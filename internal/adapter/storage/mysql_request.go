package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rl1809/shareit/internal/core/domain"
)

const selectRequest = `SELECT id, description, requestor_id, created_at FROM requests`

func (m *MySQLAdapter) CreateRequest(ctx context.Context, r *domain.ItemRequest) error {
	result, err := m.db.ExecContext(ctx, `
		INSERT INTO requests (description, requestor_id, created_at)
		VALUES (?, ?, ?)`,
		r.Description, r.RequestorID, r.Created.UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert request: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("request id: %w", err)
	}
	r.ID = id
	return nil
}

func (m *MySQLAdapter) GetRequest(ctx context.Context, id int64) (*domain.ItemRequest, error) {
	var r domain.ItemRequest
	err := m.db.QueryRowContext(ctx, selectRequest+` WHERE id = ?`, id).
		Scan(&r.ID, &r.Description, &r.RequestorID, &r.Created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query request: %w", err)
	}
	return &r, nil
}

func (m *MySQLAdapter) ListRequestsByRequestor(ctx context.Context, requestorID int64) ([]domain.ItemRequest, error) {
	return m.queryRequests(ctx, selectRequest+` WHERE requestor_id = ? ORDER BY created_at DESC, id DESC`, requestorID)
}

func (m *MySQLAdapter) ListRequestsExcept(ctx context.Context, userID int64) ([]domain.ItemRequest, error) {
	return m.queryRequests(ctx, selectRequest+` WHERE requestor_id <> ? ORDER BY created_at DESC, id DESC`, userID)
}

func (m *MySQLAdapter) queryRequests(ctx context.Context, query string, args ...any) ([]domain.ItemRequest, error) {
	rows, err := m.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query requests: %w", err)
	}
	defer rows.Close()

	out := []domain.ItemRequest{}
	for rows.Next() {
		var r domain.ItemRequest
		if err := rows.Scan(&r.ID, &r.Description, &r.RequestorID, &r.Created); err != nil {
			return nil, fmt.Errorf("scan request: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
