package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/rl1809/shareit/internal/core/domain"
	"github.com/rl1809/shareit/internal/port"
)

// stateClauses mirrors the domain predicate table. Every "?" is bound to now.
var stateClauses = map[domain.BookingState]string{
	domain.StateAll:      "TRUE",
	domain.StateCurrent:  "b.start_at <= ? AND b.end_at >= ?",
	domain.StatePast:     "b.end_at < ?",
	domain.StateFuture:   "b.start_at > ?",
	domain.StateWaiting:  "b.status = 'WAITING'",
	domain.StateRejected: "b.status = 'REJECTED'",
	domain.StateApproved: "b.status = 'APPROVED'",
}

var scopeClauses = map[domain.BookingScope]string{
	domain.ScopeBooker: "b.booker_id = ?",
	domain.ScopeOwner:  "i.owner_id = ?",
}

const selectBooking = `
	SELECT b.id, b.start_at, b.end_at, b.item_id, i.name, i.owner_id, b.booker_id, b.status, b.created_at
	FROM bookings b JOIN items i ON i.id = b.item_id`

func (m *MySQLAdapter) CreateBooking(ctx context.Context, b *domain.Booking) error {
	result, err := m.db.ExecContext(ctx, `
		INSERT INTO bookings (start_at, end_at, item_id, booker_id, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		b.Start.UTC(), b.End.UTC(), b.ItemID, b.BookerID, b.Status, b.Created.UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert booking: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("booking id: %w", err)
	}
	b.ID = id
	return nil
}

func (m *MySQLAdapter) GetBooking(ctx context.Context, id int64) (*domain.Booking, error) {
	row := m.db.QueryRowContext(ctx, selectBooking+` WHERE b.id = ?`, id)
	b, err := scanBooking(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query booking: %w", err)
	}
	return b, nil
}

// TransitionStatus is a single conditional UPDATE; a concurrent decision that
// already moved the row out of from leaves zero rows affected.
func (m *MySQLAdapter) TransitionStatus(ctx context.Context, id int64, from, to domain.BookingStatus) (bool, error) {
	result, err := m.db.ExecContext(ctx, `
		UPDATE bookings SET status = ?
		WHERE id = ? AND status = ?`,
		to, id, from,
	)
	if err != nil {
		return false, fmt.Errorf("update booking status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return rows == 1, nil
}

func (m *MySQLAdapter) ListBookings(ctx context.Context, q port.BookingQuery) ([]domain.Booking, error) {
	scope, ok := scopeClauses[q.Scope]
	if !ok {
		return nil, fmt.Errorf("unsupported scope %q", q.Scope)
	}
	state, ok := stateClauses[q.State]
	if !ok {
		return nil, fmt.Errorf("unsupported state %q", q.State)
	}

	args := []any{q.UserID}
	now := q.Now.UTC()
	for i := 0; i < strings.Count(state, "?"); i++ {
		args = append(args, now)
	}

	query := selectBooking + ` WHERE ` + scope + ` AND (` + state + `) ORDER BY b.start_at DESC, b.id DESC`
	return m.queryBookings(ctx, query, args...)
}

func (m *MySQLAdapter) ApprovedBookingsForItems(ctx context.Context, itemIDs []int64) ([]domain.Booking, error) {
	if len(itemIDs) == 0 {
		return []domain.Booking{}, nil
	}
	in, args := inClause(itemIDs)
	query := selectBooking + ` WHERE b.status = 'APPROVED' AND b.item_id IN ` + in
	return m.queryBookings(ctx, query, args...)
}

func (m *MySQLAdapter) HasFinishedBooking(ctx context.Context, q port.FinishedBookingQuery) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM bookings WHERE booker_id = ? AND item_id = ? AND end_at < ?`
	args := []any{q.BookerID, q.ItemID, q.Before.UTC()}
	if len(q.Statuses) > 0 {
		query += ` AND status IN (` + strings.TrimSuffix(strings.Repeat("?, ", len(q.Statuses)), ", ") + `)`
		for _, st := range q.Statuses {
			args = append(args, st)
		}
	}
	query += `)`

	var exists bool
	if err := m.db.QueryRowContext(ctx, query, args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("query finished booking: %w", err)
	}
	return exists, nil
}

func (m *MySQLAdapter) queryBookings(ctx context.Context, query string, args ...any) ([]domain.Booking, error) {
	rows, err := m.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query bookings: %w", err)
	}
	defer rows.Close()

	out := []domain.Booking{}
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		out = append(out, *b)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBooking(row rowScanner) (*domain.Booking, error) {
	var b domain.Booking
	var status string
	err := row.Scan(&b.ID, &b.Start, &b.End, &b.ItemID, &b.ItemName, &b.OwnerID, &b.BookerID, &status, &b.Created)
	if err != nil {
		return nil, err
	}
	b.Status = domain.BookingStatus(status)
	return &b, nil
}
