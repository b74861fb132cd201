package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/rl1809/shareit/internal/core/domain"
)

const selectItem = `SELECT id, name, description, available, owner_id, request_id FROM items`

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func (m *MySQLAdapter) CreateItem(ctx context.Context, item *domain.Item) error {
	result, err := m.db.ExecContext(ctx, `
		INSERT INTO items (name, description, available, owner_id, request_id)
		VALUES (?, ?, ?, ?, ?)`,
		item.Name, item.Description, item.Available, item.OwnerID, nullableID(item.RequestID),
	)
	if err != nil {
		return fmt.Errorf("insert item: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("item id: %w", err)
	}
	item.ID = id
	return nil
}

func (m *MySQLAdapter) UpdateItem(ctx context.Context, item domain.Item) error {
	_, err := m.db.ExecContext(ctx, `
		UPDATE items SET name = ?, description = ?, available = ?
		WHERE id = ?`,
		item.Name, item.Description, item.Available, item.ID,
	)
	if err != nil {
		return fmt.Errorf("update item: %w", err)
	}
	return nil
}

func (m *MySQLAdapter) GetItem(ctx context.Context, id int64) (*domain.Item, error) {
	it, err := scanItem(m.db.QueryRowContext(ctx, selectItem+` WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query item: %w", err)
	}
	return it, nil
}

func (m *MySQLAdapter) ListItemsByOwner(ctx context.Context, ownerID int64) ([]domain.Item, error) {
	return m.queryItems(ctx, selectItem+` WHERE owner_id = ? ORDER BY id`, ownerID)
}

func (m *MySQLAdapter) CountItemsByOwner(ctx context.Context, ownerID int64) (int, error) {
	var n int
	if err := m.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM items WHERE owner_id = ?`, ownerID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count items: %w", err)
	}
	return n, nil
}

func (m *MySQLAdapter) SearchItems(ctx context.Context, text string) ([]domain.Item, error) {
	pattern := "%" + likeEscaper.Replace(text) + "%"
	return m.queryItems(ctx, selectItem+`
		WHERE available = TRUE
		AND (LOWER(name) LIKE LOWER(?) OR LOWER(description) LIKE LOWER(?))
		ORDER BY id`, pattern, pattern)
}

func (m *MySQLAdapter) ListItemsByRequests(ctx context.Context, requestIDs []int64) ([]domain.Item, error) {
	if len(requestIDs) == 0 {
		return []domain.Item{}, nil
	}
	in, args := inClause(requestIDs)
	return m.queryItems(ctx, selectItem+` WHERE request_id IN `+in+` ORDER BY id`, args...)
}

func (m *MySQLAdapter) CreateComment(ctx context.Context, c *domain.Comment) error {
	result, err := m.db.ExecContext(ctx, `
		INSERT INTO comments (text, item_id, author_id, created_at)
		VALUES (?, ?, ?, ?)`,
		c.Text, c.ItemID, c.AuthorID, c.Created.UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert comment: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("comment id: %w", err)
	}
	c.ID = id
	return nil
}

func (m *MySQLAdapter) ListComments(ctx context.Context, itemIDs []int64) ([]domain.Comment, error) {
	if len(itemIDs) == 0 {
		return []domain.Comment{}, nil
	}
	in, args := inClause(itemIDs)
	rows, err := m.db.QueryContext(ctx, `
		SELECT c.id, c.text, c.item_id, c.author_id, COALESCE(u.name, ''), c.created_at
		FROM comments c LEFT JOIN users u ON u.id = c.author_id
		WHERE c.item_id IN `+in+` ORDER BY c.created_at, c.id`, args...)
	if err != nil {
		return nil, fmt.Errorf("query comments: %w", err)
	}
	defer rows.Close()

	out := []domain.Comment{}
	for rows.Next() {
		var c domain.Comment
		if err := rows.Scan(&c.ID, &c.Text, &c.ItemID, &c.AuthorID, &c.AuthorName, &c.Created); err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (m *MySQLAdapter) queryItems(ctx context.Context, query string, args ...any) ([]domain.Item, error) {
	rows, err := m.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query items: %w", err)
	}
	defer rows.Close()

	out := []domain.Item{}
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		out = append(out, *it)
	}
	return out, rows.Err()
}

func scanItem(row rowScanner) (*domain.Item, error) {
	var it domain.Item
	var requestID sql.NullInt64
	if err := row.Scan(&it.ID, &it.Name, &it.Description, &it.Available, &it.OwnerID, &requestID); err != nil {
		return nil, err
	}
	if requestID.Valid {
		it.RequestID = &requestID.Int64
	}
	return &it, nil
}

func nullableID(id *int64) sql.NullInt64 {
	if id == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *id, Valid: true}
}
