package port

import (
	"context"

	"github.com/rl1809/shareit/internal/core/domain"
)

type ItemRepository interface {
	// CreateItem persists a new item and assigns its ID
	CreateItem(ctx context.Context, item *domain.Item) error

	// UpdateItem overwrites name, description and availability
	UpdateItem(ctx context.Context, item domain.Item) error

	// GetItem retrieves an item by ID, nil if absent
	GetItem(ctx context.Context, id int64) (*domain.Item, error)

	ListItemsByOwner(ctx context.Context, ownerID int64) ([]domain.Item, error)

	CountItemsByOwner(ctx context.Context, ownerID int64) (int, error)

	// SearchItems matches available items whose name or description contains text, case-insensitively
	SearchItems(ctx context.Context, text string) ([]domain.Item, error)

	// ListItemsByRequests returns items answering any of the given requests
	ListItemsByRequests(ctx context.Context, requestIDs []int64) ([]domain.Item, error)

	// CreateComment persists a comment and assigns its ID
	CreateComment(ctx context.Context, comment *domain.Comment) error

	// ListComments returns comments of the given items, oldest first
	ListComments(ctx context.Context, itemIDs []int64) ([]domain.Comment, error)
}
