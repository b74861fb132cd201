package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/rl1809/shareit/internal/core/domain"
	"github.com/rl1809/shareit/internal/port"
)

var ErrEmptyComment = domain.NewError(domain.ErrValidation, "comment text must not be empty")

type ItemService struct {
	items     port.ItemRepository
	users     port.UserRepository
	requests  port.RequestRepository
	annotator *Annotator
	gate      *CommentGate
	log       *zap.Logger
	now       func() time.Time
}

func NewItemService(
	items port.ItemRepository,
	users port.UserRepository,
	requests port.RequestRepository,
	annotator *Annotator,
	gate *CommentGate,
	log *zap.Logger,
	opts ...Option,
) *ItemService {
	o := applyOptions(opts)
	return &ItemService{
		items:     items,
		users:     users,
		requests:  requests,
		annotator: annotator,
		gate:      gate,
		log:       log,
		now:       o.now,
	}
}

func (s *ItemService) CreateItem(ctx context.Context, ownerID int64, item domain.Item) (*domain.Item, error) {
	if _, err := requireUser(ctx, s.users, ownerID); err != nil {
		return nil, err
	}
	if item.RequestID != nil {
		req, err := s.requests.GetRequest(ctx, *item.RequestID)
		if err != nil {
			return nil, fmt.Errorf("get request: %w", err)
		}
		if req == nil {
			return nil, domain.NewError(domain.ErrNotFound, "request %d not found", *item.RequestID)
		}
	}

	item.OwnerID = ownerID
	if err := s.items.CreateItem(ctx, &item); err != nil {
		return nil, fmt.Errorf("create item: %w", err)
	}
	s.log.Debug("item created", zap.Int64("item_id", item.ID), zap.Int64("owner_id", ownerID))
	return &item, nil
}

// UpdateItem applies a partial update. Items of other owners are reported as
// not found.
func (s *ItemService) UpdateItem(ctx context.Context, ownerID, itemID int64, patch domain.ItemPatch) (*domain.Item, error) {
	if _, err := requireUser(ctx, s.users, ownerID); err != nil {
		return nil, err
	}
	item, err := s.items.GetItem(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	if item == nil || item.OwnerID != ownerID {
		return nil, itemNotFound(itemID)
	}

	if patch.Name != nil {
		item.Name = *patch.Name
	}
	if patch.Description != nil {
		item.Description = *patch.Description
	}
	if patch.Available != nil {
		item.Available = *patch.Available
	}
	if err := s.items.UpdateItem(ctx, *item); err != nil {
		return nil, fmt.Errorf("update item: %w", err)
	}
	return item, nil
}

// GetItem returns the item with its comments. Booking dates are only shown to
// the owner.
func (s *ItemService) GetItem(ctx context.Context, itemID, viewerID int64) (*domain.AnnotatedItem, error) {
	item, err := s.items.GetItem(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	if item == nil {
		return nil, itemNotFound(itemID)
	}

	out := []domain.AnnotatedItem{{Item: *item}}
	if viewerID == item.OwnerID {
		out, err = s.annotator.Annotate(ctx, []domain.Item{*item}, s.now())
		if err != nil {
			return nil, err
		}
	}
	if err := s.attachComments(ctx, out); err != nil {
		return nil, err
	}
	return &out[0], nil
}

func (s *ItemService) ListOwnerItems(ctx context.Context, ownerID int64) ([]domain.AnnotatedItem, error) {
	if _, err := requireUser(ctx, s.users, ownerID); err != nil {
		return nil, err
	}
	items, err := s.items.ListItemsByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	out, err := s.annotator.Annotate(ctx, items, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.attachComments(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

// SearchItems returns nothing for blank text rather than every item.
func (s *ItemService) SearchItems(ctx context.Context, text string) ([]domain.Item, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return []domain.Item{}, nil
	}
	items, err := s.items.SearchItems(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("search items: %w", err)
	}
	return items, nil
}

func (s *ItemService) AddComment(ctx context.Context, itemID, authorID int64, text string) (*domain.Comment, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyComment
	}
	author, err := requireUser(ctx, s.users, authorID)
	if err != nil {
		return nil, err
	}
	item, err := s.items.GetItem(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	if item == nil {
		return nil, itemNotFound(itemID)
	}

	now := s.now()
	ok, err := s.gate.CanComment(ctx, authorID, itemID, now)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrCommentNotAllowed
	}

	comment := &domain.Comment{
		Text:       text,
		ItemID:     itemID,
		AuthorID:   authorID,
		AuthorName: author.Name,
		Created:    now,
	}
	if err := s.items.CreateComment(ctx, comment); err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}
	return comment, nil
}

func (s *ItemService) attachComments(ctx context.Context, items []domain.AnnotatedItem) error {
	if len(items) == 0 {
		return nil
	}
	ids := make([]int64, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ID)
	}
	comments, err := s.items.ListComments(ctx, ids)
	if err != nil {
		return fmt.Errorf("list comments: %w", err)
	}
	byItem := make(map[int64][]domain.Comment)
	for _, c := range comments {
		byItem[c.ItemID] = append(byItem[c.ItemID], c)
	}
	for i := range items {
		items[i].Comments = byItem[items[i].ID]
		if items[i].Comments == nil {
			items[i].Comments = []domain.Comment{}
		}
	}
	return nil
}

func itemNotFound(id int64) error {
	return domain.NewError(domain.ErrNotFound, "item %d not found", id)
}
