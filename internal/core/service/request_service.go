package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rl1809/shareit/internal/core/domain"
	"github.com/rl1809/shareit/internal/port"
)

var ErrEmptyDescription = domain.NewError(domain.ErrValidation, "request description must not be empty")

type RequestService struct {
	requests port.RequestRepository
	items    port.ItemRepository
	users    port.UserRepository
	now      func() time.Time
}

func NewRequestService(requests port.RequestRepository, items port.ItemRepository, users port.UserRepository, opts ...Option) *RequestService {
	o := applyOptions(opts)
	return &RequestService{requests: requests, items: items, users: users, now: o.now}
}

func (s *RequestService) CreateRequest(ctx context.Context, requestorID int64, description string) (*domain.ItemRequest, error) {
	if strings.TrimSpace(description) == "" {
		return nil, ErrEmptyDescription
	}
	if _, err := requireUser(ctx, s.users, requestorID); err != nil {
		return nil, err
	}
	req := &domain.ItemRequest{
		Description: description,
		RequestorID: requestorID,
		Created:     s.now(),
		Items:       []domain.Item{},
	}
	if err := s.requests.CreateRequest(ctx, req); err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	return req, nil
}

func (s *RequestService) GetRequest(ctx context.Context, id int64) (*domain.ItemRequest, error) {
	req, err := s.requests.GetRequest(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get request: %w", err)
	}
	if req == nil {
		return nil, domain.NewError(domain.ErrNotFound, "request %d not found", id)
	}
	reqs := []domain.ItemRequest{*req}
	if err := s.attachItems(ctx, reqs); err != nil {
		return nil, err
	}
	return &reqs[0], nil
}

func (s *RequestService) ListOwnRequests(ctx context.Context, userID int64) ([]domain.ItemRequest, error) {
	if _, err := requireUser(ctx, s.users, userID); err != nil {
		return nil, err
	}
	reqs, err := s.requests.ListRequestsByRequestor(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}
	if err := s.attachItems(ctx, reqs); err != nil {
		return nil, err
	}
	return reqs, nil
}

func (s *RequestService) ListOtherRequests(ctx context.Context, userID int64) ([]domain.ItemRequest, error) {
	reqs, err := s.requests.ListRequestsExcept(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}
	if err := s.attachItems(ctx, reqs); err != nil {
		return nil, err
	}
	return reqs, nil
}

func (s *RequestService) attachItems(ctx context.Context, reqs []domain.ItemRequest) error {
	if len(reqs) == 0 {
		return nil
	}
	ids := make([]int64, 0, len(reqs))
	for _, r := range reqs {
		ids = append(ids, r.ID)
	}
	items, err := s.items.ListItemsByRequests(ctx, ids)
	if err != nil {
		return fmt.Errorf("list answering items: %w", err)
	}
	byRequest := make(map[int64][]domain.Item)
	for _, it := range items {
		if it.RequestID != nil {
			byRequest[*it.RequestID] = append(byRequest[*it.RequestID], it)
		}
	}
	for i := range reqs {
		reqs[i].Items = byRequest[reqs[i].ID]
		if reqs[i].Items == nil {
			reqs[i].Items = []domain.Item{}
		}
	}
	return nil
}
