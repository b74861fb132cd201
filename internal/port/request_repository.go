package port

import (
	"context"

	"github.com/rl1809/shareit/internal/core/domain"
)

type RequestRepository interface {
	CreateRequest(ctx context.Context, req *domain.ItemRequest) error

	// GetRequest retrieves a request by ID, nil if absent
	GetRequest(ctx context.Context, id int64) (*domain.ItemRequest, error)

	// ListRequestsByRequestor returns the user's own requests, newest first
	ListRequestsByRequestor(ctx context.Context, requestorID int64) ([]domain.ItemRequest, error)

	// ListRequestsExcept returns requests of everyone but the user, newest first
	ListRequestsExcept(ctx context.Context, userID int64) ([]domain.ItemRequest, error)
}
