package port

import (
	"context"
	"errors"

	"github.com/rl1809/shareit/internal/core/domain"
)

var ErrEmailTaken = errors.New("email already registered")

type UserRepository interface {
	// CreateUser persists a new user, returns ErrEmailTaken on duplicate email
	CreateUser(ctx context.Context, user *domain.User) error

	// UpdateUser overwrites name and email, returns ErrEmailTaken on duplicate email
	UpdateUser(ctx context.Context, user domain.User) error

	// GetUser retrieves a user by ID, nil if absent
	GetUser(ctx context.Context, id int64) (*domain.User, error)

	// DeleteUser removes a user, returns false if absent
	DeleteUser(ctx context.Context, id int64) (bool, error)
}
