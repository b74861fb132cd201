package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/rl1809/shareit/internal/core/domain"
	"github.com/rl1809/shareit/internal/port"
)

type UserService struct {
	users port.UserRepository
	log   *zap.Logger
}

func NewUserService(users port.UserRepository, log *zap.Logger) *UserService {
	return &UserService{users: users, log: log}
}

func (s *UserService) CreateUser(ctx context.Context, user domain.User) (*domain.User, error) {
	if err := s.users.CreateUser(ctx, &user); err != nil {
		if errors.Is(err, port.ErrEmailTaken) {
			return nil, emailTaken(user.Email)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	s.log.Debug("user created", zap.Int64("user_id", user.ID))
	return &user, nil
}

func (s *UserService) UpdateUser(ctx context.Context, id int64, patch domain.UserPatch) (*domain.User, error) {
	user, err := requireUser(ctx, s.users, id)
	if err != nil {
		return nil, err
	}
	if patch.Name != nil {
		user.Name = *patch.Name
	}
	if patch.Email != nil {
		user.Email = *patch.Email
	}
	if err := s.users.UpdateUser(ctx, *user); err != nil {
		if errors.Is(err, port.ErrEmailTaken) {
			return nil, emailTaken(user.Email)
		}
		return nil, fmt.Errorf("update user: %w", err)
	}
	return user, nil
}

func (s *UserService) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	return requireUser(ctx, s.users, id)
}

func (s *UserService) DeleteUser(ctx context.Context, id int64) error {
	ok, err := s.users.DeleteUser(ctx, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if !ok {
		return domain.NewError(domain.ErrNotFound, "user %d not found", id)
	}
	return nil
}

func emailTaken(email string) error {
	return domain.NewError(domain.ErrConflict, "email %s is already registered", email)
}
