package service

import (
	"context"
	"errors"

	"evcharge/internal/models"
	"evcharge/internal/repository"
)

// UserStore defines the storage contract for profile and listing reads.
type UserStore interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
}

// UserService serves profile and user listing reads.
type UserService struct {
	repo UserStore
}

// NewUserService builds UserService.
func NewUserService(repo UserStore) *UserService {
	return &UserService{repo: repo}
}

// Profile returns the user behind the given id.
func (s *UserService) Profile(ctx context.Context, id string) (*models.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// List returns all registered users.
func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	return s.repo.List(ctx)
}
