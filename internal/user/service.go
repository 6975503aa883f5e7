package user

import (
	"context"
	"errors"
)

// Service contains business logic for user management.
type Service struct {
	repo *Repository
}

// NewService creates a new user Service.
func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

// GetOrCreateByPhone returns the account for phone, creating it on first login.
func (s *Service) GetOrCreateByPhone(ctx context.Context, phone string) (*User, error) {
	return s.repo.GetOrCreateByPhone(ctx, phone)
}

// GetByID returns a user by their UUID.
func (s *Service) GetByID(ctx context.Context, id string) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

// GetByPhone returns a user by their phone number.
func (s *Service) GetByPhone(ctx context.Context, phone string) (*User, error) {
	return s.repo.GetByPhone(ctx, phone)
}

// UpdateProfile updates the nil-able profile fields that were provided.
func (s *Service) UpdateProfile(ctx context.Context, id string, nickname, avatarURL *string) (*User, error) {
	return s.repo.UpdateProfile(ctx, id, nickname, avatarURL)
}

// IsNotFound returns true when the error indicates a user was not found.
func (s *Service) IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
