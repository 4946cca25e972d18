package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/monocle-dev/carbontrack/internal/models"
	"gorm.io/gorm"
)

func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	err := s.db.WithContext(ctx).Create(user).Error

	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrEmailTaken
	}

	return err
}

func (s *Store) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User

	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, notFound(err)
	}

	return &user, nil
}

func (s *Store) UserByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User

	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, notFound(err)
	}

	return &user, nil
}

// EnsureAdmin creates the admin account when no user holds its email yet.
// It reports whether a user was created.
func (s *Store) EnsureAdmin(ctx context.Context, admin *models.User) (bool, error) {
	_, err := s.UserByEmail(ctx, admin.Email)

	if err == nil {
		return false, nil
	}

	if !errors.Is(err, ErrNotFound) {
		return false, fmt.Errorf("look up admin: %w", err)
	}

	admin.IsAdmin = true

	if err := s.CreateUser(ctx, admin); err != nil {
		return false, fmt.Errorf("create admin: %w", err)
	}

	return true, nil
}
