package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/welldanyogia/webrana-briefing-backend/internal/models"
	"gorm.io/gorm"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	TransferPremium(ctx context.Context, sourceUserID, targetUserID string) error
}

// userRepository implements UserRepository using GORM
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new UserRepository instance
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// GetByID retrieves a user by ID
func (r *userRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	result := r.db.WithContext(ctx).First(&user, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by ID: %w", result.Error)
	}
	return &user, nil
}

// TransferPremium moves the source user's premium subscription to the
// target user during an account merge. The transfer only happens when the
// source holds premium and the target does not; otherwise it is a no-op.
func (r *userRepository) TransferPremium(ctx context.Context, sourceUserID, targetUserID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var source, target models.User
		if err := tx.First(&source, "id = ?", sourceUserID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("failed to load source user: %w", err)
		}
		if err := tx.First(&target, "id = ?", targetUserID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("failed to load target user: %w", err)
		}

		if !source.HasPremium() || target.HasPremium() {
			return nil
		}

		if err := tx.Model(&models.User{}).Where("id = ?", targetUserID).
			Updates(map[string]interface{}{
				"premium_tier":       source.PremiumTier,
				"premium_expires_at": source.PremiumExpiresAt,
			}).Error; err != nil {
			return fmt.Errorf("failed to grant premium to target user: %w", err)
		}

		if err := tx.Model(&models.User{}).Where("id = ?", sourceUserID).
			Updates(map[string]interface{}{
				"premium_tier":       nil,
				"premium_expires_at": nil,
			}).Error; err != nil {
			return fmt.Errorf("failed to revoke premium from source user: %w", err)
		}

		return nil
	})
}
