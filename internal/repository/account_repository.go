package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/welldanyogia/webrana-briefing-backend/internal/models"
	"gorm.io/gorm"
)

// AccountRepository defines the interface for email account data access
type AccountRepository interface {
	Create(ctx context.Context, account *models.EmailAccount) error
	GetByID(ctx context.Context, id string) (*models.EmailAccount, error)
	ListByUser(ctx context.Context, userID string) ([]models.EmailAccount, error)
	GetByProviderAccountID(ctx context.Context, provider, providerAccountID string) (*models.EmailAccount, error)
	FindByUserAndEmail(ctx context.Context, userID, email string) (*models.EmailAccount, error)
	GetGuidance(ctx context.Context, accountID, userID string) (*string, error)
	UpdateGuidance(ctx context.Context, accountID, userID string, guidance *string) error
	UpdateTokens(ctx context.Context, account *models.EmailAccount) error
	ClearTokens(ctx context.Context, accountID, reason string) error
	ReassignToUser(ctx context.Context, sourceUserID, targetUserID string, mergedAccountID string, newName, newEmail *string) error
}

// accountRepository implements AccountRepository using GORM
type accountRepository struct {
	db *gorm.DB
}

// NewAccountRepository creates a new AccountRepository instance
func NewAccountRepository(db *gorm.DB) AccountRepository {
	return &accountRepository{db: db}
}

// Create creates a new email account
func (r *accountRepository) Create(ctx context.Context, account *models.EmailAccount) error {
	account.Email = strings.ToLower(strings.TrimSpace(account.Email))
	result := r.db.WithContext(ctx).Create(account)
	if result.Error != nil {
		if isDuplicateKeyError(result.Error) {
			return ErrDuplicateEntry
		}
		return fmt.Errorf("failed to create email account: %w", result.Error)
	}
	return nil
}

// GetByID retrieves an email account by its ID
func (r *accountRepository) GetByID(ctx context.Context, id string) (*models.EmailAccount, error) {
	var account models.EmailAccount
	result := r.db.WithContext(ctx).First(&account, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get email account by ID: %w", result.Error)
	}
	return &account, nil
}

// ListByUser retrieves all email accounts owned by a user, ordered by
// creation time ascending. Briefing output follows this order.
func (r *accountRepository) ListByUser(ctx context.Context, userID string) ([]models.EmailAccount, error) {
	var accounts []models.EmailAccount
	result := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&accounts)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list email accounts: %w", result.Error)
	}
	return accounts, nil
}

// GetByProviderAccountID retrieves an account by its provider identity
func (r *accountRepository) GetByProviderAccountID(ctx context.Context, provider, providerAccountID string) (*models.EmailAccount, error) {
	var account models.EmailAccount
	result := r.db.WithContext(ctx).
		Where("provider = ? AND provider_account_id = ?", provider, providerAccountID).
		First(&account)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get account by provider identity: %w", result.Error)
	}
	return &account, nil
}

// FindByUserAndEmail retrieves a user's account matching an email address
func (r *accountRepository) FindByUserAndEmail(ctx context.Context, userID, email string) (*models.EmailAccount, error) {
	var account models.EmailAccount
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND email = ?", userID, strings.ToLower(strings.TrimSpace(email))).
		First(&account)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find account by user and email: %w", result.Error)
	}
	return &account, nil
}

// GetGuidance returns the account's briefing guidance after verifying that
// the account belongs to the given user. NULL means "use the default".
func (r *accountRepository) GetGuidance(ctx context.Context, accountID, userID string) (*string, error) {
	account, err := r.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if account.UserID != userID {
		return nil, ErrForbidden
	}
	return account.BriefingGuidance, nil
}

// UpdateGuidance sets or clears the account's briefing guidance.
// Empty or whitespace-only guidance is stored as NULL.
func (r *accountRepository) UpdateGuidance(ctx context.Context, accountID, userID string, guidance *string) error {
	account, err := r.GetByID(ctx, accountID)
	if err != nil {
		return err
	}
	if account.UserID != userID {
		return ErrForbidden
	}

	if guidance != nil && strings.TrimSpace(*guidance) == "" {
		guidance = nil
	}

	result := r.db.WithContext(ctx).
		Model(&models.EmailAccount{}).
		Where("id = ?", accountID).
		Update("briefing_guidance", guidance)
	if result.Error != nil {
		return fmt.Errorf("failed to update briefing guidance: %w", result.Error)
	}
	return nil
}

// UpdateTokens persists refreshed OAuth tokens for an account
func (r *accountRepository) UpdateTokens(ctx context.Context, account *models.EmailAccount) error {
	result := r.db.WithContext(ctx).
		Model(&models.EmailAccount{}).
		Where("id = ?", account.ID).
		Updates(map[string]interface{}{
			"access_token":     account.AccessToken,
			"refresh_token":    account.RefreshToken,
			"token_expires_at": account.TokenExpiresAt,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update tokens: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ClearTokens nulls out an account's OAuth tokens after the provider
// rejected them. Idempotent: clearing already-cleared tokens succeeds.
func (r *accountRepository) ClearTokens(ctx context.Context, accountID, reason string) error {
	result := r.db.WithContext(ctx).
		Model(&models.EmailAccount{}).
		Where("id = ?", accountID).
		Updates(map[string]interface{}{
			"access_token":     nil,
			"refresh_token":    nil,
			"token_expires_at": nil,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to clear tokens (reason=%s): %w", reason, result.Error)
	}
	return nil
}

// ReassignToUser moves all of the source user's email accounts to the
// target user and deletes the source user, in a single transaction.
// Moving every account prevents a cascade delete from taking sibling
// accounts down with the source user. The merged account optionally takes
// the source user's display name and email.
func (r *accountRepository) ReassignToUser(ctx context.Context, sourceUserID, targetUserID string, mergedAccountID string, newName, newEmail *string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var accounts []models.EmailAccount
		if err := tx.Where("user_id = ?", sourceUserID).Find(&accounts).Error; err != nil {
			return fmt.Errorf("failed to list source accounts: %w", err)
		}

		for i := range accounts {
			updates := map[string]interface{}{"user_id": targetUserID}
			if accounts[i].ID == mergedAccountID {
				if newName != nil {
					updates["name"] = *newName
				}
				if newEmail != nil {
					updates["email"] = strings.ToLower(strings.TrimSpace(*newEmail))
				}
			}
			if err := tx.Model(&models.EmailAccount{}).
				Where("id = ?", accounts[i].ID).
				Updates(updates).Error; err != nil {
				return fmt.Errorf("failed to reassign account %s: %w", accounts[i].ID, err)
			}
		}

		if err := tx.Delete(&models.User{}, "id = ?", sourceUserID).Error; err != nil {
			return fmt.Errorf("failed to delete source user: %w", err)
		}

		return nil
	})
}
