package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/frahmantamala/inventory-management/internal/auth"
	adminDatamodel "github.com/frahmantamala/inventory-management/internal/core/datamodel/admin"
	userDatamodel "github.com/frahmantamala/inventory-management/internal/core/datamodel/user"
	verificationDatamodel "github.com/frahmantamala/inventory-management/internal/core/datamodel/verification"
	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) auth.RepositoryAPI {
	return &Repository{
		db: db,
	}
}

func (r *Repository) FindActiveUserByIdentifier(ctx context.Context, identifier string) (*userDatamodel.User, error) {
	var user userDatamodel.User
	err := r.db.WithContext(ctx).
		Where("(LOWER(email) = LOWER(?) OR username = ?) AND is_active = ?", identifier, identifier, true).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (r *Repository) FindActiveUserByEmail(ctx context.Context, email string) (*userDatamodel.User, error) {
	var user userDatamodel.User
	err := r.db.WithContext(ctx).
		Where("LOWER(email) = LOWER(?) AND is_active = ?", email, true).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (r *Repository) RecordVerificationCode(ctx context.Context, code *verificationDatamodel.VerificationCode) error {
	return r.db.WithContext(ctx).Create(code).Error
}

// CompleteVerification marks the user verified, stamps the login and
// consumes the issued code in one transaction. A missing user yields nil.
func (r *Repository) CompleteVerification(ctx context.Context, userID int64, code string, at time.Time) (*userDatamodel.User, error) {
	var verified *userDatamodel.User
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user userDatamodel.User
		if err := tx.Where("id = ? AND is_active = ?", userID, true).First(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}

		err := tx.Model(&userDatamodel.User{}).Where("id = ?", userID).Updates(map[string]interface{}{
			"is_email_verified": true,
			"last_login":        at,
			"updated_at":        at,
		}).Error
		if err != nil {
			return err
		}

		err = tx.Model(&verificationDatamodel.VerificationCode{}).
			Where("email = ? AND code = ? AND type = ? AND is_used = ?", user.Email, code, verificationDatamodel.TypeLoginOTP, false).
			Update("is_used", true).Error
		if err != nil {
			return err
		}

		user.IsEmailVerified = true
		user.LastLogin = &at
		user.UpdatedAt = at
		verified = &user
		return nil
	})
	if err != nil {
		return nil, err
	}
	return verified, nil
}

func (r *Repository) FindAdminByUsername(ctx context.Context, username string) (*adminDatamodel.Admin, error) {
	var admin adminDatamodel.Admin
	err := r.db.WithContext(ctx).Where("username = ?", username).First(&admin).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &admin, nil
}

func (r *Repository) UpdateAdminPasswordHash(ctx context.Context, adminID int64, hash string) error {
	return r.db.WithContext(ctx).Model(&adminDatamodel.Admin{}).
		Where("id = ?", adminID).
		Update("password_hash", hash).Error
}

func (r *Repository) FindActiveAdminKey(ctx context.Context, keyHash string) (*adminDatamodel.AdminKey, error) {
	var key adminDatamodel.AdminKey
	err := r.db.WithContext(ctx).Where("key_hash = ? AND is_active = ?", keyHash, true).First(&key).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &key, nil
}

func (r *Repository) CreateAdminKey(ctx context.Context, key *adminDatamodel.AdminKey) error {
	return r.db.WithContext(ctx).Create(key).Error
}

func (r *Repository) CreatePasswordResetToken(ctx context.Context, token *verificationDatamodel.PasswordResetToken) error {
	return r.db.WithContext(ctx).Create(token).Error
}

// ResetPassword consumes an unexpired, unused token and replaces the
// owner's password hash.
func (r *Repository) ResetPassword(ctx context.Context, token, passwordHash string, at time.Time) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var reset verificationDatamodel.PasswordResetToken
		err := tx.Where("token = ? AND is_used = ? AND expires_at > ?", token, false, at).First(&reset).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return auth.ErrInvalidResetToken
			}
			return err
		}

		res := tx.Model(&userDatamodel.User{}).Where("id = ?", reset.UserID).Updates(map[string]interface{}{
			"password_hash": passwordHash,
			"updated_at":    at,
		})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return auth.ErrInvalidResetToken
		}

		return tx.Model(&verificationDatamodel.PasswordResetToken{}).
			Where("id = ?", reset.ID).
			Update("is_used", true).Error
	})
}
