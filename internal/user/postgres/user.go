package postgres

import (
	"context"
	"errors"

	adminDatamodel "github.com/frahmantamala/inventory-management/internal/core/datamodel/admin"
	userDatamodel "github.com/frahmantamala/inventory-management/internal/core/datamodel/user"
	"github.com/frahmantamala/inventory-management/internal/user"
	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

var _ user.RepositoryAPI = (*UserRepository)(nil)

func (r *UserRepository) GetAll(ctx context.Context) ([]*userDatamodel.User, error) {
	var users []*userDatamodel.User
	err := r.db.WithContext(ctx).Order("username ASC").Find(&users).Error
	return users, err
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*userDatamodel.User, error) {
	var u userDatamodel.User
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) ListActiveByRole(ctx context.Context, role string) ([]*userDatamodel.User, error) {
	var users []*userDatamodel.User
	err := r.db.WithContext(ctx).
		Where("role = ? AND is_active = ?", role, true).
		Order("username ASC").
		Find(&users).Error
	return users, err
}

func (r *UserRepository) EmailTaken(ctx context.Context, email string, excludeID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&userDatamodel.User{}).
		Where("LOWER(email) = LOWER(?) AND id <> ?", email, excludeID).
		Count(&count).Error
	return count > 0, err
}

func (r *UserRepository) UsernameTaken(ctx context.Context, username string, excludeID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&userDatamodel.User{}).
		Where("username = ? AND id <> ?", username, excludeID).
		Count(&count).Error
	return count > 0, err
}

func (r *UserRepository) NextIDNumber(ctx context.Context) (string, error) {
	return nextIDNumber(r.db.WithContext(ctx))
}

func nextIDNumber(db *gorm.DB) (string, error) {
	var last userDatamodel.User
	err := db.Order("id DESC").First(&last).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return user.NextIDNumber(""), nil
		}
		return "", err
	}
	return user.NextIDNumber(last.IDNumber), nil
}

// Create assigns the next id number and inserts u, plus admin when given,
// in one transaction. afterInsert runs last and can veto the whole insert.
func (r *UserRepository) Create(ctx context.Context, u *userDatamodel.User, admin *adminDatamodel.Admin, afterInsert user.AfterInsertFunc) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if u.IDNumber == "" {
			id, err := nextIDNumber(tx)
			if err != nil {
				return err
			}
			u.IDNumber = id
		}

		if err := tx.Create(u).Error; err != nil {
			return translate(err)
		}

		if admin != nil {
			if err := tx.Create(admin).Error; err != nil {
				return translate(err)
			}
		}

		if afterInsert != nil {
			return afterInsert(ctx, u)
		}
		return nil
	})
}

func (r *UserRepository) Update(ctx context.Context, u *userDatamodel.User) (bool, error) {
	res := r.db.WithContext(ctx).Model(&userDatamodel.User{}).Where("id = ?", u.ID).Updates(map[string]interface{}{
		"full_name":         u.FullName,
		"email":             u.Email,
		"username":          u.Username,
		"password_hash":     u.PasswordHash,
		"position":          u.Position,
		"role":              u.Role,
		"is_active":         u.IsActive,
		"is_email_verified": u.IsEmailVerified,
		"updated_at":        u.UpdatedAt,
	})
	if res.Error != nil {
		return false, translate(res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *UserRepository) Delete(ctx context.Context, id int64) (bool, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&userDatamodel.User{})
	return res.RowsAffected > 0, res.Error
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return user.ErrUserExists.WithCause(err)
	}
	return err
}
