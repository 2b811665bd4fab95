package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/frahmantamala/inventory-management/internal/admin"
	adminDatamodel "github.com/frahmantamala/inventory-management/internal/core/datamodel/admin"
	"gorm.io/gorm"
)

type AdminRepository struct {
	db *gorm.DB
}

func NewAdminRepository(db *gorm.DB) admin.RepositoryAPI {
	return &AdminRepository{db: db}
}

func (r *AdminRepository) GetAll(ctx context.Context) ([]*adminDatamodel.Admin, error) {
	var admins []*adminDatamodel.Admin
	err := r.db.WithContext(ctx).Order("username ASC").Find(&admins).Error
	return admins, err
}

func (r *AdminRepository) GetByID(ctx context.Context, id int64) (*adminDatamodel.Admin, error) {
	var a adminDatamodel.Admin
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&a).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

func (r *AdminRepository) UsernameTaken(ctx context.Context, username string, excludeID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&adminDatamodel.Admin{}).
		Where("username = ? AND id <> ?", username, excludeID).
		Count(&count).Error
	return count > 0, err
}

func (r *AdminRepository) Create(ctx context.Context, a *adminDatamodel.Admin) error {
	err := r.db.WithContext(ctx).Create(a).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return admin.ErrUsernameExists.WithCause(err)
	}
	return err
}

func (r *AdminRepository) Update(ctx context.Context, a *adminDatamodel.Admin) (bool, error) {
	res := r.db.WithContext(ctx).Model(&adminDatamodel.Admin{}).Where("id = ?", a.ID).Updates(map[string]interface{}{
		"username":      a.Username,
		"password_hash": a.PasswordHash,
		"updated_at":    time.Now().UTC(),
	})
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return false, admin.ErrUsernameExists.WithCause(res.Error)
		}
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *AdminRepository) Delete(ctx context.Context, id int64) (bool, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&adminDatamodel.Admin{})
	return res.RowsAffected > 0, res.Error
}
