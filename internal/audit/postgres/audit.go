package postgres

import (
	"context"

	"github.com/frahmantamala/inventory-management/internal/audit"
	auditDatamodel "github.com/frahmantamala/inventory-management/internal/core/datamodel/audit"
	"gorm.io/gorm"
)

type AuditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) audit.RepositoryAPI {
	return &AuditRepository{db: db}
}

func (r *AuditRepository) Append(ctx context.Context, entry *auditDatamodel.AuditLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *AuditRepository) ListByAction(ctx context.Context, action string, limit int) ([]*auditDatamodel.AuditLog, error) {
	var logs []*auditDatamodel.AuditLog
	err := r.db.WithContext(ctx).
		Where("action = ?", action).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&logs).Error
	return logs, err
}

func (r *AuditRepository) ListByUserAndAction(ctx context.Context, userID int64, action string, limit int) ([]*auditDatamodel.AuditLog, error) {
	var logs []*auditDatamodel.AuditLog
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND action = ?", userID, action).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&logs).Error
	return logs, err
}
