package audit

import (
	"context"
	"log/slog"

	errors "github.com/frahmantamala/inventory-management/internal"
	auditDatamodel "github.com/frahmantamala/inventory-management/internal/core/datamodel/audit"
)

type RepositoryAPI interface {
	Append(ctx context.Context, entry *auditDatamodel.AuditLog) error
	ListByAction(ctx context.Context, action string, limit int) ([]*auditDatamodel.AuditLog, error)
	ListByUserAndAction(ctx context.Context, userID int64, action string, limit int) ([]*auditDatamodel.AuditLog, error)
}

type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Record appends one entry. Entries are never updated or removed.
func (s *Service) Record(ctx context.Context, entry *auditDatamodel.AuditLog) error {
	if entry.Action == "" {
		return errors.NewValidationError("Audit action is required.", errors.ErrCodeValidationFailed)
	}
	if err := s.repo.Append(ctx, entry); err != nil {
		s.logger.Error("failed to append audit log", "action", entry.Action, "error", err)
		return errors.NewInternalError("Failed to write audit log.", err)
	}
	return nil
}

// LoginHistory is the most recent logins across all accounts.
func (s *Service) LoginHistory(ctx context.Context, limit int) ([]*Entry, error) {
	logs, err := s.repo.ListByAction(ctx, auditDatamodel.ActionLogin, limit)
	if err != nil {
		s.logger.Error("failed to load login history", "error", err)
		return nil, errors.NewInternalError("Failed to load login history.", err)
	}
	return FromDataModels(logs), nil
}

func (s *Service) UserLoginHistory(ctx context.Context, userID int64, limit int) ([]*Entry, error) {
	logs, err := s.repo.ListByUserAndAction(ctx, userID, auditDatamodel.ActionLogin, limit)
	if err != nil {
		s.logger.Error("failed to load login history", "user_id", userID, "error", err)
		return nil, errors.NewInternalError("Failed to load login history.", err)
	}
	return FromDataModels(logs), nil
}
