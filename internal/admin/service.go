package admin

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	errors "github.com/frahmantamala/inventory-management/internal"
	adminDatamodel "github.com/frahmantamala/inventory-management/internal/core/datamodel/admin"
	"golang.org/x/crypto/bcrypt"
)

type RepositoryAPI interface {
	GetAll(ctx context.Context) ([]*adminDatamodel.Admin, error)
	GetByID(ctx context.Context, id int64) (*adminDatamodel.Admin, error)
	UsernameTaken(ctx context.Context, username string, excludeID int64) (bool, error)
	Create(ctx context.Context, a *adminDatamodel.Admin) error
	Update(ctx context.Context, a *adminDatamodel.Admin) (bool, error)
	Delete(ctx context.Context, id int64) (bool, error)
}

type Service struct {
	repo       RepositoryAPI
	bcryptCost int
	logger     *slog.Logger
}

func NewService(repo RepositoryAPI, bcryptCost int, logger *slog.Logger) *Service {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Service{
		repo:       repo,
		bcryptCost: bcryptCost,
		logger:     logger,
	}
}

func (s *Service) ListAdmins(ctx context.Context) ([]*Admin, error) {
	rows, err := s.repo.GetAll(ctx)
	if err != nil {
		s.logger.Error("failed to list admins", "error", err)
		return nil, errors.NewInternalError("Failed to load admin accounts.", err)
	}
	out := make([]*Admin, 0, len(rows))
	for _, r := range rows {
		out = append(out, FromDataModel(r))
	}
	return out, nil
}

func (s *Service) CreateAdmin(ctx context.Context, dto CreateAdminDTO) (*Admin, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	username := strings.TrimSpace(dto.Username)

	if err := s.checkUnique(ctx, username, 0); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(dto.Password), s.bcryptCost)
	if err != nil {
		return nil, errors.NewInternalError("Failed to hash password.", err)
	}

	a := &adminDatamodel.Admin{Username: username, PasswordHash: string(hash)}
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, s.storeError("Failed to create admin account.", err)
	}

	s.logger.Info("admin account created", "admin_id", a.ID)
	return FromDataModel(a), nil
}

// CreatedMessage is the confirmation shown after CreateAdmin.
func CreatedMessage(a *Admin) string {
	return fmt.Sprintf("Admin account '%s' created successfully!", a.Username)
}

// UpdateAdmin reports false when no admin has the given id.
func (s *Service) UpdateAdmin(ctx context.Context, dto UpdateAdminDTO) (bool, error) {
	if err := dto.Validate(); err != nil {
		return false, err
	}

	current, err := s.repo.GetByID(ctx, dto.ID)
	if err != nil {
		return false, errors.NewInternalError("Failed to load admin account.", err)
	}
	if current == nil {
		return false, nil
	}

	username := strings.TrimSpace(dto.Username)
	if err := s.checkUnique(ctx, username, dto.ID); err != nil {
		return false, err
	}
	current.Username = username

	if strings.TrimSpace(dto.Password) != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(dto.Password), s.bcryptCost)
		if err != nil {
			return false, errors.NewInternalError("Failed to hash password.", err)
		}
		current.PasswordHash = string(hash)
	}

	updated, err := s.repo.Update(ctx, current)
	if err != nil {
		return false, s.storeError("Failed to update admin account.", err)
	}
	return updated, nil
}

func (s *Service) DeleteAdmin(ctx context.Context, id int64) (bool, error) {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return false, errors.NewInternalError("Failed to delete admin account.", err)
	}
	return deleted, nil
}

func (s *Service) checkUnique(ctx context.Context, username string, excludeID int64) error {
	taken, err := s.repo.UsernameTaken(ctx, username, excludeID)
	if err != nil {
		return errors.NewInternalError("Failed to check admin username.", err)
	}
	if taken {
		return ErrUsernameExists
	}
	return nil
}

func (s *Service) storeError(message string, err error) error {
	if _, ok := errors.IsAppError(err); ok {
		return err
	}
	s.logger.Error(message, "error", err)
	return errors.NewInternalError(message, err)
}
