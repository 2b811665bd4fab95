package user

import (
	"context"
	"log/slog"
	"time"

	errors "github.com/frahmantamala/inventory-management/internal"
	adminDatamodel "github.com/frahmantamala/inventory-management/internal/core/datamodel/admin"
	userDatamodel "github.com/frahmantamala/inventory-management/internal/core/datamodel/user"
	coreUser "github.com/frahmantamala/inventory-management/internal/core/user"
	"github.com/frahmantamala/inventory-management/internal/metrics"
	"github.com/frahmantamala/inventory-management/pkg/mailer"
	"golang.org/x/crypto/bcrypt"
)

const MsgAccountCreated = "Account created successfully! Redirecting..."

// AfterInsertFunc runs inside the insert transaction; an error rolls the
// insert back.
type AfterInsertFunc func(ctx context.Context, created *userDatamodel.User) error

type RepositoryAPI interface {
	GetAll(ctx context.Context) ([]*userDatamodel.User, error)
	GetByID(ctx context.Context, id int64) (*userDatamodel.User, error)
	ListActiveByRole(ctx context.Context, role string) ([]*userDatamodel.User, error)
	EmailTaken(ctx context.Context, email string, excludeID int64) (bool, error)
	UsernameTaken(ctx context.Context, username string, excludeID int64) (bool, error)
	NextIDNumber(ctx context.Context) (string, error)
	Create(ctx context.Context, u *userDatamodel.User, admin *adminDatamodel.Admin, afterInsert AfterInsertFunc) error
	Update(ctx context.Context, u *userDatamodel.User) (bool, error)
	Delete(ctx context.Context, id int64) (bool, error)
}

type Config struct {
	BCryptCost int
}

type Service struct {
	repo   RepositoryAPI
	mailer mailer.Mailer
	cfg    Config
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, m mailer.Mailer, cfg Config, logger *slog.Logger) *Service {
	if cfg.BCryptCost == 0 {
		cfg.BCryptCost = bcrypt.DefaultCost
	}
	return &Service{
		repo:   repo,
		mailer: m,
		cfg:    cfg,
		logger: logger,
	}
}

// Register creates a self-service account with role User. The welcome email
// is part of the transaction: if it cannot be sent nothing is stored.
func (s *Service) Register(ctx context.Context, dto RegisterDTO) (*User, error) {
	dto.Normalize()
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	if err := s.checkUnique(ctx, dto.Email, dto.Username, 0); err != nil {
		return nil, err
	}

	hash, err := s.hash(dto.Password)
	if err != nil {
		return nil, err
	}

	u := &userDatamodel.User{
		FullName:     dto.FullName,
		Email:        dto.Email,
		Username:     dto.Username,
		PasswordHash: hash,
		Position:     dto.Position,
		Role:         coreUser.RoleUser.String(),
		IsActive:     true,
	}

	var admin *adminDatamodel.Admin
	if IsAdminPosition(dto.Position) {
		admin = &adminDatamodel.Admin{Username: dto.Username, PasswordHash: hash}
	}

	if err := s.repo.Create(ctx, u, admin, s.sendWelcome); err != nil {
		return nil, s.storeError("Registration failed.", err)
	}

	s.logger.Info("account registered", "user_id", u.ID, "id_number", u.IDNumber, "admin", admin != nil)
	return FromDataModel(u), nil
}

func (s *Service) sendWelcome(ctx context.Context, u *userDatamodel.User) error {
	body, err := mailer.Render(mailer.TemplateWelcome, mailer.WelcomeData{
		Name:     u.FullName,
		Username: u.Username,
		IDNumber: u.IDNumber,
	})
	if err != nil {
		return err
	}
	err = s.mailer.Send(ctx, mailer.Message{
		To:      []string{u.Email},
		Subject: "Welcome to CWTP Inventory",
		Body:    body,
		HTML:    true,
	})
	metrics.MailDeliveriesTotal.WithLabelValues(mailer.TemplateWelcome, metrics.Result(err)).Inc()
	if err != nil {
		return ErrWelcomeMailFail.WithCause(err)
	}
	return nil
}

// PreviewIDNumber is the id number the next registration would receive.
func (s *Service) PreviewIDNumber(ctx context.Context) (string, error) {
	id, err := s.repo.NextIDNumber(ctx)
	if err != nil {
		return "", errors.NewInternalError("Failed to compute id number.", err)
	}
	return id, nil
}

func (s *Service) ListUsers(ctx context.Context) ([]*User, error) {
	rows, err := s.repo.GetAll(ctx)
	if err != nil {
		s.logger.Error("failed to list users", "error", err)
		return nil, errors.NewInternalError("Failed to load users.", err)
	}
	return FromDataModels(rows), nil
}

func (s *Service) GetUser(ctx context.Context, id int64) (*User, error) {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, errors.NewInternalError("Failed to load user.", err)
	}
	if row == nil {
		return nil, nil
	}
	return FromDataModel(row), nil
}

func (s *Service) CreateUser(ctx context.Context, dto CreateUserDTO) (*User, error) {
	dto.Normalize()
	role, err := dto.Validate()
	if err != nil {
		return nil, err
	}

	taken, err := s.taken(ctx, dto.Email, dto.Username, 0)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrUserExists
	}

	hash, err := s.hash(dto.Password)
	if err != nil {
		return nil, err
	}

	active := true
	if dto.IsActive != nil {
		active = *dto.IsActive
	}

	u := &userDatamodel.User{
		FullName:        dto.FullName,
		Email:           dto.Email,
		Username:        dto.Username,
		PasswordHash:    hash,
		Position:        dto.Position,
		Role:            role.String(),
		IsActive:        active,
		IsEmailVerified: dto.IsEmailVerified,
	}
	if err := s.repo.Create(ctx, u, nil, nil); err != nil {
		return nil, s.storeError("Failed to create user.", err)
	}

	s.logger.Info("user created", "user_id", u.ID, "role", u.Role)
	return FromDataModel(u), nil
}

// UpdateUser reports false when no user has the given id.
func (s *Service) UpdateUser(ctx context.Context, dto UpdateUserDTO) (bool, error) {
	dto.Normalize()
	role, err := dto.Validate()
	if err != nil {
		return false, err
	}

	current, err := s.repo.GetByID(ctx, dto.ID)
	if err != nil {
		return false, errors.NewInternalError("Failed to load user.", err)
	}
	if current == nil {
		return false, nil
	}

	if err := s.checkUnique(ctx, dto.Email, dto.Username, dto.ID); err != nil {
		return false, err
	}

	current.FullName = dto.FullName
	current.Email = dto.Email
	current.Username = dto.Username
	current.Position = dto.Position
	current.Role = role.String()
	current.IsActive = dto.IsActive
	current.IsEmailVerified = dto.IsEmailVerified
	current.UpdatedAt = time.Now().UTC()
	if dto.Password != "" {
		hash, err := s.hash(dto.Password)
		if err != nil {
			return false, err
		}
		current.PasswordHash = hash
	}

	updated, err := s.repo.Update(ctx, current)
	if err != nil {
		return false, s.storeError("Failed to update user.", err)
	}
	return updated, nil
}

// DeleteUser is idempotent: deleting a missing user reports false, nil.
func (s *Service) DeleteUser(ctx context.Context, id int64) (bool, error) {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return false, errors.NewInternalError("Failed to delete user.", err)
	}
	if deleted {
		s.logger.Info("user deleted", "user_id", id)
	}
	return deleted, nil
}

func (s *Service) checkUnique(ctx context.Context, email, username string, excludeID int64) error {
	taken, err := s.repo.EmailTaken(ctx, email, excludeID)
	if err != nil {
		return errors.NewInternalError("Failed to check email.", err)
	}
	if taken {
		return ErrEmailExists
	}

	taken, err = s.repo.UsernameTaken(ctx, username, excludeID)
	if err != nil {
		return errors.NewInternalError("Failed to check username.", err)
	}
	if taken {
		return ErrUsernameExists
	}
	return nil
}

func (s *Service) taken(ctx context.Context, email, username string, excludeID int64) (bool, error) {
	err := s.checkUnique(ctx, email, username, excludeID)
	if err == nil {
		return false, nil
	}
	if appErr, ok := errors.IsAppError(err); ok && appErr.Type == errors.ErrorTypeConflict {
		return true, nil
	}
	return false, err
}

func (s *Service) hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cfg.BCryptCost)
	if err != nil {
		return "", errors.NewInternalError("Failed to hash password.", err)
	}
	return string(hash), nil
}

// storeError keeps AppErrors raised below the service (duplicates, mail
// failures) and wraps anything else.
func (s *Service) storeError(message string, err error) error {
	if _, ok := errors.IsAppError(err); ok {
		return err
	}
	s.logger.Error(message, "error", err)
	return errors.NewInternalError(message, err)
}
