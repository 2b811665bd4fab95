package auth

import (
	"context"
	"crypto/subtle"
	"fmt"
	"log/slog"
	"strings"
	"time"

	errors "github.com/frahmantamala/inventory-management/internal"
	adminDatamodel "github.com/frahmantamala/inventory-management/internal/core/datamodel/admin"
	userDatamodel "github.com/frahmantamala/inventory-management/internal/core/datamodel/user"
	verificationDatamodel "github.com/frahmantamala/inventory-management/internal/core/datamodel/verification"
	"github.com/frahmantamala/inventory-management/internal/core/events"
	coreUser "github.com/frahmantamala/inventory-management/internal/core/user"
	"github.com/frahmantamala/inventory-management/internal/metrics"
	"github.com/frahmantamala/inventory-management/internal/session"
	"github.com/frahmantamala/inventory-management/pkg/mailer"
	"golang.org/x/crypto/bcrypt"
)

const (
	MsgCodeSent        = "Verification code sent to your email."
	MsgCodeFallback    = "Verification code: %s (Email sending failed, but you can still verify)"
	MsgAdminLoginOK    = "Admin login successful! Redirecting..."
	MsgVerified        = "Email verified successfully! Redirecting..."
	MsgLoggedOut       = "Logged out successfully."
	MsgAdminKeyCreated = "Admin key created successfully!"
	MsgResetLinkSent   = "If the email is registered, a password reset link has been sent."
	MsgPasswordReset   = "Password updated successfully! Please login."
)

const (
	defaultOTPMinutes = 10
	loginKindUser     = "user"
	loginKindAdmin    = "admin"
)

type RepositoryAPI interface {
	FindActiveUserByIdentifier(ctx context.Context, identifier string) (*userDatamodel.User, error)
	FindActiveUserByEmail(ctx context.Context, email string) (*userDatamodel.User, error)
	RecordVerificationCode(ctx context.Context, code *verificationDatamodel.VerificationCode) error
	CompleteVerification(ctx context.Context, userID int64, code string, at time.Time) (*userDatamodel.User, error)
	FindAdminByUsername(ctx context.Context, username string) (*adminDatamodel.Admin, error)
	UpdateAdminPasswordHash(ctx context.Context, adminID int64, hash string) error
	FindActiveAdminKey(ctx context.Context, keyHash string) (*adminDatamodel.AdminKey, error)
	CreateAdminKey(ctx context.Context, key *adminDatamodel.AdminKey) error
	CreatePasswordResetToken(ctx context.Context, token *verificationDatamodel.PasswordResetToken) error
	ResetPassword(ctx context.Context, token, passwordHash string, at time.Time) error
}

type Config struct {
	MasterKey               string
	OTPTTL                  time.Duration
	MaxVerifyAttempts       int
	BCryptCost              int
	ExposeCodeOnMailFailure bool
	ResetTokenTTL           time.Duration
	BaseURL                 string
}

type Service struct {
	repo   RepositoryAPI
	mailer mailer.Mailer
	events events.Publisher
	cfg    Config
	logger *slog.Logger

	now          func() time.Time
	generateCode func() (string, error)
}

func NewService(repo RepositoryAPI, m mailer.Mailer, publisher events.Publisher, cfg Config, logger *slog.Logger) *Service {
	if cfg.ResetTokenTTL <= 0 {
		cfg.ResetTokenTTL = time.Hour
	}
	return &Service{
		repo:         repo,
		mailer:       m,
		events:       publisher,
		cfg:          cfg,
		logger:       logger,
		now:          time.Now,
		generateCode: GenerateOTP,
	}
}

// InitiateUserLogin checks the password and moves the session to pending
// verification. The returned state must be committed by the caller.
func (s *Service) InitiateUserLogin(ctx context.Context, dto UserLoginDTO) (session.State, Outcome, error) {
	if err := dto.Validate(); err != nil {
		metrics.LoginAttemptsTotal.WithLabelValues(loginKindUser, "invalid").Inc()
		return session.State{}, Outcome{}, err
	}

	identifier := strings.TrimSpace(dto.Email)
	user, err := s.repo.FindActiveUserByIdentifier(ctx, identifier)
	if err != nil {
		metrics.LoginAttemptsTotal.WithLabelValues(loginKindUser, "error").Inc()
		return session.State{}, Outcome{}, errors.NewInternalError("Failed to look up account.", err)
	}
	if user == nil {
		metrics.LoginAttemptsTotal.WithLabelValues(loginKindUser, "not_found").Inc()
		return session.State{}, Outcome{}, ErrAccountNotFound
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(dto.Password)); err != nil {
		metrics.LoginAttemptsTotal.WithLabelValues(loginKindUser, "invalid_credentials").Inc()
		s.logger.Info("user login rejected", "user_id", user.ID)
		return session.State{}, Outcome{}, ErrInvalidCredentials
	}

	code, err := s.generateCode()
	if err != nil {
		return session.State{}, Outcome{}, errors.NewInternalError("Failed to generate verification code.", err)
	}

	issuedAt := s.now().UTC()
	if err := s.repo.RecordVerificationCode(ctx, &verificationDatamodel.VerificationCode{
		Email:     user.Email,
		Code:      code,
		Type:      verificationDatamodel.TypeLoginOTP,
		ExpiresAt: issuedAt.Add(s.otpValidity()),
	}); err != nil {
		return session.State{}, Outcome{}, errors.NewInternalError("Failed to issue verification code.", err)
	}

	next := session.PendingVerification(session.Pending{
		UserID:   user.ID,
		Email:    user.Email,
		Role:     coreUser.RoleOrUser(user.Role),
		Code:     code,
		IssuedAt: issuedAt,
	})
	metrics.LoginAttemptsTotal.WithLabelValues(loginKindUser, "pending").Inc()

	if err := s.sendLoginCode(ctx, user, code); err != nil {
		metrics.OTPIssuedTotal.WithLabelValues("false").Inc()
		s.logger.Warn("verification email failed", "user_id", user.ID, "error", err)
		if s.cfg.ExposeCodeOnMailFailure {
			return next, Outcome{Message: fmt.Sprintf(MsgCodeFallback, code)}, nil
		}
		return next, Outcome{Message: MsgCodeSent}, nil
	}

	metrics.OTPIssuedTotal.WithLabelValues("true").Inc()
	return next, Outcome{Message: MsgCodeSent}, nil
}

func (s *Service) otpValidity() time.Duration {
	if s.cfg.OTPTTL > 0 {
		return s.cfg.OTPTTL
	}
	return defaultOTPMinutes * time.Minute
}

func (s *Service) sendLoginCode(ctx context.Context, user *userDatamodel.User, code string) error {
	body, err := mailer.Render(mailer.TemplateLoginOTP, mailer.LoginOTPData{
		Name:             user.FullName,
		Code:             code,
		ExpiresInMinutes: int(s.otpValidity() / time.Minute),
	})
	if err != nil {
		return err
	}
	err = s.mailer.Send(ctx, mailer.Message{
		To:      []string{user.Email},
		Subject: mailer.SubjectLoginOTP,
		Body:    body,
		HTML:    true,
	})
	metrics.MailDeliveriesTotal.WithLabelValues(mailer.TemplateLoginOTP, metrics.Result(err)).Inc()
	return err
}

// InitiateAdminLogin authenticates an admin directly, without a code step.
func (s *Service) InitiateAdminLogin(ctx context.Context, dto AdminLoginDTO) (session.State, Outcome, error) {
	if err := dto.Validate(); err != nil {
		metrics.LoginAttemptsTotal.WithLabelValues(loginKindAdmin, "invalid").Inc()
		return session.State{}, Outcome{}, err
	}

	username := strings.TrimSpace(dto.Username)
	admin, err := s.repo.FindAdminByUsername(ctx, username)
	if err != nil {
		metrics.LoginAttemptsTotal.WithLabelValues(loginKindAdmin, "error").Inc()
		return session.State{}, Outcome{}, errors.NewInternalError("Failed to look up admin account.", err)
	}
	if admin == nil {
		metrics.LoginAttemptsTotal.WithLabelValues(loginKindAdmin, "not_found").Inc()
		return session.State{}, Outcome{}, ErrAdminNotFound
	}

	legacy, ok := checkAdminPassword(admin.PasswordHash, dto.Password)
	if !ok {
		metrics.LoginAttemptsTotal.WithLabelValues(loginKindAdmin, "invalid_credentials").Inc()
		s.logger.Info("admin login rejected", "admin_id", admin.ID)
		return session.State{}, Outcome{}, ErrInvalidAdminCredentials
	}

	key, err := s.repo.FindActiveAdminKey(ctx, HashAdminKey(strings.TrimSpace(dto.AdminKey)))
	if err != nil {
		metrics.LoginAttemptsTotal.WithLabelValues(loginKindAdmin, "error").Inc()
		return session.State{}, Outcome{}, errors.NewInternalError("Failed to check admin key.", err)
	}
	if key == nil {
		metrics.LoginAttemptsTotal.WithLabelValues(loginKindAdmin, "invalid_key").Inc()
		return session.State{}, Outcome{}, ErrInvalidAdminKey
	}

	if legacy {
		s.upgradeLegacyPassword(ctx, admin.ID, dto.Password)
	}

	principal := session.Principal{
		AdminID:  admin.ID,
		Username: admin.Username,
		Role:     coreUser.RoleAdmin,
	}
	metrics.LoginAttemptsTotal.WithLabelValues(loginKindAdmin, "success").Inc()
	s.publishLogin(ctx, principal)

	return session.Authenticated(principal), Outcome{
		Message:  MsgAdminLoginOK,
		Redirect: coreUser.AdminDashboardPath,
	}, nil
}

// checkAdminPassword reports whether password matches and whether the
// stored value was a legacy plaintext password.
func checkAdminPassword(stored, password string) (legacy bool, ok bool) {
	if isBcryptHash(stored) {
		return false, bcrypt.CompareHashAndPassword([]byte(stored), []byte(password)) == nil
	}
	if stored == "" {
		return false, false
	}
	return true, subtle.ConstantTimeCompare([]byte(stored), []byte(password)) == 1
}

func (s *Service) upgradeLegacyPassword(ctx context.Context, adminID int64, password string) {
	hash, err := HashPassword(password, s.cfg.BCryptCost)
	if err != nil {
		s.logger.Error("failed to hash legacy admin password", "admin_id", adminID, "error", err)
		return
	}
	if err := s.repo.UpdateAdminPasswordHash(ctx, adminID, hash); err != nil {
		s.logger.Error("failed to upgrade legacy admin password", "admin_id", adminID, "error", err)
		return
	}
	s.logger.Info("legacy admin password rehashed", "admin_id", adminID)
}

// VerifyCode always returns the state the session should hold afterwards,
// including on failure: a mismatch keeps the session pending with one more
// attempt counted, while expiry and exhausted attempts reset it. A session
// that is not pending is returned untouched.
func (s *Service) VerifyCode(ctx context.Context, current session.State, dto VerifyCodeDTO) (session.State, Outcome, error) {
	if !current.IsPending() || strings.TrimSpace(current.Pending.Code) == "" {
		metrics.OTPVerificationsTotal.WithLabelValues("no_session").Inc()
		return current, Outcome{}, ErrSessionExpired
	}
	pending := current.Pending

	if s.cfg.OTPTTL > 0 && s.now().After(pending.IssuedAt.Add(s.cfg.OTPTTL)) {
		metrics.OTPVerificationsTotal.WithLabelValues("expired").Inc()
		return session.Anonymous(), Outcome{}, ErrCodeExpired
	}

	submitted := strings.TrimSpace(dto.Code)
	if submitted == "" {
		return current, Outcome{}, ErrCodeRequired
	}

	if subtle.ConstantTimeCompare([]byte(submitted), []byte(strings.TrimSpace(pending.Code))) != 1 {
		next := current.WithFailedAttempt()
		if s.cfg.MaxVerifyAttempts > 0 && next.Pending.Attempts >= s.cfg.MaxVerifyAttempts {
			metrics.OTPVerificationsTotal.WithLabelValues("too_many_attempts").Inc()
			return session.Anonymous(), Outcome{}, ErrTooManyAttempts
		}
		metrics.OTPVerificationsTotal.WithLabelValues("invalid").Inc()
		return next, Outcome{}, ErrInvalidCode
	}

	user, err := s.repo.CompleteVerification(ctx, pending.UserID, pending.Code, s.now().UTC())
	if err != nil {
		return current, Outcome{}, errors.NewInternalError("Failed to complete verification.", err)
	}
	if user == nil {
		metrics.OTPVerificationsTotal.WithLabelValues("no_session").Inc()
		return session.Anonymous(), Outcome{}, ErrUserNotFound
	}

	principal := session.Principal{
		UserID:   user.ID,
		Username: user.Username,
		Role:     coreUser.RoleOrUser(user.Role),
	}
	metrics.OTPVerificationsTotal.WithLabelValues("success").Inc()
	metrics.LoginAttemptsTotal.WithLabelValues(loginKindUser, "success").Inc()
	s.publishLogin(ctx, principal)

	return session.Authenticated(principal), Outcome{
		Message:  MsgVerified,
		Redirect: coreUser.LandingPath(principal.Role),
	}, nil
}

// Logout records the logout of an authenticated session. Other states have
// nothing to record.
func (s *Service) Logout(ctx context.Context, current session.State) Outcome {
	if current.IsAuthenticated() {
		p := current.Principal
		s.publish(ctx, events.NewUserLoggedOutEvent(optionalID(p.UserID), optionalID(p.AdminID), p.Username, p.Role.String(), errors.ClientIPFromContext(ctx)))
	}
	return Outcome{Message: MsgLoggedOut, Redirect: coreUser.LoginPath}
}

func (s *Service) publishLogin(ctx context.Context, p session.Principal) {
	s.publish(ctx, events.NewUserLoggedInEvent(optionalID(p.UserID), optionalID(p.AdminID), p.Username, p.Role.String(), errors.ClientIPFromContext(ctx)))
}

func (s *Service) publish(ctx context.Context, event events.Event) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, event); err != nil {
		s.logger.Warn("failed to publish event", "event_type", event.EventType(), "error", err)
	}
}

func optionalID(id int64) *int64 {
	if id == 0 {
		return nil
	}
	return &id
}

// CreateAdminKey stores a new active admin key, authorised by the master key.
func (s *Service) CreateAdminKey(ctx context.Context, dto CreateAdminKeyDTO) (Outcome, error) {
	if err := dto.Validate(); err != nil {
		return Outcome{}, err
	}
	if s.cfg.MasterKey == "" || subtle.ConstantTimeCompare([]byte(strings.TrimSpace(dto.MasterKey)), []byte(s.cfg.MasterKey)) != 1 {
		s.logger.Warn("admin key creation rejected: bad master key")
		return Outcome{}, ErrInvalidMasterKey
	}

	hash := HashAdminKey(strings.TrimSpace(dto.NewAdminKey))
	existing, err := s.repo.FindActiveAdminKey(ctx, hash)
	if err != nil {
		return Outcome{}, errors.NewInternalError("Failed to check admin key.", err)
	}
	if existing != nil {
		return Outcome{}, ErrAdminKeyExists
	}

	key := &adminDatamodel.AdminKey{KeyHash: hash, IsActive: true}
	if err := s.repo.CreateAdminKey(ctx, key); err != nil {
		return Outcome{}, errors.NewInternalError("Failed to create admin key.", err)
	}

	s.logger.Info("admin key created", "key_id", key.ID)
	return Outcome{Message: MsgAdminKeyCreated}, nil
}

// ForgotPassword answers the same way whether or not the email is known.
func (s *Service) ForgotPassword(ctx context.Context, dto ForgotPasswordDTO) (Outcome, error) {
	email := strings.TrimSpace(dto.Email)
	if email == "" {
		return Outcome{}, ErrEmailRequired
	}

	user, err := s.repo.FindActiveUserByEmail(ctx, email)
	if err != nil {
		return Outcome{}, errors.NewInternalError("Failed to look up account.", err)
	}
	if user == nil {
		s.logger.Info("password reset requested for unknown email")
		return Outcome{Message: MsgResetLinkSent}, nil
	}

	token, err := GenerateRandomToken()
	if err != nil {
		return Outcome{}, errors.NewInternalError("Failed to generate reset token.", err)
	}
	if err := s.repo.CreatePasswordResetToken(ctx, &verificationDatamodel.PasswordResetToken{
		UserID:    user.ID,
		Token:     token,
		ExpiresAt: s.now().UTC().Add(s.cfg.ResetTokenTTL),
	}); err != nil {
		return Outcome{}, errors.NewInternalError("Failed to store reset token.", err)
	}

	body, err := mailer.Render(mailer.TemplatePasswordReset, mailer.PasswordResetData{
		Name:             user.FullName,
		Link:             s.resetLink(token),
		ExpiresInMinutes: int(s.cfg.ResetTokenTTL / time.Minute),
	})
	if err != nil {
		return Outcome{}, errors.NewInternalError("Failed to render reset email.", err)
	}
	err = s.mailer.Send(ctx, mailer.Message{
		To:      []string{user.Email},
		Subject: "Reset your password",
		Body:    body,
		HTML:    true,
	})
	metrics.MailDeliveriesTotal.WithLabelValues(mailer.TemplatePasswordReset, metrics.Result(err)).Inc()
	if err != nil {
		return Outcome{}, ErrResetMailDelivery.WithCause(err)
	}

	return Outcome{Message: MsgResetLinkSent}, nil
}

func (s *Service) resetLink(token string) string {
	return strings.TrimRight(s.cfg.BaseURL, "/") + "/reset-password?token=" + token
}

func (s *Service) ResetPassword(ctx context.Context, dto ResetPasswordDTO) (Outcome, error) {
	if err := dto.Validate(); err != nil {
		return Outcome{}, err
	}

	hash, err := HashPassword(dto.NewPassword, s.cfg.BCryptCost)
	if err != nil {
		return Outcome{}, errors.NewInternalError("Failed to hash password.", err)
	}

	if err := s.repo.ResetPassword(ctx, strings.TrimSpace(dto.Token), hash, s.now().UTC()); err != nil {
		if _, ok := errors.IsAppError(err); ok {
			return Outcome{}, err
		}
		return Outcome{}, errors.NewInternalError("Failed to reset password.", err)
	}

	return Outcome{Message: MsgPasswordReset, Redirect: coreUser.LoginPath}, nil
}
