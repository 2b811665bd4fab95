package auth

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	apperrors "github.com/frahmantamala/inventory-management/internal"
	adminDatamodel "github.com/frahmantamala/inventory-management/internal/core/datamodel/admin"
	userDatamodel "github.com/frahmantamala/inventory-management/internal/core/datamodel/user"
	verificationDatamodel "github.com/frahmantamala/inventory-management/internal/core/datamodel/verification"
	"github.com/frahmantamala/inventory-management/internal/core/events"
	coreUser "github.com/frahmantamala/inventory-management/internal/core/user"
	"github.com/frahmantamala/inventory-management/internal/session"
	"github.com/frahmantamala/inventory-management/pkg/mailer"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"
)

func TestAuth(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Auth Suite")
}

// MockRepository implements auth.RepositoryAPI for testing
type MockRepository struct {
	users       map[int64]*userDatamodel.User
	admins      map[string]*adminDatamodel.Admin
	keys        map[string]*adminDatamodel.AdminKey
	codes       []*verificationDatamodel.VerificationCode
	resetTokens map[string]*verificationDatamodel.PasswordResetToken
	shouldFail  bool
	failError   error
}

func NewMockRepository() *MockRepository {
	return &MockRepository{
		users:       make(map[int64]*userDatamodel.User),
		admins:      make(map[string]*adminDatamodel.Admin),
		keys:        make(map[string]*adminDatamodel.AdminKey),
		resetTokens: make(map[string]*verificationDatamodel.PasswordResetToken),
	}
}

func (m *MockRepository) SetShouldFail(shouldFail bool, err error) {
	m.shouldFail = shouldFail
	m.failError = err
}

func (m *MockRepository) FindActiveUserByIdentifier(_ context.Context, identifier string) (*userDatamodel.User, error) {
	if m.shouldFail {
		return nil, m.failError
	}
	for _, u := range m.users {
		if u.IsActive && (u.Email == identifier || u.Username == identifier) {
			return u, nil
		}
	}
	return nil, nil
}

func (m *MockRepository) FindActiveUserByEmail(_ context.Context, email string) (*userDatamodel.User, error) {
	if m.shouldFail {
		return nil, m.failError
	}
	for _, u := range m.users {
		if u.IsActive && u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (m *MockRepository) RecordVerificationCode(_ context.Context, code *verificationDatamodel.VerificationCode) error {
	if m.shouldFail {
		return m.failError
	}
	m.codes = append(m.codes, code)
	return nil
}

func (m *MockRepository) CompleteVerification(_ context.Context, userID int64, code string, at time.Time) (*userDatamodel.User, error) {
	if m.shouldFail {
		return nil, m.failError
	}
	u, ok := m.users[userID]
	if !ok {
		return nil, nil
	}
	u.IsEmailVerified = true
	u.LastLogin = &at
	for _, c := range m.codes {
		if c.Code == code {
			c.IsUsed = true
		}
	}
	return u, nil
}

func (m *MockRepository) FindAdminByUsername(_ context.Context, username string) (*adminDatamodel.Admin, error) {
	if m.shouldFail {
		return nil, m.failError
	}
	return m.admins[username], nil
}

func (m *MockRepository) UpdateAdminPasswordHash(_ context.Context, adminID int64, hash string) error {
	for _, a := range m.admins {
		if a.ID == adminID {
			a.PasswordHash = hash
		}
	}
	return nil
}

func (m *MockRepository) FindActiveAdminKey(_ context.Context, keyHash string) (*adminDatamodel.AdminKey, error) {
	if m.shouldFail {
		return nil, m.failError
	}
	k, ok := m.keys[keyHash]
	if !ok || !k.IsActive {
		return nil, nil
	}
	return k, nil
}

func (m *MockRepository) CreateAdminKey(_ context.Context, key *adminDatamodel.AdminKey) error {
	if m.shouldFail {
		return m.failError
	}
	key.ID = int64(len(m.keys) + 1)
	m.keys[key.KeyHash] = key
	return nil
}

func (m *MockRepository) CreatePasswordResetToken(_ context.Context, token *verificationDatamodel.PasswordResetToken) error {
	if m.shouldFail {
		return m.failError
	}
	m.resetTokens[token.Token] = token
	return nil
}

func (m *MockRepository) ResetPassword(_ context.Context, token, passwordHash string, at time.Time) error {
	t, ok := m.resetTokens[token]
	if !ok || t.IsUsed || !t.ExpiresAt.After(at) {
		return ErrInvalidResetToken
	}
	m.users[t.UserID].PasswordHash = passwordHash
	t.IsUsed = true
	return nil
}

type MockMailer struct {
	mu   sync.Mutex
	sent []mailer.Message
	err  error
}

func (m *MockMailer) Send(_ context.Context, msg mailer.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

type MockPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *MockPublisher) Publish(_ context.Context, event events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *MockPublisher) Types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.EventType())
	}
	return out
}

func mustHash(password string) string {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	Expect(err).NotTo(HaveOccurred())
	return string(hash)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

var _ = Describe("Auth Service", func() {
	var (
		repo      *MockRepository
		mail      *MockMailer
		publisher *MockPublisher
		service   *Service
		cfg       Config
		now       time.Time
		ctx       context.Context
	)

	newService := func() {
		service = NewService(repo, mail, publisher, cfg, testLogger())
		service.now = func() time.Time { return now }
		service.generateCode = func() (string, error) { return "123456", nil }
	}

	BeforeEach(func() {
		repo = NewMockRepository()
		mail = &MockMailer{}
		publisher = &MockPublisher{}
		now = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
		ctx = apperrors.ContextWithClientIP(context.Background(), "10.0.0.1")
		cfg = Config{
			MasterKey:         "master-secret",
			OTPTTL:            10 * time.Minute,
			MaxVerifyAttempts: 3,
			BCryptCost:        bcrypt.MinCost,
			BaseURL:           "http://localhost:8080/",
		}

		repo.users[1] = &userDatamodel.User{
			ID:           1,
			FullName:     "Alice Doe",
			Email:        "alice@example.com",
			Username:     "alice",
			PasswordHash: mustHash("secret123"),
			Role:         "User",
			IsActive:     true,
		}
		repo.users[2] = &userDatamodel.User{
			ID:           2,
			FullName:     "Bob Boss",
			Email:        "bob@example.com",
			Username:     "bob",
			PasswordHash: mustHash("bossword"),
			Role:         "Admin",
			IsActive:     true,
		}
		repo.admins["root"] = &adminDatamodel.Admin{ID: 7, Username: "root", PasswordHash: mustHash("rootpw")}
		repo.keys[HashAdminKey("KEY-9")] = &adminDatamodel.AdminKey{ID: 1, KeyHash: HashAdminKey("KEY-9"), IsActive: true}
		repo.keys[HashAdminKey("KEY-0")] = &adminDatamodel.AdminKey{ID: 2, KeyHash: HashAdminKey("KEY-0"), IsActive: false}

		newService()
	})

	Describe("GenerateOTP", func() {
		It("always yields six digits in range", func() {
			for i := 0; i < 200; i++ {
				code, err := GenerateOTP()
				Expect(err).NotTo(HaveOccurred())
				Expect(code).To(MatchRegexp(`^[1-9][0-9]{5}$`))
			}
		})
	})

	Describe("InitiateUserLogin", func() {
		It("moves to pending verification and emails the code", func() {
			st, out, err := service.InitiateUserLogin(ctx, UserLoginDTO{Email: "alice@example.com", Password: "secret123"})
			Expect(err).NotTo(HaveOccurred())
			Expect(out.Message).To(Equal(MsgCodeSent))
			Expect(st.IsPending()).To(BeTrue())
			Expect(st.IsAuthenticated()).To(BeFalse())
			Expect(st.Pending.UserID).To(Equal(int64(1)))
			Expect(st.Pending.Code).To(Equal("123456"))
			Expect(st.Pending.Role).To(Equal(coreUser.RoleUser))
			Expect(st.Pending.IssuedAt).To(Equal(now))

			Expect(mail.sent).To(HaveLen(1))
			Expect(mail.sent[0].To).To(ConsistOf("alice@example.com"))
			Expect(mail.sent[0].Subject).To(Equal(mailer.SubjectLoginOTP))
			Expect(mail.sent[0].Body).To(ContainSubstring("123456"))
			Expect(mail.sent[0].HTML).To(BeTrue())

			Expect(repo.codes).To(HaveLen(1))
			Expect(repo.codes[0].Type).To(Equal(verificationDatamodel.TypeLoginOTP))
			Expect(repo.codes[0].ExpiresAt).To(Equal(now.Add(10 * time.Minute)))
		})

		It("accepts the username as identifier", func() {
			st, _, err := service.InitiateUserLogin(ctx, UserLoginDTO{Email: "alice", Password: "secret123"})
			Expect(err).NotTo(HaveOccurred())
			Expect(st.IsPending()).To(BeTrue())
		})

		It("requires both fields", func() {
			_, _, err := service.InitiateUserLogin(ctx, UserLoginDTO{Email: " ", Password: "x"})
			Expect(err).To(MatchError(ErrLoginFieldsRequired))
		})

		It("reports unknown accounts", func() {
			_, _, err := service.InitiateUserLogin(ctx, UserLoginDTO{Email: "nobody", Password: "x"})
			Expect(err).To(MatchError(ErrAccountNotFound))
		})

		It("ignores inactive accounts", func() {
			repo.users[1].IsActive = false
			_, _, err := service.InitiateUserLogin(ctx, UserLoginDTO{Email: "alice", Password: "secret123"})
			Expect(err).To(MatchError(ErrAccountNotFound))
		})

		It("rejects a wrong password", func() {
			_, _, err := service.InitiateUserLogin(ctx, UserLoginDTO{Email: "alice", Password: "nope"})
			Expect(err).To(MatchError(ErrInvalidCredentials))
			Expect(mail.sent).To(BeEmpty())
		})

		It("wraps store failures", func() {
			repo.SetShouldFail(true, errors.New("db down"))
			_, _, err := service.InitiateUserLogin(ctx, UserLoginDTO{Email: "alice", Password: "secret123"})
			appErr, ok := apperrors.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(apperrors.ErrCodeStoreFailure))
		})

		Context("when the email cannot be delivered", func() {
			BeforeEach(func() {
				mail.err = errors.New("smtp down")
			})

			It("still succeeds without exposing the code", func() {
				st, out, err := service.InitiateUserLogin(ctx, UserLoginDTO{Email: "alice", Password: "secret123"})
				Expect(err).NotTo(HaveOccurred())
				Expect(st.IsPending()).To(BeTrue())
				Expect(out.Message).To(Equal(MsgCodeSent))
				Expect(out.Message).NotTo(ContainSubstring("123456"))
			})

			It("surfaces the code when the fallback is enabled", func() {
				cfg.ExposeCodeOnMailFailure = true
				newService()

				_, out, err := service.InitiateUserLogin(ctx, UserLoginDTO{Email: "alice", Password: "secret123"})
				Expect(err).NotTo(HaveOccurred())
				Expect(out.Message).To(ContainSubstring("123456"))
			})
		})
	})

	Describe("InitiateAdminLogin", func() {
		It("authenticates directly without a code", func() {
			st, out, err := service.InitiateAdminLogin(ctx, AdminLoginDTO{Username: "root", Password: "rootpw", AdminKey: "KEY-9"})
			Expect(err).NotTo(HaveOccurred())
			Expect(st.IsAuthenticated()).To(BeTrue())
			Expect(st.Pending).To(BeNil())
			Expect(st.Principal.AdminID).To(Equal(int64(7)))
			Expect(st.Principal.Role).To(Equal(coreUser.RoleAdmin))
			Expect(out.Redirect).To(Equal(coreUser.AdminDashboardPath))
			Expect(mail.sent).To(BeEmpty())
			Expect(publisher.Types()).To(ConsistOf(events.EventTypeUserLoggedIn))
		})

		It("rejects an inactive key", func() {
			_, _, err := service.InitiateAdminLogin(ctx, AdminLoginDTO{Username: "root", Password: "rootpw", AdminKey: "KEY-0"})
			Expect(err).To(MatchError(ErrInvalidAdminKey))
		})

		It("requires all three fields", func() {
			_, _, err := service.InitiateAdminLogin(ctx, AdminLoginDTO{Username: "root", Password: "rootpw"})
			Expect(err).To(MatchError(ErrAdminFieldsRequired))
		})

		It("reports unknown admins", func() {
			_, _, err := service.InitiateAdminLogin(ctx, AdminLoginDTO{Username: "ghost", Password: "x", AdminKey: "KEY-9"})
			Expect(err).To(MatchError(ErrAdminNotFound))
		})

		It("rejects a wrong password", func() {
			_, _, err := service.InitiateAdminLogin(ctx, AdminLoginDTO{Username: "root", Password: "bad", AdminKey: "KEY-9"})
			Expect(err).To(MatchError(ErrInvalidAdminCredentials))
		})

		It("accepts and rehashes a legacy plaintext password", func() {
			repo.admins["legacy"] = &adminDatamodel.Admin{ID: 8, Username: "legacy", PasswordHash: "plainpw"}

			st, _, err := service.InitiateAdminLogin(ctx, AdminLoginDTO{Username: "legacy", Password: "plainpw", AdminKey: "KEY-9"})
			Expect(err).NotTo(HaveOccurred())
			Expect(st.IsAuthenticated()).To(BeTrue())
			Expect(bcrypt.CompareHashAndPassword([]byte(repo.admins["legacy"].PasswordHash), []byte("plainpw"))).To(Succeed())
		})

		It("does not compare a bcrypt hash as plaintext", func() {
			stored := repo.admins["root"].PasswordHash
			_, _, err := service.InitiateAdminLogin(ctx, AdminLoginDTO{Username: "root", Password: stored, AdminKey: "KEY-9"})
			Expect(err).To(MatchError(ErrInvalidAdminCredentials))
		})
	})

	Describe("VerifyCode", func() {
		var pending session.State

		BeforeEach(func() {
			pending = session.PendingVerification(session.Pending{
				UserID:   1,
				Email:    "alice@example.com",
				Role:     coreUser.RoleUser,
				Code:     "123456",
				IssuedAt: now,
			})
		})

		It("promotes the session and redirects users to their view", func() {
			st, out, err := service.VerifyCode(ctx, pending, VerifyCodeDTO{Code: " 123456 "})
			Expect(err).NotTo(HaveOccurred())
			Expect(st.IsAuthenticated()).To(BeTrue())
			Expect(st.Pending).To(BeNil())
			Expect(st.Principal.Username).To(Equal("alice"))
			Expect(out.Message).To(Equal(MsgVerified))
			Expect(out.Redirect).To(Equal(coreUser.UserLandingPath))
			Expect(repo.users[1].IsEmailVerified).To(BeTrue())
			Expect(repo.users[1].LastLogin).NotTo(BeNil())
			Expect(publisher.Types()).To(ConsistOf(events.EventTypeUserLoggedIn))
		})

		It("redirects non-user roles to the dashboard", func() {
			pending.Pending.UserID = 2
			st, out, err := service.VerifyCode(ctx, pending, VerifyCodeDTO{Code: "123456"})
			Expect(err).NotTo(HaveOccurred())
			Expect(st.Principal.Role).To(Equal(coreUser.RoleAdmin))
			Expect(out.Redirect).To(Equal(coreUser.AdminDashboardPath))
		})

		It("keeps the session pending on a mismatch", func() {
			st, _, err := service.VerifyCode(ctx, pending, VerifyCodeDTO{Code: "654321"})
			Expect(err).To(MatchError(ErrInvalidCode))
			Expect(st.IsPending()).To(BeTrue())
			Expect(st.Pending.Code).To(Equal("123456"))
			Expect(st.Pending.Attempts).To(Equal(1))
			Expect(repo.users[1].IsEmailVerified).To(BeFalse())
		})

		It("resets the session after too many attempts", func() {
			st := pending
			var err error
			for i := 0; i < 2; i++ {
				st, _, err = service.VerifyCode(ctx, st, VerifyCodeDTO{Code: "000000"})
				Expect(err).To(MatchError(ErrInvalidCode))
			}
			st, _, err = service.VerifyCode(ctx, st, VerifyCodeDTO{Code: "000000"})
			Expect(err).To(MatchError(ErrTooManyAttempts))
			Expect(st.IsAnonymous()).To(BeTrue())
		})

		It("does not bound attempts when the limit is zero", func() {
			cfg.MaxVerifyAttempts = 0
			newService()
			st := pending
			for i := 0; i < 10; i++ {
				st, _, _ = service.VerifyCode(ctx, st, VerifyCodeDTO{Code: "000000"})
			}
			Expect(st.IsPending()).To(BeTrue())
			Expect(st.Pending.Attempts).To(Equal(10))
		})

		It("rejects an expired code", func() {
			now = now.Add(11 * time.Minute)
			st, _, err := service.VerifyCode(ctx, pending, VerifyCodeDTO{Code: "123456"})
			Expect(err).To(MatchError(ErrCodeExpired))
			Expect(st.IsAnonymous()).To(BeTrue())
		})

		It("requires a pending session", func() {
			st, _, err := service.VerifyCode(ctx, session.Anonymous(), VerifyCodeDTO{Code: "123456"})
			Expect(err).To(MatchError(ErrSessionExpired))
			Expect(st.IsAnonymous()).To(BeTrue())
		})

		It("leaves an authenticated session alone", func() {
			signedIn := session.Authenticated(session.Principal{UserID: 1, Username: "alice", Role: coreUser.RoleUser})
			st, _, err := service.VerifyCode(ctx, signedIn, VerifyCodeDTO{Code: "123456"})
			Expect(err).To(MatchError(ErrSessionExpired))
			Expect(st.IsAuthenticated()).To(BeTrue())
			Expect(st.Principal.Username).To(Equal("alice"))
		})

		It("asks for a code when none is submitted", func() {
			st, _, err := service.VerifyCode(ctx, pending, VerifyCodeDTO{Code: "  "})
			Expect(err).To(MatchError(ErrCodeRequired))
			Expect(st).To(Equal(pending))
		})
	})

	Describe("Logout", func() {
		It("publishes a logout for authenticated sessions", func() {
			out := service.Logout(ctx, session.Authenticated(session.Principal{UserID: 1, Username: "alice", Role: coreUser.RoleUser}))
			Expect(out.Redirect).To(Equal(coreUser.LoginPath))
			Expect(publisher.Types()).To(ConsistOf(events.EventTypeUserLoggedOut))
		})

		It("publishes nothing for anonymous sessions", func() {
			service.Logout(ctx, session.Anonymous())
			Expect(publisher.Types()).To(BeEmpty())
		})
	})

	Describe("CreateAdminKey", func() {
		It("stores the digest of a new key", func() {
			out, err := service.CreateAdminKey(ctx, CreateAdminKeyDTO{MasterKey: "master-secret", NewAdminKey: "KEY-10"})
			Expect(err).NotTo(HaveOccurred())
			Expect(out.Message).To(Equal(MsgAdminKeyCreated))
			Expect(repo.keys).To(HaveKey(HashAdminKey("KEY-10")))
		})

		It("rejects a wrong master key", func() {
			_, err := service.CreateAdminKey(ctx, CreateAdminKeyDTO{MasterKey: "guess", NewAdminKey: "KEY-10"})
			Expect(err).To(MatchError(ErrInvalidMasterKey))
		})

		It("rejects duplicates", func() {
			_, err := service.CreateAdminKey(ctx, CreateAdminKeyDTO{MasterKey: "master-secret", NewAdminKey: "KEY-9"})
			Expect(err).To(MatchError(ErrAdminKeyExists))
		})

		It("requires both fields", func() {
			_, err := service.CreateAdminKey(ctx, CreateAdminKeyDTO{MasterKey: "master-secret"})
			Expect(err).To(MatchError(ErrAdminKeyFieldsRequired))
		})
	})

	Describe("password reset", func() {
		It("answers the same for unknown emails", func() {
			out, err := service.ForgotPassword(ctx, ForgotPasswordDTO{Email: "ghost@example.com"})
			Expect(err).NotTo(HaveOccurred())
			Expect(out.Message).To(Equal(MsgResetLinkSent))
			Expect(mail.sent).To(BeEmpty())
		})

		It("mails a link that resets the password once", func() {
			_, err := service.ForgotPassword(ctx, ForgotPasswordDTO{Email: "alice@example.com"})
			Expect(err).NotTo(HaveOccurred())
			Expect(mail.sent).To(HaveLen(1))
			Expect(mail.sent[0].Body).To(ContainSubstring("http://localhost:8080/reset-password?token="))
			Expect(repo.resetTokens).To(HaveLen(1))

			var token string
			for t := range repo.resetTokens {
				token = t
			}

			_, err = service.ResetPassword(ctx, ResetPasswordDTO{Token: token, NewPassword: "newsecret"})
			Expect(err).NotTo(HaveOccurred())
			Expect(bcrypt.CompareHashAndPassword([]byte(repo.users[1].PasswordHash), []byte("newsecret"))).To(Succeed())

			_, err = service.ResetPassword(ctx, ResetPasswordDTO{Token: token, NewPassword: "another"})
			Expect(err).To(MatchError(ErrInvalidResetToken))
		})

		It("fails when the reset email cannot be sent", func() {
			mail.err = errors.New("smtp down")
			_, err := service.ForgotPassword(ctx, ForgotPasswordDTO{Email: "alice@example.com"})
			Expect(err).To(MatchError(ErrResetMailDelivery))
		})

		It("validates the new password", func() {
			_, err := service.ResetPassword(ctx, ResetPasswordDTO{Token: "t", NewPassword: "123"})
			appErr, ok := apperrors.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(apperrors.ErrCodeValidationFailed))
		})
	})
})
