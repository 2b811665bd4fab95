package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	adminDatamodel "github.com/frahmantamala/inventory-management/internal/core/datamodel/admin"
	userDatamodel "github.com/frahmantamala/inventory-management/internal/core/datamodel/user"
	coreUser "github.com/frahmantamala/inventory-management/internal/core/user"
	"github.com/frahmantamala/inventory-management/internal/session"
	"github.com/frahmantamala/inventory-management/internal/transport"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"
)

var _ = Describe("Auth Handler", func() {
	var (
		repo    *MockRepository
		store   *session.MemoryStore
		manager *session.Manager
		handler *Handler
		cookies []*http.Cookie
		router  *http.ServeMux
	)

	do := func(method, target, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		for _, c := range cookies {
			req.AddCookie(c)
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		if set := w.Result().Cookies(); len(set) > 0 {
			cookies = set
		}
		return w
	}

	decode := func(w *httptest.ResponseRecorder) transport.Result {
		var res transport.Result
		Expect(json.NewDecoder(w.Body).Decode(&res)).To(Succeed())
		return res
	}

	BeforeEach(func() {
		repo = NewMockRepository()
		repo.users[1] = &userDatamodel.User{
			ID:           1,
			FullName:     "Alice Doe",
			Email:        "alice@example.com",
			Username:     "alice",
			PasswordHash: mustHash("secret123"),
			Role:         "User",
			IsActive:     true,
		}
		repo.admins["root"] = &adminDatamodel.Admin{ID: 7, Username: "root", PasswordHash: mustHash("rootpw")}
		repo.keys[HashAdminKey("KEY-9")] = &adminDatamodel.AdminKey{ID: 1, KeyHash: HashAdminKey("KEY-9"), IsActive: true}

		svc := NewService(repo, &MockMailer{}, &MockPublisher{}, Config{
			MasterKey:         "master-secret",
			OTPTTL:            10 * time.Minute,
			MaxVerifyAttempts: 5,
			BCryptCost:        bcrypt.MinCost,
		}, testLogger())
		svc.generateCode = func() (string, error) { return "123456", nil }

		store = session.NewMemoryStore()
		manager = session.NewManager(store, session.Config{
			CookieName:  "sid",
			Secret:      "0123456789abcdef0123456789abcdef",
			IdleTimeout: 30 * time.Minute,
		}, testLogger())
		handler = NewHandler(transport.NewBaseHandler(testLogger()), svc, manager)
		cookies = nil

		router = http.NewServeMux()
		router.Handle("/login", manager.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodGet {
				handler.LoginPage(w, r)
				return
			}
			transport.HandlerSwitch("handler", map[string]http.HandlerFunc{
				"UserLogin":      handler.UserLogin,
				"AdminLogin":     handler.AdminLogin,
				"VerifyEmail":    handler.VerifyEmail,
				"Logout":         handler.Logout,
				"CreateAdminKey": handler.CreateAdminKey,
			})(w, r)
		})))
	})

	It("walks a user through login and verification", func() {
		w := do(http.MethodPost, "/login?handler=UserLogin", `{"email":"alice@example.com","password":"secret123"}`)
		Expect(w.Code).To(Equal(http.StatusOK))
		res := decode(w)
		Expect(res.Success).To(BeTrue())
		Expect(res.Message).To(Equal(MsgCodeSent))
		Expect(cookies).NotTo(BeEmpty())

		w = do(http.MethodPost, "/login?handler=VerifyEmail", `{"verification_code":"654321"}`)
		Expect(w.Code).To(Equal(http.StatusUnauthorized))
		res = decode(w)
		Expect(res.Success).To(BeFalse())
		Expect(res.Message).To(Equal(ErrInvalidCode.Message))

		w = do(http.MethodPost, "/login?handler=VerifyEmail", `{"verification_code":"123456"}`)
		Expect(w.Code).To(Equal(http.StatusOK))
		res = decode(w)
		Expect(res.Success).To(BeTrue())
		Expect(res.Redirect).To(Equal(coreUser.UserLandingPath))

		w = do(http.MethodGet, "/login", "")
		Expect(w.Code).To(Equal(http.StatusFound))
		Expect(w.Header().Get("Location")).To(Equal(coreUser.UserLandingPath))
	})

	It("reports the pending state on the login page", func() {
		do(http.MethodPost, "/login?handler=UserLogin", `{"email":"alice","password":"secret123"}`)

		w := do(http.MethodGet, "/login", "")
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Body.String()).To(ContainSubstring(`"state":"pending_verification"`))
	})

	It("rejects verification without a pending session", func() {
		w := do(http.MethodPost, "/login?handler=VerifyEmail", `{"verification_code":"123456"}`)
		Expect(w.Code).To(Equal(http.StatusUnauthorized))
		Expect(decode(w).Message).To(Equal(ErrSessionExpired.Message))
		Expect(store.Len()).To(Equal(0))
	})

	It("keeps the user signed in when verification is submitted twice", func() {
		do(http.MethodPost, "/login?handler=UserLogin", `{"email":"alice@example.com","password":"secret123"}`)

		w := do(http.MethodPost, "/login?handler=VerifyEmail", `{"verification_code":"123456"}`)
		Expect(w.Code).To(Equal(http.StatusOK))

		w = do(http.MethodPost, "/login?handler=VerifyEmail", `{"verification_code":"123456"}`)
		Expect(w.Code).To(Equal(http.StatusUnauthorized))
		Expect(decode(w).Message).To(Equal(ErrSessionExpired.Message))

		w = do(http.MethodGet, "/login", "")
		Expect(w.Code).To(Equal(http.StatusFound))
		Expect(w.Header().Get("Location")).To(Equal(coreUser.UserLandingPath))
	})

	It("logs an admin straight in and out again", func() {
		w := do(http.MethodPost, "/login?handler=AdminLogin", `{"admin_username":"root","admin_password":"rootpw","admin_key":"KEY-9"}`)
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(decode(w).Redirect).To(Equal(coreUser.AdminDashboardPath))
		Expect(store.Len()).To(Equal(1))

		w = do(http.MethodPost, "/login?handler=Logout", ``)
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(store.Len()).To(Equal(0))
	})

	It("maps validation failures to 400", func() {
		w := do(http.MethodPost, "/login?handler=UserLogin", `{"email":"","password":""}`)
		Expect(w.Code).To(Equal(http.StatusBadRequest))
		Expect(decode(w).Message).To(Equal(ErrLoginFieldsRequired.Message))
	})

	It("rejects malformed bodies", func() {
		w := do(http.MethodPost, "/login?handler=UserLogin", `{`)
		Expect(w.Code).To(Equal(http.StatusBadRequest))
	})

	It("creates admin keys behind the master key", func() {
		w := do(http.MethodPost, "/login?handler=CreateAdminKey", `{"master_key":"master-secret","new_admin_key":"KEY-11"}`)
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(decode(w).Message).To(Equal(MsgAdminKeyCreated))

		w = do(http.MethodPost, "/login?handler=CreateAdminKey", `{"master_key":"wrong","new_admin_key":"KEY-12"}`)
		Expect(w.Code).To(Equal(http.StatusUnauthorized))
	})

	It("answers 404 for unknown handlers", func() {
		w := do(http.MethodPost, "/login?handler=Nope", `{}`)
		Expect(w.Code).To(Equal(http.StatusNotFound))
	})
})
