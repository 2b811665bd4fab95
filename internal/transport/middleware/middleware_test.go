package middleware

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	coreUser "github.com/frahmantamala/inventory-management/internal/core/user"
	"github.com/frahmantamala/inventory-management/internal/session"
	"github.com/frahmantamala/inventory-management/pkg/logger"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestMiddleware(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Middleware Suite")
}

var ok = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
})

func requestWith(st session.State) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/AdminDashboard", nil)
	return req.WithContext(session.Attach(req.Context(), &session.Handle{ID: "x", State: st}))
}

var _ = Describe("RequireRole", func() {
	gate := RequireRole(coreUser.RoleAdmin)(ok)

	It("sends anonymous sessions to the login page", func() {
		rec := httptest.NewRecorder()
		gate.ServeHTTP(rec, requestWith(session.Anonymous()))
		Expect(rec.Code).To(Equal(http.StatusFound))
		Expect(rec.Header().Get("Location")).To(Equal("/login"))
	})

	It("sends pending sessions to the login page", func() {
		rec := httptest.NewRecorder()
		gate.ServeHTTP(rec, requestWith(session.PendingVerification(session.Pending{UserID: 1, Code: "123456"})))
		Expect(rec.Header().Get("Location")).To(Equal("/login"))
	})

	It("sends users to their own landing page", func() {
		rec := httptest.NewRecorder()
		gate.ServeHTTP(rec, requestWith(session.Authenticated(session.Principal{Username: "alice", Role: coreUser.RoleUser})))
		Expect(rec.Code).To(Equal(http.StatusFound))
		Expect(rec.Header().Get("Location")).To(Equal("/UserView"))
	})

	It("lets the matching role through", func() {
		rec := httptest.NewRecorder()
		gate.ServeHTTP(rec, requestWith(session.Authenticated(session.Principal{Username: "root", Role: coreUser.RoleAdmin})))
		Expect(rec.Code).To(Equal(http.StatusNoContent))
	})
})

var _ = Describe("RequestID", func() {
	It("reuses an incoming trace id", func() {
		var seen string
		h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = TraceIDFromContext(r.Context())
		}))
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(TraceHeader, "trace-1")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		Expect(seen).To(Equal("trace-1"))
		Expect(rec.Header().Get(TraceHeader)).To(Equal("trace-1"))
	})

	It("generates one otherwise", func() {
		rec := httptest.NewRecorder()
		RequestID(ok).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		Expect(rec.Header().Get(TraceHeader)).NotTo(BeEmpty())
	})
})

var _ = Describe("RecoveryMiddleware", func() {
	It("turns a panic into a 500 without leaking it", func() {
		h := RecoveryMiddleware(logger.Discard())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			panic("secret detail")
		}))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		Expect(rec.Code).To(Equal(http.StatusInternalServerError))
		Expect(rec.Body.String()).NotTo(ContainSubstring("secret detail"))
	})
})

var _ = Describe("LoggingMiddleware", func() {
	It("redacts credential fields by exact name", func() {
		out := redactBody([]byte(`{"email":"a@b.co","password":"pw","verification_code":"123456","admin_key":"K","product_code":"PRD-001"}`))
		Expect(out).To(ContainSubstring(`"email":"a@b.co"`))
		Expect(out).To(ContainSubstring(`"product_code":"PRD-001"`))
		Expect(out).NotTo(ContainSubstring("pw"))
		Expect(out).NotTo(ContainSubstring("123456"))
		Expect(out).NotTo(ContainSubstring(`"K"`))
	})

	It("logs the request without consuming its body", func() {
		var logs bytes.Buffer
		lg := slog.New(slog.NewJSONHandler(&logs, nil))

		var seen string
		h := LoggingMiddleware(lg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			b, _ := io.ReadAll(r.Body)
			seen = string(b)
			w.WriteHeader(http.StatusCreated)
		}))

		body := `{"product_code":"PRD-001","name":"Laptop"}`
		req := httptest.NewRequest(http.MethodPost, "/AdminDashboard/products?handler=Create", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Cookie", "sid=abc")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		Expect(seen).To(Equal(body))
		Expect(rec.Code).To(Equal(http.StatusCreated))
		Expect(logs.String()).To(ContainSubstring("PRD-001"))
		Expect(logs.String()).NotTo(ContainSubstring("sid=abc"))
		Expect(logs.String()).To(ContainSubstring(`"status_code":201`))
	})
})
