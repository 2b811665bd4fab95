package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrNoSession = errors.New("no session in request context")

type Config struct {
	CookieName  string
	Secret      string
	IdleTimeout time.Duration
	Secure      bool
}

// Handle is the per-request view of a session. It is owned by a single
// request goroutine.
type Handle struct {
	ID    string
	State State
}

type ctxKey struct{}

func withHandle(ctx context.Context, h *Handle) context.Context {
	return context.WithValue(ctx, ctxKey{}, h)
}

func FromContext(ctx context.Context) *Handle {
	if h, ok := ctx.Value(ctxKey{}).(*Handle); ok {
		return h
	}
	return nil
}

// StateFromContext is the anonymous state when no session is attached.
func StateFromContext(ctx context.Context) State {
	if h := FromContext(ctx); h != nil {
		return h.State
	}
	return Anonymous()
}

// Manager binds stored state to the browser through a signed cookie. The
// cookie only carries the session id, never the state itself.
type Manager struct {
	store  Store
	cfg    Config
	logger *slog.Logger
	now    func() time.Time
}

func NewManager(store Store, cfg Config, logger *slog.Logger) *Manager {
	if cfg.CookieName == "" {
		cfg.CookieName = "inventory_session"
	}
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = 30 * time.Minute
	}
	return &Manager{store: store, cfg: cfg, logger: logger, now: time.Now}
}

type cookieClaims struct {
	jwt.RegisteredClaims
}

func (m *Manager) sign(id string) (string, error) {
	claims := cookieClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:       id,
			IssuedAt: jwt.NewNumericDate(m.now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(m.cfg.Secret))
}

func (m *Manager) parse(value string) (string, error) {
	token, err := jwt.ParseWithClaims(value, &cookieClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(m.cfg.Secret), nil
	})
	if err != nil {
		return "", err
	}
	claims, ok := token.Claims.(*cookieClaims)
	if !ok || !token.Valid || claims.ID == "" {
		return "", errors.New("invalid session cookie")
	}
	return claims.ID, nil
}

// Load resolves the request's session. Any problem with the cookie or the
// stored value yields a fresh anonymous handle.
func (m *Manager) Load(r *http.Request) *Handle {
	c, err := r.Cookie(m.cfg.CookieName)
	if err != nil || c.Value == "" {
		return &Handle{State: Anonymous()}
	}

	id, err := m.parse(c.Value)
	if err != nil {
		m.logger.Debug("discarding session cookie", "error", err)
		return &Handle{State: Anonymous()}
	}

	st, err := m.store.Load(r.Context(), id)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			m.logger.Warn("failed to load session", "error", err)
		}
		return &Handle{State: Anonymous()}
	}

	if err := m.store.Touch(r.Context(), id, m.cfg.IdleTimeout); err != nil && !errors.Is(err, ErrNotFound) {
		m.logger.Warn("failed to refresh session ttl", "error", err)
	}
	return &Handle{ID: id, State: st.Normalize()}
}

func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := m.Load(r)
		next.ServeHTTP(w, r.WithContext(withHandle(r.Context(), h)))
	})
}

// Commit persists next as the session's state in one store write. A new id
// is issued when the session has none yet and when it becomes
// authenticated, so a pre-login id never carries an authenticated state.
func (m *Manager) Commit(ctx context.Context, w http.ResponseWriter, next State) error {
	h := FromContext(ctx)
	if h == nil {
		return ErrNoSession
	}

	oldID := h.ID
	id := oldID
	if id == "" || (next.IsAuthenticated() && !h.State.IsAuthenticated()) {
		id = uuid.NewString()
	}

	if err := m.store.Save(ctx, id, next, m.cfg.IdleTimeout); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	if oldID != "" && oldID != id {
		if err := m.store.Delete(ctx, oldID); err != nil {
			m.logger.Warn("failed to delete rotated session", "error", err)
		}
	}

	token, err := m.sign(id)
	if err != nil {
		return fmt.Errorf("sign session cookie: %w", err)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     m.cfg.CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   m.cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	})

	h.ID = id
	h.State = next
	return nil
}

// Destroy clears the session wholesale and expires the cookie.
func (m *Manager) Destroy(ctx context.Context, w http.ResponseWriter) error {
	h := FromContext(ctx)
	if h == nil {
		return ErrNoSession
	}

	var err error
	if h.ID != "" {
		err = m.store.Delete(ctx, h.ID)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     m.cfg.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	})

	h.ID = ""
	h.State = Anonymous()
	return err
}

// Attach is used by tests and internal callers that build requests without
// going through Middleware.
func Attach(ctx context.Context, h *Handle) context.Context {
	return withHandle(ctx, h)
}
