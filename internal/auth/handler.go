package auth

import (
	"context"
	"errors"
	"net/http"

	coreUser "github.com/frahmantamala/inventory-management/internal/core/user"
	"github.com/frahmantamala/inventory-management/internal/session"
	"github.com/frahmantamala/inventory-management/internal/transport"
)

type ServiceAPI interface {
	InitiateUserLogin(ctx context.Context, dto UserLoginDTO) (session.State, Outcome, error)
	InitiateAdminLogin(ctx context.Context, dto AdminLoginDTO) (session.State, Outcome, error)
	VerifyCode(ctx context.Context, current session.State, dto VerifyCodeDTO) (session.State, Outcome, error)
	Logout(ctx context.Context, current session.State) Outcome
	CreateAdminKey(ctx context.Context, dto CreateAdminKeyDTO) (Outcome, error)
	ForgotPassword(ctx context.Context, dto ForgotPasswordDTO) (Outcome, error)
	ResetPassword(ctx context.Context, dto ResetPasswordDTO) (Outcome, error)
}

// SessionWriter is the part of the session manager handlers need.
type SessionWriter interface {
	Commit(ctx context.Context, w http.ResponseWriter, next session.State) error
	Destroy(ctx context.Context, w http.ResponseWriter) error
}

type Handler struct {
	*transport.BaseHandler
	Service  ServiceAPI
	Sessions SessionWriter
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI, sessions SessionWriter) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     service,
		Sessions:    sessions,
	}
}

type loginPageData struct {
	State string `json:"state"`
	Email string `json:"email,omitempty"`
}

// LoginPage sends an authenticated session to its landing view and otherwise
// reports where the login flow stands.
func (h *Handler) LoginPage(w http.ResponseWriter, r *http.Request) {
	st := session.StateFromContext(r.Context())
	if st.IsAuthenticated() {
		http.Redirect(w, r, coreUser.LandingPath(st.Principal.Role), http.StatusFound)
		return
	}

	data := loginPageData{State: string(session.KindAnonymous)}
	if st.IsPending() {
		data = loginPageData{State: string(session.KindPending), Email: st.Pending.Email}
	}
	h.WriteJSON(w, http.StatusOK, transport.Result{Success: true, Data: data})
}

func (h *Handler) UserLogin(w http.ResponseWriter, r *http.Request) {
	var dto UserLoginDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteAppError(w, err)
		return
	}

	next, out, err := h.Service.InitiateUserLogin(r.Context(), dto)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	if !h.commit(w, r, next) {
		return
	}
	h.WriteSuccess(w, out.Message, out.Redirect)
}

func (h *Handler) AdminLogin(w http.ResponseWriter, r *http.Request) {
	var dto AdminLoginDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteAppError(w, err)
		return
	}

	next, out, err := h.Service.InitiateAdminLogin(r.Context(), dto)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	if !h.commit(w, r, next) {
		return
	}
	h.WriteSuccess(w, out.Message, out.Redirect)
}

// VerifyEmail commits whatever state the service returns, failures included,
// so attempt counts and resets are persisted. Without a pending session
// nothing changed and nothing is written.
func (h *Handler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	var dto VerifyCodeDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteAppError(w, err)
		return
	}

	current := session.StateFromContext(r.Context())
	next, out, verifyErr := h.Service.VerifyCode(r.Context(), current, dto)
	if errors.Is(verifyErr, ErrSessionExpired) {
		h.WriteAppError(w, verifyErr)
		return
	}
	if !h.commit(w, r, next) {
		return
	}
	if verifyErr != nil {
		h.WriteAppError(w, verifyErr)
		return
	}
	h.WriteSuccess(w, out.Message, out.Redirect)
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	out := h.Service.Logout(r.Context(), session.StateFromContext(r.Context()))
	if err := h.Sessions.Destroy(r.Context(), w); err != nil {
		h.Logger.Warn("Logout: failed to destroy session", "error", err)
	}
	h.WriteSuccess(w, out.Message, out.Redirect)
}

func (h *Handler) CreateAdminKey(w http.ResponseWriter, r *http.Request) {
	var dto CreateAdminKeyDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteAppError(w, err)
		return
	}

	out, err := h.Service.CreateAdminKey(r.Context(), dto)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	h.WriteSuccess(w, out.Message, out.Redirect)
}

func (h *Handler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var dto ForgotPasswordDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteAppError(w, err)
		return
	}

	out, err := h.Service.ForgotPassword(r.Context(), dto)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	h.WriteSuccess(w, out.Message, out.Redirect)
}

func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var dto ResetPasswordDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteAppError(w, err)
		return
	}

	out, err := h.Service.ResetPassword(r.Context(), dto)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	h.WriteSuccess(w, out.Message, out.Redirect)
}

func (h *Handler) commit(w http.ResponseWriter, r *http.Request, next session.State) bool {
	if err := h.Sessions.Commit(r.Context(), w, next); err != nil {
		h.Logger.Error("failed to persist session", "error", err)
		h.WriteError(w, http.StatusInternalServerError, "Failed to save session. Please try again.")
		return false
	}
	return true
}
