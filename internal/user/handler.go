package user

import (
	"context"
	"net/http"

	coreUser "github.com/frahmantamala/inventory-management/internal/core/user"
	"github.com/frahmantamala/inventory-management/internal/transport"
)

type ServiceAPI interface {
	Register(ctx context.Context, dto RegisterDTO) (*User, error)
	PreviewIDNumber(ctx context.Context) (string, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     service,
	}
}

type registerPageData struct {
	IDNumber string `json:"id_number"`
}

// RegisterPage previews the id number the next account will get.
func (h *Handler) RegisterPage(w http.ResponseWriter, r *http.Request) {
	id, err := h.Service.PreviewIDNumber(r.Context())
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, transport.Result{Success: true, Data: registerPageData{IDNumber: id}})
}

// CreateAccount handles POST /login?handler=CreateAccount.
func (h *Handler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	var dto RegisterDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteAppError(w, err)
		return
	}

	u, err := h.Service.Register(r.Context(), dto)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, transport.Result{
		Success:  true,
		Message:  MsgAccountCreated,
		Redirect: coreUser.LoginPath,
		Data:     u,
	})
}
