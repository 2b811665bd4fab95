package dashboard

import (
	"context"
	"net/http"
	"strconv"

	"github.com/frahmantamala/inventory-management/internal/admin"
	"github.com/frahmantamala/inventory-management/internal/borrow"
	"github.com/frahmantamala/inventory-management/internal/product"
	"github.com/frahmantamala/inventory-management/internal/session"
	"github.com/frahmantamala/inventory-management/internal/transport"
	"github.com/frahmantamala/inventory-management/internal/user"
)

const (
	MsgProductCreated = "Product created successfully!"
	MsgProductUpdated = "Product updated successfully!"
	MsgProductDeleted = "Product deleted successfully!"
	MsgUserCreated    = "User created successfully!"
	MsgUserUpdated    = "User updated successfully!"
	MsgUserDeleted    = "User deleted successfully!"
	MsgAdminUpdated   = "Admin account updated successfully!"
	MsgAdminDeleted   = "Admin account deleted successfully!"
)

type Handler struct {
	*transport.BaseHandler
	Service  *Service
	Products ProductService
	Users    UserService
	Admins   AdminService
	Borrows  BorrowService
}

func NewHandler(base *transport.BaseHandler, svc *Service, products ProductService, users UserService, admins AdminService, borrows BorrowService) *Handler {
	return &Handler{
		BaseHandler: base,
		Service:     svc,
		Products:    products,
		Users:       users,
		Admins:      admins,
		Borrows:     borrows,
	}
}

func (h *Handler) AdminDashboard(w http.ResponseWriter, r *http.Request) {
	dash, err := h.Service.AdminDashboard(r.Context())
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, transport.Result{Success: true, Data: dash})
}

func (h *Handler) UserView(w http.ResponseWriter, r *http.Request) {
	principal := session.StateFromContext(r.Context()).Principal
	if principal == nil {
		h.WriteAppError(w, borrow.ErrUserNotFound)
		return
	}

	q := r.URL.Query()
	qrID, _ := strconv.ParseInt(q.Get("qr"), 10, 64)

	view, err := h.Service.UserView(r.Context(), principal.UserID, q.Get("search"), qrID)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, transport.Result{Success: true, Data: view})
}

// RequestBorrow is POST /UserView/borrow.
func (h *Handler) RequestBorrow(w http.ResponseWriter, r *http.Request) {
	principal := session.StateFromContext(r.Context()).Principal
	if principal == nil || principal.UserID == 0 {
		h.WriteAppError(w, borrow.ErrUserNotFound)
		return
	}

	var dto borrow.RequestBorrowDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteAppError(w, err)
		return
	}

	if _, err := h.Borrows.RequestBorrow(r.Context(), principal.UserID, dto); err != nil {
		h.WriteAppError(w, err)
		return
	}
	h.WriteSuccess(w, borrow.MsgRequested, "")
}

// ---- products ----

func (h *Handler) ProductWrites() http.HandlerFunc {
	return transport.HandlerSwitch("handler", map[string]http.HandlerFunc{
		"Create": h.CreateProduct,
		"Update": h.UpdateProduct,
		"Delete": h.DeleteProduct,
	})
}

func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	const prefix = "Failed to create product: "
	var dto product.CreateProductDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteResult(w, err, "", prefix, h.productItems(r.Context()))
		return
	}

	var createdBy *int64
	if p := session.StateFromContext(r.Context()).Principal; p != nil && p.AdminID != 0 {
		id := p.AdminID
		createdBy = &id
	}

	_, err := h.Products.CreateProduct(r.Context(), dto, createdBy)
	h.WriteResult(w, err, MsgProductCreated, prefix, h.productItems(r.Context()))
}

func (h *Handler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	const prefix = "Failed to update product: "
	var dto product.UpdateProductDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteResult(w, err, "", prefix, h.productItems(r.Context()))
		return
	}

	found, err := h.Products.UpdateProduct(r.Context(), dto)
	h.WriteResult(w, err, found2msg(found, MsgProductUpdated), prefix, h.productItems(r.Context()))
}

func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	const prefix = "Failed to delete product: "
	var dto IDDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteResult(w, err, "", prefix, h.productItems(r.Context()))
		return
	}

	found, err := h.Products.DeleteProduct(r.Context(), dto.ID)
	h.WriteResult(w, err, found2msg(found, MsgProductDeleted), prefix, h.productItems(r.Context()))
}

func (h *Handler) productItems(ctx context.Context) []*product.Product {
	items, err := h.Products.ListProducts(ctx)
	if err != nil {
		h.Logger.Error("failed to reload products", "error", err)
		return []*product.Product{}
	}
	return items
}

// ---- users ----

func (h *Handler) UserWrites() http.HandlerFunc {
	return transport.HandlerSwitch("handler", map[string]http.HandlerFunc{
		"Create": h.CreateUser,
		"Update": h.UpdateUser,
		"Delete": h.DeleteUser,
	})
}

func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	const prefix = "Failed to create user: "
	var dto user.CreateUserDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteResult(w, err, "", prefix, h.userItems(r.Context()))
		return
	}

	_, err := h.Users.CreateUser(r.Context(), dto)
	h.WriteResult(w, err, MsgUserCreated, prefix, h.userItems(r.Context()))
}

func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	const prefix = "Failed to update user: "
	var dto user.UpdateUserDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteResult(w, err, "", prefix, h.userItems(r.Context()))
		return
	}

	found, err := h.Users.UpdateUser(r.Context(), dto)
	h.WriteResult(w, err, found2msg(found, MsgUserUpdated), prefix, h.userItems(r.Context()))
}

func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	const prefix = "Failed to delete user: "
	var dto IDDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteResult(w, err, "", prefix, h.userItems(r.Context()))
		return
	}

	found, err := h.Users.DeleteUser(r.Context(), dto.ID)
	h.WriteResult(w, err, found2msg(found, MsgUserDeleted), prefix, h.userItems(r.Context()))
}

func (h *Handler) userItems(ctx context.Context) []*user.User {
	items, err := h.Users.ListUsers(ctx)
	if err != nil {
		h.Logger.Error("failed to reload users", "error", err)
		return []*user.User{}
	}
	return items
}

// ---- admins ----

func (h *Handler) AdminWrites() http.HandlerFunc {
	return transport.HandlerSwitch("handler", map[string]http.HandlerFunc{
		"Create": h.CreateAdmin,
		"Update": h.UpdateAdmin,
		"Delete": h.DeleteAdmin,
	})
}

func (h *Handler) CreateAdmin(w http.ResponseWriter, r *http.Request) {
	const prefix = "Failed to create admin: "
	var dto admin.CreateAdminDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteResult(w, err, "", prefix, h.adminItems(r.Context()))
		return
	}

	created, err := h.Admins.CreateAdmin(r.Context(), dto)
	msg := ""
	if err == nil {
		msg = admin.CreatedMessage(created)
	}
	h.WriteResult(w, err, msg, prefix, h.adminItems(r.Context()))
}

func (h *Handler) UpdateAdmin(w http.ResponseWriter, r *http.Request) {
	const prefix = "Failed to update admin: "
	var dto admin.UpdateAdminDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteResult(w, err, "", prefix, h.adminItems(r.Context()))
		return
	}

	found, err := h.Admins.UpdateAdmin(r.Context(), dto)
	h.WriteResult(w, err, found2msg(found, MsgAdminUpdated), prefix, h.adminItems(r.Context()))
}

func (h *Handler) DeleteAdmin(w http.ResponseWriter, r *http.Request) {
	const prefix = "Failed to delete admin: "
	var dto IDDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteResult(w, err, "", prefix, h.adminItems(r.Context()))
		return
	}

	found, err := h.Admins.DeleteAdmin(r.Context(), dto.ID)
	h.WriteResult(w, err, found2msg(found, MsgAdminDeleted), prefix, h.adminItems(r.Context()))
}

func (h *Handler) adminItems(ctx context.Context) []*admin.Admin {
	items, err := h.Admins.ListAdmins(ctx)
	if err != nil {
		h.Logger.Error("failed to reload admins", "error", err)
		return []*admin.Admin{}
	}
	return items
}

// ---- borrow requests ----

func (h *Handler) BorrowWrites() http.HandlerFunc {
	return transport.HandlerSwitch("handler", map[string]http.HandlerFunc{
		"Approve": h.decide(h.Borrows.Approve, borrow.MsgApproved, "Failed to approve request: "),
		"Reject":  h.decide(h.Borrows.Reject, borrow.MsgRejected, "Failed to reject request: "),
		"Return":  h.decide(h.Borrows.MarkReturned, borrow.MsgReturned, "Failed to mark request returned: "),
	})
}

func (h *Handler) decide(fn func(context.Context, int64) (bool, error), okMsg, prefix string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var dto IDDTO
		if err := h.DecodeJSON(r, &dto); err != nil {
			h.WriteResult(w, err, "", prefix, h.borrowItems(r.Context()))
			return
		}

		found, err := fn(r.Context(), dto.ID)
		h.WriteResult(w, err, found2msg(found, okMsg), prefix, h.borrowItems(r.Context()))
	}
}

func (h *Handler) borrowItems(ctx context.Context) []*borrow.Request {
	items, err := h.Borrows.ListAll(ctx)
	if err != nil {
		h.Logger.Error("failed to reload borrow requests", "error", err)
		return []*borrow.Request{}
	}
	return items
}

// found2msg blanks the confirmation when the write matched no row.
func found2msg(found bool, msg string) string {
	if !found {
		return ""
	}
	return msg
}
