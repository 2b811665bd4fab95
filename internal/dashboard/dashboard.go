package dashboard

import (
	"github.com/frahmantamala/inventory-management/internal/admin"
	"github.com/frahmantamala/inventory-management/internal/audit"
	"github.com/frahmantamala/inventory-management/internal/borrow"
	"github.com/frahmantamala/inventory-management/internal/product"
	"github.com/frahmantamala/inventory-management/internal/user"
)

type Totals struct {
	Products          int64 `db:"products" json:"products"`
	AvailableProducts int64 `db:"available_products" json:"available_products"`
	Users             int64 `db:"users" json:"users"`
	PendingRequests   int64 `db:"pending_requests" json:"pending_requests"`
}

// AdminDashboard is everything the admin landing page shows.
type AdminDashboard struct {
	Totals         Totals             `json:"totals"`
	Products       []*product.Product `json:"products"`
	Users          []*user.User       `json:"users"`
	Admins         []*admin.Admin     `json:"admins"`
	BorrowRequests []*borrow.Request  `json:"borrow_requests"`
	LoginHistory   []*audit.Entry     `json:"login_history"`
}

// UserView is the landing page of a regular user.
type UserView struct {
	Search         string             `json:"search,omitempty"`
	Products       []*product.Product `json:"products"`
	BorrowRequests []*borrow.Request  `json:"borrow_requests"`
	LoginHistory   []*audit.Entry     `json:"login_history"`
	QRProduct      *product.Product   `json:"qr_product,omitempty"`
	QRCodeURL      string             `json:"qr_code_url,omitempty"`
}

// IDDTO is the body of delete and borrow decision writes.
type IDDTO struct {
	ID int64 `json:"id"`
}
