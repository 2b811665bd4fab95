package borrow

import (
	"strings"
	"time"

	errors "github.com/frahmantamala/inventory-management/internal"
	borrowDatamodel "github.com/frahmantamala/inventory-management/internal/core/datamodel/borrow"
)

type Status string

const (
	StatusPending  Status = "Pending"
	StatusApproved Status = "Approved"
	StatusRejected Status = "Rejected"
	StatusBorrowed Status = "Borrowed"
	StatusReturned Status = "Returned"
)

const (
	MsgRequested = "Borrow request submitted successfully! Admin will be notified."
	MsgApproved  = "Borrow request approved!"
	MsgRejected  = "Borrow request rejected."
	MsgReturned  = "Borrow request marked as returned."
)

var (
	ErrProductRequired    = errors.NewValidationError("Please choose a product to borrow.", errors.ErrCodeValidationFailed)
	ErrUserNotFound       = errors.NewNotFoundError("User not found.", errors.ErrCodeNotFound)
	ErrProductNotFound    = errors.NewNotFoundError("Product not found.", errors.ErrCodeNotFound)
	ErrProductUnavailable = errors.NewConflictError("This product is currently not available.", errors.ErrCodeProductUnavailable)

	ErrInvalidStatus     = errors.NewConflictError("This request cannot be changed from its current status.", errors.ErrCodeInvalidStatus)
	ErrNotPendingApprove = errors.NewConflictError("Only pending requests can be approved.", errors.ErrCodeInvalidStatus)
	ErrNotPendingReject  = errors.NewConflictError("Only pending requests can be rejected.", errors.ErrCodeInvalidStatus)
	ErrNotReturnable     = errors.NewConflictError("Only approved or borrowed requests can be returned.", errors.ErrCodeInvalidStatus)
)

// Request is a borrow request joined with its requester and product.
type Request struct {
	ID          int64      `json:"id"`
	UserID      int64      `json:"user_id"`
	Username    string     `json:"username"`
	FullName    string     `json:"full_name"`
	ProductID   int64      `json:"product_id"`
	ProductCode string     `json:"product_code"`
	ProductName string     `json:"product_name"`
	Purpose     string     `json:"purpose"`
	Status      Status     `json:"status"`
	RequestDate time.Time  `json:"request_date"`
	BorrowDate  *time.Time `json:"borrow_date,omitempty"`
	ReturnDate  *time.Time `json:"return_date,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Transition describes a guarded status change. When ProductAvailable is
// set the referenced product's availability changes in the same transaction.
type Transition struct {
	From             []Status
	To               Status
	At               time.Time
	SetBorrowDate    bool
	SetReturnDate    bool
	ProductAvailable *bool
	Invalid          *errors.AppError
}

func (t Transition) Allows(s string) bool {
	for _, f := range t.From {
		if strings.EqualFold(string(f), s) {
			return true
		}
	}
	return false
}

type RequestBorrowDTO struct {
	ProductID int64  `json:"product_id"`
	Purpose   string `json:"purpose"`
}

func FromRow(r *borrowDatamodel.BorrowRequestRow) *Request {
	return &Request{
		ID:          r.ID,
		UserID:      r.UserID,
		Username:    r.Username,
		FullName:    r.FullName,
		ProductID:   r.ProductID,
		ProductCode: r.ProductCode,
		ProductName: r.ProductName,
		Purpose:     r.Purpose,
		Status:      Status(r.Status),
		RequestDate: r.RequestDate,
		BorrowDate:  r.BorrowDate,
		ReturnDate:  r.ReturnDate,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

func FromRows(rows []*borrowDatamodel.BorrowRequestRow) []*Request {
	out := make([]*Request, 0, len(rows))
	for _, r := range rows {
		out = append(out, FromRow(r))
	}
	return out
}
