package admin

import (
	"strings"
	"time"

	errors "github.com/frahmantamala/inventory-management/internal"
	adminDatamodel "github.com/frahmantamala/inventory-management/internal/core/datamodel/admin"
)

type Admin struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

var (
	ErrRequiredFields   = errors.NewValidationError("Username and password are required.", errors.ErrCodeValidationFailed)
	ErrUsernameRequired = errors.NewValidationError("Username is required.", errors.ErrCodeValidationFailed)
	ErrUsernameExists   = errors.NewConflictError("Admin username already exists.", errors.ErrCodeDuplicate)
)

type CreateAdminDTO struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (d CreateAdminDTO) Validate() error {
	if strings.TrimSpace(d.Username) == "" || strings.TrimSpace(d.Password) == "" {
		return ErrRequiredFields
	}
	return nil
}

// UpdateAdminDTO renames an admin. The password changes only when given.
type UpdateAdminDTO struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Password string `json:"password"`
}

func (d UpdateAdminDTO) Validate() error {
	if strings.TrimSpace(d.Username) == "" {
		return ErrUsernameRequired
	}
	return nil
}

func FromDataModel(a *adminDatamodel.Admin) *Admin {
	return &Admin{
		ID:        a.ID,
		Username:  a.Username,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}
