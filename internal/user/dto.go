package user

import (
	"strings"

	"github.com/frahmantamala/inventory-management/internal/core/common/validation"
	coreUser "github.com/frahmantamala/inventory-management/internal/core/user"
)

type RegisterDTO struct {
	FullName string `json:"full_name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required,min=6"`
	Position string `json:"position"`
}

func (d *RegisterDTO) Normalize() {
	d.FullName = strings.TrimSpace(d.FullName)
	d.Email = strings.TrimSpace(d.Email)
	d.Username = strings.TrimSpace(d.Username)
	d.Password = strings.TrimSpace(d.Password)
	d.Position = strings.TrimSpace(d.Position)
}

func (d RegisterDTO) Validate() error {
	if d.FullName == "" || d.Email == "" || d.Username == "" || d.Password == "" {
		return ErrRequiredFields
	}
	return validation.Struct(d)
}

type CreateUserDTO struct {
	FullName        string `json:"full_name" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	Username        string `json:"username" validate:"required"`
	Password        string `json:"password" validate:"required,min=6"`
	Position        string `json:"position"`
	Role            string `json:"role"`
	IsActive        *bool  `json:"is_active"`
	IsEmailVerified bool   `json:"is_email_verified"`
}

func (d *CreateUserDTO) Normalize() {
	d.FullName = strings.TrimSpace(d.FullName)
	d.Email = strings.TrimSpace(d.Email)
	d.Username = strings.TrimSpace(d.Username)
	d.Position = strings.TrimSpace(d.Position)
}

func (d CreateUserDTO) Validate() (coreUser.Role, error) {
	if err := validation.Struct(d); err != nil {
		return "", err
	}
	return parseRole(d.Role)
}

// UpdateUserDTO replaces every editable field. An empty password keeps the
// current one.
type UpdateUserDTO struct {
	ID              int64  `json:"id" validate:"required,gt=0"`
	FullName        string `json:"full_name" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	Username        string `json:"username" validate:"required"`
	Password        string `json:"password" validate:"omitempty,min=6"`
	Position        string `json:"position"`
	Role            string `json:"role"`
	IsActive        bool   `json:"is_active"`
	IsEmailVerified bool   `json:"is_email_verified"`
}

func (d *UpdateUserDTO) Normalize() {
	d.FullName = strings.TrimSpace(d.FullName)
	d.Email = strings.TrimSpace(d.Email)
	d.Username = strings.TrimSpace(d.Username)
	d.Position = strings.TrimSpace(d.Position)
}

func (d UpdateUserDTO) Validate() (coreUser.Role, error) {
	if err := validation.Struct(d); err != nil {
		return "", err
	}
	return parseRole(d.Role)
}

func parseRole(raw string) (coreUser.Role, error) {
	if strings.TrimSpace(raw) == "" {
		return coreUser.RoleUser, nil
	}
	role, err := coreUser.ParseRole(raw)
	if err != nil {
		return "", ErrInvalidRole
	}
	return role, nil
}
