package auth

import (
	"strings"

	"github.com/frahmantamala/inventory-management/internal/core/common/validation"
)

type UserLoginDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate checks that both the identifier (email or username) and the password are present.
func (d UserLoginDTO) Validate() error {
	if strings.TrimSpace(d.Email) == "" || d.Password == "" {
		return ErrLoginFieldsRequired
	}
	return nil
}

type AdminLoginDTO struct {
	Username string `json:"admin_username"`
	Password string `json:"admin_password"`
	AdminKey string `json:"admin_key"`
}

func (d AdminLoginDTO) Validate() error {
	if strings.TrimSpace(d.Username) == "" || d.Password == "" || strings.TrimSpace(d.AdminKey) == "" {
		return ErrAdminFieldsRequired
	}
	return nil
}

type VerifyCodeDTO struct {
	Code string `json:"verification_code"`
}

type CreateAdminKeyDTO struct {
	MasterKey   string `json:"master_key"`
	NewAdminKey string `json:"new_admin_key"`
}

func (d CreateAdminKeyDTO) Validate() error {
	if strings.TrimSpace(d.MasterKey) == "" || strings.TrimSpace(d.NewAdminKey) == "" {
		return ErrAdminKeyFieldsRequired
	}
	return nil
}

type ForgotPasswordDTO struct {
	Email string `json:"email"`
}

type ResetPasswordDTO struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=6"`
}

func (d ResetPasswordDTO) Validate() error {
	return validation.Struct(d)
}
