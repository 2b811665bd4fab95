package user

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	errors "github.com/frahmantamala/inventory-management/internal"
	userDatamodel "github.com/frahmantamala/inventory-management/internal/core/datamodel/user"
	coreUser "github.com/frahmantamala/inventory-management/internal/core/user"
)

const (
	idNumberPrefix = "21-"
	firstIDNumber  = idNumberPrefix + "0001"
)

type User struct {
	ID              int64         `json:"id"`
	FullName        string        `json:"full_name"`
	Email           string        `json:"email"`
	Username        string        `json:"username"`
	PasswordHash    string        `json:"-"`
	Position        string        `json:"position"`
	IDNumber        string        `json:"id_number"`
	Role            coreUser.Role `json:"role"`
	IsEmailVerified bool          `json:"is_email_verified"`
	IsIDVerified    bool          `json:"is_id_verified"`
	IsActive        bool          `json:"is_active"`
	LastLogin       *time.Time    `json:"last_login,omitempty"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

var (
	ErrRequiredFields  = errors.NewValidationError("Please fill in all required fields.", errors.ErrCodeValidationFailed)
	ErrEmailExists     = errors.NewConflictError("Email already exists.", errors.ErrCodeDuplicate)
	ErrUsernameExists  = errors.NewConflictError("Username already exists.", errors.ErrCodeDuplicate)
	ErrUserExists      = errors.NewConflictError("Username or Email already exists.", errors.ErrCodeDuplicate)
	ErrInvalidRole     = errors.NewValidationError("Role must be User or Admin.", errors.ErrCodeValidationFailed)
	ErrWelcomeMailFail = errors.NewExternalError("Registration failed: the welcome email could not be sent.", errors.ErrCodeMailDeliveryFailed, nil)
)

// IsAdminPosition reports whether a registration position also grants an
// admin account.
func IsAdminPosition(position string) bool {
	switch strings.ToLower(strings.TrimSpace(position)) {
	case "admin", "administrator":
		return true
	}
	return false
}

// NextIDNumber follows last in the 21-NNNN sequence. Anything unparsable
// restarts the sequence.
func NextIDNumber(last string) string {
	if !strings.HasPrefix(last, idNumberPrefix) {
		return firstIDNumber
	}
	n, err := strconv.Atoi(strings.TrimPrefix(last, idNumberPrefix))
	if err != nil || n < 0 {
		return firstIDNumber
	}
	return fmt.Sprintf("%s%04d", idNumberPrefix, n+1)
}

func FromDataModel(u *userDatamodel.User) *User {
	return &User{
		ID:              u.ID,
		FullName:        u.FullName,
		Email:           u.Email,
		Username:        u.Username,
		PasswordHash:    u.PasswordHash,
		Position:        u.Position,
		IDNumber:        u.IDNumber,
		Role:            coreUser.RoleOrUser(u.Role),
		IsEmailVerified: u.IsEmailVerified,
		IsIDVerified:    u.IsIDVerified,
		IsActive:        u.IsActive,
		LastLogin:       u.LastLogin,
		CreatedAt:       u.CreatedAt,
		UpdatedAt:       u.UpdatedAt,
	}
}

func ToDataModel(u *User) *userDatamodel.User {
	return &userDatamodel.User{
		ID:              u.ID,
		FullName:        u.FullName,
		Email:           u.Email,
		Username:        u.Username,
		PasswordHash:    u.PasswordHash,
		Position:        u.Position,
		IDNumber:        u.IDNumber,
		Role:            u.Role.String(),
		IsEmailVerified: u.IsEmailVerified,
		IsIDVerified:    u.IsIDVerified,
		IsActive:        u.IsActive,
		LastLogin:       u.LastLogin,
		CreatedAt:       u.CreatedAt,
		UpdatedAt:       u.UpdatedAt,
	}
}

func FromDataModels(rows []*userDatamodel.User) []*User {
	out := make([]*User, 0, len(rows))
	for _, r := range rows {
		out = append(out, FromDataModel(r))
	}
	return out
}
