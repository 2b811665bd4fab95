package user

import (
	"fmt"
	"strings"
)

// Role is the closed set of account roles.
type Role string

const (
	RoleUser  Role = "User"
	RoleAdmin Role = "Admin"
)

func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

func (r Role) String() string {
	return string(r)
}

// ParseRole is case-insensitive on input and canonical on output.
func ParseRole(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "user":
		return RoleUser, nil
	case "admin":
		return RoleAdmin, nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

// RoleOrUser maps an unknown stored role to the least privileged one.
func RoleOrUser(s string) Role {
	r, err := ParseRole(s)
	if err != nil {
		return RoleUser
	}
	return r
}

const (
	UserLandingPath    = "/UserView"
	AdminDashboardPath = "/AdminDashboard"
	LoginPath          = "/login"
)

// LandingPath is where an authenticated session of role r belongs.
func LandingPath(r Role) string {
	if r == RoleUser {
		return UserLandingPath
	}
	return AdminDashboardPath
}
