package session

import (
	"time"

	coreUser "github.com/frahmantamala/inventory-management/internal/core/user"
)

type Kind string

const (
	KindAnonymous     Kind = "anonymous"
	KindPending       Kind = "pending_verification"
	KindAuthenticated Kind = "authenticated"
)

// Pending is the state held between a correct password and a correct code.
type Pending struct {
	UserID   int64         `json:"user_id"`
	Email    string        `json:"email"`
	Role     coreUser.Role `json:"role"`
	Code     string        `json:"code"`
	IssuedAt time.Time     `json:"issued_at"`
	Attempts int           `json:"attempts"`
}

// Principal identifies an authenticated session. UserID is set for accounts
// from the users table, AdminID for accounts from the admins table.
type Principal struct {
	UserID   int64         `json:"user_id,omitempty"`
	AdminID  int64         `json:"admin_id,omitempty"`
	Username string        `json:"username"`
	Role     coreUser.Role `json:"role"`
}

// State is replaced as a whole on every transition. Pending is non-nil only
// for KindPending and Principal only for KindAuthenticated.
type State struct {
	Kind      Kind       `json:"kind"`
	Pending   *Pending   `json:"pending,omitempty"`
	Principal *Principal `json:"principal,omitempty"`
}

func Anonymous() State {
	return State{Kind: KindAnonymous}
}

func PendingVerification(p Pending) State {
	return State{Kind: KindPending, Pending: &p}
}

func Authenticated(p Principal) State {
	return State{Kind: KindAuthenticated, Principal: &p}
}

func (s State) IsAnonymous() bool {
	return !s.IsPending() && !s.IsAuthenticated()
}

func (s State) IsPending() bool {
	return s.Kind == KindPending && s.Pending != nil && s.Pending.UserID != 0
}

func (s State) IsAuthenticated() bool {
	return s.Kind == KindAuthenticated && s.Principal != nil && s.Principal.Username != ""
}

func (s State) HasRole(r coreUser.Role) bool {
	return s.IsAuthenticated() && s.Principal.Role == r
}

// WithFailedAttempt returns a copy of a pending state with one more attempt.
func (s State) WithFailedAttempt() State {
	if s.Pending == nil {
		return s
	}
	p := *s.Pending
	p.Attempts++
	return PendingVerification(p)
}

// Normalize turns a malformed value (e.g. a kind without its payload) into
// the anonymous state.
func (s State) Normalize() State {
	switch {
	case s.IsAuthenticated():
		return Authenticated(*s.Principal)
	case s.IsPending():
		return PendingVerification(*s.Pending)
	default:
		return Anonymous()
	}
}
