package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"math/big"
	"strconv"

	errors "github.com/frahmantamala/inventory-management/internal"
	"golang.org/x/crypto/bcrypt"
)

const (
	otpMin = 100000
	otpMax = 999999
)

// Outcome is what a handler reports back on success.
type Outcome struct {
	Message  string
	Redirect string
}

var (
	ErrLoginFieldsRequired     = errors.NewValidationError("Email/Username and password are required.", errors.ErrCodeValidationFailed)
	ErrAccountNotFound         = errors.NewNotFoundError("Account not found.", errors.ErrCodeNotFound)
	ErrInvalidCredentials      = errors.NewUnauthorizedError("Invalid email/username or password.", errors.ErrCodeInvalidCredentials)
	ErrAdminFieldsRequired     = errors.NewValidationError("All admin login fields are required.", errors.ErrCodeValidationFailed)
	ErrAdminNotFound           = errors.NewNotFoundError("Admin account not found.", errors.ErrCodeNotFound)
	ErrInvalidAdminCredentials = errors.NewUnauthorizedError("Invalid admin username or password.", errors.ErrCodeInvalidCredentials)
	ErrInvalidAdminKey         = errors.NewUnauthorizedError("Invalid admin key.", errors.ErrCodeInvalidAdminKey)

	ErrSessionExpired  = errors.NewUnauthorizedError("Session expired. Please login again.", errors.ErrCodeSessionExpired)
	ErrCodeRequired    = errors.NewValidationError("Please enter the verification code.", errors.ErrCodeValidationFailed)
	ErrInvalidCode     = errors.NewUnauthorizedError("Invalid verification code. Please check and try again.", errors.ErrCodeInvalidCode)
	ErrCodeExpired     = errors.NewUnauthorizedError("Verification code expired. Please login again.", errors.ErrCodeCodeExpired)
	ErrTooManyAttempts = errors.NewUnauthorizedError("Too many invalid attempts. Please login again.", errors.ErrCodeTooManyAttempts)
	ErrUserNotFound    = errors.NewNotFoundError("User not found.", errors.ErrCodeNotFound)

	ErrAdminKeyFieldsRequired = errors.NewValidationError("Master key and new admin key are required.", errors.ErrCodeValidationFailed)
	ErrInvalidMasterKey       = errors.NewUnauthorizedError("Invalid master key.", errors.ErrCodeInvalidMasterKey)
	ErrAdminKeyExists         = errors.NewConflictError("Admin key already exists.", errors.ErrCodeDuplicate)

	ErrEmailRequired     = errors.NewValidationError("Email is required.", errors.ErrCodeValidationFailed)
	ErrInvalidResetToken = errors.NewValidationError("Invalid or expired reset link.", errors.ErrCodeInvalidResetToken)
	ErrResetMailDelivery = errors.NewExternalError("Failed to send the password reset email. Please try again.", errors.ErrCodeMailDeliveryFailed, nil)
)

// GenerateOTP draws a 6-digit code uniformly from [100000, 999999].
func GenerateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(otpMax-otpMin+1))
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(n.Int64()+otpMin, 10), nil
}

// GenerateRandomToken generates a cryptographically secure random token
func GenerateRandomToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// HashAdminKey is the stored form of an admin key.
func HashAdminKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}

// HashPassword creates a bcrypt hash of the password
func HashPassword(password string, cost int) (string, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func isBcryptHash(stored string) bool {
	_, err := bcrypt.Cost([]byte(stored))
	return err == nil
}
