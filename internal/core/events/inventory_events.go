package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeUserLoggedIn    = "auth.logged_in"
	EventTypeUserLoggedOut   = "auth.logged_out"
	EventTypeBorrowRequested = "borrow.requested"
	EventTypeBorrowApproved  = "borrow.approved"
	EventTypeBorrowRejected  = "borrow.rejected"
)

// LoginEvent covers both login and logout. Exactly one of UserID or AdminID
// is set.
type LoginEvent struct {
	BaseEvent
	UserID    *int64 `json:"user_id,omitempty"`
	AdminID   *int64 `json:"admin_id,omitempty"`
	Username  string `json:"username"`
	Role      string `json:"role"`
	IPAddress string `json:"ip_address"`
}

func newLoginEvent(eventType string, userID, adminID *int64, username, role, ip string) *LoginEvent {
	return &LoginEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      eventType,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"username":   username,
				"role":       role,
				"ip_address": ip,
			},
		},
		UserID:    userID,
		AdminID:   adminID,
		Username:  username,
		Role:      role,
		IPAddress: ip,
	}
}

func NewUserLoggedInEvent(userID, adminID *int64, username, role, ip string) *LoginEvent {
	return newLoginEvent(EventTypeUserLoggedIn, userID, adminID, username, role, ip)
}

func NewUserLoggedOutEvent(userID, adminID *int64, username, role, ip string) *LoginEvent {
	return newLoginEvent(EventTypeUserLoggedOut, userID, adminID, username, role, ip)
}

type BorrowEvent struct {
	BaseEvent
	RequestID   int64  `json:"request_id"`
	UserID      int64  `json:"user_id"`
	ProductID   int64  `json:"product_id"`
	ProductName string `json:"product_name"`
	Purpose     string `json:"purpose"`
	Status      string `json:"status"`
}

func NewBorrowEvent(eventType string, requestID, userID, productID int64, productName, purpose, status string) *BorrowEvent {
	return &BorrowEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      eventType,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"request_id": requestID,
				"user_id":    userID,
				"product_id": productID,
				"status":     status,
			},
		},
		RequestID:   requestID,
		UserID:      userID,
		ProductID:   productID,
		ProductName: productName,
		Purpose:     purpose,
		Status:      status,
	}
}
