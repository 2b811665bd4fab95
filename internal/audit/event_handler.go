package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	auditDatamodel "github.com/frahmantamala/inventory-management/internal/core/datamodel/audit"
	"github.com/frahmantamala/inventory-management/internal/core/events"
)

type EventHandler struct {
	service *Service
	logger  *slog.Logger
}

func NewEventHandler(service *Service, logger *slog.Logger) *EventHandler {
	return &EventHandler{
		service: service,
		logger:  logger,
	}
}

func (h *EventHandler) HandleLoggedIn(ctx context.Context, event events.Event) error {
	return h.appendLogin(ctx, event, auditDatamodel.ActionLogin)
}

func (h *EventHandler) HandleLoggedOut(ctx context.Context, event events.Event) error {
	return h.appendLogin(ctx, event, auditDatamodel.ActionLogout)
}

func (h *EventHandler) appendLogin(ctx context.Context, event events.Event, action string) error {
	loginEvent, ok := event.(*events.LoginEvent)
	if !ok {
		h.logger.Error("invalid event type for audit handler", "event_type", event.EventType())
		return fmt.Errorf("expected LoginEvent, got %T", event)
	}

	values, err := json.Marshal(map[string]interface{}{
		"role":     loginEvent.Role,
		"admin_id": loginEvent.AdminID,
		"event_id": loginEvent.EventID(),
	})
	if err != nil {
		return fmt.Errorf("encode audit values: %w", err)
	}

	entry := &auditDatamodel.AuditLog{
		UserID:    loginEvent.UserID,
		Username:  loginEvent.Username,
		Action:    action,
		NewValues: string(values),
		IPAddress: loginEvent.IPAddress,
		CreatedAt: loginEvent.OccurredAt().UTC(),
	}
	if loginEvent.UserID != nil {
		entry.Entity = "users"
		entry.RecordID = loginEvent.UserID
	} else if loginEvent.AdminID != nil {
		entry.Entity = "admins"
		entry.RecordID = loginEvent.AdminID
	}

	if err := h.service.Record(ctx, entry); err != nil {
		return fmt.Errorf("audit %s for %q: %w", action, loginEvent.Username, err)
	}
	return nil
}

func (h *EventHandler) RegisterEventHandlers(eventBus *events.EventBus) {
	eventBus.Subscribe(events.EventTypeUserLoggedIn, h.HandleLoggedIn)
	eventBus.Subscribe(events.EventTypeUserLoggedOut, h.HandleLoggedOut)

	h.logger.Info("audit event handlers registered",
		"handlers", []string{events.EventTypeUserLoggedIn, events.EventTypeUserLoggedOut})
}
