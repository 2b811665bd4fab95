// Package notification emails admins and requesters about borrow activity.
// It runs off the event bus, so delivery failures never reach the request
// that caused them.
package notification

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	userDatamodel "github.com/frahmantamala/inventory-management/internal/core/datamodel/user"
	"github.com/frahmantamala/inventory-management/internal/core/events"
	coreUser "github.com/frahmantamala/inventory-management/internal/core/user"
	"github.com/frahmantamala/inventory-management/internal/metrics"
	"github.com/frahmantamala/inventory-management/pkg/mailer"
)

// Recipients resolves who gets told. The user repository satisfies it.
type Recipients interface {
	GetByID(ctx context.Context, id int64) (*userDatamodel.User, error)
	ListActiveByRole(ctx context.Context, role string) ([]*userDatamodel.User, error)
}

type EventHandler struct {
	recipients Recipients
	mailer     mailer.Mailer
	logger     *slog.Logger
}

func NewEventHandler(recipients Recipients, m mailer.Mailer, logger *slog.Logger) *EventHandler {
	return &EventHandler{
		recipients: recipients,
		mailer:     m,
		logger:     logger,
	}
}

func (h *EventHandler) HandleBorrowRequested(ctx context.Context, event events.Event) error {
	borrowEvent, err := asBorrowEvent(event)
	if err != nil {
		return err
	}

	requester := fmt.Sprintf("user #%d", borrowEvent.UserID)
	if u, err := h.recipients.GetByID(ctx, borrowEvent.UserID); err == nil && u != nil {
		requester = u.FullName
	}

	admins, err := h.recipients.ListActiveByRole(ctx, coreUser.RoleAdmin.String())
	if err != nil {
		return fmt.Errorf("load admin recipients: %w", err)
	}
	if len(admins) == 0 {
		h.logger.Warn("no active admins to notify", "request_id", borrowEvent.RequestID)
		return nil
	}

	to := make([]string, 0, len(admins))
	for _, a := range admins {
		if a.Email != "" {
			to = append(to, a.Email)
		}
	}
	if len(to) == 0 {
		return nil
	}

	body, err := mailer.Render(mailer.TemplateBorrowRequested, mailer.BorrowRequestedData{
		Requester:   requester,
		ProductName: borrowEvent.ProductName,
		Purpose:     borrowEvent.Purpose,
	})
	if err != nil {
		return err
	}

	return h.send(ctx, mailer.TemplateBorrowRequested, mailer.Message{
		To:      to,
		Subject: "New Borrow Request: " + borrowEvent.ProductName,
		Body:    body,
		HTML:    true,
	}, borrowEvent)
}

// HandleBorrowDecision tells the requester their request was approved or rejected.
func (h *EventHandler) HandleBorrowDecision(ctx context.Context, event events.Event) error {
	borrowEvent, err := asBorrowEvent(event)
	if err != nil {
		return err
	}

	u, err := h.recipients.GetByID(ctx, borrowEvent.UserID)
	if err != nil {
		return fmt.Errorf("load requester %d: %w", borrowEvent.UserID, err)
	}
	if u == nil || u.Email == "" {
		h.logger.Warn("requester has no email on file", "request_id", borrowEvent.RequestID, "user_id", borrowEvent.UserID)
		return nil
	}

	status := strings.ToLower(borrowEvent.Status)
	body, err := mailer.Render(mailer.TemplateBorrowDecision, mailer.BorrowDecisionData{
		Name:        u.FullName,
		ProductName: borrowEvent.ProductName,
		Status:      status,
	})
	if err != nil {
		return err
	}

	return h.send(ctx, mailer.TemplateBorrowDecision, mailer.Message{
		To:      []string{u.Email},
		Subject: fmt.Sprintf("Your borrow request was %s", status),
		Body:    body,
		HTML:    true,
	}, borrowEvent)
}

func (h *EventHandler) send(ctx context.Context, template string, msg mailer.Message, e *events.BorrowEvent) error {
	err := h.mailer.Send(ctx, msg)
	metrics.MailDeliveriesTotal.WithLabelValues(template, metrics.Result(err)).Inc()
	if err != nil {
		h.logger.Warn("borrow notification not delivered",
			"template", template,
			"request_id", e.RequestID,
			"event_id", e.EventID(),
			"error", err)
		return fmt.Errorf("send %s for request %d: %w", template, e.RequestID, err)
	}

	h.logger.Info("borrow notification sent",
		"template", template,
		"request_id", e.RequestID,
		"recipients", len(msg.To))
	return nil
}

func asBorrowEvent(event events.Event) (*events.BorrowEvent, error) {
	borrowEvent, ok := event.(*events.BorrowEvent)
	if !ok {
		return nil, fmt.Errorf("expected BorrowEvent, got %T", event)
	}
	return borrowEvent, nil
}

func (h *EventHandler) RegisterEventHandlers(eventBus *events.EventBus) {
	eventBus.Subscribe(events.EventTypeBorrowRequested, h.HandleBorrowRequested)
	eventBus.Subscribe(events.EventTypeBorrowApproved, h.HandleBorrowDecision)
	eventBus.Subscribe(events.EventTypeBorrowRejected, h.HandleBorrowDecision)

	h.logger.Info("notification event handlers registered",
		"handlers", []string{events.EventTypeBorrowRequested, events.EventTypeBorrowApproved, events.EventTypeBorrowRejected})
}
