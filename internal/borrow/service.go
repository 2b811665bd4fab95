package borrow

import (
	"context"
	"log/slog"
	"strings"
	"time"

	errors "github.com/frahmantamala/inventory-management/internal"
	borrowDatamodel "github.com/frahmantamala/inventory-management/internal/core/datamodel/borrow"
	"github.com/frahmantamala/inventory-management/internal/core/events"
	"github.com/frahmantamala/inventory-management/internal/metrics"
)

type RepositoryAPI interface {
	GetAll(ctx context.Context) ([]*borrowDatamodel.BorrowRequestRow, error)
	GetByUser(ctx context.Context, userID int64) ([]*borrowDatamodel.BorrowRequestRow, error)
	GetByID(ctx context.Context, id int64) (*borrowDatamodel.BorrowRequestRow, error)
	Create(ctx context.Context, req *borrowDatamodel.BorrowRequest) (*borrowDatamodel.BorrowRequestRow, error)
	Transition(ctx context.Context, id int64, t Transition) (*borrowDatamodel.BorrowRequestRow, error)
}

type Service struct {
	repo   RepositoryAPI
	events events.Publisher
	logger *slog.Logger
	now    func() time.Time
}

func NewService(repo RepositoryAPI, publisher events.Publisher, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		events: publisher,
		logger: logger,
		now:    time.Now,
	}
}

func (s *Service) ListAll(ctx context.Context) ([]*Request, error) {
	rows, err := s.repo.GetAll(ctx)
	if err != nil {
		s.logger.Error("failed to list borrow requests", "error", err)
		return nil, errors.NewInternalError("Failed to load borrow requests.", err)
	}
	return FromRows(rows), nil
}

func (s *Service) ListForUser(ctx context.Context, userID int64) ([]*Request, error) {
	rows, err := s.repo.GetByUser(ctx, userID)
	if err != nil {
		s.logger.Error("failed to list borrow requests", "user_id", userID, "error", err)
		return nil, errors.NewInternalError("Failed to load borrow requests.", err)
	}
	return FromRows(rows), nil
}

// RequestBorrow files a pending request for an available product.
func (s *Service) RequestBorrow(ctx context.Context, userID int64, dto RequestBorrowDTO) (*Request, error) {
	if dto.ProductID <= 0 {
		return nil, ErrProductRequired
	}

	row, err := s.repo.Create(ctx, &borrowDatamodel.BorrowRequest{
		UserID:      userID,
		ProductID:   dto.ProductID,
		Purpose:     strings.TrimSpace(dto.Purpose),
		Status:      string(StatusPending),
		RequestDate: s.now().UTC(),
	})
	if err != nil {
		if _, ok := errors.IsAppError(err); ok {
			return nil, err
		}
		s.logger.Error("failed to create borrow request", "user_id", userID, "product_id", dto.ProductID, "error", err)
		return nil, errors.NewInternalError("Failed to submit borrow request.", err)
	}

	metrics.BorrowDecisionsTotal.WithLabelValues("requested").Inc()
	req := FromRow(row)
	s.publish(ctx, events.EventTypeBorrowRequested, req)
	return req, nil
}

// Approve marks a pending request approved and the product unavailable in
// one transaction. An unknown id reports false.
func (s *Service) Approve(ctx context.Context, id int64) (bool, error) {
	unavailable := false
	return s.transition(ctx, id, Transition{
		From:             []Status{StatusPending},
		To:               StatusApproved,
		SetBorrowDate:    true,
		ProductAvailable: &unavailable,
		Invalid:          ErrNotPendingApprove,
	}, events.EventTypeBorrowApproved)
}

// Reject only changes the request's status.
func (s *Service) Reject(ctx context.Context, id int64) (bool, error) {
	return s.transition(ctx, id, Transition{
		From:    []Status{StatusPending},
		To:      StatusRejected,
		Invalid: ErrNotPendingReject,
	}, events.EventTypeBorrowRejected)
}

// MarkReturned closes an approved or borrowed request and makes the product
// available again.
func (s *Service) MarkReturned(ctx context.Context, id int64) (bool, error) {
	available := true
	return s.transition(ctx, id, Transition{
		From:             []Status{StatusApproved, StatusBorrowed},
		To:               StatusReturned,
		SetReturnDate:    true,
		ProductAvailable: &available,
		Invalid:          ErrNotReturnable,
	}, "")
}

func (s *Service) transition(ctx context.Context, id int64, t Transition, eventType string) (bool, error) {
	t.At = s.now().UTC()
	row, err := s.repo.Transition(ctx, id, t)
	if err != nil {
		if _, ok := errors.IsAppError(err); ok {
			return false, err
		}
		s.logger.Error("borrow transition failed", "request_id", id, "to", t.To, "error", err)
		return false, errors.NewInternalError("Failed to update borrow request.", err)
	}
	if row == nil {
		return false, nil
	}

	metrics.BorrowDecisionsTotal.WithLabelValues(strings.ToLower(string(t.To))).Inc()
	s.logger.Info("borrow request updated", "request_id", id, "status", t.To)
	if eventType != "" {
		s.publish(ctx, eventType, FromRow(row))
	}
	return true, nil
}

func (s *Service) publish(ctx context.Context, eventType string, req *Request) {
	if s.events == nil {
		return
	}
	event := events.NewBorrowEvent(eventType, req.ID, req.UserID, req.ProductID, req.ProductName, req.Purpose, string(req.Status))
	if err := s.events.Publish(ctx, event); err != nil {
		s.logger.Warn("failed to publish borrow event", "event_type", eventType, "error", err)
	}
}
