package services

import (
	"context"

	"github.com/anonto42/inkwell/backend/internal/apperr"
	"github.com/anonto42/inkwell/backend/internal/models"
	"github.com/anonto42/inkwell/backend/internal/notifications"
	"github.com/anonto42/inkwell/backend/internal/projection"
	"github.com/anonto42/inkwell/backend/internal/query"
)

type NotificationService struct {
	engine *notifications.Engine
}

func (s *NotificationService) List(ctx context.Context, receiverID uint, status models.NotificationStatus, p query.Params) (query.Page[projection.NotificationView], error) {
	views, total, err := s.engine.List(ctx, receiverID, status, p)
	if err != nil {
		return query.Page[projection.NotificationView]{}, err
	}
	return query.NewPage(views, total, p), nil
}

// MarkRead succeeds for an owned notification even when already read. A
// foreign or missing id is reported as not found.
func (s *NotificationService) MarkRead(ctx context.Context, receiverID, id uint) error {
	matched, err := s.engine.MarkRead(ctx, id, receiverID)
	if err != nil {
		return err
	}
	if !matched {
		return apperr.New(apperr.NotFound, "notification not found")
	}
	return nil
}

func (s *NotificationService) MarkAllRead(ctx context.Context, receiverID uint) (int64, error) {
	return s.engine.MarkAllRead(ctx, receiverID)
}

func (s *NotificationService) Counts(ctx context.Context, receiverID uint) (notifications.Counts, error) {
	return s.engine.Counts(ctx, receiverID)
}
