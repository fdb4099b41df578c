package repositories

import (
	"context"

	"github.com/anonto42/inkwell/backend/internal/models"
	"github.com/anonto42/inkwell/backend/internal/query"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// NotificationRepository defines the interface for notification operations
type NotificationRepository interface {
	// CreateNotification inserts n unless a row with the same dedup key
	// exists, and reports whether a row was written.
	CreateNotification(ctx context.Context, n *models.Notification) (bool, error)
	CreateNotifications(ctx context.Context, ns []*models.Notification) error
	DedupKeyExists(ctx context.Context, key string) (bool, error)
	GetNotificationsByIDs(ctx context.Context, ids []uint) ([]models.Notification, error)
	ListNotifications(ctx context.Context, receiverID uint, status models.NotificationStatus, p query.Params) ([]models.Notification, int64, error)
	MarkRead(ctx context.Context, id, receiverID uint) (bool, error)
	MarkAllRead(ctx context.Context, receiverID uint) (int64, error)
	CountByStatus(ctx context.Context, receiverID uint, status models.NotificationStatus) (int64, error)
}

type postgresNotificationRepository struct {
	db *gorm.DB
}

func NewPostgresNotificationRepository(db *gorm.DB) NotificationRepository {
	return &postgresNotificationRepository{db: db}
}

func (r *postgresNotificationRepository) CreateNotification(ctx context.Context, n *models.Notification) (bool, error) {
	res := r.db.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "dedup_key"}}, DoNothing: true}).
		Create(n)
	if res.Error != nil {
		return false, errors.Wrap(res.Error, "create notification")
	}
	return res.RowsAffected > 0, nil
}

func (r *postgresNotificationRepository) CreateNotifications(ctx context.Context, ns []*models.Notification) error {
	if len(ns) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).Omit(clause.Associations).Create(&ns).Error
	return errors.Wrap(err, "create notifications")
}

func (r *postgresNotificationRepository) DedupKeyExists(ctx context.Context, key string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Notification{}).Where("dedup_key = ?", key).Count(&count).Error
	return count > 0, errors.Wrap(err, "check notification")
}

func (r *postgresNotificationRepository) GetNotificationsByIDs(ctx context.Context, ids []uint) ([]models.Notification, error) {
	var notifications []models.Notification
	if len(ids) == 0 {
		return notifications, nil
	}
	err := r.db.WithContext(ctx).
		Preload("Sender").
		Preload("Blog").
		Preload("Comment").
		Where("id IN ?", ids).
		Order("id").
		Find(&notifications).Error
	return notifications, errors.Wrap(err, "load notifications")
}

func (r *postgresNotificationRepository) ListNotifications(ctx context.Context, receiverID uint, status models.NotificationStatus, p query.Params) ([]models.Notification, int64, error) {
	b := query.New[models.Notification](r.db, query.Notifications).
		Preload("Sender").
		Preload("Blog").
		Preload("Comment").
		Where("notifications.receiver_id = ?", receiverID)
	if status != "" {
		b.Where("notifications.status = ?", status)
	}
	return b.Apply(p).Execute(ctx)
}

// MarkRead flips one notification to READ. Ownership is part of the
// predicate, so a foreign id matches nothing.
func (r *postgresNotificationRepository) MarkRead(ctx context.Context, id, receiverID uint) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("id = ? AND receiver_id = ?", id, receiverID).
		Update("status", models.StatusRead)
	if res.Error != nil {
		return false, errors.Wrap(res.Error, "mark notification read")
	}
	return res.RowsAffected > 0, nil
}

func (r *postgresNotificationRepository) MarkAllRead(ctx context.Context, receiverID uint) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("receiver_id = ? AND status = ?", receiverID, models.StatusUnread).
		Update("status", models.StatusRead)
	return res.RowsAffected, errors.Wrap(res.Error, "mark all notifications read")
}

func (r *postgresNotificationRepository) CountByStatus(ctx context.Context, receiverID uint, status models.NotificationStatus) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("receiver_id = ? AND status = ?", receiverID, status).
		Count(&count).Error
	return count, errors.Wrap(err, "count notifications")
}
