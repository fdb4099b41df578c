// Package notifications creates notification rows inside the caller's
// transaction and pushes them to live subscribers once committed.
package notifications

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/anonto42/inkwell/backend/internal/apperr"
	"github.com/anonto42/inkwell/backend/internal/metrics"
	"github.com/anonto42/inkwell/backend/internal/models"
	"github.com/anonto42/inkwell/backend/internal/projection"
	"github.com/anonto42/inkwell/backend/internal/query"
	"github.com/anonto42/inkwell/backend/internal/realtime"
	"github.com/anonto42/inkwell/backend/internal/repositories"
	log "github.com/sirupsen/logrus"
)

const DefaultDispatchTimeout = 5 * time.Second

type Counts struct {
	Read   int64 `json:"read"`
	Unread int64 `json:"unread"`
}

type Engine struct {
	repo      repositories.NotificationRepository
	publisher realtime.Publisher
	metrics   *metrics.Manager
	timeout   time.Duration

	inflight sync.WaitGroup
}

func NewEngine(repo repositories.NotificationRepository, publisher realtime.Publisher, m *metrics.Manager, dispatchTimeout time.Duration) *Engine {
	if publisher == nil {
		publisher = realtime.NopPublisher{}
	}
	if dispatchTimeout <= 0 {
		dispatchTimeout = DefaultDispatchTimeout
	}
	return &Engine{repo: repo, publisher: publisher, metrics: m, timeout: dispatchTimeout}
}

func prepare(n *models.Notification) {
	n.Status = models.StatusUnread
	if n.Description == "" {
		n.Description = Describe(n.Type, n.Sender.Name)
	}
}

// CreateIfAbsent stores n unless an equivalent notification already
// exists. repo must be bound to the caller's transaction. Non-deduplicated
// types are always stored.
func (e *Engine) CreateIfAbsent(ctx context.Context, repo repositories.NotificationRepository, n *models.Notification) (bool, error) {
	if n.SenderID == n.ReceiverID {
		return false, nil
	}
	prepare(n)
	if !n.Type.Deduplicated() {
		if err := repo.CreateNotifications(ctx, []*models.Notification{n}); err != nil {
			return false, err
		}
		e.metrics.NotificationCreated(string(n.Type))
		return true, nil
	}

	key := models.DedupKey(n.Type, n.SenderID, n.ReceiverID, n.BlogID, n.CommentID)
	exists, err := repo.DedupKeyExists(ctx, key)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}
	n.DedupKey = &key
	created, err := repo.CreateNotification(ctx, n)
	if err != nil {
		return false, err
	}
	if created {
		e.metrics.NotificationCreated(string(n.Type))
	}
	return created, nil
}

// Create stores every notification whose sender and receiver differ and
// returns the stored ones.
func (e *Engine) Create(ctx context.Context, repo repositories.NotificationRepository, ns ...*models.Notification) ([]*models.Notification, error) {
	keep := make([]*models.Notification, 0, len(ns))
	for _, n := range ns {
		if n.SenderID == n.ReceiverID {
			continue
		}
		prepare(n)
		keep = append(keep, n)
	}
	if err := repo.CreateNotifications(ctx, keep); err != nil {
		return nil, err
	}
	for _, n := range keep {
		e.metrics.NotificationCreated(string(n.Type))
	}
	return keep, nil
}

// Dispatch publishes committed notifications in the background. Failures
// are logged and counted and never reach the caller.
func (e *Engine) Dispatch(ctx context.Context, ns ...*models.Notification) {
	ids := make([]uint, 0, len(ns))
	for _, n := range ns {
		if n != nil && n.ID != 0 {
			ids = append(ids, n.ID)
		}
	}
	if len(ids) == 0 {
		return
	}

	ctx = context.WithoutCancel(ctx)
	e.inflight.Add(1)
	go func() {
		defer e.inflight.Done()
		ctx, cancel := context.WithTimeout(ctx, e.timeout)
		defer cancel()
		e.dispatch(ctx, ids)
	}()
}

func (e *Engine) dispatch(ctx context.Context, ids []uint) {
	loaded, err := e.repo.GetNotificationsByIDs(ctx, ids)
	if err != nil {
		e.metrics.ObserveDispatch(err)
		log.Errorf("load notifications %v for dispatch: %s", ids, err)
		return
	}
	for _, n := range loaded {
		channel := strconv.FormatUint(uint64(n.ReceiverID), 10)
		err := e.publisher.Publish(ctx, channel, realtime.EventNewNotification, projection.Notification(n))
		e.metrics.ObserveDispatch(err)
		if err != nil {
			log.Warnf("dispatch notification %d to %s: %s", n.ID, channel, err)
		}
	}
}

// Flush blocks until every pending dispatch has finished.
func (e *Engine) Flush() {
	e.inflight.Wait()
}

// MarkRead reports whether the notification exists and belongs to
// receiverID. Already read notifications still match.
func (e *Engine) MarkRead(ctx context.Context, id, receiverID uint) (bool, error) {
	return e.repo.MarkRead(ctx, id, receiverID)
}

func (e *Engine) MarkAllRead(ctx context.Context, receiverID uint) (int64, error) {
	return e.repo.MarkAllRead(ctx, receiverID)
}

func (e *Engine) Counts(ctx context.Context, receiverID uint) (Counts, error) {
	read, err := e.repo.CountByStatus(ctx, receiverID, models.StatusRead)
	if err != nil {
		return Counts{}, err
	}
	unread, err := e.repo.CountByStatus(ctx, receiverID, models.StatusUnread)
	if err != nil {
		return Counts{}, err
	}
	return Counts{Read: read, Unread: unread}, nil
}

func (e *Engine) List(ctx context.Context, receiverID uint, status models.NotificationStatus, p query.Params) ([]projection.NotificationView, int64, error) {
	if status != "" && !status.Valid() {
		return nil, 0, apperr.New(apperr.InvalidInput, fmt.Sprintf("unknown notification status %q", status))
	}
	ns, total, err := e.repo.ListNotifications(ctx, receiverID, status, p)
	if err != nil {
		return nil, 0, err
	}
	return projection.Notifications(ns), total, nil
}
