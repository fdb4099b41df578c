// Package services orchestrates repositories, storage and notifications
// for every mutation and read exposed over HTTP.
package services

import (
	"context"

	"github.com/anonto42/inkwell/backend/internal/notifications"
	"github.com/anonto42/inkwell/backend/internal/projection"
	"github.com/anonto42/inkwell/backend/internal/repositories"
	"github.com/anonto42/inkwell/backend/internal/storage"
	log "github.com/sirupsen/logrus"
)

type Deps struct {
	UnitOfWork repositories.UnitOfWork
	// Repos serves reads outside any transaction.
	Repos     repositories.Repositories
	Storage   storage.Storage
	Engine    *notifications.Engine
	Projector *projection.Projector
}

type Services struct {
	Blogs         *BlogService
	Comments      *CommentService
	Users         *UserService
	Notifications *NotificationService
}

func New(d Deps) *Services {
	if d.Projector == nil {
		d.Projector = projection.New(d.Repos.Blogs, d.Repos.Comments, d.Repos.Users)
	}
	return &Services{
		Blogs:         &BlogService{d: d},
		Comments:      &CommentService{d: d},
		Users:         &UserService{d: d},
		Notifications: &NotificationService{engine: d.Engine},
	}
}

// compensate removes an object uploaded by a transaction that later rolled
// back. A failure leaves an orphan, logged with its key for reconciliation.
func compensate(ctx context.Context, store storage.Storage, key string) {
	if key == "" {
		return
	}
	if err := store.Delete(context.WithoutCancel(ctx), key); err != nil {
		log.WithField("key", key).Errorf("orphaned storage object after rollback: %s", err)
	}
}

// discard deletes objects no longer referenced by any committed row.
func discard(ctx context.Context, store storage.Storage, keys ...string) {
	if len(keys) == 0 {
		return
	}
	if err := store.Delete(context.WithoutCancel(ctx), keys...); err != nil {
		log.WithField("keys", keys).Warnf("delete replaced storage objects: %s", err)
	}
}

type image struct {
	data        []byte
	contentType string
	ext         string
}

// sniff checks an optional upload before any transaction starts.
func sniff(data []byte) (*image, error) {
	if data == nil {
		return nil, nil
	}
	ct, ext, err := storage.DetectImage(data)
	if err != nil {
		return nil, err
	}
	return &image{data: data, contentType: ct, ext: ext}, nil
}
