package storage

import (
	"context"
	"io"

	"github.com/anonto42/inkwell/backend/internal/metrics"
)

// Instrumented counts calls on the wrapped storage by operation and result.
type Instrumented struct {
	next    Storage
	metrics *metrics.Manager
}

func NewInstrumented(next Storage, m *metrics.Manager) *Instrumented {
	return &Instrumented{next: next, metrics: m}
}

func (s *Instrumented) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	path, err := s.next.Upload(ctx, key, data, contentType)
	s.metrics.ObserveStorage("upload", err)
	return path, err
}

func (s *Instrumented) PublicURL(key string) string {
	return s.next.PublicURL(key)
}

func (s *Instrumented) Delete(ctx context.Context, keys ...string) error {
	err := s.next.Delete(ctx, keys...)
	s.metrics.ObserveStorage("delete", err)
	return err
}

func (s *Instrumented) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	rc, err := s.next.Download(ctx, key)
	s.metrics.ObserveStorage("download", err)
	return rc, err
}
