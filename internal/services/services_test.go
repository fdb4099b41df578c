package services

import (
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/anonto42/inkwell/backend/internal/apperr"
	"github.com/anonto42/inkwell/backend/internal/models"
	"github.com/anonto42/inkwell/backend/internal/notifications"
	"github.com/anonto42/inkwell/backend/internal/realtime"
	"github.com/anonto42/inkwell/backend/internal/repositories"
	"github.com/anonto42/inkwell/backend/internal/testdb"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01")

type memStorage struct {
	mu         sync.Mutex
	objects    map[string][]byte
	failUpload error
}

func newMemStorage() *memStorage {
	return &memStorage{objects: map[string][]byte{}}
}

func (m *memStorage) Upload(_ context.Context, key string, data []byte, _ string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failUpload != nil {
		return "", m.failUpload
	}
	m.objects[key] = data
	return m.PublicURL(key), nil
}

func (m *memStorage) PublicURL(key string) string {
	return "/media/" + key
}

func (m *memStorage) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.objects, k)
	}
	return nil
}

func (m *memStorage) Download(_ context.Context, key string) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[key]
	if !ok {
		return nil, apperr.New(apperr.NotFound, "object not found")
	}
	return io.NopCloser(strings.NewReader(string(data))), nil
}

func (m *memStorage) keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0, len(m.objects))
	for k := range m.objects {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

type fixture struct {
	db    *gorm.DB
	store *memStorage
	svc   *Services
	ctx   context.Context
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testdb.Open(t)
	testdb.Seed(t, db, testdb.User(1, "ana"), testdb.User(2, "bo"), testdb.User(3, "cy"))

	repos := repositories.NewRepositories(db)
	engine := notifications.NewEngine(repos.Notifications, realtime.NopPublisher{}, nil, time.Second)
	t.Cleanup(engine.Flush)

	store := newMemStorage()
	return &fixture{
		db:    db,
		store: store,
		ctx:   context.Background(),
		svc: New(Deps{
			UnitOfWork: repositories.NewUnitOfWork(db),
			Repos:      repos,
			Storage:    store,
			Engine:     engine,
		}),
	}
}

func (f *fixture) count(t *testing.T, model any, where string, args ...any) int64 {
	t.Helper()
	var n int64
	q := f.db.Model(model)
	if where != "" {
		q = q.Where(where, args...)
	}
	require.NoError(t, q.Count(&n).Error)
	return n
}

func (f *fixture) setPassword(t *testing.T, userID uint, password string) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	require.NoError(t, f.db.Model(&models.User{}).Where("id = ?", userID).Update("password", string(hash)).Error)
}

func requireKind(t *testing.T, err error, kind apperr.Kind) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, kind, apperr.KindOf(err), "got %v", err)
}

var errUnreachable = errors.New("storage unreachable")
