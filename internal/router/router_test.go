package router

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/anonto42/inkwell/backend/internal/apperr"
	"github.com/anonto42/inkwell/backend/internal/auth"
	"github.com/anonto42/inkwell/backend/internal/metrics"
	"github.com/anonto42/inkwell/backend/internal/models"
	"github.com/anonto42/inkwell/backend/internal/notifications"
	"github.com/anonto42/inkwell/backend/internal/realtime"
	"github.com/anonto42/inkwell/backend/internal/repositories"
	"github.com/anonto42/inkwell/backend/internal/services"
	"github.com/anonto42/inkwell/backend/internal/testdb"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01")

type memStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func (m *memStorage) Upload(_ context.Context, key string, data []byte, _ string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = data
	return m.PublicURL(key), nil
}

func (m *memStorage) PublicURL(key string) string {
	return "/api/v1/media/" + key
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
	return io.NopCloser(bytes.NewReader(data)), nil
}

type server struct {
	e      *echo.Echo
	issuer *auth.JWTVerifier
}

func newServer(t *testing.T) *server {
	t.Helper()
	db := testdb.Open(t)
	testdb.Seed(t, db, testdb.User(1, "ana"), testdb.User(2, "bo"))

	repos := repositories.NewRepositories(db)
	m := metrics.NewTestManager()
	engine := notifications.NewEngine(repos.Notifications, realtime.NopPublisher{}, m, time.Second)
	t.Cleanup(engine.Flush)

	store := &memStorage{objects: map[string][]byte{}}
	issuer := auth.NewJWTVerifier("test-secret")
	e, err := New(Dependencies{
		DB: db,
		Services: services.New(services.Deps{
			UnitOfWork: repositories.NewUnitOfWork(db),
			Repos:      repos,
			Storage:    store,
			Engine:     engine,
		}),
		Verifier: issuer,
		Issuer:   issuer,
		Storage:  store,
		Metrics:  m,
	})
	require.NoError(t, err)
	return &server{e: e, issuer: issuer}
}

func (s *server) token(t *testing.T, id uint) string {
	t.Helper()
	token, err := s.issuer.Issue(&models.User{ID: id}, time.Hour)
	require.NoError(t, err)
	return token
}

func (s *server) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out), rec.Body.String())
}

type blogBody struct {
	Slug          string   `json:"slug"`
	Image         string   `json:"image"`
	Genres        []string `json:"genres"`
	LikesCount    int64    `json:"likesCount"`
	HasLiked      bool     `json:"hasLiked"`
	HasBookmarked bool     `json:"hasBookmarked"`
}

type pageBody struct {
	Result      []json.RawMessage `json:"result"`
	Count       int64             `json:"count"`
	CurrentPage int               `json:"currentPage"`
	TotalPage   int               `json:"totalPage"`
}

func TestSignupThenCreateBlog(t *testing.T) {
	s := newServer(t)

	rec := s.do(t, http.MethodPost, "/api/v1/auth/signup", "", map[string]string{
		"name": "dee", "email": "Dee@Example.com", "password": "correct-horse",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var signup struct {
		Token string `json:"token"`
		User  struct {
			Email string `json:"email"`
		} `json:"user"`
	}
	decode(t, rec, &signup)
	require.NotEmpty(t, signup.Token)
	assert.Equal(t, "dee@example.com", signup.User.Email)

	rec = s.do(t, http.MethodPost, "/api/v1/blogs", signup.Token, map[string]interface{}{
		"title": "Hello World", "content": "first post", "genres": []string{"TECHNOLOGY"}, "isPublished": true,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var blog blogBody
	decode(t, rec, &blog)
	assert.Equal(t, "hello-world", blog.Slug)
	assert.Equal(t, []string{"TECHNOLOGY"}, blog.Genres)

	rec = s.do(t, http.MethodPost, "/api/v1/auth/signin", "", map[string]string{
		"email": "dee@example.com", "password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestErrorResponses(t *testing.T) {
	s := newServer(t)
	ana := s.token(t, 1)

	tests := map[string]struct {
		method string
		path   string
		token  string
		body   interface{}
		want   int
	}{
		"create without token":   {http.MethodPost, "/api/v1/blogs", "", map[string]string{"title": "x", "content": "y"}, http.StatusUnauthorized},
		"create with bad token":  {http.MethodPost, "/api/v1/blogs", "garbage", map[string]string{"title": "x", "content": "y"}, http.StatusUnauthorized},
		"missing title":          {http.MethodPost, "/api/v1/blogs", ana, map[string]string{"content": "y"}, http.StatusBadRequest},
		"unknown genre":          {http.MethodPost, "/api/v1/blogs", ana, map[string]interface{}{"title": "x", "content": "y", "genres": []string{"POETRY"}}, http.StatusBadRequest},
		"unknown blog":           {http.MethodGet, "/api/v1/blogs/nope", "", nil, http.StatusNotFound},
		"unsupported sort":       {http.MethodGet, "/api/v1/blogs?sort=password", "", nil, http.StatusBadRequest},
		"bad user id":            {http.MethodGet, "/api/v1/users/abc", "", nil, http.StatusBadRequest},
		"follow self":            {http.MethodPost, "/api/v1/users/1/follow", ana, nil, http.StatusBadRequest},
		"firebase not enabled":   {http.MethodPost, "/api/v1/auth/firebase-login", "", map[string]string{"idToken": "t"}, http.StatusNotImplemented},
		"notification not owned": {http.MethodPut, "/api/v1/notifications/99/read", ana, nil, http.StatusNotFound},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			rec := s.do(t, tt.method, tt.path, tt.token, tt.body)
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
			assert.Contains(t, rec.Body.String(), `"message"`)
		})
	}
}

func TestLikeRoundTripOverHTTP(t *testing.T) {
	s := newServer(t)
	ana, bo := s.token(t, 1), s.token(t, 2)

	rec := s.do(t, http.MethodPost, "/api/v1/blogs", ana, map[string]interface{}{
		"title": "Hello World", "content": "body", "isPublished": true,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodPost, "/api/v1/blogs/hello-world/likes", bo, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var blog blogBody
	decode(t, rec, &blog)
	assert.True(t, blog.HasLiked)
	assert.EqualValues(t, 1, blog.LikesCount)

	// anonymous readers see the count without flags
	rec = s.do(t, http.MethodGet, "/api/v1/blogs/hello-world", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &blog)
	assert.False(t, blog.HasLiked)
	assert.EqualValues(t, 1, blog.LikesCount)

	rec = s.do(t, http.MethodGet, "/api/v1/notifications/counts", ana, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"read":0,"unread":1}`, rec.Body.String())

	rec = s.do(t, http.MethodDelete, "/api/v1/blogs/hello-world/likes", bo, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &blog)
	assert.False(t, blog.HasLiked)
	assert.EqualValues(t, 0, blog.LikesCount)
}

func TestListEnvelope(t *testing.T) {
	s := newServer(t)
	ana := s.token(t, 1)
	for _, title := range []string{"One", "Two", "Three"} {
		rec := s.do(t, http.MethodPost, "/api/v1/blogs", ana, map[string]interface{}{
			"title": title, "content": "body", "isPublished": true,
		})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}

	rec := s.do(t, http.MethodGet, "/api/v1/blogs?page=2&size=2", "", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var page pageBody
	decode(t, rec, &page)
	assert.Len(t, page.Result, 1)
	assert.EqualValues(t, 3, page.Count)
	assert.Equal(t, 2, page.CurrentPage)
	assert.Equal(t, 2, page.TotalPage)
}

func TestFollowNotifiesAndMarksRead(t *testing.T) {
	s := newServer(t)
	ana, bo := s.token(t, 1), s.token(t, 2)

	rec := s.do(t, http.MethodPost, "/api/v1/users/1/follow", bo, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodGet, "/api/v1/users/2/following", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var page pageBody
	decode(t, rec, &page)
	assert.EqualValues(t, 1, page.Count)

	rec = s.do(t, http.MethodGet, "/api/v1/notifications?status=UNREAD", ana, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	decode(t, rec, &page)
	require.Len(t, page.Result, 1)
	assert.Contains(t, string(page.Result[0]), "FOLLOW_USER")

	for i := 0; i < 2; i++ {
		rec = s.do(t, http.MethodPut, "/api/v1/notifications/read", ana, nil)
		require.Equal(t, http.StatusOK, rec.Code)
	}
	rec = s.do(t, http.MethodGet, "/api/v1/notifications/counts", ana, nil)
	assert.JSONEq(t, `{"read":1,"unread":0}`, rec.Body.String())
}

func TestMultipartUploadIsServedBack(t *testing.T) {
	s := newServer(t)

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	require.NoError(t, w.WriteField("title", "With Picture"))
	require.NoError(t, w.WriteField("content", "body"))
	require.NoError(t, w.WriteField("isPublished", "true"))
	part, err := w.CreateFormFile("image", "cover.png")
	require.NoError(t, err)
	_, err = part.Write(pngBytes)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/blogs", &body)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+s.token(t, 1))
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var blog blogBody
	decode(t, rec, &blog)
	require.True(t, strings.HasPrefix(blog.Image, "/api/v1/media/blogs/"), blog.Image)

	rec = s.do(t, http.MethodGet, blog.Image, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get(echo.HeaderContentType))
	assert.Equal(t, pngBytes, rec.Body.Bytes())
}

func TestHealth(t *testing.T) {
	s := newServer(t)
	rec := s.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "healthy")
}
