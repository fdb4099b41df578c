package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/anonto42/inkwell/backend/internal/auth"
	"github.com/anonto42/inkwell/backend/internal/metrics"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type tokenTable map[string]*auth.Identity

func (t tokenTable) Verify(_ context.Context, token string) (*auth.Identity, error) {
	if token == "down" {
		return nil, errors.New("identity provider down")
	}
	if id, ok := t[token]; ok {
		return id, nil
	}
	return nil, auth.ErrInvalidCredential
}

var tokens = tokenTable{"good": {ID: 4, Email: "d@example.com"}}

func serve(mw echo.MiddlewareFunc, header string) (*httptest.ResponseRecorder, *auth.Identity, error) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set(echo.HeaderAuthorization, header)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var seen *auth.Identity
	err := mw(func(c echo.Context) error {
		seen, _ = IdentityFrom(c)
		return c.NoContent(http.StatusNoContent)
	})(c)
	return rec, seen, err
}

func TestRequireIdentity(t *testing.T) {
	tests := map[string]struct {
		header     string
		wantStatus int
		wantID     uint
		wantErr    bool
	}{
		"valid token":    {header: "Bearer good", wantID: 4},
		"missing header": {wantStatus: http.StatusUnauthorized},
		"bad token":      {header: "Bearer nope", wantStatus: http.StatusUnauthorized},
		"bad scheme":     {header: "Token good", wantStatus: http.StatusUnauthorized},
		"provider error": {header: "Bearer down", wantErr: true},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			_, seen, err := serve(RequireIdentity(tokens), tt.header)
			switch {
			case tt.wantStatus != 0:
				var he *echo.HTTPError
				require.True(t, errors.As(err, &he))
				assert.Equal(t, tt.wantStatus, he.Code)
			case tt.wantErr:
				require.Error(t, err)
			default:
				require.NoError(t, err)
				require.NotNil(t, seen)
				assert.Equal(t, tt.wantID, seen.ID)
			}
		})
	}
}

func TestOptionalIdentity(t *testing.T) {
	tests := map[string]struct {
		header string
		wantID uint
	}{
		"anonymous":        {},
		"signed in":        {header: "Bearer good", wantID: 4},
		"rejected token":   {header: "Bearer nope"},
		"malformed header": {header: "garbage"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			rec, seen, err := serve(OptionalIdentity(tokens), tt.header)
			require.NoError(t, err)
			assert.Equal(t, http.StatusNoContent, rec.Code)
			if tt.wantID == 0 {
				assert.Nil(t, seen)
				return
			}
			require.NotNil(t, seen)
			assert.Equal(t, tt.wantID, seen.ID)
		})
	}
}

func TestPanicRecovery(t *testing.T) {
	m := metrics.NewTestManager()
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())

	err := PanicRecovery(m)(func(echo.Context) error { return nil })(c)
	require.NoError(t, err)
	assert.Equal(t, float64(0), testutil.ToFloat64(m.CounterHandleRequestPanic))

	err = PanicRecovery(m)(func(echo.Context) error { panic("YOLO") })(c)
	var he *echo.HTTPError
	require.True(t, errors.As(err, &he))
	assert.Equal(t, http.StatusInternalServerError, he.Code)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.CounterHandleRequestPanic))
}

func TestRequestMetricsAndLogger(t *testing.T) {
	m := metrics.NewTestManager()
	e := echo.New()
	e.Use(RequestMetrics(m), RequestLogger())
	e.GET("/ok", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
	e.GET("/missing", func(echo.Context) error { return echo.NewHTTPError(http.StatusNotFound, "nope") })

	for _, path := range []string{"/ok", "/missing", "/missing"} {
		e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Equal(t, 1.0, testutil.ToFloat64(m.CounterRequests.WithLabelValues("GET", "200")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.CounterRequests.WithLabelValues("GET", "404")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.GaugeRequests))
}
