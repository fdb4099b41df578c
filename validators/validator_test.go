package validators

import (
	"errors"
	"net/http"
	"testing"

	"github.com/anonto42/inkwell/backend/internal/models"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	tests := map[string]struct {
		req     interface{}
		wantErr string
	}{
		"valid blog": {
			req: &models.CreateBlogRequest{Title: "t", Content: "c", Genres: []string{"TECHNOLOGY"}},
		},
		"unknown genre": {
			req:     &models.CreateBlogRequest{Title: "t", Content: "c", Genres: []string{"POETRY"}},
			wantErr: "failed genre",
		},
		"too many genres": {
			req: &models.CreateBlogRequest{Title: "t", Content: "c", Genres: []string{
				"TECHNOLOGY", "SCIENCE", "HEALTH", "FOOD", "TRAVEL", "SPORTS",
			}},
			wantErr: "Genres failed max=5",
		},
		"short password": {
			req:     &models.CreateLocalUserRequest{Name: "Dee", Email: "dee@example.com", Password: "short"},
			wantErr: "Password failed min=8",
		},
		"genres unchanged on update": {
			req: &models.UpdateBlogRequest{},
		},
	}

	v := NewValidator()
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			err := v.Validate(tt.req)
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			var he *echo.HTTPError
			require.True(t, errors.As(err, &he))
			assert.Equal(t, http.StatusBadRequest, he.Code)
			assert.Contains(t, he.Message, tt.wantErr)
		})
	}
}
