package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/anonto42/inkwell/backend/internal/apperr"
	"github.com/anonto42/inkwell/backend/internal/middleware"
	"github.com/anonto42/inkwell/backend/internal/projection"
	"github.com/anonto42/inkwell/backend/internal/query"
	"github.com/anonto42/inkwell/backend/internal/storage"
	"github.com/labstack/echo/v4"
)

// getUserIDFromContext returns the authenticated user id, or 0 for an
// anonymous request.
func getUserIDFromContext(c echo.Context) uint {
	if id, ok := middleware.IdentityFrom(c); ok {
		return id.ID
	}
	return 0
}

func viewerFrom(c echo.Context) projection.Viewer {
	return projection.Viewer{ID: getUserIDFromContext(c)}
}

func paramID(c echo.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, apperr.New(apperr.InvalidInput, "invalid "+name)
	}
	return uint(id), nil
}

func listParams(c echo.Context, sorts query.Sorts) (query.Params, error) {
	return query.ParseParams(c.QueryParams(), sorts)
}

// bindAndValidate binds the request body and runs the echo validator.
func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	return c.Validate(req)
}

// readImage returns the bytes of an optional multipart file field.
func readImage(c echo.Context, field string) ([]byte, error) {
	fh, err := c.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.InvalidInput, err, "invalid "+field+" upload")
	}
	if fh.Size > storage.MaxImageSize {
		return nil, apperr.New(apperr.InvalidInput, "image is larger than 5MB")
	}
	f, err := fh.Open()
	if err != nil {
		return nil, apperr.Wrap(apperr.InvalidInput, err, "invalid "+field+" upload")
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, storage.MaxImageSize+1))
	if err != nil {
		return nil, apperr.Wrap(apperr.InvalidInput, err, "invalid "+field+" upload")
	}
	return data, nil
}
