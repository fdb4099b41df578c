package handlers

import (
	"errors"

	"github.com/anonto42/inkwell/backend/internal/apperr"
	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"
)

// httpError maps a service error to the response echo writes. Internal
// failures are logged and reported without detail.
func httpError(err error) *echo.HTTPError {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he
	}
	kind := apperr.KindOf(err)
	if kind == apperr.Internal || kind == apperr.ExternalFailure {
		log.Errorf("request failed: %+v", err)
	}
	return echo.NewHTTPError(kind.HTTPStatus(), apperr.Message(err)).SetInternal(err)
}

// ErrorHandler is installed as echo's HTTPErrorHandler.
func ErrorHandler(e *echo.Echo) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		e.DefaultHTTPErrorHandler(httpError(err), c)
	}
}
