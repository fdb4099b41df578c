package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/anonto42/inkwell/backend/internal/metrics"
	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"
)

func PanicRecovery(metricsManager *metrics.Manager) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			defer func() {
				if r := recover(); r != nil {
					log.Errorf("http: panic serving %s: %v\n%s", c.Request().URL.Path, r, debug.Stack())
					if metricsManager != nil {
						metricsManager.CounterHandleRequestPanic.Inc()
					}
					err = echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
				}
			}()

			// handler call
			return next(c)
		}
	}
}
