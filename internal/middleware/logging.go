package middleware

import (
	"time"

	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"
)

// RequestLogger logs one line per request and commits error responses.
func RequestLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			begin := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			req := c.Request()
			fields := log.Fields{
				"method":  req.Method,
				"path":    req.URL.Path,
				"status":  c.Response().Status,
				"latency": time.Since(begin).String(),
			}
			if id, ok := IdentityFrom(c); ok {
				fields["user"] = id.ID
			}
			entry := log.WithFields(fields)
			switch {
			case c.Response().Status >= 500:
				entry.WithError(err).Error("request failed")
			case err != nil:
				entry.WithError(err).Info("request rejected")
			default:
				entry.Trace("request served")
			}
			return nil
		}
	}
}
