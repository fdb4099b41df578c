package middleware

import (
	"strconv"
	"time"

	"github.com/anonto42/inkwell/backend/internal/metrics"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
)

// RequestMetrics must sit outside RequestLogger, which commits error
// responses so the final status code is known here.
func RequestMetrics(m *metrics.Manager) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			m.GaugeRequests.Inc()
			defer m.GaugeRequests.Dec()

			begin := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			status := strconv.Itoa(c.Response().Status)
			m.HistogramRequestDuration.With(prometheus.Labels{
				"route":       c.Path(),
				"method":      c.Request().Method,
				"status_code": status,
			}).Observe(time.Since(begin).Seconds())
			m.CounterRequests.With(prometheus.Labels{
				"method": c.Request().Method,
				"status": status,
			}).Inc()
			return nil
		}
	}
}
