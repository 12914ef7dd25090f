// Package middleware provides the Echo middleware stack of the matcher API.
package middleware

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/donaldgifford/competitor-price-matcher/internal/metrics"
)

// unmatchedRoute labels requests that hit no registered route, keeping
// arbitrary URLs out of metric labels.
const unmatchedRoute = "unmatched"

// probeGauges maps probe paths to their up/down gauge. Probes and scrapes
// are not counted as requests.
var probeGauges = map[string]prometheus.Gauge{
	"/healthz": metrics.HealthzUp,
	"/readyz":  metrics.ReadyzUp,
}

// Metrics returns Echo middleware that records request duration and status
// by route template.
func Metrics() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			route := c.Path()
			if route == "/metrics" {
				return next(c)
			}
			if gauge, ok := probeGauges[route]; ok {
				err := next(c)
				gauge.Set(boolGauge(c.Response().Status < 300))
				return err
			}

			start := time.Now()
			err := next(c)
			if err != nil {
				// Let echo resolve the status before it is recorded.
				c.Error(err)
				err = nil
			}

			if route == "" || route == "/*" {
				route = unmatchedRoute
			}
			status := strconv.Itoa(c.Response().Status)
			method := c.Request().Method

			metrics.HTTPRequestDuration.
				WithLabelValues(method, route, status).
				Observe(time.Since(start).Seconds())
			metrics.HTTPRequestsTotal.
				WithLabelValues(method, route, status).
				Inc()

			return err
		}
	}
}

func boolGauge(ok bool) float64 {
	if ok {
		return 1
	}
	return 0
}
