package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/summarybot/summarybot/internal/core/domain/summary"
)

// Liveness probe. Reports per-dependency state but stays 200 while the
// process itself is functional: a tier outage degrades the cache, it does not
// make the bot unhealthy.
func (s *Server) healthCheck(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	deps := make(map[string]string)
	overall := "healthy"
	for _, hc := range s.healthCheckers {
		if hc == nil {
			continue
		}
		if err := hc.Check(ctx); err != nil {
			deps[hc.Name()] = "unhealthy"
			overall = "degraded"
		} else {
			deps[hc.Name()] = "healthy"
		}
	}
	health := map[string]interface{}{
		"status":       overall,
		"timestamp":    time.Now().UTC().Format(time.RFC3339),
		"service":      "summarybot",
		"dependencies": deps,
	}
	return c.JSON(http.StatusOK, health)
}

// Readiness probe. Fails when any dependency is down so a rollout waits for
// the stores to come up.
func (s *Server) readyCheck(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	for _, hc := range s.healthCheckers {
		if hc == nil {
			continue
		}
		if err := hc.Check(ctx); err != nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]interface{}{
				"status": "not_ready",
				"reason": hc.Name(),
			})
		}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":    "ready",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// metricsEndpoint serves the prometheus registry.
func (s *Server) metricsEndpoint(c echo.Context) error {
	promhttp.Handler().ServeHTTP(c.Response(), c.Request())
	return nil
}

// Operational escape hatch for a bad cached summary:
// DELETE /admin/cache?kind=video&ref=<url>
func (s *Server) invalidateSummary(c echo.Context) error {
	kind, ok := summary.ParseKind(c.QueryParam("kind"))
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "unknown kind"})
	}
	ref := c.QueryParam("ref")
	if ref == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "ref is required"})
	}
	if err := s.summaries.Invalidate(c.Request().Context(), kind, ref); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	if s.logger != nil {
		s.logger.WithFields(map[string]interface{}{"kind": kind, "ref": ref}).Info("cache entry invalidated")
	}
	return c.NoContent(http.StatusNoContent)
}
