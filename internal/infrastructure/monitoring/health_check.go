package monitoring

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type CheckFunc func(ctx context.Context) error

// HealthChecker aggregates liveness checks for the /health endpoint.
type HealthChecker struct {
	checks  map[string]CheckFunc
	started time.Time
	version string
}

func NewHealthChecker(version string) *HealthChecker {
	return &HealthChecker{
		checks:  make(map[string]CheckFunc),
		started: time.Now(),
		version: version,
	}
}

func (h *HealthChecker) AddCheck(name string, fn CheckFunc) {
	h.checks[name] = fn
}

type healthStatus struct {
	Status  string            `json:"status"`
	Version string            `json:"version"`
	Uptime  string            `json:"uptime"`
	Checks  map[string]string `json:"checks,omitempty"`
}

func (h *HealthChecker) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		status := healthStatus{
			Status:  "ok",
			Version: h.version,
			Uptime:  time.Since(h.started).Round(time.Second).String(),
			Checks:  make(map[string]string, len(h.checks)),
		}

		code := http.StatusOK
		for name, check := range h.checks {
			if err := check(ctx); err != nil {
				status.Checks[name] = err.Error()
				status.Status = "degraded"
				code = http.StatusServiceUnavailable
			} else {
				status.Checks[name] = "ok"
			}
		}

		c.JSON(code, status)
	}
}
