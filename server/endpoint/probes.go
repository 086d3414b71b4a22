package endpoint

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/voicescreen/component"
)

// HealthChecker returns the current health of every registered component.
type HealthChecker func(ctx context.Context) []component.Health

// Probe is the body of /health, /ready and /live.
type Probe struct {
	Status     string             `json:"status"`
	Service    string             `json:"service"`
	Timestamp  string             `json:"timestamp"`
	Components []component.Health `json:"components,omitempty"`
	Failing    []string           `json:"failing,omitempty"`
}

func probe(service, status string) Probe {
	return Probe{Status: status, Service: service, Timestamp: time.Now().UTC().Format(time.RFC3339)}
}

func check(c *gin.Context, checker HealthChecker) []component.Health {
	if checker == nil {
		return nil
	}
	return checker(c.Request.Context())
}

// Health reports the overall status with per-component detail. Only an
// unhealthy component turns it into a 503.
func Health(service string, checker HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		components := check(c, checker)
		overall := component.Overall(components)
		body := probe(service, string(overall))
		body.Components = components

		code := http.StatusOK
		if overall == component.StatusUnhealthy {
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, body)
	}
}

// Readiness is 503 while any component is unhealthy. A degraded model store
// or an open transcoder circuit still counts as ready: screenings then end
// with an Unknown label or a decode error instead of being refused.
func Readiness(service string, checker HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		body := probe(service, "ready")
		for _, h := range check(c, checker) {
			if h.Status == component.StatusUnhealthy {
				body.Failing = append(body.Failing, h.Name)
			}
		}
		code := http.StatusOK
		if len(body.Failing) > 0 {
			body.Status = "not_ready"
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, body)
	}
}

// Liveness answers as long as the process can serve HTTP.
func Liveness(service string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, probe(service, "alive"))
	}
}
