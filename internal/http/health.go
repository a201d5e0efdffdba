package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/guttosm/farepath-service/internal/circuitbreaker"
)

// readinessTimeout bounds every dependency check of one readiness probe.
const readinessTimeout = 2 * time.Second

const (
	statusOK       = "ok"
	statusDegraded = "degraded"
)

// HealthChecker reports whether a dependency can serve traffic.
type HealthChecker interface {
	Check(ctx context.Context) error
}

// CheckerFunc adapts a function to HealthChecker.
type CheckerFunc func(ctx context.Context) error

// Check calls f.
func (f CheckerFunc) Check(ctx context.Context) error { return f(ctx) }

// HealthHandler serves the liveness and readiness probes.
type HealthHandler struct {
	checkers map[string]HealthChecker
	breakers map[string]*circuitbreaker.CircuitBreaker
}

// NewHealthHandler creates a HealthHandler with nothing registered.
func NewHealthHandler() *HealthHandler {
	return &HealthHandler{
		checkers: make(map[string]HealthChecker),
		breakers: make(map[string]*circuitbreaker.CircuitBreaker),
	}
}

// RegisterCircuitBreaker reports cb under name+"_circuit". An open breaker fails readiness.
func (h *HealthHandler) RegisterCircuitBreaker(name string, cb *circuitbreaker.CircuitBreaker) {
	h.breakers[name] = cb
}

// RegisterChecker adds a dependency checked by the readiness probe.
func (h *HealthHandler) RegisterChecker(name string, checker HealthChecker) {
	h.checkers[name] = checker
}

// Register mounts the probes on router.
func (h *HealthHandler) Register(router *gin.Engine) {
	router.GET("/healthz", h.Liveness)
	router.GET("/readyz", h.Readiness)
}

// Liveness handles the liveness probe endpoint.
// @Summary     Liveness probe
// @Description Returns OK while the process is up. Prometheus metrics are served at /metrics.
// @Tags        Health
// @Produce     json
// @Success     200 {object} map[string]string "Service is alive"
// @Router      /healthz [get]
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": statusOK})
}

// Readiness handles the readiness probe endpoint.
// @Summary     Readiness probe
// @Description Checks the profile and record stores and their circuit breakers. Pricing itself needs no dependency, so a service without a database is always ready.
// @Tags        Health
// @Produce     json
// @Success     200 {object} map[string]interface{} "Service is ready"
// @Failure     503 {object} map[string]interface{} "A dependency is unhealthy"
// @Router      /readyz [get]
func (h *HealthHandler) Readiness(c *gin.Context) {
	checks, healthy := h.runChecks(c.Request.Context())

	for name, cb := range h.breakers {
		checks[name+"_circuit"] = cb.State().String()
		if cb.IsOpen() {
			healthy = false
		}
	}

	if len(checks) == 0 {
		checks["service"] = statusOK
	}

	status, code := statusOK, http.StatusOK
	if !healthy {
		status, code = statusDegraded, http.StatusServiceUnavailable
	}
	c.JSON(code, gin.H{"status": status, "checks": checks})
}

// runChecks runs every registered checker concurrently under readinessTimeout.
func (h *HealthHandler) runChecks(ctx context.Context) (map[string]string, bool) {
	ctx, cancel := context.WithTimeout(ctx, readinessTimeout)
	defer cancel()

	var (
		mu      sync.Mutex
		g       errgroup.Group
		checks  = make(map[string]string, len(h.checkers)+len(h.breakers))
		healthy = true
	)
	for name, checker := range h.checkers {
		g.Go(func() error {
			result := statusOK
			if err := checker.Check(ctx); err != nil {
				result = err.Error()
			}
			mu.Lock()
			defer mu.Unlock()
			checks[name] = result
			if result != statusOK {
				healthy = false
			}
			return nil
		})
	}
	_ = g.Wait()

	return checks, healthy
}
