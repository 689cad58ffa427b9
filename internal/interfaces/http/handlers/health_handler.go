package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/turtacn/dti-affinity/internal/application/prediction"
	"github.com/turtacn/dti-affinity/pkg/types/affinity"
)

// HealthChecker is an interface for components that can report their health.
type HealthChecker interface {
	Name() string
	Check(ctx context.Context) error
}

// StatusProvider reports the loaded service context.
type StatusProvider interface {
	Status() prediction.Status
}

// HealthHandler handles health check HTTP requests.
type HealthHandler struct {
	status   StatusProvider
	checkers []HealthChecker
	version  string
	startAt  time.Time
}

// NewHealthHandler creates a new HealthHandler. status may be nil, in which
// case readiness always fails.
func NewHealthHandler(version string, status StatusProvider, checkers ...HealthChecker) *HealthHandler {
	return &HealthHandler{
		status:   status,
		checkers: checkers,
		version:  version,
		startAt:  time.Now(),
	}
}

// Liveness handles GET /healthz. It returns 200 while the process runs.
func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, affinity.HealthResponse{
		Status:  "ok",
		Version: h.version,
		Uptime:  time.Since(h.startAt).Truncate(time.Second).String(),
	})
}

// Readiness handles GET /readyz. It reports the estimator and reference table
// and returns 503 when no estimator is loaded or any checker fails.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	resp := affinity.HealthResponse{Status: "ready", Version: h.version}
	ready := true

	if h.status == nil {
		ready = false
	} else {
		st := h.status.Status()
		resp.Estimator = &affinity.EstimatorStatus{
			Kind:        st.EstimatorKind,
			Version:     st.EstimatorVersion,
			NumFeatures: st.NumFeatures,
		}
		resp.Reference = &affinity.ReferenceStatus{Records: st.ReferenceRecords}
		if st.NumFeatures == 0 {
			ready = false
		}
	}

	if len(h.checkers) > 0 {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()
		resp.Checks = h.checkAll(ctx)
		for _, v := range resp.Checks {
			if v != "ok" {
				ready = false
			}
		}
	}

	if !ready {
		resp.Status = "not_ready"
		writeJSON(w, http.StatusServiceUnavailable, resp)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// checkAll runs every checker concurrently. A failed check maps to its error text.
func (h *HealthHandler) checkAll(ctx context.Context) map[string]string {
	results := make(map[string]string, len(h.checkers))
	var mu sync.Mutex
	var g errgroup.Group
	for _, c := range h.checkers {
		c := c
		g.Go(func() error {
			res := "ok"
			if err := c.Check(ctx); err != nil {
				res = err.Error()
			}
			mu.Lock()
			results[c.Name()] = res
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return results
}
