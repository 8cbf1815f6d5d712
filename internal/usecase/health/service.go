// Package health aggregates liveness of the engine's collaborators.
package health

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded means curation still runs with reduced signal (no semantic bonus).
	Degraded Status = "degraded"
	// Unhealthy means the store is unreachable and no pass can run.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
	// CheckPending indicates a component that has not finished warming up.
	CheckPending CheckResult = "pending"
)

const defaultCheckTimeout = 3 * time.Second

// Report aggregates health check results.
type Report struct {
	Status Status                 `json:"status"`
	Checks map[string]CheckResult `json:"checks"`
}

// Service coordinates health checks.
type Service struct {
	db        DBPinger
	embedding EmbeddingChecker
	index     IndexChecker
	timeout   time.Duration
}

// New creates a Service. embedding and index can be nil.
func New(db DBPinger, embedding EmbeddingChecker, index IndexChecker) *Service {
	return &Service{db: db, embedding: embedding, index: index, timeout: defaultCheckTimeout}
}

// Check runs the remote checks concurrently, each bounded by the check timeout.
func (s *Service) Check(ctx context.Context) Report {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var mu sync.Mutex
	checks := make(map[string]CheckResult, 3)
	set := func(name string, err error) {
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			checks[name] = CheckError
			return
		}
		checks[name] = CheckOK
	}

	var g errgroup.Group
	g.Go(func() error {
		set("database", s.db.Ping(ctx))
		return nil
	})
	if s.embedding != nil {
		g.Go(func() error {
			set("embedding", s.embedding.HealthCheck(ctx))
			return nil
		})
	}
	_ = g.Wait()

	if s.index != nil {
		if s.index.Ready() {
			checks["index"] = CheckOK
		} else {
			checks["index"] = CheckPending
		}
	}

	return Report{Status: aggregate(checks), Checks: checks}
}

// Ready reports whether the engine can serve: store reachable and index published.
func (s *Service) Ready(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if s.db.Ping(ctx) != nil {
		return false
	}
	return s.index == nil || s.index.Ready()
}

func aggregate(checks map[string]CheckResult) Status {
	if checks["database"] == CheckError {
		return Unhealthy
	}
	for _, v := range checks {
		if v != CheckOK {
			return Degraded
		}
	}
	return Healthy
}
