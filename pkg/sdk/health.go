package matchdex

import "context"

// HealthStatus represents the aggregated engine health.
type HealthStatus struct {
	Status string            // "ok", "degraded", "error"
	Checks map[string]string // component name to "ok", "error" or "pending"
}

// Health checks the database, the embedder and the semantic index.
func (e *Engine) Health(ctx context.Context) HealthStatus {
	report := e.healthSvc.Check(ctx)
	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}
	return HealthStatus{
		Status: string(report.Status),
		Checks: checks,
	}
}
