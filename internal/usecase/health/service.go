package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates an optional component is failing.
	Degraded Status = "degraded"
	// Unhealthy indicates the observations backend is unreachable.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Component names reported in Report.Checks.
const (
	ComponentObservations = "observations"
	ComponentRAG          = "rag"
	ComponentFallback     = "fallback"
	ComponentCache        = "cache"
)

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks.
type Service struct {
	observations Checker
	rag          Checker
	fallback     Checker
	cache        CachePinger
}

// New creates a Service. Everything but observations can be nil.
func New(observations, rag, fallback Checker, cache CachePinger) *Service {
	return &Service{observations: observations, rag: rag, fallback: fallback, cache: cache}
}

// Check runs health checks against all configured components.
// Without the observations backend the map cannot show anything, so its failure
// is Unhealthy; any other failure only degrades the service.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)

	checks[ComponentObservations] = result(s.observations.HealthCheck(ctx))
	if s.rag != nil {
		checks[ComponentRAG] = result(s.rag.HealthCheck(ctx))
	}
	if s.fallback != nil {
		checks[ComponentFallback] = result(s.fallback.HealthCheck(ctx))
	}
	if s.cache != nil {
		checks[ComponentCache] = result(s.cache.Ping(ctx))
	}

	status := Healthy
	for _, v := range checks {
		if v == CheckError {
			status = Degraded
			break
		}
	}
	if checks[ComponentObservations] == CheckError {
		status = Unhealthy
	}

	return Report{Status: status, Checks: checks}
}

func result(err error) CheckResult {
	if err != nil {
		return CheckError
	}
	return CheckOK
}
