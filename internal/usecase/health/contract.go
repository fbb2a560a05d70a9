package health

import "context"

// CachePinger checks observation cache availability.
type CachePinger interface {
	Ping(ctx context.Context) error
}

// Checker checks a collaborator's availability.
type Checker interface {
	HealthCheck(ctx context.Context) error
}
