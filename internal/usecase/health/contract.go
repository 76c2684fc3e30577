package health

import "context"

// CatalogPinger checks catalog endpoint availability.
type CatalogPinger interface {
	Ping(ctx context.Context) error
}

// InferenceChecker checks inference provider availability.
type InferenceChecker interface {
	HealthCheck(ctx context.Context) error
}

// CachePinger checks search cache availability.
type CachePinger interface {
	Ping(ctx context.Context) error
}
