package health

import (
	"context"
	"time"

	corehealth "3tcapital/biohoneypot/internal/core/health"
)

// Metadata contains immutable metadata about the running service.
type Metadata struct {
	Service     string
	Version     string
	Environment string
	// Dependencies names the optional backends wired at startup, e.g. "archive:postgres".
	Dependencies []string
}

// Counter reports how many interactions are currently held.
type Counter interface {
	Len() int
}

// Service exposes health-check use cases to adapters.
type Service struct {
	meta      Metadata
	counter   Counter
	startedAt time.Time
	now       func() time.Time
}

// NewService builds the health service. counter may be nil.
func NewService(meta Metadata, counter Counter) *Service {
	return &Service{
		meta:      meta,
		counter:   counter,
		startedAt: time.Now().UTC(),
		now:       time.Now,
	}
}

// Status returns the current availability snapshot.
func (s *Service) Status(_ context.Context) corehealth.Status {
	uptime := s.now().Sub(s.startedAt)
	status := corehealth.Status{
		Service:      s.meta.Service,
		Version:      s.meta.Version,
		Environment:  s.meta.Environment,
		Status:       "UP",
		StartedAt:    s.startedAt,
		Uptime:       uptime.Round(time.Second).String(),
		UptimeSecs:   int64(uptime.Seconds()),
		Dependencies: s.meta.Dependencies,
	}
	if s.counter != nil {
		status.Interactions = s.counter.Len()
	}
	return status
}
