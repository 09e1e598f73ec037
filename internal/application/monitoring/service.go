package monitoring

import (
	"context"
	"fmt"
	"time"

	"3tcapital/biohoneypot/internal/core/interaction"
)

const (
	// RecentLimit is the number of records returned by Recent.
	RecentLimit = 50

	// RecentWindow bounds the recent_activity count in Stats.
	RecentWindow = time.Hour
)

// Service answers monitoring queries over the interaction store. It only reads.
type Service struct {
	store interaction.Store
	now   func() time.Time
}

func NewService(store interaction.Store) *Service {
	return &Service{store: store, now: time.Now}
}

// Recent returns the newest RecentLimit records in insertion order.
func (s *Service) Recent(ctx context.Context) ([]interaction.Record, error) {
	records, err := s.store.Recent(ctx, RecentLimit)
	if err != nil {
		return nil, fmt.Errorf("read recent interactions: %w", err)
	}
	return records, nil
}

// Stats recomputes the summary from a full snapshot on every call.
func (s *Service) Stats(ctx context.Context) (interaction.Stats, error) {
	records, err := s.store.Snapshot(ctx)
	if err != nil {
		return interaction.Stats{}, fmt.Errorf("snapshot interactions: %w", err)
	}

	now := s.now()
	sources := make(map[string]struct{}, len(records))
	recent := 0
	for _, rec := range records {
		sources[rec.SourceAddress] = struct{}{}
		if now.Sub(rec.Timestamp) < RecentWindow {
			recent++
		}
	}

	return interaction.Stats{
		TotalInteractions: len(records),
		UniqueIPs:         len(sources),
		// Endpoint ranking is not computed; the field is kept for clients
		// that expect it.
		MostAccessedEndpoints: map[string]int{},
		RecentActivity:        recent,
	}, nil
}
