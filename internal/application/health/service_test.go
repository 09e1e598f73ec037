package health

import (
	"context"
	"slices"
	"testing"
	"time"
)

type staticCounter int

func (c staticCounter) Len() int { return int(c) }

func TestNewService(t *testing.T) {
	meta := Metadata{
		Service:     "biohoneypot",
		Version:     "2.1.3",
		Environment: "test",
	}

	service := NewService(meta, nil)

	if service == nil {
		t.Fatal("expected service to be created, got nil")
	}
	if service.meta.Service != meta.Service {
		t.Error("expected service to have the provided metadata")
	}
	if service.startedAt.IsZero() {
		t.Error("expected startedAt to be set")
	}
}

func TestService_Status(t *testing.T) {
	meta := Metadata{
		Service:      "biohoneypot",
		Version:      "2.1.3",
		Environment:  "test",
		Dependencies: []string{"archive"},
	}

	service := NewService(meta, staticCounter(7))
	service.now = func() time.Time { return service.startedAt.Add(90 * time.Second) }

	status := service.Status(context.Background())

	if status.Service != meta.Service {
		t.Errorf("expected service %q, got %q", meta.Service, status.Service)
	}
	if status.Version != meta.Version {
		t.Errorf("expected version %q, got %q", meta.Version, status.Version)
	}
	if status.Environment != meta.Environment {
		t.Errorf("expected environment %q, got %q", meta.Environment, status.Environment)
	}
	if status.Status != "UP" {
		t.Errorf("expected status 'UP', got %q", status.Status)
	}
	if status.UptimeSecs != 90 {
		t.Errorf("expected uptimeSecs 90, got %d", status.UptimeSecs)
	}
	if status.Uptime != "1m30s" {
		t.Errorf("expected uptime '1m30s', got %q", status.Uptime)
	}
	if status.Interactions != 7 {
		t.Errorf("expected 7 interactions, got %d", status.Interactions)
	}
	if !slices.Equal(status.Dependencies, []string{"archive"}) {
		t.Errorf("expected archive dependency, got %v", status.Dependencies)
	}
}

func TestService_Status_WithoutCounter(t *testing.T) {
	service := NewService(Metadata{Service: "biohoneypot"}, nil)

	status := service.Status(context.Background())

	if status.Interactions != 0 {
		t.Errorf("expected zero interactions, got %d", status.Interactions)
	}
	if status.UptimeSecs < 0 {
		t.Errorf("expected uptimeSecs >= 0, got %d", status.UptimeSecs)
	}
}
