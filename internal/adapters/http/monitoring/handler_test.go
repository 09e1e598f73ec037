package monitoring

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"3tcapital/biohoneypot/internal/adapters/interaction/memory"
	appmonitoring "3tcapital/biohoneypot/internal/application/monitoring"
	"3tcapital/biohoneypot/internal/core/interaction"
	"3tcapital/biohoneypot/internal/testutil"
)

type brokenStore struct {
	interaction.Store
}

func (brokenStore) Recent(context.Context, int) ([]interaction.Record, error) {
	return nil, errors.New("store offline")
}

func (brokenStore) Snapshot(context.Context) ([]interaction.Record, error) {
	return nil, errors.New("store offline")
}

func newRouter(store interaction.Store) *chi.Mux {
	r := chi.NewRouter()
	NewHandler(appmonitoring.NewService(store), testutil.NewNullLogger()).Routes(r)
	return r
}

func get(router http.Handler, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestHandler_InteractionsEmpty(t *testing.T) {
	w := get(newRouter(memory.New(0)), "/api/honeypot/interactions")

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	if body := strings.TrimSpace(w.Body.String()); body != "[]" {
		t.Errorf("body = %q, want []", body)
	}
}

func TestHandler_InteractionsLastFiftyInOrder(t *testing.T) {
	store := memory.New(0)
	for i := 0; i < 60; i++ {
		store.Append(context.Background(), interaction.Record{
			ID:            fmt.Sprintf("rec-%02d", i),
			SourceAddress: "198.51.100.1",
		})
	}

	var got []interaction.Record
	testutil.ReadJSONResponse(t, get(newRouter(store), "/api/honeypot/interactions"), &got)

	if len(got) != appmonitoring.RecentLimit {
		t.Fatalf("got %d records, want %d", len(got), appmonitoring.RecentLimit)
	}
	if got[0].ID != "rec-10" || got[len(got)-1].ID != "rec-59" {
		t.Errorf("window = %s..%s, want rec-10..rec-59", got[0].ID, got[len(got)-1].ID)
	}
}

func TestHandler_Stats(t *testing.T) {
	store := memory.New(0)
	for _, ip := range []string{"10.0.0.1", "10.0.0.2", "10.0.0.1"} {
		store.Append(context.Background(), interaction.Record{SourceAddress: ip})
	}

	var got interaction.Stats
	testutil.ReadJSONResponse(t, get(newRouter(store), "/api/honeypot/stats"), &got)

	if got.TotalInteractions != 3 {
		t.Errorf("total_interactions = %d, want 3", got.TotalInteractions)
	}
	if got.UniqueIPs != 2 {
		t.Errorf("unique_ips = %d, want 2", got.UniqueIPs)
	}
	if got.RecentActivity != 3 {
		t.Errorf("recent_activity = %d, want 3", got.RecentActivity)
	}
	if got.MostAccessedEndpoints == nil || len(got.MostAccessedEndpoints) != 0 {
		t.Errorf("most_accessed_endpoints = %v, want empty mapping", got.MostAccessedEndpoints)
	}
}

func TestHandler_StoreFailureStillAnswers(t *testing.T) {
	router := newRouter(brokenStore{})

	tests := []struct {
		path string
		want string
	}{
		{path: "/api/honeypot/interactions", want: "[]"},
		{path: "/api/honeypot/stats", want: `"most_accessed_endpoints":{}`},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := get(router, tt.path)
			if w.Code != http.StatusOK {
				t.Errorf("expected status 200, got %d", w.Code)
			}
			if !strings.Contains(w.Body.String(), tt.want) {
				t.Errorf("body = %q, want it to contain %q", w.Body.String(), tt.want)
			}
		})
	}
}
