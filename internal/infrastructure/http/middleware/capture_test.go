package middleware

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"

	"3tcapital/biohoneypot/internal/adapters/interaction/memory"
	"3tcapital/biohoneypot/internal/core/interaction"
	ctxutil "3tcapital/biohoneypot/internal/infrastructure/context"
	"3tcapital/biohoneypot/internal/testutil"
)

type recordingArchive struct {
	mu      sync.Mutex
	records []interaction.Record
	full    bool
}

func (a *recordingArchive) Enqueue(rec interaction.Record) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.full {
		return false
	}
	a.records = append(a.records, rec)
	return true
}

type failingStore struct {
	interaction.Store
}

func (failingStore) Append(context.Context, interaction.Record) (interaction.Record, error) {
	return interaction.Record{}, errors.New("store unavailable")
}

func newCaptureRouter(store interaction.Store, archive Archiver) *chi.Mux {
	r := chi.NewRouter()
	r.Use(Capture(CaptureOptions{
		Store:       store,
		Logger:      testutil.NewNullLogger(),
		Routes:      r,
		MaxBodySize: 1024,
		Archive:     archive,
	}))
	r.Get("/api/sequences/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Post("/api/equipment/{id}/control", func(w http.ResponseWriter, req *http.Request) {
		body, _ := io.ReadAll(req.Body)
		w.Write(body)
	})
	return r
}

func lastRecord(t *testing.T, store interaction.Store) interaction.Record {
	t.Helper()
	recent, err := store.Recent(context.Background(), 1)
	if err != nil || len(recent) != 1 {
		t.Fatalf("expected one stored record, got %d (err=%v)", len(recent), err)
	}
	return recent[0]
}

func TestCapture_MatchedRoute(t *testing.T) {
	store := memory.New(0)
	router := newCaptureRouter(store, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/sequences/ABC", nil)
	req.RemoteAddr = "203.0.113.7:51234"
	req.Header.Set("User-Agent", "Nikto/2.5")
	req.Header.Set("X-Scanner", "yes")
	router.ServeHTTP(httptest.NewRecorder(), req)

	rec := lastRecord(t, store)
	if rec.Endpoint != "/api/sequences/{id}" {
		t.Errorf("Endpoint = %q, want route pattern", rec.Endpoint)
	}
	if rec.Method != http.MethodGet {
		t.Errorf("Method = %q", rec.Method)
	}
	if rec.SourceAddress != "203.0.113.7" {
		t.Errorf("SourceAddress = %q, want 203.0.113.7", rec.SourceAddress)
	}
	if rec.UserAgent != "Nikto/2.5" {
		t.Errorf("UserAgent = %q", rec.UserAgent)
	}
	if rec.Headers["X-Scanner"] != "yes" {
		t.Errorf("Headers = %v", rec.Headers)
	}
	if rec.ID == "" {
		t.Error("expected record ID to be assigned")
	}
	if rec.Timestamp.IsZero() {
		t.Error("expected timestamp to be stamped")
	}
	if _, ok := rec.Body.(map[string]string); !ok {
		t.Errorf("Body = %#v, want empty form mapping", rec.Body)
	}
}

func TestCapture_UnmatchedRouteUsesRawPath(t *testing.T) {
	store := memory.New(0)
	router := newCaptureRouter(store, nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/wp-login.php", nil))

	if w.Code != http.StatusNotFound {
		t.Errorf("expected framework 404, got %d", w.Code)
	}
	rec := lastRecord(t, store)
	if rec.Endpoint != "/wp-login.php" {
		t.Errorf("Endpoint = %q, want raw path", rec.Endpoint)
	}
	if rec.UserAgent != interaction.UnknownUserAgent {
		t.Errorf("UserAgent = %q, want %q", rec.UserAgent, interaction.UnknownUserAgent)
	}
}

func TestCapture_WrongMethodUsesRawPath(t *testing.T) {
	store := memory.New(0)
	router := newCaptureRouter(store, nil)

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodDelete, "/api/sequences/ABC", nil))

	if rec := lastRecord(t, store); rec.Endpoint != "/api/sequences/ABC" {
		t.Errorf("Endpoint = %q, want raw path", rec.Endpoint)
	}
}

func TestCapture_BodyPassesThroughUnmodified(t *testing.T) {
	store := memory.New(0)
	router := newCaptureRouter(store, nil)

	body := `{"action":"start","temperature":95}`
	req := httptest.NewRequest(http.MethodPost, "/api/equipment/PCR001/control", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Body.String() != body {
		t.Errorf("handler saw body %q, want %q", w.Body.String(), body)
	}
	captured, ok := lastRecord(t, store).Body.(map[string]any)
	if !ok || captured["action"] != "start" {
		t.Errorf("captured body = %#v", lastRecord(t, store).Body)
	}
}

func TestCapture_MalformedJSONIsAbsent(t *testing.T) {
	store := memory.New(0)
	router := newCaptureRouter(store, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/equipment/PCR001/control", strings.NewReader(`{"broken":`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected request to proceed, got status %d", w.Code)
	}
	if body := lastRecord(t, store).Body; body != nil {
		t.Errorf("Body = %#v, want nil", body)
	}
}

func TestCapture_OneRecordPerRequest(t *testing.T) {
	store := memory.New(0)
	router := newCaptureRouter(store, nil)

	paths := []string{"/api/sequences/1", "/nope", "/api/equipment/x/control", "/../../etc/passwd"}
	for i, p := range paths {
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, p, nil))
		if store.Len() != i+1 {
			t.Fatalf("after %d requests store has %d records", i+1, store.Len())
		}
	}
}

func TestCapture_ConcurrentRequests(t *testing.T) {
	store := memory.New(0)
	router := newCaptureRouter(store, nil)
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/warmup", nil))
	prior := store.Len()

	const n = 200
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/sequences/X", nil))
		}()
	}
	wg.Wait()

	if store.Len() != prior+n {
		t.Errorf("store size = %d, want %d", store.Len(), prior+n)
	}
}

func TestCapture_BearerClaims(t *testing.T) {
	store := memory.New(0)
	router := newCaptureRouter(store, nil)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "admin", "role": "root"})
	signed, err := token.SignedString([]byte("attacker-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/sequences/1", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	router.ServeHTTP(httptest.NewRecorder(), req)

	claims := lastRecord(t, store).TokenClaims
	if claims["sub"] != "admin" || claims["role"] != "root" {
		t.Errorf("TokenClaims = %v", claims)
	}
}

func TestCapture_NonJWTBearerHasNoClaims(t *testing.T) {
	store := memory.New(0)
	router := newCaptureRouter(store, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/sequences/1", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	router.ServeHTTP(httptest.NewRecorder(), req)

	if claims := lastRecord(t, store).TokenClaims; claims != nil {
		t.Errorf("TokenClaims = %v, want nil", claims)
	}
}

func TestCapture_ArchiveReceivesStoredRecord(t *testing.T) {
	store := memory.New(0)
	archive := &recordingArchive{}
	router := newCaptureRouter(store, archive)

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/sequences/1", nil))

	if len(archive.records) != 1 {
		t.Fatalf("archive got %d records, want 1", len(archive.records))
	}
	if archive.records[0].Timestamp.IsZero() {
		t.Error("archived record should carry the stored timestamp")
	}
}

func TestCapture_FullArchiveDoesNotBlock(t *testing.T) {
	store := memory.New(0)
	router := newCaptureRouter(store, &recordingArchive{full: true})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/sequences/1", nil))

	if w.Code != http.StatusOK || store.Len() != 1 {
		t.Errorf("status=%d len=%d", w.Code, store.Len())
	}
}

func TestCapture_StoreFailureStillDispatches(t *testing.T) {
	router := newCaptureRouter(failingStore{}, nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/sequences/1", nil))

	if w.Code != http.StatusOK {
		t.Errorf("expected dispatch to continue, got %d", w.Code)
	}
}

func TestCapture_SetsInteractionID(t *testing.T) {
	store := memory.New(0)
	var seen string
	handler := Capture(CaptureOptions{Store: store, Logger: testutil.NewNullLogger()})(
		http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
			seen = ctxutil.GetInteractionID(r.Context())
		}),
	)

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/x", nil))

	if seen == "" || seen != lastRecord(t, store).ID {
		t.Errorf("context interaction ID = %q, stored = %q", seen, lastRecord(t, store).ID)
	}
}

func TestCapture_LogsInteractionAtWarn(t *testing.T) {
	log, buf := testutil.NewBufferLogger()
	handler := Capture(CaptureOptions{Store: memory.New(0), Logger: log})(
		http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}),
	)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
	req.RemoteAddr = "192.0.2.7:40000"
	req = req.WithContext(ctxutil.WithCorrelationID(req.Context(), "host/abc-000001"))
	handler.ServeHTTP(httptest.NewRecorder(), req)

	out := buf.String()
	for _, want := range []string{
		"level=WARN",
		"correlation_id=host/abc-000001",
		`interaction="192.0.2.7 -> POST /api/auth/login"`,
		"user_agent=Unknown",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in log output, got %q", want, out)
		}
	}
}

func TestCapture_ImplicitMethodsRecordRoutePattern(t *testing.T) {
	tests := []struct {
		method string
		path   string
		want   string
	}{
		{http.MethodHead, "/api/sequences/ABC", "/api/sequences/{id}"},
		{http.MethodOptions, "/api/equipment/PCR001/control", "/api/equipment/{id}/control"},
		{http.MethodHead, "/api/equipment/PCR001/control", "/api/equipment/PCR001/control"},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			store := memory.New(0)
			newCaptureRouter(store, nil).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(tt.method, tt.path, nil))

			rec := lastRecord(t, store)
			if rec.Endpoint != tt.want {
				t.Errorf("Endpoint = %q, want %q", rec.Endpoint, tt.want)
			}
			if rec.Method != tt.method {
				t.Errorf("Method = %q, want %q", rec.Method, tt.method)
			}
		})
	}
}
