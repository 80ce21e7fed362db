package daemon

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/Nomadcxx/releasescan/internal/scanner"
	"github.com/Nomadcxx/releasescan/internal/tasks"
)

func TestServerHealth(t *testing.T) {
	server := NewServer(ServerConfig{Addr: ":0"})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	server.handleHealth(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}

	var resp HealthResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if resp.Status != "healthy" {
		t.Errorf("expected status healthy, got %s", resp.Status)
	}
	if resp.ScannerStatus != nil {
		t.Error("expected no scanner status without a periodic scanner")
	}
}

func TestServerHealthUnhealthy(t *testing.T) {
	server := NewServer(ServerConfig{Addr: ":0"})
	server.SetHealthy(false)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	server.handleHealth(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected status 503, got %d", w.Code)
	}
}

func TestServerHealthDegraded(t *testing.T) {
	periodic := scanner.NewPeriodicScanner(scanner.PeriodicConfig{
		Interval: time.Hour,
		Roots:    []string{filepath.Join(t.TempDir(), "missing")},
		Scanner:  scanner.New(scanner.DefaultConfig(), scanner.Delegates{}),
	})
	periodic.Trigger(context.Background())

	server := NewServer(ServerConfig{Addr: ":0", Periodic: periodic})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	server.handleHealth(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}
	var resp HealthResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Status != "degraded" {
		t.Errorf("expected degraded, got %s", resp.Status)
	}
	if resp.ScannerStatus == nil || resp.ScannerStatus.LastError == "" {
		t.Errorf("expected scanner error in status, got %+v", resp.ScannerStatus)
	}
}

func TestServerReady(t *testing.T) {
	server := NewServer(ServerConfig{Addr: ":0"})

	w := httptest.NewRecorder()
	server.handleReady(w, httptest.NewRequest(http.MethodGet, "/ready", nil))
	if w.Code != http.StatusOK || w.Body.String() != "ready" {
		t.Errorf("expected 200 ready, got %d %q", w.Code, w.Body.String())
	}

	server.SetHealthy(false)
	w = httptest.NewRecorder()
	server.handleReady(w, httptest.NewRequest(http.MethodGet, "/ready", nil))
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", w.Code)
	}
}

func TestServerMetrics(t *testing.T) {
	stats := NewStats()
	stats.Record(&scanner.Release{
		Identifier: "ironman2008",
		Meta:       scanner.Metadata{SizeMB: 700},
		Media:      scanner.Media{IMDbID: "tt0371746"},
	})
	stats.Record(&scanner.Release{Identifier: "heat1995", Ignored: true, Meta: scanner.Metadata{SizeMB: 300}})

	var tracker tasks.Tracker
	done := tracker.Begin()
	defer done()

	server := NewServer(ServerConfig{Addr: ":0", Stats: stats, Tasks: &tracker})

	w := httptest.NewRecorder()
	server.handleMetrics(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	var resp MetricsResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.ReleasesFound != 2 {
		t.Errorf("expected 2 releases, got %d", resp.ReleasesFound)
	}
	if resp.Identified != 1 || resp.Ignored != 1 {
		t.Errorf("expected 1 identified and 1 ignored, got %d/%d", resp.Identified, resp.Ignored)
	}
	if resp.FoundMB != 1000 {
		t.Errorf("expected 1000 MB, got %f", resp.FoundMB)
	}
	if resp.ActiveTasks != 1 {
		t.Errorf("expected 1 active task, got %d", resp.ActiveTasks)
	}
	if resp.LastFound == "" {
		t.Error("expected last found timestamp")
	}
}

func TestServerScanSecretValidation(t *testing.T) {
	triggered := 0
	server := NewServer(ServerConfig{
		Addr:    ":0",
		Secret:  "s3cret",
		Trigger: func() { triggered++ },
	})

	cases := []struct {
		name   string
		method string
		secret string
		want   int
	}{
		{"wrong method", http.MethodGet, "s3cret", http.StatusMethodNotAllowed},
		{"missing secret", http.MethodPost, "", http.StatusUnauthorized},
		{"wrong secret", http.MethodPost, "nope", http.StatusUnauthorized},
		{"valid", http.MethodPost, "s3cret", http.StatusAccepted},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(tc.method, "/api/v1/scan", nil)
		if tc.secret != "" {
			req.Header.Set(secretHeader, tc.secret)
		}
		w := httptest.NewRecorder()
		server.handleScan(w, req)
		if w.Code != tc.want {
			t.Errorf("%s: expected %d, got %d", tc.name, tc.want, w.Code)
		}
	}

	if triggered != 1 {
		t.Errorf("expected one trigger, got %d", triggered)
	}
}

func TestServerScanWithoutSecretRejects(t *testing.T) {
	server := NewServer(ServerConfig{Addr: ":0", Trigger: func() { t.Error("should not trigger") }})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/scan", nil)
	req.Header.Set(secretHeader, "anything")
	w := httptest.NewRecorder()
	server.handleScan(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}
