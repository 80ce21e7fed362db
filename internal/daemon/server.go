package daemon

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/Nomadcxx/releasescan/internal/logging"
	"github.com/Nomadcxx/releasescan/internal/scanner"
	"github.com/Nomadcxx/releasescan/internal/tasks"
)

const secretHeader = "X-Releasescan-Secret"

type ServerConfig struct {
	Addr     string
	Periodic *scanner.PeriodicScanner
	Stats    *Stats
	Tasks    *tasks.Tracker
	// Trigger requests a rescan. Nil disables the scan endpoint.
	Trigger func()
	// Secret guards the scan endpoint. Empty rejects every request.
	Secret string
	Logger *logging.Logger
}

type Server struct {
	httpServer *http.Server
	periodic   *scanner.PeriodicScanner
	stats      *Stats
	tasks      *tasks.Tracker
	trigger    func()
	secret     string
	startTime  time.Time
	mu         sync.RWMutex
	healthy    bool
	logger     *logging.Logger
}

type HealthResponse struct {
	Status        string                  `json:"status"`
	Uptime        string                  `json:"uptime"`
	Timestamp     time.Time               `json:"timestamp"`
	ScannerStatus *scanner.PeriodicStatus `json:"scanner,omitempty"`
}

type MetricsResponse struct {
	ReleasesFound   int64   `json:"releases_found"`
	Identified      int64   `json:"identified"`
	Ignored         int64   `json:"ignored"`
	FoundMB         float64 `json:"found_mb"`
	ActiveTasks     int     `json:"active_tasks"`
	SkippedTicks    int64   `json:"skipped_ticks"`
	UptimeSeconds   float64 `json:"uptime_seconds"`
	LastFound       string  `json:"last_found,omitempty"`
	LastSuccessScan string  `json:"last_success_scan,omitempty"`
}

func NewServer(cfg ServerConfig) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Nop()
	}
	stats := cfg.Stats
	if stats == nil {
		stats = NewStats()
	}
	s := &Server{
		periodic:  cfg.Periodic,
		stats:     stats,
		tasks:     cfg.Tasks,
		trigger:   cfg.Trigger,
		secret:    strings.TrimSpace(cfg.Secret),
		startTime: time.Now(),
		healthy:   true,
		logger:    logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/ready", s.handleReady)
	mux.HandleFunc("/metrics", s.handleMetrics)
	mux.HandleFunc("/api/v1/scan", s.handleScan)

	s.httpServer = &http.Server{
		Addr:         cfg.Addr,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

func (s *Server) Start() error {
	s.logger.Info("server", "Health server starting", logging.F("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("health server error: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) SetHealthy(healthy bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.healthy = healthy
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	healthy := s.healthy
	s.mu.RUnlock()

	scannerHealthy := true
	var scannerStatus *scanner.PeriodicStatus
	if s.periodic != nil {
		scannerHealthy = s.periodic.IsHealthy()
		status := s.periodic.Status()
		scannerStatus = &status
	}

	response := HealthResponse{
		Uptime:        time.Since(s.startTime).Round(time.Second).String(),
		Timestamp:     time.Now(),
		ScannerStatus: scannerStatus,
	}

	w.Header().Set("Content-Type", "application/json")
	switch {
	case healthy && scannerHealthy:
		response.Status = "healthy"
		w.WriteHeader(http.StatusOK)
	case healthy:
		// Degraded but still serving
		response.Status = "degraded"
		w.WriteHeader(http.StatusOK)
	default:
		response.Status = "unhealthy"
		w.WriteHeader(http.StatusServiceUnavailable)
	}

	json.NewEncoder(w).Encode(response)
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	healthy := s.healthy
	s.mu.RUnlock()

	if healthy {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ready"))
	} else {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("not ready"))
	}
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	stats := s.stats.Snapshot()

	response := MetricsResponse{
		ReleasesFound: stats.Found,
		Identified:    stats.Identified,
		Ignored:       stats.Ignored,
		FoundMB:       stats.SizeMB,
		UptimeSeconds: stats.Uptime.Seconds(),
	}
	if s.tasks != nil {
		response.ActiveTasks = s.tasks.ActiveTasks()
	}
	if !stats.LastFound.IsZero() {
		response.LastFound = stats.LastFound.Format(time.RFC3339)
	}
	if s.periodic != nil {
		status := s.periodic.Status()
		response.SkippedTicks = status.SkippedTicks
		if !status.LastSuccess.IsZero() {
			response.LastSuccessScan = status.LastSuccess.Format(time.RFC3339)
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// handleScan queues a rescan of every root.
func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if !s.validateSecret(r) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	if s.trigger == nil {
		http.Error(w, "scan trigger unavailable", http.StatusServiceUnavailable)
		return
	}

	s.logger.Info("server", "Rescan requested", logging.F("remote", r.RemoteAddr))
	s.trigger()
	w.WriteHeader(http.StatusAccepted)
}

func (s *Server) validateSecret(r *http.Request) bool {
	if s.secret == "" {
		return false
	}
	provided := strings.TrimSpace(r.Header.Get(secretHeader))
	if provided == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(provided), []byte(s.secret)) == 1
}
