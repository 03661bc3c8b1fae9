package observability

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Health is the status document served on /health during watch mode.
type Health struct {
	Status       string `json:"status"`
	LastScan     string `json:"last_scan,omitempty"`
	LastScanOK   bool   `json:"last_scan_ok"`
	WatchedRoots int    `json:"watched_roots"`
}

// Server exposes Prometheus metrics and a health check while the process
// stays resident in watch mode.
type Server struct {
	addr   string
	check  func() Health
	server *http.Server
}

func NewServer(addr string, check func() Health) *Server {
	return &Server{addr: addr, check: check}
}

func (s *Server) Start(ctx context.Context) error {
	mux := http.NewServeMux()

	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		health := s.check()
		w.Header().Set("Content-Type", "application/json")
		if health.Status != "up" {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		json.NewEncoder(w).Encode(health)
	})

	s.server = &http.Server{
		Addr:    s.addr,
		Handler: mux,
	}

	slog.Info("observability server starting", "addr", s.addr)

	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("observability server failed", "error", err)
		}
	}()

	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
