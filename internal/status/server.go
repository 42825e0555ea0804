package status

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/ncurl/jobwatch/internal/scheduler"
)

// StatusSource exposes per-source poll snapshots. The scheduler satisfies it.
type StatusSource interface {
	Status() []scheduler.SourceStatus
}

// Counter reports the number of seen records. The job store satisfies it.
type Counter interface {
	Count() (int, error)
}

// Server serves the local observation endpoints: a liveness probe and a
// JSON snapshot of every source loop.
type Server struct {
	addr    string
	started time.Time
	source  StatusSource
	store   Counter
	logger  *slog.Logger
	http    *http.Server
}

// NewServer creates the status server. addr is a listen address like ":8090".
func NewServer(addr string, source StatusSource, store Counter, logger *slog.Logger) *Server {
	s := &Server{
		addr:    addr,
		started: time.Now().UTC(),
		source:  source,
		store:   store,
		logger:  logger,
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/healthz", s.handleHealthz)
	r.Get("/status", s.handleStatus)

	s.http = &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Handler exposes the router, for tests.
func (s *Server) Handler() http.Handler { return s.http.Handler }

// Run serves until the context is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("status server listening", "addr", s.addr)
		if err := s.http.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.http.Shutdown(shutdownCtx)
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("ok"))
}

type statusResponse struct {
	UptimeSeconds int64                    `json:"uptime_seconds"`
	SeenTotal     int                      `json:"seen_total"`
	Sources       []scheduler.SourceStatus `json:"sources"`
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	seen, err := s.store.Count()
	if err != nil {
		s.logger.Error("status count failed", "error", err)
		http.Error(w, "store unavailable", http.StatusInternalServerError)
		return
	}

	sources := s.source.Status()
	sort.Slice(sources, func(i, j int) bool { return sources[i].Source < sources[j].Source })

	resp := statusResponse{
		UptimeSeconds: int64(time.Since(s.started).Seconds()),
		SeenTotal:     seen,
		Sources:       sources,
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.logger.Error("status encode failed", "error", err)
	}
}
