package status

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ncurl/jobwatch/internal/scheduler"
)

type stubSource struct {
	statuses []scheduler.SourceStatus
}

func (s *stubSource) Status() []scheduler.SourceStatus { return s.statuses }

type stubCounter struct {
	n   int
	err error
}

func (c *stubCounter) Count() (int, error) { return c.n, c.err }

func newTestServer(source StatusSource, store Counter) *Server {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewServer(":0", source, store, logger)
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(&stubSource{}, &stubCounter{})
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	if rec.Body.String() != "ok" {
		t.Errorf("body = %q", rec.Body.String())
	}
}

func TestStatus_ReportsSourcesSorted(t *testing.T) {
	source := &stubSource{statuses: []scheduler.SourceStatus{
		{Source: "Oracle Careers", Cycles: 2, Fetched: 50},
		{Source: "Acme Greenhouse", Cycles: 5, Fetched: 120, New: 3, LastPoll: time.Now().UTC()},
	}}
	srv := newTestServer(source, &stubCounter{n: 12})

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp statusResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.SeenTotal != 12 {
		t.Errorf("seen_total = %d, want 12", resp.SeenTotal)
	}
	if len(resp.Sources) != 2 {
		t.Fatalf("got %d sources, want 2", len(resp.Sources))
	}
	if resp.Sources[0].Source != "Acme Greenhouse" || resp.Sources[1].Source != "Oracle Careers" {
		t.Errorf("sources not sorted by name: %+v", resp.Sources)
	}
	if resp.Sources[0].New != 3 {
		t.Errorf("counters not carried through: %+v", resp.Sources[0])
	}
}

func TestStatus_StoreErrorIs500(t *testing.T) {
	srv := newTestServer(&stubSource{}, &stubCounter{err: errors.New("closed")})
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}
