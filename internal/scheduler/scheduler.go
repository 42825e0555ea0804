package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ncurl/jobwatch/internal/poller"
)

// SourceStatus is a point-in-time snapshot of one source's poll loop.
type SourceStatus struct {
	Source       string    `json:"source"`
	LastPoll     time.Time `json:"last_poll"`
	LastError    string    `json:"last_error,omitempty"`
	Cycles       int       `json:"cycles"`
	Fetched      int       `json:"fetched"`
	Matched      int       `json:"matched"`
	New          int       `json:"new"`
	NotifyFailed int       `json:"notify_failed"`
}

// Scheduler runs one poll loop per source. Loops are independent: a source
// that is slow, erroring, or rate limited never delays the others.
type Scheduler struct {
	pollers []*poller.SourcePoller
	logger  *slog.Logger

	mu     sync.Mutex
	status map[string]*SourceStatus
}

// New creates a scheduler for the given pollers.
func New(pollers []*poller.SourcePoller, logger *slog.Logger) *Scheduler {
	s := &Scheduler{
		pollers: pollers,
		logger:  logger,
		status:  make(map[string]*SourceStatus),
	}
	for _, p := range pollers {
		s.status[p.SourceName()] = &SourceStatus{Source: p.SourceName()}
		p.OnCycle(s.recordCycle)
	}
	return s
}

// Run starts every source loop and blocks until the context is cancelled
// and all loops have drained.
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.Info("scheduler starting", "sources", len(s.pollers))

	g, ctx := errgroup.WithContext(ctx)
	for _, p := range s.pollers {
		g.Go(func() error {
			s.logger.Info("source loop starting",
				"source", p.SourceName(), "interval", p.Interval())
			p.Run(ctx)
			return nil
		})
	}
	return g.Wait()
}

// Status returns a snapshot of every source's counters, sorted by name
// on the caller's side if order matters.
func (s *Scheduler) Status() []SourceStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]SourceStatus, 0, len(s.status))
	for _, st := range s.status {
		out = append(out, *st)
	}
	return out
}

func (s *Scheduler) recordCycle(source string, stats poller.CycleStats, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.status[source]
	if !ok {
		st = &SourceStatus{Source: source}
		s.status[source] = st
	}
	st.LastPoll = time.Now().UTC()
	st.Cycles++
	st.Fetched += stats.Fetched
	st.Matched += stats.Matched
	st.New += stats.New
	st.NotifyFailed += stats.NotifyFailed
	if err != nil {
		st.LastError = err.Error()
	} else {
		st.LastError = ""
	}
}
