package poller

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ncurl/jobwatch/internal/adapter"
	"github.com/ncurl/jobwatch/internal/model"
)

// CycleStats summarizes a single poll cycle.
type CycleStats struct {
	Fetched      int
	Matched      int
	New          int
	NotifyFailed int
}

// SourcePoller owns the full poll pipeline for a single source:
// fetch, filter, dedup, mark seen, notify. Each source runs its own
// independent loop so one slow or broken source never stalls the rest.
type SourcePoller struct {
	fetcher  model.JobFetcher
	filter   model.JobFilter
	store    model.JobStore
	notifier model.Notifier
	interval time.Duration
	logger   *slog.Logger

	// onCycle, when set, receives the stats of every completed cycle.
	onCycle func(source string, stats CycleStats, err error)
}

// NewSourcePoller creates a poller wired with all its dependencies.
func NewSourcePoller(
	fetcher model.JobFetcher,
	filter model.JobFilter,
	store model.JobStore,
	notifier model.Notifier,
	interval time.Duration,
	logger *slog.Logger,
) *SourcePoller {
	return &SourcePoller{
		fetcher:  fetcher,
		filter:   filter,
		store:    store,
		notifier: notifier,
		interval: interval,
		logger:   logger,
	}
}

// SourceName reports the wrapped fetcher's source name.
func (p *SourcePoller) SourceName() string { return p.fetcher.SourceName() }

// Interval reports the configured poll interval.
func (p *SourcePoller) Interval() time.Duration { return p.interval }

// OnCycle registers a callback invoked after every cycle with its stats.
func (p *SourcePoller) OnCycle(fn func(source string, stats CycleStats, err error)) {
	p.onCycle = fn
}

// Poll runs one cycle. A job is marked seen the moment it passes filtering
// and dedup, before any notification attempt: a crash mid-cycle may lose an
// alert but never duplicates one. Store failures abort the cycle; notifier
// failures are logged and counted but do not.
func (p *SourcePoller) Poll(ctx context.Context) (CycleStats, error) {
	var stats CycleStats

	jobs := adapter.SafeFetch(ctx, p.fetcher, p.logger)
	stats.Fetched = len(jobs)

	for _, job := range jobs {
		ok, matchedKeywords := p.filter.Match(job)
		if !ok {
			continue
		}
		stats.Matched++

		seen, err := p.store.HasSeen(job.UID)
		if err != nil {
			return stats, fmt.Errorf("polling %s: checking seen status: %w", p.SourceName(), err)
		}
		if seen {
			continue
		}

		// MarkSeen is the atomic check-and-set. If another poller won
		// the race after our HasSeen, inserted is false and that poller
		// owns the notification.
		inserted, err := p.store.MarkSeen(job, time.Now().UTC())
		if err != nil {
			return stats, fmt.Errorf("polling %s: marking seen: %w", p.SourceName(), err)
		}
		if !inserted {
			continue
		}
		stats.New++

		if err := p.notifier.Notify(ctx, job, matchedKeywords); err != nil {
			stats.NotifyFailed++
			p.logger.Error("notification failed",
				"source", p.SourceName(), "uid", job.UID, "title", job.Title, "error", err)
		}
	}

	if err := p.store.Flush(); err != nil {
		return stats, fmt.Errorf("polling %s: flushing store: %w", p.SourceName(), err)
	}

	p.logger.Info("polled source",
		"source", p.SourceName(),
		"fetched", stats.Fetched,
		"matched", stats.Matched,
		"new", stats.New,
	)

	return stats, nil
}

// Run polls immediately, then on every interval tick until the context is
// cancelled. Cycle errors are logged and reported via OnCycle; the loop
// keeps going.
func (p *SourcePoller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		stats, err := p.Poll(ctx)
		if err != nil {
			p.logger.Error("poll cycle failed", "source", p.SourceName(), "error", err)
		}
		if p.onCycle != nil {
			p.onCycle(p.SourceName(), stats, err)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
