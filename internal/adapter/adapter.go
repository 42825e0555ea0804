// Package adapter translates per-source wire formats into the normalized
// Job record. Each family is one thin JobFetcher implementation; the
// orchestrator only ever enters through SafeFetch.
package adapter

import (
	"context"
	"log/slog"

	"github.com/ncurl/jobwatch/internal/model"
)

// source carries the identity fields shared by every adapter family.
type source struct {
	group string
	name  string
}

func (s source) SourceGroup() string { return s.group }
func (s source) SourceName() string  { return s.name }

// SafeFetch invokes the fetcher and contains every failure mode: a fetch
// error or panic is logged and converted to an empty result, and malformed
// records are dropped rather than propagated partially. A misbehaving
// adapter can cost its own cycle but never anyone else's.
func SafeFetch(ctx context.Context, f model.JobFetcher, logger *slog.Logger) (jobs []model.Job) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("fetch panicked",
				"source", f.SourceName(),
				"group", f.SourceGroup(),
				"panic", r,
			)
			jobs = nil
		}
	}()

	fetched, err := f.FetchJobs(ctx)
	if err != nil {
		logger.Error("fetch failed",
			"source", f.SourceName(),
			"group", f.SourceGroup(),
			"error", err,
		)
		return nil
	}

	jobs = make([]model.Job, 0, len(fetched))
	dropped := 0
	for _, job := range fetched {
		if !wellFormed(job) {
			dropped++
			continue
		}
		job.Snippet = model.TruncateSnippet(job.Snippet)
		jobs = append(jobs, job)
	}

	logger.Info("fetched",
		"source", f.SourceName(),
		"group", f.SourceGroup(),
		"jobs", len(jobs),
		"dropped", dropped,
	)
	return jobs
}

// wellFormed checks the required Job fields. Partially-parsed upstream
// entries are skipped at this boundary.
func wellFormed(job model.Job) bool {
	return job.UID != "" && job.SourceGroup != "" && job.Title != "" && job.URL != ""
}

// remoteLocation reports whether a location string suggests a remote role.
func remoteLocation(location string) bool {
	return containsFold(location, "remote") ||
		containsFold(location, "virtual") ||
		containsFold(location, "work from home")
}
