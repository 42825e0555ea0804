package model

import (
	"context"
	"time"
)

// Job is the normalized representation of a posting from any source.
type Job struct {
	UID         string     // stable dedup key, derived from (SourceGroup, RawID)
	SourceGroup string     // adapter family that produced it ("greenhouse", "oracle", ...)
	SourceName  string     // configured display name for the source
	Title       string     // job title
	Company     string     // company name
	Location    string     // location string, may be empty
	Remote      bool       // best-effort remote detection
	URL         string     // absolute, canonical posting URL
	Snippet     string     // bounded-length description excerpt
	PostedAt    *time.Time // nullable (not all sources provide this)
	RawID       string     // source-native identifier used to derive UID
	Tags        []string   // optional source-specific tags
}

// JobFetcher fetches job listings from one configured source.
type JobFetcher interface {
	// SourceGroup identifies the adapter family. It is part of UID
	// derivation and must never change for a deployed source.
	SourceGroup() string
	// SourceName is the configured display name, for logs and notifications.
	SourceName() string
	FetchJobs(ctx context.Context) ([]Job, error)
}

// SeenRecord is a persisted (uid, first_seen) pair owned by the dedup store.
type SeenRecord struct {
	UID         string
	FirstSeen   time.Time
	SourceGroup string
	URL         string
}

// JobStore tracks which job UIDs have been seen for deduplication.
// Implementations must be safe for concurrent use by multiple pollers.
// MarkSeen is the atomic check-and-set: it reports whether this call
// created the record, so when two pollers race on the same UID exactly
// one of them observes inserted=true and notifies. HasSeen is only a
// cheap pre-filter and must never gate notification on its own.
type JobStore interface {
	HasSeen(uid string) (bool, error)
	MarkSeen(job Job, firstSeen time.Time) (inserted bool, err error)
	// Flush forces durable persistence; the poller calls it once per cycle.
	Flush() error
	Count() (int, error)
	Recent(limit int) ([]SeenRecord, error)
}

// Notifier delivers a single new job to the notification sink.
type Notifier interface {
	Notify(ctx context.Context, job Job, matchedKeywords []string) error
}

// JobFilter decides whether a job is relevant. Match also reports which
// include keywords matched, for notification context.
type JobFilter interface {
	Match(job Job) (ok bool, matchedKeywords []string)
}
