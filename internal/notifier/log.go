package notifier

import (
	"context"
	"log/slog"

	"github.com/ncurl/jobwatch/internal/model"
)

// Ensure LogNotifier implements model.Notifier.
var _ model.Notifier = (*LogNotifier)(nil)

// LogNotifier writes new job matches to the given logger as structured
// messages. Used for dry runs and one-shot checks.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier returns a notifier that logs each job via slog.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Notify logs the job with company, title, location, URL, and posted_at.
// Returns nil (stdout logging does not fail).
func (n *LogNotifier) Notify(_ context.Context, job model.Job, matchedKeywords []string) error {
	args := []any{
		"company", job.Company,
		"title", job.Title,
		"location", job.Location,
		"url", job.URL,
	}
	if len(matchedKeywords) > 0 {
		args = append(args, "matched", matchedKeywords)
	}
	if job.PostedAt != nil {
		args = append(args, "posted_at", *job.PostedAt)
	}
	n.logger.Info("new job", args...)
	return nil
}
