package adapter

import (
	"context"
	"fmt"
	"time"

	"github.com/ncurl/jobwatch/internal/model"
	"github.com/ncurl/jobwatch/internal/transport"
)

const defaultAshbyBaseURL = "https://api.ashbyhq.com/posting-api/job-board"

// ashbyJob is a single job in the Ashby job-board API response.
type ashbyJob struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Location    string `json:"location"`
	JobURL      string `json:"jobUrl"`
	IsRemote    bool   `json:"isRemote"`
	PublishedAt string `json:"publishedAt"`
	IsListed    bool   `json:"isListed"`
}

type ashbyResponse struct {
	Jobs []ashbyJob `json:"jobs"`
}

var _ model.JobFetcher = (*AshbyAdapter)(nil)

// AshbyAdapter fetches jobs from the Ashby public job board API.
type AshbyAdapter struct {
	source
	baseURL    string
	boardToken string
	company    string
	client     *transport.Client
}

// NewAshbyAdapter creates an adapter for one Ashby board.
func NewAshbyAdapter(name, boardToken, company string, client *transport.Client) *AshbyAdapter {
	return &AshbyAdapter{
		source:     source{group: "ashby", name: name},
		baseURL:    defaultAshbyBaseURL,
		boardToken: boardToken,
		company:    company,
		client:     client,
	}
}

// SetBaseURL overrides the API endpoint, for tests.
func (a *AshbyAdapter) SetBaseURL(u string) { a.baseURL = u }

// FetchJobs retrieves listed postings from the board and normalizes them.
func (a *AshbyAdapter) FetchJobs(ctx context.Context) ([]model.Job, error) {
	url := fmt.Sprintf("%s/%s", a.baseURL, a.boardToken)

	var ashbyResp ashbyResponse
	if err := a.client.GetJSON(ctx, url, nil, &ashbyResp); err != nil {
		return nil, fmt.Errorf("ashby fetch for %s: %w", a.boardToken, err)
	}

	jobs := make([]model.Job, 0, len(ashbyResp.Jobs))
	for _, aj := range ashbyResp.Jobs {
		if !aj.IsListed || aj.Title == "" {
			continue
		}

		// Some boards omit the posting id; fall back to the URL tier.
		uid := model.GenerateUID("ashby", model.UIDParts{RawID: aj.ID, URL: aj.JobURL})

		job := model.Job{
			UID:         uid,
			SourceGroup: "ashby",
			SourceName:  a.name,
			Title:       aj.Title,
			Company:     a.company,
			Location:    aj.Location,
			Remote:      aj.IsRemote || remoteLocation(aj.Location),
			URL:         aj.JobURL,
			RawID:       aj.ID,
		}

		if aj.PublishedAt != "" {
			if t, err := time.Parse(time.RFC3339, aj.PublishedAt); err == nil {
				job.PostedAt = &t
			}
		}

		jobs = append(jobs, job)
	}

	return jobs, nil
}
