package adapter

import (
	"context"
	"fmt"
	"time"

	"github.com/ncurl/jobwatch/internal/model"
	"github.com/ncurl/jobwatch/internal/transport"
)

const defaultGreenhouseBaseURL = "https://boards-api.greenhouse.io/v1/boards"

// greenhouseJob is a single job in the Greenhouse boards API response.
type greenhouseJob struct {
	ID          int64              `json:"id"`
	Title       string             `json:"title"`
	Location    greenhouseLocation `json:"location"`
	Content     string             `json:"content"`
	AbsoluteURL string             `json:"absolute_url"`
	UpdatedAt   string             `json:"updated_at"`
}

type greenhouseLocation struct {
	Name string `json:"name"`
}

type greenhouseResponse struct {
	Jobs []greenhouseJob `json:"jobs"`
}

var _ model.JobFetcher = (*GreenhouseAdapter)(nil)

// GreenhouseAdapter fetches jobs from the Greenhouse public boards API.
type GreenhouseAdapter struct {
	source
	baseURL    string
	boardToken string
	company    string
	client     *transport.Client
}

// NewGreenhouseAdapter creates an adapter for one Greenhouse board.
func NewGreenhouseAdapter(name, boardToken, company string, client *transport.Client) *GreenhouseAdapter {
	return &GreenhouseAdapter{
		source:     source{group: "greenhouse", name: name},
		baseURL:    defaultGreenhouseBaseURL,
		boardToken: boardToken,
		company:    company,
		client:     client,
	}
}

// SetBaseURL overrides the API endpoint, for tests.
func (a *GreenhouseAdapter) SetBaseURL(u string) { a.baseURL = u }

// FetchJobs retrieves all postings from the board and normalizes them.
func (a *GreenhouseAdapter) FetchJobs(ctx context.Context) ([]model.Job, error) {
	url := fmt.Sprintf("%s/%s/jobs?content=true", a.baseURL, a.boardToken)

	var ghResp greenhouseResponse
	if err := a.client.GetJSON(ctx, url, nil, &ghResp); err != nil {
		return nil, fmt.Errorf("greenhouse fetch for %s: %w", a.boardToken, err)
	}

	jobs := make([]model.Job, 0, len(ghResp.Jobs))
	for _, gj := range ghResp.Jobs {
		if gj.ID == 0 || gj.Title == "" {
			continue
		}
		rawID := fmt.Sprintf("%d", gj.ID)
		job := model.Job{
			UID:         model.GenerateUID("greenhouse", model.UIDParts{RawID: rawID}),
			SourceGroup: "greenhouse",
			SourceName:  a.name,
			Title:       gj.Title,
			Company:     a.company,
			Location:    gj.Location.Name,
			Remote:      remoteLocation(gj.Location.Name),
			URL:         gj.AbsoluteURL,
			Snippet:     extractText(gj.Content),
			RawID:       rawID,
		}

		if gj.UpdatedAt != "" {
			if t, err := time.Parse(time.RFC3339, gj.UpdatedAt); err == nil {
				job.PostedAt = &t
			}
		}

		jobs = append(jobs, job)
	}

	return jobs, nil
}
