package adapter

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ncurl/jobwatch/internal/model"
	"github.com/ncurl/jobwatch/internal/transport"
)

const defaultLeverBaseURL = "https://api.lever.co/v0/postings"

type leverCategories struct {
	Team         string   `json:"team"`
	Department   string   `json:"department"`
	Location     string   `json:"location"`
	Commitment   string   `json:"commitment"`
	AllLocations []string `json:"allLocations"`
}

// leverJob is a single posting in the Lever API response.
type leverJob struct {
	ID               string          `json:"id"`
	Text             string          `json:"text"`
	DescriptionPlain string          `json:"descriptionPlain"`
	Categories       leverCategories `json:"categories"`
	CreatedAt        int64           `json:"createdAt"`
	WorkplaceType    string          `json:"workplaceType"`
	HostedURL        string          `json:"hostedUrl"`
}

var _ model.JobFetcher = (*LeverAdapter)(nil)

// LeverAdapter fetches jobs from the Lever public postings API.
type LeverAdapter struct {
	source
	baseURL     string
	companySlug string
	company     string
	client      *transport.Client
}

// NewLeverAdapter creates an adapter for one Lever board.
func NewLeverAdapter(name, companySlug, company string, client *transport.Client) *LeverAdapter {
	return &LeverAdapter{
		source:      source{group: "lever", name: name},
		baseURL:     defaultLeverBaseURL,
		companySlug: companySlug,
		company:     company,
		client:      client,
	}
}

// SetBaseURL overrides the API endpoint, for tests.
func (a *LeverAdapter) SetBaseURL(u string) { a.baseURL = u }

// FetchJobs retrieves all postings from the board and normalizes them.
func (a *LeverAdapter) FetchJobs(ctx context.Context) ([]model.Job, error) {
	url := fmt.Sprintf("%s/%s?mode=json", a.baseURL, a.companySlug)

	var leverJobs []leverJob
	if err := a.client.GetJSON(ctx, url, nil, &leverJobs); err != nil {
		return nil, fmt.Errorf("lever fetch for %s: %w", a.companySlug, err)
	}

	jobs := make([]model.Job, 0, len(leverJobs))
	for _, lj := range leverJobs {
		if lj.ID == "" || lj.Text == "" {
			continue
		}

		location := lj.Categories.Location
		if len(lj.Categories.AllLocations) > 0 {
			location = strings.Join(lj.Categories.AllLocations, ", ")
		}

		job := model.Job{
			UID:         model.GenerateUID("lever", model.UIDParts{RawID: lj.ID}),
			SourceGroup: "lever",
			SourceName:  a.name,
			Title:       lj.Text,
			Company:     a.company,
			Location:    location,
			Remote:      lj.WorkplaceType == "remote" || remoteLocation(location),
			URL:         lj.HostedURL,
			Snippet:     lj.DescriptionPlain,
			RawID:       lj.ID,
		}

		if lj.CreatedAt > 0 {
			t := time.UnixMilli(lj.CreatedAt)
			job.PostedAt = &t
		}

		jobs = append(jobs, job)
	}

	return jobs, nil
}
