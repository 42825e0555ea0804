package adapter

import (
	"context"
	"fmt"
	"strings"

	"github.com/ncurl/jobwatch/internal/model"
	"github.com/ncurl/jobwatch/internal/transport"
)

const defaultWorkableBaseURL = "https://apply.workable.com/api/v1/widget/accounts"

// workableJob is a single job in the Workable widget API response.
type workableJob struct {
	Shortcode        string `json:"shortcode"`
	Title            string `json:"title"`
	City             string `json:"city"`
	State            string `json:"state"`
	Country          string `json:"country"`
	URL              string `json:"url"`
	ShortDescription string `json:"shortDescription"`
	Remote           bool   `json:"remote"`
}

type workableResponse struct {
	Jobs []workableJob `json:"jobs"`
}

var _ model.JobFetcher = (*WorkableAdapter)(nil)

// WorkableAdapter fetches jobs from the Workable widget API.
type WorkableAdapter struct {
	source
	baseURL   string
	subdomain string
	company   string
	client    *transport.Client
}

// NewWorkableAdapter creates an adapter for one Workable account.
func NewWorkableAdapter(name, subdomain, company string, client *transport.Client) *WorkableAdapter {
	if company == "" {
		company = subdomain
	}
	return &WorkableAdapter{
		source:    source{group: "workable", name: name},
		baseURL:   defaultWorkableBaseURL,
		subdomain: subdomain,
		company:   company,
		client:    client,
	}
}

// SetBaseURL overrides the API endpoint, for tests.
func (a *WorkableAdapter) SetBaseURL(u string) { a.baseURL = u }

// FetchJobs retrieves all postings for the account and normalizes them.
func (a *WorkableAdapter) FetchJobs(ctx context.Context) ([]model.Job, error) {
	url := fmt.Sprintf("%s/%s", a.baseURL, a.subdomain)

	var resp workableResponse
	if err := a.client.GetJSON(ctx, url, nil, &resp); err != nil {
		return nil, fmt.Errorf("workable fetch for %s: %w", a.subdomain, err)
	}

	jobs := make([]model.Job, 0, len(resp.Jobs))
	for _, wj := range resp.Jobs {
		if wj.Shortcode == "" || wj.Title == "" {
			continue
		}

		var locParts []string
		for _, part := range []string{wj.City, wj.State, wj.Country} {
			if part != "" {
				locParts = append(locParts, part)
			}
		}
		location := strings.Join(locParts, ", ")

		jobs = append(jobs, model.Job{
			UID:         model.GenerateUID("workable", model.UIDParts{RawID: wj.Shortcode}),
			SourceGroup: "workable",
			SourceName:  a.name,
			Title:       wj.Title,
			Company:     a.company,
			Location:    location,
			Remote:      wj.Remote || remoteLocation(location),
			URL:         wj.URL,
			Snippet:     wj.ShortDescription,
			RawID:       wj.Shortcode,
		})
	}

	return jobs, nil
}
