package adapter

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ncurl/jobwatch/internal/model"
	"github.com/ncurl/jobwatch/internal/transport"
)

const (
	defaultSmartRecruitersBaseURL = "https://api.smartrecruiters.com/v1/companies"
	smartRecruitersPageSize       = 100
	smartRecruitersMaxPages       = 10
)

// smartRecruitersPosting is a single posting in the postings API response.
type smartRecruitersPosting struct {
	ID         string                  `json:"id"`
	Name       string                  `json:"name"`
	RefURL     string                  `json:"ref_url"`
	ReleasedAt string                  `json:"releasedDate"`
	Location   smartRecruitersLocation `json:"location"`
}

type smartRecruitersLocation struct {
	City    string `json:"city"`
	Country string `json:"country"`
	Remote  bool   `json:"remote"`
}

type smartRecruitersResponse struct {
	Content    []smartRecruitersPosting `json:"content"`
	TotalFound int                      `json:"totalFound"`
}

var _ model.JobFetcher = (*SmartRecruitersAdapter)(nil)

// SmartRecruitersAdapter fetches jobs from the SmartRecruiters postings
// API, paging by offset/limit.
type SmartRecruitersAdapter struct {
	source
	baseURL   string
	companyID string
	company   string
	client    *transport.Client
}

// NewSmartRecruitersAdapter creates an adapter for one SmartRecruiters company.
func NewSmartRecruitersAdapter(name, companyID, company string, client *transport.Client) *SmartRecruitersAdapter {
	if company == "" {
		company = companyID
	}
	return &SmartRecruitersAdapter{
		source:    source{group: "smartrecruiters", name: name},
		baseURL:   defaultSmartRecruitersBaseURL,
		companyID: companyID,
		company:   company,
		client:    client,
	}
}

// SetBaseURL overrides the API endpoint, for tests.
func (a *SmartRecruitersAdapter) SetBaseURL(u string) { a.baseURL = u }

// FetchJobs pages through all postings for the company. Pagination stops
// when offset reaches the advertised total, when a page comes back empty,
// or at the page cap, whichever happens first.
func (a *SmartRecruitersAdapter) FetchJobs(ctx context.Context) ([]model.Job, error) {
	var jobs []model.Job
	offset := 0

	for page := 0; page < smartRecruitersMaxPages; page++ {
		url := fmt.Sprintf("%s/%s/postings?offset=%d&limit=%d", a.baseURL, a.companyID, offset, smartRecruitersPageSize)

		var resp smartRecruitersResponse
		if err := a.client.GetJSON(ctx, url, nil, &resp); err != nil {
			return nil, fmt.Errorf("smartrecruiters fetch for %s: %w", a.companyID, err)
		}
		if len(resp.Content) == 0 {
			break
		}

		for _, p := range resp.Content {
			if p.ID == "" || p.Name == "" {
				continue
			}

			var locParts []string
			if p.Location.City != "" {
				locParts = append(locParts, p.Location.City)
			}
			if p.Location.Country != "" {
				locParts = append(locParts, p.Location.Country)
			}
			location := strings.Join(locParts, ", ")

			job := model.Job{
				UID:         model.GenerateUID("smartrecruiters", model.UIDParts{RawID: p.ID}),
				SourceGroup: "smartrecruiters",
				SourceName:  a.name,
				Title:       p.Name,
				Company:     a.company,
				Location:    location,
				Remote:      p.Location.Remote || remoteLocation(location),
				URL:         p.RefURL,
				RawID:       p.ID,
			}
			if p.ReleasedAt != "" {
				if t, err := time.Parse(time.RFC3339, p.ReleasedAt); err == nil {
					job.PostedAt = &t
				}
			}
			jobs = append(jobs, job)
		}

		offset += smartRecruitersPageSize
		if offset >= resp.TotalFound {
			break
		}
	}

	return jobs, nil
}
