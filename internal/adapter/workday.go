package adapter

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/ncurl/jobwatch/internal/model"
	"github.com/ncurl/jobwatch/internal/transport"
)

const (
	workdayPageSize        = 20
	defaultWorkdayMaxPages = 25
)

// workdayListingRequest is the POST body for the Workday jobs endpoint.
type workdayListingRequest struct {
	AppliedFacets map[string]any `json:"appliedFacets"`
	Limit         int            `json:"limit"`
	Offset        int            `json:"offset"`
	SearchText    string         `json:"searchText"`
}

type workdayListingResponse struct {
	Total       int              `json:"total"`
	JobPostings []workdayListing `json:"jobPostings"`
}

type workdayListing struct {
	Title         string   `json:"title"`
	ExternalPath  string   `json:"externalPath"`
	LocationsText string   `json:"locationsText"`
	PostedOn      string   `json:"postedOn"`
	BulletFields  []string `json:"bulletFields"`
}

var _ model.JobFetcher = (*WorkdayAdapter)(nil)

// WorkdayAdapter fetches jobs from a Workday career site by paging through
// the POST /jobs listing endpoint.
type WorkdayAdapter struct {
	source
	baseURL  string
	company  string
	keyword  string
	maxPages int
	client   *transport.Client
}

// NewWorkdayAdapter creates an adapter for one Workday career site.
// baseURL is the full CXS endpoint for the tenant. maxPages bounds
// worst-case pagination; zero means the default cap.
func NewWorkdayAdapter(name, baseURL, company, keyword string, maxPages int, client *transport.Client) *WorkdayAdapter {
	if maxPages <= 0 {
		maxPages = defaultWorkdayMaxPages
	}
	return &WorkdayAdapter{
		source:   source{group: "workday", name: name},
		baseURL:  strings.TrimRight(baseURL, "/"),
		company:  company,
		keyword:  keyword,
		maxPages: maxPages,
		client:   client,
	}
}

// FetchJobs pages through the listing endpoint. Pagination stops at the
// advertised total, on an empty page, or at the page cap; a total that
// shrinks mid-pagination is treated as end-of-results, never looped on.
func (a *WorkdayAdapter) FetchJobs(ctx context.Context) ([]model.Job, error) {
	var jobs []model.Job
	offset := 0

	for page := 0; page < a.maxPages; page++ {
		body := workdayListingRequest{
			AppliedFacets: map[string]any{},
			Limit:         workdayPageSize,
			Offset:        offset,
			SearchText:    a.keyword,
		}

		var listResp workdayListingResponse
		if err := a.client.PostJSON(ctx, a.baseURL+"/jobs", body, &listResp); err != nil {
			return nil, fmt.Errorf("workday fetch for %s: %w", a.name, err)
		}
		if len(listResp.JobPostings) == 0 {
			break
		}

		for _, l := range listResp.JobPostings {
			if l.ExternalPath == "" || l.Title == "" {
				continue
			}
			rawID := workdayReqID(l)
			jobs = append(jobs, model.Job{
				UID:         model.GenerateUID("workday", model.UIDParts{RawID: rawID}),
				SourceGroup: "workday",
				SourceName:  a.name,
				Title:       l.Title,
				Company:     a.company,
				Location:    l.LocationsText,
				Remote:      remoteLocation(l.LocationsText),
				URL:         a.baseURL + l.ExternalPath,
				PostedAt:    parsePostedOn(l.PostedOn),
				RawID:       rawID,
			})
		}

		offset += workdayPageSize
		if offset >= listResp.Total {
			break
		}
	}

	return jobs, nil
}

// workdayReqID extracts the requisition id. Workday puts it in the bullet
// fields ("JR123456") and in the externalPath suffix; the path is the
// stable fallback.
func workdayReqID(l workdayListing) string {
	for _, f := range l.BulletFields {
		if strings.HasPrefix(f, "JR") || strings.HasPrefix(f, "R-") {
			return f
		}
	}
	return l.ExternalPath
}

var daysAgoRegex = regexp.MustCompile(`^Posted (\d+)\+? Days? Ago$`)

// parsePostedOn converts a Workday relative date string ("Posted Today",
// "Posted 3 Days Ago") to an approximate timestamp. Unknown forms map to nil.
func parsePostedOn(postedOn string) *time.Time {
	now := time.Now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	switch postedOn {
	case "Posted Today":
		return &today
	case "Posted Yesterday":
		t := today.AddDate(0, 0, -1)
		return &t
	}

	if matches := daysAgoRegex.FindStringSubmatch(postedOn); matches != nil {
		if n, err := strconv.Atoi(matches[1]); err == nil {
			t := today.AddDate(0, 0, -n)
			return &t
		}
	}

	return nil
}
