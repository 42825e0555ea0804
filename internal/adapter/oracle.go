package adapter

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ncurl/jobwatch/internal/model"
	"github.com/ncurl/jobwatch/internal/transport"
)

const (
	defaultOracleAPIBase     = "https://eeho.fa.us2.oraclecloud.com/hcmRestApi/resources/latest"
	defaultOracleCareersBase = "https://careers.oracle.com"
	oracleSiteNumber         = "CX_1"
	// The Oracle API returns 25 requisitions per page regardless of the
	// requested limit.
	oraclePageSize       = 25
	defaultOracleMaxJobs = 500
)

// oracleSearchResponse mirrors the finder response: a single search result
// object wrapping the requisition list.
type oracleSearchResponse struct {
	Items []oracleSearchItem `json:"items"`
}

type oracleSearchItem struct {
	TotalJobsCount  int                 `json:"TotalJobsCount"`
	RequisitionList []oracleRequisition `json:"requisitionList"`
}

type oracleRequisition struct {
	ID                  string           `json:"Id"`
	Title               string           `json:"Title"`
	PrimaryLocation     string           `json:"PrimaryLocation"`
	PostedDate          string           `json:"PostedDate"`
	ShortDescriptionStr string           `json:"ShortDescriptionStr"`
	WorkplaceType       string           `json:"WorkplaceType"`
	HotJobFlag          bool             `json:"HotJobFlag"`
	TrendingFlag        bool             `json:"TrendingFlag"`
	SecondaryLocations  []oracleLocation `json:"secondaryLocations"`
}

type oracleLocation struct {
	Location string `json:"Location"`
}

var _ model.JobFetcher = (*OracleAdapter)(nil)

// OracleAdapter fetches jobs from Oracle Recruiting Cloud. The API uses a
// finder query string where pagination parameters live inside the finder
// value, not as separate query parameters.
type OracleAdapter struct {
	source
	apiBase     string
	careersBase string
	keyword     string
	location    string
	maxJobs     int
	client      *transport.Client
}

// NewOracleAdapter creates an adapter for the Oracle careers site.
// maxJobs bounds the total fetched; zero means the default cap.
func NewOracleAdapter(name, keyword, location string, maxJobs int, client *transport.Client) *OracleAdapter {
	if maxJobs <= 0 {
		maxJobs = defaultOracleMaxJobs
	}
	return &OracleAdapter{
		source:      source{group: "oracle", name: name},
		apiBase:     defaultOracleAPIBase,
		careersBase: defaultOracleCareersBase,
		keyword:     keyword,
		location:    location,
		maxJobs:     maxJobs,
		client:      client,
	}
}

// SetBaseURL overrides the API endpoint, for tests.
func (a *OracleAdapter) SetBaseURL(u string) { a.apiBase = u }

// FetchJobs pages through requisitions until the advertised total, the
// job cap, or an empty page. A page-count mismatch ends the fetch rather
// than looping.
func (a *OracleAdapter) FetchJobs(ctx context.Context) ([]model.Job, error) {
	var jobs []model.Job
	offset := 0

	for len(jobs) < a.maxJobs {
		item, err := a.fetchPage(ctx, offset)
		if err != nil {
			return nil, err
		}
		if item == nil || len(item.RequisitionList) == 0 {
			break
		}

		for _, req := range item.RequisitionList {
			if job, ok := a.parseRequisition(req); ok {
				jobs = append(jobs, job)
			}
		}

		offset += len(item.RequisitionList)
		if offset >= item.TotalJobsCount {
			break
		}
	}

	if len(jobs) > a.maxJobs {
		jobs = jobs[:a.maxJobs]
	}
	return jobs, nil
}

func (a *OracleAdapter) fetchPage(ctx context.Context, offset int) (*oracleSearchItem, error) {
	finderParts := []string{"siteNumber=" + oracleSiteNumber}
	if a.keyword != "" {
		finderParts = append(finderParts, "keyword="+a.keyword)
	}
	if a.location != "" {
		finderParts = append(finderParts, "location="+a.location)
	}
	finderParts = append(finderParts,
		fmt.Sprintf("offset=%d", offset),
		fmt.Sprintf("limit=%d", oraclePageSize),
	)

	params := url.Values{}
	params.Set("onlyData", "true")
	params.Set("expand", "requisitionList.secondaryLocations")
	params.Set("finder", "findReqs;"+strings.Join(finderParts, ","))

	reqURL := a.apiBase + "/recruitingCEJobRequisitions?" + params.Encode()
	header := http.Header{}
	header.Set("Accept", "application/json")

	var resp oracleSearchResponse
	if err := a.client.GetJSON(ctx, reqURL, header, &resp); err != nil {
		return nil, fmt.Errorf("oracle fetch at offset %d: %w", offset, err)
	}
	if len(resp.Items) == 0 {
		return nil, nil
	}
	return &resp.Items[0], nil
}

func (a *OracleAdapter) parseRequisition(req oracleRequisition) (model.Job, bool) {
	if req.ID == "" || req.Title == "" {
		return model.Job{}, false
	}

	location := req.PrimaryLocation
	for i, sec := range req.SecondaryLocations {
		if i >= 2 {
			break
		}
		if sec.Location != "" && sec.Location != req.PrimaryLocation {
			location += ", " + sec.Location
		}
	}

	var tags []string
	if req.HotJobFlag {
		tags = append(tags, "Hot Job")
	}
	if req.TrendingFlag {
		tags = append(tags, "Trending")
	}
	if wt := strings.TrimSpace(req.WorkplaceType); wt != "" {
		tags = append(tags, wt)
	}

	job := model.Job{
		UID:         model.GenerateUID("oracle", model.UIDParts{RawID: req.ID}),
		SourceGroup: "oracle",
		SourceName:  a.name,
		Title:       req.Title,
		Company:     "Oracle",
		Location:    location,
		Remote:      remoteLocation(location),
		URL:         a.careersBase + "/jobs/#en/sites/jobsearch/job/" + req.ID,
		Snippet:     extractText(req.ShortDescriptionStr),
		RawID:       req.ID,
		Tags:        tags,
	}

	if req.PostedDate != "" {
		if t, err := time.Parse("2006-01-02", req.PostedDate); err == nil {
			job.PostedAt = &t
		}
	}

	return job, true
}
