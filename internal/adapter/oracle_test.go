package adapter

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
)

func oraclePage(t *testing.T, w http.ResponseWriter, total int, reqs []oracleRequisition) {
	t.Helper()
	resp := oracleSearchResponse{Items: []oracleSearchItem{{
		TotalJobsCount:  total,
		RequisitionList: reqs,
	}}}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		t.Fatalf("encode fixture: %v", err)
	}
}

func TestOracle_FetchJobs(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		finder := r.URL.Query().Get("finder")
		if !strings.HasPrefix(finder, "findReqs;") || !strings.Contains(finder, "siteNumber=CX_1") {
			t.Errorf("unexpected finder %q", finder)
		}

		switch calls.Add(1) {
		case 1:
			if !strings.Contains(finder, "offset=0") {
				t.Errorf("first page finder missing offset=0: %q", finder)
			}
			reqs := make([]oracleRequisition, oraclePageSize)
			for i := range reqs {
				reqs[i] = oracleRequisition{
					ID:              "1000" + string(rune('a'+i%26)),
					Title:           "Software Engineer",
					PrimaryLocation: "United States",
				}
			}
			reqs[0] = oracleRequisition{
				ID:                  "12345",
				Title:               "Software Developer 3",
				PrimaryLocation:     "Austin, TX, United States",
				PostedDate:          "2026-02-01",
				ShortDescriptionStr: "<p>Cloud infrastructure team</p>",
				WorkplaceType:       "Hybrid",
				HotJobFlag:          true,
				SecondaryLocations: []oracleLocation{
					{Location: "Seattle, WA, United States"},
				},
			}
			oraclePage(t, w, oraclePageSize+1, reqs)
		default:
			oraclePage(t, w, oraclePageSize+1, []oracleRequisition{
				{ID: "99999", Title: "Database Engineer", PrimaryLocation: "Remote, United States"},
			})
		}
	}))
	defer srv.Close()

	a := NewOracleAdapter("Oracle Careers", "software", "", 0, testTransport())
	a.SetBaseURL(srv.URL)

	jobs, err := a.FetchJobs(context.Background())
	if err != nil {
		t.Fatalf("FetchJobs: %v", err)
	}
	if len(jobs) != oraclePageSize+1 {
		t.Fatalf("got %d jobs, want %d", len(jobs), oraclePageSize+1)
	}
	if calls.Load() != 2 {
		t.Errorf("requests = %d, want 2", calls.Load())
	}

	first := jobs[0]
	if first.UID != "oracle:12345" {
		t.Errorf("uid = %q, want oracle:12345", first.UID)
	}
	if first.Location != "Austin, TX, United States, Seattle, WA, United States" {
		t.Errorf("unexpected location %q", first.Location)
	}
	if first.Snippet != "Cloud infrastructure team" {
		t.Errorf("unexpected snippet %q", first.Snippet)
	}
	if len(first.Tags) != 2 || first.Tags[0] != "Hot Job" || first.Tags[1] != "Hybrid" {
		t.Errorf("unexpected tags %v", first.Tags)
	}
	if first.PostedAt == nil {
		t.Error("PostedAt not parsed")
	}

	last := jobs[len(jobs)-1]
	if !last.Remote {
		t.Error("remote location not detected")
	}
}

func TestOracle_UIDStableAcrossFetches(t *testing.T) {
	// Scenario: the same requisition fetched in two separate cycles must
	// carry the identical uid, or dedup falls apart.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		oraclePage(t, w, 1, []oracleRequisition{
			{ID: "12345", Title: "Software Developer 3", PrimaryLocation: "Austin, TX"},
		})
	}))
	defer srv.Close()

	a := NewOracleAdapter("Oracle Careers", "", "", 0, testTransport())
	a.SetBaseURL(srv.URL)

	first, err := a.FetchJobs(context.Background())
	if err != nil {
		t.Fatalf("first fetch: %v", err)
	}
	second, err := a.FetchJobs(context.Background())
	if err != nil {
		t.Fatalf("second fetch: %v", err)
	}
	if first[0].UID != second[0].UID {
		t.Errorf("uid changed between cycles: %q vs %q", first[0].UID, second[0].UID)
	}
}

func TestOracle_MaxJobsCap(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqs := make([]oracleRequisition, oraclePageSize)
		for i := range reqs {
			reqs[i] = oracleRequisition{ID: "id", Title: "Engineer"}
		}
		oraclePage(t, w, 10_000, reqs)
	}))
	defer srv.Close()

	a := NewOracleAdapter("Oracle Careers", "", "", 30, testTransport())
	a.SetBaseURL(srv.URL)

	jobs, err := a.FetchJobs(context.Background())
	if err != nil {
		t.Fatalf("FetchJobs: %v", err)
	}
	if len(jobs) > 30 {
		t.Errorf("got %d jobs, want at most 30", len(jobs))
	}
}
