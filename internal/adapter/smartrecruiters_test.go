package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/ncurl/jobwatch/internal/model"
)

const smartRecruitersFixture = `{
	"totalFound": 2,
	"content": [
		{
			"id": "744000001",
			"name": "Backend Engineer",
			"ref_url": "https://jobs.smartrecruiters.com/Acme/744000001",
			"releasedDate": "2026-04-05T09:00:00Z",
			"location": {"city": "Berlin", "country": "Germany", "remote": false}
		},
		{
			"id": "",
			"name": "Malformed entry without id"
		}
	]
}`

func TestSmartRecruiters_FetchJobs(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/Acme/postings" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(smartRecruitersFixture))
	}))
	defer srv.Close()

	a := NewSmartRecruitersAdapter("Acme SR", "Acme", "Acme", testTransport())
	a.SetBaseURL(srv.URL)

	jobs, err := a.FetchJobs(context.Background())
	if err != nil {
		t.Fatalf("FetchJobs: %v", err)
	}
	if len(jobs) != 1 {
		t.Fatalf("got %d jobs, want 1 (malformed entry skipped)", len(jobs))
	}

	got := jobs[0]
	want := model.Job{
		UID:         "smartrecruiters:744000001",
		SourceGroup: "smartrecruiters",
		SourceName:  "Acme SR",
		Title:       "Backend Engineer",
		Company:     "Acme",
		Location:    "Berlin, Germany",
		Remote:      false,
		URL:         "https://jobs.smartrecruiters.com/Acme/744000001",
		RawID:       "744000001",
	}
	if diff := cmp.Diff(want, got, cmp.FilterPath(func(p cmp.Path) bool {
		return p.String() == "PostedAt"
	}, cmp.Ignore())); diff != "" {
		t.Errorf("job mismatch (-want +got):\n%s", diff)
	}
	if got.PostedAt == nil {
		t.Error("PostedAt not parsed")
	}
}

func TestSmartRecruiters_PagesUntilTotalFound(t *testing.T) {
	const total = smartRecruitersPageSize + 5

	var requests int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
		if limit := r.URL.Query().Get("limit"); limit != strconv.Itoa(smartRecruitersPageSize) {
			t.Errorf("limit = %q, want %d", limit, smartRecruitersPageSize)
		}

		n := smartRecruitersPageSize
		if offset+n > total {
			n = total - offset
		}
		resp := smartRecruitersResponse{TotalFound: total}
		for i := 0; i < n; i++ {
			resp.Content = append(resp.Content, smartRecruitersPosting{
				ID:   fmt.Sprintf("p%d", offset+i),
				Name: fmt.Sprintf("Engineer %d", offset+i),
			})
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	a := NewSmartRecruitersAdapter("Acme SR", "Acme", "Acme", testTransport())
	a.SetBaseURL(srv.URL)

	jobs, err := a.FetchJobs(context.Background())
	if err != nil {
		t.Fatalf("FetchJobs: %v", err)
	}
	if len(jobs) != total {
		t.Errorf("got %d jobs, want %d across pages", len(jobs), total)
	}
	if requests != 2 {
		t.Errorf("made %d requests, want 2 (stop once offset reaches totalFound)", requests)
	}
}

func TestSmartRecruiters_EmptyPageStopsPagination(t *testing.T) {
	var requests int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		// Advertise a total the server never delivers.
		w.Write([]byte(`{"totalFound": 5000, "content": []}`))
	}))
	defer srv.Close()

	a := NewSmartRecruitersAdapter("Acme SR", "Acme", "Acme", testTransport())
	a.SetBaseURL(srv.URL)

	jobs, err := a.FetchJobs(context.Background())
	if err != nil {
		t.Fatalf("FetchJobs: %v", err)
	}
	if len(jobs) != 0 {
		t.Errorf("got %d jobs, want 0", len(jobs))
	}
	if requests != 1 {
		t.Errorf("made %d requests, want 1 (empty page ends the walk)", requests)
	}
}

func TestSmartRecruiters_ServerErrorPropagates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	a := NewSmartRecruitersAdapter("Acme SR", "Acme", "Acme", testTransport())
	a.SetBaseURL(srv.URL)

	if _, err := a.FetchJobs(context.Background()); err == nil {
		t.Fatal("expected error, got nil")
	}
}
