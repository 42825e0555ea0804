package adapter

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/ncurl/jobwatch/internal/model"
)

const ashbyFixture = `{
	"jobs": [
		{
			"id": "f71a1b2c",
			"title": "Staff Software Engineer",
			"location": "San Francisco, CA",
			"jobUrl": "https://jobs.ashbyhq.com/acme/f71a1b2c",
			"isRemote": true,
			"publishedAt": "2026-03-01T12:00:00Z",
			"isListed": true
		},
		{
			"id": "hidden1",
			"title": "Unlisted posting",
			"jobUrl": "https://jobs.ashbyhq.com/acme/hidden1",
			"isListed": false
		},
		{
			"id": "notitle",
			"jobUrl": "https://jobs.ashbyhq.com/acme/notitle",
			"isListed": true
		}
	]
}`

func TestAshby_FetchJobs(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/acme" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(ashbyFixture))
	}))
	defer srv.Close()

	a := NewAshbyAdapter("Acme Ashby", "acme", "Acme", testTransport())
	a.SetBaseURL(srv.URL)

	jobs, err := a.FetchJobs(context.Background())
	if err != nil {
		t.Fatalf("FetchJobs: %v", err)
	}
	if len(jobs) != 1 {
		t.Fatalf("got %d jobs, want 1 (unlisted and titleless entries skipped)", len(jobs))
	}

	got := jobs[0]
	want := model.Job{
		UID:         "ashby:f71a1b2c",
		SourceGroup: "ashby",
		SourceName:  "Acme Ashby",
		Title:       "Staff Software Engineer",
		Company:     "Acme",
		Location:    "San Francisco, CA",
		Remote:      true,
		URL:         "https://jobs.ashbyhq.com/acme/f71a1b2c",
		RawID:       "f71a1b2c",
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

func TestAshby_MissingIDFallsBackToURLUID(t *testing.T) {
	fixture := `{
		"jobs": [
			{
				"title": "Support Engineer",
				"jobUrl": "https://jobs.ashbyhq.com/acme/support",
				"isListed": true
			}
		]
	}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(fixture))
	}))
	defer srv.Close()

	a := NewAshbyAdapter("Acme Ashby", "acme", "Acme", testTransport())
	a.SetBaseURL(srv.URL)

	jobs, err := a.FetchJobs(context.Background())
	if err != nil {
		t.Fatalf("FetchJobs: %v", err)
	}
	if len(jobs) != 1 {
		t.Fatalf("got %d jobs, want 1", len(jobs))
	}
	if !strings.HasPrefix(jobs[0].UID, "ashby:url:") {
		t.Errorf("uid = %q, want ashby:url: prefix when the posting id is absent", jobs[0].UID)
	}
}

func TestAshby_ServerErrorPropagates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	a := NewAshbyAdapter("Acme Ashby", "acme", "Acme", testTransport())
	a.SetBaseURL(srv.URL)

	if _, err := a.FetchJobs(context.Background()); err == nil {
		t.Fatal("expected error, got nil")
	}
}
