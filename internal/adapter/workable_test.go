package adapter

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/ncurl/jobwatch/internal/model"
)

const workableFixture = `{
	"jobs": [
		{
			"shortcode": "3F9A2B",
			"title": "Platform Engineer",
			"city": "Austin",
			"state": "TX",
			"country": "United States",
			"url": "https://apply.workable.com/acme/j/3F9A2B/",
			"shortDescription": "Own the deploy pipeline",
			"remote": false
		},
		{
			"shortcode": "",
			"title": "Malformed entry without shortcode"
		}
	]
}`

func TestWorkable_FetchJobs(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/acme" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(workableFixture))
	}))
	defer srv.Close()

	a := NewWorkableAdapter("Acme Workable", "acme", "Acme", testTransport())
	a.SetBaseURL(srv.URL)

	jobs, err := a.FetchJobs(context.Background())
	if err != nil {
		t.Fatalf("FetchJobs: %v", err)
	}
	if len(jobs) != 1 {
		t.Fatalf("got %d jobs, want 1 (malformed entry skipped)", len(jobs))
	}

	want := model.Job{
		UID:         "workable:3F9A2B",
		SourceGroup: "workable",
		SourceName:  "Acme Workable",
		Title:       "Platform Engineer",
		Company:     "Acme",
		Location:    "Austin, TX, United States",
		Remote:      false,
		URL:         "https://apply.workable.com/acme/j/3F9A2B/",
		Snippet:     "Own the deploy pipeline",
		RawID:       "3F9A2B",
	}
	if diff := cmp.Diff(want, jobs[0]); diff != "" {
		t.Errorf("job mismatch (-want +got):\n%s", diff)
	}
}

func TestWorkable_RemoteFlagAndCompanyDefault(t *testing.T) {
	fixture := `{
		"jobs": [
			{
				"shortcode": "R1",
				"title": "SRE",
				"country": "Germany",
				"url": "https://apply.workable.com/acme/j/R1/",
				"remote": true
			}
		]
	}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(fixture))
	}))
	defer srv.Close()

	a := NewWorkableAdapter("Acme Workable", "acme", "", testTransport())
	a.SetBaseURL(srv.URL)

	jobs, err := a.FetchJobs(context.Background())
	if err != nil {
		t.Fatalf("FetchJobs: %v", err)
	}
	if len(jobs) != 1 {
		t.Fatalf("got %d jobs, want 1", len(jobs))
	}
	if !jobs[0].Remote {
		t.Error("remote flag not carried through")
	}
	if jobs[0].Location != "Germany" {
		t.Errorf("location = %q, want Germany (empty parts dropped)", jobs[0].Location)
	}
	if jobs[0].Company != "acme" {
		t.Errorf("company = %q, want subdomain fallback acme", jobs[0].Company)
	}
}

func TestWorkable_ServerErrorPropagates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	a := NewWorkableAdapter("Acme Workable", "acme", "Acme", testTransport())
	a.SetBaseURL(srv.URL)

	if _, err := a.FetchJobs(context.Background()); err == nil {
		t.Fatal("expected error, got nil")
	}
}
