package adapter

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/ncurl/jobwatch/internal/model"
	"github.com/ncurl/jobwatch/internal/transport"
)

const defaultHNFeedURL = "https://hnrss.org/whoishiring/jobs"

// hnFeed mirrors the hnrss.org RSS document.
type hnFeed struct {
	XMLName xml.Name  `xml:"rss"`
	Items   []hnEntry `xml:"channel>item"`
}

type hnEntry struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	Description string `xml:"description"`
	PubDate     string `xml:"pubDate"`
}

var _ model.JobFetcher = (*HNHiringAdapter)(nil)

// HNHiringAdapter fetches the HN "Who is hiring" thread via the hnrss.org
// feed. Posts have no native ids, so UIDs come from the item URL tier.
type HNHiringAdapter struct {
	source
	feedURL string
	client  *transport.Client
}

// NewHNHiringAdapter creates an adapter for the HN hiring feed. An empty
// feedURL uses the default hnrss.org endpoint.
func NewHNHiringAdapter(name, feedURL string, client *transport.Client) *HNHiringAdapter {
	if feedURL == "" {
		feedURL = defaultHNFeedURL
	}
	return &HNHiringAdapter{
		source:  source{group: "hn", name: name},
		feedURL: feedURL,
		client:  client,
	}
}

// FetchJobs retrieves and parses the feed. Individual malformed entries
// are skipped; an unparsable document yields an error for the cycle.
func (a *HNHiringAdapter) FetchJobs(ctx context.Context) ([]model.Job, error) {
	resp, err := a.client.Do(ctx, transport.Request{Method: http.MethodGet, URL: a.feedURL})
	if err != nil {
		return nil, fmt.Errorf("hn hiring fetch: %w", err)
	}

	var feed hnFeed
	if err := xml.Unmarshal(resp.Body, &feed); err != nil {
		return nil, fmt.Errorf("hn hiring feed decode: %w", err)
	}

	jobs := make([]model.Job, 0, len(feed.Items))
	for _, entry := range feed.Items {
		if entry.Link == "" {
			continue
		}

		headline := entry.Title
		if headline == "" {
			headline = entry.Description
		}
		company, title := parseHNHeadline(headline)
		if title == "" {
			continue
		}

		job := model.Job{
			UID:         model.GenerateUID("hn", model.UIDParts{URL: entry.Link}),
			SourceGroup: "hn",
			SourceName:  a.name,
			Title:       title,
			Company:     company,
			URL:         entry.Link,
			Snippet:     extractText(entry.Description),
			Remote:      containsFold(headline, "remote"),
		}
		if entry.PubDate != "" {
			if t, err := time.Parse(time.RFC1123Z, entry.PubDate); err == nil {
				job.PostedAt = &t
			}
		}

		jobs = append(jobs, job)
	}

	return jobs, nil
}

// parseHNHeadline splits the conventional "Company | Role | Location | ..."
// first line of an HN hiring post. Posts without the pipe convention fall
// back to the whole line as the title and the leading words as the company.
func parseHNHeadline(headline string) (company, title string) {
	firstLine := strings.TrimSpace(strings.SplitN(headline, "\n", 2)[0])
	if firstLine == "" {
		return "", ""
	}

	if strings.Contains(firstLine, "|") {
		parts := strings.Split(firstLine, "|")
		company = strings.TrimSpace(parts[0])
		if len(parts) >= 2 && strings.TrimSpace(parts[1]) != "" {
			title = strings.TrimSpace(parts[1])
		} else {
			title = firstLine
		}
		return company, title
	}

	words := strings.Fields(firstLine)
	n := len(words)
	if n > 3 {
		n = 3
	}
	return strings.Join(words[:n], " "), firstLine
}
