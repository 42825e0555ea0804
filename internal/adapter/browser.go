package adapter

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/ncurl/jobwatch/internal/model"
)

const (
	defaultBrowserTimeout = 45 * time.Second
	defaultBrowserMaxJobs = 100
)

// browserListing is the shape produced by the in-page extraction script.
type browserListing struct {
	Title    string `json:"title"`
	URL      string `json:"url"`
	Location string `json:"location"`
}

var _ model.JobFetcher = (*BrowserAdapter)(nil)

// BrowserAdapter extracts jobs from career sites that render listings
// client-side or sit behind anti-bot protection, by driving a headless
// Chrome via chromedp. Every fetch acquires its own allocator and browser
// context and releases both on all exit paths, so a failed navigation
// cannot leak a rendering session.
type BrowserAdapter struct {
	source
	pageURL      string
	company      string
	waitSelector string // CSS selector that signals listings have rendered
	linkSelector string // CSS selector matching job anchors
	headless     bool
	timeout      time.Duration
	maxJobs      int
}

// BrowserOptions configures a BrowserAdapter.
type BrowserOptions struct {
	Group        string // source group, e.g. "tesla"
	PageURL      string
	Company      string
	WaitSelector string
	LinkSelector string
	Headless     bool
	Timeout      time.Duration
	MaxJobs      int
}

// NewBrowserAdapter creates a rendered-DOM adapter for one career site.
func NewBrowserAdapter(name string, opts BrowserOptions) *BrowserAdapter {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultBrowserTimeout
	}
	maxJobs := opts.MaxJobs
	if maxJobs <= 0 {
		maxJobs = defaultBrowserMaxJobs
	}
	linkSelector := opts.LinkSelector
	if linkSelector == "" {
		linkSelector = "a[href*='job']"
	}
	return &BrowserAdapter{
		source:       source{group: opts.Group, name: name},
		pageURL:      opts.PageURL,
		company:      opts.Company,
		waitSelector: opts.WaitSelector,
		linkSelector: linkSelector,
		headless:     opts.Headless,
		timeout:      timeout,
		maxJobs:      maxJobs,
	}
}

// FetchJobs renders the page and extracts listings from the DOM.
func (a *BrowserAdapter) FetchJobs(ctx context.Context) ([]model.Job, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", a.headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
	)
	allocCtx, allocCancel := chromedp.NewExecAllocator(fetchCtx, opts...)
	defer allocCancel()

	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	defer browserCancel()

	actions := []chromedp.Action{chromedp.Navigate(a.pageURL)}
	if a.waitSelector != "" {
		actions = append(actions, chromedp.WaitReady(a.waitSelector, chromedp.ByQuery))
	}

	var listings []browserListing
	actions = append(actions, chromedp.Evaluate(a.extractScript(), &listings))

	if err := chromedp.Run(browserCtx, actions...); err != nil {
		return nil, fmt.Errorf("browser fetch for %s: %w", a.name, err)
	}

	jobs := make([]model.Job, 0, len(listings))
	for _, l := range listings {
		if l.Title == "" || l.URL == "" {
			continue
		}
		jobs = append(jobs, model.Job{
			UID:         model.GenerateUID(a.group, model.UIDParts{URL: l.URL}),
			SourceGroup: a.group,
			SourceName:  a.name,
			Title:       l.Title,
			Company:     a.company,
			Location:    l.Location,
			Remote:      remoteLocation(l.Location),
			URL:         model.CanonicalizeURL(l.URL),
		})
		if len(jobs) >= a.maxJobs {
			break
		}
	}

	return jobs, nil
}

// extractScript builds the in-page extraction expression: collect anchors
// matching the link selector and report title, absolute href, and any
// sibling location text.
func (a *BrowserAdapter) extractScript() string {
	return fmt.Sprintf(`(() => {
		const seen = new Set();
		const out = [];
		for (const el of document.querySelectorAll(%q)) {
			const href = el.href || "";
			const title = (el.textContent || "").trim();
			if (!href || !title || seen.has(href)) continue;
			seen.add(href);
			const parent = el.closest("li, tr, article, div");
			let location = "";
			if (parent) {
				const loc = parent.querySelector("[class*='location'], [data-location]");
				if (loc) location = (loc.textContent || "").trim();
			}
			out.push({title: title, url: href, location: location});
		}
		return out;
	})()`, a.linkSelector)
}
