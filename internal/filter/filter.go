// Package filter implements the keyword relevance pipeline. Matching is a
// pure function of the job and the rules, so rule combinations can be
// tested exhaustively.
package filter

import (
	"regexp"
	"strings"
	"sync"

	"github.com/ncurl/jobwatch/internal/model"
)

// disallowedLevels are seniority tokens that trip the level gate when a
// job matches none of the configured allowed levels.
var disallowedLevels = []string{"senior", "staff", "principal", "lead", "director", "manager"}

// LevelGate optionally restricts results to configured seniority levels.
// When enabled, a job that matches none of the Allowed tokens AND matches
// a disallowed token (senior, staff, ...) is rejected. Jobs mentioning no
// level at all pass.
type LevelGate struct {
	Enabled bool
	Allowed []string
}

// Rules is the full keyword rule set applied to each job.
type Rules struct {
	IncludeKeywords []string
	ExcludeKeywords []string
	Level           LevelGate
}

var _ model.JobFilter = (*KeywordFilter)(nil)

// KeywordFilter applies Rules against a job's title, company, and snippet.
type KeywordFilter struct {
	rules Rules
}

// New returns a filter for the given rules.
func New(rules Rules) *KeywordFilter {
	return &KeywordFilter{rules: rules}
}

// Match reports whether the job passes the rules and which include
// keywords matched. Evaluation order: exclusion first (exclusion always
// wins over inclusion), then inclusion, then the level gate. An empty
// include list means no include gate; an empty exclude list excludes
// nothing.
func (f *KeywordFilter) Match(job model.Job) (bool, []string) {
	searchable := strings.ToLower(job.Title + " " + job.Snippet + " " + job.Company)

	for _, kw := range f.rules.ExcludeKeywords {
		if keywordMatches(kw, searchable) {
			return false, nil
		}
	}

	var matched []string
	if len(f.rules.IncludeKeywords) > 0 {
		for _, kw := range f.rules.IncludeKeywords {
			if keywordMatches(kw, searchable) {
				matched = append(matched, kw)
			}
		}
		if len(matched) == 0 {
			return false, nil
		}
	}

	if f.rules.Level.Enabled {
		allowed := false
		for _, term := range f.rules.Level.Allowed {
			if keywordMatches(term, searchable) {
				allowed = true
				break
			}
		}
		if !allowed {
			for _, term := range disallowedLevels {
				if keywordMatches(term, searchable) {
					return false, nil
				}
			}
		}
	}

	return true, matched
}

var (
	boundaryMu    sync.Mutex
	boundaryCache = map[string]*regexp.Regexp{}
)

// keywordMatches checks keyword against lowercased text: word-boundary
// match for single words, plain substring for multi-word phrases. A
// substring match on single words would make "go" hit "golang" and
// "category" alike.
func keywordMatches(keyword, text string) bool {
	kw := strings.ToLower(keyword)
	if kw == "" {
		return false
	}
	if strings.ContainsAny(kw, " -") {
		return strings.Contains(text, kw)
	}
	return boundaryRegexp(kw).MatchString(text)
}

func boundaryRegexp(kw string) *regexp.Regexp {
	boundaryMu.Lock()
	defer boundaryMu.Unlock()
	re, ok := boundaryCache[kw]
	if !ok {
		re = regexp.MustCompile(`\b` + regexp.QuoteMeta(kw) + `\b`)
		boundaryCache[kw] = re
	}
	return re
}
