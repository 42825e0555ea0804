package model

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// maxSnippetLen bounds the stored description excerpt.
const maxSnippetLen = 2000

// UIDParts carries the optional inputs to GenerateUID's fallback tiers.
// RawID is preferred; URL and the content fields are only consulted when
// the source provides no native identifier.
type UIDParts struct {
	RawID    string
	URL      string
	Title    string
	Company  string
	Location string
	PostedAt *time.Time
}

// GenerateUID derives the stable dedup key for a posting. Three tiers:
//
//  1. "{group}:{rawID}" when the source exposes a native id
//  2. "{group}:url:{digest}" over the canonicalized URL
//  3. "{group}:hash:{digest}" over title/company/location/posted_at
//
// The result is a pure function of its inputs, so the same upstream
// posting maps to the same UID across restarts and re-fetches.
func GenerateUID(group string, parts UIDParts) string {
	if parts.RawID != "" {
		return group + ":" + parts.RawID
	}

	if parts.URL != "" {
		digest := shortDigest(group + ":" + CanonicalizeURL(parts.URL))
		return group + ":url:" + digest
	}

	posted := ""
	if parts.PostedAt != nil {
		posted = parts.PostedAt.UTC().Format(time.RFC3339)
	}
	content := fmt.Sprintf("%s:%s:%s:%s:%s", group, parts.Title, parts.Company, parts.Location, posted)
	return group + ":hash:" + shortDigest(content)
}

// CanonicalizeURL normalizes a posting URL for UID derivation: lowercase
// scheme and host, no query string or fragment, no trailing slash. Volatile
// tracking parameters would otherwise defeat UID stability.
func CanonicalizeURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	scheme := strings.ToLower(u.Scheme)
	if scheme == "" {
		scheme = "https"
	}
	host := strings.ToLower(u.Host)
	path := strings.TrimRight(u.Path, "/")
	return scheme + "://" + host + path
}

// TruncateSnippet bounds a description excerpt to maxSnippetLen runes,
// appending an ellipsis when cut.
func TruncateSnippet(s string) string {
	runes := []rune(s)
	if len(runes) <= maxSnippetLen {
		return s
	}
	return string(runes[:maxSnippetLen-3]) + "..."
}

func shortDigest(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])[:16]
}
