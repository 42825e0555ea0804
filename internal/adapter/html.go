package adapter

import (
	stdhtml "html"
	"strings"

	"golang.org/x/net/html"
)

// extractText converts an HTML or HTML-encoded fragment to plain text.
// Entities are unescaped first (handles Greenhouse's double-encoding;
// no-op on already-real HTML), then tags are dropped and whitespace
// collapsed. Used to turn upstream description markup into Job snippets.
func extractText(fragment string) string {
	unescaped := stdhtml.UnescapeString(fragment)
	tokenizer := html.NewTokenizer(strings.NewReader(unescaped))
	var parts []string
	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			return strings.Join(parts, " ")
		case html.TextToken:
			text := strings.TrimSpace(string(tokenizer.Text()))
			if text != "" {
				parts = append(parts, strings.Join(strings.Fields(text), " "))
			}
		}
	}
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
