// Package model defines the core types shared across search, fetch,
// dispatch, and pipeline: candidates, fetch attempts, scrape results,
// and sessions.
package model

import (
	"net/url"
	"strings"
)

// Candidate is a search-result URL eligible for scraping. Candidates are
// created once per query resolution and are read-only thereafter.
type Candidate struct {
	URL     string `json:"url"`
	Title   string `json:"title,omitempty"`
	Snippet string `json:"snippet,omitempty"`
	Rank    int    `json:"rank"`
	Domain  string `json:"domain"`
}

// NewCandidate builds a Candidate with its normalized domain filled in.
// Rank is left zero; the resolver assigns it after filtering and dedup.
func NewCandidate(rawURL, title, snippet string) Candidate {
	return Candidate{
		URL:     strings.TrimSpace(rawURL),
		Title:   strings.TrimSpace(title),
		Snippet: strings.TrimSpace(snippet),
		Domain:  NormalizeDomain(rawURL),
	}
}

// NormalizeDomain extracts the host from a URL, lowercased, with any port
// and a leading "www." stripped. Bare inputs like "example.com/path" are
// handled by retrying with an https scheme. Returns "" for unparseable input.
func NormalizeDomain(rawURL string) string {
	raw := strings.TrimSpace(rawURL)
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	host := u.Hostname()
	if host == "" {
		u2, err2 := url.Parse("https://" + raw)
		if err2 != nil {
			return ""
		}
		host = u2.Hostname()
	}
	host = strings.ToLower(host)
	return strings.TrimPrefix(host, "www.")
}
