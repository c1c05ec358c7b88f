// Package search turns a query string into a ranked, deduplicated list of
// page candidates. Backends are pluggable; the resolver tries them in
// configured order and applies the reject list and domain dedup on top.
package search

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/trawlhq/trawl/internal/model"
	"github.com/trawlhq/trawl/pkg/duckduckgo"
	"github.com/trawlhq/trawl/pkg/googlecse"
	"github.com/trawlhq/trawl/pkg/searxng"
)

// Backend is a single search engine behind the resolver.
type Backend interface {
	// Name identifies the backend in logs and config.
	Name() string
	// Search returns up to max raw candidates for the query, best first.
	Search(ctx context.Context, query string, max int) ([]model.Candidate, error)
}

type searxBackend struct {
	client searxng.Client
}

// NewSearxBackend wraps a SearXNG client as a resolver backend.
func NewSearxBackend(client searxng.Client) Backend {
	return &searxBackend{client: client}
}

func (b *searxBackend) Name() string { return "searxng" }

func (b *searxBackend) Search(ctx context.Context, query string, max int) ([]model.Candidate, error) {
	resp, err := b.client.Search(ctx, query)
	if err != nil {
		return nil, eris.Wrap(err, "search: searxng backend")
	}
	candidates := make([]model.Candidate, 0, len(resp.Results))
	for _, r := range resp.Results {
		if max > 0 && len(candidates) >= max {
			break
		}
		candidates = append(candidates, model.NewCandidate(r.URL, r.Title, r.Content))
	}
	return candidates, nil
}

type duckduckgoBackend struct {
	client duckduckgo.Client
}

// NewDuckDuckGoBackend wraps a DuckDuckGo HTML client as a resolver backend.
func NewDuckDuckGoBackend(client duckduckgo.Client) Backend {
	return &duckduckgoBackend{client: client}
}

func (b *duckduckgoBackend) Name() string { return "duckduckgo" }

func (b *duckduckgoBackend) Search(ctx context.Context, query string, max int) ([]model.Candidate, error) {
	results, err := b.client.Search(ctx, query, max)
	if err != nil {
		return nil, eris.Wrap(err, "search: duckduckgo backend")
	}
	candidates := make([]model.Candidate, 0, len(results))
	for _, r := range results {
		candidates = append(candidates, model.NewCandidate(r.URL, r.Title, r.Snippet))
	}
	return candidates, nil
}

type googleCSEBackend struct {
	client googlecse.Client
}

// NewGoogleCSEBackend wraps a Programmable Search client as a resolver backend.
func NewGoogleCSEBackend(client googlecse.Client) Backend {
	return &googleCSEBackend{client: client}
}

func (b *googleCSEBackend) Name() string { return "googlecse" }

func (b *googleCSEBackend) Search(ctx context.Context, query string, max int) ([]model.Candidate, error) {
	resp, err := b.client.Search(ctx, query, max)
	if err != nil {
		return nil, eris.Wrap(err, "search: googlecse backend")
	}
	candidates := make([]model.Candidate, 0, len(resp.Items))
	for _, item := range resp.Items {
		candidates = append(candidates, model.NewCandidate(item.Link, item.Title, item.Snippet))
	}
	return candidates, nil
}
