package search

import (
	"context"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trawlhq/trawl/pkg/duckduckgo"
	"github.com/trawlhq/trawl/pkg/googlecse"
	"github.com/trawlhq/trawl/pkg/searxng"
)

type fakeSearx struct {
	resp *searxng.SearchResponse
	err  error
}

func (f *fakeSearx) Search(_ context.Context, _ string, _ ...searxng.SearchOption) (*searxng.SearchResponse, error) {
	return f.resp, f.err
}

type fakeDDG struct {
	results []duckduckgo.Result
	err     error
}

func (f *fakeDDG) Search(_ context.Context, _ string, _ int) ([]duckduckgo.Result, error) {
	return f.results, f.err
}

type fakeCSE struct {
	resp *googlecse.SearchResponse
	err  error
}

func (f *fakeCSE) Search(_ context.Context, _ string, _ int) (*googlecse.SearchResponse, error) {
	return f.resp, f.err
}

func TestSearxBackendMapsResults(t *testing.T) {
	t.Parallel()

	b := NewSearxBackend(&fakeSearx{resp: &searxng.SearchResponse{
		Results: []searxng.Result{
			{URL: "https://www.example.com/a", Title: "A", Content: "first"},
			{URL: "https://other.org/b", Title: "B", Content: "second"},
		},
	}})

	assert.Equal(t, "searxng", b.Name())

	got, err := b.Search(context.Background(), "q", 0)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "https://www.example.com/a", got[0].URL)
	assert.Equal(t, "A", got[0].Title)
	assert.Equal(t, "first", got[0].Snippet)
	assert.Equal(t, "example.com", got[0].Domain)
}

func TestSearxBackendTruncatesToMax(t *testing.T) {
	t.Parallel()

	b := NewSearxBackend(&fakeSearx{resp: &searxng.SearchResponse{
		Results: []searxng.Result{
			{URL: "https://a.com/"}, {URL: "https://b.com/"}, {URL: "https://c.com/"},
		},
	}})

	got, err := b.Search(context.Background(), "q", 2)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestSearxBackendWrapsError(t *testing.T) {
	t.Parallel()

	b := NewSearxBackend(&fakeSearx{err: eris.New("connection refused")})

	_, err := b.Search(context.Background(), "q", 5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "searxng backend")
}

func TestDuckDuckGoBackendMapsResults(t *testing.T) {
	t.Parallel()

	b := NewDuckDuckGoBackend(&fakeDDG{results: []duckduckgo.Result{
		{URL: "https://go.dev/doc/", Title: "Docs", Snippet: "official"},
	}})

	assert.Equal(t, "duckduckgo", b.Name())

	got, err := b.Search(context.Background(), "q", 5)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "go.dev", got[0].Domain)
	assert.Equal(t, "official", got[0].Snippet)
}

func TestGoogleCSEBackendMapsResults(t *testing.T) {
	t.Parallel()

	b := NewGoogleCSEBackend(&fakeCSE{resp: &googlecse.SearchResponse{
		Items: []googlecse.Item{
			{Link: "https://pkg.go.dev/std", Title: "std", Snippet: "packages"},
		},
	}})

	assert.Equal(t, "googlecse", b.Name())

	got, err := b.Search(context.Background(), "q", 5)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "https://pkg.go.dev/std", got[0].URL)
	assert.Equal(t, "pkg.go.dev", got[0].Domain)
}
