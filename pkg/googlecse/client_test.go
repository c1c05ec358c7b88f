package googlecse

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchSuccess(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		q := r.URL.Query()
		assert.Equal(t, "test-key", q.Get("key"))
		assert.Equal(t, "test-cx", q.Get("cx"))
		assert.Equal(t, "golang concurrency", q.Get("q"))
		assert.Equal(t, "5", q.Get("num"))

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{
			"items": [
				{"title": "Go Blog", "link": "https://go.dev/blog/", "snippet": "The Go blog.", "displayLink": "go.dev"},
				{"title": "Effective Go", "link": "https://go.dev/doc/effective_go", "snippet": "Tips.", "displayLink": "go.dev"}
			]
		}`)
	}))
	defer srv.Close()

	client := NewClient("test-key", "test-cx", WithBaseURL(srv.URL))
	resp, err := client.Search(context.Background(), "golang concurrency", 5)
	require.NoError(t, err)

	require.Len(t, resp.Items, 2)
	assert.Equal(t, "Go Blog", resp.Items[0].Title)
	assert.Equal(t, "https://go.dev/blog/", resp.Items[0].Link)
	assert.Equal(t, "go.dev", resp.Items[0].DisplayLink)
}

func TestSearchClampsNum(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		max  int
		want string
	}{
		{name: "zero defaults to cap", max: 0, want: "10"},
		{name: "negative defaults to cap", max: -3, want: "10"},
		{name: "over cap clamped", max: 25, want: "10"},
		{name: "in range preserved", max: 3, want: "3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, tt.want, r.URL.Query().Get("num"))
				fmt.Fprint(w, `{"items": []}`)
			}))
			defer srv.Close()

			client := NewClient("k", "cx", WithBaseURL(srv.URL))
			_, err := client.Search(context.Background(), "q", tt.max)
			require.NoError(t, err)
		})
	}
}

func TestSearchNoItems(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		// The API omits "items" entirely when there are no results.
		fmt.Fprint(w, `{"searchInformation": {"totalResults": "0"}}`)
	}))
	defer srv.Close()

	client := NewClient("k", "cx", WithBaseURL(srv.URL))
	resp, err := client.Search(context.Background(), "q", 5)
	require.NoError(t, err)
	assert.Empty(t, resp.Items)
}

func TestSearchErrorStatus(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, `{"error": {"code": 403, "message": "quota exceeded"}}`)
	}))
	defer srv.Close()

	client := NewClient("k", "cx", WithBaseURL(srv.URL))
	_, err := client.Search(context.Background(), "q", 5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
	assert.Contains(t, err.Error(), "quota exceeded")
}

func TestSearchMalformedJSON(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"items": [`)
	}))
	defer srv.Close()

	client := NewClient("k", "cx", WithBaseURL(srv.URL))
	_, err := client.Search(context.Background(), "q", 5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unmarshal")
}

func TestSearchContextCancellation(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(2 * time.Second)
		fmt.Fprint(w, `{"items": []}`)
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	client := NewClient("k", "cx", WithBaseURL(srv.URL))
	_, err := client.Search(ctx, "q", 5)
	require.Error(t, err)
}

func TestWithHTTPClient(t *testing.T) {
	t.Parallel()

	custom := &http.Client{Timeout: 2 * time.Second}
	client := NewClient("k", "cx", WithHTTPClient(custom))

	hc, ok := client.(*httpClient)
	require.True(t, ok)
	assert.Same(t, custom, hc.http)
}
