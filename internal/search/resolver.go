package search

import (
	"context"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/trawlhq/trawl/internal/config"
	"github.com/trawlhq/trawl/internal/model"
	"github.com/trawlhq/trawl/internal/resilience"
)

// Resolver resolves queries against an ordered list of backends and shapes
// the raw output into ranked candidates.
type Resolver struct {
	backends   []Backend
	reject     []string
	maxResults int
	timeout    time.Duration
	retry      resilience.Policy
}

// NewResolver builds a resolver over the given backends. Backend order is
// preference order: the first backend that yields results is authoritative.
func NewResolver(backends []Backend, cfg config.SearchConfig) *Resolver {
	reject := make([]string, 0, len(cfg.RejectDomains))
	for _, d := range cfg.RejectDomains {
		d = strings.ToLower(strings.TrimSpace(d))
		if d != "" {
			reject = append(reject, d)
		}
	}

	retry := resilience.DefaultPolicy()
	if cfg.Retries >= 0 {
		retry.Attempts = cfg.Retries + 1
	}

	return &Resolver{
		backends:   backends,
		reject:     reject,
		maxResults: cfg.MaxResults,
		timeout:    time.Duration(cfg.TimeoutSecs) * time.Second,
		retry:      retry,
	}
}

// Resolve returns up to max candidates for the query, ranked best-first,
// with rejected domains removed and each domain appearing at most once.
//
// An error is returned only when every backend failed; a healthy backend
// with zero results yields an empty slice and nil error.
func (r *Resolver) Resolve(ctx context.Context, query string, max int) ([]model.Candidate, error) {
	if max <= 0 {
		max = r.maxResults
	}

	var (
		raw     []model.Candidate
		lastErr error
		healthy bool
	)

	for _, backend := range r.backends {
		if err := ctx.Err(); err != nil {
			if lastErr != nil {
				return nil, eris.Wrapf(lastErr, "search: resolve cancelled after backend failures")
			}
			return nil, eris.Wrap(err, "search: resolve cancelled")
		}

		policy := r.retry
		policy.Service = backend.Name()

		results, err := resilience.DoVal(ctx, policy, func(ctx context.Context) ([]model.Candidate, error) {
			bctx := ctx
			if r.timeout > 0 {
				var cancel context.CancelFunc
				bctx, cancel = context.WithTimeout(ctx, r.timeout)
				defer cancel()
			}
			// Ask for extra headroom so the reject filter and domain
			// dedup don't starve the final list.
			return backend.Search(bctx, query, max*2)
		})
		if err != nil {
			lastErr = err
			zap.L().Warn("search backend failed, trying next",
				zap.String("backend", backend.Name()),
				zap.Error(err))
			continue
		}

		healthy = true
		if len(results) > 0 {
			raw = results
			zap.L().Debug("search backend returned results",
				zap.String("backend", backend.Name()),
				zap.Int("count", len(results)))
			break
		}
		zap.L().Debug("search backend returned no results",
			zap.String("backend", backend.Name()))
	}

	if !healthy {
		if lastErr == nil {
			return nil, eris.New("search: no backends configured")
		}
		return nil, eris.Wrap(lastErr, "search: all backends failed")
	}

	return r.shape(raw, max), nil
}

// shape applies the reject filter, dedups by domain keeping the first
// occurrence, renumbers ranks, and truncates to max.
func (r *Resolver) shape(raw []model.Candidate, max int) []model.Candidate {
	seen := make(map[string]bool, len(raw))
	out := make([]model.Candidate, 0, len(raw))

	for _, c := range raw {
		if c.URL == "" || r.rejected(c.URL) {
			continue
		}
		domain := c.Domain
		if domain == "" {
			domain = model.NormalizeDomain(c.URL)
		}
		if domain == "" || seen[domain] {
			continue
		}
		seen[domain] = true

		c.Domain = domain
		c.Rank = len(out) + 1
		out = append(out, c)
		if max > 0 && len(out) >= max {
			break
		}
	}
	return out
}

// rejected reports whether the URL matches any reject-list entry. Entries
// are matched as case-insensitive substrings of the whole URL, so both
// bare domains ("pinterest.com") and path fragments work.
func (r *Resolver) rejected(rawURL string) bool {
	lower := strings.ToLower(rawURL)
	for _, pattern := range r.reject {
		if strings.Contains(lower, pattern) {
			return true
		}
	}
	return false
}
