// Package fetch retrieves candidate pages through an escalating ladder of
// tiers: a plain HTTP GET, a readability pass over the same bytes, and a
// headless render for pages that resist both. A fetch never retries; a
// candidate gets exactly one pass through the ladder.
package fetch

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/trawlhq/trawl/internal/config"
	"github.com/trawlhq/trawl/internal/extract"
	"github.com/trawlhq/trawl/internal/model"
	"github.com/trawlhq/trawl/internal/resilience"
)

// Renderer is the headless browser behind the rendered tier. Implementations
// bound their own navigation time; ctx cancels mid-flight.
type Renderer interface {
	Render(ctx context.Context, url string) (*RenderResult, error)
}

// RenderResult is the outcome of a headless page load.
type RenderResult struct {
	HTML     string
	FinalURL string
	Status   int
}

// Fetcher runs the tier ladder for single candidates. Safe for concurrent
// use; the dispatcher runs many fetches at once over one Fetcher.
type Fetcher struct {
	cfg      config.FetchConfig
	client   *http.Client
	renderer Renderer
	breaker  *resilience.Breaker
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithRenderer enables the rendered tier.
func WithRenderer(r Renderer) Option {
	return func(f *Fetcher) {
		f.renderer = r
	}
}

// WithHTTPClient overrides the direct-tier HTTP client (for testing).
func WithHTTPClient(c *http.Client) Option {
	return func(f *Fetcher) {
		f.client = c
	}
}

// New creates a Fetcher. Without WithRenderer the ladder tops out at the
// extracted tier regardless of ceiling.
func New(cfg config.FetchConfig, opts ...Option) *Fetcher {
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = 2 << 20
	}
	f := &Fetcher{
		cfg:    cfg,
		client: NewHTTPClient(cfg),
		// Renderer failures are expensive; back off after a short streak.
		breaker: resilience.NewBreaker(3, time.Minute, 2*time.Minute),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch runs the tier ladder for one candidate, capped at ceiling. The
// returned result is nil unless some tier cleared the quality bar; the
// attempt records the deepest tier reached and how the fetch ended.
func (f *Fetcher) Fetch(ctx context.Context, cand model.Candidate, ceiling model.Tier) (*model.ScrapeResult, model.FetchAttempt) {
	start := time.Now()
	attempt := model.FetchAttempt{Candidate: cand, Tier: model.TierDirect}

	fail := func(outcome model.Outcome, err error) (*model.ScrapeResult, model.FetchAttempt) {
		attempt.Outcome = outcome
		attempt.ElapsedMS = time.Since(start).Milliseconds()
		if err != nil {
			attempt.Err = err.Error()
		}
		return nil, attempt
	}

	if err := ctx.Err(); err != nil {
		return fail(model.OutcomeCancelled, err)
	}

	page, err := f.get(ctx, cand.URL)
	if err != nil {
		return fail(transportOutcome(err), err)
	}

	if page.contentType != "" && !isHTML(page.contentType) {
		return fail(model.OutcomeNonHTML, eris.Errorf("fetch: content type %q", page.contentType))
	}

	if blocked, blockType := DetectBlock(page.status, page.header, page.body); blocked {
		// Rendering clears some challenges; the cheap tiers never will.
		if ceiling.Allows(model.TierRendered) && f.canRender() {
			if err := ctx.Err(); err != nil {
				return fail(model.OutcomeCancelled, err)
			}
			attempt.Tier = model.TierRendered
			if content := f.renderTier(ctx, cand.URL); content != nil {
				return f.success(cand, content, model.TierRendered, page.contentType, start, &attempt), attempt
			}
		}
		return fail(model.OutcomeBlocked, eris.Errorf("fetch: blocked (%s)", blockType))
	}

	if page.status != http.StatusOK {
		return fail(model.OutcomeExtractionFailed, eris.Errorf("fetch: status %d", page.status))
	}

	htmlBody := string(DecodeBody(page.body, page.contentType))

	content, cerr := extract.FromHTML(htmlBody, cand.URL)
	if cerr == nil && f.qualityOK(len(page.body), content.Text) && !needsRender(htmlBody, len(content.Text)) {
		return f.success(cand, content, model.TierDirect, page.contentType, start, &attempt), attempt
	}

	if ceiling.Allows(model.TierExtracted) {
		if err := ctx.Err(); err != nil {
			return fail(model.OutcomeCancelled, err)
		}
		attempt.Tier = model.TierExtracted
		if article, ok := extract.ReadableArticle(htmlBody, cand.URL); ok && len(article.Text) >= f.cfg.MinTextChars {
			return f.success(cand, article, model.TierExtracted, page.contentType, start, &attempt), attempt
		}
	}

	if ceiling.Allows(model.TierRendered) && f.canRender() {
		if err := ctx.Err(); err != nil {
			return fail(model.OutcomeCancelled, err)
		}
		attempt.Tier = model.TierRendered
		if rendered := f.renderTier(ctx, cand.URL); rendered != nil {
			return f.success(cand, rendered, model.TierRendered, page.contentType, start, &attempt), attempt
		}
	}

	return fail(model.OutcomeExtractionFailed, eris.New("fetch: no tier cleared the quality bar"))
}

type page struct {
	status      int
	header      http.Header
	contentType string
	body        []byte
}

func (f *Fetcher) get(ctx context.Context, url string) (*page, error) {
	// Stage-level bound: a hanging server must not eat the whole site
	// budget before the heavier tiers get a turn.
	if f.cfg.TimeoutSecs > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(f.cfg.TimeoutSecs)*time.Second)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, eris.Wrap(err, "fetch: create request")
	}
	browserHeaders(req, f.cfg.UserAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "fetch: request failed")
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(io.LimitReader(resp.Body, int64(f.cfg.MaxBodyBytes)))
	if err != nil {
		return nil, eris.Wrap(err, "fetch: read body")
	}

	return &page{
		status:      resp.StatusCode,
		header:      resp.Header,
		contentType: resp.Header.Get("Content-Type"),
		body:        body,
	}, nil
}

// qualityOK applies the direct-tier bar: body big enough, prose long enough.
func (f *Fetcher) qualityOK(bodyBytes int, text string) bool {
	return bodyBytes >= f.cfg.MinBodyBytes && len(text) >= f.cfg.MinTextChars
}

func (f *Fetcher) canRender() bool {
	return f.renderer != nil && f.breaker.Allow()
}

// renderTier runs the headless renderer and extracts from the rendered DOM.
// nil means the render failed or produced nothing above the bar.
func (f *Fetcher) renderTier(ctx context.Context, url string) *extract.Content {
	result, err := f.renderer.Render(ctx, url)
	if err != nil {
		f.breaker.RecordFailure()
		zap.L().Debug("render failed", zap.String("url", url), zap.Error(err))
		return nil
	}
	f.breaker.RecordSuccess()

	content, err := extract.FromHTML(result.HTML, url)
	if err != nil || len(content.Text) < f.cfg.MinTextChars {
		return nil
	}
	return content
}

func (f *Fetcher) success(cand model.Candidate, c *extract.Content, tier model.Tier, contentType string, start time.Time, attempt *model.FetchAttempt) *model.ScrapeResult {
	attempt.Tier = tier
	attempt.Outcome = model.OutcomeSuccess
	attempt.ElapsedMS = time.Since(start).Milliseconds()

	title := c.Title
	if title == "" {
		title = cand.Title
	}
	return &model.ScrapeResult{
		Candidate:   cand,
		Title:       title,
		Text:        c.Text,
		Markdown:    c.Markdown,
		ContentType: contentType,
		Tier:        tier,
		Payload:     c.Payload,
		ElapsedMS:   attempt.ElapsedMS,
		FetchedAt:   time.Now().UTC(),
	}
}

func isHTML(contentType string) bool {
	lower := strings.ToLower(contentType)
	return strings.Contains(lower, "text/html") || strings.Contains(lower, "application/xhtml")
}

// transportOutcome maps a transport-level error onto the attempt taxonomy.
func transportOutcome(err error) model.Outcome {
	switch {
	case errors.Is(err, context.Canceled):
		return model.OutcomeCancelled
	case errors.Is(err, context.DeadlineExceeded):
		return model.OutcomeTimeout
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return model.OutcomeTimeout
	}
	return model.OutcomeExtractionFailed
}
