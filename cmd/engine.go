package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/trawlhq/trawl/internal/dispatch"
	"github.com/trawlhq/trawl/internal/fetch"
	"github.com/trawlhq/trawl/internal/model"
	"github.com/trawlhq/trawl/internal/pipeline"
	"github.com/trawlhq/trawl/internal/search"
	"github.com/trawlhq/trawl/pkg/browser"
	"github.com/trawlhq/trawl/pkg/duckduckgo"
	"github.com/trawlhq/trawl/pkg/googlecse"
	"github.com/trawlhq/trawl/pkg/searxng"
)

// engine bundles the wired collaborators for one process: resolver,
// dispatcher, phase plan, and (when the plan renders) the browser.
type engine struct {
	resolver   *search.Resolver
	dispatcher *dispatch.Dispatcher
	plan       pipeline.Plan
	renderer   *browser.Renderer // nil when the plan never renders
}

// rodRenderer adapts the browser package to the fetch tier's Renderer
// interface, keeping rod out of the fetch package's dependencies.
type rodRenderer struct {
	r *browser.Renderer
}

func (a rodRenderer) Render(ctx context.Context, url string) (*fetch.RenderResult, error) {
	page, err := a.r.Render(ctx, url)
	if err != nil {
		return nil, err
	}
	return &fetch.RenderResult{HTML: page.HTML, FinalURL: page.FinalURL, Status: page.Status}, nil
}

// initResolver builds the configured search backends and the resolver.
func initResolver() (*search.Resolver, error) {
	var backends []search.Backend
	for _, name := range cfg.Search.Backends {
		switch name {
		case "searxng":
			backends = append(backends, search.NewSearxBackend(searxng.NewClient(cfg.Search.SearxURL)))
		case "duckduckgo":
			backends = append(backends, search.NewDuckDuckGoBackend(duckduckgo.NewClient()))
		case "googlecse":
			backends = append(backends, search.NewGoogleCSEBackend(googlecse.NewClient(cfg.Search.GoogleKey, cfg.Search.GoogleCX)))
		default:
			return nil, eris.Errorf("unknown search backend %q", name)
		}
	}
	return search.NewResolver(backends, cfg.Search), nil
}

// initEngine wires the full stack. The browser is only launched when
// rendering is enabled and the plan has a phase that can reach the rendered
// tier.
func initEngine() (*engine, error) {
	resolver, err := initResolver()
	if err != nil {
		return nil, err
	}

	plan := pipeline.DefaultPlan()
	if cfg.Session.PlanPath != "" {
		plan, err = pipeline.LoadPlan(cfg.Session.PlanPath)
		if err != nil {
			return nil, err
		}
	}

	var fetchOpts []fetch.Option
	var renderer *browser.Renderer
	if cfg.Render.Enabled && plan.NeedsRender() {
		renderer, err = browser.New(
			browser.WithPoolSize(cfg.Render.PoolSize),
			browser.WithSettle(time.Duration(cfg.Render.SettleMS)*time.Millisecond),
			browser.WithNavTimeout(time.Duration(cfg.Render.NavTimeoutSecs)*time.Second),
			browser.WithBrowserBin(cfg.Render.Bin),
			browser.WithProxy(cfg.Render.Proxy),
		)
		if err != nil {
			return nil, eris.Wrap(err, "init browser")
		}
		fetchOpts = append(fetchOpts, fetch.WithRenderer(rodRenderer{renderer}))
	}

	fetcher := fetch.New(cfg.Fetch, fetchOpts...)

	return &engine{
		resolver:   resolver,
		dispatcher: dispatch.New(fetcher, cfg.Dispatch),
		plan:       plan,
		renderer:   renderer,
	}, nil
}

// sequencer builds a Sequencer for one run. Positive quota and maxResults
// override the configured values.
func (e *engine) sequencer(quota, maxResults int) *pipeline.Sequencer {
	session := cfg.Session
	if quota > 0 {
		session.Quota = quota
	}
	max := cfg.Search.MaxResults
	if maxResults > 0 {
		max = maxResults
	}
	return pipeline.New(e.resolver, e.dispatcher, e.plan, session, max)
}

// runSession executes one session, honoring per-call quota and maxResults
// overrides.
func (e *engine) runSession(ctx context.Context, query string, quota, maxResults int) *model.Session {
	return e.sequencer(quota, maxResults).Run(ctx, query)
}

// Run executes one session with the configured quota. Satisfies the bulk
// runner's SessionRunner.
func (e *engine) Run(ctx context.Context, query string) *model.Session {
	return e.runSession(ctx, query, 0, 0)
}

// Close releases the browser, if one was launched.
func (e *engine) Close() {
	if e.renderer != nil {
		e.renderer.Close()
	}
}
