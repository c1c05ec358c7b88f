// Package browser drives a shared headless Chrome instance for the rendered
// fetch tier. One Renderer owns the browser process and a small page pool;
// each render borrows a tab, navigates, waits for the DOM to settle, and
// hands the result back as HTML.
package browser

import (
	"sync/atomic"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Result is a rendered page.
type Result struct {
	HTML     string
	FinalURL string
	Status   int
}

// Renderer owns a browser process and a bounded tab pool. Safe for
// concurrent use; the pool caps how many renders run at once.
type Renderer struct {
	browser *rod.Browser
	pool    rod.Pool[rod.Page]
	opts    options
	active  atomic.Int32
}

type options struct {
	poolSize   int
	settle     time.Duration
	navTimeout time.Duration
	browserBin string
	proxy      string
	controlURL string
	stealth    bool
	headless   bool
}

// Option configures a Renderer.
type Option func(*options)

// WithPoolSize bounds the number of concurrently open tabs. Values below one
// are ignored.
func WithPoolSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.poolSize = n
		}
	}
}

// WithSettle sets how long the DOM must stay quiet before a page counts as
// loaded.
func WithSettle(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.settle = d
		}
	}
}

// WithNavTimeout bounds a single page load end to end.
func WithNavTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.navTimeout = d
		}
	}
}

// WithBrowserBin points at a specific Chrome or Chromium binary instead of
// the one the launcher downloads.
func WithBrowserBin(path string) Option {
	return func(o *options) {
		o.browserBin = path
	}
}

// WithProxy routes all browser traffic through the given proxy.
func WithProxy(addr string) Option {
	return func(o *options) {
		o.proxy = addr
	}
}

// WithControlURL attaches to an already-running browser over CDP instead of
// launching one.
func WithControlURL(u string) Option {
	return func(o *options) {
		o.controlURL = u
	}
}

// WithStealth toggles the anti-automation script injected into every page.
// On by default.
func WithStealth(enabled bool) Option {
	return func(o *options) {
		o.stealth = enabled
	}
}

// WithHeadful runs the browser with a visible window, for debugging renders
// locally.
func WithHeadful() Option {
	return func(o *options) {
		o.headless = false
	}
}

func newOptions(opts ...Option) options {
	o := options{
		poolSize:   2,
		settle:     300 * time.Millisecond,
		navTimeout: 20 * time.Second,
		stealth:    true,
		headless:   true,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// New launches a browser (or attaches to one via WithControlURL) and
// prepares the tab pool. Call Close on shutdown to avoid orphaned Chrome
// processes.
func New(opts ...Option) (*Renderer, error) {
	o := newOptions(opts...)

	controlURL := o.controlURL
	if controlURL == "" {
		var err error
		if controlURL, err = launch(o); err != nil {
			return nil, err
		}
	}

	b := rod.New().ControlURL(controlURL)
	if err := b.Connect(); err != nil {
		return nil, eris.Wrap(err, "browser: connect")
	}
	zap.L().Info("browser ready",
		zap.Int("pool_size", o.poolSize),
		zap.Bool("stealth", o.stealth),
	)

	return &Renderer{
		browser: b,
		pool:    rod.NewPagePool(o.poolSize),
		opts:    o,
	}, nil
}

// launch starts a Chrome process. The flag set quiets the surfaces
// anti-bot scripts probe for and keeps background tabs from being
// throttled mid-render.
func launch(o options) (string, error) {
	l := launcher.New().
		Headless(o.headless).
		NoSandbox(true)

	if o.browserBin != "" {
		l = l.Bin(o.browserBin)
	}
	if o.proxy != "" {
		l = l.Proxy(o.proxy)
	}

	l.Set(flags.Flag("disable-blink-features"), "AutomationControlled")
	l.Delete(flags.Flag("enable-automation"))
	l.Set(flags.Flag("disable-features"), "AudioServiceOutOfProcess,TranslateUI")
	l.Set(flags.Flag("disable-background-timer-throttling"))
	l.Set(flags.Flag("disable-backgrounding-occluded-windows"))
	l.Set(flags.Flag("disable-renderer-backgrounding"))
	l.Set(flags.Flag("disable-component-update"))
	l.Set(flags.Flag("disable-default-apps"))
	l.Set(flags.Flag("disable-dev-shm-usage"))
	l.Set(flags.Flag("disable-extensions"))
	l.Set(flags.Flag("disable-popup-blocking"))
	l.Set(flags.Flag("no-first-run"))

	controlURL, err := l.Launch()
	if err != nil {
		return "", eris.Wrap(err, "browser: launch")
	}
	return controlURL, nil
}

// ActivePages reports how many tabs are rendering right now.
func (r *Renderer) ActivePages() int {
	return int(r.active.Load())
}

// Close drains the tab pool and shuts the browser down.
func (r *Renderer) Close() {
	r.pool.Cleanup(func(p *rod.Page) {
		_ = p.Close()
	})
	if err := r.browser.Close(); err != nil {
		zap.L().Warn("browser close", zap.Error(err))
	}
}
