package browser

import (
	"context"
	"net/url"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/rotisserie/eris"
	"github.com/ysmood/gson"
	"go.uber.org/zap"
)

// Render loads target in a pooled tab and returns the settled DOM. The call
// is bounded by the navigation timeout; ctx can cancel it earlier.
//
// Ordering inside matters: the stealth script and extra headers only apply
// to navigations that happen after they are installed, and cleanup runs on
// the original page handle so an expired ctx cannot leak the tab.
func (r *Renderer) Render(ctx context.Context, target string) (*Result, error) {
	ctx, cancel := context.WithTimeout(ctx, r.opts.navTimeout)
	defer cancel()

	r.active.Add(1)
	defer r.active.Add(-1)

	page, err := r.pool.Get(func() (*rod.Page, error) {
		return r.browser.Page(proto.TargetCreateTarget{})
	})
	if err != nil {
		return nil, eris.Wrap(err, "browser: acquire page")
	}
	defer func() {
		// about:blank drops the old DOM before the tab goes back in the
		// pool. Uses the original handle, not the ctx-bound one, so the
		// reset still runs after a timeout.
		if err := page.Navigate("about:blank"); err != nil {
			zap.L().Warn("browser page reset failed", zap.Error(err))
		}
		r.pool.Put(page)
	}()

	if r.opts.stealth {
		if _, err := page.EvalOnNewDocument(stealth.JS); err != nil {
			zap.L().Warn("stealth injection failed, rendering without it",
				zap.Error(err))
		}
	}

	// A direct visit with no Referer is itself a bot signal.
	if ref := searchReferer(target); ref != "" {
		_ = proto.NetworkSetExtraHTTPHeaders{
			Headers: proto.NetworkHeaders{"Referer": gson.New(ref)},
		}.Call(page)
	}

	p := page.Context(ctx)

	if err := p.Navigate(target); err != nil {
		return nil, eris.Wrap(err, "browser: navigate")
	}
	if err := p.WaitDOMStable(r.opts.settle, 0.1); err != nil {
		zap.L().Debug("DOM did not settle, using current state",
			zap.String("url", target), zap.Error(err))
	}

	removeOverlays(p)

	html, err := p.HTML()
	if err != nil {
		return nil, eris.Wrap(err, "browser: extract html")
	}

	res := &Result{
		HTML:     html,
		Status:   navigationStatus(p),
		FinalURL: evalString(p, `() => window.location.href`),
	}
	if res.FinalURL == "" {
		res.FinalURL = target
	}
	return res, nil
}

// navigationStatus reads the HTTP status of the main navigation from the
// performance timeline. CDP network listeners conflict with request
// interception on recent Chromium, so this stays listener-free. Zero means
// the status could not be determined.
func navigationStatus(p *rod.Page) int {
	res, err := p.Eval(`() => {
		try {
			const entries = performance.getEntriesByType("navigation");
			if (entries.length > 0) return entries[0].responseStatus || 0;
		} catch (e) {}
		return 0;
	}`)
	if err != nil {
		return 0
	}
	return res.Value.Int()
}

// removeOverlays strips cookie walls, consent modals, and other fixed
// overlays. They sit exactly on top of the text the extractors want, and on
// some sites they are most of the visible DOM.
func removeOverlays(p *rod.Page) {
	const script = `() => {
		for (const el of document.querySelectorAll('*')) {
			const s = window.getComputedStyle(el);
			if (s.position !== 'fixed' && s.position !== 'sticky') continue;
			const z = parseInt(s.zIndex, 10);
			if (z >= 900 || s.zIndex === 'auto') el.remove();
		}
		const hints = ['cookie', 'consent', 'gdpr', 'overlay', 'popup'];
		for (const hint of hints) {
			const sel = '[class*="' + hint + '"], [id*="' + hint + '"]';
			for (const el of document.querySelectorAll(sel)) {
				const s = window.getComputedStyle(el);
				if (s.position === 'fixed' || s.position === 'sticky' || s.position === 'absolute') {
					el.remove();
				}
			}
		}
		document.documentElement.style.overflow = '';
		document.body.style.overflow = '';
	}`
	_, _ = p.Eval(script)
}

func evalString(p *rod.Page, js string) string {
	res, err := p.Eval(js)
	if err != nil {
		return ""
	}
	return res.Value.Str()
}

// searchReferer fabricates a plausible search-result Referer for the target.
// Empty when the URL has no usable host.
func searchReferer(target string) string {
	u, err := url.Parse(target)
	if err != nil || u.Hostname() == "" {
		return ""
	}
	return "https://www.google.com/search?q=" + url.QueryEscape(u.Hostname())
}
