// Package scraper renders pages in a pooled headless Chromium.
package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/ysmood/gson"

	"github.com/use-agent/koans/config"
	"github.com/use-agent/koans/engine"
)

// blockedResources never matter for screenplay text.
var blockedResources = map[proto.NetworkResourceType]struct{}{
	proto.NetworkResourceTypeImage:      {},
	proto.NetworkResourceTypeStylesheet: {},
	proto.NetworkResourceTypeFont:       {},
	proto.NetworkResourceTypeMedia:      {},
}

// Browser manages the browser lifecycle and the page pool.
// It is safe for concurrent use.
type Browser struct {
	browser     *rod.Browser
	pagePool    rod.Pool[rod.Page]
	cfg         config.BrowserConfig
	activePages atomic.Int32
}

// NewBrowser launches Chromium and initialises the reusable page pool.
func NewBrowser(cfg config.BrowserConfig) (*Browser, error) {
	l := launcher.New().
		Headless(cfg.Headless).
		NoSandbox(cfg.NoSandbox)

	if cfg.BrowserBin != "" {
		l = l.Bin(cfg.BrowserBin)
	}
	if cfg.Proxy != "" {
		l = l.Proxy(cfg.Proxy)
	}

	l.Set(flags.Flag("disable-blink-features"), "AutomationControlled")
	l.Delete(flags.Flag("enable-automation"))
	l.Set(flags.Flag("disable-dev-shm-usage"))
	l.Set(flags.Flag("disable-extensions"))
	l.Set(flags.Flag("no-first-run"))

	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("scraper: launch browser: %w", err)
	}
	slog.Info("browser launched", "controlURL", controlURL)

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("scraper: connect to browser: %w", err)
	}

	maxPages := cfg.MaxPages
	if maxPages <= 0 {
		maxPages = 1
	}
	slog.Info("page pool created", "maxPages", maxPages)

	cfg.MaxPages = maxPages
	return &Browser{
		browser:  browser,
		pagePool: rod.NewPagePool(maxPages),
		cfg:      cfg,
	}, nil
}

// MaxPages reports the page pool capacity.
func (b *Browser) MaxPages() int {
	return b.cfg.MaxPages
}

// ActivePages reports how many tabs are currently rendering.
func (b *Browser) ActivePages() int {
	return int(b.activePages.Load())
}

// Fetch renders req.URL and returns the resulting DOM. Its signature
// matches engine.RodFetchFunc. Hitting the per-attempt timeout is a
// temporary failure; cancellation of ctx itself is not.
//
// Stealth JS and the request hijacker are installed before navigation,
// since they only affect navigations that start after them. The deferred
// about:blank uses the page without the request context so cleanup still
// works after a timeout.
func (b *Browser) Fetch(ctx context.Context, req *engine.FetchRequest) (*engine.FetchResult, error) {
	timeout := req.Timeout
	if timeout <= 0 || (b.cfg.NavigationTimeout > 0 && timeout > b.cfg.NavigationTimeout) {
		timeout = b.cfg.NavigationTimeout
	}
	attemptCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		attemptCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	b.activePages.Add(1)
	defer b.activePages.Add(-1)

	page, err := b.pagePool.Get(func() (*rod.Page, error) {
		return b.browser.Page(proto.TargetCreateTarget{})
	})
	if err != nil {
		return nil, &engine.FetchError{Engine: "rod", URL: req.URL, Temporary: true, Err: err}
	}
	defer func() {
		if navErr := page.Navigate("about:blank"); navErr != nil {
			slog.Warn("cleanup: failed to navigate to about:blank", "error", navErr)
		}
		b.pagePool.Put(page)
	}()

	if req.Stealth {
		if _, evalErr := page.EvalOnNewDocument(stealth.JS); evalErr != nil {
			slog.Warn("stealth injection failed, proceeding without stealth", "error", evalErr)
		}
	}

	if headers := buildHeaders(req); len(headers) > 0 {
		_ = proto.NetworkSetExtraHTTPHeaders{Headers: toHeadersMap(headers)}.Call(page)
	}

	router := page.HijackRequests()
	_ = router.Add("*", "", func(h *rod.Hijack) {
		if _, blocked := blockedResources[h.Request.Type()]; blocked {
			h.Response.Fail(proto.NetworkErrorReasonBlockedByClient)
			return
		}
		h.ContinueRequest(&proto.FetchContinueRequest{})
	})
	go router.Run()
	defer func() { _ = router.Stop() }()

	p := page.Context(attemptCtx)
	if err := p.Navigate(req.URL); err != nil {
		return nil, navigationError(ctx, req.URL, err)
	}
	if err := p.WaitDOMStable(300*time.Millisecond, 0.1); err != nil {
		slog.Debug("WaitDOMStable did not converge, proceeding with current DOM", "error", err)
	}

	rawHTML, err := p.HTML()
	if err != nil {
		return nil, navigationError(ctx, req.URL, err)
	}

	finalURL := evalStringOrEmpty(p, `() => window.location.href`)
	if finalURL == "" {
		finalURL = req.URL
	}

	return &engine.FetchResult{
		HTML:       rawHTML,
		Title:      evalStringOrEmpty(p, `() => document.title`),
		StatusCode: navigationStatus(p),
		FinalURL:   finalURL,
	}, nil
}

// Close drains the page pool and kills the browser process.
func (b *Browser) Close() {
	slog.Info("browser shutting down: draining page pool")
	b.pagePool.Cleanup(func(p *rod.Page) {
		_ = p.Close()
	})
	if err := b.browser.Close(); err != nil {
		slog.Warn("browser close failed", "error", err)
	}
	slog.Info("browser shutdown complete")
}

// navigationStatus reads the HTTP status from the Navigation Timing API,
// which needs no CDP event listeners. 0 when unknown.
func navigationStatus(p *rod.Page) int {
	res, err := p.Eval(`() => {
		try {
			const entries = performance.getEntriesByType("navigation");
			if (entries.length > 0) return entries[0].responseStatus || 0;
		} catch(e) {}
		return 0;
	}`)
	if err != nil {
		return 0
	}
	return res.Value.Int()
}

func evalStringOrEmpty(p *rod.Page, js string) string {
	res, err := p.Eval(js)
	if err != nil {
		return ""
	}
	return res.Value.Str()
}

// buildHeaders merges the request headers with a search-engine Referer
// unless the caller set one.
func buildHeaders(req *engine.FetchRequest) map[string]string {
	headers := make(map[string]string, len(req.Headers)+1)
	if _, ok := req.Headers["Referer"]; !ok {
		if u, err := url.Parse(req.URL); err == nil && u.Hostname() != "" {
			headers["Referer"] = "https://www.google.com/search?q=" + url.QueryEscape(u.Hostname())
		}
	}
	for k, v := range req.Headers {
		headers[k] = v
	}
	return headers
}

// toHeadersMap converts a plain string map to proto.NetworkHeaders
// (map[string]gson.JSON).
func toHeadersMap(headers map[string]string) proto.NetworkHeaders {
	m := make(proto.NetworkHeaders, len(headers))
	for k, v := range headers {
		m[k] = gson.New(v)
	}
	return m
}

// navigationError classifies a rod failure. Everything, including the
// attempt's own deadline, may succeed on a later attempt unless the
// caller's ctx is done.
func navigationError(ctx context.Context, rawURL string, err error) error {
	return &engine.FetchError{
		Engine:    "rod",
		URL:       rawURL,
		Temporary: ctx.Err() == nil,
		Err:       err,
	}
}
