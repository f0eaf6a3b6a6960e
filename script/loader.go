package script

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/use-agent/koans/cache"
	"github.com/use-agent/koans/decorate"
	"github.com/use-agent/koans/engine"
	"github.com/use-agent/koans/metrics"
)

// LoaderConfig tunes fetching and caching.
type LoaderConfig struct {
	// DefaultURL is loaded when Load is called with an empty URL.
	DefaultURL string

	// Timeout is the per-attempt fetch deadline.
	Timeout time.Duration

	// Retries is the number of extra attempts after a temporary failure.
	Retries       int
	RetryDelay    time.Duration
	RetryMaxDelay time.Duration

	// CacheEntries and CacheTTL bound the parsed document cache.
	CacheEntries int
	CacheTTL     time.Duration
}

// Loader fetches screenplay pages and returns parsed documents. Documents
// are shared between callers and must be treated as read-only.
type Loader struct {
	defaultURL  string
	timeout     time.Duration
	docs        *cache.Cache[*goquery.Document]
	fetch       *decorate.Callable[string, *goquery.Document]
	loadDefault *decorate.Callable[struct{}, *goquery.Document]
}

// NewLoader builds a Loader on top of eng. Call Close to stop the cache's
// cleanup goroutine.
func NewLoader(eng engine.Engine, cfg LoaderConfig) *Loader {
	if cfg.DefaultURL == "" {
		cfg.DefaultURL = DefaultURL
	}
	l := &Loader{
		defaultURL: cfg.DefaultURL,
		timeout:    cfg.Timeout,
		docs:       cache.New[*goquery.Document](cfg.CacheEntries, cfg.CacheTTL, time.Minute),
	}

	fetch := decorate.New("script.fetch", "Fetch and parse a screenplay page.",
		func(ctx context.Context, url string) (*goquery.Document, error) {
			res, err := eng.Fetch(ctx, &engine.FetchRequest{URL: url, Timeout: l.timeout})
			if err != nil {
				return nil, err
			}
			return Parse(res.HTML)
		})

	l.fetch = decorate.Apply(fetch,
		decorate.Retry[string, *goquery.Document](cfg.Retries,
			decorate.On(engine.IsTemporary),
			decorate.WithBackoff(cfg.RetryDelay, cfg.RetryMaxDelay, 2),
			decorate.WithObserver(func(attempt int, err error) {
				slog.Warn("screenplay fetch failed", "attempt", attempt, "error", err)
			}),
		),
		decorate.Post[string](HasScript),
	)

	l.loadDefault = decorate.Once(decorate.Thunk("script.load_default",
		"Load the default screenplay once and keep it.",
		func(ctx context.Context) (*goquery.Document, error) {
			return l.loadURL(ctx, l.defaultURL)
		}))

	return l
}

// DefaultURL returns the URL loaded for empty requests.
func (l *Loader) DefaultURL() string { return l.defaultURL }

// Load returns the parsed document at url, or the default screenplay when
// url is empty or equal to the default URL. A page without a screenplay
// block fails with ErrNoScript.
func (l *Loader) Load(ctx context.Context, url string) (*goquery.Document, error) {
	if url == "" || url == l.defaultURL {
		return decorate.Run(ctx, l.loadDefault)
	}
	return l.loadURL(ctx, url)
}

// Close releases the document cache.
func (l *Loader) Close() {
	l.docs.Close()
}

func (l *Loader) loadURL(ctx context.Context, url string) (*goquery.Document, error) {
	key := cache.Key("script", url)
	if doc, ok := l.docs.Get(key); ok {
		metrics.CacheLookups.WithLabelValues("hit").Inc()
		return doc, nil
	}
	metrics.CacheLookups.WithLabelValues("miss").Inc()

	doc, err := l.fetch.Call(ctx, url)
	if err != nil {
		if errors.Is(err, decorate.ErrPostconditionFailed) {
			return nil, fmt.Errorf("%w: %s", ErrNoScript, url)
		}
		return nil, err
	}
	l.docs.Set(key, doc)
	return doc, nil
}
