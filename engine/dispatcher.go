package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/use-agent/koans/metrics"
)

// Dispatcher races engines with staged escalation: engines[i] starts
// escalationDelays[i] after the race begins, and the first success wins.
// It implements Engine, so callers need not know how many engines back it.
type Dispatcher struct {
	engines          []Engine
	escalationDelays []time.Duration
	memory           *DomainMemory
}

// NewDispatcher creates a Dispatcher. Missing delays default to 0. memory
// may be nil to disable per-domain engine memory.
func NewDispatcher(engines []Engine, escalationDelays []time.Duration, memory *DomainMemory) *Dispatcher {
	delays := make([]time.Duration, len(engines))
	copy(delays, escalationDelays)
	return &Dispatcher{
		engines:          engines,
		escalationDelays: delays,
		memory:           memory,
	}
}

func (d *Dispatcher) Name() string { return "dispatcher" }

// Fetch tries the engine remembered for the URL's domain first, then falls
// back to the full race. With several failures, the error of the lowest
// tier that failed permanently wins over temporary ones so callers do not
// retry a page that will never load.
func (d *Dispatcher) Fetch(ctx context.Context, req *FetchRequest) (*FetchResult, error) {
	if len(d.engines) == 0 {
		return nil, &FetchError{Engine: d.Name(), URL: req.URL, Err: errors.New("no engines configured")}
	}
	if len(d.engines) == 1 {
		return timedFetch(ctx, d.engines[0], req)
	}

	domain := extractDomain(req.URL)
	if remembered := d.memory.Get(domain); remembered != "" {
		for _, eng := range d.engines {
			if eng.Name() != remembered {
				continue
			}
			slog.Debug("domain memory hit", "domain", domain, "engine", remembered)
			result, err := timedFetch(ctx, eng, req)
			if err == nil {
				return result, nil
			}
			slog.Info("remembered engine failed, running full race",
				"domain", domain, "engine", remembered, "error", err)
			d.memory.Delete(domain)
			break
		}
	}

	return d.race(ctx, req, domain)
}

func (d *Dispatcher) race(ctx context.Context, req *FetchRequest, domain string) (*FetchResult, error) {
	type raceResult struct {
		result *FetchResult
		err    error
	}

	raceCtx, raceCancel := context.WithCancel(ctx)
	defer raceCancel()

	results := make(chan raceResult, len(d.engines))
	var wg sync.WaitGroup

	for i, eng := range d.engines {
		wg.Add(1)
		go func(e Engine, delay time.Duration) {
			defer wg.Done()

			if delay > 0 {
				timer := time.NewTimer(delay)
				select {
				case <-raceCtx.Done():
					timer.Stop()
					return
				case <-timer.C:
				}
			}
			if raceCtx.Err() != nil {
				return
			}

			slog.Debug("engine starting", "engine", e.Name(), "url", req.URL)
			result, err := timedFetch(raceCtx, e, req)
			if err != nil {
				slog.Debug("engine failed", "engine", e.Name(), "url", req.URL, "error", err)
			}
			results <- raceResult{result: result, err: err}
		}(eng, d.escalationDelays[i])
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	var permanentErr, lastErr error
	for rr := range results {
		if rr.err != nil {
			lastErr = rr.err
			if permanentErr == nil && !IsTemporary(rr.err) {
				permanentErr = rr.err
			}
			continue
		}
		raceCancel()
		slog.Info("engine won race", "engine", rr.result.EngineName, "url", req.URL)
		d.memory.Set(domain, rr.result.EngineName)
		return rr.result, nil
	}

	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if permanentErr != nil {
		return nil, permanentErr
	}
	if lastErr == nil {
		lastErr = &FetchError{Engine: d.Name(), URL: req.URL, Err: fmt.Errorf("all engines failed")}
	}
	return nil, lastErr
}

// timedFetch runs one engine and records its latency.
func timedFetch(ctx context.Context, e Engine, req *FetchRequest) (*FetchResult, error) {
	start := time.Now()
	result, err := e.Fetch(ctx, req)
	metrics.FetchDuration.WithLabelValues(e.Name()).Observe(time.Since(start).Seconds())
	return result, err
}

// extractDomain parses the hostname from a URL string.
func extractDomain(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	return u.Hostname()
}
