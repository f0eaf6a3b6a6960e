package engine

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Engine is the interface that all page fetch engines implement.
type Engine interface {
	// Name returns the engine identifier (e.g. "http", "rod", "rod-stealth").
	Name() string

	// Fetch retrieves the page for the given request.
	Fetch(ctx context.Context, req *FetchRequest) (*FetchResult, error)
}

// FetchRequest contains everything an engine needs to fetch a page.
type FetchRequest struct {
	URL     string
	Headers map[string]string
	Timeout time.Duration
	Stealth bool
}

// FetchResult is the output of a successful fetch.
type FetchResult struct {
	HTML       string
	Title      string
	StatusCode int
	FinalURL   string
	EngineName string
}

// FetchError describes a failed fetch. Temporary marks failures worth
// retrying: transport errors and 5xx responses. Client errors and non-HTML
// responses are permanent.
type FetchError struct {
	Engine     string
	URL        string
	StatusCode int
	Temporary  bool
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: fetch %s: status %d: %v", e.Engine, e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: fetch %s: %v", e.Engine, e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// IsTemporary reports whether err is a FetchError marked Temporary. The
// engine that built the error decides; a per-attempt deadline it set
// itself stays temporary. A bare context error is never temporary.
func IsTemporary(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe) && fe.Temporary
}
