package engine

import (
	"context"
	"errors"
	"fmt"
)

// RodFetchFunc renders a page in a browser. It is injected from the
// scraper package so engine/ never imports scraper/.
type RodFetchFunc func(ctx context.Context, req *FetchRequest) (*FetchResult, error)

// RodEngine is a browser-backed engine. With forceStealth set it always
// requests stealth rendering and reports itself as "rod-stealth".
type RodEngine struct {
	fetchFunc    RodFetchFunc
	forceStealth bool
	name         string
}

// NewRodEngine creates a RodEngine around fetchFunc.
func NewRodEngine(fetchFunc RodFetchFunc, forceStealth bool) *RodEngine {
	name := "rod"
	if forceStealth {
		name = "rod-stealth"
	}
	return &RodEngine{fetchFunc: fetchFunc, forceStealth: forceStealth, name: name}
}

func (e *RodEngine) Name() string { return e.name }

func (e *RodEngine) Fetch(ctx context.Context, req *FetchRequest) (*FetchResult, error) {
	if e.fetchFunc == nil {
		return nil, &FetchError{Engine: e.name, URL: req.URL, Err: errors.New("browser not configured")}
	}

	r := *req
	if e.forceStealth {
		r.Stealth = true
	}

	result, err := e.fetchFunc(ctx, &r)
	if err != nil {
		var fe *FetchError
		if errors.As(err, &fe) {
			return nil, err
		}
		return nil, &FetchError{Engine: e.name, URL: req.URL, Temporary: ctx.Err() == nil, Err: fmt.Errorf("render: %w", err)}
	}

	result.EngineName = e.name
	return result, nil
}
