package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// Chain tries engines in order and returns the first success. It escalates
// from the cheap HTTP engine to the browser only when the former fails.
//
// Unlike a race, engines never run concurrently: a bookmark crawl fetches
// one URL at a time and a second in-flight request would only add load.
type Chain struct {
	engines []Engine
}

// NewChain returns a Chain over engines. At least one engine is required.
func NewChain(engines ...Engine) *Chain {
	return &Chain{engines: engines}
}

func (c *Chain) Name() string { return "chain" }

// Fetch returns the first successful result, or the last error if every
// engine failed. A cancelled ctx stops escalation.
func (c *Chain) Fetch(ctx context.Context, req *FetchRequest) (*FetchResult, error) {
	if len(c.engines) == 0 {
		return nil, errors.New("chain: no engines configured")
	}

	var lastErr error
	for _, eng := range c.engines {
		if err := ctx.Err(); err != nil {
			if lastErr != nil {
				return nil, lastErr
			}
			return nil, err
		}

		result, err := eng.Fetch(ctx, req)
		if err == nil {
			slog.Debug("engine succeeded", "engine", eng.Name(), "url", req.URL)
			return result, nil
		}
		slog.Debug("engine failed", "engine", eng.Name(), "url", req.URL, "error", err)
		lastErr = fmt.Errorf("%s: %w", eng.Name(), err)
	}
	return nil, lastErr
}
