package enrich

import (
	"context"
	"log/slog"
	"time"

	"github.com/dgallion1/resumeforge/internal/resume"
)

// Client wraps a Provider with a reply cache, a per-call timeout and
// latency statistics. It makes exactly one provider call per Enrich; retry
// policy belongs to the caller.
type Client struct {
	provider Provider
	cache    Cache // optional
	timeout  time.Duration
	stats    *LLMStats
	log      *slog.Logger
}

func NewClient(provider Provider, cache Cache, timeout time.Duration, log *slog.Logger) *Client {
	return &Client{
		provider: provider,
		cache:    cache,
		timeout:  timeout,
		stats:    NewLLMStats(time.Hour),
		log:      log,
	}
}

func (c *Client) Provider() string { return c.provider.Name() }
func (c *Client) Model() string    { return c.provider.Model() }

// Stats returns the current call statistics.
func (c *Client) Stats() StatsSnapshot {
	snap := c.stats.Snapshot()
	snap.Provider = c.provider.Name()
	snap.Model = c.provider.Model()
	return snap
}

// Enrich sends prompt to the provider and parses the reply. A provider
// failure is an enrichment_unavailable error that still unwraps to the
// underlying cause (including *RetryableError); an unparseable reply is
// enrichment_malformed. Only parseable replies are cached.
func (c *Client) Enrich(ctx context.Context, prompt string) (map[string]any, error) {
	key := CacheKey(c.provider.Name(), c.provider.Model(), prompt)
	if c.cache != nil {
		lookup := time.Now()
		raw, ok, err := c.cache.Get(ctx, key)
		if err != nil {
			c.log.Warn("enrichment cache read failed", "error", err)
		} else if ok {
			if payload, err := Parse(raw); err == nil {
				c.stats.RecordCacheHit(time.Since(lookup))
				return payload, nil
			}
		}
	}

	callCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	start := time.Now()
	raw, err := c.provider.Complete(callCtx, prompt)
	if err != nil {
		c.stats.RecordFailure()
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &resume.Error{
			Kind:   resume.KindEnrichmentUnavailable,
			Detail: Sanitize(err),
			Err:    err,
		}
	}
	c.stats.RecordCall(time.Since(start))

	payload, err := Parse(raw)
	if err != nil {
		c.stats.RecordFailure()
		return nil, err
	}

	if c.cache != nil {
		if err := c.cache.Set(ctx, key, raw); err != nil {
			c.log.Warn("enrichment cache write failed", "error", err)
		}
	}
	return payload, nil
}
