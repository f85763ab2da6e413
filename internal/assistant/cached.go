package assistant

import (
	"context"
	"log/slog"
	"time"

	"clausewise/internal/cache"
	"clausewise/internal/llm"
)

// CacheObserver records simplification cache lookups.
type CacheObserver interface {
	ObserveCacheLookup(result string)
}

// Cache lookup results.
const (
	CacheHit   = "hit"
	CacheMiss  = "miss"
	CacheError = "error"
)

// CachedSimplifier memoizes successful simplifications per model and clause.
// Cache errors are logged and treated as misses.
type CachedSimplifier struct {
	next  *Simplifier
	cache cache.Cache
	ttl   time.Duration
	log   *slog.Logger
	obs   CacheObserver
}

// NewCachedSimplifier wraps s. obs may be nil.
func NewCachedSimplifier(s *Simplifier, c cache.Cache, ttl time.Duration, log *slog.Logger, obs CacheObserver) *CachedSimplifier {
	if log == nil {
		log = slog.Default()
	}
	return &CachedSimplifier{next: s, cache: c, ttl: ttl, log: log, obs: obs}
}

// Simplify returns the cached rewrite when present. The second return value
// reports a cache hit.
func (c *CachedSimplifier) Simplify(ctx context.Context, clause string, s llm.Settings) (llm.Result, bool) {
	s = s.WithDefaults()
	key := cache.SimplificationKey(s.Model, clause)

	entry, err := c.cache.GetSimplification(ctx, key)
	switch {
	case err != nil:
		c.observe(CacheError)
		c.log.Warn("simplification cache read failed", "err", err)
	case entry != nil:
		c.observe(CacheHit)
		c.log.Debug("simplification cache hit", "model", s.Model)
		return llm.Success("", entry.Text), true
	default:
		c.observe(CacheMiss)
	}

	res := c.next.Simplify(ctx, clause, s)
	if !res.OK() || res.Text == "" {
		return res, false
	}
	if err := c.cache.SetSimplification(ctx, key, &cache.Simplification{
		Text:     res.Text,
		Model:    s.Model,
		StoredAt: time.Now().UTC(),
	}, c.ttl); err != nil {
		c.log.Warn("failed to cache simplification", "err", err)
	}
	return res, false
}

func (c *CachedSimplifier) observe(result string) {
	if c.obs != nil {
		c.obs.ObserveCacheLookup(result)
	}
}
