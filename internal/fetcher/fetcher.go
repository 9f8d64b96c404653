// Package fetcher orchestrates cache-backed snapshot reads with failover
// across providers in a fixed priority order. Callers never receive an
// error for an upstream outage; they receive a Snapshot whose source makes
// staleness explicit.
package fetcher

import (
	"context"
	"log"
	"time"

	"github.com/XavierBriggs/Argus/internal/cache"
	"github.com/XavierBriggs/Argus/internal/correlate"
	"github.com/XavierBriggs/Argus/pkg/contracts"
	"github.com/XavierBriggs/Argus/pkg/models"
)

const (
	keyLive     = "live"
	keySchedule = "schedule"
)

// Options tunes cache freshness. Zero fields take the observed defaults.
type Options struct {
	LiveTTL           time.Duration // default 30s
	ScheduleTTL       time.Duration // default 90s, plus daily rollover
	RateLimitCooldown time.Duration // default 120s
	ScheduleLookahead time.Duration // default 2 days
}

func (o *Options) applyDefaults() {
	if o.LiveTTL <= 0 {
		o.LiveTTL = 30 * time.Second
	}
	if o.ScheduleTTL <= 0 {
		o.ScheduleTTL = 90 * time.Second
	}
	if o.RateLimitCooldown <= 0 {
		o.RateLimitCooldown = 120 * time.Second
	}
	if o.ScheduleLookahead <= 0 {
		o.ScheduleLookahead = 48 * time.Hour
	}
}

// Fetcher owns the cache and the ordered provider list. Which provider is
// primary is configuration, not code: upstream reliability shifts over time
// and the order has had to flip before.
type Fetcher struct {
	providers []contracts.MatchProvider
	cache     *cache.Store
	opts      Options
}

// New creates a fetcher over providers in priority order.
func New(providers []contracts.MatchProvider, store *cache.Store, opts Options) *Fetcher {
	opts.applyDefaults()
	return &Fetcher{
		providers: providers,
		cache:     store,
		opts:      opts,
	}
}

// GetLive returns the current live snapshot: cached when fresh, fetched with
// provider failover otherwise, stale or empty when everything is down.
func (f *Fetcher) GetLive(ctx context.Context) models.Snapshot {
	return f.get(ctx, keyLive, cache.TTL(f.opts.LiveTTL), func(p contracts.MatchProvider) ([]models.CanonicalMatch, error) {
		return p.FetchLive(ctx)
	})
}

// GetSchedule returns today's fixtures plus the lookahead window. The cache
// rolls over at local midnight regardless of TTL, since a "today" schedule
// must not survive into tomorrow.
func (f *Fetcher) GetSchedule(ctx context.Context) models.Snapshot {
	from := time.Now().UTC()
	to := from.Add(f.opts.ScheduleLookahead)
	return f.get(ctx, keySchedule, cache.Daily().WithTTL(f.opts.ScheduleTTL), func(p contracts.MatchProvider) ([]models.CanonicalMatch, error) {
		return p.FetchSchedule(ctx, from, to)
	})
}

// get is the shared fetch algorithm for both snapshot kinds.
func (f *Fetcher) get(ctx context.Context, key string, policy cache.Policy, fetch func(contracts.MatchProvider) ([]models.CanonicalMatch, error)) models.Snapshot {
	if snap, ok := f.cache.Get(key); ok {
		return snap
	}

	if f.cache.CoolingDown(key) {
		if snap, ok := f.cache.Stale(key); ok {
			snap.Source = models.SourceRateLimited
			return snap
		}
		return models.EmptySnapshot(models.SourceRateLimited)
	}

	if !f.cache.TryBeginFetch(key) {
		// Another caller is already upstream; serve what we have.
		if snap, ok := f.cache.Stale(key); ok {
			snap.Source = models.SourceCache
			return snap
		}
		return models.EmptySnapshot(models.SourceNone)
	}
	defer f.cache.EndFetch(key)

	for _, p := range f.providers {
		matches, err := fetch(p)
		if err == nil {
			snap := models.NewSnapshot(matches, p.Name())
			f.cache.Set(key, snap, policy)
			return snap
		}

		kind := contracts.Classify(err)
		log.Printf("[Fetcher] %s fetch via %s failed (%s): %v", key, p.Name(), kind, err)
		if kind == contracts.KindRateLimited {
			// Remember the throttle without erasing prior data, then try
			// the next provider.
			f.cache.MarkRateLimited(key, f.opts.RateLimitCooldown)
		}
	}

	if snap, ok := f.cache.Stale(key); ok {
		snap.Source = models.SourceError
		return snap
	}
	return models.EmptySnapshot(models.SourceNone)
}

// FindMatch looks up a fixture by team names against the schedule snapshot,
// using the same fuzzy-normalization rule as the correlation engine. A miss
// returns nil, not an error.
func (f *Fetcher) FindMatch(ctx context.Context, homeTeam, awayTeam string) *models.CanonicalMatch {
	schedule := f.GetSchedule(ctx)
	return correlate.FindMatch(homeTeam, awayTeam, schedule)
}

// MatchByID looks up a fixture by id, preferring the live snapshot and
// falling back to the schedule.
func (f *Fetcher) MatchByID(ctx context.Context, id string) *models.CanonicalMatch {
	for _, snap := range []models.Snapshot{f.GetLive(ctx), f.GetSchedule(ctx)} {
		for i := range snap.Matches {
			if snap.Matches[i].ID == id {
				return &snap.Matches[i]
			}
		}
	}
	return nil
}
