// Package delta decides whether a bet's live state actually changed since
// the previous poll cycle, so subscribers are notified on movement rather
// than on every tick. Redis-first: the comparison is one GET per bet.
package delta

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/XavierBriggs/Argus/pkg/models"
)

// Tracker compares enriched bets against their last published fingerprint.
type Tracker struct {
	redis *redis.Client
	ttl   time.Duration
}

// NewTracker creates a tracker. Fingerprints expire after ttl so a bet whose
// fixtures went quiet re-notifies the next time it goes live.
func NewTracker(client *redis.Client, ttl time.Duration) *Tracker {
	if ttl <= 0 {
		ttl = 6 * time.Hour
	}
	return &Tracker{redis: client, ttl: ttl}
}

// Changed reports whether bet's live state differs from the fingerprint
// recorded on the previous cycle, and records the new fingerprint. On any
// Redis error it reports true: a duplicate notification beats a missed one.
func (t *Tracker) Changed(ctx context.Context, bet models.EnrichedBet) bool {
	key := t.buildKey(bet.BetID)
	fp := fingerprint(bet)

	prev, err := t.redis.Get(ctx, key).Result()
	if err == nil && prev == fp {
		return false
	}
	if err != nil && err != redis.Nil {
		return true
	}

	if err := t.redis.Set(ctx, key, fp, t.ttl).Err(); err != nil {
		return true
	}
	return true
}

// buildKey creates the Redis key for a bet's live fingerprint.
// Format: bet:live:{bet_id}
func (t *Tracker) buildKey(betID string) string {
	return fmt.Sprintf("bet:live:%s", betID)
}

// fingerprint folds every matched selection's scoreline and status into a
// deterministic string.
func fingerprint(bet models.EnrichedBet) string {
	parts := make([]string, 0, len(bet.Selections))
	for _, sel := range bet.Selections {
		if sel.Live == nil {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s:%s:%s-%s",
			sel.Live.MatchID, sel.Live.Status, scoreStr(sel.Live.HomeScore), scoreStr(sel.Live.AwayScore)))
	}
	return strings.Join(parts, "|")
}

func scoreStr(v *int) string {
	if v == nil {
		return "?"
	}
	return fmt.Sprintf("%d", *v)
}
