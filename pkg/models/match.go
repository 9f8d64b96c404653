package models

import (
	"net/url"
	"strings"
	"time"
)

// MatchStatus is the canonical fixture status. Providers use different
// native vocabularies (IN_PLAY, PAUSED, Live, FINISHED) and must normalize
// to this enum before a match leaves the adapter.
type MatchStatus string

const (
	StatusScheduled MatchStatus = "Scheduled"
	StatusLive      MatchStatus = "Live"
	StatusHalfTime  MatchStatus = "HalfTime"
	StatusFinished  MatchStatus = "Finished"
	StatusUnknown   MatchStatus = "Unknown"
)

// Terminal reports whether no further score changes are expected.
func (s MatchStatus) Terminal() bool {
	return s == StatusFinished
}

// Source identifies which provider produced a record.
type Source string

const (
	SourceFootballData Source = "football-data"
	SourceFlashscore   Source = "flashscore"
	SourceCache        Source = "cache"
	SourceRateLimited  Source = "rate-limited"
	SourceError        Source = "error"
	SourceNone         Source = "none"
)

// CanonicalMatch is one live or scheduled fixture normalized to the engine's
// schema regardless of upstream provider.
type CanonicalMatch struct {
	ID         string      `json:"id"`
	HomeTeam   string      `json:"home_team"`
	AwayTeam   string      `json:"away_team"`
	League     string      `json:"league"`
	Status     MatchStatus `json:"status"`
	StatusTime string      `json:"status_time,omitempty"` // e.g. "73'" during play
	HomeScore  *int        `json:"home_score"`            // nil means not yet available
	AwayScore  *int        `json:"away_score"`
	StartTime  time.Time   `json:"start_time"` // always UTC
	Source     Source      `json:"source"`
	History    []MatchEvent `json:"history,omitempty"`
}

// MatchEvent is one play-by-play entry when the provider supplies a feed.
type MatchEvent struct {
	Time   string `json:"time"`
	Action string `json:"action"`
	Player string `json:"player"`
}

// DedupKey identifies an event within a match; duplicate events with the
// same key are dropped, keeping the first occurrence.
func (e MatchEvent) DedupKey() string {
	return e.Time + "|" + e.Action + "|" + e.Player
}

// DeriveMatchID builds a stable identifier for providers that have none.
// It stays stable across repeated polls of the same fixture so the
// correlation engine and UI can key on it.
func DeriveMatchID(homeTeam, awayTeam string, startTime time.Time) string {
	raw := strings.ToLower(homeTeam + "-" + awayTeam + "-" + startTime.UTC().Format(time.RFC3339))
	raw = strings.Join(strings.Fields(raw), "-")
	return url.QueryEscape(raw)
}

// Snapshot bundles the matches produced by one poll/fetch cycle with
// provenance and timestamp. Immutable once constructed; a new poll produces
// a new Snapshot rather than mutating an old one.
type Snapshot struct {
	Matches   []CanonicalMatch `json:"matches"`
	Source    Source           `json:"source"`
	FetchedAt time.Time        `json:"fetched_at"`
	Count     int              `json:"count"`
}

// NewSnapshot stamps a match list with provenance.
func NewSnapshot(matches []CanonicalMatch, source Source) Snapshot {
	if matches == nil {
		matches = []CanonicalMatch{}
	}
	return Snapshot{
		Matches:   matches,
		Source:    source,
		FetchedAt: time.Now().UTC(),
		Count:     len(matches),
	}
}

// EmptySnapshot is what callers receive when no data is available; staleness
// is explicit and queryable rather than surfaced as an error.
func EmptySnapshot(source Source) Snapshot {
	return NewSnapshot(nil, source)
}
