package correlate

import (
	"github.com/XavierBriggs/Argus/pkg/models"
)

// Engine enriches tracked bets with live match data. It never mutates a
// bet's persisted record; every cycle produces fresh EnrichedBet views.
type Engine struct{}

// NewEngine creates a correlation engine.
func NewEngine() *Engine {
	return &Engine{}
}

// Correlate matches each non-terminal bet's selections against the
// snapshot's fixtures. First match wins; a selection that matches no live
// fixture passes through unchanged. A bet is emitted only if at least one
// of its selections matched, so downstream consumers keep their last-known
// state for untouched bets.
func (e *Engine) Correlate(bets []models.TrackedBet, snap models.Snapshot) []models.EnrichedBet {
	if len(bets) == 0 || len(snap.Matches) == 0 {
		return nil
	}

	var enriched []models.EnrichedBet
	for _, bet := range bets {
		if bet.TerminalStatus() || len(bet.Selections) == 0 {
			continue
		}

		selections := make([]models.EnrichedSelection, 0, len(bet.Selections))
		anyLive := false

		for _, sel := range bet.Selections {
			es := models.EnrichedSelection{Selection: sel}
			if m := findFixture(sel, snap.Matches); m != nil {
				es.Live = &models.LiveUpdate{
					MatchID:    m.ID,
					HomeScore:  m.HomeScore,
					AwayScore:  m.AwayScore,
					Status:     m.Status,
					StatusTime: m.StatusTime,
					Source:     m.Source,
				}
				anyLive = true
			}
			selections = append(selections, es)
		}

		if !anyLive {
			continue
		}
		enriched = append(enriched, models.EnrichedBet{
			BetID:      bet.ID,
			Selections: selections,
		})
	}
	return enriched
}

// findFixture returns the first fixture whose teams fuzzy-match the
// selection, or nil.
func findFixture(sel models.Selection, matches []models.CanonicalMatch) *models.CanonicalMatch {
	for i := range matches {
		m := &matches[i]
		if PairMatch(sel.HomeTeam, sel.AwayTeam, m.HomeTeam, m.AwayTeam) {
			return m
		}
	}
	return nil
}

// FindMatch is the ad hoc lookup used for schedule queries: it applies the
// same normalization rule to a (home, away) pair against a snapshot. Returns
// nil when nothing matches; a miss is not an error.
func FindMatch(homeTeam, awayTeam string, snap models.Snapshot) *models.CanonicalMatch {
	for i := range snap.Matches {
		m := &snap.Matches[i]
		if PairMatch(homeTeam, awayTeam, m.HomeTeam, m.AwayTeam) {
			return m
		}
	}
	return nil
}
