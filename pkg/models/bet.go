package models

import "time"

// BetStatus values considered terminal; terminal bets are skipped by the
// correlation engine.
const (
	BetStatusPending = "pending"
	BetStatusLive    = "live"
	BetStatusSettled = "settled"
	BetStatusWon     = "won"
	BetStatusLost    = "lost"
	BetStatusVoid    = "void"
)

// Selection is one leg of a tracked bet as the bookmaker recorded it.
type Selection struct {
	HomeTeam string `json:"home_team"`
	AwayTeam string `json:"away_team"`
	Market   string `json:"market,omitempty"`
	Choice   string `json:"choice,omitempty"`
}

// TrackedBet is a user's bet slip as stored by the bet store. The engine
// never mutates the persisted record; it produces ephemeral EnrichedBet
// views instead.
type TrackedBet struct {
	ID           string      `json:"id"`
	BookingCode  string      `json:"booking_code,omitempty"`
	Platform     string      `json:"platform,omitempty"`
	Selections   []Selection `json:"selections"`
	Stake        float64     `json:"stake,omitempty"`
	TotalOdds    float64     `json:"total_odds,omitempty"`
	PotentialWin float64     `json:"potential_win,omitempty"`
	Currency     string      `json:"currency,omitempty"`
	Status       string      `json:"status"`
	CreatedAt    time.Time   `json:"created_at"`
}

// TerminalStatus reports whether a bet needs no further live tracking.
func (b TrackedBet) TerminalStatus() bool {
	switch b.Status {
	case BetStatusSettled, BetStatusWon, BetStatusLost, BetStatusVoid:
		return true
	}
	return false
}

// LiveUpdate is the subset of a CanonicalMatch attached to a matched
// selection.
type LiveUpdate struct {
	MatchID    string      `json:"id"`
	HomeScore  *int        `json:"home_score"`
	AwayScore  *int        `json:"away_score"`
	Status     MatchStatus `json:"status"`
	StatusTime string      `json:"status_time,omitempty"`
	Source     Source      `json:"source"`
}

// EnrichedSelection is a selection plus the live fixture it correlated to,
// if any. Selections that match no live fixture pass through with Live nil.
type EnrichedSelection struct {
	Selection
	Live *LiveUpdate `json:"live,omitempty"`
}

// EnrichedBet is the derived, per-cycle view of a bet with live data
// attached. Only emitted when at least one selection matched.
type EnrichedBet struct {
	BetID      string              `json:"bet_id"`
	Selections []EnrichedSelection `json:"selections"`
}

// Subscription ties a bet to a notification target.
type Subscription struct {
	ID      string `json:"id"`
	BetID   string `json:"bet_id"`
	Channel string `json:"channel"` // "telegram" or "webhook"
	Target  string `json:"target"`  // chat id or webhook URL
}
