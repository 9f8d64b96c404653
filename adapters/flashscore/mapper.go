package flashscore

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/XavierBriggs/Argus/pkg/models"
)

// actorItem is one match record as the scraper emits it. Field shapes vary
// between actor versions, so scores accept number, string, or
// {"current": n}.
type actorItem struct {
	EventID    string          `json:"eventId"`
	ID         string          `json:"id"`
	HomeTeam   string          `json:"home_team"`
	AwayTeam   string          `json:"away_team"`
	HomeScore  json.RawMessage `json:"home_score"`
	AwayScore  json.RawMessage `json:"away_score"`
	Status     string          `json:"status"`
	StatusTime string          `json:"status_time"`
	StartTime  string          `json:"start_time"`
	League     string          `json:"league"`
	History    []historyItem   `json:"history"`
}

type historyItem struct {
	Kind   string `json:"kind"`
	Time   string `json:"time"`
	Action string `json:"action"`
	Player string `json:"player"`
}

func (c *Client) mapItems(items []actorItem) []models.CanonicalMatch {
	matches := make([]models.CanonicalMatch, 0, len(items))
	for _, it := range items {
		matches = append(matches, mapItem(it))
	}
	return matches
}

func mapItem(it actorItem) models.CanonicalMatch {
	startTime, err := time.Parse(time.RFC3339, it.StartTime)
	if err != nil {
		startTime = time.Time{}
	}
	startTime = startTime.UTC()

	id := it.EventID
	if id == "" {
		id = it.ID
	}
	if id == "" {
		id = models.DeriveMatchID(it.HomeTeam, it.AwayTeam, startTime)
	}

	league := it.League
	if league == "" {
		league = "Unknown"
	}

	return models.CanonicalMatch{
		ID:         id,
		HomeTeam:   orUnknown(it.HomeTeam),
		AwayTeam:   orUnknown(it.AwayTeam),
		League:     league,
		Status:     mapStatus(it.Status),
		StatusTime: it.StatusTime,
		HomeScore:  parseScore(it.HomeScore),
		AwayScore:  parseScore(it.AwayScore),
		StartTime:  startTime,
		Source:     models.SourceFlashscore,
		History:    dedupeEvents(it.History),
	}
}

func orUnknown(name string) string {
	if name == "" {
		return "Unknown"
	}
	return name
}

// mapStatus normalizes the scraper's native status vocabulary.
func mapStatus(s string) models.MatchStatus {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "live", "1st half", "2nd half":
		return models.StatusLive
	case "ht", "half time", "halftime":
		return models.StatusHalfTime
	case "finished", "ft", "aet", "after penalties":
		return models.StatusFinished
	case "scheduled", "not started", "":
		return models.StatusScheduled
	default:
		return models.StatusUnknown
	}
}

// parseScore accepts 1, "1", or {"current": 1}. Anything else stays nil
// rather than being coerced to zero.
func parseScore(raw json.RawMessage) *int {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}

	var n int
	if err := json.Unmarshal(raw, &n); err == nil {
		return &n
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if v, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			return &v
		}
		return nil
	}

	var obj struct {
		Current json.RawMessage `json:"current"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil && len(obj.Current) > 0 {
		return parseScore(obj.Current)
	}
	return nil
}

// dedupeEvents drops play-by-play entries that repeat a (time, action,
// player) tuple, keeping only the first occurrence. Non-event entries pass
// through untouched.
func dedupeEvents(history []historyItem) []models.MatchEvent {
	if len(history) == 0 {
		return nil
	}

	seen := make(map[string]bool, len(history))
	events := make([]models.MatchEvent, 0, len(history))
	for _, h := range history {
		ev := models.MatchEvent{Time: h.Time, Action: h.Action, Player: h.Player}
		if h.Kind == "event" {
			key := ev.DedupKey()
			if seen[key] {
				continue
			}
			seen[key] = true
		}
		events = append(events, ev)
	}
	return events
}
