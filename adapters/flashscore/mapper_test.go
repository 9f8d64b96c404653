package flashscore

import (
	"encoding/json"
	"testing"

	"github.com/XavierBriggs/Argus/pkg/models"
)

func TestParseScore(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want *int // nil means expect nil
	}{
		{"number", `2`, intPtr(2)},
		{"string", `"3"`, intPtr(3)},
		{"padded string", `" 1 "`, intPtr(1)},
		{"current object", `{"current": 4}`, intPtr(4)},
		{"nested string current", `{"current": "0"}`, intPtr(0)},
		{"null", `null`, nil},
		{"empty", ``, nil},
		{"dash placeholder", `"-"`, nil},
		{"garbage object", `{"something": 1}`, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseScore(json.RawMessage(tt.raw))
			if (got == nil) != (tt.want == nil) {
				t.Fatalf("parseScore(%s) = %v, want %v", tt.raw, got, tt.want)
			}
			if got != nil && *got != *tt.want {
				t.Errorf("parseScore(%s) = %d, want %d", tt.raw, *got, *tt.want)
			}
		})
	}
}

func TestMapStatus(t *testing.T) {
	tests := []struct {
		in   string
		want models.MatchStatus
	}{
		{"Live", models.StatusLive},
		{"1st Half", models.StatusLive},
		{"2nd half", models.StatusLive},
		{"HT", models.StatusHalfTime},
		{"Half Time", models.StatusHalfTime},
		{"Finished", models.StatusFinished},
		{"FT", models.StatusFinished},
		{"AET", models.StatusFinished},
		{"Scheduled", models.StatusScheduled},
		{"Not Started", models.StatusScheduled},
		{"", models.StatusScheduled},
		{"Postponed", models.StatusUnknown},
	}
	for _, tt := range tests {
		if got := mapStatus(tt.in); got != tt.want {
			t.Errorf("mapStatus(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestMapItem(t *testing.T) {
	it := actorItem{
		EventID:    "fs-123",
		HomeTeam:   "Arsenal",
		AwayTeam:   "Chelsea",
		HomeScore:  json.RawMessage(`1`),
		AwayScore:  json.RawMessage(`"0"`),
		Status:     "1st Half",
		StatusTime: "34'",
		StartTime:  "2026-08-29T14:00:00Z",
		League:     "Premier League",
	}

	m := mapItem(it)
	if m.ID != "fs-123" {
		t.Errorf("expected provider id kept, got %q", m.ID)
	}
	if m.Status != models.StatusLive {
		t.Errorf("expected Live, got %s", m.Status)
	}
	if m.HomeScore == nil || *m.HomeScore != 1 || m.AwayScore == nil || *m.AwayScore != 0 {
		t.Errorf("unexpected score %v-%v", m.HomeScore, m.AwayScore)
	}
	if m.Source != models.SourceFlashscore {
		t.Errorf("unexpected source %s", m.Source)
	}
	if m.StartTime.IsZero() {
		t.Error("expected parsed start time")
	}
}

func TestMapItem_DerivesIDWhenMissing(t *testing.T) {
	it := actorItem{
		HomeTeam:  "Arsenal",
		AwayTeam:  "Chelsea",
		StartTime: "2026-08-29T14:00:00Z",
	}

	m := mapItem(it)
	if m.ID == "" {
		t.Fatal("expected derived id")
	}
	if m.League != "Unknown" {
		t.Errorf("expected Unknown league fallback, got %q", m.League)
	}
}

func TestDedupeEvents(t *testing.T) {
	history := []historyItem{
		{Kind: "event", Time: "12'", Action: "goal", Player: "Saka"},
		{Kind: "event", Time: "12'", Action: "goal", Player: "Saka"}, // duplicate
		{Kind: "event", Time: "45'", Action: "yellow", Player: "James"},
		{Kind: "period", Time: "45'", Action: "half time"},
		{Kind: "period", Time: "45'", Action: "half time"}, // non-events pass through
	}

	events := dedupeEvents(history)
	if len(events) != 4 {
		t.Fatalf("expected 4 events after dedup, got %d", len(events))
	}
	if events[0].Player != "Saka" || events[1].Action != "yellow" {
		t.Errorf("unexpected order after dedup: %+v", events)
	}
}

func TestDedupeEvents_Empty(t *testing.T) {
	if got := dedupeEvents(nil); got != nil {
		t.Errorf("expected nil for empty history, got %v", got)
	}
}

func intPtr(v int) *int {
	return &v
}
