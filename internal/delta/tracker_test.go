package delta

import (
	"testing"

	"github.com/XavierBriggs/Argus/pkg/models"
	"github.com/XavierBriggs/Argus/pkg/testutil"
)

func liveUpdate(matchID string, home, away int) *models.LiveUpdate {
	return &models.LiveUpdate{
		MatchID:   matchID,
		HomeScore: testutil.PtrInt(home),
		AwayScore: testutil.PtrInt(away),
		Status:    models.StatusLive,
	}
}

func TestFingerprint(t *testing.T) {
	bet := models.EnrichedBet{
		BetID: "bet-1",
		Selections: []models.EnrichedSelection{
			{
				Selection: models.Selection{HomeTeam: "Arsenal", AwayTeam: "Chelsea"},
				Live:      liveUpdate("m-1", 2, 1),
			},
		},
	}

	if got, want := fingerprint(bet), "m-1:Live:2-1"; got != want {
		t.Errorf("fingerprint = %q, want %q", got, want)
	}
}

func TestFingerprint_SkipsUnmatchedSelections(t *testing.T) {
	bet := models.EnrichedBet{
		BetID: "bet-1",
		Selections: []models.EnrichedSelection{
			{Selection: models.Selection{HomeTeam: "Liverpool", AwayTeam: "Everton"}},
			{
				Selection: models.Selection{HomeTeam: "Arsenal", AwayTeam: "Chelsea"},
				Live:      liveUpdate("m-1", 2, 1),
			},
		},
	}

	if got, want := fingerprint(bet), "m-1:Live:2-1"; got != want {
		t.Errorf("fingerprint = %q, want %q", got, want)
	}
}

func TestFingerprint_NilScores(t *testing.T) {
	bet := models.EnrichedBet{
		Selections: []models.EnrichedSelection{
			{Live: &models.LiveUpdate{MatchID: "m-1", Status: models.StatusHalfTime}},
		},
	}

	if got, want := fingerprint(bet), "m-1:HalfTime:?-?"; got != want {
		t.Errorf("fingerprint = %q, want %q", got, want)
	}
}

func TestFingerprint_ChangesWithScore(t *testing.T) {
	before := models.EnrichedBet{Selections: []models.EnrichedSelection{{Live: liveUpdate("m-1", 1, 0)}}}
	after := models.EnrichedBet{Selections: []models.EnrichedSelection{{Live: liveUpdate("m-1", 2, 0)}}}

	if fingerprint(before) == fingerprint(after) {
		t.Error("expected fingerprints to differ after a goal")
	}
}

func TestFingerprint_MultipleSelections(t *testing.T) {
	bet := models.EnrichedBet{
		Selections: []models.EnrichedSelection{
			{Live: liveUpdate("m-1", 2, 1)},
			{Live: liveUpdate("m-2", 0, 0)},
		},
	}

	if got, want := fingerprint(bet), "m-1:Live:2-1|m-2:Live:0-0"; got != want {
		t.Errorf("fingerprint = %q, want %q", got, want)
	}
}

func TestBuildKey(t *testing.T) {
	tr := NewTracker(nil, 0)
	if got := tr.buildKey("abc-123"); got != "bet:live:abc-123" {
		t.Errorf("buildKey = %q", got)
	}
}
