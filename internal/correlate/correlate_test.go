package correlate_test

import (
	"testing"

	"github.com/XavierBriggs/Argus/internal/correlate"
	"github.com/XavierBriggs/Argus/pkg/models"
	"github.com/XavierBriggs/Argus/pkg/testutil"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Manchester United", "manchesterunited"},
		{"Man. United", "manunited"},
		{"REAL MADRID C.F.", "realmadridcf"},
		{"1. FC Köln", "1fckln"},
		{"  Arsenal  ", "arsenal"},
		{"---", ""},
		{"", ""},
	}

	for _, tt := range tests {
		if got := correlate.Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNamesMatch(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{"Manchester United", "Manchester United", true},
		{"Man. United", "man united", true},
		// Substring works in both directions.
		{"Arsenal", "Arsenal FC", true},
		{"Arsenal FC", "Arsenal", true},
		// Abbreviated words line up via the token-prefix pass.
		{"Man United", "Manchester United", true},
		{"Manchester United", "Man United", true},
		{"Arsenal", "Chelsea", false},
		{"Man City", "Manchester United", false},
		{"", "Arsenal", false},
		{"Arsenal", "", false},
	}

	for _, tt := range tests {
		if got := correlate.NamesMatch(tt.a, tt.b); got != tt.want {
			t.Errorf("NamesMatch(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestCorrelate_EnrichesMatchingSelection(t *testing.T) {
	engine := correlate.NewEngine()

	snap := testutil.NewTestSnapshot(
		testutil.NewTestMatch("Arsenal FC", "Chelsea FC", 2, 1),
		testutil.NewTestMatch("Liverpool FC", "Everton FC", 0, 0),
	)
	bets := []models.TrackedBet{
		testutil.NewTestBet("bet-1", [2]string{"Arsenal", "Chelsea"}),
	}

	enriched := engine.Correlate(bets, snap)
	if len(enriched) != 1 {
		t.Fatalf("expected 1 enriched bet, got %d", len(enriched))
	}

	sel := enriched[0].Selections[0]
	if sel.Live == nil {
		t.Fatal("expected selection to carry live data")
	}
	if *sel.Live.HomeScore != 2 || *sel.Live.AwayScore != 1 {
		t.Errorf("expected score 2-1, got %v-%v", *sel.Live.HomeScore, *sel.Live.AwayScore)
	}
	if sel.Live.Status != models.StatusLive {
		t.Errorf("expected Live status, got %s", sel.Live.Status)
	}
}

func TestCorrelate_SkipsBetWithNoLiveFixture(t *testing.T) {
	engine := correlate.NewEngine()

	snap := testutil.NewTestSnapshot(testutil.NewTestMatch("Arsenal FC", "Chelsea FC", 2, 1))
	bets := []models.TrackedBet{
		testutil.NewTestBet("bet-1", [2]string{"Barcelona", "Sevilla"}),
	}

	if enriched := engine.Correlate(bets, snap); len(enriched) != 0 {
		t.Fatalf("expected no enriched bets, got %d", len(enriched))
	}
}

func TestCorrelate_SkipsTerminalBets(t *testing.T) {
	engine := correlate.NewEngine()

	snap := testutil.NewTestSnapshot(testutil.NewTestMatch("Arsenal FC", "Chelsea FC", 2, 1))
	bet := testutil.NewTestBet("bet-1", [2]string{"Arsenal", "Chelsea"})
	bet.Status = models.BetStatusWon

	if enriched := engine.Correlate([]models.TrackedBet{bet}, snap); len(enriched) != 0 {
		t.Fatalf("expected terminal bet to be skipped, got %d enriched", len(enriched))
	}
}

func TestCorrelate_PartialMatchKeepsAllSelections(t *testing.T) {
	engine := correlate.NewEngine()

	snap := testutil.NewTestSnapshot(testutil.NewTestMatch("Arsenal FC", "Chelsea FC", 1, 0))
	bets := []models.TrackedBet{
		testutil.NewTestBet("bet-1",
			[2]string{"Arsenal", "Chelsea"},
			[2]string{"Barcelona", "Sevilla"},
		),
	}

	enriched := engine.Correlate(bets, snap)
	if len(enriched) != 1 {
		t.Fatalf("expected 1 enriched bet, got %d", len(enriched))
	}
	if len(enriched[0].Selections) != 2 {
		t.Fatalf("expected both selections present, got %d", len(enriched[0].Selections))
	}
	if enriched[0].Selections[0].Live == nil {
		t.Error("expected first selection enriched")
	}
	if enriched[0].Selections[1].Live != nil {
		t.Error("expected second selection to pass through without live data")
	}
}

func TestCorrelate_EmptyInputs(t *testing.T) {
	engine := correlate.NewEngine()

	snap := testutil.NewTestSnapshot(testutil.NewTestMatch("Arsenal FC", "Chelsea FC", 1, 0))
	if got := engine.Correlate(nil, snap); got != nil {
		t.Errorf("expected nil for no bets, got %v", got)
	}

	bets := []models.TrackedBet{testutil.NewTestBet("bet-1", [2]string{"Arsenal", "Chelsea"})}
	if got := engine.Correlate(bets, models.EmptySnapshot(models.SourceNone)); got != nil {
		t.Errorf("expected nil for empty snapshot, got %v", got)
	}
}

func TestFindMatch(t *testing.T) {
	snap := testutil.NewTestSnapshot(
		testutil.NewScheduledMatch("Manchester United", "Tottenham Hotspur", 4),
	)

	if m := correlate.FindMatch("Man United", "Tottenham", snap); m == nil {
		t.Fatal("expected fuzzy lookup to find the fixture")
	}
	if m := correlate.FindMatch("Tottenham", "Man United", snap); m != nil {
		t.Error("expected swapped home/away to miss")
	}
	if m := correlate.FindMatch("", "Tottenham", snap); m != nil {
		t.Error("expected empty name to miss")
	}
}
