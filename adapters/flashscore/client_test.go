package flashscore

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/XavierBriggs/Argus/internal/credentials"
	"github.com/XavierBriggs/Argus/pkg/contracts"
	"github.com/XavierBriggs/Argus/pkg/models"
)

const datasetJSON = `[
	{
		"eventId": "fs-1",
		"home_team": "Arsenal",
		"away_team": "Chelsea",
		"home_score": 2,
		"away_score": 1,
		"status": "Live",
		"status_time": "61'",
		"start_time": "2026-08-29T14:00:00Z",
		"league": "Premier League"
	},
	{
		"eventId": "fs-2",
		"home_team": "Liverpool",
		"away_team": "Everton",
		"status": "Scheduled",
		"start_time": "2026-08-30T14:00:00Z"
	}
]`

// apifyStub serves the three-step run lifecycle: start run, poll status,
// fetch dataset items.
func apifyStub(t *testing.T, runStatus string) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && strings.Contains(r.URL.Path, "/runs"):
			fmt.Fprint(w, `{"data": {"id": "run-1", "status": "RUNNING"}}`)
		case strings.Contains(r.URL.Path, "/actor-runs/"):
			fmt.Fprintf(w, `{"data": {"id": "run-1", "status": %q, "defaultDatasetId": "ds-1"}}`, runStatus)
		case strings.Contains(r.URL.Path, "/datasets/"):
			fmt.Fprint(w, datasetJSON)
		default:
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}
}

func newTestClient(t *testing.T, handler http.HandlerFunc, tokens ...string) (*Client, *credentials.Pool) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	if len(tokens) == 0 {
		tokens = []string{"apify-token"}
	}
	pool := credentials.NewPool(tokens)
	return NewClient(pool).WithBaseURL(srv.URL), pool
}

func TestFetchLive_RunLifecycle(t *testing.T) {
	client, _ := newTestClient(t, apifyStub(t, "SUCCEEDED"))

	matches, err := client.FetchLive(context.Background())
	if err != nil {
		t.Fatalf("FetchLive failed: %v", err)
	}

	// The scheduled fixture is filtered out of the live view.
	if len(matches) != 1 {
		t.Fatalf("expected 1 live match, got %d", len(matches))
	}
	m := matches[0]
	if m.ID != "fs-1" || m.Status != models.StatusLive {
		t.Errorf("unexpected match %q status %s", m.ID, m.Status)
	}
	if m.HomeScore == nil || *m.HomeScore != 2 {
		t.Errorf("unexpected home score %v", m.HomeScore)
	}
}

func TestFetchSchedule_FiltersWindow(t *testing.T) {
	client, _ := newTestClient(t, apifyStub(t, "SUCCEEDED"))

	from := mustParse(t, "2026-08-29T00:00:00Z")
	to := mustParse(t, "2026-08-31T00:00:00Z")
	matches, err := client.FetchSchedule(context.Background(), from, to)
	if err != nil {
		t.Fatalf("FetchSchedule failed: %v", err)
	}
	if len(matches) != 1 || matches[0].ID != "fs-2" {
		t.Fatalf("expected only the scheduled fixture, got %+v", matches)
	}

	// A window before the fixture excludes it.
	earlyTo := mustParse(t, "2026-08-29T23:00:00Z")
	matches, err = client.FetchSchedule(context.Background(), from, earlyTo)
	if err != nil {
		t.Fatalf("FetchSchedule failed: %v", err)
	}
	if len(matches) != 0 {
		t.Fatalf("expected no fixtures in early window, got %d", len(matches))
	}
}

func TestFetchLive_FailedRun(t *testing.T) {
	client, _ := newTestClient(t, apifyStub(t, "FAILED"))

	_, err := client.FetchLive(context.Background())
	var fe *contracts.FetchError
	if !errors.As(err, &fe) || fe.Kind != contracts.KindTransient {
		t.Fatalf("expected transient error for failed run, got %v", err)
	}
}

func TestFetchLive_RotatesOnQuotaExhausted(t *testing.T) {
	var tokensSeen []string
	handler := func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		if r.Method == http.MethodPost {
			tokensSeen = append(tokensSeen, token)
		}
		if token == "dead-token" {
			w.WriteHeader(http.StatusPaymentRequired)
			return
		}
		apifyStub(t, "SUCCEEDED")(w, r)
	}
	client, pool := newTestClient(t, handler, "dead-token", "good-token")

	matches, err := client.FetchLive(context.Background())
	if err != nil {
		t.Fatalf("expected rotation to recover, got %v", err)
	}
	if len(matches) != 1 {
		t.Errorf("expected 1 live match after rotation, got %d", len(matches))
	}
	if len(tokensSeen) != 2 || tokensSeen[0] != "dead-token" || tokensSeen[1] != "good-token" {
		t.Errorf("unexpected token order %v", tokensSeen)
	}

	active, disabled := pool.Stats()
	if active != 1 || disabled != 1 {
		t.Errorf("expected dead token benched, got active=%d disabled=%d", active, disabled)
	}
}

func mustParse(t *testing.T, s string) time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, s)
	if err != nil {
		t.Fatalf("bad test timestamp %q: %v", s, err)
	}
	return ts
}

func TestFetchLive_NoTokens(t *testing.T) {
	called := false
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	}, "")

	_, err := client.FetchLive(context.Background())
	var fe *contracts.FetchError
	if !errors.As(err, &fe) || fe.Kind != contracts.KindConfigMissing {
		t.Fatalf("expected ConfigMissing, got %v", err)
	}
	if called {
		t.Error("expected no network call without tokens")
	}
}
