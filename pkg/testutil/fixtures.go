package testutil

import (
	"context"
	"time"

	"github.com/XavierBriggs/Argus/pkg/contracts"
	"github.com/XavierBriggs/Argus/pkg/models"
)

// NewTestMatch creates a live test match
func NewTestMatch(homeTeam, awayTeam string, homeScore, awayScore int) models.CanonicalMatch {
	start := time.Now().Add(-30 * time.Minute).UTC()
	return models.CanonicalMatch{
		ID:         models.DeriveMatchID(homeTeam, awayTeam, start),
		HomeTeam:   homeTeam,
		AwayTeam:   awayTeam,
		League:     "Premier League",
		Status:     models.StatusLive,
		StatusTime: "34'",
		HomeScore:  PtrInt(homeScore),
		AwayScore:  PtrInt(awayScore),
		StartTime:  start,
		Source:     models.SourceFootballData,
	}
}

// NewScheduledMatch creates a fixture that kicks off hoursUntilStart from now
func NewScheduledMatch(homeTeam, awayTeam string, hoursUntilStart float64) models.CanonicalMatch {
	start := time.Now().Add(time.Duration(hoursUntilStart * float64(time.Hour))).UTC()
	return models.CanonicalMatch{
		ID:        models.DeriveMatchID(homeTeam, awayTeam, start),
		HomeTeam:  homeTeam,
		AwayTeam:  awayTeam,
		League:    "Premier League",
		Status:    models.StatusScheduled,
		StartTime: start,
		Source:    models.SourceFootballData,
	}
}

// NewTestBet creates a tracked bet with one selection per team pair
func NewTestBet(id string, pairs ...[2]string) models.TrackedBet {
	selections := make([]models.Selection, 0, len(pairs))
	for _, p := range pairs {
		selections = append(selections, models.Selection{
			HomeTeam: p[0],
			AwayTeam: p[1],
		})
	}
	return models.TrackedBet{
		ID:         id,
		Selections: selections,
		Status:     models.BetStatusPending,
		CreatedAt:  time.Now().UTC(),
	}
}

// NewTestSnapshot wraps matches in a provider-sourced snapshot
func NewTestSnapshot(matches ...models.CanonicalMatch) models.Snapshot {
	return models.NewSnapshot(matches, models.SourceFootballData)
}

// PtrInt creates a pointer to int
func PtrInt(val int) *int {
	return &val
}

// MockProvider is a test provider that returns predetermined matches
type MockProvider struct {
	NameValue         models.Source
	FetchLiveFunc     func(ctx context.Context) ([]models.CanonicalMatch, error)
	FetchScheduleFunc func(ctx context.Context, from, to time.Time) ([]models.CanonicalMatch, error)

	LiveCalls     int
	ScheduleCalls int
}

var _ contracts.MatchProvider = (*MockProvider)(nil)

func (m *MockProvider) Name() models.Source {
	if m.NameValue == "" {
		return models.Source("mock")
	}
	return m.NameValue
}

func (m *MockProvider) FetchLive(ctx context.Context) ([]models.CanonicalMatch, error) {
	m.LiveCalls++
	if m.FetchLiveFunc != nil {
		return m.FetchLiveFunc(ctx)
	}
	return []models.CanonicalMatch{}, nil
}

func (m *MockProvider) FetchSchedule(ctx context.Context, from, to time.Time) ([]models.CanonicalMatch, error) {
	m.ScheduleCalls++
	if m.FetchScheduleFunc != nil {
		return m.FetchScheduleFunc(ctx, from, to)
	}
	return []models.CanonicalMatch{}, nil
}
