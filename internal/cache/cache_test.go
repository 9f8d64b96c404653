package cache

import (
	"sync"
	"testing"
	"time"

	"github.com/XavierBriggs/Argus/pkg/models"
)

// newTestStore returns a store with a controllable clock.
func newTestStore(start time.Time) (*Store, *time.Time) {
	now := start
	s := NewStore()
	s.now = func() time.Time { return now }
	return s, &now
}

func testSnapshot(count int) models.Snapshot {
	matches := make([]models.CanonicalMatch, count)
	for i := range matches {
		matches[i] = models.CanonicalMatch{ID: "m", Status: models.StatusLive}
	}
	return models.NewSnapshot(matches, models.SourceFootballData)
}

func TestGet_Miss(t *testing.T) {
	s, _ := newTestStore(time.Now())

	if _, ok := s.Get("live"); ok {
		t.Fatal("expected miss on empty store")
	}
}

func TestGet_TTLExpiry(t *testing.T) {
	start := time.Date(2026, 3, 14, 15, 0, 0, 0, time.Local)
	s, clock := newTestStore(start)

	s.Set("live", testSnapshot(2), TTL(30*time.Second))

	if snap, ok := s.Get("live"); !ok || snap.Count != 2 {
		t.Fatalf("expected fresh hit with 2 matches, got ok=%v count=%d", ok, snap.Count)
	}

	*clock = start.Add(29 * time.Second)
	if _, ok := s.Get("live"); !ok {
		t.Error("expected hit just inside TTL")
	}

	*clock = start.Add(30 * time.Second)
	if _, ok := s.Get("live"); ok {
		t.Error("expected miss at TTL boundary")
	}
}

func TestGet_DailyRollover(t *testing.T) {
	// Schedule entry written late in the evening must not survive past
	// midnight even though its TTL has time left.
	start := time.Date(2026, 3, 14, 23, 59, 30, 0, time.Local)
	s, clock := newTestStore(start)

	s.Set("schedule", testSnapshot(1), Daily().WithTTL(90*time.Second))

	if _, ok := s.Get("schedule"); !ok {
		t.Fatal("expected hit before midnight")
	}

	*clock = start.Add(45 * time.Second) // 00:00:15 next day, TTL still open
	if _, ok := s.Get("schedule"); ok {
		t.Error("expected miss after day rollover")
	}
}

func TestMarkRateLimited_CooldownWindow(t *testing.T) {
	start := time.Date(2026, 3, 14, 15, 0, 0, 0, time.Local)
	s, clock := newTestStore(start)

	s.MarkRateLimited("live", 120*time.Second)

	if !s.CoolingDown("live") {
		t.Fatal("expected cooldown open immediately after marking")
	}

	*clock = start.Add(119 * time.Second)
	if !s.CoolingDown("live") {
		t.Error("expected cooldown still open inside window")
	}

	*clock = start.Add(120 * time.Second)
	if s.CoolingDown("live") {
		t.Error("expected cooldown closed at window boundary")
	}
}

func TestMarkRateLimited_KeepsStaleValue(t *testing.T) {
	start := time.Date(2026, 3, 14, 15, 0, 0, 0, time.Local)
	s, clock := newTestStore(start)

	s.Set("live", testSnapshot(3), TTL(30*time.Second))
	*clock = start.Add(time.Minute) // entry now expired
	s.MarkRateLimited("live", 120*time.Second)

	if _, ok := s.Get("live"); ok {
		t.Error("expected Get miss on expired entry")
	}
	snap, ok := s.Stale("live")
	if !ok || snap.Count != 3 {
		t.Fatalf("expected stale value to survive rate-limit marking, got ok=%v count=%d", ok, snap.Count)
	}
}

func TestSet_ClearsCooldown(t *testing.T) {
	s, _ := newTestStore(time.Now())

	s.MarkRateLimited("live", 120*time.Second)
	if !s.CoolingDown("live") {
		t.Fatal("expected cooldown open")
	}

	s.Set("live", testSnapshot(1), TTL(30*time.Second))
	if s.CoolingDown("live") {
		t.Error("expected successful Set to clear the cooldown")
	}
}

func TestSingleFlight(t *testing.T) {
	s, _ := newTestStore(time.Now())

	if !s.TryBeginFetch("live") {
		t.Fatal("expected first claim to succeed")
	}
	if s.TryBeginFetch("live") {
		t.Error("expected second claim to fail while first is open")
	}
	// Other keys are independent.
	if !s.TryBeginFetch("schedule") {
		t.Error("expected claim on a different key to succeed")
	}

	s.EndFetch("live")
	if !s.TryBeginFetch("live") {
		t.Error("expected claim to succeed after EndFetch")
	}
}

func TestSingleFlight_Concurrent(t *testing.T) {
	s, _ := newTestStore(time.Now())

	const n = 32
	var wg sync.WaitGroup
	var mu sync.Mutex
	winners := 0

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if s.TryBeginFetch("live") {
				mu.Lock()
				winners++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if winners != 1 {
		t.Fatalf("expected exactly 1 winner, got %d", winners)
	}
}
