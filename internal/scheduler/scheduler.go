// Package scheduler drives the fetch-correlate-notify cycle on a fixed
// interval. One poll loop per process; a cycle completes, including all
// correlation and notification dispatch, before the next tick's cycle
// begins observable effects.
package scheduler

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/XavierBriggs/Argus/internal/correlate"
	"github.com/XavierBriggs/Argus/internal/fetcher"
	"github.com/XavierBriggs/Argus/internal/notifier"
	"github.com/XavierBriggs/Argus/pkg/contracts"
	"github.com/XavierBriggs/Argus/pkg/models"
)

// DefaultInterval is the poll cadence when none is configured.
const DefaultInterval = 60 * time.Second

// ChangeTracker reports whether a bet's live state moved since the last
// cycle. Nil tracker means notify on every cycle.
type ChangeTracker interface {
	Changed(ctx context.Context, bet models.EnrichedBet) bool
}

// Scheduler is the poll loop. States are Stopped and Running only.
type Scheduler struct {
	fetcher    *fetcher.Fetcher
	correlator *correlate.Engine
	store      contracts.BetStore
	bus        contracts.Bus
	sink       contracts.NotificationSink
	tracker    ChangeTracker
	interval   time.Duration

	mu       sync.Mutex
	running  bool
	stopChan chan struct{}
	wg       sync.WaitGroup
}

// New creates a scheduler. bus and sink may not be nil; tracker may be.
func New(
	f *fetcher.Fetcher,
	store contracts.BetStore,
	bus contracts.Bus,
	sink contracts.NotificationSink,
	tracker ChangeTracker,
	interval time.Duration,
) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Scheduler{
		fetcher:    f,
		correlator: correlate.NewEngine(),
		store:      store,
		bus:        bus,
		sink:       sink,
		tracker:    tracker,
		interval:   interval,
	}
}

// Start moves the scheduler to Running: an immediate cycle, then one per
// interval. Calling Start while running is a no-op.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.stopChan = make(chan struct{})
	stop := s.stopChan
	s.mu.Unlock()

	log.Printf("[Scheduler] Starting - polling every %v", s.interval)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.runCycle(ctx)

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.runCycle(ctx)
			case <-stop:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop moves the scheduler back to Stopped. It prevents further cycles from
// starting and waits for one in flight to finish; it does not interrupt it.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	close(s.stopChan)
	s.mu.Unlock()

	s.wg.Wait()
	log.Printf("[Scheduler] Stopped")
}

// Running reports the scheduler state.
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// runCycle executes one fetch-correlate-notify pass. The loop must never
// die from a single bad cycle; the next tick retries unconditionally.
func (s *Scheduler) runCycle(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[Scheduler] cycle panic recovered: %v", r)
		}
	}()

	snap := s.fetcher.GetLive(ctx)

	// Publish unconditionally, including empty snapshots, so subscribers
	// can clear stale state.
	if err := s.bus.PublishSnapshot(ctx, snap); err != nil {
		log.Printf("[Scheduler] publish snapshot error: %v", err)
	}

	if snap.Count == 0 {
		return
	}

	bets, err := s.store.ListActiveBets(ctx)
	if err != nil {
		log.Printf("[Scheduler] list bets error: %v", err)
		return
	}
	if len(bets) == 0 {
		return
	}

	enriched := s.correlator.Correlate(bets, snap)
	for _, bet := range enriched {
		if err := s.bus.PublishBetUpdate(ctx, bet); err != nil {
			log.Printf("[Scheduler] publish bet update error for %s: %v", bet.BetID, err)
		}
		s.notify(ctx, bet)
	}

	if len(enriched) > 0 {
		log.Printf("[Scheduler] cycle complete: %d live match(es) from %s, %d bet(s) enriched",
			snap.Count, snap.Source, len(enriched))
	}
}

// notify fans one enriched bet out to its subscriptions. A failure for one
// subscriber must not prevent delivery to others or abort the cycle.
func (s *Scheduler) notify(ctx context.Context, bet models.EnrichedBet) {
	if s.tracker != nil && !s.tracker.Changed(ctx, bet) {
		return
	}

	subs, err := s.store.ListSubscriptions(ctx, bet.BetID)
	if err != nil {
		log.Printf("[Scheduler] list subscriptions error for bet %s: %v", bet.BetID, err)
		return
	}

	message := notifier.FormatBetUpdate(bet)
	for _, sub := range subs {
		if err := s.sink.Send(ctx, sub, message); err != nil {
			log.Printf("[Scheduler] notification error for bet %s via %s: %v", bet.BetID, sub.Channel, err)
		}
	}
}
