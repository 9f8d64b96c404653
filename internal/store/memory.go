package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/XavierBriggs/Argus/pkg/models"
)

// Memory is an in-process store. Used when no Postgres DSN is configured
// and throughout the tests; contents are lost on restart.
type Memory struct {
	mu   sync.RWMutex
	bets []models.TrackedBet
	subs []models.Subscription
}

var _ Store = (*Memory)(nil)

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{}
}

// Close implements Store.
func (m *Memory) Close() error { return nil }

// ListActiveBets returns bets not yet in a terminal status, newest first.
func (m *Memory) ListActiveBets(ctx context.Context) ([]models.TrackedBet, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []models.TrackedBet
	for i := len(m.bets) - 1; i >= 0; i-- {
		if !m.bets[i].TerminalStatus() {
			out = append(out, m.bets[i])
		}
	}
	return out, nil
}

// ListBets returns all bets, newest first.
func (m *Memory) ListBets(ctx context.Context) ([]models.TrackedBet, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.TrackedBet, 0, len(m.bets))
	for i := len(m.bets) - 1; i >= 0; i-- {
		out = append(out, m.bets[i])
	}
	return out, nil
}

// GetBet returns one bet or (nil, nil) when absent.
func (m *Memory) GetBet(ctx context.Context, id string) (*models.TrackedBet, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for i := range m.bets {
		if m.bets[i].ID == id {
			bet := m.bets[i]
			return &bet, nil
		}
	}
	return nil, nil
}

// CreateBet appends a bet, assigning an id and defaults as needed.
func (m *Memory) CreateBet(ctx context.Context, bet *models.TrackedBet) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if bet.ID == "" {
		bet.ID = uuid.NewString()
	}
	if bet.Status == "" {
		bet.Status = models.BetStatusPending
	}
	if bet.CreatedAt.IsZero() {
		bet.CreatedAt = time.Now().UTC()
	}
	m.bets = append(m.bets, *bet)
	return nil
}

// UpdateBetStatus moves a bet to a new status.
func (m *Memory) UpdateBetStatus(ctx context.Context, id, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.bets {
		if m.bets[i].ID == id {
			m.bets[i].Status = status
			return nil
		}
	}
	return fmt.Errorf("bet %s not found", id)
}

// DeleteBet removes a bet and its subscriptions.
func (m *Memory) DeleteBet(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.bets {
		if m.bets[i].ID == id {
			m.bets = append(m.bets[:i], m.bets[i+1:]...)
			kept := m.subs[:0]
			for _, sub := range m.subs {
				if sub.BetID != id {
					kept = append(kept, sub)
				}
			}
			m.subs = kept
			return nil
		}
	}
	return fmt.Errorf("bet %s not found", id)
}

// ListSubscriptions returns the notification subscriptions for a bet.
func (m *Memory) ListSubscriptions(ctx context.Context, betID string) ([]models.Subscription, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []models.Subscription
	for _, sub := range m.subs {
		if sub.BetID == betID {
			out = append(out, sub)
		}
	}
	return out, nil
}

// CreateSubscription appends a subscription, assigning an id as needed.
func (m *Memory) CreateSubscription(ctx context.Context, sub *models.Subscription) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if sub.ID == "" {
		sub.ID = uuid.NewString()
	}
	m.subs = append(m.subs, *sub)
	return nil
}
