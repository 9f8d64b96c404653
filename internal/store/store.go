// Package store persists tracked bets and their notification subscriptions.
// The live engine only ever reads from it; the write paths exist for the
// bet-entry plumbing.
package store

import (
	"context"

	"github.com/XavierBriggs/Argus/pkg/contracts"
	"github.com/XavierBriggs/Argus/pkg/models"
)

// Store is the full persistence surface: the engine's read-only BetStore
// contract plus the CRUD plumbing used by the HTTP handlers.
type Store interface {
	contracts.BetStore

	ListBets(ctx context.Context) ([]models.TrackedBet, error)
	GetBet(ctx context.Context, id string) (*models.TrackedBet, error)
	CreateBet(ctx context.Context, bet *models.TrackedBet) error
	UpdateBetStatus(ctx context.Context, id, status string) error
	DeleteBet(ctx context.Context, id string) error
	CreateSubscription(ctx context.Context, sub *models.Subscription) error
	Close() error
}
