package contracts

import (
	"context"

	"github.com/XavierBriggs/Argus/pkg/models"
)

// BetStore is the engine's read-only view of bet persistence.
type BetStore interface {
	// ListActiveBets returns bets not yet in a terminal status.
	ListActiveBets(ctx context.Context) ([]models.TrackedBet, error)

	// ListSubscriptions returns the notification subscriptions for a bet.
	ListSubscriptions(ctx context.Context, betID string) ([]models.Subscription, error)
}

// NotificationSink delivers a message to one subscription target. A delivery
// failure is non-fatal to the caller.
type NotificationSink interface {
	Send(ctx context.Context, sub models.Subscription, message string) error
}

// Bus publishes engine events for downstream consumers.
// Topics: "live:update" (full Snapshot), "bet:live-update" (one EnrichedBet).
type Bus interface {
	PublishSnapshot(ctx context.Context, snap models.Snapshot) error
	PublishBetUpdate(ctx context.Context, bet models.EnrichedBet) error
}
