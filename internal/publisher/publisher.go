// Package publisher bridges engine events onto Redis Pub/Sub so downstream
// consumers (websocket broadcaster, bots) can react without polling.
package publisher

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/XavierBriggs/Argus/pkg/contracts"
	"github.com/XavierBriggs/Argus/pkg/models"
)

// Topics published by the engine.
const (
	TopicLiveUpdate = "live:update"
	TopicBetUpdate  = "bet:live-update"
)

// RedisBus publishes engine events to Redis channels.
type RedisBus struct {
	client *redis.Client
}

var _ contracts.Bus = (*RedisBus)(nil)

// NewRedisBus creates a bus over an existing Redis client.
func NewRedisBus(client *redis.Client) *RedisBus {
	return &RedisBus{client: client}
}

// PublishSnapshot broadcasts a full live snapshot, including empty ones, so
// subscribers can clear stale state.
func (b *RedisBus) PublishSnapshot(ctx context.Context, snap models.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := b.client.Publish(ctx, TopicLiveUpdate, data).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", TopicLiveUpdate, err)
	}
	return nil
}

// PublishBetUpdate broadcasts one enriched bet.
func (b *RedisBus) PublishBetUpdate(ctx context.Context, bet models.EnrichedBet) error {
	data, err := json.Marshal(bet)
	if err != nil {
		return fmt.Errorf("marshal enriched bet: %w", err)
	}
	if err := b.client.Publish(ctx, TopicBetUpdate, data).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", TopicBetUpdate, err)
	}
	return nil
}
