package ws

import (
	"context"
	"encoding/json"
	"log"

	"github.com/redis/go-redis/v9"

	"github.com/XavierBriggs/Argus/internal/publisher"
	"github.com/XavierBriggs/Argus/pkg/models"
)

// Subscriber bridges the engine's Redis pub/sub channels to the hub.
type Subscriber struct {
	client *redis.Client
	hub    *Hub
}

// NewSubscriber creates a subscriber feeding the given hub.
func NewSubscriber(client *redis.Client, hub *Hub) *Subscriber {
	return &Subscriber{client: client, hub: hub}
}

// Run consumes both engine channels until ctx is cancelled. The redis
// client reconnects on its own, so a closed channel just means shutdown.
func (s *Subscriber) Run(ctx context.Context) {
	sub := s.client.Subscribe(ctx, publisher.TopicLiveUpdate, publisher.TopicBetUpdate)
	defer sub.Close()

	log.Printf("[WS] subscribed to %s, %s", publisher.TopicLiveUpdate, publisher.TopicBetUpdate)

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			s.dispatch(msg)
		}
	}
}

func (s *Subscriber) dispatch(msg *redis.Message) {
	switch msg.Channel {
	case publisher.TopicLiveUpdate:
		var snap models.Snapshot
		if err := json.Unmarshal([]byte(msg.Payload), &snap); err != nil {
			log.Printf("[WS] bad snapshot payload: %v", err)
			return
		}
		s.hub.BroadcastSnapshot(snap)

	case publisher.TopicBetUpdate:
		var bet models.EnrichedBet
		if err := json.Unmarshal([]byte(msg.Payload), &bet); err != nil {
			log.Printf("[WS] bad bet update payload: %v", err)
			return
		}
		s.hub.BroadcastBetUpdate(bet)
	}
}
