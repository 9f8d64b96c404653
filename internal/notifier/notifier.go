// Package notifier delivers live-update messages to bet subscribers over
// their chosen channel. Delivery failures are the caller's to log, never to
// propagate: one dead subscriber must not block the rest of a poll cycle.
package notifier

import (
	"context"
	"fmt"
	"strings"

	"github.com/XavierBriggs/Argus/pkg/contracts"
	"github.com/XavierBriggs/Argus/pkg/models"
)

// Channel names understood by the dispatcher.
const (
	ChannelTelegram = "telegram"
	ChannelWebhook  = "webhook"
)

// Dispatcher routes a subscription to the sink registered for its channel.
type Dispatcher struct {
	sinks map[string]contracts.NotificationSink
}

var _ contracts.NotificationSink = (*Dispatcher)(nil)

// NewDispatcher creates an empty dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{sinks: make(map[string]contracts.NotificationSink)}
}

// Register installs a sink for a channel name.
func (d *Dispatcher) Register(channel string, sink contracts.NotificationSink) {
	d.sinks[channel] = sink
}

// Send implements NotificationSink.
func (d *Dispatcher) Send(ctx context.Context, sub models.Subscription, message string) error {
	sink, ok := d.sinks[sub.Channel]
	if !ok {
		return fmt.Errorf("no sink registered for channel %q", sub.Channel)
	}
	return sink.Send(ctx, sub, message)
}

// FormatBetUpdate renders an enriched bet as a plain-text notification.
func FormatBetUpdate(bet models.EnrichedBet) string {
	var sb strings.Builder

	shortID := bet.BetID
	if len(shortID) > 8 {
		shortID = shortID[:8]
	}
	sb.WriteString(fmt.Sprintf("Live update for bet %s\n", shortID))

	for _, sel := range bet.Selections {
		if sel.Live == nil {
			continue
		}
		clock := sel.Live.StatusTime
		if clock == "" {
			clock = string(sel.Live.Status)
		}
		sb.WriteString(fmt.Sprintf("  %s vs %s: %s-%s (%s)\n",
			sel.HomeTeam, sel.AwayTeam,
			displayScore(sel.Live.HomeScore), displayScore(sel.Live.AwayScore), clock))
	}
	return strings.TrimRight(sb.String(), "\n")
}

// displayScore is the one place a missing score is rendered as "?" instead
// of a number; the model keeps nil.
func displayScore(v *int) string {
	if v == nil {
		return "?"
	}
	return fmt.Sprintf("%d", *v)
}
