// Package ws fans live snapshots and bet updates out to WebSocket clients.
// It subscribes to the same Redis channels the scheduler publishes on, so
// browser clients see exactly what pub/sub consumers see.
package ws

import (
	"encoding/json"
	"time"
)

// Server-to-client message types
const (
	MessageTypeLiveSnapshot = "live_snapshot"
	MessageTypeBetUpdate    = "bet_update"
	MessageTypeHeartbeat    = "heartbeat"
	MessageTypeError        = "error"
)

// Client-to-server message types
const (
	MessageTypeSubscribe   = "subscribe"
	MessageTypeUnsubscribe = "unsubscribe"
)

// ServerMessage is the envelope for all outbound messages
type ServerMessage struct {
	Type      string      `json:"type"`
	Payload   interface{} `json:"payload"`
	Timestamp time.Time   `json:"timestamp"`
}

// ClientMessage is the envelope for all inbound messages
type ClientMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// SubscriptionFilter narrows which bet updates a client receives.
// Empty filter means all updates.
type SubscriptionFilter struct {
	BetIDs []string `json:"bet_ids,omitempty"`
}

// ErrorMessage is the payload of an error server message
type ErrorMessage struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
