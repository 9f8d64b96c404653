package ws

import (
	"context"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/XavierBriggs/Argus/pkg/models"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Hub maintains the set of active clients and broadcasts engine output
// to them
type Hub struct {
	clients   map[*Client]bool
	clientsMu sync.RWMutex

	broadcast  chan ServerMessage
	register   chan *Client
	unregister chan *Client

	ctx context.Context
}

// NewHub creates a new Hub instance. ctx bounds the lifetime of all
// client pumps.
func NewHub(ctx context.Context) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan ServerMessage, 1000),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		ctx:        ctx,
	}
}

// Run starts the hub's main loop
func (h *Hub) Run(ctx context.Context) {
	log.Printf("[WS] hub started")

	for {
		select {
		case <-ctx.Done():
			h.shutdown()
			return

		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case msg := <-h.broadcast:
			h.broadcastMessage(msg)
		}
	}
}

// ServeHTTP upgrades the request and attaches the client to the hub.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[WS] upgrade error: %v", err)
		return
	}

	c := NewClient(uuid.New().String(), conn, h)
	h.Register(c)

	// Pumps use the hub context, not the request context, so the
	// connection outlives the upgrade request.
	go c.WritePump(h.ctx)
	go c.ReadPump(h.ctx)
}

// Register adds a client to the hub
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Unregister removes a client from the hub
func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// BroadcastSnapshot queues a live snapshot for all clients
func (h *Hub) BroadcastSnapshot(snap models.Snapshot) {
	h.queue(ServerMessage{
		Type:      MessageTypeLiveSnapshot,
		Payload:   snap,
		Timestamp: time.Now(),
	})
}

// BroadcastBetUpdate queues a bet update for clients whose filter matches
func (h *Hub) BroadcastBetUpdate(bet models.EnrichedBet) {
	h.queue(ServerMessage{
		Type:      MessageTypeBetUpdate,
		Payload:   bet,
		Timestamp: time.Now(),
	})
}

func (h *Hub) queue(msg ServerMessage) {
	select {
	case h.broadcast <- msg:
	default:
		log.Printf("[WS] broadcast buffer full, dropping message")
	}
}

// ClientCount returns the number of active clients
func (h *Hub) ClientCount() int {
	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()
	return len(h.clients)
}

func (h *Hub) registerClient(c *Client) {
	h.clientsMu.Lock()
	defer h.clientsMu.Unlock()

	h.clients[c] = true
	log.Printf("[WS] client %s connected (total: %d)", c.ID, len(h.clients))
}

func (h *Hub) unregisterClient(c *Client) {
	h.clientsMu.Lock()
	defer h.clientsMu.Unlock()

	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		// Signal instead of closing Send: the client's read pump may still
		// be calling TrySend concurrently.
		c.Close()
		log.Printf("[WS] client %s disconnected (total: %d)", c.ID, len(h.clients))
	}
}

func (h *Hub) broadcastMessage(msg ServerMessage) {
	h.clientsMu.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.clientsMu.RUnlock()

	for _, c := range clients {
		if msg.Type == MessageTypeBetUpdate {
			if bet, ok := msg.Payload.(models.EnrichedBet); ok && !c.WantsBet(bet.BetID) {
				continue
			}
		}

		if !c.TrySend(msg) {
			// Client buffer full, they are too slow to keep
			log.Printf("[WS] client %s buffer full, disconnecting", c.ID)
			go h.Unregister(c)
		}
	}
}

func (h *Hub) shutdown() {
	h.clientsMu.Lock()
	defer h.clientsMu.Unlock()

	log.Printf("[WS] shutting down hub (%d active clients)", len(h.clients))
	for c := range h.clients {
		c.Close()
		delete(h.clients, c)
	}
}
