package ws

import (
	"context"
	"sync"
	"testing"
	"time"
)

func heartbeat() ServerMessage {
	return ServerMessage{Type: MessageTypeHeartbeat, Timestamp: time.Now()}
}

func TestTrySend_ConcurrentWithClose(t *testing.T) {
	c := NewClient("c-1", nil, nil)

	// Fill the buffer so the slow-client disconnect path is realistic.
	for c.TrySend(heartbeat()) {
	}

	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			for j := 0; j < 1000; j++ {
				c.TrySend(heartbeat())
			}
		}()
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		<-start
		c.Close()
	}()

	close(start)
	wg.Wait() // a send on a closed channel would have panicked a goroutine

	if c.TrySend(heartbeat()) {
		t.Error("expected TrySend to report false after Close")
	}
}

func TestClient_CloseIdempotent(t *testing.T) {
	c := NewClient("c-1", nil, nil)
	c.Close()
	c.Close()
}

func TestHub_UnregisterAllowsLateClientReply(t *testing.T) {
	h := NewHub(context.Background())
	c := NewClient("c-1", nil, h)

	h.registerClient(c)
	if h.ClientCount() != 1 {
		t.Fatalf("expected 1 client, got %d", h.ClientCount())
	}

	h.unregisterClient(c)
	if h.ClientCount() != 0 {
		t.Fatalf("expected 0 clients, got %d", h.ClientCount())
	}

	// A frame arriving between unregister and connection teardown replies
	// through TrySend; it must drop the message, not panic.
	if c.TrySend(heartbeat()) {
		t.Error("expected TrySend to report false after unregister")
	}

	h.unregisterClient(c) // repeat unregister is a no-op
}

func TestClient_WantsBet(t *testing.T) {
	c := NewClient("c-1", nil, nil)

	if !c.WantsBet("any-bet") {
		t.Error("expected empty filter to accept all bets")
	}

	c.SetFilter(SubscriptionFilter{BetIDs: []string{"bet-1"}})
	if !c.WantsBet("bet-1") {
		t.Error("expected filtered bet to be accepted")
	}
	if c.WantsBet("bet-2") {
		t.Error("expected unfiltered bet to be rejected")
	}
}
