// Package ws owns the live-stream fan-out: a single in-process subscriber
// registry plus the WebSocket handler that dashboards connect to. Delivery is
// best-effort and at-most-once; a subscriber that cannot keep up is dropped
// rather than slowing the publisher or its peers. Late joiners fetch a
// snapshot over the query API instead of replay.
package ws

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/coder/websocket"
	"github.com/rs/zerolog/log"
)

type Hub struct {
	mu     sync.Mutex
	subs   map[chan []byte]struct{}
	buffer int
}

// NewHub creates a hub whose subscribers each get a send buffer of the given
// size. A subscriber is dropped when its buffer overflows.
func NewHub(buffer int) *Hub {
	if buffer <= 0 {
		buffer = 64
	}
	return &Hub{
		subs:   make(map[chan []byte]struct{}),
		buffer: buffer,
	}
}

// Subscribe registers a subscriber and returns its message channel plus a
// cleanup func. The channel is closed when the subscriber is dropped or
// cleaned up; cleanup is safe to call more than once and safe to interleave
// with in-flight publishes.
func (h *Hub) Subscribe() (<-chan []byte, func()) {
	ch := make(chan []byte, h.buffer)

	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	cleanup := func() { h.drop(ch) }
	return ch, cleanup
}

func (h *Hub) drop(ch chan []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subs[ch]; ok {
		delete(h.subs, ch)
		close(ch)
	}
}

// Publish serializes v once and sends it to every subscriber. A subscriber
// whose buffer is full is removed; the failure never reaches the publisher
// or other recipients.
func (h *Hub) Publish(v any) {
	msg, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("hub publish: marshal")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs {
		select {
		case ch <- msg:
		default:
			delete(h.subs, ch)
			close(ch)
			log.Warn().Msg("hub: dropped slow subscriber")
		}
	}
}

// ClientCount reports the current number of live subscribers.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// ServeStream handles WebSocket connections for the live event stream.
// Clients are read-only; incoming frames are drained and ignored.
func (h *Hub) ServeStream(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		log.Error().Err(err).Msg("websocket accept")
		return
	}
	defer conn.CloseNow()

	messages, cleanup := h.Subscribe()
	defer cleanup()

	// CloseRead drains client frames and cancels the context on teardown.
	ctx := conn.CloseRead(r.Context())

	for {
		select {
		case <-ctx.Done():
			_ = conn.Close(websocket.StatusNormalClosure, "connection closed")
			return
		case msg, ok := <-messages:
			if !ok {
				_ = conn.Close(websocket.StatusPolicyViolation, "subscriber dropped")
				return
			}
			if writeErr := conn.Write(ctx, websocket.MessageText, msg); writeErr != nil {
				log.Debug().Err(writeErr).Msg("websocket write")
				return
			}
		}
	}
}
