package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/ayusman/mudra/internal/bus"
)

var upgrader = websocket.Upgrader{
	// The API binds to loopback; cross-origin checks add nothing there.
	CheckOrigin: func(r *http.Request) bool { return true },
}

const (
	// clientBuffer is how many events a slow client may fall behind before
	// events are dropped for it.
	clientBuffer = 32
	// writeTimeout bounds a single websocket write.
	writeTimeout = 5 * time.Second
)

// EventsHandler streams bus events to websocket clients as JSON, one message
// per event. Each client gets its own send queue and writer goroutine so a
// stalled connection never blocks the publishing goroutine: the broadcast
// does a non-blocking send and drops events for clients whose queue is full.
type EventsHandler struct {
	bus *bus.Bus
	log zerolog.Logger

	mu      sync.RWMutex
	clients map[*websocket.Conn]chan bus.Event
}

// NewEventsHandler creates an EventsHandler fed by the given bus.
func NewEventsHandler(b *bus.Bus, log zerolog.Logger) *EventsHandler {
	h := &EventsHandler{
		bus:     b,
		log:     log.With().Str("component", "events-ws").Logger(),
		clients: make(map[*websocket.Conn]chan bus.Event),
	}
	b.Subscribe(h.broadcast)
	return h
}

// ServeHTTP upgrades the connection, starts the client's writer, and keeps
// the connection registered until the client goes away.
func (h *EventsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	ch := make(chan bus.Event, clientBuffer)
	h.mu.Lock()
	h.clients[conn] = ch
	h.mu.Unlock()

	go h.writer(conn, ch)

	// Drain client messages to notice disconnects.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	// Deregister under the write lock so no broadcast is mid-send, then
	// close the queue to stop the writer.
	h.mu.Lock()
	delete(h.clients, conn)
	h.mu.Unlock()
	close(ch)
}

// writer drains one client's queue onto its connection. A failed or timed-out
// write closes the connection, which unblocks the read loop and deregisters
// the client.
func (h *EventsHandler) writer(conn *websocket.Conn, ch <-chan bus.Event) {
	for evt := range ch {
		conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := conn.WriteJSON(evt); err != nil {
			h.log.Debug().Err(err).Msg("websocket write failed, dropping client")
			conn.Close()
			return
		}
	}
}

// broadcast runs on the bus's publish path and must never block: events for
// clients with a full queue are dropped.
func (h *EventsHandler) broadcast(evt bus.Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, ch := range h.clients {
		select {
		case ch <- evt:
		default:
			h.log.Debug().Str("event", evt.ID).Msg("dropping event for slow client")
		}
	}
}

// ClientCount returns the number of connected websocket clients.
func (h *EventsHandler) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
