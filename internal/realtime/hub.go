// Package realtime broadcasts feed-change events to websocket subscribers
// so the congregation app can refresh without polling.
package realtime

import (
	"log"
	"net/http"
	"sync"
	"time"

	"bethel-social/internal/models"

	"github.com/gorilla/websocket"
)

// Event is the envelope pushed to subscribers.
type Event struct {
	Type   string       `json:"type"` // feed_updated, live_started, live_ended
	Source string       `json:"source,omitempty"`
	Count  int          `json:"count,omitempty"`
	Post   *models.Post `json:"post,omitempty"`
	PostID string       `json:"post_id,omitempty"`
	Time   time.Time    `json:"time"`
}

// Hub tracks connected websocket clients and fans events out to them.
type Hub struct {
	mu       sync.Mutex
	clients  map[*websocket.Conn]bool
	upgrader websocket.Upgrader
}

// NewHub creates a new hub
func NewHub() *Hub {
	return &Hub{
		clients: make(map[*websocket.Conn]bool),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				// Same policy as the REST surface: any origin.
				return true
			},
		},
	}
}

// ServeWS upgrades the request and registers the client. Subscribers only
// receive events; inbound messages are drained and discarded.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("⚠️ Websocket upgrade failed: %v", err)
		return
	}

	h.mu.Lock()
	h.clients[conn] = true
	h.mu.Unlock()

	go func() {
		defer h.remove(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// ClientCount returns the number of connected subscribers.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *Hub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	delete(h.clients, conn)
	h.mu.Unlock()
	conn.Close()
}

func (h *Hub) broadcast(event Event) {
	event.Time = time.Now()

	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.clients {
		conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
		if err := conn.WriteJSON(event); err != nil {
			delete(h.clients, conn)
			conn.Close()
		}
	}
}

// FeedUpdated implements services.Notifier
func (h *Hub) FeedUpdated(source string, count int) {
	h.broadcast(Event{Type: "feed_updated", Source: source, Count: count})
}

// LiveStarted implements services.Notifier
func (h *Hub) LiveStarted(post models.Post) {
	h.broadcast(Event{Type: "live_started", Post: &post})
}

// LiveEnded implements services.Notifier
func (h *Hub) LiveEnded(postID string) {
	h.broadcast(Event{Type: "live_ended", PostID: postID})
}
