package ui

import (
	"encoding/json"
	"io"
	"log"
	"sync"

	"github.com/gin-gonic/gin"

	"ideaverse/ports"
)

// SSEHub fans workflow events out to connected browser clients. It is a
// broadcast hub: every client sees every event, since one browser drives
// one workflow at a time.
type SSEHub struct {
	clients    map[chan ports.WorkflowEvent]bool
	clientsMu  sync.RWMutex
	register   chan chan ports.WorkflowEvent
	unregister chan chan ports.WorkflowEvent
	broadcast  chan ports.WorkflowEvent
}

// NewSSEHub creates the hub and starts its event loop
func NewSSEHub() *SSEHub {
	hub := &SSEHub{
		clients:    make(map[chan ports.WorkflowEvent]bool),
		register:   make(chan chan ports.WorkflowEvent, 10),
		unregister: make(chan chan ports.WorkflowEvent, 10),
		broadcast:  make(chan ports.WorkflowEvent, 100),
	}

	go hub.run()
	return hub
}

// Publish implements ports.EventSink. It never blocks the engine: when the
// broadcast buffer is full the event is dropped, since the feed is cosmetic.
func (h *SSEHub) Publish(event ports.WorkflowEvent) {
	select {
	case h.broadcast <- event:
	default:
		log.Printf("[SSE] broadcast buffer full, dropping %s event", event.EventType)
	}
}

// run processes hub operations
func (h *SSEHub) run() {
	for {
		select {
		case ch := <-h.register:
			h.clientsMu.Lock()
			h.clients[ch] = true
			log.Printf("[SSE] client connected (total: %d)", len(h.clients))
			h.clientsMu.Unlock()

		case ch := <-h.unregister:
			h.clientsMu.Lock()
			if h.clients[ch] {
				delete(h.clients, ch)
				close(ch)
				log.Printf("[SSE] client disconnected (remaining: %d)", len(h.clients))
			}
			h.clientsMu.Unlock()

		case event := <-h.broadcast:
			h.clientsMu.RLock()
			for ch := range h.clients {
				select {
				case ch <- event:
				default:
					// Slow client; skip rather than stall the loop
				}
			}
			h.clientsMu.RUnlock()
		}
	}
}

// HandleSSE streams workflow events to one client until it disconnects
func (h *SSEHub) HandleSSE(c *gin.Context) {
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("Access-Control-Allow-Origin", "*")

	ch := make(chan ports.WorkflowEvent, 10)
	h.register <- ch
	defer func() { h.unregister <- ch }()

	c.Stream(func(w io.Writer) bool {
		select {
		case event, ok := <-ch:
			if !ok {
				return false
			}
			data, err := json.Marshal(event)
			if err != nil {
				log.Printf("[SSE] failed to marshal event: %v", err)
				return true
			}
			c.SSEvent("workflow", string(data))
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}
