// Package realtime streams completed predictions to WebSocket clients so a
// dashboard can watch scoring activity live instead of polling the history
// endpoint.
package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// MetricsInterface defines the streaming metrics the hub reports to.
type MetricsInterface interface {
	EventsStreamedInc()
	WSClientsSet(int)
}

// PredictionEvent is the broadcast payload for one completed prediction.
type PredictionEvent struct {
	PredictionID string    `json:"prediction_id"`
	Timestamp    time.Time `json:"timestamp"`
	FraudScore   float64   `json:"fraud_score"`
	IsFraud      bool      `json:"is_fraud"`
	RiskLevel    string    `json:"risk_level"`
	Amount       float64   `json:"amount"`
}

// Subscription filters what a client receives. The zero value receives
// everything.
type Subscription struct {
	MinScore  float64 `json:"minScore"`  // Only events at or above this score
	FraudOnly bool    `json:"fraudOnly"` // Only events classified as fraud
}

// MaxClients caps concurrent WebSocket connections.
const MaxClients = 1024

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true // Allow non-browser clients
		}
		host := r.Host
		return origin == "http://"+host || origin == "https://"+host
	},
}

var normalCloseCodes = []int{
	websocket.CloseNormalClosure,
	websocket.CloseGoingAway,
	websocket.CloseNoStatusReceived,
}

type client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
	mu   sync.RWMutex
	sub  Subscription
}

// Hub manages WebSocket connections and fans prediction events out to them.
type Hub struct {
	clients    map[*client]bool
	broadcast  chan *PredictionEvent
	register   chan *client
	unregister chan *client
	mu         sync.RWMutex
	metrics    MetricsInterface
	done       chan struct{} // closed when Run exits; prevents upgrade race
}

// NewHub creates an event hub. Run must be started before HandleWebSocket is
// wired into a mux.
func NewHub(metrics MetricsInterface) *Hub {
	return &Hub{
		clients:    make(map[*client]bool),
		broadcast:  make(chan *PredictionEvent, 256),
		register:   make(chan *client),
		unregister: make(chan *client),
		metrics:    metrics,
		done:       make(chan struct{}),
	}
}

// Run is the hub's main loop. It exits when ctx is canceled, closing every
// client connection.
func (h *Hub) Run(ctx context.Context) {
	log.Info().Msg("realtime hub started")
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for c := range h.clients {
				close(c.send) // writePump sends CloseMessage on closed channel
				delete(h.clients, c)
			}
			h.mu.Unlock()
			h.setClientGauge(0)
			log.Info().Msg("realtime hub stopped")
			return

		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = true
			n := len(h.clients)
			h.mu.Unlock()
			h.setClientGauge(n)
			log.Info().Int("total", n).Msg("event client connected")

		case c := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}
			n := len(h.clients)
			h.mu.Unlock()
			h.setClientGauge(n)
			log.Info().Int("total", n).Msg("event client disconnected")

		case event := <-h.broadcast:
			if h.metrics != nil {
				h.metrics.EventsStreamedInc()
			}
			payload, err := json.Marshal(event)
			if err != nil {
				continue
			}
			h.mu.RLock()
			var slow []*client
			for c := range h.clients {
				if !c.wants(event) {
					continue
				}
				select {
				case c.send <- payload:
				default:
					slow = append(slow, c)
				}
			}
			h.mu.RUnlock()
			// Remove slow clients under write lock
			if len(slow) > 0 {
				h.mu.Lock()
				for _, c := range slow {
					if _, ok := h.clients[c]; ok {
						close(c.send)
						delete(h.clients, c)
					}
				}
				n := len(h.clients)
				h.mu.Unlock()
				h.setClientGauge(n)
			}
		}
	}
}

// Broadcast queues an event for delivery. Drops the event if the queue is
// full rather than blocking the scoring path.
func (h *Hub) Broadcast(event *PredictionEvent) {
	if h == nil {
		return
	}
	select {
	case h.broadcast <- event:
	default:
		log.Warn().Msg("broadcast channel full, dropping event")
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// HandleWebSocket upgrades HTTP to WebSocket and registers the client.
func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	select {
	case <-h.done:
		http.Error(w, "server shutting down", http.StatusServiceUnavailable)
		return
	default:
	}

	h.mu.RLock()
	n := len(h.clients)
	h.mu.RUnlock()
	if n >= MaxClients {
		http.Error(w, "too many connections", http.StatusServiceUnavailable)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("websocket upgrade failed")
		return
	}

	c := &client{
		hub:  h,
		conn: conn,
		send: make(chan []byte, 64),
	}

	h.register <- c

	go c.writePump()
	go c.readPump()
}

func (h *Hub) setClientGauge(n int) {
	if h.metrics != nil {
		h.metrics.WSClientsSet(n)
	}
}

func (c *client) wants(event *PredictionEvent) bool {
	c.mu.RLock()
	sub := c.sub
	c.mu.RUnlock()

	if sub.FraudOnly && !event.IsFraud {
		return false
	}
	if event.FraudScore < sub.MinScore {
		return false
	}
	return true
}

// readPump reads subscription updates and keeps the connection alive.
func (c *client) readPump() {
	defer func() {
		c.hub.unregister <- c
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(4096)
	_ = c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, normalCloseCodes...) {
				log.Warn().Err(err).Msg("websocket read error")
			}
			break
		}

		var sub Subscription
		if err := json.Unmarshal(message, &sub); err == nil {
			c.mu.Lock()
			c.sub = sub
			c.mu.Unlock()
		}
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
