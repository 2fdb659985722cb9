package ws

import (
	"encoding/json"
	"log"
	"sync"
)

// MessageType defines the type of WebSocket message
type MessageType string

// Place message types
const (
	MsgMenuReady       MessageType = "menu_ready"
	MsgMenuUnavailable MessageType = "menu_unavailable"
)

// Message is the WebSocket envelope format
type Message struct {
	Type    MessageType     `json:"type"`
	PlaceID string          `json:"placeId"`
	Payload json.RawMessage `json:"payload"`
}

// Hub manages WebSocket subscriptions per place
type Hub struct {
	// place -> subscribed connections
	placeConns map[string]map[*Connection]struct{}

	mu sync.RWMutex

	// Channels for coordination
	register   chan *Connection
	unregister chan *Connection
	broadcast  chan *BroadcastMessage
}

// Connection represents a WebSocket connection watching one place
type Connection struct {
	PlaceID string
	Send    chan []byte
	Hub     *Hub
}

// BroadcastMessage is a message to broadcast
type BroadcastMessage struct {
	PlaceID string
	Message *Message
}

// NewHub creates a new WebSocket hub
func NewHub() *Hub {
	h := &Hub{
		placeConns: make(map[string]map[*Connection]struct{}),
		register:   make(chan *Connection),
		unregister: make(chan *Connection),
		broadcast:  make(chan *BroadcastMessage, 256),
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	for {
		select {
		case conn := <-h.register:
			h.mu.Lock()
			if h.placeConns[conn.PlaceID] == nil {
				h.placeConns[conn.PlaceID] = make(map[*Connection]struct{})
			}
			h.placeConns[conn.PlaceID][conn] = struct{}{}
			h.mu.Unlock()
			log.Printf("Subscriber connected to place %s", conn.PlaceID)

		case conn := <-h.unregister:
			h.mu.Lock()
			if conns, ok := h.placeConns[conn.PlaceID]; ok {
				if _, ok := conns[conn]; ok {
					delete(conns, conn)
					close(conn.Send)
					if len(conns) == 0 {
						delete(h.placeConns, conn.PlaceID)
					}
					log.Printf("Subscriber disconnected from place %s", conn.PlaceID)
				}
			}
			h.mu.Unlock()

		case msg := <-h.broadcast:
			h.mu.RLock()
			data, _ := json.Marshal(msg.Message)
			for conn := range h.placeConns[msg.PlaceID] {
				select {
				case conn.Send <- data:
				default:
					// Drop message if buffer full
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Register adds a connection
func (h *Hub) Register(conn *Connection) {
	h.register <- conn
}

// Unregister removes a connection
func (h *Hub) Unregister(conn *Connection) {
	h.unregister <- conn
}

// Subscribers returns the number of connections watching placeID
func (h *Hub) Subscribers(placeID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.placeConns[placeID])
}

// BroadcastToPlace sends a message to every subscriber of a place (implements service.Broadcaster)
func (h *Hub) BroadcastToPlace(placeID string, msgType string, payload interface{}) {
	data, _ := json.Marshal(payload)
	h.broadcast <- &BroadcastMessage{
		PlaceID: placeID,
		Message: &Message{
			Type:    MessageType(msgType),
			PlaceID: placeID,
			Payload: data,
		},
	}
}
