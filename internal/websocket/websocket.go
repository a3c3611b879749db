package websocket

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 512

	sendBuffer = 256
)

// AllCategories subscribes a client to events from every category
const AllCategories int64 = 0

// Message represents a catalog event sent to subscribers
type Message struct {
	Type       string          `json:"type"`
	CategoryID int64           `json:"category_id"`
	Payload    json.RawMessage `json:"payload"`
}

// Client is a middleman between the websocket connection and the hub
type Client struct {
	ID         string
	Hub        *Hub
	Conn       *websocket.Conn
	CategoryID int64
	Send       chan []byte
}

// NewClient creates a client subscribed to categoryID (AllCategories for every category)
func NewClient(hub *Hub, conn *websocket.Conn, categoryID int64) *Client {
	return &Client{
		ID:         uuid.NewString(),
		Hub:        hub,
		Conn:       conn,
		CategoryID: categoryID,
		Send:       make(chan []byte, sendBuffer),
	}
}

func (c *Client) wants(categoryID int64) bool {
	return c.CategoryID == AllCategories || c.CategoryID == categoryID
}

// Hub maintains the set of subscribed clients and fans catalog events out to them
type Hub struct {
	// Registered clients
	clients map[*Client]bool

	// Register requests from the clients
	register chan *Client

	// Mutex for thread-safe operations
	mu sync.RWMutex
}

// NewHub creates a new hub instance
func NewHub() *Hub {
	return &Hub{
		register: make(chan *Client),
		clients:  make(map[*Client]bool),
	}
}

// Run processes registrations until done is closed
func (h *Hub) Run(done <-chan struct{}) {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()

		case <-done:
			h.mu.Lock()
			for client := range h.clients {
				delete(h.clients, client)
				close(client.Send)
			}
			h.mu.Unlock()
			return
		}
	}
}

// Register registers a new client with the hub
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Unregister removes a client from the hub. It is safe to call more than once.
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.Send)
	}
}

// BroadcastToCategory sends an event to every client subscribed to categoryID
// or to all categories. Clients whose buffer is full are dropped.
func (h *Hub) BroadcastToCategory(categoryID int64, messageType string, payload []byte) {
	messageBytes, err := json.Marshal(Message{
		Type:       messageType,
		CategoryID: categoryID,
		Payload:    payload,
	})
	if err != nil {
		log.Printf("Error marshaling message: %v", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		if !client.wants(categoryID) {
			continue
		}
		select {
		case client.Send <- messageBytes:
		default:
			log.Printf("Dropping slow client %s", client.ID)
			close(client.Send)
			delete(h.clients, client)
		}
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// ReadPump drains the connection so control frames are handled, and unregisters on close.
// Subscribers are receive-only; inbound payloads are discarded.
func (c *Client) ReadPump() {
	defer func() {
		c.Hub.Unregister(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("error: %v", err)
			}
			return
		}
	}
}

// WritePump pumps messages from the hub to the WebSocket connection
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
