package handler

import (
	"net/http"
	"strconv"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/zizouhuweidi/trivia/internal/service"
	ws "github.com/zizouhuweidi/trivia/internal/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins, matching the CORS policy
	},
}

// WebSocketHandler streams catalog events to subscribers
type WebSocketHandler struct {
	hub *ws.Hub
}

// NewWebSocketHandler creates a new WebSocket handler
func NewWebSocketHandler(hub *ws.Hub) *WebSocketHandler {
	return &WebSocketHandler{
		hub: hub,
	}
}

// HandleWebSocket subscribes the connection to one category, or to all when
// the category query parameter is absent
func (h *WebSocketHandler) HandleWebSocket(c echo.Context) error {
	categoryID := ws.AllCategories
	if raw := c.QueryParam("category"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id < 0 {
			return service.NewInvalidInput("category", "The category must be a category id.")
		}
		categoryID = id
	}

	// Upgrade HTTP connection to WebSocket
	conn, err := upgrader.Upgrade(c.Response().Writer, c.Request(), nil)
	if err != nil {
		return err
	}

	client := ws.NewClient(h.hub, conn, categoryID)
	h.hub.Register(client)

	// Start goroutines for reading and writing
	go client.ReadPump()
	go client.WritePump()

	return nil
}
