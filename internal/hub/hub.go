package hub

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	pkglog "github.com/galantry1/luba.tv/pkg/log"
)

// Config tunes the WebSocket connection handling.
type Config struct {
	PingInterval   time.Duration
	PongWait       time.Duration
	WriteWait      time.Duration
	MaxMessageSize int64
}

// DisconnectHandler is called when a client disconnects.
type DisconnectHandler func(*Client)

// Client represents a connected WebSocket client.
type Client struct {
	id                string
	hub               *Hub
	conn              *websocket.Conn
	send              chan []byte
	disconnectHandler DisconnectHandler
}

// NewClient wraps an upgraded connection.
func NewClient(h *Hub, conn *websocket.Conn, id string) *Client {
	return &Client{
		id:   id,
		hub:  h,
		conn: conn,
		send: make(chan []byte, 256),
	}
}

// ID returns the connection identifier.
func (c *Client) ID() string {
	return c.id
}

// SetDisconnectHandler sets the handler to be called on disconnect.
func (c *Client) SetDisconnectHandler(handler DisconnectHandler) {
	c.disconnectHandler = handler
}

// Send marshals the message and queues it for delivery. A client whose send
// buffer is full is dropped rather than blocking the caller.
func (c *Client) Send(message interface{}) error {
	data, err := json.Marshal(message)
	if err != nil {
		return err
	}

	select {
	case c.send <- data:
	default:
		go c.hub.removeClient(c)
	}
	return nil
}

// RoomMessage is a message to be broadcast to a room.
type RoomMessage struct {
	RoomID  string
	Message []byte
}

// Hub manages all WebSocket connections and per-room fanout.
type Hub struct {
	clients    map[string]*Client
	rooms      map[string]map[string]*Client // roomID -> clientID -> client
	register   chan *Client
	unregister chan *Client
	broadcast  chan *RoomMessage
	mu         sync.RWMutex
	config     Config
}

// NewHub creates a new Hub.
func NewHub(cfg Config) *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		rooms:      make(map[string]map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *RoomMessage, 256),
		config:     cfg,
	}
}

// Run starts the hub's main loop.
func (h *Hub) Run() {
	l := pkglog.L()
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.id] = client
			h.mu.Unlock()
			l.Info().Str(pkglog.FieldConnID, client.id).Msg("client connected")

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client.id]; ok {
				for roomID, roomClients := range h.rooms {
					delete(roomClients, client.id)
					if len(roomClients) == 0 {
						delete(h.rooms, roomID)
					}
				}
				delete(h.clients, client.id)
				close(client.send)
			}
			h.mu.Unlock()
			l.Info().Str(pkglog.FieldConnID, client.id).Msg("client disconnected")

		case msg := <-h.broadcast:
			h.mu.RLock()
			if roomClients, ok := h.rooms[msg.RoomID]; ok {
				for _, client := range roomClients {
					select {
					case client.send <- msg.Message:
					default:
						// Client's send buffer is full
						go h.removeClient(client)
					}
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Register adds a client to the hub.
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Unregister removes a client from the hub.
func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// JoinRoom adds a connection to a room's delivery group.
func (h *Hub) JoinRoom(connID, roomID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	client, ok := h.clients[connID]
	if !ok {
		return
	}
	if _, ok := h.rooms[roomID]; !ok {
		h.rooms[roomID] = make(map[string]*Client)
	}
	h.rooms[roomID][connID] = client
}

// LeaveRoom removes a connection from a room's delivery group.
func (h *Hub) LeaveRoom(connID, roomID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if roomClients, ok := h.rooms[roomID]; ok {
		delete(roomClients, connID)
		if len(roomClients) == 0 {
			delete(h.rooms, roomID)
		}
	}
}

// BroadcastToRoom sends a message to every member of a room. Delivery is
// fire-and-forget; each client receives messages in emit order.
func (h *Hub) BroadcastToRoom(roomID string, message interface{}) error {
	data, err := json.Marshal(message)
	if err != nil {
		return err
	}

	h.broadcast <- &RoomMessage{
		RoomID:  roomID,
		Message: data,
	}
	return nil
}

func (h *Hub) removeClient(client *Client) {
	h.unregister <- client
}

// ReadPump pumps messages from the WebSocket connection into the handler.
func (c *Client) ReadPump(handler func(*Client, []byte)) {
	defer func() {
		if c.disconnectHandler != nil {
			c.disconnectHandler(c)
		}
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(c.hub.config.MaxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(c.hub.config.PongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(c.hub.config.PongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				l := pkglog.L()
				l.Error().Err(err).Str(pkglog.FieldConnID, c.id).Msg("websocket error")
			}
			break
		}

		handler(c, message)
	}
}

// WritePump pumps queued messages to the WebSocket connection.
func (c *Client) WritePump() {
	ticker := time.NewTicker(c.hub.config.PingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(c.hub.config.WriteWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(c.hub.config.WriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
