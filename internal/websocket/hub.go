package websocket

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/adanbank/signal-sentinel/internal/logger"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 1024
	sendBufferSize = 64
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Internal review tool, any origin may connect.
		return true
	},
}

// Client is one connected dashboard.
type Client struct {
	hub           *Hub
	conn          *websocket.Conn
	send          chan []byte
	subscriptions map[string]bool
}

// Hub fans events out to connected clients. Slow clients have their
// connection dropped rather than blocking the broadcast loop.
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	subscribe  chan subscription
	broadcast  chan Event
	config     HubConfig
	logger     *logger.Logger
}

type subscription struct {
	client *Client
	events map[string]bool
}

// NewHub creates a hub.
func NewHub(cfg HubConfig, log *logger.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		subscribe:  make(chan subscription, 16),
		broadcast:  make(chan Event, 256),
		config:     cfg,
		logger:     log.WithComponent("websocket"),
	}
}

// Run processes registration and broadcast events until the channel world
// ends. Call in its own goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = true
			h.logger.Debug("client connected", zap.Int("clients", len(h.clients)))
			if h.config.BroadcastConnections {
				h.send(NewEvent(EventConnection, map[string]int{"clients": len(h.clients)}))
			}

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				h.logger.Debug("client disconnected", zap.Int("clients", len(h.clients)))
			}

		case sub := <-h.subscribe:
			if h.clients[sub.client] {
				sub.client.subscriptions = sub.events
			}

		case event := <-h.broadcast:
			if !h.allowed(event.Type) {
				continue
			}
			h.send(event)
		}
	}
}

func (h *Hub) allowed(eventType string) bool {
	switch eventType {
	case EventSignalNew:
		return h.config.BroadcastSignals
	case EventSignalResolved:
		return h.config.BroadcastResolutions
	case EventSystemStatus:
		return h.config.BroadcastSystem
	case EventConnection:
		return h.config.BroadcastConnections
	}
	return false
}

func (h *Hub) send(event Event) {
	data, err := json.Marshal(event)
	if err != nil {
		h.logger.Error("failed to marshal event", zap.Error(err))
		return
	}
	for client := range h.clients {
		if !client.subscribed(event.Type) {
			continue
		}
		select {
		case client.send <- data:
		default:
			// Send buffer full, drop the client.
			delete(h.clients, client)
			close(client.send)
		}
	}
}

// Broadcast queues an event for delivery. Never blocks; if the hub's
// queue is full the event is dropped.
func (h *Hub) Broadcast(event Event) {
	select {
	case h.broadcast <- event:
	default:
		h.logger.Warn("broadcast queue full, dropping event", zap.String("type", event.Type))
	}
}

// ServeWS upgrades an HTTP request to a websocket client connection.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", zap.Error(err))
		return
	}

	client := &Client{
		hub:  h,
		conn: conn,
		send: make(chan []byte, sendBufferSize),
		subscriptions: map[string]bool{
			EventSignalNew:      true,
			EventSignalResolved: true,
			EventSystemStatus:   true,
			EventConnection:     true,
		},
	}

	h.register <- client

	go client.writePump()
	go client.readPump()
}

func (c *Client) subscribed(eventType string) bool {
	return c.subscriptions[eventType]
}

// subscribeMessage is the only inbound message clients send: a replacement
// subscription list.
type subscribeMessage struct {
	Subscribe []string `json:"subscribe"`
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		var msg subscribeMessage
		if err := json.Unmarshal(message, &msg); err != nil || msg.Subscribe == nil {
			continue
		}
		subs := make(map[string]bool, len(msg.Subscribe))
		for _, s := range msg.Subscribe {
			subs[s] = true
		}
		// Applied on the hub goroutine to keep subscription state single-owner.
		c.hub.subscribe <- subscription{client: c, events: subs}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
