// Package websocket pushes live reservation and session events to
// connected dashboard clients.
package websocket

import (
	"encoding/json"
	"sync"

	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/chargegrid/chargegrid/internal/adapter/queue"
)

// Envelope is the frame sent to clients: the originating topic plus the
// raw event payload.
type Envelope struct {
	Topic   string          `json:"topic"`
	Payload json.RawMessage `json:"payload"`
}

type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	log        *zap.Logger

	mu sync.RWMutex
}

type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	userID string
}

func NewHub(log *zap.Logger) *Hub {
	return &Hub{
		broadcast:  make(chan []byte, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
		log:        log,
	}
}

// SubscribeEvents wires the hub to the message queue so every domain event
// is pushed to connected clients. Call before Run.
func (h *Hub) SubscribeEvents(mq queue.MessageQueue) error {
	topics := []string{
		queue.TopicReservationCreated,
		queue.TopicReservationCancelled,
		queue.TopicReservationCompleted,
		queue.TopicSessionStarted,
		queue.TopicSessionStopped,
	}
	for _, topic := range topics {
		topic := topic
		err := mq.Subscribe(topic, func(data []byte) error {
			h.Broadcast(topic, data)
			return nil
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// Broadcast queues an event frame for every connected client. Drops the
// frame when the broadcast buffer is full rather than blocking the caller.
func (h *Hub) Broadcast(topic string, payload []byte) {
	frame, err := json.Marshal(Envelope{Topic: topic, Payload: payload})
	if err != nil {
		h.log.Error("failed to encode websocket frame", zap.Error(err))
		return
	}
	select {
	case h.broadcast <- frame:
	default:
		h.log.Warn("websocket broadcast buffer full, dropping event", zap.String("topic", topic))
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
		case message := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					close(client.send)
					delete(h.clients, client)
				}
			}
			h.mu.Unlock()
		}
	}
}

// AddClient registers a connection and starts its pumps. Blocks until the
// connection closes so the fiber websocket handler keeps the conn alive.
func (h *Hub) AddClient(conn *websocket.Conn, userID string) {
	client := &Client{hub: h, conn: conn, send: make(chan []byte, 256), userID: userID}
	client.hub.register <- client

	go client.writePump()
	client.readPump()
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()
	for {
		// Clients only listen; the read loop exists to detect disconnects
		// and answer control frames.
		if _, _, err := c.conn.ReadMessage(); err != nil {
			break
		}
	}
}

func (c *Client) writePump() {
	defer c.conn.Close()
	for message := range c.send {
		w, err := c.conn.NextWriter(websocket.TextMessage)
		if err != nil {
			return
		}
		w.Write(message)

		// Drain anything queued behind this frame.
		n := len(c.send)
		for i := 0; i < n; i++ {
			w.Write(<-c.send)
		}

		if err := w.Close(); err != nil {
			return
		}
	}
	c.conn.WriteMessage(websocket.CloseMessage, []byte{})
}
