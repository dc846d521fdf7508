package bigscreenhandlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	bigscreenservice "github.com/Black-And-White-Club/arcade-bigscreen/app/modules/bigscreen/application"
	bigscreendomain "github.com/Black-And-White-Club/arcade-bigscreen/app/modules/bigscreen/domain"
	bigscreeneventbus "github.com/Black-And-White-Club/arcade-bigscreen/app/modules/bigscreen/infrastructure/eventbus"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Message types exchanged with display clients.
const (
	TypeBoard       = "board"
	TypeLive        = "live"
	TypeBoardPage   = "board.page"
	TypeBoardHeight = "board.height"
	TypeResize      = "resize"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBuffer     = 32
)

var topicTypes = map[string]string{
	bigscreeneventbus.TopicBoardUpdated: TypeBoard,
	bigscreeneventbus.TopicLiveUpdated:  TypeLive,
	bigscreeneventbus.TopicBoardPage:    TypeBoardPage,
}

// Envelope is the JSON frame sent to and received from displays.
type Envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Subscriber is the event bus side the hub reads from.
type Subscriber interface {
	Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error)
}

// ClientMetrics counts connected displays.
type ClientMetrics interface {
	ClientConnected()
	ClientDisconnected()
}

type client struct {
	id   string
	conn *websocket.Conn
	send chan []byte
	once sync.Once
}

func (c *client) close() {
	c.once.Do(func() { close(c.send) })
}

// Hub relays event bus snapshots to every connected display over WebSocket.
type Hub struct {
	bus      Subscriber
	service  bigscreenservice.Service
	logger   *slog.Logger
	metrics  ClientMetrics
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[string]*client
}

func NewHub(bus Subscriber, service bigscreenservice.Service, logger *slog.Logger, metrics ClientMetrics, allowedOrigins []string) *Hub {
	origins := originSet(allowedOrigins)
	return &Hub{
		bus:     bus,
		service: service,
		logger:  logger,
		metrics: metrics,
		clients: make(map[string]*client),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" || len(origins) == 0 {
					return true
				}
				_, ok := origins[origin]
				return ok
			},
		},
	}
}

// Run subscribes to every snapshot topic and broadcasts until ctx is done.
func (h *Hub) Run(ctx context.Context) error {
	var wg sync.WaitGroup
	for topic, msgType := range topicTypes {
		messages, err := h.bus.Subscribe(ctx, topic)
		if err != nil {
			return fmt.Errorf("failed to subscribe to %s: %w", topic, err)
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			for msg := range messages {
				h.broadcast(Envelope{Type: msgType, Data: json.RawMessage(msg.Payload)})
				msg.Ack()
			}
		}()
	}

	wg.Wait()
	h.closeAll()
	return nil
}

// ClientCount returns the number of connected displays.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// ServeWS upgrades the request and sends the current board and live state right away.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WarnContext(r.Context(), "WebSocket upgrade failed", "error", err)
		return
	}

	c := &client{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan []byte, sendBuffer),
	}

	// Initial state is queued before registration so it precedes any broadcast.
	for _, initial := range []struct {
		msgType string
		v       any
	}{
		{TypeBoard, h.service.Board()},
		{TypeLive, h.service.Live()},
	} {
		if frame, ok := h.encode(initial.msgType, initial.v); ok {
			c.send <- frame
		}
	}
	h.register(c)

	h.logger.InfoContext(r.Context(), "Display connected",
		"client_id", c.id,
		"remote_addr", r.RemoteAddr,
	)

	go h.writePump(c)
	go h.readPump(c)
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	h.clients[c.id] = c
	h.mu.Unlock()

	if h.metrics != nil {
		h.metrics.ClientConnected()
	}
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	_, ok := h.clients[c.id]
	delete(h.clients, c.id)
	if ok {
		c.close()
	}
	h.mu.Unlock()

	if !ok {
		return
	}
	if h.metrics != nil {
		h.metrics.ClientDisconnected()
	}
	h.logger.Info("Display disconnected", "client_id", c.id)
}

func (h *Hub) closeAll() {
	h.mu.RLock()
	clients := make([]*client, 0, len(h.clients))
	for _, c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		h.unregister(c)
	}
}

func (h *Hub) broadcast(env Envelope) {
	frame, err := json.Marshal(env)
	if err != nil {
		h.logger.Error("Failed to encode broadcast", "type", env.Type, "error", err)
		return
	}

	h.mu.RLock()
	var slow []*client
	for _, c := range h.clients {
		select {
		case c.send <- frame:
		default:
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range slow {
		h.logger.Warn("Dropping slow display", "client_id", c.id)
		h.unregister(c)
	}
}

func (h *Hub) encode(msgType string, v any) ([]byte, bool) {
	data, err := json.Marshal(v)
	if err != nil {
		h.logger.Error("Failed to encode message", "type", msgType, "error", err)
		return nil, false
	}
	frame, err := json.Marshal(Envelope{Type: msgType, Data: data})
	if err != nil {
		h.logger.Error("Failed to encode envelope", "type", msgType, "error", err)
		return nil, false
	}
	return frame, true
}

// reply queues a frame for one registered client.
func (h *Hub) reply(c *client, msgType string, v any) {
	frame, ok := h.encode(msgType, v)
	if !ok {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	if _, registered := h.clients[c.id]; !registered {
		return
	}
	select {
	case c.send <- frame:
	default:
		h.logger.Warn("Display send buffer full", "client_id", c.id, "type", msgType)
	}
}

func (h *Hub) readPump(c *client) {
	defer func() {
		h.unregister(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var env Envelope
		if err := c.conn.ReadJSON(&env); err != nil {
			var syntaxErr *json.SyntaxError
			if errors.As(err, &syntaxErr) {
				h.logger.Debug("Ignoring malformed display message", "client_id", c.id, "error", err)
				continue
			}
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Warn("Display read failed", "client_id", c.id, "error", err)
			}
			return
		}
		h.handleClientMessage(c, env)
	}
}

func (h *Hub) handleClientMessage(c *client, env Envelope) {
	switch env.Type {
	case TypeResize:
		var viewport bigscreendomain.Viewport
		if err := json.Unmarshal(env.Data, &viewport); err != nil {
			h.logger.Warn("Invalid resize message", "client_id", c.id, "error", err)
			return
		}
		h.reply(c, TypeBoardHeight, h.service.BoardHeight(viewport))
	default:
		h.logger.Debug("Ignoring display message", "client_id", c.id, "type", env.Type)
	}
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
