package api

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/r3d91ll/spectra/pkg/results"
)

// -----------------------------------------------------------------------------
// WebSocket Constants
// -----------------------------------------------------------------------------

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 8192

	// Size of client send buffer.
	sendBufferSize = 256
)

// Channel names for subscriptions
const (
	ChannelResults = "results"
	ChannelUploads = "uploads"
)

// Event types for WebSocket messages
const (
	EventTypeResultAdded    = "result_added"
	EventTypeResultsReset   = "results_reset"
	EventTypeDescriptionSet = "description_set"
	EventTypeUploadStarted  = "upload_started"
	EventTypeUploadFinished = "upload_finished"
	EventTypeUploadFailed   = "upload_failed"
	EventTypePong           = "pong"
	EventTypeSubscribe      = "subscribe"
	EventTypeUnsubscribe    = "unsubscribe"
	EventTypePing           = "ping"
	EventTypeError          = "error"
)

// -----------------------------------------------------------------------------
// WebSocket Message Types
// -----------------------------------------------------------------------------

// WSMessage is the standard WebSocket message envelope.
type WSMessage struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp string      `json:"timestamp,omitempty"`
	Channels  []string    `json:"channels,omitempty"` // For subscribe messages
}

// UploadEventData describes the progress of one upload request.
type UploadEventData struct {
	Files    int    `json:"files"`
	Results  int    `json:"results,omitempty"`
	Rejected int    `json:"rejected,omitempty"`
	Code     string `json:"code,omitempty"`
	Message  string `json:"message,omitempty"`
}

func newMessage(eventType string, data interface{}) *WSMessage {
	return &WSMessage{
		Type:      eventType,
		Data:      data,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// -----------------------------------------------------------------------------
// WebSocket Upgrader
// -----------------------------------------------------------------------------

func newUpgrader(origins []string) *websocket.Upgrader {
	return &websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     makeOriginChecker(origins),
	}
}

// -----------------------------------------------------------------------------
// Client
// -----------------------------------------------------------------------------

// Client represents a single event subscriber connection.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	logger zerolog.Logger

	// subscriptions tracks which channels this client is subscribed to
	subscriptions map[string]bool
	subMu         sync.RWMutex
}

// NewClient creates a client subscribed to every channel.
func NewClient(hub *Hub, conn *websocket.Conn, logger zerolog.Logger) *Client {
	c := &Client{
		hub:           hub,
		conn:          conn,
		send:          make(chan []byte, sendBufferSize),
		logger:        logger,
		subscriptions: make(map[string]bool),
	}
	c.Subscribe(ChannelResults, ChannelUploads)
	return c
}

// Subscribe adds a channel subscription for this client.
func (c *Client) Subscribe(channels ...string) {
	c.subMu.Lock()
	defer c.subMu.Unlock()
	for _, ch := range channels {
		c.subscriptions[ch] = true
	}
}

// Unsubscribe removes a channel subscription for this client.
func (c *Client) Unsubscribe(channels ...string) {
	c.subMu.Lock()
	defer c.subMu.Unlock()
	for _, ch := range channels {
		delete(c.subscriptions, ch)
	}
}

// IsSubscribed checks if the client is subscribed to a channel.
func (c *Client) IsSubscribed(channel string) bool {
	c.subMu.RLock()
	defer c.subMu.RUnlock()
	return c.subscriptions[channel]
}

// readPump pumps messages from the WebSocket connection to the hub.
func (c *Client) readPump() {
	defer func() {
		c.hub.leave(c)
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
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Warn().Err(err).Msg("read error")
			}
			break
		}
		c.handleMessage(message)
	}
}

// handleMessage processes an incoming message from the client.
func (c *Client) handleMessage(message []byte) {
	var msg WSMessage
	if err := json.Unmarshal(message, &msg); err != nil {
		c.sendError("invalid_json", "Failed to parse message")
		return
	}

	switch msg.Type {
	case EventTypeSubscribe:
		if channels, ok := c.validChannels(msg); ok {
			c.Subscribe(channels...)
		}
	case EventTypeUnsubscribe:
		if channels, ok := c.validChannels(msg); ok {
			c.Unsubscribe(channels...)
		}
	case EventTypePing:
		c.enqueue(newMessage(EventTypePong, nil))
	default:
		c.sendError("unknown_type", "Unknown message type: "+msg.Type)
	}
}

func (c *Client) validChannels(msg WSMessage) ([]string, bool) {
	if len(msg.Channels) == 0 {
		c.sendError("invalid_subscribe", "No channels specified")
		return nil, false
	}
	valid := make([]string, 0, len(msg.Channels))
	for _, ch := range msg.Channels {
		switch ch {
		case ChannelResults, ChannelUploads:
			valid = append(valid, ch)
		default:
			c.logger.Debug().Str("channel", ch).Msg("unknown channel")
		}
	}
	return valid, len(valid) > 0
}

// sendError sends an error message to the client.
func (c *Client) sendError(code, message string) {
	c.enqueue(newMessage(EventTypeError, map[string]string{
		"code":    code,
		"message": message,
	}))
}

func (c *Client) enqueue(msg *WSMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	c.hub.mu.RLock()
	defer c.hub.mu.RUnlock()
	if !c.hub.clients[c] {
		return
	}
	select {
	case c.send <- data:
	default:
		// Buffer full, drop the message
	}
}

// writePump pumps messages from the hub to the WebSocket connection.
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
				// The hub closed the channel.
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

// -----------------------------------------------------------------------------
// Hub
// -----------------------------------------------------------------------------

// Hub maintains the set of event subscribers and fans result events out to
// them.
type Hub struct {
	// clients is the set of registered clients
	clients map[*Client]bool

	// broadcast is the channel for messages to broadcast to all clients
	broadcast chan []byte

	// register is the channel for new clients
	register chan *Client

	// unregister is the channel for disconnecting clients
	unregister chan *Client

	// mu protects the clients map
	mu sync.RWMutex

	// done signals the hub to stop
	done     chan struct{}
	stopOnce sync.Once

	metrics *Metrics
	logger  zerolog.Logger
}

// NewHub creates a new event hub. m may be nil.
func NewHub(m *Metrics) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		metrics:    m,
		logger:     defaultLogger().With().Str("component", "events").Logger(),
	}
}

// Run starts the hub's main loop.
func (h *Hub) Run() {
	for {
		select {
		case <-h.done:
			h.mu.Lock()
			for client := range h.clients {
				close(client.send)
				delete(h.clients, client)
			}
			h.mu.Unlock()
			h.observe()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			h.observe()
			h.logger.Debug().Int("total", h.ClientCount()).Msg("client connected")

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
			h.observe()
			h.logger.Debug().Int("total", h.ClientCount()).Msg("client disconnected")

		case message := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// Client buffer is full, close connection
					close(client.send)
					delete(h.clients, client)
				}
			}
			h.mu.Unlock()
			h.observe()
		}
	}
}

func (h *Hub) observe() {
	if h.metrics != nil {
		h.metrics.EventSubscribers.Set(float64(h.ClientCount()))
	}
}

// join registers c unless the hub has stopped.
func (h *Hub) join(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) leave(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// Stop gracefully stops the hub. It is safe to call more than once.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.done) })
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast sends a message to all connected clients.
func (h *Hub) Broadcast(msg *WSMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	select {
	case h.broadcast <- data:
	default:
		// Buffer full, drop message
	}
	return nil
}

// BroadcastToChannel sends a message to clients subscribed to a specific channel.
func (h *Hub) BroadcastToChannel(channel string, msg *WSMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients {
		if client.IsSubscribed(channel) {
			select {
			case client.send <- data:
			default:
				// Client buffer is full, skip
			}
		}
	}
	return nil
}

// ResultAdded announces a newly stored result.
func (h *Hub) ResultAdded(s results.Summary) error {
	return h.BroadcastToChannel(ChannelResults, newMessage(EventTypeResultAdded, s))
}

// ResultsReset announces that the registry was cleared.
func (h *Hub) ResultsReset() error {
	return h.BroadcastToChannel(ChannelResults, newMessage(EventTypeResultsReset, nil))
}

// DescriptionSet announces a description written to a result.
func (h *Hub) DescriptionSet(s results.Summary) error {
	return h.BroadcastToChannel(ChannelResults, newMessage(EventTypeDescriptionSet, s))
}

// Upload announces upload progress with one of the upload event types.
func (h *Hub) Upload(eventType string, data UploadEventData) error {
	return h.BroadcastToChannel(ChannelUploads, newMessage(eventType, data))
}

// -----------------------------------------------------------------------------
// HTTP Handler
// -----------------------------------------------------------------------------

// EventsHandler upgrades /ws/events connections and attaches them to the hub.
type EventsHandler struct {
	hub      *Hub
	upgrader *websocket.Upgrader
	logger   zerolog.Logger
}

// NewEventsHandler creates a new events handler with the given hub.
func NewEventsHandler(hub *Hub, upgrader *websocket.Upgrader, logger zerolog.Logger) *EventsHandler {
	return &EventsHandler{
		hub:      hub,
		upgrader: upgrader,
		logger:   logger.With().Str("component", "events").Logger(),
	}
}

// RegisterRoutes registers the events endpoint.
func (h *EventsHandler) RegisterRoutes(router *Router) {
	router.GET("/ws/events", h.ServeHTTP)
}

// ServeHTTP implements http.Handler for WebSocket connections.
func (h *EventsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn().Err(err).Msg("upgrade failed")
		return
	}

	client := NewClient(h.hub, conn, h.logger)
	if !h.hub.join(client) {
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}
