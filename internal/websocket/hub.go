// Package websocket carries the per-leg media stream connections. Each
// accepted connection gets a client with buffered write pumping and a relay
// processor that owns the leg's translation pipeline.
package websocket

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/bhanuprakash2002/twilio-translation-backend/internal/relay"
	"github.com/bhanuprakash2002/twilio-translation-backend/internal/session"
	"github.com/bhanuprakash2002/twilio-translation-backend/internal/voice"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 64 * 1024 // a base64 20ms frame is well under 1KB
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// Media streams connect from the telephony provider, not a browser.
		return true
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// Hub maintains the set of active media stream clients and holds the shared
// collaborators every new leg's processor is built from.
type Hub struct {
	// Registered clients keyed by connection ID.
	clients map[string]*Client

	// Register requests from the clients.
	register chan *Client

	// Unregister requests from clients.
	unregister chan *Client

	registry *session.Registry
	pipeline relay.Pipeline
	analyzer *voice.Analyzer
	streamer *relay.Streamer
	observer relay.Observer
	relayCfg relay.Config

	mu sync.RWMutex

	logger *zap.Logger
}

// NewHub creates a hub wired to the shared session registry and pipeline
// collaborators.
func NewHub(
	registry *session.Registry,
	pipeline relay.Pipeline,
	analyzer *voice.Analyzer,
	streamer *relay.Streamer,
	observer relay.Observer,
	relayCfg relay.Config,
	logger *zap.Logger,
) *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		registry:   registry,
		pipeline:   pipeline,
		analyzer:   analyzer,
		streamer:   streamer,
		observer:   observer,
		relayCfg:   relayCfg,
		logger:     logger,
	}
}

// Run starts the hub's main loop.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.id] = client
			h.mu.Unlock()
			h.logger.Info("client registered", zap.String("connID", client.id))

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client.id]; ok {
				delete(h.clients, client.id)
				client.closeSend()
			}
			h.mu.Unlock()
			h.logger.Info("client unregistered", zap.String("connID", client.id))
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// HandleWebSocket upgrades the request and starts the client's pumps. The
// leg is not attached to a room until its start event arrives.
func HandleWebSocket(hub *Hub, c echo.Context, logger *zap.Logger) error {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		logger.Error("websocket upgrade failed", zap.Error(err))
		return err
	}

	client := &Client{
		hub:    hub,
		conn:   conn,
		send:   make(chan []byte, 256),
		id:     uuid.NewString(),
		logger: logger,
	}
	client.open.Store(true)
	client.processor = relay.NewProcessor(
		client,
		hub.registry,
		hub.pipeline,
		hub.analyzer,
		hub.streamer,
		hub.observer,
		hub.relayCfg,
		logger,
	)

	client.hub.register <- client

	// Allow collection of memory referenced by the caller by doing all work
	// in new goroutines.
	go client.writePump()
	go client.readPump()

	return nil
}
