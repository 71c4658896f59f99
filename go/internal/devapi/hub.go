package devapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/girlsgotgame/courtside/go/internal/push"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Hub tracks scoreboard sockets and which games each one follows
type Hub struct {
	// game ID -> connections following that game
	gameConnections map[string]map[*Connection]bool
	mu              sync.RWMutex

	upgrader websocket.Upgrader
	config   HubConfig

	broadcastCh chan broadcastMessage
}

// Connection is one push client
type Connection struct {
	ID   string
	Conn *websocket.Conn
	Send chan []byte
	Hub  *Hub

	// games this connection joined, guarded by Hub.mu
	games map[string]bool

	ConnectedAt time.Time
	closeOnce   sync.Once
}

// HubConfig tunes socket timeouts and buffers
type HubConfig struct {
	WriteTimeout    time.Duration
	ReadTimeout     time.Duration
	PingInterval    time.Duration
	MaxMessageSize  int64
	ReadBufferSize  int
	WriteBufferSize int
	CheckOrigin     func(r *http.Request) bool
}

type broadcastMessage struct {
	GameID string
	Event  *push.Event
}

// DefaultHubConfig suits a local dev server
func DefaultHubConfig() HubConfig {
	return HubConfig{
		WriteTimeout:    10 * time.Second,
		ReadTimeout:     60 * time.Second,
		PingInterval:    30 * time.Second,
		MaxMessageSize:  1024,
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			// dev server, any origin
			return true
		},
	}
}

func NewHub(config HubConfig) *Hub {
	return &Hub{
		gameConnections: make(map[string]map[*Connection]bool),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  config.ReadBufferSize,
			WriteBufferSize: config.WriteBufferSize,
			CheckOrigin:     config.CheckOrigin,
		},
		config:      config,
		broadcastCh: make(chan broadcastMessage, 1000),
	}
}

// Start fans queued events out to followers until ctx is done
func (h *Hub) Start(ctx context.Context) {
	log.Info().Msg("game fan-out running")

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("game fan-out stopped")
			return
		case message := <-h.broadcastCh:
			h.handleBroadcast(message)
		}
	}
}

// ServeHTTP accepts a scoreboard socket and starts its reader and writer
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the error response
		log.Error().Err(err).Msg("websocket handshake refused")
		return
	}

	connection := &Connection{
		ID:          uuid.New().String(),
		Conn:        conn,
		Send:        make(chan []byte, 256),
		Hub:         h,
		games:       make(map[string]bool),
		ConnectedAt: time.Now(),
	}

	go connection.writePump()
	go connection.readPump()

	log.Info().
		Str("connection_id", connection.ID).
		Str("remote_addr", r.RemoteAddr).
		Msg("scoreboard client connected")
}

func (h *Hub) join(conn *Connection, gameID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if conn.games[gameID] {
		return
	}
	conn.games[gameID] = true
	if h.gameConnections[gameID] == nil {
		h.gameConnections[gameID] = make(map[*Connection]bool)
	}
	h.gameConnections[gameID][conn] = true

	log.Debug().
		Str("connection_id", conn.ID).
		Str("game_id", gameID).
		Int("subscribers", len(h.gameConnections[gameID])).
		Msg("scoreboard client following game")
}

func (h *Hub) leave(conn *Connection, gameID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.leaveLocked(conn, gameID)
}

func (h *Hub) leaveLocked(conn *Connection, gameID string) {
	if !conn.games[gameID] {
		return
	}
	delete(conn.games, gameID)
	if connections, ok := h.gameConnections[gameID]; ok {
		delete(connections, conn)
		if len(connections) == 0 {
			delete(h.gameConnections, gameID)
		}
	}
}

// unregister drops every subscription of conn and closes its send channel
func (h *Hub) unregister(conn *Connection) {
	conn.closeOnce.Do(func() {
		h.mu.Lock()
		for gameID := range conn.games {
			h.leaveLocked(conn, gameID)
		}
		h.mu.Unlock()
		close(conn.Send)

		log.Info().
			Str("connection_id", conn.ID).
			Msg("scoreboard client released")
	})
}

// Broadcast queues an event for every connection that joined gameID
func (h *Hub) Broadcast(gameID string, event *push.Event) {
	select {
	case h.broadcastCh <- broadcastMessage{GameID: gameID, Event: event}:
	default:
		log.Warn().Str("game_id", gameID).Msg("fan-out queue saturated, event discarded")
	}
}

func (h *Hub) handleBroadcast(message broadcastMessage) {
	h.mu.RLock()
	var targets []*Connection
	for conn := range h.gameConnections[message.GameID] {
		targets = append(targets, conn)
	}
	h.mu.RUnlock()

	if len(targets) == 0 {
		return
	}

	data, err := json.Marshal(message.Event)
	if err != nil {
		log.Error().Err(err).Msg("game event could not be encoded")
		return
	}

	for _, conn := range targets {
		if !conn.enqueue(data) {
			log.Warn().
				Str("connection_id", conn.ID).
				Msg("scoreboard client fell behind, disconnecting")
			h.unregister(conn)
			conn.Conn.Close()
		}
	}

	log.Debug().
		Str("event", string(message.Event.Name)).
		Str("game_id", message.GameID).
		Int("connections", len(targets)).
		Msg("fanned out game event")
}

// Subscribers returns how many connections joined gameID
func (h *Hub) Subscribers(gameID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.gameConnections[gameID])
}

// Stats maps each followed game to its connection count
func (h *Hub) Stats() map[string]int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make(map[string]int, len(h.gameConnections))
	for gameID, connections := range h.gameConnections {
		out[gameID] = len(connections)
	}
	return out
}

// enqueue never blocks; false means the client is too slow. A send on the
// closed channel of an unregistered connection is recovered as false too.
func (c *Connection) enqueue(data []byte) (ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	select {
	case c.Send <- data:
		return true
	default:
		return false
	}
}

// writePump is the only writer on the socket. It forwards queued events and
// keeps the link alive with pings until the queue is closed or a write fails.
func (c *Connection) writePump() {
	cfg := c.Hub.config
	keepalive := time.NewTicker(cfg.PingInterval)
	defer func() {
		keepalive.Stop()
		c.Hub.unregister(c)
		c.Conn.Close()
	}()

	for {
		var (
			kind    int
			payload []byte
		)
		select {
		case event, open := <-c.Send:
			if !open {
				c.Conn.SetWriteDeadline(time.Now().Add(cfg.WriteTimeout))
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			kind, payload = websocket.TextMessage, event
		case <-keepalive.C:
			kind = websocket.PingMessage
		}

		c.Conn.SetWriteDeadline(time.Now().Add(cfg.WriteTimeout))
		if err := c.Conn.WriteMessage(kind, payload); err != nil {
			lvl := zerolog.WarnLevel
			if kind == websocket.PingMessage {
				lvl = zerolog.DebugLevel
			}
			log.WithLevel(lvl).
				Err(err).
				Str("connection_id", c.ID).
				Bool("keepalive", kind == websocket.PingMessage).
				Msg("dropping scoreboard client after write error")
			return
		}
	}
}

// readPump only carries join and leave requests; events never flow upstream.
// Any pong or control frame pushes the idle deadline forward.
func (c *Connection) readPump() {
	cfg := c.Hub.config
	defer func() {
		c.Hub.unregister(c)
		c.Conn.Close()
	}()

	extend := func() {
		c.Conn.SetReadDeadline(time.Now().Add(cfg.ReadTimeout))
	}
	c.Conn.SetReadLimit(cfg.MaxMessageSize)
	extend()
	c.Conn.SetPongHandler(func(string) error {
		extend()
		return nil
	})

	for {
		_, frame, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Warn().
					Err(err).
					Str("connection_id", c.ID).
					Msg("scoreboard client closed abnormally")
			}
			return
		}

		if err := c.handleClientMessage(frame); err != nil {
			log.Warn().
				Err(err).
				Str("connection_id", c.ID).
				Msg("rejected subscription request")
		}
		extend()
	}
}

// handleClientMessage applies join_game and leave_game requests
func (c *Connection) handleClientMessage(message []byte) error {
	var ctrl push.ControlMessage
	if err := json.Unmarshal(message, &ctrl); err != nil {
		return fmt.Errorf("decode control message: %w", err)
	}
	if ctrl.GameID == "" {
		return fmt.Errorf("%s without gameId", ctrl.Type)
	}

	switch ctrl.Type {
	case push.ControlJoinGame:
		c.Hub.join(c, ctrl.GameID)
	case push.ControlLeaveGame:
		c.Hub.leave(c, ctrl.GameID)
	default:
		return fmt.Errorf("unknown control type %q", ctrl.Type)
	}
	return nil
}
