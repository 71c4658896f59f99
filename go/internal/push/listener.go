package push

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// Buffer size for outbound control messages
const sendBufferSize = 256

// Handler receives events for joined games. Calls come from the listener's
// read goroutine, one at a time.
type Handler interface {
	HandleScoreUpdated(ScoreUpdated)
	HandleActivityAdded(ActivityAdded)
	SetConnected(bool)
}

// Listener keeps a websocket connection to the push server open, reconnecting
// with backoff, and delivers events of the joined games to its Handler.
type Listener struct {
	ID      string
	config  Config
	handler Handler
	dialer  *websocket.Dialer
	clock   clockwork.Clock

	mu     sync.Mutex
	joined map[string]bool
	send   chan ControlMessage // nil while disconnected

	connected atomic.Bool
}

// Option configures a Listener
type Option func(*Listener)

// WithClock replaces the clock used for reconnect backoff and pings
func WithClock(clock clockwork.Clock) Option {
	return func(l *Listener) {
		l.clock = clock
	}
}

// WithDialer replaces the websocket dialer
func WithDialer(dialer *websocket.Dialer) Option {
	return func(l *Listener) {
		l.dialer = dialer
	}
}

// NewListener creates a listener. Nothing happens on the network until Run.
func NewListener(config Config, handler Handler, opts ...Option) *Listener {
	l := &Listener{
		ID:      uuid.New().String()[:8],
		config:  config.withDefaults(),
		handler: handler,
		dialer:  websocket.DefaultDialer,
		clock:   clockwork.NewRealClock(),
		joined:  make(map[string]bool),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Join subscribes to a game's channel. Joining a game that is already joined
// is a no-op and returns false.
func (l *Listener) Join(gameID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if gameID == "" || l.joined[gameID] {
		return false
	}
	l.joined[gameID] = true
	l.enqueueLocked(ControlMessage{Type: ControlJoinGame, GameID: gameID})

	log.Debug().
		Str("listener_id", l.ID).
		Str("game_id", gameID).
		Msg("joined game channel")
	return true
}

// Leave unsubscribes from a game's channel. Leaving a game that is not
// joined is a no-op and returns false.
func (l *Listener) Leave(gameID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.joined[gameID] {
		return false
	}
	delete(l.joined, gameID)
	l.enqueueLocked(ControlMessage{Type: ControlLeaveGame, GameID: gameID})

	log.Debug().
		Str("listener_id", l.ID).
		Str("game_id", gameID).
		Msg("left game channel")
	return true
}

// IsJoined reports whether events for gameID are currently delivered
func (l *Listener) IsJoined(gameID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.joined[gameID]
}

// Joined returns the joined game ids in sorted order
func (l *Listener) Joined() []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	ids := make([]string, 0, len(l.joined))
	for id := range l.joined {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// IsConnected reports the current transport status
func (l *Listener) IsConnected() bool {
	return l.connected.Load()
}

// Run connects and keeps reconnecting until ctx is cancelled. Events missed
// while disconnected are not replayed; the handler learns about reconnects
// through SetConnected and is expected to resync itself.
func (l *Listener) Run(ctx context.Context) error {
	log.Info().
		Str("listener_id", l.ID).
		Str("url", l.config.URL).
		Msg("push listener started")

	backoff := l.config.MinBackoff
	for {
		established, err := l.connectOnce(ctx)
		if ctx.Err() != nil {
			log.Info().Str("listener_id", l.ID).Msg("push listener shutting down")
			return nil
		}
		if established {
			backoff = l.config.MinBackoff
		}

		log.Warn().
			Err(err).
			Str("listener_id", l.ID).
			Dur("retry_in", backoff).
			Msg("push connection lost")

		select {
		case <-ctx.Done():
			log.Info().Str("listener_id", l.ID).Msg("push listener shutting down")
			return nil
		case <-l.clock.After(backoff):
		}
		backoff = l.config.nextBackoff(backoff)
	}
}

// connectOnce runs a single connection until it drops. The bool reports
// whether the dial succeeded.
func (l *Listener) connectOnce(ctx context.Context) (bool, error) {
	conn, _, err := l.dialer.DialContext(ctx, l.config.URL, l.config.Header)
	if err != nil {
		return false, fmt.Errorf("dial push channel: %w", err)
	}

	// Re-subscribe everything that was joined before this connection
	send := make(chan ControlMessage, sendBufferSize)
	l.mu.Lock()
	for gameID := range l.joined {
		select {
		case send <- ControlMessage{Type: ControlJoinGame, GameID: gameID}:
		default:
			log.Warn().Str("game_id", gameID).Msg("send buffer full, join not replayed")
		}
	}
	l.send = send
	l.mu.Unlock()

	log.Info().
		Str("listener_id", l.ID).
		Str("url", l.config.URL).
		Msg("push connection established")
	l.setConnected(true)

	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		l.writePump(ctx, conn, send, done)
	}()

	err = l.readPump(conn)

	close(done)
	wg.Wait()
	conn.Close()

	l.mu.Lock()
	l.send = nil
	l.mu.Unlock()
	l.setConnected(false)

	return true, err
}

func (l *Listener) setConnected(connected bool) {
	if l.connected.Swap(connected) != connected {
		l.handler.SetConnected(connected)
	}
}

func (l *Listener) enqueueLocked(msg ControlMessage) {
	if l.send == nil {
		return
	}
	select {
	case l.send <- msg:
	default:
		log.Warn().
			Str("listener_id", l.ID).
			Str("type", string(msg.Type)).
			Str("game_id", msg.GameID).
			Msg("send buffer full, dropping control message")
	}
}

// writePump is the only writer on conn
func (l *Listener) writePump(ctx context.Context, conn *websocket.Conn, send <-chan ControlMessage, done <-chan struct{}) {
	ticker := l.clock.NewTicker(l.config.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return

		case <-ctx.Done():
			conn.SetWriteDeadline(time.Now().Add(l.config.WriteTimeout))
			conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			conn.Close()
			return

		case msg := <-send:
			conn.SetWriteDeadline(time.Now().Add(l.config.WriteTimeout))
			if err := conn.WriteJSON(msg); err != nil {
				log.Error().
					Err(err).
					Str("listener_id", l.ID).
					Msg("failed to write control message")
				conn.Close()
				return
			}

		case <-ticker.Chan():
			conn.SetWriteDeadline(time.Now().Add(l.config.WriteTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Error().
					Err(err).
					Str("listener_id", l.ID).
					Msg("failed to send ping")
				conn.Close()
				return
			}
		}
	}
}

func (l *Listener) readPump(conn *websocket.Conn) error {
	conn.SetReadLimit(l.config.MaxMessageSize)
	conn.SetReadDeadline(time.Now().Add(l.config.ReadTimeout))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(l.config.ReadTimeout))
		return nil
	})

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Error().
					Err(err).
					Str("listener_id", l.ID).
					Msg("unexpected websocket close error")
			}
			return err
		}

		conn.SetReadDeadline(time.Now().Add(l.config.ReadTimeout))
		l.dispatch(message)
	}
}

// dispatch decodes one message and hands it to the handler. Events for games
// that are not joined are dropped, never queued.
func (l *Listener) dispatch(message []byte) {
	var event Event
	if err := json.Unmarshal(message, &event); err != nil {
		log.Warn().Err(err).Str("listener_id", l.ID).Msg("failed to decode push event")
		return
	}

	payload, err := ParseEventPayload(&event)
	if err != nil {
		log.Warn().
			Err(err).
			Str("event", string(event.Name)).
			Msg("failed to decode push event payload")
		return
	}
	if payload == nil {
		log.Debug().Str("event", string(event.Name)).Msg("ignoring unknown push event")
		return
	}

	gameID := GameIDOf(payload)
	if !l.IsJoined(gameID) {
		log.Debug().
			Str("event", string(event.Name)).
			Str("game_id", gameID).
			Msg("dropping event for game not joined")
		return
	}

	switch p := payload.(type) {
	case ScoreUpdated:
		l.handler.HandleScoreUpdated(p)
	case ActivityAdded:
		l.handler.HandleActivityAdded(p)
	}
}
