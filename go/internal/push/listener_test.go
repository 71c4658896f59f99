package push

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/girlsgotgame/courtside/go/internal/models"
	"github.com/gorilla/websocket"
)

// fakePushServer accepts websocket connections, records control messages
// and lets the test push events to the latest connection.
type fakePushServer struct {
	t        *testing.T
	upgrader websocket.Upgrader

	mu       sync.Mutex
	conn     *websocket.Conn
	controls []ControlMessage
	accepted int
	changed  chan struct{}
}

func newFakePushServer(t *testing.T) (*fakePushServer, string) {
	t.Helper()
	s := &fakePushServer{t: t, changed: make(chan struct{}, 64)}
	ts := httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(ts.Close)
	return s, "ws" + strings.TrimPrefix(ts.URL, "http")
}

func (s *fakePushServer) handle(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	s.mu.Lock()
	s.conn = conn
	s.accepted++
	s.mu.Unlock()
	s.signal()

	for {
		var msg ControlMessage
		if err := conn.ReadJSON(&msg); err != nil {
			return
		}
		s.mu.Lock()
		s.controls = append(s.controls, msg)
		s.mu.Unlock()
		s.signal()
	}
}

func (s *fakePushServer) signal() {
	select {
	case s.changed <- struct{}{}:
	default:
	}
}

func (s *fakePushServer) send(name EventName, payload any) {
	s.t.Helper()
	event, err := NewEvent(name, payload)
	if err != nil {
		s.t.Fatalf("NewEvent: %v", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.conn.WriteJSON(event); err != nil {
		s.t.Fatalf("write event: %v", err)
	}
}

func (s *fakePushServer) dropConnection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conn.Close()
}

// waitFor polls cond until it holds or the deadline passes
func (s *fakePushServer) waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		s.mu.Lock()
		ok := cond()
		s.mu.Unlock()
		if ok {
			return
		}
		select {
		case <-s.changed:
		case <-time.After(20 * time.Millisecond):
		case <-deadline:
			t.Fatalf("timed out waiting for %s", what)
		}
	}
}

type recordingHandler struct {
	mu         sync.Mutex
	scores     []ScoreUpdated
	activities []ActivityAdded
	connected  []bool
	events     chan struct{}
}

func newRecordingHandler() *recordingHandler {
	return &recordingHandler{events: make(chan struct{}, 64)}
}

func (h *recordingHandler) HandleScoreUpdated(ev ScoreUpdated) {
	h.mu.Lock()
	h.scores = append(h.scores, ev)
	h.mu.Unlock()
	h.events <- struct{}{}
}

func (h *recordingHandler) HandleActivityAdded(ev ActivityAdded) {
	h.mu.Lock()
	h.activities = append(h.activities, ev)
	h.mu.Unlock()
	h.events <- struct{}{}
}

func (h *recordingHandler) SetConnected(connected bool) {
	h.mu.Lock()
	h.connected = append(h.connected, connected)
	h.mu.Unlock()
}

func (h *recordingHandler) waitEvent(t *testing.T) {
	t.Helper()
	select {
	case <-h.events:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for event")
	}
}

func (h *recordingHandler) snapshot() ([]ScoreUpdated, []ActivityAdded, []bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]ScoreUpdated(nil), h.scores...),
		append([]ActivityAdded(nil), h.activities...),
		append([]bool(nil), h.connected...)
}

func startListener(t *testing.T, url string, h Handler) *Listener {
	t.Helper()
	cfg := DefaultConfig(url)
	cfg.MinBackoff = 10 * time.Millisecond
	cfg.MaxBackoff = 50 * time.Millisecond
	l := NewListener(cfg, h)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		l.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return l
}

func countJoins(controls []ControlMessage, gameID string) int {
	n := 0
	for _, c := range controls {
		if c.Type == ControlJoinGame && c.GameID == gameID {
			n++
		}
	}
	return n
}

func TestListenerJoinIsIdempotent(t *testing.T) {
	srv, url := newFakePushServer(t)
	h := newRecordingHandler()

	l := startListener(t, url, h)
	srv.waitFor(t, "connection", func() bool { return srv.accepted == 1 })

	if !l.Join("g1") {
		t.Fatal("first Join should report a new subscription")
	}
	if l.Join("g1") {
		t.Fatal("second Join should be a no-op")
	}
	srv.waitFor(t, "join message", func() bool { return countJoins(srv.controls, "g1") == 1 })

	srv.send(EventScoreUpdated, ScoreUpdated{GameID: "g1", HomeScore: 10, AwayScore: 8})
	h.waitEvent(t)

	// A second event proves nothing else was queued before it
	srv.send(EventScoreUpdated, ScoreUpdated{GameID: "g1", HomeScore: 12, AwayScore: 8})
	h.waitEvent(t)

	scores, _, _ := h.snapshot()
	if len(scores) != 2 {
		t.Fatalf("expected each event delivered once, got %d deliveries", len(scores))
	}
	srv.mu.Lock()
	joins := countJoins(srv.controls, "g1")
	srv.mu.Unlock()
	if joins != 1 {
		t.Errorf("expected exactly one join_game on the wire, got %d", joins)
	}
	if got := l.Joined(); len(got) != 1 || got[0] != "g1" {
		t.Errorf("Joined() = %v", got)
	}
}

func TestListenerDropsEventsForOtherGames(t *testing.T) {
	srv, url := newFakePushServer(t)
	h := newRecordingHandler()

	l := startListener(t, url, h)
	l.Join("g1")
	srv.waitFor(t, "join message", func() bool { return countJoins(srv.controls, "g1") == 1 })

	srv.send(EventScoreUpdated, ScoreUpdated{GameID: "g2", HomeScore: 99, AwayScore: 1})
	srv.send(EventActivityAdded, ActivityAdded{GameID: "g2", Activity: models.GameActivity{ID: "a0"}})
	srv.send(EventActivityAdded, ActivityAdded{GameID: "g1", Activity: models.GameActivity{ID: "a1"}})
	h.waitEvent(t)

	scores, activities, _ := h.snapshot()
	if len(scores) != 0 {
		t.Errorf("score event for another game was delivered: %+v", scores)
	}
	if len(activities) != 1 || activities[0].Activity.ID != "a1" {
		t.Errorf("activities = %+v", activities)
	}
}

func TestListenerLeaveStopsDelivery(t *testing.T) {
	srv, url := newFakePushServer(t)
	h := newRecordingHandler()

	l := startListener(t, url, h)
	l.Join("g1")
	l.Join("g2")
	srv.waitFor(t, "joins", func() bool { return countJoins(srv.controls, "g2") == 1 })

	if !l.Leave("g1") {
		t.Fatal("Leave of a joined game should report true")
	}
	if l.Leave("g1") {
		t.Fatal("Leave of a game not joined should be a no-op")
	}
	srv.waitFor(t, "leave message", func() bool {
		for _, c := range srv.controls {
			if c.Type == ControlLeaveGame && c.GameID == "g1" {
				return true
			}
		}
		return false
	})

	srv.send(EventScoreUpdated, ScoreUpdated{GameID: "g1", HomeScore: 1, AwayScore: 1})
	srv.send(EventScoreUpdated, ScoreUpdated{GameID: "g2", HomeScore: 2, AwayScore: 2})
	h.waitEvent(t)

	scores, _, _ := h.snapshot()
	if len(scores) != 1 || scores[0].GameID != "g2" {
		t.Errorf("scores = %+v", scores)
	}
}

func TestListenerReconnectsAndReplaysJoins(t *testing.T) {
	srv, url := newFakePushServer(t)
	h := newRecordingHandler()

	l := NewListener(DefaultConfig(url), h)
	l.Join("g1") // before Run: recorded, sent once connected

	cfg := DefaultConfig(url)
	cfg.MinBackoff = 10 * time.Millisecond
	cfg.MaxBackoff = 50 * time.Millisecond
	l.config = cfg

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		l.Run(ctx)
	}()
	defer func() {
		cancel()
		<-done
	}()

	srv.waitFor(t, "first join", func() bool { return countJoins(srv.controls, "g1") == 1 })
	if !l.IsConnected() {
		t.Fatal("expected listener to be connected")
	}

	srv.dropConnection()
	srv.waitFor(t, "replayed join", func() bool { return srv.accepted == 2 && countJoins(srv.controls, "g1") == 2 })

	_, _, connected := h.snapshot()
	want := []bool{true, false, true}
	if len(connected) != len(want) {
		t.Fatalf("connection transitions = %v, want %v", connected, want)
	}
	for i := range want {
		if connected[i] != want[i] {
			t.Fatalf("connection transitions = %v, want %v", connected, want)
		}
	}
}

func TestParseEventPayload(t *testing.T) {
	ev, err := NewEvent(EventActivityAdded, ActivityAdded{GameID: "g1", StatRemoved: true})
	if err != nil {
		t.Fatalf("NewEvent: %v", err)
	}
	payload, err := ParseEventPayload(ev)
	if err != nil {
		t.Fatalf("ParseEventPayload: %v", err)
	}
	added, ok := payload.(ActivityAdded)
	if !ok {
		t.Fatalf("payload type = %T", payload)
	}
	if !added.StatChanged() || GameIDOf(added) != "g1" {
		t.Errorf("payload = %+v", added)
	}

	unknown := &Event{Name: "game:unknown", Data: []byte(`{}`)}
	if p, err := ParseEventPayload(unknown); p != nil || err != nil {
		t.Errorf("unknown event = %v, %v", p, err)
	}
}

func TestConfigWithDefaultsRepairsTiming(t *testing.T) {
	tests := []struct {
		name         string
		ping         time.Duration
		read         time.Duration
		wantPing     time.Duration
		wantReadTime time.Duration
	}{
		{name: "zero ping", ping: 0, read: DefaultReadTimeout, wantPing: DefaultPingInterval, wantReadTime: DefaultReadTimeout},
		{name: "negative ping", ping: -time.Second, read: DefaultReadTimeout, wantPing: DefaultPingInterval, wantReadTime: DefaultReadTimeout},
		{name: "ping equal to read timeout", ping: 10 * time.Second, read: 10 * time.Second, wantPing: 9 * time.Second, wantReadTime: 10 * time.Second},
		{name: "zero read timeout", ping: 5 * time.Second, read: 0, wantPing: 5 * time.Second, wantReadTime: DefaultReadTimeout},
		{name: "valid values kept", ping: 5 * time.Second, read: 20 * time.Second, wantPing: 5 * time.Second, wantReadTime: 20 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig("ws://example.invalid")
			cfg.PingInterval = tt.ping
			cfg.ReadTimeout = tt.read

			got := cfg.withDefaults()
			if got.PingInterval != tt.wantPing || got.ReadTimeout != tt.wantReadTime {
				t.Errorf("ping %s read %s, want ping %s read %s", got.PingInterval, got.ReadTimeout, tt.wantPing, tt.wantReadTime)
			}
		})
	}
}

func TestListenerRunsWithZeroPingInterval(t *testing.T) {
	srv, url := newFakePushServer(t)
	h := newRecordingHandler()

	cfg := DefaultConfig(url)
	cfg.PingInterval = 0
	l := NewListener(cfg, h)
	l.Join("g1")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		l.Run(ctx)
	}()
	defer func() {
		cancel()
		<-done
	}()

	srv.waitFor(t, "join message", func() bool { return countJoins(srv.controls, "g1") == 1 })
	srv.send(EventScoreUpdated, ScoreUpdated{GameID: "g1", HomeScore: 4, AwayScore: 2})
	h.waitEvent(t)

	if !l.IsConnected() {
		t.Fatal("listener should still be connected")
	}
}
