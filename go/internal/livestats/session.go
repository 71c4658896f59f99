package livestats

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/girlsgotgame/courtside/go/clients/ggg_client"
	"github.com/girlsgotgame/courtside/go/internal/models"
	"github.com/girlsgotgame/courtside/go/internal/push"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// DefaultRequestTimeout bounds every API call a session makes
const DefaultRequestTimeout = 10 * time.Second

// API is the part of the REST client a session needs.
// *ggg_client.Client satisfies it.
type API interface {
	GetGame(ctx context.Context, gameID string) ggg_client.Result[models.GameDetail]
	GetPlayers(ctx context.Context, gameID string) ggg_client.Result[[]models.GamePlayer]
	GetActivities(ctx context.Context, gameID string) ggg_client.Result[[]models.GameActivity]
	UpdateScore(ctx context.Context, gameID string, score models.ScoreUpdate) ggg_client.Result[models.Game]
	UpdateStatus(ctx context.Context, gameID string, status models.StatusUpdate) ggg_client.Result[models.Game]
	AddComment(ctx context.Context, gameID, content string) ggg_client.Result[models.Comment]
	AddStat(ctx context.Context, gameID, playerID string, stat models.NewStat) ggg_client.Result[models.PlayerStat]
	DeleteStat(ctx context.Context, gameID, statID string) ggg_client.Result[ggg_client.DeleteResult]
}

var _ API = (*ggg_client.Client)(nil)
var _ push.Handler = (*Session)(nil)

// Session is one mounted game view. It owns the game's merged state, applies
// optimistic stat entries and merges push events.
type Session struct {
	api     API
	gameID  string
	store   *Store
	clock   clockwork.Clock
	timeout time.Duration

	// background work (push-triggered refetches) runs under ctx
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	// bgMu orders wg.Add against Close; no refetch starts once closed is set
	bgMu   sync.Mutex
	closed bool

	notices chan Notice

	tsMu   sync.Mutex
	lastTS time.Time

	obsMu     sync.Mutex
	observers []func(Snapshot)

	connMu        sync.Mutex
	everConnected bool
}

// Option configures a Session
type Option func(*Session)

// WithClock replaces the clock used for optimistic timestamps
func WithClock(clock clockwork.Clock) Option {
	return func(s *Session) {
		s.clock = clock
	}
}

// WithRequestTimeout overrides DefaultRequestTimeout
func WithRequestTimeout(d time.Duration) Option {
	return func(s *Session) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithNoticeBuffer sets how many notices are kept before new ones are dropped
func WithNoticeBuffer(n int) Option {
	return func(s *Session) {
		s.notices = make(chan Notice, n)
	}
}

func NewSession(api API, gameID string, opts ...Option) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		api:     api,
		gameID:  gameID,
		store:   NewStore(gameID),
		clock:   clockwork.NewRealClock(),
		timeout: DefaultRequestTimeout,
		ctx:     ctx,
		cancel:  cancel,
		notices: make(chan Notice, 32),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Session) GameID() string {
	return s.gameID
}

// Snapshot returns the current merged state
func (s *Session) Snapshot() Snapshot {
	return s.store.Snapshot()
}

// Notices delivers transient notifications
func (s *Session) Notices() <-chan Notice {
	return s.notices
}

// Subscribe registers fn to be called with a fresh snapshot after every
// state change
func (s *Session) Subscribe(fn func(Snapshot)) {
	s.obsMu.Lock()
	defer s.obsMu.Unlock()
	s.observers = append(s.observers, fn)
}

// Close cancels background refetches and waits for them. Push events that
// arrive afterwards no longer start refetches. Close may be called again.
func (s *Session) Close() {
	s.bgMu.Lock()
	s.closed = true
	s.bgMu.Unlock()

	s.cancel()
	s.wg.Wait()
}

// Wait blocks until in-flight background refetches have finished
func (s *Session) Wait() {
	s.wg.Wait()
}

// Load fetches the game, roster and activity feed
func (s *Session) Load(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	seq := s.store.BeginRefetch()

	detail, err := s.api.GetGame(ctx, s.gameID).Unwrap()
	if err != nil {
		s.surfaceError("Failed to load game", err)
		return fmt.Errorf("load game: %w", err)
	}
	players, err := s.api.GetPlayers(ctx, s.gameID).Unwrap()
	if err != nil {
		s.surfaceError("Failed to load players", err)
		return fmt.Errorf("load players: %w", err)
	}
	activities, err := s.api.GetActivities(ctx, s.gameID).Unwrap()
	if err != nil {
		s.surfaceError("Failed to load activity", err)
		return fmt.Errorf("load activities: %w", err)
	}

	s.store.ApplyRefetch(seq, &detail, players)
	s.store.SetActivities(activities)
	s.notify()

	log.Info().
		Str("game_id", s.gameID).
		Int("players", len(players)).
		Int("activities", len(activities)).
		Msg("game loaded")
	return nil
}

// Refetch reloads the game detail and the roster with its stats
func (s *Session) Refetch(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	seq := s.store.BeginRefetch()

	players, err := s.api.GetPlayers(ctx, s.gameID).Unwrap()
	if err != nil {
		return fmt.Errorf("refetch players: %w", err)
	}
	detail, err := s.api.GetGame(ctx, s.gameID).Unwrap()
	if err != nil {
		return fmt.Errorf("refetch game: %w", err)
	}

	if !s.store.ApplyRefetch(seq, &detail, players) {
		log.Debug().
			Str("game_id", s.gameID).
			Uint64("seq", seq).
			Msg("discarding stale refetch")
		return nil
	}
	s.notify()
	return nil
}

// RecordStat records a stat with its default value
func (s *Session) RecordStat(ctx context.Context, playerID string, statType models.StatType) error {
	return s.RecordStatValue(ctx, playerID, statType, statType.DefaultValue())
}

// RecordStatValue shows the stat immediately, then writes it. On failure the
// optimistic entry is rolled back and an error notice is raised; there is no
// automatic retry. On success the entry is replaced by the created stat and
// the roster is refetched.
func (s *Session) RecordStatValue(ctx context.Context, playerID string, statType models.StatType, value int) error {
	if !statType.Valid() {
		return fmt.Errorf("%w: %q", models.ErrUnknownStatType, statType)
	}

	entry, err := s.store.AddOptimistic(playerID, statType, value, s.nextTimestamp())
	if err != nil {
		return fmt.Errorf("record %s for %s: %w", statType, playerID, err)
	}
	s.notify()

	reqCtx, cancel := context.WithTimeout(ctx, s.timeout)
	stat, err := s.api.AddStat(reqCtx, s.gameID, playerID, models.NewStat{StatType: statType, Value: value}).Unwrap()
	cancel()
	if err != nil {
		s.store.RemoveOptimistic(playerID, entry.Timestamp)
		s.notify()
		s.surfaceError("Failed to record stat", err)
		return fmt.Errorf("record %s for %s: %w", statType, playerID, err)
	}

	s.store.ConfirmOptimistic(entry, stat)
	s.notify()

	if err := s.Refetch(ctx); err != nil {
		log.Warn().
			Err(err).
			Str("game_id", s.gameID).
			Msg("refetch after recording stat failed")
	}
	return nil
}

// RemoveStat deletes a stat. Nothing is removed locally until the refetch
// that follows a successful delete.
func (s *Session) RemoveStat(ctx context.Context, statID string) error {
	reqCtx, cancel := context.WithTimeout(ctx, s.timeout)
	_, err := s.api.DeleteStat(reqCtx, s.gameID, statID).Unwrap()
	cancel()
	if err != nil {
		s.surfaceError("Failed to remove stat", err)
		return fmt.Errorf("remove stat %s: %w", statID, err)
	}

	if err := s.Refetch(ctx); err != nil {
		log.Warn().
			Err(err).
			Str("game_id", s.gameID).
			Msg("refetch after removing stat failed")
	}
	return nil
}

// UpdateScore sets both scores and applies the updated game
func (s *Session) UpdateScore(ctx context.Context, home, away int) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	game, err := s.api.UpdateScore(ctx, s.gameID, models.ScoreUpdate{HomeScore: home, AwayScore: away}).Unwrap()
	if err != nil {
		s.surfaceError("Failed to update score", err)
		return fmt.Errorf("update score: %w", err)
	}

	s.store.SetGame(game)
	s.notify()
	s.pushNotice(NoticeInfo, "Score updated")
	return nil
}

// UpdateStatus changes the stored status and notes of the game
func (s *Session) UpdateStatus(ctx context.Context, status models.GameStatus, notes string) error {
	if !status.Valid() {
		return fmt.Errorf("update status: invalid status %q", status)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	game, err := s.api.UpdateStatus(ctx, s.gameID, models.StatusUpdate{Status: status, Notes: notes}).Unwrap()
	if err != nil {
		s.surfaceError("Failed to update status", err)
		return fmt.Errorf("update status: %w", err)
	}

	s.store.SetGame(game)
	s.notify()
	s.pushNotice(NoticeInfo, "Game status updated")
	return nil
}

// AddComment posts a comment and appends it locally
func (s *Session) AddComment(ctx context.Context, content string) error {
	if content == "" {
		return errors.New("add comment: content is empty")
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	comment, err := s.api.AddComment(ctx, s.gameID, content).Unwrap()
	if err != nil {
		s.surfaceError("Failed to post comment", err)
		return fmt.Errorf("add comment: %w", err)
	}

	s.store.AppendComment(comment)
	s.notify()
	return nil
}

// HandleScoreUpdated overwrites the scores of the viewed game
func (s *Session) HandleScoreUpdated(ev push.ScoreUpdated) {
	if ev.GameID != s.gameID {
		return
	}

	s.store.SetScore(ev.HomeScore, ev.AwayScore)
	s.notify()
	s.pushNotice(NoticeInfo, fmt.Sprintf("Score updated: %d - %d", ev.HomeScore, ev.AwayScore))
}

// HandleActivityAdded prepends the activity and, when stats changed, refetches
// the roster. The event only triggers the refetch; its stat payload is not
// merged.
func (s *Session) HandleActivityAdded(ev push.ActivityAdded) {
	if ev.GameID != s.gameID {
		return
	}

	s.store.PrependActivity(ev.Activity)
	s.notify()

	if ev.StatChanged() {
		s.refetchInBackground("stat changed")
	}
}

// SetConnected records the push status. A reconnect after a drop triggers a
// refetch because events sent while disconnected are lost.
func (s *Session) SetConnected(connected bool) {
	prev := s.store.SetConnected(connected)
	if prev == connected {
		return
	}
	s.notify()

	s.connMu.Lock()
	resync := connected && s.everConnected
	if connected {
		s.everConnected = true
	}
	s.connMu.Unlock()

	if resync {
		s.refetchInBackground("reconnected")
	}
}

func (s *Session) refetchInBackground(reason string) {
	s.bgMu.Lock()
	if s.closed {
		s.bgMu.Unlock()
		log.Debug().Str("game_id", s.gameID).Str("reason", reason).Msg("session closed, refetch skipped")
		return
	}
	s.wg.Add(1)
	s.bgMu.Unlock()

	go func() {
		defer s.wg.Done()
		if err := s.Refetch(s.ctx); err != nil && s.ctx.Err() == nil {
			log.Warn().
				Err(err).
				Str("game_id", s.gameID).
				Str("reason", reason).
				Msg("background refetch failed")
		}
	}()
}

// nextTimestamp returns a strictly increasing timestamp so no two optimistic
// entries share a key
func (s *Session) nextTimestamp() time.Time {
	s.tsMu.Lock()
	defer s.tsMu.Unlock()

	now := s.clock.Now()
	if !now.After(s.lastTS) {
		now = s.lastTS.Add(time.Nanosecond)
	}
	s.lastTS = now
	return now
}

func (s *Session) notify() {
	s.obsMu.Lock()
	observers := append(([]func(Snapshot))(nil), s.observers...)
	s.obsMu.Unlock()
	if len(observers) == 0 {
		return
	}

	snap := s.store.Snapshot()
	for _, fn := range observers {
		fn(snap)
	}
}

// surfaceError raises an error notice unless the failure is the routine
// unauthenticated state
func (s *Session) surfaceError(prefix string, err error) {
	if errors.Is(err, ggg_client.ErrUnauthorized) {
		return
	}
	s.pushNotice(NoticeError, fmt.Sprintf("%s: %s", prefix, err.Error()))
}

func (s *Session) pushNotice(level NoticeLevel, message string) {
	select {
	case s.notices <- Notice{Level: level, Message: message, At: s.clock.Now()}:
	default:
		log.Warn().
			Str("game_id", s.gameID).
			Str("message", message).
			Msg("notice buffer full, dropping notice")
	}
}
