package livestats

import (
	"sync"
	"time"

	"github.com/girlsgotgame/courtside/go/internal/models"
)

// maxActivities bounds the locally kept feed; views show far fewer
const maxActivities = 100

// foldedStat is a server-confirmed stat merged locally before any refetch
// reflected it. seq is the store sequence number at the time of the merge.
type foldedStat struct {
	playerID string
	stat     models.PlayerStat
	seq      uint64
}

// Snapshot is an immutable copy of the merged game state
type Snapshot struct {
	GameID     string
	Loaded     bool
	Game       models.Game
	Comments   []models.Comment
	Players    []models.GamePlayer
	Pending    map[string][]OptimisticEntry
	Activities []models.GameActivity // most recent first
	Connected  bool
}

// Store owns the merged state of one game view: confirmed data from the last
// refetch, pending optimistic entries and the push-fed activity feed.
//
// Every mutation takes a sequence number. A refetch records the number at
// which it started; when it lands it is discarded if a newer refetch already
// landed, and locally folded stats newer than its start are kept.
type Store struct {
	mu sync.RWMutex

	gameID     string
	loaded     bool
	game       models.Game
	comments   []models.Comment
	players    []models.GamePlayer
	activities []models.GameActivity
	connected  bool

	queue          *Queue
	seq            uint64
	appliedRefetch uint64
	folded         []foldedStat
}

func NewStore(gameID string) *Store {
	return &Store{
		gameID: gameID,
		game:   models.Game{ID: gameID},
		queue:  NewQueue(),
	}
}

func (s *Store) GameID() string {
	return s.gameID
}

func (s *Store) nextSeqLocked() uint64 {
	s.seq++
	return s.seq
}

// BeginRefetch returns the sequence number a refetch must be applied with
func (s *Store) BeginRefetch() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nextSeqLocked()
}

// ApplyRefetch replaces confirmed data with a refetch result. detail may be
// nil when only the roster was fetched. It reports whether the result was
// applied; results older than the last applied refetch are dropped.
func (s *Store) ApplyRefetch(seq uint64, detail *models.GameDetail, players []models.GamePlayer) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if seq < s.appliedRefetch {
		return false
	}
	s.appliedRefetch = seq

	if detail != nil {
		s.game = detail.Game
		s.comments = append([]models.Comment(nil), detail.Comments...)
	}

	merged := clonePlayers(players)
	kept := s.folded[:0]
	for _, f := range s.folded {
		if f.seq < seq {
			// the refetch started after the fold, so the server already had it
			continue
		}
		kept = append(kept, f)
		addStatIfMissing(merged, f.playerID, f.stat)
	}
	s.folded = kept
	s.players = merged
	s.loaded = true
	return true
}

// SetActivities replaces the feed with a freshly loaded one
func (s *Store) SetActivities(activities []models.GameActivity) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(activities) > maxActivities {
		activities = activities[:maxActivities]
	}
	s.activities = append([]models.GameActivity(nil), activities...)
}

// PrependActivity adds a new entry at the head of the feed
func (s *Store) PrependActivity(activity models.GameActivity) {
	s.mu.Lock()
	defer s.mu.Unlock()

	feed := make([]models.GameActivity, 0, len(s.activities)+1)
	feed = append(feed, activity)
	feed = append(feed, s.activities...)
	if len(feed) > maxActivities {
		feed = feed[:maxActivities]
	}
	s.activities = feed
}

// HasPlayer reports whether playerID is on the loaded roster
func (s *Store) HasPlayer(playerID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return indexOfPlayer(s.players, playerID) >= 0
}

// AddOptimistic records a pending stat for a rostered player
func (s *Store) AddOptimistic(playerID string, statType models.StatType, value int, ts time.Time) (OptimisticEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.loaded {
		return OptimisticEntry{}, ErrNotLoaded
	}
	if indexOfPlayer(s.players, playerID) < 0 {
		return OptimisticEntry{}, ErrUnknownPlayer
	}

	entry := OptimisticEntry{
		PlayerID:  playerID,
		StatType:  statType,
		Value:     value,
		Timestamp: ts,
		Seq:       s.nextSeqLocked(),
	}
	s.queue.Add(entry)
	return entry, nil
}

// RemoveOptimistic rolls back a pending entry
func (s *Store) RemoveOptimistic(playerID string, ts time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queue.Remove(playerID, ts)
}

// ConfirmOptimistic swaps a pending entry for the stat the server created, in
// one step, so the stat is never counted twice or missing in between.
func (s *Store) ConfirmOptimistic(entry OptimisticEntry, stat models.PlayerStat) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.queue.Remove(entry.PlayerID, entry.Timestamp)
	if stat.ID == "" {
		return
	}
	if stat.GamePlayerID == "" {
		stat.GamePlayerID = entry.PlayerID
	}
	if addStatIfMissing(s.players, entry.PlayerID, stat) {
		s.folded = append(s.folded, foldedStat{
			playerID: entry.PlayerID,
			stat:     stat,
			seq:      s.nextSeqLocked(),
		})
	}
}

// SetGame replaces the game fields with a server response
func (s *Store) SetGame(game models.Game) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.game = game
}

// SetScore overwrites both scores
func (s *Store) SetScore(home, away int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.game.HomeScore = &home
	s.game.AwayScore = &away
}

func (s *Store) AppendComment(comment models.Comment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.comments = append(s.comments, comment)
}

// SetConnected stores the push status and returns the previous one
func (s *Store) SetConnected(connected bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.connected
	s.connected = connected
	return prev
}

// Snapshot copies the current state
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	game := s.game
	if game.HomeScore != nil {
		home := *game.HomeScore
		game.HomeScore = &home
	}
	if game.AwayScore != nil {
		away := *game.AwayScore
		game.AwayScore = &away
	}

	return Snapshot{
		GameID:     s.gameID,
		Loaded:     s.loaded,
		Game:       game,
		Comments:   append([]models.Comment(nil), s.comments...),
		Players:    clonePlayers(s.players),
		Pending:    s.queue.All(),
		Activities: append([]models.GameActivity(nil), s.activities...),
		Connected:  s.connected,
	}
}

func clonePlayers(players []models.GamePlayer) []models.GamePlayer {
	if players == nil {
		return nil
	}
	out := make([]models.GamePlayer, len(players))
	for i, p := range players {
		p.Stats = append([]models.PlayerStat(nil), p.Stats...)
		out[i] = p
	}
	return out
}

func indexOfPlayer(players []models.GamePlayer, playerID string) int {
	for i := range players {
		if players[i].ID == playerID {
			return i
		}
	}
	return -1
}

// addStatIfMissing appends stat to the player unless a stat with the same id
// is already there
func addStatIfMissing(players []models.GamePlayer, playerID string, stat models.PlayerStat) bool {
	i := indexOfPlayer(players, playerID)
	if i < 0 || players[i].HasStat(stat.ID) {
		return false
	}
	players[i].Stats = append(players[i].Stats, stat)
	return true
}
