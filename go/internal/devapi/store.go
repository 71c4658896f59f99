package devapi

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/girlsgotgame/courtside/go/internal/models"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

var (
	ErrGameNotFound   = errors.New("game not found")
	ErrPlayerNotFound = errors.New("player not found")
	ErrStatNotFound   = errors.New("stat not found")
	ErrInvalidInput   = errors.New("invalid input")
)

type gameRecord struct {
	game       models.Game
	comments   []models.Comment
	players    []models.GamePlayer
	activities []models.GameActivity // newest first
}

// Store is the in-memory backing of the dev API
type Store struct {
	mu    sync.RWMutex
	games map[string]*gameRecord
	clock clockwork.Clock
}

func NewStore(clock clockwork.Clock) *Store {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Store{
		games: make(map[string]*gameRecord),
		clock: clock,
	}
}

// CreateGame registers a game with its roster and returns the stored game
func (s *Store) CreateGame(game models.Game, players []models.GamePlayer) models.Game {
	s.mu.Lock()
	defer s.mu.Unlock()

	if game.ID == "" {
		game.ID = uuid.NewString()
	}
	if game.Status == "" {
		game.Status = models.GameStatusUpcoming
	}

	rec := &gameRecord{game: game}
	for _, p := range players {
		if p.ID == "" {
			p.ID = uuid.NewString()
		}
		p.GameID = game.ID
		if p.ParticipationType == "" {
			p.ParticipationType = models.ParticipationDirect
		}
		rec.players = append(rec.players, p)
	}
	rec.activities = []models.GameActivity{s.newActivityLocked(game.ID, "Game created", "")}

	s.games[game.ID] = rec
	return game
}

// GameIDs lists every stored game, sorted
func (s *Store) GameIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.games))
	for id := range s.games {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (s *Store) Game(gameID string) (models.GameDetail, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.games[gameID]
	if !ok {
		return models.GameDetail{}, ErrGameNotFound
	}
	return models.GameDetail{
		Game:     rec.game,
		Comments: append([]models.Comment{}, rec.comments...),
	}, nil
}

func (s *Store) Players(gameID string) ([]models.GamePlayer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.games[gameID]
	if !ok {
		return nil, ErrGameNotFound
	}
	out := make([]models.GamePlayer, len(rec.players))
	for i, p := range rec.players {
		p.Stats = append([]models.PlayerStat{}, p.Stats...)
		out[i] = p
	}
	return out, nil
}

func (s *Store) Activities(gameID string) ([]models.GameActivity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.games[gameID]
	if !ok {
		return nil, ErrGameNotFound
	}
	return append([]models.GameActivity{}, rec.activities...), nil
}

// UpdateScore stores both scores. A game with scores is considered completed.
func (s *Store) UpdateScore(gameID string, score models.ScoreUpdate, performedBy string) (models.Game, models.GameActivity, error) {
	if score.HomeScore < 0 || score.AwayScore < 0 {
		return models.Game{}, models.GameActivity{}, fmt.Errorf("%w: scores must not be negative", ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.games[gameID]
	if !ok {
		return models.Game{}, models.GameActivity{}, ErrGameNotFound
	}
	home, away := score.HomeScore, score.AwayScore
	rec.game.HomeScore = &home
	rec.game.AwayScore = &away
	rec.game.Status = models.GameStatusCompleted

	activity := s.recordLocked(rec, fmt.Sprintf("Score updated: %s %d - %d %s",
		rec.game.HomeTeam, home, away, rec.game.AwayTeam), performedBy)
	return rec.game, activity, nil
}

func (s *Store) UpdateStatus(gameID string, update models.StatusUpdate, performedBy string) (models.Game, models.GameActivity, error) {
	if !update.Status.Valid() {
		return models.Game{}, models.GameActivity{}, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, update.Status)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.games[gameID]
	if !ok {
		return models.Game{}, models.GameActivity{}, ErrGameNotFound
	}
	rec.game.Status = update.Status
	rec.game.Notes = update.Notes

	activity := s.recordLocked(rec, fmt.Sprintf("Game status changed to %s", update.Status), performedBy)
	return rec.game, activity, nil
}

func (s *Store) AddComment(gameID, authorID, content string) (models.Comment, error) {
	if content == "" {
		return models.Comment{}, fmt.Errorf("%w: comment is empty", ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.games[gameID]
	if !ok {
		return models.Comment{}, ErrGameNotFound
	}
	comment := models.Comment{
		ID:        uuid.NewString(),
		GameID:    gameID,
		AuthorID:  authorID,
		Content:   content,
		CreatedAt: s.clock.Now(),
	}
	rec.comments = append(rec.comments, comment)
	return comment, nil
}

// AddStat appends a live stat to a roster entry and records the activity
func (s *Store) AddStat(gameID, playerID string, input models.NewStat, performedBy string) (models.PlayerStat, models.GameActivity, error) {
	statType, err := models.ParseStatType(string(input.StatType))
	if err != nil {
		return models.PlayerStat{}, models.GameActivity{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	value := input.Value
	if value == 0 {
		value = statType.DefaultValue()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.games[gameID]
	if !ok {
		return models.PlayerStat{}, models.GameActivity{}, ErrGameNotFound
	}
	idx := -1
	for i := range rec.players {
		if rec.players[i].ID == playerID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return models.PlayerStat{}, models.GameActivity{}, ErrPlayerNotFound
	}

	stat := models.PlayerStat{
		ID:           uuid.NewString(),
		GamePlayerID: playerID,
		StatType:     statType,
		Value:        value,
		Source:       models.StatSourceLive,
		CreatedAt:    s.clock.Now(),
	}
	rec.players[idx].Stats = append(rec.players[idx].Stats, stat)

	activity := s.recordLocked(rec, fmt.Sprintf("%s: %s", rec.players[idx].Name, statLabel(statType)), performedBy)
	return stat, activity, nil
}

// DeleteStat removes a stat from whichever roster entry holds it
func (s *Store) DeleteStat(gameID, statID, performedBy string) (models.GameActivity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.games[gameID]
	if !ok {
		return models.GameActivity{}, ErrGameNotFound
	}
	for i := range rec.players {
		stats := rec.players[i].Stats
		for j := range stats {
			if stats[j].ID != statID {
				continue
			}
			removed := stats[j]
			rec.players[i].Stats = append(stats[:j:j], stats[j+1:]...)
			activity := s.recordLocked(rec, fmt.Sprintf("Removed %s from %s",
				statLabel(removed.StatType), rec.players[i].Name), performedBy)
			return activity, nil
		}
	}
	return models.GameActivity{}, ErrStatNotFound
}

func (s *Store) recordLocked(rec *gameRecord, description, performedBy string) models.GameActivity {
	activity := s.newActivityLocked(rec.game.ID, description, performedBy)
	rec.activities = append([]models.GameActivity{activity}, rec.activities...)
	return activity
}

func (s *Store) newActivityLocked(gameID, description, performedBy string) models.GameActivity {
	return models.GameActivity{
		ID:          uuid.NewString(),
		GameID:      gameID,
		Description: description,
		PerformedBy: performedBy,
		CreatedAt:   s.clock.Now(),
	}
}

func statLabel(t models.StatType) string {
	switch t {
	case models.StatTwoPointer:
		return "2-pointer"
	case models.StatThreePointer:
		return "3-pointer"
	case models.StatFreeThrow:
		return "free throw"
	case models.StatSteal:
		return "steal"
	case models.StatRebound:
		return "rebound"
	}
	return string(t)
}

// Seed loads a demo game with a mixed roster and returns its id
func (s *Store) Seed() string {
	mayaUser := "user-maya"
	jersey := func(n int) *int { return &n }

	game := s.CreateGame(models.Game{
		ID:           "demo",
		ScheduledAt:  s.clock.Now().Add(-30 * time.Minute),
		HomeTeam:     "Lady Hawks",
		AwayTeam:     "Storm",
		Status:       models.GameStatusLive,
		SharedToFeed: true,
	}, []models.GamePlayer{
		{ID: "gp-maya", Name: "Maya Jones", UserID: &mayaUser, ParticipationType: models.ParticipationDirect, JerseyNumber: jersey(23), IsStarter: true},
		{ID: "gp-zoe", Name: "Zoe Park", ParticipationType: models.ParticipationDirect, JerseyNumber: jersey(4), IsStarter: true},
		{
			ID:                "gp-ava",
			Name:              "Ava Lin",
			ManualPlayerID:    strPtr("mp-ava"),
			ManualPlayer:      &models.ManualPlayer{ID: "mp-ava", Name: "Ava Lin"},
			ParticipationType: models.ParticipationManual,
			JerseyNumber:      jersey(11),
		},
	})
	return game.ID
}

func strPtr(s string) *string { return &s }
