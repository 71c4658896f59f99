package devapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/girlsgotgame/courtside/go/internal/models"
	"github.com/girlsgotgame/courtside/go/internal/push"
	"github.com/rs/zerolog/log"
)

// UserHeader names the acting user in activity entries
const UserHeader = "X-User-ID"

type envelope struct {
	Data  any    `json:"data,omitempty"`
	Error string `json:"error,omitempty"`
}

func writeData(w http.ResponseWriter, status int, data any) {
	writeEnvelope(w, status, envelope{Data: data})
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeEnvelope(w, status, envelope{Error: message})
}

func writeEnvelope(w http.ResponseWriter, status int, env envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(env); err != nil {
		log.Error().Err(err).Msg("failed to write response")
	}
}

// writeStoreError maps store errors onto status codes
func writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrGameNotFound), errors.Is(err, ErrPlayerNotFound), errors.Is(err, ErrStatNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		log.Error().Err(err).Msg("unexpected store error")
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// auth rejects requests without the configured bearer token
func (s *Server) auth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.token != "" {
			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || token != s.token {
				writeError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}
		}
		next(w, r)
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	if err := dec.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

func performedBy(r *http.Request) string {
	if id := r.Header.Get(UserHeader); id != "" {
		return id
	}
	return "dev"
}

func (s *Server) handleListGames(w http.ResponseWriter, r *http.Request) {
	var games []models.Game
	for _, id := range s.store.GameIDs() {
		detail, err := s.store.Game(id)
		if err != nil {
			continue
		}
		games = append(games, detail.Game)
	}
	writeData(w, http.StatusOK, games)
}

func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	detail, err := s.store.Game(r.PathValue("id"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeData(w, http.StatusOK, detail)
}

func (s *Server) handleGetPlayers(w http.ResponseWriter, r *http.Request) {
	players, err := s.store.Players(r.PathValue("id"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeData(w, http.StatusOK, players)
}

func (s *Server) handleGetActivities(w http.ResponseWriter, r *http.Request) {
	activities, err := s.store.Activities(r.PathValue("id"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeData(w, http.StatusOK, activities)
}

func (s *Server) handleUpdateScore(w http.ResponseWriter, r *http.Request) {
	var input models.ScoreUpdate
	if !decodeBody(w, r, &input) {
		return
	}

	gameID := r.PathValue("id")
	game, activity, err := s.store.UpdateScore(gameID, input, performedBy(r))
	if err != nil {
		writeStoreError(w, err)
		return
	}

	s.publish(gameID, push.EventScoreUpdated, push.ScoreUpdated{
		GameID:    gameID,
		HomeScore: input.HomeScore,
		AwayScore: input.AwayScore,
	})
	s.publish(gameID, push.EventActivityAdded, push.ActivityAdded{GameID: gameID, Activity: activity})
	writeData(w, http.StatusOK, game)
}

func (s *Server) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	var input models.StatusUpdate
	if !decodeBody(w, r, &input) {
		return
	}

	gameID := r.PathValue("id")
	game, activity, err := s.store.UpdateStatus(gameID, input, performedBy(r))
	if err != nil {
		writeStoreError(w, err)
		return
	}

	s.publish(gameID, push.EventActivityAdded, push.ActivityAdded{GameID: gameID, Activity: activity})
	writeData(w, http.StatusOK, game)
}

func (s *Server) handleAddComment(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Content string `json:"content"`
	}
	if !decodeBody(w, r, &input) {
		return
	}

	comment, err := s.store.AddComment(r.PathValue("id"), performedBy(r), input.Content)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeData(w, http.StatusCreated, comment)
}

func (s *Server) handleAddStat(w http.ResponseWriter, r *http.Request) {
	var input models.NewStat
	if !decodeBody(w, r, &input) {
		return
	}

	gameID := r.PathValue("id")
	stat, activity, err := s.store.AddStat(gameID, r.PathValue("playerId"), input, performedBy(r))
	if err != nil {
		writeStoreError(w, err)
		return
	}

	s.publish(gameID, push.EventActivityAdded, push.ActivityAdded{GameID: gameID, Activity: activity, Stat: &stat})
	writeData(w, http.StatusCreated, stat)
}

func (s *Server) handleDeleteStat(w http.ResponseWriter, r *http.Request) {
	gameID := r.PathValue("id")
	activity, err := s.store.DeleteStat(gameID, r.PathValue("statId"), performedBy(r))
	if err != nil {
		writeStoreError(w, err)
		return
	}

	s.publish(gameID, push.EventActivityAdded, push.ActivityAdded{GameID: gameID, Activity: activity, StatRemoved: true})
	writeData(w, http.StatusOK, map[string]any{"success": true, "message": "Stat removed"})
}

// publish never fails the request; push delivery is best effort
func (s *Server) publish(gameID string, name push.EventName, payload any) {
	event, err := push.NewEvent(name, payload)
	if err != nil {
		log.Error().Err(err).Str("game_id", gameID).Msg("failed to build event")
		return
	}
	if err := s.publisher.Publish(gameID, event); err != nil {
		log.Error().
			Err(err).
			Str("game_id", gameID).
			Str("event", string(name)).
			Msg("failed to publish event")
	}
}

// handlePushStats reports how many sockets follow each game
func (s *Server) handlePushStats(w http.ResponseWriter, r *http.Request) {
	writeData(w, http.StatusOK, map[string]any{"games": s.hub.Stats()})
}
