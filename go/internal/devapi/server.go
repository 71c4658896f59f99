package devapi

import (
	"net/http"

	"github.com/rs/cors"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
)

// Server serves the REST API and the push endpoint from one in-memory store
type Server struct {
	store     *Store
	hub       *Hub
	publisher Publisher
	token     string
}

type ServerOption func(*Server)

// WithPublisher routes events through p instead of straight to the hub
func WithPublisher(p Publisher) ServerOption {
	return func(s *Server) {
		if p != nil {
			s.publisher = p
		}
	}
}

// WithToken makes every API request require this bearer token
func WithToken(token string) ServerOption {
	return func(s *Server) {
		s.token = token
	}
}

func NewServer(store *Store, hub *Hub, opts ...ServerOption) *Server {
	s := &Server{
		store:     store,
		hub:       hub,
		publisher: hub,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the full handler with CORS and HTTP/2 cleartext support
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.registerRoutes(mux)

	c := cors.New(cors.Options{
		AllowedMethods: []string{
			http.MethodHead,
			http.MethodGet,
			http.MethodPost,
			http.MethodPatch,
			http.MethodDelete,
		},
		AllowedOrigins: []string{"*"},
		AllowedHeaders: []string{"*"},
	})

	return h2c.NewHandler(c.Handler(mux), &http2.Server{})
}

func (s *Server) registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/games", s.auth(s.handleListGames))
	mux.HandleFunc("GET /api/games/{id}", s.auth(s.handleGetGame))
	mux.HandleFunc("GET /api/games/{id}/players", s.auth(s.handleGetPlayers))
	mux.HandleFunc("GET /api/games/{id}/activities", s.auth(s.handleGetActivities))
	mux.HandleFunc("PATCH /api/games/{id}/score", s.auth(s.handleUpdateScore))
	mux.HandleFunc("PATCH /api/games/{id}/status", s.auth(s.handleUpdateStatus))
	mux.HandleFunc("POST /api/games/{id}/comments", s.auth(s.handleAddComment))
	mux.HandleFunc("POST /api/games/{id}/players/{playerId}/stats", s.auth(s.handleAddStat))
	mux.HandleFunc("DELETE /api/games/{id}/stats/{statId}", s.auth(s.handleDeleteStat))

	mux.Handle("GET /ws", s.hub)
	mux.HandleFunc("GET /ws/stats", s.handlePushStats)

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
}
