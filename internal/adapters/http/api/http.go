// Package api exposes the room commands as a JSON HTTP API.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/okian/teampicker/internal/domain/types"
)

// PlayerService covers pool membership.
type PlayerService interface {
	Join(ctx context.Context, roomID, playerID, tier string) (types.Player, error)
	JoinRated(ctx context.Context, roomID, playerID string, rating int) (types.Player, error)
	Leave(ctx context.Context, roomID, playerID string) error
	Kick(ctx context.Context, roomID, playerID string) error
	Reset(ctx context.Context, roomID string) error
	Players(ctx context.Context, roomID string) (types.Roster, error)
	Bump(ctx context.Context, roomID, playerID string, delta int) (types.Player, error)
	Rooms(ctx context.Context) ([]string, error)
	Tiers() []types.Tier
}

// TeamService covers the candidate walk.
type TeamService interface {
	MakeTeams(ctx context.Context, roomID string) (types.Candidate, error)
	NextTeams(ctx context.Context, roomID string) (types.Candidate, error)
	CurrentTeams(ctx context.Context, roomID string) (types.Candidate, error)
	Choose(ctx context.Context, roomID string) (types.Match, error)
}

// MatchService covers the committed match.
type MatchService interface {
	Winner(ctx context.Context, roomID, token string) (types.Result, error)
	Match(ctx context.Context, roomID string) (types.Match, error)
}

// Idempotency records request keys.
type Idempotency interface {
	SeenAndRecord(ctx context.Context, source, id string) bool
	Unrecord(ctx context.Context, source, id string)
}

// Dependencies required by HTTP handlers.
type Dependencies interface {
	PlayerService
	TeamService
	MatchService
	Idempotency
}

// Server wires HTTP routes for the room API.
type Server struct {
	deps          Dependencies
	healthHandler *HealthHandler
	statsHandler  *StatsHandler
	playerHandler *PlayerHandler
	teamHandler   *TeamHandler
	matchHandler  *MatchHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		deps:          deps,
		healthHandler: NewHealthHandler(),
		statsHandler:  NewStatsHandler(statsProvider),
		playerHandler: NewPlayerHandler(deps),
		teamHandler:   NewTeamHandler(deps),
		matchHandler:  NewMatchHandler(deps),
	}
}

// Register attaches all API routes to r.
func (s *Server) Register(_ context.Context, r chi.Router) {
	r.Use(chimw.Recoverer, MetricsMiddleware)

	r.Get("/healthz", s.healthHandler.HandleHealth)
	r.Get("/stats", s.statsHandler.HandleStats)
	r.Get("/tiers", s.playerHandler.HandleTiers)
	r.Get("/rooms", s.playerHandler.HandleRooms)

	r.Route("/rooms/{room}", func(r chi.Router) {
		r.Get("/players", s.playerHandler.HandleList)
		r.Get("/teams", s.teamHandler.HandleCurrent)
		r.Get("/match", s.matchHandler.HandleGet)

		r.Group(func(r chi.Router) {
			r.Use(IdempotencyMiddleware(s.deps))

			r.Post("/players", s.playerHandler.HandleJoin)
			r.Delete("/players/{id}", s.playerHandler.HandleLeave)
			r.Post("/players/{id}/boost", s.playerHandler.HandleBoost)
			r.Post("/reset", s.playerHandler.HandleReset)

			r.Post("/teams", s.teamHandler.HandleMake)
			r.Post("/teams/next", s.teamHandler.HandleNext)
			r.Post("/teams/commit", s.teamHandler.HandleCommit)

			r.Post("/match/result", s.matchHandler.HandleResult)
		})
	})
}

type statusResponse struct {
	Status    string `json:"status"`
	Message   string `json:"message,omitempty"`
	Duplicate bool   `json:"duplicate,omitempty"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

func roomParam(r *http.Request) string {
	return chi.URLParam(r, "room")
}
