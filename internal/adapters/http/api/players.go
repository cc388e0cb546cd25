package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/okian/teampicker/internal/domain/types"
)

// joinRequest adds a player by tier name or by explicit rating.
type joinRequest struct {
	ID     string `json:"id"`
	Tier   string `json:"tier,omitempty"`
	Rating int    `json:"rating,omitempty"`
}

func (j joinRequest) validate() error {
	switch {
	case strings.TrimSpace(j.ID) == "":
		return errors.New("missing id")
	case j.Tier == "" && j.Rating == 0:
		return errors.New("one of tier or rating is required")
	case j.Tier != "" && j.Rating != 0:
		return errors.New("tier and rating are mutually exclusive")
	}
	return nil
}

type boostRequest struct {
	Delta int `json:"delta"`
}

// PlayerHandler serves pool membership routes.
type PlayerHandler struct {
	svc PlayerService
}

// NewPlayerHandler creates a new player handler.
func NewPlayerHandler(svc PlayerService) *PlayerHandler {
	return &PlayerHandler{svc: svc}
}

// HandleJoin handles POST /rooms/{room}/players.
func (h *PlayerHandler) HandleJoin(w http.ResponseWriter, r *http.Request) {
	const op = "api.join"
	var req joinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDomainError(w, badRequest(op, err))
		return
	}
	if err := req.validate(); err != nil {
		writeDomainError(w, badRequest(op, err))
		return
	}

	var (
		out types.Player
		err error
	)
	if req.Tier != "" {
		out, err = h.svc.Join(r.Context(), roomParam(r), req.ID, req.Tier)
	} else {
		out, err = h.svc.JoinRated(r.Context(), roomParam(r), req.ID, req.Rating)
	}
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, out)
}

// HandleList handles GET /rooms/{room}/players.
func (h *PlayerHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	roster, err := h.svc.Players(r.Context(), roomParam(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, roster)
}

// HandleLeave handles DELETE /rooms/{room}/players/{id}. With ?kick=true the
// removal is recorded as a kick.
func (h *PlayerHandler) HandleLeave(w http.ResponseWriter, r *http.Request) {
	const op = "api.leave"
	id := chi.URLParam(r, "id")
	kick := false
	if v := r.URL.Query().Get("kick"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			writeDomainError(w, badRequest(op, err))
			return
		}
		kick = b
	}

	var err error
	if kick {
		err = h.svc.Kick(r.Context(), roomParam(r), id)
	} else {
		err = h.svc.Leave(r.Context(), roomParam(r), id)
	}
	if err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleBoost handles POST /rooms/{room}/players/{id}/boost. An empty body
// boosts by the default step.
func (h *PlayerHandler) HandleBoost(w http.ResponseWriter, r *http.Request) {
	const op = "api.boost"
	var req boostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeDomainError(w, badRequest(op, err))
		return
	}
	p, err := h.svc.Bump(r.Context(), roomParam(r), chi.URLParam(r, "id"), req.Delta)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// HandleReset handles POST /rooms/{room}/reset.
func (h *PlayerHandler) HandleReset(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Reset(r.Context(), roomParam(r)); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{Status: "reset"})
}

type roomsResponse struct {
	Rooms []string `json:"rooms"`
}

// HandleRooms handles GET /rooms.
func (h *PlayerHandler) HandleRooms(w http.ResponseWriter, r *http.Request) {
	ids, err := h.svc.Rooms(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, roomsResponse{Rooms: ids})
}

// HandleTiers handles GET /tiers.
func (h *PlayerHandler) HandleTiers(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Tiers())
}
