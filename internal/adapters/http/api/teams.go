package api

import (
	"net/http"
)

// TeamHandler serves the candidate walk.
type TeamHandler struct {
	svc TeamService
}

// NewTeamHandler creates a new team handler.
func NewTeamHandler(svc TeamService) *TeamHandler {
	return &TeamHandler{svc: svc}
}

// HandleMake handles POST /rooms/{room}/teams.
func (h *TeamHandler) HandleMake(w http.ResponseWriter, r *http.Request) {
	c, err := h.svc.MakeTeams(r.Context(), roomParam(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

// HandleNext handles POST /rooms/{room}/teams/next.
func (h *TeamHandler) HandleNext(w http.ResponseWriter, r *http.Request) {
	c, err := h.svc.NextTeams(r.Context(), roomParam(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// HandleCurrent handles GET /rooms/{room}/teams.
func (h *TeamHandler) HandleCurrent(w http.ResponseWriter, r *http.Request) {
	c, err := h.svc.CurrentTeams(r.Context(), roomParam(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// HandleCommit handles POST /rooms/{room}/teams/commit.
func (h *TeamHandler) HandleCommit(w http.ResponseWriter, r *http.Request) {
	m, err := h.svc.Choose(r.Context(), roomParam(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}
