package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
)

// outcomeToken accepts the outcome as a JSON string ("1", "draw") or number.
type outcomeToken string

func (o *outcomeToken) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*o = outcomeToken(s)
		return nil
	}
	n, err := strconv.Atoi(string(b))
	if err != nil {
		return errors.New("outcome must be a string or an integer")
	}
	*o = outcomeToken(strconv.Itoa(n))
	return nil
}

type resultRequest struct {
	Outcome outcomeToken `json:"outcome"`
}

// MatchHandler serves the committed match.
type MatchHandler struct {
	svc MatchService
}

// NewMatchHandler creates a new match handler.
func NewMatchHandler(svc MatchService) *MatchHandler {
	return &MatchHandler{svc: svc}
}

// HandleResult handles POST /rooms/{room}/match/result.
func (h *MatchHandler) HandleResult(w http.ResponseWriter, r *http.Request) {
	const op = "api.result"
	var req resultRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDomainError(w, badRequest(op, err))
		return
	}
	if req.Outcome == "" {
		writeDomainError(w, badRequest(op, errors.New("missing outcome")))
		return
	}
	res, err := h.svc.Winner(r.Context(), roomParam(r), string(req.Outcome))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// HandleGet handles GET /rooms/{room}/match.
func (h *MatchHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	m, err := h.svc.Match(r.Context(), roomParam(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}
