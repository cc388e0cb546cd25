package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/okian/teampicker/internal/adapters/mq/queue"
	"github.com/okian/teampicker/internal/adapters/mq/worker"
	service "github.com/okian/teampicker/internal/app"
	"github.com/okian/teampicker/internal/domain/room"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest = errors.New("bad request")
)

func badRequest(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrBadRequest, err)
}

// writeDomainError maps a service error onto a status code. Reaching the end
// of the candidate list is not a failure and answers 200.
func writeDomainError(w http.ResponseWriter, err error) {
	switch room.KindOf(err) {
	case room.KindBoundary:
		writeJSON(w, http.StatusOK, statusResponse{Status: "exhausted", Message: err.Error()})
		return
	case room.KindValidation:
		if errors.Is(err, room.ErrAlreadyJoined) || errors.Is(err, room.ErrPoolFull) {
			writeError(w, http.StatusConflict, "conflict", err)
			return
		}
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	case room.KindNotFound:
		writeError(w, http.StatusNotFound, "not_found", err)
		return
	case room.KindSequence:
		writeError(w, http.StatusConflict, "conflict", err)
		return
	}

	switch {
	case errors.Is(err, ErrBadRequest):
		writeError(w, http.StatusBadRequest, "bad_request", err)
	case errors.Is(err, queue.ErrFull):
		writeError(w, http.StatusTooManyRequests, "backpressure", err)
	case errors.Is(err, service.ErrNotStarted), errors.Is(err, worker.ErrStopped):
		writeError(w, http.StatusServiceUnavailable, "unavailable", err)
	case errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusGatewayTimeout, "timeout", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal", err)
	}
}
