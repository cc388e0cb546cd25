package room

import (
	"errors"
	"fmt"
)

// Kind classifies room errors so transports can report them distinctly.
type Kind int

// Error kinds.
const (
	// KindValidation is bad input: wrong pool size, duplicate join, full pool,
	// unknown tier, unrecognised outcome.
	KindValidation Kind = iota + 1
	// KindNotFound is an identity missing from the pool.
	KindNotFound
	// KindSequence is a command issued out of order.
	KindSequence
	// KindBoundary is a normal end-of-list signal.
	KindBoundary
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindSequence:
		return "sequence"
	case KindBoundary:
		return "boundary"
	default:
		return "unknown"
	}
}

// Sentinel conditions reported by Room operations.
var (
	ErrAlreadyJoined = errors.New("already joined")
	ErrPoolFull      = errors.New("pool is full")
	ErrNotInPool     = errors.New("not in the pool")
	ErrNoCandidates  = errors.New("no teams have been generated")
	ErrNoActiveMatch = errors.New("no active match")
)

// Error is the typed failure every Room operation returns.
type Error struct {
	Op   string
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// NewError builds a room error. Callers outside the aggregate use it to
// classify failures that happen before the room is touched.
func NewError(op string, kind Kind, err error) error {
	return &Error{Op: op, Kind: kind, Err: err}
}

// KindOf returns the Kind of err, or zero when err is not a room error.
func KindOf(err error) Kind {
	var re *Error
	if errors.As(err, &re) {
		return re.Kind
	}
	return 0
}
