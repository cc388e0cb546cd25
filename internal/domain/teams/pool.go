package teams

import (
	"errors"
	"slices"

	"github.com/okian/teampicker/internal/domain/model"
)

// Cursor errors.
var (
	// ErrNoMoreCandidates signals the walk reached the end of the pool. It is
	// a normal boundary, not a failure.
	ErrNoMoreCandidates = errors.New("no more candidates")
	// ErrCursorExhausted is returned by Commit when the cursor is past the end.
	ErrCursorExhausted = errors.New("cursor is past the last candidate")
)

// CandidatePool is the shuffled set of retained splits and a cursor into it.
// It is not safe for concurrent use.
type CandidatePool struct {
	candidates []model.Split
	cursor     int
}

// Len returns the number of retained candidates.
func (c *CandidatePool) Len() int { return len(c.candidates) }

// Cursor returns the index of the displayed candidate.
func (c *CandidatePool) Cursor() int { return c.cursor }

// All returns a copy of the candidates in presentation order.
func (c *CandidatePool) All() []model.Split { return slices.Clone(c.candidates) }

// Current returns the candidate under the cursor.
func (c *CandidatePool) Current() (model.Split, bool) {
	if c.cursor < 0 || c.cursor >= len(c.candidates) {
		return model.Split{}, false
	}
	return c.candidates[c.cursor], true
}

// Advance moves to the next candidate. Once the end is reached the cursor
// stays parked one past the last candidate and every call returns
// ErrNoMoreCandidates.
func (c *CandidatePool) Advance() (model.Split, error) {
	if c.cursor < len(c.candidates) {
		c.cursor++
	}
	split, ok := c.Current()
	if !ok {
		return model.Split{}, ErrNoMoreCandidates
	}
	return split, nil
}

// Commit locks the candidate under the cursor in as an active match.
func (c *CandidatePool) Commit() (model.Match, error) {
	split, ok := c.Current()
	if !ok {
		return model.Match{}, ErrCursorExhausted
	}
	return model.Match{
		Team1:      model.IDs(split.A),
		Team2:      model.IDs(split.B),
		InProgress: true,
	}, nil
}
