package model

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidOutcome is returned for a result token that names no outcome.
var ErrInvalidOutcome = errors.New("invalid outcome")

// Outcome is the reported result of a match.
type Outcome int

// Recognised outcomes. The numeric values match the chat tokens.
const (
	OutcomeDraw Outcome = iota
	OutcomeTeam1
	OutcomeTeam2
)

func (o Outcome) String() string {
	switch o {
	case OutcomeDraw:
		return "draw"
	case OutcomeTeam1:
		return "team1"
	case OutcomeTeam2:
		return "team2"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Valid reports whether o is one of the recognised outcomes.
func (o Outcome) Valid() bool {
	return o >= OutcomeDraw && o <= OutcomeTeam2
}

// ParseOutcome reads "0"/"draw", "1"/"team1" or "2"/"team2".
func ParseOutcome(token string) (Outcome, error) {
	switch strings.ToLower(strings.TrimSpace(token)) {
	case "0", "draw":
		return OutcomeDraw, nil
	case "1", "team1":
		return OutcomeTeam1, nil
	case "2", "team2":
		return OutcomeTeam2, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidOutcome, token)
}
