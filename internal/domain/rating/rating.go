// Package rating holds the fixed-step rating rules and the skill-tier table.
package rating

import (
	"errors"
	"fmt"

	"github.com/okian/teampicker/internal/domain/model"
)

// Step is the rating change for a win, a loss and a manual boost.
const Step = 8

// Sentinel errors for rating operations.
var (
	ErrMatchNotInProgress = errors.New("no active match")
)

// Lookup resolves a participant by identity. It returns nil for identities
// that are no longer in the pool.
type Lookup func(id string) *model.Participant

// ApplyResult moves every winner up by Step and every loser down by Step.
// A draw changes nothing. The match is marked over for every recognised
// outcome; an unrecognised outcome leaves the match untouched. It returns the
// number of ratings changed.
func ApplyResult(match *model.Match, outcome model.Outcome, lookup Lookup) (int, error) {
	if match == nil || !match.InProgress {
		return 0, ErrMatchNotInProgress
	}
	if !outcome.Valid() {
		return 0, fmt.Errorf("%w: %d", model.ErrInvalidOutcome, int(outcome))
	}

	changed := 0
	switch outcome {
	case model.OutcomeTeam1:
		changed = shift(match.Team1, Step, lookup) + shift(match.Team2, -Step, lookup)
	case model.OutcomeTeam2:
		changed = shift(match.Team2, Step, lookup) + shift(match.Team1, -Step, lookup)
	}
	match.InProgress = false
	return changed, nil
}

func shift(team model.Team, delta int, lookup Lookup) int {
	n := 0
	for _, id := range team {
		if p := lookup(id); p != nil {
			p.Rating += delta
			n++
		}
	}
	return n
}

// Boost adds delta to a participant's rating and returns the new rating.
func Boost(p *model.Participant, delta int) int {
	p.Rating += delta
	return p.Rating
}
