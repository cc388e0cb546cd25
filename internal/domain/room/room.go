// Package room holds the per-room aggregate: the participant pool, the
// candidate pool of team splits and the active match.
//
// A Room is owned by one caller at a time; it does no locking of its own.
package room

import (
	"errors"
	"slices"

	"github.com/okian/teampicker/internal/domain/model"
	"github.com/okian/teampicker/internal/domain/rating"
	"github.com/okian/teampicker/internal/domain/teams"
)

// Room is one independent pickup lobby.
type Room struct {
	id         string
	order      []string
	players    map[string]*model.Participant
	candidates *teams.CandidatePool
	match      model.Match
	searchOpts []teams.Option
}

// New creates an empty room. The options are passed to every search.
func New(id string, opts ...teams.Option) *Room {
	return &Room{
		id:         id,
		players:    make(map[string]*model.Participant, model.PartySize),
		searchOpts: opts,
	}
}

// ID returns the room identity.
func (r *Room) ID() string { return r.id }

// Size returns the number of participants.
func (r *Room) Size() int { return len(r.order) }

// Players returns the participants in join order.
func (r *Room) Players() []model.Participant {
	out := make([]model.Participant, len(r.order))
	for i, id := range r.order {
		out[i] = *r.players[id]
	}
	return out
}

// Player returns a participant by identity.
func (r *Room) Player(id string) (model.Participant, bool) {
	p, ok := r.players[id]
	if !ok {
		return model.Participant{}, false
	}
	return *p, true
}

// Join adds a participant with an already resolved rating.
func (r *Room) Join(id string, rating int) error {
	const op = "join"
	if _, ok := r.players[id]; ok {
		return NewError(op, KindValidation, ErrAlreadyJoined)
	}
	if len(r.order) >= model.PartySize {
		return NewError(op, KindValidation, ErrPoolFull)
	}
	r.players[id] = &model.Participant{ID: id, Rating: rating}
	r.order = append(r.order, id)
	return nil
}

// Leave removes the caller from the pool.
func (r *Room) Leave(id string) error {
	return r.remove("leave", id)
}

// Kick removes another participant from the pool.
func (r *Room) Kick(id string) error {
	return r.remove("kick", id)
}

func (r *Room) remove(op, id string) error {
	if _, ok := r.players[id]; !ok {
		return NewError(op, KindNotFound, ErrNotInPool)
	}
	delete(r.players, id)
	r.order = slices.DeleteFunc(r.order, func(s string) bool { return s == id })
	return nil
}

// Reset clears the pool, the candidates, the cursor and the match.
func (r *Room) Reset() {
	clear(r.players)
	r.order = r.order[:0]
	r.candidates = nil
	r.match = model.Match{}
}

// Generate searches the pool for balanced splits and replaces any previous
// candidates. It returns the first candidate to show.
func (r *Room) Generate() (model.Split, error) {
	const op = "generate"
	pool, err := teams.Generate(r.Players(), r.searchOpts...)
	if err != nil {
		return model.Split{}, NewError(op, KindValidation, err)
	}
	r.candidates = pool
	split, _ := pool.Current()
	return split, nil
}

// Candidates returns the current candidate pool, or nil before Generate.
func (r *Room) Candidates() *teams.CandidatePool { return r.candidates }

// Current returns the displayed candidate.
func (r *Room) Current() (model.Split, error) {
	const op = "current"
	if r.candidates == nil || r.candidates.Len() == 0 {
		return model.Split{}, NewError(op, KindSequence, ErrNoCandidates)
	}
	split, ok := r.candidates.Current()
	if !ok {
		return model.Split{}, NewError(op, KindBoundary, teams.ErrNoMoreCandidates)
	}
	return split, nil
}

// Next advances to the following candidate.
func (r *Room) Next() (model.Split, error) {
	const op = "next"
	if r.candidates == nil || r.candidates.Len() == 0 {
		return model.Split{}, NewError(op, KindSequence, ErrNoCandidates)
	}
	split, err := r.candidates.Advance()
	if err != nil {
		return model.Split{}, NewError(op, KindBoundary, err)
	}
	return split, nil
}

// Commit locks the displayed candidate in as the active match. Committing
// again replaces the previous match.
func (r *Room) Commit() (model.Match, error) {
	const op = "commit"
	if r.candidates == nil || r.candidates.Len() == 0 {
		return model.Match{}, NewError(op, KindSequence, ErrNoCandidates)
	}
	m, err := r.candidates.Commit()
	if err != nil {
		return model.Match{}, NewError(op, KindSequence, err)
	}
	r.match = m
	return m, nil
}

// Match returns the last committed match.
func (r *Room) Match() model.Match { return r.match }

// Report applies a result to the active match and returns how many ratings
// changed. Participants who left since the commit are skipped.
func (r *Room) Report(outcome model.Outcome) (int, error) {
	const op = "report"
	n, err := rating.ApplyResult(&r.match, outcome, r.lookup)
	switch {
	case errors.Is(err, rating.ErrMatchNotInProgress):
		return 0, NewError(op, KindSequence, ErrNoActiveMatch)
	case err != nil:
		return 0, NewError(op, KindValidation, err)
	}
	return n, nil
}

// Boost raises a participant's rating by delta and returns the new rating.
func (r *Room) Boost(id string, delta int) (int, error) {
	p := r.lookup(id)
	if p == nil {
		return 0, NewError("boost", KindNotFound, ErrNotInPool)
	}
	return rating.Boost(p, delta), nil
}

func (r *Room) lookup(id string) *model.Participant {
	return r.players[id]
}
