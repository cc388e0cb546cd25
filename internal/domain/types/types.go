// Package types contains the view shapes the transports render.
package types

import (
	"github.com/samber/lo"

	"github.com/okian/teampicker/internal/domain/fairness"
	"github.com/okian/teampicker/internal/domain/model"
)

// Player is one participant as shown to users.
type Player struct {
	Position int    `json:"position,omitempty"`
	ID       string `json:"id"`
	Rating   int    `json:"rating"`
}

// Roster is the participant pool of a room.
type Roster struct {
	Room     string   `json:"room"`
	Players  []Player `json:"players"`
	Capacity int      `json:"capacity"`
}

// Full reports whether the pool can generate teams.
func (r Roster) Full() bool { return len(r.Players) == r.Capacity }

// Candidate is one proposed split.
type Candidate struct {
	Index          int      `json:"index"`
	Total          int      `json:"total"`
	Team1          []Player `json:"team1"`
	Team2          []Player `json:"team2"`
	Team1Rating    int      `json:"team1_rating"`
	Team2Rating    int      `json:"team2_rating"`
	WinProbability float64  `json:"win_probability"`
	Unfairness     float64  `json:"unfairness"`
}

// Match is the committed split.
type Match struct {
	Team1      []string `json:"team1"`
	Team2      []string `json:"team2"`
	InProgress bool     `json:"in_progress"`
}

// Result is the outcome of reporting a match.
type Result struct {
	Outcome  string `json:"outcome"`
	Adjusted int    `json:"adjusted"`
}

// Tier is one named skill tier.
type Tier struct {
	Name   string `json:"name"`
	Rating int    `json:"rating"`
}

// PlayerOf converts a participant.
func PlayerOf(p model.Participant) Player {
	return Player{ID: p.ID, Rating: p.Rating}
}

// Players converts a group and numbers it from one.
func Players(group []model.Participant) []Player {
	return lo.Map(group, func(p model.Participant, i int) Player {
		v := PlayerOf(p)
		v.Position = i + 1
		return v
	})
}

// CandidateOf builds the view of the split at index out of total.
func CandidateOf(s model.Split, index, total int) Candidate {
	return Candidate{
		Index:          index,
		Total:          total,
		Team1:          Players(s.A),
		Team2:          Players(s.B),
		Team1Rating:    model.Sum(s.A),
		Team2Rating:    model.Sum(s.B),
		WinProbability: fairness.WinProbability(s.A, s.B),
		Unfairness:     s.Unfairness,
	}
}

// MatchOf converts a match.
func MatchOf(m model.Match) Match {
	return Match{
		Team1:      lo.Ternary(m.Team1 == nil, []string{}, []string(m.Team1)),
		Team2:      lo.Ternary(m.Team2 == nil, []string{}, []string(m.Team2)),
		InProgress: m.InProgress,
	}
}
