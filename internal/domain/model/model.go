// Package model contains the domain records shared by the team picker layers.
package model

import (
	"slices"
	"strings"

	"github.com/samber/lo"
)

// TeamSize is the number of players on each side.
const TeamSize = 5

// PartySize is the number of participants needed to build teams.
const PartySize = 2 * TeamSize

// Participant is one player in a room's pool.
type Participant struct {
	ID     string `json:"id"`
	Rating int    `json:"rating"`
}

// Sum returns the aggregate rating of a group.
func Sum(group []Participant) int {
	total := 0
	for _, p := range group {
		total += p.Rating
	}
	return total
}

// IDs returns the identities of a group in order.
func IDs(group []Participant) []string {
	return lo.Map(group, func(p Participant, _ int) string { return p.ID })
}

// Split is one way of dividing ten participants into two groups of five.
// The groups are snapshots taken when the split was scored.
type Split struct {
	A          []Participant `json:"team1"`
	B          []Participant `json:"team2"`
	Unfairness float64       `json:"unfairness"`
}

// Key identifies the split regardless of which side is called A.
func (s Split) Key() string {
	a, b := sortedIDs(s.A), sortedIDs(s.B)
	if a > b {
		a, b = b, a
	}
	return a + "|" + b
}

func sortedIDs(group []Participant) string {
	ids := IDs(group)
	slices.Sort(ids)
	return strings.Join(ids, ",")
}

// Team lists the identities committed to one side. Ratings are looked up in
// the room pool so later changes stay visible.
type Team []string

// Match is the committed pair of teams.
type Match struct {
	Team1      Team `json:"team1"`
	Team2      Team `json:"team2"`
	InProgress bool `json:"in_progress"`
}

// Has reports whether id plays in the match.
func (m Match) Has(id string) bool {
	return lo.Contains(m.Team1, id) || lo.Contains(m.Team2, id)
}
