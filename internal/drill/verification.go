package drill

import (
	"fmt"
	"math"

	"github.com/samber/lo"

	"github.com/okian/teampicker/internal/domain/types"
)

func playerIDs(players []types.Player) []string {
	return lo.Map(players, func(p types.Player, _ int) string { return p.ID })
}

func ratingsByID(players []types.Player) map[string]int {
	return lo.Associate(players, func(p types.Player) (string, int) { return p.ID, p.Rating })
}

func sameMembers(a, b []string) bool {
	left, right := lo.Difference(a, b)
	return len(a) == len(b) && len(left) == 0 && len(right) == 0
}

func teamRating(players []types.Player) int {
	return lo.Reduce(players, func(acc int, p types.Player, _ int) int { return acc + p.Rating }, 0)
}

// verifyCandidate checks that c is a 5v5 split of roster with consistent
// totals and scores.
func verifyCandidate(c types.Candidate, roster []types.Player) error {
	if len(c.Team1) != TeamSize || len(c.Team2) != TeamSize {
		return fmt.Errorf("split is %dv%d, want %dv%d", len(c.Team1), len(c.Team2), TeamSize, TeamSize)
	}
	if c.Total != CandidateCount {
		return fmt.Errorf("candidate total %d, want %d", c.Total, CandidateCount)
	}
	if c.Index < 0 || c.Index >= c.Total {
		return fmt.Errorf("candidate index %d outside [0,%d)", c.Index, c.Total)
	}

	ids := append(playerIDs(c.Team1), playerIDs(c.Team2)...)
	if len(lo.Uniq(ids)) != PoolSize {
		return fmt.Errorf("split repeats a player: %v", ids)
	}
	if missing, _ := lo.Difference(playerIDs(roster), ids); len(missing) > 0 {
		return fmt.Errorf("split leaves out %v", missing)
	}

	if got := teamRating(c.Team1); got != c.Team1Rating {
		return fmt.Errorf("team1 rating %d, members sum to %d", c.Team1Rating, got)
	}
	if got := teamRating(c.Team2); got != c.Team2Rating {
		return fmt.Errorf("team2 rating %d, members sum to %d", c.Team2Rating, got)
	}
	if c.WinProbability <= 0 || c.WinProbability >= 1 {
		return fmt.Errorf("win probability %f outside (0,1)", c.WinProbability)
	}
	if c.Unfairness < 0 || c.Unfairness > 0.5 {
		return fmt.Errorf("unfairness %f outside [0,0.5]", c.Unfairness)
	}
	if want := math.Abs(c.WinProbability - 0.5); math.Abs(want-c.Unfairness) > 1e-9 {
		return fmt.Errorf("unfairness %f does not match win probability %f", c.Unfairness, c.WinProbability)
	}
	return nil
}

// verifyMatch checks that the committed match holds the candidate it was
// committed from.
func verifyMatch(m types.Match, c types.Candidate) error {
	if !m.InProgress {
		return fmt.Errorf("committed match is not in progress")
	}
	if !sameMembers(m.Team1, playerIDs(c.Team1)) || !sameMembers(m.Team2, playerIDs(c.Team2)) {
		return fmt.Errorf("committed match %v vs %v differs from the candidate shown", m.Team1, m.Team2)
	}
	return nil
}

// verifyAdjustments checks rating moves after a result: winners gain the step,
// losers lose it and a draw changes nothing.
func verifyAdjustments(before, after []types.Player, m types.Match, outcome int, res types.Result) error {
	was, now := ratingsByID(before), ratingsByID(after)
	delta := func(team []string) []int {
		return lo.Map(team, func(id string, _ int) int { return now[id] - was[id] })
	}
	expect := func(team []string, want int) error {
		for i, d := range delta(team) {
			if d != want {
				return fmt.Errorf("%s moved by %d, want %d", team[i], d, want)
			}
		}
		return nil
	}

	var win, lose []string
	switch outcome {
	case 0:
		if res.Adjusted != 0 {
			return fmt.Errorf("draw adjusted %d ratings", res.Adjusted)
		}
		return expect(append(append([]string{}, m.Team1...), m.Team2...), 0)
	case 1:
		win, lose = m.Team1, m.Team2
	case 2:
		win, lose = m.Team2, m.Team1
	default:
		return fmt.Errorf("unknown outcome %d", outcome)
	}

	if res.Adjusted != PoolSize {
		return fmt.Errorf("result adjusted %d ratings, want %d", res.Adjusted, PoolSize)
	}
	if err := expect(win, RatingStep); err != nil {
		return err
	}
	return expect(lose, -RatingStep)
}
