package drill

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"net/http"
	"net/url"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/okian/teampicker/internal/domain/types"
)

// nextBody is either a candidate or an exhausted acknowledgement.
type nextBody struct {
	statusBody
	types.Candidate
}

type joinBody struct {
	ID   string `json:"id"`
	Tier string `json:"tier"`
}

type resultBody struct {
	Outcome int `json:"outcome"`
}

// randomInt returns a uniform integer in [0, n) using crypto/rand.
func randomInt(n int) int {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0
	}
	return int(v.Int64())
}

// playRoom drives one room through a full session: ten joins, a complete
// candidate walk, a commit and a result. Every response is checked.
func playRoom(ctx context.Context, c *HTTPClient, tiers []types.Tier) (RoomReport, error) {
	rep := RoomReport{Room: "drill-" + uuid.NewString()}
	base := "/rooms/" + url.PathEscape(rep.Room)

	for i := 0; i < PoolSize; i++ {
		join := joinBody{ID: fmt.Sprintf("player-%02d", i), Tier: tiers[randomInt(len(tiers))].Name}
		key := uuid.NewString()
		var p types.Player
		if err := c.call(ctx, http.MethodPost, base+"/players", join, key, http.StatusCreated, &p); err != nil {
			return rep, err
		}
		if i == 0 {
			var ack statusBody
			if err := c.call(ctx, http.MethodPost, base+"/players", join, key, http.StatusOK, &ack); err != nil {
				return rep, err
			}
			if !ack.Duplicate || ack.Status != statusDuplicate {
				return rep, fmt.Errorf("replayed join was not acknowledged as a duplicate")
			}
			rep.Duplicates++
		}
	}

	var roster types.Roster
	if err := c.call(ctx, http.MethodGet, base+"/players", nil, "", http.StatusOK, &roster); err != nil {
		return rep, err
	}
	if !roster.Full() {
		return rep, fmt.Errorf("roster holds %d of %d players", len(roster.Players), roster.Capacity)
	}
	rep.Players = roster.Players

	seen, best, err := walkCandidates(ctx, c, base, roster.Players)
	if err != nil {
		return rep, err
	}
	rep.Candidates, rep.Best = seen, best

	var shown types.Candidate
	if err := c.call(ctx, http.MethodPost, base+"/teams", nil, uuid.NewString(), http.StatusCreated, &shown); err != nil {
		return rep, err
	}
	if err := c.call(ctx, http.MethodPost, base+"/teams/commit", nil, uuid.NewString(), http.StatusOK, &rep.Match); err != nil {
		return rep, err
	}
	if err := verifyMatch(rep.Match, shown); err != nil {
		return rep, err
	}

	outcome := randomInt(3)
	var res types.Result
	body := resultBody{Outcome: outcome}
	if err := c.call(ctx, http.MethodPost, base+"/match/result", body, uuid.NewString(), http.StatusOK, &res); err != nil {
		return rep, err
	}
	rep.Outcome, rep.Adjusted = res.Outcome, res.Adjusted

	var after types.Roster
	if err := c.call(ctx, http.MethodGet, base+"/players", nil, "", http.StatusOK, &after); err != nil {
		return rep, err
	}
	rep.After = after.Players
	if err := verifyAdjustments(roster.Players, after.Players, rep.Match, outcome, res); err != nil {
		return rep, fmt.Errorf("outcome %d: %w", outcome, err)
	}

	var ended types.Match
	if err := c.call(ctx, http.MethodGet, base+"/match", nil, "", http.StatusOK, &ended); err != nil {
		return rep, err
	}
	if ended.InProgress {
		return rep, fmt.Errorf("match still in progress after its result")
	}
	return rep, nil
}

// walkCandidates generates a candidate set and advances through it until the
// service reports it exhausted. It returns how many were shown and the most
// balanced of them.
func walkCandidates(ctx context.Context, c *HTTPClient, base string, roster []types.Player) (int, types.Candidate, error) {
	var first types.Candidate
	if err := c.call(ctx, http.MethodPost, base+"/teams", nil, uuid.NewString(), http.StatusCreated, &first); err != nil {
		return 0, first, err
	}
	shown := []types.Candidate{first}

	for len(shown) <= CandidateCount {
		var next nextBody
		if err := c.call(ctx, http.MethodPost, base+"/teams/next", nil, "", http.StatusOK, &next); err != nil {
			return len(shown), first, err
		}
		if next.Status == statusExhausted {
			break
		}
		shown = append(shown, next.Candidate)
	}

	for _, cand := range shown {
		if err := verifyCandidate(cand, roster); err != nil {
			return len(shown), first, fmt.Errorf("candidate %d: %w", cand.Index, err)
		}
	}
	indexes := lo.Uniq(lo.Map(shown, func(c types.Candidate, _ int) int { return c.Index }))
	if len(shown) != CandidateCount || len(indexes) != CandidateCount {
		return len(shown), first, fmt.Errorf("walked %d candidates (%d distinct), want %d",
			len(shown), len(indexes), CandidateCount)
	}

	best := lo.MinBy(shown, func(a, b types.Candidate) bool { return a.Unfairness < b.Unfairness })
	return len(shown), best, nil
}
