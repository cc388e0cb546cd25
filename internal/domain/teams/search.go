// Package teams searches every 5-vs-5 split of a ten-player pool and keeps a
// shuffled handful of the most balanced ones.
package teams

import (
	"cmp"
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"

	"github.com/okian/teampicker/internal/domain/fairness"
	"github.com/okian/teampicker/internal/domain/model"
)

// KeepTop is the number of splits retained from one search.
const KeepTop = 20

// ErrNeedTenPlayers is returned when the pool is not exactly ten strong.
var ErrNeedTenPlayers = fmt.Errorf("need exactly %d players", model.PartySize)

// ErrDuplicatePlayer is returned when an identity appears twice in the pool.
var ErrDuplicatePlayer = errors.New("duplicate player in pool")

// Option configures a search.
type Option func(*search)

type search struct {
	evaluator fairness.Evaluator
	shuffle   func(n int, swap func(i, j int))
	keep      int
}

// WithEvaluator replaces the default logistic evaluator.
func WithEvaluator(e fairness.Evaluator) Option {
	return func(s *search) {
		if e != nil {
			s.evaluator = e
		}
	}
}

// WithRand shuffles with r instead of the global source.
func WithRand(r *rand.Rand) Option {
	return func(s *search) {
		if r != nil {
			s.shuffle = r.Shuffle
		}
	}
}

// WithoutShuffle keeps the ranked order. Used by tests and diagnostics.
func WithoutShuffle() Option {
	return func(s *search) {
		s.shuffle = func(int, func(int, int)) {}
	}
}

func newSearch(opts []Option) *search {
	s := &search{
		evaluator: fairness.Default,
		shuffle:   rand.Shuffle,
		keep:      KeepTop,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Rank scores every split of pool and returns them most balanced first.
// Splits are produced in lexicographic order of the group-A index set over
// the pool's insertion order; the sort is stable, so equal scores keep that
// order.
func Rank(pool []model.Participant, opts ...Option) ([]model.Split, error) {
	if err := validate(pool); err != nil {
		return nil, err
	}
	return newSearch(opts).rank(pool), nil
}

func validate(pool []model.Participant) error {
	if len(pool) != model.PartySize {
		return fmt.Errorf("%w: have %d", ErrNeedTenPlayers, len(pool))
	}
	seen := make(map[string]struct{}, len(pool))
	for _, p := range pool {
		if _, dup := seen[p.ID]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicatePlayer, p.ID)
		}
		seen[p.ID] = struct{}{}
	}
	return nil
}

func (s *search) rank(pool []model.Participant) []model.Split {
	splits := make([]model.Split, 0, binomial(len(pool), model.TeamSize))
	combinations(len(pool), model.TeamSize, func(idx []int) {
		a := make([]model.Participant, 0, model.TeamSize)
		b := make([]model.Participant, 0, len(pool)-model.TeamSize)
		next := 0
		for i, p := range pool {
			if next < len(idx) && idx[next] == i {
				a = append(a, p)
				next++
				continue
			}
			b = append(b, p)
		}
		splits = append(splits, model.Split{A: a, B: b, Unfairness: s.evaluator.Unfairness(a, b)})
	})
	slices.SortStableFunc(splits, func(x, y model.Split) int {
		return cmp.Compare(x.Unfairness, y.Unfairness)
	})
	return splits
}

// Generate runs a search and returns a fresh candidate pool positioned on its
// first candidate.
func Generate(pool []model.Participant, opts ...Option) (*CandidatePool, error) {
	if err := validate(pool); err != nil {
		return nil, err
	}
	s := newSearch(opts)
	ranked := s.rank(pool)
	kept := slices.Clone(ranked[:min(s.keep, len(ranked))])
	s.shuffle(len(kept), func(i, j int) { kept[i], kept[j] = kept[j], kept[i] })
	return &CandidatePool{candidates: kept}, nil
}

// combinations calls fn with every k-subset of 0..n-1 in lexicographic
// order. The slice passed to fn is reused between calls.
func combinations(n, k int, fn func(idx []int)) {
	if k > n || k <= 0 {
		return
	}
	idx := make([]int, k)
	for i := range idx {
		idx[i] = i
	}
	for {
		fn(idx)
		i := k - 1
		for i >= 0 && idx[i] == n-k+i {
			i--
		}
		if i < 0 {
			return
		}
		idx[i]++
		for j := i + 1; j < k; j++ {
			idx[j] = idx[j-1] + 1
		}
	}
}

func binomial(n, k int) int {
	if k < 0 || k > n {
		return 0
	}
	r := 1
	for i := 1; i <= k; i++ {
		r = r * (n - k + i) / i
	}
	return r
}
