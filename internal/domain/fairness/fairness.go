// Package fairness scores how evenly two groups are matched.
//
// The model is the logistic rating curve: an aggregate rating gap of Scale
// points is worth 10:1 odds.
package fairness

import (
	"errors"
	"math"

	"github.com/okian/teampicker/internal/domain/model"
)

// DefaultScale is the rating gap that corresponds to 10:1 odds.
const DefaultScale = 400

// ErrEmptyGroup is returned when either side has no participants.
var ErrEmptyGroup = errors.New("group must not be empty")

// Evaluator estimates win probabilities for two groups.
type Evaluator interface {
	// WinProbability returns 1/(1+10^((ΣA-ΣB)/scale)).
	WinProbability(a, b []model.Participant) float64
	// Unfairness returns |0.5 - WinProbability(a, b)|.
	Unfairness(a, b []model.Participant) float64
}

// Logistic is the rating-curve Evaluator.
type Logistic struct {
	Scale float64
}

// Default is the evaluator used when none is configured.
var Default Evaluator = Logistic{Scale: DefaultScale}

func (l Logistic) scale() float64 {
	if l.Scale <= 0 {
		return DefaultScale
	}
	return l.Scale
}

// WinProbability computes 1/(1+10^((ΣA-ΣB)/scale)). The value for (a, b)
// and (b, a) always sums to one.
func (l Logistic) WinProbability(a, b []model.Participant) float64 {
	return l.fromGap(float64(model.Sum(a) - model.Sum(b)))
}

// Unfairness computes |0.5 - WinProbability(a, b)| from the absolute gap so
// swapping a and b yields the identical float.
func (l Logistic) Unfairness(a, b []model.Participant) float64 {
	gap := math.Abs(float64(model.Sum(a) - model.Sum(b)))
	return 0.5 - l.fromGap(gap)
}

func (l Logistic) fromGap(gap float64) float64 {
	return 1 / (1 + math.Pow(10, gap/l.scale()))
}

// Evaluate is WinProbability with the non-empty precondition checked.
func Evaluate(e Evaluator, a, b []model.Participant) (float64, error) {
	if len(a) == 0 || len(b) == 0 {
		return 0, ErrEmptyGroup
	}
	if e == nil {
		e = Default
	}
	return e.WinProbability(a, b), nil
}

// WinProbability uses the default evaluator.
func WinProbability(a, b []model.Participant) float64 {
	return Default.WinProbability(a, b)
}

// Unfairness uses the default evaluator.
func Unfairness(a, b []model.Participant) float64 {
	return Default.Unfairness(a, b)
}
