package rating_test

import (
	"errors"
	"testing"

	"github.com/okian/teampicker/internal/domain/model"
	"github.com/okian/teampicker/internal/domain/rating"
	. "github.com/smartystreets/goconvey/convey"
)

func pool() map[string]*model.Participant {
	m := map[string]*model.Participant{}
	for i, id := range []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "x"} {
		m[id] = &model.Participant{ID: id, Rating: 1000 + i}
	}
	return m
}

func lookupIn(m map[string]*model.Participant) rating.Lookup {
	return func(id string) *model.Participant { return m[id] }
}

func snapshot(m map[string]*model.Participant) map[string]int {
	out := map[string]int{}
	for id, p := range m {
		out[id] = p.Rating
	}
	return out
}

func TestApplyResult(t *testing.T) {
	Convey("Given an active match of ten with one bystander", t, func() {
		players := pool()
		before := snapshot(players)
		match := &model.Match{
			Team1:      model.Team{"a", "b", "c", "d", "e"},
			Team2:      model.Team{"f", "g", "h", "i", "j"},
			InProgress: true,
		}

		Convey("When team 1 wins", func() {
			n, err := rating.ApplyResult(match, model.OutcomeTeam1, lookupIn(players))

			Convey("Then winners gain and losers lose exactly one step", func() {
				So(err, ShouldBeNil)
				So(n, ShouldEqual, 10)
				for _, id := range match.Team1 {
					So(players[id].Rating, ShouldEqual, before[id]+rating.Step)
				}
				for _, id := range match.Team2 {
					So(players[id].Rating, ShouldEqual, before[id]-rating.Step)
				}
				So(players["x"].Rating, ShouldEqual, before["x"])
				So(match.InProgress, ShouldBeFalse)
			})

			Convey("And a second report fails without changes", func() {
				after := snapshot(players)
				_, err := rating.ApplyResult(match, model.OutcomeTeam1, lookupIn(players))
				So(errors.Is(err, rating.ErrMatchNotInProgress), ShouldBeTrue)
				So(snapshot(players), ShouldResemble, after)
			})
		})

		Convey("When team 2 wins", func() {
			_, err := rating.ApplyResult(match, model.OutcomeTeam2, lookupIn(players))
			So(err, ShouldBeNil)
			So(players["a"].Rating, ShouldEqual, before["a"]-8)
			So(players["j"].Rating, ShouldEqual, before["j"]+8)
		})

		Convey("When the game is a draw", func() {
			n, err := rating.ApplyResult(match, model.OutcomeDraw, lookupIn(players))

			Convey("Then nothing moves but the match is over", func() {
				So(err, ShouldBeNil)
				So(n, ShouldEqual, 0)
				So(snapshot(players), ShouldResemble, before)
				So(match.InProgress, ShouldBeFalse)
			})
		})

		Convey("When the outcome is not recognised", func() {
			_, err := rating.ApplyResult(match, model.Outcome(9), lookupIn(players))

			Convey("Then it is rejected and the match stays live", func() {
				So(errors.Is(err, model.ErrInvalidOutcome), ShouldBeTrue)
				So(match.InProgress, ShouldBeTrue)
				So(snapshot(players), ShouldResemble, before)
			})
		})

		Convey("When a player left before the result", func() {
			delete(players, "c")
			n, err := rating.ApplyResult(match, model.OutcomeTeam1, lookupIn(players))
			So(err, ShouldBeNil)
			So(n, ShouldEqual, 9)
		})
	})

	Convey("Given no match", t, func() {
		_, err := rating.ApplyResult(nil, model.OutcomeTeam1, lookupIn(pool()))
		So(errors.Is(err, rating.ErrMatchNotInProgress), ShouldBeTrue)
	})
}

func TestBoost(t *testing.T) {
	Convey("Boost adds the delta", t, func() {
		p := &model.Participant{ID: "a", Rating: 960}
		So(rating.Boost(p, rating.Step), ShouldEqual, 968)
		So(rating.Boost(p, -3), ShouldEqual, 965)
	})
}

func TestTiers(t *testing.T) {
	Convey("Given the default tier table", t, func() {
		tiers := rating.DefaultTiers()
		So(tiers.Validate(), ShouldBeNil)

		Convey("Known tiers resolve regardless of case", func() {
			r, err := tiers.Resolve(" Gold2 ")
			So(err, ShouldBeNil)
			So(r, ShouldEqual, 990)
		})

		Convey("Unknown tiers are rejected", func() {
			_, err := tiers.Resolve("diamond1")
			So(errors.Is(err, rating.ErrUnknownTier), ShouldBeTrue)
		})

		Convey("Names come back weakest first", func() {
			names := tiers.Names()
			So(len(names), ShouldEqual, 12)
			So(names[0], ShouldEqual, "bronze1")
			So(names[11], ShouldEqual, "plat3")
		})
	})

	Convey("Given custom tables", t, func() {
		So(rating.Tiers{}.Validate(), ShouldNotBeNil)
		So(rating.Tiers{"iron": 0}.Validate(), ShouldNotBeNil)

		norm := rating.Tiers{" Iron ": 500}.Normalize()
		r, err := norm.Resolve("IRON")
		So(err, ShouldBeNil)
		So(r, ShouldEqual, 500)
	})
}
