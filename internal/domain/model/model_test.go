package model_test

import (
	"errors"
	"testing"

	"github.com/okian/teampicker/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func group(ids ...string) []model.Participant {
	out := make([]model.Participant, len(ids))
	for i, id := range ids {
		out[i] = model.Participant{ID: id, Rating: 100 * (i + 1)}
	}
	return out
}

func TestSplit(t *testing.T) {
	Convey("Given two splits with the same sides swapped", t, func() {
		s1 := model.Split{A: group("a", "b", "c"), B: group("d", "e", "f")}
		s2 := model.Split{A: group("f", "e", "d"), B: group("c", "a", "b")}

		Convey("Then their keys match", func() {
			So(s1.Key(), ShouldEqual, s2.Key())
			So(s1.Key(), ShouldEqual, "a,b,c|d,e,f")
		})

		Convey("And Sum and IDs read the groups", func() {
			So(model.Sum(s1.A), ShouldEqual, 600)
			So(model.IDs(s1.B), ShouldResemble, []string{"d", "e", "f"})
		})
	})
}

func TestMatch(t *testing.T) {
	Convey("Given a match", t, func() {
		m := model.Match{Team1: model.Team{"a"}, Team2: model.Team{"b"}, InProgress: true}
		So(m.Has("a"), ShouldBeTrue)
		So(m.Has("b"), ShouldBeTrue)
		So(m.Has("c"), ShouldBeFalse)
	})
}

func TestParseOutcome(t *testing.T) {
	Convey("Given result tokens", t, func() {
		cases := map[string]model.Outcome{
			"0": model.OutcomeDraw, "draw": model.OutcomeDraw,
			"1": model.OutcomeTeam1, " Team1 ": model.OutcomeTeam1,
			"2": model.OutcomeTeam2, "TEAM2": model.OutcomeTeam2,
		}
		for token, want := range cases {
			got, err := model.ParseOutcome(token)
			So(err, ShouldBeNil)
			So(got, ShouldEqual, want)
			So(got.Valid(), ShouldBeTrue)
		}

		Convey("Unknown tokens are rejected", func() {
			for _, token := range []string{"", "3", "red", "-1"} {
				_, err := model.ParseOutcome(token)
				So(errors.Is(err, model.ErrInvalidOutcome), ShouldBeTrue)
			}
			So(model.Outcome(7).Valid(), ShouldBeFalse)
			So(model.Outcome(7).String(), ShouldEqual, "outcome(7)")
			So(model.OutcomeTeam2.String(), ShouldEqual, "team2")
		})
	})
}
