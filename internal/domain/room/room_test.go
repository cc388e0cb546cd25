package room

import (
	"errors"
	"fmt"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/teampicker/internal/domain/model"
	"github.com/okian/teampicker/internal/domain/rating"
	"github.com/okian/teampicker/internal/domain/teams"
)

func fill(r *Room, ratings ...int) {
	for i, v := range ratings {
		So(r.Join(fmt.Sprintf("p%d", i), v), ShouldBeNil)
	}
}

func tenRatings() []int {
	return []int{1110, 1080, 1050, 1020, 990, 960, 860, 830, 800, 710}
}

func TestJoinLeave(t *testing.T) {
	Convey("Given an empty room", t, func() {
		r := New("guild-1")

		Convey("When ten players join", func() {
			fill(r, tenRatings()...)

			Convey("Then join order is kept", func() {
				So(r.Size(), ShouldEqual, 10)
				So(r.Players()[0].ID, ShouldEqual, "p0")
				So(r.Players()[9].Rating, ShouldEqual, 710)
			})

			Convey("And an eleventh is refused", func() {
				err := r.Join("late", 900)
				So(errors.Is(err, ErrPoolFull), ShouldBeTrue)
				So(KindOf(err), ShouldEqual, KindValidation)
			})
		})

		Convey("When the same player joins twice", func() {
			So(r.Join("alice", 960), ShouldBeNil)
			err := r.Join("alice", 1110)

			Convey("Then the second join fails and the rating is unchanged", func() {
				So(errors.Is(err, ErrAlreadyJoined), ShouldBeTrue)
				p, ok := r.Player("alice")
				So(ok, ShouldBeTrue)
				So(p.Rating, ShouldEqual, 960)
			})
		})

		Convey("When a player leaves", func() {
			So(r.Join("alice", 960), ShouldBeNil)
			So(r.Join("bob", 800), ShouldBeNil)
			So(r.Leave("alice"), ShouldBeNil)

			Convey("Then the rest keep their order", func() {
				So(model.IDs(r.Players()), ShouldResemble, []string{"bob"})
			})

			Convey("And leaving again is not found", func() {
				err := r.Leave("alice")
				So(errors.Is(err, ErrNotInPool), ShouldBeTrue)
				So(KindOf(err), ShouldEqual, KindNotFound)
			})

			Convey("And kicking a stranger is not found", func() {
				So(KindOf(r.Kick("mallory")), ShouldEqual, KindNotFound)
				So(r.Kick("bob"), ShouldBeNil)
				So(r.Size(), ShouldEqual, 0)
			})
		})
	})
}

func TestGenerateAndWalk(t *testing.T) {
	Convey("Given a room", t, func() {
		r := New("guild-1", teams.WithoutShuffle())

		Convey("When generating with too few players", func() {
			fill(r, 1000, 1000, 1000)
			_, err := r.Generate()

			Convey("Then it is a validation error", func() {
				So(errors.Is(err, teams.ErrNeedTenPlayers), ShouldBeTrue)
				So(KindOf(err), ShouldEqual, KindValidation)
			})
		})

		Convey("When walking before any generate", func() {
			_, nextErr := r.Next()
			_, commitErr := r.Commit()
			_, curErr := r.Current()

			Convey("Then everything reports no candidates", func() {
				So(errors.Is(nextErr, ErrNoCandidates), ShouldBeTrue)
				So(KindOf(nextErr), ShouldEqual, KindSequence)
				So(errors.Is(commitErr, ErrNoCandidates), ShouldBeTrue)
				So(errors.Is(curErr, ErrNoCandidates), ShouldBeTrue)
			})
		})

		Convey("When a full pool generates", func() {
			fill(r, tenRatings()...)
			first, err := r.Generate()
			So(err, ShouldBeNil)

			Convey("Then the first candidate is current", func() {
				cur, err := r.Current()
				So(err, ShouldBeNil)
				So(cur.Key(), ShouldEqual, first.Key())
				So(r.Candidates().Len(), ShouldEqual, teams.KeepTop)
			})

			Convey("And walking off the end is a boundary", func() {
				for i := 1; i < teams.KeepTop; i++ {
					_, err := r.Next()
					So(err, ShouldBeNil)
				}
				_, err := r.Next()
				So(KindOf(err), ShouldEqual, KindBoundary)
				So(errors.Is(err, teams.ErrNoMoreCandidates), ShouldBeTrue)

				_, err = r.Commit()
				So(errors.Is(err, teams.ErrCursorExhausted), ShouldBeTrue)
				So(r.Match().InProgress, ShouldBeFalse)
			})

			Convey("And committing locks in the current split", func() {
				m, err := r.Commit()
				So(err, ShouldBeNil)
				So(m.InProgress, ShouldBeTrue)
				So([]string(m.Team1), ShouldResemble, model.IDs(first.A))
				So(r.Match().InProgress, ShouldBeTrue)
			})

			Convey("And regenerating replaces the candidates", func() {
				_, _ = r.Next()
				_, err := r.Generate()
				So(err, ShouldBeNil)
				So(r.Candidates().Cursor(), ShouldEqual, 0)
			})
		})
	})
}

func TestReport(t *testing.T) {
	Convey("Given a committed match", t, func() {
		r := New("guild-1", teams.WithoutShuffle())
		fill(r, tenRatings()...)
		_, err := r.Generate()
		So(err, ShouldBeNil)
		m, err := r.Commit()
		So(err, ShouldBeNil)

		winner := m.Team1[0]
		loser := m.Team2[0]
		wBefore, _ := r.Player(winner)
		lBefore, _ := r.Player(loser)

		Convey("When team 1 wins", func() {
			n, err := r.Report(model.OutcomeTeam1)
			So(err, ShouldBeNil)

			Convey("Then ten ratings move by the step", func() {
				So(n, ShouldEqual, 10)
				w, _ := r.Player(winner)
				l, _ := r.Player(loser)
				So(w.Rating, ShouldEqual, wBefore.Rating+rating.Step)
				So(l.Rating, ShouldEqual, lBefore.Rating-rating.Step)
				So(r.Match().InProgress, ShouldBeFalse)
			})

			Convey("And a second report has no active match", func() {
				_, err := r.Report(model.OutcomeTeam2)
				So(errors.Is(err, ErrNoActiveMatch), ShouldBeTrue)
				So(KindOf(err), ShouldEqual, KindSequence)
			})
		})

		Convey("When the outcome is invalid", func() {
			_, err := r.Report(model.Outcome(7))

			Convey("Then nothing changes and the match stays live", func() {
				So(KindOf(err), ShouldEqual, KindValidation)
				So(errors.Is(err, model.ErrInvalidOutcome), ShouldBeTrue)
				So(r.Match().InProgress, ShouldBeTrue)
				w, _ := r.Player(winner)
				So(w.Rating, ShouldEqual, wBefore.Rating)
			})
		})

		Convey("When a winner left before the report", func() {
			So(r.Leave(winner), ShouldBeNil)
			n, err := r.Report(model.OutcomeTeam1)

			Convey("Then the others are still adjusted", func() {
				So(err, ShouldBeNil)
				So(n, ShouldEqual, 9)
			})
		})

		Convey("When the room is reset", func() {
			r.Reset()

			Convey("Then everything is cleared", func() {
				So(r.Size(), ShouldEqual, 0)
				So(r.Candidates(), ShouldBeNil)
				So(r.Match().InProgress, ShouldBeFalse)
				_, err := r.Report(model.OutcomeTeam1)
				So(errors.Is(err, ErrNoActiveMatch), ShouldBeTrue)
			})
		})
	})
}

func TestBoost(t *testing.T) {
	Convey("Given a room with one player", t, func() {
		r := New("guild-1")
		So(r.Join("alice", 960), ShouldBeNil)

		Convey("When boosting", func() {
			v, err := r.Boost("alice", rating.Step)
			So(err, ShouldBeNil)
			So(v, ShouldEqual, 968)
		})

		Convey("When boosting a stranger", func() {
			_, err := r.Boost("bob", rating.Step)
			So(KindOf(err), ShouldEqual, KindNotFound)
		})
	})
}

func TestErrorShape(t *testing.T) {
	Convey("Room errors carry their op", t, func() {
		err := NewError("join", KindValidation, ErrPoolFull)
		So(err.Error(), ShouldEqual, "join: pool is full")
		var re *Error
		So(errors.As(err, &re), ShouldBeTrue)
		So(re.Kind.String(), ShouldEqual, "validation")
		So(KindOf(errors.New("plain")), ShouldEqual, Kind(0))
		So(Kind(0).String(), ShouldEqual, "unknown")
	})
}
