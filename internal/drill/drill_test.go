package drill

import (
	"context"
	"io"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/teampicker/internal/adapters/http/api"
	service "github.com/okian/teampicker/internal/app"
	"github.com/okian/teampicker/internal/domain/types"
	"github.com/okian/teampicker/pkg/logger"
)

func newServer() (*service.Service, *httptest.Server) {
	svc := service.New(service.WithLogger(logger.Nop()), service.WithShardCount(4))
	So(svc.Start(context.Background()), ShouldBeNil)
	r := chi.NewRouter()
	api.NewServer(svc, svc).Register(context.Background(), r)
	return svc, httptest.NewServer(r)
}

func team(ratings ...int) []types.Player {
	out := make([]types.Player, len(ratings))
	for i, r := range ratings {
		out[i] = types.Player{Position: i + 1, ID: string(rune('a' + i)), Rating: r}
	}
	return out
}

func TestVerifyCandidate(t *testing.T) {
	Convey("Given a valid candidate", t, func() {
		t1 := team(900, 900, 900, 900, 900)
		t2 := []types.Player{{ID: "f", Rating: 900}, {ID: "g", Rating: 900}, {ID: "h", Rating: 900},
			{ID: "i", Rating: 900}, {ID: "j", Rating: 900}}
		roster := append(append([]types.Player{}, t1...), t2...)
		c := types.Candidate{
			Index: 3, Total: CandidateCount, Team1: t1, Team2: t2,
			Team1Rating: 4500, Team2Rating: 4500, WinProbability: 0.5, Unfairness: 0,
		}

		So(verifyCandidate(c, roster), ShouldBeNil)

		Convey("A lopsided split is rejected", func() {
			c.Team2 = c.Team2[:4]
			So(verifyCandidate(c, roster), ShouldNotBeNil)
		})

		Convey("A wrong total is rejected", func() {
			c.Total = 19
			So(verifyCandidate(c, roster), ShouldNotBeNil)
		})

		Convey("A repeated player is rejected", func() {
			c.Team2 = append([]types.Player{t1[0]}, t2[1:]...)
			So(verifyCandidate(c, roster), ShouldNotBeNil)
		})

		Convey("A rating sum mismatch is rejected", func() {
			c.Team1Rating = 4501
			So(verifyCandidate(c, roster), ShouldNotBeNil)
		})

		Convey("Unfairness must follow the win probability", func() {
			c.Unfairness = 0.1
			So(verifyCandidate(c, roster), ShouldNotBeNil)
		})
	})
}

func TestVerifyAdjustments(t *testing.T) {
	Convey("Given a finished match", t, func() {
		before := []types.Player{{ID: "a", Rating: 900}, {ID: "b", Rating: 950}}
		m := types.Match{Team1: []string{"a"}, Team2: []string{"b"}}

		Convey("A team1 win moves both sides by the step", func() {
			after := []types.Player{{ID: "a", Rating: 908}, {ID: "b", Rating: 942}}
			So(verifyAdjustments(before, after, m, 1, types.Result{Adjusted: PoolSize}), ShouldBeNil)
			So(verifyAdjustments(before, after, m, 2, types.Result{Adjusted: PoolSize}), ShouldNotBeNil)
		})

		Convey("A draw changes nothing", func() {
			So(verifyAdjustments(before, before, m, 0, types.Result{}), ShouldBeNil)
			So(verifyAdjustments(before, before, m, 0, types.Result{Adjusted: 1}), ShouldNotBeNil)
		})

		Convey("Unknown outcomes are rejected", func() {
			So(verifyAdjustments(before, before, m, 7, types.Result{}), ShouldNotBeNil)
		})
	})
}

func TestPlayRoom(t *testing.T) {
	Convey("Given a running service", t, func() {
		So(logger.InitWithWriter(io.Discard), ShouldBeNil)
		svc, srv := newServer()
		defer func() {
			srv.Close()
			svc.Stop()
		}()
		ctx := context.Background()
		client := newHTTPClient(srv.URL, 5*time.Second)

		Convey("A room plays through and verifies", func() {
			rep, err := playRoom(ctx, client, svc.Tiers())
			So(err, ShouldBeNil)
			So(rep.Candidates, ShouldEqual, CandidateCount)
			So(rep.Duplicates, ShouldEqual, 1)
			So(rep.Players, ShouldHaveLength, PoolSize)
			So(rep.Match.Team1, ShouldHaveLength, TeamSize)
			So(client.Requests(), ShouldBeGreaterThan, 30)
		})

		Convey("A missing service fails the health check", func() {
			dead := newHTTPClient("http://127.0.0.1:1", time.Second)
			So(checkServiceHealth(ctx, dead), ShouldNotBeNil)
		})
	})
}

func TestRun(t *testing.T) {
	Convey("Given a running service and a drill config", t, func() {
		So(logger.InitWithWriter(io.Discard), ShouldBeNil)
		svc, srv := newServer()
		defer func() {
			srv.Close()
			svc.Stop()
		}()
		out := filepath.Join(t.TempDir(), "reports", "drill.json")

		cfg := &Config{BaseURL: srv.URL, Rooms: 6, Workers: 3, Timeout: 5 * time.Second, OutputFile: out}

		Convey("Run plays every room and saves reports", func() {
			So(Run(context.Background(), cfg), ShouldBeNil)
			data, err := os.ReadFile(out)
			So(err, ShouldBeNil)
			So(string(data), ShouldContainSubstring, `"candidates": 20`)
		})
	})
}

func TestTally(t *testing.T) {
	Convey("Tally splits played and failed rooms", t, func() {
		stats := &Stats{}
		tally([]RoomReport{
			{Room: "a", Candidates: 20, Adjusted: 10, Outcome: "team1", Duplicates: 1},
			{Room: "b", Candidates: 20, Outcome: "draw", Duplicates: 1},
			{Room: "c", Err: "boom"},
		}, stats)
		So(stats.RoomsPlayed, ShouldEqual, 2)
		So(stats.RoomsFailed, ShouldEqual, 1)
		So(stats.CandidatesSeen, ShouldEqual, 40)
		So(stats.Adjustments, ShouldEqual, 10)
		So(stats.Draws, ShouldEqual, 1)
		So(stats.Duplicates, ShouldEqual, 2)
	})
}
