// Package service is the facade the transports talk to. It owns the room
// store and routes every room command through the sharded dispatcher.
package service

import (
	"context"
	"errors"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/samber/lo"

	"github.com/okian/teampicker/internal/adapters/mq/worker"
	"github.com/okian/teampicker/internal/adapters/repository"
	"github.com/okian/teampicker/internal/domain/dedupe"
	"github.com/okian/teampicker/internal/domain/model"
	"github.com/okian/teampicker/internal/domain/rating"
	"github.com/okian/teampicker/internal/domain/room"
	"github.com/okian/teampicker/internal/domain/teams"
	"github.com/okian/teampicker/internal/domain/types"
	"github.com/okian/teampicker/pkg/logger"
	"github.com/okian/teampicker/pkg/metrics"
)

const (
	defaultQueueSize      = 256
	defaultDedupeSize     = 10000
	defaultCommandTimeout = 5 * time.Second
	shutdownTimeout       = 10 * time.Second
)

// Service implements every room command.
type Service struct {
	mu sync.RWMutex

	store      repository.Store
	deduper    dedupe.Deduper
	dispatcher *worker.Dispatcher

	shardCount     int
	queueSize      int
	dedupeSize     int
	commandTimeout time.Duration
	tiers          rating.Tiers
	searchOpts     []teams.Option

	started bool
	closer  func() error

	logger logger.Logger
}

// New constructs a Service. Call Start before use.
func New(opts ...Option) *Service {
	s := &Service{
		shardCount:     runtime.NumCPU(),
		queueSize:      defaultQueueSize,
		dedupeSize:     defaultDedupeSize,
		commandTimeout: defaultCommandTimeout,
		tiers:          rating.DefaultTiers(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start builds the store, the deduper and the dispatcher.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	if err := s.tiers.Validate(); err != nil {
		return err
	}

	store := repository.NewMemoryStore(ctx, repository.WithSearchOptions(s.searchOpts...))
	s.store = store
	s.closer = store.Close
	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	s.dispatcher = worker.NewDispatcher(
		worker.WithShards(s.shardCount),
		worker.WithQueueSize(s.queueSize),
		worker.WithLogger(s.logger.Named("dispatcher")),
	)
	s.dispatcher.Start(context.WithoutCancel(ctx))

	s.started = true
	s.logger.Info(ctx, "team picker service started",
		logger.Int("shards", s.shardCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
		logger.Int("tiers", len(s.tiers)),
	)
	return nil
}

// Stop drains the dispatcher and releases the store.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := s.dispatcher.Shutdown(ctx); err != nil {
		s.logger.Warn(ctx, "dispatcher shutdown", logger.Error(err))
	}
	if s.closer != nil {
		_ = s.closer()
	}
	s.started = false
	s.logger.Info(ctx, "team picker service stopped")
}

// exec runs fn against the room on its shard. Only create stores a new room;
// other commands on an unknown room see an empty one that is dropped after.
func (s *Service) exec(ctx context.Context, roomID, op string, create bool, fn func(r *room.Room) error) error {
	s.mu.RLock()
	started := s.started
	s.mu.RUnlock()
	if !started {
		return ErrNotStarted
	}
	if strings.TrimSpace(roomID) == "" {
		return room.NewError(op, room.KindValidation, ErrEmptyRoomID)
	}

	ctx, cancel := context.WithTimeout(ctx, s.commandTimeout)
	defer cancel()

	start := time.Now()
	err := s.dispatcher.Submit(ctx, roomID, op, func(ctx context.Context) error {
		r, err := s.roomFor(ctx, roomID, create)
		if err != nil {
			return err
		}
		ferr := fn(r)
		s.store.RecordSize(ctx, roomID, r.Size())
		return ferr
	})
	metrics.RecordCommand(op, resultLabel(err), float64(time.Since(start).Microseconds())/1000)

	l := s.logger.With(logger.Room(roomID), logger.String("command", op))
	switch room.KindOf(err) {
	case 0:
		if err != nil {
			l.Error(ctx, "command failed", logger.Error(err))
		} else {
			l.Debug(ctx, "command done")
		}
	default:
		l.Debug(ctx, "command rejected", logger.Error(err))
	}
	return err
}

func (s *Service) roomFor(ctx context.Context, roomID string, create bool) (*room.Room, error) {
	if create {
		return s.store.GetOrCreate(ctx, roomID), nil
	}
	r, err := s.store.Lookup(ctx, roomID)
	if errors.Is(err, repository.ErrNotFound) {
		return room.New(roomID), nil
	}
	return r, err
}

func resultLabel(err error) string {
	if err == nil {
		return "ok"
	}
	if k := room.KindOf(err); k != 0 {
		return k.String()
	}
	return "error"
}

// Join adds a player at the rating of the named tier.
func (s *Service) Join(ctx context.Context, roomID, playerID, tier string) (types.Player, error) {
	r, err := s.tiers.Resolve(tier)
	if err != nil {
		return types.Player{}, room.NewError("join", room.KindValidation, err)
	}
	return s.JoinRated(ctx, roomID, playerID, r)
}

// JoinRated adds a player with an explicit rating.
func (s *Service) JoinRated(ctx context.Context, roomID, playerID string, value int) (types.Player, error) {
	const op = "join"
	if strings.TrimSpace(playerID) == "" {
		return types.Player{}, room.NewError(op, room.KindValidation, ErrEmptyPlayer)
	}
	if value <= 0 {
		return types.Player{}, room.NewError(op, room.KindValidation, ErrBadRating)
	}

	var out types.Player
	err := s.exec(ctx, roomID, op, true, func(r *room.Room) error {
		if err := r.Join(playerID, value); err != nil {
			return err
		}
		out = types.PlayerOf(model.Participant{ID: playerID, Rating: value})
		out.Position = r.Size()
		return nil
	})
	if err == nil {
		s.logger.Info(ctx, "player joined", logger.Room(roomID),
			logger.String("player", playerID), logger.Int("rating", value))
	}
	return out, err
}

// Leave removes the caller.
func (s *Service) Leave(ctx context.Context, roomID, playerID string) error {
	return s.exec(ctx, roomID, "leave", false, func(r *room.Room) error {
		return r.Leave(playerID)
	})
}

// Kick removes another player.
func (s *Service) Kick(ctx context.Context, roomID, playerID string) error {
	return s.exec(ctx, roomID, "kick", false, func(r *room.Room) error {
		return r.Kick(playerID)
	})
}

// Reset clears the room and releases it from the store. The next command
// for the room starts from an empty one.
func (s *Service) Reset(ctx context.Context, roomID string) error {
	err := s.exec(ctx, roomID, "reset", false, func(r *room.Room) error {
		r.Reset()
		s.store.Delete(ctx, roomID)
		return nil
	})
	if err == nil {
		s.logger.Info(ctx, "room reset", logger.Room(roomID))
	}
	return err
}

// Players returns the pool in join order.
func (s *Service) Players(ctx context.Context, roomID string) (types.Roster, error) {
	var out types.Roster
	err := s.exec(ctx, roomID, "players", false, func(r *room.Room) error {
		out = types.Roster{Room: roomID, Players: types.Players(r.Players()), Capacity: model.PartySize}
		return nil
	})
	return out, err
}

// MakeTeams searches the pool and shows the first candidate.
func (s *Service) MakeTeams(ctx context.Context, roomID string) (types.Candidate, error) {
	var out types.Candidate
	err := s.exec(ctx, roomID, "maketeams", false, func(r *room.Room) error {
		start := time.Now()
		split, err := r.Generate()
		if err != nil {
			return err
		}
		all := r.Candidates().All()
		best := lo.MinBy(all, func(a, b model.Split) bool { return a.Unfairness < b.Unfairness })
		worst := lo.MaxBy(all, func(a, b model.Split) bool { return a.Unfairness > b.Unfairness })
		metrics.RecordSearch(float64(time.Since(start).Microseconds())/1000, best.Unfairness, worst.Unfairness)

		out = types.CandidateOf(split, 0, len(all))
		return nil
	})
	return out, err
}

// NextTeams shows the following candidate.
func (s *Service) NextTeams(ctx context.Context, roomID string) (types.Candidate, error) {
	var out types.Candidate
	err := s.exec(ctx, roomID, "newteams", false, func(r *room.Room) error {
		split, err := r.Next()
		if err != nil {
			return err
		}
		out = types.CandidateOf(split, r.Candidates().Cursor(), r.Candidates().Len())
		return nil
	})
	return out, err
}

// CurrentTeams returns the displayed candidate.
func (s *Service) CurrentTeams(ctx context.Context, roomID string) (types.Candidate, error) {
	var out types.Candidate
	err := s.exec(ctx, roomID, "current", false, func(r *room.Room) error {
		split, err := r.Current()
		if err != nil {
			return err
		}
		out = types.CandidateOf(split, r.Candidates().Cursor(), r.Candidates().Len())
		return nil
	})
	return out, err
}

// Choose commits the displayed candidate as the match.
func (s *Service) Choose(ctx context.Context, roomID string) (types.Match, error) {
	var out types.Match
	err := s.exec(ctx, roomID, "choose", false, func(r *room.Room) error {
		m, err := r.Commit()
		if err != nil {
			return err
		}
		out = types.MatchOf(m)
		return nil
	})
	if err == nil {
		metrics.RecordMatchCommitted()
		s.logger.Info(ctx, "match committed", logger.Room(roomID),
			logger.Any("team1", out.Team1), logger.Any("team2", out.Team2))
	}
	return out, err
}

// Winner reports the result of the active match. token is 0 (draw), 1 or 2.
func (s *Service) Winner(ctx context.Context, roomID, token string) (types.Result, error) {
	const op = "winner"
	outcome, err := model.ParseOutcome(token)
	if err != nil {
		return types.Result{}, room.NewError(op, room.KindValidation, err)
	}

	var out types.Result
	err = s.exec(ctx, roomID, op, false, func(r *room.Room) error {
		n, err := r.Report(outcome)
		if err != nil {
			return err
		}
		out = types.Result{Outcome: outcome.String(), Adjusted: n}
		return nil
	})
	if err == nil {
		metrics.RecordResult(out.Outcome)
		metrics.RecordRatingAdjustments(out.Adjusted)
		s.logger.Info(ctx, "match result", logger.Room(roomID),
			logger.String("outcome", out.Outcome), logger.Int("adjusted", out.Adjusted))
	}
	return out, err
}

// Bump raises a player's rating by delta, or by the rating step when delta
// is zero.
func (s *Service) Bump(ctx context.Context, roomID, playerID string, delta int) (types.Player, error) {
	if delta == 0 {
		delta = rating.Step
	}
	var out types.Player
	err := s.exec(ctx, roomID, "bump", false, func(r *room.Room) error {
		v, err := r.Boost(playerID, delta)
		if err != nil {
			return err
		}
		out = types.Player{ID: playerID, Rating: v}
		return nil
	})
	if err == nil {
		metrics.RecordRatingAdjustments(1)
	}
	return out, err
}

// Match returns the last committed match.
func (s *Service) Match(ctx context.Context, roomID string) (types.Match, error) {
	var out types.Match
	err := s.exec(ctx, roomID, "match", false, func(r *room.Room) error {
		out = types.MatchOf(r.Match())
		return nil
	})
	return out, err
}

// Rooms lists the ids of the rooms held in memory.
func (s *Service) Rooms(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, ErrNotStarted
	}
	return s.store.IDs(ctx), nil
}

// Tiers lists the skill tiers from weakest to strongest.
func (s *Service) Tiers() []types.Tier {
	return lo.Map(s.tiers.Names(), func(name string, _ int) types.Tier {
		return types.Tier{Name: name, Rating: s.tiers[name]}
	})
}

// SeenAndRecord reports whether a transport input id was already handled and
// records it if not.
func (s *Service) SeenAndRecord(ctx context.Context, source, id string) bool {
	s.mu.RLock()
	d := s.deduper
	s.mu.RUnlock()
	if d == nil {
		return false
	}
	seen := d.SeenAndRecord(ctx, source+":"+id)
	if seen {
		metrics.RecordDuplicateInput(source)
	}
	return seen
}

// Unrecord forgets an input id so it can be retried.
func (s *Service) Unrecord(ctx context.Context, source, id string) {
	s.mu.RLock()
	d := s.deduper
	s.mu.RUnlock()
	if d != nil {
		d.Unrecord(ctx, source+":"+id)
	}
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":    s.started,
		"shardCount": s.shardCount,
		"queueSize":  s.queueSize,
		"dedupeSize": s.dedupeSize,
	}
	if s.started {
		pending := s.dispatcher.Pending(ctx)
		stats["rooms"] = s.store.Count(ctx)
		stats["participants"] = s.store.Participants(ctx)
		stats["pending"] = lo.Sum(pending)
		stats["dedupeEntries"] = s.deduper.Size()
	}
	return stats
}
