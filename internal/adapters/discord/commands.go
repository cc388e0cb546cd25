// Package discord runs the room commands as a chat bot.
package discord

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/samber/lo"

	"github.com/okian/teampicker/internal/domain/model"
	"github.com/okian/teampicker/internal/domain/rating"
	"github.com/okian/teampicker/internal/domain/room"
	"github.com/okian/teampicker/internal/domain/teams"
	"github.com/okian/teampicker/internal/domain/types"
)

// Rooms is the slice of the service the chat commands use.
type Rooms interface {
	Join(ctx context.Context, roomID, playerID, tier string) (types.Player, error)
	Leave(ctx context.Context, roomID, playerID string) error
	Kick(ctx context.Context, roomID, playerID string) error
	Reset(ctx context.Context, roomID string) error
	Players(ctx context.Context, roomID string) (types.Roster, error)
	MakeTeams(ctx context.Context, roomID string) (types.Candidate, error)
	NextTeams(ctx context.Context, roomID string) (types.Candidate, error)
	Choose(ctx context.Context, roomID string) (types.Match, error)
	Winner(ctx context.Context, roomID, token string) (types.Result, error)
	Bump(ctx context.Context, roomID, playerID string, delta int) (types.Player, error)
	Tiers() []types.Tier
}

// Reply texts.
const (
	msgInvalidTier   = "Please give a valid rank!"
	msgPoolFull      = "There are already 10 people in the game"
	msgReset         = "Current players has been reset"
	msgNoPlayers     = "No players added"
	msgNeedTen       = "Please get 10 players!"
	msgNoTeams       = "No teams yet - use %smaketeams first"
	msgNoMoreTeams   = "That was the last option - use %smaketeams for a fresh set"
	msgHaveFun       = "Have fun!"
	msgNoGame        = "There is no game right now - get some friends and make teams"
	msgInvalidTeam   = "Not a valid team!"
	msgGGWP          = "GGWP! Want to play another?"
	msgLeft          = "You have left the party. We hope you had fun!"
	msgNotInParty    = "%s is not in the party."
	msgSomethingWent = "Something went wrong, try again."
)

// Commands parses chat lines and turns them into room commands and replies.
type Commands struct {
	rooms  Rooms
	prefix string
}

// NewCommands creates a command set answering lines that start with prefix.
func NewCommands(rooms Rooms, prefix string) *Commands {
	if prefix == "" {
		prefix = "!"
	}
	return &Commands{rooms: rooms, prefix: prefix}
}

// Handle runs one chat line sent by author in roomID. ok is false when the
// line is not a command this bot knows.
func (c *Commands) Handle(ctx context.Context, roomID, author, line string) (reply string, ok bool) {
	rest, found := strings.CutPrefix(strings.TrimSpace(line), c.prefix)
	if !found {
		return "", false
	}
	fields := strings.Fields(rest)
	if len(fields) == 0 {
		return "", false
	}
	name, args := strings.ToLower(fields[0]), fields[1:]
	arg := func() string { return first(args) }

	switch name {
	case "join":
		return c.join(ctx, roomID, author, arg()), true
	case "leave":
		return c.leave(ctx, roomID, author), true
	case "kick":
		return c.kick(ctx, roomID, arg()), true
	case "reset":
		if err := c.rooms.Reset(ctx, roomID); err != nil {
			return c.failure(err), true
		}
		return msgReset, true
	case "players":
		return c.players(ctx, roomID), true
	case "maketeams":
		cand, err := c.rooms.MakeTeams(ctx, roomID)
		if err != nil {
			return c.failure(err), true
		}
		return FormatCandidate(cand), true
	case "newteams":
		cand, err := c.rooms.NextTeams(ctx, roomID)
		if err != nil {
			return c.failure(err), true
		}
		return FormatCandidate(cand), true
	case "choose":
		if _, err := c.rooms.Choose(ctx, roomID); err != nil {
			return c.failure(err), true
		}
		return msgHaveFun, true
	case "winner":
		if _, err := c.rooms.Winner(ctx, roomID, arg()); err != nil {
			return c.failure(err), true
		}
		return msgGGWP, true
	case "bump":
		p, err := c.rooms.Bump(ctx, roomID, author, rating.Step)
		if err != nil {
			return c.failure(err, author), true
		}
		return fmt.Sprintf("%s has been bumped up to %d", author, p.Rating), true
	case "tiers":
		return FormatTiers(c.rooms.Tiers()), true
	case "help":
		return c.help(), true
	}
	return "", false
}

func (c *Commands) join(ctx context.Context, roomID, author, tier string) string {
	if tier == "" {
		return msgInvalidTier
	}
	if _, err := c.rooms.Join(ctx, roomID, author, tier); err != nil {
		return c.failure(err, author)
	}
	return author + " has successfully joined!"
}

func (c *Commands) leave(ctx context.Context, roomID, author string) string {
	if err := c.rooms.Leave(ctx, roomID, author); err != nil {
		if errors.Is(err, room.ErrNotInPool) {
			return "You are not in the party."
		}
		return c.failure(err)
	}
	return msgLeft
}

func (c *Commands) kick(ctx context.Context, roomID, target string) string {
	if target == "" {
		return "Who should be kicked?"
	}
	if err := c.rooms.Kick(ctx, roomID, target); err != nil {
		return c.failure(err, target)
	}
	return target + " has been kicked. rip"
}

func (c *Commands) players(ctx context.Context, roomID string) string {
	roster, err := c.rooms.Players(ctx, roomID)
	if err != nil {
		return c.failure(err)
	}
	return FormatPlayers(roster.Players)
}

// failure turns a service error into a chat reply. who names the player the
// command was about, when there is one.
func (c *Commands) failure(err error, who ...string) string {
	name := first(who)
	switch {
	case errors.Is(err, rating.ErrUnknownTier):
		return msgInvalidTier
	case errors.Is(err, room.ErrAlreadyJoined):
		return name + " has already been added to the game!"
	case errors.Is(err, room.ErrPoolFull):
		return msgPoolFull
	case errors.Is(err, room.ErrNotInPool):
		return fmt.Sprintf(msgNotInParty, name)
	case errors.Is(err, teams.ErrNeedTenPlayers):
		return msgNeedTen
	case errors.Is(err, room.ErrNoCandidates):
		return fmt.Sprintf(msgNoTeams, c.prefix)
	case errors.Is(err, teams.ErrNoMoreCandidates), errors.Is(err, teams.ErrCursorExhausted):
		return fmt.Sprintf(msgNoMoreTeams, c.prefix)
	case errors.Is(err, room.ErrNoActiveMatch):
		return msgNoGame
	case errors.Is(err, model.ErrInvalidOutcome):
		return msgInvalidTeam
	}
	return msgSomethingWent
}

func (c *Commands) help() string {
	p := c.prefix
	lines := []string{
		p + "join <tier> - join the party at a skill tier (" + p + "tiers lists them)",
		p + "leave - leave the party",
		p + "kick <user> - remove someone else",
		p + "players - list the party",
		p + "reset - clear the party",
		p + "maketeams - find the fairest 5v5 splits",
		p + "newteams - show the next option",
		p + "choose - play the option shown",
		p + "winner <0|1|2> - report the result (0 is a draw)",
		p + "bump - raise your own rating by " + strconv.Itoa(rating.Step),
	}
	return strings.Join(lines, "\n")
}

func first(s []string) string {
	if len(s) == 0 {
		return ""
	}
	return s[0]
}

// FormatPlayers renders "1. name (rating)" lines.
func FormatPlayers(players []types.Player) string {
	if len(players) == 0 {
		return msgNoPlayers
	}
	var b strings.Builder
	for i, p := range players {
		fmt.Fprintf(&b, "%d. %s (%d)\n", i+1, p.ID, p.Rating)
	}
	return b.String()
}

// FormatCandidate renders both teams of a split.
func FormatCandidate(c types.Candidate) string {
	return "Team 1:\n" + FormatPlayers(c.Team1) + "\nTeam 2:\n" + FormatPlayers(c.Team2)
}

// FormatTiers renders the tier table one per line.
func FormatTiers(tiers []types.Tier) string {
	return strings.Join(lo.Map(tiers, func(t types.Tier, _ int) string {
		return fmt.Sprintf("%s (%d)", t.Name, t.Rating)
	}), "\n")
}
