package discord

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/bwmarrin/discordgo"

	"github.com/okian/teampicker/pkg/logger"
)

const dedupeSource = "discord"

// ErrNoToken is returned when the bot is started without a token.
var ErrNoToken = errors.New("discord token is empty")

// Deduper drops redelivered gateway messages.
type Deduper interface {
	SeenAndRecord(ctx context.Context, source, id string) bool
}

// sender is the part of a discordgo session used to reply.
type sender interface {
	ChannelMessageSend(channelID, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Bot connects the chat commands to a Discord gateway session.
type Bot struct {
	session  *discordgo.Session
	commands *Commands
	deduper  Deduper
	logger   logger.Logger

	mu     sync.Mutex
	ctx    context.Context //nolint:containedctx // base context for gateway callbacks
	remove func()
}

// Option configures a Bot.
type Option func(*Bot)

// WithLogger sets a custom logger for the bot.
func WithLogger(l logger.Logger) Option {
	return func(b *Bot) {
		if l != nil {
			b.logger = l
		}
	}
}

// WithDeduper drops messages whose id was already handled.
func WithDeduper(d Deduper) Option {
	return func(b *Bot) {
		b.deduper = d
	}
}

// NewBot creates a bot session. The gateway is not opened until Start.
func NewBot(token string, commands *Commands, opts ...Option) (*Bot, error) {
	if token == "" {
		return nil, ErrNoToken
	}
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuildMessages |
		discordgo.IntentsDirectMessages |
		discordgo.IntentMessageContent

	b := &Bot{
		session:  session,
		commands: commands,
		logger:   logger.Nop(),
		ctx:      context.Background(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

// Start opens the gateway and begins answering commands.
func (b *Bot) Start(ctx context.Context) error {
	b.mu.Lock()
	b.ctx = ctx
	b.remove = b.session.AddHandler(b.onMessageCreate)
	b.mu.Unlock()

	if err := b.session.Open(); err != nil {
		return fmt.Errorf("discord open: %w", err)
	}
	b.logger.Info(ctx, "discord bot connected")
	return nil
}

// Stop closes the gateway.
func (b *Bot) Stop() error {
	b.mu.Lock()
	if b.remove != nil {
		b.remove()
		b.remove = nil
	}
	b.mu.Unlock()
	return b.session.Close()
}

func (b *Bot) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	selfID := ""
	if s.State != nil && s.State.User != nil {
		selfID = s.State.User.ID
	}
	b.mu.Lock()
	ctx := b.ctx
	b.mu.Unlock()
	b.handleMessage(ctx, s, selfID, m.Message)
}

// handleMessage answers one message. Rooms are guilds; direct messages get a
// room per channel.
func (b *Bot) handleMessage(ctx context.Context, out sender, selfID string, m *discordgo.Message) {
	if m == nil || m.Author == nil || m.Author.Bot || m.Author.ID == selfID {
		return
	}
	if b.deduper != nil && b.deduper.SeenAndRecord(ctx, dedupeSource, m.ID) {
		return
	}

	roomID := m.GuildID
	if roomID == "" {
		roomID = "dm:" + m.ChannelID
	}
	reply, ok := b.commands.Handle(ctx, roomID, m.Author.Username, m.Content)
	if !ok {
		return
	}
	b.logger.Debug(ctx, "chat command", logger.Room(roomID),
		logger.String("author", m.Author.Username), logger.String("content", m.Content))

	if _, err := out.ChannelMessageSend(m.ChannelID, reply); err != nil {
		b.logger.Warn(ctx, "discord reply failed", logger.Room(roomID), logger.Error(err))
	}
}
