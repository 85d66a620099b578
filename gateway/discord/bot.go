package discord

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/goliatone/go-gamerdb/pkg/types"
	"github.com/goliatone/go-gamerdb/service"
)

// requestTimeout bounds the storage work done for one chat event.
const requestTimeout = 10 * time.Second

// manageGuildPermission is the Manage Server bit.
const manageGuildPermission int64 = 1 << 5

const intents = discordgo.IntentsGuilds |
	discordgo.IntentsGuildMessages |
	discordgo.IntentsGuildMembers |
	discordgo.IntentsDirectMessages |
	discordgo.IntentMessageContent

var (
	// ErrServiceRequired indicates the bot was built without a service.
	ErrServiceRequired = errors.New("discord: service required")
	// ErrTokenRequired indicates the bot was built without a token.
	ErrTokenRequired = errors.New("discord: token required")
)

// Config wires the gateway.
type Config struct {
	Service       *service.Service
	Token         string
	ApplicationID string
	// DevGuildID registers slash commands on one guild, which applies
	// instantly, instead of globally.
	DevGuildID    string
	OwnerID       string
	Permissions   int64
	SweepInterval time.Duration
	Logger        types.Logger
}

// Bot connects the service to a Discord session.
type Bot struct {
	session  *discordgo.Session
	svc      *service.Service
	cfg      Config
	logger   types.Logger
	commands *registry

	mu     sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

// New builds a bot. The session is not opened until Start.
func New(cfg Config) (*Bot, error) {
	if cfg.Service == nil {
		return nil, ErrServiceRequired
	}
	if cfg.Token == "" {
		return nil, ErrTokenRequired
	}
	session, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		return nil, err
	}
	session.Identify.Intents = intents
	logger := cfg.Logger
	if logger == nil {
		logger = cfg.Service.Logger()
	}
	b := &Bot{
		session: session,
		svc:     cfg.Service,
		cfg:     cfg,
		logger:  logger,
		ctx:     context.Background(),
	}
	b.commands = b.buildRegistry()
	return b, nil
}

// Session exposes the underlying discordgo session.
func (b *Bot) Session() *discordgo.Session {
	return b.session
}

// Start registers handlers, opens the gateway connection, publishes the
// slash commands and starts the flow sweeper.
func (b *Bot) Start(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.cancel != nil {
		return nil
	}
	if !b.svc.Ready() {
		return types.ErrServiceNotReady
	}

	b.session.AddHandler(b.onReady)
	b.session.AddHandler(b.onInteraction)
	b.session.AddHandler(b.onMessageCreate)

	if err := b.session.Open(); err != nil {
		return err
	}
	if err := b.registerCommands(); err != nil {
		_ = b.session.Close()
		return err
	}

	runCtx, cancel := context.WithCancel(ctx)
	b.ctx = runCtx
	b.cancel = cancel
	b.done = make(chan struct{})
	go func() {
		defer close(b.done)
		b.svc.Flows().Run(runCtx, b.cfg.SweepInterval)
	}()
	return nil
}

// Run starts the bot and blocks until ctx is done.
func (b *Bot) Run(ctx context.Context) error {
	if err := b.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	return b.Close()
}

// Close stops the sweeper and closes the session.
func (b *Bot) Close() error {
	b.mu.Lock()
	cancel, done := b.cancel, b.done
	b.cancel = nil
	b.mu.Unlock()
	if cancel == nil {
		return nil
	}
	cancel()
	<-done
	return b.session.Close()
}

func (b *Bot) applicationID() string {
	if b.cfg.ApplicationID != "" {
		return b.cfg.ApplicationID
	}
	if b.session.State != nil && b.session.State.User != nil {
		return b.session.State.User.ID
	}
	return ""
}

func (b *Bot) registerCommands() error {
	defs := b.commands.applicationCommands()
	_, err := b.session.ApplicationCommandBulkOverwrite(b.applicationID(), b.cfg.DevGuildID, defs)
	if err != nil {
		b.logger.Error("discord: slash command registration failed", err, "guild_id", b.cfg.DevGuildID)
		return err
	}
	b.logger.Info("discord: slash commands registered", "count", len(defs), "guild_id", b.cfg.DevGuildID)
	return nil
}

func (b *Bot) onReady(_ *discordgo.Session, r *discordgo.Ready) {
	b.logger.Info("discord: connected",
		"user", r.User.Username,
		"user_id", r.User.ID,
		"guilds", len(r.Guilds),
		"invite", InviteLink(b.applicationID(), b.cfg.Permissions))
}

// requestContext derives a bounded context for one event.
func (b *Bot) requestContext() (context.Context, context.CancelFunc) {
	b.mu.Lock()
	parent := b.ctx
	b.mu.Unlock()
	return context.WithTimeout(parent, requestTimeout)
}

func (b *Bot) isOwner(userID string) bool {
	return b.cfg.OwnerID != "" && userID == b.cfg.OwnerID
}

// memberFilter keeps members that still belong to the guild.
func (b *Bot) memberFilter(guildID string) func(int64) bool {
	if guildID == "" {
		return nil
	}
	return func(memberID int64) bool {
		id := formatSnowflake(memberID)
		if _, err := b.session.State.Member(guildID, id); err == nil {
			return true
		}
		_, err := b.session.GuildMember(guildID, id)
		return err == nil
	}
}
