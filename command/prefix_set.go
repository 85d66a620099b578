package command

import (
	"context"
	"strings"

	gocommand "github.com/goliatone/go-command"
	"github.com/goliatone/go-gamerdb/activity"
	"github.com/goliatone/go-gamerdb/pkg/types"
)

// PrefixCommandConfig wires dependencies for the prefix command.
type PrefixCommandConfig struct {
	Store    types.PrefixStore
	Activity types.ActivitySink
	Hooks    types.Hooks
	Clock    types.Clock
	Logger   types.Logger
}

// PrefixSetInput captures a guild prefix override.
type PrefixSetInput struct {
	GuildID int64
	Prefix  string
	ActorID int64
	Channel string
	Result  *types.GuildSetting
}

// Type implements gocommand.Message.
func (PrefixSetInput) Type() string {
	return "command.guild.prefix.set"
}

// Validate implements gocommand.Message.
func (input PrefixSetInput) Validate() error {
	switch {
	case input.GuildID == 0:
		return types.ErrGuildIDRequired
	case strings.TrimSpace(input.Prefix) == "":
		return types.ErrPrefixRequired
	default:
		return nil
	}
}

// PrefixSetCommand stores the guild prefix override.
type PrefixSetCommand struct {
	store  types.PrefixStore
	sink   types.ActivitySink
	hooks  types.Hooks
	clock  types.Clock
	logger types.Logger
}

// NewPrefixSetCommand constructs the handler.
func NewPrefixSetCommand(cfg PrefixCommandConfig) *PrefixSetCommand {
	return &PrefixSetCommand{
		store:  cfg.Store,
		sink:   cfg.Activity,
		hooks:  cfg.Hooks,
		clock:  safeClock(cfg.Clock),
		logger: safeLogger(cfg.Logger),
	}
}

var _ gocommand.Commander[PrefixSetInput] = (*PrefixSetCommand)(nil)

// Execute validates and persists the prefix.
func (c *PrefixSetCommand) Execute(ctx context.Context, input PrefixSetInput) error {
	if c.store == nil {
		return types.ErrMissingGuildSettings
	}
	if err := input.Validate(); err != nil {
		return err
	}
	saved, err := c.store.SetPrefix(ctx, input.GuildID, input.Prefix)
	if err != nil {
		return err
	}
	if input.Result != nil && saved != nil {
		*input.Result = *saved
	}

	prefix := strings.TrimSpace(input.Prefix)
	occurredAt := now(c.clock)
	record := activity.BuildRecord(input.ActorID, types.VerbPrefixUpdated, "guild", input.GuildID, map[string]any{
		"prefix": prefix,
	}, activity.WithGuild(input.GuildID), activity.WithChannel(input.Channel), activity.WithOccurredAt(occurredAt))
	recordActivity(ctx, c.sink, c.hooks, c.logger, record)
	emitPrefixHook(ctx, c.hooks, types.PrefixEvent{
		GuildID:    input.GuildID,
		Prefix:     prefix,
		ActorID:    input.ActorID,
		OccurredAt: occurredAt,
	})
	return nil
}
