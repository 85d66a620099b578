package command

import (
	"context"
	"strings"

	gocommand "github.com/goliatone/go-command"
	featuregate "github.com/goliatone/go-featuregate/gate"
	"github.com/goliatone/go-gamerdb/activity"
	"github.com/goliatone/go-gamerdb/pkg/types"
)

// PlatformCommandConfig wires dependencies for platform catalog commands.
type PlatformCommandConfig struct {
	Catalog     types.PlatformCatalog
	Activity    types.ActivitySink
	Hooks       types.Hooks
	Clock       types.Clock
	Logger      types.Logger
	FeatureGate featuregate.FeatureGate
}

// PlatformAddInput captures a new platform.
type PlatformAddInput struct {
	Name    string
	IconRef int64
	GuildID int64
	ActorID int64
	Channel string
	Result  *types.Platform
}

// Type implements gocommand.Message.
func (PlatformAddInput) Type() string {
	return "command.platform.add"
}

// Validate implements gocommand.Message.
func (input PlatformAddInput) Validate() error {
	switch {
	case strings.TrimSpace(input.Name) == "":
		return types.ErrPlatformNameRequired
	case input.IconRef == 0:
		return types.ErrIconRefRequired
	default:
		return nil
	}
}

// PlatformAddCommand adds a platform to the catalog.
type PlatformAddCommand struct {
	catalog types.PlatformCatalog
	sink    types.ActivitySink
	hooks   types.Hooks
	clock   types.Clock
	logger  types.Logger
	gate    featuregate.FeatureGate
}

// NewPlatformAddCommand constructs the handler.
func NewPlatformAddCommand(cfg PlatformCommandConfig) *PlatformAddCommand {
	return &PlatformAddCommand{
		catalog: cfg.Catalog,
		sink:    cfg.Activity,
		hooks:   cfg.Hooks,
		clock:   safeClock(cfg.Clock),
		logger:  safeLogger(cfg.Logger),
		gate:    cfg.FeatureGate,
	}
}

var _ gocommand.Commander[PlatformAddInput] = (*PlatformAddCommand)(nil)

// Execute persists the platform. The catalog refreshes its snapshot before
// the hook fires, so hook consumers observe the new platform.
func (c *PlatformAddCommand) Execute(ctx context.Context, input PlatformAddInput) error {
	if c.catalog == nil {
		return types.ErrMissingPlatformCatalog
	}
	if err := input.Validate(); err != nil {
		return err
	}
	enabled, err := featureEnabled(ctx, c.gate, FeaturePlatformsManage, input.GuildID, input.ActorID)
	if err != nil {
		return err
	}
	if !enabled {
		return ErrPlatformManagementDisabled
	}

	platform, err := c.catalog.Add(ctx, input.Name, input.IconRef)
	if err != nil {
		if platform.ID == 0 {
			return err
		}
		// stored, but the snapshot refresh failed; the next refresh picks it up
		c.logger.Error("command: platform added without refresh", err, "platform", platform.Name)
	}
	if input.Result != nil {
		*input.Result = platform
	}

	occurredAt := now(c.clock)
	record := activity.BuildRecord(input.ActorID, types.VerbPlatformAdded, "platform", platform.ID, map[string]any{
		"name":     platform.Name,
		"icon_ref": platform.IconRef,
	}, activity.WithGuild(input.GuildID), activity.WithChannel(input.Channel), activity.WithOccurredAt(occurredAt))
	recordActivity(ctx, c.sink, c.hooks, c.logger, record)
	emitPlatformHook(ctx, c.hooks, types.PlatformEvent{
		Platform:   platform,
		Action:     types.VerbPlatformAdded,
		GuildID:    input.GuildID,
		ActorID:    input.ActorID,
		OccurredAt: occurredAt,
	})
	return nil
}
