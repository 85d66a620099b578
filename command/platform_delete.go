package command

import (
	"context"
	"strings"

	gocommand "github.com/goliatone/go-command"
	featuregate "github.com/goliatone/go-featuregate/gate"
	"github.com/goliatone/go-gamerdb/activity"
	"github.com/goliatone/go-gamerdb/pkg/types"
)

// PlatformDeleteInput references the platform to remove by id or by name.
// When both are set the id wins.
type PlatformDeleteInput struct {
	PlatformID int64
	Name       string
	GuildID    int64
	ActorID    int64
	Channel    string
	Result     *PlatformDeleteResult
}

// Type implements gocommand.Message.
func (PlatformDeleteInput) Type() string {
	return "command.platform.delete"
}

// Validate implements gocommand.Message.
func (input PlatformDeleteInput) Validate() error {
	if input.PlatformID == 0 && strings.TrimSpace(input.Name) == "" {
		return ErrPlatformRefRequired
	}
	return nil
}

// PlatformDeleteResult reports what was removed. Deleted is false when the
// id did not match any platform.
type PlatformDeleteResult struct {
	Platform types.Platform
	Deleted  bool
}

// PlatformDeleteCommand removes a platform together with every profile edge
// that references it.
type PlatformDeleteCommand struct {
	catalog types.PlatformCatalog
	sink    types.ActivitySink
	hooks   types.Hooks
	clock   types.Clock
	logger  types.Logger
	gate    featuregate.FeatureGate
}

// NewPlatformDeleteCommand constructs the handler.
func NewPlatformDeleteCommand(cfg PlatformCommandConfig) *PlatformDeleteCommand {
	return &PlatformDeleteCommand{
		catalog: cfg.Catalog,
		sink:    cfg.Activity,
		hooks:   cfg.Hooks,
		clock:   safeClock(cfg.Clock),
		logger:  safeLogger(cfg.Logger),
		gate:    cfg.FeatureGate,
	}
}

var _ gocommand.Commander[PlatformDeleteInput] = (*PlatformDeleteCommand)(nil)

// Execute deletes the platform. An unknown name is reported as not found; an
// unknown id is a silent no-op.
func (c *PlatformDeleteCommand) Execute(ctx context.Context, input PlatformDeleteInput) error {
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

	platform, known := c.resolve(input)
	if !known && input.PlatformID == 0 {
		return types.PlatformNotFound(types.NormalizeName(input.Name))
	}
	if err := c.catalog.Delete(ctx, platform.ID); err != nil {
		return err
	}
	if input.Result != nil {
		*input.Result = PlatformDeleteResult{Platform: platform, Deleted: known}
	}
	if !known {
		return nil
	}

	occurredAt := now(c.clock)
	record := activity.BuildRecord(input.ActorID, types.VerbPlatformDeleted, "platform", platform.ID, map[string]any{
		"name": platform.Name,
	}, activity.WithGuild(input.GuildID), activity.WithChannel(input.Channel), activity.WithOccurredAt(occurredAt))
	recordActivity(ctx, c.sink, c.hooks, c.logger, record)
	emitPlatformHook(ctx, c.hooks, types.PlatformEvent{
		Platform:   platform,
		Action:     types.VerbPlatformDeleted,
		GuildID:    input.GuildID,
		ActorID:    input.ActorID,
		OccurredAt: occurredAt,
	})
	return nil
}

func (c *PlatformDeleteCommand) resolve(input PlatformDeleteInput) (types.Platform, bool) {
	if input.PlatformID != 0 {
		platform, ok := c.catalog.LookupID(input.PlatformID)
		if !ok {
			return types.Platform{ID: input.PlatformID}, false
		}
		return platform, true
	}
	return c.catalog.Lookup(input.Name)
}
