package command

import (
	"context"
	"strings"

	gocommand "github.com/goliatone/go-command"
	"github.com/goliatone/go-gamerdb/activity"
	"github.com/goliatone/go-gamerdb/flow"
	"github.com/goliatone/go-gamerdb/pkg/types"
)

// ProfileCommandConfig wires dependencies for profile commands.
type ProfileCommandConfig struct {
	Catalog  types.PlatformCatalog
	Profiles types.ProfileRepository
	Activity types.ActivitySink
	Hooks    types.Hooks
	Clock    types.Clock
	Logger   types.Logger
}

// ProfileChangeResult reports the outcome of a direct profile command.
type ProfileChangeResult struct {
	Platforms []types.Platform
	// Invalid lists the supplied names that did not match any platform.
	Invalid []string
	Count   int
}

// ProfileRegisterInput registers one gamertag on platforms named in text, the
// non-interactive counterpart of the register flow.
type ProfileRegisterInput struct {
	MemberID  int64
	GuildID   int64
	Gamertag  string
	Platforms []string
	Channel   string
	Result    *ProfileChangeResult
}

// Type implements gocommand.Message.
func (ProfileRegisterInput) Type() string {
	return "command.profile.register"
}

// Validate implements gocommand.Message.
func (input ProfileRegisterInput) Validate() error {
	switch {
	case input.MemberID == 0:
		return types.ErrMemberIDRequired
	case strings.TrimSpace(input.Gamertag) == "":
		return types.ErrGamertagRequired
	case len(input.Platforms) == 0:
		return ErrPlatformsRequired
	default:
		return nil
	}
}

// ProfileRegisterCommand upserts profile edges for the named platforms.
type ProfileRegisterCommand struct {
	catalog  types.PlatformCatalog
	profiles types.ProfileRepository
	recorder *profileRecorder
}

// NewProfileRegisterCommand constructs the handler.
func NewProfileRegisterCommand(cfg ProfileCommandConfig) *ProfileRegisterCommand {
	return &ProfileRegisterCommand{
		catalog:  cfg.Catalog,
		profiles: cfg.Profiles,
		recorder: newProfileRecorder(cfg),
	}
}

var _ gocommand.Commander[ProfileRegisterInput] = (*ProfileRegisterCommand)(nil)

// Execute resolves the platform names and writes every valid pair in one
// batch. Unknown names are reported in the result and skipped.
func (c *ProfileRegisterCommand) Execute(ctx context.Context, input ProfileRegisterInput) error {
	if c.catalog == nil {
		return types.ErrMissingPlatformCatalog
	}
	if c.profiles == nil {
		return types.ErrMissingProfileRepository
	}
	if err := input.Validate(); err != nil {
		return err
	}

	platforms, invalid := resolvePlatformNames(c.catalog, input.Platforms)
	result := ProfileChangeResult{Platforms: platforms, Invalid: invalid}
	if len(platforms) == 0 {
		writeProfileResult(input.Result, result)
		return ErrNoValidPlatforms
	}

	gamertag := strings.TrimSpace(input.Gamertag)
	entries := make([]types.ProfileEntry, 0, len(platforms))
	for _, platform := range platforms {
		entries = append(entries, types.ProfileEntry{Gamertag: gamertag, PlatformID: platform.ID})
	}
	count, err := c.profiles.RegisterMany(ctx, input.MemberID, entries)
	if err != nil {
		return err
	}
	result.Count = count
	writeProfileResult(input.Result, result)

	c.recorder.record(ctx, profileChange{
		verb:      types.VerbProfileRegistered,
		memberID:  input.MemberID,
		guildID:   input.GuildID,
		gamertag:  gamertag,
		platforms: platforms,
		count:     count,
		channel:   input.Channel,
	})
	return nil
}

// NewFlowRecorder returns a flow.Config AfterCommit callback that records
// activity and fires profile hooks for committed flows.
func NewFlowRecorder(cfg ProfileCommandConfig) func(context.Context, flow.Result) {
	recorder := newProfileRecorder(cfg)
	return func(ctx context.Context, result flow.Result) {
		verb := types.VerbProfileRegistered
		if result.Kind == flow.KindUnregister {
			verb = types.VerbProfileUnregistered
		}
		recorder.record(ctx, profileChange{
			verb:      verb,
			memberID:  result.MemberID,
			guildID:   result.GuildID,
			gamertag:  result.Gamertag,
			platforms: result.Platforms,
			count:     result.Count,
			channel:   ChannelGateway,
		})
	}
}

type profileChange struct {
	verb      string
	memberID  int64
	guildID   int64
	gamertag  string
	platforms []types.Platform
	count     int
	channel   string
}

type profileRecorder struct {
	sink   types.ActivitySink
	hooks  types.Hooks
	clock  types.Clock
	logger types.Logger
}

func newProfileRecorder(cfg ProfileCommandConfig) *profileRecorder {
	return &profileRecorder{
		sink:   cfg.Activity,
		hooks:  cfg.Hooks,
		clock:  safeClock(cfg.Clock),
		logger: safeLogger(cfg.Logger),
	}
}

func (r *profileRecorder) record(ctx context.Context, change profileChange) {
	occurredAt := now(r.clock)
	data := map[string]any{
		"platforms": platformNames(change.platforms),
		"count":     change.count,
	}
	if change.gamertag != "" {
		data["gamertag"] = change.gamertag
	}
	record := activity.BuildRecord(change.memberID, change.verb, "member", change.memberID, data,
		activity.WithGuild(change.guildID), activity.WithChannel(change.channel), activity.WithOccurredAt(occurredAt))
	recordActivity(ctx, r.sink, r.hooks, r.logger, record)
	emitProfileHook(ctx, r.hooks, types.ProfileEvent{
		MemberID:    change.memberID,
		GuildID:     change.guildID,
		Action:      change.verb,
		PlatformIDs: platformIDs(change.platforms),
		Count:       change.count,
		OccurredAt:  occurredAt,
	})
}

// resolvePlatformNames maps names onto catalog platforms, dropping repeats.
// Unknown names come back normalized in the order supplied.
func resolvePlatformNames(catalog types.PlatformCatalog, names []string) ([]types.Platform, []string) {
	platforms := make([]types.Platform, 0, len(names))
	var invalid []string
	seen := make(map[int64]struct{}, len(names))
	for _, name := range names {
		normalized := types.NormalizeName(name)
		if normalized == "" {
			continue
		}
		platform, ok := catalog.Lookup(normalized)
		if !ok {
			invalid = append(invalid, normalized)
			continue
		}
		if _, dup := seen[platform.ID]; dup {
			continue
		}
		seen[platform.ID] = struct{}{}
		platforms = append(platforms, platform)
	}
	return platforms, invalid
}

func writeProfileResult(dst *ProfileChangeResult, result ProfileChangeResult) {
	if dst != nil {
		*dst = result
	}
}
