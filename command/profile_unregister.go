package command

import (
	"context"

	gocommand "github.com/goliatone/go-command"
	"github.com/goliatone/go-gamerdb/pkg/types"
)

// ProfileUnregisterInput removes the member from platforms named in text.
type ProfileUnregisterInput struct {
	MemberID  int64
	GuildID   int64
	Platforms []string
	Channel   string
	Result    *ProfileChangeResult
}

// Type implements gocommand.Message.
func (ProfileUnregisterInput) Type() string {
	return "command.profile.unregister"
}

// Validate implements gocommand.Message.
func (input ProfileUnregisterInput) Validate() error {
	switch {
	case input.MemberID == 0:
		return types.ErrMemberIDRequired
	case len(input.Platforms) == 0:
		return ErrPlatformsRequired
	default:
		return nil
	}
}

// ProfileUnregisterCommand deletes profile edges for the named platforms.
type ProfileUnregisterCommand struct {
	catalog  types.PlatformCatalog
	profiles types.ProfileRepository
	recorder *profileRecorder
}

// NewProfileUnregisterCommand constructs the handler.
func NewProfileUnregisterCommand(cfg ProfileCommandConfig) *ProfileUnregisterCommand {
	return &ProfileUnregisterCommand{
		catalog:  cfg.Catalog,
		profiles: cfg.Profiles,
		recorder: newProfileRecorder(cfg),
	}
}

var _ gocommand.Commander[ProfileUnregisterInput] = (*ProfileUnregisterCommand)(nil)

// Execute deletes the edges in one batch. Platforms the member never held
// count as nothing removed; activity is only recorded when rows went away.
func (c *ProfileUnregisterCommand) Execute(ctx context.Context, input ProfileUnregisterInput) error {
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

	count, err := c.profiles.UnregisterMany(ctx, input.MemberID, platformIDs(platforms))
	if err != nil {
		return err
	}
	result.Count = count
	writeProfileResult(input.Result, result)
	if count == 0 {
		return nil
	}

	c.recorder.record(ctx, profileChange{
		verb:      types.VerbProfileUnregistered,
		memberID:  input.MemberID,
		guildID:   input.GuildID,
		platforms: platforms,
		count:     count,
		channel:   input.Channel,
	})
	return nil
}
