package types

import "context"

// PlatformRepository is the durable side of the platform catalog.
type PlatformRepository interface {
	ListPlatforms(ctx context.Context) ([]Platform, error)
	CreatePlatform(ctx context.Context, name string, iconRef int64) (*Platform, error)
	// DeletePlatform removes the platform and its profile edges in one
	// transaction. It reports false when no platform had the id.
	DeletePlatform(ctx context.Context, id int64) (bool, error)
}

// PlatformCatalog serves platform reads from memory and routes mutations
// through storage followed by a full refresh.
type PlatformCatalog interface {
	LoadAll(ctx context.Context) ([]Platform, error)
	Refresh(ctx context.Context) error
	Lookup(name string) (Platform, bool)
	LookupID(id int64) (Platform, bool)
	All() []Platform
	Add(ctx context.Context, name string, iconRef int64) (Platform, error)
	Delete(ctx context.Context, id int64) error
}

// ProfileRepository persists member to platform edges.
type ProfileRepository interface {
	RegisterMany(ctx context.Context, memberID int64, entries []ProfileEntry) (int, error)
	UnregisterMany(ctx context.Context, memberID int64, platformIDs []int64) (int, error)
	ProfileFor(ctx context.Context, memberID int64) ([]ProfileItem, error)
	MembersFor(ctx context.Context, platformID int64) ([]Membership, error)
}

// GuildSettingsRepository persists per-guild settings rows. GetSetting
// returns nil without error when the guild has no row.
type GuildSettingsRepository interface {
	GetSetting(ctx context.Context, guildID int64) (*GuildSetting, error)
	UpsertSetting(ctx context.Context, setting GuildSetting) (*GuildSetting, error)
}

// PrefixStore resolves and updates guild command prefixes.
type PrefixStore interface {
	GetPrefix(ctx context.Context, guildID int64) string
	SetPrefix(ctx context.Context, guildID int64, prefix string) (*GuildSetting, error)
}

// ActivityRepository exposes read-side access to the activity log.
type ActivityRepository interface {
	ListActivity(ctx context.Context, filter ActivityFilter) (ActivityPage, error)
	ActivityStats(ctx context.Context, filter ActivityStatsFilter) (ActivityStats, error)
}
