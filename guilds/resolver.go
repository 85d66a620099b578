package guilds

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/goliatone/go-gamerdb/pkg/types"
	opts "github.com/goliatone/go-options"
)

const prefixKey = "prefix"

// ResolverConfig wires dependencies for the prefix resolver.
type ResolverConfig struct {
	Repository    types.GuildSettingsRepository
	DefaultPrefix string
	Logger        types.Logger
}

// Resolver merges the system default prefix with per-guild overrides via
// go-options layers.
type Resolver struct {
	repo          types.GuildSettingsRepository
	defaultPrefix string
	logger        types.Logger
}

// NewResolver constructs a prefix resolver. An empty DefaultPrefix falls back
// to types.DefaultPrefix.
func NewResolver(cfg ResolverConfig) (*Resolver, error) {
	if cfg.Repository == nil {
		return nil, fmt.Errorf("guilds: repository required")
	}
	defaultPrefix := strings.TrimSpace(cfg.DefaultPrefix)
	if defaultPrefix == "" {
		defaultPrefix = types.DefaultPrefix
	}
	logger := cfg.Logger
	if logger == nil {
		logger = types.NopLogger{}
	}
	return &Resolver{
		repo:          cfg.Repository,
		defaultPrefix: defaultPrefix,
		logger:        logger,
	}, nil
}

var _ types.PrefixStore = (*Resolver)(nil)

// DefaultPrefix returns the system level prefix.
func (r *Resolver) DefaultPrefix() string {
	return r.defaultPrefix
}

// GetPrefix returns the effective prefix for the guild. It never fails: any
// storage or merge error is logged and the default prefix is returned.
func (r *Resolver) GetPrefix(ctx context.Context, guildID int64) string {
	prefix, err := r.Resolve(ctx, guildID)
	if err != nil {
		r.logger.Error("guilds: prefix lookup failed", err, "guild_id", guildID)
		return r.defaultPrefix
	}
	return prefix
}

// Resolve merges the system and guild layers and reports any error instead of
// hiding it behind the default.
func (r *Resolver) Resolve(ctx context.Context, guildID int64) (string, error) {
	layers := []opts.Layer[map[string]any]{
		newLayer("system", "System Defaults", opts.ScopePrioritySystem, map[string]any{
			prefixKey: r.defaultPrefix,
		}, nil),
	}

	if guildID != 0 {
		setting, err := r.repo.GetSetting(ctx, guildID)
		if err != nil {
			return "", err
		}
		payload := map[string]any{}
		if setting != nil && strings.TrimSpace(setting.Prefix) != "" {
			payload[prefixKey] = setting.Prefix
		}
		layers = append(layers, newLayer("guild", "Guild", opts.ScopePriorityTenant, payload, map[string]any{
			"guild_id": strconv.FormatInt(guildID, 10),
		}))
	}

	stack, err := opts.NewStack(layers...)
	if err != nil {
		return "", err
	}
	merged, err := stack.Merge()
	if err != nil {
		return "", err
	}
	prefix, _ := merged.Value[prefixKey].(string)
	if prefix == "" {
		return r.defaultPrefix, nil
	}
	return prefix, nil
}

// SetPrefix stores the guild override. Repeating the same value is a no-op
// in effect.
func (r *Resolver) SetPrefix(ctx context.Context, guildID int64, prefix string) (*types.GuildSetting, error) {
	if guildID == 0 {
		return nil, types.ErrGuildIDRequired
	}
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return nil, types.ErrPrefixRequired
	}
	return r.repo.UpsertSetting(ctx, types.GuildSetting{
		GuildID: guildID,
		Prefix:  prefix,
	})
}

func newLayer(name, label string, priority int, payload map[string]any, meta map[string]any) opts.Layer[map[string]any] {
	if meta == nil {
		meta = map[string]any{}
	}
	scope := opts.NewScope(name, priority,
		opts.WithScopeLabel(label),
		opts.WithScopeMetadata(meta))
	return opts.NewLayer(scope, payload, opts.WithSnapshotID[map[string]any](scope.Name))
}
