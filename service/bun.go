package service

import (
	"context"
	"time"

	featuregate "github.com/goliatone/go-featuregate/gate"
	"github.com/goliatone/go-gamerdb/activity"
	"github.com/goliatone/go-gamerdb/catalog"
	"github.com/goliatone/go-gamerdb/guilds"
	"github.com/goliatone/go-gamerdb/pkg/types"
	"github.com/goliatone/go-gamerdb/profile"
	"github.com/uptrace/bun"
)

// BunConfig describes a Service backed entirely by one bun database.
type BunConfig struct {
	DB            *bun.DB
	DefaultPrefix string
	CacheGuilds   bool
	CacheTTL      time.Duration
	CacheCapacity int
	FlowTTL       time.Duration
	FeatureGate   featuregate.FeatureGate
	Hooks         types.Hooks
	Clock         types.Clock
	IDGenerator   types.IDGenerator
	Logger        types.Logger
}

// NewFromDB builds the bun repositories, loads the platform catalog and
// returns the wired service. The schema must already be migrated.
func NewFromDB(ctx context.Context, cfg BunConfig) (*Service, error) {
	if cfg.DB == nil {
		return nil, types.ErrServiceNotReady
	}
	platformRepo, err := catalog.NewRepository(catalog.RepositoryConfig{DB: cfg.DB, Clock: cfg.Clock})
	if err != nil {
		return nil, err
	}
	platforms, err := catalog.New(catalog.Config{Repository: platformRepo, Logger: cfg.Logger})
	if err != nil {
		return nil, err
	}
	if err := platforms.Refresh(ctx); err != nil {
		return nil, err
	}

	profiles, err := profile.NewRepository(profile.RepositoryConfig{DB: cfg.DB, Clock: cfg.Clock})
	if err != nil {
		return nil, err
	}

	var guildOptions []guilds.RepositoryOption
	if cfg.CacheGuilds {
		guildOptions = append(guildOptions,
			guilds.WithCache(true),
			guilds.WithCacheTTL(cfg.CacheTTL),
			guilds.WithCacheCapacity(cfg.CacheCapacity),
		)
	}
	settings, err := guilds.NewRepository(guilds.RepositoryConfig{DB: cfg.DB, Clock: cfg.Clock}, guildOptions...)
	if err != nil {
		return nil, err
	}
	prefixes, err := guilds.NewResolver(guilds.ResolverConfig{
		Repository:    settings,
		DefaultPrefix: cfg.DefaultPrefix,
		Logger:        cfg.Logger,
	})
	if err != nil {
		return nil, err
	}

	activityRepo, err := activity.NewRepository(activity.RepositoryConfig{
		DB:    cfg.DB,
		Clock: cfg.Clock,
		IDGen: cfg.IDGenerator,
	})
	if err != nil {
		return nil, err
	}

	return New(Config{
		Catalog:            platforms,
		ProfileRepository:  profiles,
		Prefixes:           prefixes,
		ActivitySink:       activityRepo,
		ActivityRepository: activityRepo,
		FeatureGate:        cfg.FeatureGate,
		Hooks:              cfg.Hooks,
		Clock:              cfg.Clock,
		IDGenerator:        cfg.IDGenerator,
		Logger:             cfg.Logger,
		FlowTTL:            cfg.FlowTTL,
		DB:                 cfg.DB,
	}), nil
}
