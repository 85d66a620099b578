package service

import (
	"context"
	"time"

	featuregate "github.com/goliatone/go-featuregate/gate"
	"github.com/goliatone/go-gamerdb/command"
	"github.com/goliatone/go-gamerdb/flow"
	"github.com/goliatone/go-gamerdb/pkg/types"
	"github.com/goliatone/go-gamerdb/query"
)

// Service is the entry point for gamerdb. It wires the catalog, repositories,
// hooks, the selection flow manager and the command/query facades used by the
// chat gateway and the CLI.
type Service struct {
	cfg      Config
	commands Commands
	queries  Queries
	flows    *flow.Manager
	activity types.ActivityRepository
}

// Commands exposes the service command handlers.
type Commands struct {
	PlatformAdd       *command.PlatformAddCommand
	PlatformDelete    *command.PlatformDeleteCommand
	PrefixSet         *command.PrefixSetCommand
	ProfileRegister   *command.ProfileRegisterCommand
	ProfileUnregister *command.ProfileUnregisterCommand
	BulkImport        *command.BulkImportCommand
}

// Queries exposes read-model helpers.
type Queries struct {
	Platforms     *query.PlatformListQuery
	Profile       *query.ProfileQuery
	UsersFor      *query.UsersForQuery
	Prefix        *query.PrefixQuery
	ActivityFeed  *query.ActivityFeedQuery
	ActivityStats *query.ActivityStatsQuery
}

// Pinger is satisfied by *bun.DB and *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Config captures all required dependencies so callers can provide their own
// instances (bun-backed, cached or in-memory).
type Config struct {
	Catalog            types.PlatformCatalog
	ProfileRepository  types.ProfileRepository
	Prefixes           types.PrefixStore
	ActivitySink       types.ActivitySink
	ActivityRepository types.ActivityRepository
	FeatureGate        featuregate.FeatureGate
	Hooks              types.Hooks
	Clock              types.Clock
	IDGenerator        types.IDGenerator
	Logger             types.Logger
	FlowTTL            time.Duration
	DB                 Pinger
}

// New constructs a Service from the supplied configuration.
func New(cfg Config) *Service {
	norm := normalizeConfig(cfg)
	actRepo := norm.ActivityRepository
	if actRepo == nil {
		if sinkRepo, ok := norm.ActivitySink.(types.ActivityRepository); ok {
			actRepo = sinkRepo
		}
	}

	s := &Service{
		cfg:      norm,
		activity: actRepo,
	}
	flows, err := flow.NewManager(flow.Config{
		Catalog:     norm.Catalog,
		Profiles:    norm.ProfileRepository,
		TTL:         norm.FlowTTL,
		Clock:       norm.Clock,
		IDGen:       norm.IDGenerator,
		Logger:      norm.Logger,
		AfterCommit: command.NewFlowRecorder(s.profileCommandConfig()),
	})
	if err != nil {
		norm.Logger.Error("gamerdb: flow manager initialization failed", err)
	} else {
		s.flows = flows
	}
	s.commands = s.buildCommands()
	s.queries = s.buildQueries()
	return s
}

func normalizeConfig(cfg Config) Config {
	if cfg.Clock == nil {
		cfg.Clock = types.SystemClock{}
	}
	if cfg.IDGenerator == nil {
		cfg.IDGenerator = types.UUIDGenerator{}
	}
	if cfg.Logger == nil {
		cfg.Logger = types.NopLogger{}
	}
	if cfg.FlowTTL <= 0 {
		cfg.FlowTTL = flow.DefaultTTL
	}
	return cfg
}

// Commands returns the command facade.
func (s *Service) Commands() Commands {
	return s.commands
}

// Queries returns the query facade.
func (s *Service) Queries() Queries {
	return s.queries
}

// Flows returns the selection flow manager, nil when the catalog or profile
// repository is missing.
func (s *Service) Flows() *flow.Manager {
	if s == nil {
		return nil
	}
	return s.flows
}

// Catalog returns the platform catalog so transports can resolve names.
func (s *Service) Catalog() types.PlatformCatalog {
	if s == nil {
		return nil
	}
	return s.cfg.Catalog
}

// Prefixes returns the prefix store used to route text commands.
func (s *Service) Prefixes() types.PrefixStore {
	if s == nil {
		return nil
	}
	return s.cfg.Prefixes
}

// Logger returns the configured logger.
func (s *Service) Logger() types.Logger {
	if s == nil {
		return types.NopLogger{}
	}
	return s.cfg.Logger
}

// Ready reports whether the service has the required dependencies wired in.
func (s *Service) Ready() bool {
	return s != nil &&
		s.cfg.Catalog != nil &&
		s.cfg.ProfileRepository != nil &&
		s.cfg.Prefixes != nil &&
		s.cfg.ActivitySink != nil &&
		s.activity != nil &&
		s.flows != nil
}

// HealthCheck reports the first missing dependency, then pings the database
// when one was supplied.
func (s *Service) HealthCheck(ctx context.Context) error {
	if s == nil {
		return types.ErrServiceNotReady
	}
	if s.cfg.Catalog == nil {
		return types.ErrMissingPlatformCatalog
	}
	if s.cfg.ProfileRepository == nil {
		return types.ErrMissingProfileRepository
	}
	if s.cfg.Prefixes == nil {
		return types.ErrMissingGuildSettings
	}
	if s.cfg.ActivitySink == nil {
		return types.ErrMissingActivitySink
	}
	if s.activity == nil {
		return types.ErrMissingActivityRepository
	}
	if !s.Ready() {
		return types.ErrServiceNotReady
	}
	if s.cfg.DB != nil {
		if err := s.cfg.DB.PingContext(ctx); err != nil {
			return types.StorageUnavailable(err)
		}
	}
	return nil
}

// ActivitySink returns the configured sink so transports can emit activity
// records for auxiliary workflows.
func (s *Service) ActivitySink() types.ActivitySink {
	if s == nil {
		return nil
	}
	return s.cfg.ActivitySink
}

func (s *Service) profileCommandConfig() command.ProfileCommandConfig {
	return command.ProfileCommandConfig{
		Catalog:  s.cfg.Catalog,
		Profiles: s.cfg.ProfileRepository,
		Activity: s.cfg.ActivitySink,
		Hooks:    s.cfg.Hooks,
		Clock:    s.cfg.Clock,
		Logger:   s.cfg.Logger,
	}
}

func (s *Service) buildCommands() Commands {
	platformCfg := command.PlatformCommandConfig{
		Catalog:     s.cfg.Catalog,
		Activity:    s.cfg.ActivitySink,
		Hooks:       s.cfg.Hooks,
		Clock:       s.cfg.Clock,
		Logger:      s.cfg.Logger,
		FeatureGate: s.cfg.FeatureGate,
	}
	profileCfg := s.profileCommandConfig()
	return Commands{
		PlatformAdd:    command.NewPlatformAddCommand(platformCfg),
		PlatformDelete: command.NewPlatformDeleteCommand(platformCfg),
		PrefixSet: command.NewPrefixSetCommand(command.PrefixCommandConfig{
			Store:    s.cfg.Prefixes,
			Activity: s.cfg.ActivitySink,
			Hooks:    s.cfg.Hooks,
			Clock:    s.cfg.Clock,
			Logger:   s.cfg.Logger,
		}),
		ProfileRegister:   command.NewProfileRegisterCommand(profileCfg),
		ProfileUnregister: command.NewProfileUnregisterCommand(profileCfg),
		BulkImport: command.NewBulkImportCommand(command.ImportCommandConfig{
			Catalog:     s.cfg.Catalog,
			Profiles:    s.cfg.ProfileRepository,
			Activity:    s.cfg.ActivitySink,
			Hooks:       s.cfg.Hooks,
			Clock:       s.cfg.Clock,
			Logger:      s.cfg.Logger,
			FeatureGate: s.cfg.FeatureGate,
		}),
	}
}

func (s *Service) buildQueries() Queries {
	return Queries{
		Platforms:     query.NewPlatformListQuery(s.cfg.Catalog),
		Profile:       query.NewProfileQuery(s.cfg.ProfileRepository),
		UsersFor:      query.NewUsersForQuery(s.cfg.Catalog, s.cfg.ProfileRepository),
		Prefix:        query.NewPrefixQuery(s.cfg.Prefixes),
		ActivityFeed:  query.NewActivityFeedQuery(s.activity),
		ActivityStats: query.NewActivityStatsQuery(s.activity),
	}
}
