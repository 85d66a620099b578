package cli

import (
	"context"
	"fmt"
	"io"

	gdblog "github.com/goliatone/go-gamerdb/adapter/logrus"
	"github.com/goliatone/go-gamerdb/config"
	"github.com/goliatone/go-gamerdb/pkg/database"
	"github.com/goliatone/go-gamerdb/service"
	persistence "github.com/goliatone/go-persistence-bun"
)

// app carries what subcommands share: flags, the loaded config and the
// lazily opened database and service.
type app struct {
	configFile string
	envFile    string
	format     string

	out    io.Writer
	errOut io.Writer

	cfg    *config.Config
	logger *gdblog.Logger
	client *persistence.Client
	svc    *service.Service
}

func (a *app) loadConfig() error {
	if a.cfg != nil {
		return nil
	}
	cfg, err := config.Load(config.LoadOptions{File: a.configFile, EnvFile: a.envFile})
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = gdblog.New(gdblog.Options{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: a.errOut,
	})
	return nil
}

// database opens the store and applies pending migrations.
func (a *app) database(ctx context.Context) (*persistence.Client, error) {
	if a.client != nil {
		return a.client, nil
	}
	if err := a.loadConfig(); err != nil {
		return nil, err
	}
	client, err := database.Open(a.cfg.GetPersistence())
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(ctx, client); err != nil {
		_ = client.DB().Close()
		return nil, err
	}
	a.client = client
	a.logger.Debug("cli: database ready", "driver", database.NormalizeDriver(a.cfg.Database.Driver))
	return client, nil
}

// service builds the gamerdb service over the configured database.
func (a *app) service(ctx context.Context) (*service.Service, error) {
	if a.svc != nil {
		return a.svc, nil
	}
	client, err := a.database(ctx)
	if err != nil {
		return nil, err
	}
	svc, err := service.NewFromDB(ctx, service.BunConfig{
		DB:            client.DB(),
		DefaultPrefix: a.cfg.Prefix.Default,
		CacheGuilds:   a.cfg.Cache.Enabled,
		CacheTTL:      a.cfg.Cache.TTL,
		CacheCapacity: a.cfg.Cache.Capacity,
		FlowTTL:       a.cfg.Flow.TTL,
		FeatureGate:   a.cfg.FeatureGate(),
		Logger:        a.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("cli: build service: %w", err)
	}
	a.svc = svc
	return svc, nil
}

func (a *app) output() *Output {
	return NewOutput(a.format, a.out)
}

func (a *app) close() error {
	if a.client == nil {
		return nil
	}
	err := a.client.DB().Close()
	a.client = nil
	a.svc = nil
	return err
}
