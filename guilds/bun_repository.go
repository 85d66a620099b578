package guilds

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/goliatone/go-gamerdb/pkg/storage"
	"github.com/goliatone/go-gamerdb/pkg/types"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-repository-cache/cache"
	"github.com/goliatone/go-repository-cache/repositorycache"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// RepositoryConfig wires dependencies for the Bun-backed guild settings store.
type RepositoryConfig struct {
	DB         *bun.DB
	Repository repository.Repository[*Record]
	Clock      types.Clock
}

type settingsStore interface {
	repository.Repository[*Record]
}

// Repository implements types.GuildSettingsRepository.
type Repository struct {
	settingsStore
	clock types.Clock
}

// NewRepository constructs the default guild settings repository. Pass
// WithCache(true) to decorate the store with go-repository-cache.
func NewRepository(cfg RepositoryConfig, options ...RepositoryOption) (*Repository, error) {
	if cfg.Repository == nil && cfg.DB == nil {
		return nil, errors.New("guilds: db or repository required")
	}
	repo := cfg.Repository
	if repo == nil {
		repo = newBaseRepository(cfg.DB)
	}

	opts := collectOptions(options)
	if opts.cached {
		wrapped, err := wrapWithCache(repo, opts.cacheConfig())
		if err != nil {
			return nil, err
		}
		repo = wrapped
	}

	clock := cfg.Clock
	if clock == nil {
		clock = types.SystemClock{}
	}

	return &Repository{
		settingsStore: repo,
		clock:         clock,
	}, nil
}

var (
	_ repository.Repository[*Record] = (*Repository)(nil)
	_ types.GuildSettingsRepository  = (*Repository)(nil)
)

// GetSetting returns the stored row for the guild, or nil when none exists.
func (r *Repository) GetSetting(ctx context.Context, guildID int64) (*types.GuildSetting, error) {
	if guildID == 0 {
		return nil, types.ErrGuildIDRequired
	}
	existing, err := r.findExisting(ctx, guildID)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, nil
		}
		return nil, storage.Classify(err)
	}
	return toDomain(existing), nil
}

// UpsertSetting inserts or updates the guild row. Writing the same prefix
// twice leaves the row unchanged apart from its timestamp.
func (r *Repository) UpsertSetting(ctx context.Context, setting types.GuildSetting) (*types.GuildSetting, error) {
	if setting.GuildID == 0 {
		return nil, types.ErrGuildIDRequired
	}
	prefix := strings.TrimSpace(setting.Prefix)
	if prefix == "" {
		return nil, types.ErrPrefixRequired
	}
	payload := &Record{
		ID:        setting.GuildID,
		Prefix:    prefix,
		UpdatedAt: r.clock.Now(),
	}

	existing, err := r.findExisting(ctx, setting.GuildID)
	switch {
	case err == nil && existing != nil:
		return r.update(ctx, payload)
	case repository.IsRecordNotFound(err):
		created, err := r.Create(ctx, payload)
		if err != nil {
			// a concurrent writer created the row first
			if storage.IsUniqueViolation(err) {
				return r.update(ctx, payload)
			}
			return nil, storage.Classify(err)
		}
		return toDomain(created), nil
	default:
		return nil, storage.Classify(err)
	}
}

func (r *Repository) update(ctx context.Context, payload *Record) (*types.GuildSetting, error) {
	updated, err := r.Update(ctx, payload)
	if err != nil {
		return nil, storage.Classify(err)
	}
	return toDomain(updated), nil
}

// findExisting reads by primary key so the cache decorator keys the result
// per guild and drops it when that guild's row is written.
func (r *Repository) findExisting(ctx context.Context, guildID int64) (*Record, error) {
	record, err := r.GetByID(ctx, strconv.FormatInt(guildID, 10))
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, repository.NewRecordNotFound()
	}
	return record, nil
}

func newBaseRepository(db *bun.DB) repository.Repository[*Record] {
	return repository.NewRepository(db, repository.ModelHandlers[*Record]{
		NewRecord: func() *Record { return &Record{} },
		GetID: func(*Record) uuid.UUID {
			return uuid.Nil
		},
		SetID: func(*Record, uuid.UUID) {},
	})
}

func wrapWithCache(repo repository.Repository[*Record], cfg cache.Config) (repository.Repository[*Record], error) {
	if cached, ok := repo.(*repositorycache.CachedRepository[*Record]); ok {
		return cached, nil
	}
	service, err := cache.NewCacheService(cfg)
	if err != nil {
		return nil, err
	}
	return repositorycache.New(repo, service, cache.NewDefaultKeySerializer()), nil
}

func toDomain(record *Record) *types.GuildSetting {
	if record == nil {
		return nil
	}
	return &types.GuildSetting{
		GuildID:   record.ID,
		Prefix:    record.Prefix,
		UpdatedAt: record.UpdatedAt,
	}
}
