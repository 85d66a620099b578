package guilds

import (
	"context"
	"testing"

	"github.com/goliatone/go-gamerdb/pkg/types"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-repository-cache/cache"
	"github.com/goliatone/go-repository-cache/repositorycache"
	"github.com/stretchr/testify/require"
)

func TestGuildRepository_CacheWrapsRepository(t *testing.T) {
	db := newTestDB(t)
	applyDDL(t, db)

	repo, err := NewRepository(RepositoryConfig{Repository: newBaseRepository(db)}, WithCache(true))
	require.NoError(t, err)

	_, ok := repo.settingsStore.(*repositorycache.CachedRepository[*Record])
	require.True(t, ok)
}

func TestGuildRepository_CacheDoesNotDoubleWrap(t *testing.T) {
	db := newTestDB(t)
	applyDDL(t, db)

	cacheService, err := cache.NewCacheService(cache.DefaultConfig())
	require.NoError(t, err)
	cached := repositorycache.New(newBaseRepository(db), cacheService, cache.NewDefaultKeySerializer())

	repo, err := NewRepository(RepositoryConfig{Repository: cached}, WithCache(true))
	require.NoError(t, err)

	stored, ok := repo.settingsStore.(*repositorycache.CachedRepository[*Record])
	require.True(t, ok)
	require.Same(t, cached, stored)
}

func TestGuildRepository_GetSettingUsesCache(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	applyDDL(t, db)

	spy := &spyRecordRepository{Repository: newBaseRepository(db)}
	repo, err := NewRepository(RepositoryConfig{Repository: spy}, WithCache(true))
	require.NoError(t, err)

	_, err = repo.UpsertSetting(ctx, types.GuildSetting{GuildID: 55, Prefix: "!"})
	require.NoError(t, err)

	spy.getCalls = 0
	_, err = repo.GetSetting(ctx, 55)
	require.NoError(t, err)
	_, err = repo.GetSetting(ctx, 55)
	require.NoError(t, err)
	require.Equal(t, 1, spy.getCalls)
}

func TestGuildRepository_UpsertInvalidatesCache(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	applyDDL(t, db)

	spy := &spyRecordRepository{Repository: newBaseRepository(db)}
	repo, err := NewRepository(RepositoryConfig{Repository: spy}, WithCache(true))
	require.NoError(t, err)

	_, err = repo.UpsertSetting(ctx, types.GuildSetting{GuildID: 55, Prefix: "!"})
	require.NoError(t, err)
	_, err = repo.GetSetting(ctx, 55)
	require.NoError(t, err)

	_, err = repo.UpsertSetting(ctx, types.GuildSetting{GuildID: 55, Prefix: "?"})
	require.NoError(t, err)

	spy.getCalls = 0
	fetched, err := repo.GetSetting(ctx, 55)
	require.NoError(t, err)
	require.Equal(t, 1, spy.getCalls)
	require.Equal(t, "?", fetched.Prefix)
}

func TestGuildRepository_CachedGuildsStayIsolated(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	applyDDL(t, db)

	repo, err := NewRepository(RepositoryConfig{DB: db}, WithCache(true))
	require.NoError(t, err)
	resolver, err := NewResolver(ResolverConfig{Repository: repo})
	require.NoError(t, err)

	_, err = resolver.SetPrefix(ctx, 1, "a!")
	require.NoError(t, err)
	require.Equal(t, "a!", resolver.GetPrefix(ctx, 1))
	require.Equal(t, types.DefaultPrefix, resolver.GetPrefix(ctx, 2))

	_, err = resolver.SetPrefix(ctx, 2, "b!")
	require.NoError(t, err)
	require.Equal(t, "a!", resolver.GetPrefix(ctx, 1))
	require.Equal(t, "b!", resolver.GetPrefix(ctx, 2))
	require.Equal(t, types.DefaultPrefix, resolver.GetPrefix(ctx, 3))

	_, err = resolver.SetPrefix(ctx, 1, "c!")
	require.NoError(t, err)
	require.Equal(t, "c!", resolver.GetPrefix(ctx, 1))
	require.Equal(t, "b!", resolver.GetPrefix(ctx, 2))

	var rows int
	require.NoError(t, db.QueryRowContext(ctx, "SELECT COUNT(*) FROM guilds").Scan(&rows))
	require.Equal(t, 2, rows)
}

type spyRecordRepository struct {
	repository.Repository[*Record]
	getCalls int
}

func (s *spyRecordRepository) GetByID(ctx context.Context, id string, criteria ...repository.SelectCriteria) (*Record, error) {
	s.getCalls++
	return s.Repository.GetByID(ctx, id, criteria...)
}
