package profile

import (
	"context"
	"database/sql"
	"os"
	"strings"
	"testing"

	"github.com/goliatone/go-gamerdb/pkg/types"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
)

func TestRepository_RegisterManyUpsertsLatestTag(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	applyDDL(t, db)
	steam := seedPlatform(t, db, "steam", 7)

	repo, err := NewRepository(RepositoryConfig{DB: db})
	require.NoError(t, err)

	count, err := repo.RegisterMany(ctx, 42, []types.ProfileEntry{{Gamertag: "Gamer42", PlatformID: steam}})
	require.NoError(t, err)
	require.Equal(t, 1, count)

	count, err = repo.RegisterMany(ctx, 42, []types.ProfileEntry{{Gamertag: "NewTag", PlatformID: steam}})
	require.NoError(t, err)
	require.Equal(t, 1, count)

	items, err := repo.ProfileFor(ctx, 42)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, types.ProfileItem{
		PlatformID:   steam,
		PlatformName: "steam",
		IconRef:      7,
		Gamertag:     "NewTag",
	}, items[0])
}

func TestRepository_RegisterManyDedupesEntries(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	applyDDL(t, db)
	steam := seedPlatform(t, db, "steam", 7)
	origin := seedPlatform(t, db, "origin", 8)

	repo, err := NewRepository(RepositoryConfig{DB: db})
	require.NoError(t, err)

	count, err := repo.RegisterMany(ctx, 42, []types.ProfileEntry{
		{Gamertag: "first", PlatformID: steam},
		{Gamertag: "tag", PlatformID: origin},
		{Gamertag: "second", PlatformID: steam},
	})
	require.NoError(t, err)
	require.Equal(t, 2, count)

	items, err := repo.ProfileFor(ctx, 42)
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.Equal(t, "origin", items[0].PlatformName)
	require.Equal(t, "steam", items[1].PlatformName)
	require.Equal(t, "second", items[1].Gamertag)
}

func TestRepository_RegisterManyIsAllOrNothing(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	applyDDL(t, db)
	steam := seedPlatform(t, db, "steam", 7)

	repo, err := NewRepository(RepositoryConfig{DB: db})
	require.NoError(t, err)

	_, err = repo.RegisterMany(ctx, 42, []types.ProfileEntry{
		{Gamertag: "Gamer42", PlatformID: steam},
		{Gamertag: "ghost", PlatformID: 9999},
	})
	require.Error(t, err)
	require.ErrorIs(t, err, types.ErrStorageConstraint)

	items, err := repo.ProfileFor(ctx, 42)
	require.NoError(t, err)
	require.Empty(t, items)
}

func TestRepository_RegisterManyValidatesInput(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	applyDDL(t, db)

	repo, err := NewRepository(RepositoryConfig{DB: db})
	require.NoError(t, err)

	_, err = repo.RegisterMany(ctx, 0, []types.ProfileEntry{{Gamertag: "x", PlatformID: 1}})
	require.ErrorIs(t, err, types.ErrMemberIDRequired)

	_, err = repo.RegisterMany(ctx, 42, []types.ProfileEntry{{Gamertag: "  ", PlatformID: 1}})
	require.ErrorIs(t, err, types.ErrGamertagRequired)

	count, err := repo.RegisterMany(ctx, 42, nil)
	require.NoError(t, err)
	require.Zero(t, count)
}

func TestRepository_UnregisterManyIgnoresUnheldPlatforms(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	applyDDL(t, db)
	steam := seedPlatform(t, db, "steam", 7)
	origin := seedPlatform(t, db, "origin", 8)

	repo, err := NewRepository(RepositoryConfig{DB: db})
	require.NoError(t, err)

	removed, err := repo.UnregisterMany(ctx, 42, []int64{origin})
	require.NoError(t, err)
	require.Zero(t, removed)

	_, err = repo.RegisterMany(ctx, 42, []types.ProfileEntry{
		{Gamertag: "Gamer42", PlatformID: steam},
		{Gamertag: "Origin42", PlatformID: origin},
	})
	require.NoError(t, err)

	removed, err = repo.UnregisterMany(ctx, 42, []int64{steam, steam, 12345})
	require.NoError(t, err)
	require.Equal(t, 1, removed)

	items, err := repo.ProfileFor(ctx, 42)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, origin, items[0].PlatformID)
}

func TestRepository_MembersFor(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	applyDDL(t, db)
	steam := seedPlatform(t, db, "steam", 7)
	origin := seedPlatform(t, db, "origin", 8)

	repo, err := NewRepository(RepositoryConfig{DB: db})
	require.NoError(t, err)

	_, err = repo.RegisterMany(ctx, 1, []types.ProfileEntry{{Gamertag: "one", PlatformID: steam}})
	require.NoError(t, err)
	_, err = repo.RegisterMany(ctx, 2, []types.ProfileEntry{
		{Gamertag: "two", PlatformID: steam},
		{Gamertag: "two-origin", PlatformID: origin},
	})
	require.NoError(t, err)

	members, err := repo.MembersFor(ctx, steam)
	require.NoError(t, err)
	require.ElementsMatch(t, []types.Membership{
		{MemberID: 1, Gamertag: "one"},
		{MemberID: 2, Gamertag: "two"},
	}, members)

	members, err = repo.MembersFor(ctx, 555)
	require.NoError(t, err)
	require.Empty(t, members)
}

func TestRepository_ProfileForUnknownMemberIsEmpty(t *testing.T) {
	db := newTestDB(t)
	applyDDL(t, db)

	repo, err := NewRepository(RepositoryConfig{DB: db})
	require.NoError(t, err)

	items, err := repo.ProfileFor(context.Background(), 77)
	require.NoError(t, err)
	require.NotNil(t, items)
	require.Empty(t, items)
}

func seedPlatform(t *testing.T, db *bun.DB, name string, icon int64) int64 {
	t.Helper()
	res, err := db.Exec("INSERT INTO platforms (name, icon_ref) VALUES (?, ?)", name, icon)
	require.NoError(t, err)
	id, err := res.LastInsertId()
	require.NoError(t, err)
	return id
}

func newTestDB(t *testing.T) *bun.DB {
	sqldb, err := sql.Open("sqlite3", "file::memory:?_fk=1")
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)
	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() {
		_ = db.Close()
		_ = sqldb.Close()
	})
	return db
}

func applyDDL(t *testing.T, db *bun.DB) {
	content, err := os.ReadFile("../data/sql/migrations/sqlite/00001_gamerdb_schema.up.sql")
	require.NoError(t, err)
	for _, stmt := range splitStatements(string(content)) {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		_, err := db.Exec(stmt)
		require.NoError(t, err)
	}
}

func splitStatements(sql string) []string {
	lines := strings.Split(sql, "\n")
	var builder strings.Builder
	var statements []string
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "--") {
			continue
		}
		builder.WriteString(line)
		if strings.HasSuffix(line, ";") {
			statements = append(statements, strings.TrimSuffix(builder.String(), ";"))
			builder.Reset()
		} else {
			builder.WriteString(" ")
		}
	}
	if builder.Len() > 0 {
		statements = append(statements, builder.String())
	}
	return statements
}
