package query

import (
	"context"
	"errors"
	"testing"

	"github.com/goliatone/go-gamerdb/pkg/types"
	"github.com/stretchr/testify/require"
)

type stubCatalog struct {
	types.PlatformCatalog
	platforms []types.Platform
}

func (c stubCatalog) All() []types.Platform {
	out := make([]types.Platform, len(c.platforms))
	copy(out, c.platforms)
	return out
}

func (c stubCatalog) Lookup(name string) (types.Platform, bool) {
	for _, platform := range c.platforms {
		if platform.Name == types.NormalizeName(name) {
			return platform, true
		}
	}
	return types.Platform{}, false
}

type stubProfiles struct {
	types.ProfileRepository
	items   map[int64][]types.ProfileItem
	members map[int64][]types.Membership
	err     error
}

func (p stubProfiles) ProfileFor(_ context.Context, memberID int64) ([]types.ProfileItem, error) {
	if p.err != nil {
		return nil, p.err
	}
	items := p.items[memberID]
	if items == nil {
		items = []types.ProfileItem{}
	}
	return items, nil
}

func (p stubProfiles) MembersFor(_ context.Context, platformID int64) ([]types.Membership, error) {
	if p.err != nil {
		return nil, p.err
	}
	members := make([]types.Membership, len(p.members[platformID]))
	copy(members, p.members[platformID])
	return members, nil
}

type stubPrefixStore struct {
	types.PrefixStore
	prefixes map[int64]string
}

func (s stubPrefixStore) GetPrefix(_ context.Context, guildID int64) string {
	if prefix, ok := s.prefixes[guildID]; ok {
		return prefix
	}
	return types.DefaultPrefix
}

type stubActivityRepo struct {
	lastFilter types.ActivityFilter
	page       types.ActivityPage
	stats      types.ActivityStats
}

func (r *stubActivityRepo) ListActivity(_ context.Context, filter types.ActivityFilter) (types.ActivityPage, error) {
	r.lastFilter = filter
	return r.page, nil
}

func (r *stubActivityRepo) ActivityStats(context.Context, types.ActivityStatsFilter) (types.ActivityStats, error) {
	return r.stats, nil
}

var testPlatforms = []types.Platform{
	{ID: 2, Name: "origin", IconRef: 20},
	{ID: 1, Name: "steam", IconRef: 10},
}

func TestPlatformListQuery(t *testing.T) {
	q := NewPlatformListQuery(stubCatalog{platforms: testPlatforms})
	platforms, err := q.Query(context.Background(), PlatformListInput{})
	require.NoError(t, err)
	require.Equal(t, testPlatforms, platforms)

	_, err = NewPlatformListQuery(nil).Query(context.Background(), PlatformListInput{})
	require.ErrorIs(t, err, types.ErrMissingPlatformCatalog)
}

func TestProfileQuery(t *testing.T) {
	q := NewProfileQuery(stubProfiles{items: map[int64][]types.ProfileItem{
		42: {{PlatformID: 1, PlatformName: "steam", IconRef: 10, Gamertag: "Gamer42"}},
	}})

	items, err := q.Query(context.Background(), ProfileQueryInput{MemberID: 42})
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, "Gamer42", items[0].Gamertag)

	items, err = q.Query(context.Background(), ProfileQueryInput{MemberID: 7})
	require.NoError(t, err)
	require.NotNil(t, items)
	require.Empty(t, items)

	_, err = q.Query(context.Background(), ProfileQueryInput{})
	require.ErrorIs(t, err, types.ErrMemberIDRequired)
}

func TestUsersForQuery_FiltersMembers(t *testing.T) {
	q := NewUsersForQuery(stubCatalog{platforms: testPlatforms}, stubProfiles{members: map[int64][]types.Membership{
		1: {{MemberID: 10, Gamertag: "a"}, {MemberID: 11, Gamertag: "b"}, {MemberID: 12, Gamertag: "c"}},
	}})

	result, err := q.Query(context.Background(), UsersForInput{
		Platform: " STEAM ",
		Filter:   func(id int64) bool { return id != 11 },
	})
	require.NoError(t, err)
	require.Equal(t, int64(1), result.Platform.ID)
	require.Equal(t, []types.Membership{{MemberID: 10, Gamertag: "a"}, {MemberID: 12, Gamertag: "c"}}, result.Members)

	result, err = q.Query(context.Background(), UsersForInput{Platform: "origin"})
	require.NoError(t, err)
	require.NotNil(t, result.Members)
	require.Empty(t, result.Members)
}

func TestUsersForQuery_UnknownPlatform(t *testing.T) {
	q := NewUsersForQuery(stubCatalog{platforms: testPlatforms}, stubProfiles{})

	_, err := q.Query(context.Background(), UsersForInput{Platform: "dreamcast"})
	require.True(t, types.IsNotFound(err))

	_, err = q.Query(context.Background(), UsersForInput{Platform: "  "})
	require.ErrorIs(t, err, types.ErrPlatformNameRequired)
}

func TestUsersForQuery_StorageError(t *testing.T) {
	storeErr := types.StorageUnavailable(errors.New("closed"))
	q := NewUsersForQuery(stubCatalog{platforms: testPlatforms}, stubProfiles{err: storeErr})

	_, err := q.Query(context.Background(), UsersForInput{Platform: "steam"})
	require.True(t, types.IsStorageUnavailable(err))
}

func TestPrefixQuery(t *testing.T) {
	q := NewPrefixQuery(stubPrefixStore{prefixes: map[int64]string{1: "!"}})

	prefix, err := q.Query(context.Background(), PrefixQueryInput{GuildID: 1})
	require.NoError(t, err)
	require.Equal(t, "!", prefix)

	prefix, err = q.Query(context.Background(), PrefixQueryInput{GuildID: 2})
	require.NoError(t, err)
	require.Equal(t, types.DefaultPrefix, prefix)
}

func TestActivityQueries(t *testing.T) {
	repo := &stubActivityRepo{
		page:  types.ActivityPage{Total: 3},
		stats: types.ActivityStats{Total: 3, ByVerb: map[string]int{types.VerbPrefixUpdated: 3}},
	}

	page, err := NewActivityFeedQuery(repo).Query(context.Background(), types.ActivityFilter{GuildID: 9})
	require.NoError(t, err)
	require.Equal(t, 3, page.Total)
	require.Equal(t, int64(9), repo.lastFilter.GuildID)

	_, err = NewActivityFeedQuery(repo).Query(context.Background(), types.ActivityFilter{
		Pagination: types.Pagination{Limit: -1},
	})
	require.ErrorIs(t, err, types.ErrInvalidPagination)

	stats, err := NewActivityStatsQuery(repo).Query(context.Background(), types.ActivityStatsFilter{})
	require.NoError(t, err)
	require.Equal(t, 3, stats.ByVerb[types.VerbPrefixUpdated])

	_, err = NewActivityFeedQuery(nil).Query(context.Background(), types.ActivityFilter{})
	require.ErrorIs(t, err, types.ErrMissingActivityRepository)
}
