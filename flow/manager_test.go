package flow

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/goliatone/go-gamerdb/pkg/types"
	"github.com/stretchr/testify/require"
)

var (
	steam  = types.Platform{ID: 1, Name: "steam", IconRef: 101}
	origin = types.Platform{ID: 2, Name: "origin", IconRef: 102}
	xbox   = types.Platform{ID: 3, Name: "xbox", IconRef: 103}
)

func TestManager_RegisterFlowCommitsOnce(t *testing.T) {
	ctx := context.Background()
	profiles := &fakeProfiles{}
	var committed []Result
	mgr := newTestManager(t, profiles, func(cfg *Config) {
		cfg.AfterCommit = func(_ context.Context, result Result) {
			committed = append(committed, result)
		}
	})

	f, err := mgr.Start(ctx, Request{Kind: KindRegister, MemberID: 42, GuildID: 7, Gamertag: "Gamer42"})
	require.NoError(t, err)
	require.Equal(t, StateIdle, f.State())

	options, err := f.Present()
	require.NoError(t, err)
	require.Equal(t, []types.Platform{origin, steam, xbox}, options)
	require.Equal(t, StateAwaitingSelection, f.State())

	result, err := mgr.Receive(ctx, Selection{FlowID: f.ID(), MemberID: 42, PlatformIDs: []int64{steam.ID, origin.ID, steam.ID}})
	require.NoError(t, err)
	require.False(t, result.NoChange)
	require.Equal(t, []types.Platform{origin, steam}, result.Platforms)
	require.Equal(t, 2, result.Count)
	require.Equal(t, StateDone, f.State())
	require.Equal(t, "user info for **Origin**, **Steam** has been registered!", result.Confirmation())

	require.Equal(t, 1, profiles.registerCalls)
	require.Equal(t, []types.ProfileEntry{
		{Gamertag: "Gamer42", PlatformID: origin.ID},
		{Gamertag: "Gamer42", PlatformID: steam.ID},
	}, profiles.lastEntries)
	require.Len(t, committed, 1)

	_, err = mgr.Receive(ctx, Selection{FlowID: f.ID(), MemberID: 42, PlatformIDs: []int64{xbox.ID}})
	require.ErrorIs(t, err, ErrUnknownFlow)
	require.Equal(t, 1, profiles.registerCalls)
	require.Zero(t, mgr.Pending())
}

func TestManager_UnregisterOffersOnlyHeldPlatforms(t *testing.T) {
	ctx := context.Background()
	profiles := &fakeProfiles{
		items: []types.ProfileItem{
			{PlatformID: xbox.ID, PlatformName: xbox.Name, IconRef: xbox.IconRef, Gamertag: "x"},
			{PlatformID: steam.ID, PlatformName: steam.Name, IconRef: steam.IconRef, Gamertag: "s"},
		},
	}
	mgr := newTestManager(t, profiles)

	f, err := mgr.Start(ctx, Request{Kind: KindUnregister, MemberID: 42})
	require.NoError(t, err)
	options, err := f.Present()
	require.NoError(t, err)
	require.Equal(t, []types.Platform{steam, xbox}, options)

	_, err = mgr.Receive(ctx, Selection{FlowID: f.ID(), MemberID: 42, PlatformIDs: []int64{origin.ID}})
	require.ErrorIs(t, err, types.ErrPlatformNotFound)
	require.True(t, types.IsNotFound(err))
	require.Zero(t, profiles.unregisterCalls)
	require.Equal(t, StateFailed, f.State())
}

func TestManager_UnregisterWithNothingHeld(t *testing.T) {
	mgr := newTestManager(t, &fakeProfiles{})
	_, err := mgr.Start(context.Background(), Request{Kind: KindUnregister, MemberID: 42})
	require.ErrorIs(t, err, ErrNoOptions)
	require.Zero(t, mgr.Pending())
}

func TestManager_EmptySelectionIsNoChange(t *testing.T) {
	ctx := context.Background()
	profiles := &fakeProfiles{}
	mgr := newTestManager(t, profiles)

	f, err := mgr.Start(ctx, Request{Kind: KindRegister, MemberID: 42, Gamertag: "Gamer42"})
	require.NoError(t, err)
	_, err = f.Present()
	require.NoError(t, err)

	result, err := mgr.Receive(ctx, Selection{FlowID: f.ID(), MemberID: 42})
	require.NoError(t, err)
	require.True(t, result.NoChange)
	require.Empty(t, result.Platforms)
	require.Zero(t, profiles.registerCalls)
	require.Equal(t, StateDone, f.State())
}

func TestManager_SelectionFromAnotherMemberKeepsFlowPending(t *testing.T) {
	ctx := context.Background()
	profiles := &fakeProfiles{}
	mgr := newTestManager(t, profiles)

	f, err := mgr.Start(ctx, Request{Kind: KindRegister, MemberID: 42, Gamertag: "Gamer42"})
	require.NoError(t, err)
	_, err = f.Present()
	require.NoError(t, err)

	_, err = mgr.Receive(ctx, Selection{FlowID: f.ID(), MemberID: 99, PlatformIDs: []int64{steam.ID}})
	require.ErrorIs(t, err, ErrNotOwner)
	require.Equal(t, 1, mgr.Pending())

	_, err = mgr.Receive(ctx, Selection{FlowID: f.ID(), MemberID: 42, PlatformIDs: []int64{steam.ID}})
	require.NoError(t, err)
	require.Equal(t, 1, profiles.registerCalls)
}

func TestManager_ExpiredFlowHasNoEffect(t *testing.T) {
	ctx := context.Background()
	profiles := &fakeProfiles{}
	clock := &manualClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	mgr := newTestManager(t, profiles, func(cfg *Config) {
		cfg.Clock = clock
		cfg.TTL = time.Minute
	})

	f, err := mgr.Start(ctx, Request{Kind: KindRegister, MemberID: 42, Gamertag: "Gamer42"})
	require.NoError(t, err)
	_, err = f.Present()
	require.NoError(t, err)

	clock.advance(2 * time.Minute)
	_, err = mgr.Receive(ctx, Selection{FlowID: f.ID(), MemberID: 42, PlatformIDs: []int64{steam.ID}})
	require.ErrorIs(t, err, ErrExpired)
	require.Equal(t, StateExpired, f.State())
	require.Zero(t, profiles.registerCalls)
}

func TestManager_SweepPrunesExpiredFlows(t *testing.T) {
	ctx := context.Background()
	clock := &manualClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	mgr := newTestManager(t, &fakeProfiles{}, func(cfg *Config) {
		cfg.Clock = clock
	})

	old, err := mgr.Start(ctx, Request{Kind: KindRegister, MemberID: 1, Gamertag: "one"})
	require.NoError(t, err)
	clock.advance(2 * time.Minute)
	fresh, err := mgr.Start(ctx, Request{Kind: KindRegister, MemberID: 2, Gamertag: "two"})
	require.NoError(t, err)

	removed := mgr.Sweep(clock.Now().Add(90 * time.Second))
	require.Equal(t, 1, removed)
	require.Equal(t, StateExpired, old.State())
	_, ok := mgr.Get(old.ID())
	require.False(t, ok)
	_, ok = mgr.Get(fresh.ID())
	require.True(t, ok)
}

func TestManager_CommitFailureFailsFlowWithoutRetry(t *testing.T) {
	ctx := context.Background()
	storageErr := types.StorageUnavailable(errors.New("database is locked"))
	profiles := &fakeProfiles{err: storageErr}
	mgr := newTestManager(t, profiles)

	f, err := mgr.Start(ctx, Request{Kind: KindRegister, MemberID: 42, Gamertag: "Gamer42"})
	require.NoError(t, err)
	_, err = f.Present()
	require.NoError(t, err)

	_, err = mgr.Receive(ctx, Selection{FlowID: f.ID(), MemberID: 42, PlatformIDs: []int64{steam.ID}})
	require.Same(t, storageErr, err)
	require.Equal(t, StateFailed, f.State())
	require.Same(t, storageErr, f.Err())
	require.Equal(t, 1, profiles.registerCalls)

	_, err = mgr.Receive(ctx, Selection{FlowID: f.ID(), MemberID: 42, PlatformIDs: []int64{steam.ID}})
	require.ErrorIs(t, err, ErrUnknownFlow)
	require.Equal(t, 1, profiles.registerCalls)
}

func TestManager_ConcurrentSelectionsCommitOnce(t *testing.T) {
	ctx := context.Background()
	profiles := &fakeProfiles{}
	mgr := newTestManager(t, profiles)

	f, err := mgr.Start(ctx, Request{Kind: KindRegister, MemberID: 42, Gamertag: "Gamer42"})
	require.NoError(t, err)
	_, err = f.Present()
	require.NoError(t, err)

	var wg sync.WaitGroup
	var mu sync.Mutex
	successes := 0
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := mgr.Receive(ctx, Selection{FlowID: f.ID(), MemberID: 42, PlatformIDs: []int64{steam.ID}}); err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	require.Equal(t, 1, successes)
	require.Equal(t, 1, profiles.calls())
}

func TestManager_StartValidatesRequest(t *testing.T) {
	ctx := context.Background()
	mgr := newTestManager(t, &fakeProfiles{})

	_, err := mgr.Start(ctx, Request{Kind: KindRegister, Gamertag: "x"})
	require.ErrorIs(t, err, types.ErrMemberIDRequired)

	_, err = mgr.Start(ctx, Request{Kind: KindRegister, MemberID: 1, Gamertag: "  "})
	require.ErrorIs(t, err, types.ErrGamertagRequired)

	_, err = mgr.Start(ctx, Request{Kind: Kind(99), MemberID: 1})
	require.ErrorIs(t, err, ErrUnknownKind)
}

func TestManager_RegisterWithEmptyCatalog(t *testing.T) {
	mgr, err := NewManager(Config{Catalog: &fakeCatalog{}, Profiles: &fakeProfiles{}})
	require.NoError(t, err)
	_, err = mgr.Start(context.Background(), Request{Kind: KindRegister, MemberID: 1, Gamertag: "x"})
	require.ErrorIs(t, err, ErrNoOptions)
}

func TestManager_SelectionBeforePresentKeepsFlowPending(t *testing.T) {
	ctx := context.Background()
	profiles := &fakeProfiles{}
	mgr := newTestManager(t, profiles)

	f, err := mgr.Start(ctx, Request{Kind: KindRegister, MemberID: 42, Gamertag: "Gamer42"})
	require.NoError(t, err)

	_, err = mgr.Receive(ctx, Selection{FlowID: f.ID(), MemberID: 42, PlatformIDs: []int64{steam.ID}})
	require.ErrorIs(t, err, ErrInvalidTransition)
	require.Equal(t, 1, mgr.Pending())
	require.Equal(t, StateIdle, f.State())
	require.Zero(t, profiles.registerCalls)

	_, err = f.Present()
	require.NoError(t, err)
	result, err := mgr.Receive(ctx, Selection{FlowID: f.ID(), MemberID: 42, PlatformIDs: []int64{steam.ID}})
	require.NoError(t, err)
	require.Equal(t, []types.Platform{steam}, result.Platforms)
	require.Zero(t, mgr.Pending())
}

func TestFlow_PresentTwiceIsInvalid(t *testing.T) {
	mgr := newTestManager(t, &fakeProfiles{})
	f, err := mgr.Start(context.Background(), Request{Kind: KindRegister, MemberID: 1, Gamertag: "x"})
	require.NoError(t, err)
	_, err = f.Present()
	require.NoError(t, err)
	_, err = f.Present()
	require.ErrorIs(t, err, ErrInvalidTransition)
}

func TestResult_Confirmation(t *testing.T) {
	result := Result{Kind: KindUnregister, Platforms: []types.Platform{{Name: "battle.net"}}}
	require.Equal(t, "user info for **Battle.Net** has been unregistered!", result.Confirmation())
	require.Equal(t, "no platforms were selected, nothing changed", Result{NoChange: true}.Confirmation())
}

func newTestManager(t *testing.T, profiles *fakeProfiles, opts ...func(*Config)) *Manager {
	t.Helper()
	cfg := Config{
		Catalog:  &fakeCatalog{platforms: []types.Platform{origin, steam, xbox}},
		Profiles: profiles,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	mgr, err := NewManager(cfg)
	require.NoError(t, err)
	return mgr
}

type fakeCatalog struct {
	platforms []types.Platform
}

func (f *fakeCatalog) LoadAll(context.Context) ([]types.Platform, error) {
	return f.All(), nil
}

func (f *fakeCatalog) Refresh(context.Context) error {
	return nil
}

func (f *fakeCatalog) Lookup(name string) (types.Platform, bool) {
	for _, platform := range f.platforms {
		if platform.Name == types.NormalizeName(name) {
			return platform, true
		}
	}
	return types.Platform{}, false
}

func (f *fakeCatalog) LookupID(id int64) (types.Platform, bool) {
	for _, platform := range f.platforms {
		if platform.ID == id {
			return platform, true
		}
	}
	return types.Platform{}, false
}

func (f *fakeCatalog) All() []types.Platform {
	return append([]types.Platform(nil), f.platforms...)
}

func (f *fakeCatalog) Add(context.Context, string, int64) (types.Platform, error) {
	return types.Platform{}, errors.New("not implemented")
}

func (f *fakeCatalog) Delete(context.Context, int64) error {
	return nil
}

type fakeProfiles struct {
	mu              sync.Mutex
	items           []types.ProfileItem
	err             error
	registerCalls   int
	unregisterCalls int
	lastEntries     []types.ProfileEntry
}

func (f *fakeProfiles) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.registerCalls + f.unregisterCalls
}

func (f *fakeProfiles) RegisterMany(_ context.Context, _ int64, entries []types.ProfileEntry) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.registerCalls++
	f.lastEntries = entries
	if f.err != nil {
		return 0, f.err
	}
	return len(entries), nil
}

func (f *fakeProfiles) UnregisterMany(_ context.Context, _ int64, ids []int64) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.unregisterCalls++
	if f.err != nil {
		return 0, f.err
	}
	return len(ids), nil
}

func (f *fakeProfiles) ProfileFor(context.Context, int64) ([]types.ProfileItem, error) {
	return append([]types.ProfileItem(nil), f.items...), nil
}

func (f *fakeProfiles) MembersFor(context.Context, int64) ([]types.Membership, error) {
	return nil, nil
}

type manualClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
