package command

import (
	"context"
	"sort"
	"sync"
	"time"

	featuregate "github.com/goliatone/go-featuregate/gate"
	"github.com/goliatone/go-gamerdb/pkg/types"
)

type fakeCatalog struct {
	mu        sync.Mutex
	platforms map[int64]types.Platform
	nextID    int64
	addErr    error
	deleted   []int64
}

func newFakeCatalog(platforms ...types.Platform) *fakeCatalog {
	c := &fakeCatalog{platforms: make(map[int64]types.Platform), nextID: 100}
	for _, platform := range platforms {
		c.platforms[platform.ID] = platform
	}
	return c
}

func (c *fakeCatalog) LoadAll(context.Context) ([]types.Platform, error) {
	return c.All(), nil
}

func (c *fakeCatalog) Refresh(context.Context) error {
	return nil
}

func (c *fakeCatalog) Lookup(name string) (types.Platform, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, platform := range c.platforms {
		if platform.Name == types.NormalizeName(name) {
			return platform, true
		}
	}
	return types.Platform{}, false
}

func (c *fakeCatalog) LookupID(id int64) (types.Platform, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	platform, ok := c.platforms[id]
	return platform, ok
}

func (c *fakeCatalog) All() []types.Platform {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]types.Platform, 0, len(c.platforms))
	for _, platform := range c.platforms {
		out = append(out, platform)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (c *fakeCatalog) Add(_ context.Context, name string, iconRef int64) (types.Platform, error) {
	if c.addErr != nil {
		return types.Platform{}, c.addErr
	}
	name = types.NormalizeName(name)
	if _, ok := c.Lookup(name); ok {
		return types.Platform{}, types.DuplicatePlatformName(name, nil)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextID++
	platform := types.Platform{ID: c.nextID, Name: name, IconRef: iconRef}
	c.platforms[platform.ID] = platform
	return platform, nil
}

func (c *fakeCatalog) Delete(_ context.Context, id int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deleted = append(c.deleted, id)
	delete(c.platforms, id)
	return nil
}

type registerCall struct {
	memberID int64
	entries  []types.ProfileEntry
}

type fakeProfiles struct {
	mu          sync.Mutex
	registered  []registerCall
	unregisters [][]int64
	held        map[int64]map[int64]bool
	failMember  int64
	err         error
}

func newFakeProfiles() *fakeProfiles {
	return &fakeProfiles{held: make(map[int64]map[int64]bool)}
}

func (p *fakeProfiles) RegisterMany(_ context.Context, memberID int64, entries []types.ProfileEntry) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil && (p.failMember == 0 || p.failMember == memberID) {
		return 0, p.err
	}
	p.registered = append(p.registered, registerCall{memberID: memberID, entries: entries})
	if p.held[memberID] == nil {
		p.held[memberID] = make(map[int64]bool)
	}
	for _, entry := range entries {
		p.held[memberID][entry.PlatformID] = true
	}
	return len(entries), nil
}

func (p *fakeProfiles) UnregisterMany(_ context.Context, memberID int64, ids []int64) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return 0, p.err
	}
	p.unregisters = append(p.unregisters, ids)
	removed := 0
	for _, id := range ids {
		if p.held[memberID][id] {
			delete(p.held[memberID], id)
			removed++
		}
	}
	return removed, nil
}

func (p *fakeProfiles) ProfileFor(context.Context, int64) ([]types.ProfileItem, error) {
	return []types.ProfileItem{}, nil
}

func (p *fakeProfiles) MembersFor(context.Context, int64) ([]types.Membership, error) {
	return []types.Membership{}, nil
}

type recordingActivitySink struct {
	mu      sync.Mutex
	records []types.ActivityRecord
	err     error
	onLog   func(types.ActivityRecord)
}

func (s *recordingActivitySink) Log(_ context.Context, record types.ActivityRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, record)
	if s.onLog != nil {
		s.onLog(record)
	}
	return s.err
}

func (s *recordingActivitySink) last() types.ActivityRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.records) == 0 {
		return types.ActivityRecord{}
	}
	return s.records[len(s.records)-1]
}

type stubFeatureGate struct {
	enabled bool
	err     error
	keys    []string
}

func (s *stubFeatureGate) Enabled(_ context.Context, key string, _ ...featuregate.ResolveOption) (bool, error) {
	s.keys = append(s.keys, key)
	if s.err != nil {
		return false, s.err
	}
	return s.enabled, nil
}

type fakePrefixStore struct {
	prefixes map[int64]string
	err      error
}

func (s *fakePrefixStore) GetPrefix(_ context.Context, guildID int64) string {
	if prefix, ok := s.prefixes[guildID]; ok {
		return prefix
	}
	return types.DefaultPrefix
}

func (s *fakePrefixStore) SetPrefix(_ context.Context, guildID int64, prefix string) (*types.GuildSetting, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.prefixes == nil {
		s.prefixes = make(map[int64]string)
	}
	s.prefixes[guildID] = prefix
	return &types.GuildSetting{GuildID: guildID, Prefix: prefix, UpdatedAt: fixedNow}, nil
}

var fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

type fixedClock struct{}

func (fixedClock) Now() time.Time { return fixedNow }
