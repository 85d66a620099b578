package catalog

import (
	"context"
	"errors"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/goliatone/go-gamerdb/pkg/types"
)

// Config wires the catalog to its durable store.
type Config struct {
	Repository types.PlatformRepository
	Logger     types.Logger
}

// Catalog serves platform lookups from an immutable snapshot. Readers load
// the current snapshot pointer and never observe a partially built map.
type Catalog struct {
	repo    types.PlatformRepository
	logger  types.Logger
	current atomic.Pointer[snapshot]
	// refreshMu orders refreshes so an older load cannot replace a newer one.
	refreshMu sync.Mutex
}

type snapshot struct {
	ordered []types.Platform
	byName  map[string]types.Platform
	byID    map[int64]types.Platform
}

// New constructs a catalog with an empty snapshot. Call Refresh once the
// schema exists to populate it.
func New(cfg Config) (*Catalog, error) {
	if cfg.Repository == nil {
		return nil, errors.New("catalog: repository required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = types.NopLogger{}
	}
	c := &Catalog{
		repo:   cfg.Repository,
		logger: logger,
	}
	c.current.Store(newSnapshot(nil))
	return c, nil
}

var _ types.PlatformCatalog = (*Catalog)(nil)

// LoadAll reads every platform from storage ordered by name.
func (c *Catalog) LoadAll(ctx context.Context) ([]types.Platform, error) {
	return c.repo.ListPlatforms(ctx)
}

// Refresh rebuilds the snapshot from storage and publishes it in one swap.
// On failure the previous snapshot stays in place.
func (c *Catalog) Refresh(ctx context.Context) error {
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()

	platforms, err := c.LoadAll(ctx)
	if err != nil {
		c.logger.Error("catalog: refresh failed", err)
		return err
	}
	c.current.Store(newSnapshot(platforms))
	c.logger.Debug("catalog: refreshed", "platforms", len(platforms))
	return nil
}

// Lookup resolves a platform by name, ignoring case and surrounding space.
func (c *Catalog) Lookup(name string) (types.Platform, bool) {
	platform, ok := c.current.Load().byName[types.NormalizeName(name)]
	return platform, ok
}

// LookupID resolves a platform by id.
func (c *Catalog) LookupID(id int64) (types.Platform, bool) {
	platform, ok := c.current.Load().byID[id]
	return platform, ok
}

// All returns the cached platforms ordered by name.
func (c *Catalog) All() []types.Platform {
	ordered := c.current.Load().ordered
	out := make([]types.Platform, len(ordered))
	copy(out, ordered)
	return out
}

// Len reports the number of cached platforms.
func (c *Catalog) Len() int {
	return len(c.current.Load().ordered)
}

// Add persists a new platform and refreshes the snapshot. Duplicate names or
// icons leave the snapshot untouched.
func (c *Catalog) Add(ctx context.Context, name string, iconRef int64) (types.Platform, error) {
	created, err := c.repo.CreatePlatform(ctx, name, iconRef)
	if err != nil {
		return types.Platform{}, err
	}
	if err := c.Refresh(ctx); err != nil {
		return *created, err
	}
	c.logger.Info("catalog: platform added", "platform", created.Name, "id", created.ID)
	return *created, nil
}

// Delete removes a platform and its profile edges. Unknown ids are a no-op.
func (c *Catalog) Delete(ctx context.Context, id int64) error {
	removed, err := c.repo.DeletePlatform(ctx, id)
	if err != nil {
		return err
	}
	if !removed {
		return nil
	}
	c.logger.Info("catalog: platform deleted", "id", id)
	return c.Refresh(ctx)
}

func newSnapshot(platforms []types.Platform) *snapshot {
	ordered := make([]types.Platform, len(platforms))
	copy(ordered, platforms)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Name < ordered[j].Name
	})
	snap := &snapshot{
		ordered: ordered,
		byName:  make(map[string]types.Platform, len(ordered)),
		byID:    make(map[int64]types.Platform, len(ordered)),
	}
	for _, platform := range ordered {
		snap.byName[types.NormalizeName(platform.Name)] = platform
		snap.byID[platform.ID] = platform
	}
	return snap
}
