package guilds

import (
	"time"

	"github.com/goliatone/go-repository-cache/cache"
)

// RepositoryOption tunes NewRepository.
type RepositoryOption func(*repositoryOptions)

type repositoryOptions struct {
	cached   bool
	ttl      time.Duration
	capacity int
}

// WithCache puts go-repository-cache in front of guild reads. Rows are
// cached per guild id and dropped when that guild is written.
func WithCache(enabled bool) RepositoryOption {
	return func(o *repositoryOptions) { o.cached = enabled }
}

// WithCacheTTL bounds how long a cached guild row is served. Zero keeps the
// cache default.
func WithCacheTTL(ttl time.Duration) RepositoryOption {
	return func(o *repositoryOptions) { o.ttl = ttl }
}

// WithCacheCapacity caps the number of cached guild rows. Zero keeps the
// cache default.
func WithCacheCapacity(n int) RepositoryOption {
	return func(o *repositoryOptions) { o.capacity = n }
}

func collectOptions(options []RepositoryOption) repositoryOptions {
	var o repositoryOptions
	for _, opt := range options {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}

func (o repositoryOptions) cacheConfig() cache.Config {
	cfg := cache.DefaultConfig()
	if o.ttl > 0 {
		cfg.TTL = o.ttl
	}
	if o.capacity > 0 {
		cfg.Capacity = o.capacity
	}
	return cfg
}
