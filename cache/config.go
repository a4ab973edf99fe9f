package cache

import (
	"github.com/goliatone/go-repository-switch/internal/cacheinfra"
)

// Config configures the sturdyc backed cache service. It is an alias so the
// application config can fill it directly.
type Config = cacheinfra.Config

// EarlyRefreshConfig mirrors the underlying sturdyc early refresh options.
type EarlyRefreshConfig = cacheinfra.EarlyRefreshConfig

// DefaultConfig returns a Config populated with query cache defaults:
// no early refreshes and no missing record storage, because freshness is
// owned by the coordinator (invalidate/reset) rather than by the cache.
func DefaultConfig() Config {
	return cacheinfra.DefaultConfig()
}

// NewCacheService constructs the default cache service implementation using the provided configuration.
func NewCacheService(cfg Config) (CacheService, error) {
	svc, err := cacheinfra.NewSturdycService(cfg)
	if err != nil {
		return nil, err
	}
	return svc, nil
}
