// Package cache provides the query cache abstraction and key serialization used
// by the coordinator.
//
// # Overview
//
//   - CacheService: read-through GetOrFetch plus Peek/Set for optimistic
//     writes and Delete/DeleteByPrefix for invalidation and reset
//   - KeySerializer: builds stable keys from a namespace and arguments
//
// The default implementation wraps sturdyc, which also deduplicates concurrent
// fetches of the same key.
//
// # Basic Usage
//
//	svc, _ := cache.NewCacheService(cache.DefaultConfig())
//	key := cache.NewDefaultKeySerializer().SerializeKey("posts", 3, "list", 1)
//	posts, err := cache.GetOrFetch(ctx, svc, key, func(ctx context.Context) ([]domain.Post, error) {
//		return repo.FindAll(ctx, domain.ForAccount(1))
//	})
//
// # Key Layout
//
// Keys are segments joined by KeySeparator. Because invalidation works on
// prefixes, the most general segment must come first (domain, then epoch,
// then query family, then parameters). Prefix builds a prefix that only
// matches whole segments.
package cache
