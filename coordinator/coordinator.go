package coordinator

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/puzpuzpuz/xsync/v3"

	"github.com/goliatone/go-repository-switch/cache"
	"github.com/goliatone/go-repository-switch/domain"
	"github.com/goliatone/go-repository-switch/notify"
	"github.com/goliatone/go-repository-switch/pkg/logger"
	"github.com/goliatone/go-repository-switch/pkg/metrics"
)

// Family groups cache keys of one query shape.
type Family string

const (
	ListFamily   Family = "list"
	DetailFamily Family = "detail"
)

// Key identifies a cached query independently of the epoch.
type Key struct {
	Domain domain.Domain
	Family Family
	Params []any
}

// ListKey is the key of a domain collection query.
func ListKey(d domain.Domain, scope domain.Scope) Key {
	return Key{Domain: d, Family: ListFamily, Params: []any{scope.AccountID}}
}

// DetailKey is the key of a single entity query.
func DetailKey(d domain.Domain, id int64) Key {
	return Key{Domain: d, Family: DetailFamily, Params: []any{id}}
}

// EntryState describes a cached entry from a reader's point of view.
type EntryState int

const (
	NeverFetched EntryState = iota
	Fresh
	Stale
)

func (s EntryState) String() string {
	switch s {
	case Fresh:
		return "fresh"
	case Stale:
		return "stale"
	default:
		return "never_fetched"
	}
}

// Options configures a Coordinator. Nil fields get no-op defaults.
type Options struct {
	Serializer cache.KeySerializer
	Notifier   notify.Notifier
	Logger     logger.Logger
	Metrics    metrics.Metrics
}

// Coordinator owns epoch bookkeeping and optimistic state on top of a
// CacheService. It is safe for concurrent use.
type Coordinator struct {
	cache    cache.CacheService
	keys     cache.KeySerializer
	notifier notify.Notifier
	logger   logger.Logger
	metrics  metrics.Metrics

	epochs   *xsync.MapOf[domain.Domain, *atomic.Uint64]
	gens     *xsync.MapOf[domain.Domain, *atomic.Uint64]
	locks    *xsync.MapOf[domain.Domain, *sync.RWMutex]
	stale    *xsync.MapOf[string, struct{}]
	versions *xsync.MapOf[string, uint64]
}

// New creates a Coordinator over svc.
func New(svc cache.CacheService, opts Options) *Coordinator {
	if opts.Serializer == nil {
		opts.Serializer = cache.NewDefaultKeySerializer()
	}
	if opts.Logger == nil {
		opts.Logger = logger.Nop()
	}
	if opts.Notifier == nil {
		opts.Notifier = notify.NewLogNotifier(opts.Logger)
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.Nop()
	}
	return &Coordinator{
		cache:    svc,
		keys:     opts.Serializer,
		notifier: opts.Notifier,
		logger:   opts.Logger,
		metrics:  opts.Metrics,
		epochs:   xsync.NewMapOf[domain.Domain, *atomic.Uint64](),
		gens:     xsync.NewMapOf[domain.Domain, *atomic.Uint64](),
		locks:    xsync.NewMapOf[domain.Domain, *sync.RWMutex](),
		stale:    xsync.NewMapOf[string, struct{}](),
		versions: xsync.NewMapOf[string, uint64](),
	}
}

// Notifier exposes the notifier so services share one sink.
func (c *Coordinator) Notifier() notify.Notifier {
	return c.notifier
}

// Epoch returns the current epoch of d.
func (c *Coordinator) Epoch(d domain.Domain) uint64 {
	return c.counter(d).Load()
}

func (c *Coordinator) counter(d domain.Domain) *atomic.Uint64 {
	v, _ := c.epochs.LoadOrCompute(d, func() *atomic.Uint64 { return new(atomic.Uint64) })
	return v
}

// generation counts invalidations and optimistic writes of d. A fetch that
// saw the generation move must not cache its result.
func (c *Coordinator) generation(d domain.Domain) uint64 {
	return c.gen(d).Load()
}

func (c *Coordinator) touch(d domain.Domain) {
	c.gen(d).Add(1)
}

func (c *Coordinator) gen(d domain.Domain) *atomic.Uint64 {
	v, _ := c.gens.LoadOrCompute(d, func() *atomic.Uint64 { return new(atomic.Uint64) })
	return v
}

func (c *Coordinator) lock(d domain.Domain) *sync.RWMutex {
	v, _ := c.locks.LoadOrCompute(d, func() *sync.RWMutex { return new(sync.RWMutex) })
	return v
}

func (c *Coordinator) render(k Key, epoch uint64) string {
	args := make([]any, 0, len(k.Params)+2)
	args = append(args, strconv.FormatUint(epoch, 10), string(k.Family))
	args = append(args, k.Params...)
	return c.keys.SerializeKey(string(k.Domain), args...)
}

func domainPrefix(d domain.Domain) string {
	return cache.Prefix(string(d))
}

func epochPrefix(d domain.Domain, epoch uint64) string {
	return cache.Prefix(string(d), strconv.FormatUint(epoch, 10))
}

func (c *Coordinator) bump(key string) uint64 {
	v, _ := c.versions.Compute(key, func(old uint64, _ bool) (uint64, bool) {
		return old + 1, false
	})
	return v
}

func (c *Coordinator) version(key string) uint64 {
	v, _ := c.versions.Load(key)
	return v
}

func (c *Coordinator) write(ctx context.Context, key string, value any, present bool) error {
	c.bump(key)
	c.stale.Delete(key)
	if !present {
		return c.cache.Delete(ctx, key)
	}
	return c.cache.Set(ctx, key, value)
}

func (c *Coordinator) canceled(k Key) error {
	c.metrics.IncStaleReadDiscarded(string(k.Domain))
	return &domain.Error{
		Category: domain.CategoryCanceled,
		Message:  fmt.Sprintf("%s %s query canceled by repository switch", k.Domain, k.Family),
	}
}

// fetchResult carries a fetch result through the cache service as an error,
// so concurrent callers share one fetch while only the coordinator decides
// whether the result may be stored. gen is the domain write generation at
// the moment the fetch started.
type fetchResult[T any] struct {
	value T
	gen   uint64
}

func (*fetchResult[T]) Error() string { return "coordinator: uncommitted fetch result" }

// Query reads k through the cache, fetching on a miss or when the entry is
// stale. Results of reads that were in flight during a repository switch are
// discarded and reported as domain.ErrCanceled. A result whose fetch overlapped
// an invalidation or an optimistic write is returned but not cached.
func Query[T any](ctx context.Context, c *Coordinator, k Key, fetch cache.FetchFn[T]) (T, error) {
	var zero T
	epoch := c.Epoch(k.Domain)
	key := c.render(k, epoch)

	if _, stale := c.stale.Load(key); stale {
		gen := c.generation(k.Domain)
		v, err := fetch(ctx)
		if err != nil {
			return zero, err
		}
		return commit(ctx, c, k, epoch, key, &fetchResult[T]{value: v, gen: gen})
	}

	cached, err := c.cache.GetOrFetch(ctx, key, func(ctx context.Context) (any, error) {
		gen := c.generation(k.Domain)
		v, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		return nil, &fetchResult[T]{value: v, gen: gen}
	})

	var result *fetchResult[T]
	if errors.As(err, &result) {
		return commit(ctx, c, k, epoch, key, result)
	}

	mu := c.lock(k.Domain)
	mu.RLock()
	defer mu.RUnlock()
	if c.Epoch(k.Domain) != epoch {
		return zero, c.canceled(k)
	}
	if err != nil {
		return zero, err
	}
	v, ok := cached.(T)
	if !ok && cached != nil {
		return zero, fmt.Errorf("coordinator: cached %s has type %T", key, cached)
	}
	c.metrics.IncCacheHit(string(k.Domain))
	return v, nil
}

// commit stores a fetch result when neither the epoch nor the write
// generation of the domain moved while it was fetched.
func commit[T any](ctx context.Context, c *Coordinator, k Key, epoch uint64, key string, r *fetchResult[T]) (T, error) {
	var zero T
	mu := c.lock(k.Domain)
	mu.Lock()
	defer mu.Unlock()

	if c.Epoch(k.Domain) != epoch {
		return zero, c.canceled(k)
	}
	c.metrics.IncCacheMiss(string(k.Domain))
	if c.generation(k.Domain) != r.gen {
		c.logger.Debug(ctx, "query result superseded while fetching, not cached",
			logger.String("domain", string(k.Domain)),
			logger.String("key", key),
		)
		return r.value, nil
	}
	if err := c.write(ctx, key, r.value, true); err != nil {
		return zero, err
	}
	return r.value, nil
}

// Peek returns the cached value of k without fetching. Stale entries are
// returned too.
func Peek[T any](ctx context.Context, c *Coordinator, k Key) (T, bool) {
	v, ok, err := cache.Peek[T](ctx, c.cache, c.render(k, c.Epoch(k.Domain)))
	if err != nil {
		return v, false
	}
	return v, ok
}

// State reports whether k is never fetched, fresh or stale.
func (c *Coordinator) State(ctx context.Context, k Key) EntryState {
	key := c.render(k, c.Epoch(k.Domain))
	if _, ok := c.cache.Peek(ctx, key); !ok {
		return NeverFetched
	}
	if _, ok := c.stale.Load(key); ok {
		return Stale
	}
	return Fresh
}

// Set writes value under k for the current epoch.
func Set[T any](ctx context.Context, c *Coordinator, k Key, value T) error {
	mu := c.lock(k.Domain)
	mu.RLock()
	defer mu.RUnlock()
	c.touch(k.Domain)
	return c.write(ctx, c.render(k, c.Epoch(k.Domain)), value, true)
}

// Invalidate marks k stale when it is cached. Reads of the domain that are
// in flight will not cache their result.
func (c *Coordinator) Invalidate(ctx context.Context, k Key) {
	mu := c.lock(k.Domain)
	mu.RLock()
	defer mu.RUnlock()
	c.touch(k.Domain)
	key := c.render(k, c.Epoch(k.Domain))
	if _, ok := c.cache.Peek(ctx, key); ok {
		c.stale.Store(key, struct{}{})
	}
}

// InvalidateDomain marks every cached entry of d stale. Reads of d that are
// in flight will not cache their result.
func (c *Coordinator) InvalidateDomain(ctx context.Context, d domain.Domain) {
	mu := c.lock(d)
	mu.RLock()
	defer mu.RUnlock()
	c.touch(d)
	prefix := epochPrefix(d, c.Epoch(d))
	for _, key := range c.cache.Keys(ctx) {
		if strings.HasPrefix(key, prefix) {
			c.stale.Store(key, struct{}{})
		}
	}
}

// Cancel rejects every read of d that is currently in flight. The reads keep
// running; their results are discarded when they settle.
func (c *Coordinator) Cancel(d domain.Domain) uint64 {
	return c.counter(d).Add(1)
}

// Reset removes every cached entry of d, across all epochs.
func (c *Coordinator) Reset(ctx context.Context, d domain.Domain) error {
	prefix := domainPrefix(d)
	if err := c.cache.DeleteByPrefix(ctx, prefix); err != nil {
		return err
	}
	c.stale.Range(func(key string, _ struct{}) bool {
		if strings.HasPrefix(key, prefix) {
			c.stale.Delete(key)
		}
		return true
	})
	c.versions.Range(func(key string, _ uint64) bool {
		if strings.HasPrefix(key, prefix) {
			c.versions.Delete(key)
		}
		return true
	})
	return nil
}

// OnRepositoryTypeChanged cancels in-flight reads of d, resets its cache and
// notifies that the new source is active. Cancel and reset run under the
// domain write lock, so a racing read can not repopulate the cache between
// them.
func (c *Coordinator) OnRepositoryTypeChanged(ctx context.Context, d domain.Domain, t domain.RepositoryType) error {
	mu := c.lock(d)
	mu.Lock()
	epoch := c.Cancel(d)
	err := c.Reset(ctx, d)
	mu.Unlock()

	if err != nil {
		c.logger.Error(ctx, "query cache reset failed",
			logger.String("domain", string(d)),
			logger.WithError(err),
		)
		c.notifier.Notify(ctx, notify.Failure(err))
		return err
	}

	c.metrics.RecordRepositorySwitch(string(d), string(t))
	c.logger.Info(ctx, "repository type changed",
		logger.String("domain", string(d)),
		logger.String("type", string(t)),
		logger.Any("epoch", epoch),
	)
	c.notifier.Notify(ctx, notify.Success(fmt.Sprintf("Switched %s to %s", d, t.Label())))
	return nil
}
