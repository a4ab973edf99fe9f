// Package di is the composition root. It builds the cache service, the
// coordinator, one dependency container per domain with a factory for every
// repository type, and the presentation services, all from config.Config.
// It also owns the switch routine that ties the selector to the containers,
// the coordinator and the persisted preferences.
package di

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-repository-switch/cache"
	"github.com/goliatone/go-repository-switch/config"
	"github.com/goliatone/go-repository-switch/container"
	"github.com/goliatone/go-repository-switch/coordinator"
	"github.com/goliatone/go-repository-switch/domain"
	"github.com/goliatone/go-repository-switch/notify"
	"github.com/goliatone/go-repository-switch/pkg/logger"
	"github.com/goliatone/go-repository-switch/pkg/metrics"
	"github.com/goliatone/go-repository-switch/preferences"
	"github.com/goliatone/go-repository-switch/repository"
	"github.com/goliatone/go-repository-switch/repository/local"
	"github.com/goliatone/go-repository-switch/repository/memory"
	"github.com/goliatone/go-repository-switch/repository/remote"
	"github.com/goliatone/go-repository-switch/repository/sqlstore"
	"github.com/goliatone/go-repository-switch/service"
)

// Option customizes NewContainer.
type Option func(*Container)

// WithLogger replaces the zap logger built from config.
func WithLogger(l logger.Logger) Option {
	return func(c *Container) { c.logger = l }
}

// WithRegistry registers metrics on reg instead of a fresh registry.
func WithRegistry(reg *prometheus.Registry) Option {
	return func(c *Container) { c.registry = reg }
}

// WithHTTPClient sets the client used by remote repositories.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Container) { c.httpClient = client }
}

// WithBlobStore sets the blob backend of the persistent-local repositories,
// bypassing local.backend.
func WithBlobStore(blobs local.BlobStore) Option {
	return func(c *Container) { c.blobs = blobs }
}

// WithDB sets the database used by the database repositories, bypassing
// sql.driver and sql.dsn.
func WithDB(db bun.IDB) Option {
	return func(c *Container) { c.db = db }
}

// Container wires every component of the workbench.
type Container struct {
	cfg *config.Config

	logger        logger.Logger
	registry      *prometheus.Registry
	metrics       metrics.Metrics
	recorder      *notify.Recorder
	cacheService  cache.CacheService
	keySerializer cache.KeySerializer
	coordinator   *coordinator.Coordinator
	preferences   *preferences.Store

	posts    *container.Posts
	users    *container.Users
	accounts *container.Accounts

	postService    *service.Posts
	userService    *service.Users
	accountService *service.Accounts

	httpClient *http.Client

	// memory stores outlive switches, so data created while another source
	// was active is still there when switching back.
	memPosts    *memory.Store[domain.Post]
	memUsers    *memory.Store[domain.User]
	memAccounts *memory.Store[domain.Account]

	mu      sync.Mutex
	blobs   local.BlobStore
	redis   *redis.Client
	db      bun.IDB
	closers []func() error
}

// NewContainer builds the object graph. Repositories are not built until
// first use.
func NewContainer(cfg *config.Config, opts ...Option) (*Container, error) {
	if cfg == nil {
		return nil, errors.New("di: nil config")
	}
	c := &Container{cfg: cfg}
	for _, opt := range opts {
		opt(c)
	}

	if c.logger == nil {
		c.logger = logger.NewLogger(cfg.ServiceName, logger.Options{
			Level:  cfg.Log.Level,
			IsProd: cfg.Log.Production,
		})
	}
	if c.registry == nil {
		c.registry = prometheus.NewRegistry()
		c.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	c.metrics = metrics.NewPrometheusMetrics(c.registry, cfg.ServiceName)
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: cfg.Remote.Timeout}
	}

	cacheService, err := cache.NewCacheService(cfg.Cache)
	if err != nil {
		return nil, fmt.Errorf("di: cache service: %w", err)
	}
	c.cacheService = cacheService
	c.keySerializer = cache.NewDefaultKeySerializer()

	c.recorder = notify.NewRecorder(100)
	c.coordinator = coordinator.New(c.cacheService, coordinator.Options{
		Serializer: c.keySerializer,
		Notifier:   notify.Fanout{notify.NewLogNotifier(c.logger), c.recorder},
		Logger:     c.logger,
		Metrics:    c.metrics,
	})

	defaults := preferences.Preferences{
		Repositories:    make(map[domain.Domain]domain.RepositoryType),
		SelectorVisible: cfg.Preferences.SelectorVisible,
	}
	for _, d := range domain.Domains() {
		t, err := cfg.RepositoryType(d)
		if err != nil {
			return nil, err
		}
		defaults.Repositories[d] = t
	}
	c.preferences = preferences.NewStore(cfg.Preferences.Path, defaults)
	prefs, err := c.preferences.Load()
	if err != nil {
		return nil, fmt.Errorf("di: %w", err)
	}

	c.memPosts = memory.NewPosts()
	c.memUsers = memory.NewUsers()
	c.memAccounts = memory.NewAccounts()

	c.posts = container.NewPosts(defaults.Repositories[domain.Posts])
	c.users = container.NewUsers(defaults.Repositories[domain.Users])
	c.accounts = container.NewAccounts(defaults.Repositories[domain.Accounts])
	c.registerFactories()

	for _, sw := range c.switchables() {
		d := sw.Domain()
		want := prefs.RepositoryType(d, defaults.Repositories[d])
		if _, err := sw.SetRepositoryType(want); err != nil {
			c.logger.Warn(context.Background(), "stored repository type unavailable, keeping default",
				logger.String("domain", string(d)),
				logger.String("type", string(want)),
				logger.WithError(err),
			)
		}
	}

	svcOpts := service.Options{Logger: c.logger, Metrics: c.metrics}
	c.postService = service.NewPosts(c.posts, c.coordinator, svcOpts)
	c.userService = service.NewUsers(c.users, c.coordinator, svcOpts)
	c.accountService = service.NewAccounts(c.accounts, c.coordinator, svcOpts)

	return c, nil
}

// NewContainerWithDefaults builds a container from the default configuration
// with in-memory preferences.
func NewContainerWithDefaults() (*Container, error) {
	cfg, err := config.Load("")
	if err != nil {
		return nil, err
	}
	cfg.Preferences.Path = ""
	return NewContainer(cfg)
}

func (c *Container) registerFactories() {
	registerFactories(c, c.posts.Container, repository.PostHandlers(), c.memPosts, memory.SeedPosts, sqlstore.NewPosts)
	registerFactories(c, c.users.Container, repository.UserHandlers(), c.memUsers, memory.SeedUsers, sqlstore.NewUsers)
	registerFactories(c, c.accounts.Container, repository.AccountHandlers(), c.memAccounts, memory.SeedAccounts, sqlstore.NewAccounts)
}

// registerFactories registers the memory, local and remote factories on ct,
// plus the database factory when a SQL driver or handle is configured.
func registerFactories[T any, S interface {
	repository.Repository[T]
	Migrate(context.Context) error
}](
	c *Container,
	ct *container.Container[T],
	handlers repository.Handlers[T],
	mem *memory.Store[T],
	seed func() []T,
	newSQL func(bun.IDB) S,
) {
	ct.Register(domain.Memory, func(context.Context) (repository.Repository[T], error) {
		return mem, nil
	})

	ct.Register(domain.Local, func(ctx context.Context) (repository.Repository[T], error) {
		blobs, err := c.blobStore()
		if err != nil {
			return nil, err
		}
		store := local.New(blobs, handlers)
		if c.cfg.Local.Seed {
			if err := store.Seed(ctx, seed()); err != nil {
				return nil, err
			}
		}
		return store, nil
	})

	ct.Register(domain.Remote, func(context.Context) (repository.Repository[T], error) {
		return remote.New(remote.Config{
			BaseURL:          c.cfg.Remote.BaseURL,
			Timeout:          c.cfg.Remote.Timeout,
			FailureThreshold: c.cfg.Remote.FailureThreshold,
			OpenTimeout:      c.cfg.Remote.OpenTimeout,
		}, c.httpClient, handlers), nil
	})

	if c.db == nil && c.cfg.SQL.Driver == "" {
		return
	}
	ct.Register(domain.Database, func(ctx context.Context) (repository.Repository[T], error) {
		db, err := c.database()
		if err != nil {
			return nil, err
		}
		store := newSQL(db)
		if err := store.Migrate(ctx); err != nil {
			return nil, err
		}
		return store, nil
	})
}

func (c *Container) blobStore() (local.BlobStore, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.blobs != nil {
		return c.blobs, nil
	}

	switch c.cfg.Local.Backend {
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     c.cfg.Redis.Addr,
			Password: c.cfg.Redis.Password,
			DB:       c.cfg.Redis.DB,
		})
		c.closers = append(c.closers, client.Close)
		c.redis = client
		c.blobs = local.NewRedisBlobs(client)
	default:
		blobs, err := local.NewFileBlobs(c.cfg.Local.Dir)
		if err != nil {
			return nil, err
		}
		c.blobs = blobs
	}
	return c.blobs, nil
}

func (c *Container) database() (bun.IDB, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.db != nil {
		return c.db, nil
	}
	db, err := sqlstore.Open(c.cfg.SQL.Driver, c.cfg.SQL.DSN)
	if err != nil {
		return nil, err
	}
	c.closers = append(c.closers, db.Close)
	c.db = db
	return db, nil
}

// Close releases connections opened by repository factories.
func (c *Container) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		errs = append(errs, c.closers[i]())
	}
	c.closers = nil
	return errors.Join(errs...)
}

// Config returns the configuration the container was built from.
func (c *Container) Config() *config.Config {
	return c.cfg
}

func (c *Container) Logger() logger.Logger {
	return c.logger
}

func (c *Container) Metrics() metrics.Metrics {
	return c.metrics
}

// Gatherer exposes the metrics registry for the /metrics handler.
func (c *Container) Gatherer() prometheus.Gatherer {
	return c.registry
}

// Notifications returns the recent notifications.
func (c *Container) Notifications() *notify.Recorder {
	return c.recorder
}

// CacheService returns the singleton cache service instance.
func (c *Container) CacheService() cache.CacheService {
	return c.cacheService
}

// KeySerializer returns the singleton key serializer instance.
func (c *Container) KeySerializer() cache.KeySerializer {
	return c.keySerializer
}

func (c *Container) Coordinator() *coordinator.Coordinator {
	return c.coordinator
}

func (c *Container) Preferences() *preferences.Store {
	return c.preferences
}

func (c *Container) PostsContainer() *container.Posts {
	return c.posts
}

func (c *Container) UsersContainer() *container.Users {
	return c.users
}

func (c *Container) AccountsContainer() *container.Accounts {
	return c.accounts
}

func (c *Container) Posts() *service.Posts {
	return c.postService
}

func (c *Container) Users() *service.Users {
	return c.userService
}

func (c *Container) Accounts() *service.Accounts {
	return c.accountService
}

// HealthCheck verifies one backing dependency.
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// HealthChecks returns one check per domain, reading through its active
// repository, plus checks for the connections opened so far. Backends that
// were never selected are skipped.
func (c *Container) HealthChecks() []HealthCheck {
	checks := []HealthCheck{
		{Name: string(domain.Posts), Check: func(ctx context.Context) error {
			return checkRepository(ctx, c.posts.Container)
		}},
		{Name: string(domain.Users), Check: func(ctx context.Context) error {
			return checkRepository(ctx, c.users.Container)
		}},
		{Name: string(domain.Accounts), Check: func(ctx context.Context) error {
			return checkRepository(ctx, c.accounts.Container)
		}},
	}
	checks = append(checks, HealthCheck{
		Name: "preferences",
		Check: func(context.Context) error {
			_, err := c.preferences.Load()
			return err
		},
	})
	checks = append(checks, HealthCheck{
		Name: "redis",
		Check: func(ctx context.Context) error {
			c.mu.Lock()
			client := c.redis
			c.mu.Unlock()
			if client == nil {
				return nil
			}
			return client.Ping(ctx).Err()
		},
	})
	checks = append(checks, HealthCheck{
		Name: "database",
		Check: func(ctx context.Context) error {
			c.mu.Lock()
			db := c.db
			c.mu.Unlock()
			pinger, ok := db.(interface{ PingContext(context.Context) error })
			if !ok {
				return nil
			}
			return pinger.PingContext(ctx)
		},
	})
	return checks
}

// checkRepository resolves the active repository of ct and lists through it,
// bypassing the query cache.
func checkRepository[T any](ctx context.Context, ct *container.Container[T]) error {
	repo, err := ct.Repository(ctx)
	if err != nil {
		return err
	}
	if _, err := repo.FindAll(ctx, domain.Scope{}); err != nil {
		return fmt.Errorf("%s: %w", ct.RepositoryType(), err)
	}
	return nil
}
