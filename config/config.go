// Package config loads the workbench configuration from defaults, an optional
// YAML file and WORKBENCH_ prefixed environment variables, in increasing
// order of precedence.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/goliatone/go-repository-switch/cache"
	"github.com/goliatone/go-repository-switch/domain"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "WORKBENCH"

type Config struct {
	ServiceName string `mapstructure:"service_name"`

	HTTP        HTTPConfig        `mapstructure:"http"`
	Log         LogConfig         `mapstructure:"log"`
	Remote      RemoteConfig      `mapstructure:"remote"`
	Local       LocalConfig       `mapstructure:"local"`
	Redis       RedisConfig       `mapstructure:"redis"`
	SQL         SQLConfig         `mapstructure:"sql"`
	Cache       cache.Config      `mapstructure:"cache"`
	Preferences PreferencesConfig `mapstructure:"preferences"`

	// Repositories holds the initial repository type per domain. Stored
	// preferences take precedence.
	Repositories map[string]string `mapstructure:"repositories"`
}

type HTTPConfig struct {
	Addr            string        `mapstructure:"addr"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type LogConfig struct {
	Level      string `mapstructure:"level"`
	Production bool   `mapstructure:"production"`
}

type RemoteConfig struct {
	BaseURL          string        `mapstructure:"base_url"`
	Timeout          time.Duration `mapstructure:"timeout"`
	FailureThreshold uint32        `mapstructure:"failure_threshold"`
	OpenTimeout      time.Duration `mapstructure:"open_timeout"`
}

// LocalConfig selects the blob backend of the persistent-local store.
type LocalConfig struct {
	// Backend is "file" or "redis".
	Backend string `mapstructure:"backend"`
	Dir     string `mapstructure:"dir"`
	// Seed fills empty collections with the demo fixtures.
	Seed bool `mapstructure:"seed"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// SQLConfig configures the database repository. An empty Driver disables it.
type SQLConfig struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

type PreferencesConfig struct {
	Path            string `mapstructure:"path"`
	SelectorVisible bool   `mapstructure:"selector_visible"`
}

// SetDefaults registers a default for every key.
func SetDefaults(v *viper.Viper) {
	cc := cache.DefaultConfig()

	v.SetDefault("service_name", "workbench")

	v.SetDefault("http.addr", ":8080")
	v.SetDefault("http.read_timeout", 10*time.Second)
	v.SetDefault("http.write_timeout", 10*time.Second)
	v.SetDefault("http.shutdown_timeout", 5*time.Second)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.production", false)

	v.SetDefault("remote.base_url", "http://localhost:8080/api/v1")
	v.SetDefault("remote.timeout", 5*time.Second)
	v.SetDefault("remote.failure_threshold", 5)
	v.SetDefault("remote.open_timeout", 30*time.Second)

	v.SetDefault("local.backend", "file")
	v.SetDefault("local.dir", "./data")
	v.SetDefault("local.seed", true)

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("sql.driver", "sqlite3")
	v.SetDefault("sql.dsn", "file:./data/workbench.db?_foreign_keys=on")

	v.SetDefault("cache.capacity", cc.Capacity)
	v.SetDefault("cache.num_shards", cc.NumShards)
	v.SetDefault("cache.ttl", cc.TTL)
	v.SetDefault("cache.eviction_percentage", cc.EvictionPercentage)

	v.SetDefault("preferences.path", "./data/preferences.yaml")
	v.SetDefault("preferences.selector_visible", true)

	for _, d := range domain.Domains() {
		v.SetDefault("repositories."+string(d), string(domain.Memory))
	}
}

// Load reads the configuration. path may be empty, in which case only
// defaults and environment variables apply.
func Load(path string) (*Config, error) {
	v := viper.New()
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// RepositoryType returns the configured initial tag for d.
func (c *Config) RepositoryType(d domain.Domain) (domain.RepositoryType, error) {
	raw, ok := c.Repositories[string(d)]
	if !ok || raw == "" {
		return domain.Memory, nil
	}
	return domain.ParseRepositoryType(raw)
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error

	if c.HTTP.Addr == "" {
		errs = append(errs, errors.New("http.addr is required"))
	}
	switch c.Local.Backend {
	case "file":
		if c.Local.Dir == "" {
			errs = append(errs, errors.New("local.dir is required for the file backend"))
		}
	case "redis":
		if c.Redis.Addr == "" {
			errs = append(errs, errors.New("redis.addr is required for the redis backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("local.backend must be file or redis, got %q", c.Local.Backend))
	}
	switch c.SQL.Driver {
	case "", "sqlite3", "postgres":
	default:
		errs = append(errs, fmt.Errorf("sql.driver must be sqlite3 or postgres, got %q", c.SQL.Driver))
	}
	if c.Remote.Timeout <= 0 {
		errs = append(errs, errors.New("remote.timeout must be positive"))
	}
	if err := c.Cache.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("cache: %w", err))
	}
	for _, d := range domain.Domains() {
		if _, err := c.RepositoryType(d); err != nil {
			errs = append(errs, fmt.Errorf("repositories.%s: %w", d, err))
		}
	}

	return errors.Join(errs...)
}
