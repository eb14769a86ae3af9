package schemata

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aretw0/schemata/internal/logging"
	"github.com/aretw0/schemata/pkg/adapters/memory"
	"github.com/aretw0/schemata/pkg/adapters/redis"
	"gopkg.in/yaml.v3"
)

// Cache backends accepted by CacheConfig.Backend.
const (
	CacheMemory = "memory"
	CacheRedis  = "redis"
)

// CacheConfig selects and configures the outcome cache.
type CacheConfig struct {
	Backend  string `yaml:"backend" json:"backend"`
	Addr     string `yaml:"addr" json:"addr"`
	Password string `yaml:"password" json:"password"`
	DB       int    `yaml:"db" json:"db"`
	Prefix   string `yaml:"prefix" json:"prefix"`
	TTL      string `yaml:"ttl" json:"ttl"` // Go duration, e.g. "10m"; empty means no expiry
}

// Config is the file form of the validator options (schemata.yaml or .json).
type Config struct {
	Engine   EngineKind  `yaml:"engine" json:"engine"`
	MaxDepth int         `yaml:"max_depth" json:"max_depth"`
	LogLevel string      `yaml:"log_level" json:"log_level"`
	Cache    CacheConfig `yaml:"cache" json:"cache"`
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() Config {
	return Config{
		Engine:   EngineNative,
		LogLevel: "warn",
		Cache:    CacheConfig{Backend: CacheMemory},
	}
}

// LoadConfig reads a configuration file (YAML or JSON, by extension).
// A missing file yields DefaultConfig; keys absent from the file keep their defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".json" {
		if err := json.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
		}
	} else {
		// Default to YAML
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
		}
	}

	return cfg, nil
}

// Options translates the configuration into validator options. A Redis cache
// is opened here and closed by Validator.Close.
func (c Config) Options() ([]Option, error) {
	var opts []Option

	if c.Engine != "" {
		opts = append(opts, WithEngine(c.Engine))
	}
	if c.MaxDepth < 0 {
		return nil, fmt.Errorf("max_depth must not be negative, got %d", c.MaxDepth)
	}
	if c.MaxDepth > 0 {
		opts = append(opts, WithMaxDepth(c.MaxDepth))
	}

	if c.LogLevel != "" {
		level, err := logging.ParseLevel(c.LogLevel)
		if err != nil {
			return nil, err
		}
		opts = append(opts, WithLogger(logging.New(level)))
	}

	switch strings.ToLower(c.Cache.Backend) {
	case "", CacheMemory:
		opts = append(opts, WithCache(memory.NewCache()))
	case CacheRedis:
		if c.Cache.Addr == "" {
			return nil, fmt.Errorf("cache.addr is required for the redis backend")
		}
		var redisOpts []redis.Option
		if c.Cache.Prefix != "" {
			redisOpts = append(redisOpts, redis.WithPrefix(c.Cache.Prefix))
		}
		if c.Cache.TTL != "" {
			ttl, err := time.ParseDuration(c.Cache.TTL)
			if err != nil {
				return nil, fmt.Errorf("invalid cache.ttl: %w", err)
			}
			redisOpts = append(redisOpts, redis.WithTTL(ttl))
		}
		cache := redis.New(c.Cache.Addr, c.Cache.Password, c.Cache.DB, redisOpts...)
		opts = append(opts, WithCache(cache), withCloser(cache))
	default:
		return nil, fmt.Errorf("unknown cache backend %q", c.Cache.Backend)
	}

	return opts, nil
}

// NewFromConfig loads path and builds a Validator from it. extra options are
// applied after the file's.
func NewFromConfig(path string, extra ...Option) (*Validator, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}
	opts, err := cfg.Options()
	if err != nil {
		return nil, err
	}
	return New(append(opts, extra...)...)
}
