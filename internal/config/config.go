// Package config loads process configuration for the synctemplate command
// from defaults, an optional synctemplate.yaml file and SYNCTEMPLATE_*
// environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable, e.g. SYNCTEMPLATE_STORE_DIR.
const EnvPrefix = "SYNCTEMPLATE"

// Store drivers.
const (
	StoreFS     = "fs"
	StoreSQLite = "sqlite"
)

// Cache drivers.
const (
	CacheNone   = "none"
	CacheMemory = "memory"
	CacheRedis  = "redis"
)

// Config is the full process configuration.
type Config struct {
	Store  StoreConfig  `mapstructure:"store"`
	Cache  CacheConfig  `mapstructure:"cache"`
	Server ServerConfig `mapstructure:"server"`
	Render RenderConfig `mapstructure:"render"`
	Log    LogConfig    `mapstructure:"log"`
}

// StoreConfig selects where templates and instances live.
type StoreConfig struct {
	Driver string `mapstructure:"driver"`
	Dir    string `mapstructure:"dir"`
	DSN    string `mapstructure:"dsn"`
}

// CacheConfig selects the field listing cache.
type CacheConfig struct {
	Driver        string        `mapstructure:"driver"`
	TTL           time.Duration `mapstructure:"ttl"`
	RedisAddr     string        `mapstructure:"redis_addr"`
	RedisPassword string        `mapstructure:"redis_password"`
	RedisDB       int           `mapstructure:"redis_db"`
	RedisPrefix   string        `mapstructure:"redis_prefix"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Host       string `mapstructure:"host"`
	Port       int    `mapstructure:"port"`
	BasePath   string `mapstructure:"base_path"`
	JWTSecret  string `mapstructure:"jwt_secret"`
	EditorRole string `mapstructure:"editor_role"`
}

// Addr joins host and port.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// RenderConfig holds renderer defaults.
type RenderConfig struct {
	Renderer      string `mapstructure:"renderer"`
	MaxEmbedDepth int    `mapstructure:"max_embed_depth"`
	Presets       string `mapstructure:"presets"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

// Load reads configuration. When path is empty, synctemplate.yaml is looked
// up in the working directory and its absence is not an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("synctemplate")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the configuration Load produces without file or
// environment input.
func Default() Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	_ = v.Unmarshal(&cfg)
	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("store.driver", StoreFS)
	v.SetDefault("store.dir", "templates")
	v.SetDefault("store.dsn", "synctemplate.db")

	v.SetDefault("cache.driver", CacheMemory)
	v.SetDefault("cache.ttl", 10*time.Minute)
	v.SetDefault("cache.redis_addr", "localhost:6379")
	v.SetDefault("cache.redis_password", "")
	v.SetDefault("cache.redis_db", 0)
	v.SetDefault("cache.redis_prefix", "synctemplate:")

	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.base_path", "/api")
	v.SetDefault("server.jwt_secret", "")
	v.SetDefault("server.editor_role", "template_editor")

	v.SetDefault("render.renderer", "vanilla")
	v.SetDefault("render.max_embed_depth", 4)
	v.SetDefault("render.presets", "")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)
}

// Validate checks driver names and numeric ranges.
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case StoreFS:
		if strings.TrimSpace(c.Store.Dir) == "" {
			return errors.New("config: store.dir is required for the fs driver")
		}
	case StoreSQLite:
		if strings.TrimSpace(c.Store.DSN) == "" {
			return errors.New("config: store.dsn is required for the sqlite driver")
		}
	default:
		return fmt.Errorf("config: unknown store driver %q", c.Store.Driver)
	}

	switch c.Cache.Driver {
	case CacheNone, CacheMemory, CacheRedis:
	default:
		return fmt.Errorf("config: unknown cache driver %q", c.Cache.Driver)
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("config: invalid server port %d", c.Server.Port)
	}
	if c.Render.MaxEmbedDepth < 0 {
		return fmt.Errorf("config: invalid render.max_embed_depth %d", c.Render.MaxEmbedDepth)
	}
	return nil
}
