// Package config loads noticeboard settings.
//
// Values are resolved in three layers: built-in defaults, then an optional
// TOML file, then NOTICEBOARD_* environment variables. Command-line flags
// are applied on top by the CLI.
//
// Example board.toml:
//
//	[layout]
//	spread_factor = 40
//	seed = 7
//
//	[server]
//	addr = ":9000"
//
//	[store]
//	driver = "sqlite"
//	path = "cards.db"
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"

	"github.com/matzehuels/noticeboard/pkg/errors"
	"github.com/matzehuels/noticeboard/pkg/layout"
)

// EnvPrefix is prepended to every environment variable name.
const EnvPrefix = "NOTICEBOARD_"

// Store and cache drivers.
const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
	StoreMongo  = "mongo"

	CacheNone  = "none"
	CacheFile  = "file"
	CacheRedis = "redis"
)

// Config is the complete configuration.
type Config struct {
	Layout    Layout    `toml:"layout" envPrefix:"LAYOUT_"`
	Server    Server    `toml:"server" envPrefix:"SERVER_"`
	Store     Store     `toml:"store" envPrefix:"STORE_"`
	Cache     Cache     `toml:"cache" envPrefix:"CACHE_"`
	Telemetry Telemetry `toml:"telemetry" envPrefix:"TELEMETRY_"`
}

// Layout holds layout geometry plus the pass seed and initial view.
type Layout struct {
	SpreadFactor     float64 `toml:"spread_factor" env:"SPREAD_FACTOR"`
	RotationRange    float64 `toml:"rotation_range" env:"ROTATION_RANGE"`
	CardWidth        float64 `toml:"card_width" env:"CARD_WIDTH"`
	CardHeight       float64 `toml:"card_height" env:"CARD_HEIGHT"`
	NarrowCardWidth  float64 `toml:"narrow_card_width" env:"NARROW_CARD_WIDTH"`
	NarrowCardHeight float64 `toml:"narrow_card_height" env:"NARROW_CARD_HEIGHT"`
	Padding          float64 `toml:"padding" env:"PADDING"`
	Margin           float64 `toml:"margin" env:"MARGIN"`
	MaxAttempts      int     `toml:"max_attempts" env:"MAX_ATTEMPTS"`
	MaxCols          int     `toml:"max_cols" env:"MAX_COLS"`
	NarrowMaxCols    int     `toml:"narrow_max_cols" env:"NARROW_MAX_COLS"`
	ListGap          float64 `toml:"list_gap" env:"LIST_GAP"`

	Seed uint64 `toml:"seed" env:"SEED"`
	View string `toml:"view" env:"VIEW"`
}

func layoutSection(o layout.Options) Layout {
	return Layout{
		SpreadFactor:     o.SpreadFactor,
		RotationRange:    o.RotationRange,
		CardWidth:        o.CardWidth,
		CardHeight:       o.CardHeight,
		NarrowCardWidth:  o.NarrowCardWidth,
		NarrowCardHeight: o.NarrowCardHeight,
		Padding:          o.Padding,
		Margin:           o.Margin,
		MaxAttempts:      o.MaxAttempts,
		MaxCols:          o.MaxCols,
		NarrowMaxCols:    o.NarrowMaxCols,
		ListGap:          o.ListGap,
		Seed:             layout.DefaultSeed,
		View:             layout.ModeScattered.String(),
	}
}

// Options returns the layout geometry.
func (l Layout) Options() layout.Options {
	return layout.Options{
		SpreadFactor:     l.SpreadFactor,
		RotationRange:    l.RotationRange,
		CardWidth:        l.CardWidth,
		CardHeight:       l.CardHeight,
		NarrowCardWidth:  l.NarrowCardWidth,
		NarrowCardHeight: l.NarrowCardHeight,
		Padding:          l.Padding,
		Margin:           l.Margin,
		MaxAttempts:      l.MaxAttempts,
		MaxCols:          l.MaxCols,
		NarrowMaxCols:    l.NarrowMaxCols,
		ListGap:          l.ListGap,
	}
}

// Server configures the HTTP API.
type Server struct {
	Addr         string        `toml:"addr"`
	ReadTimeout  time.Duration `toml:"read_timeout"`
	WriteTimeout time.Duration `toml:"write_timeout"`
}

// Store selects and configures the card store.
type Store struct {
	Driver        string `toml:"driver"`
	Path          string `toml:"path"`
	MongoURI      string `toml:"mongo_uri" env:"MONGO_URI"`
	MongoDatabase string `toml:"mongo_database" env:"MONGO_DATABASE"`
}

// Cache selects and configures the layout and artifact cache.
type Cache struct {
	Driver        string `toml:"driver"`
	Dir           string `toml:"dir"`
	RedisAddr     string `toml:"redis_addr" env:"REDIS_ADDR"`
	RedisPassword string `toml:"redis_password" env:"REDIS_PASSWORD"`
	RedisDB       int    `toml:"redis_db" env:"REDIS_DB"`
	Namespace     string `toml:"namespace"`
}

// Telemetry configures OpenTelemetry tracing. Tracing is off unless an
// endpoint is set.
type Telemetry struct {
	Endpoint    string `toml:"endpoint"`
	ServiceName string `toml:"service_name"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Layout: layoutSection(layout.DefaultOptions()),
		Server: Server{
			Addr:         ":8080",
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		Store: Store{
			Driver:        StoreMemory,
			Path:          "noticeboard.db",
			MongoDatabase: "noticeboard",
		},
		Cache: Cache{
			Driver: CacheFile,
		},
		Telemetry: Telemetry{
			ServiceName: "noticeboard",
		},
	}
}

// Load resolves configuration from defaults, the TOML file at path (when
// path is non-empty) and the environment.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		if err := cfg.decodeFile(path); err != nil {
			return Config{}, err
		}
	}
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) decodeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	md, err := toml.Decode(string(data), c)
	if err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return errors.New(errors.ErrCodeInvalidInput, "unknown config keys in %s: %s", path, strings.Join(keys, ", "))
	}
	return nil
}

// ParseEnv overrides target from NOTICEBOARD_* environment variables.
// Section prefixes and field names combine, so Layout.SpreadFactor reads
// NOTICEBOARD_LAYOUT_SPREAD_FACTOR. Untagged fields map to upper snake case.
func ParseEnv(target any) error {
	err := env.ParseWithOptions(target, env.Options{
		Prefix:                EnvPrefix,
		UseFieldNameByDefault: true,
	})
	if err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Validate checks every section.
func (c Config) Validate() error {
	if err := c.Layout.Options().Validate(); err != nil {
		return err
	}
	if _, err := layout.ParseViewMode(c.Layout.View); err != nil {
		return err
	}
	switch c.Store.Driver {
	case StoreMemory:
	case StoreSQLite:
		if strings.TrimSpace(c.Store.Path) == "" {
			return errors.New(errors.ErrCodeInvalidInput, "store.path is required for sqlite")
		}
	case StoreMongo:
		if c.Store.MongoURI == "" {
			return errors.New(errors.ErrCodeInvalidInput, "store.mongo_uri is required for mongo")
		}
	default:
		return errors.New(errors.ErrCodeInvalidInput, "unknown store driver %q (must be one of: memory, sqlite, mongo)", c.Store.Driver)
	}
	switch c.Cache.Driver {
	case CacheNone, CacheFile:
	case CacheRedis:
		if c.Cache.RedisAddr == "" {
			return errors.New(errors.ErrCodeInvalidInput, "cache.redis_addr is required for redis")
		}
	default:
		return errors.New(errors.ErrCodeInvalidInput, "unknown cache driver %q (must be one of: none, file, redis)", c.Cache.Driver)
	}
	return nil
}

// ViewMode returns the configured initial view.
func (l Layout) ViewMode() layout.ViewMode {
	m, err := layout.ParseViewMode(l.View)
	if err != nil {
		return layout.ModeScattered
	}
	return m
}
