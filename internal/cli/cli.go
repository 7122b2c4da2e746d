// Package cli implements the noticeboard command-line interface.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/noticeboard/internal/config"
	"github.com/matzehuels/noticeboard/pkg/buildinfo"
	"github.com/matzehuels/noticeboard/pkg/cache"
	"github.com/matzehuels/noticeboard/pkg/cardstore"
	"github.com/matzehuels/noticeboard/pkg/cardstore/memory"
	"github.com/matzehuels/noticeboard/pkg/cardstore/mongo"
	"github.com/matzehuels/noticeboard/pkg/cardstore/sqlite"
	"github.com/matzehuels/noticeboard/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "noticeboard"

	// defaultBoard is the board used when --board is not given.
	defaultBoard = "demo"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// configPath is set by the persistent --config flag.
	configPath string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Noticeboard lays out event cards on a pinboard",
		Long:         `Noticeboard arranges event cards as a scattered pinboard, a list or a grid, remembers where users pin them, and serves the result over HTTP or in the terminal.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", os.Getenv(config.EnvPrefix+"CONFIG"), "config file (TOML)")

	// Register all subcommands
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.boardCommand())
	root.AddCommand(c.cardsCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig resolves configuration from the --config file and environment.
func (c *CLI) loadConfig() (config.Config, error) {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, cfg config.Cache, noCache bool) (*pipeline.Runner, error) {
	cc, err := newCache(ctx, cfg, noCache)
	if err != nil {
		return nil, err
	}
	var keyer cache.Keyer
	if cfg.Namespace != "" {
		keyer = cache.NewScopedKeyer(cache.NewDefaultKeyer(), cfg.Namespace)
	}
	return pipeline.NewRunner(cc, keyer, c.Logger), nil
}

func newCache(ctx context.Context, cfg config.Cache, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	switch cfg.Driver {
	case config.CacheNone:
		return cache.NewNullCache(), nil
	case config.CacheRedis:
		rc, err := cache.NewRedisCache(ctx, cache.RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Prefix:   appName + ":",
		})
		if err != nil {
			return nil, fmt.Errorf("connect redis cache: %w", err)
		}
		return rc, nil
	}
	dir := cfg.Dir
	if dir == "" {
		d, err := cacheDir()
		if err != nil {
			return cache.NewNullCache(), nil
		}
		dir = d
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		return nil, fmt.Errorf("open file cache: %w", err)
	}
	return fc, nil
}

// =============================================================================
// Store Factory
// =============================================================================

// openStore opens the configured card store.
func openStore(ctx context.Context, cfg config.Store) (cardstore.Store, error) {
	switch cfg.Driver {
	case config.StoreSQLite:
		st, err := sqlite.Open(cfg.Path)
		if err != nil {
			return nil, err
		}
		return st, nil
	case config.StoreMongo:
		st, err := mongo.Open(ctx, mongo.Options{URI: cfg.MongoURI, Database: cfg.MongoDatabase})
		if err != nil {
			return nil, err
		}
		return st, nil
	case config.StoreMemory, "":
		return memory.New(), nil
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
}

// storeFlags registers flags that override the [store] config section.
type storeFlags struct {
	driver string
	path   string
}

func (f *storeFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.driver, "store", "", "card store: memory, sqlite, mongo (default from config)")
	cmd.Flags().StringVar(&f.path, "path", "", "sqlite database path (default from config)")
}

func (f *storeFlags) apply(cfg *config.Store) {
	if f.driver != "" {
		cfg.Driver = f.driver
	}
	if f.path != "" {
		cfg.Path = f.path
	}
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/noticeboard/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// =============================================================================
// Options Helpers
// =============================================================================

// layoutFlags holds the flags shared by layout and render.
type layoutFlags struct {
	view    string
	width   float64
	height  float64
	narrow  bool
	seed    uint64
	noCache bool
}

func (f *layoutFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.view, "view", "", "view mode: scattered (default), list, grid")
	cmd.Flags().Float64Var(&f.width, "width", pipeline.DefaultWidth, "canvas width in pixels")
	cmd.Flags().Float64Var(&f.height, "height", pipeline.DefaultHeight, "canvas height in pixels")
	cmd.Flags().BoolVar(&f.narrow, "narrow", false, "force the narrow card size (default: derived from width)")
	cmd.Flags().Uint64Var(&f.seed, "seed", 0, "layout seed (default from config)")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable caching")
}

// options merges config and flags into pipeline options. Flags win.
func (f *layoutFlags) options(cmd *cobra.Command, cfg config.Config) pipeline.Options {
	lo := cfg.Layout.Options()
	opts := pipeline.Options{
		Mode:   cfg.Layout.View,
		Width:  f.width,
		Height: f.height,
		Seed:   cfg.Layout.Seed,
		Layout: &lo,
	}
	if f.view != "" {
		opts.Mode = f.view
	}
	if f.seed != 0 {
		opts.Seed = f.seed
	}
	if cmd.Flags().Changed("narrow") {
		narrow := f.narrow
		opts.Narrow = &narrow
	}
	return opts
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatSVG}
	}
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}
