package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/noticeboard/pkg/errors"
	"github.com/matzehuels/noticeboard/pkg/layout"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "board.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Layout.Options() != layout.DefaultOptions() {
		t.Errorf("layout = %+v, want defaults", cfg.Layout.Options())
	}
	if cfg.Layout.Seed != layout.DefaultSeed {
		t.Errorf("seed = %d, want %d", cfg.Layout.Seed, layout.DefaultSeed)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("addr = %q", cfg.Server.Addr)
	}
	if cfg.Store.Driver != StoreMemory || cfg.Cache.Driver != CacheFile {
		t.Errorf("drivers = %q/%q", cfg.Store.Driver, cfg.Cache.Driver)
	}
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
[layout]
spread_factor = 40
max_attempts = 12
seed = 7
view = "grid"

[server]
addr = ":9000"
read_timeout = "3s"

[store]
driver = "sqlite"
path = "cards.db"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Layout.SpreadFactor != 40 || cfg.Layout.MaxAttempts != 12 || cfg.Layout.Seed != 7 {
		t.Errorf("layout = %+v", cfg.Layout)
	}
	if cfg.Layout.RotationRange != 5 {
		t.Errorf("unset keys should keep defaults, rotation_range = %v", cfg.Layout.RotationRange)
	}
	if cfg.Layout.ViewMode() != layout.ModeGrid {
		t.Errorf("view = %v, want grid", cfg.Layout.ViewMode())
	}
	if cfg.Server.Addr != ":9000" || cfg.Server.ReadTimeout != 3*time.Second {
		t.Errorf("server = %+v", cfg.Server)
	}
	if cfg.Store.Driver != StoreSQLite || cfg.Store.Path != "cards.db" {
		t.Errorf("store = %+v", cfg.Store)
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "[layout]\nspread_factor = 40\n")
	t.Setenv("NOTICEBOARD_LAYOUT_SPREAD_FACTOR", "25")
	t.Setenv("NOTICEBOARD_SERVER_ADDR", "127.0.0.1:7000")
	t.Setenv("NOTICEBOARD_CACHE_DRIVER", "redis")
	t.Setenv("NOTICEBOARD_CACHE_REDIS_ADDR", "localhost:6379")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Layout.SpreadFactor != 25 {
		t.Errorf("spread_factor = %v, want 25", cfg.Layout.SpreadFactor)
	}
	if cfg.Server.Addr != "127.0.0.1:7000" {
		t.Errorf("addr = %q", cfg.Server.Addr)
	}
	if cfg.Cache.Driver != CacheRedis || cfg.Cache.RedisAddr != "localhost:6379" {
		t.Errorf("cache = %+v", cfg.Cache)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		env  map[string]string
		want string
	}{
		{name: "unknown key", body: "[layout]\nspraed = 1\n", want: "unknown config keys"},
		{name: "bad toml", body: "[layout\n", want: "parse config"},
		{name: "bad store", body: "[store]\ndriver = \"postgres\"\n", want: "unknown store driver"},
		{name: "mongo without uri", body: "[store]\ndriver = \"mongo\"\n", want: "mongo_uri"},
		{name: "redis without addr", body: "[cache]\ndriver = \"redis\"\n", want: "redis_addr"},
		{name: "bad view", body: "[layout]\nview = \"spiral\"\n", want: "view mode"},
		{name: "bad layout", body: "[layout]\ncard_width = 120\n", want: "card_width"},
		{name: "bad env", env: map[string]string{"NOTICEBOARD_LAYOUT_MAX_ATTEMPTS": "lots"}, want: "parse env:"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			path := ""
			if tt.body != "" {
				path = writeConfig(t, tt.body)
			}
			_, err := Load(path)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("error = %v, want substring %q", err, tt.want)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestValidateCode(t *testing.T) {
	cfg := Default()
	cfg.Store.Driver = "nope"
	if err := cfg.Validate(); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Fatalf("error = %v, want INVALID_INPUT", err)
	}
}
