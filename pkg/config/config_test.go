package config

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/metromap/pkg/cache"
	errs "github.com/matzehuels/metromap/pkg/errors"
	"github.com/matzehuels/metromap/pkg/metro"
	"github.com/matzehuels/metromap/pkg/storage"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "metromap.toml")
	if err := os.WriteFile(path, []byte(body), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
}

func TestLoadEmptyPath(t *testing.T) {
	t.Setenv(EnvConfig, "")
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Layout != metro.DefaultConfig() {
		t.Errorf("Layout = %+v, want defaults", cfg.Layout)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("Addr = %q", cfg.Server.Addr)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
[layout]
level_spacing = 180
align_levels = false

[lines]
orthogonal = false

[render]
formats = ["svg", "dot"]
legend = true

[server]
addr = ":9090"
write_timeout = "45s"

[log]
level = "debug"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Layout.LevelSpacing != 180 {
		t.Errorf("LevelSpacing = %v, want 180", cfg.Layout.LevelSpacing)
	}
	if cfg.Layout.AlignLevels {
		t.Error("AlignLevels should be false")
	}
	// Keys not in the file keep their defaults.
	if cfg.Layout.PathSpacing != metro.DefaultPathSpacing {
		t.Errorf("PathSpacing = %v, want default", cfg.Layout.PathSpacing)
	}
	if !cfg.Layout.AdjustInterchanges {
		t.Error("AdjustInterchanges should keep its default")
	}
	if cfg.Lines.Orthogonal {
		t.Error("Orthogonal should be false")
	}
	if cfg.Server.Addr != ":9090" || cfg.Server.WriteTimeout.Duration != 45*time.Second {
		t.Errorf("Server = %+v", cfg.Server)
	}
	if cfg.Server.ReadTimeout.Duration != 10*time.Second {
		t.Errorf("ReadTimeout = %v, want default", cfg.Server.ReadTimeout)
	}
	level, _ := cfg.Log.ParseLevel()
	if level != log.DebugLevel {
		t.Errorf("level = %v", level)
	}

	opts := cfg.PipelineOptions()
	if !opts.Legend || len(opts.Formats) != 2 || opts.Layout.LevelSpacing != 180 {
		t.Errorf("PipelineOptions = %+v", opts)
	}
}

func TestLoadEnvPath(t *testing.T) {
	path := writeConfig(t, "[layout]\npadding = 10\n")
	t.Setenv(EnvConfig, path)
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Layout.Padding != 10 {
		t.Errorf("Padding = %v, want 10", cfg.Layout.Padding)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		code errs.Code
	}{
		{"syntax", "[layout\n", errs.ErrCodeInvalidConfig},
		{"unknown key", "[layout]\nspacing = 3\n", errs.ErrCodeInvalidConfig},
		{"zero spacing", "[layout]\nlevel_spacing = 0\n", errs.ErrCodeInvalidConfig},
		{"negative radius", "[layout]\nnode_radius = -1\n", errs.ErrCodeInvalidConfig},
		{"bad format", "[render]\nformats = [\"pdf\"]\n", errs.ErrCodeInvalidFormat},
		{"bad cache", "[cache]\nbackend = \"memcached\"\n", errs.ErrCodeInvalidConfig},
		{"redis without addr", "[cache]\nbackend = \"redis\"\n", errs.ErrCodeInvalidConfig},
		{"mongo without uri", "[store]\nbackend = \"mongo\"\n", errs.ErrCodeInvalidConfig},
		{"neo4j without uri", "[store]\nbackend = \"neo4j\"\n", errs.ErrCodeInvalidConfig},
		{"bad level", "[log]\nlevel = \"loud\"\n", errs.ErrCodeInvalidConfig},
	}
	t.Setenv("METROMAP_REDIS_ADDR", "")
	t.Setenv("METROMAP_MONGO_URI", "")
	t.Setenv("METROMAP_NEO4J_URI", "")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			if !errs.Is(err, tt.code) {
				t.Errorf("Load() error = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	if !errs.Is(err, errs.ErrCodeFileNotFound) {
		t.Errorf("error = %v, want FILE_NOT_FOUND", err)
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("METROMAP_ADDR", ":7000")
	t.Setenv("METROMAP_CACHE", "redis")
	t.Setenv("METROMAP_REDIS_ADDR", "redis:6379")
	t.Setenv("METROMAP_REDIS_DB", "3")
	t.Setenv("METROMAP_STORE", "mongo")
	t.Setenv("METROMAP_MONGO_URI", "mongodb://db")

	cfg := Default()
	cfg.ApplyEnv()
	if cfg.Server.Addr != ":7000" || cfg.Cache.Backend != CacheRedis || cfg.Cache.RedisDB != 3 {
		t.Errorf("env not applied: %+v %+v", cfg.Server, cfg.Cache)
	}
	if cfg.Store.Backend != StoreMongo || cfg.Store.MongoURI != "mongodb://db" {
		t.Errorf("store env not applied: %+v", cfg.Store)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestFormatter(t *testing.T) {
	if (LogConfig{Format: "json"}).Formatter() != log.JSONFormatter {
		t.Error("json format")
	}
	if (LogConfig{}).Formatter() != log.TextFormatter {
		t.Error("default format should be text")
	}
}

func TestOpenLocalBackends(t *testing.T) {
	ctx := context.Background()

	c, err := CacheConfig{Backend: CacheFile, Dir: t.TempDir()}.OpenCache(ctx)
	if err != nil {
		t.Fatalf("OpenCache: %v", err)
	}
	if _, ok := c.(*cache.FileCache); !ok {
		t.Errorf("cache = %T, want *cache.FileCache", c)
	}

	c, _ = CacheConfig{Backend: CacheNone}.OpenCache(ctx)
	if _, ok := c.(*cache.NullCache); !ok {
		t.Errorf("cache = %T, want *cache.NullCache", c)
	}

	s, err := StoreConfig{Backend: StoreFile, Dir: t.TempDir()}.OpenStore(ctx)
	if err != nil {
		t.Fatalf("OpenStore: %v", err)
	}
	if _, ok := storage.Unwrap(s).(*storage.FileStore); !ok {
		t.Errorf("store = %T, want *storage.FileStore", s)
	}

	s, _ = StoreConfig{Backend: StoreMemory}.OpenStore(ctx)
	if _, ok := storage.Unwrap(s).(*storage.MemoryStore); !ok {
		t.Errorf("store = %T, want *storage.MemoryStore", s)
	}
}

func TestCacheDirXDG(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/tmp/xdg")
	dir, err := CacheDir()
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(dir, "metromap") {
		t.Errorf("CacheDir = %q", dir)
	}
}

