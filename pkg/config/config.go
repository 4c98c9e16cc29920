// Package config loads metromap settings from a TOML file.
//
// A config file has one table per concern; every key is optional and
// missing keys keep their defaults:
//
//	[layout]
//	level_spacing = 180
//	align_levels = true
//
//	[lines]
//	orthogonal = true
//	corner_radius = 8
//
//	[render]
//	formats = ["svg", "png"]
//	legend = true
//
//	[server]
//	addr = ":8080"
//	write_timeout = "30s"
//
//	[cache]
//	backend = "redis"
//	redis_addr = "localhost:6379"
//
//	[store]
//	backend = "mongo"
//	mongo_uri = "mongodb://localhost:27017"
//
//	[log]
//	level = "debug"
//
// Connection secrets can be supplied through the environment instead
// (see [Config.ApplyEnv]). Unknown keys are rejected so typos surface early.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"

	errs "github.com/matzehuels/metromap/pkg/errors"
	"github.com/matzehuels/metromap/pkg/metro"
	"github.com/matzehuels/metromap/pkg/metro/pathgen"
	"github.com/matzehuels/metromap/pkg/pipeline"
)

// EnvConfig names the environment variable holding the default config path.
const EnvConfig = "METROMAP_CONFIG"

// Backend names.
const (
	CacheNone  = "none"
	CacheFile  = "file"
	CacheRedis = "redis"

	StoreMemory = "memory"
	StoreFile   = "file"
	StoreMongo  = "mongo"
	StoreNeo4j  = "neo4j"
)

// =============================================================================
// Config Types
// =============================================================================

// Config is the complete metromap configuration.
type Config struct {
	Layout metro.Config        `toml:"layout"`
	Lines  pathgen.LineOptions `toml:"lines"`
	Render RenderConfig        `toml:"render"`
	Server ServerConfig        `toml:"server"`
	Cache  CacheConfig         `toml:"cache"`
	Store  StoreConfig         `toml:"store"`
	Log    LogConfig           `toml:"log"`
}

// RenderConfig holds default render options.
type RenderConfig struct {
	Formats []string `toml:"formats"`
	Legend  bool     `toml:"legend"`
	Labels  bool     `toml:"labels"`
	Scale   float64  `toml:"scale"`
}

// ServerConfig governs the HTTP API.
type ServerConfig struct {
	Addr            string   `toml:"addr"`
	ReadTimeout     Duration `toml:"read_timeout"`
	WriteTimeout    Duration `toml:"write_timeout"`
	IdleTimeout     Duration `toml:"idle_timeout"`
	ShutdownTimeout Duration `toml:"shutdown_timeout"`
	MaxBodyBytes    int64    `toml:"max_body_bytes"`
}

// CacheConfig selects and configures the layout and artifact cache.
type CacheConfig struct {
	Backend       string `toml:"backend"`
	Dir           string `toml:"dir"` // file backend; empty means the XDG cache dir
	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
	Prefix        string `toml:"prefix"`
}

// StoreConfig selects and configures the map store.
type StoreConfig struct {
	Backend         string `toml:"backend"`
	Dir             string `toml:"dir"` // file backend
	MongoURI        string `toml:"mongo_uri"`
	MongoDatabase   string `toml:"mongo_database"`
	MongoCollection string `toml:"mongo_collection"`
	Neo4jURI        string `toml:"neo4j_uri"`
	Neo4jDatabase   string `toml:"neo4j_database"`
	Neo4jUser       string `toml:"neo4j_user"`
	Neo4jPassword   string `toml:"neo4j_password"`
}

// LogConfig controls logging.
type LogConfig struct {
	Level  string `toml:"level"`  // debug, info, warn, error
	Format string `toml:"format"` // text, json, logfmt
}

// Duration is a time.Duration read from strings like "15s".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// =============================================================================
// Defaults and Loading
// =============================================================================

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Layout: metro.DefaultConfig(),
		Lines:  pathgen.DefaultLineOptions(),
		Render: RenderConfig{
			Formats: []string{pipeline.FormatSVG},
			Labels:  true,
			Scale:   pipeline.DefaultScale,
		},
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     Duration{10 * time.Second},
			WriteTimeout:    Duration{30 * time.Second},
			IdleTimeout:     Duration{60 * time.Second},
			ShutdownTimeout: Duration{10 * time.Second},
			MaxBodyBytes:    4 << 20,
		},
		Cache: CacheConfig{Backend: CacheFile, Prefix: "metromap:"},
		Store: StoreConfig{Backend: StoreFile},
		Log:   LogConfig{Level: "info", Format: "text"},
	}
}

// Load reads the file at path over the defaults and validates the result.
// An empty path falls back to $METROMAP_CONFIG; if that is unset too, the
// defaults are returned. Environment overrides are applied in both cases.
func Load(path string) (Config, error) {
	if path == "" {
		path = os.Getenv(EnvConfig)
	}
	cfg := Default()
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return Config{}, errs.Wrap(errs.ErrCodeFileNotFound, err, "config file %s", path)
			}
			return Config{}, fmt.Errorf("open config: %w", err)
		}
		defer f.Close()
		if cfg, err = Decode(f); err != nil {
			return Config{}, fmt.Errorf("%s: %w", path, err)
		}
	}
	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Decode reads TOML from r over the defaults. It does not validate.
func Decode(r io.Reader) (Config, error) {
	cfg := Default()
	md, err := toml.NewDecoder(r).Decode(&cfg)
	if err != nil {
		return Config{}, errs.Wrap(errs.ErrCodeInvalidConfig, err, "decode config")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Config{}, errs.New(errs.ErrCodeInvalidConfig, "unknown config key %q", undecoded[0].String())
	}
	return cfg, nil
}

// ApplyEnv overrides connection settings from the environment:
// METROMAP_ADDR, METROMAP_LOG_LEVEL, METROMAP_CACHE, METROMAP_REDIS_ADDR,
// METROMAP_REDIS_PASSWORD, METROMAP_REDIS_DB, METROMAP_STORE,
// METROMAP_MONGO_URI, METROMAP_NEO4J_URI, METROMAP_NEO4J_USER and
// METROMAP_NEO4J_PASSWORD.
func (c *Config) ApplyEnv() {
	c.Server.Addr = valueOrDefault("METROMAP_ADDR", c.Server.Addr)
	c.Log.Level = valueOrDefault("METROMAP_LOG_LEVEL", c.Log.Level)
	c.Cache.Backend = valueOrDefault("METROMAP_CACHE", c.Cache.Backend)
	c.Cache.RedisAddr = valueOrDefault("METROMAP_REDIS_ADDR", c.Cache.RedisAddr)
	c.Cache.RedisPassword = valueOrDefault("METROMAP_REDIS_PASSWORD", c.Cache.RedisPassword)
	c.Cache.RedisDB = intOrDefault("METROMAP_REDIS_DB", c.Cache.RedisDB)
	c.Store.Backend = valueOrDefault("METROMAP_STORE", c.Store.Backend)
	c.Store.MongoURI = valueOrDefault("METROMAP_MONGO_URI", c.Store.MongoURI)
	c.Store.Neo4jURI = valueOrDefault("METROMAP_NEO4J_URI", c.Store.Neo4jURI)
	c.Store.Neo4jUser = valueOrDefault("METROMAP_NEO4J_USER", c.Store.Neo4jUser)
	c.Store.Neo4jPassword = valueOrDefault("METROMAP_NEO4J_PASSWORD", c.Store.Neo4jPassword)
}

func valueOrDefault(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func intOrDefault(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

// =============================================================================
// Validation
// =============================================================================

// Validate checks every section.
func (c Config) Validate() error {
	if err := pipeline.ValidateLayoutConfig(c.Layout); err != nil {
		return err
	}
	if err := pipeline.ValidateLineOptions(c.Lines); err != nil {
		return err
	}
	if err := pipeline.ValidateFormats(c.Render.Formats); err != nil {
		return err
	}
	if c.Render.Scale <= 0 {
		return errs.New(errs.ErrCodeInvalidConfig, "render.scale must be positive, got %v", c.Render.Scale)
	}
	if c.Server.MaxBodyBytes <= 0 {
		return errs.New(errs.ErrCodeInvalidConfig, "server.max_body_bytes must be positive")
	}
	if !slices.Contains([]string{CacheNone, CacheFile, CacheRedis}, c.Cache.Backend) {
		return errs.New(errs.ErrCodeInvalidConfig, "unknown cache backend %q (must be none, file or redis)", c.Cache.Backend)
	}
	if c.Cache.Backend == CacheRedis && c.Cache.RedisAddr == "" {
		return errs.New(errs.ErrCodeInvalidConfig, "cache.redis_addr is required for the redis backend")
	}
	switch c.Store.Backend {
	case StoreMemory, StoreFile:
	case StoreMongo:
		if c.Store.MongoURI == "" {
			return errs.New(errs.ErrCodeInvalidConfig, "store.mongo_uri is required for the mongo backend")
		}
	case StoreNeo4j:
		if c.Store.Neo4jURI == "" {
			return errs.New(errs.ErrCodeInvalidConfig, "store.neo4j_uri is required for the neo4j backend")
		}
	default:
		return errs.New(errs.ErrCodeInvalidConfig, "unknown store backend %q (must be memory, file, mongo or neo4j)", c.Store.Backend)
	}
	if _, err := c.Log.ParseLevel(); err != nil {
		return err
	}
	return nil
}

// ParseLevel returns the configured log level.
func (l LogConfig) ParseLevel() (log.Level, error) {
	level, err := log.ParseLevel(l.Level)
	if err != nil {
		return log.InfoLevel, errs.Wrap(errs.ErrCodeInvalidConfig, err, "log.level")
	}
	return level, nil
}

// Formatter returns the configured log formatter.
func (l LogConfig) Formatter() log.Formatter {
	switch l.Format {
	case "json":
		return log.JSONFormatter
	case "logfmt":
		return log.LogfmtFormatter
	default:
		return log.TextFormatter
	}
}

// =============================================================================
// Conversions
// =============================================================================

// PipelineOptions returns pipeline options seeded from the config.
func (c Config) PipelineOptions() pipeline.Options {
	opts := pipeline.DefaultOptions()
	opts.Layout = c.Layout
	opts.Lines = c.Lines
	opts.Formats = slices.Clone(c.Render.Formats)
	opts.Legend = c.Render.Legend
	opts.HideLabels = !c.Render.Labels
	opts.Scale = c.Render.Scale
	return opts
}
