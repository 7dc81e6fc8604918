// Package config loads the backend configuration.
//
// A YAML file is decoded strictly over the defaults, then the result is
// checked against an embedded CUE schema. Secrets never live in the file:
// the remote API key is read from the environment, optionally seeded from
// a .env file.
package config

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

//go:embed schema.cue
var schemaSource string

// DefaultHTTPAddr is the loopback address of the HTTP transport.
const DefaultHTTPAddr = "127.0.0.1:8737"

// Config is the full backend configuration.
type Config struct {
	Database DatabaseConfig `yaml:"database" json:"database"`
	Log      LogConfig      `yaml:"log" json:"log"`
	HTTP     HTTPConfig     `yaml:"http" json:"http"`
	Metrics  MetricsConfig  `yaml:"metrics" json:"metrics"`
	Remote   RemoteConfig   `yaml:"remote" json:"remote"`
}

type DatabaseConfig struct {
	Path string `yaml:"path" json:"path"`
}

type LogConfig struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"`
}

type HTTPConfig struct {
	Addr string `yaml:"addr" json:"addr"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled" json:"enabled"`
}

// RemoteConfig selects the hosted catalog source for the raw listings.
type RemoteConfig struct {
	Enabled           bool          `yaml:"enabled" json:"enabled"`
	ProjectURL        string        `yaml:"project_url" json:"project_url"`
	APIKeyEnv         string        `yaml:"api_key_env" json:"api_key_env"`
	EnvFile           string        `yaml:"env_file" json:"env_file"`
	SectionsTable     string        `yaml:"sections_table" json:"sections_table"`
	ProductsTable     string        `yaml:"products_table" json:"products_table"`
	RequestsPerSecond float64       `yaml:"requests_per_second" json:"requests_per_second"`
	Timeout           time.Duration `yaml:"timeout" json:"timeout"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Database: DatabaseConfig{Path: DefaultDatabasePath()},
		Log:      LogConfig{Level: "info", Format: "text"},
		HTTP:     HTTPConfig{Addr: DefaultHTTPAddr},
		Metrics:  MetricsConfig{Enabled: true},
		Remote: RemoteConfig{
			APIKeyEnv:         "SUPABASE_KEY",
			EnvFile:           ".env",
			SectionsTable:     "secciones_navegante",
			ProductsTable:     "productos_navegante",
			RequestsPerSecond: 5,
			Timeout:           10 * time.Second,
		},
	}
}

// DefaultDatabasePath is data/navegante.db next to the running executable,
// or in the working directory if the executable cannot be located.
func DefaultDatabasePath() string {
	exe, err := os.Executable()
	if err != nil {
		return filepath.Join("data", "navegante.db")
	}
	return filepath.Join(filepath.Dir(exe), "data", "navegante.db")
}

// Load reads path over the defaults. An empty path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, cfg.Validate()
	}

	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}

	// Relative paths in the file are relative to the file.
	if cfg.Database.Path != "" && cfg.Database.Path != ":memory:" && !filepath.IsAbs(cfg.Database.Path) {
		cfg.Database.Path = filepath.Join(filepath.Dir(path), cfg.Database.Path)
	}
	if cfg.Remote.EnvFile != "" && !filepath.IsAbs(cfg.Remote.EnvFile) {
		cfg.Remote.EnvFile = filepath.Join(filepath.Dir(path), cfg.Remote.EnvFile)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks cfg against the embedded schema.
func (c Config) Validate() error {
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaSource, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compile config schema: %w", err)
	}
	value := ctx.CompileBytes(data, cue.Filename("config.json"))
	if err := value.Err(); err != nil {
		return fmt.Errorf("build config value: %w", err)
	}

	unified := schema.LookupPath(cue.ParsePath("#Config")).Unify(value)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return err
	}
	return nil
}

// SlogLevel maps the configured level name onto slog.
func (c LogConfig) SlogLevel() slog.Level {
	switch strings.ToLower(c.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// APIKey loads EnvFile (when present) into the environment without
// overriding existing variables, then reads APIKeyEnv.
func (r RemoteConfig) APIKey() (string, error) {
	if r.EnvFile != "" {
		if err := godotenv.Load(r.EnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("load env file %s: %w", r.EnvFile, err)
		}
	}
	key := os.Getenv(r.APIKeyEnv)
	if key == "" {
		return "", fmt.Errorf("%s is not set", r.APIKeyEnv)
	}
	return key, nil
}
