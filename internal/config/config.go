// Package config loads streakr's configuration.
//
// Configuration comes from a single YAML file, by default
// <user config dir>/streakr/config.yaml. A missing file is not an error:
// every field has a default. Command-line flags are applied on top of the
// file with ApplyFlags.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// Config is the full streakr configuration.
type Config struct {
	// Database is the SQLite file path.
	// Default: <user config dir>/streakr/streakr.db
	Database string `yaml:"database"`

	// User is the user id commands act on when --user is not given.
	// Default: $USER, or "default"
	User string `yaml:"user"`

	// Timezone is the IANA zone that decides where a day begins.
	// Default: Local
	Timezone string `yaml:"timezone"`

	// LogLevel is one of debug, info, warn, error.
	// Default: info
	LogLevel string `yaml:"log_level"`

	Cache CacheConfig `yaml:"cache"`
	Store StoreConfig `yaml:"store"`
}

// CacheConfig sets the engine's cache lifetimes. Durations use Go syntax
// ("90s", "5m", "1h").
type CacheConfig struct {
	StreakTTL       string `yaml:"streak_ttl"`
	ActivityTTL     string `yaml:"activity_ttl"`
	AchievementsTTL string `yaml:"achievements_ttl"`

	// Dedupe collapses concurrent misses for the same key into one fetch.
	Dedupe bool `yaml:"dedupe"`
}

type StoreConfig struct {
	// Aggregates enables the single-query streak and achievement reads.
	// When false every read takes the composed fallback path.
	Aggregates bool `yaml:"aggregates"`
}

// Dir returns <user config dir>/streakr.
func Dir() (string, error) {
	cfg, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cfg, "streakr"), nil
}

// DefaultPath returns the config file used when --config is not given.
func DefaultPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Default returns the configuration used before any file or flag is applied.
func Default() *Config {
	db := "streakr.db"
	if dir, err := Dir(); err == nil {
		db = filepath.Join(dir, "streakr.db")
	}
	user := os.Getenv("USER")
	if user == "" {
		user = "default"
	}
	return &Config{
		Database: db,
		User:     user,
		Timezone: "Local",
		LogLevel: "info",
		Cache: CacheConfig{
			StreakTTL:       "5m",
			ActivityTTL:     "15m",
			AchievementsTTL: "30m",
		},
		Store: StoreConfig{Aggregates: true},
	}
}

// Load reads the file at path over the defaults. An empty path means
// DefaultPath. A file that does not exist yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return cfg, nil
		}
		path = p
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// ApplyFlags copies the global flags the user actually set over the
// loaded values. Flags that are absent from fs are ignored.
func (c *Config) ApplyFlags(flags *pflag.FlagSet) error {
	bind := map[string]*string{
		"db":        &c.Database,
		"user":      &c.User,
		"log-level": &c.LogLevel,
		"timezone":  &c.Timezone,
	}
	for name, dst := range bind {
		f := flags.Lookup(name)
		if f == nil || !f.Changed {
			continue
		}
		*dst = f.Value.String()
	}
	return c.Validate()
}

// Validate checks that every field parses.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.User) == "" {
		errs = append(errs, errors.New("user must not be empty"))
	}
	if c.Database == "" {
		errs = append(errs, errors.New("database is required"))
	}
	if _, err := c.Location(); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.Level(); err != nil {
		errs = append(errs, err)
	}
	if _, _, _, err := c.TTLs(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Location resolves Timezone. Empty and "Local" both mean time.Local.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" || strings.EqualFold(c.Timezone, "local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// Level resolves LogLevel.
func (c *Config) Level() (slog.Level, error) {
	var l slog.Level
	name := c.LogLevel
	if name == "" {
		name = "info"
	}
	if err := l.UnmarshalText([]byte(name)); err != nil {
		return 0, fmt.Errorf("log_level %q: want debug, info, warn or error", c.LogLevel)
	}
	return l, nil
}

// TTLs parses the cache lifetimes. Empty strings leave the engine default
// in place and come back as zero.
func (c *Config) TTLs() (streak, activity, achievements time.Duration, err error) {
	parse := func(field, v string) time.Duration {
		if v == "" || err != nil {
			return 0
		}
		d, perr := time.ParseDuration(v)
		if perr != nil {
			err = fmt.Errorf("cache.%s: %w", field, perr)
			return 0
		}
		if d < 0 {
			err = fmt.Errorf("cache.%s: must not be negative", field)
			return 0
		}
		return d
	}
	streak = parse("streak_ttl", c.Cache.StreakTTL)
	activity = parse("activity_ttl", c.Cache.ActivityTTL)
	achievements = parse("achievements_ttl", c.Cache.AchievementsTTL)
	return streak, activity, achievements, err
}
