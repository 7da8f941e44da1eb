package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
	_ "time/tzdata" // timezone names resolve on hosts without zoneinfo

	"gopkg.in/yaml.v3"
)

// FileName is the config file at the root of a data directory.
const FileName = "extrato.yaml"

const (
	defaultDatabasePath = "extrato.db"
	defaultTimezone     = "America/Sao_Paulo"
	defaultCurrency     = "BRL"
	defaultMaxFileBytes = 5 << 20
	defaultLogLevel     = "info"
	defaultLogFormat    = LogFormatConsole
)

// Config represents the top-level extrato.yaml configuration.
type Config struct {
	User       UserConfig       `yaml:"user"`
	Database   DatabaseConfig   `yaml:"database"`
	Import     ImportConfig     `yaml:"import"`
	Categorize CategorizeConfig `yaml:"categorize"`
	Log        LogConfig        `yaml:"log"`
	Git        GitConfig        `yaml:"git"`
}

// UserConfig names the user commands act for when --user is not given.
type UserConfig struct {
	ID int64 `yaml:"id"`
}

// DatabaseConfig locates the SQLite file. Relative paths are resolved
// against the data directory.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// ImportConfig controls statement parsing.
type ImportConfig struct {
	Timezone        string `yaml:"timezone"`
	DefaultCurrency string `yaml:"default_currency"`
	MaxFileBytes    int64  `yaml:"max_file_bytes"`
}

// CategorizeConfig lists fixed merchant rules, checked before history.
type CategorizeConfig struct {
	Merchants []MerchantRule `yaml:"merchants"`
}

// MerchantRule maps a description prefix to a category name.
type MerchantRule struct {
	Prefix   string `yaml:"prefix"`
	Category string `yaml:"category"`
}

// Log output formats.
const (
	LogFormatConsole = "console"
	LogFormatJSON    = "json"
)

// LogConfig sets the zerolog level and output format.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// GitConfig turns on committing the data directory after init and imports.
type GitConfig struct {
	Enabled     bool   `yaml:"enabled"`
	AuthorName  string `yaml:"author_name"`
	AuthorEmail string `yaml:"author_email"`
}

// Load reads an extrato.yaml file from disk. Missing settings take their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default(0)
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if _, err := cfg.Location(); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	switch cfg.Log.Format {
	case LogFormatConsole, LogFormatJSON:
	default:
		return nil, fmt.Errorf("parsing config: unknown log format %q", cfg.Log.Format)
	}
	return cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new data directory.
func Default(userID int64) *Config {
	return &Config{
		User:     UserConfig{ID: userID},
		Database: DatabaseConfig{Path: defaultDatabasePath},
		Import: ImportConfig{
			Timezone:        defaultTimezone,
			DefaultCurrency: defaultCurrency,
			MaxFileBytes:    defaultMaxFileBytes,
		},
		Categorize: CategorizeConfig{
			Merchants: []MerchantRule{{Prefix: "ifd*", Category: "ifood"}},
		},
		Log: LogConfig{Level: defaultLogLevel, Format: defaultLogFormat},
		Git: GitConfig{
			AuthorName:  "Extrato",
			AuthorEmail: "importer@extrato.dev",
		},
	}
}

// Location resolves Import.Timezone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Import.Timezone)
	if err != nil {
		return nil, fmt.Errorf("loading timezone %q: %w", c.Import.Timezone, err)
	}
	return loc, nil
}

// DatabasePath returns the database file for the data directory root.
func (c *Config) DatabasePath(root string) string {
	if filepath.IsAbs(c.Database.Path) {
		return c.Database.Path
	}
	return filepath.Join(root, c.Database.Path)
}
