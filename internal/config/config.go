package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// FileName is the name of the configuration file in a books directory.
const FileName = "libros.yaml"

// Environment variables that override the file.
const (
	EnvDBPath = "LIBROS_DB_PATH"
	EnvOwner  = "LIBROS_OWNER"
	EnvDebug  = "LIBROS_DEBUG"
	EnvAddr   = "LIBROS_ADDR"
)

const dateFormat = "2006-01-02"

// Config represents the top-level libros.yaml configuration.
type Config struct {
	Business   BusinessConfig   `yaml:"business"`
	Owner      string           `yaml:"owner"`
	Store      StoreConfig      `yaml:"store"`
	Validation ValidationConfig `yaml:"validation"`
	Projects   ProjectsConfig   `yaml:"projects"`
	Server     ServerConfig     `yaml:"server"`

	// Debug is only set from the environment.
	Debug bool `yaml:"-"`
}

// BusinessConfig identifies the business keeping the books.
type BusinessConfig struct {
	Name string `yaml:"name"`
}

// StoreConfig locates the SQLite database.
type StoreConfig struct {
	Path string `yaml:"path"` // relative paths resolve against the config directory
}

// ValidationConfig tunes transaction validation.
type ValidationConfig struct {
	MinPurchaseDate    string `yaml:"min_purchase_date"` // YYYY-MM-DD
	UniqueSaleInvoices bool   `yaml:"unique_sale_invoices"`
}

// ProjectsConfig holds project defaults and the project commands act on.
type ProjectsConfig struct {
	DefaultType string `yaml:"default_type"`
	Current     string `yaml:"current,omitempty"`
}

// ServerConfig controls the JSON API server.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// Load reads a libros.yaml file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
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

// Default returns a Config with sensible defaults for a new books directory.
func Default(businessName, owner string) *Config {
	return &Config{
		Business: BusinessConfig{
			Name: businessName,
		},
		Owner: owner,
		Store: StoreConfig{
			Path: "libros.db",
		},
		Validation: ValidationConfig{
			MinPurchaseDate: "2020-01-01",
		},
		Projects: ProjectsConfig{
			DefaultType: "empresa",
		},
		Server: ServerConfig{
			Addr: "127.0.0.1:8080",
		},
	}
}

// ApplyEnv overrides settings from the process environment and from the
// .env file at envPath. Non-empty process variables win over the file. A
// missing file is not an error.
func (c *Config) ApplyEnv(envPath string) error {
	fileVals := map[string]string{}
	if envPath != "" {
		vals, err := godotenv.Read(envPath)
		switch {
		case err == nil:
			fileVals = vals
		case errors.Is(err, fs.ErrNotExist):
		default:
			return fmt.Errorf("reading %s: %w", envPath, err)
		}
	}
	lookup := func(key string) (string, bool) {
		if v := os.Getenv(key); v != "" {
			return v, true
		}
		v, ok := fileVals[key]
		return v, ok
	}

	if v, ok := lookup(EnvDBPath); ok && v != "" {
		c.Store.Path = v
	}
	if v, ok := lookup(EnvOwner); ok && v != "" {
		c.Owner = v
	}
	if v, ok := lookup(EnvAddr); ok && v != "" {
		c.Server.Addr = v
	}
	if v, ok := lookup(EnvDebug); ok && v != "" {
		debug, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvDebug, err)
		}
		c.Debug = debug
	}
	return nil
}

// StorePath returns the database path, resolving a relative path against dir.
func (c *Config) StorePath(dir string) string {
	if c.Store.Path == "" || filepath.IsAbs(c.Store.Path) {
		return c.Store.Path
	}
	return filepath.Join(dir, c.Store.Path)
}

// MinPurchaseDate parses the configured earliest purchase date. It returns the
// zero time when unset.
func (c *Config) MinPurchaseDate() (time.Time, error) {
	if c.Validation.MinPurchaseDate == "" {
		return time.Time{}, nil
	}
	d, err := time.Parse(dateFormat, c.Validation.MinPurchaseDate)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing validation.min_purchase_date: %w", err)
	}
	return d, nil
}

// Validate checks the settings the commands depend on.
func (c *Config) Validate() error {
	if c.Owner == "" {
		return fmt.Errorf("owner is not set (set owner in %s or %s)", FileName, EnvOwner)
	}
	if c.Store.Path == "" {
		return fmt.Errorf("store.path is not set (set it in %s or %s)", FileName, EnvDBPath)
	}
	if _, err := c.MinPurchaseDate(); err != nil {
		return err
	}
	return nil
}
