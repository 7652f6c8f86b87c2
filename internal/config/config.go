// Package config handles the configuration directory, the optional
// config.json file and the paths derived from them.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tailscale/hujson"

	"taskflow/internal/kv"
)

const (
	// AppName is the application directory name.
	AppName = "taskflow"

	// ConfigFile is the optional settings file. Comments and trailing commas are allowed.
	ConfigFile = "config.json"

	// OAuthClientFile is the OAuth client credentials filename.
	OAuthClientFile = "oauth_client.json"

	// TokenFile is the stored OAuth token filename.
	TokenFile = "token.json"

	// DataDir is the subdirectory used by the file storage driver.
	DataDir = "data"

	// SQLiteFile is the database filename used when the sqlite driver has no DSN.
	SQLiteFile = "taskflow.db"
)

// Environment overrides.
const (
	EnvStorageDriver = "TASKFLOW_STORAGE_DRIVER"
	EnvStorageDSN    = "TASKFLOW_STORAGE_DSN"
)

// StorageConfig selects the persistence backend.
type StorageConfig struct {
	Driver string `json:"driver"`
	DSN    string `json:"dsn"`
	Key    string `json:"key"`
}

// DefaultsConfig holds the view used when list is run without flags.
type DefaultsConfig struct {
	Filter string `json:"filter"`
	Sort   string `json:"sort"`
}

// ServeConfig configures the HTTP shell.
type ServeConfig struct {
	Addr string `json:"addr"`
}

// Config holds configuration paths and settings.
type Config struct {
	// Dir is the configuration directory path.
	Dir string `json:"-"`

	// Debug enables debug logging.
	Debug bool `json:"-"`

	// Quiet suppresses informational output.
	Quiet bool `json:"-"`

	// Color enables styled terminal output.
	Color bool `json:"color"`

	Storage  StorageConfig  `json:"storage"`
	Defaults DefaultsConfig `json:"defaults"`
	Serve    ServeConfig    `json:"serve"`
}

// New creates a Config for the default or specified config directory,
// reading config.json from it when present.
// If configDir is empty, uses XDG_CONFIG_HOME/taskflow or $HOME/.config/taskflow.
func New(configDir string) (*Config, error) {
	dir := configDir
	if dir == "" {
		dir = DefaultConfigDir()
	}
	cfg := &Config{Dir: dir}

	if err := cfg.load(); err != nil {
		return nil, err
	}
	cfg.applyEnv()
	cfg.applyDefaults()
	return cfg, nil
}

// DefaultConfigDir returns the default configuration directory.
// Uses XDG_CONFIG_HOME if set, otherwise $HOME/.config.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home can't be determined
		return AppName
	}
	return filepath.Join(home, ".config", AppName)
}

func (c *Config) load() error {
	data, err := os.ReadFile(c.ConfigPath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}

	std, err := hujson.Standardize(data)
	if err != nil {
		return fmt.Errorf("parse %s: %w", ConfigFile, err)
	}
	if err := json.Unmarshal(std, c); err != nil {
		return fmt.Errorf("parse %s: %w", ConfigFile, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvStorageDriver); v != "" {
		c.Storage.Driver = v
	}
	if v := os.Getenv(EnvStorageDSN); v != "" {
		c.Storage.DSN = v
	}
}

// applyDefaults fills in zero-value fields.
func (c *Config) applyDefaults() {
	if c.Storage.Driver == "" {
		c.Storage.Driver = kv.DriverFile
	}
	if c.Storage.Driver == kv.DriverSQLite && c.Storage.DSN == "" {
		c.Storage.DSN = filepath.Join(c.Dir, SQLiteFile)
	}
	if c.Defaults.Filter == "" {
		c.Defaults.Filter = "all"
	}
	if c.Defaults.Sort == "" {
		c.Defaults.Sort = "created"
	}
	if c.Serve.Addr == "" {
		c.Serve.Addr = "127.0.0.1:8417"
	}
}

// ConfigPath returns the path to config.json.
func (c *Config) ConfigPath() string {
	return filepath.Join(c.Dir, ConfigFile)
}

// DataPath returns the directory used by the file storage driver.
func (c *Config) DataPath() string {
	return filepath.Join(c.Dir, DataDir)
}

// StorageOptions returns the backend options for kv.Open.
func (c *Config) StorageOptions() kv.Options {
	return kv.Options{
		Driver: c.Storage.Driver,
		DSN:    c.Storage.DSN,
		Dir:    c.DataPath(),
	}
}

// OAuthClientPath returns the path to the OAuth client credentials file.
func (c *Config) OAuthClientPath() string {
	return filepath.Join(c.Dir, OAuthClientFile)
}

// TokenPath returns the path to the stored OAuth token file.
func (c *Config) TokenPath() string {
	return filepath.Join(c.Dir, TokenFile)
}

// EnsureDir creates the config directory if it doesn't exist.
// Directory is created with mode 0700.
func (c *Config) EnsureDir() error {
	return os.MkdirAll(c.Dir, 0700)
}

// HasOAuthClient checks if the OAuth client credentials file exists.
func (c *Config) HasOAuthClient() bool {
	_, err := os.Stat(c.OAuthClientPath())
	return err == nil
}

// HasToken checks if the token file exists.
func (c *Config) HasToken() bool {
	_, err := os.Stat(c.TokenPath())
	return err == nil
}

// RemoveToken deletes the token file.
func (c *Config) RemoveToken() error {
	return os.Remove(c.TokenPath())
}
