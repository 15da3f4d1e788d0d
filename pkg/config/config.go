// Package config loads clarity.toml project configuration.
//
// Configuration is optional: every field has a working default, and CLI
// flags override file values. The file is searched in the current
// directory and then in the user config directory (~/.config/clarity/).
package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/BrennerSpear/clarity/pkg/errors"
)

// FileName is the project configuration file name.
const FileName = "clarity.toml"

// Config is the full clarity.toml document.
type Config struct {
	Layout Layout `toml:"layout"`
	Render Render `toml:"render"`
	Cache  Cache  `toml:"cache"`
	Store  Store  `toml:"store"`
	OpenAI OpenAI `toml:"openai"`
}

// Layout holds layout-stage defaults.
type Layout struct {
	Mode         string  `toml:"mode"`
	NoGrouping   bool    `toml:"no_grouping"`
	MinGroupSize int     `toml:"min_group_size"`
	CellSize     float64 `toml:"cell_size"`
}

// Render holds render-stage defaults.
type Render struct {
	Formats []string `toml:"formats"`
	Title   string   `toml:"title"`
}

// Cache selects and configures the cache backend.
type Cache struct {
	// Backend is "file", "redis" or "none". Defaults to "file".
	Backend string `toml:"backend"`
	// Dir overrides the file cache directory.
	Dir string `toml:"dir"`
	// Redis connection settings, used when Backend is "redis".
	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
}

// Store selects and configures the run store.
type Store struct {
	// Backend is "file" or "mongo". Defaults to "file".
	Backend string `toml:"backend"`
	// Dir overrides the file store directory.
	Dir string `toml:"dir"`
	// Mongo connection settings, used when Backend is "mongo".
	MongoURI      string `toml:"mongo_uri"`
	MongoDatabase string `toml:"mongo_database"`
}

// OpenAI configures the enhancement model.
type OpenAI struct {
	Model string `toml:"model"`
	// APIKeyEnv names the environment variable holding the key.
	// Defaults to OPENAI_API_KEY.
	APIKeyEnv string `toml:"api_key_env"`
}

// Default returns the zero configuration with defaults applied.
func Default() Config {
	var c Config
	c.setDefaults()
	return c
}

func (c *Config) setDefaults() {
	if c.Cache.Backend == "" {
		c.Cache.Backend = "file"
	}
	if c.Store.Backend == "" {
		c.Store.Backend = "file"
	}
	if c.OpenAI.APIKeyEnv == "" {
		c.OpenAI.APIKeyEnv = "OPENAI_API_KEY"
	}
}

// APIKey resolves the OpenAI key from the configured environment variable.
func (c Config) APIKey() string {
	return os.Getenv(c.OpenAI.APIKeyEnv)
}

// Load reads configuration from the given path. An empty path triggers
// the default search order; a missing file yields the defaults.
func Load(path string) (Config, error) {
	if path == "" {
		path = findConfig()
	}
	if path == "" {
		return Default(), nil
	}

	var c Config
	if _, err := toml.DecodeFile(path, &c); err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "load %s", path)
	}
	c.setDefaults()
	return c, nil
}

// findConfig returns the first config file that exists in the search
// order, or the empty string.
func findConfig() string {
	if _, err := os.Stat(FileName); err == nil {
		return FileName
	}
	if dir, err := os.UserConfigDir(); err == nil {
		path := filepath.Join(dir, "clarity", FileName)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
