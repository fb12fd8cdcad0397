package main

import (
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
	"github.com/iov-one/weave-market/errors"
	"github.com/joho/godotenv"
)

// envPrefix is the prefix of every environment variable overriding the
// configuration file.
const envPrefix = "MARKET_"

// Config is the daemon configuration. Values are read from the TOML file
// first and then overridden by the MARKET_* environment variables.
type Config struct {
	// Home is the directory holding the state, the genesis and the keys.
	Home string `toml:"home" env:"HOME"`
	// ListenAddr is the address of the HTTP API.
	ListenAddr string `toml:"listen_addr" env:"LISTEN_ADDR"`
	// LogLevel is one of debug, info, error or none.
	LogLevel string `toml:"log_level" env:"LOG_LEVEL"`
	// MetadataCacheTTL is how long asset metadata is served from memory.
	MetadataCacheTTL time.Duration `toml:"metadata_cache_ttl" env:"METADATA_CACHE_TTL"`
	// ShutdownTimeout bounds the graceful shutdown of the HTTP API.
	ShutdownTimeout time.Duration `toml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT"`
	// Debug exposes full error details in API responses.
	Debug bool `toml:"debug" env:"DEBUG"`
}

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return Config{
		Home:             filepath.Join(home, ".marketd"),
		ListenAddr:       "127.0.0.1:8545",
		LogLevel:         "info",
		MetadataCacheTTL: 10 * time.Minute,
		ShutdownTimeout:  5 * time.Second,
	}
}

// LoadConfig reads the configuration file at path, if it exists, on top of
// the defaults and applies the environment overrides. A .env file in the
// working directory is loaded when present.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		switch _, err := os.Stat(path); {
		case err == nil:
			if _, err := toml.DecodeFile(path, &cfg); err != nil {
				return nil, errors.Wrapf(errors.ErrInput, "config file %q: %s", path, err)
			}
		case !os.IsNotExist(err):
			return nil, errors.Wrapf(errors.ErrInput, "config file %q: %s", path, err)
		}
	}

	// Missing .env files are fine.
	_ = godotenv.Load()

	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: envPrefix}); err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "environment: %s", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate returns an error if the configuration cannot be used.
func (c *Config) Validate() error {
	var errs error
	if c.Home == "" {
		errs = errors.AppendField(errs, "Home", errors.ErrEmpty)
	}
	if c.ListenAddr == "" {
		errs = errors.AppendField(errs, "ListenAddr", errors.ErrEmpty)
	}
	switch c.LogLevel {
	case "debug", "info", "error", "none":
	default:
		errs = errors.AppendField(errs, "LogLevel",
			errors.Wrapf(errors.ErrInput, "unknown level %q", c.LogLevel))
	}
	if c.MetadataCacheTTL < 0 {
		errs = errors.AppendField(errs, "MetadataCacheTTL", errors.ErrInput)
	}
	return errs
}

// DataDir is where the state is stored.
func (c *Config) DataDir() string {
	return filepath.Join(c.Home, "data")
}

// GenesisFile is where the genesis written by init is stored.
func (c *Config) GenesisFile() string {
	return filepath.Join(c.Home, "genesis.json")
}

// KeyFile returns the path of the named key.
func (c *Config) KeyFile(name string) string {
	return filepath.Join(c.Home, "keys", name+".key")
}
