package main

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/iov-one/weave-market/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	dir, err := ioutil.TempDir("", "marketd")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "marketd.toml")
	content := `
home = "/var/lib/marketd"
listen_addr = "0.0.0.0:9000"
log_level = "debug"
metadata_cache_ttl = "1m"
`
	require.NoError(t, ioutil.WriteFile(path, []byte(content), 0600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/marketd", cfg.Home)
	assert.Equal(t, "0.0.0.0:9000", cfg.ListenAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, time.Minute, cfg.MetadataCacheTTL)
	// Not present in the file.
	assert.Equal(t, 5*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "/var/lib/marketd/data", cfg.DataDir())
	assert.Equal(t, "/var/lib/marketd/keys/alice.key", cfg.KeyFile("alice"))

	t.Setenv("MARKET_LISTEN_ADDR", "127.0.0.1:1234")
	t.Setenv("MARKET_DEBUG", "true")
	cfg, err = LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:1234", cfg.ListenAddr)
	assert.True(t, cfg.Debug)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(os.TempDir(), "does-not-exist.toml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().ListenAddr, cfg.ListenAddr)
}

func TestConfigValidate(t *testing.T) {
	cases := map[string]struct {
		Mutate  func(*Config)
		WantErr *errors.Error
	}{
		"default": {
			Mutate: func(*Config) {},
		},
		"unknown log level": {
			Mutate:  func(c *Config) { c.LogLevel = "verbose" },
			WantErr: errors.ErrInput,
		},
		"missing home": {
			Mutate:  func(c *Config) { c.Home = "" },
			WantErr: errors.ErrEmpty,
		},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.Mutate(&cfg)
			err := cfg.Validate()
			if tc.WantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.True(t, tc.WantErr.Is(err), "got %v", err)
		})
	}
}
