// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolateHome points the config directory at a temp dir.
func isolateHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	return home
}

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, DefaultIdleTimeout, cfg.IdleTimeout())
	assert.Equal(t, time.Minute, cfg.WarnBefore())
	assert.Equal(t, "http://localhost:5000", cfg.Origin())
}

func TestLoad_NoFilesUsesDefaults(t *testing.T) {
	isolateHome(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Default().API.BaseURL, cfg.API.BaseURL)
	assert.Equal(t, "file", cfg.Session.Driver)
}

func TestLoad_TOML(t *testing.T) {
	home := isolateHome(t)
	dir := filepath.Join(home, ".instalite")
	require.NoError(t, os.MkdirAll(dir, 0700))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(`
[api]
base_url = "https://insta.example.com:8443/"

[session]
idle_timeout = "5m"
driver = "sqlite"
`), 0600))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "https://insta.example.com:8443", cfg.API.BaseURL, "trailing slash trimmed")
	assert.Equal(t, 5*time.Minute, cfg.IdleTimeout())
	assert.Equal(t, "sqlite", cfg.Session.Driver)
	assert.Equal(t, "https://insta.example.com:8443", cfg.Origin())
	// Untouched sections keep their defaults.
	assert.True(t, cfg.UI.ExpiryNotice)
}

func TestLoad_JSONFallback(t *testing.T) {
	home := isolateHome(t)
	dir := filepath.Join(home, ".instalite")
	require.NoError(t, os.MkdirAll(dir, 0700))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.json"),
		[]byte(`{"session":{"idle_timeout":"50m"}}`), 0600))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 50*time.Minute, cfg.IdleTimeout())
}

func TestLoad_BrokenTOMLReturnsDefaultsAndError(t *testing.T) {
	home := isolateHome(t)
	dir := filepath.Join(home, ".instalite")
	require.NoError(t, os.MkdirAll(dir, 0700))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte("[api\nbase_url="), 0600))

	cfg, err := Load()
	require.Error(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, DefaultIdleTimeout, cfg.IdleTimeout())
}

func TestLoadFromPath_Invalid(t *testing.T) {
	isolateHome(t)
	path := filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[session]
idle_timeout = "10s"
`), 0600))

	_, err := LoadFromPath(path)
	require.Error(t, err)

	var verrs ValidateErrors
	require.True(t, errors.As(err, &verrs))
	require.Len(t, verrs, 1)
	assert.Equal(t, "session.idle_timeout", verrs[0].Field)
}

func TestEnvOverrides(t *testing.T) {
	isolateHome(t)
	t.Setenv("INSTALITE_API_URL", "http://api.local:9000")
	t.Setenv("INSTALITE_IDLE_TIMEOUT", "30m")
	t.Setenv("INSTALITE_STORE_DRIVER", "memory")
	t.Setenv("INSTALITE_EXPIRY_NOTICE", "false")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "http://api.local:9000", cfg.API.BaseURL)
	assert.Equal(t, 30*time.Minute, cfg.IdleTimeout())
	assert.Equal(t, "memory", cfg.Session.Driver)
	assert.False(t, cfg.UI.ExpiryNotice)
}

func TestEnvOverrides_BadValue(t *testing.T) {
	isolateHome(t)
	t.Setenv("INSTALITE_API_MAX_RETRIES", "many")

	cfg := Default()
	assert.Error(t, cfg.ApplyEnvOverrides())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"bad scheme", func(c *Config) { c.API.BaseURL = "ftp://host" }, "api.base_url"},
		{"no host", func(c *Config) { c.API.BaseURL = "http://" }, "api.base_url"},
		{"timeout too long", func(c *Config) { c.API.TimeoutSecs = 1000 }, "api.timeout_secs"},
		{"negative retries", func(c *Config) { c.API.MaxRetries = -1 }, "api.max_retries"},
		{"idle not a duration", func(c *Config) { c.Session.IdleTimeout = "soon" }, "session.idle_timeout"},
		{"idle too long", func(c *Config) { c.Session.IdleTimeout = "3h" }, "session.idle_timeout"},
		{"warn longer than idle", func(c *Config) { c.Session.WarnBefore = "20m" }, "session.warn_before"},
		{"unknown driver", func(c *Config) { c.Session.Driver = "redis" }, "session.driver"},
		{"unknown theme", func(c *Config) { c.UI.Theme = "neon" }, "ui.theme"},
		{"unknown level", func(c *Config) { c.Log.Level = "trace" }, "log.level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)

			var verrs ValidateErrors
			require.True(t, errors.As(err, &verrs))
			assert.Equal(t, tt.field, verrs[0].Field)
		})
	}
}

func TestMigrate_TimeoutMinutes(t *testing.T) {
	cfg := Default()
	cfg.Version = "0.1"
	cfg.Session.IdleTimeout = ""
	cfg.Session.TimeoutMinutes = 50
	cfg.UI.Theme = "Default"

	require.NoError(t, cfg.Migrate())
	cfg.SetDefaults()

	assert.Equal(t, 50*time.Minute, cfg.IdleTimeout())
	assert.Zero(t, cfg.Session.TimeoutMinutes)
	assert.Equal(t, "auto", cfg.UI.Theme)
	assert.Equal(t, CurrentVersion, cfg.Version)
	assert.NoError(t, cfg.Validate())
}

func TestGetSet_DotNotation(t *testing.T) {
	cfg := Default()

	require.NoError(t, cfg.Set("session.idle_timeout", "20m"))
	require.NoError(t, cfg.Set("api.max_retries", "5"))
	require.NoError(t, cfg.Set("ui.mouse", "false"))
	require.NoError(t, cfg.Set("api.base_url", "http://example.org"))

	v, err := cfg.Get("session.idle_timeout")
	require.NoError(t, err)
	assert.Equal(t, "20m", v)
	assert.Equal(t, 5, cfg.API.MaxRetries)
	assert.False(t, cfg.UI.Mouse)
	assert.Equal(t, "http://example.org", cfg.API.BaseURL)

	_, err = cfg.Get("session.nope")
	assert.Error(t, err)
	assert.Error(t, cfg.Set("api.max_retries", "lots"))
	assert.Error(t, cfg.Set("", "x"))
}

func TestGetAllKeys_Resolve(t *testing.T) {
	cfg := Default()
	for _, key := range GetAllKeys() {
		_, err := cfg.Get(key)
		assert.NoError(t, err, key)
	}
}

func TestSaveAndReload(t *testing.T) {
	isolateHome(t)

	cfg := Default()
	cfg.Session.IdleTimeout = "45m"
	cfg.API.BaseURL = "http://10.0.0.2:5000"
	require.NoError(t, Save(cfg))

	path, err := ConfigPathTOML()
	require.NoError(t, err)
	info, err := os.Stat(path)
	require.NoError(t, err)
	if info.Mode().Perm() != 0600 {
		t.Errorf("config permissions = %o, want 0600", info.Mode().Perm())
	}

	loaded, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 45*time.Minute, loaded.IdleTimeout())
	assert.Equal(t, "http://10.0.0.2:5000", loaded.API.BaseURL)
}

func TestSaveJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, SaveJSON(Default(), path))

	cfg := Default()
	cfg.Session.IdleTimeout = ""
	require.NoError(t, LoadJSON(cfg, path))
	assert.Equal(t, Default().Session.IdleTimeout, cfg.Session.IdleTimeout)
}

func TestStorageDirAndLogPath(t *testing.T) {
	home := isolateHome(t)

	cfg := Default()
	dir, err := cfg.StorageDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".instalite", "storage"), dir)

	cfg.Session.StorageDir = "/var/lib/instalite"
	dir, err = cfg.StorageDir()
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/instalite", dir)

	logPath, err := cfg.LogPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".instalite", "instalite.log"), logPath)
}

// Global(), SetGlobal() and ReloadGlobal() must be race free.
// Run with: go test -race ./internal/config/
func TestConfig_ConcurrentAccess(t *testing.T) {
	isolateHome(t)
	ResetGlobalForTesting()
	defer ResetGlobalForTesting()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(3)
		go func() {
			defer wg.Done()
			SetGlobal(Default())
		}()
		go func() {
			defer wg.Done()
			if Global() == nil {
				t.Error("Global() returned nil")
			}
		}()
		go func() {
			defer wg.Done()
			_ = ReloadGlobal()
		}()
	}
	wg.Wait()
}

func TestClone_Independent(t *testing.T) {
	cfg := Default()
	clone := cfg.Clone()
	clone.API.BaseURL = "http://changed"
	assert.NotEqual(t, cfg.API.BaseURL, clone.API.BaseURL)
}
