// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"

	"github.com/jeranaias/instalite-tui/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete instalite client configuration.
type Config struct {
	// Version of the config schema
	Version string `toml:"version" json:"version"`

	API     APIConfig     `toml:"api" json:"api"`
	Session SessionConfig `toml:"session" json:"session"`
	UI      UIConfig      `toml:"ui" json:"ui"`
	Log     LogConfig     `toml:"log" json:"log"`
}

// APIConfig holds settings for the backend HTTP API.
type APIConfig struct {
	// BaseURL is the backend origin, e.g. http://localhost:5000
	BaseURL string `toml:"base_url" json:"base_url" env:"INSTALITE_API_URL"`

	// TimeoutSecs bounds a single request including retries.
	TimeoutSecs int `toml:"timeout_secs" json:"timeout_secs" env:"INSTALITE_API_TIMEOUT_SECS"`

	// MaxRetries is the number of retries for transport errors and 5xx.
	MaxRetries int `toml:"max_retries" json:"max_retries" env:"INSTALITE_API_MAX_RETRIES"`

	// RateLimit caps outgoing requests per second (0 disables).
	RateLimit float64 `toml:"rate_limit" json:"rate_limit" env:"INSTALITE_API_RATE_LIMIT"`
}

// SessionConfig holds session store and idle-timeout settings.
type SessionConfig struct {
	// IdleTimeout is the inactivity period after which the session is
	// cleared, as a Go duration string ("15m").
	IdleTimeout string `toml:"idle_timeout" json:"idle_timeout" env:"INSTALITE_IDLE_TIMEOUT"`

	// WarnBefore shows a countdown this long before expiry ("0s" disables).
	WarnBefore string `toml:"warn_before" json:"warn_before" env:"INSTALITE_IDLE_WARN_BEFORE"`

	// Driver selects the store backend: file, sqlite or memory.
	Driver string `toml:"driver" json:"driver" env:"INSTALITE_STORE_DRIVER"`

	// StorageDir overrides the store location (default ~/.instalite/storage).
	StorageDir string `toml:"storage_dir" json:"storage_dir" env:"INSTALITE_STORAGE_DIR"`

	// TimeoutMinutes is the pre-0.2 integer form of IdleTimeout.
	// Deprecated: use IdleTimeout. Converted by Migrate.
	TimeoutMinutes int `toml:"timeout_minutes,omitempty" json:"timeout_minutes,omitempty"`
}

// UIConfig holds terminal UI preferences.
type UIConfig struct {
	// Theme is auto, dark or light.
	Theme string `toml:"theme" json:"theme" env:"INSTALITE_THEME"`

	// ExpiryNotice shows a notice on the login screen after an idle logout.
	ExpiryNotice bool `toml:"expiry_notice" json:"expiry_notice" env:"INSTALITE_EXPIRY_NOTICE"`

	// Markdown renders captions and bios through glamour.
	Markdown bool `toml:"markdown" json:"markdown" env:"INSTALITE_MARKDOWN"`

	// Mouse enables mouse reporting (motion counts as activity).
	Mouse bool `toml:"mouse" json:"mouse" env:"INSTALITE_MOUSE"`
}

// LogConfig holds log file settings. The terminal belongs to the UI, so logs
// always go to a file.
type LogConfig struct {
	Level string `toml:"level" json:"level" env:"INSTALITE_LOG_LEVEL"`
	Path  string `toml:"path" json:"path" env:"INSTALITE_LOG_PATH"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

const (
	// CurrentVersion is the config schema version written by Save.
	CurrentVersion = "0.2"

	// DefaultIdleTimeout is the inactivity period before a forced logout.
	DefaultIdleTimeout = 15 * time.Minute

	// MinIdleTimeout and MaxIdleTimeout bound session.idle_timeout.
	MinIdleTimeout = time.Minute
	MaxIdleTimeout = 2 * time.Hour
)

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Version: CurrentVersion,
		API: APIConfig{
			BaseURL:     "http://localhost:5000",
			TimeoutSecs: 30,
			MaxRetries:  3,
			RateLimit:   10,
		},
		Session: SessionConfig{
			IdleTimeout: DefaultIdleTimeout.String(),
			WarnBefore:  "1m",
			Driver:      "file",
		},
		UI: UIConfig{
			Theme:        "auto",
			ExpiryNotice: true,
			Markdown:     true,
			Mouse:        true,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the instalite configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".instalite"), nil
}

// ConfigPathTOML returns the path to the TOML config file.
func ConfigPathTOML() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// ConfigPathJSON returns the path to the JSON config file.
func ConfigPathJSON() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// EnsureConfigDir ensures the config directory exists.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0700)
}

// ensureSecurePermissions tightens a config file to 0600.
func ensureSecurePermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if mode := info.Mode().Perm(); mode != 0600 {
		if err := os.Chmod(path, 0600); err != nil {
			return fmt.Errorf("failed to fix insecure permissions (was %o): %w", mode, err)
		}
	}
	return nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from ~/.instalite. TOML is tried first, then JSON,
// then built-in defaults. Environment overrides are applied last.
//
// A file that exists but cannot be decoded is reported through the returned
// error while a usable default config is still returned.
func Load() (*Config, error) {
	cfg := Default()
	var loadErr error

	if tomlPath, err := ConfigPathTOML(); err == nil {
		if _, statErr := os.Stat(tomlPath); statErr == nil {
			if err := LoadTOML(cfg, tomlPath); err != nil {
				loadErr = fmt.Errorf("failed to load TOML config: %w", err)
				cfg = Default()
			} else {
				return finish(cfg)
			}
		}
	}

	if jsonPath, err := ConfigPathJSON(); err == nil {
		if _, statErr := os.Stat(jsonPath); statErr == nil {
			if err := LoadJSON(cfg, jsonPath); err != nil {
				loadErr = errors.Join(loadErr, fmt.Errorf("failed to load JSON config: %w", err))
				cfg = Default()
			} else {
				return finish(cfg)
			}
		}
	}

	cfg, err := finish(cfg)
	if err != nil {
		return nil, err
	}
	return cfg, loadErr
}

// LoadFromPath loads configuration from an explicit file. The format is
// picked by extension; anything other than .json is read as TOML.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	if strings.HasSuffix(strings.ToLower(path), ".json") {
		if err := LoadJSON(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load JSON config from %s: %w", path, err)
		}
	} else {
		if err := LoadTOML(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load TOML config from %s: %w", path, err)
		}
	}

	return finish(cfg)
}

// LoadTOML decodes a TOML file over cfg.
func LoadTOML(cfg *Config, path string) error {
	if err := ensureSecurePermissions(path); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	return nil
}

// LoadJSON decodes a JSON file over cfg.
func LoadJSON(cfg *Config, path string) error {
	if err := ensureSecurePermissions(path); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read JSON file: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to decode JSON file: %w", err)
	}
	return nil
}

// finish runs the common post-decode pipeline.
func finish(cfg *Config) (*Config, error) {
	if err := cfg.ApplyEnvOverrides(); err != nil {
		return nil, err
	}
	if err := cfg.Migrate(); err != nil {
		return nil, fmt.Errorf("config migration failed: %w", err)
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save saves the configuration to the default TOML file.
func Save(cfg *Config) error {
	path, err := ConfigPathTOML()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML writes cfg as TOML with 0600 permissions.
func SaveTOML(cfg *Config, path string) error {
	var b strings.Builder
	b.WriteString("# instalite configuration file\n")
	b.WriteString("# Generated by instalite - edit with care\n\n")

	if err := toml.NewEncoder(&b).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := util.AtomicWriteFile(path, []byte(b.String()), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// SaveJSON writes cfg as indented JSON with 0600 permissions.
func SaveJSON(cfg *Config, path string) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate validates the configuration and returns ValidateErrors listing
// every problem found.
func (c *Config) Validate() error {
	var errs ValidateErrors
	add := func(field, format string, args ...any) {
		errs = append(errs, ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	// API
	if u, err := url.Parse(c.API.BaseURL); err != nil {
		add("api.base_url", "invalid URL: %v", err)
	} else if u.Scheme != "http" && u.Scheme != "https" {
		add("api.base_url", "scheme must be http or https, got %q", u.Scheme)
	} else if u.Host == "" {
		add("api.base_url", "missing host")
	}
	if c.API.TimeoutSecs < 1 || c.API.TimeoutSecs > 300 {
		add("api.timeout_secs", "must be between 1 and 300, got %d", c.API.TimeoutSecs)
	}
	if c.API.MaxRetries < 0 || c.API.MaxRetries > 10 {
		add("api.max_retries", "must be between 0 and 10, got %d", c.API.MaxRetries)
	}
	if c.API.RateLimit < 0 {
		add("api.rate_limit", "must not be negative")
	}

	// Session
	idle, err := time.ParseDuration(c.Session.IdleTimeout)
	switch {
	case err != nil:
		add("session.idle_timeout", "invalid duration %q", c.Session.IdleTimeout)
	case idle < MinIdleTimeout || idle > MaxIdleTimeout:
		add("session.idle_timeout", "must be between %s and %s, got %s", MinIdleTimeout, MaxIdleTimeout, idle)
	}
	if warn, err := time.ParseDuration(c.Session.WarnBefore); err != nil {
		add("session.warn_before", "invalid duration %q", c.Session.WarnBefore)
	} else if warn < 0 {
		add("session.warn_before", "must not be negative")
	} else if idle > 0 && warn >= idle {
		add("session.warn_before", "must be shorter than session.idle_timeout")
	}
	switch c.Session.Driver {
	case "file", "sqlite", "memory":
	default:
		add("session.driver", "invalid driver '%s', must be one of: file, sqlite, memory", c.Session.Driver)
	}

	// UI
	switch c.UI.Theme {
	case "auto", "dark", "light":
	default:
		add("ui.theme", "invalid theme '%s', must be one of: auto, dark, light", c.UI.Theme)
	}

	// Log
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		add("log.level", "invalid level '%s', must be one of: debug, info, warn, error", c.Log.Level)
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// SetDefaults fills empty fields with defaults.
func (c *Config) SetDefaults() {
	defaults := Default()

	if c.Version == "" {
		c.Version = defaults.Version
	}
	if c.API.BaseURL == "" {
		c.API.BaseURL = defaults.API.BaseURL
	}
	c.API.BaseURL = strings.TrimRight(c.API.BaseURL, "/")
	if c.API.TimeoutSecs == 0 {
		c.API.TimeoutSecs = defaults.API.TimeoutSecs
	}
	if c.Session.IdleTimeout == "" {
		c.Session.IdleTimeout = defaults.Session.IdleTimeout
	}
	if c.Session.WarnBefore == "" {
		c.Session.WarnBefore = defaults.Session.WarnBefore
	}
	if c.Session.Driver == "" {
		c.Session.Driver = defaults.Session.Driver
	}
	if c.UI.Theme == "" {
		c.UI.Theme = defaults.UI.Theme
	}
	if c.Log.Level == "" {
		c.Log.Level = defaults.Log.Level
	}
}

// Migrate upgrades older config files in place.
func (c *Config) Migrate() error {
	// 0.1 stored the idle timeout as whole minutes.
	if c.Session.TimeoutMinutes > 0 {
		c.Session.IdleTimeout = (time.Duration(c.Session.TimeoutMinutes) * time.Minute).String()
		c.Session.TimeoutMinutes = 0
	}

	switch strings.ToLower(c.UI.Theme) {
	case "default", "system":
		c.UI.Theme = "auto"
	default:
		c.UI.Theme = strings.ToLower(c.UI.Theme)
	}
	c.Session.Driver = strings.ToLower(c.Session.Driver)

	if c.Version == "" || c.Version == "0.1" {
		c.Version = CurrentVersion
	}
	return nil
}

// =============================================================================
// DERIVED VALUES
// =============================================================================

// IdleTimeout returns session.idle_timeout as a duration.
// Invalid values fall back to DefaultIdleTimeout; Validate reports them.
func (c *Config) IdleTimeout() time.Duration {
	d, err := time.ParseDuration(c.Session.IdleTimeout)
	if err != nil || d <= 0 {
		return DefaultIdleTimeout
	}
	return d
}

// WarnBefore returns session.warn_before as a duration (0 when disabled).
func (c *Config) WarnBefore() time.Duration {
	d, err := time.ParseDuration(c.Session.WarnBefore)
	if err != nil || d < 0 {
		return 0
	}
	return d
}

// APITimeout returns api.timeout_secs as a duration.
func (c *Config) APITimeout() time.Duration {
	return time.Duration(c.API.TimeoutSecs) * time.Second
}

// Origin returns scheme://host[:port] of the API base URL. Stored session
// data is scoped to it.
func (c *Config) Origin() string {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || u.Host == "" {
		return c.API.BaseURL
	}
	return strings.ToLower(u.Scheme) + "://" + strings.ToLower(u.Host)
}

// StorageDir returns the directory holding persisted session data.
func (c *Config) StorageDir() (string, error) {
	if c.Session.StorageDir != "" {
		return c.Session.StorageDir, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "storage"), nil
}

// LogPath returns the log file path.
func (c *Config) LogPath() (string, error) {
	if c.Log.Path != "" {
		return c.Log.Path, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "instalite.log"), nil
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies INSTALITE_* environment variables. Unset
// variables leave the current value alone.
//
// Supported environment variables:
//   - INSTALITE_API_URL, INSTALITE_API_TIMEOUT_SECS, INSTALITE_API_MAX_RETRIES,
//     INSTALITE_API_RATE_LIMIT
//   - INSTALITE_IDLE_TIMEOUT, INSTALITE_IDLE_WARN_BEFORE
//   - INSTALITE_STORE_DRIVER, INSTALITE_STORAGE_DIR
//   - INSTALITE_THEME, INSTALITE_EXPIRY_NOTICE, INSTALITE_MARKDOWN, INSTALITE_MOUSE
//   - INSTALITE_LOG_LEVEL, INSTALITE_LOG_PATH
func (c *Config) ApplyEnvOverrides() error {
	if err := env.Parse(c); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// =============================================================================
// GET/SET HELPERS (DOT NOTATION)
// =============================================================================

// Get retrieves a configuration value using dot notation (e.g. "session.idle_timeout").
func (c *Config) Get(key string) (any, error) {
	field, err := c.lookup(key)
	if err != nil {
		return nil, err
	}
	return field.Interface(), nil
}

// Set sets a configuration value using dot notation. String values are
// converted to the field's type.
func (c *Config) Set(key string, value any) error {
	field, err := c.lookup(key)
	if err != nil {
		return err
	}
	if !field.CanSet() {
		return fmt.Errorf("cannot set field: %s", key)
	}
	return setFieldValue(field, value)
}

func (c *Config) lookup(key string) (reflect.Value, error) {
	if key == "" {
		return reflect.Value{}, errors.New("empty key")
	}
	parts := strings.Split(key, ".")

	v := reflect.ValueOf(c).Elem()
	for i, part := range parts {
		fieldName := normalizeFieldName(part)
		field := v.FieldByNameFunc(func(name string) bool {
			return strings.EqualFold(name, fieldName)
		})
		if !field.IsValid() {
			return reflect.Value{}, fmt.Errorf("unknown field: %s", strings.Join(parts[:i+1], "."))
		}
		if i == len(parts)-1 {
			return field, nil
		}
		if field.Kind() != reflect.Struct {
			return reflect.Value{}, fmt.Errorf("field '%s' is not a struct", strings.Join(parts[:i+1], "."))
		}
		v = field
	}
	return reflect.Value{}, fmt.Errorf("invalid key: %s", key)
}

// normalizeFieldName converts snake_case or kebab-case to a Go field name.
// "base_url" becomes "BaseUrl", which matches BaseURL case-insensitively.
func normalizeFieldName(name string) string {
	parts := strings.FieldsFunc(name, func(r rune) bool {
		return r == '_' || r == '-'
	})

	var result strings.Builder
	for _, part := range parts {
		result.WriteString(strings.ToUpper(part[:1]))
		result.WriteString(strings.ToLower(part[1:]))
	}
	return result.String()
}

// setFieldValue assigns value to field, parsing strings as needed.
func setFieldValue(field reflect.Value, value any) error {
	if strVal, ok := value.(string); ok {
		switch field.Kind() {
		case reflect.String:
			field.SetString(strVal)
			return nil
		case reflect.Int, reflect.Int64:
			intVal, err := strconv.ParseInt(strVal, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid integer value: %v", err)
			}
			field.SetInt(intVal)
			return nil
		case reflect.Float64:
			floatVal, err := strconv.ParseFloat(strVal, 64)
			if err != nil {
				return fmt.Errorf("invalid float value: %v", err)
			}
			field.SetFloat(floatVal)
			return nil
		case reflect.Bool:
			lower := strings.ToLower(strVal)
			field.SetBool(lower == "1" || lower == "true" || lower == "yes")
			return nil
		}
	}

	val := reflect.ValueOf(value)
	if !val.IsValid() {
		return errors.New("nil value")
	}
	if val.Type().AssignableTo(field.Type()) {
		field.Set(val)
		return nil
	}
	if val.Type().ConvertibleTo(field.Type()) {
		field.Set(val.Convert(field.Type()))
		return nil
	}
	return fmt.Errorf("cannot assign %T to %s", value, field.Type())
}

// GetAllKeys returns all configuration keys in dot notation.
func GetAllKeys() []string {
	return []string{
		"version",
		"api.base_url",
		"api.timeout_secs",
		"api.max_retries",
		"api.rate_limit",
		"session.idle_timeout",
		"session.warn_before",
		"session.driver",
		"session.storage_dir",
		"ui.theme",
		"ui.expiry_notice",
		"ui.markdown",
		"ui.mouse",
		"log.level",
		"log.path",
	}
}

// Clone returns a copy of the configuration. Config holds only value
// fields, so a struct copy is deep.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// String returns the config as indented JSON for debugging.
func (c *Config) String() string {
	data, _ := json.MarshalIndent(c, "", "  ")
	return string(data)
}

// =============================================================================
// SINGLETON PATTERN (THREAD-SAFE)
// =============================================================================

var (
	globalConfig     *Config
	globalConfigOnce sync.Once
	globalConfigMu   sync.RWMutex
)

// Global returns the process-wide configuration, loading it on first use.
func Global() *Config {
	globalConfigOnce.Do(func() {
		cfg, err := Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v (using defaults)\n", err)
		}
		if cfg == nil {
			cfg = Default()
		}
		globalConfigMu.Lock()
		if globalConfig == nil {
			globalConfig = cfg
		}
		globalConfigMu.Unlock()
	})

	globalConfigMu.RLock()
	defer globalConfigMu.RUnlock()
	return globalConfig
}

// ReloadGlobal reloads the global configuration from disk.
func ReloadGlobal() error {
	cfg, err := Load()
	if err != nil {
		return err
	}
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = cfg
	return nil
}

// SetGlobal replaces the global configuration.
func SetGlobal(cfg *Config) {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = cfg
}

// ResetGlobalForTesting resets the global config state between tests.
func ResetGlobalForTesting() {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = nil
	globalConfigOnce = sync.Once{}
}
