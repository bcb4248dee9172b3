// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides unified configuration loading and management
// for personachat.
//
// Supports both TOML and JSON configuration formats, with sensible
// defaults, environment variable overrides, and validation.
//
// Configuration file locations (in order of precedence):
//   - ~/.personachat/config.toml
//   - ~/.personachat/config.json
//   - Built-in defaults
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/jeranaias/personachat/internal/persona"
	"github.com/jeranaias/personachat/internal/util"
)

// CurrentVersion is written to new config files.
const CurrentVersion = "1"

// DefaultModels are the completion models offered by the UI model
// cycle key. Other models can still be set via config or flags.
var DefaultModels = []string{"gpt-3.5-turbo", "gpt-4"}

// Generation parameter bounds, matching the UI adjustment keys.
const (
	minTemperature = 0.0
	maxTemperature = 1.0
	minMaxTokens   = 64
	maxMaxTokens   = 1024
)

// Config represents the complete personachat configuration.
type Config struct {
	// Version is the config schema version.
	Version string `toml:"version" json:"version"`

	// Persona is the ID of the persona selected at startup.
	Persona string `toml:"persona" json:"persona"`

	// Completion configuration
	Completion CompletionConfig `toml:"completion" json:"completion"`

	// History persistence configuration
	History HistoryConfig `toml:"history" json:"history"`

	// UI configuration
	UI UIConfig `toml:"ui" json:"ui"`
}

// CompletionConfig configures the OpenAI-compatible backend.
type CompletionConfig struct {
	// APIKey authenticates requests. Usually left empty here and
	// supplied via OPENAI_API_KEY instead.
	APIKey string `toml:"api_key" json:"api_key"`
	// BaseURL overrides the default API endpoint.
	BaseURL string `toml:"base_url" json:"base_url"`
	// Model is the completion model for new sessions.
	Model string `toml:"model" json:"model"`
	// Temperature is the sampling temperature, 0.0 to 1.0.
	Temperature float64 `toml:"temperature" json:"temperature"`
	// MaxTokens bounds the reply length, 64 to 1024.
	MaxTokens int `toml:"max_tokens" json:"max_tokens"`
	// TimeoutSecs bounds a single completion request.
	TimeoutSecs int `toml:"timeout_secs" json:"timeout_secs"`
	// MaxRetries is the number of additional attempts after a
	// transient failure. 0 disables retries.
	MaxRetries int `toml:"max_retries" json:"max_retries"`
	// RequestsPerMinute enables client-side pacing when positive.
	RequestsPerMinute int `toml:"requests_per_minute" json:"requests_per_minute"`
}

// HistoryConfig configures conversation persistence.
type HistoryConfig struct {
	// Persist enables saving the conversation to disk.
	Persist bool `toml:"persist" json:"persist"`
	// Path is the snapshot file location. Empty means
	// ~/.personachat/chat_history.json.
	Path string `toml:"path" json:"path"`
}

// UIConfig contains presentation settings.
type UIConfig struct {
	// Theme selects colors: "auto", "dark", or "light".
	Theme string `toml:"theme" json:"theme"`
	// ShowTimestamps renders per-turn timestamps in the chat view.
	ShowTimestamps bool `toml:"show_timestamps" json:"show_timestamps"`
	// Markdown renders assistant replies through the markdown
	// renderer instead of plain text.
	Markdown bool `toml:"markdown" json:"markdown"`
}

// Default returns the built-in default configuration.
func Default() *Config {
	return &Config{
		Version: CurrentVersion,
		Persona: persona.Default().ID,
		Completion: CompletionConfig{
			Model:       "gpt-3.5-turbo",
			Temperature: 0.65,
			MaxTokens:   512,
			TimeoutSecs: 30,
			MaxRetries:  0,
		},
		History: HistoryConfig{
			Persist: false,
		},
		UI: UIConfig{
			Theme:          "auto",
			ShowTimestamps: true,
			Markdown:       true,
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the personachat configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".personachat"), nil
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
	return os.MkdirAll(dir, 0755)
}

// HistoryPath resolves the snapshot file location, applying the
// default when none is configured.
func (c *Config) HistoryPath() (string, error) {
	if c.History.Path != "" {
		return c.History.Path, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "chat_history.json"), nil
}

// ensureSecurePermissions checks and fixes permissions on config files.
// Config files may hold API keys, so anything other than 0600 is
// tightened.
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

// Load loads configuration from the config file(s).
// Tries TOML first, then JSON, and falls back to defaults.
// Environment overrides are applied last.
func Load() (*Config, error) {
	cfg := Default()

	tomlPath, err := ConfigPathTOML()
	if err == nil {
		if _, statErr := os.Stat(tomlPath); statErr == nil {
			if err := LoadTOML(cfg, tomlPath); err != nil {
				return nil, fmt.Errorf("failed to load TOML config: %w", err)
			}
			return finishLoad(cfg)
		}
	}

	jsonPath, err := ConfigPathJSON()
	if err == nil {
		if _, statErr := os.Stat(jsonPath); statErr == nil {
			if err := LoadJSON(cfg, jsonPath); err != nil {
				return nil, fmt.Errorf("failed to load JSON config: %w", err)
			}
			return finishLoad(cfg)
		}
	}

	return finishLoad(cfg)
}

// LoadFromPath loads configuration from a specific file path with full
// validation.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	if strings.HasSuffix(path, ".json") {
		if err := LoadJSON(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load JSON config from %s: %w", path, err)
		}
	} else {
		if err := LoadTOML(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load TOML config from %s: %w", path, err)
		}
	}

	return finishLoad(cfg)
}

// finishLoad applies env overrides, defaults, and validation.
func finishLoad(cfg *Config) (*Config, error) {
	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadTOML loads configuration from a TOML file.
func LoadTOML(cfg *Config, path string) error {
	if err := ensureSecurePermissions(path); err != nil {
		// Permissions might not be fixable on all systems.
		fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	return nil
}

// LoadJSON loads configuration from a JSON file.
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

// SaveTOML saves the configuration to a TOML file with 0600
// permissions.
func SaveTOML(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer file.Close()

	// Tighten permissions even if the file already existed.
	if err := os.Chmod(path, 0600); err != nil {
		return fmt.Errorf("failed to set config file permissions: %w", err)
	}

	fmt.Fprintln(file, "# personachat configuration file")
	fmt.Fprintln(file, "# Generated by personachat - edit with care")
	fmt.Fprintln(file, "")

	encoder := toml.NewEncoder(file)
	if err := encoder.Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	return nil
}

// SaveJSON saves the configuration to a JSON file with 0600
// permissions using an atomic write.
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
// DEFAULTS, VALIDATION, ENV OVERRIDES
// =============================================================================

// SetDefaults fills missing values and clamps out-of-range ones so a
// hand-edited config degrades gracefully instead of failing.
func (c *Config) SetDefaults() {
	defaults := Default()

	if c.Version == "" {
		c.Version = defaults.Version
	}
	if c.Persona == "" {
		c.Persona = defaults.Persona
	}
	if c.Completion.Model == "" {
		c.Completion.Model = defaults.Completion.Model
	}
	if c.Completion.MaxTokens == 0 {
		c.Completion.MaxTokens = defaults.Completion.MaxTokens
	}
	if c.Completion.TimeoutSecs <= 0 {
		c.Completion.TimeoutSecs = defaults.Completion.TimeoutSecs
	}
	if c.UI.Theme == "" {
		c.UI.Theme = defaults.UI.Theme
	}

	// Clamp generation knobs to slider bounds.
	if c.Completion.Temperature < minTemperature {
		c.Completion.Temperature = minTemperature
	}
	if c.Completion.Temperature > maxTemperature {
		c.Completion.Temperature = maxTemperature
	}
	if c.Completion.MaxTokens < minMaxTokens {
		c.Completion.MaxTokens = minMaxTokens
	}
	if c.Completion.MaxTokens > maxMaxTokens {
		c.Completion.MaxTokens = maxMaxTokens
	}
	if c.Completion.MaxRetries < 0 {
		c.Completion.MaxRetries = 0
	}
	if c.Completion.RequestsPerMinute < 0 {
		c.Completion.RequestsPerMinute = 0
	}
}

// ValidationError describes a single invalid config field.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks fields that cannot be fixed by clamping.
func (c *Config) Validate() error {
	if _, err := persona.Get(c.Persona); err != nil {
		return ValidationError{Field: "persona", Message: err.Error()}
	}
	if c.Completion.Model == "" {
		return ValidationError{Field: "completion.model", Message: "must not be empty"}
	}
	switch c.UI.Theme {
	case "auto", "dark", "light":
	default:
		return ValidationError{Field: "ui.theme", Message: fmt.Sprintf("unknown theme %q (valid: auto, dark, light)", c.UI.Theme)}
	}
	return nil
}

// ApplyEnvOverrides applies environment variable overrides.
func (c *Config) ApplyEnvOverrides() {
	// OPENAI_API_KEY is the primary credential source.
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		c.Completion.APIKey = key
	}

	if url := os.Getenv("OPENAI_BASE_URL"); url != "" {
		c.Completion.BaseURL = url
	}

	if model := os.Getenv("PERSONACHAT_MODEL"); model != "" {
		c.Completion.Model = model
	}

	if p := os.Getenv("PERSONACHAT_PERSONA"); p != "" {
		c.Persona = p
	}

	if persist := os.Getenv("PERSONACHAT_PERSIST"); persist != "" {
		c.History.Persist = persist == "1" || strings.ToLower(persist) == "true"
	}

	if theme := os.Getenv("PERSONACHAT_THEME"); theme != "" {
		c.UI.Theme = theme
	}

	if timeout := os.Getenv("PERSONACHAT_TIMEOUT_SECS"); timeout != "" {
		if secs, err := strconv.Atoi(timeout); err == nil && secs > 0 {
			c.Completion.TimeoutSecs = secs
		}
	}
}

// =============================================================================
// DISPLAY HELPERS
// =============================================================================

// Redacted returns a copy safe for display: the API key is replaced
// with a placeholder.
func (c *Config) Redacted() *Config {
	out := *c
	if out.Completion.APIKey != "" {
		out.Completion.APIKey = "[REDACTED]"
	}
	return &out
}

// String renders the redacted config as indented JSON for `config show`.
func (c *Config) String() string {
	data, _ := json.MarshalIndent(c.Redacted(), "", "  ")
	return string(data)
}
