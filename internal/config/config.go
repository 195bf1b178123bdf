// Package config persists app-level settings: default hotkey combos, the
// artifacts directory, and the log level. Loading is tolerant: a
// missing, unreadable, or partially filled file yields defaults rather
// than an error, so a broken settings file can never block a run.
package config

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// Default settings values.
const (
	DefaultStartStopKey     = "f6"
	DefaultEmergencyStopKey = "esc"
	DefaultArtifactsDir     = ".macrod"
	DefaultLogLevel         = "info"
)

// schemaVersion is written on save; unknown versions still load
// tolerantly field by field.
const schemaVersion = 1

// Settings is the persisted app configuration.
type Settings struct {
	SchemaVersion    int    `json:"schema_version"`
	StartStopKey     string `json:"start_stop_hotkey"`
	EmergencyStopKey string `json:"emergency_stop_hotkey"`
	ArtifactsDir     string `json:"artifacts_dir"`
	LogLevel         string `json:"log_level"`
}

// DefaultSettings returns the settings used when no file exists.
func DefaultSettings() Settings {
	return Settings{
		SchemaVersion:    schemaVersion,
		StartStopKey:     DefaultStartStopKey,
		EmergencyStopKey: DefaultEmergencyStopKey,
		ArtifactsDir:     DefaultArtifactsDir,
		LogLevel:         DefaultLogLevel,
	}
}

// Dir returns the per-OS directory settings are stored in.
func Dir() string {
	switch runtime.GOOS {
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "macrod")
		}
	case "darwin":
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, "Library", "Application Support", "macrod")
		}
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".macrod")
	}
	return ".macrod"
}

// Path returns the default settings file location.
func Path() string {
	return filepath.Join(Dir(), "settings.json")
}

// Load reads settings from path, falling back to defaults for anything
// missing or malformed.
func Load(path string) Settings {
	s := DefaultSettings()

	data, err := os.ReadFile(path)
	if err != nil {
		return s
	}

	var raw struct {
		StartStopKey     *string `json:"start_stop_hotkey"`
		EmergencyStopKey *string `json:"emergency_stop_hotkey"`
		ArtifactsDir     *string `json:"artifacts_dir"`
		LogLevel         *string `json:"log_level"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return s
	}

	if v := stringValue(raw.StartStopKey); v != "" {
		s.StartStopKey = v
	}
	if v := stringValue(raw.EmergencyStopKey); v != "" {
		s.EmergencyStopKey = v
	}
	if v := stringValue(raw.ArtifactsDir); v != "" {
		s.ArtifactsDir = v
	}
	if v := strings.ToLower(stringValue(raw.LogLevel)); v != "" {
		s.LogLevel = v
	}
	return s
}

func stringValue(p *string) string {
	if p == nil {
		return ""
	}
	return strings.TrimSpace(*p)
}

// Save writes settings to path, creating parent directories as needed.
// Output is stable: two-space indent, fixed field order.
func Save(path string, s Settings) error {
	s.SchemaVersion = schemaVersion

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}
