package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// Settings holds all user-configurable application settings organized by category.
type Settings struct {
	General    GeneralSettings    `json:"general"`
	Network    NetworkSettings    `json:"network"`
	Downloader DownloaderSettings `json:"downloader"`
}

// GeneralSettings contains application behavior settings.
type GeneralSettings struct {
	TickMillis        int  `json:"tick_millis"`
	ClipboardFallback bool `json:"clipboard_fallback"`
	LogMaxSizeMB      int  `json:"log_max_size_mb"`
	LogMaxBackups     int  `json:"log_max_backups"`
}

// NetworkSettings contains parameters for resolution HTTP requests.
type NetworkSettings struct {
	UserAgent string `json:"user_agent"`
}

// DownloaderSettings configures the external downloader invocation and its supervision.
type DownloaderSettings struct {
	Path                   string        `json:"path"`
	OutputTemplate         string        `json:"output_template"`
	ExtraArgs              []string      `json:"extra_args"`
	MaxConcurrentDownloads int           `json:"max_concurrent_downloads"`
	ShutdownGrace          time.Duration `json:"shutdown_grace"`
}

// DefaultUserAgent is sent on every resolution request unless overridden.
// Provider pages serve different markup to unknown agents, so it mimics a browser.
const DefaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64; rv:128.0) Gecko/20100101 Firefox/128.0"

// DefaultSettings returns a new Settings instance with sensible defaults.
func DefaultSettings() *Settings {
	return &Settings{
		General: GeneralSettings{
			TickMillis:        100,
			ClipboardFallback: true,
			LogMaxSizeMB:      10,
			LogMaxBackups:     5,
		},
		Network: NetworkSettings{
			UserAgent: DefaultUserAgent,
		},
		Downloader: DownloaderSettings{
			Path:                   "yt-dlp",
			OutputTemplate:         "",
			ExtraArgs:              nil,
			MaxConcurrentDownloads: 4,
			ShutdownGrace:          5 * time.Second,
		},
	}
}

// GetSettingsPath returns the path to the settings JSON file.
func GetSettingsPath() string {
	return filepath.Join(GetAppDir(), "settings.json")
}

// LoadSettings loads settings from disk. Returns defaults if file doesn't exist.
func LoadSettings() (*Settings, error) {
	return loadSettingsFrom(GetSettingsPath())
}

func loadSettingsFrom(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultSettings(), nil
		}
		return nil, err
	}

	settings := DefaultSettings() // Start with defaults to fill any missing fields
	if err := json.Unmarshal(data, settings); err != nil {
		return nil, err
	}

	return settings, nil
}

// SaveSettings saves settings to disk atomically.
func SaveSettings(s *Settings) error {
	path := GetSettingsPath()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}

	// Atomic write: write to temp file, then rename
	tempPath := path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0o644); err != nil {
		return err
	}

	return os.Rename(tempPath, path)
}
