package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadSettingsMissingFileReturnsDefaults(t *testing.T) {
	s, err := loadSettingsFrom(filepath.Join(t.TempDir(), "nope.json"))
	if err != nil {
		t.Fatal(err)
	}
	d := DefaultSettings()
	if s.Downloader.Path != d.Downloader.Path {
		t.Errorf("downloader path = %q, want default %q", s.Downloader.Path, d.Downloader.Path)
	}
	if s.Network.UserAgent != DefaultUserAgent {
		t.Errorf("user agent = %q, want default", s.Network.UserAgent)
	}
}

func TestLoadSettingsFillsMissingFields(t *testing.T) {
	// A partial settings file keeps defaults for everything it omits.
	path := filepath.Join(t.TempDir(), "settings.json")
	err := os.WriteFile(path, []byte(`{"downloader":{"path":"/opt/yt-dlp"}}`), 0o644)
	if err != nil {
		t.Fatal(err)
	}

	s, err := loadSettingsFrom(path)
	if err != nil {
		t.Fatal(err)
	}
	if s.Downloader.Path != "/opt/yt-dlp" {
		t.Errorf("downloader path = %q", s.Downloader.Path)
	}
	if s.Downloader.MaxConcurrentDownloads != 4 {
		t.Errorf("max concurrent = %d, want default 4", s.Downloader.MaxConcurrentDownloads)
	}
	if s.Downloader.ShutdownGrace != 5*time.Second {
		t.Errorf("shutdown grace = %v, want default 5s", s.Downloader.ShutdownGrace)
	}
	if s.General.TickMillis != 100 {
		t.Errorf("tick = %d, want default 100", s.General.TickMillis)
	}
}

func TestLoadSettingsBadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	if err := os.WriteFile(path, []byte("{broken"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := loadSettingsFrom(path); err == nil {
		t.Error("expected error for malformed settings")
	}
}
