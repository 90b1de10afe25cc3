package shared

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestSettings(t *testing.T) {
	t.Run("DefaultSettings", func(t *testing.T) {
		settings := DefaultSettings()

		if settings.Spotify.ClientID != "d75a5cecbe5c4b71869c602e802ba265" {
			t.Errorf("unexpected default client id %q", settings.Spotify.ClientID)
		}
		if settings.Spotify.CallbackAddr != "127.0.0.1:8888" {
			t.Errorf("expected callback addr 127.0.0.1:8888, got %s", settings.Spotify.CallbackAddr)
		}
		if got := settings.Spotify.CallbackPath(); got != "/callback.html" {
			t.Errorf("expected callback path /callback.html, got %s", got)
		}
		if got := settings.Client.DefaultRetryAfter(); got != 5*time.Second {
			t.Errorf("expected default retry-after 5s, got %v", got)
		}
		if err := settings.Validate(); err != nil {
			t.Errorf("default settings should validate: %v", err)
		}
	})

	t.Run("CreateSettingsFile", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", SettingsFile)

		if err := CreateSettingsFile(path); err != nil {
			t.Fatalf("failed to create settings file: %v", err)
		}

		settings, err := LoadSettings(path)
		if err != nil {
			t.Fatalf("failed to load created settings: %v", err)
		}
		if settings.Spotify.APIURL != DefaultSettings().Spotify.APIURL {
			t.Errorf("created settings api url doesn't match default")
		}

		if err := CreateSettingsFile(path); err == nil {
			t.Error("creating settings file again should fail")
		}
	})

	t.Run("LoadSettings layers over defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), SettingsFile)
		content := "[client]\nrequests_per_second = 2.5\n\n[log]\nlevel = \"debug\"\n"
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("failed to write settings: %v", err)
		}

		settings, err := LoadSettings(path)
		if err != nil {
			t.Fatalf("failed to load settings: %v", err)
		}
		if settings.Client.RequestsPerSecond != 2.5 {
			t.Errorf("expected 2.5 requests per second, got %v", settings.Client.RequestsPerSecond)
		}
		if settings.Log.Level != "debug" {
			t.Errorf("expected debug level, got %s", settings.Log.Level)
		}
		if settings.Spotify.TokenURL == "" {
			t.Error("token url should fall back to default")
		}
	})

	t.Run("LoadSettings errors", func(t *testing.T) {
		if _, err := LoadSettings(filepath.Join(t.TempDir(), "missing.toml")); !errors.Is(err, ErrConfigIO) {
			t.Errorf("expected ErrConfigIO, got %v", err)
		}

		path := filepath.Join(t.TempDir(), SettingsFile)
		if err := os.WriteFile(path, []byte("[spotify\nclient_id ="), 0o644); err != nil {
			t.Fatalf("failed to write settings: %v", err)
		}
		if _, err := LoadSettings(path); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("Validate", func(t *testing.T) {
		settings := DefaultSettings()
		settings.Spotify.ClientID = ""
		if err := settings.Validate(); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig for empty client id, got %v", err)
		}

		settings = DefaultSettings()
		settings.Client.RequestsPerSecond = -1
		if err := settings.Validate(); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig for negative rate, got %v", err)
		}
	})

	t.Run("ApplyEnv", func(t *testing.T) {
		dir := t.TempDir()
		envFile := filepath.Join(dir, ".env")
		if err := os.WriteFile(envFile, []byte("SPOTIMINE_LOG_LEVEL=warn\n"), 0o644); err != nil {
			t.Fatalf("failed to write env file: %v", err)
		}
		t.Setenv("SPOTIMINE_CLIENT_ID", "abc123")
		t.Setenv("SPOTIMINE_CONFIG_DIR", dir)
		t.Setenv("SPOTIMINE_LOG_LEVEL", "")
		os.Unsetenv("SPOTIMINE_LOG_LEVEL")

		settings := DefaultSettings()
		if err := settings.ApplyEnv(envFile, filepath.Join(dir, "missing.env")); err != nil {
			t.Fatalf("ApplyEnv failed: %v", err)
		}

		if settings.Spotify.ClientID != "abc123" {
			t.Errorf("expected client id override, got %s", settings.Spotify.ClientID)
		}
		if settings.Storage.Dir != dir {
			t.Errorf("expected storage dir %s, got %s", dir, settings.Storage.Dir)
		}
		if settings.Log.Level != "warn" {
			t.Errorf("expected level from .env, got %s", settings.Log.Level)
		}
	})

	t.Run("Paths", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "store")
		settings := DefaultSettings()
		settings.Storage.Dir = dir

		creds, err := settings.CredentialsPath()
		if err != nil {
			t.Fatalf("CredentialsPath failed: %v", err)
		}
		if creds != filepath.Join(dir, CredentialsFile) {
			t.Errorf("unexpected credentials path %s", creds)
		}
		AssertDirExists(t, dir)

		journal, err := settings.JournalPath()
		if err != nil {
			t.Fatalf("JournalPath failed: %v", err)
		}
		if journal != filepath.Join(dir, "journal.db") {
			t.Errorf("unexpected journal path %s", journal)
		}

		settings.Storage.Journal = ":memory:"
		if journal, _ := settings.JournalPath(); journal != ":memory:" {
			t.Errorf("expected :memory: passthrough, got %s", journal)
		}
	})
}

func AssertDirExists(t *testing.T, dir string) {
	t.Helper()
	info, err := os.Stat(dir)
	if err != nil {
		t.Fatalf("expected directory %s to exist: %v", dir, err)
	}
	if !info.IsDir() {
		t.Fatalf("expected %s to be a directory", dir)
	}
}
