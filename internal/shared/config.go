package shared

import (
	_ "embed"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

//go:embed config.example.toml
var exampleConf []byte

const (
	SettingsFile    = "settings.toml"
	CredentialsFile = "config.json"
	appDirName      = "spotimine"
)

// Settings represents the application configuration loaded from a TOML file.
type Settings struct {
	Spotify SpotifySettings `toml:"spotify"`
	Client  ClientSettings  `toml:"client"`
	Storage StorageSettings `toml:"storage"`
	Log     LogSettings     `toml:"log"`
}

// SpotifySettings contains the OAuth client and endpoint configuration.
type SpotifySettings struct {
	ClientID           string `toml:"client_id"`
	AuthURL            string `toml:"auth_url"`
	TokenURL           string `toml:"token_url"`
	APIURL             string `toml:"api_url"`
	RedirectURI        string `toml:"redirect_uri"`
	CallbackAddr       string `toml:"callback_addr"`
	AuthTimeoutSeconds int    `toml:"auth_timeout_seconds"`
}

// ClientSettings tunes the API client.
type ClientSettings struct {
	TimeoutSeconds           int     `toml:"timeout_seconds"`
	RequestsPerSecond        float64 `toml:"requests_per_second"`
	DefaultRetryAfterSeconds int     `toml:"default_retry_after_seconds"`
}

// StorageSettings locates local files. An empty Dir means the OS default config directory.
type StorageSettings struct {
	Dir     string `toml:"dir"`
	Journal string `toml:"journal"`
}

// LogSettings contains logger configuration.
type LogSettings struct {
	Level string `toml:"level"`
}

// AuthTimeout returns how long the authorization flow waits for the browser redirect.
func (s SpotifySettings) AuthTimeout() time.Duration {
	return time.Duration(s.AuthTimeoutSeconds) * time.Second
}

// CallbackPath is the path component of the redirect URI, served by the callback listener.
func (s SpotifySettings) CallbackPath() string {
	u, err := url.Parse(s.RedirectURI)
	if err != nil || u.Path == "" {
		return "/"
	}
	return u.Path
}

// Timeout returns the HTTP client timeout.
func (c ClientSettings) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// DefaultRetryAfter is used when a rate-limited response carries no Retry-After header.
func (c ClientSettings) DefaultRetryAfter() time.Duration {
	return time.Duration(c.DefaultRetryAfterSeconds) * time.Second
}

// Validate checks the fields the rest of the program relies on.
func (s *Settings) Validate() error {
	switch {
	case s.Spotify.ClientID == "":
		return fmt.Errorf("%w: spotify.client_id is empty", ErrInvalidConfig)
	case s.Spotify.TokenURL == "" || s.Spotify.AuthURL == "" || s.Spotify.APIURL == "":
		return fmt.Errorf("%w: spotify endpoints must be set", ErrInvalidConfig)
	case s.Spotify.CallbackAddr == "":
		return fmt.Errorf("%w: spotify.callback_addr is empty", ErrInvalidConfig)
	case s.Client.RequestsPerSecond < 0:
		return fmt.Errorf("%w: client.requests_per_second must not be negative", ErrInvalidConfig)
	}
	return nil
}

// LoadSettings reads and parses a TOML settings file, layered over the embedded defaults.
func LoadSettings(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read settings file: %v", ErrConfigIO, err)
	}

	settings := DefaultSettings()
	if err := toml.Unmarshal(data, settings); err != nil {
		return nil, fmt.Errorf("%w: failed to parse settings: %v", ErrInvalidConfig, err)
	}

	return settings, nil
}

// DefaultSettings returns Settings loaded from the embedded example config.
func DefaultSettings() *Settings {
	var settings Settings
	if err := toml.Unmarshal(exampleConf, &settings); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &settings
}

// CreateSettingsFile writes the embedded example config to path, refusing to overwrite an existing file.
func CreateSettingsFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("settings file already exists at %s", path)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("%w: create settings directory: %v", ErrConfigIO, err)
	}

	if err := os.WriteFile(path, exampleConf, 0o644); err != nil {
		return fmt.Errorf("%w: failed to write settings file: %v", ErrConfigIO, err)
	}

	return nil
}

// ApplyEnv overlays environment overrides onto s. Values from a .env file in the working
// directory are loaded first without replacing variables that are already set.
func (s *Settings) ApplyEnv(envFiles ...string) error {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: load %s: %v", ErrInvalidConfig, f, err)
		}
	}

	if v := os.Getenv("SPOTIMINE_CLIENT_ID"); v != "" {
		s.Spotify.ClientID = v
	}
	if v := os.Getenv("SPOTIMINE_CONFIG_DIR"); v != "" {
		s.Storage.Dir = v
	}
	if v := os.Getenv("SPOTIMINE_LOG_LEVEL"); v != "" {
		s.Log.Level = v
	}
	return nil
}

// Dir resolves the storage directory, creating it if absent.
func (s *Settings) Dir() (string, error) {
	if s.Storage.Dir != "" {
		if err := os.MkdirAll(s.Storage.Dir, 0o755); err != nil {
			return "", fmt.Errorf("%w: create %s: %v", ErrConfigIO, s.Storage.Dir, err)
		}
		return s.Storage.Dir, nil
	}
	return ConfigDir()
}

// CredentialsPath is the credential store file inside the storage directory.
func (s *Settings) CredentialsPath() (string, error) {
	dir, err := s.Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, CredentialsFile), nil
}

// JournalPath is the sqlite copy journal inside the storage directory.
func (s *Settings) JournalPath() (string, error) {
	if s.Storage.Journal == ":memory:" || filepath.IsAbs(s.Storage.Journal) {
		return s.Storage.Journal, nil
	}
	dir, err := s.Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, s.Storage.Journal), nil
}
