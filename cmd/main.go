package main

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/desertthunder/spotimine/internal/auth"
	"github.com/desertthunder/spotimine/internal/models"
	"github.com/desertthunder/spotimine/internal/repositories"
	"github.com/desertthunder/spotimine/internal/shared"
	"github.com/desertthunder/spotimine/internal/spotify"
	"github.com/desertthunder/spotimine/internal/tasks"
	"github.com/desertthunder/spotimine/internal/ui"
)

func main() {
	logger := shared.NewLogger(nil)

	settings, settingsPath, err := loadSettings()
	if err != nil {
		logger.Fatalf("failed to load settings: %v", err)
	}
	if err := shared.SetLogLevel(logger, settings.Log.Level); err != nil {
		logger.Fatalf("invalid settings: %v", err)
	}
	if err := settings.Validate(); err != nil {
		logger.Fatalf("invalid settings: %v", err)
	}

	credentialsPath, err := settings.CredentialsPath()
	if err != nil {
		logger.Fatalf("failed to locate credentials: %v", err)
	}
	store, err := auth.LoadStore(credentialsPath)
	if err != nil {
		logger.Fatalf("failed to load credentials: %v", err)
	}

	var journal models.Repository[*models.CopyJob]
	db, err := openJournal(settings)
	if err != nil {
		logger.Warn("copy journal disabled", "error", err)
	} else {
		journal = repositories.NewCopyJobRepository(db)
	}

	httpClient := &http.Client{Timeout: settings.Client.Timeout()}
	manager := auth.NewManager(auth.ManagerOpts{
		Settings:   settings.Spotify,
		Store:      store,
		HTTPClient: httpClient,
		Logger:     logger.WithPrefix("auth"),
	})
	client := spotify.NewClient(spotify.ClientOpts{
		BaseURL:           settings.Spotify.APIURL,
		HTTPClient:        httpClient,
		Tokens:            manager,
		RequestsPerSecond: settings.Client.RequestsPerSecond,
		DefaultRetryAfter: settings.Client.DefaultRetryAfter(),
		Logger:            logger.WithPrefix("api"),
	})

	input := bufio.NewReader(os.Stdin)
	runner := NewRunner(RunnerOpts{
		Settings:     settings,
		SettingsPath: settingsPath,
		Store:        store,
		Auth:         manager,
		Tokens:       manager,
		Client:       client,
		Engine:       tasks.NewPlaylistEngine(client, journal, logger.WithPrefix("tasks")),
		Journal:      journal,
		Logger:       logger,
		Output:       os.Stdout,
		Input:        input,
		Prompter:     ui.NewPrompter(os.Stdin, input, os.Stdout),
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := runner.Run(ctx, os.Args)
	stop()

	if db != nil {
		db.Close()
	}
	if err := store.Save(); err != nil {
		logger.Fatalf("failed to save credentials: %v", err)
	}
	os.Exit(code)
}

func openJournal(settings *shared.Settings) (*sql.DB, error) {
	path, err := settings.JournalPath()
	if err != nil {
		return nil, err
	}
	return shared.OpenJournal(path)
}

// loadSettings layers settings.toml from the storage directory and the environment over the
// embedded defaults. It returns the settings file path whether or not the file exists.
func loadSettings() (*shared.Settings, string, error) {
	settings := shared.DefaultSettings()
	if err := settings.ApplyEnv(); err != nil {
		return nil, "", err
	}

	dir, err := settings.Dir()
	if err != nil {
		return nil, "", err
	}
	path := filepath.Join(dir, shared.SettingsFile)

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return settings, path, nil
	}

	loaded, err := shared.LoadSettings(path)
	if err != nil {
		return nil, "", err
	}
	if err := loaded.ApplyEnv(); err != nil {
		return nil, "", err
	}
	return loaded, path, nil
}
