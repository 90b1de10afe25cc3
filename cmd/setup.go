package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/desertthunder/spotimine/internal/shared"
	"github.com/urfave/cli/v3"
)

// Setup writes the default settings file when missing and migrates the copy journal.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	settingsPath := r.settingsPath
	if settingsPath == "" {
		dir, err := r.settings.Dir()
		if err != nil {
			return err
		}
		settingsPath = filepath.Join(dir, shared.SettingsFile)
	}

	if _, err := os.Stat(settingsPath); err == nil {
		r.logger.Info("settings file already exists", "path", settingsPath)
	} else {
		r.logger.Info("settings file not found, creating from template", "path", settingsPath)
		if err := shared.CreateSettingsFile(settingsPath); err != nil {
			return err
		}
	}

	journalPath, err := r.settings.JournalPath()
	if err != nil {
		return err
	}

	r.logger.Info("initializing copy journal", "path", journalPath)
	db, err := shared.NewDatabase(journalPath)
	if err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}
	defer db.Close()

	if cmd.Bool("rollback") {
		r.logger.Info("rolling back latest journal migration")
		if err := shared.RollbackMigration(db); err != nil {
			return fmt.Errorf("failed to roll back migration: %w", err)
		}
	} else {
		r.logger.Info("running database migrations")
		if err := shared.RunMigrations(db); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	version, err := shared.CurrentVersion(db)
	if err != nil {
		return err
	}

	r.printer.Success("Settings: %s", settingsPath)
	r.printer.Success("Journal:  %s (schema version %d)", journalPath, version)
	return nil
}
