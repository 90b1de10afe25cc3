package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/spotimine/internal/formatter"
	"github.com/desertthunder/spotimine/internal/shared"
	"github.com/desertthunder/spotimine/internal/spotify"
	"github.com/desertthunder/spotimine/internal/tasks"
	"github.com/urfave/cli/v3"
)

// SnapshotSave picks one playlist of the account and writes it to a JSON file.
func (r *Runner) SnapshotSave(ctx context.Context, cmd *cli.Command) error {
	alias, path := cmd.StringArg("alias"), cmd.StringArg("file")
	if alias == "" || path == "" {
		return fmt.Errorf("%w: usage: snapshot save <alias> <file>", shared.ErrMissingArgument)
	}
	acc, err := r.account(alias)
	if err != nil {
		return err
	}

	playlist, err := r.pickPlaylist(ctx, alias, acc, "Choose a playlist to save")
	if err != nil {
		return err
	}
	if err := spotify.SaveSnapshot(path, playlist); err != nil {
		return err
	}

	r.printer.Success("Saved %q (%d tracks) to %s", playlist.Name, len(playlist.Entries), path)
	return nil
}

func (r *Runner) SnapshotShow(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("file")
	if path == "" {
		return fmt.Errorf("%w: usage: snapshot show <file>", shared.ErrMissingArgument)
	}
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}
	playlist, err := spotify.LoadSnapshot(path)
	if err != nil {
		return err
	}
	return r.render(playlist, format)
}

// SnapshotRestore creates a new playlist on the account holding the snapshot's tracks.
func (r *Runner) SnapshotRestore(ctx context.Context, cmd *cli.Command) error {
	path, alias := cmd.StringArg("file"), cmd.StringArg("alias")
	if path == "" || alias == "" {
		return fmt.Errorf("%w: usage: snapshot restore <file> <alias>", shared.ErrMissingArgument)
	}
	acc, err := r.account(alias)
	if err != nil {
		return err
	}
	playlist, err := spotify.LoadSnapshot(path)
	if err != nil {
		return err
	}

	req := tasks.CopyRequest{
		Playlist:    playlist,
		Source:      acc,
		SourceAlias: "snapshot:" + path,
		Dest:        acc,
		DestAlias:   alias,
		Name:        cmd.String("name"),
	}

	var result *tasks.CopyResult
	err = r.prompter.Track(ctx, fmt.Sprintf("Restoring %q to %s", playlist.Name, alias), func(ctx context.Context, progress chan<- tasks.ProgressUpdate) error {
		var err error
		result, err = r.engine.Copy(ctx, req, progress)
		return err
	})
	if err != nil {
		return err
	}

	r.printer.Success("Restored %d tracks into %q on %s", result.Copied, result.Playlist.Name, alias)
	r.reportSkipped(result)
	return nil
}

// SnapshotExport writes every playlist of the account to a directory, one file per playlist
// plus a manifest.
func (r *Runner) SnapshotExport(ctx context.Context, cmd *cli.Command) error {
	alias := cmd.StringArg("alias")
	if alias == "" {
		return fmt.Errorf("%w: usage: snapshot export <alias>", shared.ErrMissingArgument)
	}
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}
	acc, err := r.account(alias)
	if err != nil {
		return err
	}

	playlists, err := r.libraryOf(ctx, alias, acc, cmd.Bool("liked"))
	if err != nil {
		return err
	}

	opts := tasks.ExportOpts{Format: format, OutputDir: cmd.String("dir")}
	var result *tasks.ExportResult
	err = r.prompter.Track(ctx, fmt.Sprintf("Exporting %d playlists", len(playlists)), func(ctx context.Context, progress chan<- tasks.ProgressUpdate) error {
		var err error
		result, err = r.engine.Export(ctx, playlists, opts, progress)
		return err
	})
	if err != nil {
		return err
	}

	m := result.Manifest
	r.writePlainHeader("Export Complete")
	r.writePlain("Directory: %s\n", result.OutputDirectory)
	r.writePlain("Manifest:  %s\n", result.ManifestPath)
	r.writePlain("Exported:  %d/%d\n", m.Succeeded, m.Total)
	for _, entry := range m.Playlists {
		if entry.Error != "" {
			r.printer.Warn("%s: %s", entry.Name, entry.Error)
		}
	}
	return nil
}
