package tasks

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/desertthunder/spotimine/internal/formatter"
	"github.com/desertthunder/spotimine/internal/spotify"
)

// ManifestFile is written at the top of every export directory.
const ManifestFile = "export_manifest.json"

// ExportOpts contains configuration for playlist exports.
type ExportOpts struct {
	Format    formatter.Format // Export format: json, csv, markdown, txt
	OutputDir string           // Base output directory (default: spotimine_export_{epoch})
}

// ExportResult summarizes an export run.
type ExportResult struct {
	OutputDirectory string
	ManifestPath    string
	Manifest        *formatter.Manifest
}

// Export renders each playlist into opts.OutputDir and writes a manifest.
//
// A playlist that fails to render or write is recorded in the manifest and does not stop the run.
func (e *PlaylistEngine) Export(ctx context.Context, playlists []*spotify.Playlist, opts ExportOpts, progress chan<- ProgressUpdate) (*ExportResult, error) {
	if opts.Format == "" {
		opts.Format = formatter.FormatJSON
	}
	if opts.OutputDir == "" {
		opts.OutputDir = fmt.Sprintf("spotimine_export_%d", time.Now().Unix())
	}

	if err := os.MkdirAll(opts.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	manifest := &formatter.Manifest{
		ExportedAt: time.Now().UTC(),
		Format:     opts.Format,
		Directory:  opts.OutputDir,
		Total:      len(playlists),
		Playlists:  make([]formatter.ManifestEntry, 0, len(playlists)),
	}

	total := len(playlists)
	for i, p := range playlists {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		e.sendProgress(progress, exportingPlaylistUpdate(i+1, total, p.Name))

		entry := formatter.ManifestEntry{Name: p.Name, URI: p.URI.String(), Tracks: len(p.Entries)}
		path, err := formatter.WriteExport(p, opts.Format, opts.OutputDir)
		if err != nil {
			entry.Error = err.Error()
			manifest.Failed++
			e.logger.Warn("export failed", "playlist", p.Name, "error", err)
			e.sendProgress(progress, exportFailedUpdate(i+1, total, p.Name, err))
		} else {
			entry.Files = []string{filepath.Base(path)}
			manifest.Succeeded++
			e.sendProgress(progress, exportCompletedUpdate(i+1, total, p.Name, len(entry.Files)))
		}
		manifest.Playlists = append(manifest.Playlists, entry)
	}

	result := &ExportResult{OutputDirectory: opts.OutputDir, Manifest: manifest}
	manifestPath := filepath.Join(opts.OutputDir, ManifestFile)
	if err := formatter.WriteManifest(manifest, manifestPath); err != nil {
		return result, fmt.Errorf("export completed but failed to write manifest: %w", err)
	}
	result.ManifestPath = manifestPath
	return result, nil
}
