package main

import (
	"context"
	"fmt"
	"time"

	"github.com/desertthunder/spotimine/internal/models"
	"github.com/desertthunder/spotimine/internal/shared"
	"github.com/urfave/cli/v3"
)

type historyEntry struct {
	Sequence    int        `json:"sequence"`
	ID          string     `json:"id"`
	Source      string     `json:"source"`
	Dest        string     `json:"dest"`
	Playlist    string     `json:"playlist"`
	Target      string     `json:"target_playlist_id,omitempty"`
	Mode        string     `json:"mode"`
	Status      string     `json:"status"`
	Total       int        `json:"tracks_total"`
	Copied      int        `json:"tracks_copied"`
	Skipped     int        `json:"tracks_skipped"`
	Error       string     `json:"error,omitempty"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

func newHistoryEntry(job *models.CopyJob) historyEntry {
	return historyEntry{
		Sequence:    job.Sequence(),
		ID:          job.ID(),
		Source:      job.SourceAlias(),
		Dest:        job.DestAlias(),
		Playlist:    job.SourcePlaylist(),
		Target:      job.TargetPlaylistID(),
		Mode:        string(job.Mode()),
		Status:      string(job.Status()),
		Total:       job.TracksTotal(),
		Copied:      job.TracksCopied(),
		Skipped:     job.TracksSkipped(),
		Error:       job.ErrorMessage(),
		StartedAt:   job.StartedAt(),
		CompletedAt: job.CompletedAt(),
	}
}

// History lists journaled copies, newest first.
func (r *Runner) History(ctx context.Context, cmd *cli.Command) error {
	if r.journal == nil {
		return fmt.Errorf("%w: copy journal is unavailable; run 'setup'", shared.ErrInvalidConfig)
	}

	status := cmd.String("status")
	switch models.CopyStatus(status) {
	case "", models.StatusRunning, models.StatusCompleted, models.StatusFailed:
	default:
		return fmt.Errorf("%w: status %q (valid: running, completed, failed)", shared.ErrInvalidArgument, status)
	}

	jobs, err := r.journal.List(map[string]any{
		"status":     status,
		"dest_alias": cmd.String("account"),
		"limit":      int(cmd.Int("limit")),
	})
	if err != nil {
		return err
	}

	entries := make([]historyEntry, len(jobs))
	for i, job := range jobs {
		entries[i] = newHistoryEntry(job)
	}

	if cmd.Bool("json") {
		return r.writeJSON(entries, true)
	}

	if len(entries) == 0 {
		r.printer.Info("No copies recorded yet.")
		return nil
	}

	for _, e := range entries {
		started := "-"
		if e.StartedAt != nil {
			started = e.StartedAt.Local().Format(time.DateTime)
		}
		r.writePlain("#%-4d %s  %-8s %s -> %s  %q  %s  %d/%d", e.Sequence, started, e.Mode, e.Source, e.Dest, e.Playlist, e.Status, e.Copied, e.Total)
		if e.Skipped > 0 {
			r.writePlain(" (%d skipped)", e.Skipped)
		}
		if e.Error != "" {
			r.writePlain("  %s", e.Error)
		}
		r.writePlain("\n")
	}

	if limit := int(cmd.Int("limit")); limit > 0 && len(entries) == limit {
		r.writePlainln("Showing the %d most recent copies; raise --limit to see more.", limit)
	}
	return nil
}
