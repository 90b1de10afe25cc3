// package tasks implements the bulk library operations that span many API calls.
package tasks

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotimine/internal/auth"
	"github.com/desertthunder/spotimine/internal/models"
	"github.com/desertthunder/spotimine/internal/shared"
	"github.com/desertthunder/spotimine/internal/spotify"
)

// Engine defines the bulk operations behind the CLI commands.
type Engine interface {
	// PlaylistsFor fetches every playlist the account owns or follows, each with all of its tracks.
	PlaylistsFor(ctx context.Context, acc *auth.Account, progress chan<- ProgressUpdate) ([]*spotify.Playlist, error)

	// LikedSongs fetches the account's saved tracks as a private pseudo-playlist.
	LikedSongs(ctx context.Context, acc *auth.Account, progress chan<- ProgressUpdate) (*spotify.Playlist, error)

	// Copy creates a new playlist on the destination account holding the source playlist's tracks.
	Copy(ctx context.Context, req CopyRequest, progress chan<- ProgressUpdate) (*CopyResult, error)

	// CopyToLiked replaces the destination account's liked songs with the source playlist's tracks.
	CopyToLiked(ctx context.Context, req CopyRequest, confirm Confirmer, progress chan<- ProgressUpdate) (*CopyResult, error)

	// Search runs a catalog search for one content kind.
	Search(ctx context.Context, acc *auth.Account, kind spotify.ContentType, query string, progress chan<- ProgressUpdate) ([]fmt.Stringer, error)

	// Export writes playlists to a directory in the chosen format, with a manifest.
	Export(ctx context.Context, playlists []*spotify.Playlist, opts ExportOpts, progress chan<- ProgressUpdate) (*ExportResult, error)
}

// Confirmer approves destructive operations.
type Confirmer interface {
	Confirm(prompt string) (bool, error)
}

// ConfirmFunc adapts a function to [Confirmer].
type ConfirmFunc func(prompt string) (bool, error)

func (f ConfirmFunc) Confirm(prompt string) (bool, error) { return f(prompt) }

// CopyRequest describes one copy. Dest defaults to Source and Name to the playlist's name.
type CopyRequest struct {
	Playlist    *spotify.Playlist
	Source      *auth.Account
	SourceAlias string
	Dest        *auth.Account
	DestAlias   string
	Name        string
}

func (r CopyRequest) destination() (*auth.Account, string) {
	if r.Dest == nil {
		return r.Source, r.SourceAlias
	}
	return r.Dest, r.DestAlias
}

func (r CopyRequest) validate() error {
	switch {
	case r.Playlist == nil:
		return fmt.Errorf("%w: playlist", shared.ErrMissingArgument)
	case r.Source == nil:
		return fmt.Errorf("%w: source account", shared.ErrMissingArgument)
	}
	return nil
}

// CopyResult reports what a copy wrote.
type CopyResult struct {
	Playlist *spotify.Playlist // Created playlist, nil for liked-songs copies
	Copied   int               // Tracks written
	Skipped  int               // Local-file tracks left out
	JobID    string            // Journal entry, empty without a journal
}

// PlaylistEngine implements [Engine] on top of the API client.
type PlaylistEngine struct {
	client  *spotify.Client
	journal models.Repository[*models.CopyJob]
	logger  *log.Logger
}

// NewPlaylistEngine creates a PlaylistEngine. journal may be nil to skip journaling.
func NewPlaylistEngine(client *spotify.Client, journal models.Repository[*models.CopyJob], logger *log.Logger) *PlaylistEngine {
	if logger == nil {
		logger = shared.NewDiscardLogger()
	}
	return &PlaylistEngine{client: client, journal: journal, logger: logger}
}

// sendProgress sends a progress update through the channel without blocking.
func (e *PlaylistEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

func (e *PlaylistEngine) batchProgress(progress chan<- ProgressUpdate, phase Phase) func(done, total int) {
	return func(done, total int) {
		e.sendProgress(progress, batchUpdate(phase, done, total))
	}
}

// PlaylistsFor lists the account's playlist ids and fetches each playlist in full.
func (e *PlaylistEngine) PlaylistsFor(ctx context.Context, acc *auth.Account, progress chan<- ProgressUpdate) ([]*spotify.Playlist, error) {
	ids, err := spotify.MyPlaylistIDs(ctx, e.client, acc)
	if err != nil {
		return nil, err
	}

	playlists := make([]*spotify.Playlist, 0, len(ids))
	for i, id := range ids {
		e.sendProgress(progress, fetchPlaylistsUpdate(i+1, len(ids)))
		p, err := spotify.Playlists.FromID(ctx, e.client, acc, id)
		if err != nil {
			return nil, fmt.Errorf("playlist %s: %w", id, err)
		}
		playlists = append(playlists, p)
	}
	return playlists, nil
}

// LikedSongs fetches every saved track.
func (e *PlaylistEngine) LikedSongs(ctx context.Context, acc *auth.Account, progress chan<- ProgressUpdate) (*spotify.Playlist, error) {
	e.sendProgress(progress, fetchLikedUpdate())
	p, err := spotify.LikedSongs(ctx, e.client, acc)
	if err != nil {
		return nil, err
	}
	e.sendProgress(progress, fetchedLikedUpdate(p))
	return p, nil
}

// Copy creates the playlist on the destination with the same visibility and description,
// then appends the tracks in batches.
func (e *PlaylistEngine) Copy(ctx context.Context, req CopyRequest, progress chan<- ProgressUpdate) (*CopyResult, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	dest, destAlias := req.destination()
	name := req.Name
	if name == "" {
		name = req.Playlist.Name
	}

	uris, skipped := copyable(req.Playlist)
	e.warnSkipped(req.Playlist.Name, skipped)

	job := e.startJob(req.SourceAlias, destAlias, req.Playlist.Name, models.ModePlaylist, len(req.Playlist.Entries))
	result := &CopyResult{Skipped: skipped, JobID: jobID(job)}

	err := func() error {
		if dest.UserID == "" {
			if _, err := spotify.Me(ctx, e.client, dest); err != nil {
				return err
			}
		}

		e.sendProgress(progress, createPlaylistUpdate(name))
		created, err := spotify.CreatePlaylist(ctx, e.client, dest, dest.UserID, name, req.Playlist.Description, req.Playlist.Visibility)
		if err != nil {
			return err
		}
		result.Playlist = created
		if job != nil {
			job.SetTargetPlaylistID(created.URI.ID())
		}
		e.sendProgress(progress, createdPlaylistUpdate(created))

		if err := spotify.AddTracks(ctx, e.client, dest, created.URI.ID(), uris, e.batchProgress(progress, AddTracks)); err != nil {
			return err
		}
		result.Copied = len(uris)
		return nil
	}()

	e.finishJob(job, result, err)
	if err != nil {
		return result, err
	}

	e.logger.Info("copied playlist", "name", name, "to", destAlias, "tracks", result.Copied)
	return result, nil
}

// CopyToLiked asks confirm before touching anything, clears the destination's liked songs and
// saves the source tracks in their place. A nil confirm or a declined prompt returns
// [shared.ErrCancelled].
func (e *PlaylistEngine) CopyToLiked(ctx context.Context, req CopyRequest, confirm Confirmer, progress chan<- ProgressUpdate) (*CopyResult, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	dest, destAlias := req.destination()

	if confirm == nil {
		return nil, fmt.Errorf("%w: overwriting liked songs requires confirmation", shared.ErrCancelled)
	}
	ok, err := confirm.Confirm(fmt.Sprintf("Overwrite ALL liked songs of %q with %q?", destAlias, req.Playlist.Name))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, shared.ErrCancelled
	}

	uris, skipped := copyable(req.Playlist)
	e.warnSkipped(req.Playlist.Name, skipped)
	ids := make([]string, len(uris))
	for i, u := range uris {
		ids[i] = u.ID()
	}

	job := e.startJob(req.SourceAlias, destAlias, req.Playlist.Name, models.ModeLiked, len(req.Playlist.Entries))
	result := &CopyResult{Skipped: skipped, JobID: jobID(job)}

	err = func() error {
		current, err := e.LikedSongs(ctx, dest, progress)
		if err != nil {
			return err
		}
		existing, _ := copyable(current)
		existingIDs := make([]string, len(existing))
		for i, u := range existing {
			existingIDs[i] = u.ID()
		}

		if err := spotify.RemoveSavedTracks(ctx, e.client, dest, existingIDs, e.batchProgress(progress, ClearLiked)); err != nil {
			return err
		}
		if err := spotify.SaveTracks(ctx, e.client, dest, ids, e.batchProgress(progress, SaveLiked)); err != nil {
			return err
		}
		result.Copied = len(ids)
		return nil
	}()

	e.finishJob(job, result, err)
	if err != nil {
		return result, err
	}

	e.logger.Info("replaced liked songs", "account", destAlias, "tracks", result.Copied)
	return result, nil
}

// Search dispatches to the resource for kind and returns displayable results.
func (e *PlaylistEngine) Search(ctx context.Context, acc *auth.Account, kind spotify.ContentType, query string, progress chan<- ProgressUpdate) ([]fmt.Stringer, error) {
	if query == "" {
		return nil, fmt.Errorf("%w: search query", shared.ErrMissingArgument)
	}
	e.sendProgress(progress, searchUpdate(kind, query))

	switch kind {
	case spotify.ContentTrack:
		items, err := spotify.Tracks.Search(ctx, e.client, acc, query)
		return stringers(items), err
	case spotify.ContentArtist:
		items, err := spotify.Artists.Search(ctx, e.client, acc, query)
		return stringers(items), err
	case spotify.ContentAlbum:
		items, err := spotify.Albums.Search(ctx, e.client, acc, query)
		return stringers(items), err
	case spotify.ContentPlaylist:
		items, err := spotify.Playlists.Search(ctx, e.client, acc, query)
		return stringers(items), err
	default:
		return nil, fmt.Errorf("%w: content type %d", shared.ErrInvalidArgument, kind)
	}
}

func stringers[T fmt.Stringer](items []T) []fmt.Stringer {
	out := make([]fmt.Stringer, len(items))
	for i, item := range items {
		out[i] = item
	}
	return out
}

// copyable returns the uris of tracks the API can write, in playlist order, and the number of
// local-file tracks left out.
func copyable(p *spotify.Playlist) ([]spotify.URI, int) {
	uris := make([]spotify.URI, 0, len(p.Entries))
	skipped := 0
	for _, entry := range p.Entries {
		if entry.Track.IsLocal || entry.Track.URI == "" {
			skipped++
			continue
		}
		uris = append(uris, entry.Track.URI)
	}
	return uris, skipped
}

func (e *PlaylistEngine) warnSkipped(playlist string, skipped int) {
	if skipped > 0 {
		e.logger.Warn("skipping local tracks that cannot be added through the API", "playlist", playlist, "count", skipped)
	}
}

// startJob records a running journal entry. Journal failures never stop a copy.
func (e *PlaylistEngine) startJob(sourceAlias, destAlias, playlist string, mode models.CopyMode, total int) *models.CopyJob {
	if e.journal == nil {
		return nil
	}
	job := models.NewCopyJob(sourceAlias, destAlias, playlist, mode)
	job.SetTracksTotal(total)
	if err := e.journal.Create(job); err != nil {
		e.logger.Warn("failed to journal copy", "error", err)
		return nil
	}
	return job
}

func (e *PlaylistEngine) finishJob(job *models.CopyJob, result *CopyResult, err error) {
	if job == nil {
		return
	}
	if err != nil {
		job.SetTracksCopied(result.Copied)
		job.SetTracksSkipped(result.Skipped)
		job.Fail(err)
	} else {
		job.Complete(result.Copied, result.Skipped)
	}
	if err := e.journal.Update(job); err != nil {
		e.logger.Warn("failed to update copy journal", "job", job.ID(), "error", err)
	}
}

func jobID(job *models.CopyJob) string {
	if job == nil {
		return ""
	}
	return job.ID()
}
