package tasks

import (
	"fmt"

	"github.com/desertthunder/spotimine/internal/spotify"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Fraction is Step/Total clamped to [0, 1].
func (u ProgressUpdate) Fraction() float64 {
	if u.Total <= 0 {
		return 0
	}
	return min(max(float64(u.Step)/float64(u.Total), 0), 1)
}

// Operation phase enumeration
type Phase int

const (
	FetchPlaylists Phase = iota
	FetchLiked
	CreatePlaylist
	AddTracks
	ClearLiked
	SaveLiked
	Search
	ExportPlaylist
)

func (p Phase) String() string {
	switch p {
	case FetchPlaylists:
		return "fetch_playlists"
	case FetchLiked:
		return "fetch_liked"
	case CreatePlaylist:
		return "create_playlist"
	case AddTracks:
		return "add_tracks"
	case ClearLiked:
		return "clear_liked"
	case SaveLiked:
		return "save_liked"
	case Search:
		return "search"
	case ExportPlaylist:
		return "export_playlist"
	default:
		return ""
	}
}

func fetchPlaylistsUpdate(step, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchPlaylists,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Fetching playlists (%d/%d)...", step, total),
	}
}

func fetchLikedUpdate() ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchLiked,
		Step:    0,
		Total:   1,
		Message: "Fetching liked songs. This may take a while...",
	}
}

func fetchedLikedUpdate(p *spotify.Playlist) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchLiked,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Fetched %d liked songs", len(p.Entries)),
		Data:    p,
	}
}

func createPlaylistUpdate(name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CreatePlaylist,
		Step:    0,
		Total:   1,
		Message: fmt.Sprintf("Creating playlist %q...", name),
	}
}

func createdPlaylistUpdate(p *spotify.Playlist) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CreatePlaylist,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Playlist created: %s (%s)", p.Name, p.URI),
		Data:    p,
	}
}

func batchUpdate(phase Phase, done, total int) ProgressUpdate {
	verb := map[Phase]string{
		AddTracks:  "Added",
		ClearLiked: "Removed",
		SaveLiked:  "Saved",
	}[phase]
	return ProgressUpdate{
		Phase:   phase,
		Step:    done,
		Total:   total,
		Message: fmt.Sprintf("%s %d/%d tracks", verb, done, total),
	}
}

func searchUpdate(kind spotify.ContentType, query string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Search,
		Step:    0,
		Total:   1,
		Message: fmt.Sprintf("Searching for %s %q. This may take a few moments...", kind.Plural(), query),
	}
}

func exportingPlaylistUpdate(step, total int, name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportPlaylist,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Exporting: %s...", step, total, name),
	}
}

func exportCompletedUpdate(step, total int, name string, filesCount int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportPlaylist,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s (%d files)", step, total, name, filesCount),
	}
}

func exportFailedUpdate(step, total int, name string, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportPlaylist,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, name, err),
	}
}
