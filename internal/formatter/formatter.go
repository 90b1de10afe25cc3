// package formatter renders playlists as JSON, CSV, Markdown or plain text and writes export files.
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/desertthunder/spotimine/internal/shared"
	"github.com/desertthunder/spotimine/internal/spotify"
)

// Format names an output format.
type Format string

const (
	FormatText     Format = "txt"
	FormatJSON     Format = "json"
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "markdown"
)

// Formats lists every supported format.
var Formats = []Format{FormatText, FormatJSON, FormatCSV, FormatMarkdown}

// ParseFormat accepts a format name or common alias ("md", "text").
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "txt", "text":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	case "csv":
		return FormatCSV, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	}
	return "", fmt.Errorf("%w: format %q (valid: txt, json, csv, markdown)", shared.ErrInvalidArgument, s)
}

// Extension is the file extension written for f, without the dot.
func (f Format) Extension() string {
	if f == FormatMarkdown {
		return "md"
	}
	return string(f)
}

// Render converts p to f.
func Render(p *spotify.Playlist, f Format) ([]byte, error) {
	switch f {
	case FormatJSON:
		return ExportToJSON(p)
	case FormatCSV:
		return ExportToCSV(p)
	case FormatMarkdown:
		return ExportToMarkdown(p)
	case FormatText:
		return ExportToText(p)
	}
	return nil, fmt.Errorf("%w: format %q", shared.ErrInvalidArgument, f)
}

// ExportToJSON encodes p in the snapshot format read by [spotify.LoadSnapshot].
func ExportToJSON(p *spotify.Playlist) ([]byte, error) {
	return shared.MarshalJSON(p, true)
}

// ExportToCSV converts a playlist to CSV with columns: URI, Name, Artists, Album, Duration, Added
func ExportToCSV(p *spotify.Playlist) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"URI", "Name", "Artists", "Album", "Duration", "Added"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, entry := range p.Entries {
		track := entry.Track
		album := ""
		if track.Album != nil {
			album = track.Album.Name
		}
		record := []string{
			track.URI.String(),
			track.Name,
			track.ArtistNames(),
			album,
			strconv.Itoa(track.DurationMS / 1000),
			entry.AddedAtRaw,
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts a playlist to a Markdown document with a numbered track list.
func ExportToMarkdown(p *spotify.Playlist) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# %s\n\n", p.Name)
	if p.Description != "" {
		fmt.Fprintf(&buf, "**Description**: %s\n\n", p.Description)
	}
	if p.Owner != "" {
		fmt.Fprintf(&buf, "**Owner**: %s\n", p.Owner)
	}
	fmt.Fprintf(&buf, "**Tracks**: %d\n", len(p.Entries))
	fmt.Fprintf(&buf, "**Followers**: %d\n", p.Followers)
	fmt.Fprintf(&buf, "**Visibility**: %s\n\n", p.Visibility)

	buf.WriteString("## Tracks\n\n")
	for i, entry := range p.Entries {
		track := entry.Track
		albumPart := ""
		if track.Album != nil && track.Album.Name != "" {
			albumPart = fmt.Sprintf(" (%s)", track.Album.Name)
		}
		fmt.Fprintf(&buf, "%d. %s - %s%s [%s]\n", i+1, track.ArtistNames(), track.Name, albumPart, track.Duration())
	}

	return buf.Bytes(), nil
}

// ExportToText converts a playlist to plain text, one track per line.
func ExportToText(p *spotify.Playlist) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "Playlist: %s\n", p.Name)
	if p.Description != "" {
		fmt.Fprintf(&buf, "Description: %s\n", p.Description)
	}
	fmt.Fprintf(&buf, "Tracks: %d\n\n", len(p.Entries))

	for i, entry := range p.Entries {
		fmt.Fprintf(&buf, "%d. %s\n", i+1, entry.Track)
	}

	return buf.Bytes(), nil
}

// FileName builds "<slug>_<id>.<ext>" for p, falling back to the slug alone when p has no uri.
func FileName(p *spotify.Playlist, f Format) string {
	base := slug(p.Name)
	if id := p.URI.ID(); id != "" {
		base += "_" + id
	}
	return base + "." + f.Extension()
}

func slug(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(name) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	s := strings.TrimSuffix(b.String(), "-")
	if s == "" {
		return "playlist"
	}
	return s
}

// WriteExport renders p and writes it into dir, returning the file path.
func WriteExport(p *spotify.Playlist, f Format, dir string) (string, error) {
	data, err := Render(p, f)
	if err != nil {
		return "", fmt.Errorf("failed to render %s: %w", f, err)
	}

	path := filepath.Join(dir, FileName(p, f))
	if err := shared.WriteFileAtomic(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}

// ManifestEntry records the outcome for one exported playlist.
type ManifestEntry struct {
	Name   string   `json:"name"`
	URI    string   `json:"uri,omitempty"`
	Tracks int      `json:"tracks"`
	Files  []string `json:"files,omitempty"`
	Error  string   `json:"error,omitempty"`
}

// Manifest summarizes an export directory.
type Manifest struct {
	ExportedAt time.Time       `json:"exported_at"`
	Format     Format          `json:"format"`
	Directory  string          `json:"directory"`
	Total      int             `json:"total"`
	Succeeded  int             `json:"succeeded"`
	Failed     int             `json:"failed"`
	Playlists  []ManifestEntry `json:"playlists"`
}

// WriteManifest writes m as indented JSON to path.
func WriteManifest(m *Manifest, path string) error {
	data, err := shared.MarshalJSON(m, true)
	if err != nil {
		return fmt.Errorf("failed to encode manifest: %w", err)
	}
	if err := shared.WriteFileAtomic(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}
