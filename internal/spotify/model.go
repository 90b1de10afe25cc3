package spotify

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/desertthunder/spotimine/internal/shared"
)

// ContentType selects one of the four catalog object kinds.
type ContentType int

const (
	ContentTrack ContentType = iota
	ContentArtist
	ContentAlbum
	ContentPlaylist
)

var contentNames = map[ContentType]string{
	ContentTrack:    "track",
	ContentArtist:   "artist",
	ContentAlbum:    "album",
	ContentPlaylist: "playlist",
}

func (t ContentType) String() string {
	if name, ok := contentNames[t]; ok {
		return name
	}
	return "unknown"
}

// Plural is the path segment and response key used for collections ("tracks").
func (t ContentType) Plural() string {
	return t.String() + "s"
}

// ParseContentType accepts the singular or plural name.
func ParseContentType(s string) (ContentType, error) {
	s = strings.TrimSuffix(strings.ToLower(strings.TrimSpace(s)), "s")
	for t, name := range contentNames {
		if name == s {
			return t, nil
		}
	}
	return 0, fmt.Errorf("%w: content type %q (valid: track, album, artist, playlist)", shared.ErrInvalidArgument, s)
}

// Visibility of a playlist.
type Visibility int

const (
	Private Visibility = iota
	Public
	Collaborative
)

// VisibilityFrom derives the visibility from the API flags. Collaborative wins.
func VisibilityFrom(collaborative, public bool) Visibility {
	switch {
	case collaborative:
		return Collaborative
	case public:
		return Public
	default:
		return Private
	}
}

func (v Visibility) String() string {
	switch v {
	case Public:
		return "public"
	case Collaborative:
		return "collaborative"
	default:
		return "private"
	}
}

// MarshalText encodes the visibility by name.
func (v Visibility) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// UnmarshalText decodes a visibility name.
func (v *Visibility) UnmarshalText(text []byte) error {
	switch string(text) {
	case "public":
		*v = Public
	case "collaborative":
		*v = Collaborative
	case "private", "":
		*v = Private
	default:
		return fmt.Errorf("%w: visibility %q", shared.ErrInvalidInput, text)
	}
	return nil
}

// Artist is a performer.
type Artist struct {
	Name string `json:"name"`
	URI  URI    `json:"uri"`
}

// Album is a release. Tracks are present when the album was fetched directly.
type Album struct {
	Name        string   `json:"name"`
	Artists     []Artist `json:"artists"`
	Tracks      []Track  `json:"tracks,omitempty"`
	ReleaseDate string   `json:"release_date,omitempty"`
	URI         URI      `json:"uri"`
}

// Track is a single recording.
type Track struct {
	Name       string   `json:"name"`
	Artists    []Artist `json:"artists"`
	Album      *Album   `json:"album,omitempty"`
	DurationMS int      `json:"duration_ms"`
	Explicit   bool     `json:"explicit"`
	IsLocal    bool     `json:"is_local,omitempty"`
	URI        URI      `json:"uri"`
}

// ArtistNames joins the artist names with ", ".
func (t Track) ArtistNames() string {
	names := make([]string, len(t.Artists))
	for i, a := range t.Artists {
		names[i] = a.Name
	}
	return strings.Join(names, ", ")
}

// Duration renders the track length as m:ss.
func (t Track) Duration() string {
	return shared.FormatDuration(t.DurationMS / 1000)
}

func (t Track) String() string {
	return fmt.Sprintf("%s - %s (%s)", t.Name, t.ArtistNames(), t.Duration())
}

func (a Artist) String() string {
	return a.Name
}

func (a Album) String() string {
	names := make([]string, len(a.Artists))
	for i, ar := range a.Artists {
		names[i] = ar.Name
	}
	return fmt.Sprintf("%s - %s", a.Name, strings.Join(names, ", "))
}

// PlaylistEntry is a track plus the time it was added.
// AddedAt is an approximation suitable only for ordering; see [ApproximateEpoch].
type PlaylistEntry struct {
	Track      Track  `json:"track"`
	AddedAt    int64  `json:"added_at"`
	AddedAtRaw string `json:"added_at_raw,omitempty"`
}

// Playlist is a named, ordered list of tracks.
type Playlist struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Visibility  Visibility      `json:"visibility"`
	Followers   int             `json:"followers"`
	Owner       string          `json:"owner,omitempty"`
	Entries     []PlaylistEntry `json:"entries"`
	URI         URI             `json:"uri"`

	total   int
	fetched int
}

func (p Playlist) String() string {
	return fmt.Sprintf("%s (%d tracks, %s)", p.Name, len(p.Entries), p.Visibility)
}

// Tracks returns the entry tracks in playlist order.
func (p *Playlist) Tracks() []Track {
	tracks := make([]Track, len(p.Entries))
	for i, e := range p.Entries {
		tracks[i] = e.Track
	}
	return tracks
}

// NewestFirst returns the entries ordered by AddedAt, most recent first. Ties keep playlist order.
func (p *Playlist) NewestFirst() []PlaylistEntry {
	entries := append([]PlaylistEntry(nil), p.Entries...)
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].AddedAt > entries[j].AddedAt })
	return entries
}

// ApproximateEpoch converts "YYYY-MM-DDTHH:MM:SS..." to seconds since 1970 assuming 30-day months
// and 360-day years. Only relative order is meaningful.
func ApproximateEpoch(ts string) (int64, error) {
	if len(ts) < 19 {
		return 0, fmt.Errorf("%w: timestamp %q too short", shared.ErrParse, ts)
	}

	field := func(from, to int) (int64, error) {
		n, err := strconv.ParseInt(ts[from:to], 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: timestamp %q: %v", shared.ErrParse, ts, err)
		}
		return n, nil
	}

	var parts [6]int64
	for i, span := range [6][2]int{{0, 4}, {5, 7}, {8, 10}, {11, 13}, {14, 16}, {17, 19}} {
		n, err := field(span[0], span[1])
		if err != nil {
			return 0, err
		}
		parts[i] = n
	}
	year, month, day, hour, minute, second := parts[0], parts[1], parts[2], parts[3], parts[4], parts[5]

	days := (year-1970)*360 + (month-1)*30 + (day - 1)
	return (days*24+hour)*3600 + minute*60 + second, nil
}
