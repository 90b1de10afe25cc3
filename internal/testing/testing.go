// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/desertthunder/spotimine/internal/auth"
	"github.com/desertthunder/spotimine/internal/shared"
	"github.com/desertthunder/spotimine/internal/spotify"
)

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// NopTokens is a [spotify.TokenManager] that never refreshes.
type NopTokens struct{}

func (NopTokens) EnsureValid(context.Context, *auth.Account) error { return nil }
func (NopTokens) Refresh(context.Context, *auth.Account) error     { return nil }

// NewClient builds an API client pointed at the fake server.
func NewClient(f *FakeSpotify) *spotify.Client {
	return spotify.NewClient(spotify.ClientOpts{
		BaseURL:    f.URL() + "/v1/",
		HTTPClient: f.Server.Client(),
		Tokens:     NopTokens{},
		Logger:     shared.NewDiscardLogger(),
	})
}

// Account returns a non-expired account with a fixed token.
func Account(userID string) *auth.Account {
	return &auth.Account{
		AccessToken:  "access-" + userID,
		RefreshToken: "refresh-" + userID,
		ExpiresAt:    4102444800,
		UserID:       userID,
	}
}

// SamplePlaylist builds a playlist of n tracks named "Song <i>" by "Artist <i>".
func SamplePlaylist(name string, n int) *spotify.Playlist {
	p := &spotify.Playlist{
		Name:        name,
		Description: "sample " + name,
		Visibility:  spotify.Public,
		Owner:       "tester",
		URI:         spotify.NewURI(spotify.ContentPlaylist, "pl"+strings.ToLower(strings.ReplaceAll(name, " ", ""))),
		Entries:     make([]spotify.PlaylistEntry, n),
	}
	for i := range n {
		raw := fmt.Sprintf("2021-03-%02dT10:00:00Z", i%28+1)
		added, _ := spotify.ApproximateEpoch(raw)
		p.Entries[i] = spotify.PlaylistEntry{
			Track: spotify.Track{
				Name:       fmt.Sprintf("Song %d", i),
				Artists:    []spotify.Artist{{Name: fmt.Sprintf("Artist %d", i), URI: spotify.NewURI(spotify.ContentArtist, fmt.Sprintf("a%d", i))}},
				Album:      &spotify.Album{Name: "Album", URI: spotify.NewURI(spotify.ContentAlbum, "al")},
				DurationMS: 185000,
				URI:        spotify.NewURI(spotify.ContentTrack, fmt.Sprintf("t%d", i)),
			},
			AddedAt:    added,
			AddedAtRaw: raw,
		}
	}
	return p
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func AssertDirExists(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		t.Errorf("Directory does not exist: %s", path)
		return
	}
	if !info.IsDir() {
		t.Errorf("Path is not a directory: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
