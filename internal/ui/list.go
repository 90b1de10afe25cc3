package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/spotimine/internal/spotify"
)

var (
	_ list.Item = playlistItem{}
)

// playlistItem wraps [spotify.Playlist] to implement [list.Item].
type playlistItem struct {
	index    int
	playlist *spotify.Playlist
}

func (i playlistItem) FilterValue() string { return i.playlist.Name }
func (i playlistItem) Title() string       { return i.playlist.Name }
func (i playlistItem) Description() string {
	desc := fmt.Sprintf("%d tracks • %s", len(i.playlist.Entries), i.playlist.Visibility)
	if i.playlist.Description != "" {
		desc = fmt.Sprintf("%s • %s", desc, i.playlist.Description)
	}
	return desc
}

func playlistItems(playlists []*spotify.Playlist) []list.Item {
	items := make([]list.Item, len(playlists))
	for i, p := range playlists {
		items[i] = playlistItem{index: i, playlist: p}
	}
	return items
}
