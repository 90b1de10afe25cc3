package spotify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/desertthunder/spotimine/internal/auth"
	"github.com/desertthunder/spotimine/internal/shared"
)

const (
	LikedSongsName        = "Liked Songs"
	likedSongsDescription = "your liked songs"
)

// User is the profile returned by GET me.
type User struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

// Me fetches the account's profile and caches the user id on acc.
func Me(ctx context.Context, c *Client, acc *auth.Account) (*User, error) {
	raw, err := c.CallJSON(ctx, "GET", "me", acc, nil)
	if err != nil {
		return nil, err
	}

	var u User
	if err := json.Unmarshal(raw, &u); err != nil {
		return nil, fmt.Errorf("%w: user: %v", shared.ErrParse, err)
	}
	if u.ID == "" {
		return nil, fmt.Errorf("%w: user profile has no id", shared.ErrParse)
	}
	if u.DisplayName == "" {
		u.DisplayName = u.ID
	}
	acc.UserID = u.ID
	return &u, nil
}

// MyPlaylistIDs lists the ids of every playlist the account follows or owns, following "next" links.
func MyPlaylistIDs(ctx context.Context, c *Client, acc *auth.Account) ([]string, error) {
	var ids []string
	endpoint := fmt.Sprintf("me/playlists?limit=%d", shared.BatchLimit)

	for endpoint != "" {
		raw, err := c.CallJSON(ctx, "GET", endpoint, acc, nil)
		if err != nil {
			return nil, err
		}

		var page struct {
			Items []*struct {
				ID string `json:"id"`
			} `json:"items"`
			Next *string `json:"next"`
		}
		if err := json.Unmarshal(raw, &page); err != nil {
			return nil, &ParseError{Kind: ContentPlaylist, Field: "items", Err: err}
		}

		for _, item := range page.Items {
			if item != nil && item.ID != "" {
				ids = append(ids, item.ID)
			}
		}

		endpoint = ""
		if page.Next != nil {
			endpoint = *page.Next
		}
	}
	return ids, nil
}

// LikedSongs builds a private pseudo-playlist from the account's saved tracks.
func LikedSongs(ctx context.Context, c *Client, acc *auth.Account) (*Playlist, error) {
	p := &Playlist{
		Name:        LikedSongsName,
		Description: likedSongsDescription,
		Visibility:  Private,
		Entries:     []PlaylistEntry{},
	}

	offset := 0
	for {
		endpoint := fmt.Sprintf("me/tracks?limit=%d&offset=%d", shared.BatchLimit, offset)
		raw, err := c.CallJSON(ctx, "GET", endpoint, acc, nil)
		if err != nil {
			return nil, err
		}

		page, err := decodeObject(ContentPlaylist, raw)
		if err != nil {
			return nil, err
		}
		total, err := page.int("total")
		if err != nil {
			return nil, err
		}
		items, err := page.raw("items")
		if err != nil {
			return nil, err
		}
		entries, count, err := parseEntries(items)
		if err != nil {
			return nil, err
		}

		p.Entries = append(p.Entries, entries...)
		offset += count
		if count == 0 || offset >= total {
			break
		}
	}
	return p, nil
}

// CreatePlaylist creates an empty playlist owned by userID.
func CreatePlaylist(ctx context.Context, c *Client, acc *auth.Account, userID, name, description string, vis Visibility) (*Playlist, error) {
	payload := map[string]any{
		"name":          name,
		"description":   description,
		"public":        vis == Public,
		"collaborative": vis == Collaborative,
	}

	raw, err := c.CallJSON(ctx, "POST", "users/"+url.PathEscape(userID)+"/playlists", acc, JSON(payload))
	if err != nil {
		return nil, err
	}
	return parsePlaylist(raw)
}

// AddTracks appends uris to a playlist in batches. progress, if set, is called after each batch.
func AddTracks(ctx context.Context, c *Client, acc *auth.Account, playlistID string, uris []URI, progress func(done, total int)) error {
	done := 0
	for _, group := range shared.Chunk(uris, shared.BatchLimit) {
		endpoint := "playlists/" + url.PathEscape(playlistID) + "/tracks"
		if _, err := c.CallJSON(ctx, "POST", endpoint, acc, JSON(map[string]any{"uris": group})); err != nil {
			return err
		}
		done += len(group)
		if progress != nil {
			progress(done, len(uris))
		}
	}
	return nil
}

// SaveTracks adds track ids to the account's liked songs.
func SaveTracks(ctx context.Context, c *Client, acc *auth.Account, ids []string, progress func(done, total int)) error {
	return savedTracks(ctx, c, acc, "PUT", ids, progress)
}

// RemoveSavedTracks removes track ids from the account's liked songs.
func RemoveSavedTracks(ctx context.Context, c *Client, acc *auth.Account, ids []string, progress func(done, total int)) error {
	return savedTracks(ctx, c, acc, "DELETE", ids, progress)
}

func savedTracks(ctx context.Context, c *Client, acc *auth.Account, method string, ids []string, progress func(done, total int)) error {
	done := 0
	for _, group := range shared.Chunk(ids, shared.BatchLimit) {
		if _, err := c.Call(ctx, method, "me/tracks", acc, JSON(map[string]any{"ids": group})); err != nil {
			return err
		}
		done += len(group)
		if progress != nil {
			progress(done, len(ids))
		}
	}
	return nil
}
