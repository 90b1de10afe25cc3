package spotify

import (
	"encoding/json"
	"fmt"
)

func parseArray[T any](kind ContentType, raw json.RawMessage, parse func(json.RawMessage) (T, error)) ([]T, error) {
	items, err := decodeArray(kind, raw)
	if err != nil {
		return nil, err
	}

	out := make([]T, 0, len(items))
	for i, item := range items {
		v, err := parse(item)
		if err != nil {
			return nil, fmt.Errorf("%s %d: %w", kind, i, err)
		}
		out = append(out, v)
	}
	return out, nil
}

func parseArtist(raw json.RawMessage) (*Artist, error) {
	o, err := decodeObject(ContentArtist, raw)
	if err != nil {
		return nil, err
	}

	var a Artist
	if a.Name, err = o.string("name"); err != nil {
		return nil, err
	}
	if a.URI, err = o.uri("uri"); err != nil {
		return nil, err
	}
	return &a, nil
}

func parseArtists(o object) ([]Artist, error) {
	raw, err := o.raw("artists")
	if err != nil {
		return nil, err
	}
	list, err := parseArray(ContentArtist, raw, parseArtist)
	if err != nil {
		return nil, err
	}
	artists := make([]Artist, len(list))
	for i, a := range list {
		artists[i] = *a
	}
	return artists, nil
}

func parseTrack(raw json.RawMessage) (*Track, error) {
	o, err := decodeObject(ContentTrack, raw)
	if err != nil {
		return nil, err
	}

	var t Track
	if t.Name, err = o.string("name"); err != nil {
		return nil, err
	}
	if t.DurationMS, err = o.int("duration_ms"); err != nil {
		return nil, err
	}
	if t.Explicit, err = o.optBool("explicit"); err != nil {
		return nil, err
	}
	if t.IsLocal, err = o.optBool("is_local"); err != nil {
		return nil, err
	}

	// Local files carry spotify:local:artist:album:title:seconds URIs and may lack artist URIs.
	if t.IsLocal {
		s, err := o.string("uri")
		if err != nil {
			return nil, err
		}
		t.URI = URI(s)
		var artists []struct {
			Name string `json:"name"`
		}
		if o.has("artists") && o.decode("artists", &artists) == nil {
			for _, a := range artists {
				t.Artists = append(t.Artists, Artist{Name: a.Name})
			}
		}
		return &t, nil
	}

	if t.URI, err = o.uri("uri"); err != nil {
		return nil, err
	}
	if t.Artists, err = parseArtists(o); err != nil {
		return nil, err
	}
	if o.has("album") {
		raw, _ := o.raw("album")
		album, err := parseAlbum(raw)
		if err != nil {
			return nil, &ParseError{Kind: ContentTrack, Field: "album", Err: err}
		}
		t.Album = album
	}
	return &t, nil
}

func parseAlbum(raw json.RawMessage) (*Album, error) {
	o, err := decodeObject(ContentAlbum, raw)
	if err != nil {
		return nil, err
	}

	var a Album
	if a.Name, err = o.string("name"); err != nil {
		return nil, err
	}
	if a.URI, err = o.uri("uri"); err != nil {
		return nil, err
	}
	if a.ReleaseDate, err = o.optString("release_date"); err != nil {
		return nil, err
	}
	if a.Artists, err = parseArtists(o); err != nil {
		return nil, err
	}

	if o.has("tracks") {
		page, err := o.child("tracks", ContentAlbum)
		if err != nil {
			return nil, err
		}
		items, err := page.raw("items")
		if err != nil {
			return nil, err
		}
		tracks, err := parseArray(ContentTrack, items, parseTrack)
		if err != nil {
			return nil, err
		}
		for _, t := range tracks {
			a.Tracks = append(a.Tracks, *t)
		}
	}
	return &a, nil
}

// parseEntries decodes playlist or saved-track items. Items whose track is null are dropped.
// The second return value counts all items, dropped ones included, for offset bookkeeping.
func parseEntries(raw json.RawMessage) ([]PlaylistEntry, int, error) {
	items, err := decodeArray(ContentPlaylist, raw)
	if err != nil {
		return nil, 0, err
	}

	entries := make([]PlaylistEntry, 0, len(items))
	for _, item := range items {
		o, err := decodeObject(ContentPlaylist, item)
		if err != nil {
			return nil, 0, err
		}
		if !o.has("track") {
			continue
		}

		trackRaw, _ := o.raw("track")
		track, err := parseTrack(trackRaw)
		if err != nil {
			return nil, 0, err
		}

		entry := PlaylistEntry{Track: *track}
		if entry.AddedAtRaw, err = o.optString("added_at"); err != nil {
			return nil, 0, err
		}
		if entry.AddedAtRaw != "" {
			if entry.AddedAt, err = ApproximateEpoch(entry.AddedAtRaw); err != nil {
				return nil, 0, &ParseError{Kind: ContentPlaylist, Field: "added_at", Err: err}
			}
		}
		entries = append(entries, entry)
	}
	return entries, len(items), nil
}

func parsePlaylist(raw json.RawMessage) (*Playlist, error) {
	o, err := decodeObject(ContentPlaylist, raw)
	if err != nil {
		return nil, err
	}

	var p Playlist
	if p.Name, err = o.string("name"); err != nil {
		return nil, err
	}
	if p.URI, err = o.uri("uri"); err != nil {
		return nil, err
	}
	if p.Description, err = o.optString("description"); err != nil {
		return nil, err
	}

	collaborative, err := o.optBool("collaborative")
	if err != nil {
		return nil, err
	}
	public, err := o.optBool("public")
	if err != nil {
		return nil, err
	}
	p.Visibility = VisibilityFrom(collaborative, public)

	if o.has("followers") {
		followers, err := o.child("followers", ContentPlaylist)
		if err != nil {
			return nil, err
		}
		if p.Followers, err = followers.optInt("total"); err != nil {
			return nil, err
		}
	}

	if o.has("owner") {
		owner, err := o.child("owner", ContentPlaylist)
		if err != nil {
			return nil, err
		}
		if p.Owner, err = owner.optString("display_name"); err != nil {
			return nil, err
		}
		if p.Owner == "" {
			p.Owner, _ = owner.optString("id")
		}
	}

	page, err := o.child("tracks", ContentPlaylist)
	if err != nil {
		return nil, err
	}
	if p.total, err = page.int("total"); err != nil {
		return nil, err
	}
	if page.has("items") {
		items, _ := page.raw("items")
		if p.Entries, p.fetched, err = parseEntries(items); err != nil {
			return nil, err
		}
	}
	if p.Entries == nil {
		p.Entries = []PlaylistEntry{}
	}
	return &p, nil
}
