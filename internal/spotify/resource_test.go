package spotify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"github.com/desertthunder/spotimine/internal/auth"
	"github.com/desertthunder/spotimine/internal/shared"
	"github.com/stretchr/testify/require"
)

func trackObject(id string) map[string]any {
	return map[string]any{
		"name":        "Track " + id,
		"duration_ms": 1000,
		"uri":         "spotify:track:" + id,
		"artists":     []any{map[string]any{"name": "Artist", "uri": "spotify:artist:a"}},
	}
}

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	require.NoError(t, json.NewEncoder(w).Encode(v))
}

func savedItems(from, to int) []any {
	items := []any{}
	for i := from; i < to; i++ {
		items = append(items, map[string]any{
			"added_at": fmt.Sprintf("2020-01-%02dT00:00:00Z", i%28+1),
			"track":    trackObject(strconv.Itoa(i)),
		})
	}
	return items
}

func TestFromIDs(t *testing.T) {
	t.Run("batches of 50 in order", func(t *testing.T) {
		api, srv := newFakeAPI(t, func(w http.ResponseWriter, r *http.Request, n int) {
			ids := strings.Split(r.URL.Query().Get("ids"), ",")
			tracks := make([]any, len(ids))
			for i, id := range ids {
				tracks[i] = trackObject(id)
			}
			writeJSON(t, w, map[string]any{"tracks": tracks})
		})
		c := newTestClient(srv, &fakeTokens{}, nil)

		ids := make([]string, 120)
		for i := range ids {
			ids[i] = "id" + strconv.Itoa(i)
		}

		tracks, err := Tracks.FromIDs(context.Background(), c, &auth.Account{}, ids)
		require.NoError(t, err)
		require.Len(t, tracks, 120)
		for i, track := range tracks {
			require.Equal(t, ids[i], track.URI.ID())
		}

		reqs := api.Requests()
		require.Len(t, reqs, 3)
		for i, want := range []int{50, 50, 20} {
			q, err := url.ParseQuery(reqs[i].Query)
			require.NoError(t, err)
			require.Len(t, strings.Split(q.Get("ids"), ","), want)
			require.Equal(t, "/v1/tracks", reqs[i].Path)
		}
	})

	t.Run("null result is not found", func(t *testing.T) {
		_, srv := newFakeAPI(t, func(w http.ResponseWriter, r *http.Request, n int) {
			writeJSON(t, w, map[string]any{"artists": []any{map[string]any{"name": "A", "uri": "spotify:artist:a"}, nil}})
		})
		c := newTestClient(srv, &fakeTokens{}, nil)

		_, err := Artists.FromIDs(context.Background(), c, &auth.Account{}, []string{"a", "gone"})
		require.ErrorIs(t, err, shared.ErrNotFound)
		require.Contains(t, err.Error(), "gone")
	})

	t.Run("playlists fetched one by one", func(t *testing.T) {
		api, srv := newFakeAPI(t, func(w http.ResponseWriter, r *http.Request, n int) {
			id := strings.TrimPrefix(r.URL.Path, "/v1/playlists/")
			writeJSON(t, w, map[string]any{
				"name":   "P " + id,
				"uri":    "spotify:playlist:" + id,
				"tracks": map[string]any{"total": 0, "items": []any{}},
			})
		})
		c := newTestClient(srv, &fakeTokens{}, nil)

		playlists, err := Playlists.FromIDs(context.Background(), c, &auth.Account{}, []string{"x", "y"})
		require.NoError(t, err)
		require.Len(t, playlists, 2)
		require.Equal(t, "P y", playlists[1].Name)
		require.Len(t, api.Requests(), 2)
	})
}

func TestPlaylistHydration(t *testing.T) {
	api, srv := newFakeAPI(t, func(w http.ResponseWriter, r *http.Request, n int) {
		switch r.URL.Path {
		case "/v1/playlists/big":
			items := savedItems(0, 50)
			items[3] = map[string]any{"added_at": "2020-01-01T00:00:00Z", "track": nil}
			writeJSON(t, w, map[string]any{
				"name":   "Big",
				"uri":    "spotify:playlist:big",
				"public": true,
				"tracks": map[string]any{"total": 120, "items": items},
			})
		case "/v1/playlists/big/tracks":
			offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
			require.Equal(t, "50", r.URL.Query().Get("limit"))
			writeJSON(t, w, map[string]any{"total": 120, "items": savedItems(offset, min(offset+50, 120))})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
	c := newTestClient(srv, &fakeTokens{}, nil)

	p, err := Playlists.FromID(context.Background(), c, &auth.Account{}, "big")
	require.NoError(t, err)
	require.Equal(t, Public, p.Visibility)
	require.Len(t, p.Entries, 119)

	var offsets []string
	for _, req := range api.Requests()[1:] {
		q, _ := url.ParseQuery(req.Query)
		offsets = append(offsets, q.Get("offset"))
	}
	require.Equal(t, []string{"50", "100"}, offsets)
}

func TestLikedSongs(t *testing.T) {
	api, srv := newFakeAPI(t, func(w http.ResponseWriter, r *http.Request, n int) {
		require.Equal(t, "/v1/me/tracks", r.URL.Path)
		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
		writeJSON(t, w, map[string]any{"total": 125, "items": savedItems(offset, min(offset+50, 125))})
	})
	c := newTestClient(srv, &fakeTokens{}, nil)

	liked, err := LikedSongs(context.Background(), c, &auth.Account{})
	require.NoError(t, err)
	require.Len(t, liked.Entries, 125)
	require.Equal(t, LikedSongsName, liked.Name)
	require.Equal(t, Private, liked.Visibility)

	reqs := api.Requests()
	require.Len(t, reqs, 3)
	for i, want := range []string{"0", "50", "100"} {
		q, _ := url.ParseQuery(reqs[i].Query)
		require.Equal(t, want, q.Get("offset"))
	}

	t.Run("empty page stops", func(t *testing.T) {
		api, srv := newFakeAPI(t, func(w http.ResponseWriter, r *http.Request, n int) {
			writeJSON(t, w, map[string]any{"total": 10, "items": []any{}})
		})
		c := newTestClient(srv, &fakeTokens{}, nil)

		liked, err := LikedSongs(context.Background(), c, &auth.Account{})
		require.NoError(t, err)
		require.Empty(t, liked.Entries)
		require.Len(t, api.Requests(), 1)
	})
}

func TestMyPlaylistIDs(t *testing.T) {
	var base string
	_, srv := newFakeAPI(t, func(w http.ResponseWriter, r *http.Request, n int) {
		if r.URL.Query().Get("offset") == "" {
			writeJSON(t, w, map[string]any{"items": []any{map[string]any{"id": "a"}, nil}, "next": base + "/v1/me/playlists?limit=50&offset=50"})
			return
		}
		writeJSON(t, w, map[string]any{"items": []any{map[string]any{"id": "b"}}, "next": nil})
	})
	base = srv.URL
	c := newTestClient(srv, &fakeTokens{}, nil)

	ids, err := MyPlaylistIDs(context.Background(), c, &auth.Account{})
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b"}, ids)
}

func TestWrites(t *testing.T) {
	t.Run("create playlist and add tracks", func(t *testing.T) {
		api, srv := newFakeAPI(t, func(w http.ResponseWriter, r *http.Request, n int) {
			if r.URL.Path == "/v1/users/u1/playlists" {
				w.WriteHeader(http.StatusCreated)
				writeJSON(t, w, map[string]any{"name": "Copy", "uri": "spotify:playlist:new", "tracks": map[string]any{"total": 0, "items": []any{}}})
				return
			}
			w.WriteHeader(http.StatusCreated)
			writeJSON(t, w, map[string]any{"snapshot_id": "s"})
		})
		c := newTestClient(srv, &fakeTokens{}, nil)
		acc := &auth.Account{}

		p, err := CreatePlaylist(context.Background(), c, acc, "u1", "Copy", "desc", Public)
		require.NoError(t, err)
		require.Equal(t, "new", p.URI.ID())

		uris := make([]URI, 70)
		for i := range uris {
			uris[i] = NewURI(ContentTrack, strconv.Itoa(i))
		}
		var progress [][2]int
		require.NoError(t, AddTracks(context.Background(), c, acc, "new", uris, func(done, total int) {
			progress = append(progress, [2]int{done, total})
		}))
		require.Equal(t, [][2]int{{50, 70}, {70, 70}}, progress)

		reqs := api.Requests()
		require.Len(t, reqs, 3)
		require.JSONEq(t, `{"name":"Copy","description":"desc","public":true,"collaborative":false}`, reqs[0].Body)

		var body struct {
			URIs []string `json:"uris"`
		}
		require.NoError(t, json.Unmarshal([]byte(reqs[2].Body), &body))
		require.Len(t, body.URIs, 20)
		require.Equal(t, "spotify:track:50", body.URIs[0])
	})

	t.Run("saved tracks", func(t *testing.T) {
		api, srv := newFakeAPI(t, func(w http.ResponseWriter, r *http.Request, n int) {})
		c := newTestClient(srv, &fakeTokens{}, nil)

		ids := make([]string, 51)
		for i := range ids {
			ids[i] = strconv.Itoa(i)
		}
		require.NoError(t, RemoveSavedTracks(context.Background(), c, &auth.Account{}, ids, nil))
		require.NoError(t, SaveTracks(context.Background(), c, &auth.Account{}, ids[:3], nil))

		reqs := api.Requests()
		require.Len(t, reqs, 3)
		require.Equal(t, "DELETE", reqs[0].Method)
		require.Equal(t, "DELETE", reqs[1].Method)
		require.Equal(t, "PUT", reqs[2].Method)
		require.JSONEq(t, `{"ids":["0","1","2"]}`, reqs[2].Body)
	})
}

func TestSearch(t *testing.T) {
	t.Run("tracks", func(t *testing.T) {
		api, srv := newFakeAPI(t, func(w http.ResponseWriter, r *http.Request, n int) {
			writeJSON(t, w, map[string]any{"tracks": map[string]any{"items": []any{trackObject("1"), nil, trackObject("2")}}})
		})
		c := newTestClient(srv, &fakeTokens{}, nil)

		tracks, err := Tracks.Search(context.Background(), c, &auth.Account{}, "daft punk")
		require.NoError(t, err)
		require.Len(t, tracks, 2)

		q, _ := url.ParseQuery(api.Requests()[0].Query)
		require.Equal(t, "daft punk", q.Get("q"))
		require.Equal(t, "track", q.Get("type"))
	})

	t.Run("playlists are hydrated", func(t *testing.T) {
		api, srv := newFakeAPI(t, func(w http.ResponseWriter, r *http.Request, n int) {
			if r.URL.Path == "/v1/search" {
				writeJSON(t, w, map[string]any{"playlists": map[string]any{"items": []any{map[string]any{"id": "p9"}, nil}}})
				return
			}
			writeJSON(t, w, map[string]any{"name": "Found", "uri": "spotify:playlist:p9", "tracks": map[string]any{"total": 0}})
		})
		c := newTestClient(srv, &fakeTokens{}, nil)

		playlists, err := Playlists.Search(context.Background(), c, &auth.Account{}, "focus")
		require.NoError(t, err)
		require.Len(t, playlists, 1)
		require.Equal(t, "Found", playlists[0].Name)
		require.Equal(t, "/v1/playlists/p9", api.Requests()[1].Path)
	})
}

func TestMe(t *testing.T) {
	_, srv := newFakeAPI(t, func(w http.ResponseWriter, r *http.Request, n int) {
		writeJSON(t, w, map[string]any{"id": "u1", "display_name": "Someone"})
	})
	c := newTestClient(srv, &fakeTokens{}, nil)

	acc := &auth.Account{}
	user, err := Me(context.Background(), c, acc)
	require.NoError(t, err)
	require.Equal(t, "Someone", user.DisplayName)
	require.Equal(t, "u1", acc.UserID)
}
