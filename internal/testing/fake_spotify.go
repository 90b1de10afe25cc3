package testing

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"slices"
	"strconv"
	"strings"
	"sync"
	"testing"
)

const fakePage = 50

// FakePlaylist is a playlist held by [FakeSpotify]. Tracks are track ids; ids starting with
// "local:" are served as local files.
type FakePlaylist struct {
	ID            string
	Name          string
	Description   string
	Public        bool
	Collaborative bool
	Tracks        []string
}

// FakeSpotify is an in-memory Web API for one user, served by httptest.
type FakeSpotify struct {
	Server *httptest.Server
	UserID string

	mu        sync.Mutex
	playlists map[string]*FakePlaylist
	order     []string
	liked     []string
	requests  []string
	nextID    int
}

// NewFakeSpotify starts a fake API closed with the test.
func NewFakeSpotify(t *testing.T, userID string) *FakeSpotify {
	t.Helper()
	f := &FakeSpotify{UserID: userID, playlists: map[string]*FakePlaylist{}}
	f.Server = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.Server.Close)
	return f
}

// URL is the server root.
func (f *FakeSpotify) URL() string { return f.Server.URL }

// AddPlaylist stores a playlist and returns its id.
func (f *FakeSpotify) AddPlaylist(name string, public bool, trackIDs ...string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.addPlaylist(&FakePlaylist{Name: name, Public: public, Tracks: slices.Clone(trackIDs)})
}

func (f *FakeSpotify) addPlaylist(p *FakePlaylist) string {
	f.nextID++
	p.ID = fmt.Sprintf("pl%d", f.nextID)
	f.playlists[p.ID] = p
	f.order = append(f.order, p.ID)
	return p.ID
}

// Playlist returns a copy of the stored playlist.
func (f *FakeSpotify) Playlist(id string) (FakePlaylist, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.playlists[id]
	if !ok {
		return FakePlaylist{}, false
	}
	out := *p
	out.Tracks = slices.Clone(p.Tracks)
	return out, true
}

// PlaylistNamed finds a stored playlist by name.
func (f *FakeSpotify) PlaylistNamed(name string) (FakePlaylist, bool) {
	f.mu.Lock()
	var id string
	for _, pid := range f.order {
		if f.playlists[pid].Name == name {
			id = pid
		}
	}
	f.mu.Unlock()
	return f.Playlist(id)
}

// SetLiked replaces the saved tracks, most recent first.
func (f *FakeSpotify) SetLiked(trackIDs ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.liked = slices.Clone(trackIDs)
}

// Liked returns the saved track ids, most recent first.
func (f *FakeSpotify) Liked() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.liked)
}

// Requests lists "METHOD path" for every request received, query strings included.
func (f *FakeSpotify) Requests() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.requests)
}

func (f *FakeSpotify) serve(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.requests = append(f.requests, r.Method+" "+r.URL.RequestURI())
	if !strings.HasPrefix(r.Header.Get("Authorization"), "Bearer ") {
		http.Error(w, `{"error":"no token"}`, http.StatusUnauthorized)
		return
	}

	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/"), "/")
	parts := strings.Split(path, "/")
	q := r.URL.Query()

	switch {
	case r.Method == http.MethodGet && path == "me":
		f.json(w, http.StatusOK, map[string]any{"id": f.UserID, "display_name": "Display " + f.UserID})
	case r.Method == http.MethodGet && path == "me/playlists":
		f.myPlaylists(w, q.Get("offset"))
	case path == "me/tracks":
		f.savedTracks(w, r)
	case r.Method == http.MethodPost && len(parts) == 3 && parts[0] == "users" && parts[2] == "playlists":
		f.createPlaylist(w, r, parts[1])
	case len(parts) == 2 && parts[0] == "playlists" && r.Method == http.MethodGet:
		p, ok := f.playlists[parts[1]]
		if !ok {
			http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
			return
		}
		f.json(w, http.StatusOK, f.playlistObject(p))
	case len(parts) == 3 && parts[0] == "playlists" && parts[2] == "tracks":
		f.playlistTracks(w, r, parts[1])
	case r.Method == http.MethodGet && path == "search":
		f.search(w, q.Get("q"), q.Get("type"))
	default:
		http.Error(w, `{"error":"unexpected request"}`, http.StatusBadRequest)
	}
}

func (f *FakeSpotify) json(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func offsetOf(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

func page[T any](items []T, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	return items[offset:min(offset+fakePage, len(items))]
}

// FakeTrack is the API object served for a track id.
func FakeTrack(id string) map[string]any {
	if local, ok := strings.CutPrefix(id, "local:"); ok {
		return map[string]any{
			"name":        local,
			"duration_ms": 120000,
			"is_local":    true,
			"uri":         "spotify:local:Someone:Somewhere:" + local + ":120",
			"artists":     []any{map[string]any{"name": "Someone", "uri": nil}},
		}
	}
	return map[string]any{
		"name":        "Track " + id,
		"duration_ms": 200000,
		"explicit":    false,
		"uri":         "spotify:track:" + id,
		"artists":     []any{map[string]any{"name": "Artist " + id, "uri": "spotify:artist:ar" + id}},
		"album": map[string]any{
			"name":    "Album " + id,
			"uri":     "spotify:album:al" + id,
			"artists": []any{map[string]any{"name": "Artist " + id, "uri": "spotify:artist:ar" + id}},
		},
	}
}

func items(trackIDs []string, offset int) []any {
	out := []any{}
	for i, id := range page(trackIDs, offset) {
		out = append(out, map[string]any{
			"added_at": fmt.Sprintf("2022-05-%02dT12:00:00Z", 28-(offset+i)%28),
			"track":    FakeTrack(id),
		})
	}
	return out
}

func (f *FakeSpotify) playlistObject(p *FakePlaylist) map[string]any {
	return map[string]any{
		"id":            p.ID,
		"name":          p.Name,
		"description":   p.Description,
		"public":        p.Public,
		"collaborative": p.Collaborative,
		"uri":           "spotify:playlist:" + p.ID,
		"owner":         map[string]any{"id": f.UserID},
		"followers":     map[string]any{"total": 0},
		"tracks":        map[string]any{"total": len(p.Tracks), "items": items(p.Tracks, 0)},
	}
}

func (f *FakeSpotify) myPlaylists(w http.ResponseWriter, offset string) {
	start := offsetOf(offset)
	out := []any{}
	for _, id := range page(f.order, start) {
		out = append(out, map[string]any{"id": id})
	}
	var next any
	if start+fakePage < len(f.order) {
		next = fmt.Sprintf("%s/v1/me/playlists?limit=%d&offset=%d", f.Server.URL, fakePage, start+fakePage)
	}
	f.json(w, http.StatusOK, map[string]any{"items": out, "total": len(f.order), "next": next})
}

func decodeList(r *http.Request, key string) ([]string, error) {
	var body map[string][]string
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return nil, err
	}
	list := body[key]
	if len(list) > fakePage {
		return nil, fmt.Errorf("too many %s: %d", key, len(list))
	}
	return list, nil
}

func (f *FakeSpotify) savedTracks(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		offset := offsetOf(r.URL.Query().Get("offset"))
		f.json(w, http.StatusOK, map[string]any{"items": items(f.liked, offset), "total": len(f.liked)})
	case http.MethodPut:
		ids, err := decodeList(r, "ids")
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		f.liked = append(slices.Clone(ids), f.liked...)
		w.WriteHeader(http.StatusOK)
	case http.MethodDelete:
		ids, err := decodeList(r, "ids")
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		f.liked = slices.DeleteFunc(f.liked, func(id string) bool { return slices.Contains(ids, id) })
		w.WriteHeader(http.StatusOK)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (f *FakeSpotify) createPlaylist(w http.ResponseWriter, r *http.Request, userID string) {
	if userID != f.UserID {
		http.Error(w, `{"error":"wrong user"}`, http.StatusForbidden)
		return
	}
	var body struct {
		Name          string `json:"name"`
		Description   string `json:"description"`
		Public        bool   `json:"public"`
		Collaborative bool   `json:"collaborative"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	p := &FakePlaylist{Name: body.Name, Description: body.Description, Public: body.Public, Collaborative: body.Collaborative}
	f.addPlaylist(p)
	f.json(w, http.StatusCreated, f.playlistObject(p))
}

func (f *FakeSpotify) playlistTracks(w http.ResponseWriter, r *http.Request, id string) {
	p, ok := f.playlists[id]
	if !ok {
		http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
		return
	}

	switch r.Method {
	case http.MethodGet:
		offset := offsetOf(r.URL.Query().Get("offset"))
		f.json(w, http.StatusOK, map[string]any{"items": items(p.Tracks, offset), "total": len(p.Tracks)})
	case http.MethodPost:
		uris, err := decodeList(r, "uris")
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		for _, u := range uris {
			id, ok := strings.CutPrefix(u, "spotify:track:")
			if !ok {
				http.Error(w, "invalid uri "+u, http.StatusBadRequest)
				return
			}
			p.Tracks = append(p.Tracks, id)
		}
		f.json(w, http.StatusCreated, map[string]any{"snapshot_id": strconv.Itoa(len(p.Tracks))})
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (f *FakeSpotify) search(w http.ResponseWriter, query, kind string) {
	switch kind {
	case "track":
		f.json(w, http.StatusOK, map[string]any{"tracks": map[string]any{"items": []any{FakeTrack(query), nil}}})
	case "artist":
		f.json(w, http.StatusOK, map[string]any{"artists": map[string]any{"items": []any{
			map[string]any{"name": "Artist " + query, "uri": "spotify:artist:ar" + query},
		}}})
	case "album":
		f.json(w, http.StatusOK, map[string]any{"albums": map[string]any{"items": []any{
			map[string]any{"name": "Album " + query, "uri": "spotify:album:al" + query, "artists": []any{}},
		}}})
	case "playlist":
		out := []any{}
		for _, id := range f.order {
			if strings.Contains(strings.ToLower(f.playlists[id].Name), strings.ToLower(query)) {
				out = append(out, map[string]any{"id": id, "name": f.playlists[id].Name})
			}
		}
		f.json(w, http.StatusOK, map[string]any{"playlists": map[string]any{"items": out}})
	default:
		http.Error(w, `{"error":"bad type"}`, http.StatusBadRequest)
	}
}
