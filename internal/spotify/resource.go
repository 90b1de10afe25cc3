package spotify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/desertthunder/spotimine/internal/auth"
	"github.com/desertthunder/spotimine/internal/shared"
)

// Resource decodes and fetches one content kind. Use the package values [Tracks], [Artists],
// [Albums] and [Playlists].
type Resource[T any] struct {
	Kind ContentType

	parse   func(json.RawMessage) (T, error)
	hydrate func(ctx context.Context, c *Client, acc *auth.Account, v T) error
	batched bool
}

var (
	Tracks    = Resource[*Track]{Kind: ContentTrack, parse: parseTrack, batched: true}
	Artists   = Resource[*Artist]{Kind: ContentArtist, parse: parseArtist, batched: true}
	Albums    = Resource[*Album]{Kind: ContentAlbum, parse: parseAlbum, batched: true}
	Playlists = Resource[*Playlist]{Kind: ContentPlaylist, parse: parsePlaylist, hydrate: hydratePlaylist}
)

// Parse decodes one object.
func (r Resource[T]) Parse(raw json.RawMessage) (T, error) {
	return r.parse(raw)
}

// ParseArray decodes a JSON array element by element, stopping at the first failure.
func (r Resource[T]) ParseArray(raw json.RawMessage) ([]T, error) {
	return parseArray(r.Kind, raw, r.parse)
}

// FromID fetches GET <kind>s/<id>. Playlists are completed with every page of their tracks.
func (r Resource[T]) FromID(ctx context.Context, c *Client, acc *auth.Account, id string) (T, error) {
	var zero T
	raw, err := c.CallJSON(ctx, "GET", r.Kind.Plural()+"/"+url.PathEscape(id), acc, nil)
	if err != nil {
		return zero, err
	}

	v, err := r.parse(raw)
	if err != nil {
		return zero, err
	}
	if r.hydrate != nil {
		if err := r.hydrate(ctx, c, acc, v); err != nil {
			return zero, err
		}
	}
	return v, nil
}

// FromIDs fetches ids in groups of at most [shared.BatchLimit], preserving input order.
// Kinds without a batch endpoint are fetched one by one.
func (r Resource[T]) FromIDs(ctx context.Context, c *Client, acc *auth.Account, ids []string) ([]T, error) {
	out := make([]T, 0, len(ids))

	if !r.batched {
		for _, id := range ids {
			v, err := r.FromID(ctx, c, acc, id)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	}

	for _, group := range shared.Chunk(ids, shared.BatchLimit) {
		endpoint := r.Kind.Plural() + "?ids=" + url.QueryEscape(strings.Join(group, ","))
		raw, err := c.CallJSON(ctx, "GET", endpoint, acc, nil)
		if err != nil {
			return nil, err
		}

		var body map[string][]json.RawMessage
		if err := json.Unmarshal(raw, &body); err != nil {
			return nil, &ParseError{Kind: r.Kind, Field: r.Kind.Plural(), Err: err}
		}
		items, ok := body[r.Kind.Plural()]
		if !ok {
			return nil, &ParseError{Kind: r.Kind, Field: r.Kind.Plural(), Err: errMissing}
		}

		for i, item := range items {
			if isNull(item) {
				id := "?"
				if i < len(group) {
					id = group[i]
				}
				return nil, fmt.Errorf("%w: %s %s", shared.ErrNotFound, r.Kind, id)
			}
			v, err := r.parse(item)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
	}
	return out, nil
}

// hydratePlaylist pages through playlists/<id>/tracks until the advertised total is reached.
func hydratePlaylist(ctx context.Context, c *Client, acc *auth.Account, p *Playlist) error {
	id := p.URI.ID()
	for p.fetched < p.total {
		endpoint := fmt.Sprintf("playlists/%s/tracks?limit=%d&offset=%d", url.PathEscape(id), shared.BatchLimit, p.fetched)
		raw, err := c.CallJSON(ctx, "GET", endpoint, acc, nil)
		if err != nil {
			return err
		}

		page, err := decodeObject(ContentPlaylist, raw)
		if err != nil {
			return err
		}
		items, err := page.raw("items")
		if err != nil {
			return err
		}
		entries, count, err := parseEntries(items)
		if err != nil {
			return err
		}
		if count == 0 {
			break
		}

		p.Entries = append(p.Entries, entries...)
		p.fetched += count
	}
	return nil
}

// Search runs GET search for this kind. Null results are skipped; playlists are fetched in full.
func (r Resource[T]) Search(ctx context.Context, c *Client, acc *auth.Account, query string) ([]T, error) {
	endpoint := "search?q=" + url.QueryEscape(query) + "&type=" + r.Kind.String()
	raw, err := c.CallJSON(ctx, "GET", endpoint, acc, nil)
	if err != nil {
		return nil, err
	}

	body, err := decodeObject(r.Kind, raw)
	if err != nil {
		return nil, err
	}
	page, err := body.child(r.Kind.Plural(), r.Kind)
	if err != nil {
		return nil, err
	}
	itemsRaw, err := page.raw("items")
	if err != nil {
		return nil, err
	}
	items, err := decodeArray(r.Kind, itemsRaw)
	if err != nil {
		return nil, err
	}

	out := make([]T, 0, len(items))
	for _, item := range items {
		if isNull(item) {
			continue
		}
		if r.hydrate != nil {
			o, err := decodeObject(r.Kind, item)
			if err != nil {
				return nil, err
			}
			id, err := o.string("id")
			if err != nil {
				return nil, err
			}
			v, err := r.FromID(ctx, c, acc, id)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
			continue
		}

		v, err := r.parse(item)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
