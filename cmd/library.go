package main

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/spotimine/internal/auth"
	"github.com/desertthunder/spotimine/internal/formatter"
	"github.com/desertthunder/spotimine/internal/shared"
	"github.com/desertthunder/spotimine/internal/spotify"
	"github.com/desertthunder/spotimine/internal/tasks"
	"github.com/urfave/cli/v3"
)

// likedTarget as the copy name replaces the destination's liked songs.
const likedTarget = "liked"

// approved stands in for a confirmation the user already gave before the progress view started.
var approved = tasks.ConfirmFunc(func(string) (bool, error) { return true, nil })

// Liked prints the account's liked songs, most recently added first.
func (r *Runner) Liked(ctx context.Context, cmd *cli.Command) error {
	alias := cmd.StringArg("alias")
	if alias == "" {
		return fmt.Errorf("%w: usage: liked <alias>", shared.ErrMissingArgument)
	}
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}
	acc, err := r.account(alias)
	if err != nil {
		return err
	}

	var liked *spotify.Playlist
	err = r.prompter.Track(ctx, "Fetching liked songs of "+alias, func(ctx context.Context, progress chan<- tasks.ProgressUpdate) error {
		var err error
		liked, err = r.engine.LikedSongs(ctx, acc, progress)
		return err
	})
	if err != nil {
		return err
	}

	ordered := *liked
	ordered.Entries = liked.NewestFirst()
	return r.render(&ordered, format)
}

// Copy lets the user pick one of the source account's playlists (or its liked songs) and copies
// it to the destination account under name. A name of "liked" overwrites the destination's liked
// songs after confirmation.
func (r *Runner) Copy(ctx context.Context, cmd *cli.Command) error {
	src, dst, name := cmd.StringArg("source"), cmd.StringArg("dest"), cmd.StringArg("name")
	if src == "" || dst == "" {
		return fmt.Errorf("%w: usage: copy <source> <dest> [name|liked]", shared.ErrMissingArgument)
	}
	source, err := r.account(src)
	if err != nil {
		return err
	}
	dest, err := r.account(dst)
	if err != nil {
		return err
	}

	playlist, err := r.pickPlaylist(ctx, src, source, "Choose a playlist to copy")
	if err != nil {
		return err
	}

	req := tasks.CopyRequest{
		Playlist:    playlist,
		Source:      source,
		SourceAlias: src,
		Dest:        dest,
		DestAlias:   dst,
	}
	if name == likedTarget {
		return r.copyToLiked(ctx, req)
	}
	req.Name = name

	var result *tasks.CopyResult
	err = r.prompter.Track(ctx, fmt.Sprintf("Copying %q to %s", playlist.Name, dst), func(ctx context.Context, progress chan<- tasks.ProgressUpdate) error {
		var err error
		result, err = r.engine.Copy(ctx, req, progress)
		return err
	})
	if err != nil {
		return err
	}

	r.printer.Success("Copied %d tracks into %q on %s", result.Copied, result.Playlist.Name, dst)
	r.reportSkipped(result)
	return nil
}

func (r *Runner) copyToLiked(ctx context.Context, req tasks.CopyRequest) error {
	ok, err := r.prompter.Confirm(fmt.Sprintf("Overwrite ALL liked songs of %q with %q?", req.DestAlias, req.Playlist.Name))
	if err != nil {
		return err
	}
	if !ok {
		return shared.ErrCancelled
	}

	var result *tasks.CopyResult
	err = r.prompter.Track(ctx, "Replacing liked songs of "+req.DestAlias, func(ctx context.Context, progress chan<- tasks.ProgressUpdate) error {
		var err error
		result, err = r.engine.CopyToLiked(ctx, req, approved, progress)
		return err
	})
	if err != nil {
		return err
	}

	r.printer.Success("Replaced liked songs of %s with %d tracks", req.DestAlias, result.Copied)
	r.reportSkipped(result)
	return nil
}

func (r *Runner) reportSkipped(result *tasks.CopyResult) {
	if result.Skipped > 0 {
		r.printer.Warn("%d local tracks were skipped; they cannot be added through the API", result.Skipped)
	}
}

// libraryOf fetches every playlist of acc followed by its liked songs.
func (r *Runner) libraryOf(ctx context.Context, alias string, acc *auth.Account, liked bool) ([]*spotify.Playlist, error) {
	var playlists []*spotify.Playlist
	err := r.prompter.Track(ctx, "Fetching playlists of "+alias, func(ctx context.Context, progress chan<- tasks.ProgressUpdate) error {
		var err error
		if playlists, err = r.engine.PlaylistsFor(ctx, acc, progress); err != nil {
			return err
		}
		if !liked {
			return nil
		}
		saved, err := r.engine.LikedSongs(ctx, acc, progress)
		if err != nil {
			return err
		}
		playlists = append(playlists, saved)
		return nil
	})
	return playlists, err
}

func (r *Runner) pickPlaylist(ctx context.Context, alias string, acc *auth.Account, title string) (*spotify.Playlist, error) {
	playlists, err := r.libraryOf(ctx, alias, acc, true)
	if err != nil {
		return nil, err
	}
	return r.prompter.PickPlaylist(title, playlists)
}

// Search prints catalog results for one content kind. The first stored account is used unless
// --account names another.
func (r *Runner) Search(ctx context.Context, cmd *cli.Command) error {
	args := cmd.Args().Slice()
	if len(args) < 2 {
		return fmt.Errorf("%w: usage: search <track|album|artist|playlist> <query...>", shared.ErrMissingArgument)
	}
	kind, err := spotify.ParseContentType(args[0])
	if err != nil {
		return err
	}
	query := strings.Join(args[1:], " ")

	var acc *auth.Account
	if alias := cmd.String("account"); alias != "" {
		acc, err = r.account(alias)
	} else {
		_, acc, err = r.anyAccount()
	}
	if err != nil {
		return err
	}

	var results []fmt.Stringer
	err = r.prompter.Track(ctx, fmt.Sprintf("Searching %s for %q", kind.Plural(), query), func(ctx context.Context, progress chan<- tasks.ProgressUpdate) error {
		var err error
		results, err = r.engine.Search(ctx, acc, kind, query, progress)
		return err
	})
	if err != nil {
		return err
	}

	if len(results) == 0 {
		r.printer.Info("No %s found for %q", kind.Plural(), query)
		return nil
	}
	for i, res := range results {
		r.writePlain("%3d) %s\n", i, res)
	}
	return nil
}

// render writes p to the output in format, ending with a newline.
func (r *Runner) render(p *spotify.Playlist, format formatter.Format) error {
	data, err := formatter.Render(p, format)
	if err != nil {
		return err
	}
	if !bytes.HasSuffix(data, []byte("\n")) {
		data = append(data, '\n')
	}
	if _, err := r.output.Write(data); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
