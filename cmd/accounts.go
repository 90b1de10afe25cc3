package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/spotimine/internal/shared"
	"github.com/desertthunder/spotimine/internal/spotify"
	"github.com/urfave/cli/v3"
)

const tokenPreview = 20

// AddUser runs the browser authorization flow and stores the account. Without an alias the
// account's display name is offered as the default.
func (r *Runner) AddUser(ctx context.Context, cmd *cli.Command) error {
	if r.auth == nil {
		return fmt.Errorf("%w: authorization is not configured", shared.ErrInvalidConfig)
	}
	alias := cmd.StringArg("alias")
	if alias != "" {
		if _, err := r.store.Get(alias); err == nil {
			return fmt.Errorf("%w: %q", shared.ErrAliasExists, alias)
		}
	}

	r.printer.Info("Opening the browser to authorize a Spotify account...")
	acc, err := r.auth.Authorize(ctx)
	if err != nil {
		return err
	}

	user, err := spotify.Me(ctx, r.client, acc)
	if err != nil {
		return fmt.Errorf("failed to fetch profile: %w", err)
	}

	if alias == "" {
		if alias, err = r.prompter.Input("Alias for this account", user.DisplayName); err != nil {
			return err
		}
	}

	if err := r.store.Add(alias, acc); err != nil {
		return err
	}

	r.logger.Debug("stored account", "alias", alias, "user", acc.UserID)
	r.printer.Success("Added %s (%s)", alias, user.DisplayName)
	return nil
}

func (r *Runner) RemoveUser(ctx context.Context, cmd *cli.Command) error {
	alias := cmd.StringArg("alias")
	if alias == "" {
		return fmt.Errorf("%w: usage: rmuser <alias>", shared.ErrMissingArgument)
	}
	if err := r.store.Remove(alias); err != nil {
		return err
	}
	r.printer.Success("Removed %s", alias)
	return nil
}

type userSummary struct {
	Alias   string `json:"alias"`
	UserID  string `json:"user_id,omitempty"`
	Token   string `json:"token"`
	Expires int64  `json:"expires_at"`
	Error   string `json:"error,omitempty"`
}

// Users lists every stored account with a token preview. Expired tokens are refreshed first;
// a failed refresh is reported on that account's line and does not stop the listing.
func (r *Runner) Users(ctx context.Context, cmd *cli.Command) error {
	aliases := r.store.Aliases()
	if len(aliases) == 0 {
		r.printer.Info("No accounts stored. Add one with 'adduser'.")
		return nil
	}

	summaries := make([]userSummary, 0, len(aliases))
	for _, alias := range aliases {
		acc, err := r.store.Get(alias)
		if err != nil {
			return err
		}

		summary := userSummary{Alias: alias}
		if r.tokens != nil {
			if err := r.tokens.EnsureValid(ctx, acc); err != nil {
				r.logger.Warn("failed to refresh token", "alias", alias, "error", err)
				summary.Error = err.Error()
			}
		}
		summary.UserID = acc.UserID
		summary.Token = acc.Truncated(tokenPreview)
		summary.Expires = acc.ExpiresAt
		summaries = append(summaries, summary)
	}

	if cmd.Bool("json") {
		return r.writeJSON(summaries, true)
	}

	for _, s := range summaries {
		if s.Error != "" {
			r.printer.Warn("%s: %s", s.Alias, s.Error)
			continue
		}
		r.writePlain("%s: %s\n", s.Alias, s.Token)
	}
	return nil
}

func (r *Runner) DeleteUsers(ctx context.Context, cmd *cli.Command) error {
	n := r.store.Len()
	if n == 0 {
		r.printer.Info("No accounts stored.")
		return nil
	}

	if !cmd.Bool("yes") {
		ok, err := r.prompter.Confirm(fmt.Sprintf("Remove all %d stored accounts?", n))
		if err != nil {
			return err
		}
		if !ok {
			return shared.ErrCancelled
		}
	}

	if err := r.store.Clear(); err != nil {
		return err
	}
	r.printer.Success("Removed %d accounts", n)
	return nil
}

type configPaths struct {
	Credentials string `json:"credentials"`
	Settings    string `json:"settings"`
	Journal     string `json:"journal"`
	Accounts    int    `json:"accounts"`
}

// Config prints where local state lives.
func (r *Runner) Config(ctx context.Context, cmd *cli.Command) error {
	journal, err := r.settings.JournalPath()
	if err != nil {
		return err
	}

	paths := configPaths{
		Credentials: r.store.Path(),
		Settings:    r.settingsPath,
		Journal:     journal,
		Accounts:    r.store.Len(),
	}

	if cmd.Bool("json") {
		return r.writeJSON(paths, true)
	}

	r.writePlain("Credentials: %s\n", paths.Credentials)
	r.writePlain("Settings:    %s\n", paths.Settings)
	r.writePlain("Journal:     %s\n", paths.Journal)
	r.writePlain("Accounts:    %d\n", paths.Accounts)
	return nil
}
