package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotimine/internal/auth"
	"github.com/desertthunder/spotimine/internal/models"
	"github.com/desertthunder/spotimine/internal/shared"
	"github.com/desertthunder/spotimine/internal/spotify"
	"github.com/desertthunder/spotimine/internal/tasks"
	"github.com/desertthunder/spotimine/internal/ui"
	"github.com/urfave/cli/v3"
)

const version = "0.1.0"

// Authorizer runs the interactive authorization flow for a new account. [*auth.Manager] implements it.
type Authorizer interface {
	Authorize(ctx context.Context) (*auth.Account, error)
}

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	settings     *shared.Settings
	settingsPath string
	store        *auth.Store
	auth         Authorizer
	tokens       spotify.TokenManager
	client       *spotify.Client
	engine       tasks.Engine
	journal      models.Repository[*models.CopyJob]
	logger       *log.Logger
	output       io.Writer
	input        *bufio.Reader
	printer      *ui.Printer
	prompter     ui.Prompter
	inShell      bool
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Settings     *shared.Settings
	SettingsPath string
	Store        *auth.Store
	Auth         Authorizer
	Tokens       spotify.TokenManager
	Client       *spotify.Client
	Engine       tasks.Engine
	Journal      models.Repository[*models.CopyJob] // nil disables history
	Logger       *log.Logger
	Output       io.Writer
	Input        *bufio.Reader
	Prompter     ui.Prompter
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Settings == nil {
		opts.Settings = shared.DefaultSettings()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Input == nil {
		opts.Input = bufio.NewReader(os.Stdin)
	}
	if opts.Prompter == nil {
		opts.Prompter = ui.NewPlain(opts.Input, opts.Output)
	}
	if opts.Client == nil {
		opts.Client = spotify.NewClient(spotify.ClientOpts{
			BaseURL: opts.Settings.Spotify.APIURL,
			Tokens:  opts.Tokens,
			Logger:  opts.Logger,
		})
	}
	if opts.Engine == nil {
		opts.Engine = tasks.NewPlaylistEngine(opts.Client, opts.Journal, opts.Logger)
	}

	return &Runner{
		settings:     opts.Settings,
		settingsPath: opts.SettingsPath,
		store:        opts.Store,
		auth:         opts.Auth,
		tokens:       opts.Tokens,
		client:       opts.Client,
		engine:       opts.Engine,
		journal:      opts.Journal,
		logger:       opts.Logger,
		output:       opts.Output,
		input:        opts.Input,
		printer:      ui.NewPrinter(opts.Output),
		prompter:     opts.Prompter,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		addUserCommand, rmUserCommand, usersCommand, delUsersCommand, configCommand,
		likedCommand, copyCommand, searchCommand, snapshotCommand, historyCommand,
		setupCommand, shellCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// app builds a fresh command tree. The shell builds one per line so flag state never leaks
// between commands.
func (r *Runner) app() *cli.Command {
	return &cli.Command{
		Name:      "spotimine",
		Usage:     "Copy and inspect Spotify libraries across accounts",
		Version:   version,
		Writer:    r.output,
		ErrWriter: r.output,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Enable debug logging",
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			if cmd.Bool("debug") {
				r.logger.SetLevel(log.DebugLevel)
			}
			return ctx, nil
		},
		Commands: r.register(),
		Action:   r.Shell,
	}
}

// Run executes args and returns the process exit code.
func (r *Runner) Run(ctx context.Context, args []string) int {
	return r.report(r.app().Run(ctx, args))
}

// report prints a failed command with its severity prefix and maps it to an exit code.
func (r *Runner) report(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, shared.ErrCancelled), errors.Is(err, context.Canceled):
		r.printer.Warn("%v", err)
	default:
		r.printer.Error(err)
	}
	return 1
}

// account resolves alias in the credential store.
func (r *Runner) account(alias string) (*auth.Account, error) {
	if alias == "" {
		return nil, fmt.Errorf("%w: account alias", shared.ErrMissingArgument)
	}
	acc, err := r.store.Get(alias)
	if err != nil {
		return nil, fmt.Errorf("%w; try adding one with 'adduser'", err)
	}
	return acc, nil
}

// anyAccount returns the first stored account by alias, for commands that work with any login.
func (r *Runner) anyAccount() (string, *auth.Account, error) {
	aliases := r.store.Aliases()
	if len(aliases) == 0 {
		return "", nil, fmt.Errorf("%w; try adding one with 'adduser'", shared.ErrNoAccounts)
	}
	acc, err := r.store.Get(aliases[0])
	return aliases[0], acc, err
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	output, err := shared.MarshalJSON(data, pretty)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
