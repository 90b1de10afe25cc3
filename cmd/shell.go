package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/desertthunder/spotimine/internal/shared"
	"github.com/urfave/cli/v3"
)

// Shell reads commands line by line and runs each one until "exit" or end of input.
// A failed command is reported and the loop continues.
func (r *Runner) Shell(ctx context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() > 0 {
		return fmt.Errorf("%w: unknown command %q", shared.ErrInvalidArgument, cmd.Args().First())
	}
	if r.inShell {
		return fmt.Errorf("%w: command name", shared.ErrMissingArgument)
	}
	r.inShell = true
	defer func() { r.inShell = false }()

	r.printer.Title("spotimine " + version)
	r.writePlain("Type 'help' for commands and 'exit' to quit.\n")

	for ctx.Err() == nil {
		r.writePlain("> ")
		line, err := r.input.ReadString('\n')
		if err != nil && (line == "" || !errors.Is(err, io.EOF)) {
			if errors.Is(err, io.EOF) {
				r.writePlain("\n")
				return nil
			}
			return fmt.Errorf("failed to read command: %w", err)
		}

		args, err := splitArgs(line)
		if err != nil {
			r.report(err)
			continue
		}
		if len(args) == 0 {
			continue
		}

		switch args[0] {
		case "exit", "quit":
			return nil
		case "shell":
			r.printer.Warn("already in the shell")
			continue
		}

		r.report(r.app().Run(ctx, append([]string{"spotimine"}, args...)))
	}
	return nil
}

// splitArgs splits a shell line on whitespace, keeping double-quoted runs together.
func splitArgs(line string) ([]string, error) {
	var (
		args    []string
		current strings.Builder
		quoted  bool
		started bool
	)

	for _, c := range line {
		switch {
		case c == '"':
			quoted = !quoted
			started = true
		case !quoted && (c == ' ' || c == '\t' || c == '\n' || c == '\r'):
			if started {
				args = append(args, current.String())
				current.Reset()
				started = false
			}
		default:
			current.WriteRune(c)
			started = true
		}
	}

	if quoted {
		return nil, fmt.Errorf("%w: unterminated quote", shared.ErrInvalidArgument)
	}
	if started {
		args = append(args, current.String())
	}
	return args, nil
}
