package ui

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/desertthunder/spotimine/internal/shared"
	"github.com/desertthunder/spotimine/internal/spotify"
	"github.com/desertthunder/spotimine/internal/tasks"
)

// Task is a long-running operation that reports progress.
type Task func(ctx context.Context, progress chan<- tasks.ProgressUpdate) error

// Prompter is the interactive surface of the CLI.
type Prompter interface {
	// PickPlaylist asks the user to choose one playlist.
	PickPlaylist(title string, playlists []*spotify.Playlist) (*spotify.Playlist, error)
	// Confirm asks a yes/no question; the default answer is no.
	Confirm(prompt string) (bool, error)
	// Input asks for a line of text, returning fallback when the answer is empty.
	Input(title, fallback string) (string, error)
	// Track runs task while showing its progress.
	Track(ctx context.Context, title string, task Task) error
}

var (
	_ Prompter        = (*Terminal)(nil)
	_ Prompter        = (*Plain)(nil)
	_ tasks.Confirmer = (*Terminal)(nil)
	_ tasks.Confirmer = (*Plain)(nil)
)

// NewPrompter returns a [Terminal] when in is a terminal and otherwise a [Plain] prompter reading
// from lines, which should be the buffered reader the caller already wraps in with.
func NewPrompter(in *os.File, lines io.Reader, out io.Writer) Prompter {
	if stat, err := in.Stat(); err == nil && stat.Mode()&os.ModeCharDevice != 0 {
		return NewTerminal(in, out)
	}
	return NewPlain(lines, out)
}

func noPlaylists(playlists []*spotify.Playlist) error {
	if len(playlists) == 0 {
		return fmt.Errorf("%w: no playlists to choose from", shared.ErrNotFound)
	}
	return nil
}

// Terminal prompts with bubbletea programs and huh forms.
type Terminal struct {
	in  io.Reader
	out io.Writer
}

func NewTerminal(in io.Reader, out io.Writer) *Terminal {
	return &Terminal{in: in, out: out}
}

func (t *Terminal) program(m tea.Model) *tea.Program {
	return tea.NewProgram(m, tea.WithInput(t.in), tea.WithOutput(t.out))
}

func (t *Terminal) PickPlaylist(title string, playlists []*spotify.Playlist) (*spotify.Playlist, error) {
	if err := noPlaylists(playlists); err != nil {
		return nil, err
	}

	final, err := t.program(newPickerModel(title, playlists)).Run()
	if err != nil {
		return nil, fmt.Errorf("run playlist picker: %w", err)
	}
	m, ok := final.(*pickerModel)
	if !ok || m.choice < 0 {
		return nil, shared.ErrCancelled
	}
	return playlists[m.choice], nil
}

func (t *Terminal) Confirm(prompt string) (bool, error) {
	var ok bool
	err := huh.NewConfirm().
		Title(prompt).
		Affirmative("Yes").
		Negative("No").
		Value(&ok).
		Run()
	if errors.Is(err, huh.ErrUserAborted) {
		return false, nil
	}
	return ok, err
}

func (t *Terminal) Input(title, fallback string) (string, error) {
	var value string
	err := huh.NewInput().
		Title(title).
		Placeholder(fallback).
		Value(&value).
		Run()
	if errors.Is(err, huh.ErrUserAborted) {
		return "", shared.ErrCancelled
	}
	if err != nil {
		return "", err
	}
	if value = strings.TrimSpace(value); value == "" {
		return fallback, nil
	}
	return value, nil
}

// Track runs task in the background and renders its updates as a progress bar.
// Quitting the view cancels the task and waits for it to return.
func (t *Terminal) Track(ctx context.Context, title string, task Task) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	updates := make(chan tasks.ProgressUpdate, 64)
	done := make(chan error, 1)
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		err := task(ctx, updates)
		close(updates)
		done <- err
	}()

	final, err := t.program(newTaskModel(title, updates, done)).Run()
	if m, ok := final.(*taskModel); ok && err == nil && m.finished {
		return m.err
	}

	cancel()
	<-stopped
	if err != nil {
		return fmt.Errorf("run progress view: %w", err)
	}
	return shared.ErrCancelled
}

// Plain prompts with numbered lists and line input, for pipes and scripts.
type Plain struct {
	in      *bufio.Reader
	printer *Printer
}

// NewPlain creates a Plain prompter. A *bufio.Reader in is reused rather than wrapped again.
func NewPlain(in io.Reader, out io.Writer) *Plain {
	return &Plain{in: bufio.NewReader(in), printer: NewPrinter(out)}
}

func (p *Plain) readLine() (string, error) {
	line, err := p.in.ReadString('\n')
	if err != nil && (line == "" || !errors.Is(err, io.EOF)) {
		if errors.Is(err, io.EOF) {
			return "", fmt.Errorf("%w: input closed", shared.ErrCancelled)
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (p *Plain) PickPlaylist(title string, playlists []*spotify.Playlist) (*spotify.Playlist, error) {
	if err := noPlaylists(playlists); err != nil {
		return nil, err
	}

	p.printer.Title(title)
	for i, pl := range playlists {
		p.printer.Println(fmt.Sprintf("%3d) %s", i, pl))
	}
	fmt.Fprintf(p.printer.Writer(), "Choose [0-%d]: ", len(playlists)-1)

	line, err := p.readLine()
	if err != nil {
		return nil, err
	}
	n, err := strconv.Atoi(line)
	if err != nil || n < 0 || n >= len(playlists) {
		return nil, fmt.Errorf("%w: choice %q", shared.ErrInvalidArgument, line)
	}
	return playlists[n], nil
}

func (p *Plain) Confirm(prompt string) (bool, error) {
	fmt.Fprintf(p.printer.Writer(), "%s [y/N]: ", prompt)
	line, err := p.readLine()
	if err != nil {
		return false, err
	}
	switch strings.ToLower(line) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}

func (p *Plain) Input(title, fallback string) (string, error) {
	if fallback != "" {
		fmt.Fprintf(p.printer.Writer(), "%s [%s]: ", title, fallback)
	} else {
		fmt.Fprintf(p.printer.Writer(), "%s: ", title)
	}
	line, err := p.readLine()
	if err != nil {
		return "", err
	}
	if line == "" {
		return fallback, nil
	}
	return line, nil
}

// Track runs task in the foreground and prints each update as an info line.
func (p *Plain) Track(ctx context.Context, title string, task Task) error {
	p.printer.Info("%s", title)

	updates := make(chan tasks.ProgressUpdate, 64)
	printed := make(chan struct{})
	go func() {
		defer close(printed)
		for u := range updates {
			p.printer.Info("%s", u.Message)
		}
	}()

	err := task(ctx, updates)
	close(updates)
	<-printed
	return err
}
