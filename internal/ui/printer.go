package ui

import (
	"fmt"
	"io"
	"os"
)

// Printer writes user-facing lines with a severity prefix.
type Printer struct {
	w       io.Writer
	palette *Palette
}

// NewPrinter creates a Printer writing to w (default [os.Stdout]).
func NewPrinter(w io.Writer) *Printer {
	if w == nil {
		w = os.Stdout
	}
	return &Printer{w: w, palette: styles}
}

// Writer is the underlying destination.
func (p *Printer) Writer() io.Writer { return p.w }

func (p *Printer) Info(format string, args ...any) {
	fmt.Fprintf(p.w, "%s %s\n", p.palette.info.Render("[INFO]"), fmt.Sprintf(format, args...))
}

func (p *Printer) Warn(format string, args ...any) {
	fmt.Fprintf(p.w, "%s %s\n", p.palette.warn.Render("Warning:"), fmt.Sprintf(format, args...))
}

func (p *Printer) Error(err error) {
	fmt.Fprintf(p.w, "%s %v\n", p.palette.err.Render("Error:"), err)
}

func (p *Printer) Success(format string, args ...any) {
	fmt.Fprintf(p.w, "%s %s\n", p.palette.ok.Render("✓"), fmt.Sprintf(format, args...))
}

func (p *Printer) Title(s string) {
	fmt.Fprintln(p.w, p.palette.title.Render(s))
}

func (p *Printer) Println(a ...any) {
	fmt.Fprintln(p.w, a...)
}
