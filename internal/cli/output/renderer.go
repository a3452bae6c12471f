// Package output renders shell and CLI results to the console.
package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// Mode selects how results are formatted.
type Mode string

// Output modes.
const (
	ModeAuto     Mode = "auto" // TTY=text, non-TTY=markdown
	ModeText     Mode = "text"
	ModeMarkdown Mode = "markdown"
	ModeJSON     Mode = "json"
)

// ParseMode validates a configured output mode.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(s)) {
	case "", ModeAuto:
		return ModeAuto, nil
	case ModeText:
		return ModeText, nil
	case ModeMarkdown, "md":
		return ModeMarkdown, nil
	case ModeJSON:
		return ModeJSON, nil
	}
	return "", fmt.Errorf("unknown output mode %q (want auto, text, markdown or json)", s)
}

// Styles holds the lipgloss styles used for status lines.
type Styles struct {
	Header  lipgloss.Style
	Success lipgloss.Style
	Error   lipgloss.Style
	Warning lipgloss.Style
	Muted   lipgloss.Style
	Name    lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) *Styles {
	return &Styles{
		Header:  r.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		Success: r.NewStyle().Foreground(lipgloss.Color("10")),
		Error:   r.NewStyle().Foreground(lipgloss.Color("9")),
		Warning: r.NewStyle().Foreground(lipgloss.Color("11")),
		Muted:   r.NewStyle().Foreground(lipgloss.Color("8")),
		Name:    r.NewStyle().Bold(true),
	}
}

// Renderer writes formatted output to a pair of writers.
type Renderer struct {
	w      io.Writer
	errW   io.Writer
	mode   Mode
	isTTY  bool
	styles *Styles
}

// NewRenderer creates a renderer over w (results) and errW (diagnostics).
func NewRenderer(w, errW io.Writer, mode Mode) *Renderer {
	if mode == "" {
		mode = ModeAuto
	}
	return &Renderer{
		w:      w,
		errW:   errW,
		mode:   mode,
		isTTY:  isTerminal(w),
		styles: newStyles(lipgloss.NewRenderer(w)),
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

// Writer returns the result writer.
func (r *Renderer) Writer() io.Writer { return r.w }

// ErrWriter returns the diagnostics writer.
func (r *Renderer) ErrWriter() io.Writer { return r.errW }

// Styles returns the renderer's styles.
func (r *Renderer) Styles() *Styles { return r.styles }

// IsTTY reports whether results go to a terminal.
func (r *Renderer) IsTTY() bool { return r.isTTY }

// EffectiveMode resolves ModeAuto against the terminal state.
func (r *Renderer) EffectiveMode() Mode {
	if r.mode != ModeAuto {
		return r.mode
	}
	if r.isTTY {
		return ModeText
	}
	return ModeMarkdown
}

// Println writes a line to the result writer.
func (r *Renderer) Println(a ...any) {
	_, _ = fmt.Fprintln(r.w, a...)
}

// Printf writes formatted text to the result writer.
func (r *Renderer) Printf(format string, a ...any) {
	_, _ = fmt.Fprintf(r.w, format, a...)
}

// Success writes a status line for a completed command.
func (r *Renderer) Success(msg string) {
	_, _ = fmt.Fprintln(r.w, r.styles.Success.Render(msg))
}

// Error writes a diagnostic line.
func (r *Renderer) Error(msg string) {
	_, _ = fmt.Fprintln(r.errW, r.styles.Error.Render(msg))
}

// Warning writes a warning line.
func (r *Renderer) Warning(msg string) {
	_, _ = fmt.Fprintln(r.errW, r.styles.Warning.Render(msg))
}

// Muted writes de-emphasised text.
func (r *Renderer) Muted(msg string) {
	_, _ = fmt.Fprintln(r.w, r.styles.Muted.Render(msg))
}

// Header writes a section header.
func (r *Renderer) Header(level int, text string) {
	if r.EffectiveMode() == ModeMarkdown {
		_, _ = fmt.Fprintln(r.w, FormatHeader(level, text))
		return
	}
	_, _ = fmt.Fprintln(r.w, r.styles.Header.Render(text))
}

// FormatHeader returns a markdown header.
func FormatHeader(level int, text string) string {
	if level < 1 {
		level = 1
	}
	return strings.Repeat("#", level) + " " + text
}
