package output

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/kiosk404/coreframework/internal/coreframework/text"
	"github.com/kiosk404/coreframework/pkg/logger"
)

// ansiColors maps named colors to the 16-color ANSI palette.
var ansiColors = map[string]string{
	"black":        "0",
	"dark_red":     "1",
	"dark_green":   "2",
	"gold":         "3",
	"dark_blue":    "4",
	"dark_purple":  "5",
	"dark_aqua":    "6",
	"gray":         "7",
	"dark_gray":    "8",
	"red":          "9",
	"green":        "10",
	"yellow":       "11",
	"blue":         "12",
	"light_purple": "13",
	"aqua":         "14",
	"white":        "15",
}

// ConsoleSink writes decorated lines to a terminal. With ANSI disabled it
// writes the stripped plain text.
type ConsoleSink struct {
	mu       sync.Mutex
	out      io.Writer
	ansi     bool
	renderer *lipgloss.Renderer
}

var _ Sink = (*ConsoleSink)(nil)

// NewConsoleSink creates a sink for out. ansi forces color output on; pass
// false for pipes and log files.
func NewConsoleSink(out io.Writer, ansi bool) *ConsoleSink {
	r := lipgloss.NewRenderer(out)
	if ansi {
		r.SetColorProfile(termenv.TrueColor)
	} else {
		r.SetColorProfile(termenv.Ascii)
	}
	return &ConsoleSink{out: out, ansi: ansi, renderer: r}
}

// Emit renders and writes one line.
func (s *ConsoleSink) Emit(line string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var rendered string
	if s.ansi {
		rendered = s.render(line)
	} else {
		rendered = text.Plain(text.Parse(line))
	}
	fmt.Fprintln(s.out, rendered)
}

func (s *ConsoleSink) render(line string) string {
	var b strings.Builder
	for _, span := range text.Parse(line) {
		b.WriteString(s.style(span.Style).Render(span.Text))
	}
	return b.String()
}

func (s *ConsoleSink) style(st text.Style) lipgloss.Style {
	color := st.Color
	if code, ok := ansiColors[color]; ok {
		color = code
	}
	return s.renderer.NewStyle().
		Foreground(lipgloss.Color(color)).
		Bold(st.Bold).
		Italic(st.Italic).
		Underline(st.Underlined).
		Strikethrough(st.Strikethrough).
		Blink(st.Obfuscated)
}

// LogSink forwards plain lines to the process logger.
type LogSink struct{}

var _ Sink = LogSink{}

// Emit logs the stripped line at info level.
func (LogSink) Emit(line string) {
	logger.Info("%s", text.Plain(text.Parse(line)))
}

// RecordingSink keeps every emitted line in memory.
type RecordingSink struct {
	mu    sync.Mutex
	lines []string
}

var _ Sink = (*RecordingSink)(nil)

// Emit records line.
func (r *RecordingSink) Emit(line string) {
	r.mu.Lock()
	r.lines = append(r.lines, line)
	r.mu.Unlock()
}

// Lines returns a copy of the recorded lines.
func (r *RecordingSink) Lines() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.lines))
	copy(out, r.lines)
	return out
}
