package text

import (
	"strings"
)

const (
	// PrefixMarker is replaced by the configured prefix.
	PrefixMarker = "{prefix}"

	// DefaultPrefix is used when no prefix template is configured.
	DefaultPrefix = "[CoreFramework]"
)

// Settings configures an Engine. It is read once from configuration and never
// changes for the lifetime of the engine.
type Settings struct {
	LineLength    int
	MinPadding    int
	PrefixEnabled bool
	Prefix        string
}

// DefaultSettings mirrors the configuration defaults.
func DefaultSettings() Settings {
	return Settings{
		LineLength:    DefaultLineLength,
		MinPadding:    DefaultMinPadding,
		PrefixEnabled: true,
		Prefix:        DefaultPrefix,
	}
}

// Engine turns templates into fully laid-out lines.
type Engine struct {
	settings Settings
}

// NewEngine creates an Engine with fixed settings.
func NewEngine(settings Settings) *Engine {
	if settings.Prefix == "" {
		settings.Prefix = DefaultPrefix
	}
	return &Engine{settings: settings}
}

// Settings returns the engine's settings.
func (e *Engine) Settings() Settings {
	return e.settings
}

// Process resolves {prefix} and then {scaled.separator}. The returned line is
// ready for a sink. A *PaddingError means the line cannot be laid out at all.
func (e *Engine) Process(line string) (string, error) {
	if line == "" {
		return line, nil
	}
	line = e.replacePrefix(line)
	return ReplaceScaledSeparator(line, e.settings.LineLength, e.settings.MinPadding)
}

// Render substitutes pairs into template and processes the result.
func (e *Engine) Render(template string, pairs ...string) (string, error) {
	return e.Process(Substitute(template, pairs...))
}

func (e *Engine) replacePrefix(line string) string {
	if !strings.Contains(line, PrefixMarker) {
		return line
	}
	if !e.settings.PrefixEnabled {
		return strings.TrimSpace(strings.ReplaceAll(line, PrefixMarker, ""))
	}
	return strings.ReplaceAll(line, PrefixMarker, e.settings.Prefix)
}
