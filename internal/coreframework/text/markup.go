package text

import (
	"regexp"
	"strings"
)

// DefaultColor is assigned to spans that carry no explicit color.
const DefaultColor = "white"

// NamedColors lists the color tags the tokenizer understands.
var NamedColors = map[string]bool{
	"black": true, "dark_blue": true, "dark_green": true, "dark_aqua": true,
	"dark_red": true, "dark_purple": true, "gold": true, "gray": true,
	"dark_gray": true, "blue": true, "green": true, "aqua": true,
	"red": true, "light_purple": true, "yellow": true, "white": true,
}

var (
	hexTagPattern = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)
	anyTagPattern = regexp.MustCompile(`<(/?)([^>]+)>`)
)

var decorationAliases = map[string]string{
	"b": "bold", "bold": "bold",
	"i": "italic", "em": "italic", "italic": "italic",
	"u": "underlined", "underlined": "underlined",
	"st": "strikethrough", "strikethrough": "strikethrough",
	"obf": "obfuscated", "obfuscated": "obfuscated",
}

// Style is the decoration state of a span.
type Style struct {
	Color         string
	Bold          bool
	Italic        bool
	Underlined    bool
	Strikethrough bool
	Obfuscated    bool
}

// Span is a run of text with one style.
type Span struct {
	Text  string
	Style Style
}

type frame struct {
	tag   string
	style Style
}

// Parse tokenizes a line (after legacy translation) into styled spans and
// applies the line defaults: spans without a color get DefaultColor, and every
// span is non-italic. Unknown tags are dropped, as StripMarkup drops them, so
// the printed text is exactly as wide as VisualLength measured.
func Parse(line string) []Span {
	line = TranslateLegacy(line)

	var (
		spans []Span
		stack []frame
		last  int
	)
	current := func() Style {
		if len(stack) == 0 {
			return Style{}
		}
		return stack[len(stack)-1].style
	}
	emit := func(s string) {
		if s == "" {
			return
		}
		spans = append(spans, Span{Text: s, Style: applyDefaults(current())})
	}

	for _, loc := range anyTagPattern.FindAllStringSubmatchIndex(line, -1) {
		closing := loc[3] > loc[2]
		name := strings.ToLower(strings.TrimSpace(line[loc[4]:loc[5]]))

		emit(line[last:loc[0]])
		last = loc[1]

		next, ok := applyTag(current(), name)
		if !ok {
			continue
		}

		switch {
		case name == "reset":
			stack = stack[:0]
		case closing:
			stack = popTag(stack, canonicalTag(name))
		default:
			stack = append(stack, frame{tag: canonicalTag(name), style: next})
		}
	}
	emit(line[last:])
	return spans
}

// Plain concatenates span text.
func Plain(spans []Span) string {
	var b strings.Builder
	for _, s := range spans {
		b.WriteString(s.Text)
	}
	return b.String()
}

func applyDefaults(s Style) Style {
	if s.Color == "" {
		s.Color = DefaultColor
	}
	s.Italic = false
	return s
}

func canonicalTag(name string) string {
	if alias, ok := decorationAliases[name]; ok {
		return alias
	}
	if hexTagPattern.MatchString(name) || NamedColors[name] || strings.HasPrefix(name, "color:") {
		return "color"
	}
	return name
}

func applyTag(s Style, name string) (Style, bool) {
	switch {
	case name == "reset":
		return Style{}, true
	case NamedColors[name]:
		s.Color = name
		return s, true
	case hexTagPattern.MatchString(name):
		s.Color = strings.ToUpper(name)
		return s, true
	case strings.HasPrefix(name, "color:"):
		c := strings.TrimPrefix(name, "color:")
		if NamedColors[c] || hexTagPattern.MatchString(c) {
			s.Color = c
			return s, true
		}
		return s, false
	}
	switch decorationAliases[name] {
	case "bold":
		s.Bold = true
	case "italic":
		s.Italic = true
	case "underlined":
		s.Underlined = true
	case "strikethrough":
		s.Strikethrough = true
	case "obfuscated":
		s.Obfuscated = true
	default:
		return s, false
	}
	return s, true
}

func popTag(stack []frame, tag string) []frame {
	for i := len(stack) - 1; i >= 0; i-- {
		if stack[i].tag == tag {
			return stack[:i]
		}
	}
	return stack
}
