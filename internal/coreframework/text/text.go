// Package text lays out console report lines. It strips decoration markup to
// measure the visible width of a line, sizes scaled separators so decorated
// lines hit an exact column width, and substitutes {name} placeholders.
//
// Two markup families are understood:
//   - tag spans such as <red>, <#FF8800>, </bold>
//   - legacy single-character codes such as &c, §l and legacy hex &#RRGGBB
package text

import (
	"regexp"
	"strings"

	"github.com/mattn/go-runewidth"
)

var (
	tagPattern       = regexp.MustCompile(`<[^>]+>`)
	legacyHexPattern = regexp.MustCompile(`&#[0-9A-Fa-f]{6}`)
	legacyPattern    = regexp.MustCompile(`(?i)[&§][0-9a-fk-or]`)
)

// Substitute replaces every {name} occurrence with its value. Pairs are given
// as name, value, name, value... Unmatched placeholders are left intact. An odd
// number of pair arguments leaves the template unchanged.
func Substitute(template string, pairs ...string) string {
	if template == "" || len(pairs)%2 != 0 {
		return template
	}
	for i := 0; i < len(pairs); i += 2 {
		template = strings.ReplaceAll(template, "{"+pairs[i]+"}", pairs[i+1])
	}
	return template
}

// StripMarkup removes tag spans, legacy hex codes and legacy color codes. It
// repeats until the text stops changing, so stripping plain text is a no-op.
func StripMarkup(line string) string {
	for {
		stripped := stripOnce(line)
		if stripped == line {
			return stripped
		}
		line = stripped
	}
}

func stripOnce(line string) string {
	line = tagPattern.ReplaceAllString(line, "")
	line = legacyHexPattern.ReplaceAllString(line, "")
	return legacyPattern.ReplaceAllString(line, "")
}

// VisualLength is the number of terminal columns the line occupies once all
// markup is removed.
func VisualLength(line string) int {
	return runewidth.StringWidth(StripMarkup(line))
}
