package text

import (
	"regexp"
	"strings"
)

var legacyTags = map[byte]string{
	'0': "black",
	'1': "dark_blue",
	'2': "dark_green",
	'3': "dark_aqua",
	'4': "dark_red",
	'5': "dark_purple",
	'6': "gold",
	'7': "gray",
	'8': "dark_gray",
	'9': "blue",
	'a': "green",
	'b': "aqua",
	'c': "red",
	'd': "light_purple",
	'e': "yellow",
	'f': "white",
	'k': "obfuscated",
	'l': "bold",
	'm': "strikethrough",
	'n': "underlined",
	'o': "italic",
	'r': "reset",
}

var legacyHexCapture = regexp.MustCompile(`&#([0-9A-Fa-f]{6})`)

// TranslateLegacy rewrites legacy codes into tag markup so a line mixing both
// styles can be parsed by one tokenizer. Hex codes are handled first.
func TranslateLegacy(line string) string {
	line = legacyHexCapture.ReplaceAllString(line, "<#$1>")
	return legacyPattern.ReplaceAllStringFunc(line, func(code string) string {
		c := strings.ToLower(code[len(code)-1:])[0]
		if tag, ok := legacyTags[c]; ok {
			return "<" + tag + ">"
		}
		return code
	})
}
