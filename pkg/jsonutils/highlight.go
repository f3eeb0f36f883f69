package jsonutils

import (
	"strings"
	"unicode"

	"github.com/fatih/color"
)

// The palette is forced on: callers decide once per run whether to highlight.
var (
	keyColor     = forced(color.FgBlue, color.Bold)
	stringColor  = forced(color.FgGreen)
	numberColor  = forced(color.FgCyan)
	literalColor = forced(color.FgYellow)
)

func forced(attrs ...color.Attribute) *color.Color {
	c := color.New(attrs...)
	c.EnableColor()
	return c
}

// Highlight adds terminal colors to JSON text. Text that is not valid JSON is
// colored token by token as far as it can be recognized.
func Highlight(src string) string {
	var out strings.Builder
	out.Grow(len(src) * 2)

	runes := []rune(src)
	for i := 0; i < len(runes); {
		r := runes[i]
		switch {
		case r == '"':
			end := scanString(runes, i)
			token := string(runes[i:end])
			if isKey(runes, end) {
				out.WriteString(keyColor.Sprint(token))
			} else {
				out.WriteString(stringColor.Sprint(token))
			}
			i = end
		case r == '-' || unicode.IsDigit(r):
			end := i + 1
			for end < len(runes) && strings.ContainsRune("0123456789.eE+-", runes[end]) {
				end++
			}
			out.WriteString(numberColor.Sprint(string(runes[i:end])))
			i = end
		case unicode.IsLetter(r):
			end := i + 1
			for end < len(runes) && unicode.IsLetter(runes[end]) {
				end++
			}
			out.WriteString(literalColor.Sprint(string(runes[i:end])))
			i = end
		default:
			out.WriteRune(r)
			i++
		}
	}

	return out.String()
}

// scanString returns the index just past the string literal starting at start.
func scanString(runes []rune, start int) int {
	for i := start + 1; i < len(runes); i++ {
		switch runes[i] {
		case '\\':
			i++
		case '"':
			return i + 1
		}
	}
	return len(runes)
}

// isKey reports whether the next non-space rune after pos is a colon.
func isKey(runes []rune, pos int) bool {
	for i := pos; i < len(runes); i++ {
		if unicode.IsSpace(runes[i]) {
			continue
		}
		return runes[i] == ':'
	}
	return false
}
