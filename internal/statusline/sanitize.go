package statusline

import "strings"

var lineBreaks = strings.NewReplacer(
	"\r\n", " ",
	"\r", " ",
	"\n", " ",
	"\u2028", " ",
	"\u2029", " ",
	"\u0085", " ",
	// zero-width characters
	"\u200B", "",
	"\u200C", "",
	"\u200D", "",
	"\u200E", "",
	"\u200F", "",
	"\uFEFF", "",
)

// singleLine flattens s so a segment can never break the status line.
func singleLine(s string) string {
	return strings.TrimSpace(lineBreaks.Replace(s))
}
