package textutil

import (
	"regexp"
	"strings"
)

var ligatures = strings.NewReplacer(
	"ﬀ", "ff",
	"ﬁ", "fi",
	"ﬂ", "fl",
	"ﬃ", "ffi",
	"ﬄ", "ffl",
	"ﬅ", "st",
	"ﬆ", "st",
)

var (
	zeroWidthRe  = regexp.MustCompile("[\u200b\u200c\u200d\u2060\ufeff]")
	blankLinesRe = regexp.MustCompile(`\n{3,}`)
	trailingWsRe = regexp.MustCompile(`[ \t]+\n`)
)

// Clean normalizes extracted prose: folds typographic ligatures, strips
// zero-width characters and BOMs, converts NBSP to plain space, unifies line
// endings, and squeezes runs of blank lines.
func Clean(text string) string {
	if text == "" {
		return ""
	}
	out := ligatures.Replace(text)
	out = zeroWidthRe.ReplaceAllString(out, "")
	out = strings.ReplaceAll(out, "\u00a0", " ")
	out = strings.ReplaceAll(out, "\r\n", "\n")
	out = strings.ReplaceAll(out, "\r", "\n")
	out = trailingWsRe.ReplaceAllString(out, "\n")
	out = blankLinesRe.ReplaceAllString(out, "\n\n")
	return strings.TrimSpace(out)
}

var thousandsRe = regexp.MustCompile(`^[+-]?\d{1,3}(,\d{3})+(\.\d+)?$`)

// NormalizeNumber removes thousands separators from a numeric string:
// "1,234.5" becomes "1234.5". Any other input is returned with surrounding
// whitespace trimmed and otherwise unchanged.
func NormalizeNumber(s string) string {
	trimmed := strings.TrimSpace(s)
	if thousandsRe.MatchString(trimmed) {
		return strings.ReplaceAll(trimmed, ",", "")
	}
	return trimmed
}
