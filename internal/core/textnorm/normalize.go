// Package textnorm cleans raw user text before classification.
//
// Normalize applies, in order:
//   - lowercasing
//   - URL and @mention removal
//   - emoji to word conversion
//   - slang expansion
//   - removal of characters outside [a-zA-Z0-9 !?.,], then slang and URL
//     passes again over what that removal joined
//   - whitespace collapsing
package textnorm

import (
	"regexp"
	"strings"
)

// nonSpace matches what a Unicode-aware \S would: Go's \s only covers ASCII whitespace.
const nonSpace = `[^\s\v\p{Z}\x{1c}-\x{1f}\x{85}]`

var (
	urlPattern         = regexp.MustCompile(`http` + nonSpace + `+|www` + nonSpace + `+`)
	mentionPattern     = regexp.MustCompile(`@[\p{L}\p{N}_]+`)
	unsupportedPattern = regexp.MustCompile(`[^a-zA-Z0-9\s!?.,]`)
)

// Normalize returns the cleaned form of raw. An empty result means there is nothing to classify.
func Normalize(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	text := strings.ToLower(raw)
	text = urlPattern.ReplaceAllString(text, "")
	text = mentionPattern.ReplaceAllString(text, "")
	text = Demojize(text)
	text = ExpandSlang(text)
	text = unsupportedPattern.ReplaceAllString(text, "")

	// Dropping characters can join fragments into a new slang word or URL
	// ("l#it", "h~ttps"); both passes run again so the output is a fixed point.
	text = ExpandSlang(text)
	text = urlPattern.ReplaceAllString(text, "")

	return strings.Join(strings.Fields(text), " ")
}
