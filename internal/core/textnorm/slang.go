package textnorm

import "strings"

// slang maps colloquial intensifiers to plain words the classifiers score reliably.
var slang = map[string]string{
	"underrated": "amazing",
	"underdog":   "winner",
	"goat":       "best",
	"banger":     "amazing song",
	"dope":       "amazing",
	"sick":       "amazing",
	"fire":       "amazing",
	"lit":        "amazing",
	"beast":      "amazing",
	"slaps":      "amazing",
	"addicted":   "loving",
}

// ExpandSlang replaces whole whitespace-separated tokens found in the slang table.
// The result is re-joined with single spaces.
func ExpandSlang(text string) string {
	words := strings.Fields(text)

	for i, word := range words {
		if replacement, ok := slang[word]; ok {
			words[i] = replacement
		}
	}

	return strings.Join(words, " ")
}
