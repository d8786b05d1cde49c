package textnorm

import (
	"sort"
	"strings"
	"sync"

	"github.com/jonreiter/govader"
)

// emojiReplacer turns every glyph from the VADER emoji table into " its name ".
// Longer glyph sequences are listed first so ZWJ and variation-selector forms win
// over their single-rune prefixes.
var emojiReplacer = sync.OnceValue(func() *strings.Replacer {
	return newEmojiReplacer(govader.NewSentimentIntensityAnalyzer().EmojiDict)
})

func newEmojiReplacer(table map[string]string) *strings.Replacer {
	glyphs := make([]string, 0, len(table))

	for glyph := range table {
		if glyph != "" {
			glyphs = append(glyphs, glyph)
		}
	}

	sort.Slice(glyphs, func(i, j int) bool {
		if len(glyphs[i]) != len(glyphs[j]) {
			return len(glyphs[i]) > len(glyphs[j])
		}

		return glyphs[i] < glyphs[j]
	})

	pairs := make([]string, 0, len(glyphs)*2)
	for _, glyph := range glyphs {
		pairs = append(pairs, glyph, " "+strings.ToLower(strings.TrimSpace(table[glyph]))+" ")
	}

	return strings.NewReplacer(pairs...)
}

// Demojize replaces emoji glyphs with their space-delimited English names.
func Demojize(text string) string {
	if isASCII(text) {
		return text
	}

	return emojiReplacer().Replace(text)
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}

	return true
}
