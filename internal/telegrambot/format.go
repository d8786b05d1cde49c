package telegrambot

import (
	"fmt"
	"html"
	"strings"
	"unicode/utf8"

	"github.com/lueurxax/sentiment-scope/internal/analysis"
	"github.com/lueurxax/sentiment-scope/internal/core/domain"
)

const summaryPreviewRunes = 1500

// Label emojis.
var labelEmoji = map[domain.Label]string{
	domain.LabelPositive: "😊",
	domain.LabelNegative: "😞",
	domain.LabelNeutral:  "😐",
	domain.LabelMixed:    "🤔",
}

// FormatResult renders one classification.
func FormatResult(res domain.SentimentResult) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "%s <b>%s</b> (%.0f%%)\n", labelEmoji[res.Sentiment], res.Sentiment, res.Confidence*100)
	fmt.Fprintf(&sb, "Positive %.2f · Neutral %.2f · Negative %.2f\n", res.Scores.Positive, res.Scores.Neutral, res.Scores.Negative)
	fmt.Fprintf(&sb, "<i>Model: %s</i>", html.EscapeString(string(res.ModelUsed)))

	return sb.String()
}

// FormatStats renders history totals.
func FormatStats(stats *domain.Stats) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "<b>📊 %d analyses</b>\n\n", stats.TotalAnalyses)
	fmt.Fprintf(&sb, "😊 Positive: %d\n😞 Negative: %d\n😐 Neutral: %d\n\n",
		stats.SentimentDistribution.Positive,
		stats.SentimentDistribution.Negative,
		stats.SentimentDistribution.Neutral)

	for _, t := range domain.AnalysisTypes {
		fmt.Fprintf(&sb, "%s: %d\n", t, stats.ByType[t])
	}

	return strings.TrimRight(sb.String(), "\n")
}

// FormatURLResult renders a URL analysis.
func FormatURLResult(link string, res *analysis.URLResult) string {
	var sb strings.Builder

	title := res.Metadata.Title
	if title == "" {
		title = link
	}

	fmt.Fprintf(&sb, "<b>%s</b>\n", html.EscapeString(title))
	fmt.Fprintf(&sb, "%s Overall: <b>%s</b> across %d texts\n", labelEmoji[res.OverallSentiment], res.OverallSentiment, res.Summary.TotalAnalyzed)

	p := res.Summary.SentimentPercentages
	fmt.Fprintf(&sb, "Positive %.2f%% · Negative %.2f%% · Neutral %.2f%%\n", p.Positive, p.Negative, p.Neutral)

	if top := topWords(res, 5); top != "" {
		fmt.Fprintf(&sb, "Top words: %s\n", html.EscapeString(top))
	}

	if res.AISummary != "" {
		fmt.Fprintf(&sb, "\n%s", html.EscapeString(truncate(res.AISummary, summaryPreviewRunes)))
	}

	return strings.TrimRight(sb.String(), "\n")
}

func topWords(res *analysis.URLResult, n int) string {
	words := make([]string, 0, n)

	for _, wc := range res.WordFrequencies {
		if len(words) == n {
			break
		}

		words = append(words, fmt.Sprintf("%s (%d)", wc.Word, wc.Count))
	}

	return strings.Join(words, ", ")
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}

	return string([]rune(s)[:n]) + "..."
}

// SplitMessage splits text into parts of at most limit runes, preferring line breaks.
func SplitMessage(text string, limit int) []string {
	if utf8.RuneCountInString(text) <= limit {
		return []string{text}
	}

	var (
		parts []string
		cur   strings.Builder
		size  int
	)

	flush := func() {
		if cur.Len() > 0 {
			parts = append(parts, strings.TrimRight(cur.String(), "\n"))
			cur.Reset()

			size = 0
		}
	}

	for _, line := range strings.SplitAfter(text, "\n") {
		n := utf8.RuneCountInString(line)

		if size+n > limit {
			flush()
		}

		for n > limit {
			runes := []rune(line)
			parts = append(parts, string(runes[:limit]))
			line = string(runes[limit:])
			n -= limit
		}

		cur.WriteString(line)
		size += n
	}

	flush()

	return parts
}
