package telegrambot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lueurxax/sentiment-scope/internal/analysis"
	"github.com/lueurxax/sentiment-scope/internal/core/domain"
	apperrors "github.com/lueurxax/sentiment-scope/internal/core/errors"
	"github.com/lueurxax/sentiment-scope/internal/core/sentiment"
)

type fakeSender struct {
	sent []tgbotapi.MessageConfig
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if msg, ok := c.(tgbotapi.MessageConfig); ok {
		f.sent = append(f.sent, msg)
	}

	return tgbotapi.Message{}, nil
}

type fakeAnalyzer struct {
	textErr error
	urlErr  error
	lastURL string
}

func (f *fakeAnalyzer) AnalyzeText(_ context.Context, text string) (*analysis.TextResult, error) {
	if f.textErr != nil {
		return nil, f.textErr
	}

	return &analysis.TextResult{Text: text, SentimentResult: domain.SentimentResult{
		Sentiment:  domain.LabelPositive,
		Confidence: 0.91,
		Scores:     domain.Scores{Negative: 0.09, Positive: 0.91},
		ModelUsed:  domain.ModelTransformer,
	}}, nil
}

func (f *fakeAnalyzer) AnalyzeURL(_ context.Context, rawURL string) (*analysis.URLResult, error) {
	f.lastURL = rawURL

	if f.urlErr != nil {
		return nil, f.urlErr
	}

	return &analysis.URLResult{
		Summary:          domain.Summary{TotalAnalyzed: 2},
		OverallSentiment: domain.LabelMixed,
		AISummary:        "Opinions are split.",
		Metadata:         analysis.Metadata{Title: "Gadget <Pro>"},
	}, nil
}

func (f *fakeAnalyzer) Stats(context.Context) (*domain.Stats, error) {
	return &domain.Stats{TotalAnalyses: 4, ByType: map[domain.AnalysisType]int{domain.AnalysisSingle: 4}}, nil
}

func newTestBot(svc Analyzer, allowed ...int64) (*Bot, *fakeSender) {
	logger := zerolog.Nop()
	sender := &fakeSender{}

	return newBot(sender, svc, allowed, &logger), sender
}

func textMessage(text string) *tgbotapi.Message {
	msg := &tgbotapi.Message{
		Text: text,
		Chat: &tgbotapi.Chat{ID: 42},
		From: &tgbotapi.User{ID: 7, UserName: "tester"},
	}

	if strings.HasPrefix(text, "/") {
		cmdLen := len(strings.Fields(text)[0])
		msg.Entities = []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: cmdLen}}
	}

	return msg
}

func TestHandleMessage_Text(t *testing.T) {
	b, sender := newTestBot(&fakeAnalyzer{})

	b.handleMessage(context.Background(), textMessage("I love this phone"))

	require.Len(t, sender.sent, 1)
	assert.Equal(t, int64(42), sender.sent[0].ChatID)
	assert.Equal(t, tgbotapi.ModeHTML, sender.sent[0].ParseMode)
	assert.Contains(t, sender.sent[0].Text, "<b>Positive</b> (91%)")
	assert.Contains(t, sender.sent[0].Text, "Transformer")
}

func TestHandleMessage_Commands(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{name: "start", text: "/start", want: "SentimentScope"},
		{name: "help", text: "/help", want: "/stats"},
		{name: "stats", text: "/stats", want: "4 analyses"},
		{name: "url usage", text: "/url", want: "Usage"},
		{name: "url", text: "/url https://example.com/p", want: "Gadget &lt;Pro&gt;"},
		{name: "unknown", text: "/dance", want: msgUnknownCommand},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, sender := newTestBot(&fakeAnalyzer{})

			b.handleMessage(context.Background(), textMessage(tt.text))

			require.Len(t, sender.sent, 1)
			assert.Contains(t, sender.sent[0].Text, tt.want)
		})
	}
}

func TestHandleMessage_Errors(t *testing.T) {
	t.Run("user facing", func(t *testing.T) {
		svc := &fakeAnalyzer{urlErr: fmt.Errorf("%w: YouTube API key not configured", apperrors.ErrCommentsUnavailable)}
		b, sender := newTestBot(svc)

		b.handleMessage(context.Background(), textMessage("/url https://youtu.be/dQw4w9WgXcQ"))

		require.Len(t, sender.sent, 1)
		assert.Contains(t, sender.sent[0].Text, "YouTube API key not configured")
		assert.Equal(t, "https://youtu.be/dQw4w9WgXcQ", svc.lastURL)
	})

	t.Run("internal", func(t *testing.T) {
		b, sender := newTestBot(&fakeAnalyzer{textErr: errors.New("db exploded")})

		b.handleMessage(context.Background(), textMessage("hello"))

		require.Len(t, sender.sent, 1)
		assert.Equal(t, msgFailed, sender.sent[0].Text)
	})
}

func TestIsAllowed(t *testing.T) {
	open, _ := newTestBot(&fakeAnalyzer{})
	assert.True(t, open.isAllowed(1))

	restricted, _ := newTestBot(&fakeAnalyzer{}, 7, 8)
	assert.True(t, restricted.isAllowed(7))
	assert.False(t, restricted.isAllowed(9))
}

func TestFormatStats(t *testing.T) {
	got := FormatStats(&domain.Stats{
		TotalAnalyses:         5,
		SentimentDistribution: domain.SentimentCounts{Positive: 3, Negative: 2},
		ByType:                map[domain.AnalysisType]int{domain.AnalysisSingle: 4, domain.AnalysisURL: 1},
	})

	assert.Contains(t, got, "5 analyses")
	assert.Contains(t, got, "Positive: 3")
	assert.Contains(t, got, "single: 4")
	assert.Contains(t, got, "bulk: 0")
	assert.Contains(t, got, "url: 1")
}

func TestFormatURLResult(t *testing.T) {
	res := &analysis.URLResult{
		Summary: domain.Summary{
			TotalAnalyzed:        3,
			SentimentPercentages: domain.SentimentPercentages{Positive: 66.67, Negative: 33.33},
		},
		OverallSentiment: domain.LabelPositive,
		WordFrequencies:  sentiment.FrequencyTable{{Word: "battery", Count: 3}, {Word: "screen", Count: 1}},
		AISummary:        "Mostly happy & satisfied.",
	}

	got := FormatURLResult("https://example.com/x", res)

	assert.True(t, strings.HasPrefix(got, "<b>https://example.com/x</b>"))
	assert.Contains(t, got, "Overall: <b>Positive</b> across 3 texts")
	assert.Contains(t, got, "66.67%")
	assert.Contains(t, got, "battery (3), screen (1)")
	assert.Contains(t, got, "happy &amp; satisfied")
}

func TestSplitMessage(t *testing.T) {
	assert.Equal(t, []string{"short"}, SplitMessage("short", 10))

	text := "line one\nline two\nline three"
	parts := SplitMessage(text, 12)
	assert.Equal(t, []string{"line one", "line two", "line three"}, parts)

	long := strings.Repeat("a", 25)
	parts = SplitMessage(long, 10)
	assert.Equal(t, []string{strings.Repeat("a", 10), strings.Repeat("a", 10), strings.Repeat("a", 5)}, parts)

	for _, p := range SplitMessage(strings.Repeat("word ", 3000), MaxMessageSize) {
		assert.LessOrEqual(t, len([]rune(p)), MaxMessageSize)
	}
}
