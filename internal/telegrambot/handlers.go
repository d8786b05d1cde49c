package telegrambot

import (
	"context"
	"errors"
	"html"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	apperrors "github.com/lueurxax/sentiment-scope/internal/core/errors"
)

const (
	helpText = "<b>SentimentScope</b>\n\n" +
		"Send me any text and I will tell you whether it is Positive, Negative or Neutral.\n\n" +
		"<code>/url &lt;link&gt;</code> analyse the comments or reviews behind a link\n" +
		"<code>/stats</code> totals across all analyses\n" +
		"<code>/help</code> this message"

	msgUnknownCommand = "Unknown command. Use /help."
	msgURLUsage       = "Usage: <code>/url https://example.com/product</code>"
	msgFailed         = "❌ Analysis failed, please try again later."
)

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if !msg.IsCommand() {
		b.handleText(ctx, msg)
		return
	}

	b.logger.Info().Str(logFieldCommand, msg.Command()).Int64(LogFieldUserID, msg.From.ID).Msg("Handling command")

	switch msg.Command() {
	case CmdStart, CmdHelp:
		b.reply(msg, helpText)
	case CmdStats:
		b.handleStats(ctx, msg)
	case CmdURL:
		b.handleURL(ctx, msg)
	default:
		b.reply(msg, msgUnknownCommand)
	}
}

func (b *Bot) handleText(ctx context.Context, msg *tgbotapi.Message) {
	text := strings.TrimSpace(msg.Text)
	if text == "" {
		return
	}

	res, err := b.svc.AnalyzeText(ctx, text)
	if err != nil {
		b.replyError(msg, err)
		return
	}

	b.reply(msg, FormatResult(res.SentimentResult))
}

func (b *Bot) handleStats(ctx context.Context, msg *tgbotapi.Message) {
	stats, err := b.svc.Stats(ctx)
	if err != nil {
		b.replyError(msg, err)
		return
	}

	b.reply(msg, FormatStats(stats))
}

func (b *Bot) handleURL(ctx context.Context, msg *tgbotapi.Message) {
	link := strings.TrimSpace(msg.CommandArguments())
	if link == "" {
		b.reply(msg, msgURLUsage)
		return
	}

	res, err := b.svc.AnalyzeURL(ctx, link)
	if err != nil {
		b.replyError(msg, err)
		return
	}

	b.reply(msg, FormatURLResult(link, res))
}

func (b *Bot) replyError(msg *tgbotapi.Message, err error) {
	switch {
	case errors.Is(err, apperrors.ErrInvalidInput),
		errors.Is(err, apperrors.ErrInvalidURL),
		errors.Is(err, apperrors.ErrCommentsUnavailable):
		b.reply(msg, "⚠️ "+html.EscapeString(err.Error()))
	default:
		b.logger.Error().Err(err).Int64(LogFieldUserID, msg.From.ID).Msg("bot analysis failed")
		b.reply(msg, msgFailed)
	}
}
