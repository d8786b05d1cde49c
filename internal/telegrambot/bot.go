// Package telegrambot exposes the analysis service as a Telegram bot.
package telegrambot

import (
	"context"
	"fmt"
	"slices"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"github.com/lueurxax/sentiment-scope/internal/analysis"
	"github.com/lueurxax/sentiment-scope/internal/core/domain"
)

// MaxMessageSize is the maximum size for a single Telegram message part.
const MaxMessageSize = 4000

const updateTimeoutSeconds = 60

// Log field names.
const (
	LogFieldUserID   = "user_id"
	LogFieldUsername = "username"
	logFieldCommand  = "command"
)

// Command names.
const (
	CmdStart = "start"
	CmdHelp  = "help"
	CmdStats = "stats"
	CmdURL   = "url"
)

// Analyzer is the part of the analysis service the bot uses.
type Analyzer interface {
	AnalyzeText(ctx context.Context, text string) (*analysis.TextResult, error)
	AnalyzeURL(ctx context.Context, rawURL string) (*analysis.URLResult, error)
	Stats(ctx context.Context) (*domain.Stats, error)
}

// Sender delivers messages. *tgbotapi.BotAPI implements it.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Bot answers chat messages with sentiment analyses. Updates from users
// outside the allow list are logged and dropped.
type Bot struct {
	api     *tgbotapi.BotAPI
	sender  Sender
	svc     Analyzer
	allowed []int64
	logger  *zerolog.Logger
}

// New connects to the Bot API. An empty allowed list lets everyone use the bot.
func New(token string, allowed []int64, svc Analyzer, logger *zerolog.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("creating bot API: %w", err)
	}

	b := newBot(api, svc, allowed, logger)
	b.api = api

	return b, nil
}

func newBot(sender Sender, svc Analyzer, allowed []int64, logger *zerolog.Logger) *Bot {
	return &Bot{
		sender:  sender,
		svc:     svc,
		allowed: allowed,
		logger:  logger,
	}
}

// Run polls for updates until ctx is canceled.
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = updateTimeoutSeconds

	updates := b.api.GetUpdatesChan(u)
	defer b.api.StopReceivingUpdates()

	b.logger.Info().Str(LogFieldUsername, b.api.Self.UserName).Msg("telegram bot started")

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("bot run context canceled: %w", ctx.Err())
		case update := <-updates:
			if update.Message == nil || update.Message.From == nil {
				continue
			}

			if !b.isAllowed(update.Message.From.ID) {
				b.logger.Warn().Int64(LogFieldUserID, update.Message.From.ID).Str(LogFieldUsername, update.Message.From.UserName).Msg("Unauthorized access attempt")
				continue
			}

			b.handleMessage(ctx, update.Message)
		}
	}
}

func (b *Bot) isAllowed(userID int64) bool {
	return len(b.allowed) == 0 || slices.Contains(b.allowed, userID)
}

func (b *Bot) reply(msg *tgbotapi.Message, text string) {
	b.sendMessage(msg.Chat.ID, text)
}

func (b *Bot) sendMessage(chatID int64, text string) {
	for _, part := range SplitMessage(text, MaxMessageSize) {
		reply := tgbotapi.NewMessage(chatID, part)
		reply.ParseMode = tgbotapi.ModeHTML
		reply.DisableWebPagePreview = true

		if _, err := b.sender.Send(reply); err != nil {
			b.logger.Error().Err(err).Msg("failed to send reply")
		}
	}
}
