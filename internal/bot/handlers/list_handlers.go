package handlers

import (
	"GreenPay/internal/bot"
	"GreenPay/internal/bot/messages"
	"GreenPay/internal/core/domain"
	"GreenPay/internal/core/ports"
	"context"
	"errors"

	"github.com/rs/zerolog"
)

func init() {
	bot.RegisterCommand(NewPendingHandler)
	bot.RegisterCommand(NewMyTreesHandler)
}

// pendingHandler lists the oldest pending submissions for the reviewer.
type pendingHandler struct {
	log        zerolog.Logger
	bot        ports.BotClientPort
	moderation ports.ModerationService
}

// NewPendingHandler creates the /pending handler.
func NewPendingHandler(deps *bot.Dependencies, baseLogger *zerolog.Logger) ports.CommandHandler {
	return &pendingHandler{
		log:        baseLogger.With().Str("component", "pending_handler").Logger(),
		bot:        deps.Client,
		moderation: deps.Moderation,
	}
}

func (h *pendingHandler) Command() string {
	return "pending"
}

func (h *pendingHandler) Handle(ctx context.Context, update *ports.BotUpdate) error {
	subs, err := h.moderation.Pending(ctx, update.UserID, listLimit)
	switch {
	case errors.Is(err, domain.ErrForbidden):
		return sendPlain(ctx, h.bot, update.ChatID, textReviewerOnly)
	case err != nil:
		h.log.Error().Err(err).Msg("Failed to list pending submissions")
		return sendPlain(ctx, h.bot, update.ChatID, textInternalError)
	case len(subs) == 0:
		return sendPlain(ctx, h.bot, update.ChatID, textNoPending)
	}

	text := formatList("⏳ Kutilayotgan arizalar", subs, pendingLine)
	_, err = h.bot.SendMessage(ctx, messages.NewBuilder(update.ChatID).WithText(text).Build())
	return err
}

// myTreesHandler shows the caller their own submissions.
type myTreesHandler struct {
	log         zerolog.Logger
	bot         ports.BotClientPort
	submissions ports.SubmissionService
}

// NewMyTreesHandler creates the /mytrees handler.
func NewMyTreesHandler(deps *bot.Dependencies, baseLogger *zerolog.Logger) ports.CommandHandler {
	return &myTreesHandler{
		log:         baseLogger.With().Str("component", "mytrees_handler").Logger(),
		bot:         deps.Client,
		submissions: deps.Submissions,
	}
}

func (h *myTreesHandler) Command() string {
	return "mytrees"
}

func (h *myTreesHandler) Handle(ctx context.Context, update *ports.BotUpdate) error {
	subs, err := h.submissions.History(ctx, update.UserID, listLimit)
	if err != nil {
		h.log.Error().Err(err).Int64("user_id", update.UserID).Msg("Failed to load history")
		return sendPlain(ctx, h.bot, update.ChatID, textInternalError)
	}
	if len(subs) == 0 {
		return sendPlain(ctx, h.bot, update.ChatID, textNoTrees)
	}

	text := formatList("🌳 Mening daraxtlarim", subs, historyLine)
	_, err = h.bot.SendMessage(ctx, messages.NewBuilder(update.ChatID).WithText(text).Build())
	return err
}

func sendPlain(ctx context.Context, client ports.BotClientPort, chatID int64, text string) error {
	_, err := client.SendMessage(ctx, messages.NewBuilder(chatID).WithText(text).WithParseMode("").Build())
	return err
}
