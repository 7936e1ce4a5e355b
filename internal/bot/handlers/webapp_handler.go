package handlers

import (
	"GreenPay/internal/bot"
	"GreenPay/internal/bot/messages"
	"GreenPay/internal/core/domain"
	"GreenPay/internal/core/ports"
	"context"

	"github.com/rs/zerolog"
)

func init() {
	bot.RegisterMessage(NewWebAppHandler)
}

// webAppHandler turns Mini App data into a submission.
type webAppHandler struct {
	log         zerolog.Logger
	bot         ports.BotClientPort
	submissions ports.SubmissionService
}

// NewWebAppHandler creates the handler for web_app_data messages.
func NewWebAppHandler(deps *bot.Dependencies, baseLogger *zerolog.Logger) ports.MessageHandler {
	return &webAppHandler{
		log:         baseLogger.With().Str("component", "webapp_handler").Logger(),
		bot:         deps.Client,
		submissions: deps.Submissions,
	}
}

func (h *webAppHandler) Name() string {
	return "web_app_data"
}

func (h *webAppHandler) CanHandle(update *ports.BotUpdate) bool {
	return update.WebAppData != nil
}

// Handle submits the payload. Rejections and acknowledgements are sent by
// the service; only unexpected failures are answered here.
func (h *webAppHandler) Handle(ctx context.Context, update *ports.BotUpdate) error {
	log := h.log.With().Int64("user_id", update.UserID).Logger()

	submitter := domain.Submitter{ID: update.UserID, FullName: update.UserFullName}
	sub, err := h.submissions.SubmitPayload(ctx, submitter, []byte(*update.WebAppData))
	if err != nil {
		if _, ok := domain.AsValidationError(err); ok {
			return nil
		}
		log.Error().Err(err).Msg("Submission failed")
		msg := messages.NewBuilder(update.ChatID).WithText(textInternalError).WithParseMode("").Build()
		if _, sendErr := h.bot.SendMessage(ctx, msg); sendErr != nil {
			log.Error().Err(sendErr).Msg("Failed to send error message")
		}
		return err
	}

	log.Info().Int64("submission_id", sub.ID).Msg("Web app submission stored")
	return nil
}
