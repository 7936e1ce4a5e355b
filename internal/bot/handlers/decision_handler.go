package handlers

import (
	"GreenPay/internal/bot"
	"GreenPay/internal/core/domain"
	"GreenPay/internal/core/ports"
	"context"
	"errors"

	"github.com/rs/zerolog"
)

func init() {
	bot.RegisterCallback(NewApproveHandler)
	bot.RegisterCallback(NewRejectHandler)
}

// decisionHandler serves one of the two review card buttons.
type decisionHandler struct {
	log        zerolog.Logger
	bot        ports.BotClientPort
	moderation ports.ModerationService
	decision   domain.Decision
}

// NewApproveHandler handles "approve:<id>" callbacks.
func NewApproveHandler(deps *bot.Dependencies, baseLogger *zerolog.Logger) ports.CallbackHandler {
	return newDecisionHandler(domain.DecisionApprove, deps, baseLogger)
}

// NewRejectHandler handles "reject:<id>" callbacks.
func NewRejectHandler(deps *bot.Dependencies, baseLogger *zerolog.Logger) ports.CallbackHandler {
	return newDecisionHandler(domain.DecisionReject, deps, baseLogger)
}

func newDecisionHandler(d domain.Decision, deps *bot.Dependencies, baseLogger *zerolog.Logger) *decisionHandler {
	return &decisionHandler{
		log:        baseLogger.With().Str("component", "decision_handler").Str("decision", string(d)).Logger(),
		bot:        deps.Client,
		moderation: deps.Moderation,
		decision:   d,
	}
}

func (h *decisionHandler) Prefix() string {
	return string(h.decision) + ":"
}

func (h *decisionHandler) Handle(ctx context.Context, update *ports.BotUpdate) error {
	log := h.log.With().Int64("reviewer_id", update.UserID).Logger()

	// 1. Parse the callback data
	decision, id, err := domain.ParseActionToken(*update.CallbackData)
	if err != nil {
		log.Warn().Err(err).Str("data", *update.CallbackData).Msg("Invalid callback data")
		return h.answer(ctx, update, answerMalformed)
	}
	log = log.With().Int64("submission_id", id).Logger()

	// 2. Decide
	_, err = h.moderation.Decide(ctx, domain.DecisionEvent{
		SubmissionID: id,
		Decision:     decision,
		ReviewerID:   update.UserID,
		Card: domain.MessageRef{
			ChatID:    update.ChatID,
			MessageID: update.MessageID,
			Caption:   update.MessageCaption,
		},
	})

	// 3. Answer the callback to stop the spinner
	switch {
	case err == nil:
		if decision == domain.DecisionApprove {
			return h.answer(ctx, update, answerApproved)
		}
		return h.answer(ctx, update, answerRejected)
	case errors.Is(err, domain.ErrInvalidTransition):
		return h.answer(ctx, update, answerAlreadyDecided)
	case errors.Is(err, domain.ErrNotFound):
		return h.answer(ctx, update, answerNotFound)
	case errors.Is(err, domain.ErrForbidden):
		return h.answer(ctx, update, answerForbidden)
	}

	log.Error().Err(err).Msg("Decision failed")
	if answerErr := h.answer(ctx, update, answerFailed); answerErr != nil {
		log.Warn().Err(answerErr).Msg("Failed to answer callback")
	}
	return err
}

func (h *decisionHandler) answer(ctx context.Context, update *ports.BotUpdate, text string) error {
	return h.bot.AnswerCallbackQuery(ctx, ports.AnswerCallbackParams{
		CallbackQueryID: update.CallbackQueryID,
		Text:            text,
	})
}
