package handlers

import (
	"GreenPay/internal/bot"
	"GreenPay/internal/bot/messages"
	"GreenPay/internal/core/ports"
	"context"

	"github.com/rs/zerolog"
)

func init() {
	bot.RegisterCommand(NewStartHandler)
}

// startHandler is the plugin for the /start command.
type startHandler struct {
	log       zerolog.Logger
	bot       ports.BotClientPort
	webAppURL string
}

// NewStartHandler creates a new handler for the /start command.
func NewStartHandler(deps *bot.Dependencies, baseLogger *zerolog.Logger) ports.CommandHandler {
	return &startHandler{
		log:       baseLogger.With().Str("component", "start_handler").Logger(),
		bot:       deps.Client,
		webAppURL: deps.WebAppURL,
	}
}

// Command returns the command string (without the "/")
func (h *startHandler) Command() string {
	return "start"
}

// Handle greets the user and offers the Mini App button.
func (h *startHandler) Handle(ctx context.Context, update *ports.BotUpdate) error {
	b := messages.NewBuilder(update.ChatID).WithText(textWelcome).WithParseMode("")
	if h.webAppURL != "" {
		b = b.WithWebAppButton(labelPlantButton, h.webAppURL)
	} else {
		h.log.Warn().Msg("WEBAPP_URL is not set; sending welcome without keyboard")
	}

	_, err := h.bot.SendMessage(ctx, b.Build())
	return err
}
