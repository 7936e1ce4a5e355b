package bot

import (
	"GreenPay/internal/adapters/telegram"
	"GreenPay/internal/bot/messages"
	"GreenPay/internal/core/ports"
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

const textStartHint = "Boshlash uchun /start buyrug'ini yuboring."

// Router is the "Bot Facade." It holds all "plugins"
// and routes incoming updates to the correct handler.
type Router struct {
	log              zerolog.Logger
	botClient        ports.BotClientPort
	commandHandlers  map[string]ports.CommandHandler
	callbackHandlers map[string]ports.CallbackHandler
	messageHandlers  []ports.MessageHandler
}

// NewRouter creates a new bot facade/router.
func NewRouter(botClient ports.BotClientPort, baseLogger *zerolog.Logger) *Router {
	return &Router{
		log:              baseLogger.With().Str("component", "bot_router").Logger(),
		botClient:        botClient,
		commandHandlers:  make(map[string]ports.CommandHandler),
		callbackHandlers: make(map[string]ports.CallbackHandler),
	}
}

// RegisterCommandHandler adds a "plugin" to the router.
func (r *Router) RegisterCommandHandler(handler ports.CommandHandler) {
	cmd := handler.Command()
	r.commandHandlers[cmd] = handler
	r.log.Info().Str("command", cmd).Msg("Registered new command handler")
}

// RegisterCallbackHandler adds a "plugin" to the router.
func (r *Router) RegisterCallbackHandler(handler ports.CallbackHandler) {
	prefix := handler.Prefix()
	r.callbackHandlers[prefix] = handler
	r.log.Info().Str("prefix", prefix).Msg("Registered new callback handler")
}

// RegisterMessageHandler appends a handler for non-command messages.
func (r *Router) RegisterMessageHandler(handler ports.MessageHandler) {
	r.messageHandlers = append(r.messageHandlers, handler)
	r.log.Info().Str("handler", handler.Name()).Msg("Registered new message handler")
}

// Subscribe attaches the router to the update topics the server publishes.
func (r *Router) Subscribe(bus ports.EventBus) {
	bus.Subscribe(telegram.TopicMessage, r.handleEvent)
	bus.Subscribe(telegram.TopicCallbackQuery, r.handleEvent)
}

func (r *Router) handleEvent(ctx context.Context, event ports.Event) error {
	update, ok := event.Data.(telegram.Update)
	if !ok {
		return fmt.Errorf("unexpected payload %T on %s", event.Data, event.Topic)
	}
	r.HandleUpdate(ctx, update)
	return nil
}

// HandleUpdate is the main entry point for a new update from Telegram.
func (r *Router) HandleUpdate(ctx context.Context, update telegram.Update) {
	// 1. Convert to our generic BotUpdate
	botUpdate, isSupported := parseUpdate(update)
	if !isSupported {
		r.log.Warn().Int("update_id", update.UpdateID).Msg("Received unsupported update type")
		return
	}

	// 2. Add logger context
	ctxLogger := r.log.With().
		Int("update_id", update.UpdateID).
		Int64("user_id", botUpdate.UserID).
		Int64("chat_id", botUpdate.ChatID).
		Logger()
	ctx = ctxLogger.WithContext(ctx)

	// 3. Route commands first
	if botUpdate.Command != "" {
		if handler, ok := r.commandHandlers[botUpdate.Command]; ok {
			ctxLogger.Info().Str("handler", botUpdate.Command).Msg("Routing to command handler")
			if err := handler.Handle(ctx, botUpdate); err != nil {
				ctxLogger.Error().Err(err).Msg("Command handler failed")
			}
			return
		}
	}

	// 4. Route callbacks next
	if botUpdate.CallbackData != nil {
		for prefix, handler := range r.callbackHandlers {
			if strings.HasPrefix(*botUpdate.CallbackData, prefix) {
				ctxLogger.Info().Str("handler", prefix).Str("data", *botUpdate.CallbackData).Msg("Routing to callback handler")
				if err := handler.Handle(ctx, botUpdate); err != nil {
					ctxLogger.Error().Err(err).Msg("Callback handler failed")
				}
				return
			}
		}
		ctxLogger.Warn().Str("data", *botUpdate.CallbackData).Msg("No callback handler found")
		if err := r.botClient.AnswerCallbackQuery(ctx, ports.AnswerCallbackParams{
			CallbackQueryID: botUpdate.CallbackQueryID,
		}); err != nil {
			ctxLogger.Warn().Err(err).Msg("Failed to answer unknown callback")
		}
		return
	}

	// 5. Everything else goes to the message handlers
	for _, handler := range r.messageHandlers {
		if !handler.CanHandle(botUpdate) {
			continue
		}
		ctxLogger.Info().Str("handler", handler.Name()).Msg("Routing to message handler")
		if err := handler.Handle(ctx, botUpdate); err != nil {
			ctxLogger.Error().Err(err).Msg("Message handler failed")
		}
		return
	}

	// If we're here, it's an unhandled message
	ctxLogger.Info().Str("text", botUpdate.Text).Msg("Received unhandled message")
	msg := messages.NewBuilder(botUpdate.ChatID).WithText(textStartHint).WithParseMode("").Build()
	if _, err := r.botClient.SendMessage(ctx, msg); err != nil {
		ctxLogger.Error().Err(err).Msg("Failed to send start hint")
	}
}

// parseUpdate converts a telegram.Update into our internal, simplified struct.
func parseUpdate(update telegram.Update) (*ports.BotUpdate, bool) {
	if cb := update.CallbackQuery; cb != nil {
		if cb.From == nil || cb.Message == nil || cb.Message.Chat == nil {
			return nil, false
		}
		data := cb.Data
		return &ports.BotUpdate{
			MessageID:       cb.Message.MessageID,
			ChatID:          cb.Message.Chat.ID,
			UserID:          cb.From.ID,
			UserFullName:    fullName(cb.From.FirstName, cb.From.LastName),
			CallbackQueryID: cb.ID,
			CallbackData:    &data,
			MessageCaption:  cb.Message.Caption,
		}, true
	}

	if msg := update.Message; msg != nil {
		if msg.From == nil || msg.Chat == nil {
			return nil, false
		}
		botUpdate := &ports.BotUpdate{
			MessageID:    msg.MessageID,
			ChatID:       msg.Chat.ID,
			UserID:       msg.From.ID,
			UserFullName: fullName(msg.From.FirstName, msg.From.LastName),
			Text:         msg.Text,
			Command:      msg.Command(),
		}
		if update.WebAppData != nil {
			data := update.WebAppData.Data
			botUpdate.WebAppData = &data
		}
		return botUpdate, true
	}

	return nil, false // Unsupported update
}

func fullName(first, last string) string {
	return strings.TrimSpace(first + " " + last)
}
