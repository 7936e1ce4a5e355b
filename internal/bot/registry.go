package bot

import (
	"GreenPay/internal/core/ports"

	"github.com/rs/zerolog"
)

// Dependencies is everything a handler constructor may need.
type Dependencies struct {
	Client      ports.BotClientPort
	Submissions ports.SubmissionService
	Moderation  ports.ModerationService
	ReviewerID  int64
	WebAppURL   string
}

// --- Define types for handler "constructors" ---
// This allows us to pass dependencies from the orchestrator

type CommandHandlerConstructor func(deps *Dependencies, baseLogger *zerolog.Logger) ports.CommandHandler
type CallbackHandlerConstructor func(deps *Dependencies, baseLogger *zerolog.Logger) ports.CallbackHandler
type MessageHandlerConstructor func(deps *Dependencies, baseLogger *zerolog.Logger) ports.MessageHandler

// --- Create the global registries ---

var (
	commandRegistry  []CommandHandlerConstructor
	callbackRegistry []CallbackHandlerConstructor
	messageRegistry  []MessageHandlerConstructor
)

// RegisterCommand is called by handlers in their init() function
func RegisterCommand(constructor CommandHandlerConstructor) {
	commandRegistry = append(commandRegistry, constructor)
}

// RegisterCallback is called by callback handlers in their init() function
func RegisterCallback(constructor CallbackHandlerConstructor) {
	callbackRegistry = append(callbackRegistry, constructor)
}

// RegisterMessage is called by message handlers in their init() function
func RegisterMessage(constructor MessageHandlerConstructor) {
	messageRegistry = append(messageRegistry, constructor)
}

// RegisterAllHandlers builds all registered handlers and passes them to the router.
func RegisterAllHandlers(router *Router, deps *Dependencies, baseLogger *zerolog.Logger) {
	log := baseLogger.With().Str("component", "handler_registry").Logger()

	for _, constructor := range commandRegistry {
		router.RegisterCommandHandler(constructor(deps, baseLogger))
	}
	for _, constructor := range callbackRegistry {
		router.RegisterCallbackHandler(constructor(deps, baseLogger))
	}
	for _, constructor := range messageRegistry {
		router.RegisterMessageHandler(constructor(deps, baseLogger))
	}

	log.Info().
		Int("commands", len(commandRegistry)).
		Int("callbacks", len(callbackRegistry)).
		Int("messages", len(messageRegistry)).
		Msg("All handlers registered")
}
