package bot

import (
	"GreenPay/internal/adapters/telegram"
	"GreenPay/internal/core/ports"
	"GreenPay/internal/core/services"
	"GreenPay/internal/shared/config"
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

// DrainableBus is an event bus that can wait for in-flight handlers.
type DrainableBus interface {
	ports.EventBus
	Wait()
}

// Orchestrator wires the Telegram bot to the core services and runs it.
type Orchestrator struct {
	cfg        *config.Config
	repo       ports.SubmissionRepository
	bus        DrainableBus
	baseLogger *zerolog.Logger
}

// NewOrchestrator creates a new bot orchestrator.
func NewOrchestrator(
	cfg *config.Config,
	repo ports.SubmissionRepository,
	bus DrainableBus,
	baseLogger *zerolog.Logger,
) *Orchestrator {
	return &Orchestrator{
		cfg:        cfg,
		repo:       repo,
		bus:        bus,
		baseLogger: baseLogger,
	}
}

// Start runs the bot until ctx is cancelled, then drains the bus.
func (o *Orchestrator) Start(ctx context.Context) error {
	log := o.baseLogger.With().Str("bot", "greenpay").Logger()

	// 1. Create API
	api, err := tgbotapi.NewBotAPI(o.cfg.Bot.Token)
	if err != nil {
		return fmt.Errorf("connect bot api: %w", err)
	}
	api.Debug = o.cfg.IsDev()
	log.Info().Str("username", api.Self.UserName).Msg("Bot API connected")

	// 2. Create Client and Gateway (Adapters)
	client := telegram.NewClient(api, &log)
	gateway := telegram.NewNotificationGateway(client, &log)

	// 3. Core services
	submissions := services.NewSubmissionService(o.repo, gateway, o.bus, o.cfg.ReviewerChatID, &log)
	moderation := services.NewModerationService(o.repo, gateway, o.bus, o.cfg.ReviewerChatID, &log)

	// 4. Router and Handlers
	router := NewRouter(client, &log)
	RegisterAllHandlers(router, &Dependencies{
		Client:      client,
		Submissions: submissions,
		Moderation:  moderation,
		ReviewerID:  o.cfg.ReviewerChatID,
		WebAppURL:   o.cfg.Bot.WebAppURL,
	}, &log)
	router.Subscribe(o.bus)

	// 5. Set Menus
	if err := client.SetMenuCommands(ctx, 0, false); err != nil {
		log.Warn().Err(err).Msg("Failed to set default menu")
	}
	if err := client.SetMenuCommands(ctx, o.cfg.ReviewerChatID, true); err != nil {
		log.Warn().Err(err).Msg("Failed to set reviewer menu")
	}

	// 6. Create and Start Server
	server := telegram.NewBotServer(api, &o.cfg.Bot, o.bus, &log)
	err = server.Start(ctx)

	log.Info().Msg("Waiting for in-flight handlers")
	o.bus.Wait()
	return err
}
