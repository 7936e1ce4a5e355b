package telegram

import (
	"GreenPay/internal/core/ports"
	"GreenPay/internal/shared/config"
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

const (
	pollRetryDelay = 3 * time.Second
	maxUpdateBody  = 16 << 20 // web_app_data photos are large
)

// BotServer receives updates (polling or webhook) and publishes them to the
// event bus. It does no routing itself.
type BotServer struct {
	api *tgbotapi.BotAPI
	cfg *config.BotConfig
	bus ports.EventBus
	log zerolog.Logger
}

// NewBotServer creates a new server instance
func NewBotServer(
	api *tgbotapi.BotAPI,
	cfg *config.BotConfig,
	bus ports.EventBus,
	baseLogger *zerolog.Logger,
) *BotServer {
	return &BotServer{
		api: api,
		cfg: cfg,
		bus: bus,
		log: baseLogger.With().Str("component", "bot_server").Logger(),
	}
}

// Start runs until ctx is cancelled.
func (s *BotServer) Start(ctx context.Context) error {
	s.log.Info().Str("mode", s.cfg.Mode).Msg("Starting bot server...")

	switch s.cfg.Mode {
	case config.ModePolling:
		return s.startPolling(ctx)
	case config.ModeWebhook:
		return s.startWebhook(ctx)
	default:
		return fmt.Errorf("unknown bot mode: %s", s.cfg.Mode)
	}
}

// startPolling long-polls getUpdates directly so the raw JSON, including
// web_app_data, reaches DecodeUpdates.
func (s *BotServer) startPolling(ctx context.Context) error {
	s.log.Info().Int("timeout", s.cfg.PollingTimeout).Msg("Starting bot in POLLING mode")

	// 1. Clear any existing webhook
	if _, err := s.api.Request(tgbotapi.DeleteWebhookConfig{DropPendingUpdates: false}); err != nil {
		s.log.Warn().Err(err).Msg("Failed to delete webhook (continuing anyway)")
	} else {
		s.log.Info().Msg("Webhook deleted successfully")
	}

	type batch struct {
		updates []Update
		err     error
	}

	// 2. Main loop: poll and publish
	offset := 0
	for {
		results := make(chan batch, 1)
		go func(offset int) {
			updates, err := s.fetchUpdates(offset)
			results <- batch{updates, err}
		}(offset)

		var b batch
		select {
		case <-ctx.Done():
			s.log.Info().Msg("Polling stopped gracefully")
			return nil
		case b = <-results:
		}

		if b.err != nil {
			s.log.Error().Err(b.err).Msg("Failed to get updates, retrying")
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(pollRetryDelay):
			}
			continue
		}

		for _, u := range b.updates {
			if u.UpdateID >= offset {
				offset = u.UpdateID + 1
			}
			s.publishUpdateToBus(ctx, u)
		}
	}
}

func (s *BotServer) fetchUpdates(offset int) ([]Update, error) {
	params := tgbotapi.Params{}
	params.AddNonZero("offset", offset)
	params.AddNonZero("timeout", s.cfg.PollingTimeout)
	if err := params.AddInterface("allowed_updates", AllowedUpdates); err != nil {
		return nil, err
	}

	resp, err := s.api.MakeRequest("getUpdates", params)
	if err != nil {
		return nil, err
	}

	updates, errs := DecodeUpdates(resp.Result)
	for _, err := range errs {
		s.log.Warn().Err(err).Msg("Skipping undecodable update")
	}
	return updates, nil
}

// startWebhook registers the webhook and serves it on 127.0.0.1; TLS is
// terminated by the reverse proxy in front.
func (s *BotServer) startWebhook(ctx context.Context) error {
	s.log.Info().Int("port", s.cfg.WebhookListenPort).Msg("Starting bot in WEBHOOK mode")

	// 1. Set the webhook
	webhookURL := fmt.Sprintf("%s/webhook/%s", s.cfg.WebhookURL, s.api.Token)
	wh, err := tgbotapi.NewWebhook(webhookURL)
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to create webhook config")
		return err
	}
	wh.AllowedUpdates = AllowedUpdates
	if _, err = s.api.Request(wh); err != nil {
		s.log.Error().Err(err).Msg("Failed to set webhook")
		return err
	}

	info, err := s.api.GetWebhookInfo()
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to get webhook info")
		return err
	}
	if info.LastErrorDate != 0 {
		s.log.Error().Str("error_message", info.LastErrorMessage).Msg("Telegram webhook has a last error")
	} else {
		s.log.Info().Msg("Webhook set successfully, no last error")
	}

	// 2. Start HTTP server
	listenAddr := fmt.Sprintf("127.0.0.1:%d", s.cfg.WebhookListenPort)
	httpServer := &http.Server{
		Addr:              listenAddr,
		Handler:           s.WebhookHandler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", listenAddr).Msg("Starting HTTP server for webhook")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// 3. Wait for shutdown
	select {
	case err := <-errCh:
		if err != nil {
			s.log.Error().Err(err).Msg("Webhook HTTP server failed")
			return err
		}
		return nil
	case <-ctx.Done():
	}

	s.log.Info().Msg("Shutting down HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		s.log.Error().Err(err).Msg("HTTP server shutdown error")
	}
	s.log.Info().Msg("Webhook server stopped gracefully")
	return nil
}

// WebhookHandler serves POST /webhook/{token}.
func (s *BotServer) WebhookHandler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Post("/webhook/{token}", func(w http.ResponseWriter, req *http.Request) {
		token := chi.URLParam(req, "token")
		if subtle.ConstantTimeCompare([]byte(token), []byte(s.api.Token)) != 1 {
			http.NotFound(w, req)
			return
		}

		body, err := io.ReadAll(io.LimitReader(req.Body, maxUpdateBody))
		if err != nil {
			http.Error(w, "read error", http.StatusBadRequest)
			return
		}
		update, err := DecodeUpdate(body)
		if err != nil {
			s.log.Warn().Err(err).Msg("Received undecodable webhook update")
			// 200 so Telegram does not redeliver a payload we will never parse
			w.WriteHeader(http.StatusOK)
			return
		}

		s.publishUpdateToBus(req.Context(), update)
		w.WriteHeader(http.StatusOK)
	})
	return r
}

// publishUpdateToBus inspects the update and publishes it to the correct topic.
func (s *BotServer) publishUpdateToBus(ctx context.Context, update Update) {
	topic := Topic(update)
	if topic == "" {
		s.log.Debug().Int("update_id", update.UpdateID).Msg("Ignoring unsupported update type")
		return
	}
	if err := s.bus.Publish(ctx, topic, update); err != nil {
		s.log.Warn().Err(err).Int("update_id", update.UpdateID).Str("topic", topic).Msg("Failed to publish update")
	}
}
