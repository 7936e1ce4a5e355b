package telegram

import (
	"GreenPay/internal/core/domain"
	"GreenPay/internal/core/ports"
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/rs/zerolog"
)

// maxCaptionRunes is Telegram's caption limit for media messages.
const maxCaptionRunes = 1024

// notificationGateway delivers core events as Telegram messages. Captions
// are sent without a parse mode so they can be appended to verbatim.
type notificationGateway struct {
	client ports.BotClientPort
	log    zerolog.Logger
}

var _ ports.NotificationGateway = (*notificationGateway)(nil)

// NewNotificationGateway wraps a bot client.
func NewNotificationGateway(client ports.BotClientPort, baseLogger *zerolog.Logger) ports.NotificationGateway {
	return &notificationGateway{
		client: client,
		log:    baseLogger.With().Str("component", "tg_gateway").Logger(),
	}
}

func (g *notificationGateway) RequestReview(ctx context.Context, event domain.ReviewRequested) (domain.MessageRef, error) {
	row := make([]ports.Button, 0, len(event.Actions))
	for _, a := range event.Actions {
		row = append(row, ports.Button{Text: a.Label, Data: a.Token})
	}

	caption := truncateRunes(event.Caption, maxCaptionRunes)
	msgID, err := g.client.SendPhoto(ctx, ports.SendPhotoParams{
		ChatID:   event.ReviewerChatID,
		Photo:    event.Photo,
		FileName: fmt.Sprintf("submission-%d.jpg", event.SubmissionID),
		Caption:  caption,
		ReplyMarkup: &ports.ReplyMarkup{
			IsInline: true,
			Buttons:  [][]ports.Button{row},
		},
	})
	if err != nil {
		return domain.MessageRef{}, fmt.Errorf("send review card: %w", err)
	}

	g.log.Debug().Int64("submission_id", event.SubmissionID).Int("message_id", msgID).Msg("Review card sent")
	return domain.MessageRef{ChatID: event.ReviewerChatID, MessageID: msgID, Caption: caption}, nil
}

func (g *notificationGateway) Acknowledge(ctx context.Context, event domain.SubmissionAcknowledged) error {
	return g.sendText(ctx, event.SubmitterID, event.Text, "acknowledgement")
}

func (g *notificationGateway) RejectSubmission(ctx context.Context, event domain.SubmissionRejected) error {
	return g.sendText(ctx, event.SubmitterID, event.Text, "rejection")
}

func (g *notificationGateway) NotifyDecision(ctx context.Context, event domain.DecisionNotification) error {
	return g.sendText(ctx, event.SubmitterID, event.Text, "decision")
}

// UpdateReviewCard appends the marker and drops the action buttons.
func (g *notificationGateway) UpdateReviewCard(ctx context.Context, event domain.ReviewCardUpdate) error {
	if event.Card.MessageID == 0 {
		return fmt.Errorf("update review card: missing message reference")
	}

	caption := event.Card.Caption
	room := maxCaptionRunes - utf8.RuneCountInString(event.AppendedText)
	if utf8.RuneCountInString(caption) > room {
		caption = truncateRunes(caption, room)
	}

	err := g.client.EditMessageCaption(ctx, ports.EditMessageCaptionParams{
		ChatID:    event.Card.ChatID,
		MessageID: event.Card.MessageID,
		Caption:   caption + event.AppendedText,
	})
	if err != nil {
		return fmt.Errorf("update review card: %w", err)
	}
	return nil
}

func (g *notificationGateway) sendText(ctx context.Context, chatID int64, text, kind string) error {
	if _, err := g.client.SendMessage(ctx, ports.SendMessageParams{ChatID: chatID, Text: text}); err != nil {
		return fmt.Errorf("send %s: %w", kind, err)
	}
	return nil
}

func truncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n])
}
