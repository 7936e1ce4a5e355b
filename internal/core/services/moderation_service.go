package services

import (
	"GreenPay/internal/core/domain"
	"GreenPay/internal/core/ports"
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
)

type moderationService struct {
	repo       ports.SubmissionRepository
	gateway    ports.NotificationGateway
	bus        ports.EventBus
	reviewerID int64
	log        zerolog.Logger
}

var _ ports.ModerationService = (*moderationService)(nil)

// NewModerationService creates the decision service. Only reviewerID may
// decide or list the pending queue.
func NewModerationService(
	repo ports.SubmissionRepository,
	gateway ports.NotificationGateway,
	bus ports.EventBus,
	reviewerID int64,
	baseLogger *zerolog.Logger,
) ports.ModerationService {
	return &moderationService{
		repo:       repo,
		gateway:    gateway,
		bus:        bus,
		reviewerID: reviewerID,
		log:        baseLogger.With().Str("component", "moderation_service").Logger(),
	}
}

// Decide applies one reviewer decision. The status change is the source of
// truth: notification failures are logged and never undo it.
func (s *moderationService) Decide(ctx context.Context, event domain.DecisionEvent) (*domain.Submission, error) {
	log := s.log.With().
		Int64("submission_id", event.SubmissionID).
		Str("decision", string(event.Decision)).
		Logger()

	if event.ReviewerID != s.reviewerID {
		log.Warn().Int64("actor_id", event.ReviewerID).Msg("Decision from non-reviewer ignored")
		return nil, domain.ErrForbidden
	}

	target, err := event.Decision.TargetStatus()
	if err != nil {
		return nil, domain.NewValidationError("decision", "unknown", err)
	}

	// 1. Lookup
	if _, err := s.repo.GetByID(ctx, event.SubmissionID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			log.Info().Msg("Decision for unknown submission")
		} else {
			log.Error().Err(err).Msg("Failed to load submission")
		}
		return nil, err
	}

	// 2. Atomic transition. Only one concurrent caller gets past here.
	sub, err := s.repo.SetStatus(ctx, event.SubmissionID, target)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidTransition) {
			log.Info().Msg("Submission already decided")
			s.publish(ctx, domain.TopicDecisionConflict, event)
		} else {
			log.Error().Err(err).Msg("Failed to set submission status")
		}
		return nil, err
	}

	// 3. Notify the submitter
	err = s.gateway.NotifyDecision(ctx, domain.DecisionNotification{
		SubmitterID:  sub.SubmitterID,
		SubmissionID: sub.ID,
		Decision:     event.Decision,
		Text:         decisionText(event.Decision),
	})
	if err != nil {
		log.Error().Err(err).Int64("submitter_id", sub.SubmitterID).Msg("Failed to notify submitter")
		s.notificationFailed(ctx, "decision", sub.ID, err)
	}

	// 4. Mark the reviewer's card
	card := event.Card
	if card.Caption == "" {
		card.Caption = reviewCaption(sub)
	}
	err = s.gateway.UpdateReviewCard(ctx, domain.ReviewCardUpdate{
		Card:         card,
		AppendedText: decisionMarker(event.Decision),
	})
	if err != nil {
		log.Error().Err(err).Msg("Failed to update review card")
		s.notificationFailed(ctx, "review_card", sub.ID, err)
	}

	s.publish(ctx, domain.TopicSubmissionDecided, *sub)
	log.Info().Msg("Submission decided")
	return sub, nil
}

func (s *moderationService) Pending(ctx context.Context, reviewerID int64, limit int) ([]*domain.Submission, error) {
	if reviewerID != s.reviewerID {
		return nil, fmt.Errorf("list pending: %w", domain.ErrForbidden)
	}
	return s.repo.ListByStatus(ctx, domain.StatusPending, clampLimit(limit))
}

func (s *moderationService) notificationFailed(ctx context.Context, kind string, submissionID int64, err error) {
	s.publish(ctx, domain.TopicNotificationFailed, domain.NotificationFailure{
		Kind:         kind,
		SubmissionID: submissionID,
		Err:          err,
	})
}

func (s *moderationService) publish(ctx context.Context, topic string, data interface{}) {
	if s.bus == nil {
		return
	}
	if err := s.bus.Publish(ctx, topic, data); err != nil && !errors.Is(err, context.Canceled) {
		s.log.Warn().Err(err).Str("topic", topic).Msg("Failed to publish domain event")
	}
}
