package services

import (
	"GreenPay/internal/core/domain"
	"GreenPay/internal/core/photo"
	"GreenPay/internal/core/ports"
	"context"
	"errors"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"
)

// MaxSpeciesLength bounds the free-text species label, in runes.
const MaxSpeciesLength = 128

const (
	defaultListLimit = 10
	maxListLimit     = 50
)

type submissionService struct {
	repo           ports.SubmissionRepository
	gateway        ports.NotificationGateway
	bus            ports.EventBus
	reviewerChatID int64
	log            zerolog.Logger
}

var _ ports.SubmissionService = (*submissionService)(nil)

// NewSubmissionService creates the intake service. Review cards are sent to
// reviewerChatID.
func NewSubmissionService(
	repo ports.SubmissionRepository,
	gateway ports.NotificationGateway,
	bus ports.EventBus,
	reviewerChatID int64,
	baseLogger *zerolog.Logger,
) ports.SubmissionService {
	return &submissionService{
		repo:           repo,
		gateway:        gateway,
		bus:            bus,
		reviewerChatID: reviewerChatID,
		log:            baseLogger.With().Str("component", "submission_service").Logger(),
	}
}

// SubmitPayload parses the Mini App JSON and hands it to Submit. A payload
// that does not parse is rejected the same way as an invalid field.
func (s *submissionService) SubmitPayload(ctx context.Context, submitter domain.Submitter, raw []byte) (*domain.Submission, error) {
	event, err := ParseSubmissionPayload(submitter, raw)
	if err != nil {
		s.log.Warn().Err(err).Int64("submitter_id", submitter.ID).Msg("Unparseable web app payload")
		s.rejectSubmission(ctx, submitter.ID, err)
		return nil, err
	}
	return s.Submit(ctx, event)
}

func (s *submissionService) Submit(ctx context.Context, event domain.SubmissionEvent) (*domain.Submission, error) {
	log := s.log.With().Int64("submitter_id", event.Submitter.ID).Logger()

	// 1. Validate and decode. Nothing below runs for invalid input.
	newSub, img, err := s.validate(event)
	if err != nil {
		log.Info().Err(err).Msg("Submission failed validation")
		s.rejectSubmission(ctx, event.Submitter.ID, err)
		return nil, err
	}

	// 2. Persist
	sub, err := s.repo.Create(ctx, newSub)
	if err != nil {
		log.Error().Err(err).Msg("Failed to persist submission")
		return nil, err
	}
	log = log.With().Int64("submission_id", sub.ID).Logger()

	// 3. Review card for the reviewer
	_, err = s.gateway.RequestReview(ctx, domain.ReviewRequested{
		ReviewerChatID: s.reviewerChatID,
		SubmissionID:   sub.ID,
		Photo:          img,
		Caption:        reviewCaption(sub),
		Actions: []domain.Action{
			{Label: labelApprove, Token: domain.ActionToken(domain.DecisionApprove, sub.ID)},
			{Label: labelReject, Token: domain.ActionToken(domain.DecisionReject, sub.ID)},
		},
	})
	if err != nil {
		log.Error().Err(err).Msg("Failed to send review card")
		s.notificationFailed(ctx, "review_request", sub.ID, err)
	}

	// 4. Acknowledge the submitter
	err = s.gateway.Acknowledge(ctx, domain.SubmissionAcknowledged{
		SubmitterID:  sub.SubmitterID,
		SubmissionID: sub.ID,
		Text:         textAcknowledged,
	})
	if err != nil {
		log.Error().Err(err).Msg("Failed to acknowledge submission")
		s.notificationFailed(ctx, "acknowledgement", sub.ID, err)
	}

	s.publish(ctx, domain.TopicSubmissionCreated, *sub)
	log.Info().Str("species", sub.Species).Msg("Submission accepted")
	return sub, nil
}

func (s *submissionService) History(ctx context.Context, submitterID int64, limit int) ([]*domain.Submission, error) {
	if submitterID == 0 {
		return nil, domain.NewValidationError(domain.FieldSubmitter, "missing", nil)
	}
	return s.repo.ListBySubmitter(ctx, submitterID, clampLimit(limit))
}

// validate returns the row to insert and the decoded photo.
func (s *submissionService) validate(event domain.SubmissionEvent) (domain.NewSubmission, []byte, error) {
	if event.Submitter.ID == 0 {
		return domain.NewSubmission{}, nil, domain.NewValidationError(domain.FieldSubmitter, "missing", nil)
	}

	species := strings.TrimSpace(event.Species)
	if species == "" {
		return domain.NewSubmission{}, nil, domain.NewValidationError(domain.FieldSpecies, "empty", nil)
	}
	if utf8.RuneCountInString(species) > MaxSpeciesLength {
		return domain.NewSubmission{}, nil, domain.NewValidationError(domain.FieldSpecies, "too long", nil)
	}

	if !inRange(event.Latitude, 90) {
		return domain.NewSubmission{}, nil, domain.NewValidationError(domain.FieldLatitude, "out of range [-90, 90]", nil)
	}
	if !inRange(event.Longitude, 180) {
		return domain.NewSubmission{}, nil, domain.NewValidationError(domain.FieldLongitude, "out of range [-180, 180]", nil)
	}

	img, err := photo.Decode(event.PhotoPayload, photo.DataURLMarker)
	if err != nil {
		return domain.NewSubmission{}, nil, domain.NewValidationError(domain.FieldPhoto, "not decodable", err)
	}

	return domain.NewSubmission{
		SubmitterID:   event.Submitter.ID,
		SubmitterName: strings.TrimSpace(event.Submitter.FullName),
		Species:       species,
		Latitude:      event.Latitude,
		Longitude:     event.Longitude,
	}, img, nil
}

func (s *submissionService) rejectSubmission(ctx context.Context, submitterID int64, cause error) {
	field := domain.FieldPayload
	if ve, ok := domain.AsValidationError(cause); ok {
		field = ve.Field
	}

	event := domain.SubmissionRejected{
		SubmitterID: submitterID,
		Field:       field,
		Text:        rejectionText(field),
	}
	s.publish(ctx, domain.TopicSubmissionRejected, event)

	if submitterID == 0 {
		return
	}
	if err := s.gateway.RejectSubmission(ctx, event); err != nil {
		s.log.Error().Err(err).Int64("submitter_id", submitterID).Msg("Failed to send rejection")
		s.notificationFailed(ctx, "rejection", 0, err)
	}
}

func (s *submissionService) notificationFailed(ctx context.Context, kind string, submissionID int64, err error) {
	s.publish(ctx, domain.TopicNotificationFailed, domain.NotificationFailure{
		Kind:         kind,
		SubmissionID: submissionID,
		Err:          err,
	})
}

func (s *submissionService) publish(ctx context.Context, topic string, data interface{}) {
	if s.bus == nil {
		return
	}
	if err := s.bus.Publish(ctx, topic, data); err != nil && !errors.Is(err, context.Canceled) {
		s.log.Warn().Err(err).Str("topic", topic).Msg("Failed to publish domain event")
	}
}

func inRange(v, limit float64) bool {
	return !math.IsNaN(v) && v >= -limit && v <= limit
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultListLimit
	}
	if limit > maxListLimit {
		return maxListLimit
	}
	return limit
}
