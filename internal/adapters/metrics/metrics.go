// Package metrics turns domain events from the bus into Prometheus series.
package metrics

import (
	"GreenPay/internal/core/domain"
	"GreenPay/internal/core/ports"
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

// Metrics provides observability for the moderation workflow.
type Metrics struct {
	// Accepted submissions
	SubmissionsCreated prometheus.Counter

	// Rejected submissions by offending field
	SubmissionsRejected *prometheus.CounterVec

	// Terminal transitions by resulting status
	Decisions *prometheus.CounterVec

	// Decisions that lost the race or repeated a click
	DecisionConflicts prometheus.Counter

	// Failed best-effort gateway calls by kind
	NotificationFailures *prometheus.CounterVec

	log zerolog.Logger
}

// New registers the workflow metrics with reg.
func New(reg prometheus.Registerer, baseLogger *zerolog.Logger) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		SubmissionsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "greenpay_submissions_created_total",
			Help: "Total tree submissions accepted into the review queue",
		}),
		SubmissionsRejected: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "greenpay_submissions_rejected_total",
			Help: "Total tree submissions rejected by validation, by field",
		}, []string{"field"}),
		Decisions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "greenpay_decisions_total",
			Help: "Total reviewer decisions applied, by resulting status",
		}, []string{"status"}),
		DecisionConflicts: factory.NewCounter(prometheus.CounterOpts{
			Name: "greenpay_decision_conflicts_total",
			Help: "Total decisions on submissions that were already decided",
		}),
		NotificationFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "greenpay_notification_failures_total",
			Help: "Total failed Telegram notifications, by kind",
		}, []string{"kind"}),
		log: baseLogger.With().Str("component", "metrics").Logger(),
	}
}

// Subscribe wires the recorder to the domain topics on bus.
func (m *Metrics) Subscribe(bus ports.EventBus) {
	bus.Subscribe(domain.TopicSubmissionCreated, m.handle)
	bus.Subscribe(domain.TopicSubmissionRejected, m.handle)
	bus.Subscribe(domain.TopicSubmissionDecided, m.handle)
	bus.Subscribe(domain.TopicDecisionConflict, m.handle)
	bus.Subscribe(domain.TopicNotificationFailed, m.handle)
}

func (m *Metrics) handle(ctx context.Context, event ports.Event) error {
	switch data := event.Data.(type) {
	case domain.SubmissionRejected:
		m.SubmissionsRejected.WithLabelValues(data.Field).Inc()
	case domain.NotificationFailure:
		m.NotificationFailures.WithLabelValues(data.Kind).Inc()
	case domain.DecisionEvent:
		m.DecisionConflicts.Inc()
	case domain.Submission:
		switch event.Topic {
		case domain.TopicSubmissionCreated:
			m.SubmissionsCreated.Inc()
		case domain.TopicSubmissionDecided:
			m.Decisions.WithLabelValues(string(data.Status)).Inc()
		}
	default:
		m.log.Warn().Str("topic", event.Topic).Msgf("Unexpected event payload %T", event.Data)
	}
	return nil
}
