package services

import (
	"GreenPay/internal/core/domain"
	"GreenPay/internal/core/ports"
	"context"
	"sort"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"
)

// --- Mocks ---

// MockSubmissionRepository
type MockSubmissionRepository struct {
	mock.Mock
}

func (m *MockSubmissionRepository) Create(ctx context.Context, sub domain.NewSubmission) (*domain.Submission, error) {
	args := m.Called(ctx, sub)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Submission), args.Error(1)
}
func (m *MockSubmissionRepository) GetByID(ctx context.Context, id int64) (*domain.Submission, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Submission), args.Error(1)
}
func (m *MockSubmissionRepository) SetStatus(ctx context.Context, id int64, status domain.SubmissionStatus) (*domain.Submission, error) {
	args := m.Called(ctx, id, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Submission), args.Error(1)
}
func (m *MockSubmissionRepository) ListByStatus(ctx context.Context, status domain.SubmissionStatus, limit int) ([]*domain.Submission, error) {
	args := m.Called(ctx, status, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Submission), args.Error(1)
}
func (m *MockSubmissionRepository) ListBySubmitter(ctx context.Context, submitterID int64, limit int) ([]*domain.Submission, error) {
	args := m.Called(ctx, submitterID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Submission), args.Error(1)
}

// MockGateway
type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) RequestReview(ctx context.Context, event domain.ReviewRequested) (domain.MessageRef, error) {
	args := m.Called(ctx, event)
	return args.Get(0).(domain.MessageRef), args.Error(1)
}
func (m *MockGateway) Acknowledge(ctx context.Context, event domain.SubmissionAcknowledged) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}
func (m *MockGateway) RejectSubmission(ctx context.Context, event domain.SubmissionRejected) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}
func (m *MockGateway) NotifyDecision(ctx context.Context, event domain.DecisionNotification) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}
func (m *MockGateway) UpdateReviewCard(ctx context.Context, event domain.ReviewCardUpdate) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

// recordingBus captures published events synchronously.
type recordingBus struct {
	mu     sync.Mutex
	topics []string
}

var _ ports.EventBus = (*recordingBus)(nil)

func (b *recordingBus) Publish(ctx context.Context, topic string, data interface{}) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.topics = append(b.topics, topic)
	return nil
}
func (b *recordingBus) Subscribe(topic string, handler ports.EventHandler) {}

func (b *recordingBus) count(topic string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, t := range b.topics {
		if t == topic {
			n++
		}
	}
	return n
}

// --- In-memory store ---

// memoryRepository is a mutex-guarded store with the same compare-and-set
// contract as the Postgres repository.
type memoryRepository struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]domain.Submission
}

var _ ports.SubmissionRepository = (*memoryRepository)(nil)

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{rows: make(map[int64]domain.Submission)}
}

func (r *memoryRepository) Create(ctx context.Context, sub domain.NewSubmission) (*domain.Submission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	row := domain.Submission{
		ID:            r.nextID,
		SubmitterID:   sub.SubmitterID,
		SubmitterName: sub.SubmitterName,
		Species:       sub.Species,
		Latitude:      sub.Latitude,
		Longitude:     sub.Longitude,
		Status:        domain.StatusPending,
		CreatedAt:     time.Now(),
	}
	r.rows[row.ID] = row
	return &row, nil
}

func (r *memoryRepository) GetByID(ctx context.Context, id int64) (*domain.Submission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &row, nil
}

func (r *memoryRepository) SetStatus(ctx context.Context, id int64, status domain.SubmissionStatus) (*domain.Submission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if row.Status != domain.StatusPending || !status.IsTerminal() {
		return nil, domain.ErrInvalidTransition
	}
	now := time.Now()
	row.Status = status
	row.DecidedAt = &now
	r.rows[id] = row
	return &row, nil
}

func (r *memoryRepository) ListByStatus(ctx context.Context, status domain.SubmissionStatus, limit int) ([]*domain.Submission, error) {
	return r.list(limit, func(s domain.Submission) bool { return s.Status == status }, false), nil
}

func (r *memoryRepository) ListBySubmitter(ctx context.Context, submitterID int64, limit int) ([]*domain.Submission, error) {
	return r.list(limit, func(s domain.Submission) bool { return s.SubmitterID == submitterID }, true), nil
}

func (r *memoryRepository) list(limit int, keep func(domain.Submission) bool, newestFirst bool) []*domain.Submission {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Submission
	for _, row := range r.rows {
		if keep(row) {
			row := row
			out = append(out, &row)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if newestFirst {
			return out[i].ID > out[j].ID
		}
		return out[i].ID < out[j].ID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// countingGateway records every outbound event.
type countingGateway struct {
	mu            sync.Mutex
	reviews       []domain.ReviewRequested
	acks          []domain.SubmissionAcknowledged
	rejections    []domain.SubmissionRejected
	notifications []domain.DecisionNotification
	cardUpdates   []domain.ReviewCardUpdate
}

var _ ports.NotificationGateway = (*countingGateway)(nil)

func (g *countingGateway) RequestReview(ctx context.Context, event domain.ReviewRequested) (domain.MessageRef, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.reviews = append(g.reviews, event)
	return domain.MessageRef{ChatID: event.ReviewerChatID, MessageID: len(g.reviews), Caption: event.Caption}, nil
}
func (g *countingGateway) Acknowledge(ctx context.Context, event domain.SubmissionAcknowledged) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.acks = append(g.acks, event)
	return nil
}
func (g *countingGateway) RejectSubmission(ctx context.Context, event domain.SubmissionRejected) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.rejections = append(g.rejections, event)
	return nil
}
func (g *countingGateway) NotifyDecision(ctx context.Context, event domain.DecisionNotification) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.notifications = append(g.notifications, event)
	return nil
}
func (g *countingGateway) UpdateReviewCard(ctx context.Context, event domain.ReviewCardUpdate) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.cardUpdates = append(g.cardUpdates, event)
	return nil
}
