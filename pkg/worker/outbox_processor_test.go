package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eduboard/notice-api/internal/model"
	"github.com/eduboard/notice-api/pkg/logger"
	"github.com/eduboard/notice-api/pkg/messaging"
	"github.com/eduboard/notice-api/pkg/metrics"
)

// Registered once; promauto panics on duplicate registration.
var testMetrics = metrics.NewMetrics("notice", "workertest")

type fakeOutboxRepo struct {
	pending   []*model.OutboxEvent
	processed []uuid.UUID
	failed    map[uuid.UUID]string
}

func (r *fakeOutboxRepo) Create(_ context.Context, event *model.OutboxEvent) error {
	r.pending = append(r.pending, event)
	return nil
}

func (r *fakeOutboxRepo) GetPendingEvents(_ context.Context, limit int) ([]*model.OutboxEvent, error) {
	if len(r.pending) > limit {
		return r.pending[:limit], nil
	}
	return r.pending, nil
}

func (r *fakeOutboxRepo) MarkProcessed(_ context.Context, id uuid.UUID) error {
	r.processed = append(r.processed, id)
	return nil
}

func (r *fakeOutboxRepo) MarkFailed(_ context.Context, id uuid.UUID, errMsg string) error {
	if r.failed == nil {
		r.failed = make(map[uuid.UUID]string)
	}
	r.failed[id] = errMsg
	return nil
}

type fakeBroker struct {
	published []messaging.Envelope
	channels  []string
	failures  int
}

func (b *fakeBroker) Publish(_ context.Context, channel string, message interface{}) error {
	if b.failures > 0 {
		b.failures--
		return errors.New("broker unavailable")
	}
	b.published = append(b.published, message.(messaging.Envelope))
	b.channels = append(b.channels, channel)
	return nil
}

func (b *fakeBroker) Subscribe(_ context.Context, _ string) (<-chan []byte, error) {
	return nil, nil
}

func (b *fakeBroker) Close() error { return nil }

func newProcessor(repo *fakeOutboxRepo, broker *fakeBroker) *OutboxProcessor {
	return NewOutboxProcessor(repo, broker, OutboxProcessorConfig{
		Channel:       "notifications.events",
		BatchSize:     10,
		PollInterval:  time.Second,
		RetryAttempts: 3,
		RetryDelay:    time.Millisecond,
	}, logger.NewLogger(nil), testMetrics)
}

func pendingEvent(eventType string) *model.OutboxEvent {
	return &model.OutboxEvent{
		ID:        uuid.New(),
		EventType: eventType,
		Payload:   []byte(`{"id":"x"}`),
		Status:    model.OutboxStatusPending,
		CreatedAt: time.Now(),
	}
}

func TestProcessEventsPublishesAndMarks(t *testing.T) {
	repo := &fakeOutboxRepo{pending: []*model.OutboxEvent{
		pendingEvent(model.EventNotificationCreated),
		pendingEvent(model.EventNotificationArchived),
	}}
	broker := &fakeBroker{}
	p := newProcessor(repo, broker)

	require.NoError(t, p.processEvents(context.Background()))

	require.Len(t, broker.published, 2)
	assert.Equal(t, model.EventNotificationCreated, broker.published[0].Type)
	assert.Equal(t, "notifications.events", broker.channels[0])
	assert.Len(t, repo.processed, 2)
	assert.Empty(t, repo.failed)
}

func TestProcessEventsRetriesTransientFailures(t *testing.T) {
	repo := &fakeOutboxRepo{pending: []*model.OutboxEvent{
		pendingEvent(model.EventNotificationUpdated),
	}}
	broker := &fakeBroker{failures: 2}
	p := newProcessor(repo, broker)

	require.NoError(t, p.processEvents(context.Background()))

	assert.Len(t, broker.published, 1, "third attempt succeeds")
	assert.Len(t, repo.processed, 1)
	assert.Empty(t, repo.failed)
}

func TestProcessEventsMarksFailedAfterRetries(t *testing.T) {
	event := pendingEvent(model.EventNotificationDeleted)
	repo := &fakeOutboxRepo{pending: []*model.OutboxEvent{event}}
	broker := &fakeBroker{failures: 100}
	p := newProcessor(repo, broker)

	require.NoError(t, p.processEvents(context.Background()), "a failed event does not abort the batch")

	assert.Empty(t, repo.processed)
	require.Contains(t, repo.failed, event.ID)
	assert.Equal(t, "broker unavailable", repo.failed[event.ID])
}
