package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	"pharmachain-service/domain/model"
	"pharmachain-service/pkg/logger"
)

type producedRecord struct {
	topic string
	key   string
	value string
}

type fakeProducer struct {
	mu         sync.Mutex
	records    []producedRecord
	produceErr error
}

func (p *fakeProducer) Produce(_ context.Context, topic string, key, value []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.produceErr != nil {
		return p.produceErr
	}
	p.records = append(p.records, producedRecord{topic: topic, key: string(key), value: string(value)})
	return nil
}

func (p *fakeProducer) recordCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.records)
}

func (p *fakeProducer) Close() error { return nil }

func (p *fakeProducer) GetClient() *kgo.Client { return nil }

func seedPending(t *testing.T, repo *fakeOutboxRepo, key string) *model.OutboxEntry {
	t.Helper()
	entry := &model.OutboxEntry{
		Topic:   "identity.sync",
		Kind:    syncKindUserCreated,
		Key:     key,
		Payload: `{"kind":"user.created"}`,
		Status:  model.OutboxPending,
	}
	require.NoError(t, repo.Enqueue(context.Background(), entry))
	return entry
}

func TestOutboxDispatcher_PublishesPendingEntries(t *testing.T) {
	repo := newFakeOutboxRepo()
	producer := &fakeProducer{}
	seedPending(t, repo, "DRV-1")
	seedPending(t, repo, "DRV-2")

	d := NewOutboxDispatcher(repo, producer, newTestMetrics(), logger.NoOpLogger(), time.Second, 50, 10)
	d.dispatchOnce(context.Background())

	require.Len(t, producer.records, 2, "Both pending entries should be published")
	assert.Equal(t, "identity.sync", producer.records[0].topic)
	assert.Equal(t, "DRV-1", producer.records[0].key, "Records are keyed by account code")

	for _, entry := range repo.entries {
		assert.Equal(t, model.OutboxPublished, entry.Status, "Published entries are flagged")
		assert.NotNil(t, entry.PublishedAt)
	}
}

func TestOutboxDispatcher_BrokerFailureMarksFailed(t *testing.T) {
	repo := newFakeOutboxRepo()
	producer := &fakeProducer{produceErr: errors.New("broker unreachable")}
	entry := seedPending(t, repo, "DRV-1")

	d := NewOutboxDispatcher(repo, producer, newTestMetrics(), logger.NoOpLogger(), time.Second, 50, 10)
	d.dispatchOnce(context.Background())

	assert.Empty(t, producer.records)
	assert.Equal(t, 1, entry.Attempts, "The attempt counter should advance")
	assert.Equal(t, model.OutboxPending, entry.Status, "The entry stays pending below the attempt cap")
}

func TestOutboxDispatcher_AttemptCapFlagsFailed(t *testing.T) {
	repo := newFakeOutboxRepo()
	producer := &fakeProducer{produceErr: errors.New("broker unreachable")}
	entry := seedPending(t, repo, "DRV-1")

	d := NewOutboxDispatcher(repo, producer, newTestMetrics(), logger.NoOpLogger(), time.Second, 50, 2)
	d.dispatchOnce(context.Background())
	d.dispatchOnce(context.Background())

	assert.Equal(t, 2, entry.Attempts)
	assert.Equal(t, model.OutboxFailed, entry.Status, "Reaching the cap parks the entry as failed")

	producer.produceErr = nil
	d.dispatchOnce(context.Background())
	assert.Empty(t, producer.records, "Failed entries are never retried automatically")
}

func TestOutboxDispatcher_RunStopsOnCancel(t *testing.T) {
	repo := newFakeOutboxRepo()
	producer := &fakeProducer{}
	seedPending(t, repo, "DRV-1")

	d := NewOutboxDispatcher(repo, producer, newTestMetrics(), logger.NoOpLogger(), 5*time.Millisecond, 50, 10)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		d.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool {
		return producer.recordCount() > 0
	}, time.Second, 5*time.Millisecond, "The dispatcher should publish on its ticker")

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("dispatcher did not stop after cancellation")
	}
}
