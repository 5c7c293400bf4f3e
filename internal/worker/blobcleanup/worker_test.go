package blobcleanup

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Abdurahmanit/GroupProject/housing-service/internal/housing/domain"
	"github.com/Abdurahmanit/GroupProject/housing-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/housing-service/internal/platform/metrics"
	"github.com/Abdurahmanit/GroupProject/housing-service/internal/testutil"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateBackoff(t *testing.T) {
	tests := []struct {
		attempts int
		want     time.Duration
	}{
		{0, 30 * time.Second},
		{1, 30 * time.Second},
		{2, time.Minute},
		{3, 2 * time.Minute},
		{7, 32 * time.Minute},
		{8, time.Hour},
		{50, time.Hour},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CalculateBackoff(tt.attempts), "attempts=%d", tt.attempts)
	}
}

type fixture struct {
	queue   *testutil.CleanupQueue
	blobs   *testutil.BlobStore
	metrics *metrics.MetricsManager
	worker  *Worker
	clock   time.Time
}

func newFixture(maxAttempts int) *fixture {
	f := &fixture{
		queue:   testutil.NewCleanupQueue(),
		blobs:   testutil.NewBlobStore(),
		metrics: metrics.NewMetricsManager("housing-test"),
		clock:   time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC),
	}
	f.worker = NewWorker(f.queue, f.blobs, Config{Interval: time.Second, BatchSize: 10, MaxAttempts: maxAttempts}, f.metrics, logger.NewNop())
	f.worker.now = func() time.Time { return f.clock }
	return f
}

func (f *fixture) enqueue(t *testing.T, id, key string, attempts int, due time.Time) {
	t.Helper()
	require.NoError(t, f.queue.Enqueue(context.Background(), &domain.BlobCleanupTask{
		ID: id, ObjectKey: key, ListingID: "l1", Attempts: attempts, NextAttemptAt: due,
	}))
}

func (f *fixture) counter(result string) float64 {
	return promtestutil.ToFloat64(f.metrics.BlobCleanupTotal.WithLabelValues(result))
}

func TestWorker_DeletesDueTasks(t *testing.T) {
	f := newFixture(5)
	f.blobs.Put("listing-images/o1/l1/a.png", []byte("a"))
	f.enqueue(t, "t1", "listing-images/o1/l1/a.png", 1, f.clock.Add(-time.Second))
	f.enqueue(t, "t2", "listing-images/o1/l1/b.png", 1, f.clock.Add(time.Hour))

	sum, err := f.worker.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Summary{Deleted: 1}, sum)
	assert.Empty(t, f.blobs.Keys())

	tasks := f.queue.Tasks()
	require.Len(t, tasks, 1)
	assert.Equal(t, "t2", tasks[0].ID)
	assert.Equal(t, 1.0, f.counter(metrics.CleanupDeleted))
}

func TestWorker_ReschedulesWithBackoff(t *testing.T) {
	f := newFixture(5)
	key := "listing-images/o1/l1/a.png"
	f.blobs.DeleteErr[key] = errors.New("minio unavailable")
	f.enqueue(t, "t1", key, 1, f.clock)

	sum, err := f.worker.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Summary{Retried: 1}, sum)

	tasks := f.queue.Tasks()
	require.Len(t, tasks, 1)
	assert.Equal(t, 2, tasks[0].Attempts)
	assert.Equal(t, f.clock.Add(time.Minute), tasks[0].NextAttemptAt)
	assert.Equal(t, "minio unavailable", tasks[0].LastError)

	// not due yet
	sum, err = f.worker.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Summary{}, sum)

	delete(f.blobs.DeleteErr, key)
	f.clock = f.clock.Add(time.Minute)
	sum, err = f.worker.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Summary{Deleted: 1}, sum)
	assert.Empty(t, f.queue.Tasks())
	assert.Equal(t, 1.0, f.counter(metrics.CleanupRetried))
}

func TestWorker_AbandonsAfterMaxAttempts(t *testing.T) {
	f := newFixture(3)
	key := "listing-images/o1/l1/a.png"
	f.blobs.DeleteErr[key] = errors.New("access denied")
	f.enqueue(t, "t1", key, 2, f.clock)

	sum, err := f.worker.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Summary{Abandoned: 1}, sum)
	assert.Empty(t, f.queue.Tasks())
	assert.Equal(t, 1.0, f.counter(metrics.CleanupAbandoned))
}

func TestWorker_StartStopsOnCancel(t *testing.T) {
	f := newFixture(5)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		f.worker.Start(ctx)
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop")
	}
}

func TestCountingQueue(t *testing.T) {
	m := metrics.NewMetricsManager("housing-test")
	q := NewCountingQueue(testutil.NewCleanupQueue(), m)
	require.NoError(t, q.Enqueue(context.Background(), &domain.BlobCleanupTask{ID: "t1", ObjectKey: "k"}))
	assert.Equal(t, 1.0, promtestutil.ToFloat64(m.BlobCleanupTotal.WithLabelValues(metrics.CleanupQueued)))
}
