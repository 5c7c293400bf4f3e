// Package blobcleanup retries deletion of listing images that could not be
// removed when their listing was deleted.
package blobcleanup

import (
	"context"
	"time"

	"github.com/Abdurahmanit/GroupProject/housing-service/internal/housing/domain"
	"github.com/Abdurahmanit/GroupProject/housing-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/housing-service/internal/platform/metrics"
	"go.uber.org/zap"
)

type BlobDeleter interface {
	Delete(ctx context.Context, objectKey string) error
}

type Config struct {
	Interval    time.Duration
	BatchSize   int
	MaxAttempts int
}

// Summary counts the outcomes of one pass.
type Summary struct {
	Deleted   int
	Retried   int
	Abandoned int
}

type Worker struct {
	queue   domain.BlobCleanupQueue
	storage BlobDeleter
	cfg     Config
	metrics *metrics.MetricsManager
	logger  *logger.Logger
	now     func() time.Time
}

// NewWorker builds a worker. m may be nil.
func NewWorker(queue domain.BlobCleanupQueue, storage BlobDeleter, cfg Config, m *metrics.MetricsManager, log *logger.Logger) *Worker {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Minute
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 10
	}
	return &Worker{
		queue:   queue,
		storage: storage,
		cfg:     cfg,
		metrics: m,
		logger:  log.Named("BlobCleanupWorker"),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Start runs a pass immediately and then once per interval until ctx is cancelled.
func (w *Worker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.cfg.Interval)
	defer ticker.Stop()

	w.logger.Info("Blob cleanup worker started",
		zap.Duration("interval", w.cfg.Interval),
		zap.Int("batch_size", w.cfg.BatchSize),
		zap.Int("max_attempts", w.cfg.MaxAttempts))

	w.runAndLog(ctx)
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Blob cleanup worker stopped")
			return
		case <-ticker.C:
			w.runAndLog(ctx)
		}
	}
}

func (w *Worker) runAndLog(ctx context.Context) {
	sum, err := w.RunOnce(ctx)
	if err != nil {
		w.logger.Error("Blob cleanup pass failed", zap.Error(err))
		return
	}
	if sum != (Summary{}) {
		w.logger.Info("Blob cleanup pass finished",
			zap.Int("deleted", sum.Deleted), zap.Int("retried", sum.Retried), zap.Int("abandoned", sum.Abandoned))
	}
}

// RunOnce claims one batch of due tasks and attempts each deletion.
func (w *Worker) RunOnce(ctx context.Context) (Summary, error) {
	var sum Summary
	tasks, err := w.queue.ClaimDue(ctx, w.now(), w.cfg.BatchSize)
	if err != nil {
		return sum, err
	}
	for _, t := range tasks {
		if ctx.Err() != nil {
			return sum, ctx.Err()
		}
		w.process(ctx, t, &sum)
	}
	return sum, nil
}

func (w *Worker) process(ctx context.Context, t *domain.BlobCleanupTask, sum *Summary) {
	log := w.logger.With(zap.String("task_id", t.ID), zap.String("object_key", t.ObjectKey), zap.String("listing_id", t.ListingID))

	delErr := w.storage.Delete(ctx, t.ObjectKey)
	if delErr == nil {
		if err := w.queue.Complete(ctx, t.ID); err != nil {
			log.Warn("Deleted blob but could not complete task", zap.Error(err))
		}
		sum.Deleted++
		w.count(metrics.CleanupDeleted)
		return
	}

	attempts := t.Attempts + 1
	if attempts >= w.cfg.MaxAttempts {
		log.Error("Giving up on orphan blob", zap.Int("attempts", attempts), zap.Error(delErr))
		if err := w.queue.Complete(ctx, t.ID); err != nil {
			log.Warn("Could not drop abandoned task", zap.Error(err))
		}
		sum.Abandoned++
		w.count(metrics.CleanupAbandoned)
		return
	}

	next := w.now().Add(CalculateBackoff(attempts))
	if err := w.queue.Reschedule(ctx, t.ID, attempts, next, delErr.Error()); err != nil {
		log.Warn("Could not reschedule task", zap.Error(err))
	}
	log.Warn("Blob delete failed, rescheduled", zap.Int("attempts", attempts), zap.Time("next_attempt_at", next), zap.Error(delErr))
	sum.Retried++
	w.count(metrics.CleanupRetried)
}

func (w *Worker) count(result string) {
	if w.metrics != nil {
		w.metrics.BlobCleanupTotal.WithLabelValues(result).Inc()
	}
}

// CountingQueue records every enqueued task in the cleanup metrics.
type CountingQueue struct {
	domain.BlobCleanupQueue
	metrics *metrics.MetricsManager
}

func NewCountingQueue(q domain.BlobCleanupQueue, m *metrics.MetricsManager) *CountingQueue {
	return &CountingQueue{BlobCleanupQueue: q, metrics: m}
}

func (q *CountingQueue) Enqueue(ctx context.Context, task *domain.BlobCleanupTask) error {
	if err := q.BlobCleanupQueue.Enqueue(ctx, task); err != nil {
		return err
	}
	q.metrics.BlobCleanupTotal.WithLabelValues(metrics.CleanupQueued).Inc()
	return nil
}
