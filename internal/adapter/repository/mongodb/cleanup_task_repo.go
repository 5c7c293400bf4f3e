package mongodb

import (
	"context"
	"errors"
	"time"

	"github.com/Abdurahmanit/GroupProject/housing-service/internal/housing/domain"
	"github.com/Abdurahmanit/GroupProject/housing-service/internal/platform/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// DefaultClaimLease keeps a claimed task invisible to other workers while it is processed.
const DefaultClaimLease = 5 * time.Minute

// CleanupTaskRepository is the orphan blob retry queue.
type CleanupTaskRepository struct {
	collection *mongo.Collection
	lease      time.Duration
	logger     *logger.Logger
}

func NewCleanupTaskRepository(db *mongo.Database, log *logger.Logger) *CleanupTaskRepository {
	return &CleanupTaskRepository{
		collection: db.Collection(cleanupTasksCollection),
		lease:      DefaultClaimLease,
		logger:     log.Named("CleanupTaskRepository"),
	}
}

func (r *CleanupTaskRepository) Enqueue(ctx context.Context, task *domain.BlobCleanupTask) error {
	if _, err := r.collection.InsertOne(ctx, toCleanupTaskDocument(task)); err != nil {
		return domain.Remote("insert cleanup task", err)
	}
	return nil
}

// ClaimDue leases due tasks one by one with FindOneAndUpdate so concurrent workers never
// claim the same task.
func (r *CleanupTaskRepository) ClaimDue(ctx context.Context, now time.Time, limit int) ([]*domain.BlobCleanupTask, error) {
	filter := bson.M{"next_attempt_at": bson.M{"$lte": now}}
	update := bson.M{"$set": bson.M{"next_attempt_at": now.Add(r.lease)}}
	opts := options.FindOneAndUpdate().
		SetSort(bson.D{{Key: "next_attempt_at", Value: 1}}).
		SetReturnDocument(options.Before)

	claimed := make([]*domain.BlobCleanupTask, 0, limit)
	for len(claimed) < limit {
		var doc cleanupTaskDocument
		err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc)
		if errors.Is(err, mongo.ErrNoDocuments) {
			break
		}
		if err != nil {
			if len(claimed) > 0 {
				r.logger.Warn("Claiming stopped early", zap.Int("claimed", len(claimed)), zap.Error(err))
				break
			}
			return nil, domain.Remote("claim cleanup task", err)
		}
		claimed = append(claimed, toDomainCleanupTask(&doc))
	}
	return claimed, nil
}

func (r *CleanupTaskRepository) Reschedule(ctx context.Context, id string, attempts int, next time.Time, lastErr string) error {
	update := bson.M{"$set": bson.M{
		"attempts":        attempts,
		"next_attempt_at": next,
		"last_error":      lastErr,
	}}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return domain.Remote("reschedule cleanup task", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *CleanupTaskRepository) Complete(ctx context.Context, id string) error {
	if _, err := r.collection.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return domain.Remote("delete cleanup task", err)
	}
	return nil
}
