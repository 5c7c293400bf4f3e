package mongodb

import (
	"context"
	"time"

	"github.com/Abdurahmanit/GroupProject/housing-service/internal/housing/domain"
	"github.com/Abdurahmanit/GroupProject/housing-service/internal/platform/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// LikeRepository stores comment likes, one document per (comment, user).
type LikeRepository struct {
	collection *mongo.Collection
	logger     *logger.Logger
}

func NewLikeRepository(db *mongo.Database, log *logger.Logger) *LikeRepository {
	return &LikeRepository{
		collection: db.Collection(likesCollection),
		logger:     log.Named("LikeRepository"),
	}
}

func (r *LikeRepository) Add(ctx context.Context, listingID, commentID, userID string) error {
	doc := likeDocument{
		CommentID: commentID,
		ListingID: listingID,
		UserID:    userID,
		LikedAt:   time.Now().UTC(),
	}
	filter := bson.M{"comment_id": commentID, "user_id": userID}
	_, err := r.collection.UpdateOne(ctx, filter, bson.M{"$setOnInsert": doc}, options.Update().SetUpsert(true))
	if err != nil && !mongo.IsDuplicateKeyError(err) {
		return domain.Remote("upsert like", err)
	}
	return nil
}

func (r *LikeRepository) Remove(ctx context.Context, commentID, userID string) (bool, error) {
	res, err := r.collection.DeleteOne(ctx, bson.M{"comment_id": commentID, "user_id": userID})
	if err != nil {
		return false, domain.Remote("delete like", err)
	}
	return res.DeletedCount > 0, nil
}

func (r *LikeRepository) HasLiked(ctx context.Context, commentID, userID string) (bool, error) {
	n, err := r.collection.CountDocuments(ctx, bson.M{"comment_id": commentID, "user_id": userID}, options.Count().SetLimit(1))
	if err != nil {
		return false, domain.Remote("count like", err)
	}
	return n > 0, nil
}

func (r *LikeRepository) Count(ctx context.Context, commentID string) (int64, error) {
	n, err := r.collection.CountDocuments(ctx, bson.M{"comment_id": commentID})
	if err != nil {
		return 0, domain.Remote("count likes", err)
	}
	return n, nil
}

// CountByComments counts likes for many comments in one aggregation. Comments without likes are absent.
func (r *LikeRepository) CountByComments(ctx context.Context, commentIDs []string) (map[string]int64, error) {
	counts := make(map[string]int64, len(commentIDs))
	if len(commentIDs) == 0 {
		return counts, nil
	}
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"comment_id": bson.M{"$in": commentIDs}}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$comment_id"},
			{Key: "count", Value: bson.M{"$sum": 1}},
		}}},
	}
	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, domain.Remote("aggregate likes", err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		CommentID string `bson:"_id"`
		Count     int64  `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, domain.Remote("decode like counts", err)
	}
	for _, row := range rows {
		counts[row.CommentID] = row.Count
	}
	return counts, nil
}

func (r *LikeRepository) LikedByUser(ctx context.Context, commentIDs []string, userID string) (map[string]bool, error) {
	liked := make(map[string]bool)
	if len(commentIDs) == 0 || userID == "" {
		return liked, nil
	}
	filter := bson.M{"comment_id": bson.M{"$in": commentIDs}, "user_id": userID}
	opts := options.Find().SetProjection(bson.M{"comment_id": 1})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, domain.Remote("find user likes", err)
	}
	defer cursor.Close(ctx)

	var docs []likeDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, domain.Remote("decode user likes", err)
	}
	for _, d := range docs {
		liked[d.CommentID] = true
	}
	return liked, nil
}

func (r *LikeRepository) DeleteByCommentID(ctx context.Context, commentID string) (int64, error) {
	res, err := r.collection.DeleteMany(ctx, bson.M{"comment_id": commentID})
	if err != nil {
		return 0, domain.Remote("delete comment likes", err)
	}
	return res.DeletedCount, nil
}

func (r *LikeRepository) DeleteByListingID(ctx context.Context, listingID string) (int64, error) {
	res, err := r.collection.DeleteMany(ctx, bson.M{"listing_id": listingID})
	if err != nil {
		return 0, domain.Remote("delete listing likes", err)
	}
	return res.DeletedCount, nil
}
