package mongodb

import (
	"context"
	"errors"

	"github.com/Abdurahmanit/GroupProject/housing-service/internal/housing/domain"
	"github.com/Abdurahmanit/GroupProject/housing-service/internal/platform/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

type RatingRepository struct {
	collection *mongo.Collection
	logger     *logger.Logger
}

func NewRatingRepository(db *mongo.Database, log *logger.Logger) *RatingRepository {
	return &RatingRepository{
		collection: db.Collection(ratingsCollection),
		logger:     log.Named("RatingRepository"),
	}
}

// Upsert writes the rating keyed by (listing, user). Two concurrent first ratings by the
// same user can race on the unique index; the loser retries once and then updates.
func (r *RatingRepository) Upsert(ctx context.Context, rating *domain.Rating) error {
	filter := bson.M{"listing_id": rating.ListingID, "user_id": rating.UserID}
	update := bson.M{
		"$set": bson.M{"rating": rating.Value, "updated_at": rating.UpdatedAt},
		"$setOnInsert": bson.M{
			"listing_id": rating.ListingID,
			"user_id":    rating.UserID,
			"created_at": rating.CreatedAt,
		},
	}
	opts := options.Update().SetUpsert(true)

	_, err := r.collection.UpdateOne(ctx, filter, update, opts)
	if mongo.IsDuplicateKeyError(err) {
		r.logger.Debug("Rating upsert raced, retrying", zap.String("listing_id", rating.ListingID), zap.String("user_id", rating.UserID))
		_, err = r.collection.UpdateOne(ctx, filter, update, opts)
	}
	if err != nil {
		return domain.Remote("upsert rating", err)
	}
	return nil
}

func (r *RatingRepository) FindOne(ctx context.Context, listingID, userID string) (*domain.Rating, error) {
	var doc ratingDocument
	err := r.collection.FindOne(ctx, bson.M{"listing_id": listingID, "user_id": userID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.Remote("find rating", err)
	}
	return toDomainRating(&doc), nil
}

// Summary aggregates sum and count server side.
func (r *RatingRepository) Summary(ctx context.Context, listingID string) (float64, int, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"listing_id": listingID}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: nil},
			{Key: "sum", Value: bson.M{"$sum": "$rating"}},
			{Key: "count", Value: bson.M{"$sum": 1}},
		}}},
	}
	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, 0, domain.Remote("aggregate ratings", err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Sum   float64 `bson:"sum"`
		Count int     `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return 0, 0, domain.Remote("decode rating aggregate", err)
	}
	if len(rows) == 0 {
		return 0, 0, nil
	}
	return rows[0].Sum, rows[0].Count, nil
}

func (r *RatingRepository) DeleteByListingID(ctx context.Context, listingID string) (int64, error) {
	res, err := r.collection.DeleteMany(ctx, bson.M{"listing_id": listingID})
	if err != nil {
		return 0, domain.Remote("delete ratings", err)
	}
	return res.DeletedCount, nil
}
