package mongodb

import (
	"context"

	"github.com/Abdurahmanit/GroupProject/housing-service/internal/housing/domain"
	"github.com/Abdurahmanit/GroupProject/housing-service/internal/platform/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// TrackingRepository stores saved listings, one row per (user, listing).
type TrackingRepository struct {
	collection *mongo.Collection
	logger     *logger.Logger
}

func NewTrackingRepository(db *mongo.Database, log *logger.Logger) *TrackingRepository {
	return &TrackingRepository{
		collection: db.Collection(savedCollection),
		logger:     log.Named("TrackingRepository"),
	}
}

func (r *TrackingRepository) Add(ctx context.Context, t *domain.TrackedListing) error {
	doc := savedListingDocument{UserID: t.UserID, ListingID: t.ListingID, SavedAt: t.SavedAt}
	filter := bson.M{"user_id": t.UserID, "listing_id": t.ListingID}
	_, err := r.collection.UpdateOne(ctx, filter, bson.M{"$setOnInsert": doc}, options.Update().SetUpsert(true))
	if err != nil && !mongo.IsDuplicateKeyError(err) {
		return domain.Remote("upsert saved listing", err)
	}
	return nil
}

func (r *TrackingRepository) Remove(ctx context.Context, userID, listingID string) (bool, error) {
	res, err := r.collection.DeleteOne(ctx, bson.M{"user_id": userID, "listing_id": listingID})
	if err != nil {
		return false, domain.Remote("delete saved listing", err)
	}
	return res.DeletedCount > 0, nil
}

func (r *TrackingRepository) Exists(ctx context.Context, userID, listingID string) (bool, error) {
	n, err := r.collection.CountDocuments(ctx, bson.M{"user_id": userID, "listing_id": listingID}, options.Count().SetLimit(1))
	if err != nil {
		return false, domain.Remote("count saved listing", err)
	}
	return n > 0, nil
}

func (r *TrackingRepository) FindByUserID(ctx context.Context, userID string) ([]*domain.TrackedListing, error) {
	opts := options.Find().SetSort(bson.D{{Key: "saved_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, domain.Remote("find saved listings", err)
	}
	defer cursor.Close(ctx)

	var docs []savedListingDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, domain.Remote("decode saved listings", err)
	}
	out := make([]*domain.TrackedListing, 0, len(docs))
	for _, d := range docs {
		out = append(out, &domain.TrackedListing{UserID: d.UserID, ListingID: d.ListingID, SavedAt: d.SavedAt})
	}
	return out, nil
}

func (r *TrackingRepository) DeleteByListingID(ctx context.Context, listingID string) (int64, error) {
	res, err := r.collection.DeleteMany(ctx, bson.M{"listing_id": listingID})
	if err != nil {
		return 0, domain.Remote("delete saved listings", err)
	}
	r.logger.Debug("Saved listings removed", zap.String("listing_id", listingID), zap.Int64("count", res.DeletedCount))
	return res.DeletedCount, nil
}
