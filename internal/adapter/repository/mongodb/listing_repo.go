package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Abdurahmanit/GroupProject/housing-service/internal/housing/domain"
	"github.com/Abdurahmanit/GroupProject/housing-service/internal/platform/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

type ListingRepository struct {
	collection *mongo.Collection
	logger     *logger.Logger
}

func NewListingRepository(db *mongo.Database, log *logger.Logger) *ListingRepository {
	return &ListingRepository{
		collection: db.Collection(listingsCollection),
		logger:     log.Named("ListingRepository"),
	}
}

func (r *ListingRepository) Create(ctx context.Context, listing *domain.Listing) error {
	res, err := r.collection.InsertOne(ctx, toListingDocument(listing))
	if err != nil {
		return domain.Remote("insert listing", err)
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return fmt.Errorf("insert listing: unexpected id type %T", res.InsertedID)
	}
	listing.ID = oid.Hex()
	r.logger.Debug("Listing inserted", zap.String("listing_id", listing.ID), zap.String("status", string(listing.Status)))
	return nil
}

func (r *ListingRepository) FindByID(ctx context.Context, id string) (*domain.Listing, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	var doc listingDocument
	if err := r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.Remote("find listing", err)
	}
	return toDomainListing(&doc), nil
}

// Find returns matching listings newest first.
func (r *ListingRepository) Find(ctx context.Context, filter domain.ListingFilter) ([]*domain.Listing, error) {
	query := bson.M{}
	if filter.LandlordID != "" {
		query["landlord_id"] = filter.LandlordID
	}
	if filter.Status != "" {
		query["status"] = string(filter.Status)
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})

	cursor, err := r.collection.Find(ctx, query, opts)
	if err != nil {
		return nil, domain.Remote("find listings", err)
	}
	defer cursor.Close(ctx)

	var docs []*listingDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, domain.Remote("decode listings", err)
	}
	return toDomainListings(docs), nil
}

func (r *ListingRepository) AttachImages(ctx context.Context, id string, urls []string, status domain.ListingStatus) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}
	if urls == nil {
		urls = []string{}
	}
	update := bson.M{
		"$push": bson.M{"images": bson.M{"$each": urls}},
		"$set":  bson.M{"status": string(status), "updated_at": time.Now().UTC()},
	}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": oid}, update)
	if err != nil {
		return domain.Remote("attach listing images", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *ListingRepository) Delete(ctx context.Context, id string) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return domain.Remote("delete listing", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}
