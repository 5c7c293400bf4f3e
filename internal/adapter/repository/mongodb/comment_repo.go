package mongodb

import (
	"context"
	"errors"
	"fmt"

	"github.com/Abdurahmanit/GroupProject/housing-service/internal/housing/domain"
	"github.com/Abdurahmanit/GroupProject/housing-service/internal/platform/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type CommentRepository struct {
	collection *mongo.Collection
	logger     *logger.Logger
}

func NewCommentRepository(db *mongo.Database, log *logger.Logger) *CommentRepository {
	return &CommentRepository{
		collection: db.Collection(commentsCollection),
		logger:     log.Named("CommentRepository"),
	}
}

func (r *CommentRepository) Create(ctx context.Context, comment *domain.Comment) error {
	res, err := r.collection.InsertOne(ctx, toCommentDocument(comment))
	if err != nil {
		return domain.Remote("insert comment", err)
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return fmt.Errorf("insert comment: unexpected id type %T", res.InsertedID)
	}
	comment.ID = oid.Hex()
	return nil
}

func (r *CommentRepository) FindByID(ctx context.Context, id string) (*domain.Comment, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	var doc commentDocument
	if err := r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.Remote("find comment", err)
	}
	return toDomainComment(&doc), nil
}

// FindByListingID sorts by _id, which increases with every insert.
func (r *CommentRepository) FindByListingID(ctx context.Context, listingID string) ([]*domain.Comment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"listing_id": listingID}, opts)
	if err != nil {
		return nil, domain.Remote("find comments", err)
	}
	defer cursor.Close(ctx)

	var docs []*commentDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, domain.Remote("decode comments", err)
	}
	out := make([]*domain.Comment, 0, len(docs))
	for _, d := range docs {
		out = append(out, toDomainComment(d))
	}
	return out, nil
}

func (r *CommentRepository) Delete(ctx context.Context, id string) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return domain.Remote("delete comment", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *CommentRepository) DeleteByListingID(ctx context.Context, listingID string) (int64, error) {
	res, err := r.collection.DeleteMany(ctx, bson.M{"listing_id": listingID})
	if err != nil {
		return 0, domain.Remote("delete comments", err)
	}
	return res.DeletedCount, nil
}
