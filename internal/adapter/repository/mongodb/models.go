package mongodb

import (
	"time"

	"github.com/Abdurahmanit/GroupProject/housing-service/internal/housing/domain"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	usersCollection        = "users"
	listingsCollection     = "listings"
	ratingsCollection      = "ratings"
	commentsCollection     = "comments"
	likesCollection        = "comment_likes"
	savedCollection        = "saved_listings"
	cleanupTasksCollection = "blob_cleanup_tasks"
)

type userDocument struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Email        string             `bson:"email"`
	Role         string             `bson:"role"`
	PasswordHash string             `bson:"password_hash"`
	CreatedAt    time.Time          `bson:"created_at"`
}

type listingDocument struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"`
	Title         string             `bson:"title"`
	Description   string             `bson:"description"`
	Location      string             `bson:"location"`
	Price         float64            `bson:"price"`
	LandlordID    string             `bson:"landlord_id"`
	LandlordEmail string             `bson:"landlord_email"`
	Status        string             `bson:"status"`
	Images        []string           `bson:"images"`
	CreatedAt     time.Time          `bson:"created_at"`
	UpdatedAt     time.Time          `bson:"updated_at"`
}

type ratingDocument struct {
	ListingID string    `bson:"listing_id"`
	UserID    string    `bson:"user_id"`
	Rating    int       `bson:"rating"`
	CreatedAt time.Time `bson:"created_at"`
	UpdatedAt time.Time `bson:"updated_at"`
}

type commentDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	ListingID string             `bson:"listing_id"`
	UserID    string             `bson:"user_id"`
	UserEmail string             `bson:"user_email"`
	Text      string             `bson:"text"`
	CreatedAt time.Time          `bson:"created_at"`
}

type likeDocument struct {
	CommentID string    `bson:"comment_id"`
	ListingID string    `bson:"listing_id"`
	UserID    string    `bson:"user_id"`
	LikedAt   time.Time `bson:"liked_at"`
}

type savedListingDocument struct {
	UserID    string    `bson:"user_id"`
	ListingID string    `bson:"listing_id"`
	SavedAt   time.Time `bson:"saved_at"`
}

type cleanupTaskDocument struct {
	ID            string    `bson:"_id"`
	ObjectKey     string    `bson:"object_key"`
	ListingID     string    `bson:"listing_id"`
	Attempts      int       `bson:"attempts"`
	NextAttemptAt time.Time `bson:"next_attempt_at"`
	LastError     string    `bson:"last_error,omitempty"`
	CreatedAt     time.Time `bson:"created_at"`
}

func toUserDocument(u *domain.User) *userDocument {
	return &userDocument{
		Email:        u.Email,
		Role:         string(u.Role),
		PasswordHash: u.PasswordHash,
		CreatedAt:    u.CreatedAt,
	}
}

func toDomainUser(d *userDocument) *domain.User {
	return &domain.User{
		ID:           d.ID.Hex(),
		Email:        d.Email,
		Role:         domain.Role(d.Role),
		PasswordHash: d.PasswordHash,
		CreatedAt:    d.CreatedAt,
	}
}

func toListingDocument(l *domain.Listing) *listingDocument {
	images := l.Images
	if images == nil {
		images = []string{}
	}
	return &listingDocument{
		Title:         l.Title,
		Description:   l.Description,
		Location:      l.Location,
		Price:         l.Price,
		LandlordID:    l.LandlordID,
		LandlordEmail: l.LandlordEmail,
		Status:        string(l.Status),
		Images:        images,
		CreatedAt:     l.CreatedAt,
		UpdatedAt:     l.UpdatedAt,
	}
}

func toDomainListing(d *listingDocument) *domain.Listing {
	images := d.Images
	if images == nil {
		images = []string{}
	}
	return &domain.Listing{
		ID:            d.ID.Hex(),
		Title:         d.Title,
		Description:   d.Description,
		Location:      d.Location,
		Price:         d.Price,
		LandlordID:    d.LandlordID,
		LandlordEmail: d.LandlordEmail,
		Status:        domain.ListingStatus(d.Status),
		Images:        images,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}
}

func toDomainListings(docs []*listingDocument) []*domain.Listing {
	out := make([]*domain.Listing, 0, len(docs))
	for _, d := range docs {
		out = append(out, toDomainListing(d))
	}
	return out
}

func toDomainRating(d *ratingDocument) *domain.Rating {
	return &domain.Rating{
		ListingID: d.ListingID,
		UserID:    d.UserID,
		Value:     d.Rating,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

func toCommentDocument(c *domain.Comment) *commentDocument {
	return &commentDocument{
		ListingID: c.ListingID,
		UserID:    c.UserID,
		UserEmail: c.UserEmail,
		Text:      c.Text,
		CreatedAt: c.CreatedAt,
	}
}

func toDomainComment(d *commentDocument) *domain.Comment {
	return &domain.Comment{
		ID:        d.ID.Hex(),
		ListingID: d.ListingID,
		UserID:    d.UserID,
		UserEmail: d.UserEmail,
		Text:      d.Text,
		CreatedAt: d.CreatedAt,
	}
}

func toCleanupTaskDocument(t *domain.BlobCleanupTask) *cleanupTaskDocument {
	return &cleanupTaskDocument{
		ID:            t.ID,
		ObjectKey:     t.ObjectKey,
		ListingID:     t.ListingID,
		Attempts:      t.Attempts,
		NextAttemptAt: t.NextAttemptAt,
		LastError:     t.LastError,
		CreatedAt:     t.CreatedAt,
	}
}

func toDomainCleanupTask(d *cleanupTaskDocument) *domain.BlobCleanupTask {
	return &domain.BlobCleanupTask{
		ID:            d.ID,
		ObjectKey:     d.ObjectKey,
		ListingID:     d.ListingID,
		Attempts:      d.Attempts,
		NextAttemptAt: d.NextAttemptAt,
		LastError:     d.LastError,
		CreatedAt:     d.CreatedAt,
	}
}

// objectID parses a hex id. Malformed ids cannot name a stored document, so they map to ErrNotFound.
func objectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, domain.ErrNotFound
	}
	return oid, nil
}
