package domain

import (
	"context"
	"time"
)

// ListingRepository persists listings. Create assigns the ID.
type ListingRepository interface {
	Create(ctx context.Context, listing *Listing) error
	FindByID(ctx context.Context, id string) (*Listing, error)
	Find(ctx context.Context, filter ListingFilter) ([]*Listing, error)
	// AttachImages appends urls to the image list and sets the status in one write.
	AttachImages(ctx context.Context, id string, urls []string, status ListingStatus) error
	Delete(ctx context.Context, id string) error
}

type TrackingRepository interface {
	// Add is an upsert keyed by (user, listing).
	Add(ctx context.Context, tracked *TrackedListing) error
	Remove(ctx context.Context, userID, listingID string) (bool, error)
	Exists(ctx context.Context, userID, listingID string) (bool, error)
	FindByUserID(ctx context.Context, userID string) ([]*TrackedListing, error)
	DeleteByListingID(ctx context.Context, listingID string) (int64, error)
}

type RatingRepository interface {
	// Upsert inserts or replaces the rating keyed by (listing, user) in a single write.
	Upsert(ctx context.Context, rating *Rating) error
	FindOne(ctx context.Context, listingID, userID string) (*Rating, error)
	// Summary returns the sum and count of all ratings of a listing.
	Summary(ctx context.Context, listingID string) (sum float64, count int, err error)
	DeleteByListingID(ctx context.Context, listingID string) (int64, error)
}

type CommentRepository interface {
	Create(ctx context.Context, comment *Comment) error
	FindByID(ctx context.Context, id string) (*Comment, error)
	// FindByListingID returns comments in insertion order.
	FindByListingID(ctx context.Context, listingID string) ([]*Comment, error)
	Delete(ctx context.Context, id string) error
	DeleteByListingID(ctx context.Context, listingID string) (int64, error)
}

type LikeRepository interface {
	// Add is an upsert keyed by (comment, user).
	Add(ctx context.Context, listingID, commentID, userID string) error
	Remove(ctx context.Context, commentID, userID string) (bool, error)
	HasLiked(ctx context.Context, commentID, userID string) (bool, error)
	Count(ctx context.Context, commentID string) (int64, error)
	CountByComments(ctx context.Context, commentIDs []string) (map[string]int64, error)
	LikedByUser(ctx context.Context, commentIDs []string, userID string) (map[string]bool, error)
	DeleteByCommentID(ctx context.Context, commentID string) (int64, error)
	DeleteByListingID(ctx context.Context, listingID string) (int64, error)
}

type UserRepository interface {
	// Create returns ErrConflict when the email is taken.
	Create(ctx context.Context, user *User) error
	FindByID(ctx context.Context, id string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
}

// BlobCleanupQueue holds orphan blob deletions awaiting retry.
type BlobCleanupQueue interface {
	Enqueue(ctx context.Context, task *BlobCleanupTask) error
	// ClaimDue leases up to limit tasks whose NextAttemptAt is not after now.
	ClaimDue(ctx context.Context, now time.Time, limit int) ([]*BlobCleanupTask, error)
	Reschedule(ctx context.Context, id string, attempts int, next time.Time, lastErr string) error
	Complete(ctx context.Context, id string) error
}
