package usecase

import (
	"context"
	"time"

	"github.com/Abdurahmanit/GroupProject/housing-service/internal/housing/domain"
)

// BlobStorage is the image store. Upload returns the public URL of the object.
type BlobStorage interface {
	Upload(ctx context.Context, objectKey string, data []byte, contentType string) (string, error)
	Delete(ctx context.Context, objectKey string) error
	ListObjects(ctx context.Context, prefix string) ([]string, error)
	ObjectKeyFromURL(rawURL string) (string, error)
}

// EventPublisher broadcasts domain events. Failures never fail the calling operation.
type EventPublisher interface {
	Publish(ctx context.Context, subject string, data interface{}) error
}

// ListingCache returns (nil, nil) on a miss.
type ListingCache interface {
	GetListing(ctx context.Context, id string) (*domain.Listing, error)
	SetListing(ctx context.Context, listing *domain.Listing) error
	DeleteListing(ctx context.Context, id string) error
}

// RatingCache returns (nil, nil) on a miss.
type RatingCache interface {
	GetSummary(ctx context.Context, listingID string) (*domain.RatingSummary, error)
	SetSummary(ctx context.Context, listingID string, summary domain.RatingSummary) error
	DeleteSummary(ctx context.Context, listingID string) error
}

// SessionStore remembers which issued tokens are still signed in.
type SessionStore interface {
	Save(ctx context.Context, sessionID, userID string, ttl time.Duration) error
	Exists(ctx context.Context, sessionID string) (bool, error)
	Delete(ctx context.Context, sessionID string) error
}

type Mailer interface {
	SendListingCreatedEmail(ctx context.Context, toEmail, listingTitle string) error
}

// Event subjects.
const (
	SubjectListingCreated  = "listing.created"
	SubjectListingDeleted  = "listing.deleted"
	SubjectRatingSubmitted = "rating.submitted"
	SubjectCommentAdded    = "comment.added"
	SubjectCommentRemoved  = "comment.removed"
	SubjectCommentLiked    = "comment.like_toggled"
	SubjectTrackingToggled = "tracking.toggled"
	SubjectSignedIn        = "auth.signed_in"
	SubjectSignedOut       = "auth.signed_out"
)
