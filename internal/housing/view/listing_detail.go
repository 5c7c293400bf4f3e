package view

import (
	"context"

	"github.com/Abdurahmanit/GroupProject/housing-service/internal/housing/domain"
	"github.com/Abdurahmanit/GroupProject/housing-service/internal/platform/logger"
	"go.uber.org/zap"
)

// ListingReader hides other landlords' drafts from viewerID.
type ListingReader interface {
	GetVisible(ctx context.Context, viewerID, id string) (*domain.Listing, error)
}

type RatingReader interface {
	RatingSource
	UserRating(ctx context.Context, listingID, userID string) (int, bool, error)
}

type TrackingReader interface {
	IsTracked(ctx context.Context, userID, listingID string) (bool, error)
}

type CommentReader interface {
	List(ctx context.Context, listingID, viewerID string) ([]domain.CommentView, error)
}

// ListingDetail is one listing as seen by a particular viewer.
type ListingDetail struct {
	Listing *domain.Listing
	Rating  domain.RatingSummary
	// ViewerRating is 0 when the viewer has not rated the listing.
	ViewerRating int
	Tracked      bool
	Comments     []domain.CommentView
	Carousel     *Carousel
}

type DetailView struct {
	listings ListingReader
	ratings  RatingReader
	tracking TrackingReader
	comments CommentReader
	logger   *logger.Logger
}

func NewDetailView(listings ListingReader, ratings RatingReader, tracking TrackingReader, comments CommentReader, log *logger.Logger) *DetailView {
	return &DetailView{
		listings: listings,
		ratings:  ratings,
		tracking: tracking,
		comments: comments,
		logger:   log.Named("DetailView"),
	}
}

// Build loads the listing and everything shown next to it. Rating and tracking lookups
// degrade to their empty values on failure; a missing listing or failed comment load does not.
func (v *DetailView) Build(ctx context.Context, listingID string, viewer domain.User) (*ListingDetail, error) {
	listing, err := v.listings.GetVisible(ctx, viewer.ID, listingID)
	if err != nil {
		return nil, err
	}
	detail := &ListingDetail{Listing: listing, Carousel: NewCarousel(listing.Images)}

	if summary, err := v.ratings.Average(ctx, listingID); err != nil {
		v.logger.Warn("Rating summary unavailable, showing N/A", zap.String("listing_id", listingID), zap.Error(err))
	} else {
		detail.Rating = summary
	}

	if !viewer.IsAnonymous() {
		if value, ok, err := v.ratings.UserRating(ctx, listingID, viewer.ID); err != nil {
			v.logger.Warn("Viewer rating unavailable", zap.String("listing_id", listingID), zap.Error(err))
		} else if ok {
			detail.ViewerRating = value
		}
		if tracked, err := v.tracking.IsTracked(ctx, viewer.ID, listingID); err != nil {
			v.logger.Warn("Tracking state unavailable", zap.String("listing_id", listingID), zap.Error(err))
		} else {
			detail.Tracked = tracked
		}
	}

	detail.Comments, err = v.comments.List(ctx, listingID, viewer.ID)
	if err != nil {
		return nil, err
	}
	return detail, nil
}
