package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/Abdurahmanit/GroupProject/housing-service/internal/housing/domain"
	"github.com/Abdurahmanit/GroupProject/housing-service/internal/platform/logger"
	"go.uber.org/zap"
)

// RatingUsecase keeps one rating per user per listing and serves their average.
type RatingUsecase struct {
	ratings   domain.RatingRepository
	listings  ListingGetter
	cache     RatingCache
	publisher EventPublisher
	logger    *logger.Logger
}

func NewRatingUsecase(ratings domain.RatingRepository, listings ListingGetter, cache RatingCache, publisher EventPublisher, log *logger.Logger) *RatingUsecase {
	return &RatingUsecase{
		ratings:   ratings,
		listings:  listings,
		cache:     cache,
		publisher: publisher,
		logger:    log.Named("RatingUsecase"),
	}
}

// Submit stores the user's rating, replacing any earlier one, and returns the new summary.
func (uc *RatingUsecase) Submit(ctx context.Context, listingID, userID string, value int) (domain.RatingSummary, error) {
	if userID == "" {
		return domain.RatingSummary{}, domain.ErrAuthRequired
	}
	if err := domain.ValidateRating(value); err != nil {
		return domain.RatingSummary{}, err
	}
	if _, err := uc.listings.GetVisible(ctx, userID, listingID); err != nil {
		return domain.RatingSummary{}, err
	}

	uc.logger.Info("Submitting rating", zap.String("listing_id", listingID), zap.String("user_id", userID), zap.Int("rating", value))

	now := time.Now().UTC()
	rating := &domain.Rating{
		ListingID: listingID,
		UserID:    userID,
		Value:     value,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.ratings.Upsert(ctx, rating); err != nil {
		uc.logger.Error("Failed to store rating", zap.String("listing_id", listingID), zap.String("user_id", userID), zap.Error(err))
		return domain.RatingSummary{}, err
	}
	if err := uc.cache.DeleteSummary(ctx, listingID); err != nil {
		uc.logger.Warn("Rating cache invalidation failed", zap.String("listing_id", listingID), zap.Error(err))
	}

	event := map[string]interface{}{
		"listing_id": listingID,
		"user_id":    userID,
		"rating":     value,
		"rated_at":   now.Format(time.RFC3339Nano),
	}
	if err := uc.publisher.Publish(ctx, SubjectRatingSubmitted, event); err != nil {
		uc.logger.Warn("Failed to publish rating.submitted event", zap.String("listing_id", listingID), zap.Error(err))
	}

	return uc.Average(ctx, listingID)
}

// Average returns the rounded mean and count; a zero count is the N/A sentinel.
func (uc *RatingUsecase) Average(ctx context.Context, listingID string) (domain.RatingSummary, error) {
	cached, err := uc.cache.GetSummary(ctx, listingID)
	if err != nil {
		uc.logger.Warn("Rating cache read failed", zap.String("listing_id", listingID), zap.Error(err))
	}
	if cached != nil {
		return *cached, nil
	}

	sum, count, err := uc.ratings.Summary(ctx, listingID)
	if err != nil {
		uc.logger.Error("Failed to aggregate ratings", zap.String("listing_id", listingID), zap.Error(err))
		return domain.RatingSummary{}, err
	}
	summary := domain.NewRatingSummary(sum, count)
	if err := uc.cache.SetSummary(ctx, listingID, summary); err != nil {
		uc.logger.Warn("Rating cache write failed", zap.String("listing_id", listingID), zap.Error(err))
	}
	return summary, nil
}

// UserRating returns the user's own rating of the listing, if any.
func (uc *RatingUsecase) UserRating(ctx context.Context, listingID, userID string) (int, bool, error) {
	if userID == "" {
		return 0, false, nil
	}
	r, err := uc.ratings.FindOne(ctx, listingID, userID)
	if errors.Is(err, domain.ErrNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return r.Value, true, nil
}
