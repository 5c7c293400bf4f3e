package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/Abdurahmanit/GroupProject/housing-service/internal/housing/domain"
	"github.com/Abdurahmanit/GroupProject/housing-service/internal/platform/logger"
	"go.uber.org/zap"
)

// ListingGetter resolves listing ids for a viewer; ListingUsecase satisfies it through its cache.
type ListingGetter interface {
	GetVisible(ctx context.Context, viewerID, id string) (*domain.Listing, error)
}

// TrackingUsecase manages each user's set of tracked listings.
type TrackingUsecase struct {
	repo      domain.TrackingRepository
	listings  ListingGetter
	publisher EventPublisher
	logger    *logger.Logger
}

func NewTrackingUsecase(repo domain.TrackingRepository, listings ListingGetter, publisher EventPublisher, log *logger.Logger) *TrackingUsecase {
	return &TrackingUsecase{
		repo:      repo,
		listings:  listings,
		publisher: publisher,
		logger:    log.Named("TrackingUsecase"),
	}
}

// IsTracked is false for anonymous visitors.
func (uc *TrackingUsecase) IsTracked(ctx context.Context, userID, listingID string) (bool, error) {
	if userID == "" {
		return false, nil
	}
	return uc.repo.Exists(ctx, userID, listingID)
}

// Toggle flips membership once and returns the new state.
// Concurrent toggles by the same user race; the last write wins.
func (uc *TrackingUsecase) Toggle(ctx context.Context, userID, listingID string) (bool, error) {
	if userID == "" {
		return false, domain.ErrAuthRequired
	}
	if listingID == "" {
		return false, domain.Invalid("listing id is required")
	}

	tracked, err := uc.repo.Exists(ctx, userID, listingID)
	if err != nil {
		uc.logger.Error("Failed to read tracking state", zap.String("user_id", userID), zap.String("listing_id", listingID), zap.Error(err))
		return false, err
	}

	if tracked {
		if _, err := uc.repo.Remove(ctx, userID, listingID); err != nil {
			uc.logger.Error("Failed to untrack listing", zap.String("user_id", userID), zap.String("listing_id", listingID), zap.Error(err))
			return true, err
		}
	} else {
		if _, err := uc.listings.GetVisible(ctx, userID, listingID); err != nil {
			return false, err
		}
		entry := &domain.TrackedListing{UserID: userID, ListingID: listingID, SavedAt: time.Now().UTC()}
		if err := uc.repo.Add(ctx, entry); err != nil {
			uc.logger.Error("Failed to track listing", zap.String("user_id", userID), zap.String("listing_id", listingID), zap.Error(err))
			return false, err
		}
	}

	newState := !tracked
	event := map[string]interface{}{"user_id": userID, "listing_id": listingID, "tracked": newState}
	if err := uc.publisher.Publish(ctx, SubjectTrackingToggled, event); err != nil {
		uc.logger.Warn("Failed to publish tracking.toggled event", zap.String("listing_id", listingID), zap.Error(err))
	}
	uc.logger.Info("Tracking toggled", zap.String("user_id", userID), zap.String("listing_id", listingID), zap.Bool("tracked", newState))
	return newState, nil
}

// ListTracked returns the tracked listing ids, most recently saved first.
func (uc *TrackingUsecase) ListTracked(ctx context.Context, userID string) ([]string, error) {
	if userID == "" {
		return nil, domain.ErrAuthRequired
	}
	entries, err := uc.repo.FindByUserID(ctx, userID)
	if err != nil {
		uc.logger.Error("Failed to list tracked listings", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}
	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.ListingID)
	}
	return ids, nil
}

// ResolveTracked loads the tracked listings. Ids whose listing no longer exists, or is
// someone else's draft, are dropped.
func (uc *TrackingUsecase) ResolveTracked(ctx context.Context, userID string) ([]*domain.Listing, error) {
	ids, err := uc.ListTracked(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]*domain.Listing, 0, len(ids))
	for _, id := range ids {
		l, err := uc.listings.GetVisible(ctx, userID, id)
		if errors.Is(err, domain.ErrNotFound) {
			uc.logger.Debug("Tracked listing no longer exists", zap.String("user_id", userID), zap.String("listing_id", id))
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, nil
}
