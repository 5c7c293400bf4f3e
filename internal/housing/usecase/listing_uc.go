package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Abdurahmanit/GroupProject/housing-service/internal/housing/domain"
	"github.com/Abdurahmanit/GroupProject/housing-service/internal/platform/logger"
	"go.uber.org/zap"
)

// ListingDeps groups ListingUsecase's collaborators. Deleting a listing also clears its
// ratings, comments, likes and tracking rows, hence the extra repositories.
type ListingDeps struct {
	Listings    domain.ListingRepository
	Ratings     domain.RatingRepository
	Comments    domain.CommentRepository
	Likes       domain.LikeRepository
	Tracking    domain.TrackingRepository
	Photos      *PhotoUsecase
	Cache       ListingCache
	RatingCache RatingCache
	Publisher   EventPublisher
	Mailer      Mailer
}

type ListingUsecase struct {
	deps   ListingDeps
	logger *logger.Logger
}

func NewListingUsecase(deps ListingDeps, log *logger.Logger) *ListingUsecase {
	return &ListingUsecase{
		deps:   deps,
		logger: log.Named("ListingUsecase"),
	}
}

// Create writes a draft, uploads the accepted images and completes the listing.
// When an upload fails the listing stays a draft and is returned together with the error;
// ResumeDraft finishes it.
func (uc *ListingUsecase) Create(ctx context.Context, user domain.User, fields domain.ListingFields, files []domain.ImageFile) (*domain.Listing, error) {
	if user.IsAnonymous() {
		return nil, domain.ErrAuthRequired
	}
	if user.Role != domain.RoleLandlord {
		return nil, fmt.Errorf("%w: only landlords can create listings", domain.ErrForbidden)
	}
	if err := fields.Validate(); err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, domain.Invalid("at least one image is required")
	}
	fields = fields.Normalize()

	accepted := AcceptImages(files)
	uc.logger.Info("Creating listing",
		zap.String("user_id", user.ID),
		zap.String("title", fields.Title),
		zap.Int("files", len(files)),
		zap.Int("accepted_images", len(accepted)))

	now := time.Now().UTC()
	listing := &domain.Listing{
		Title:         fields.Title,
		Description:   fields.Description,
		Location:      fields.Location,
		Price:         fields.Price,
		LandlordID:    user.ID,
		LandlordEmail: user.Email,
		Status:        domain.ListingStatusDraft,
		Images:        []string{},
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := uc.deps.Listings.Create(ctx, listing); err != nil {
		uc.logger.Error("Failed to write listing draft", zap.String("user_id", user.ID), zap.Error(err))
		return nil, err
	}

	if err := uc.complete(ctx, listing, accepted); err != nil {
		return listing, err
	}
	return listing, nil
}

// ResumeDraft attaches images to a draft left behind by a failed Create.
func (uc *ListingUsecase) ResumeDraft(ctx context.Context, user domain.User, listingID string, files []domain.ImageFile) (*domain.Listing, error) {
	if user.IsAnonymous() {
		return nil, domain.ErrAuthRequired
	}
	listing, err := uc.deps.Listings.FindByID(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if !listing.IsOwnedBy(user.ID) {
		uc.logger.Warn("User forbidden to resume listing draft",
			zap.String("listing_id", listingID), zap.String("owner_id", listing.LandlordID), zap.String("user_id", user.ID))
		return nil, domain.ErrForbidden
	}
	if !listing.IsDraft() {
		return nil, fmt.Errorf("%w: listing is already complete", domain.ErrConflict)
	}
	if len(files) == 0 {
		return nil, domain.Invalid("at least one image is required")
	}

	if err := uc.complete(ctx, listing, AcceptImages(files)); err != nil {
		return listing, err
	}
	return listing, nil
}

// complete runs the upload and patch phases on a draft.
func (uc *ListingUsecase) complete(ctx context.Context, listing *domain.Listing, images []domain.ImageFile) error {
	urls, err := uc.deps.Photos.UploadListingImages(ctx, listing.LandlordID, listing.ID, images)
	if err != nil {
		uc.logger.Warn("Listing left in draft after failed upload", zap.String("listing_id", listing.ID), zap.Error(err))
		return err
	}
	if err := uc.deps.Listings.AttachImages(ctx, listing.ID, urls, domain.ListingStatusComplete); err != nil {
		uc.logger.Error("Failed to attach images to listing", zap.String("listing_id", listing.ID), zap.Error(err))
		return err
	}
	listing.Images = append(listing.Images, urls...)
	listing.Status = domain.ListingStatusComplete
	listing.UpdatedAt = time.Now().UTC()

	uc.forget(ctx, listing.ID)

	event := map[string]interface{}{
		"listing_id":  listing.ID,
		"landlord_id": listing.LandlordID,
		"title":       listing.Title,
		"price":       listing.Price,
		"images":      len(listing.Images),
		"created_at":  listing.CreatedAt.Format(time.RFC3339Nano),
	}
	if err := uc.deps.Publisher.Publish(ctx, SubjectListingCreated, event); err != nil {
		uc.logger.Warn("Failed to publish listing.created event", zap.String("listing_id", listing.ID), zap.Error(err))
	}
	if listing.LandlordEmail != "" {
		if err := uc.deps.Mailer.SendListingCreatedEmail(ctx, listing.LandlordEmail, listing.Title); err != nil {
			uc.logger.Warn("Failed to send listing confirmation email", zap.String("listing_id", listing.ID), zap.Error(err))
		}
	}

	uc.logger.Info("Listing completed", zap.String("listing_id", listing.ID), zap.Int("images", len(listing.Images)))
	return nil
}

// ListAll returns every complete listing, newest first.
func (uc *ListingUsecase) ListAll(ctx context.Context) ([]*domain.Listing, error) {
	listings, err := uc.deps.Listings.Find(ctx, domain.ListingFilter{Status: domain.ListingStatusComplete})
	if err != nil {
		uc.logger.Error("Failed to list listings", zap.Error(err))
		return nil, err
	}
	return listings, nil
}

// ListByOwner returns the landlord's listings including drafts.
func (uc *ListingUsecase) ListByOwner(ctx context.Context, ownerID string) ([]*domain.Listing, error) {
	if ownerID == "" {
		return nil, domain.ErrAuthRequired
	}
	listings, err := uc.deps.Listings.Find(ctx, domain.ListingFilter{LandlordID: ownerID})
	if err != nil {
		uc.logger.Error("Failed to list listings by owner", zap.String("owner_id", ownerID), zap.Error(err))
		return nil, err
	}
	return listings, nil
}

// Get reads through the listing cache.
func (uc *ListingUsecase) Get(ctx context.Context, id string) (*domain.Listing, error) {
	if id == "" {
		return nil, domain.Invalid("listing id is required")
	}
	cached, err := uc.deps.Cache.GetListing(ctx, id)
	if err != nil {
		uc.logger.Warn("Listing cache read failed", zap.String("listing_id", id), zap.Error(err))
	}
	if cached != nil {
		return cached, nil
	}

	listing, err := uc.deps.Listings.FindByID(ctx, id)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			uc.logger.Error("Failed to get listing", zap.String("listing_id", id), zap.Error(err))
		}
		return nil, err
	}
	if err := uc.deps.Cache.SetListing(ctx, listing); err != nil {
		uc.logger.Warn("Listing cache write failed", zap.String("listing_id", id), zap.Error(err))
	}
	return listing, nil
}

// GetVisible is Get as seen by viewerID: a draft exists only for its owner.
func (uc *ListingUsecase) GetVisible(ctx context.Context, viewerID, id string) (*domain.Listing, error) {
	listing, err := uc.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if listing.IsDraft() && !listing.IsOwnedBy(viewerID) {
		uc.logger.Debug("Draft listing hidden from viewer", zap.String("listing_id", id), zap.String("viewer_id", viewerID))
		return nil, domain.ErrNotFound
	}
	return listing, nil
}

// Delete removes an owner's listing. Blob deletion is best effort with failures queued for
// retry; it never blocks removal of the record.
func (uc *ListingUsecase) Delete(ctx context.Context, user domain.User, id string) error {
	if user.IsAnonymous() {
		return domain.ErrAuthRequired
	}
	uc.logger.Info("Deleting listing", zap.String("listing_id", id), zap.String("user_id", user.ID))

	listing, err := uc.deps.Listings.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !listing.IsOwnedBy(user.ID) {
		uc.logger.Warn("User forbidden to delete listing",
			zap.String("listing_id", id), zap.String("owner_id", listing.LandlordID), zap.String("user_id", user.ID))
		return domain.ErrForbidden
	}

	released := uc.deps.Photos.ReleaseListingImages(ctx, listing)

	if err := uc.deps.Listings.Delete(ctx, id); err != nil {
		uc.logger.Error("Failed to delete listing record", zap.String("listing_id", id), zap.Error(err))
		return err
	}
	uc.deleteDependents(ctx, id)
	uc.forget(ctx, id)

	event := map[string]interface{}{
		"listing_id":     id,
		"landlord_id":    listing.LandlordID,
		"images_deleted": released.Deleted,
		"images_queued":  released.Queued,
	}
	if err := uc.deps.Publisher.Publish(ctx, SubjectListingDeleted, event); err != nil {
		uc.logger.Warn("Failed to publish listing.deleted event", zap.String("listing_id", id), zap.Error(err))
	}

	uc.logger.Info("Listing deleted",
		zap.String("listing_id", id),
		zap.Int("images_deleted", released.Deleted),
		zap.Int("images_queued", released.Queued))
	return nil
}

func (uc *ListingUsecase) deleteDependents(ctx context.Context, listingID string) {
	steps := []struct {
		name string
		run  func(context.Context, string) (int64, error)
	}{
		{"ratings", uc.deps.Ratings.DeleteByListingID},
		{"likes", uc.deps.Likes.DeleteByListingID},
		{"comments", uc.deps.Comments.DeleteByListingID},
		{"tracking", uc.deps.Tracking.DeleteByListingID},
	}
	for _, s := range steps {
		n, err := s.run(ctx, listingID)
		if err != nil {
			uc.logger.Warn("Failed to delete listing dependents",
				zap.String("listing_id", listingID), zap.String("kind", s.name), zap.Error(err))
			continue
		}
		uc.logger.Debug("Deleted listing dependents",
			zap.String("listing_id", listingID), zap.String("kind", s.name), zap.Int64("count", n))
	}
}

func (uc *ListingUsecase) forget(ctx context.Context, listingID string) {
	if err := uc.deps.Cache.DeleteListing(ctx, listingID); err != nil {
		uc.logger.Warn("Listing cache invalidation failed", zap.String("listing_id", listingID), zap.Error(err))
	}
	if err := uc.deps.RatingCache.DeleteSummary(ctx, listingID); err != nil {
		uc.logger.Warn("Rating cache invalidation failed", zap.String("listing_id", listingID), zap.Error(err))
	}
}
