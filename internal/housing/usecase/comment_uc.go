package usecase

import (
	"context"
	"errors"
	"html"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Abdurahmanit/GroupProject/housing-service/internal/housing/domain"
	"github.com/Abdurahmanit/GroupProject/housing-service/internal/platform/logger"
	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"
)

// CommentUsecase handles listing comments and their likes.
type CommentUsecase struct {
	comments  domain.CommentRepository
	likes     domain.LikeRepository
	listings  ListingGetter
	publisher EventPublisher
	policy    *bluemonday.Policy
	logger    *logger.Logger
}

func NewCommentUsecase(comments domain.CommentRepository, likes domain.LikeRepository, listings ListingGetter, publisher EventPublisher, log *logger.Logger) *CommentUsecase {
	return &CommentUsecase{
		comments:  comments,
		likes:     likes,
		listings:  listings,
		publisher: publisher,
		policy:    bluemonday.StrictPolicy(),
		logger:    log.Named("CommentUsecase"),
	}
}

// Add appends a comment. Markup is stripped and the remaining text stored unescaped;
// the length limit applies to that text.
func (uc *CommentUsecase) Add(ctx context.Context, listingID string, author domain.User, text string) (*domain.Comment, error) {
	if author.IsAnonymous() {
		return nil, domain.ErrAuthRequired
	}
	clean := uc.plainText(text)
	if clean == "" {
		return nil, domain.Invalid("comment text is required")
	}
	if utf8.RuneCountInString(clean) > domain.MaxCommentLength {
		return nil, domain.Invalid("comment is longer than %d characters", domain.MaxCommentLength)
	}
	if _, err := uc.listings.GetVisible(ctx, author.ID, listingID); err != nil {
		return nil, err
	}

	comment := &domain.Comment{
		ListingID: listingID,
		UserID:    author.ID,
		UserEmail: author.Email,
		Text:      clean,
		CreatedAt: time.Now().UTC(),
	}
	if err := uc.comments.Create(ctx, comment); err != nil {
		uc.logger.Error("Failed to store comment", zap.String("listing_id", listingID), zap.String("user_id", author.ID), zap.Error(err))
		return nil, err
	}

	event := map[string]interface{}{
		"comment_id": comment.ID,
		"listing_id": listingID,
		"user_id":    author.ID,
		"created_at": comment.CreatedAt.Format(time.RFC3339Nano),
	}
	if err := uc.publisher.Publish(ctx, SubjectCommentAdded, event); err != nil {
		uc.logger.Warn("Failed to publish comment.added event", zap.String("comment_id", comment.ID), zap.Error(err))
	}
	uc.logger.Info("Comment added", zap.String("comment_id", comment.ID), zap.String("listing_id", listingID))
	return comment, nil
}

// plainText drops markup. The policy escapes what it keeps, so the result is unescaped
// back to the characters the author typed.
func (uc *CommentUsecase) plainText(text string) string {
	return strings.TrimSpace(html.UnescapeString(uc.policy.Sanitize(text)))
}

// Remove deletes the comment when requesterID is its author and reports whether it did.
// Any other request, including one for a comment that is already gone, is silently ignored.
func (uc *CommentUsecase) Remove(ctx context.Context, listingID, commentID, requesterID string) (bool, error) {
	comment, err := uc.comments.FindByID(ctx, commentID)
	if errors.Is(err, domain.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		uc.logger.Error("Failed to load comment for removal", zap.String("comment_id", commentID), zap.Error(err))
		return false, err
	}
	if comment.ListingID != listingID || !comment.IsAuthoredBy(requesterID) {
		uc.logger.Info("Comment removal refused",
			zap.String("comment_id", commentID),
			zap.String("author_id", comment.UserID),
			zap.String("requester_id", requesterID))
		return false, nil
	}

	err = uc.comments.Delete(ctx, commentID)
	if errors.Is(err, domain.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		uc.logger.Error("Failed to delete comment", zap.String("comment_id", commentID), zap.Error(err))
		return false, err
	}
	if _, err := uc.likes.DeleteByCommentID(ctx, commentID); err != nil {
		uc.logger.Warn("Failed to delete likes of removed comment", zap.String("comment_id", commentID), zap.Error(err))
	}

	event := map[string]interface{}{"comment_id": commentID, "listing_id": listingID, "user_id": requesterID}
	if err := uc.publisher.Publish(ctx, SubjectCommentRemoved, event); err != nil {
		uc.logger.Warn("Failed to publish comment.removed event", zap.String("comment_id", commentID), zap.Error(err))
	}
	uc.logger.Info("Comment removed", zap.String("comment_id", commentID), zap.String("listing_id", listingID))
	return true, nil
}

// List returns the listing's comments in insertion order with like counts and the viewer's likes.
func (uc *CommentUsecase) List(ctx context.Context, listingID, viewerID string) ([]domain.CommentView, error) {
	comments, err := uc.comments.FindByListingID(ctx, listingID)
	if err != nil {
		uc.logger.Error("Failed to list comments", zap.String("listing_id", listingID), zap.Error(err))
		return nil, err
	}
	if len(comments) == 0 {
		return []domain.CommentView{}, nil
	}

	ids := make([]string, len(comments))
	for i, c := range comments {
		ids[i] = c.ID
	}
	counts, err := uc.likes.CountByComments(ctx, ids)
	if err != nil {
		uc.logger.Error("Failed to count comment likes", zap.String("listing_id", listingID), zap.Error(err))
		return nil, err
	}
	liked := map[string]bool{}
	if viewerID != "" {
		liked, err = uc.likes.LikedByUser(ctx, ids, viewerID)
		if err != nil {
			uc.logger.Error("Failed to load viewer likes", zap.String("listing_id", listingID), zap.Error(err))
			return nil, err
		}
	}

	views := make([]domain.CommentView, len(comments))
	for i, c := range comments {
		views[i] = domain.CommentView{
			Comment:       *c,
			LikeCount:     counts[c.ID],
			LikedByViewer: liked[c.ID],
		}
	}
	return views, nil
}

// ToggleLike adds or removes the user's like and returns the stored state.
func (uc *CommentUsecase) ToggleLike(ctx context.Context, listingID, commentID, userID string) (domain.LikeState, error) {
	if userID == "" {
		return domain.LikeState{}, domain.ErrAuthRequired
	}
	comment, err := uc.comments.FindByID(ctx, commentID)
	if err != nil {
		return domain.LikeState{}, err
	}
	if comment.ListingID != listingID {
		return domain.LikeState{}, domain.ErrNotFound
	}

	liked, err := uc.likes.HasLiked(ctx, commentID, userID)
	if err != nil {
		return domain.LikeState{}, err
	}
	if liked {
		if _, err := uc.likes.Remove(ctx, commentID, userID); err != nil {
			uc.logger.Error("Failed to remove like", zap.String("comment_id", commentID), zap.String("user_id", userID), zap.Error(err))
			return domain.LikeState{}, err
		}
	} else {
		if err := uc.likes.Add(ctx, listingID, commentID, userID); err != nil {
			uc.logger.Error("Failed to add like", zap.String("comment_id", commentID), zap.String("user_id", userID), zap.Error(err))
			return domain.LikeState{}, err
		}
	}

	count, err := uc.likes.Count(ctx, commentID)
	if err != nil {
		return domain.LikeState{}, err
	}
	state := domain.LikeState{Count: count, Liked: !liked}

	event := map[string]interface{}{"comment_id": commentID, "listing_id": listingID, "user_id": userID, "liked": state.Liked}
	if err := uc.publisher.Publish(ctx, SubjectCommentLiked, event); err != nil {
		uc.logger.Warn("Failed to publish comment.like_toggled event", zap.String("comment_id", commentID), zap.Error(err))
	}
	return state, nil
}
