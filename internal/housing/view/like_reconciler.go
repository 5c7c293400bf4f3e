package view

import (
	"context"
	"time"

	"github.com/Abdurahmanit/GroupProject/housing-service/internal/housing/domain"
	"github.com/Abdurahmanit/GroupProject/housing-service/internal/platform/logger"
	"go.uber.org/zap"
)

type LikeToggler interface {
	ToggleLike(ctx context.Context, listingID, commentID, userID string) (domain.LikeState, error)
}

// LikeOutcome reports what the viewer should end up seeing after a like toggle.
type LikeOutcome struct {
	// State is the state to display: the confirmed state, or the original one after a revert.
	State      domain.LikeState `json:"state"`
	Optimistic domain.LikeState `json:"optimistic"`
	Reverted   bool             `json:"reverted"`
}

// LikeReconciler applies a like toggle optimistically and reconciles it with the store.
type LikeReconciler struct {
	toggler LikeToggler
	timeout time.Duration
	logger  *logger.Logger
}

func NewLikeReconciler(toggler LikeToggler, timeout time.Duration, log *logger.Logger) *LikeReconciler {
	return &LikeReconciler{toggler: toggler, timeout: timeout, logger: log.Named("LikeReconciler")}
}

// Toggle flips local immediately and waits up to the confirm timeout for the write.
// On failure or timeout the outcome reverts to local and the error is returned.
func (r *LikeReconciler) Toggle(ctx context.Context, listingID, commentID, userID string, local domain.LikeState) (LikeOutcome, error) {
	outcome := LikeOutcome{State: local.Flip(), Optimistic: local.Flip()}
	if userID == "" {
		outcome.State = local
		outcome.Reverted = true
		return outcome, domain.ErrAuthRequired
	}

	confirmCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	type result struct {
		state domain.LikeState
		err   error
	}
	done := make(chan result, 1)
	go func() {
		s, err := r.toggler.ToggleLike(confirmCtx, listingID, commentID, userID)
		done <- result{state: s, err: err}
	}()

	select {
	case res := <-done:
		if res.err != nil {
			r.logger.Warn("Like toggle failed, reverting", zap.String("comment_id", commentID), zap.Error(res.err))
			outcome.State = local
			outcome.Reverted = true
			return outcome, res.err
		}
		outcome.State = res.state
		return outcome, nil
	case <-confirmCtx.Done():
		r.logger.Warn("Like toggle not confirmed in time, reverting",
			zap.String("comment_id", commentID), zap.Duration("timeout", r.timeout))
		outcome.State = local
		outcome.Reverted = true
		return outcome, domain.Remote("confirm like toggle", confirmCtx.Err())
	}
}
