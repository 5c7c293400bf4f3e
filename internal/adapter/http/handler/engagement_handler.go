package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/Abdurahmanit/GroupProject/housing-service/internal/housing/domain"
	"github.com/Abdurahmanit/GroupProject/housing-service/internal/housing/session"
	"github.com/Abdurahmanit/GroupProject/housing-service/internal/housing/view"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type trackResponse struct {
	ListingID string `json:"listing_id"`
	Tracked   bool   `json:"tracked"`
}

type rateRequest struct {
	Rating int `json:"rating"`
}

type ratingResponse struct {
	Rating       domain.RatingSummary `json:"rating"`
	ViewerRating *int                 `json:"viewer_rating"`
}

type commentRequest struct {
	Text string `json:"text"`
}

type likeErrorResponse struct {
	Error   string           `json:"error"`
	Outcome view.LikeOutcome `json:"outcome"`
}

func (h *Handler) TrackStatus(w http.ResponseWriter, r *http.Request) {
	listingID := chi.URLParam(r, "id")
	tracked, err := h.Tracking.IsTracked(r.Context(), session.UserID(r.Context()), listingID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, trackResponse{ListingID: listingID, Tracked: tracked})
}

func (h *Handler) ToggleTrack(w http.ResponseWriter, r *http.Request) {
	listingID := chi.URLParam(r, "id")
	tracked, err := h.Tracking.Toggle(r.Context(), session.UserID(r.Context()), listingID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	h.Metrics.TrackingToggledTotal.WithLabelValues(strconv.FormatBool(tracked)).Inc()
	writeJSON(w, http.StatusOK, trackResponse{ListingID: listingID, Tracked: tracked})
}

func (h *Handler) GetRating(w http.ResponseWriter, r *http.Request) {
	listingID := chi.URLParam(r, "id")
	summary, err := h.Ratings.Average(r.Context(), listingID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	resp := ratingResponse{Rating: summary}
	if value, ok, err := h.Ratings.UserRating(r.Context(), listingID, session.UserID(r.Context())); err == nil && ok {
		resp.ViewerRating = &value
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) SubmitRating(w http.ResponseWriter, r *http.Request) {
	var req rateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	listingID := chi.URLParam(r, "id")
	summary, err := h.Ratings.Submit(r.Context(), listingID, session.UserID(r.Context()), req.Rating)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	h.Metrics.RatingsSubmittedTotal.Inc()
	v := req.Rating
	writeJSON(w, http.StatusOK, ratingResponse{Rating: summary, ViewerRating: &v})
}

func (h *Handler) ListComments(w http.ResponseWriter, r *http.Request) {
	viewerID := session.UserID(r.Context())
	comments, err := h.Comments.List(r.Context(), chi.URLParam(r, "id"), viewerID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toCommentResponses(comments, viewerID))
}

func (h *Handler) AddComment(w http.ResponseWriter, r *http.Request) {
	user, err := session.Require(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	var req commentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	c, err := h.Comments.Add(r.Context(), chi.URLParam(r, "id"), user, req.Text)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	h.Metrics.CommentsAddedTotal.Inc()
	writeJSON(w, http.StatusCreated, toCommentResponse(domain.CommentView{Comment: *c}, user.ID))
}

// RemoveComment answers 204 whether or not the requester wrote the comment.
func (h *Handler) RemoveComment(w http.ResponseWriter, r *http.Request) {
	user, err := session.Require(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	removed, err := h.Comments.Remove(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "cid"), user.ID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if removed {
		h.Metrics.CommentsRemovedTotal.Inc()
	}
	w.WriteHeader(http.StatusNoContent)
}

// ToggleLike accepts the client's displayed state as an optional {count, liked} body
// and returns the reconciled outcome, including after a revert.
func (h *Handler) ToggleLike(w http.ResponseWriter, r *http.Request) {
	var local domain.LikeState
	body, err := io.ReadAll(io.LimitReader(r.Body, 4<<10))
	if err != nil {
		writeError(w, h.logger, domain.Invalid("unreadable request body"))
		return
	}
	if len(bytes.TrimSpace(body)) > 0 {
		if err := json.Unmarshal(body, &local); err != nil {
			writeError(w, h.logger, domain.Invalid("invalid like state: %v", err))
			return
		}
	}

	outcome, err := h.Likes.Toggle(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "cid"), session.UserID(r.Context()), local)
	if err != nil {
		status := StatusFor(err)
		msg := err.Error()
		if status >= http.StatusInternalServerError {
			h.logger.Error("Like toggle failed", zap.String("comment_id", chi.URLParam(r, "cid")), zap.Error(err))
			msg = http.StatusText(status)
		}
		writeJSON(w, status, likeErrorResponse{Error: msg, Outcome: outcome})
		return
	}
	h.Metrics.LikesToggledTotal.WithLabelValues(strconv.FormatBool(outcome.State.Liked)).Inc()
	writeJSON(w, http.StatusOK, outcome)
}
