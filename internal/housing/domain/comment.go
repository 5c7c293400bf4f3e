package domain

import "time"

// MaxCommentLength is measured in runes after sanitising.
const MaxCommentLength = 2000

type Comment struct {
	ID        string
	ListingID string
	UserID    string
	UserEmail string
	Text      string
	CreatedAt time.Time
}

func (c *Comment) IsAuthoredBy(userID string) bool {
	return userID != "" && c.UserID == userID
}

// CommentView is a comment as seen by a particular viewer.
type CommentView struct {
	Comment
	LikeCount     int64
	LikedByViewer bool
}

// LikeState is the like count of a comment and whether the acting user is among the likers.
type LikeState struct {
	Count int64 `json:"count"`
	Liked bool  `json:"liked"`
}

// Flip returns the state after one toggle by the same user.
func (s LikeState) Flip() LikeState {
	if s.Liked {
		if s.Count > 0 {
			s.Count--
		}
		s.Liked = false
		return s
	}
	s.Count++
	s.Liked = true
	return s
}
