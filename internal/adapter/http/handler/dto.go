package handler

import (
	"time"

	"github.com/Abdurahmanit/GroupProject/housing-service/internal/housing/domain"
	"github.com/Abdurahmanit/GroupProject/housing-service/internal/housing/view"
)

type userResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

func toUserResponse(u *domain.User) userResponse {
	return userResponse{ID: u.ID, Email: u.Email, Role: string(u.Role), CreatedAt: u.CreatedAt}
}

type listingResponse struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Location      string    `json:"location"`
	Price         float64   `json:"price"`
	LandlordID    string    `json:"landlord_id"`
	LandlordEmail string    `json:"landlord_email"`
	Status        string    `json:"status"`
	Images        []string  `json:"images"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func toListingResponse(l *domain.Listing) listingResponse {
	images := l.Images
	if images == nil {
		images = []string{}
	}
	return listingResponse{
		ID:            l.ID,
		Title:         l.Title,
		Description:   l.Description,
		Location:      l.Location,
		Price:         l.Price,
		LandlordID:    l.LandlordID,
		LandlordEmail: l.LandlordEmail,
		Status:        string(l.Status),
		Images:        images,
		CreatedAt:     l.CreatedAt,
		UpdatedAt:     l.UpdatedAt,
	}
}

type cardResponse struct {
	listingResponse
	Rating domain.RatingSummary `json:"rating"`
}

func toCards(cards []view.ListingCard) []cardResponse {
	out := make([]cardResponse, 0, len(cards))
	for _, c := range cards {
		out = append(out, cardResponse{listingResponse: toListingResponse(c.Listing), Rating: c.Rating})
	}
	return out
}

type commentResponse struct {
	ID            string    `json:"id"`
	ListingID     string    `json:"listing_id"`
	UserID        string    `json:"user_id"`
	UserEmail     string    `json:"user_email"`
	Text          string    `json:"text"`
	CreatedAt     time.Time `json:"created_at"`
	LikeCount     int64     `json:"like_count"`
	LikedByViewer bool      `json:"liked_by_viewer"`
	// CanDelete marks the viewer's own comments.
	CanDelete bool `json:"can_delete"`
}

func toCommentResponse(c domain.CommentView, viewerID string) commentResponse {
	return commentResponse{
		ID:            c.ID,
		ListingID:     c.ListingID,
		UserID:        c.UserID,
		UserEmail:     c.UserEmail,
		Text:          c.Text,
		CreatedAt:     c.CreatedAt,
		LikeCount:     c.LikeCount,
		LikedByViewer: c.LikedByViewer,
		CanDelete:     c.IsAuthoredBy(viewerID),
	}
}

func toCommentResponses(views []domain.CommentView, viewerID string) []commentResponse {
	out := make([]commentResponse, 0, len(views))
	for _, c := range views {
		out = append(out, toCommentResponse(c, viewerID))
	}
	return out
}

type carouselResponse struct {
	Images  []string `json:"images"`
	Index   int      `json:"index"`
	Current string   `json:"current,omitempty"`
}

type detailResponse struct {
	Listing      listingResponse      `json:"listing"`
	Rating       domain.RatingSummary `json:"rating"`
	ViewerRating *int                 `json:"viewer_rating"`
	Tracked      bool                 `json:"tracked"`
	Comments     []commentResponse    `json:"comments"`
	Carousel     carouselResponse     `json:"carousel"`
}

func toDetailResponse(d *view.ListingDetail, viewerID string) detailResponse {
	resp := detailResponse{
		Listing:  toListingResponse(d.Listing),
		Rating:   d.Rating,
		Tracked:  d.Tracked,
		Comments: toCommentResponses(d.Comments, viewerID),
		Carousel: carouselResponse{Images: d.Carousel.Images(), Index: d.Carousel.Index()},
	}
	if resp.Carousel.Images == nil {
		resp.Carousel.Images = []string{}
	}
	if cur, ok := d.Carousel.Current(); ok {
		resp.Carousel.Current = cur
	}
	if d.ViewerRating > 0 {
		v := d.ViewerRating
		resp.ViewerRating = &v
	}
	return resp
}

type dashboardResponse struct {
	Role     string         `json:"role"`
	Listings []cardResponse `json:"listings"`
}

func toDashboardResponse(d *view.Dashboard) dashboardResponse {
	return dashboardResponse{Role: string(d.Role), Listings: toCards(d.Listings)}
}
