package domain

import (
	"strings"
	"time"
)

// ListingStatus tracks the two-phase create: a listing is a draft until its images are attached.
type ListingStatus string

const (
	ListingStatusDraft    ListingStatus = "draft"
	ListingStatusComplete ListingStatus = "complete"
)

type Listing struct {
	ID            string
	Title         string
	Description   string
	Location      string
	Price         float64
	LandlordID    string
	LandlordEmail string
	Status        ListingStatus
	Images        []string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (l *Listing) IsOwnedBy(userID string) bool {
	return userID != "" && l.LandlordID == userID
}

func (l *Listing) IsDraft() bool {
	return l.Status == ListingStatusDraft
}

// ListingFields is the user-editable part of a listing.
type ListingFields struct {
	Title       string
	Description string
	Location    string
	Price       float64
}

// Normalize trims surrounding whitespace from the text fields.
func (f ListingFields) Normalize() ListingFields {
	f.Title = strings.TrimSpace(f.Title)
	f.Description = strings.TrimSpace(f.Description)
	f.Location = strings.TrimSpace(f.Location)
	return f
}

// Validate requires every field to be present.
func (f ListingFields) Validate() error {
	f = f.Normalize()
	switch {
	case f.Title == "":
		return Invalid("title is required")
	case f.Description == "":
		return Invalid("description is required")
	case f.Location == "":
		return Invalid("location is required")
	case f.Price <= 0:
		return Invalid("price must be a positive number")
	}
	return nil
}

// ListingFilter narrows listing queries. Zero values mean "any".
type ListingFilter struct {
	LandlordID string
	Status     ListingStatus
}

// ImageFile is an uploaded file before it reaches the blob store.
type ImageFile struct {
	Filename    string
	ContentType string
	Data        []byte
}
