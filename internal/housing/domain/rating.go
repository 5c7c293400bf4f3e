package domain

import (
	"encoding/json"
	"math"
	"strconv"
	"time"
)

const (
	MinRating = 1
	MaxRating = 5
)

// NoRatingsDisplay is shown instead of an average when a listing has no ratings.
const NoRatingsDisplay = "N/A"

// Rating is unique per (listing, user).
type Rating struct {
	ListingID string
	UserID    string
	Value     int
	CreatedAt time.Time
	UpdatedAt time.Time
}

func ValidateRating(v int) error {
	if v < MinRating || v > MaxRating {
		return Invalid("rating must be between %d and %d", MinRating, MaxRating)
	}
	return nil
}

// RatingSummary is the rounded mean and count of a listing's ratings.
// A zero Count is the "no data" sentinel, distinct from any real average.
type RatingSummary struct {
	Average float64
	Count   int
}

// NewRatingSummary rounds sum/count to one decimal, half away from zero.
func NewRatingSummary(sum float64, count int) RatingSummary {
	if count <= 0 {
		return RatingSummary{}
	}
	mean := sum / float64(count)
	return RatingSummary{
		Average: math.Round(mean*10) / 10,
		Count:   count,
	}
}

func (s RatingSummary) HasData() bool {
	return s.Count > 0
}

// String renders the average with one decimal, or N/A.
func (s RatingSummary) String() string {
	if !s.HasData() {
		return NoRatingsDisplay
	}
	return strconv.FormatFloat(s.Average, 'f', 1, 64)
}

func (s RatingSummary) MarshalJSON() ([]byte, error) {
	out := struct {
		Average *float64 `json:"average"`
		Display string   `json:"display"`
		Count   int      `json:"count"`
	}{Display: s.String(), Count: s.Count}
	if s.HasData() {
		avg := s.Average
		out.Average = &avg
	}
	return json.Marshal(out)
}
