package domain

import "time"

// TrackedListing marks that a user saved a listing. Existence is membership.
type TrackedListing struct {
	UserID    string
	ListingID string
	SavedAt   time.Time
}

// BlobCleanupTask is a queued deletion of an object that could not be removed inline.
type BlobCleanupTask struct {
	ID            string
	ObjectKey     string
	ListingID     string
	Attempts      int
	NextAttemptAt time.Time
	LastError     string
	CreatedAt     time.Time
}
