// Package testutil provides in-memory doubles of the housing ports and image fixtures for tests.
package testutil

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/Abdurahmanit/GroupProject/housing-service/internal/housing/domain"
)

type idSeq struct {
	mu sync.Mutex
	n  int
}

// next returns ObjectID-shaped hex ids in increasing order.
func (s *idSeq) next() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	return fmt.Sprintf("%024x", s.n)
}

func copyListing(l *domain.Listing) *domain.Listing {
	c := *l
	c.Images = append([]string(nil), l.Images...)
	return &c
}

// ListingStore is an in-memory domain.ListingRepository.
type ListingStore struct {
	mu    sync.Mutex
	ids   idSeq
	items map[string]*domain.Listing
	// CreateErr, when set, fails every Create.
	CreateErr error
}

func NewListingStore() *ListingStore {
	return &ListingStore{items: make(map[string]*domain.Listing)}
}

func (s *ListingStore) Create(_ context.Context, l *domain.Listing) error {
	if s.CreateErr != nil {
		return s.CreateErr
	}
	l.ID = s.ids.next()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[l.ID] = copyListing(l)
	return nil
}

func (s *ListingStore) FindByID(_ context.Context, id string) (*domain.Listing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.items[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return copyListing(l), nil
}

// Find returns matches newest first; ties keep insertion order reversed.
func (s *ListingStore) Find(_ context.Context, f domain.ListingFilter) ([]*domain.Listing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*domain.Listing, 0, len(s.items))
	for _, l := range s.items {
		if f.LandlordID != "" && l.LandlordID != f.LandlordID {
			continue
		}
		if f.Status != "" && l.Status != f.Status {
			continue
		}
		out = append(out, copyListing(l))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (s *ListingStore) AttachImages(_ context.Context, id string, urls []string, status domain.ListingStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.items[id]
	if !ok {
		return domain.ErrNotFound
	}
	l.Images = append(l.Images, urls...)
	l.Status = status
	l.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *ListingStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.items, id)
	return nil
}

// Len is the number of stored listings.
func (s *ListingStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// TrackingStore is an in-memory domain.TrackingRepository.
type TrackingStore struct {
	mu    sync.Mutex
	items map[[2]string]domain.TrackedListing
}

func NewTrackingStore() *TrackingStore {
	return &TrackingStore{items: make(map[[2]string]domain.TrackedListing)}
}

func (s *TrackingStore) Add(_ context.Context, t *domain.TrackedListing) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := [2]string{t.UserID, t.ListingID}
	if _, ok := s.items[key]; !ok {
		s.items[key] = *t
	}
	return nil
}

func (s *TrackingStore) Remove(_ context.Context, userID, listingID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := [2]string{userID, listingID}
	_, ok := s.items[key]
	delete(s.items, key)
	return ok, nil
}

func (s *TrackingStore) Exists(_ context.Context, userID, listingID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.items[[2]string{userID, listingID}]
	return ok, nil
}

func (s *TrackingStore) FindByUserID(_ context.Context, userID string) ([]*domain.TrackedListing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []*domain.TrackedListing{}
	for k, v := range s.items {
		if k[0] == userID {
			t := v
			out = append(out, &t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SavedAt.After(out[j].SavedAt) })
	return out, nil
}

func (s *TrackingStore) DeleteByListingID(_ context.Context, listingID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for k := range s.items {
		if k[1] == listingID {
			delete(s.items, k)
			n++
		}
	}
	return n, nil
}

// RatingStore is an in-memory domain.RatingRepository.
type RatingStore struct {
	mu    sync.Mutex
	items map[[2]string]domain.Rating
	// SummaryErr fails Summary for the listed listing ids.
	SummaryErr map[string]error
}

func NewRatingStore() *RatingStore {
	return &RatingStore{items: make(map[[2]string]domain.Rating), SummaryErr: make(map[string]error)}
}

func (s *RatingStore) Upsert(_ context.Context, r *domain.Rating) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := [2]string{r.ListingID, r.UserID}
	stored := *r
	if prev, ok := s.items[key]; ok {
		stored.CreatedAt = prev.CreatedAt
	}
	s.items[key] = stored
	return nil
}

func (s *RatingStore) FindOne(_ context.Context, listingID, userID string) (*domain.Rating, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.items[[2]string{listingID, userID}]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &r, nil
}

func (s *RatingStore) Summary(_ context.Context, listingID string) (float64, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.SummaryErr[listingID]; err != nil {
		return 0, 0, err
	}
	var sum float64
	var count int
	for k, r := range s.items {
		if k[0] == listingID {
			sum += float64(r.Value)
			count++
		}
	}
	return sum, count, nil
}

func (s *RatingStore) DeleteByListingID(_ context.Context, listingID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for k := range s.items {
		if k[0] == listingID {
			delete(s.items, k)
			n++
		}
	}
	return n, nil
}

// CommentStore is an in-memory domain.CommentRepository.
type CommentStore struct {
	mu    sync.Mutex
	ids   idSeq
	items map[string]domain.Comment
}

func NewCommentStore() *CommentStore {
	return &CommentStore{items: make(map[string]domain.Comment)}
}

func (s *CommentStore) Create(_ context.Context, c *domain.Comment) error {
	c.ID = s.ids.next()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[c.ID] = *c
	return nil
}

func (s *CommentStore) FindByID(_ context.Context, id string) (*domain.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.items[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &c, nil
}

func (s *CommentStore) FindByListingID(_ context.Context, listingID string) ([]*domain.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []*domain.Comment{}
	for _, c := range s.items {
		if c.ListingID == listingID {
			cc := c
			out = append(out, &cc)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *CommentStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.items, id)
	return nil
}

func (s *CommentStore) DeleteByListingID(_ context.Context, listingID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for id, c := range s.items {
		if c.ListingID == listingID {
			delete(s.items, id)
			n++
		}
	}
	return n, nil
}

type like struct {
	listingID string
	likedAt   time.Time
}

// LikeStore is an in-memory domain.LikeRepository keyed by (comment, user).
type LikeStore struct {
	mu    sync.Mutex
	items map[[2]string]like
	// AddErr, when set, fails every Add.
	AddErr error
}

func NewLikeStore() *LikeStore {
	return &LikeStore{items: make(map[[2]string]like)}
}

func (s *LikeStore) Add(_ context.Context, listingID, commentID, userID string) error {
	if s.AddErr != nil {
		return s.AddErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	key := [2]string{commentID, userID}
	if _, ok := s.items[key]; !ok {
		s.items[key] = like{listingID: listingID, likedAt: time.Now().UTC()}
	}
	return nil
}

func (s *LikeStore) Remove(_ context.Context, commentID, userID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := [2]string{commentID, userID}
	_, ok := s.items[key]
	delete(s.items, key)
	return ok, nil
}

func (s *LikeStore) HasLiked(_ context.Context, commentID, userID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.items[[2]string{commentID, userID}]
	return ok, nil
}

func (s *LikeStore) Count(_ context.Context, commentID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for k := range s.items {
		if k[0] == commentID {
			n++
		}
	}
	return n, nil
}

func (s *LikeStore) CountByComments(_ context.Context, commentIDs []string) (map[string]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]int64, len(commentIDs))
	for _, id := range commentIDs {
		for k := range s.items {
			if k[0] == id {
				out[id]++
			}
		}
	}
	return out, nil
}

func (s *LikeStore) LikedByUser(_ context.Context, commentIDs []string, userID string) (map[string]bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]bool)
	for _, id := range commentIDs {
		if _, ok := s.items[[2]string{id, userID}]; ok {
			out[id] = true
		}
	}
	return out, nil
}

func (s *LikeStore) DeleteByCommentID(_ context.Context, commentID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for k := range s.items {
		if k[0] == commentID {
			delete(s.items, k)
			n++
		}
	}
	return n, nil
}

func (s *LikeStore) DeleteByListingID(_ context.Context, listingID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for k, v := range s.items {
		if v.listingID == listingID {
			delete(s.items, k)
			n++
		}
	}
	return n, nil
}

// UserStore is an in-memory domain.UserRepository with unique emails.
type UserStore struct {
	mu    sync.Mutex
	ids   idSeq
	items map[string]domain.User
}

func NewUserStore() *UserStore {
	return &UserStore{items: make(map[string]domain.User)}
}

func (s *UserStore) Create(_ context.Context, u *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.items {
		if existing.Email == u.Email {
			return fmt.Errorf("%w: email already registered", domain.ErrConflict)
		}
	}
	u.ID = s.ids.next()
	s.items[u.ID] = *u
	return nil
}

func (s *UserStore) FindByID(_ context.Context, id string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.items[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &u, nil
}

func (s *UserStore) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.items {
		if u.Email == email {
			uu := u
			return &uu, nil
		}
	}
	return nil, domain.ErrNotFound
}

// CleanupQueue is an in-memory domain.BlobCleanupQueue.
type CleanupQueue struct {
	mu    sync.Mutex
	items map[string]domain.BlobCleanupTask
	// Lease is added to NextAttemptAt when a task is claimed.
	Lease time.Duration
}

func NewCleanupQueue() *CleanupQueue {
	return &CleanupQueue{items: make(map[string]domain.BlobCleanupTask), Lease: 5 * time.Minute}
}

func (q *CleanupQueue) Enqueue(_ context.Context, t *domain.BlobCleanupTask) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items[t.ID] = *t
	return nil
}

func (q *CleanupQueue) ClaimDue(_ context.Context, now time.Time, limit int) ([]*domain.BlobCleanupTask, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	due := []*domain.BlobCleanupTask{}
	for _, t := range q.items {
		if !t.NextAttemptAt.After(now) {
			tt := t
			due = append(due, &tt)
		}
	}
	sort.Slice(due, func(i, j int) bool { return due[i].NextAttemptAt.Before(due[j].NextAttemptAt) })
	if limit > 0 && len(due) > limit {
		due = due[:limit]
	}
	for _, t := range due {
		stored := q.items[t.ID]
		stored.NextAttemptAt = now.Add(q.Lease)
		q.items[t.ID] = stored
	}
	return due, nil
}

func (q *CleanupQueue) Reschedule(_ context.Context, id string, attempts int, next time.Time, lastErr string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	t, ok := q.items[id]
	if !ok {
		return domain.ErrNotFound
	}
	t.Attempts = attempts
	t.NextAttemptAt = next
	t.LastError = lastErr
	q.items[id] = t
	return nil
}

func (q *CleanupQueue) Complete(_ context.Context, id string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	delete(q.items, id)
	return nil
}

// Tasks returns a snapshot of the queued tasks ordered by object key.
func (q *CleanupQueue) Tasks() []domain.BlobCleanupTask {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]domain.BlobCleanupTask, 0, len(q.items))
	for _, t := range q.items {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ObjectKey < out[j].ObjectKey })
	return out
}
