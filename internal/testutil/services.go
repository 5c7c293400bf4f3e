package testutil

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Abdurahmanit/GroupProject/housing-service/internal/housing/domain"
)

// BlobBaseURL prefixes every URL handed out by BlobStore.
const BlobBaseURL = "http://blobs.test/housing/"

type blob struct {
	data        []byte
	contentType string
}

// BlobStore is an in-memory blob store. Uploads or deletes can be made to fail.
type BlobStore struct {
	mu      sync.Mutex
	objects map[string]blob
	// UploadErr, when set, fails every Upload.
	UploadErr error
	// DeleteErr fails Delete for the listed object keys.
	DeleteErr map[string]error
}

func NewBlobStore() *BlobStore {
	return &BlobStore{objects: make(map[string]blob), DeleteErr: make(map[string]error)}
}

func (b *BlobStore) Upload(_ context.Context, key string, data []byte, contentType string) (string, error) {
	if b.UploadErr != nil {
		return "", b.UploadErr
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.objects[key] = blob{data: append([]byte(nil), data...), contentType: contentType}
	return BlobBaseURL + key, nil
}

func (b *BlobStore) Delete(_ context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.DeleteErr[key]; err != nil {
		return err
	}
	delete(b.objects, key)
	return nil
}

func (b *BlobStore) ListObjects(_ context.Context, prefix string) ([]string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	keys := []string{}
	for k := range b.objects {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func (b *BlobStore) ObjectKeyFromURL(rawURL string) (string, error) {
	if !strings.HasPrefix(rawURL, BlobBaseURL) {
		return "", fmt.Errorf("url %q is outside the bucket", rawURL)
	}
	return strings.TrimPrefix(rawURL, BlobBaseURL), nil
}

// Keys lists every stored object key in order.
func (b *BlobStore) Keys() []string {
	keys, _ := b.ListObjects(context.Background(), "")
	return keys
}

// ContentType of a stored object, empty when absent.
func (b *BlobStore) ContentType(key string) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.objects[key].contentType
}

// Put stores an object directly, bypassing Upload.
func (b *BlobStore) Put(key string, data []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.objects[key] = blob{data: data}
}

// Event is one recorded publish.
type Event struct {
	Subject string
	Data    interface{}
}

// EventRecorder captures published events.
type EventRecorder struct {
	mu     sync.Mutex
	events []Event
	Err    error
}

func (r *EventRecorder) Publish(_ context.Context, subject string, data interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, Event{Subject: subject, Data: data})
	return r.Err
}

func (r *EventRecorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Subjects returns the subjects in publish order.
func (r *EventRecorder) Subjects() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, e := range r.events {
		out[i] = e.Subject
	}
	return out
}

// ListingCache is an in-memory listing cache.
type ListingCache struct {
	mu    sync.Mutex
	items map[string]domain.Listing
}

func NewListingCache() *ListingCache {
	return &ListingCache{items: make(map[string]domain.Listing)}
}

func (c *ListingCache) GetListing(_ context.Context, id string) (*domain.Listing, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	l, ok := c.items[id]
	if !ok {
		return nil, nil
	}
	return copyListing(&l), nil
}

func (c *ListingCache) SetListing(_ context.Context, l *domain.Listing) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[l.ID] = *copyListing(l)
	return nil
}

func (c *ListingCache) DeleteListing(_ context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, id)
	return nil
}

func (c *ListingCache) Has(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.items[id]
	return ok
}

// RatingCache is an in-memory rating summary cache.
type RatingCache struct {
	mu    sync.Mutex
	items map[string]domain.RatingSummary
}

func NewRatingCache() *RatingCache {
	return &RatingCache{items: make(map[string]domain.RatingSummary)}
}

func (c *RatingCache) GetSummary(_ context.Context, id string) (*domain.RatingSummary, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.items[id]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (c *RatingCache) SetSummary(_ context.Context, id string, s domain.RatingSummary) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[id] = s
	return nil
}

func (c *RatingCache) DeleteSummary(_ context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, id)
	return nil
}

func (c *RatingCache) Has(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.items[id]
	return ok
}

// SessionStore is an in-memory session registry. TTLs are recorded, not enforced.
type SessionStore struct {
	mu   sync.Mutex
	ttls map[string]time.Duration
}

func NewSessionStore() *SessionStore {
	return &SessionStore{ttls: make(map[string]time.Duration)}
}

func (s *SessionStore) Save(_ context.Context, sessionID, _ string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ttls[sessionID] = ttl
	return nil
}

func (s *SessionStore) Exists(_ context.Context, sessionID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.ttls[sessionID]
	return ok, nil
}

func (s *SessionStore) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.ttls, sessionID)
	return nil
}

func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.ttls)
}

// SentMail is one recorded confirmation email.
type SentMail struct {
	To    string
	Title string
}

// MailRecorder captures confirmation emails.
type MailRecorder struct {
	mu   sync.Mutex
	sent []SentMail
	Err  error
}

func (m *MailRecorder) SendListingCreatedEmail(_ context.Context, to, title string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.sent = append(m.sent, SentMail{To: to, Title: title})
	return nil
}

func (m *MailRecorder) Sent() []SentMail {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]SentMail(nil), m.sent...)
}
