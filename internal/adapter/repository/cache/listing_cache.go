package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Abdurahmanit/GroupProject/housing-service/internal/housing/domain"
	"github.com/redis/go-redis/v9"
)

const (
	listingKeyPrefix = "listing:"
	ListingTTL       = 1 * time.Hour
)

// NewClient connects to Redis and pings it.
func NewClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return client, nil
}

type cachedListing struct {
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

type ListingCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewListingCache(client *redis.Client) *ListingCache {
	return &ListingCache{client: client, ttl: ListingTTL}
}

func (c *ListingCache) GetListing(ctx context.Context, id string) (*domain.Listing, error) {
	data, err := c.client.Get(ctx, listingKeyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, domain.Remote("cache get listing", err)
	}
	var cl cachedListing
	if err := json.Unmarshal(data, &cl); err != nil {
		return nil, fmt.Errorf("decode cached listing %s: %w", id, err)
	}
	images := cl.Images
	if images == nil {
		images = []string{}
	}
	return &domain.Listing{
		ID:            cl.ID,
		Title:         cl.Title,
		Description:   cl.Description,
		Location:      cl.Location,
		Price:         cl.Price,
		LandlordID:    cl.LandlordID,
		LandlordEmail: cl.LandlordEmail,
		Status:        domain.ListingStatus(cl.Status),
		Images:        images,
		CreatedAt:     cl.CreatedAt,
		UpdatedAt:     cl.UpdatedAt,
	}, nil
}

func (c *ListingCache) SetListing(ctx context.Context, l *domain.Listing) error {
	data, err := json.Marshal(cachedListing{
		ID:            l.ID,
		Title:         l.Title,
		Description:   l.Description,
		Location:      l.Location,
		Price:         l.Price,
		LandlordID:    l.LandlordID,
		LandlordEmail: l.LandlordEmail,
		Status:        string(l.Status),
		Images:        l.Images,
		CreatedAt:     l.CreatedAt,
		UpdatedAt:     l.UpdatedAt,
	})
	if err != nil {
		return err
	}
	if err := c.client.Set(ctx, listingKeyPrefix+l.ID, data, c.ttl).Err(); err != nil {
		return domain.Remote("cache set listing", err)
	}
	return nil
}

func (c *ListingCache) DeleteListing(ctx context.Context, id string) error {
	if err := c.client.Del(ctx, listingKeyPrefix+id).Err(); err != nil {
		return domain.Remote("cache delete listing", err)
	}
	return nil
}
