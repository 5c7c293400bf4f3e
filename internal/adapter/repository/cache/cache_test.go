package cache

import (
	"context"
	"testing"
	"time"

	"github.com/Abdurahmanit/GroupProject/housing-service/internal/housing/domain"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client, err := NewClient(context.Background(), mr.Addr(), "", 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestListingCache_RoundTripAndTTL(t *testing.T) {
	mr, client := newTestClient(t)
	c := NewListingCache(client)
	ctx := context.Background()

	miss, err := c.GetListing(ctx, "l1")
	require.NoError(t, err)
	assert.Nil(t, miss)

	created := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	in := &domain.Listing{ID: "l1", Title: "Room A", Price: 300, LandlordID: "o1",
		Status: domain.ListingStatusComplete, Images: []string{"u1"}, CreatedAt: created, UpdatedAt: created}
	require.NoError(t, c.SetListing(ctx, in))
	assert.Equal(t, ListingTTL, mr.TTL("listing:l1"))

	out, err := c.GetListing(ctx, "l1")
	require.NoError(t, err)
	assert.Equal(t, in, out)

	require.NoError(t, c.DeleteListing(ctx, "l1"))
	assert.False(t, mr.Exists("listing:l1"))
}

func TestRatingCache_KeepsNoDataSentinel(t *testing.T) {
	mr, client := newTestClient(t)
	c := NewRatingCache(client)
	ctx := context.Background()

	require.NoError(t, c.SetSummary(ctx, "l1", domain.RatingSummary{}))
	got, err := c.GetSummary(ctx, "l1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.False(t, got.HasData())

	require.NoError(t, c.SetSummary(ctx, "l2", domain.NewRatingSummary(12, 3)))
	got, err = c.GetSummary(ctx, "l2")
	require.NoError(t, err)
	assert.Equal(t, "4.0", got.String())

	mr.FastForward(RatingTTL + time.Second)
	got, err = c.GetSummary(ctx, "l2")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSessionStore_Lifecycle(t *testing.T) {
	mr, client := newTestClient(t)
	s := NewSessionStore(client)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "jti-1", "u1", time.Minute))
	ok, err := s.Exists(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, s.Delete(ctx, "jti-1"))
	ok, err = s.Exists(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Save(ctx, "jti-2", "u1", time.Minute))
	mr.FastForward(2 * time.Minute)
	ok, err = s.Exists(ctx, "jti-2")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCache_RemoteErrors(t *testing.T) {
	mr, client := newTestClient(t)
	mr.Close()

	_, err := NewListingCache(client).GetListing(context.Background(), "l1")
	assert.ErrorIs(t, err, domain.ErrRemote)
	_, err = NewSessionStore(client).Exists(context.Background(), "x")
	assert.ErrorIs(t, err, domain.ErrRemote)
}
