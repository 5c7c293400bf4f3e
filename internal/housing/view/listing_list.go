// Package view assembles the screen models served by the HTTP API.
package view

import (
	"context"

	"github.com/Abdurahmanit/GroupProject/housing-service/internal/housing/domain"
	"github.com/Abdurahmanit/GroupProject/housing-service/internal/platform/logger"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type ListingSource interface {
	ListAll(ctx context.Context) ([]*domain.Listing, error)
}

type RatingSource interface {
	Average(ctx context.Context, listingID string) (domain.RatingSummary, error)
}

// ListingCard is a listing with its rating summary.
type ListingCard struct {
	Listing *domain.Listing
	Rating  domain.RatingSummary
}

// ListingList renders the public catalogue.
type ListingList struct {
	listings    ListingSource
	ratings     RatingSource
	concurrency int
	logger      *logger.Logger
}

func NewListingList(listings ListingSource, ratings RatingSource, concurrency int, log *logger.Logger) *ListingList {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &ListingList{
		listings:    listings,
		ratings:     ratings,
		concurrency: concurrency,
		logger:      log.Named("ListingList"),
	}
}

// Build lists every complete listing with its rating summary, in listing order.
func (v *ListingList) Build(ctx context.Context) ([]ListingCard, error) {
	listings, err := v.listings.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return v.Enrich(ctx, listings), nil
}

// Enrich fetches the rating summaries concurrently. A failed fetch leaves that card at N/A.
func (v *ListingList) Enrich(ctx context.Context, listings []*domain.Listing) []ListingCard {
	cards := make([]ListingCard, len(listings))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(v.concurrency)
	for i, l := range listings {
		cards[i].Listing = l
		g.Go(func() error {
			summary, err := v.ratings.Average(gctx, l.ID)
			if err != nil {
				v.logger.Warn("Rating summary unavailable, showing N/A", zap.String("listing_id", l.ID), zap.Error(err))
				return nil
			}
			cards[i].Rating = summary
			return nil
		})
	}
	_ = g.Wait()
	return cards
}
