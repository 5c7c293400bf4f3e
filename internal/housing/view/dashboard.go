package view

import (
	"context"
	"fmt"

	"github.com/Abdurahmanit/GroupProject/housing-service/internal/housing/domain"
)

type TrackedResolver interface {
	ResolveTracked(ctx context.Context, userID string) ([]*domain.Listing, error)
}

type OwnerLister interface {
	ListByOwner(ctx context.Context, ownerID string) ([]*domain.Listing, error)
}

// Dashboard is the signed-in user's home screen. Students see what they track,
// landlords see what they own.
type Dashboard struct {
	Role     domain.Role
	Listings []ListingCard
}

type DashboardView struct {
	tracked TrackedResolver
	owned   OwnerLister
	cards   *ListingList
}

func NewDashboardView(tracked TrackedResolver, owned OwnerLister, cards *ListingList) *DashboardView {
	return &DashboardView{tracked: tracked, owned: owned, cards: cards}
}

func (v *DashboardView) Student(ctx context.Context, user domain.User) (*Dashboard, error) {
	if user.IsAnonymous() {
		return nil, domain.ErrAuthRequired
	}
	listings, err := v.tracked.ResolveTracked(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return &Dashboard{Role: domain.RoleStudent, Listings: v.cards.Enrich(ctx, listings)}, nil
}

// Landlord includes drafts.
func (v *DashboardView) Landlord(ctx context.Context, user domain.User) (*Dashboard, error) {
	if user.IsAnonymous() {
		return nil, domain.ErrAuthRequired
	}
	if user.Role != domain.RoleLandlord {
		return nil, fmt.Errorf("%w: landlord dashboard", domain.ErrForbidden)
	}
	listings, err := v.owned.ListByOwner(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return &Dashboard{Role: domain.RoleLandlord, Listings: v.cards.Enrich(ctx, listings)}, nil
}

// Build dispatches on the user's role.
func (v *DashboardView) Build(ctx context.Context, user domain.User) (*Dashboard, error) {
	if user.IsAnonymous() {
		return nil, domain.ErrAuthRequired
	}
	if user.Role == domain.RoleLandlord {
		return v.Landlord(ctx, user)
	}
	return v.Student(ctx, user)
}
