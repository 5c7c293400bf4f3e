package usecase

import (
	"context"

	"github.com/Abdurahmanit/GroupProject/housing-service/internal/housing/domain"
	"github.com/stretchr/testify/mock"
)

type MockListingGetter struct{ mock.Mock }

func (m *MockListingGetter) GetVisible(ctx context.Context, viewerID, id string) (*domain.Listing, error) {
	args := m.Called(ctx, viewerID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Listing), args.Error(1)
}

type MockCommentRepository struct{ mock.Mock }

func (m *MockCommentRepository) Create(ctx context.Context, comment *domain.Comment) error {
	args := m.Called(ctx, comment)
	return args.Error(0)
}
func (m *MockCommentRepository) FindByID(ctx context.Context, id string) (*domain.Comment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Comment), args.Error(1)
}
func (m *MockCommentRepository) FindByListingID(ctx context.Context, listingID string) ([]*domain.Comment, error) {
	args := m.Called(ctx, listingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Comment), args.Error(1)
}
func (m *MockCommentRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
func (m *MockCommentRepository) DeleteByListingID(ctx context.Context, listingID string) (int64, error) {
	args := m.Called(ctx, listingID)
	return args.Get(0).(int64), args.Error(1)
}

type MockLikeRepository struct{ mock.Mock }

func (m *MockLikeRepository) Add(ctx context.Context, listingID, commentID, userID string) error {
	args := m.Called(ctx, listingID, commentID, userID)
	return args.Error(0)
}
func (m *MockLikeRepository) Remove(ctx context.Context, commentID, userID string) (bool, error) {
	args := m.Called(ctx, commentID, userID)
	return args.Bool(0), args.Error(1)
}
func (m *MockLikeRepository) HasLiked(ctx context.Context, commentID, userID string) (bool, error) {
	args := m.Called(ctx, commentID, userID)
	return args.Bool(0), args.Error(1)
}
func (m *MockLikeRepository) Count(ctx context.Context, commentID string) (int64, error) {
	args := m.Called(ctx, commentID)
	return args.Get(0).(int64), args.Error(1)
}
func (m *MockLikeRepository) CountByComments(ctx context.Context, commentIDs []string) (map[string]int64, error) {
	args := m.Called(ctx, commentIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]int64), args.Error(1)
}
func (m *MockLikeRepository) LikedByUser(ctx context.Context, commentIDs []string, userID string) (map[string]bool, error) {
	args := m.Called(ctx, commentIDs, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]bool), args.Error(1)
}
func (m *MockLikeRepository) DeleteByCommentID(ctx context.Context, commentID string) (int64, error) {
	args := m.Called(ctx, commentID)
	return args.Get(0).(int64), args.Error(1)
}
func (m *MockLikeRepository) DeleteByListingID(ctx context.Context, listingID string) (int64, error) {
	args := m.Called(ctx, listingID)
	return args.Get(0).(int64), args.Error(1)
}

type MockEventPublisher struct{ mock.Mock }

func (m *MockEventPublisher) Publish(ctx context.Context, subject string, data interface{}) error {
	args := m.Called(ctx, subject, data)
	return args.Error(0)
}
