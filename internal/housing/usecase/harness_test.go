package usecase

import (
	"time"

	"github.com/Abdurahmanit/GroupProject/housing-service/internal/housing/domain"
	"github.com/Abdurahmanit/GroupProject/housing-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/housing-service/internal/testutil"
)

type harness struct {
	listingsRepo *testutil.ListingStore
	trackingRepo *testutil.TrackingStore
	ratingsRepo  *testutil.RatingStore
	commentsRepo *testutil.CommentStore
	likesRepo    *testutil.LikeStore
	usersRepo    *testutil.UserStore
	queue        *testutil.CleanupQueue
	blobs        *testutil.BlobStore
	events       *testutil.EventRecorder
	cache        *testutil.ListingCache
	ratingCache  *testutil.RatingCache
	sessions     *testutil.SessionStore
	mail         *testutil.MailRecorder

	photos   *PhotoUsecase
	listings *ListingUsecase
	tracking *TrackingUsecase
	ratings  *RatingUsecase
	comments *CommentUsecase
	identity *IdentityUsecase
}

func newHarness() *harness {
	log := logger.NewNop()
	h := &harness{
		listingsRepo: testutil.NewListingStore(),
		trackingRepo: testutil.NewTrackingStore(),
		ratingsRepo:  testutil.NewRatingStore(),
		commentsRepo: testutil.NewCommentStore(),
		likesRepo:    testutil.NewLikeStore(),
		usersRepo:    testutil.NewUserStore(),
		queue:        testutil.NewCleanupQueue(),
		blobs:        testutil.NewBlobStore(),
		events:       &testutil.EventRecorder{},
		cache:        testutil.NewListingCache(),
		ratingCache:  testutil.NewRatingCache(),
		sessions:     testutil.NewSessionStore(),
		mail:         &testutil.MailRecorder{},
	}
	h.photos = NewPhotoUsecase(h.blobs, h.queue, log)
	h.listings = NewListingUsecase(ListingDeps{
		Listings:    h.listingsRepo,
		Ratings:     h.ratingsRepo,
		Comments:    h.commentsRepo,
		Likes:       h.likesRepo,
		Tracking:    h.trackingRepo,
		Photos:      h.photos,
		Cache:       h.cache,
		RatingCache: h.ratingCache,
		Publisher:   h.events,
		Mailer:      h.mail,
	}, log)
	h.tracking = NewTrackingUsecase(h.trackingRepo, h.listings, h.events, log)
	h.ratings = NewRatingUsecase(h.ratingsRepo, h.listings, h.ratingCache, h.events, log)
	h.comments = NewCommentUsecase(h.commentsRepo, h.likesRepo, h.listings, h.events, log)
	h.identity = NewIdentityUsecase(h.usersRepo, h.sessions, h.events, "test-secret", time.Hour, log)
	return h
}

var (
	landlord = domain.User{ID: "landlord-1", Email: "owner@example.com", Role: domain.RoleLandlord}
	student  = domain.User{ID: "student-1", Email: "student@example.com", Role: domain.RoleStudent}
	student2 = domain.User{ID: "student-2", Email: "other@example.com", Role: domain.RoleStudent}
)

func roomFields() domain.ListingFields {
	return domain.ListingFields{Title: "Room A", Description: "Sunny room", Location: "Campus", Price: 300}
}
