package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Abdurahmanit/GroupProject/housing-service/internal/housing/domain"
	"github.com/Abdurahmanit/GroupProject/housing-service/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListingUsecase_Create_Success(t *testing.T) {
	h := newHarness()
	ctx := context.Background()

	files := []domain.ImageFile{testutil.PNGFile("a.png"), testutil.JPEGFile("b.jpg"), testutil.GIFFile("c.gif")}
	listing, err := h.listings.Create(ctx, landlord, roomFields(), files)
	require.NoError(t, err)
	require.NotEmpty(t, listing.ID)

	assert.Equal(t, domain.ListingStatusComplete, listing.Status)
	require.Len(t, listing.Images, 2)
	prefix := testutil.BlobBaseURL + ListingPrefix(landlord.ID, listing.ID)
	assert.Equal(t, prefix+"a.png", listing.Images[0])
	assert.Equal(t, prefix+"b.jpg", listing.Images[1])

	stored, err := h.listingsRepo.FindByID(ctx, listing.ID)
	require.NoError(t, err)
	assert.Equal(t, listing.Images, stored.Images)
	assert.Equal(t, landlord.Email, stored.LandlordEmail)
	assert.Equal(t, domain.ListingStatusComplete, stored.Status)

	assert.Contains(t, h.events.Subjects(), SubjectListingCreated)
	assert.Equal(t, []testutil.SentMail{{To: landlord.Email, Title: "Room A"}}, h.mail.Sent())
}

func TestListingUsecase_Create_OnlyRejectedFiles(t *testing.T) {
	h := newHarness()

	listing, err := h.listings.Create(context.Background(), landlord, roomFields(), []domain.ImageFile{testutil.GIFFile("x.gif")})
	require.NoError(t, err)
	assert.Empty(t, listing.Images)
	assert.Equal(t, domain.ListingStatusComplete, listing.Status)
	assert.Empty(t, h.blobs.Keys())
}

func TestListingUsecase_Create_Validation(t *testing.T) {
	tests := []struct {
		name    string
		user    domain.User
		fields  domain.ListingFields
		files   []domain.ImageFile
		wantErr error
	}{
		{"anonymous", domain.User{}, roomFields(), []domain.ImageFile{testutil.PNGFile("a.png")}, domain.ErrAuthRequired},
		{"student", student, roomFields(), []domain.ImageFile{testutil.PNGFile("a.png")}, domain.ErrForbidden},
		{"missing title", landlord, domain.ListingFields{Description: "d", Location: "l", Price: 1}, []domain.ImageFile{testutil.PNGFile("a.png")}, domain.ErrValidation},
		{"zero price", landlord, domain.ListingFields{Title: "t", Description: "d", Location: "l"}, []domain.ImageFile{testutil.PNGFile("a.png")}, domain.ErrValidation},
		{"no files", landlord, roomFields(), nil, domain.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness()
			_, err := h.listings.Create(context.Background(), tt.user, tt.fields, tt.files)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, 0, h.listingsRepo.Len())
			assert.Empty(t, h.events.Events())
		})
	}
}

func TestListingUsecase_Create_UploadFailureLeavesDraft(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	h.blobs.UploadErr = domain.Remote("put object", errors.New("connection reset"))

	listing, err := h.listings.Create(ctx, landlord, roomFields(), []domain.ImageFile{testutil.PNGFile("a.png")})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrRemote)
	require.NotNil(t, listing)

	stored, err := h.listingsRepo.FindByID(ctx, listing.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ListingStatusDraft, stored.Status)
	assert.Empty(t, stored.Images)

	all, err := h.listings.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)

	own, err := h.listings.ListByOwner(ctx, landlord.ID)
	require.NoError(t, err)
	assert.Len(t, own, 1)

	h.blobs.UploadErr = nil
	resumed, err := h.listings.ResumeDraft(ctx, landlord, listing.ID, []domain.ImageFile{testutil.PNGFile("a.png")})
	require.NoError(t, err)
	assert.Equal(t, domain.ListingStatusComplete, resumed.Status)
	assert.Len(t, resumed.Images, 1)

	_, err = h.listings.ResumeDraft(ctx, landlord, listing.ID, []domain.ImageFile{testutil.PNGFile("a.png")})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestListingUsecase_ResumeDraft_NotOwner(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	h.blobs.UploadErr = errors.New("down")
	listing, _ := h.listings.Create(ctx, landlord, roomFields(), []domain.ImageFile{testutil.PNGFile("a.png")})
	h.blobs.UploadErr = nil

	other := domain.User{ID: "landlord-2", Role: domain.RoleLandlord}
	_, err := h.listings.ResumeDraft(ctx, other, listing.ID, []domain.ImageFile{testutil.PNGFile("a.png")})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestListingUsecase_DraftVisibleOnlyToOwner(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	h.blobs.UploadErr = domain.Remote("put object", errors.New("connection reset"))
	draft, err := h.listings.Create(ctx, landlord, roomFields(), []domain.ImageFile{testutil.PNGFile("a.png")})
	require.Error(t, err)
	require.NotNil(t, draft)
	require.True(t, draft.IsDraft())

	got, err := h.listings.GetVisible(ctx, landlord.ID, draft.ID)
	require.NoError(t, err)
	assert.Equal(t, draft.ID, got.ID)

	for _, viewer := range []string{"", student.ID, "landlord-2"} {
		_, err = h.listings.GetVisible(ctx, viewer, draft.ID)
		assert.ErrorIs(t, err, domain.ErrNotFound, "viewer %q", viewer)
	}

	_, err = h.tracking.Toggle(ctx, student.ID, draft.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	tracked, err := h.tracking.IsTracked(ctx, student.ID, draft.ID)
	require.NoError(t, err)
	assert.False(t, tracked)

	_, err = h.ratings.Submit(ctx, draft.ID, student.ID, 5)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, count, err := h.ratingsRepo.Summary(ctx, draft.ID)
	require.NoError(t, err)
	assert.Zero(t, count)

	_, err = h.comments.Add(ctx, draft.ID, student, "hello")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	h.blobs.UploadErr = nil
	_, err = h.listings.ResumeDraft(ctx, landlord, draft.ID, []domain.ImageFile{testutil.PNGFile("a.png")})
	require.NoError(t, err)
	got, err = h.listings.GetVisible(ctx, student.ID, draft.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ListingStatusComplete, got.Status)
}

func TestTrackingUsecase_ResolveTrackedDropsForeignDrafts(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	l := createListing(t, h)
	_, err := h.tracking.Toggle(ctx, student.ID, l.ID)
	require.NoError(t, err)

	h.blobs.UploadErr = errors.New("down")
	draft, _ := h.listings.Create(ctx, landlord, roomFields(), []domain.ImageFile{testutil.PNGFile("a.png")})
	require.NoError(t, h.trackingRepo.Add(ctx, &domain.TrackedListing{UserID: student.ID, ListingID: draft.ID, SavedAt: time.Now().UTC()}))

	listings, err := h.tracking.ResolveTracked(ctx, student.ID)
	require.NoError(t, err)
	require.Len(t, listings, 1)
	assert.Equal(t, l.ID, listings[0].ID)
}

func TestListingUsecase_ListAll_NewestFirst(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	first, err := h.listings.Create(ctx, landlord, roomFields(), []domain.ImageFile{testutil.PNGFile("a.png")})
	require.NoError(t, err)
	fields := roomFields()
	fields.Title = "Room B"
	second, err := h.listings.Create(ctx, landlord, fields, []domain.ImageFile{testutil.PNGFile("a.png")})
	require.NoError(t, err)

	all, err := h.listings.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, second.ID, all[0].ID)
	assert.Equal(t, first.ID, all[1].ID)

	_, err = h.listings.ListByOwner(ctx, "")
	assert.ErrorIs(t, err, domain.ErrAuthRequired)
}

func TestListingUsecase_Get_ReadsThroughCache(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	listing, err := h.listings.Create(ctx, landlord, roomFields(), []domain.ImageFile{testutil.PNGFile("a.png")})
	require.NoError(t, err)
	assert.False(t, h.cache.Has(listing.ID))

	got, err := h.listings.Get(ctx, listing.ID)
	require.NoError(t, err)
	assert.Equal(t, "Room A", got.Title)
	assert.True(t, h.cache.Has(listing.ID))

	_, err = h.listings.Get(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListingUsecase_Delete_ReleasesEverything(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	listing, err := h.listings.Create(ctx, landlord, roomFields(), []domain.ImageFile{testutil.PNGFile("a.png"), testutil.PNGFile("b.png")})
	require.NoError(t, err)
	h.blobs.Put(ListingPrefix(landlord.ID, listing.ID)+"stray.png", testutil.PNGBytes())

	_, err = h.ratings.Submit(ctx, listing.ID, student.ID, 4)
	require.NoError(t, err)
	_, err = h.tracking.Toggle(ctx, student.ID, listing.ID)
	require.NoError(t, err)
	comment, err := h.comments.Add(ctx, listing.ID, student, "Nice")
	require.NoError(t, err)
	_, err = h.comments.ToggleLike(ctx, listing.ID, comment.ID, student.ID)
	require.NoError(t, err)

	require.NoError(t, h.listings.Delete(ctx, landlord, listing.ID))

	assert.Empty(t, h.blobs.Keys())
	assert.Empty(t, h.queue.Tasks())
	_, err = h.listingsRepo.FindByID(ctx, listing.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, count, _ := h.ratingsRepo.Summary(ctx, listing.ID)
	assert.Zero(t, count)
	tracked, _ := h.trackingRepo.Exists(ctx, student.ID, listing.ID)
	assert.False(t, tracked)
	n, _ := h.likesRepo.Count(ctx, comment.ID)
	assert.Zero(t, n)
	assert.Contains(t, h.events.Subjects(), SubjectListingDeleted)

	err = h.listings.Delete(ctx, landlord, listing.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListingUsecase_Delete_QueuesFailedBlobs(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	listing, err := h.listings.Create(ctx, landlord, roomFields(), []domain.ImageFile{testutil.PNGFile("a.png"), testutil.PNGFile("b.png")})
	require.NoError(t, err)
	failing := ListingPrefix(landlord.ID, listing.ID) + "a.png"
	h.blobs.DeleteErr[failing] = errors.New("timeout")

	require.NoError(t, h.listings.Delete(ctx, landlord, listing.ID))

	assert.Equal(t, []string{failing}, h.blobs.Keys())
	tasks := h.queue.Tasks()
	require.Len(t, tasks, 1)
	assert.Equal(t, failing, tasks[0].ObjectKey)
	assert.Equal(t, listing.ID, tasks[0].ListingID)
	assert.Equal(t, 1, tasks[0].Attempts)
	assert.Equal(t, "timeout", tasks[0].LastError)
}

func TestListingUsecase_Delete_Authorization(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	listing, err := h.listings.Create(ctx, landlord, roomFields(), []domain.ImageFile{testutil.PNGFile("a.png")})
	require.NoError(t, err)

	assert.ErrorIs(t, h.listings.Delete(ctx, domain.User{}, listing.ID), domain.ErrAuthRequired)
	assert.ErrorIs(t, h.listings.Delete(ctx, student, listing.ID), domain.ErrForbidden)
	assert.Equal(t, 1, h.listingsRepo.Len())
	assert.Len(t, h.blobs.Keys(), 1)
}
