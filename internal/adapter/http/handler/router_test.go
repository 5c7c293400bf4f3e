package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/Abdurahmanit/GroupProject/housing-service/internal/housing/domain"
	"github.com/Abdurahmanit/GroupProject/housing-service/internal/housing/usecase"
	"github.com/Abdurahmanit/GroupProject/housing-service/internal/housing/view"
	"github.com/Abdurahmanit/GroupProject/housing-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/housing-service/internal/platform/metrics"
	"github.com/Abdurahmanit/GroupProject/housing-service/internal/testutil"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type apiFixture struct {
	router  http.Handler
	metrics *metrics.MetricsManager
	blobs   *testutil.BlobStore
	mail    *testutil.MailRecorder
}

func newAPIFixture() *apiFixture {
	log := logger.NewNop()
	f := &apiFixture{
		metrics: metrics.NewMetricsManager("housing-test"),
		blobs:   testutil.NewBlobStore(),
		mail:    &testutil.MailRecorder{},
	}
	events := &testutil.EventRecorder{}
	ratingsRepo := testutil.NewRatingStore()
	commentsRepo := testutil.NewCommentStore()
	likesRepo := testutil.NewLikeStore()
	trackingRepo := testutil.NewTrackingStore()
	ratingCache := testutil.NewRatingCache()

	photos := usecase.NewPhotoUsecase(f.blobs, testutil.NewCleanupQueue(), log)
	listings := usecase.NewListingUsecase(usecase.ListingDeps{
		Listings:    testutil.NewListingStore(),
		Ratings:     ratingsRepo,
		Comments:    commentsRepo,
		Likes:       likesRepo,
		Tracking:    trackingRepo,
		Photos:      photos,
		Cache:       testutil.NewListingCache(),
		RatingCache: ratingCache,
		Publisher:   events,
		Mailer:      f.mail,
	}, log)
	tracking := usecase.NewTrackingUsecase(trackingRepo, listings, events, log)
	ratings := usecase.NewRatingUsecase(ratingsRepo, listings, ratingCache, events, log)
	comments := usecase.NewCommentUsecase(commentsRepo, likesRepo, listings, events, log)
	identity := usecase.NewIdentityUsecase(testutil.NewUserStore(), testutil.NewSessionStore(), events, "router-secret", time.Hour, log)

	catalogue := view.NewListingList(listings, ratings, 4, log)
	h := New(Deps{
		Identity:  identity,
		Listings:  listings,
		Tracking:  tracking,
		Ratings:   ratings,
		Comments:  comments,
		Catalogue: catalogue,
		Detail:    view.NewDetailView(listings, ratings, tracking, comments, log),
		Dashboard: view.NewDashboardView(tracking, listings, catalogue),
		Likes:     view.NewLikeReconciler(comments, time.Second, log),
		Metrics:   f.metrics,
	}, log)
	f.router = NewRouter(h, nil)
	return f
}

func (f *apiFixture) do(t *testing.T, method, path, token string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	r := httptest.NewRequest(method, path, body)
	if contentType != "" {
		r.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		r.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, r)
	return rec
}

func (f *apiFixture) doJSON(t *testing.T, method, path, token string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(b)
	}
	return f.do(t, method, path, token, body, "application/json")
}

// account signs up and signs in, returning the bearer token.
func (f *apiFixture) account(t *testing.T, email, role string) string {
	t.Helper()
	rec := f.doJSON(t, http.MethodPost, "/api/auth/signup", "", map[string]string{"email": email, "password": "secret1", "role": role})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = f.doJSON(t, http.MethodPost, "/api/auth/signin", "", map[string]string{"email": email, "password": "secret1"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp signInResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

type upload struct {
	name, contentType string
	data              []byte
}

func listingForm(t *testing.T, fields map[string]string, files []upload) (io.Reader, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	for _, u := range files {
		hdr := make(textproto.MIMEHeader)
		hdr.Set("Content-Disposition", fmt.Sprintf(`form-data; name="images"; filename="%s"`, u.name))
		hdr.Set("Content-Type", u.contentType)
		part, err := mw.CreatePart(hdr)
		require.NoError(t, err)
		_, err = part.Write(u.data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func roomForm(t *testing.T) (io.Reader, string) {
	return listingForm(t,
		map[string]string{"title": "Room A", "description": "Sunny room", "location": "Campus", "price": "300"},
		[]upload{
			{"a.png", "image/png", testutil.PNGBytes()},
			{"b.jpg", "image/jpeg", testutil.JPEGBytes()},
			{"c.gif", "image/gif", testutil.GIFBytes()},
		})
}

func (f *apiFixture) createRoom(t *testing.T, token string) listingResponse {
	t.Helper()
	body, ct := roomForm(t)
	rec := f.do(t, http.MethodPost, "/api/listings", token, body, ct)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var l listingResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &l))
	return l
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestRouter_Healthz(t *testing.T) {
	f := newAPIFixture()
	rec := f.do(t, http.MethodGet, "/healthz", "", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_AuthFlow(t *testing.T) {
	f := newAPIFixture()
	token := f.account(t, "Owner@Example.com", "landlord")

	rec := f.do(t, http.MethodGet, "/api/auth/me", token, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	me := decode[userResponse](t, rec)
	assert.Equal(t, "owner@example.com", me.Email)
	assert.Equal(t, "landlord", me.Role)

	rec = f.doJSON(t, http.MethodPost, "/api/auth/signup", "", map[string]string{"email": "owner@example.com", "password": "secret1", "role": "landlord"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = f.doJSON(t, http.MethodPost, "/api/auth/signin", "", map[string]string{"email": "owner@example.com", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/auth/signout", token, nil, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/auth/me", token, nil, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouter_CreateListingSkipsGIF(t *testing.T) {
	f := newAPIFixture()
	token := f.account(t, "owner@example.com", "landlord")

	l := f.createRoom(t, token)
	assert.Equal(t, "complete", l.Status)
	assert.Equal(t, "owner@example.com", l.LandlordEmail)
	require.Len(t, l.Images, 2)
	assert.True(t, strings.HasSuffix(l.Images[0], "/a.png"))
	assert.True(t, strings.HasSuffix(l.Images[1], "/b.jpg"))
	assert.Len(t, f.blobs.Keys(), 2)
	assert.Len(t, f.mail.Sent(), 1)
	assert.Equal(t, 1.0, promtestutil.ToFloat64(f.metrics.ListingsCreatedTotal))

	rec := f.do(t, http.MethodGet, "/api/listings", "", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var cards []struct {
		ID     string `json:"id"`
		Rating struct {
			Display string `json:"display"`
		} `json:"rating"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cards))
	require.Len(t, cards, 1)
	assert.Equal(t, l.ID, cards[0].ID)
	assert.Equal(t, "N/A", cards[0].Rating.Display)
}

func TestRouter_CreateListingRejections(t *testing.T) {
	f := newAPIFixture()
	landlord := f.account(t, "owner@example.com", "landlord")
	student := f.account(t, "student@example.com", "student")

	body, ct := roomForm(t)
	assert.Equal(t, http.StatusUnauthorized, f.do(t, http.MethodPost, "/api/listings", "", body, ct).Code)

	body, ct = roomForm(t)
	assert.Equal(t, http.StatusForbidden, f.do(t, http.MethodPost, "/api/listings", student, body, ct).Code)

	body, ct = listingForm(t, map[string]string{"title": "Room", "description": "d", "location": "l", "price": "cheap"}, nil)
	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodPost, "/api/listings", landlord, body, ct).Code)

	body, ct = listingForm(t, map[string]string{"title": "Room", "description": "d", "location": "l", "price": "100"}, nil)
	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodPost, "/api/listings", landlord, body, ct).Code)
}

func TestRouter_TrackRequiresSignIn(t *testing.T) {
	f := newAPIFixture()
	l := f.createRoom(t, f.account(t, "owner@example.com", "landlord"))
	student := f.account(t, "student@example.com", "student")

	rec := f.do(t, http.MethodPost, "/api/listings/"+l.ID+"/track", "", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/listings/"+l.ID+"/track", student, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[trackResponse](t, rec).Tracked)

	rec = f.do(t, http.MethodGet, "/api/listings/"+l.ID+"/track", student, nil, "")
	assert.True(t, decode[trackResponse](t, rec).Tracked)

	rec = f.do(t, http.MethodGet, "/api/me/tracked", student, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	dash := decode[struct {
		Role     string            `json:"role"`
		Listings []listingResponse `json:"listings"`
	}](t, rec)
	assert.Equal(t, "student", dash.Role)
	require.Len(t, dash.Listings, 1)
	assert.Equal(t, l.ID, dash.Listings[0].ID)

	rec = f.do(t, http.MethodPost, "/api/listings/"+l.ID+"/track", student, nil, "")
	assert.False(t, decode[trackResponse](t, rec).Tracked)
	assert.Equal(t, 1.0, promtestutil.ToFloat64(f.metrics.TrackingToggledTotal.WithLabelValues("false")))
}

func TestRouter_RatingsAverage(t *testing.T) {
	f := newAPIFixture()
	l := f.createRoom(t, f.account(t, "owner@example.com", "landlord"))
	path := "/api/listings/" + l.ID + "/ratings"

	for i, v := range []int{4, 5, 3} {
		token := f.account(t, fmt.Sprintf("s%d@example.com", i), "student")
		rec := f.doJSON(t, http.MethodPost, path, token, map[string]int{"rating": v})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	}

	rec := f.do(t, http.MethodGet, path, "", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Rating struct {
			Average *float64 `json:"average"`
			Display string   `json:"display"`
			Count   int      `json:"count"`
		} `json:"rating"`
		ViewerRating *int `json:"viewer_rating"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "4.0", resp.Rating.Display)
	assert.Equal(t, 3, resp.Rating.Count)
	assert.Nil(t, resp.ViewerRating)

	token := f.account(t, "late@example.com", "student")
	rec = f.doJSON(t, http.MethodPost, path, token, map[string]int{"rating": 6})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = f.doJSON(t, http.MethodPost, path, "", map[string]int{"rating": 5})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouter_CommentsAuthorOnlyRemoval(t *testing.T) {
	f := newAPIFixture()
	landlord := f.account(t, "owner@example.com", "landlord")
	l := f.createRoom(t, landlord)
	student := f.account(t, "student@example.com", "student")
	path := "/api/listings/" + l.ID + "/comments"

	rec := f.doJSON(t, http.MethodPost, path, student, map[string]string{"text": "<b>Great</b> place"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	c := decode[commentResponse](t, rec)
	assert.Equal(t, "Great place", c.Text)
	assert.True(t, c.CanDelete)

	rec = f.do(t, http.MethodDelete, path+"/"+c.ID, landlord, nil, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = f.do(t, http.MethodGet, path, "", nil, "")
	assert.Len(t, decode[[]commentResponse](t, rec), 1)
	assert.Zero(t, promtestutil.ToFloat64(f.metrics.CommentsRemovedTotal))

	rec = f.do(t, http.MethodDelete, path+"/"+c.ID, student, nil, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = f.do(t, http.MethodGet, path, "", nil, "")
	assert.Empty(t, decode[[]commentResponse](t, rec))
	assert.Equal(t, 1.0, promtestutil.ToFloat64(f.metrics.CommentsRemovedTotal))

	rec = f.do(t, http.MethodDelete, path+"/"+c.ID, student, nil, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, 1.0, promtestutil.ToFloat64(f.metrics.CommentsRemovedTotal))
}

func TestRouter_CommentTextRoundTrips(t *testing.T) {
	f := newAPIFixture()
	l := f.createRoom(t, f.account(t, "owner@example.com", "landlord"))
	student := f.account(t, "student@example.com", "student")
	path := "/api/listings/" + l.ID + "/comments"

	text := `It's < $800 & "quiet"`
	rec := f.doJSON(t, http.MethodPost, path, student, map[string]string{"text": text})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, text, decode[commentResponse](t, rec).Text)

	rec = f.do(t, http.MethodGet, path, "", nil, "")
	comments := decode[[]commentResponse](t, rec)
	require.Len(t, comments, 1)
	assert.Equal(t, text, comments[0].Text)
}

func TestRouter_LikeToggle(t *testing.T) {
	f := newAPIFixture()
	l := f.createRoom(t, f.account(t, "owner@example.com", "landlord"))
	author := f.account(t, "author@example.com", "student")
	fan := f.account(t, "fan@example.com", "student")
	path := "/api/listings/" + l.ID + "/comments"

	c := decode[commentResponse](t, f.doJSON(t, http.MethodPost, path, author, map[string]string{"text": "Nice"}))
	likePath := path + "/" + c.ID + "/like"

	rec := f.doJSON(t, http.MethodPost, likePath, fan, map[string]interface{}{"count": 0, "liked": false})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	out := decode[view.LikeOutcome](t, rec)
	assert.Equal(t, int64(1), out.State.Count)
	assert.True(t, out.State.Liked)
	assert.False(t, out.Reverted)

	rec = f.do(t, http.MethodGet, path, fan, nil, "")
	list := decode[[]commentResponse](t, rec)
	require.Len(t, list, 1)
	assert.Equal(t, int64(1), list[0].LikeCount)
	assert.True(t, list[0].LikedByViewer)
	assert.False(t, list[0].CanDelete)

	rec = f.do(t, http.MethodPost, likePath, fan, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	out = decode[view.LikeOutcome](t, rec)
	assert.Equal(t, int64(0), out.State.Count)
	assert.False(t, out.State.Liked)

	rec = f.do(t, http.MethodPost, path+"/unknown/like", fan, nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.True(t, decode[likeErrorResponse](t, rec).Outcome.Reverted)
}

func TestRouter_DraftHiddenFromOthers(t *testing.T) {
	f := newAPIFixture()
	landlord := f.account(t, "owner@example.com", "landlord")
	student := f.account(t, "student@example.com", "student")

	f.blobs.UploadErr = domain.Remote("put object", errors.New("minio unavailable"))
	body, ct := roomForm(t)
	rec := f.do(t, http.MethodPost, "/api/listings", landlord, body, ct)
	require.Equal(t, http.StatusBadGateway, rec.Code, rec.Body.String())
	draft := decode[draftErrorResponse](t, rec).Listing
	require.NotEmpty(t, draft.ID)
	path := "/api/listings/" + draft.ID

	rec = f.do(t, http.MethodGet, path, landlord, nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	for _, token := range []string{"", student} {
		rec = f.do(t, http.MethodGet, path, token, nil, "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	}

	rec = f.do(t, http.MethodPost, path+"/track", student, nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = f.doJSON(t, http.MethodPost, path+"/ratings", student, map[string]int{"rating": 5})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = f.doJSON(t, http.MethodPost, path+"/comments", student, map[string]string{"text": "hi"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_DetailAndDelete(t *testing.T) {
	f := newAPIFixture()
	landlord := f.account(t, "owner@example.com", "landlord")
	l := f.createRoom(t, landlord)
	student := f.account(t, "student@example.com", "student")

	rec := f.do(t, http.MethodGet, "/api/listings/"+l.ID+"?image=-1", "", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	detail := decode[struct {
		Listing  listingResponse  `json:"listing"`
		Tracked  bool             `json:"tracked"`
		Carousel carouselResponse `json:"carousel"`
	}](t, rec)
	assert.Equal(t, "Room A", detail.Listing.Title)
	assert.Equal(t, 1, detail.Carousel.Index)
	assert.Equal(t, l.Images[1], detail.Carousel.Current)

	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodGet, "/api/listings/"+l.ID+"?image=x", "", nil, "").Code)

	assert.Equal(t, http.StatusForbidden, f.do(t, http.MethodDelete, "/api/listings/"+l.ID, student, nil, "").Code)
	assert.Equal(t, http.StatusNoContent, f.do(t, http.MethodDelete, "/api/listings/"+l.ID, landlord, nil, "").Code)
	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodGet, "/api/listings/"+l.ID, "", nil, "").Code)
	assert.Empty(t, f.blobs.Keys())
	assert.Equal(t, 1.0, promtestutil.ToFloat64(f.metrics.ListingsDeletedTotal))
}

func TestRouter_Dashboards(t *testing.T) {
	f := newAPIFixture()
	landlord := f.account(t, "owner@example.com", "landlord")
	student := f.account(t, "student@example.com", "student")
	l := f.createRoom(t, landlord)

	rec := f.do(t, http.MethodGet, "/api/dashboard", landlord, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	dash := decode[dashboardResponse](t, rec)
	assert.Equal(t, "landlord", dash.Role)
	require.Len(t, dash.Listings, 1)
	assert.Equal(t, l.ID, dash.Listings[0].ID)

	assert.Equal(t, http.StatusForbidden, f.do(t, http.MethodGet, "/api/me/listings", student, nil, "").Code)
	assert.Equal(t, http.StatusUnauthorized, f.do(t, http.MethodGet, "/api/dashboard", "", nil, "").Code)

	rec = f.do(t, http.MethodGet, "/api/dashboard", student, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "student", decode[dashboardResponse](t, rec).Role)
}
