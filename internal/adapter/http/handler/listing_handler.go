package handler

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/Abdurahmanit/GroupProject/housing-service/internal/housing/domain"
	"github.com/Abdurahmanit/GroupProject/housing-service/internal/housing/session"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const (
	maxUploadBytes = 32 << 20
	imagesField    = "images"
)

type draftErrorResponse struct {
	Error   string          `json:"error"`
	Listing listingResponse `json:"listing"`
}

func (h *Handler) ListListings(w http.ResponseWriter, r *http.Request) {
	cards, err := h.Catalogue.Build(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toCards(cards))
}

func (h *Handler) CreateListing(w http.ResponseWriter, r *http.Request) {
	user, err := session.Require(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	fields, files, err := parseListingForm(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	listing, err := h.Listings.Create(r.Context(), user, fields, files)
	if err != nil {
		h.writeDraftError(w, listing, err)
		return
	}
	h.Metrics.ListingsCreatedTotal.Inc()
	writeJSON(w, http.StatusCreated, toListingResponse(listing))
}

// ResumeListing uploads the images of a draft whose create did not finish.
func (h *Handler) ResumeListing(w http.ResponseWriter, r *http.Request) {
	user, err := session.Require(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, h.logger, domain.Invalid("invalid multipart form: %v", err))
		return
	}
	files, err := readImages(r.MultipartForm)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	listing, err := h.Listings.ResumeDraft(r.Context(), user, chi.URLParam(r, "id"), files)
	if err != nil {
		h.writeDraftError(w, listing, err)
		return
	}
	h.Metrics.ListingsCreatedTotal.Inc()
	writeJSON(w, http.StatusOK, toListingResponse(listing))
}

// writeDraftError keeps the draft in the response so the client can resume it.
func (h *Handler) writeDraftError(w http.ResponseWriter, draft *domain.Listing, err error) {
	if draft == nil || draft.ID == "" || !draft.IsDraft() {
		writeError(w, h.logger, err)
		return
	}
	h.logger.Warn("Listing left as draft", zap.String("listing_id", draft.ID), zap.Error(err))
	msg := err.Error()
	if errors.Is(err, domain.ErrRemote) {
		msg = domain.ErrRemote.Error()
	}
	writeJSON(w, StatusFor(err), draftErrorResponse{Error: msg, Listing: toListingResponse(draft)})
}

// GetListing renders the detail view. ?image=N selects the carousel position.
func (h *Handler) GetListing(w http.ResponseWriter, r *http.Request) {
	viewer, _ := session.CurrentUser(r.Context())
	detail, err := h.Detail.Build(r.Context(), chi.URLParam(r, "id"), viewer)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if raw := r.URL.Query().Get("image"); raw != "" {
		i, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, h.logger, domain.Invalid("image must be an integer"))
			return
		}
		detail.Carousel.Seek(i)
	}
	writeJSON(w, http.StatusOK, toDetailResponse(detail, viewer.ID))
}

func (h *Handler) DeleteListing(w http.ResponseWriter, r *http.Request) {
	user, err := session.Require(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if err := h.Listings.Delete(r.Context(), user, chi.URLParam(r, "id")); err != nil {
		writeError(w, h.logger, err)
		return
	}
	h.Metrics.ListingsDeletedTotal.Inc()
	w.WriteHeader(http.StatusNoContent)
}

func parseListingForm(r *http.Request) (domain.ListingFields, []domain.ImageFile, error) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return domain.ListingFields{}, nil, domain.Invalid("invalid multipart form: %v", err)
	}
	fields := domain.ListingFields{
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		Location:    r.FormValue("location"),
	}
	if raw := strings.TrimSpace(r.FormValue("price")); raw != "" {
		price, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return domain.ListingFields{}, nil, domain.Invalid("price must be a number")
		}
		fields.Price = price
	}
	files, err := readImages(r.MultipartForm)
	if err != nil {
		return domain.ListingFields{}, nil, err
	}
	return fields, files, nil
}

func readImages(form *multipart.Form) ([]domain.ImageFile, error) {
	if form == nil {
		return nil, nil
	}
	headers := form.File[imagesField]
	files := make([]domain.ImageFile, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			return nil, domain.Invalid("unreadable upload %q", fh.Filename)
		}
		data, err := io.ReadAll(f)
		_ = f.Close()
		if err != nil {
			return nil, domain.Invalid("unreadable upload %q", fh.Filename)
		}
		files = append(files, domain.ImageFile{
			Filename:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Data:        data,
		})
	}
	return files, nil
}
