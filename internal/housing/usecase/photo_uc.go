package usecase

import (
	"context"
	"fmt"
	"mime"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/Abdurahmanit/GroupProject/housing-service/internal/housing/domain"
	"github.com/Abdurahmanit/GroupProject/housing-service/internal/platform/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	imageKeyRoot = "listing-images"
	// firstCleanupRetryDelay is how long a failed inline deletion waits before the worker retries it.
	firstCleanupRetryDelay = 30 * time.Second
)

var acceptedDeclaredTypes = map[string]bool{
	"image/png":   true,
	"image/jpeg":  true,
	"image/jpg":   true,
	"image/pjpeg": true,
}

// PhotoUsecase moves listing images in and out of the blob store.
type PhotoUsecase struct {
	storage BlobStorage
	queue   domain.BlobCleanupQueue
	logger  *logger.Logger
}

func NewPhotoUsecase(storage BlobStorage, queue domain.BlobCleanupQueue, log *logger.Logger) *PhotoUsecase {
	return &PhotoUsecase{
		storage: storage,
		queue:   queue,
		logger:  log.Named("PhotoUsecase"),
	}
}

// ListingPrefix is the blob prefix holding every image of one listing.
func ListingPrefix(landlordID, listingID string) string {
	return fmt.Sprintf("%s/%s/%s/", imageKeyRoot, landlordID, listingID)
}

// AcceptImages keeps PNG and JPEG files and drops everything else without error.
// The content must sniff as PNG or JPEG and a declared type, when present, must agree.
// Accepted files get their sniffed content type.
func AcceptImages(files []domain.ImageFile) []domain.ImageFile {
	accepted := make([]domain.ImageFile, 0, len(files))
	for _, f := range files {
		if len(f.Data) == 0 {
			continue
		}
		sniffed := http.DetectContentType(f.Data)
		if sniffed != "image/png" && sniffed != "image/jpeg" {
			continue
		}
		if declared := declaredType(f.ContentType); declared != "" && !acceptedDeclaredTypes[declared] {
			continue
		}
		f.ContentType = sniffed
		accepted = append(accepted, f)
	}
	return accepted
}

func declaredType(contentType string) string {
	if contentType == "" {
		return ""
	}
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(contentType))
	}
	if mt == "application/octet-stream" {
		return ""
	}
	return mt
}

// UploadListingImages stores files under the listing prefix and returns their URLs in input order.
// Keys are derived from file names, so re-uploading the same files for a draft overwrites them.
func (uc *PhotoUsecase) UploadListingImages(ctx context.Context, landlordID, listingID string, files []domain.ImageFile) ([]string, error) {
	names := objectNames(files)
	urls := make([]string, 0, len(files))
	for i, f := range files {
		key := ListingPrefix(landlordID, listingID) + names[i]
		url, err := uc.storage.Upload(ctx, key, f.Data, f.ContentType)
		if err != nil {
			uc.logger.Error("Image upload failed",
				zap.String("listing_id", listingID),
				zap.String("object_key", key),
				zap.Error(err))
			return nil, fmt.Errorf("upload %s: %w", names[i], err)
		}
		urls = append(urls, url)
	}
	uc.logger.Info("Listing images uploaded", zap.String("listing_id", listingID), zap.Int("count", len(urls)))
	return urls, nil
}

// ReleaseResult counts what happened to a listing's blobs.
type ReleaseResult struct {
	Deleted int
	Queued  int
}

// ReleaseListingImages deletes every blob referenced by the listing plus anything left under its
// prefix. Each failure is logged and queued for retry; none of them stop the others.
func (uc *PhotoUsecase) ReleaseListingImages(ctx context.Context, listing *domain.Listing) ReleaseResult {
	keys := make([]string, 0, len(listing.Images))
	seen := make(map[string]bool)
	add := func(k string) {
		if k != "" && !seen[k] {
			seen[k] = true
			keys = append(keys, k)
		}
	}

	for _, u := range listing.Images {
		key, err := uc.storage.ObjectKeyFromURL(u)
		if err != nil {
			uc.logger.Warn("Image URL does not point into the bucket, skipping",
				zap.String("listing_id", listing.ID), zap.String("url", u), zap.Error(err))
			continue
		}
		add(key)
	}

	leftovers, err := uc.storage.ListObjects(ctx, ListingPrefix(listing.LandlordID, listing.ID))
	if err != nil {
		uc.logger.Warn("Listing objects under prefix could not be listed", zap.String("listing_id", listing.ID), zap.Error(err))
	}
	for _, k := range leftovers {
		add(k)
	}

	var res ReleaseResult
	for _, key := range keys {
		if err := uc.storage.Delete(ctx, key); err != nil {
			uc.logger.Warn("Image delete failed, queueing for retry",
				zap.String("listing_id", listing.ID), zap.String("object_key", key), zap.Error(err))
			uc.enqueue(ctx, listing.ID, key, err)
			res.Queued++
			continue
		}
		res.Deleted++
	}
	return res
}

func (uc *PhotoUsecase) enqueue(ctx context.Context, listingID, key string, cause error) {
	now := time.Now().UTC()
	task := &domain.BlobCleanupTask{
		ID:            uuid.NewString(),
		ObjectKey:     key,
		ListingID:     listingID,
		Attempts:      1,
		NextAttemptAt: now.Add(firstCleanupRetryDelay),
		LastError:     cause.Error(),
		CreatedAt:     now,
	}
	if err := uc.queue.Enqueue(ctx, task); err != nil {
		uc.logger.Error("Orphan blob could not be queued", zap.String("object_key", key), zap.Error(err))
	}
}

// objectNames derives unique, path-safe object names for one upload batch.
func objectNames(files []domain.ImageFile) []string {
	names := make([]string, len(files))
	used := make(map[string]bool, len(files))
	for i, f := range files {
		name := safeFilename(f.Filename)
		if name == "" {
			name = fmt.Sprintf("image-%d%s", i+1, extensionFor(f.ContentType))
		}
		if used[name] {
			name = fmt.Sprintf("%d-%s", i+1, name)
		}
		used[name] = true
		names[i] = name
	}
	return names
}

func safeFilename(name string) string {
	base := path.Base(strings.ReplaceAll(name, "\\", "/"))
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, base)
	if strings.Trim(base, "._") == "" {
		return ""
	}
	return base
}

func extensionFor(contentType string) string {
	if contentType == "image/png" {
		return ".png"
	}
	return ".jpg"
}
