package s3

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/Abdurahmanit/GroupProject/housing-service/internal/housing/domain"
	"github.com/Abdurahmanit/GroupProject/housing-service/internal/platform/logger"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

// S3Storage keeps listing images in a MinIO bucket. Object URLs have the form
// {endpoint}/{bucket}/{key}.
type S3Storage struct {
	client  *minio.Client
	bucket  string
	baseURL string
	logger  *logger.Logger
}

func NewS3Storage(ctx context.Context, endpoint, accessKey, secretKey, bucketName string, useSSL bool, log *logger.Logger) (*S3Storage, error) {
	log.Info("Initializing S3 MinIO Storage", zap.String("endpoint", endpoint), zap.String("bucket", bucketName), zap.Bool("use_ssl", useSSL))

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client for endpoint %s: %w", endpoint, err)
	}

	if err := client.MakeBucket(ctx, bucketName, minio.MakeBucketOptions{}); err != nil {
		exists, errExists := client.BucketExists(ctx, bucketName)
		if errExists != nil || !exists {
			return nil, fmt.Errorf("failed to make/verify bucket %s: (make: %v / exists_check: %v)", bucketName, err, errExists)
		}
		log.Info("S3Storage: bucket already exists", zap.String("bucket", bucketName))
	}

	return &S3Storage{
		client:  client,
		bucket:  bucketName,
		baseURL: client.EndpointURL().String(),
		logger:  log.Named("S3Storage"),
	}, nil
}

// Upload writes the object under key, overwriting any previous object there.
func (s *S3Storage) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	info, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		s.logger.Error("PutObject failed", zap.String("object_key", key), zap.Error(err))
		return "", domain.Remote("put object "+key, err)
	}
	s.logger.Debug("Object uploaded", zap.String("object_key", info.Key), zap.Int64("size", info.Size))
	return s.objectURL(key), nil
}

func (s *S3Storage) Delete(ctx context.Context, key string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return domain.Remote("remove object "+key, err)
	}
	return nil
}

func (s *S3Storage) ListObjects(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if obj.Err != nil {
			return keys, domain.Remote("list objects "+prefix, obj.Err)
		}
		keys = append(keys, obj.Key)
	}
	return keys, nil
}

// ObjectKeyFromURL inverts the URL scheme used by Upload.
func (s *S3Storage) ObjectKeyFromURL(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parse image url: %w", err)
	}
	base, err := url.Parse(s.baseURL)
	if err != nil {
		return "", fmt.Errorf("parse storage base url: %w", err)
	}
	if !strings.EqualFold(u.Host, base.Host) {
		return "", fmt.Errorf("image url host %q is not the storage host %q", u.Host, base.Host)
	}
	prefix := strings.TrimSuffix(base.Path, "/") + "/" + s.bucket + "/"
	path := u.Path
	if !strings.HasPrefix(path, prefix) || len(path) == len(prefix) {
		return "", fmt.Errorf("image url %q is outside bucket %s", rawURL, s.bucket)
	}
	return strings.TrimPrefix(path, prefix), nil
}

func (s *S3Storage) objectURL(key string) string {
	return fmt.Sprintf("%s/%s/%s", strings.TrimSuffix(s.baseURL, "/"), s.bucket, key)
}
