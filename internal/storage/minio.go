package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rs/zerolog"

	"fleet-service/internal/config"
)

const refScheme = "s3://"

// ErrForeignBucket is returned for refs that name a bucket other than the
// configured one.
var ErrForeignBucket = errors.New("image ref points outside the image bucket")

// ImageStore keeps vehicle pictures in an S3 compatible bucket. Stored
// objects are addressed by refs of the form s3://bucket/key.
type ImageStore struct {
	client *minio.Client
	bucket string
	expiry time.Duration
	log    zerolog.Logger
}

func NewImageStore(cfg config.S3Config, log zerolog.Logger) (*ImageStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}
	return &ImageStore{
		client: client,
		bucket: cfg.Bucket,
		expiry: cfg.URLExpiry,
		log:    log,
	}, nil
}

// EnsureBucket creates the bucket when it does not exist yet.
func (s *ImageStore) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if exists {
		return nil
	}
	s.log.Info().Str("bucket", s.bucket).Msg("bucket does not exist, creating")
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("failed to create bucket: %w", err)
	}
	return nil
}

func (s *ImageStore) Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error) {
	_, err := s.client.PutObject(ctx, s.bucket, key, body, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload image: %w", err)
	}
	return FormatRef(s.bucket, key), nil
}

// URL resolves a stored ref to a presigned GET url. Anything that is not an
// s3 ref is returned unchanged; refs into other buckets are refused.
func (s *ImageStore) URL(ctx context.Context, ref string) (string, error) {
	key, ok, err := s.ownKey(ref)
	if err != nil {
		return "", err
	}
	if !ok {
		return ref, nil
	}
	presigned, err := s.client.PresignedGetObject(ctx, s.bucket, key, s.expiry, url.Values{})
	if err != nil {
		return "", fmt.Errorf("failed to generate presigned url: %w", err)
	}
	return presigned.String(), nil
}

func (s *ImageStore) Remove(ctx context.Context, ref string) error {
	key, ok, err := s.ownKey(ref)
	if err != nil || !ok {
		return err
	}
	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to remove image: %w", err)
	}
	return nil
}

// ownKey returns the object key of an s3 ref in this store's bucket. ok is
// false for non-s3 refs.
func (s *ImageStore) ownKey(ref string) (string, bool, error) {
	bucket, key, ok := ParseRef(ref)
	if !ok {
		return "", false, nil
	}
	if bucket != s.bucket {
		return "", false, fmt.Errorf("%w: %s", ErrForeignBucket, bucket)
	}
	return key, true, nil
}

func FormatRef(bucket, key string) string {
	return refScheme + bucket + "/" + key
}

// ParseRef splits s3://bucket/key. ok is false for any other string.
func ParseRef(ref string) (bucket, key string, ok bool) {
	rest, found := strings.CutPrefix(ref, refScheme)
	if !found {
		return "", "", false
	}
	bucket, key, found = strings.Cut(rest, "/")
	if !found || bucket == "" || key == "" {
		return "", "", false
	}
	return bucket, key, true
}
