package avatars

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// MaxAvatarBytes caps uploads; profile pictures never need more.
const MaxAvatarBytes = 2 << 20

var ErrUnsupportedType = errors.New("avatars: unsupported content type")

// S3API is the subset of the S3 client used by Store.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// Store keeps provider avatars in an S3 bucket, one object per provider.
// With no bucket configured every operation is a no-op, which keeps local
// development working without object storage.
type Store struct {
	bucket    string
	publicURL string
	s3Client  S3API
	logger    *slog.Logger
}

func NewStore(s3Client S3API, bucket, publicURL string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		bucket:    bucket,
		publicURL: strings.TrimRight(publicURL, "/"),
		s3Client:  s3Client,
		logger:    logger,
	}
}

func (s *Store) Enabled() bool {
	return s != nil && s.bucket != "" && s.s3Client != nil
}

// Upload stores the avatar and returns its public URL. The object key is
// derived from the provider ID alone, so re-uploading replaces the old image.
func (s *Store) Upload(ctx context.Context, providerID, contentType string, data []byte) (string, error) {
	if !s.Enabled() {
		return "", nil
	}

	ext, ok := extensionFor(contentType)
	if !ok {
		return "", ErrUnsupportedType
	}

	key := fmt.Sprintf("avatars/v1/%s%s", providerID, ext)
	_, err := s.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("avatars: s3 put %s: %w", key, err)
	}

	s.logger.Info("avatar uploaded", "provider_id", providerID, "s3_key", key, "bytes", len(data))
	return s.publicURL + "/" + key, nil
}

// Remove deletes the avatar object for all supported extensions. Missing
// objects are not an error.
func (s *Store) Remove(ctx context.Context, providerID string) error {
	if !s.Enabled() {
		return nil
	}
	for _, ext := range []string{".jpg", ".png", ".webp"} {
		key := fmt.Sprintf("avatars/v1/%s%s", providerID, ext)
		if _, err := s.s3Client.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(key),
		}); err != nil {
			return fmt.Errorf("avatars: s3 delete %s: %w", key, err)
		}
	}
	return nil
}

func extensionFor(contentType string) (string, bool) {
	switch contentType {
	case "image/jpeg":
		return ".jpg", true
	case "image/png":
		return ".png", true
	case "image/webp":
		return ".webp", true
	}
	return "", false
}
