// Package media stores user supplied profile images in an S3 compatible bucket.
package media

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/researchhive/hive-api/internal/config"
)

var (
	// ErrUploadsDisabled is returned when no bucket is configured.
	ErrUploadsDisabled = errors.New("profile picture uploads are not configured")
	// ErrInvalidImage is returned for payloads that are not a decodable image.
	ErrInvalidImage = errors.New("profile picture must be a base64 encoded image")
	// ErrImageTooLarge is returned when the decoded image exceeds the limit.
	ErrImageTooLarge = errors.New("profile picture is too large")
	// ErrForeignURL is returned when deleting a URL this uploader did not produce.
	ErrForeignURL = errors.New("image url does not belong to this bucket")
)

// Uploader stores an image and returns its public URL. DeleteImage removes an
// image previously returned by UploadImage.
type Uploader interface {
	UploadImage(ctx context.Context, data string) (string, error)
	DeleteImage(ctx context.Context, url string) error
}

// ObjectStore is the subset of the S3 client used by S3Uploader.
type ObjectStore interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Uploader writes images to a bucket under profile-pics/.
type S3Uploader struct {
	client   ObjectStore
	bucket   string
	baseURL  string
	maxBytes int
	now      func() time.Time
}

// NewS3Uploader builds an uploader around an existing client.
func NewS3Uploader(client ObjectStore, cfg config.MediaConfig) *S3Uploader {
	baseURL := strings.TrimRight(cfg.PublicBaseURL, "/")
	if baseURL == "" {
		baseURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
	}
	maxMB := cfg.MaxImageMB
	if maxMB <= 0 {
		maxMB = 10
	}
	return &S3Uploader{
		client:   client,
		bucket:   cfg.Bucket,
		baseURL:  baseURL,
		maxBytes: maxMB * 1024 * 1024,
		now:      time.Now,
	}
}

// NewUploader returns an S3 backed uploader, or a disabled one when the bucket is unset.
func NewUploader(ctx context.Context, cfg config.MediaConfig) (Uploader, error) {
	if !cfg.Enabled() {
		return Disabled{}, nil
	}

	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return NewS3Uploader(client, cfg), nil
}

// UploadImage decodes a data URI (or bare base64), checks that it is an image
// and stores it.
func (u *S3Uploader) UploadImage(ctx context.Context, data string) (string, error) {
	raw, err := decodeImage(data, u.maxBytes)
	if err != nil {
		return "", err
	}
	mime := mimetype.Detect(raw)
	if !strings.HasPrefix(mime.String(), "image/") {
		return "", ErrInvalidImage
	}

	now := u.now().UTC()
	key := fmt.Sprintf("profile-pics/%d/%02d/%s%s", now.Year(), now.Month(), uuid.NewString(), mime.Extension())
	if _, err := u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(raw),
		ContentType: aws.String(mime.String()),
	}); err != nil {
		return "", fmt.Errorf("put object: %w", err)
	}
	return u.baseURL + "/" + key, nil
}

// DeleteImage removes the object behind url. URLs outside this bucket's
// public base are rejected.
func (u *S3Uploader) DeleteImage(ctx context.Context, url string) error {
	key, ok := strings.CutPrefix(url, u.baseURL+"/")
	if !ok || key == "" {
		return fmt.Errorf("%w: %s", ErrForeignURL, url)
	}
	if _, err := u.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(u.bucket),
		Key:    aws.String(key),
	}); err != nil {
		return fmt.Errorf("delete object: %w", err)
	}
	return nil
}

// Disabled rejects every upload.
type Disabled struct{}

func (Disabled) UploadImage(context.Context, string) (string, error) {
	return "", ErrUploadsDisabled
}

func (Disabled) DeleteImage(context.Context, string) error {
	return nil
}

func decodeImage(data string, maxBytes int) ([]byte, error) {
	payload := strings.TrimSpace(data)
	if strings.HasPrefix(payload, "data:") {
		comma := strings.IndexByte(payload, ',')
		if comma < 0 || !strings.HasSuffix(payload[:comma], ";base64") {
			return nil, ErrInvalidImage
		}
		payload = payload[comma+1:]
	}
	if payload == "" {
		return nil, ErrInvalidImage
	}
	if base64.StdEncoding.DecodedLen(len(payload)) > maxBytes+2 {
		return nil, ErrImageTooLarge
	}
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, ErrInvalidImage
	}
	if len(raw) > maxBytes {
		return nil, ErrImageTooLarge
	}
	return raw, nil
}
