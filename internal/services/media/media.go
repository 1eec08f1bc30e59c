// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package media uploads catalog images to an S3-compatible object store.
package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"strings"
	"time"

	"codeberg.org/oliverandrich/greengrocer/internal/config"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/sethvargo/go-retry"
)

const (
	// MaxSize is the largest accepted image in bytes.
	MaxSize = 10 << 20
	// MaxAttempts is the number of upload attempts per image.
	MaxAttempts = 3
	// DefaultTimeout bounds a single upload attempt.
	DefaultTimeout = 10 * time.Second
)

var (
	ErrMissingFile  = errors.New("no file uploaded")
	ErrMissingID    = errors.New("fruit id is required")
	ErrNotImage     = errors.New("only image files are allowed")
	ErrTooLarge     = errors.New("file size must be less than 10MB")
	ErrNotEnabled   = errors.New("image uploads are not configured")
	ErrUploadFailed = errors.New("image upload failed")
)

// ObjectPutter is the subset of the S3 client used for uploads.
type ObjectPutter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Result identifies an uploaded image.
type Result struct {
	ImageURL string `json:"imageUrl"`
	PublicID string `json:"publicId"`
}

// Uploader stores catalog images under a fixed key per item, so a new
// upload replaces the previous image.
type Uploader struct {
	client  ObjectPutter
	bucket  string
	prefix  string
	baseURL string
	timeout time.Duration
	backoff time.Duration
}

// NewUploader creates an Uploader for the configured bucket.
func NewUploader(ctx context.Context, cfg *config.MediaConfig) (*Uploader, error) {
	if !cfg.Enabled() {
		return nil, ErrNotEnabled
	}

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return NewUploaderWithClient(cfg, client), nil
}

// NewUploaderWithClient creates an Uploader that talks to client.
func NewUploaderWithClient(cfg *config.MediaConfig, client ObjectPutter) *Uploader {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Uploader{
		client:  client,
		bucket:  cfg.Bucket,
		prefix:  strings.Trim(cfg.Prefix, "/"),
		baseURL: strings.TrimSuffix(cfg.PublicBaseURL, "/"),
		timeout: timeout,
		backoff: 250 * time.Millisecond,
	}
}

// Validate checks an upload before any data is sent upstream.
func Validate(fruitID, contentType string, size int64) error {
	switch {
	case size <= 0:
		return ErrMissingFile
	case strings.TrimSpace(fruitID) == "":
		return ErrMissingID
	case !strings.HasPrefix(contentType, "image/"):
		return ErrNotImage
	case size > MaxSize:
		return ErrTooLarge
	}
	return nil
}

// PublicID returns the stable identifier of the image for fruitID.
func (u *Uploader) PublicID(fruitID string) string {
	name := "fruit_" + fruitID
	if u.prefix == "" {
		return name
	}
	return u.prefix + "/" + name
}

// Upload stores data as the image of fruitID.
func (u *Uploader) Upload(ctx context.Context, fruitID, contentType string, data []byte) (*Result, error) {
	if err := Validate(fruitID, contentType, int64(len(data))); err != nil {
		return nil, err
	}

	publicID := u.PublicID(fruitID)
	key := publicID + extension(contentType)

	backoff := retry.WithMaxRetries(MaxAttempts-1, retry.NewExponential(u.backoff))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attemptCtx, cancel := context.WithTimeout(ctx, u.timeout)
		defer cancel()

		_, err := u.client.PutObject(attemptCtx, &s3.PutObjectInput{
			Bucket:        aws.String(u.bucket),
			Key:           aws.String(key),
			Body:          bytes.NewReader(data),
			ContentType:   aws.String(contentType),
			ContentLength: aws.Int64(int64(len(data))),
		})
		if err != nil {
			slog.Warn("image_upload_retry", "key", key, "error", err)
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUploadFailed, err)
	}

	slog.Info("image_uploaded", "key", key, "size", len(data))
	return &Result{
		ImageURL: u.baseURL + "/" + key,
		PublicID: publicID,
	}, nil
}

var knownExtensions = map[string]string{
	"image/jpeg":    ".jpg",
	"image/png":     ".png",
	"image/gif":     ".gif",
	"image/webp":    ".webp",
	"image/avif":    ".avif",
	"image/svg+xml": ".svg",
}

func extension(contentType string) string {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}
	if ext, ok := knownExtensions[mediaType]; ok {
		return ext
	}
	if exts, err := mime.ExtensionsByType(mediaType); err == nil && len(exts) > 0 {
		return exts[0]
	}
	return ""
}
