// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package media_test

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"codeberg.org/oliverandrich/greengrocer/internal/config"
	"codeberg.org/oliverandrich/greengrocer/internal/services/media"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	calls    int
	failures int
	inputs   []*s3.PutObjectInput
	bodies   [][]byte
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.calls++
	if _, ok := ctx.Deadline(); !ok {
		return nil, errors.New("expected a deadline")
	}
	if f.calls <= f.failures {
		return nil, errors.New("503 slow down")
	}
	body, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.inputs = append(f.inputs, in)
	f.bodies = append(f.bodies, body)
	return &s3.PutObjectOutput{}, nil
}

func testConfig() *config.MediaConfig {
	return &config.MediaConfig{
		Bucket:        "produce",
		PublicBaseURL: "https://cdn.example.com/produce/",
		Prefix:        "fruit-images",
	}
}

func newTestUploader(client media.ObjectPutter) *media.Uploader {
	u := media.NewUploaderWithClient(testConfig(), client)
	u.SetBackoff(time.Millisecond)
	return u
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name        string
		id          string
		contentType string
		size        int64
		err         error
	}{
		{"ok", "abc", "image/png", 1024, nil},
		{"exactly max", "abc", "image/jpeg", media.MaxSize, nil},
		{"missing file", "abc", "image/png", 0, media.ErrMissingFile},
		{"missing id", " ", "image/png", 10, media.ErrMissingID},
		{"not an image", "abc", "application/pdf", 10, media.ErrNotImage},
		{"too large", "abc", "image/png", 15 << 20, media.ErrTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := media.Validate(tt.id, tt.contentType, tt.size)
			if tt.err == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestUpload(t *testing.T) {
	client := &fakeS3{}
	u := newTestUploader(client)

	res, err := u.Upload(context.Background(), "1234", "image/jpeg", []byte("jpegdata"))

	require.NoError(t, err)
	assert.Equal(t, "fruit-images/fruit_1234", res.PublicID)
	assert.Equal(t, "https://cdn.example.com/produce/fruit-images/fruit_1234.jpg", res.ImageURL)

	require.Len(t, client.inputs, 1)
	in := client.inputs[0]
	assert.Equal(t, "produce", aws.ToString(in.Bucket))
	assert.Equal(t, "fruit-images/fruit_1234.jpg", aws.ToString(in.Key))
	assert.Equal(t, "image/jpeg", aws.ToString(in.ContentType))
	assert.Equal(t, []byte("jpegdata"), client.bodies[0])
}

func TestUpload_RetriesWithFreshBody(t *testing.T) {
	client := &fakeS3{failures: 2}
	u := newTestUploader(client)

	_, err := u.Upload(context.Background(), "1234", "image/png", []byte("pngdata"))

	require.NoError(t, err)
	assert.Equal(t, 3, client.calls)
	assert.Equal(t, []byte("pngdata"), client.bodies[0])
}

func TestUpload_UpstreamFailure(t *testing.T) {
	client := &fakeS3{failures: 10}
	u := newTestUploader(client)

	_, err := u.Upload(context.Background(), "1234", "image/png", []byte("pngdata"))

	require.ErrorIs(t, err, media.ErrUploadFailed)
	assert.Equal(t, media.MaxAttempts, client.calls)
}

func TestUpload_RejectsBeforeUpstream(t *testing.T) {
	client := &fakeS3{}
	u := newTestUploader(client)

	_, err := u.Upload(context.Background(), "1234", "image/png", make([]byte, 15<<20))

	require.ErrorIs(t, err, media.ErrTooLarge)
	assert.Zero(t, client.calls)
}

func TestPublicID_NoPrefix(t *testing.T) {
	cfg := testConfig()
	cfg.Prefix = ""
	u := media.NewUploaderWithClient(cfg, &fakeS3{})

	assert.Equal(t, "fruit_1234", u.PublicID("1234"))
}

func TestNewUploader_NotEnabled(t *testing.T) {
	_, err := media.NewUploader(context.Background(), &config.MediaConfig{})

	assert.ErrorIs(t, err, media.ErrNotEnabled)
}

func TestNewUploader_CustomEndpoint(t *testing.T) {
	cfg := testConfig()
	cfg.Region = "us-east-1"
	cfg.Endpoint = "http://127.0.0.1:9000"
	cfg.AccessKey = "minio"
	cfg.SecretKey = "minio123"

	u, err := media.NewUploader(context.Background(), cfg)

	require.NoError(t, err)
	assert.NotNil(t, u)
}
