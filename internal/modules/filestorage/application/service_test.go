package application_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eduticket/eduticket-api/internal/modules/filestorage/application"
)

type mockStorage struct {
	uploadFn          func(context.Context, string, io.Reader, string) (string, error)
	deleteFn          func(context.Context, string) error
	presignFn         func(context.Context, string, time.Duration) (string, error)
	presignDownloadFn func(context.Context, string, string, time.Duration) (string, error)
}

func (m mockStorage) Upload(ctx context.Context, key string, content io.Reader, ct string) (string, error) {
	return m.uploadFn(ctx, key, content, ct)
}
func (m mockStorage) Delete(ctx context.Context, key string) error { return m.deleteFn(ctx, key) }
func (m mockStorage) PresignedURL(ctx context.Context, key string, d time.Duration) (string, error) {
	return m.presignFn(ctx, key, d)
}
func (m mockStorage) PresignedDownloadURL(ctx context.Context, key, filename string, d time.Duration) (string, error) {
	return m.presignDownloadFn(ctx, key, filename, d)
}

func TestFileService_Methods(t *testing.T) {
	var gotKey, gotContentType string
	svc := application.NewFileService(mockStorage{
		uploadFn: func(_ context.Context, key string, content io.Reader, ct string) (string, error) {
			gotKey, gotContentType = key, ct
			_, _ = io.Copy(io.Discard, content)
			return "url", nil
		},
		deleteFn:          func(context.Context, string) error { return nil },
		presignFn:         func(context.Context, string, time.Duration) (string, error) { return "p", nil },
		presignDownloadFn: func(context.Context, string, string, time.Duration) (string, error) { return "pd", nil },
	})

	url, err := svc.UploadWithKey(context.Background(), bytes.NewBufferString("x"), "tickets/t1/a.pdf", "application/pdf")
	require.NoError(t, err)
	assert.Equal(t, "url", url)
	assert.Equal(t, "tickets/t1/a.pdf", gotKey)
	assert.Equal(t, "application/pdf", gotContentType)

	p, err := svc.GetPresignedURL(context.Background(), "k", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, "p", p)

	pd, err := svc.GetPresignedDownloadURL(context.Background(), "k", "a.pdf", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, "pd", pd)

	require.NoError(t, svc.Delete(context.Background(), "k"))
}

func TestFileService_UploadError(t *testing.T) {
	svc := application.NewFileService(mockStorage{
		uploadFn: func(context.Context, string, io.Reader, string) (string, error) {
			return "", errors.New("bucket unreachable")
		},
	})

	_, err := svc.UploadWithKey(context.Background(), bytes.NewBufferString("x"), "k", "text/plain")
	require.Error(t, err)
}
