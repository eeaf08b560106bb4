package s3

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewS3Storage_ValidationAndConfig(t *testing.T) {
	_, err := NewS3Storage(context.Background(), Config{})
	require.Error(t, err)

	st, err := NewS3Storage(context.Background(), Config{
		BucketName:     "attachments",
		Region:         "us-east-1",
		Endpoint:       "localhost:9000",
		PublicEndpoint: "files.university.edu",
		AccessKey:      "x",
		SecretKey:      "y",
		UseSSL:         false,
	})
	require.NoError(t, err)
	require.NotNil(t, st)
	require.NotNil(t, st.client)
	require.NotNil(t, st.presignClient)
}

func TestNormalizeEndpoint(t *testing.T) {
	require.Equal(t, "http://x", normalizeEndpoint("http://x", true))
	require.Equal(t, "https://x", normalizeEndpoint("https://x", false))
	require.Equal(t, "https://x", normalizeEndpoint("x", true))
	require.Equal(t, "http://x", normalizeEndpoint("x", false))
}

func TestS3Storage_UploadDeleteAndPresign(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	st, err := NewS3Storage(context.Background(), Config{
		BucketName:     "attachments",
		Region:         "us-east-1",
		Endpoint:       ts.URL,
		PublicEndpoint: "files.university.edu",
		AccessKey:      "x",
		SecretKey:      "y",
		UseSSL:         false,
	})
	require.NoError(t, err)

	url, err := st.Upload(context.Background(), "tickets/t1/report.pdf", bytes.NewReader([]byte("pdf")), "application/pdf")
	require.NoError(t, err)
	require.Contains(t, url, "files.university.edu/attachments/tickets/t1/report.pdf")

	require.NoError(t, st.Delete(context.Background(), "tickets/t1/report.pdf"))

	p, err := st.PresignedURL(context.Background(), "tickets/t1/report.pdf", time.Minute)
	require.NoError(t, err)
	require.Contains(t, p, "/tickets/t1/report.pdf")

	d, err := st.PresignedDownloadURL(context.Background(), "tickets/t1/report.pdf", "report.pdf", time.Minute)
	require.NoError(t, err)
	require.Contains(t, d, "response-content-disposition")
}

func TestS3Storage_UploadAndDelete_Error(t *testing.T) {
	st, err := NewS3Storage(context.Background(), Config{
		BucketName: "attachments", Region: "us-east-1", Endpoint: "http://127.0.0.1:1", AccessKey: "x", SecretKey: "y",
	})
	require.NoError(t, err)

	_, err = st.Upload(context.Background(), "k", bytes.NewBufferString("x"), "text/plain")
	require.Error(t, err)

	require.Error(t, st.Delete(context.Background(), "k"))
}
