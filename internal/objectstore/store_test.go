package objectstore

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/minio/minio-go/v7"
	miniocreds "github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttachmentDisposition(t *testing.T) {
	assert.Equal(t, "attachment", AttachmentDisposition(""))
	assert.Equal(t, "attachment; filename=report.pdf", AttachmentDisposition("report.pdf"))
	assert.Equal(t, `attachment; filename="q3 report.pdf"`, AttachmentDisposition("q3 report.pdf"))
	assert.Contains(t, AttachmentDisposition("résumé.pdf"), "filename*=utf-8''")
}

func TestMinIOPresignGetSetsDispositionAndExpiry(t *testing.T) {
	client, err := minio.New("localhost:9000", &minio.Options{
		Creds:  miniocreds.NewStaticV4("access", "secret-secret", ""),
		Region: "us-east-1",
	})
	require.NoError(t, err)

	store := NewMinIO(client, "vault-files")
	raw, err := store.PresignGet(context.Background(), "u1/f1/report.pdf", "report.pdf", 300*time.Second)
	require.NoError(t, err)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	q := u.Query()
	assert.Equal(t, "/vault-files/u1/f1/report.pdf", u.Path)
	assert.Equal(t, "300", q.Get("X-Amz-Expires"))
	assert.Equal(t, "attachment; filename=report.pdf", q.Get("response-content-disposition"))
}

func TestS3PresignURLs(t *testing.T) {
	client := s3.New(s3.Options{
		Region:       "us-west-2",
		Credentials:  credentials.NewStaticCredentialsProvider("access", "secret", ""),
		BaseEndpoint: aws.String("http://localhost:4566"),
		UsePathStyle: true,
	})
	store := NewS3(client, "vault-files")

	raw, err := store.PresignGet(context.Background(), "u1/f1/notes.txt", "notes.txt", 5*time.Minute)
	require.NoError(t, err)
	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "300", u.Query().Get("X-Amz-Expires"))
	assert.Equal(t, "attachment; filename=notes.txt", u.Query().Get("response-content-disposition"))

	raw, err = store.PresignPut(context.Background(), "u1/f1/notes.txt", "text/plain", 5*time.Minute)
	require.NoError(t, err)
	u, err = url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "/vault-files/u1/f1/notes.txt", u.Path)
	assert.Contains(t, u.Query().Get("X-Amz-SignedHeaders"), "content-type")
}

func TestIsS3NotFound(t *testing.T) {
	assert.True(t, isS3NotFound(&types.NoSuchKey{}))
	assert.True(t, isS3NotFound(fmt.Errorf("wrapped: %w", &smithy.GenericAPIError{Code: "NoSuchKey"})))
	assert.False(t, isS3NotFound(&smithy.GenericAPIError{Code: "AccessDenied"}))
	assert.False(t, isS3NotFound(errors.New("dial tcp: timeout")))
}
