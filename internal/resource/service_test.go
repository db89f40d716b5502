package resource

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"testing"

	"github.com/abduss/filevault/internal/apperr"
	"github.com/abduss/filevault/internal/file"
	"github.com/abduss/filevault/internal/objectstore"
	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService() (*Service, *fakeObjects) {
	size := int64(11)
	files := &fakeFiles{records: []file.Record{
		{OwnerID: "user-a", FileID: "f-txt", FileName: "notes.txt", StorageKey: "user-a/f-txt/notes.txt", ContentType: "text/plain", Size: &size},
		{OwnerID: "user-a", FileID: "f-bin", FileName: "blob.bin", StorageKey: "user-a/f-bin/blob.bin"},
		{OwnerID: "user-a", FileID: "f-pdf", FileName: "Broken.PDF", StorageKey: "user-a/f-pdf/Broken.PDF", ContentType: "application/pdf"},
		{OwnerID: "user-a", FileID: "f-gone", FileName: "gone.txt", StorageKey: "user-a/f-gone/gone.txt"},
		{OwnerID: "user-b", FileID: "f-b", FileName: "b.txt", StorageKey: "user-b/f-b/b.txt"},
	}}
	objects := &fakeObjects{data: map[string][]byte{
		"user-a/f-txt/notes.txt":  []byte("hello world"),
		"user-a/f-bin/blob.bin":   {0xff, 0xfe, 0x00, 0x01},
		"user-a/f-pdf/Broken.PDF": []byte("definitely not a pdf"),
		"user-b/f-b/b.txt":        []byte("bob"),
	}}
	return NewService(files, files, objects, "vault-files"), objects
}

func TestListMapsRecordsToResources(t *testing.T) {
	svc, _ := newTestService()

	res, err := svc.List(context.Background(), "user-a")
	require.NoError(t, err)
	require.Len(t, res.Resources, 4)

	first := res.Resources[0]
	assert.Equal(t, "f-txt", first.ID)
	assert.Equal(t, "s3://vault-files/user-a/f-txt/notes.txt", first.URI)
	assert.Equal(t, int64(11), first.Size)
	assert.Equal(t, file.DefaultContentType, res.Resources[1].MimeType)
}

func TestReadTextAndBinary(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	content, err := svc.Read(ctx, "user-a", "f-txt")
	require.NoError(t, err)
	assert.Equal(t, "hello world", content.Content)
	assert.Equal(t, EncodingText, content.Encoding)
	assert.Equal(t, "notes.txt", content.FileName)

	content, err = svc.Read(ctx, "user-a", "f-bin")
	require.NoError(t, err)
	assert.Equal(t, EncodingBase64, content.Encoding)
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte{0xff, 0xfe, 0x00, 0x01}), content.Content)
}

func TestReadFailures(t *testing.T) {
	svc, objects := newTestService()
	ctx := context.Background()

	_, err := svc.Read(ctx, "user-a", "")
	assert.True(t, errors.Is(err, ErrMissingResourceID))

	_, err = svc.Read(ctx, "user-b", "f-txt")
	assert.True(t, errors.Is(err, file.ErrFileNotFound))

	_, err = svc.Read(ctx, "user-a", "f-gone")
	assert.True(t, errors.Is(err, ErrObjectMissing))

	_, err = svc.Read(ctx, "user-a", "f-pdf")
	assert.True(t, errors.Is(err, ErrPDFExtraction))

	objects.err = errors.New("connection refused")
	_, err = svc.Read(ctx, "user-a", "f-txt")
	assert.Equal(t, apperr.KindInternal, apperr.KindOf(err))
}

func TestHandleRejectsUnknownAction(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Handle(context.Background(), "user-a", Request{Action: "resources/write"})
	require.True(t, errors.Is(err, ErrInvalidAction))
	status, body := apperr.Render(err)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, body.Message, "resources/write")
}

func TestInvocationHandler(t *testing.T) {
	svc, _ := newTestService()
	h := NewInvocationHandler(svc)
	ctx := context.Background()

	resp, err := h.Handle(ctx, events.APIGatewayProxyRequest{Body: `{"action":"resources/read","resource_id":"f-txt","userId":"user-a"}`})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "*", resp.Headers["Access-Control-Allow-Origin"])
	var content Content
	require.NoError(t, json.Unmarshal([]byte(resp.Body), &content))
	assert.Equal(t, "hello world", content.Content)

	resp, err = h.Handle(ctx, events.APIGatewayProxyRequest{Body: `{"action":"resources/read","resource_id":"f-b","userId":"user-a"}`})
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, err = h.Handle(ctx, events.APIGatewayProxyRequest{Body: `{"action":"resources/list"}`})
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, err = h.Handle(ctx, events.APIGatewayProxyRequest{Body: `not json`})
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

// --- fakes ---

type fakeFiles struct {
	records []file.Record
}

func (f *fakeFiles) List(ctx context.Context, ownerID string) ([]file.Record, error) {
	var out []file.Record
	for _, rec := range f.records {
		if rec.OwnerID == ownerID {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (f *fakeFiles) Resolve(ctx context.Context, callerID, fileID string) (file.Record, error) {
	for _, rec := range f.records {
		if rec.OwnerID == callerID && rec.FileID == fileID {
			return rec, nil
		}
	}
	return file.Record{}, file.ErrFileNotFound
}

type fakeObjects struct {
	data map[string][]byte
	err  error
}

func (f *fakeObjects) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	if f.err != nil {
		return nil, f.err
	}
	data, ok := f.data[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", objectstore.ErrObjectNotFound, key)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}
