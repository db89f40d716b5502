// Package resource serves file listings and extracted file text to the
// summarizer, either in-process, over POST /mcp or as a separately deployed
// function.
package resource

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/abduss/filevault/internal/apperr"
	"github.com/abduss/filevault/internal/file"
	"github.com/abduss/filevault/internal/logger"
	"github.com/abduss/filevault/internal/objectstore"
	"github.com/ledongthuc/pdf"
	"go.uber.org/zap"
)

// MaxReadBytes bounds how much of an object Read loads into memory.
const MaxReadBytes = 64 << 20

type fileLister interface {
	List(ctx context.Context, ownerID string) ([]file.Record, error)
}

type fileResolver interface {
	Resolve(ctx context.Context, callerID, fileID string) (file.Record, error)
}

type objectReader interface {
	Get(ctx context.Context, key string) (io.ReadCloser, error)
}

// Service lists and reads the caller's files.
type Service struct {
	files   fileLister
	owner   fileResolver
	objects objectReader
	bucket  string
}

// NewService constructs the content service. bucket only shapes resource URIs.
func NewService(files fileLister, owner fileResolver, objects objectReader, bucket string) *Service {
	return &Service{files: files, owner: owner, objects: objects, bucket: bucket}
}

// List returns the caller's files as resources.
func (s *Service) List(ctx context.Context, ownerID string) (ListResult, error) {
	records, err := s.files.List(ctx, ownerID)
	if err != nil {
		return ListResult{}, err
	}

	out := ListResult{Resources: make([]Resource, 0, len(records))}
	for _, rec := range records {
		res := Resource{
			ID:       rec.FileID,
			Name:     rec.FileName,
			URI:      fmt.Sprintf("s3://%s/%s", s.bucket, rec.StorageKey),
			MimeType: rec.ContentType,
		}
		if res.MimeType == "" {
			res.MimeType = file.DefaultContentType
		}
		if rec.Size != nil {
			res.Size = *rec.Size
		}
		out.Resources = append(out.Resources, res)
	}
	return out, nil
}

// Read returns the file's content as text. PDFs are reduced to their text;
// other bytes that are not valid UTF-8 come back base64 encoded.
func (s *Service) Read(ctx context.Context, ownerID, fileID string) (Content, error) {
	if strings.TrimSpace(fileID) == "" {
		return Content{}, ErrMissingResourceID
	}
	rec, err := s.owner.Resolve(ctx, ownerID, fileID)
	if err != nil {
		return Content{}, err
	}

	data, err := s.load(ctx, rec.StorageKey)
	if err != nil {
		return Content{}, err
	}

	out := Content{FileName: rec.FileName, MimeType: rec.ContentType, Encoding: EncodingText}
	if out.MimeType == "" {
		out.MimeType = file.DefaultContentType
	}

	if isPDF(rec) {
		text, err := extractPDFText(data)
		if err != nil {
			logger.FromContext(ctx).Warn("pdf extraction failed", zap.String("file_id", rec.FileID), zap.Error(err))
			return Content{}, ErrPDFExtraction.WithDetail("could not extract text from PDF")
		}
		data = []byte(text)
	}

	if utf8.Valid(data) {
		out.Content = string(data)
	} else {
		out.Content = base64.StdEncoding.EncodeToString(data)
		out.Encoding = EncodingBase64
	}
	return out, nil
}

// Handle dispatches a content-endpoint request for ownerID.
func (s *Service) Handle(ctx context.Context, ownerID string, req Request) (any, error) {
	switch req.Action {
	case ActionList:
		return s.List(ctx, ownerID)
	case ActionRead:
		return s.Read(ctx, ownerID, req.ResourceID)
	default:
		return nil, ErrInvalidAction.WithDetail("action must be %q or %q, got %q", ActionList, ActionRead, req.Action)
	}
}

func (s *Service) load(ctx context.Context, key string) ([]byte, error) {
	body, err := s.objects.Get(ctx, key)
	if err != nil {
		if errors.Is(err, objectstore.ErrObjectNotFound) {
			return nil, ErrObjectMissing
		}
		return nil, apperr.Internal("Failed to read file", err)
	}
	defer body.Close()

	data, err := io.ReadAll(io.LimitReader(body, MaxReadBytes+1))
	if err != nil {
		return nil, apperr.Internal("Failed to read file", err)
	}
	if len(data) > MaxReadBytes {
		return nil, ErrTooLarge
	}
	return data, nil
}

func isPDF(rec file.Record) bool {
	return strings.HasSuffix(strings.ToLower(rec.FileName), ".pdf") ||
		strings.EqualFold(rec.ContentType, "application/pdf")
}

// extractPDFText returns the plain text of every page. The parser panics on
// some malformed input; that is reported as an error.
func extractPDFText(data []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("parse pdf: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	plain, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extract pdf text: %w", err)
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(plain); err != nil {
		return "", fmt.Errorf("read pdf text: %w", err)
	}
	return buf.String(), nil
}
