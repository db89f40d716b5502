package file

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/abduss/filevault/internal/apperr"
	"github.com/abduss/filevault/internal/config"
	"github.com/abduss/filevault/internal/logger"
	"github.com/abduss/filevault/internal/metrics"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type metadataStore interface {
	Get(ctx context.Context, ownerID, fileID string) (Record, error)
	Put(ctx context.Context, rec Record) error
	Delete(ctx context.Context, ownerID, fileID string) (Record, error)
	ListByOwner(ctx context.Context, ownerID string) ([]Record, error)
}

type objectStore interface {
	PresignGet(ctx context.Context, key, downloadName string, ttl time.Duration) (string, error)
	PresignPut(ctx context.Context, key, contentType string, ttl time.Duration) (string, error)
	Delete(ctx context.Context, key string) error
}

// Service manages the file lifecycle: upload URLs, listing, download URLs and
// deletion. Bytes never pass through it.
type Service struct {
	repo        metadataStore
	owner       *OwnershipResolver
	objects     objectStore
	uploadTTL   time.Duration
	downloadTTL time.Duration
	nowFunc     func() time.Time
	newID       func() string
}

// NewService constructs a file service.
func NewService(repo metadataStore, objects objectStore, cfg config.UploadConfig) *Service {
	return &Service{
		repo:        repo,
		owner:       NewOwnershipResolver(repo),
		objects:     objects,
		uploadTTL:   cfg.URLTTL,
		downloadTTL: cfg.DownloadTTL,
		nowFunc:     time.Now,
		newID:       uuid.NewString,
	}
}

// Owner exposes the ownership resolver shared with the share and content paths.
func (s *Service) Owner() *OwnershipResolver {
	return s.owner
}

// UploadRequest describes a file the client is about to upload.
type UploadRequest struct {
	FileName    string
	ContentType string
	Size        *int64
}

// UploadTicket is what a client needs to PUT the bytes.
type UploadTicket struct {
	Record    Record
	UploadURL string
	ExpiresIn time.Duration
}

// CreateUpload mints a file id, signs a PUT URL for its storage key and
// records the file as pending.
func (s *Service) CreateUpload(ctx context.Context, ownerID string, req UploadRequest) (UploadTicket, error) {
	if strings.TrimSpace(ownerID) == "" {
		return UploadTicket{}, ErrNoCaller
	}
	name := strings.TrimSpace(req.FileName)
	if name == "" {
		return UploadTicket{}, ErrMissingFileName
	}
	if req.Size != nil && *req.Size < 0 {
		return UploadTicket{}, ErrInvalidSize
	}
	contentType := strings.TrimSpace(req.ContentType)
	if contentType == "" {
		contentType = DefaultContentType
	}

	fileID := s.newID()
	rec := Record{
		OwnerID:     ownerID,
		FileID:      fileID,
		FileName:    name,
		StorageKey:  StorageKey(ownerID, fileID, name),
		ContentType: contentType,
		Size:        req.Size,
		Status:      StatusPending,
		UploadedAt:  s.nowFunc().UTC(),
	}

	uploadURL, err := s.objects.PresignPut(ctx, rec.StorageKey, contentType, s.uploadTTL)
	if err != nil {
		return UploadTicket{}, apperr.Internal("Failed to generate upload URL", err)
	}
	if err := s.repo.Put(ctx, rec); err != nil {
		return UploadTicket{}, apperr.Internal("Failed to save file metadata", err)
	}

	metrics.FileOperations.WithLabelValues("create").Inc()
	logger.FromContext(ctx).Info("upload url issued",
		zap.String("file_id", fileID),
		zap.String("content_type", contentType),
	)

	return UploadTicket{Record: rec, UploadURL: uploadURL, ExpiresIn: s.uploadTTL}, nil
}

// List returns the owner's files, newest first.
func (s *Service) List(ctx context.Context, ownerID string) ([]Record, error) {
	if strings.TrimSpace(ownerID) == "" {
		return nil, ErrNoCaller
	}
	records, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, apperr.Internal("Failed to list files", err)
	}

	owned := records[:0]
	for _, rec := range records {
		if rec.OwnerID == ownerID {
			owned = append(owned, rec)
		}
	}
	sort.SliceStable(owned, func(i, j int) bool {
		return owned[i].UploadedAt.After(owned[j].UploadedAt)
	})
	return owned, nil
}

// DownloadTicket carries a short-lived signed GET URL for one file.
type DownloadTicket struct {
	Record      Record
	DownloadURL string
	ExpiresIn   time.Duration
}

// Download signs a GET URL for the caller's file, served as an attachment.
func (s *Service) Download(ctx context.Context, ownerID, fileID string) (DownloadTicket, error) {
	rec, err := s.owner.Resolve(ctx, ownerID, fileID)
	if err != nil {
		return DownloadTicket{}, err
	}

	downloadURL, err := s.objects.PresignGet(ctx, rec.StorageKey, rec.FileName, s.downloadTTL)
	if err != nil {
		return DownloadTicket{}, apperr.Internal("Failed to generate download URL", err)
	}
	return DownloadTicket{Record: rec, DownloadURL: downloadURL, ExpiresIn: s.downloadTTL}, nil
}

// Delete removes the object and then its metadata. A failed metadata delete
// leaves the record in place so the caller can retry.
func (s *Service) Delete(ctx context.Context, ownerID, fileID string) (Record, error) {
	rec, err := s.owner.Resolve(ctx, ownerID, fileID)
	if err != nil {
		return Record{}, err
	}

	if err := s.objects.Delete(ctx, rec.StorageKey); err != nil {
		return Record{}, apperr.Internal("Failed to delete file", fmt.Errorf("remove object: %w", err))
	}
	deleted, err := s.repo.Delete(ctx, rec.OwnerID, rec.FileID)
	if err != nil {
		if apperr.KindOf(err) == apperr.KindNotFound {
			return Record{}, err
		}
		return Record{}, apperr.Internal("Failed to delete file", err)
	}

	metrics.FileOperations.WithLabelValues("delete").Inc()
	logger.FromContext(ctx).Info("file deleted", zap.String("file_id", deleted.FileID))
	return deleted, nil
}
