package file

import (
	"context"
	"errors"
	"strings"

	"github.com/abduss/filevault/internal/apperr"
)

type recordGetter interface {
	Get(ctx context.Context, ownerID, fileID string) (Record, error)
}

// OwnershipResolver loads a file record on behalf of a caller. Every
// file-scoped operation goes through it before touching the object store.
type OwnershipResolver struct {
	repo recordGetter
}

// NewOwnershipResolver constructs a resolver over the metadata store.
func NewOwnershipResolver(repo recordGetter) *OwnershipResolver {
	return &OwnershipResolver{repo: repo}
}

// Resolve returns the caller's record for fileID. callerID is used exactly as
// the identity layer issued it; it is never normalized.
//
// The lookup is by composite key, so another owner's file simply misses. The
// owner and key-prefix checks below run anyway; a record that fails them is
// reported as not found (ownership) or as corrupt (key), never returned.
func (r *OwnershipResolver) Resolve(ctx context.Context, callerID, fileID string) (Record, error) {
	fileID = strings.TrimSpace(fileID)
	if strings.TrimSpace(callerID) == "" {
		return Record{}, ErrNoCaller
	}
	if fileID == "" {
		return Record{}, ErrMissingFileID
	}

	rec, err := r.repo.Get(ctx, callerID, fileID)
	if err != nil {
		if errors.Is(err, ErrFileNotFound) {
			return Record{}, ErrFileNotFound
		}
		return Record{}, apperr.Internal("Failed to load file metadata", err)
	}
	if rec.OwnerID != callerID {
		return Record{}, ErrFileNotFound
	}
	if !strings.HasPrefix(rec.StorageKey, KeyPrefix(callerID, fileID)) {
		return Record{}, ErrCorruptRecord.WithDetail("storage key outside owner namespace")
	}
	return rec, nil
}
