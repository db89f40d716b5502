package summarize

import "github.com/abduss/filevault/internal/apperr"

var (
	// ErrMissingFileID signals a summary request without a fileId.
	ErrMissingFileID = apperr.Validation("Missing fileId").WithDetail("fileId is required")
	// ErrFetchFailed signals an unclassified failure reading the file content.
	ErrFetchFailed = apperr.Upstream("Content fetch failed", 0, nil)
	// ErrGeneration signals a failed text-generation call.
	ErrGeneration = apperr.Upstream("AI summarization failed", 0, nil)
)
