package file

import "github.com/abduss/filevault/internal/apperr"

var (
	// ErrFileNotFound covers both a missing record and one owned by someone else.
	ErrFileNotFound = apperr.NotFound("File not found")
	// ErrMissingFileID signals that the request named no file.
	ErrMissingFileID = apperr.Validation("Missing fileId").WithDetail("fileId is required")
	// ErrMissingFileName signals an upload request without a file name.
	ErrMissingFileName = apperr.Validation("Missing fileName").WithDetail("fileName is required")
	// ErrInvalidSize signals a negative declared size.
	ErrInvalidSize = apperr.Validation("Invalid size").WithDetail("size must be a non-negative integer")
	// ErrNoCaller signals a file operation attempted without an identity.
	ErrNoCaller = apperr.Unauthorized("Unauthorized")
	// ErrCorruptRecord signals a stored record whose key escapes its owner namespace.
	ErrCorruptRecord = apperr.Internal("Invalid file record", nil)
)
