package resource

import (
	"net/http"

	"github.com/abduss/filevault/internal/apperr"
)

var (
	// ErrInvalidAction signals an action other than list or read.
	ErrInvalidAction = apperr.Validation("Invalid action")
	// ErrMissingResourceID signals a read without a resource id.
	ErrMissingResourceID = apperr.Validation("Missing resource_id").WithDetail("resource_id is required for resources/read action")
	// ErrMissingUser signals an internal invocation without a userId.
	ErrMissingUser = apperr.Unauthorized("Unauthorized").WithDetail("userId is required")
	// ErrObjectMissing signals a record whose bytes are gone from the object store.
	ErrObjectMissing = apperr.NotFound("File not found in storage")
	// ErrPDFExtraction signals a PDF the text extractor could not read.
	ErrPDFExtraction = apperr.Internal("PDF extraction failed", nil)
	// ErrTooLarge signals an object above the read limit.
	ErrTooLarge = &apperr.Error{
		Kind:       apperr.KindValidation,
		Reason:     "File too large",
		Detail:     "file exceeds the content read limit",
		HTTPStatus: http.StatusRequestEntityTooLarge,
	}
)
