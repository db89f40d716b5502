package share

import (
	"errors"

	"github.com/abduss/filevault/internal/apperr"
)

var (
	// ErrMissingToken signals a resolution request without a token.
	ErrMissingToken = apperr.Validation("Missing share token")
	// ErrLinkNotFound signals an unknown token.
	ErrLinkNotFound = apperr.NotFound("Share link not found")
	// ErrLinkExpired signals a token past its expiry. It renders with the same
	// status as an unknown token.
	ErrLinkExpired = apperr.NotFound("Share link has expired")
	// ErrInvalidRecord signals a stored share without a storage key.
	ErrInvalidRecord = apperr.Internal("Invalid share record", nil)
	// ErrTokenCollision signals that a freshly minted token already exists.
	// The cause is logged, never rendered.
	ErrTokenCollision = apperr.Internal("Failed to create share link", errTokenTaken)

	errTokenTaken = errors.New("share token already exists")
)
