package auth

import "github.com/abduss/filevault/internal/apperr"

var (
	// ErrUnauthorized represents a missing or unresolvable caller identity.
	ErrUnauthorized = apperr.Unauthorized("Unauthorized")
	// ErrNoCredentials signals that a resolver found nothing to inspect, so the
	// next resolver in a chain may try.
	ErrNoCredentials = apperr.Unauthorized("Unauthorized").WithDetail("missing credentials")
)
