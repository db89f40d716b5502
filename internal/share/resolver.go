package share

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/abduss/filevault/internal/apperr"
	"github.com/abduss/filevault/internal/logger"
	"github.com/abduss/filevault/internal/metrics"
	"go.uber.org/zap"
)

const defaultDownloadName = "download"

type linkReader interface {
	Get(ctx context.Context, token string) (Record, error)
}

type urlSigner interface {
	PresignGet(ctx context.Context, key, downloadName string, ttl time.Duration) (string, error)
}

// Resolver turns a token into a short-lived download URL. It performs no
// identity check: holding the token is the capability.
type Resolver struct {
	links   linkReader
	signer  urlSigner
	ttl     time.Duration
	nowFunc func() time.Time
}

// NewResolver constructs a resolver signing URLs valid for ttl.
func NewResolver(links linkReader, signer urlSigner, ttl time.Duration) *Resolver {
	return &Resolver{links: links, signer: signer, ttl: ttl, nowFunc: time.Now}
}

// Lookup returns the live record for token, applying the expiry rule. The
// clock is read once per call.
func (r *Resolver) Lookup(ctx context.Context, token string) (Record, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Record{}, ErrMissingToken
	}

	rec, err := r.links.Get(ctx, token)
	if err != nil {
		if errors.Is(err, ErrLinkNotFound) {
			return Record{}, ErrLinkNotFound
		}
		return Record{}, apperr.Internal("Database error", err)
	}
	if rec.Expired(r.nowFunc()) {
		return Record{}, ErrLinkExpired
	}
	return rec, nil
}

// Resolve looks up token and signs a GET URL for the shared object.
func (r *Resolver) Resolve(ctx context.Context, token string) (Resolution, error) {
	rec, err := r.Lookup(ctx, token)
	if err != nil {
		metrics.ShareResolutions.WithLabelValues(outcome(err)).Inc()
		return Resolution{}, err
	}
	if strings.TrimSpace(rec.StorageKey) == "" {
		metrics.ShareResolutions.WithLabelValues("invalid").Inc()
		return Resolution{}, ErrInvalidRecord
	}

	name := rec.FileName
	if name == "" {
		name = defaultDownloadName
	}

	downloadURL, err := r.signer.PresignGet(ctx, rec.StorageKey, name, r.ttl)
	if err != nil {
		metrics.ShareResolutions.WithLabelValues("error").Inc()
		return Resolution{}, apperr.Internal("Failed to generate download URL", err)
	}

	metrics.ShareResolutions.WithLabelValues("ok").Inc()
	logger.FromContext(ctx).Debug("share link resolved", zap.String("file_id", rec.FileID))

	return Resolution{
		FileName:    name,
		DownloadURL: downloadURL,
		ExpiresAt:   rec.ExpiresAt,
	}, nil
}

func outcome(err error) string {
	switch {
	case errors.Is(err, ErrLinkExpired):
		return "expired"
	case errors.Is(err, ErrLinkNotFound):
		return "not_found"
	case errors.Is(err, ErrMissingToken):
		return "invalid"
	default:
		return "error"
	}
}
