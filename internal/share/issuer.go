package share

import (
	"context"
	"errors"
	"net/url"
	"time"

	"github.com/abduss/filevault/internal/apperr"
	"github.com/abduss/filevault/internal/config"
	"github.com/abduss/filevault/internal/file"
	"github.com/abduss/filevault/internal/logger"
	"github.com/abduss/filevault/internal/metrics"
	"go.uber.org/zap"
)

type fileResolver interface {
	Resolve(ctx context.Context, callerID, fileID string) (file.Record, error)
}

type linkWriter interface {
	Put(ctx context.Context, rec Record) error
}

// Issuer mints share links for files the caller owns.
type Issuer struct {
	files    fileResolver
	links    linkWriter
	cfg      config.ShareConfig
	nowFunc  func() time.Time
	newToken func() (string, error)
}

// NewIssuer constructs an issuer. cfg.BaseURL is validated at startup by
// config.Load.
func NewIssuer(files fileResolver, links linkWriter, cfg config.ShareConfig) *Issuer {
	return &Issuer{
		files:    files,
		links:    links,
		cfg:      cfg,
		nowFunc:  time.Now,
		newToken: NewToken,
	}
}

// URLFor returns the public URL embedding token and nothing else.
func (i *Issuer) URLFor(token string) string {
	return i.cfg.BaseURL + "/shared/" + url.PathEscape(token)
}

// Issue resolves the caller's file, then persists a share record expiring
// after rawHours (clamped, defaulting when unparseable).
func (i *Issuer) Issue(ctx context.Context, callerID, fileID string, rawHours any) (Link, error) {
	rec, err := i.files.Resolve(ctx, callerID, fileID)
	if err != nil {
		return Link{}, err
	}

	hours := ExpirationHours(rawHours, i.cfg.DefaultHours, i.cfg.MinHours, i.cfg.MaxHours)

	token, err := i.newToken()
	if err != nil {
		return Link{}, apperr.Internal("Failed to create share link", err)
	}

	now := i.nowFunc().UTC().Truncate(time.Second)
	expiresAt := now.Add(time.Duration(hours) * time.Hour)
	link := Record{
		Token:      token,
		FileID:     rec.FileID,
		OwnerID:    rec.OwnerID,
		StorageKey: rec.StorageKey,
		FileName:   rec.FileName,
		CreatedAt:  now,
		ExpiresAt:  expiresAt.Unix(),
	}
	if err := i.links.Put(ctx, link); err != nil {
		if errors.Is(err, ErrTokenCollision) {
			return Link{}, err
		}
		return Link{}, apperr.Internal("Failed to create share link", err)
	}

	metrics.SharesIssued.Inc()
	logger.FromContext(ctx).Info("share link issued",
		zap.String("file_id", rec.FileID),
		zap.Int("hours", hours),
		zap.Int64("expires_at", link.ExpiresAt),
	)

	return Link{
		URL:       i.URLFor(token),
		Token:     token,
		ExpiresAt: expiresAt,
		Hours:     hours,
	}, nil
}
