package storage

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/abduss/filevault/internal/config"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

const (
	fileBucketTimeout = 5 * time.Second
	minioDefaultPort  = "9000"
)

// OpenFileBucket connects to MinIO and makes sure the vault's file bucket is
// present before any upload URL is signed against it. A bucket created by a
// concurrent replica between the existence check and MakeBucket is accepted.
func OpenFileBucket(ctx context.Context, cfg config.MinIOConfig) (*minio.Client, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("minio: file bucket is not configured")
	}
	host, secure := minioEndpoint(cfg.Endpoint, cfg.UseSSL)

	client, err := minio.New(host, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: secure,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client for %s: %w", host, err)
	}

	ctx, cancel := context.WithTimeout(ctx, fileBucketTimeout)
	defer cancel()

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("probe file bucket %q: %w", cfg.Bucket, err)
	}
	if exists {
		return client, nil
	}
	if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{Region: cfg.Region}); err != nil {
		if minio.ToErrorResponse(err).Code == "BucketAlreadyOwnedByYou" {
			return client, nil
		}
		return nil, fmt.Errorf("create file bucket %q: %w", cfg.Bucket, err)
	}
	return client, nil
}

// minioEndpoint turns MINIO_ENDPOINT into the host:port minio.New expects.
// A scheme, when present, decides TLS and wins over MINIO_USE_SSL.
func minioEndpoint(raw string, useSSL bool) (string, bool) {
	raw = strings.TrimSpace(raw)
	if strings.Contains(raw, "://") {
		if u, err := url.Parse(raw); err == nil && u.Host != "" {
			raw = u.Host
			useSSL = u.Scheme == "https"
		}
	}
	raw = strings.TrimRight(raw, "/")
	if _, _, err := net.SplitHostPort(raw); err != nil {
		raw = net.JoinHostPort(strings.Trim(raw, "[]"), minioDefaultPort)
	}
	return raw, useSSL
}
