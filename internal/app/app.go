// Package app wires stores, services and the router from configuration. It is
// the only place that knows which backends are in use.
package app

import (
	"context"
	"fmt"

	"github.com/abduss/filevault/internal/auth"
	"github.com/abduss/filevault/internal/config"
	"github.com/abduss/filevault/internal/file"
	"github.com/abduss/filevault/internal/objectstore"
	"github.com/abduss/filevault/internal/resource"
	"github.com/abduss/filevault/internal/server"
	"github.com/abduss/filevault/internal/share"
	"github.com/abduss/filevault/internal/storage"
	"github.com/abduss/filevault/internal/summarize"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type fileStore interface {
	Get(ctx context.Context, ownerID, fileID string) (file.Record, error)
	Put(ctx context.Context, rec file.Record) error
	Delete(ctx context.Context, ownerID, fileID string) (file.Record, error)
	ListByOwner(ctx context.Context, ownerID string) ([]file.Record, error)
	Ping(ctx context.Context) error
}

type linkStore interface {
	Put(ctx context.Context, rec share.Record) error
	Get(ctx context.Context, token string) (share.Record, error)
}

// App holds the process-wide services built once at startup.
type App struct {
	Config    config.Config
	Files     *file.Service
	Shares    *share.Handler
	Resources *resource.Service
	Summaries *summarize.Service
	Identity  auth.IdentityResolver
	Checks    []server.HealthCheck

	pool   *pgxpool.Pool
	awsCfg *aws.Config
}

// New builds every store and service selected by cfg.
func New(ctx context.Context, cfg config.Config, log *zap.Logger) (*App, error) {
	a := &App{Config: cfg}

	files, links, err := a.metadataStores(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}
	objects, bucket, err := a.objectStore(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Checks = []server.HealthCheck{
		{Name: cfg.Backends.Metadata, Pinger: files},
		{Name: cfg.Backends.Objects, Pinger: objects},
	}

	a.Files = file.NewService(files, objects, cfg.Upload)
	issuer := share.NewIssuer(a.Files.Owner(), links, cfg.Share)
	resolver := share.NewResolver(links, objects, cfg.Share.DownloadURLTTL)
	a.Shares = share.NewHandler(issuer, resolver)
	a.Resources = resource.NewService(a.Files, a.Files.Owner(), objects, bucket)

	modelCfg, err := storage.LoadAWSConfig(ctx, cfg.AWS, cfg.Summarize.Region)
	if err != nil {
		a.Close()
		return nil, err
	}
	var content summarize.ContentFetcher = a.Resources
	if cfg.Summarize.ContentFunction != "" {
		content = resource.NewLambdaReader(lambda.NewFromConfig(modelCfg), cfg.Summarize.ContentFunction)
		log.Info("content fetched through function", zap.String("function", cfg.Summarize.ContentFunction))
	}
	generator := summarize.NewBedrock(bedrockruntime.NewFromConfig(modelCfg), cfg.Summarize.ModelID, cfg.Summarize.MaxTokens)
	a.Summaries = summarize.NewService(content, generator, cfg.Summarize.MaxContentChars)

	a.Identity = identityResolver(cfg.Auth)

	log.Info("application wired",
		zap.String("metadata_backend", cfg.Backends.Metadata),
		zap.String("object_backend", cfg.Backends.Objects),
		zap.String("auth_mode", cfg.Auth.Mode),
	)
	return a, nil
}

// Router builds the HTTP router over the wired services.
func (a *App) Router() *gin.Engine {
	return server.NewRouter(server.Dependencies{
		Config:    a.Config,
		Identity:  a.Identity,
		Files:     a.Files,
		Shares:    a.Shares,
		Resources: a.Resources,
		Summaries: a.Summaries,
		Checks:    a.Checks,
	})
}

// Close releases connection pools.
func (a *App) Close() {
	if a.pool != nil {
		a.pool.Close()
		a.pool = nil
	}
}

func (a *App) metadataStores(ctx context.Context) (fileStore, linkStore, error) {
	cfg := a.Config
	switch cfg.Backends.Metadata {
	case config.BackendPostgres:
		pool, err := storage.NewPostgresPool(ctx, cfg.Postgres)
		if err != nil {
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		a.pool = pool
		if cfg.Postgres.EnsureSchema {
			if err := storage.EnsureSchema(ctx, pool, cfg.Postgres); err != nil {
				return nil, nil, err
			}
		}
		return file.NewPostgresRepository(pool, cfg.Postgres.FilesTable),
			share.NewPostgresRepository(pool, cfg.Postgres.LinksTable), nil

	case config.BackendDynamoDB:
		awsCfg, err := a.sharedAWSConfig(ctx)
		if err != nil {
			return nil, nil, err
		}
		client := storage.NewDynamoClient(awsCfg, cfg.AWS)
		return file.NewDynamoRepository(client, cfg.AWS.FilesTable),
			share.NewDynamoRepository(client, cfg.AWS.LinksTable), nil

	default:
		return nil, nil, fmt.Errorf("unknown metadata backend %q", cfg.Backends.Metadata)
	}
}

func (a *App) objectStore(ctx context.Context) (objectstore.Store, string, error) {
	cfg := a.Config
	switch cfg.Backends.Objects {
	case config.BackendMinIO:
		client, err := storage.OpenFileBucket(ctx, cfg.MinIO)
		if err != nil {
			return nil, "", err
		}
		return objectstore.NewMinIO(client, cfg.MinIO.Bucket), cfg.MinIO.Bucket, nil

	case config.BackendS3:
		awsCfg, err := a.sharedAWSConfig(ctx)
		if err != nil {
			return nil, "", err
		}
		client := storage.NewS3Client(awsCfg, cfg.AWS)
		return objectstore.NewS3(client, cfg.AWS.Bucket), cfg.AWS.Bucket, nil

	default:
		return nil, "", fmt.Errorf("unknown object backend %q", cfg.Backends.Objects)
	}
}

func (a *App) sharedAWSConfig(ctx context.Context) (aws.Config, error) {
	if a.awsCfg != nil {
		return *a.awsCfg, nil
	}
	awsCfg, err := storage.LoadAWSConfig(ctx, a.Config.AWS, "")
	if err != nil {
		return aws.Config{}, err
	}
	a.awsCfg = &awsCfg
	return awsCfg, nil
}

func identityResolver(cfg config.AuthConfig) auth.IdentityResolver {
	var bearer auth.IdentityResolver = auth.NewUnverifiedBearer()
	if cfg.Mode == config.AuthModeHMAC {
		bearer = auth.NewHMACBearer(cfg.JWTSecret)
	}
	return auth.Chain{auth.UpstreamClaims{}, bearer}
}
