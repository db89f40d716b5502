package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// Backend identifiers accepted by METADATA_BACKEND and OBJECT_BACKEND.
const (
	BackendPostgres = "postgres"
	BackendDynamoDB = "dynamodb"
	BackendMinIO    = "minio"
	BackendS3       = "s3"
)

// Identity modes accepted by AUTH_MODE.
const (
	AuthModeUnverified = "unverified"
	AuthModeHMAC       = "hmac"
)

// Config aggregates runtime configuration for the file vault.
type Config struct {
	Server    ServerConfig
	Backends  BackendConfig
	Postgres  PostgresConfig
	MinIO     MinIOConfig
	AWS       AWSConfig
	Share     ShareConfig
	Upload    UploadConfig
	Summarize SummarizeConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
	Metrics   MetricsConfig
}

// ServerConfig parameterizes the HTTP server.
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// Address returns the listen address in host:port form.
func (s ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// BackendConfig selects the store implementations.
type BackendConfig struct {
	Metadata string
	Objects  string
}

// PostgresConfig contains PostgreSQL connection details.
type PostgresConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Database     string
	SSLMode      string
	FilesTable   string
	LinksTable   string
	EnsureSchema bool
}

// DSN returns the PostgreSQL DSN string.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		p.User, p.Password, p.Host, p.Port, p.Database, p.SSLMode)
}

// MinIOConfig carries MinIO connection and bucket information.
type MinIOConfig struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	UseSSL          bool
	Region          string
}

// AWSConfig carries settings shared by the AWS SDK clients.
type AWSConfig struct {
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	UsePathStyle    bool
	Bucket          string
	FilesTable      string
	LinksTable      string
}

// ShareConfig groups share-link settings.
type ShareConfig struct {
	BaseURL        string
	DefaultHours   int
	MinHours       int
	MaxHours       int
	DownloadURLTTL time.Duration
}

// UploadConfig groups upload-URL settings.
type UploadConfig struct {
	URLTTL      time.Duration
	DownloadTTL time.Duration
}

// SummarizeConfig groups text-generation settings.
type SummarizeConfig struct {
	Region          string
	ModelID         string
	MaxTokens       int
	MaxContentChars int
	ContentFunction string
}

// AuthConfig groups identity resolution settings.
type AuthConfig struct {
	Mode      string
	JWTSecret string
}

// RateLimitConfig throttles the public share-link routes per client IP.
type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
}

// MetricsConfig groups observability settings.
type MetricsConfig struct {
	PrometheusPath string
}

// Load reads configuration values from environment variables, applying defaults.
// It fails when a setting required at startup is missing.
func Load() (Config, error) {
	cfg := Config{
		Server: ServerConfig{
			Host:         getString("VAULT_API_HOST", "0.0.0.0"),
			Port:         getInt("VAULT_API_PORT", 8080),
			ReadTimeout:  getDuration("VAULT_API_READ_TIMEOUT", 15*time.Second),
			WriteTimeout: getDuration("VAULT_API_WRITE_TIMEOUT", 60*time.Second),
			IdleTimeout:  getDuration("VAULT_API_IDLE_TIMEOUT", 60*time.Second),
		},
		Backends: BackendConfig{
			Metadata: strings.ToLower(getString("METADATA_BACKEND", BackendPostgres)),
			Objects:  strings.ToLower(getString("OBJECT_BACKEND", BackendMinIO)),
		},
		Postgres: PostgresConfig{
			Host:         getString("POSTGRES_HOST", "localhost"),
			Port:         getInt("POSTGRES_PORT", 5432),
			User:         getString("POSTGRES_USER", "vault_app"),
			Password:     getString("POSTGRES_PASSWORD", "change-me"),
			Database:     getString("POSTGRES_DB", "vault"),
			SSLMode:      strings.ToLower(getString("POSTGRES_SSL_MODE", "disable")),
			FilesTable:   getString("FILES_TABLE_NAME", "files"),
			LinksTable:   getString("SHARED_LINKS_TABLE", "shared_links"),
			EnsureSchema: getBool("POSTGRES_ENSURE_SCHEMA", true),
		},
		MinIO: MinIOConfig{
			Endpoint:        getString("MINIO_ENDPOINT", "localhost:9000"),
			AccessKeyID:     getString("MINIO_ROOT_USER", "vault"),
			SecretAccessKey: getString("MINIO_ROOT_PASSWORD", "change-me-strong-password"),
			Bucket:          getString("FILE_BUCKET", "vault-files"),
			UseSSL:          getBool("MINIO_USE_SSL", false),
			Region:          getString("MINIO_REGION", ""),
		},
		AWS: AWSConfig{
			Region:          getString("AWS_REGION", "us-west-2"),
			Endpoint:        getString("AWS_ENDPOINT_URL", ""),
			AccessKeyID:     getString("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey: getString("AWS_SECRET_ACCESS_KEY", ""),
			UsePathStyle:    getBool("S3_USE_PATH_STYLE", false),
			Bucket:          getString("FILE_BUCKET", ""),
			FilesTable:      getString("FILES_TABLE_NAME", "files-dev"),
			LinksTable:      getString("SHARED_LINKS_TABLE", "SharedLinksTable-dev"),
		},
		Share: ShareConfig{
			BaseURL:        strings.TrimRight(getString("SHARE_BASE_URL", ""), "/"),
			DefaultHours:   getInt("SHARE_DEFAULT_HOURS", 24),
			MinHours:       getInt("SHARE_MIN_HOURS", 1),
			MaxHours:       getInt("SHARE_MAX_HOURS", 168),
			DownloadURLTTL: getDuration("SHARE_DOWNLOAD_URL_TTL", 300*time.Second),
		},
		Upload: UploadConfig{
			URLTTL:      getDuration("UPLOAD_URL_TTL", 300*time.Second),
			DownloadTTL: getDuration("DOWNLOAD_URL_TTL", 300*time.Second),
		},
		Summarize: SummarizeConfig{
			Region:          getString("BEDROCK_REGION", "us-west-2"),
			ModelID:         getString("BEDROCK_MODEL_ID", "anthropic.claude-3-5-haiku-20241022-v1:0"),
			MaxTokens:       getInt("SUMMARY_MAX_TOKENS", 1024),
			MaxContentChars: getInt("SUMMARY_MAX_CONTENT_CHARS", 100000),
			ContentFunction: getString("MCP_HANDLER_ARN", ""),
		},
		Auth: AuthConfig{
			Mode:      strings.ToLower(getString("AUTH_MODE", AuthModeUnverified)),
			JWTSecret: getString("AUTH_JWT_SECRET", ""),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: getFloat("SHARED_RATE_LIMIT_RPS", 5),
			Burst:             getInt("SHARED_RATE_LIMIT_BURST", 10),
		},
		Metrics: MetricsConfig{
			PrometheusPath: getString("VAULT_METRICS_PATH", "/metrics"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the settings that must be present before serving requests.
func (c Config) Validate() error {
	var errs []error

	if c.Share.BaseURL == "" {
		errs = append(errs, errors.New("SHARE_BASE_URL is required"))
	} else if u, err := url.Parse(c.Share.BaseURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, fmt.Errorf("SHARE_BASE_URL %q must be an absolute http(s) URL", c.Share.BaseURL))
	}
	if c.Share.MinHours < 1 || c.Share.MaxHours < c.Share.MinHours {
		errs = append(errs, fmt.Errorf("invalid share expiry bounds [%d, %d]", c.Share.MinHours, c.Share.MaxHours))
	}
	if c.Share.DownloadURLTTL <= 0 || c.Share.DownloadURLTTL > 300*time.Second {
		errs = append(errs, errors.New("SHARE_DOWNLOAD_URL_TTL must be within (0s, 300s]"))
	}

	switch c.Backends.Metadata {
	case BackendPostgres:
		if c.Postgres.FilesTable == "" || c.Postgres.LinksTable == "" {
			errs = append(errs, errors.New("postgres backend needs FILES_TABLE_NAME and SHARED_LINKS_TABLE"))
		}
	case BackendDynamoDB:
		if c.AWS.FilesTable == "" || c.AWS.LinksTable == "" {
			errs = append(errs, errors.New("dynamodb backend needs FILES_TABLE_NAME and SHARED_LINKS_TABLE"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown METADATA_BACKEND %q", c.Backends.Metadata))
	}

	switch c.Backends.Objects {
	case BackendMinIO:
		if c.MinIO.Bucket == "" {
			errs = append(errs, errors.New("minio backend needs FILE_BUCKET"))
		}
	case BackendS3:
		if c.AWS.Bucket == "" {
			errs = append(errs, errors.New("s3 backend needs FILE_BUCKET"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown OBJECT_BACKEND %q", c.Backends.Objects))
	}

	switch c.Auth.Mode {
	case AuthModeUnverified:
	case AuthModeHMAC:
		if len(c.Auth.JWTSecret) < 32 {
			errs = append(errs, errors.New("AUTH_JWT_SECRET must be at least 32 bytes in hmac mode"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown AUTH_MODE %q", c.Auth.Mode))
	}

	return errors.Join(errs...)
}

func getString(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if val, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func getFloat(key string, fallback float64) float64 {
	if val, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.ParseFloat(strings.TrimSpace(val), 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if val, ok := os.LookupEnv(key); ok {
		val = strings.ToLower(strings.TrimSpace(val))
		switch val {
		case "1", "true", "t", "yes", "y":
			return true
		case "0", "false", "f", "no", "n":
			return false
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if val, ok := os.LookupEnv(key); ok {
		if parsed, err := time.ParseDuration(val); err == nil {
			return parsed
		}
	}
	return fallback
}
