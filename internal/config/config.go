package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// DatabaseConfig holds PostgreSQL database connection settings.
type DatabaseConfig struct {
	Host               string `env:"DB_HOST"`
	Port               string `env:"DB_PORT" envDefault:"5432"`
	User               string `env:"DB_USER"`
	Password           string `env:"DB_PASSWORD"`
	Name               string `env:"DB_NAME"`
	SSLMode            string `env:"DB_SSLMODE" envDefault:"disable"`
	MaxOpenConns       int    `env:"DB_MAX_OPEN_CONNS" envDefault:"10"`
	MaxIdleConns       int    `env:"DB_MAX_IDLE_CONNS" envDefault:"5"`
	ConnMaxLifetimeSec int    `env:"DB_CONN_MAX_LIFETIME_SEC" envDefault:"300"`
}

// MinIOConfig holds object storage settings for MinIO.
type MinIOConfig struct {
	Endpoint  string `env:"MINIO_ENDPOINT"`
	AccessKey string `env:"MINIO_ACCESS_KEY"`
	SecretKey string `env:"MINIO_SECRET_KEY"`
	Bucket    string `env:"MINIO_BUCKET"`
	UseSSL    bool   `env:"MINIO_USE_SSL" envDefault:"false"`
}

// StorageConfig selects the blob backend and the key prefixes attachments are written under.
// Driver "minio" uses MinIOConfig; "local" writes below LocalRoot, which must already exist.
type StorageConfig struct {
	Driver               string `env:"STORAGE_DRIVER" envDefault:"minio"`
	LocalRoot            string `env:"STORAGE_LOCAL_ROOT" envDefault:"./data"`
	ProfilePicturePrefix string `env:"STORAGE_PROFILE_PICTURE_PREFIX" envDefault:"profile-pictures"`
	ProductImagePrefix   string `env:"STORAGE_PRODUCT_IMAGE_PREFIX" envDefault:"product-images"`
	DownloadPrefix       string `env:"STORAGE_DOWNLOAD_PREFIX" envDefault:"downloads"`
	WriteConcurrency     int    `env:"STORAGE_WRITE_CONCURRENCY" envDefault:"4"`
}

// CryptoConfig holds the PII master key (base64 or hex, 32 bytes).
type CryptoConfig struct {
	MasterKey string `env:"PII_MASTER_KEY"`
}

// GoogleConfig configures remote file retrieval.
type GoogleConfig struct {
	TokenURL          string        `env:"GOOGLE_TOKEN_URL" envDefault:"https://oauth2.googleapis.com/token"`
	DriveEndpoint     string        `env:"GOOGLE_DRIVE_ENDPOINT"`
	DriveBaseAddress  string        `env:"GOOGLE_DRIVE_BASE_ADDRESS" envDefault:"https://drive.google.com/file/d/"`
	SheetsBaseAddress string        `env:"GOOGLE_SPREADSHEET_BASE_ADDRESS" envDefault:"https://docs.google.com/spreadsheets/d/"`
	FetchTimeout      time.Duration `env:"GOOGLE_FETCH_TIMEOUT" envDefault:"30s"`
	RefreshTimeout    time.Duration `env:"GOOGLE_REFRESH_TIMEOUT" envDefault:"10s"`
}

// MicrosoftConfig configures the Microsoft identity platform token refresh.
type MicrosoftConfig struct {
	TokenURL       string        `env:"MICROSOFT_TOKEN_URL" envDefault:"https://login.microsoftonline.com/common/oauth2/v2.0/token"`
	Scope          string        `env:"MICROSOFT_GRAPH_SCOPE" envDefault:"https://graph.microsoft.com/Files.Read.All"`
	RefreshTimeout time.Duration `env:"MICROSOFT_REFRESH_TIMEOUT" envDefault:"10s"`
}

// LogConfig controls the zap logger.
type LogConfig struct {
	Mode     string `env:"LOG_MODE" envDefault:"production"`
	Timezone string `env:"LOG_TIMEZONE" envDefault:"UTC"`
}

// TracingConfig mirrors the standard OTEL_* variables. The OTLP exporters read endpoint and
// headers from the environment themselves; the endpoint fields are kept for startup logging.
type TracingConfig struct {
	Disabled       bool   `env:"OTEL_SDK_DISABLED" envDefault:"false"`
	ServiceName    string `env:"OTEL_SERVICE_NAME" envDefault:"e-commerce-service"`
	Protocol       string `env:"OTEL_EXPORTER_OTLP_PROTOCOL" envDefault:"grpc"`
	Endpoint       string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	TracesEndpoint string `env:"OTEL_EXPORTER_OTLP_TRACES_ENDPOINT"`
	Sampler        string `env:"OTEL_TRACES_SAMPLER" envDefault:"parentbased_traceidratio"`
	SamplerArg     string `env:"OTEL_TRACES_SAMPLER_ARG" envDefault:"1.0"`
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	AppHost   string `env:"APP_HOST" envDefault:"localhost:8080"`
	Port      string `env:"PORT" envDefault:"8080"`
	Database  DatabaseConfig
	MinIO     MinIOConfig
	Storage   StorageConfig
	Crypto    CryptoConfig
	Google    GoogleConfig
	Microsoft MicrosoftConfig
	Log       LogConfig
	Tracing   TracingConfig
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// This function does not require a .env file; real environment variables take precedence.
func Load() (*AppConfig, error) {
	var cfg AppConfig
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env config: %w", err)
	}
	return &cfg, nil
}

// Location resolves the configured log timezone, falling back to UTC.
func (c LogConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
