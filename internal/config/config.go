// Package config loads process configuration from the environment and an
// optional YAML file.
package config

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Storage drivers accepted by HIVECORE_STORAGE_DRIVER.
const (
	StorageMemory   = "memory"
	StorageSQLite   = "sqlite"
	StoragePostgres = "postgres"
	StorageBlob     = "blob"
)

// Config is the root configuration for the hivecore binary.
type Config struct {
	Storage StorageConfig `yaml:"storage"`
	Blob    BlobConfig    `yaml:"blob"`
	Kafka   KafkaConfig   `yaml:"kafka"`
	Log     LogConfig     `yaml:"log"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// StorageConfig selects and configures the entity store backend.
type StorageConfig struct {
	Driver         string `yaml:"driver" env:"HIVECORE_STORAGE_DRIVER" env-default:"sqlite"`
	SQLitePath     string `yaml:"sqlite_path" env:"HIVECORE_SQLITE_PATH" env-default:"hivecore.db"`
	PostgresDSN    string `yaml:"postgres_dsn" env:"HIVECORE_POSTGRES_DSN"`
	SnapshotPrefix string `yaml:"snapshot_prefix" env:"HIVECORE_SNAPSHOT_PREFIX" env-default:"snapshots/"`
}

// BlobConfig configures the object store used by the blob storage driver.
type BlobConfig struct {
	Driver string   `yaml:"driver" env:"HIVECORE_BLOB_DRIVER" env-default:"fs"`
	FSRoot string   `yaml:"fs_root" env:"HIVECORE_BLOB_FS_ROOT" env-default:"./blobdata"`
	S3     S3Config `yaml:"s3"`
}

// S3Config holds S3 / MinIO connection settings. Credentials fall back to the
// default AWS chain when AccessKeyID is empty.
type S3Config struct {
	Bucket          string `yaml:"bucket" env:"HIVECORE_BLOB_S3_BUCKET"`
	Region          string `yaml:"region" env:"HIVECORE_BLOB_S3_REGION" env-default:"us-east-1"`
	Endpoint        string `yaml:"endpoint" env:"HIVECORE_BLOB_S3_ENDPOINT"`
	PathStyle       bool   `yaml:"path_style" env:"HIVECORE_BLOB_S3_PATH_STYLE" env-default:"false"`
	AccessKeyID     string `yaml:"access_key_id" env:"HIVECORE_BLOB_S3_ACCESS_KEY_ID"`
	SecretAccessKey string `yaml:"secret_access_key" env:"HIVECORE_BLOB_S3_SECRET_ACCESS_KEY"`
	SessionToken    string `yaml:"session_token" env:"HIVECORE_BLOB_S3_SESSION_TOKEN"`
}

// KafkaConfig configures change-event publishing. An empty broker list
// disables publishing.
type KafkaConfig struct {
	Brokers      []string      `yaml:"brokers" env:"HIVECORE_KAFKA_BROKERS" env-separator:","`
	Topic        string        `yaml:"topic" env:"HIVECORE_KAFKA_TOPIC" env-default:"hivecore.changes"`
	WriteTimeout time.Duration `yaml:"write_timeout" env:"HIVECORE_KAFKA_WRITE_TIMEOUT" env-default:"10s"`
}

// Enabled reports whether at least one broker is configured.
func (k KafkaConfig) Enabled() bool { return len(k.Brokers) > 0 }

// LogConfig configures the zap logger.
type LogConfig struct {
	Level       string `yaml:"level" env:"HIVECORE_LOG_LEVEL" env-default:"info"`
	Development bool   `yaml:"development" env:"HIVECORE_LOG_DEVELOPMENT" env-default:"false"`
}

// MetricsConfig configures the Prometheus endpoint. An empty Addr disables it.
type MetricsConfig struct {
	Addr            string        `yaml:"addr" env:"HIVECORE_METRICS_ADDR" env-default:":9090"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"HIVECORE_SHUTDOWN_TIMEOUT" env-default:"5s"`
}

// Load reads configuration from path when given (environment variables still
// override file values) or from the environment alone.
func Load(path string) (Config, error) {
	var cfg Config
	if path != "" {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("read env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints cleanenv cannot express.
func (c *Config) Validate() error {
	c.Storage.Driver = strings.ToLower(strings.TrimSpace(c.Storage.Driver))
	c.Blob.Driver = strings.ToLower(strings.TrimSpace(c.Blob.Driver))
	drivers := []string{StorageMemory, StorageSQLite, StoragePostgres, StorageBlob}
	if !slices.Contains(drivers, c.Storage.Driver) {
		return fmt.Errorf("HIVECORE_STORAGE_DRIVER: unknown driver %q (want one of %s)", c.Storage.Driver, strings.Join(drivers, ", "))
	}
	if c.Storage.Driver == StorageBlob && c.Blob.Driver == "s3" && c.Blob.S3.Bucket == "" {
		return fmt.Errorf("HIVECORE_BLOB_S3_BUCKET required for s3 blob driver")
	}
	if c.Kafka.Enabled() && strings.TrimSpace(c.Kafka.Topic) == "" {
		return fmt.Errorf("HIVECORE_KAFKA_TOPIC required when brokers are set")
	}
	return nil
}
