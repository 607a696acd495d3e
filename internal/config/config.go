package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
// The struct is constructed once at startup by Load and treated as
// immutable afterwards; components receive the sections they need through
// their constructors rather than reading ambient state.
type Config struct {
	Server      ServerConfig      `mapstructure:"server"       validate:"required"`
	Database    DatabaseConfig    `mapstructure:"database"     validate:"required"`
	ObjectStore ObjectStoreConfig `mapstructure:"object_store" validate:"required"`
	Queue       QueueConfig       `mapstructure:"queue"        validate:"required"`
	Auth        AuthConfig        `mapstructure:"auth"         validate:"required"`
	Task        TaskConfig        `mapstructure:"task"         validate:"required"`
	Upload      UploadConfig      `mapstructure:"upload"       validate:"required"`
}

// ServerConfig contains all HTTP server related settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	// IOTimeout bounds every object-store and database round-trip issued by
	// the task service so no request can hang the caller indefinitely.
	IOTimeout time.Duration `mapstructure:"io_timeout" validate:"required,gt=0"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required"`
}

// ObjectStoreConfig contains the S3-compatible object storage settings.
// The bucket holds task inputs and extraction outputs keyed by task id.
type ObjectStoreConfig struct {
	Endpoint  string `mapstructure:"endpoint"   validate:"required"`
	AccessKey string `mapstructure:"access_key" validate:"required"`
	SecretKey string `mapstructure:"secret_key" validate:"required"`
	UseSSL    bool   `mapstructure:"use_ssl"`
	Bucket    string `mapstructure:"bucket" validate:"required"`
}

// QueueConfig contains the work queue settings. Subject is where ready-task
// messages are published for the extraction workers.
type QueueConfig struct {
	URL     string `mapstructure:"url"     validate:"required"`
	Stream  string `mapstructure:"stream"  validate:"required"`
	Subject string `mapstructure:"subject" validate:"required"`
}

// AuthConfig contains all authentication settings. Requests authenticate
// either with a signed HMAC JWT or with an API key checked against the
// configured bcrypt hashes; at least one scheme must be configured.
type AuthConfig struct {
	JWTSecret string         `mapstructure:"jwt_secret" validate:"omitempty,min=32"`
	APIKeys   []APIKeyConfig `mapstructure:"api_keys"   validate:"dive"`
}

// APIKeyConfig maps one bcrypt-hashed API key to the owner it authenticates.
type APIKeyConfig struct {
	OwnerID string `mapstructure:"owner_id" validate:"required,uuid4"`
	KeyHash string `mapstructure:"key_hash" validate:"required"`
}

// TaskConfig contains task lifecycle settings.
type TaskConfig struct {
	// Expiration is how long task records and their blobs are retained
	// before they may be garbage-collected. Zero disables expiration.
	Expiration time.Duration `mapstructure:"expiration"`

	// SweepInterval is how often the stuck-task sweeper scans for tasks
	// whose queue message was lost.
	SweepInterval time.Duration `mapstructure:"sweep_interval" validate:"required,gt=0"`

	// SweepGrace is how long a task may sit in starting before the sweeper
	// considers its queue message lost and re-enqueues it.
	SweepGrace time.Duration `mapstructure:"sweep_grace" validate:"required,gt=0"`

	// SweepBatch caps how many stuck tasks one sweep pass re-enqueues.
	SweepBatch int `mapstructure:"sweep_batch" validate:"required,gt=0"`
}

// UploadConfig contains limits for accepted document uploads.
type UploadConfig struct {
	MaxBytes int64 `mapstructure:"max_bytes" validate:"required,gt=0"`
}
