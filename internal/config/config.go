package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the root configuration of the affinity service.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	CORS      CORSConfig      `mapstructure:"cors"`
	Log       LogConfig       `mapstructure:"log"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Features  FeaturesConfig  `mapstructure:"features"`
	Estimator EstimatorConfig `mapstructure:"estimator"`
	Reference ReferenceConfig `mapstructure:"reference"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`

	// MaxBodyBytes caps the size of a prediction request body.
	MaxBodyBytes int64 `mapstructure:"max_body_bytes"`

	// SlowRequestThreshold marks requests that are logged at warn level.
	SlowRequestThreshold time.Duration `mapstructure:"slow_request_threshold"`
}

// Addr returns host:port for net/http.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// CORSConfig mirrors the middleware settings.
type CORSConfig struct {
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

// LogConfig configures the zap logger.
type LogConfig struct {
	Level       string   `mapstructure:"level"`
	Format      string   `mapstructure:"format"`
	OutputPaths []string `mapstructure:"output_paths"`
}

// MetricsConfig configures the Prometheus collector.
type MetricsConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Namespace string `mapstructure:"namespace"`
	Subsystem string `mapstructure:"subsystem"`
}

// FeaturesConfig fixes the fingerprint geometry. It must match the geometry
// the estimator was fitted with.
type FeaturesConfig struct {
	Radius int `mapstructure:"radius"`
	NBits  int `mapstructure:"n_bits"`
}

// Estimator artifact sources.
const (
	EstimatorSourceFile  = "file"
	EstimatorSourceMinIO = "minio"
)

// EstimatorConfig locates the fitted estimator artifact.
type EstimatorConfig struct {
	Source       string `mapstructure:"source"`
	ArtifactPath string `mapstructure:"artifact_path"`

	// Serialize forces the mutex wrapper even for concurrency-safe backends.
	Serialize bool `mapstructure:"serialize"`

	MinIO MinIOConfig `mapstructure:"minio"`
}

// MinIOConfig addresses an artifact in an S3-compatible bucket.
type MinIOConfig struct {
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	UseSSL    bool   `mapstructure:"use_ssl"`
	Region    string `mapstructure:"region"`
	Bucket    string `mapstructure:"bucket"`
	Object    string `mapstructure:"object"`
}

// Reference table sources.
const (
	ReferenceSourceNone     = "none"
	ReferenceSourceFile     = "file"
	ReferenceSourceSQLite   = "sqlite"
	ReferenceSourcePostgres = "postgres"
)

// ReferenceConfig locates the table of measured affinities.
type ReferenceConfig struct {
	Source string `mapstructure:"source"`

	// Path is a CSV or TSV file when Source is "file".
	Path      string `mapstructure:"path"`
	Delimiter string `mapstructure:"delimiter"`

	// Harmonize is the duplicate-collapse rule: max, min or first. The max
	// default assumes pKd-style values; use min for raw nM concentrations.
	Harmonize string `mapstructure:"harmonize"`

	// Required turns a load failure into a startup failure.
	Required bool `mapstructure:"required"`

	SQLite   SQLiteConfig   `mapstructure:"sqlite"`
	Postgres PostgresConfig `mapstructure:"postgres"`
}

// SQLiteConfig configures the SQLite reference source.
type SQLiteConfig struct {
	Path  string `mapstructure:"path"`
	Query string `mapstructure:"query"`
}

// PostgresConfig configures the Postgres reference source.
type PostgresConfig struct {
	DSN      string `mapstructure:"dsn"`
	Query    string `mapstructure:"query"`
	MaxConns int32  `mapstructure:"max_conns"`

	// ConnectTimeout bounds the initial connection and query.
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Validation
// ─────────────────────────────────────────────────────────────────────────────

// Validate performs semantic validation of a fully populated Config. Any error
// is fatal at startup.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("config: server.port %d is out of range [1, 65535]", c.Server.Port)
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("config: server.mode %q is invalid; expected debug|release|test", c.Server.Mode)
	}
	if c.Server.MaxBodyBytes < 1 {
		return fmt.Errorf("config: server.max_body_bytes must be >= 1, got %d", c.Server.MaxBodyBytes)
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: log.level %q is invalid; expected debug|info|warn|error", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("config: log.format %q is invalid; expected json|console", c.Log.Format)
	}

	if c.Metrics.Enabled && c.Metrics.Namespace == "" {
		return fmt.Errorf("config: metrics.namespace is required when metrics are enabled")
	}

	if c.Features.Radius < 0 {
		return fmt.Errorf("config: features.radius must be >= 0, got %d", c.Features.Radius)
	}
	if c.Features.NBits < 1 {
		return fmt.Errorf("config: features.n_bits must be >= 1, got %d", c.Features.NBits)
	}

	switch c.Estimator.Source {
	case EstimatorSourceFile:
		if c.Estimator.ArtifactPath == "" {
			return fmt.Errorf("config: estimator.artifact_path is required")
		}
	case EstimatorSourceMinIO:
		m := c.Estimator.MinIO
		if m.Endpoint == "" || m.Bucket == "" || m.Object == "" {
			return fmt.Errorf("config: estimator.minio endpoint, bucket and object are required")
		}
		if c.Estimator.ArtifactPath == "" {
			return fmt.Errorf("config: estimator.artifact_path is required as the download target")
		}
	default:
		return fmt.Errorf("config: estimator.source %q is invalid; expected file|minio", c.Estimator.Source)
	}

	switch c.Reference.Harmonize {
	case "max", "min", "first":
	default:
		return fmt.Errorf("config: reference.harmonize %q is invalid; expected max|min|first", c.Reference.Harmonize)
	}
	switch c.Reference.Source {
	case ReferenceSourceNone:
		if c.Reference.Required {
			return fmt.Errorf("config: reference.required is set but reference.source is none")
		}
	case ReferenceSourceFile:
		if c.Reference.Path == "" {
			return fmt.Errorf("config: reference.path is required for source file")
		}
		if len([]rune(c.Reference.Delimiter)) > 1 {
			return fmt.Errorf("config: reference.delimiter must be a single character, got %q", c.Reference.Delimiter)
		}
	case ReferenceSourceSQLite:
		if c.Reference.SQLite.Path == "" {
			return fmt.Errorf("config: reference.sqlite.path is required for source sqlite")
		}
	case ReferenceSourcePostgres:
		if c.Reference.Postgres.DSN == "" {
			return fmt.Errorf("config: reference.postgres.dsn is required for source postgres")
		}
	default:
		return fmt.Errorf("config: reference.source %q is invalid; expected none|file|sqlite|postgres",
			c.Reference.Source)
	}
	if q := c.Reference.SQLite.Query; q != "" && !isSelect(q) {
		return fmt.Errorf("config: reference.sqlite.query must be a SELECT statement")
	}
	if q := c.Reference.Postgres.Query; q != "" && !isSelect(q) {
		return fmt.Errorf("config: reference.postgres.query must be a SELECT statement")
	}

	return nil
}

func isSelect(q string) bool {
	return strings.HasPrefix(strings.ToUpper(strings.TrimSpace(q)), "SELECT")
}
