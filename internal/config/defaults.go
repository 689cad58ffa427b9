// Package config provides configuration loading, defaults, and validation for
// the affinity service.
package config

import "time"

// ─────────────────────────────────────────────────────────────────────────────
// Default value constants
// ─────────────────────────────────────────────────────────────────────────────

const (
	DefaultServerHost      = "0.0.0.0"
	DefaultServerPort      = 8000
	DefaultServerMode      = "release"
	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 30 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second
	DefaultMaxBodyBytes    = 1 << 20
	DefaultSlowRequest     = 500 * time.Millisecond

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	DefaultMetricsNamespace = "affinity"

	DefaultFingerprintRadius = 2
	DefaultFingerprintBits   = 1024

	DefaultEstimatorSource = EstimatorSourceFile
	DefaultArtifactPath    = "models/random_forest_model.json"

	DefaultReferenceSource    = ReferenceSourceNone
	DefaultReferenceHarmonize = "max"
	DefaultReferenceQuery     = "SELECT drug, target, affinity FROM reference_affinity ORDER BY id"
	DefaultPostgresMaxConns   = 4
	DefaultPostgresTimeout    = 10 * time.Second
)

// DefaultCORSOrigins allows every origin, matching a public prediction endpoint.
var DefaultCORSOrigins = []string{"*"}

// Default returns a Config with every default applied. It validates as-is.
func Default() *Config {
	cfg := &Config{Metrics: MetricsConfig{Enabled: true}}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills every zero-value field in cfg with its default. Fields
// already set are left unchanged so explicit configuration always wins.
// Metrics.Enabled is a bool and cannot be defaulted here; the loader seeds it.
// A zero Features.Radius is treated as unset; the loader keeps an explicit 0.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	// ── Server ────────────────────────────────────────────────────────────────
	if cfg.Server.Host == "" {
		cfg.Server.Host = DefaultServerHost
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultServerPort
	}
	if cfg.Server.Mode == "" {
		cfg.Server.Mode = DefaultServerMode
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = DefaultReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}
	if cfg.Server.MaxBodyBytes == 0 {
		cfg.Server.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if cfg.Server.SlowRequestThreshold == 0 {
		cfg.Server.SlowRequestThreshold = DefaultSlowRequest
	}

	// ── CORS ──────────────────────────────────────────────────────────────────
	if len(cfg.CORS.AllowedOrigins) == 0 {
		cfg.CORS.AllowedOrigins = append([]string(nil), DefaultCORSOrigins...)
	}
	if len(cfg.CORS.AllowedMethods) == 0 {
		cfg.CORS.AllowedMethods = []string{"GET", "POST", "OPTIONS"}
	}
	if len(cfg.CORS.AllowedHeaders) == 0 {
		cfg.CORS.AllowedHeaders = []string{"Content-Type", "X-Request-ID"}
	}
	if cfg.CORS.MaxAge == 0 {
		cfg.CORS.MaxAge = 600
	}

	// ── Log ───────────────────────────────────────────────────────────────────
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}

	// ── Metrics ───────────────────────────────────────────────────────────────
	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = DefaultMetricsNamespace
	}

	// ── Features ──────────────────────────────────────────────────────────────
	if cfg.Features.Radius == 0 {
		cfg.Features.Radius = DefaultFingerprintRadius
	}
	if cfg.Features.NBits == 0 {
		cfg.Features.NBits = DefaultFingerprintBits
	}

	// ── Estimator ─────────────────────────────────────────────────────────────
	if cfg.Estimator.Source == "" {
		cfg.Estimator.Source = DefaultEstimatorSource
	}
	if cfg.Estimator.ArtifactPath == "" {
		cfg.Estimator.ArtifactPath = DefaultArtifactPath
	}

	// ── Reference ─────────────────────────────────────────────────────────────
	if cfg.Reference.Source == "" {
		cfg.Reference.Source = DefaultReferenceSource
	}
	if cfg.Reference.Harmonize == "" {
		cfg.Reference.Harmonize = DefaultReferenceHarmonize
	}
	if cfg.Reference.SQLite.Query == "" {
		cfg.Reference.SQLite.Query = DefaultReferenceQuery
	}
	if cfg.Reference.Postgres.Query == "" {
		cfg.Reference.Postgres.Query = DefaultReferenceQuery
	}
	if cfg.Reference.Postgres.MaxConns == 0 {
		cfg.Reference.Postgres.MaxConns = DefaultPostgresMaxConns
	}
	if cfg.Reference.Postgres.ConnectTimeout == 0 {
		cfg.Reference.Postgres.ConnectTimeout = DefaultPostgresTimeout
	}
}
