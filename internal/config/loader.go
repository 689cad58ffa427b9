package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// envPrefix is prepended to every environment override, e.g.
// AFFINITY_SERVER_PORT or AFFINITY_ESTIMATOR_ARTIFACT_PATH.
const envPrefix = "AFFINITY"

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	seedDefaults(v)
	return v
}

// seedDefaults registers every key with viper. Unmarshal only consults the
// environment for keys viper already knows about.
func seedDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("server.host", d.Server.Host)
	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.mode", d.Server.Mode)
	v.SetDefault("server.read_timeout", d.Server.ReadTimeout)
	v.SetDefault("server.write_timeout", d.Server.WriteTimeout)
	v.SetDefault("server.idle_timeout", d.Server.IdleTimeout)
	v.SetDefault("server.shutdown_timeout", d.Server.ShutdownTimeout)
	v.SetDefault("server.max_body_bytes", d.Server.MaxBodyBytes)
	v.SetDefault("server.slow_request_threshold", d.Server.SlowRequestThreshold)

	v.SetDefault("cors.allowed_origins", d.CORS.AllowedOrigins)
	v.SetDefault("cors.allowed_methods", d.CORS.AllowedMethods)
	v.SetDefault("cors.allowed_headers", d.CORS.AllowedHeaders)
	v.SetDefault("cors.allow_credentials", d.CORS.AllowCredentials)
	v.SetDefault("cors.max_age", d.CORS.MaxAge)

	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("log.output_paths", []string{})

	v.SetDefault("metrics.enabled", d.Metrics.Enabled)
	v.SetDefault("metrics.namespace", d.Metrics.Namespace)
	v.SetDefault("metrics.subsystem", d.Metrics.Subsystem)

	v.SetDefault("features.radius", d.Features.Radius)
	v.SetDefault("features.n_bits", d.Features.NBits)

	v.SetDefault("estimator.source", d.Estimator.Source)
	v.SetDefault("estimator.artifact_path", d.Estimator.ArtifactPath)
	v.SetDefault("estimator.serialize", d.Estimator.Serialize)
	v.SetDefault("estimator.minio.endpoint", "")
	v.SetDefault("estimator.minio.access_key", "")
	v.SetDefault("estimator.minio.secret_key", "")
	v.SetDefault("estimator.minio.use_ssl", false)
	v.SetDefault("estimator.minio.region", "")
	v.SetDefault("estimator.minio.bucket", "")
	v.SetDefault("estimator.minio.object", "")

	v.SetDefault("reference.source", d.Reference.Source)
	v.SetDefault("reference.path", "")
	v.SetDefault("reference.delimiter", "")
	v.SetDefault("reference.harmonize", d.Reference.Harmonize)
	v.SetDefault("reference.required", false)
	v.SetDefault("reference.sqlite.path", "")
	v.SetDefault("reference.sqlite.query", d.Reference.SQLite.Query)
	v.SetDefault("reference.postgres.dsn", "")
	v.SetDefault("reference.postgres.query", d.Reference.Postgres.Query)
	v.SetDefault("reference.postgres.max_conns", d.Reference.Postgres.MaxConns)
	v.SetDefault("reference.postgres.connect_timeout", d.Reference.Postgres.ConnectTimeout)
}

// Load reads the YAML file at configPath, applies AFFINITY_* environment
// overrides, fills defaults and validates the result.
func Load(configPath string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: failed to read config file %q: %w", configPath, err)
	}

	return unmarshalAndFinalize(v)
}

// LoadFromEnv builds a Config from defaults and environment variables only.
func LoadFromEnv() (*Config, error) {
	return unmarshalAndFinalize(newViper())
}

// LoadOptional loads configPath when it is non-empty and falls back to
// LoadFromEnv otherwise.
func LoadOptional(configPath string) (*Config, error) {
	if configPath == "" {
		return LoadFromEnv()
	}
	return Load(configPath)
}

func unmarshalAndFinalize(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to unmarshal configuration: %w", err)
	}

	// A zero radius (atom-only fingerprint) is valid, so the loaded value
	// survives ApplyDefaults whenever the file or environment provides it.
	radius := cfg.Features.Radius
	ApplyDefaults(cfg)
	if v.IsSet("features.radius") {
		cfg.Features.Radius = radius
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validation failed: %w", err)
	}

	return cfg, nil
}

// MustLoad is Load that panics on error. Intended for tests and tooling.
func MustLoad(configPath string) *Config {
	cfg, err := Load(configPath)
	if err != nil {
		panic(fmt.Sprintf("config: MustLoad failed: %v", err))
	}
	return cfg
}
