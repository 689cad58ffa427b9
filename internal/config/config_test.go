package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, DefaultServerPort, cfg.Server.Port)
	assert.Equal(t, 2, cfg.Features.Radius)
	assert.Equal(t, 1024, cfg.Features.NBits)
	assert.Equal(t, EstimatorSourceFile, cfg.Estimator.Source)
	assert.Equal(t, DefaultArtifactPath, cfg.Estimator.ArtifactPath)
	assert.Equal(t, ReferenceSourceNone, cfg.Reference.Source)
	assert.Equal(t, "max", cfg.Reference.Harmonize)
	assert.Equal(t, []string{"*"}, cfg.CORS.AllowedOrigins)
	assert.True(t, cfg.Metrics.Enabled)
}

func TestApplyDefaults_KeepsExplicitValues(t *testing.T) {
	cfg := &Config{
		Server:   ServerConfig{Port: 9999},
		Features: FeaturesConfig{NBits: 2048},
		Log:      LogConfig{Level: "debug"},
	}
	ApplyDefaults(cfg)

	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, 2048, cfg.Features.NBits)
	assert.Equal(t, DefaultFingerprintRadius, cfg.Features.Radius)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, DefaultLogFormat, cfg.Log.Format)

	ApplyDefaults(nil)
}

func TestApplyDefaults_DoesNotAliasCORSOrigins(t *testing.T) {
	a := Default()
	a.CORS.AllowedOrigins[0] = "https://example.org"
	b := Default()
	assert.Equal(t, "*", b.CORS.AllowedOrigins[0])
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"port too low", func(c *Config) { c.Server.Port = -1 }, "server.port"},
		{"port too high", func(c *Config) { c.Server.Port = 70000 }, "server.port"},
		{"bad mode", func(c *Config) { c.Server.Mode = "prod" }, "server.mode"},
		{"bad body limit", func(c *Config) { c.Server.MaxBodyBytes = -5 }, "max_body_bytes"},
		{"bad log level", func(c *Config) { c.Log.Level = "trace" }, "log.level"},
		{"bad log format", func(c *Config) { c.Log.Format = "text" }, "log.format"},
		{"metrics without namespace", func(c *Config) { c.Metrics.Namespace = "" }, "metrics.namespace"},
		{"negative radius", func(c *Config) { c.Features.Radius = -1 }, "features.radius"},
		{"zero bits", func(c *Config) { c.Features.NBits = 0 }, "features.n_bits"},
		{"bad estimator source", func(c *Config) { c.Estimator.Source = "s3" }, "estimator.source"},
		{"empty artifact path", func(c *Config) { c.Estimator.ArtifactPath = "" }, "artifact_path"},
		{"minio without bucket", func(c *Config) {
			c.Estimator.Source = EstimatorSourceMinIO
			c.Estimator.MinIO.Endpoint = "localhost:9000"
			c.Estimator.MinIO.Object = "rf.json"
		}, "estimator.minio"},
		{"bad harmonize", func(c *Config) { c.Reference.Harmonize = "mean" }, "reference.harmonize"},
		{"bad reference source", func(c *Config) { c.Reference.Source = "redis" }, "reference.source"},
		{"required without source", func(c *Config) { c.Reference.Required = true }, "reference.required"},
		{"file without path", func(c *Config) { c.Reference.Source = ReferenceSourceFile }, "reference.path"},
		{"long delimiter", func(c *Config) {
			c.Reference.Source = ReferenceSourceFile
			c.Reference.Path = "x.tsv"
			c.Reference.Delimiter = "||"
		}, "reference.delimiter"},
		{"sqlite without path", func(c *Config) { c.Reference.Source = ReferenceSourceSQLite }, "reference.sqlite.path"},
		{"postgres without dsn", func(c *Config) { c.Reference.Source = ReferenceSourcePostgres }, "reference.postgres.dsn"},
		{"non-select query", func(c *Config) { c.Reference.SQLite.Query = "DELETE FROM x" }, "SELECT"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestValidate_MinIOComplete(t *testing.T) {
	cfg := Default()
	cfg.Estimator.Source = EstimatorSourceMinIO
	cfg.Estimator.MinIO = MinIOConfig{Endpoint: "localhost:9000", Bucket: "models", Object: "rf.json"}
	assert.NoError(t, cfg.Validate())
}

func TestServerConfig_Addr(t *testing.T) {
	assert.Equal(t, "127.0.0.1:8000", ServerConfig{Host: "127.0.0.1", Port: 8000}.Addr())
}
