package prediction

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/turtacn/dti-affinity/internal/config"
	"github.com/turtacn/dti-affinity/internal/domain/feature"
	"github.com/turtacn/dti-affinity/internal/domain/molecule"
	"github.com/turtacn/dti-affinity/internal/domain/protein"
	"github.com/turtacn/dti-affinity/internal/domain/reference"
	"github.com/turtacn/dti-affinity/internal/infrastructure/database/postgres"
	"github.com/turtacn/dti-affinity/internal/infrastructure/database/sqlite"
	"github.com/turtacn/dti-affinity/internal/infrastructure/dataset"
	"github.com/turtacn/dti-affinity/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/dti-affinity/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/dti-affinity/internal/infrastructure/storage/minio"
	"github.com/turtacn/dti-affinity/internal/intelligence/estimator"
	"github.com/turtacn/dti-affinity/pkg/errors"
)

// ArtifactFetcher downloads the estimator artifact to a local path.
type ArtifactFetcher interface {
	Fetch(ctx context.Context, dest string) error
}

// Option adjusts Bootstrap.
type Option func(*bootstrapOptions)

type bootstrapOptions struct {
	fetcher ArtifactFetcher
	source  reference.Source
}

// WithArtifactFetcher overrides the MinIO client built from config.
func WithArtifactFetcher(f ArtifactFetcher) Option {
	return func(o *bootstrapOptions) { o.fetcher = f }
}

// WithReferenceSource overrides the reference source built from config.
func WithReferenceSource(src reference.Source) Option {
	return func(o *bootstrapOptions) { o.source = src }
}

// Bootstrap builds the immutable service context from cfg. The estimator and
// the reference table load concurrently. A missing or invalid estimator is
// fatal. A reference load failure is logged and leaves the table empty unless
// reference.required is set.
func Bootstrap(ctx context.Context, cfg *config.Config, logger logging.Logger, metrics *prometheus.AffinityMetrics, opts ...Option) (Service, error) {
	var o bootstrapOptions
	for _, opt := range opts {
		opt(&o)
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	logger = logger.Named("bootstrap")

	molecules, err := molecule.NewMorganEncoder(cfg.Features.Radius, cfg.Features.NBits)
	if err != nil {
		return nil, err
	}
	composer, err := feature.NewComposer(cfg.Features.NBits)
	if err != nil {
		return nil, err
	}

	var (
		loaded *estimator.Loaded
		table  *reference.Table
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		loaded, err = loadEstimator(gctx, cfg, o.fetcher, logger)
		return err
	})
	g.Go(func() error {
		var err error
		table, err = loadReference(gctx, cfg.Reference, o.source, logger)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if fp := loaded.Fingerprint; fp != nil && (fp.Radius != cfg.Features.Radius || fp.NBits != cfg.Features.NBits) {
		return nil, errors.New(errors.ErrCodeFeatureLengthMismatch,
			fmt.Sprintf("estimator was fitted on radius %d / %d bits, features are configured as radius %d / %d bits",
				fp.Radius, fp.NBits, cfg.Features.Radius, cfg.Features.NBits)).WithDetail(loaded.Path)
	}

	est := loaded.Estimator
	if cfg.Estimator.Serialize || !est.ConcurrentSafe() {
		est = estimator.Serialize(est)
	}

	svc, err := NewService(Deps{
		Table:     table,
		Estimator: est,
		Molecules: molecules,
		Proteins:  protein.NewEncoder(),
		Composer:  composer,
		Logger:    logger.Named("prediction"),
		Metrics:   metrics,
	})
	if err != nil {
		return nil, err
	}

	st := svc.Status()
	logger.Info("service context ready",
		logging.String("estimator_kind", st.EstimatorKind),
		logging.String("estimator_version", st.EstimatorVersion),
		logging.Int("num_features", st.NumFeatures),
		logging.Int("reference_records", st.ReferenceRecords))
	return svc, nil
}

func loadEstimator(ctx context.Context, cfg *config.Config, fetcher ArtifactFetcher, logger logging.Logger) (*estimator.Loaded, error) {
	path := cfg.Estimator.ArtifactPath
	if cfg.Estimator.Source == config.EstimatorSourceMinIO {
		if fetcher == nil {
			store, err := minio.NewArtifactStore(cfg.Estimator.MinIO, logger)
			if err != nil {
				return nil, err
			}
			fetcher = store
		}
		if err := fetcher.Fetch(ctx, path); err != nil {
			return nil, err
		}
	}
	loaded, err := estimator.Load(path)
	if err != nil {
		logger.Error("estimator artifact unavailable", logging.String("path", path), logging.Err(err))
		return nil, err
	}
	return loaded, nil
}

func loadReference(ctx context.Context, cfg config.ReferenceConfig, src reference.Source, logger logging.Logger) (*reference.Table, error) {
	rule, err := reference.ParseRule(cfg.Harmonize)
	if err != nil {
		return nil, err
	}
	if src == nil {
		src = NewReferenceSource(cfg, logger)
	}
	if src == nil {
		logger.Info("no reference table configured")
		return reference.Empty(), nil
	}

	table, err := reference.Build(ctx, src, rule)
	if err != nil {
		if cfg.Required {
			return nil, errors.Wrap(err, errors.ErrCodeReferenceLoadFailed, "reference table is required")
		}
		logger.Warn("reference table unavailable, serving estimates only",
			logging.String("source", cfg.Source), logging.Err(err))
		return reference.Empty(), nil
	}
	return table, nil
}

// NewReferenceSource returns the source selected by cfg.Source, or nil for "none".
func NewReferenceSource(cfg config.ReferenceConfig, logger logging.Logger) reference.Source {
	switch cfg.Source {
	case config.ReferenceSourceFile:
		return dataset.NewFileSource(cfg.Path, cfg.Delimiter, logger)
	case config.ReferenceSourceSQLite:
		return sqlite.NewReferenceSource(cfg.SQLite.Path, cfg.SQLite.Query, logger)
	case config.ReferenceSourcePostgres:
		return postgres.NewReferenceSource(cfg.Postgres, logger)
	default:
		return nil
	}
}
