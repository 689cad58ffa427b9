// Package prediction answers binding-affinity queries: a measured value from
// the reference table when the exact pair is known, otherwise an estimate
// from the fitted model over the composed feature vector.
package prediction

import (
	"context"
	"fmt"
	"strings"

	"github.com/turtacn/dti-affinity/internal/domain/feature"
	"github.com/turtacn/dti-affinity/internal/domain/molecule"
	"github.com/turtacn/dti-affinity/internal/domain/protein"
	"github.com/turtacn/dti-affinity/internal/domain/reference"
	"github.com/turtacn/dti-affinity/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/dti-affinity/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/dti-affinity/internal/intelligence/estimator"
	"github.com/turtacn/dti-affinity/pkg/errors"
)

// Source tells where an affinity came from.
type Source string

const (
	SourceMeasured  Source = "measured"
	SourceEstimated Source = "estimated"
)

// Pipeline stages, used as the invalid_inputs_total label.
const (
	StageRequest      = "request"
	StageCanonicalize = "canonicalize"
	StageFingerprint  = "fingerprint"
	StageComposition  = "composition"
	StageCompose      = "compose"
)

// Prediction is the answer to one query.
type Prediction struct {
	Source   Source
	Affinity float64

	// Set on the estimated path only.
	CanonicalSMILES string
	ModelVersion    string
}

// Encoding exposes the intermediate values of the estimated path.
type Encoding struct {
	CanonicalSMILES string
	Fingerprint     *molecule.Fingerprint
	Composition     protein.Composition
	Features        feature.Vector
}

// Status describes the loaded context, for readiness reporting.
type Status struct {
	EstimatorKind     string
	EstimatorVersion  string
	NumFeatures       int
	FingerprintRadius int
	FingerprintBits   int
	ReferenceRecords  int
}

// Service is safe for concurrent use. It never retries and never returns a
// partial result.
//
// Predict and Encode check ctx once on entry and fail with ErrCodeTimeout if
// it is already done. The pipeline itself is CPU-bound and does not observe
// ctx, so a cancellation that arrives mid-call does not abort it.
type Service interface {
	Predict(ctx context.Context, drug, protein string) (*Prediction, error)
	Encode(ctx context.Context, drug, protein string) (*Encoding, error)
	Status() Status
}

// Deps are the collaborators of a Service. Table may be nil (treated as
// empty); Logger and Metrics default to no-ops.
type Deps struct {
	Table     *reference.Table
	Estimator estimator.Estimator
	Molecules *molecule.MorganEncoder
	Proteins  *protein.Encoder
	Composer  *feature.Composer
	Logger    logging.Logger
	Metrics   *prometheus.AffinityMetrics
}

type serviceImpl struct {
	table     *reference.Table
	est       estimator.Estimator
	molecules *molecule.MorganEncoder
	proteins  *protein.Encoder
	composer  *feature.Composer
	logger    logging.Logger
	metrics   *prometheus.AffinityMetrics
}

// NewService checks that the encoders, composer and estimator agree on the
// vector layout. An estimator that is not safe for concurrent use is wrapped
// with estimator.Serialize.
func NewService(d Deps) (Service, error) {
	if d.Estimator == nil {
		return nil, errors.New(errors.ErrCodeMissingEstimatorArtifact, "estimator is required")
	}
	if d.Molecules == nil || d.Composer == nil {
		return nil, errors.New(errors.ErrCodeInternal, "molecule encoder and composer are required")
	}
	if d.Molecules.NBits() != d.Composer.FingerprintBits() {
		return nil, errors.New(errors.ErrCodeFeatureLengthMismatch,
			fmt.Sprintf("fingerprint width %d does not match composer width %d", d.Molecules.NBits(), d.Composer.FingerprintBits()))
	}
	if d.Estimator.NumFeatures() != d.Composer.Dim() {
		return nil, errors.New(errors.ErrCodeFeatureLengthMismatch,
			fmt.Sprintf("estimator expects %d features, pipeline produces %d", d.Estimator.NumFeatures(), d.Composer.Dim()))
	}

	s := &serviceImpl{
		table:     d.Table,
		est:       d.Estimator,
		molecules: d.Molecules,
		proteins:  d.Proteins,
		composer:  d.Composer,
		logger:    d.Logger,
		metrics:   d.Metrics,
	}
	if s.table == nil {
		s.table = reference.Empty()
	}
	if s.proteins == nil {
		s.proteins = protein.NewEncoder()
	}
	if s.logger == nil {
		s.logger = logging.NewNopLogger()
	}
	if s.metrics == nil {
		s.metrics = prometheus.NewNoopAffinityMetrics()
	}
	if !s.est.ConcurrentSafe() {
		s.est = estimator.Serialize(s.est)
	}

	s.metrics.ReferenceRecords.WithLabelValues().Set(float64(s.table.Len()))
	s.metrics.EstimatorInfo.WithLabelValues(string(s.est.Kind()), s.est.Version()).Set(1)
	return s, nil
}

func (s *serviceImpl) Predict(ctx context.Context, drug, target string) (*Prediction, error) {
	// Entry check only; see Service.
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeTimeout, "request cancelled")
	}
	timer := prometheus.NewTimer(nil)

	if err := requireInputs(drug, target); err != nil {
		s.reject(StageRequest, err)
		s.observe(prometheus.SourceNone, prometheus.OutcomeInvalid, timer)
		return nil, err
	}

	if y, ok := s.table.Lookup(drug, target); ok {
		s.observe(prometheus.SourceMeasured, prometheus.OutcomeSuccess, timer)
		return &Prediction{Source: SourceMeasured, Affinity: y}, nil
	}

	enc, stage, err := s.encode(drug, target)
	if err != nil {
		s.reject(stage, err)
		s.observe(prometheus.SourceNone, prometheus.OutcomeInvalid, timer)
		return nil, err
	}

	s.metrics.EstimatorInvocations.WithLabelValues().Inc()
	y, err := s.est.Estimate(enc.Features)
	if err != nil {
		s.observe(prometheus.SourceEstimated, prometheus.OutcomeError, timer)
		s.logger.Error("estimator failed", logging.Err(err), logging.String("canonical_smiles", enc.CanonicalSMILES))
		return nil, err
	}
	s.observe(prometheus.SourceEstimated, prometheus.OutcomeSuccess, timer)
	return &Prediction{
		Source:          SourceEstimated,
		Affinity:        y,
		CanonicalSMILES: enc.CanonicalSMILES,
		ModelVersion:    s.est.Version(),
	}, nil
}

func (s *serviceImpl) Encode(ctx context.Context, drug, target string) (*Encoding, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeTimeout, "request cancelled")
	}
	if err := requireInputs(drug, target); err != nil {
		return nil, err
	}
	enc, _, err := s.encode(drug, target)
	return enc, err
}

func (s *serviceImpl) Status() Status {
	return Status{
		EstimatorKind:     string(s.est.Kind()),
		EstimatorVersion:  s.est.Version(),
		NumFeatures:       s.est.NumFeatures(),
		FingerprintRadius: s.molecules.Radius(),
		FingerprintBits:   s.molecules.NBits(),
		ReferenceRecords:  s.table.Len(),
	}
}

// encode runs canonicalize, fingerprint, composition and compose. Any stage
// failure becomes AFF_001 wrapping the stage error; the failing stage is
// returned for metrics.
func (s *serviceImpl) encode(drug, target string) (*Encoding, string, error) {
	g, err := molecule.ParseSMILES(drug)
	if err != nil {
		return nil, StageCanonicalize, invalidInput(err, "drug is not a valid SMILES")
	}
	canonical := g.CanonicalSMILES()

	fp, err := s.molecules.Encode(canonical)
	if err != nil {
		return nil, StageFingerprint, invalidInput(err, "drug could not be fingerprinted")
	}

	comp, err := s.proteins.Encode(target)
	if err != nil {
		return nil, StageComposition, invalidInput(err, "protein is not a valid sequence")
	}

	vec, err := s.composer.Compose(fp, comp)
	if err != nil {
		return nil, StageCompose, invalidInput(err, "feature vector could not be composed")
	}
	return &Encoding{
		CanonicalSMILES: canonical,
		Fingerprint:     fp,
		Composition:     comp,
		Features:        vec,
	}, "", nil
}

func requireInputs(drug, target string) error {
	var missing []string
	if strings.TrimSpace(drug) == "" {
		missing = append(missing, "drug")
	}
	if strings.TrimSpace(target) == "" {
		missing = append(missing, "protein")
	}
	if len(missing) > 0 {
		return errors.New(errors.ErrCodeInvalidInput, strings.Join(missing, " and ")+" must be non-empty")
	}
	return nil
}

func invalidInput(cause error, msg string) error {
	return errors.Wrap(cause, errors.ErrCodeInvalidInput, msg).WithDetail(cause.Error())
}

func (s *serviceImpl) reject(stage string, err error) {
	s.metrics.InvalidInputsTotal.WithLabelValues(stage).Inc()
	s.logger.Debug("invalid input",
		logging.String("stage", stage),
		logging.String("cause", string(errors.RootCode(err))))
}

func (s *serviceImpl) observe(source, outcome string, timer *prometheus.Timer) {
	d := timer.ObserveDuration()
	s.metrics.PredictionsTotal.WithLabelValues(source, outcome).Inc()
	if outcome == prometheus.OutcomeSuccess {
		s.metrics.PredictionDuration.WithLabelValues(source).Observe(d.Seconds())
	}
}
