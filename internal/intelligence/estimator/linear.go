package estimator

import (
	"math"

	"github.com/turtacn/dti-affinity/pkg/errors"
)

// Linear computes intercept + coefficients·x.
type Linear struct {
	coef      []float64
	intercept float64
	version   string
}

// NewLinear returns a linear model over len(coef) features.
func NewLinear(coef []float64, intercept float64, version string) (*Linear, error) {
	if len(coef) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidEstimatorArtifact, "linear model has no coefficients")
	}
	for _, c := range append([]float64{intercept}, coef...) {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return nil, errors.New(errors.ErrCodeInvalidEstimatorArtifact, "linear model has non-finite parameters")
		}
	}
	return &Linear{coef: coef, intercept: intercept, version: version}, nil
}

// Estimate implements Estimator.
func (l *Linear) Estimate(features []float64) (float64, error) {
	if err := checkLength(features, len(l.coef)); err != nil {
		return 0, err
	}
	y := l.intercept
	for i, c := range l.coef {
		y += c * features[i]
	}
	return y, nil
}

func (l *Linear) NumFeatures() int     { return len(l.coef) }
func (l *Linear) ConcurrentSafe() bool { return true }
func (l *Linear) Version() string      { return l.version }
func (l *Linear) Kind() Kind           { return KindLinear }
