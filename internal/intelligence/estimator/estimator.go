// Package estimator evaluates a previously fitted regression model over a
// feature vector. Models are loaded from a JSON artifact and are read-only
// afterwards.
package estimator

import (
	"fmt"
	"sync"

	"github.com/turtacn/dti-affinity/pkg/errors"
)

// Kind names an estimator backend.
type Kind string

const (
	KindRandomForest Kind = "random_forest"
	KindLinear       Kind = "linear"
)

// Estimator maps a feature vector of NumFeatures values to a scalar affinity.
type Estimator interface {
	Estimate(features []float64) (float64, error)
	NumFeatures() int
	// ConcurrentSafe reports whether Estimate may be called from several
	// goroutines at once without external locking.
	ConcurrentSafe() bool
	Version() string
	Kind() Kind
}

func checkLength(features []float64, want int) error {
	if len(features) != want {
		return errors.New(errors.ErrCodeFeatureLengthMismatch,
			fmt.Sprintf("feature vector has %d values, estimator expects %d", len(features), want))
	}
	return nil
}

// Serialize wraps e so that every Estimate runs inside one critical section.
// Wrapping an already serialized estimator returns it unchanged.
func Serialize(e Estimator) Estimator {
	if s, ok := e.(*serialized); ok {
		return s
	}
	return &serialized{inner: e}
}

// Unwrap returns the estimator inside a Serialize wrapper, or e itself.
func Unwrap(e Estimator) Estimator {
	if s, ok := e.(*serialized); ok {
		return s.inner
	}
	return e
}

type serialized struct {
	mu    sync.Mutex
	inner Estimator
}

func (s *serialized) Estimate(features []float64) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inner.Estimate(features)
}

func (s *serialized) NumFeatures() int     { return s.inner.NumFeatures() }
func (s *serialized) ConcurrentSafe() bool { return true }
func (s *serialized) Version() string      { return s.inner.Version() }
func (s *serialized) Kind() Kind           { return s.inner.Kind() }
