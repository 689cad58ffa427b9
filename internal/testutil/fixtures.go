package testutil

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/turtacn/dti-affinity/internal/domain/protein"
	"github.com/turtacn/dti-affinity/internal/intelligence/estimator"
)

// Small pipeline geometry used across service and transport tests.
const (
	FixtureRadius = 2
	FixtureBits   = 64
)

// FixtureFeatures is the vector length for FixtureBits.
const FixtureFeatures = FixtureBits + protein.AlphabetSize

// ConstantForest is a one-tree forest that always predicts value.
func ConstantForest(nFeatures int, value float64) *estimator.Artifact {
	return &estimator.Artifact{
		Kind:        estimator.KindRandomForest,
		Version:     "fixture-constant",
		NFeatures:   nFeatures,
		Fingerprint: &estimator.FingerprintSpec{Radius: FixtureRadius, NBits: nFeatures - protein.AlphabetSize},
		Trees: []estimator.Tree{{
			ChildrenLeft:  []int{-1},
			ChildrenRight: []int{-1},
			Feature:       []int{-2},
			Threshold:     []float64{-2},
			Value:         []float64{value},
		}},
	}
}

// AlanineForest predicts low when the alanine proportion is at most 0.5 and
// high otherwise, so tests can steer the estimate through the sequence.
func AlanineForest(nBits int, low, high float64) *estimator.Artifact {
	alanine := nBits // 'A' is the first residue after the fingerprint bits
	return &estimator.Artifact{
		Kind:        estimator.KindRandomForest,
		Version:     "fixture-alanine",
		NFeatures:   nBits + protein.AlphabetSize,
		Fingerprint: &estimator.FingerprintSpec{Radius: FixtureRadius, NBits: nBits},
		Trees: []estimator.Tree{{
			ChildrenLeft:  []int{1, -1, -1},
			ChildrenRight: []int{2, -1, -1},
			Feature:       []int{alanine, -2, -2},
			Threshold:     []float64{0.5, -2, -2},
			Value:         []float64{(low + high) / 2, low, high},
		}},
	}
}

// WriteArtifact saves art under t.TempDir and returns its path.
func WriteArtifact(t testing.TB, art *estimator.Artifact) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "models", "random_forest_model.json")
	require.NoError(t, estimator.Save(path, art))
	return path
}

// LoadEstimator builds the estimator for art directly.
func LoadEstimator(t testing.TB, art *estimator.Artifact) estimator.Estimator {
	t.Helper()
	est, err := art.Build()
	require.NoError(t, err)
	return est
}
