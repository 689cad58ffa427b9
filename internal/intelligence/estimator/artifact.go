package estimator

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/turtacn/dti-affinity/pkg/errors"
)

// FingerprintSpec records the Morgan geometry the model was fitted on.
type FingerprintSpec struct {
	Radius int `json:"radius"`
	NBits  int `json:"n_bits"`
}

// Artifact is the on-disk form of a fitted estimator.
type Artifact struct {
	Kind        Kind             `json:"kind"`
	Version     string           `json:"version"`
	NFeatures   int              `json:"n_features"`
	Fingerprint *FingerprintSpec `json:"fingerprint,omitempty"`

	// random_forest
	Trees []Tree `json:"trees,omitempty"`

	// linear
	Coefficients []float64 `json:"coefficients,omitempty"`
	Intercept    float64   `json:"intercept,omitempty"`
}

// Loaded is an estimator together with the header it was built from.
type Loaded struct {
	Estimator   Estimator
	Path        string
	Fingerprint *FingerprintSpec
}

// Load reads and builds the estimator at path. A missing or unreadable file
// is EST_001; a file that does not describe a valid model is EST_002.
func Load(path string) (*Loaded, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		msg := "cannot read estimator artifact"
		if errors.Is(err, fs.ErrNotExist) {
			msg = "estimator artifact not found"
		}
		return nil, errors.Wrap(err, errors.ErrCodeMissingEstimatorArtifact, msg).WithDetail(path)
	}
	art, err := Parse(data)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInvalidEstimatorArtifact, "invalid estimator artifact").WithDetail(path)
	}
	est, err := art.Build()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInvalidEstimatorArtifact, "invalid estimator artifact").WithDetail(path)
	}
	return &Loaded{Estimator: est, Path: path, Fingerprint: art.Fingerprint}, nil
}

// Parse decodes an artifact, rejecting unknown fields.
func Parse(data []byte) (*Artifact, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	var art Artifact
	if err := dec.Decode(&art); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "decode estimator artifact")
	}
	return &art, nil
}

// Build constructs the backend named by Kind.
func (a *Artifact) Build() (Estimator, error) {
	switch a.Kind {
	case KindRandomForest:
		return NewRandomForest(a.Trees, a.NFeatures, a.Version)
	case KindLinear:
		if a.NFeatures != 0 && a.NFeatures != len(a.Coefficients) {
			return nil, errors.New(errors.ErrCodeInvalidEstimatorArtifact,
				fmt.Sprintf("n_features %d does not match %d coefficients", a.NFeatures, len(a.Coefficients)))
		}
		return NewLinear(a.Coefficients, a.Intercept, a.Version)
	case "":
		return nil, errors.New(errors.ErrCodeInvalidEstimatorArtifact, "artifact has no kind")
	default:
		return nil, errors.New(errors.ErrCodeInvalidEstimatorArtifact, fmt.Sprintf("unknown estimator kind %q", a.Kind))
	}
}

// Save writes a as indented JSON to path, creating parent directories. The
// file is written to a temporary name first and renamed into place.
func Save(path string, a *Artifact) error {
	data, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "encode estimator artifact")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "create artifact directory")
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "write estimator artifact")
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return errors.Wrap(err, errors.ErrCodeInternal, "rename estimator artifact")
	}
	return nil
}
