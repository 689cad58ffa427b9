// Package affinity holds the JSON request and response bodies shared by the
// HTTP server and the Go client.
package affinity

import "strings"

// Answer sources.
const (
	SourceMeasured  = "measured"
	SourceEstimated = "estimated"
)

// PredictRequest is the body of POST /predict.
type PredictRequest struct {
	Drug    string `json:"drug"`
	Protein string `json:"protein"`
}

// Missing returns the names of empty fields, in declaration order.
func (r PredictRequest) Missing() []string {
	var out []string
	if strings.TrimSpace(r.Drug) == "" {
		out = append(out, "drug")
	}
	if strings.TrimSpace(r.Protein) == "" {
		out = append(out, "protein")
	}
	return out
}

// PredictResponse carries exactly one of Affinity (measured) or
// PredictedAffinity (estimated).
type PredictResponse struct {
	Source            string   `json:"source"`
	Affinity          *float64 `json:"affinity,omitempty"`
	PredictedAffinity *float64 `json:"predicted_affinity,omitempty"`
	CanonicalSMILES   string   `json:"canonical_smiles,omitempty"`
	ModelVersion      string   `json:"model_version,omitempty"`
}

// Measured builds a measured-path response.
func Measured(y float64) PredictResponse {
	return PredictResponse{Source: SourceMeasured, Affinity: &y}
}

// Estimated builds an estimated-path response.
func Estimated(y float64, canonical, version string) PredictResponse {
	return PredictResponse{Source: SourceEstimated, PredictedAffinity: &y, CanonicalSMILES: canonical, ModelVersion: version}
}

// Value returns whichever affinity field is set, and false if neither is.
func (r PredictResponse) Value() (float64, bool) {
	switch {
	case r.Affinity != nil:
		return *r.Affinity, true
	case r.PredictedAffinity != nil:
		return *r.PredictedAffinity, true
	default:
		return 0, false
	}
}

// EncodeResponse is the body returned by POST /api/v1/encode.
type EncodeResponse struct {
	CanonicalSMILES string    `json:"canonical_smiles"`
	Radius          int       `json:"radius"`
	NBits           int       `json:"n_bits"`
	OnBits          []int     `json:"on_bits"`
	Composition     []float64 `json:"composition"`
	FeatureLength   int       `json:"feature_length"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Detail    string `json:"detail,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// HealthResponse is returned by /healthz and /readyz.
type HealthResponse struct {
	Status    string            `json:"status"`
	Version   string            `json:"version,omitempty"`
	Uptime    string            `json:"uptime,omitempty"`
	Estimator *EstimatorStatus  `json:"estimator,omitempty"`
	Reference *ReferenceStatus  `json:"reference,omitempty"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// EstimatorStatus describes the loaded estimator.
type EstimatorStatus struct {
	Kind        string `json:"kind"`
	Version     string `json:"version"`
	NumFeatures int    `json:"num_features"`
}

// ReferenceStatus describes the loaded reference table.
type ReferenceStatus struct {
	Records int `json:"records"`
}
