package client

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/dti-affinity/pkg/types/affinity"
)

func TestClient_Predict(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/predict", r.URL.Path)
		var req affinity.PredictRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if req.Drug == "CCO" {
			_ = json.NewEncoder(w).Encode(affinity.Measured(5.5))
			return
		}
		_ = json.NewEncoder(w).Encode(affinity.Estimated(6.25, "OCC", "rf-1"))
	}
	c := newTestClient(t, handler)

	measured, err := c.Predict(context.Background(), "CCO", "MKT")
	require.NoError(t, err)
	assert.Equal(t, affinity.SourceMeasured, measured.Source)
	y, ok := measured.Value()
	assert.True(t, ok)
	assert.Equal(t, 5.5, y)

	est, err := c.Predict(context.Background(), "OCC", "MKT")
	require.NoError(t, err)
	assert.Equal(t, affinity.SourceEstimated, est.Source)
	require.NotNil(t, est.PredictedAffinity)
	assert.Equal(t, 6.25, *est.PredictedAffinity)
	assert.Equal(t, "OCC", est.CanonicalSMILES)
	assert.Equal(t, "rf-1", est.ModelVersion)
}

func TestClient_Predict_InvalidInput(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(affinity.ErrorResponse{Code: "AFF_001", Message: "invalid input"})
	}
	c := newTestClient(t, handler)

	resp, err := c.Predict(context.Background(), "not_a_smiles!!", "MKT")
	assert.Nil(t, resp)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.IsInvalidInput())
}

func TestClient_Encode(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/encode", r.URL.Path)
		_ = json.NewEncoder(w).Encode(affinity.EncodeResponse{
			CanonicalSMILES: "CCO", Radius: 2, NBits: 64, OnBits: []int{1, 7}, Composition: make([]float64, 20), FeatureLength: 84,
		})
	}
	c := newTestClient(t, handler)

	resp, err := c.Encode(context.Background(), "OCC", "MKT")
	require.NoError(t, err)
	assert.Equal(t, "CCO", resp.CanonicalSMILES)
	assert.Equal(t, []int{1, 7}, resp.OnBits)
	assert.Len(t, resp.Composition, 20)
	assert.Equal(t, 84, resp.FeatureLength)
}

func TestClient_HealthAndReady(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/healthz":
			_ = json.NewEncoder(w).Encode(affinity.HealthResponse{Status: "ok"})
		case "/readyz":
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(affinity.ErrorResponse{Code: "COMMON_008", Message: "not ready"})
		}
	}
	c := newTestClient(t, handler, WithRetryMax(0))

	h, err := c.Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ok", h.Status)

	_, err = c.Ready(context.Background())
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.IsUnavailable())
}
