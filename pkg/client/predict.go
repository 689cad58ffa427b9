package client

import (
	"context"

	"github.com/turtacn/dti-affinity/pkg/types/affinity"
)

// Predict asks the server for the affinity of drug toward protein.
func (c *Client) Predict(ctx context.Context, drug, protein string) (*affinity.PredictResponse, error) {
	var resp affinity.PredictResponse
	req := affinity.PredictRequest{Drug: drug, Protein: protein}
	if err := c.post(ctx, "/api/v1/predict", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Encode returns the canonical SMILES, fingerprint and composition the server
// computes for the pair, without running the estimator.
func (c *Client) Encode(ctx context.Context, drug, protein string) (*affinity.EncodeResponse, error) {
	var resp affinity.EncodeResponse
	req := affinity.PredictRequest{Drug: drug, Protein: protein}
	if err := c.post(ctx, "/api/v1/encode", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Health calls /healthz.
func (c *Client) Health(ctx context.Context) (*affinity.HealthResponse, error) {
	var resp affinity.HealthResponse
	if err := c.get(ctx, "/healthz", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Ready calls /readyz. A server that is still starting answers 503, which is
// returned as an *APIError after retries are exhausted.
func (c *Client) Ready(ctx context.Context) (*affinity.HealthResponse, error) {
	var resp affinity.HealthResponse
	if err := c.get(ctx, "/readyz", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
