// Package mcp exposes the prediction service as Model Context Protocol tools.
package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/turtacn/dti-affinity/internal/application/prediction"
	"github.com/turtacn/dti-affinity/internal/domain/molecule"
	"github.com/turtacn/dti-affinity/internal/infrastructure/monitoring/logging"
)

// MetadataPredictAffinity describes the predict_affinity tool.
var MetadataPredictAffinity = &mcp.Tool{
	Name: "predict_affinity",
	Description: "Predict the binding affinity of a drug toward a protein target. " +
		"Returns the measured value when the exact pair is in the reference table, " +
		"otherwise an estimate from the fitted model together with the canonical SMILES it used.",
	InputSchema: map[string]interface{}{
		"type":     "object",
		"required": []string{"drug", "protein"},
		"properties": map[string]interface{}{
			"drug": map[string]interface{}{
				"type":        "string",
				"description": "Drug as a SMILES string, e.g. CCO",
			},
			"protein": map[string]interface{}{
				"type":        "string",
				"description": "Target as a one-letter amino-acid sequence over the 20 standard residues",
			},
		},
	},
}

// MetadataCanonicalizeSMILES describes the canonicalize_smiles tool.
var MetadataCanonicalizeSMILES = &mcp.Tool{
	Name:        "canonicalize_smiles",
	Description: "Rewrite a SMILES string in canonical form. Equivalent spellings of the same molecule give the same output.",
	InputSchema: map[string]interface{}{
		"type":     "object",
		"required": []string{"smiles"},
		"properties": map[string]interface{}{
			"smiles": map[string]interface{}{
				"type":        "string",
				"description": "SMILES string to canonicalize",
			},
		},
	},
}

// InputPredictAffinity is the input for the predict_affinity tool.
type InputPredictAffinity struct {
	Drug    string `json:"drug"`
	Protein string `json:"protein"`
}

// OutputPredictAffinity is the output for the predict_affinity tool.
type OutputPredictAffinity struct {
	// Source is "measured" or "estimated".
	Source   string  `json:"source"`
	Affinity float64 `json:"affinity"`

	CanonicalSMILES string `json:"canonical_smiles,omitempty"`
	ModelVersion    string `json:"model_version,omitempty"`
}

// InputCanonicalizeSMILES is the input for the canonicalize_smiles tool.
type InputCanonicalizeSMILES struct {
	SMILES string `json:"smiles"`
}

// OutputCanonicalizeSMILES is the output for the canonicalize_smiles tool.
type OutputCanonicalizeSMILES struct {
	Canonical string `json:"canonical"`
}

// Tools binds the tool handlers to a prediction service.
type Tools struct {
	svc    prediction.Service
	logger logging.Logger
}

// NewTools creates the tool set for svc.
func NewTools(svc prediction.Service, logger logging.Logger) *Tools {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Tools{svc: svc, logger: logger.Named("mcp")}
}

// PredictAffinity runs one prediction. Pipeline errors are returned to the
// client as tool errors carrying the error code.
func (t *Tools) PredictAffinity(ctx context.Context, _ *mcp.CallToolRequest, input InputPredictAffinity) (*mcp.CallToolResult, OutputPredictAffinity, error) {
	p, err := t.svc.Predict(ctx, input.Drug, input.Protein)
	if err != nil {
		t.logger.Debug("predict_affinity failed", logging.Err(err))
		return nil, OutputPredictAffinity{}, err
	}
	return nil, OutputPredictAffinity{
		Source:          string(p.Source),
		Affinity:        p.Affinity,
		CanonicalSMILES: p.CanonicalSMILES,
		ModelVersion:    p.ModelVersion,
	}, nil
}

// CanonicalizeSMILES needs no service context.
func CanonicalizeSMILES(_ context.Context, _ *mcp.CallToolRequest, input InputCanonicalizeSMILES) (*mcp.CallToolResult, OutputCanonicalizeSMILES, error) {
	c, err := molecule.Canonicalize(input.SMILES)
	if err != nil {
		return nil, OutputCanonicalizeSMILES{}, err
	}
	return nil, OutputCanonicalizeSMILES{Canonical: c}, nil
}
