package handlers

import (
	"net/http"

	"github.com/turtacn/dti-affinity/internal/application/prediction"
	"github.com/turtacn/dti-affinity/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/dti-affinity/pkg/errors"
	"github.com/turtacn/dti-affinity/pkg/types/affinity"
)

// DefaultMaxBodyBytes applies when the handler is built with a zero limit.
const DefaultMaxBodyBytes = 1 << 20

// PredictHandler serves the prediction and encoding endpoints.
type PredictHandler struct {
	svc     prediction.Service
	logger  logging.Logger
	maxBody int64
}

// NewPredictHandler creates a new PredictHandler.
func NewPredictHandler(svc prediction.Service, logger logging.Logger, maxBody int64) *PredictHandler {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	if maxBody <= 0 {
		maxBody = DefaultMaxBodyBytes
	}
	return &PredictHandler{svc: svc, logger: logger.Named("predict"), maxBody: maxBody}
}

// Predict handles POST /predict and POST /api/v1/predict.
func (h *PredictHandler) Predict(w http.ResponseWriter, r *http.Request) {
	var req affinity.PredictRequest
	if err := decodeJSON(w, r, h.maxBody, &req); err != nil {
		writeError(w, r, err)
		return
	}

	p, err := h.svc.Predict(r.Context(), req.Drug, req.Protein)
	if err != nil {
		h.logFailure(err)
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toPredictResponse(p))
}

// Encode handles POST /api/v1/encode.
func (h *PredictHandler) Encode(w http.ResponseWriter, r *http.Request) {
	var req affinity.PredictRequest
	if err := decodeJSON(w, r, h.maxBody, &req); err != nil {
		writeError(w, r, err)
		return
	}

	enc, err := h.svc.Encode(r.Context(), req.Drug, req.Protein)
	if err != nil {
		h.logFailure(err)
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toEncodeResponse(enc))
}

func (h *PredictHandler) logFailure(err error) {
	if errors.IsCode(err, errors.ErrCodeInvalidInput) {
		return
	}
	h.logger.Error("prediction failed", logging.Err(err))
}

func toPredictResponse(p *prediction.Prediction) affinity.PredictResponse {
	if p.Source == prediction.SourceMeasured {
		return affinity.Measured(p.Affinity)
	}
	return affinity.Estimated(p.Affinity, p.CanonicalSMILES, p.ModelVersion)
}

func toEncodeResponse(e *prediction.Encoding) affinity.EncodeResponse {
	return affinity.EncodeResponse{
		CanonicalSMILES: e.CanonicalSMILES,
		Radius:          e.Fingerprint.Radius,
		NBits:           e.Fingerprint.Length,
		OnBits:          e.Fingerprint.OnBits(),
		Composition:     e.Composition[:],
		FeatureLength:   len(e.Features),
	}
}
