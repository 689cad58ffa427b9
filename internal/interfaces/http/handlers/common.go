// Package handlers implements the HTTP endpoints of the affinity server.
package handlers

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/turtacn/dti-affinity/pkg/errors"
	"github.com/turtacn/dti-affinity/pkg/types/affinity"
)

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// writeError maps err to its HTTP status and writes an ErrorResponse. Codes
// without a mapping are masked as internal errors.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	resp := affinity.ErrorResponse{RequestID: chimw.GetReqID(r.Context())}

	var appErr *errors.AppError
	if !stderrors.As(err, &appErr) {
		resp.Code = string(errors.ErrCodeInternal)
		resp.Message = errors.ErrorCodeMessage[errors.ErrCodeInternal]
		writeJSON(w, http.StatusInternalServerError, resp)
		return
	}

	status := appErr.HTTPStatus()
	resp.Code = string(appErr.Code)
	resp.Message = appErr.Message
	if status < http.StatusInternalServerError {
		resp.Detail = appErr.Detail
	}
	writeJSON(w, status, resp)
}

// decodeJSON reads at most limit bytes from r.Body into dst. Unknown fields
// are ignored; trailing data after the object is rejected.
func decodeJSON(w http.ResponseWriter, r *http.Request, limit int64, dst interface{}) error {
	body := http.MaxBytesReader(w, r.Body, limit)
	dec := json.NewDecoder(body)
	if err := dec.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case stderrors.As(err, &tooLarge):
			return errors.New(errors.ErrCodeInvalidInput, "request body too large").
				WithDetail(fmt.Sprintf("limit %d bytes", limit))
		case stderrors.Is(err, io.EOF):
			return errors.New(errors.ErrCodeInvalidInput, "request body is empty")
		default:
			return errors.Wrap(err, errors.ErrCodeInvalidInput, "request body is not valid JSON").
				WithDetail(err.Error())
		}
	}
	if dec.More() {
		return errors.New(errors.ErrCodeInvalidInput, "request body must contain a single JSON object")
	}
	return nil
}
