package errors

import (
	"net/http"
	"strings"
)

// ErrorCode is a string representation of a specific error condition.
// Codes carry a module prefix (COMMON, AFF, MOL, SEQ, EST, REF).
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common Error Codes
const (
	ErrCodeInternal        ErrorCode = "COMMON_001"
	ErrCodeNotFound        ErrorCode = "COMMON_005"
	ErrCodeTimeout         ErrorCode = "COMMON_009"
	ErrCodeValidation      ErrorCode = "COMMON_010"
	ErrCodeSerialization   ErrorCode = "COMMON_011"
	ErrCodeDatabaseError   ErrorCode = "COMMON_012"
	ErrCodeExternalService ErrorCode = "COMMON_014"
)

// Aliases used at call sites.
const (
	CodeInternal = ErrCodeInternal
	CodeNotFound = ErrCodeNotFound
	CodeOK       = ErrorCode("OK")
	CodeUnknown  = ErrorCode("UNKNOWN")
)

// Affinity pipeline error codes
const (
	// ErrCodeInvalidInput is the terminal failure of a prediction request.
	ErrCodeInvalidInput        ErrorCode = "AFF_001"
	ErrCodeReferenceLoadFailed ErrorCode = "AFF_002"
)

// Molecule error codes
const (
	ErrCodeMoleculeInvalidSMILES    ErrorCode = "MOL_001"
	ErrCodeMoleculeEmptySMILES      ErrorCode = "MOL_002"
	ErrCodeMoleculeUnexpectedChar   ErrorCode = "MOL_003"
	ErrCodeMoleculeUnbalancedBranch ErrorCode = "MOL_004"
	ErrCodeMoleculeUnclosedRing     ErrorCode = "MOL_005"
	ErrCodeMoleculeInvalidValence   ErrorCode = "MOL_006"
	ErrCodeMoleculeNonRingAromatic  ErrorCode = "MOL_007"
	ErrCodeMoleculeInvalidBracket   ErrorCode = "MOL_008"
	ErrCodeFingerprintParams        ErrorCode = "MOL_009"
)

// Sequence error codes
const (
	ErrCodeSequenceEmpty          ErrorCode = "SEQ_001"
	ErrCodeSequenceUnknownResidue ErrorCode = "SEQ_002"
)

// Estimator error codes
const (
	ErrCodeMissingEstimatorArtifact ErrorCode = "EST_001"
	ErrCodeInvalidEstimatorArtifact ErrorCode = "EST_002"
	ErrCodeFeatureLengthMismatch    ErrorCode = "EST_003"
)

// ErrorCodeHTTPStatus maps ErrorCodes to HTTP status codes.
var ErrorCodeHTTPStatus = map[ErrorCode]int{
	ErrCodeInternal:        http.StatusInternalServerError,
	ErrCodeNotFound:        http.StatusNotFound,
	ErrCodeTimeout:         http.StatusGatewayTimeout,
	ErrCodeValidation:      http.StatusUnprocessableEntity,
	ErrCodeSerialization:   http.StatusInternalServerError,
	ErrCodeDatabaseError:   http.StatusInternalServerError,
	ErrCodeExternalService: http.StatusBadGateway,

	ErrCodeInvalidInput:        http.StatusBadRequest,
	ErrCodeReferenceLoadFailed: http.StatusInternalServerError,

	ErrCodeMoleculeInvalidSMILES:    http.StatusBadRequest,
	ErrCodeMoleculeEmptySMILES:      http.StatusBadRequest,
	ErrCodeMoleculeUnexpectedChar:   http.StatusBadRequest,
	ErrCodeMoleculeUnbalancedBranch: http.StatusBadRequest,
	ErrCodeMoleculeUnclosedRing:     http.StatusBadRequest,
	ErrCodeMoleculeInvalidValence:   http.StatusBadRequest,
	ErrCodeMoleculeNonRingAromatic:  http.StatusBadRequest,
	ErrCodeMoleculeInvalidBracket:   http.StatusBadRequest,
	ErrCodeFingerprintParams:        http.StatusInternalServerError,

	ErrCodeSequenceEmpty:          http.StatusBadRequest,
	ErrCodeSequenceUnknownResidue: http.StatusBadRequest,

	ErrCodeMissingEstimatorArtifact: http.StatusServiceUnavailable,
	ErrCodeInvalidEstimatorArtifact: http.StatusInternalServerError,
	ErrCodeFeatureLengthMismatch:    http.StatusInternalServerError,
}

// ErrorCodeMessage maps ErrorCodes to default messages.
var ErrorCodeMessage = map[ErrorCode]string{
	ErrCodeInternal:        "internal server error",
	ErrCodeNotFound:        "resource not found",
	ErrCodeTimeout:         "request timeout",
	ErrCodeValidation:      "validation failed",
	ErrCodeSerialization:   "serialization failed",
	ErrCodeDatabaseError:   "database error",
	ErrCodeExternalService: "external service error",

	ErrCodeInvalidInput:        "invalid input",
	ErrCodeReferenceLoadFailed: "failed to load reference measurements",

	ErrCodeMoleculeInvalidSMILES:    "invalid SMILES",
	ErrCodeMoleculeEmptySMILES:      "empty SMILES",
	ErrCodeMoleculeUnexpectedChar:   "unexpected character in SMILES",
	ErrCodeMoleculeUnbalancedBranch: "unbalanced branch parentheses",
	ErrCodeMoleculeUnclosedRing:     "unclosed ring bond",
	ErrCodeMoleculeInvalidValence:   "atom exceeds allowed valence",
	ErrCodeMoleculeNonRingAromatic:  "aromatic atom outside a ring",
	ErrCodeMoleculeInvalidBracket:   "malformed bracket atom",
	ErrCodeFingerprintParams:        "invalid fingerprint parameters",

	ErrCodeSequenceEmpty:          "empty protein sequence",
	ErrCodeSequenceUnknownResidue: "unknown residue in protein sequence",

	ErrCodeMissingEstimatorArtifact: "estimator artifact not found",
	ErrCodeInvalidEstimatorArtifact: "estimator artifact is malformed",
	ErrCodeFeatureLengthMismatch:    "feature vector length mismatch",
}

// HTTPStatusForCode returns the HTTP status code for an ErrorCode.
func HTTPStatusForCode(code ErrorCode) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DefaultMessageForCode returns the default message for an ErrorCode.
func DefaultMessageForCode(code ErrorCode) string {
	if msg, ok := ErrorCodeMessage[code]; ok {
		return msg
	}
	return "unknown error"
}

// IsClientError returns true if the ErrorCode corresponds to a 4xx HTTP status.
func IsClientError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 400 && status < 500
}

// ModuleForCode returns the module prefix of an ErrorCode.
func ModuleForCode(code ErrorCode) string {
	prefix, _, found := strings.Cut(string(code), "_")
	if !found || prefix == "" {
		return "UNKNOWN"
	}
	return prefix
}
