package errors

import (
	"net/http"
	"strings"
)

// ErrorCode is a string representation of a specific error condition.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common error codes shared by every module.
const (
	ErrCodeInternal           ErrorCode = "COMMON_001"
	ErrCodeBadRequest         ErrorCode = "COMMON_002"
	ErrCodeNotFound           ErrorCode = "COMMON_003"
	ErrCodeConflict           ErrorCode = "COMMON_004"
	ErrCodeTooManyRequests    ErrorCode = "COMMON_005"
	ErrCodeServiceUnavailable ErrorCode = "COMMON_006"
	ErrCodeTimeout            ErrorCode = "COMMON_007"
	ErrCodeValidation         ErrorCode = "COMMON_008"
	ErrCodeSerialization      ErrorCode = "COMMON_009"
	ErrCodeDatabaseError      ErrorCode = "COMMON_010"
	ErrCodeCacheError         ErrorCode = "COMMON_011"
	ErrCodeExternalService    ErrorCode = "COMMON_012"
	ErrCodeNotImplemented     ErrorCode = "COMMON_013"
)

// Short aliases used throughout the codebase.
const (
	CodeOK      = ErrorCode("OK")
	CodeUnknown = ErrorCode("UNKNOWN")

	CodeInternal        = ErrCodeInternal
	CodeInvalidParam    = ErrCodeBadRequest
	CodeNotFound        = ErrCodeNotFound
	CodeConflict        = ErrCodeConflict
	CodeRateLimit       = ErrCodeTooManyRequests
	CodeTimeout         = ErrCodeTimeout
	CodeValidation      = ErrCodeValidation
	CodeSerialization   = ErrCodeSerialization
	CodeDatabaseError   = ErrCodeDatabaseError
	CodeCacheError      = ErrCodeCacheError
	CodeExternalService = ErrCodeExternalService
	CodeNotImplemented  = ErrCodeNotImplemented

	CodeInvalidStructure  = ErrCodeInvalidStructure
	CodeMoleculeNotFound  = ErrCodeMoleculeNotFound
	CodeMissingDescriptor = ErrCodeMissingDescriptor
	CodeNoLigandFound     = ErrCodeNoLigandFound
	CodeInsufficientData  = ErrCodeInsufficientData
	CodeStageMissing      = ErrCodeStageMissing
	CodeExternalTimeout   = ErrCodeDataSourceTimeout
)

// Molecule module error codes.
const (
	ErrCodeInvalidStructure      ErrorCode = "MOL_001"
	ErrCodeMoleculeNotFound      ErrorCode = "MOL_002"
	ErrCodeMissingDescriptor     ErrorCode = "MOL_003"
	ErrCodeCanonicalizeFailed    ErrorCode = "MOL_004"
	ErrCodeRenderFailed          ErrorCode = "MOL_005"
	ErrCodeValenceViolation      ErrorCode = "MOL_006"
	ErrCodeFingerprintFailed     ErrorCode = "MOL_007"
	ErrCodeDescriptorCalcFailed  ErrorCode = "MOL_008"
)

// Scaffold module error codes.
const (
	ErrCodeScaffoldDecompositionFailed ErrorCode = "SCF_001"
	ErrCodeScaffoldNotFound            ErrorCode = "SCF_002"
	ErrCodeScaffoldProjectionFailed    ErrorCode = "SCF_003"
)

// Generation module error codes.
const (
	ErrCodeStrategyFailed      ErrorCode = "GEN_001"
	ErrCodeStrategyUnknown     ErrorCode = "GEN_002"
	ErrCodeNoCandidates        ErrorCode = "GEN_003"
	ErrCodeSeedSetEmpty        ErrorCode = "GEN_004"
)

// Binding-site module error codes.
const (
	ErrCodeNoLigandFound      ErrorCode = "SITE_001"
	ErrCodeResidueNotFound    ErrorCode = "SITE_002"
	ErrCodeSiteAlreadyFixed   ErrorCode = "SITE_003"
	ErrCodeStructureNotFound  ErrorCode = "SITE_004"
	ErrCodeStructureParseFail ErrorCode = "SITE_005"
)

// Potency model error codes.
const (
	ErrCodeInsufficientData ErrorCode = "POT_001"
	ErrCodeModelNotTrained  ErrorCode = "POT_002"
	ErrCodeTrainingFailed   ErrorCode = "POT_003"
)

// Docking error codes.
const (
	ErrCodeDockingFailed      ErrorCode = "DOCK_001"
	ErrCodeDockingTimeout     ErrorCode = "DOCK_002"
	ErrCodePoseParseFailed    ErrorCode = "DOCK_003"
	ErrCodeEngineUnavailable  ErrorCode = "DOCK_004"
	ErrCodeLigandPrepFailed   ErrorCode = "DOCK_005"
)

// Scoring and fusion error codes.
const (
	ErrCodeRecordIncomplete ErrorCode = "SCORE_001"
	ErrCodeUnknownSignal    ErrorCode = "SCORE_002"
	ErrCodeWeightsInvalid   ErrorCode = "SCORE_003"
)

// Pipeline error codes.
const (
	ErrCodeStageMissing   ErrorCode = "PIPE_001"
	ErrCodeStageHalted    ErrorCode = "PIPE_002"
	ErrCodeManifestBroken ErrorCode = "PIPE_003"
	ErrCodeProjectUnknown ErrorCode = "PIPE_004"
)

// External data source error codes (ChEMBL, RCSB).
const (
	ErrCodeDataSourceUnavailable ErrorCode = "SRC_001"
	ErrCodeDataSourceRateLimited ErrorCode = "SRC_002"
	ErrCodeDataSourceParseError  ErrorCode = "SRC_003"
	ErrCodeDataSourceTimeout     ErrorCode = "SRC_004"
)

// ErrorCodeHTTPStatus maps ErrorCodes to HTTP status codes.
var ErrorCodeHTTPStatus = map[ErrorCode]int{
	ErrCodeInternal:           http.StatusInternalServerError,
	ErrCodeBadRequest:         http.StatusBadRequest,
	ErrCodeNotFound:           http.StatusNotFound,
	ErrCodeConflict:           http.StatusConflict,
	ErrCodeTooManyRequests:    http.StatusTooManyRequests,
	ErrCodeServiceUnavailable: http.StatusServiceUnavailable,
	ErrCodeTimeout:            http.StatusGatewayTimeout,
	ErrCodeValidation:         http.StatusUnprocessableEntity,
	ErrCodeSerialization:      http.StatusInternalServerError,
	ErrCodeDatabaseError:      http.StatusInternalServerError,
	ErrCodeCacheError:         http.StatusInternalServerError,
	ErrCodeExternalService:    http.StatusBadGateway,
	ErrCodeNotImplemented:     http.StatusNotImplemented,

	ErrCodeInvalidStructure:     http.StatusBadRequest,
	ErrCodeMoleculeNotFound:     http.StatusNotFound,
	ErrCodeMissingDescriptor:    http.StatusUnprocessableEntity,
	ErrCodeCanonicalizeFailed:   http.StatusBadRequest,
	ErrCodeRenderFailed:         http.StatusInternalServerError,
	ErrCodeValenceViolation:     http.StatusBadRequest,
	ErrCodeFingerprintFailed:    http.StatusInternalServerError,
	ErrCodeDescriptorCalcFailed: http.StatusInternalServerError,

	ErrCodeScaffoldDecompositionFailed: http.StatusInternalServerError,
	ErrCodeScaffoldNotFound:            http.StatusNotFound,
	ErrCodeScaffoldProjectionFailed:    http.StatusInternalServerError,

	ErrCodeStrategyFailed:  http.StatusInternalServerError,
	ErrCodeStrategyUnknown: http.StatusBadRequest,
	ErrCodeNoCandidates:    http.StatusUnprocessableEntity,
	ErrCodeSeedSetEmpty:    http.StatusUnprocessableEntity,

	ErrCodeNoLigandFound:      http.StatusUnprocessableEntity,
	ErrCodeResidueNotFound:    http.StatusUnprocessableEntity,
	ErrCodeSiteAlreadyFixed:   http.StatusConflict,
	ErrCodeStructureNotFound:  http.StatusNotFound,
	ErrCodeStructureParseFail: http.StatusBadGateway,

	ErrCodeInsufficientData: http.StatusUnprocessableEntity,
	ErrCodeModelNotTrained:  http.StatusConflict,
	ErrCodeTrainingFailed:   http.StatusInternalServerError,

	ErrCodeDockingFailed:     http.StatusInternalServerError,
	ErrCodeDockingTimeout:    http.StatusGatewayTimeout,
	ErrCodePoseParseFailed:   http.StatusInternalServerError,
	ErrCodeEngineUnavailable: http.StatusServiceUnavailable,
	ErrCodeLigandPrepFailed:  http.StatusInternalServerError,

	ErrCodeRecordIncomplete: http.StatusConflict,
	ErrCodeUnknownSignal:    http.StatusBadRequest,
	ErrCodeWeightsInvalid:   http.StatusBadRequest,

	ErrCodeStageMissing:   http.StatusNotFound,
	ErrCodeStageHalted:    http.StatusInternalServerError,
	ErrCodeManifestBroken: http.StatusInternalServerError,
	ErrCodeProjectUnknown: http.StatusNotFound,

	ErrCodeDataSourceUnavailable: http.StatusServiceUnavailable,
	ErrCodeDataSourceRateLimited: http.StatusTooManyRequests,
	ErrCodeDataSourceParseError:  http.StatusBadGateway,
	ErrCodeDataSourceTimeout:     http.StatusGatewayTimeout,
}

// ErrorCodeMessage maps ErrorCodes to default messages.
var ErrorCodeMessage = map[ErrorCode]string{
	ErrCodeInternal:           "internal server error",
	ErrCodeBadRequest:         "bad request",
	ErrCodeNotFound:           "resource not found",
	ErrCodeConflict:           "resource conflict",
	ErrCodeTooManyRequests:    "too many requests",
	ErrCodeServiceUnavailable: "service unavailable",
	ErrCodeTimeout:            "request timeout",
	ErrCodeValidation:         "validation failed",
	ErrCodeSerialization:      "serialization failed",
	ErrCodeDatabaseError:      "database error",
	ErrCodeCacheError:         "cache error",
	ErrCodeExternalService:    "external service error",
	ErrCodeNotImplemented:     "not implemented",

	ErrCodeInvalidStructure:     "invalid molecular structure",
	ErrCodeMoleculeNotFound:     "molecule not found",
	ErrCodeMissingDescriptor:    "required descriptor missing",
	ErrCodeCanonicalizeFailed:   "failed to canonicalize structure",
	ErrCodeRenderFailed:         "failed to render structure",
	ErrCodeValenceViolation:     "valence rules violated",
	ErrCodeFingerprintFailed:    "failed to generate fingerprint",
	ErrCodeDescriptorCalcFailed: "descriptor calculation failed",

	ErrCodeScaffoldDecompositionFailed: "scaffold decomposition failed",
	ErrCodeScaffoldNotFound:            "scaffold not found",
	ErrCodeScaffoldProjectionFailed:    "descriptor projection failed",

	ErrCodeStrategyFailed:  "mutation strategy failed",
	ErrCodeStrategyUnknown: "unknown mutation strategy",
	ErrCodeNoCandidates:    "no candidates survived filtering",
	ErrCodeSeedSetEmpty:    "seed set is empty",

	ErrCodeNoLigandFound:      "no co-crystallized ligand found",
	ErrCodeResidueNotFound:    "fallback residue not found in structure",
	ErrCodeSiteAlreadyFixed:   "binding site already resolved",
	ErrCodeStructureNotFound:  "target structure not found",
	ErrCodeStructureParseFail: "failed to parse target structure",

	ErrCodeInsufficientData: "insufficient training data",
	ErrCodeModelNotTrained:  "potency model not trained",
	ErrCodeTrainingFailed:   "potency model training failed",

	ErrCodeDockingFailed:     "docking run failed",
	ErrCodeDockingTimeout:    "docking run timed out",
	ErrCodePoseParseFailed:   "failed to parse docking output",
	ErrCodeEngineUnavailable: "docking engine unavailable",
	ErrCodeLigandPrepFailed:  "ligand preparation failed",

	ErrCodeRecordIncomplete: "score record incomplete",
	ErrCodeUnknownSignal:    "unknown score signal",
	ErrCodeWeightsInvalid:   "invalid fusion weights",

	ErrCodeStageMissing:   "stage output not found",
	ErrCodeStageHalted:    "stage halted",
	ErrCodeManifestBroken: "run manifest corrupted",
	ErrCodeProjectUnknown: "project not found",

	ErrCodeDataSourceUnavailable: "data source unavailable",
	ErrCodeDataSourceRateLimited: "data source rate limited",
	ErrCodeDataSourceParseError:  "failed to parse data source response",
	ErrCodeDataSourceTimeout:     "data source request timed out",
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

// IsServerError returns true if the ErrorCode corresponds to a 5xx HTTP status.
func IsServerError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 500 && status < 600
}

// IsRetryable reports whether an operation failing with this code is worth
// retrying.  Used by the external clients to bound their retry loops to
// transient conditions.
func IsRetryable(code ErrorCode) bool {
	switch code {
	case ErrCodeTimeout, ErrCodeServiceUnavailable, ErrCodeTooManyRequests,
		ErrCodeDataSourceUnavailable, ErrCodeDataSourceRateLimited,
		ErrCodeDataSourceTimeout, ErrCodeDockingTimeout:
		return true
	}
	return false
}

// ModuleForCode returns the module prefix of an ErrorCode.
func ModuleForCode(code ErrorCode) string {
	parts := strings.Split(string(code), "_")
	if len(parts) > 0 && parts[0] != "" {
		return parts[0]
	}
	return "UNKNOWN"
}
