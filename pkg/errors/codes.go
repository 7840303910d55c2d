package errors

import (
	"net/http"
	"strings"
)

// ErrorCode is a string identifier for a specific failure category.  Codes are
// namespaced per module with an underscore-separated prefix so that logs and
// metrics can be grouped by subsystem.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common error codes.
const (
	CodeOK                 ErrorCode = "OK"
	CodeUnknown            ErrorCode = "COMMON_000"
	CodeInternal           ErrorCode = "COMMON_001"
	CodeInvalidParam       ErrorCode = "COMMON_002"
	CodeNotFound           ErrorCode = "COMMON_003"
	CodeConflict           ErrorCode = "COMMON_004"
	CodeTimeout            ErrorCode = "COMMON_005"
	CodeValidation         ErrorCode = "COMMON_006"
	CodeSerialization      ErrorCode = "COMMON_007"
	CodeServiceUnavailable ErrorCode = "COMMON_008"
	CodeNotImplemented     ErrorCode = "COMMON_009"
)

// Store error codes — PATSTAT read side and the tool-owned run store.
const (
	CodeDBConnectionError ErrorCode = "STORE_001"
	CodeDBQueryError      ErrorCode = "STORE_002"
	CodeMigrationError    ErrorCode = "STORE_003"
	CodeCacheError        ErrorCode = "STORE_004"
	CodeRunNotFound       ErrorCode = "STORE_005"
	CodeArchiveError      ErrorCode = "STORE_006"
	CodeEventPublishError ErrorCode = "STORE_007"
)

// Dataset builder error codes.
const (
	CodeDatasetQueryFailed   ErrorCode = "DS_001"
	CodeDatasetInvalidFilter ErrorCode = "DS_002"
	CodeDatasetInvalidMode   ErrorCode = "DS_003"
)

// Citation fetcher error codes.
const (
	CodeCitationQueryFailed      ErrorCode = "CIT_001"
	CodePublicationResolveFailed ErrorCode = "CIT_002"
)

// Geographic enricher error codes.
const (
	CodeGeoQueryFailed ErrorCode = "GEO_001"
)

// Quality scorer error codes.
const (
	CodeScoreInvalidThresholds ErrorCode = "SCORE_001"
	CodeScoreInvalidCounts     ErrorCode = "SCORE_002"
)

// Export error codes.
const (
	CodeExportWriteFailed  ErrorCode = "EXP_001"
	CodeExportFormatError  ErrorCode = "EXP_002"
	CodeExportReloadFailed ErrorCode = "EXP_003"
)

// errorCodeHTTPStatus maps ErrorCodes to HTTP status codes for the report API.
var errorCodeHTTPStatus = map[ErrorCode]int{
	CodeInternal:           http.StatusInternalServerError,
	CodeInvalidParam:       http.StatusBadRequest,
	CodeNotFound:           http.StatusNotFound,
	CodeConflict:           http.StatusConflict,
	CodeTimeout:            http.StatusGatewayTimeout,
	CodeValidation:         http.StatusUnprocessableEntity,
	CodeSerialization:      http.StatusInternalServerError,
	CodeServiceUnavailable: http.StatusServiceUnavailable,
	CodeNotImplemented:     http.StatusNotImplemented,

	CodeDBConnectionError: http.StatusInternalServerError,
	CodeDBQueryError:      http.StatusInternalServerError,
	CodeMigrationError:    http.StatusInternalServerError,
	CodeCacheError:        http.StatusInternalServerError,
	CodeRunNotFound:       http.StatusNotFound,
	CodeArchiveError:      http.StatusInternalServerError,
	CodeEventPublishError: http.StatusInternalServerError,

	CodeDatasetQueryFailed:   http.StatusInternalServerError,
	CodeDatasetInvalidFilter: http.StatusBadRequest,
	CodeDatasetInvalidMode:   http.StatusBadRequest,

	CodeCitationQueryFailed:      http.StatusInternalServerError,
	CodePublicationResolveFailed: http.StatusInternalServerError,

	CodeGeoQueryFailed: http.StatusInternalServerError,

	CodeScoreInvalidThresholds: http.StatusUnprocessableEntity,
	CodeScoreInvalidCounts:     http.StatusBadRequest,

	CodeExportWriteFailed:  http.StatusInternalServerError,
	CodeExportFormatError:  http.StatusBadRequest,
	CodeExportReloadFailed: http.StatusInternalServerError,
}

// HTTPStatusForCode returns the HTTP status code for an ErrorCode.  Unknown
// codes map to 500.
func HTTPStatusForCode(code ErrorCode) int {
	if status, ok := errorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// IsClientError reports whether the ErrorCode maps to a 4xx HTTP status.
func IsClientError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 400 && status < 500
}

// IsServerError reports whether the ErrorCode maps to a 5xx HTTP status.
func IsServerError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 500 && status < 600
}

// ModuleForCode returns the module prefix of an ErrorCode ("STORE", "DS", ...).
func ModuleForCode(code ErrorCode) string {
	parts := strings.SplitN(string(code), "_", 2)
	if len(parts) > 0 && parts[0] != "" {
		return parts[0]
	}
	return "UNKNOWN"
}
