package dto

import "net/http"

// General error codes
const (
	ErrCodeInternal   = "INTERNAL"
	ErrCodeBadRequest = "BAD_REQUEST"
	ErrCodeValidation = "VALIDATION"
)

// Authentication error codes
const (
	ErrCodeUnauthorized = "UNAUTHORIZED"
	ErrCodeForbidden    = "FORBIDDEN"
	ErrCodeTokenExpired = "TOKEN_EXPIRED"
	ErrCodeTokenInvalid = "TOKEN_INVALID"
)

// Resource error codes
const (
	ErrCodeNotFound            = "NOT_FOUND"
	ErrCodeAlreadyExists       = "ALREADY_EXISTS"
	ErrCodeConcurrencyConflict = "CONCURRENCY_CONFLICT"
)

// Business rule error codes, matching the domain error codes
const (
	ErrCodeInvalidInput       = "INVALID_INPUT"
	ErrCodeInvalidState       = "INVALID_STATE"
	ErrCodeInvalidPhone       = "INVALID_PHONE"
	ErrCodePlanInUse          = "PLAN_IN_USE"
	ErrCodeDuplicateInvoiceNo = "DUPLICATE_INVOICE_NUMBER"
	ErrCodeInvoiceMismatch    = "INVOICE_MISMATCH"
	ErrCodeResetNotConfirmed  = "RESET_NOT_CONFIRMED"
	ErrCodeInvalidCredentials = "INVALID_CREDENTIALS"
	ErrCodeGatewayUnavailable = "GATEWAY_UNAVAILABLE"
)

// errorCodeHTTPStatus maps error codes to HTTP status codes
var errorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:   http.StatusInternalServerError,
	ErrCodeBadRequest: http.StatusBadRequest,
	ErrCodeValidation: http.StatusBadRequest,

	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeForbidden:    http.StatusForbidden,
	ErrCodeTokenExpired: http.StatusUnauthorized,
	ErrCodeTokenInvalid: http.StatusUnauthorized,

	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeAlreadyExists:       http.StatusConflict,
	ErrCodeConcurrencyConflict: http.StatusConflict,

	ErrCodeInvalidInput:       http.StatusBadRequest,
	ErrCodeInvalidPhone:       http.StatusBadRequest,
	ErrCodeInvalidState:       http.StatusUnprocessableEntity,
	ErrCodePlanInUse:          http.StatusConflict,
	ErrCodeDuplicateInvoiceNo: http.StatusConflict,
	ErrCodeInvoiceMismatch:    http.StatusUnprocessableEntity,
	ErrCodeResetNotConfirmed:  http.StatusUnprocessableEntity,
	ErrCodeInvalidCredentials: http.StatusUnauthorized,
	ErrCodeGatewayUnavailable: http.StatusBadGateway,
}

// GetHTTPStatus resolves an error code to its HTTP status, defaulting
// to 500 for unknown codes.
func GetHTTPStatus(code string) int {
	if status, ok := errorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
