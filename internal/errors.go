package internal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

type ErrorType string

const (
	ErrorTypeValidation        ErrorType = "VALIDATION_ERROR"
	ErrorTypeConfig            ErrorType = "CONFIG_ERROR"
	ErrorTypeDomain            ErrorType = "DOMAIN_ERROR"
	ErrorTypeNotFound          ErrorType = "NOT_FOUND"
	ErrorTypeDuplicate         ErrorType = "DUPLICATE"
	ErrorTypeInvalidTransition ErrorType = "INVALID_TRANSITION"
	ErrorTypeTimeout           ErrorType = "TIMEOUT"
	ErrorTypeUnauthorized      ErrorType = "UNAUTHORIZED"
	ErrorTypeInternal          ErrorType = "INTERNAL_ERROR"
	ErrorTypeExternal          ErrorType = "EXTERNAL_ERROR"
)

type ErrorCode string

const (
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrCodeInvalidPeriod    ErrorCode = "INVALID_PERIOD"
	ErrCodeInvalidID        ErrorCode = "INVALID_ID"
	ErrCodeMissingApprover  ErrorCode = "MISSING_APPROVER"

	ErrCodeInvalidTemplate ErrorCode = "INVALID_TEMPLATE"
	ErrCodeInvalidMethod   ErrorCode = "INVALID_METHOD_CONFIG"
	ErrCodeSlabOutOfRange  ErrorCode = "SLAB_OUT_OF_RANGE"
	ErrCodeFormulaResult   ErrorCode = "FORMULA_RESULT"
	ErrCodeBadAttendance   ErrorCode = "INVALID_ATTENDANCE"
	ErrCodeInvalidStruct   ErrorCode = "INVALID_STRUCTURE"

	ErrCodeTemplateNotFound   ErrorCode = "TEMPLATE_NOT_FOUND"
	ErrCodeStructureNotFound  ErrorCode = "STRUCTURE_NOT_FOUND"
	ErrCodeAttendanceNotFound ErrorCode = "ATTENDANCE_NOT_FOUND"
	ErrCodeSalaryNotFound     ErrorCode = "SALARY_NOT_FOUND"

	ErrCodeDuplicateSalary   ErrorCode = "DUPLICATE_SALARY"
	ErrCodeDuplicateTemplate ErrorCode = "DUPLICATE_TEMPLATE"
	ErrCodeInvalidTransition ErrorCode = "INVALID_STATUS_TRANSITION"
	ErrCodeLookupTimeout     ErrorCode = "LOOKUP_TIMEOUT"

	ErrCodeSlipFailed ErrorCode = "SLIP_GENERATION_FAILED"
)

type AppError struct {
	Type       ErrorType   `json:"type"`
	Code       ErrorCode   `json:"code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
	StatusCode int         `json:"-"`
	Cause      error       `json:"-"`
}

func (e *AppError) Error() string {
	if e.Details != nil {
		if validationErrors, ok := e.Details.(ValidationErrors); ok && len(validationErrors.Errors) > 0 {
			return validationErrors.Errors[0].Message
		}
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) GetDetailedMessage() string {
	if e.Details != nil {
		if validationErrors, ok := e.Details.(ValidationErrors); ok && len(validationErrors.Errors) > 0 {
			messages := make([]string, len(validationErrors.Errors))
			for i, err := range validationErrors.Errors {
				messages[i] = err.Message
			}
			return strings.Join(messages, "; ")
		}
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is matches on type and code, so package level sentinels work with errors.Is
// even though every failure gets its own *AppError.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Type == t.Type && e.Code == t.Code
}

// WithCause returns a copy carrying cause. Sentinels are never mutated.
func (e *AppError) WithCause(cause error) *AppError {
	cp := *e
	cp.Cause = cause
	return &cp
}

func (e *AppError) WithDetails(details interface{}) *AppError {
	cp := *e
	cp.Details = details
	return &cp
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func NewValidationError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

func NewValidationFieldError(field, message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       ErrCodeValidationFailed,
		Message:    "Validation failed",
		StatusCode: http.StatusBadRequest,
		Details: ValidationErrors{
			Errors: []ValidationError{
				{Field: field, Message: message, Code: string(code)},
			},
		},
	}
}

func NewConfigError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeConfig,
		Code:       ErrCodeInvalidMethod,
		Message:    message,
		StatusCode: http.StatusUnprocessableEntity,
		Cause:      cause,
	}
}

func NewDomainError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeDomain,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusUnprocessableEntity,
	}
}

func NewNotFoundError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusNotFound,
	}
}

func NewDuplicateError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeDuplicate,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusConflict,
	}
}

func NewInvalidTransitionError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeInvalidTransition,
		Code:       ErrCodeInvalidTransition,
		Message:    message,
		StatusCode: http.StatusConflict,
	}
}

func NewTimeoutError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeTimeout,
		Code:       ErrCodeLookupTimeout,
		Message:    message,
		StatusCode: http.StatusGatewayTimeout,
		Cause:      cause,
	}
}

func NewUnauthorizedError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeUnauthorized,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusUnauthorized,
	}
}

func NewInternalError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Code:       "INTERNAL_ERROR",
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Cause:      cause,
	}
}

func NewExternalError(message string, code ErrorCode, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeExternal,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusBadGateway,
		Cause:      cause,
	}
}

var (
	ErrSalaryNotFound     = NewNotFoundError("calculated salary not found", ErrCodeSalaryNotFound)
	ErrStructureNotFound  = NewNotFoundError("salary structure not found", ErrCodeStructureNotFound)
	ErrAttendanceNotFound = NewNotFoundError("attendance summary not found", ErrCodeAttendanceNotFound)
	ErrTemplateNotFound   = NewNotFoundError("template not found", ErrCodeTemplateNotFound)
	ErrDuplicateSalary    = NewDuplicateError("salary already exists for employee and period", ErrCodeDuplicateSalary)
	ErrInvalidTransition  = NewInvalidTransitionError("status transition not allowed")
	ErrMissingApprover    = NewUnauthorizedError("approver id is required", ErrCodeMissingApprover)
)

func IsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// KindOf classifies err. Context deadlines map to TIMEOUT, anything unknown to INTERNAL_ERROR.
func KindOf(err error) ErrorType {
	if err == nil {
		return ""
	}
	if appErr, ok := IsAppError(err); ok {
		return appErr.Type
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrorTypeTimeout
	}
	return ErrorTypeInternal
}

func IsKind(err error, kind ErrorType) bool {
	return KindOf(err) == kind
}

// ItemError is a per-item failure reported by bulk operations.
type ItemError struct {
	ID      string    `json:"id"`
	Kind    ErrorType `json:"kind"`
	Message string    `json:"message"`
}

func (e ItemError) Error() string {
	return fmt.Sprintf("%s [%s]: %s", e.ID, e.Kind, e.Message)
}

func NewItemError(id string, err error) ItemError {
	return ItemError{ID: id, Kind: KindOf(err), Message: err.Error()}
}

type Response struct {
	Error *AppError `json:"error"`
}

func (e *AppError) ToHTTPResponse() (int, interface{}) {
	status := e.StatusCode
	if status == 0 {
		status = http.StatusInternalServerError
	}
	return status, Response{Error: e}
}

func (e *AppError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type    ErrorType   `json:"type"`
		Code    ErrorCode   `json:"code"`
		Message string      `json:"message"`
		Details interface{} `json:"details,omitempty"`
	}{
		Type:    e.Type,
		Code:    e.Code,
		Message: e.GetDetailedMessage(),
		Details: e.Details,
	})
}
