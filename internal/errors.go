package internal

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

type ErrorType string

const (
	ErrorTypeValidation   ErrorType = "VALIDATION_ERROR"
	ErrorTypeNotFound     ErrorType = "NOT_FOUND"
	ErrorTypeUnauthorized ErrorType = "UNAUTHORIZED"
	ErrorTypeForbidden    ErrorType = "FORBIDDEN"
	ErrorTypeDependency   ErrorType = "DEPENDENCY_CONFLICT"
	ErrorTypeInternal     ErrorType = "INTERNAL_ERROR"
)

type ErrorCode string

const (
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrCodeForbidden        ErrorCode = "FORBIDDEN"

	ErrCodeUserNotFound       ErrorCode = "USER_NOT_FOUND"
	ErrCodeDepartmentNotFound ErrorCode = "DEPARTMENT_NOT_FOUND"
	ErrCodeSiteNotFound       ErrorCode = "SITE_NOT_FOUND"
	ErrCodeGroupNotFound      ErrorCode = "GROUP_NOT_FOUND"
	ErrCodePermissionNotFound ErrorCode = "PERMISSION_NOT_FOUND"
	ErrCodeRoleNotFound       ErrorCode = "ROLE_NOT_FOUND"

	ErrCodeDepartmentHasUsers ErrorCode = "DEPARTMENT_HAS_USERS"
	ErrCodeSiteHasUsers       ErrorCode = "SITE_HAS_USERS"
	ErrCodeSiteHasDepartments ErrorCode = "SITE_HAS_DEPARTMENTS"
	ErrCodeNotResponsible     ErrorCode = "NOT_GROUP_RESPONSIBLE"

	ErrCodeInvalidCredentials ErrorCode = "INVALID_CREDENTIALS"
	ErrCodeUserInactive       ErrorCode = "USER_INACTIVE"
	ErrCodeInvalidToken       ErrorCode = "INVALID_TOKEN"
	ErrCodeTokenExpired       ErrorCode = "TOKEN_EXPIRED"
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
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

func (e *AppError) WithDetails(details interface{}) *AppError {
	e.Details = details
	return e
}

func NewValidationError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusBadRequest,
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

func NewUnauthorizedError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeUnauthorized,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusUnauthorized,
	}
}

func NewForbiddenError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeForbidden,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusForbidden,
	}
}

// NewDependencyError reports a delete blocked by dependent records. Surfaced
// as 400 with the message intact so callers can tell it apart from a plain
// validation failure.
func NewDependencyError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeDependency,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusBadRequest,
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

var (
	// ErrForbidden is deliberately generic: the permission key that failed
	// resolution is never leaked to the caller.
	ErrForbidden = NewForbiddenError("Forbidden", ErrCodeForbidden)

	ErrDepartmentHasUsers = NewDependencyError("Department has attached users", ErrCodeDepartmentHasUsers)
	ErrSiteHasUsers       = NewDependencyError("Site has attached users", ErrCodeSiteHasUsers)
	ErrSiteHasDepartments = NewDependencyError("Site has attached departments", ErrCodeSiteHasDepartments)
	ErrNotResponsible     = NewForbiddenError("Forbidden", ErrCodeNotResponsible)

	ErrInvalidCredentials = NewUnauthorizedError("Invalid email or password", ErrCodeInvalidCredentials)
	ErrUserInactive       = NewForbiddenError("User account is inactive", ErrCodeUserInactive)
	ErrInvalidToken       = NewUnauthorizedError("Invalid token", ErrCodeInvalidToken)
	ErrTokenExpired       = NewUnauthorizedError("Token has expired", ErrCodeTokenExpired)
)

func IsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

type Response struct {
	Error *AppError `json:"error"`
}

func (e *AppError) ToHTTPResponse() (int, interface{}) {
	return e.StatusCode, Response{Error: e}
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
		Message: e.Message,
		Details: e.Details,
	})
}
