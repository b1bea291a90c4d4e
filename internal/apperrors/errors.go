package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNotFound indicates that a requested resource (user, token, sheet) could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrAuth is the parent of every authentication failure.
var ErrAuth = errors.New("authentication failed")

// ErrInvalidCredentials is returned for any failed login. It never says which part was wrong.
var ErrInvalidCredentials = fmt.Errorf("%w: invalid username or password", ErrAuth)

// ErrDuplicateUser indicates that the username or email is already registered.
var ErrDuplicateUser = fmt.Errorf("%w: user already exists", ErrAuth)

// ErrInvalidOrExpiredToken indicates a password-reset token that is unknown, expired or already used.
var ErrInvalidOrExpiredToken = fmt.Errorf("%w: invalid or expired token", ErrAuth)

// ErrUnauthorized indicates a request without a valid session or bearer token.
var ErrUnauthorized = fmt.Errorf("%w: unauthorized", ErrAuth)

// ErrPermissionDenied indicates a write attempted without an authenticated user.
var ErrPermissionDenied = errors.New("permission denied")

// ErrStorage indicates the persistence layer could not be reached or failed mid-operation.
var ErrStorage = errors.New("storage error")

// ErrCorruptRecord indicates a stored settings payload that could not be decoded.
var ErrCorruptRecord = errors.New("corrupt record")

// ErrFetch indicates the data source was unreachable, timed out or answered with garbage.
var ErrFetch = errors.New("fetch error")

// ErrInvalidTransition indicates an action that is not allowed from the current login-flow state.
var ErrInvalidTransition = errors.New("invalid state transition")

// AppError carries an HTTP status alongside a wrapped error.
type AppError struct {
	Code    int
	Message string
	Err     error
}

// NewAppError creates an AppError.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// StatusCode maps an error from the taxonomy above to an HTTP status code.
func StatusCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Code != 0 {
		return appErr.Code
	}
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrDuplicateUser):
		return http.StatusConflict
	case errors.Is(err, ErrAuth):
		return http.StatusUnauthorized
	case errors.Is(err, ErrPermissionDenied):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrValidation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, ErrFetch):
		return http.StatusBadGateway
	case errors.Is(err, ErrStorage):
		return http.StatusServiceUnavailable
	case errors.Is(err, ErrCorruptRecord):
		return http.StatusOK // callers fall back to defaults
	default:
		return http.StatusInternalServerError
	}
}
