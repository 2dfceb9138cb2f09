package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"

	"github.com/vytor/flashdeck/internal/quiz"
	"github.com/vytor/flashdeck/internal/srs"
)

// Error codes
const (
	ErrCodeNotFound   = "NOT_FOUND"
	ErrCodeValidation = "VALIDATION_ERROR"
	ErrCodeInternal   = "INTERNAL_ERROR"
	ErrCodeBadRequest = "BAD_REQUEST"
	ErrCodeConflict   = "CONFLICT"
)

// AppError carries an error code and the HTTP status it maps to.
type AppError struct {
	Code    string
	Message string
	Status  int
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewNotFoundError(resource string, id any) *AppError {
	return &AppError{
		Code:    ErrCodeNotFound,
		Message: fmt.Sprintf("%s not found: %v", resource, id),
		Status:  http.StatusNotFound,
	}
}

func NewValidationError(field string, reason string) *AppError {
	return &AppError{
		Code:    ErrCodeValidation,
		Message: fmt.Sprintf("validation failed for %s: %s", field, reason),
		Status:  http.StatusBadRequest,
	}
}

// NewInternalError hides err from the client message but keeps it for logging.
func NewInternalError(err error) *AppError {
	return &AppError{
		Code:    ErrCodeInternal,
		Message: "internal server error",
		Status:  http.StatusInternalServerError,
		Err:     err,
	}
}

func NewBadRequestError(message string) *AppError {
	return &AppError{
		Code:    ErrCodeBadRequest,
		Message: message,
		Status:  http.StatusBadRequest,
	}
}

func NewConflictError(message string) *AppError {
	return &AppError{
		Code:    ErrCodeConflict,
		Message: message,
		Status:  http.StatusConflict,
	}
}

// FromCore converts precondition errors from the scheduling and quiz packages
// into validation errors. Anything else becomes an internal error; an
// existing *AppError is returned unchanged.
func FromCore(err error) *AppError {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}

	var field string
	switch {
	case stderrors.Is(err, srs.ErrInvalidQuality):
		field = "quality"
	case stderrors.Is(err, srs.ErrItemSuspended):
		field = "item"
	case stderrors.Is(err, srs.ErrNoSessionItem):
		field = "session"
	case stderrors.Is(err, quiz.ErrInvalidQuestionType):
		field = "types"
	case stderrors.Is(err, quiz.ErrQuestionIndex):
		field = "question"
	case stderrors.Is(err, quiz.ErrNotEnoughItems):
		field = "items"
	case stderrors.Is(err, quiz.ErrMatchPosition), stderrors.Is(err, quiz.ErrAlreadyMatched):
		field = "pair"
	default:
		return NewInternalError(err)
	}

	v := NewValidationError(field, err.Error())
	v.Err = err
	return v
}
