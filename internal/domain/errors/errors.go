package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Domain errors
var (
	ErrNotFound           = errors.New("resource not found")
	ErrAlreadyExists      = errors.New("resource already exists")
	ErrInvalidInput       = errors.New("invalid input")
	ErrValidation         = errors.New("validation failed")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailNotVerified   = errors.New("email not verified")
	ErrInvalidCode        = errors.New("invalid verification code")
	ErrCodeExpired        = errors.New("verification code expired")
	ErrRateLimited        = errors.New("too many requests")
	ErrPayloadTooLarge    = errors.New("payload too large")
	ErrUnsupportedMedia   = errors.New("unsupported media type")
	ErrInvalidVideo       = errors.New("invalid video file")
	ErrOcrFailure         = errors.New("ocr failed")
	ErrGenerationFailure  = errors.New("document generation failed")
)

// Pipeline stage names used in PipelineError and metrics labels.
const (
	StageSampling   = "sampling"
	StageExtraction = "extraction"
	StagePRD        = "prd_generation"
	StagePlan       = "plan_generation"
)

// AppError is an application error carrying its HTTP status.
type AppError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "application error"
}

func (e *AppError) Unwrap() error { return e.Err }

// NewAppError creates a new app error.
func NewAppError(status int, code, message string, err error) *AppError {
	return &AppError{Status: status, Code: code, Message: message, Err: err}
}

// Common error constructors
func NotFound(message string) *AppError {
	return NewAppError(http.StatusNotFound, "NOT_FOUND", message, ErrNotFound)
}

func Conflict(message string) *AppError {
	return NewAppError(http.StatusBadRequest, "CONFLICT", message, ErrAlreadyExists)
}

func BadRequest(message string) *AppError {
	return NewAppError(http.StatusBadRequest, "BAD_REQUEST", message, ErrInvalidInput)
}

func Validation(message string) *AppError {
	return NewAppError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", message, ErrValidation)
}

func Unauthorized(message string) *AppError {
	return NewAppError(http.StatusUnauthorized, "UNAUTHORIZED", message, ErrUnauthorized)
}

func Forbidden(message string) *AppError {
	return NewAppError(http.StatusForbidden, "FORBIDDEN", message, ErrForbidden)
}

func RateLimited(message string) *AppError {
	return NewAppError(http.StatusTooManyRequests, "RATE_LIMITED", message, ErrRateLimited)
}

func PayloadTooLarge(message string) *AppError {
	return NewAppError(http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", message, ErrPayloadTooLarge)
}

func UnsupportedMedia(message string) *AppError {
	return NewAppError(http.StatusBadRequest, "UNSUPPORTED_MEDIA_TYPE", message, ErrUnsupportedMedia)
}

func InternalError(err error) *AppError {
	return NewAppError(http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error", err)
}

// PipelineError reports which pipeline stage failed and why. The orchestrator
// marks the video failed and surfaces the cause message to the caller.
type PipelineError struct {
	Stage string
	Err   error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *PipelineError) Unwrap() error { return e.Err }

// NewPipelineError wraps a stage failure.
func NewPipelineError(stage string, err error) *PipelineError {
	return &PipelineError{Stage: stage, Err: err}
}
