package domain

import (
	"errors"
	"fmt"
)

// DomainError represents a domain-specific error
type DomainError struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is reports whether target is a DomainError with the same code, so that
// errors.Is(err, ErrIndexUnavailable) matches any index failure.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new DomainError
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     nil,
	}
}

// NewDomainErrorWithCause creates a new DomainError with an underlying cause
func NewDomainErrorWithCause(code, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// CodeOf returns the code of the first DomainError in err's chain, or
// ErrCodeInternalError when there is none.
func CodeOf(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ErrCodeInternalError
}

// Common domain error codes
const (
	ErrCodeInvalidInput      = "INVALID_INPUT"
	ErrCodeNotFound          = "NOT_FOUND"
	ErrCodeIndexUnavailable  = "INDEX_UNAVAILABLE"
	ErrCodeEmbeddingService  = "EMBEDDING_SERVICE_ERROR"
	ErrCodeGenerationService = "GENERATION_SERVICE_ERROR"
	ErrCodeStorage           = "STORAGE_ERROR"
	ErrCodeInternalError     = "INTERNAL_ERROR"
)

// Validation errors
var (
	ErrInvalidInput         = NewDomainError(ErrCodeInvalidInput, "invalid input")
	ErrEmptyQuestion        = NewDomainError(ErrCodeInvalidInput, "question must not be empty")
	ErrInvalidDifficulty    = NewDomainError(ErrCodeInvalidInput, "difficulty must be between 1 and 5")
	ErrMissingRequiredField = NewDomainError(ErrCodeInvalidInput, "missing required field")
)

// Not found errors
var (
	ErrStudentNotFound     = NewDomainError(ErrCodeNotFound, "student not found")
	ErrInteractionNotFound = NewDomainError(ErrCodeNotFound, "interaction not found")
)

// Service errors
var (
	ErrIndexUnavailable  = NewDomainError(ErrCodeIndexUnavailable, "document index unavailable")
	// ErrDimensionMismatch means the embedding model and the loaded snapshot
	// disagree on vector length.
	ErrDimensionMismatch = NewDomainError(ErrCodeIndexUnavailable, "query dimension does not match index")
	ErrEmbeddingService  = NewDomainError(ErrCodeEmbeddingService, "embedding service failed")
	ErrGenerationService = NewDomainError(ErrCodeGenerationService, "generation service failed")
	ErrStorage           = NewDomainError(ErrCodeStorage, "storage operation failed")
)

// IndexUnavailable wraps cause as an INDEX_UNAVAILABLE error.
func IndexUnavailable(message string, cause error) *DomainError {
	return NewDomainErrorWithCause(ErrCodeIndexUnavailable, message, cause)
}

// StorageError wraps cause as a STORAGE_ERROR.
func StorageError(message string, cause error) *DomainError {
	return NewDomainErrorWithCause(ErrCodeStorage, message, cause)
}
