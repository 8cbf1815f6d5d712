package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrVectorDimMismatch signals a vector dimension mismatch.
	ErrVectorDimMismatch = errors.New("vector dimension mismatch")
	// ErrInvalidConfig signals an invalid engine or vertical configuration.
	ErrInvalidConfig = errors.New("invalid config")
	// ErrUnknownVertical signals a lookup of an unregistered scoring policy.
	ErrUnknownVertical = errors.New("unknown vertical")

	// ErrDataError signals a present but unparseable attribute value.
	// It never leaves the scorer as an error: it becomes a zero score with a reason.
	ErrDataError = errors.New("data error")
	// ErrCollaborator signals a failed call to an external collaborator (embedding, feedback lookup).
	ErrCollaborator = errors.New("collaborator failure")
	// ErrIndexUnavailable signals a semantic query before any successful rebuild.
	ErrIndexUnavailable = errors.New("semantic index unavailable")

	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrEmbeddingQuotaExceeded signals an exhausted embedding token budget.
	ErrEmbeddingQuotaExceeded = errors.New("embedding token budget exceeded")
)

// DataError wraps ErrDataError with the offending field name.
type DataError struct {
	Field string
	Value string
}

func (e *DataError) Error() string {
	return fmt.Sprintf("%s: field %q has unparseable value %q", ErrDataError.Error(), e.Field, e.Value)
}

func (e *DataError) Unwrap() error { return ErrDataError }

// NewDataError creates a data error for the given field.
func NewDataError(field, value string) error {
	return &DataError{Field: field, Value: value}
}
