package domain

import (
	"errors"
	"fmt"
)

var (
	ErrValidation          = errors.New("validation failed")
	ErrAnalyzerUnavailable = errors.New("sentiment analyzer unavailable")
	ErrClassification      = errors.New("classification failed")
	ErrInvalidDocument     = errors.New("invalid document")
	ErrEmptyContent        = errors.New("empty document content")
	ErrPersistence         = errors.New("persistence failed")
	ErrUnsupportedFormat   = errors.New("unsupported export format")
	ErrEmptyExport         = errors.New("nothing to export")
	ErrExportLimit         = errors.New("export limit exceeded")
	ErrRecordNotFound      = errors.New("analysis record not found")
	ErrTemporary           = errors.New("temporary failure")
)

// ValidationError describes rejected caller input. It matches ErrValidation via errors.Is.
type ValidationError struct {
	Field  string
	Reason string
}

func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

func (e *ValidationError) Error() string {
	if e == nil {
		return ErrValidation.Error()
	}
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", ErrValidation, e.Reason)
	}
	return fmt.Sprintf("%s: %s: %s", ErrValidation, e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}
