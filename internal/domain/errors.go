package domain

import (
	"errors"
	"fmt"
)

// ValidationError provides detailed validation error information
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s - %s", e.Field, e.Message)
}

// NewValidationError creates a new validation error
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

var (
	// Article errors
	ErrArticleNotFound = errors.New("article not found")
	ErrInvalidArticle  = errors.New("invalid article")
	ErrInvalidStatus   = errors.New("invalid status: allowed statuses are draft, scheduled, and published")
	ErrPhotoRequired   = errors.New("at least one photo must be provided")
	ErrScheduleInPast  = errors.New("scheduled date must be in the future")

	// Reference errors
	ErrCategoryNotFound = errors.New("category not found")
	ErrTagNotFound      = errors.New("tag not found")
	ErrAuthorNotFound   = errors.New("author not found")

	// Validation errors
	ErrInvalidInput = errors.New("invalid input")
	ErrInvalidID    = errors.New("invalid article id")

	// General errors
	ErrInternal = errors.New("internal server error")
	ErrNotFound = errors.New("resource not found")
)
