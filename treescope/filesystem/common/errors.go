package common

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// Common error types used across filesystem packages
var (
	ErrPathEmpty        = errors.New("path cannot be empty")
	ErrPathTooLong      = errors.New("path too long (max 4096 characters)")
	ErrPathInvalid      = errors.New("path contains invalid characters")
	ErrSourceNotExist   = errors.New("source does not exist")
	ErrDepthInvalid     = errors.New("depth must be -1 (unlimited) or >= 0")
	ErrPermissionDenied = errors.New("permission denied")
)

// ValidationUtils provides common validation utilities used across packages
type ValidationUtils struct{}

// NewValidationUtils creates a new ValidationUtils instance
func NewValidationUtils() *ValidationUtils {
	return &ValidationUtils{}
}

// ValidateContextCancellation checks if context is cancelled and returns appropriate error
func (vu *ValidationUtils) ValidateContextCancellation(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}

// ValidatePath validates that a path is non-empty, of sane length, and clean of null bytes
func (vu *ValidationUtils) ValidatePath(path string) error {
	if strings.TrimSpace(path) == "" {
		return ErrPathEmpty
	}
	if len(path) > 4096 {
		return ErrPathTooLong
	}
	if strings.Contains(path, "\x00") {
		return ErrPathInvalid
	}
	return nil
}

// ValidateDepth validates a recursion depth value (-1 means unlimited)
func (vu *ValidationUtils) ValidateDepth(depth int) error {
	if depth < -1 {
		return fmt.Errorf("%w: got %d", ErrDepthInvalid, depth)
	}
	return nil
}

// ErrorUtils provides common error handling utilities
type ErrorUtils struct{}

// NewErrorUtils creates a new ErrorUtils instance
func NewErrorUtils() *ErrorUtils {
	return &ErrorUtils{}
}

// WrapError wraps an error with additional context
func (eu *ErrorUtils) WrapError(err error, message string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	context := fmt.Sprintf(message, args...)
	return fmt.Errorf("%s: %w", context, err)
}

// HandleOperationError provides common error handling for file operations
func (eu *ErrorUtils) HandleOperationError(err error, operation, path string, logError bool) error {
	if err == nil {
		return nil
	}

	if logError {
		slog.Error("Operation failed",
			"operation", operation,
			"path", path,
			"error", err)
	}

	return eu.WrapError(err, "failed to %s %s", operation, path)
}
