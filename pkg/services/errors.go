// Package services provides standardized error types for service layer operations.
package services

import (
	"errors"
	"fmt"

	"github.com/facilityops/flowdesk/pkg/persistence"
)

// Business Logic Errors - These indicate client errors (4xx responses).
var (
	// Validation Errors (400 Bad Request).
	ErrInvalidStatus   = errors.New("invalid workflow status")
	ErrInvalidNodeType = errors.New("invalid node type")
	ErrEmptyTitle      = errors.New("node title cannot be empty")
	ErrEmptyName       = errors.New("workflow name cannot be empty")

	// Not found errors re-exported for callers that only import services.
	ErrWorkflowNotFound   = persistence.ErrWorkflowNotFound
	ErrNodeNotFound       = persistence.ErrNodeNotFound
	ErrConnectionNotFound = persistence.ErrConnectionNotFound
)

// ServiceError wraps service-level errors with additional context.
type ServiceError struct {
	Op      string // Operation name
	Code    string // Error code for API responses
	Message string // Human-readable message
	Err     error  // Underlying error
}

func (e *ServiceError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}

	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

func (e *ServiceError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// IsValidationError checks if an error is a validation error that should return HTTP 400.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidStatus) ||
		errors.Is(err, ErrInvalidNodeType) ||
		errors.Is(err, ErrEmptyTitle) ||
		errors.Is(err, ErrEmptyName) ||
		errors.Is(err, persistence.ErrDanglingTarget) ||
		errors.Is(err, persistence.ErrSelfLoop)
}

// IsConflictError checks if an error is a graph integrity conflict that should return HTTP 409.
func IsConflictError(err error) bool {
	return errors.Is(err, persistence.ErrCycle)
}

// NewValidationError creates a new validation error with context.
func NewValidationError(op, code, message string, err error) *ServiceError {
	return &ServiceError{
		Op:      op,
		Code:    code,
		Message: message,
		Err:     err,
	}
}
