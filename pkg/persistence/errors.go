// Package persistence provides standardized error types for persistence operations.
package persistence

import (
	"errors"
	"fmt"
)

// Standard persistence error types that all implementations should use.
var (
	// ErrWorkflowNotFound indicates a workflow was not found by the given identifier.
	ErrWorkflowNotFound = errors.New("workflow not found")

	// ErrNodeNotFound indicates a node was not found by the given identifier.
	ErrNodeNotFound = errors.New("node not found")

	// ErrConnectionNotFound indicates no edge exists between the given nodes.
	ErrConnectionNotFound = errors.New("connection not found")

	// ErrDanglingTarget indicates a connection target that is not a node of the same workflow.
	ErrDanglingTarget = errors.New("connection target does not exist")

	// ErrSelfLoop indicates a connection from a node to itself.
	ErrSelfLoop = errors.New("connection source and target are the same node")

	// ErrCycle indicates a connection that would close a cycle in an acyclic store.
	ErrCycle = errors.New("connection would create a cycle")

	// ErrEmptyWorkflowID indicates a workflow without an identifier was saved.
	ErrEmptyWorkflowID = errors.New("workflow ID cannot be empty")
)

// WorkflowError wraps workflow-related errors with additional context.
type WorkflowError struct {
	Op         string // Operation being performed (e.g., "GetByID", "Save")
	WorkflowID string
	Err        error
}

func (e *WorkflowError) Error() string {
	return fmt.Sprintf("%s operation failed for workflow %s: %v", e.Op, e.WorkflowID, e.Err)
}

func (e *WorkflowError) Unwrap() error {
	return e.Err
}

// Is implements error comparison for workflow errors.
func (e *WorkflowError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewWorkflowError creates a new workflow error with context.
func NewWorkflowError(op, workflowID string, err error) *WorkflowError {
	return &WorkflowError{
		Op:         op,
		WorkflowID: workflowID,
		Err:        err,
	}
}

// NodeError wraps node-related errors with additional context.
type NodeError struct {
	Op         string
	WorkflowID string
	NodeID     string
	Err        error
}

func (e *NodeError) Error() string {
	return fmt.Sprintf("%s operation failed for node %s in workflow %s: %v", e.Op, e.NodeID, e.WorkflowID, e.Err)
}

func (e *NodeError) Unwrap() error {
	return e.Err
}

func (e *NodeError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewNodeError creates a new node error with context.
func NewNodeError(op, workflowID, nodeID string, err error) *NodeError {
	return &NodeError{
		Op:         op,
		WorkflowID: workflowID,
		NodeID:     nodeID,
		Err:        err,
	}
}

// ConnectionError wraps connection-related errors with additional context.
type ConnectionError struct {
	Op         string
	WorkflowID string
	SourceID   string
	TargetID   string
	Err        error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("%s operation failed for connection %s -> %s in workflow %s: %v",
		e.Op, e.SourceID, e.TargetID, e.WorkflowID, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

func (e *ConnectionError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewConnectionError creates a new connection error with context.
func NewConnectionError(op, workflowID, sourceID, targetID string, err error) *ConnectionError {
	return &ConnectionError{
		Op:         op,
		WorkflowID: workflowID,
		SourceID:   sourceID,
		TargetID:   targetID,
		Err:        err,
	}
}

// IsWorkflowNotFound checks if an error indicates a workflow was not found.
func IsWorkflowNotFound(err error) bool {
	return errors.Is(err, ErrWorkflowNotFound)
}

// IsNodeNotFound checks if an error indicates a node was not found.
func IsNodeNotFound(err error) bool {
	return errors.Is(err, ErrNodeNotFound)
}

// IsConnectionNotFound checks if an error indicates a connection was not found.
func IsConnectionNotFound(err error) bool {
	return errors.Is(err, ErrConnectionNotFound)
}

// IsInvalidConnection checks if an error indicates a connection was rejected at write time.
func IsInvalidConnection(err error) bool {
	return errors.Is(err, ErrDanglingTarget) ||
		errors.Is(err, ErrSelfLoop) ||
		errors.Is(err, ErrCycle)
}
