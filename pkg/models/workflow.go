// Package models defines the core domain models for facility automation workflows
package models

import (
	"slices"
	"time"
)

// WorkflowType describes how a workflow is meant to be invoked. It does not affect editor behavior.
type WorkflowType string

const (
	WorkflowTypeScheduled   WorkflowType = "scheduled"
	WorkflowTypeManual      WorkflowType = "manual"
	WorkflowTypeConditional WorkflowType = "conditional"
	WorkflowTypeEventBased  WorkflowType = "event-based"
)

// IsValid reports whether t is one of the known workflow types.
func (t WorkflowType) IsValid() bool {
	switch t {
	case WorkflowTypeScheduled, WorkflowTypeManual, WorkflowTypeConditional, WorkflowTypeEventBased:
		return true
	}

	return false
}

// WorkflowStatus represents the lifecycle state of a workflow.
type WorkflowStatus string

const (
	WorkflowStatusActive WorkflowStatus = "active" // Rendered with animated connections
	WorkflowStatusPaused WorkflowStatus = "paused"
	WorkflowStatusError  WorkflowStatus = "error"
	WorkflowStatusDraft  WorkflowStatus = "draft" // Status of every newly created workflow
)

// IsValid reports whether s is one of the known workflow statuses.
func (s WorkflowStatus) IsValid() bool {
	switch s {
	case WorkflowStatusActive, WorkflowStatusPaused, WorkflowStatusError, WorkflowStatusDraft:
		return true
	}

	return false
}

// Schedule and next run labels used for newly created workflows.
const (
	ScheduleManual       = "Manual Trigger"
	ScheduleNotScheduled = "Not scheduled"
	NextRunManual        = "Manual"
)

// Workflow represents an automation rule: a named directed graph of nodes.
type Workflow struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	Type          WorkflowType    `json:"type"`
	Status        WorkflowStatus  `json:"status"`
	Icon          string          `json:"icon,omitempty"`
	LinkedSystems []string        `json:"linkedSystems"`
	Zones         []string        `json:"zones"`
	Schedule      string          `json:"schedule"`
	NextRun       *string         `json:"nextRun"`
	LastRun       *string         `json:"lastRun"`
	SuccessRate   *float64        `json:"successRate,omitempty"`
	Nodes         []*WorkflowNode `json:"nodes"` // The graph, in insertion order
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// NewWorkflow builds a workflow with every optional collection defaulted. It never fails.
func NewWorkflow(id, name, description string, workflowType WorkflowType) *Workflow {
	now := time.Now().UTC()

	return &Workflow{
		ID:            id,
		Name:          name,
		Description:   description,
		Type:          workflowType,
		Status:        WorkflowStatusDraft,
		LinkedSystems: []string{},
		Zones:         []string{},
		Schedule:      ScheduleNotScheduled,
		Nodes:         []*WorkflowNode{},
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// IsActive reports whether the workflow is in the active state.
func (w *Workflow) IsActive() bool {
	return w.Status == WorkflowStatusActive
}

// Node returns the node with the given id, or nil.
func (w *Workflow) Node(id string) *WorkflowNode {
	for _, node := range w.Nodes {
		if node.ID == id {
			return node
		}
	}

	return nil
}

// Positions returns the positions of all nodes in insertion order.
func (w *Workflow) Positions() []Position {
	positions := make([]Position, 0, len(w.Nodes))
	for _, node := range w.Nodes {
		positions = append(positions, node.Position)
	}

	return positions
}

// Clone returns a deep copy of the workflow.
func (w *Workflow) Clone() *Workflow {
	if w == nil {
		return nil
	}

	clone := *w
	clone.LinkedSystems = cloneStrings(w.LinkedSystems)
	clone.Zones = cloneStrings(w.Zones)
	clone.NextRun = clonePtr(w.NextRun)
	clone.LastRun = clonePtr(w.LastRun)
	clone.SuccessRate = clonePtr(w.SuccessRate)

	clone.Nodes = make([]*WorkflowNode, 0, len(w.Nodes))
	for _, node := range w.Nodes {
		clone.Nodes = append(clone.Nodes, node.Clone())
	}

	return &clone
}

func cloneStrings(values []string) []string {
	if values == nil {
		return []string{}
	}

	return slices.Clone(values)
}

func clonePtr[T any](value *T) *T {
	if value == nil {
		return nil
	}

	v := *value

	return &v
}
