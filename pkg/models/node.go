package models

import "maps"

// NodeType determines a node's visual template and default semantics.
type NodeType string

const (
	NodeTypeTrigger   NodeType = "trigger"
	NodeTypeCondition NodeType = "condition"
	NodeTypeAction    NodeType = "action"
)

// IsValid reports whether t is one of the known node types.
func (t NodeType) IsValid() bool {
	switch t {
	case NodeTypeTrigger, NodeTypeCondition, NodeTypeAction:
		return true
	}

	return false
}

// Seed trigger titles for newly created workflows.
const (
	TriggerTitleManual  = "Manual Activation"
	TriggerTitleDefault = "New Trigger"
)

// Position is a canvas coordinate. It only affects layout, never graph semantics.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// WorkflowNode is a vertex of a workflow graph. Outgoing edges are stored on the
// source node as the ordered set of target ids in Connections.
type WorkflowNode struct {
	ID          string         `json:"id"`
	Type        NodeType       `json:"type"`
	Title       string         `json:"title"`
	Params      map[string]any `json:"params"`
	Position    Position       `json:"position"`
	Connections []string       `json:"connections"`
}

// NewWorkflowNode builds an unconnected node. A nil params bag is replaced by an empty one.
func NewWorkflowNode(id string, nodeType NodeType, title string, params map[string]any, position Position) *WorkflowNode {
	if params == nil {
		params = map[string]any{}
	}

	return &WorkflowNode{
		ID:          id,
		Type:        nodeType,
		Title:       title,
		Params:      params,
		Position:    position,
		Connections: []string{},
	}
}

// ConnectsTo reports whether the node has an outgoing edge to targetID.
func (n *WorkflowNode) ConnectsTo(targetID string) bool {
	for _, id := range n.Connections {
		if id == targetID {
			return true
		}
	}

	return false
}

// Clone returns a deep copy of the node. Nested values inside Params are shared.
func (n *WorkflowNode) Clone() *WorkflowNode {
	if n == nil {
		return nil
	}

	clone := *n
	clone.Params = maps.Clone(n.Params)

	if clone.Params == nil {
		clone.Params = map[string]any{}
	}

	clone.Connections = cloneStrings(n.Connections)

	return &clone
}
