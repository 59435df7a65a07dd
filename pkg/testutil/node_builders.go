// Package testutil provides test data builders and utilities for testing.
package testutil

import (
	"github.com/facilityops/flowdesk/pkg/models"
	"github.com/google/uuid"
)

// CreateTestNode creates a test WorkflowNode with default values that can be overridden.
func CreateTestNode(overrides ...func(*models.WorkflowNode)) *models.WorkflowNode {
	node := &models.WorkflowNode{
		ID:          uuid.New().String(),
		Type:        models.NodeTypeAction,
		Title:       "Adjust Lighting",
		Params:      map[string]any{"intensity": 70},
		Position:    models.Position{X: 100, Y: 200},
		Connections: []string{},
	}

	for _, override := range overrides {
		override(node)
	}

	return node
}

// WithNodeID sets the node id.
func WithNodeID(id string) func(*models.WorkflowNode) {
	return func(n *models.WorkflowNode) {
		n.ID = id
	}
}

// WithTriggerNode configures the node as a trigger node.
func WithTriggerNode() func(*models.WorkflowNode) {
	return func(n *models.WorkflowNode) {
		n.Type = models.NodeTypeTrigger
		n.Title = "Motion Detected"
		n.Params = map[string]any{"sensor": "pir-lobby-1"}
	}
}

// WithConditionNode configures the node as a condition node.
func WithConditionNode() func(*models.WorkflowNode) {
	return func(n *models.WorkflowNode) {
		n.Type = models.NodeTypeCondition
		n.Title = "After Hours"
		n.Params = map[string]any{"operator": ">", "value": "18:00"}
	}
}

// WithPosition sets the node position.
func WithPosition(x, y float64) func(*models.WorkflowNode) {
	return func(n *models.WorkflowNode) {
		n.Position = models.Position{X: x, Y: y}
	}
}

// WithConnections sets the node's outgoing connections.
func WithConnections(targets ...string) func(*models.WorkflowNode) {
	return func(n *models.WorkflowNode) {
		n.Connections = targets
	}
}

// CreateTestWorkflow creates a draft workflow with a single trigger node.
func CreateTestWorkflow(overrides ...func(*models.Workflow)) *models.Workflow {
	workflow := models.NewWorkflow(uuid.New().String(), "Lobby Lighting", "Turn on lobby lights on motion", models.WorkflowTypeEventBased)
	workflow.Zones = []string{"Lobby"}
	workflow.LinkedSystems = []string{"Lighting"}
	workflow.Nodes = []*models.WorkflowNode{
		CreateTestNode(WithNodeID("trigger-1"), WithTriggerNode(), WithPosition(250, 100)),
	}

	for _, override := range overrides {
		override(workflow)
	}

	return workflow
}

// WithWorkflowID sets the workflow id.
func WithWorkflowID(id string) func(*models.Workflow) {
	return func(w *models.Workflow) {
		w.ID = id
	}
}

// WithStatus sets the workflow status.
func WithStatus(status models.WorkflowStatus) func(*models.Workflow) {
	return func(w *models.Workflow) {
		w.Status = status
	}
}

// WithNodes replaces the workflow nodes.
func WithNodes(nodes ...*models.WorkflowNode) func(*models.Workflow) {
	return func(w *models.Workflow) {
		w.Nodes = nodes
	}
}

// CreateLinearWorkflow creates a workflow whose nodes form the chain ids[0] -> ids[1] -> ...
// The first node is a trigger and the rest are actions laid out on a column.
func CreateLinearWorkflow(workflowID string, ids ...string) *models.Workflow {
	nodes := make([]*models.WorkflowNode, 0, len(ids))

	for i, id := range ids {
		overrides := []func(*models.WorkflowNode){
			WithNodeID(id),
			WithPosition(250, float64(100+150*i)),
		}

		if i == 0 {
			overrides = append(overrides, WithTriggerNode())
		}

		if i+1 < len(ids) {
			overrides = append(overrides, WithConnections(ids[i+1]))
		}

		nodes = append(nodes, CreateTestNode(overrides...))
	}

	return CreateTestWorkflow(WithWorkflowID(workflowID), WithNodes(nodes...))
}
