package services

import (
	"context"
	"fmt"
	"maps"
	"strings"

	"github.com/facilityops/flowdesk/pkg/events"
	"github.com/facilityops/flowdesk/pkg/models"
	"github.com/facilityops/flowdesk/pkg/otelhelper"
	"github.com/facilityops/flowdesk/pkg/persistence"
	"github.com/facilityops/flowdesk/pkg/placement"
	"go.opentelemetry.io/otel/attribute"
)

// NodeSpec describes a node added from the "Add Node" dialog.
type NodeSpec struct {
	Type   models.NodeType
	Title  string
	Params map[string]any
}

// AddNode appends a new unconnected node to the workflow, placed by the
// centroid rule. When workflowID does not resolve nothing happens and both
// return values are nil.
func (w *Workflow) AddNode(ctx context.Context, workflowID string, spec NodeSpec) (*models.WorkflowNode, error) {
	ctx, span := otelhelper.StartSpan(ctx, w.tracer, "workflow.node.add",
		attribute.String(otelhelper.WorkflowIDKey, workflowID),
		attribute.String(otelhelper.NodeTypeKey, string(spec.Type)))
	defer span.End()

	if !spec.Type.IsValid() {
		return nil, NewValidationError(
			"AddNode",
			"INVALID_NODE_TYPE",
			fmt.Sprintf("invalid node type '%s'", spec.Type),
			ErrInvalidNodeType,
		)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	workflow, ok := w.Lookup(ctx, workflowID)
	if !ok {
		w.logger.DebugContext(ctx, "Ignoring node for unknown workflow", "workflow_id", workflowID)

		return nil, nil //nolint:nilnil // adding to nothing is a no-op
	}

	node := models.NewWorkflowNode(
		w.newNodeID(),
		spec.Type,
		spec.Title,
		maps.Clone(spec.Params),
		placement.Next(workflow.Positions()),
	)

	if err := w.persistence.NodeRepository().SaveNode(ctx, workflowID, node); err != nil {
		otelhelper.SetError(span, err)

		return nil, fmt.Errorf("failed to save node: %w", err)
	}

	span.SetAttributes(attribute.String(otelhelper.NodeIDKey, node.ID))

	w.publish(ctx, workflowID, events.NodeAdded{
		BaseEvent: events.NewBaseEvent(events.NodeAddedEvent, workflowID),
		Node:      node.Clone(),
	})

	return node, nil
}

// GetNode retrieves a specific node from the specified workflow.
func (w *Workflow) GetNode(ctx context.Context, workflowID, nodeID string) (*models.WorkflowNode, error) {
	return w.persistence.NodeRepository().GetNodeByWorkflow(ctx, workflowID, nodeID)
}

// MoveNode persists a drag result onto the node's position.
func (w *Workflow) MoveNode(ctx context.Context, workflowID, nodeID string, position models.Position) (*models.WorkflowNode, error) {
	ctx, span := otelhelper.StartSpan(ctx, w.tracer, "workflow.node.move",
		attribute.String(otelhelper.WorkflowIDKey, workflowID),
		attribute.String(otelhelper.NodeIDKey, nodeID))
	defer span.End()

	w.mu.Lock()
	defer w.mu.Unlock()

	node, err := w.persistence.NodeRepository().GetNodeByWorkflow(ctx, workflowID, nodeID)
	if err != nil {
		return nil, err
	}

	node.Position = position

	if err := w.persistence.NodeRepository().SaveNode(ctx, workflowID, node); err != nil {
		otelhelper.SetError(span, err)

		return nil, fmt.Errorf("failed to move node: %w", err)
	}

	w.publish(ctx, workflowID, events.NodeMoved{
		BaseEvent: events.NewBaseEvent(events.NodeMovedEvent, workflowID),
		NodeID:    nodeID,
		Position:  position,
	})

	return node, nil
}

// UpdateNodeRequest holds inspector edits to a node. A nil Title keeps the
// current title; a non-nil Params replaces the whole bag.
type UpdateNodeRequest struct {
	Title  *string
	Params map[string]any
}

// UpdateNode applies inspector edits to a node. Type, position and connections are preserved.
func (w *Workflow) UpdateNode(ctx context.Context, workflowID, nodeID string, req UpdateNodeRequest) (*models.WorkflowNode, error) {
	ctx, span := otelhelper.StartSpan(ctx, w.tracer, "workflow.node.update",
		attribute.String(otelhelper.WorkflowIDKey, workflowID),
		attribute.String(otelhelper.NodeIDKey, nodeID))
	defer span.End()

	if req.Title != nil && strings.TrimSpace(*req.Title) == "" {
		return nil, NewValidationError("UpdateNode", "EMPTY_TITLE", "node title cannot be empty", ErrEmptyTitle)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	node, err := w.persistence.NodeRepository().GetNodeByWorkflow(ctx, workflowID, nodeID)
	if err != nil {
		if persistence.IsWorkflowNotFound(err) || persistence.IsNodeNotFound(err) {
			return nil, err
		}

		return nil, fmt.Errorf("failed to get node: %w", err)
	}

	if req.Title != nil {
		node.Title = *req.Title
	}

	if req.Params != nil {
		node.Params = maps.Clone(req.Params)
	}

	if err := w.persistence.NodeRepository().SaveNode(ctx, workflowID, node); err != nil {
		otelhelper.SetError(span, err)

		return nil, fmt.Errorf("failed to update node: %w", err)
	}

	w.publish(ctx, workflowID, events.NodeUpdated{
		BaseEvent: events.NewBaseEvent(events.NodeUpdatedEvent, workflowID),
		Node:      node.Clone(),
	})

	return node, nil
}
