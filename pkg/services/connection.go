package services

import (
	"context"
	"slices"

	"github.com/facilityops/flowdesk/pkg/events"
	"github.com/facilityops/flowdesk/pkg/models"
	"github.com/facilityops/flowdesk/pkg/otelhelper"
	"github.com/facilityops/flowdesk/pkg/persistence"
	"go.opentelemetry.io/otel/attribute"
)

// Connect adds the edge sourceID -> targetID and returns the updated source node.
// Targets must exist in the same workflow and differ from the source. Cycles
// are accepted unless the service was built WithAcyclicGraphs. Connecting an
// existing edge changes nothing.
func (w *Workflow) Connect(ctx context.Context, workflowID, sourceID, targetID string) (*models.WorkflowNode, error) {
	ctx, span := otelhelper.StartSpan(ctx, w.tracer, "workflow.connection.add",
		attribute.String(otelhelper.WorkflowIDKey, workflowID),
		attribute.String(otelhelper.SourceNodeIDKey, sourceID),
		attribute.String(otelhelper.TargetNodeIDKey, targetID))
	defer span.End()

	w.mu.Lock()
	defer w.mu.Unlock()

	connections := w.persistence.ConnectionRepository()

	existing, err := connections.GetConnectionsBySourceNode(ctx, workflowID, sourceID)
	if err != nil {
		return nil, err
	}

	if slices.Contains(existing, targetID) {
		return w.persistence.NodeRepository().GetNodeByWorkflow(ctx, workflowID, sourceID)
	}

	if w.acyclic && sourceID != targetID {
		closesCycle, err := connections.Reachable(ctx, workflowID, targetID, sourceID)
		if err != nil {
			return nil, err
		}

		if closesCycle {
			err := persistence.NewConnectionError("Connect", workflowID, sourceID, targetID, persistence.ErrCycle)
			otelhelper.SetError(span, err)

			return nil, err
		}
	}

	if err := connections.SaveConnection(ctx, workflowID, sourceID, targetID); err != nil {
		otelhelper.SetError(span, err)

		return nil, err
	}

	node, err := w.persistence.NodeRepository().GetNodeByWorkflow(ctx, workflowID, sourceID)
	if err != nil {
		return nil, err
	}

	w.publish(ctx, workflowID, events.ConnectionAdded{
		BaseEvent: events.NewBaseEvent(events.ConnectionAddedEvent, workflowID),
		SourceID:  sourceID,
		TargetID:  targetID,
	})

	return node, nil
}

// Disconnect removes the edge sourceID -> targetID and returns the updated source node.
func (w *Workflow) Disconnect(ctx context.Context, workflowID, sourceID, targetID string) (*models.WorkflowNode, error) {
	ctx, span := otelhelper.StartSpan(ctx, w.tracer, "workflow.connection.remove",
		attribute.String(otelhelper.WorkflowIDKey, workflowID),
		attribute.String(otelhelper.SourceNodeIDKey, sourceID),
		attribute.String(otelhelper.TargetNodeIDKey, targetID))
	defer span.End()

	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.persistence.ConnectionRepository().DeleteConnection(ctx, workflowID, sourceID, targetID); err != nil {
		return nil, err
	}

	node, err := w.persistence.NodeRepository().GetNodeByWorkflow(ctx, workflowID, sourceID)
	if err != nil {
		return nil, err
	}

	w.publish(ctx, workflowID, events.ConnectionRemoved{
		BaseEvent: events.NewBaseEvent(events.ConnectionRemovedEvent, workflowID),
		SourceID:  sourceID,
		TargetID:  targetID,
	})

	return node, nil
}

// Incoming returns the ids of nodes with an edge into nodeID.
func (w *Workflow) Incoming(ctx context.Context, workflowID, nodeID string) ([]string, error) {
	return w.persistence.ConnectionRepository().GetConnectionsByTargetNode(ctx, workflowID, nodeID)
}
