// Package persistence provides the storage abstraction for workflow graphs.
package persistence

import (
	"context"

	"github.com/facilityops/flowdesk/pkg/models"
)

// Persistence groups the repositories backing the workflow collection.
type Persistence interface {
	WorkflowRepository() WorkflowRepository
	NodeRepository() NodeRepository
	ConnectionRepository() ConnectionRepository

	HealthCheck(ctx context.Context) error
	Close(ctx context.Context) error
}

// WorkflowRepository stores workflows. Implementations hand out copies; callers
// mutate the collection only through repository methods.
type WorkflowRepository interface {
	// List returns all workflows, newest created first.
	List(ctx context.Context) ([]*models.Workflow, error)
	// GetByID returns nil and no error when the workflow does not exist.
	GetByID(ctx context.Context, id string) (*models.Workflow, error)
	// Save prepends a new workflow or replaces an existing one in place.
	Save(ctx context.Context, workflow *models.Workflow) error
}

// NodeRepository stores the nodes of a workflow.
type NodeRepository interface {
	GetNodesByWorkflow(ctx context.Context, workflowID string) ([]*models.WorkflowNode, error)
	GetNodeByWorkflow(ctx context.Context, workflowID, nodeID string) (*models.WorkflowNode, error)
	// SaveNode appends a new node or replaces the title, params and position of an
	// existing one. Connections are only changed through ConnectionRepository.
	SaveNode(ctx context.Context, workflowID string, node *models.WorkflowNode) error
}

// ConnectionRepository stores directed edges between nodes of one workflow.
type ConnectionRepository interface {
	// SaveConnection appends targetID to the source node's connections. Saving an
	// existing edge is a no-op.
	SaveConnection(ctx context.Context, workflowID, sourceID, targetID string) error
	DeleteConnection(ctx context.Context, workflowID, sourceID, targetID string) error
	GetConnectionsBySourceNode(ctx context.Context, workflowID, sourceID string) ([]string, error)
	GetConnectionsByTargetNode(ctx context.Context, workflowID, targetID string) ([]string, error)
	// Reachable reports whether toID can be reached from fromID following edges.
	Reachable(ctx context.Context, workflowID, fromID, toID string) (bool, error)
}
