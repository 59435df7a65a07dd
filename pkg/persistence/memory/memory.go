// Package memory provides the in-memory persistence implementation for workflow graphs.
package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/facilityops/flowdesk/pkg/models"
	"github.com/facilityops/flowdesk/pkg/persistence"
)

// Persistence implements persistence.Persistence in process memory.
type Persistence struct {
	mu      sync.RWMutex
	order   []string // workflow ids, newest first
	entries map[string]*graph
	closed  bool
}

// NewPersistence creates an empty in-memory store.
func NewPersistence() *Persistence {
	return &Persistence{
		entries: make(map[string]*graph),
	}
}

// Close marks the store closed. Stored data stays readable.
func (p *Persistence) Close(_ context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.closed = true

	return nil
}

// HealthCheck reports an error once the store has been closed.
func (p *Persistence) HealthCheck(_ context.Context) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return errClosed
	}

	return nil
}

// WorkflowRepository returns the workflow repository backed by this store.
//
//nolint:ireturn
func (p *Persistence) WorkflowRepository() persistence.WorkflowRepository {
	return &workflowRepository{persistence: p}
}

// NodeRepository returns the node repository backed by this store.
//
//nolint:ireturn
func (p *Persistence) NodeRepository() persistence.NodeRepository {
	return &nodeRepository{persistence: p}
}

// ConnectionRepository returns the connection repository backed by this store.
//
//nolint:ireturn
func (p *Persistence) ConnectionRepository() persistence.ConnectionRepository {
	return &connectionRepository{persistence: p}
}

// lookup must be called with p.mu held.
func (p *Persistence) lookup(op, workflowID string) (*graph, error) {
	g, ok := p.entries[workflowID]
	if !ok {
		return nil, persistence.NewWorkflowError(op, workflowID, persistence.ErrWorkflowNotFound)
	}

	return g, nil
}

type workflowRepository struct {
	persistence *Persistence
}

func (wr *workflowRepository) List(_ context.Context) ([]*models.Workflow, error) {
	p := wr.persistence

	p.mu.RLock()
	defer p.mu.RUnlock()

	workflows := make([]*models.Workflow, 0, len(p.order))
	for _, id := range p.order {
		workflows = append(workflows, p.entries[id].workflow.Clone())
	}

	return workflows, nil
}

func (wr *workflowRepository) GetByID(_ context.Context, id string) (*models.Workflow, error) {
	p := wr.persistence

	p.mu.RLock()
	defer p.mu.RUnlock()

	g, ok := p.entries[id]
	if !ok {
		return nil, nil //nolint:nilnil // absence is not an error for lookups
	}

	return g.workflow.Clone(), nil
}

func (wr *workflowRepository) Save(_ context.Context, workflow *models.Workflow) error {
	if workflow.ID == "" {
		return persistence.NewWorkflowError("Save", "", persistence.ErrEmptyWorkflowID)
	}

	p := wr.persistence

	p.mu.Lock()
	defer p.mu.Unlock()

	if _, exists := p.entries[workflow.ID]; !exists {
		p.order = slices.Insert(p.order, 0, workflow.ID)
	}

	p.entries[workflow.ID] = newGraph(workflow.Clone())

	return nil
}

type nodeRepository struct {
	persistence *Persistence
}

func (nr *nodeRepository) GetNodesByWorkflow(_ context.Context, workflowID string) ([]*models.WorkflowNode, error) {
	p := nr.persistence

	p.mu.RLock()
	defer p.mu.RUnlock()

	g, err := p.lookup("GetNodesByWorkflow", workflowID)
	if err != nil {
		return nil, err
	}

	nodes := make([]*models.WorkflowNode, 0, len(g.workflow.Nodes))
	for _, node := range g.workflow.Nodes {
		nodes = append(nodes, node.Clone())
	}

	return nodes, nil
}

func (nr *nodeRepository) GetNodeByWorkflow(_ context.Context, workflowID, nodeID string) (*models.WorkflowNode, error) {
	p := nr.persistence

	p.mu.RLock()
	defer p.mu.RUnlock()

	g, err := p.lookup("GetNodeByWorkflow", workflowID)
	if err != nil {
		return nil, err
	}

	node, ok := g.nodes[nodeID]
	if !ok {
		return nil, persistence.NewNodeError("GetNodeByWorkflow", workflowID, nodeID, persistence.ErrNodeNotFound)
	}

	return node.Clone(), nil
}

func (nr *nodeRepository) SaveNode(_ context.Context, workflowID string, node *models.WorkflowNode) error {
	p := nr.persistence

	p.mu.Lock()
	defer p.mu.Unlock()

	g, err := p.lookup("SaveNode", workflowID)
	if err != nil {
		return err
	}

	g.saveNode(node.Clone())

	return nil
}

type connectionRepository struct {
	persistence *Persistence
}

func (cr *connectionRepository) SaveConnection(_ context.Context, workflowID, sourceID, targetID string) error {
	p := cr.persistence

	p.mu.Lock()
	defer p.mu.Unlock()

	g, err := p.lookup("SaveConnection", workflowID)
	if err != nil {
		return err
	}

	if err := g.connect(sourceID, targetID); err != nil {
		return persistence.NewConnectionError("SaveConnection", workflowID, sourceID, targetID, err)
	}

	return nil
}

func (cr *connectionRepository) DeleteConnection(_ context.Context, workflowID, sourceID, targetID string) error {
	p := cr.persistence

	p.mu.Lock()
	defer p.mu.Unlock()

	g, err := p.lookup("DeleteConnection", workflowID)
	if err != nil {
		return err
	}

	if err := g.disconnect(sourceID, targetID); err != nil {
		return persistence.NewConnectionError("DeleteConnection", workflowID, sourceID, targetID, err)
	}

	return nil
}

func (cr *connectionRepository) GetConnectionsBySourceNode(_ context.Context, workflowID, sourceID string) ([]string, error) {
	p := cr.persistence

	p.mu.RLock()
	defer p.mu.RUnlock()

	g, err := p.lookup("GetConnectionsBySourceNode", workflowID)
	if err != nil {
		return nil, err
	}

	node, ok := g.nodes[sourceID]
	if !ok {
		return nil, persistence.NewNodeError("GetConnectionsBySourceNode", workflowID, sourceID, persistence.ErrNodeNotFound)
	}

	return slices.Clone(node.Connections), nil
}

func (cr *connectionRepository) GetConnectionsByTargetNode(_ context.Context, workflowID, targetID string) ([]string, error) {
	p := cr.persistence

	p.mu.RLock()
	defer p.mu.RUnlock()

	g, err := p.lookup("GetConnectionsByTargetNode", workflowID)
	if err != nil {
		return nil, err
	}

	if _, ok := g.nodes[targetID]; !ok {
		return nil, persistence.NewNodeError("GetConnectionsByTargetNode", workflowID, targetID, persistence.ErrNodeNotFound)
	}

	return g.sources(targetID), nil
}

func (cr *connectionRepository) Reachable(_ context.Context, workflowID, fromID, toID string) (bool, error) {
	p := cr.persistence

	p.mu.RLock()
	defer p.mu.RUnlock()

	g, err := p.lookup("Reachable", workflowID)
	if err != nil {
		return false, err
	}

	return g.reachable(fromID, toID), nil
}
