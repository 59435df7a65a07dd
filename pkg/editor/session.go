package editor

import (
	"context"
	"sync"
	"time"

	"github.com/facilityops/flowdesk/pkg/models"
	"github.com/facilityops/flowdesk/pkg/services"
)

// Store is the subset of the workflow service an editor session drives.
type Store interface {
	Lookup(ctx context.Context, id string) (*models.Workflow, bool)
	FirstActive(ctx context.Context) (*models.Workflow, bool)
	CreateWorkflow(ctx context.Context, req services.CreateWorkflowRequest) (*models.Workflow, error)
	AddNode(ctx context.Context, workflowID string, spec services.NodeSpec) (*models.WorkflowNode, error)
	MoveNode(ctx context.Context, workflowID, nodeID string, position models.Position) (*models.WorkflowNode, error)
	Connect(ctx context.Context, workflowID, sourceID, targetID string) (*models.WorkflowNode, error)
	UpdateNode(ctx context.Context, workflowID, nodeID string, req services.UpdateNodeRequest) (*models.WorkflowNode, error)
	UpdateWorkflow(ctx context.Context, id string, req services.UpdateWorkflowRequest) (*models.Workflow, error)
}

// Selection is the pair of ids the dashboard highlights. NodeID is only
// meaningful relative to WorkflowID.
type Selection struct {
	WorkflowID    string `json:"workflowId,omitempty"`
	NodeID        string `json:"nodeId,omitempty"`
	InspectorOpen bool   `json:"inspectorOpen"`
}

// Inspection is what the inspector panel displays for the current selection.
type Inspection struct {
	Workflow *models.Workflow     `json:"workflow,omitempty"`
	Node     *models.WorkflowNode `json:"node,omitempty"`
}

// Session is the editing state of one dashboard view. Sessions never hold
// workflow data; every read and write goes through the Store.
type Session struct {
	ID        string
	CreatedAt time.Time

	store Store

	mu        sync.Mutex
	mode      Mode
	selection Selection
	inspector *Inspector
}

// NewSession creates a session in view mode with nothing selected.
func NewSession(id string, store Store) *Session {
	s := &Session{
		ID:        id,
		CreatedAt: time.Now().UTC(),
		store:     store,
		mode:      ModeView,
	}
	s.inspector = newInspector(s)

	return s
}

func (s *Session) Mode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.mode
}

// SetMode switches to the given mode. The graph is never touched.
func (s *Session) SetMode(mode Mode) error {
	if !mode.IsValid() {
		return ErrInvalidMode
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.mode = mode

	return nil
}

// ToggleMode flips between view and edit and returns the new mode.
func (s *Session) ToggleMode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.mode = s.mode.Toggle()

	return s.mode
}

func (s *Session) Selection() Selection {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.selection
}

// SelectWorkflow selects a workflow, drops any selected node and opens the inspector.
func (s *Session) SelectWorkflow(workflowID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.selectWorkflow(workflowID)
}

func (s *Session) selectWorkflow(workflowID string) {
	s.selection = Selection{WorkflowID: workflowID, InspectorOpen: true}
	s.inspector.reset()
}

// SelectNode selects a node of the current workflow and opens the inspector.
func (s *Session) SelectNode(nodeID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.selection.NodeID = nodeID
	s.selection.InspectorOpen = true
	s.inspector.reset()
}

// ClickNode handles a canvas click. Clicking is allowed in every mode.
func (s *Session) ClickNode(nodeID string) {
	s.SelectNode(nodeID)
}

// CloseInspector hides the inspector without changing the selection.
func (s *Session) CloseInspector() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.selection.InspectorOpen = false
}

// ClearSelection drops both selected ids.
func (s *Session) ClearSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.selection = Selection{}
	s.inspector.reset()
}

// InitialSelection resolves the first selection of a view: the requested
// workflow if it exists, else the first active workflow, else nothing.
func (s *Session) InitialSelection(ctx context.Context, requestedID string) Selection {
	s.mu.Lock()
	defer s.mu.Unlock()

	if workflow, ok := s.store.Lookup(ctx, requestedID); ok {
		s.selectWorkflow(workflow.ID)
	} else if workflow, ok := s.store.FirstActive(ctx); ok {
		s.selectWorkflow(workflow.ID)
	} else {
		s.selection = Selection{}
		s.inspector.reset()
	}

	return s.selection
}

// CreateWorkflow creates a workflow and selects it.
func (s *Session) CreateWorkflow(ctx context.Context, req services.CreateWorkflowRequest) (*models.Workflow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	workflow, err := s.store.CreateWorkflow(ctx, req)
	if err != nil {
		return nil, err
	}

	s.selectWorkflow(workflow.ID)

	return workflow, nil
}

// AddNode adds a node to the selected workflow and switches to edit mode.
// With no workflow selected nothing happens. The session stays locked until
// the store answers so the node lands in the workflow that was selected.
func (s *Session) AddNode(ctx context.Context, spec services.NodeSpec) (*models.WorkflowNode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	node, err := s.store.AddNode(ctx, s.selection.WorkflowID, spec)
	if err != nil || node == nil {
		return node, err
	}

	s.mode = ModeEdit

	return node, nil
}

// MoveNode persists a drag of a node in the selected workflow.
func (s *Session) MoveNode(ctx context.Context, nodeID string, position models.Position) (*models.WorkflowNode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.mode != ModeEdit {
		return nil, ErrReadOnly
	}

	return s.store.MoveNode(ctx, s.selection.WorkflowID, nodeID, position)
}

// Connect persists a connect gesture between two nodes of the selected workflow.
func (s *Session) Connect(ctx context.Context, sourceID, targetID string) (*models.WorkflowNode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.mode != ModeEdit {
		return nil, ErrReadOnly
	}

	return s.store.Connect(ctx, s.selection.WorkflowID, sourceID, targetID)
}

// Inspect resolves the selection against the store. Missing records are left nil.
func (s *Session) Inspect(ctx context.Context) Inspection {
	selection := s.Selection()

	workflow, ok := s.store.Lookup(ctx, selection.WorkflowID)
	if !ok {
		return Inspection{}
	}

	inspection := Inspection{Workflow: workflow}
	if selection.NodeID != "" {
		inspection.Node = workflow.Node(selection.NodeID)
	}

	return inspection
}

// Inspector returns the staging area for edits to the current selection.
func (s *Session) Inspector() *Inspector {
	return s.inspector
}
