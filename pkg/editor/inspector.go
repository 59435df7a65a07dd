package editor

import (
	"context"
	"errors"
	"maps"
	"slices"
	"sync"

	"github.com/facilityops/flowdesk/pkg/models"
	"github.com/facilityops/flowdesk/pkg/services"
)

var (
	ErrNoWorkflowSelected = errors.New("no workflow selected")
	ErrNoNodeSelected     = errors.New("no node selected")
)

// Inspector stages edits to the selected workflow and node. Nothing reaches
// the store until Commit. Changing the selection discards staged edits.
type Inspector struct {
	session *Session

	mu       sync.Mutex
	title    *string
	params   map[string]any
	workflow services.UpdateWorkflowRequest
}

func newInspector(session *Session) *Inspector {
	return &Inspector{session: session}
}

func (i *Inspector) reset() {
	i.mu.Lock()
	defer i.mu.Unlock()

	i.title = nil
	i.params = nil
	i.workflow = services.UpdateWorkflowRequest{}
}

// Discard drops every staged edit.
func (i *Inspector) Discard() {
	i.reset()
}

// StageTitle stages a new title for the selected node.
func (i *Inspector) StageTitle(title string) {
	i.mu.Lock()
	defer i.mu.Unlock()

	i.title = &title
}

// StageParam stages one settings value for the selected node. Other settings keep their value.
func (i *Inspector) StageParam(key string, value any) {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.params == nil {
		i.params = make(map[string]any)
	}

	i.params[key] = value
}

func (i *Inspector) StageWorkflowName(name string) {
	i.mu.Lock()
	defer i.mu.Unlock()

	i.workflow.Name = &name
}

func (i *Inspector) StageWorkflowDescription(description string) {
	i.mu.Lock()
	defer i.mu.Unlock()

	i.workflow.Description = &description
}

func (i *Inspector) StageWorkflowStatus(status models.WorkflowStatus) {
	i.mu.Lock()
	defer i.mu.Unlock()

	i.workflow.Status = &status
}

func (i *Inspector) StageWorkflowIcon(icon string) {
	i.mu.Lock()
	defer i.mu.Unlock()

	i.workflow.Icon = &icon
}

func (i *Inspector) StageWorkflowSchedule(schedule string) {
	i.mu.Lock()
	defer i.mu.Unlock()

	i.workflow.Schedule = &schedule
}

func (i *Inspector) StageWorkflowZones(zones []string) {
	i.mu.Lock()
	defer i.mu.Unlock()

	i.workflow.Zones = slices.Clone(zones)
}

func (i *Inspector) StageWorkflowLinkedSystems(systems []string) {
	i.mu.Lock()
	defer i.mu.Unlock()

	i.workflow.LinkedSystems = slices.Clone(systems)
}

// HasChanges reports whether anything is staged.
func (i *Inspector) HasChanges() bool {
	i.mu.Lock()
	defer i.mu.Unlock()

	return i.hasNodeChanges() || !i.workflow.IsEmpty()
}

func (i *Inspector) hasNodeChanges() bool {
	return i.title != nil || len(i.params) > 0
}

// Commit writes staged edits through the store and returns the refreshed
// inspection. Staged edits are kept when the store rejects them.
func (i *Inspector) Commit(ctx context.Context) (Inspection, error) {
	selection := i.session.Selection()
	if selection.WorkflowID == "" {
		return Inspection{}, ErrNoWorkflowSelected
	}

	if err := i.commit(ctx, selection); err != nil {
		return Inspection{}, err
	}

	return i.session.Inspect(ctx), nil
}

// commit holds i.mu only, never the session lock.
func (i *Inspector) commit(ctx context.Context, selection Selection) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.hasNodeChanges() && selection.NodeID == "" {
		return ErrNoNodeSelected
	}

	store := i.session.store

	if !i.workflow.IsEmpty() {
		if _, err := store.UpdateWorkflow(ctx, selection.WorkflowID, i.workflow); err != nil {
			return err
		}

		i.workflow = services.UpdateWorkflowRequest{}
	}

	if !i.hasNodeChanges() {
		return nil
	}

	req := services.UpdateNodeRequest{Title: i.title}

	if len(i.params) > 0 {
		params, err := mergedParams(ctx, store, selection, i.params)
		if err != nil {
			return err
		}

		req.Params = params
	}

	if _, err := store.UpdateNode(ctx, selection.WorkflowID, selection.NodeID, req); err != nil {
		return err
	}

	i.title = nil
	i.params = nil

	return nil
}

func mergedParams(ctx context.Context, store Store, selection Selection, staged map[string]any) (map[string]any, error) {
	workflow, ok := store.Lookup(ctx, selection.WorkflowID)
	if !ok {
		return nil, services.ErrWorkflowNotFound
	}

	node := workflow.Node(selection.NodeID)
	if node == nil {
		return nil, services.ErrNodeNotFound
	}

	params := maps.Clone(node.Params)
	if params == nil {
		params = make(map[string]any, len(staged))
	}

	maps.Copy(params, staged)

	return params, nil
}
