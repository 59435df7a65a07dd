package web

import (
	"github.com/facilityops/flowdesk/pkg/editor"
	"github.com/facilityops/flowdesk/pkg/models"
	"github.com/facilityops/flowdesk/pkg/services"
)

// CreateWorkflowRequest is the body of the "New Workflow" dialog.
type CreateWorkflowRequest struct {
	Name        string `json:"name"        validate:"required"`
	Description string `json:"description"`
	Type        string `json:"type"        validate:"required,oneof=scheduled manual conditional event-based"`
	Icon        string `json:"icon"`
}

func (r CreateWorkflowRequest) toService() services.CreateWorkflowRequest {
	return services.CreateWorkflowRequest{
		Name:        r.Name,
		Description: r.Description,
		Type:        models.WorkflowType(r.Type),
		Icon:        r.Icon,
	}
}

// UpdateWorkflowRequest holds partial metadata edits.
type UpdateWorkflowRequest struct {
	Name          *string  `json:"name,omitempty"          validate:"omitempty,min=1"`
	Description   *string  `json:"description,omitempty"`
	Status        *string  `json:"status,omitempty"        validate:"omitempty,oneof=active paused error draft"`
	Icon          *string  `json:"icon,omitempty"`
	Schedule      *string  `json:"schedule,omitempty"`
	Zones         []string `json:"zones,omitempty"`
	LinkedSystems []string `json:"linkedSystems,omitempty"`
}

func (r UpdateWorkflowRequest) toService() services.UpdateWorkflowRequest {
	req := services.UpdateWorkflowRequest{
		Name:          r.Name,
		Description:   r.Description,
		Icon:          r.Icon,
		Schedule:      r.Schedule,
		Zones:         r.Zones,
		LinkedSystems: r.LinkedSystems,
	}

	if r.Status != nil {
		status := models.WorkflowStatus(*r.Status)
		req.Status = &status
	}

	return req
}

// CreateNodeRequest is the body of the "Add Node" dialog.
type CreateNodeRequest struct {
	Type   string         `json:"type"   validate:"required,oneof=trigger condition action"`
	Title  string         `json:"title"  validate:"required"`
	Params map[string]any `json:"params"`
}

func (r CreateNodeRequest) toService() services.NodeSpec {
	return services.NodeSpec{
		Type:   models.NodeType(r.Type),
		Title:  r.Title,
		Params: r.Params,
	}
}

// UpdateNodeRequest holds node edits. Type, position and connections cannot be changed here.
type UpdateNodeRequest struct {
	Title  *string        `json:"title,omitempty"  validate:"omitempty,min=1"`
	Params map[string]any `json:"params,omitempty"`
}

// PositionRequest is a drag result.
type PositionRequest struct {
	X *float64 `json:"x" validate:"required"`
	Y *float64 `json:"y" validate:"required"`
}

func (r PositionRequest) toModel() models.Position {
	return models.Position{X: *r.X, Y: *r.Y}
}

// ConnectionRequest is a connect gesture between two node handles.
type ConnectionRequest struct {
	Source string `json:"source" validate:"required"`
	Target string `json:"target" validate:"required"`
}

// OpenSessionRequest optionally names the workflow a dashboard view was linked to.
type OpenSessionRequest struct {
	WorkflowID string `json:"workflowId"`
}

type ModeRequest struct {
	Mode string `json:"mode" validate:"required,oneof=view edit"`
}

type SelectWorkflowRequest struct {
	WorkflowID string `json:"workflowId" validate:"required"`
}

type SelectNodeRequest struct {
	NodeID string `json:"nodeId" validate:"required"`
}

// StageRequest stages inspector edits. Nothing is written until commit.
type StageRequest struct {
	Title    *string                `json:"title,omitempty" validate:"omitempty,min=1"`
	Params   map[string]any         `json:"params,omitempty"`
	Workflow *UpdateWorkflowRequest `json:"workflow,omitempty"`
}

// SessionResponse describes the editor state of a dashboard view.
type SessionResponse struct {
	ID           string              `json:"id"`
	Mode         editor.Mode         `json:"mode"`
	Capabilities editor.Capabilities `json:"capabilities"`
	Selection    editor.Selection    `json:"selection"`
}

func newSessionResponse(session *editor.Session) SessionResponse {
	mode := session.Mode()

	return SessionResponse{
		ID:           session.ID,
		Mode:         mode,
		Capabilities: mode.Capabilities(),
		Selection:    session.Selection(),
	}
}
