package web

import (
	"errors"

	"github.com/facilityops/flowdesk/pkg/editor"
	"github.com/facilityops/flowdesk/pkg/models"
	"github.com/facilityops/flowdesk/pkg/projection"
	"github.com/gofiber/fiber/v3"
)

var errInvalidJSON = errors.New("invalid JSON format")

func (h *APIHandlers) session(c fiber.Ctx) (*editor.Session, bool) {
	return h.sessions.Get(c.Params("sid"))
}

func sessionNotFound(c fiber.Ctx) error {
	return notFound(c, "session_not_found", "session not found")
}

// OpenSession starts an editor session and resolves its initial selection.
func (h *APIHandlers) OpenSession(c fiber.Ctx) error {
	var req OpenSessionRequest
	if len(c.Body()) > 0 {
		if err := c.Bind().JSON(&req); err != nil {
			return badRequest(c, errInvalidJSON.Error())
		}
	}

	session := h.sessions.Open()
	session.InitialSelection(c.Context(), req.WorkflowID)

	return c.Status(fiber.StatusCreated).JSON(newSessionResponse(session))
}

func (h *APIHandlers) GetSession(c fiber.Ctx) error {
	session, ok := h.session(c)
	if !ok {
		return sessionNotFound(c)
	}

	return c.JSON(newSessionResponse(session))
}

func (h *APIHandlers) CloseSession(c fiber.Ctx) error {
	if !h.sessions.Close(c.Params("sid")) {
		return sessionNotFound(c)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *APIHandlers) SetSessionMode(c fiber.Ctx) error {
	session, ok := h.session(c)
	if !ok {
		return sessionNotFound(c)
	}

	var req ModeRequest
	if err := h.bind(c, &req); err != nil {
		return badRequest(c, err.Error())
	}

	mode, err := editor.ParseMode(req.Mode)
	if err != nil {
		return handleServiceError(c, err)
	}

	if err := session.SetMode(mode); err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(newSessionResponse(session))
}

func (h *APIHandlers) ToggleSessionMode(c fiber.Ctx) error {
	session, ok := h.session(c)
	if !ok {
		return sessionNotFound(c)
	}

	session.ToggleMode()

	return c.JSON(newSessionResponse(session))
}

func (h *APIHandlers) SelectWorkflow(c fiber.Ctx) error {
	session, ok := h.session(c)
	if !ok {
		return sessionNotFound(c)
	}

	var req SelectWorkflowRequest
	if err := h.bind(c, &req); err != nil {
		return badRequest(c, err.Error())
	}

	session.SelectWorkflow(req.WorkflowID)

	return c.JSON(newSessionResponse(session))
}

// SelectNode handles a canvas click.
func (h *APIHandlers) SelectNode(c fiber.Ctx) error {
	session, ok := h.session(c)
	if !ok {
		return sessionNotFound(c)
	}

	var req SelectNodeRequest
	if err := h.bind(c, &req); err != nil {
		return badRequest(c, err.Error())
	}

	session.ClickNode(req.NodeID)

	return c.JSON(newSessionResponse(session))
}

func (h *APIHandlers) ClearSelection(c fiber.Ctx) error {
	session, ok := h.session(c)
	if !ok {
		return sessionNotFound(c)
	}

	session.ClearSelection()

	return c.JSON(newSessionResponse(session))
}

// GetCanvas projects the selected workflow for the session's renderer. With
// nothing selected the graph is empty.
func (h *APIHandlers) GetCanvas(c fiber.Ctx) error {
	session, ok := h.session(c)
	if !ok {
		return sessionNotFound(c)
	}

	selection := session.Selection()

	var workflow *models.Workflow
	if found, ok := h.workflowService.Lookup(c.Context(), selection.WorkflowID); ok {
		workflow = found
	}

	return c.JSON(projection.NewCanvas(workflow, selection.NodeID, session.Mode()))
}

func (h *APIHandlers) SessionCreateWorkflow(c fiber.Ctx) error {
	session, ok := h.session(c)
	if !ok {
		return sessionNotFound(c)
	}

	var req CreateWorkflowRequest
	if err := h.bind(c, &req); err != nil {
		return badRequest(c, err.Error())
	}

	workflow, err := session.CreateWorkflow(c.Context(), req.toService())
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"workflow": workflow,
		"session":  newSessionResponse(session),
	})
}

// SessionAddNode adds a node to the selected workflow. With nothing selected
// the request succeeds without adding anything.
func (h *APIHandlers) SessionAddNode(c fiber.Ctx) error {
	session, ok := h.session(c)
	if !ok {
		return sessionNotFound(c)
	}

	var req CreateNodeRequest
	if err := h.bind(c, &req); err != nil {
		return badRequest(c, err.Error())
	}

	node, err := session.AddNode(c.Context(), req.toService())
	if err != nil {
		return handleServiceError(c, err)
	}

	if node == nil {
		return c.JSON(fiber.Map{"node": nil, "session": newSessionResponse(session)})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"node":    node,
		"session": newSessionResponse(session),
	})
}

func (h *APIHandlers) SessionMoveNode(c fiber.Ctx) error {
	session, ok := h.session(c)
	if !ok {
		return sessionNotFound(c)
	}

	var req PositionRequest
	if err := h.bind(c, &req); err != nil {
		return badRequest(c, err.Error())
	}

	node, err := session.MoveNode(c.Context(), c.Params("nodeId"), req.toModel())
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(node)
}

func (h *APIHandlers) SessionConnect(c fiber.Ctx) error {
	session, ok := h.session(c)
	if !ok {
		return sessionNotFound(c)
	}

	var req ConnectionRequest
	if err := h.bind(c, &req); err != nil {
		return badRequest(c, err.Error())
	}

	node, err := session.Connect(c.Context(), req.Source, req.Target)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(node)
}

func (h *APIHandlers) GetInspector(c fiber.Ctx) error {
	session, ok := h.session(c)
	if !ok {
		return sessionNotFound(c)
	}

	return c.JSON(fiber.Map{
		"inspection": session.Inspect(c.Context()),
		"dirty":      session.Inspector().HasChanges(),
	})
}

func (h *APIHandlers) StageInspector(c fiber.Ctx) error {
	session, ok := h.session(c)
	if !ok {
		return sessionNotFound(c)
	}

	var req StageRequest
	if err := h.bind(c, &req); err != nil {
		return badRequest(c, err.Error())
	}

	stage(session.Inspector(), req)

	return c.JSON(fiber.Map{"dirty": session.Inspector().HasChanges()})
}

func stage(inspector *editor.Inspector, req StageRequest) {
	if req.Title != nil {
		inspector.StageTitle(*req.Title)
	}

	for key, value := range req.Params {
		inspector.StageParam(key, value)
	}

	if req.Workflow == nil {
		return
	}

	w := req.Workflow

	if w.Name != nil {
		inspector.StageWorkflowName(*w.Name)
	}

	if w.Description != nil {
		inspector.StageWorkflowDescription(*w.Description)
	}

	if w.Status != nil {
		inspector.StageWorkflowStatus(models.WorkflowStatus(*w.Status))
	}

	if w.Icon != nil {
		inspector.StageWorkflowIcon(*w.Icon)
	}

	if w.Schedule != nil {
		inspector.StageWorkflowSchedule(*w.Schedule)
	}

	if w.Zones != nil {
		inspector.StageWorkflowZones(w.Zones)
	}

	if w.LinkedSystems != nil {
		inspector.StageWorkflowLinkedSystems(w.LinkedSystems)
	}
}

func (h *APIHandlers) CommitInspector(c fiber.Ctx) error {
	session, ok := h.session(c)
	if !ok {
		return sessionNotFound(c)
	}

	inspection, err := session.Inspector().Commit(c.Context())
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(fiber.Map{"inspection": inspection})
}

func (h *APIHandlers) DiscardInspector(c fiber.Ctx) error {
	session, ok := h.session(c)
	if !ok {
		return sessionNotFound(c)
	}

	session.Inspector().Discard()

	return c.SendStatus(fiber.StatusNoContent)
}
