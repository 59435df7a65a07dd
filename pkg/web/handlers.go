// Package web provides HTTP handlers and REST API endpoints for the workflow dashboard.
package web

import (
	"net/http"
	"strings"
	"time"

	"github.com/facilityops/flowdesk/pkg/editor"
	"github.com/facilityops/flowdesk/pkg/models"
	"github.com/facilityops/flowdesk/pkg/projection"
	"github.com/facilityops/flowdesk/pkg/services"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

type APIHandlers struct {
	workflowService *services.Workflow
	sessions        *editor.Sessions
	validator       *validator.Validate
}

func NewAPIHandlers(
	workflowService *services.Workflow,
	sessions *editor.Sessions,
	validator *validator.Validate,
) *APIHandlers {
	return &APIHandlers{
		workflowService: workflowService,
		sessions:        sessions,
		validator:       validator,
	}
}

// Register mounts every dashboard route on router.
func (h *APIHandlers) Register(router fiber.Router) {
	w := router.Group("/workflows")
	w.Get("/", h.GetWorkflows)
	w.Post("/", h.CreateWorkflow)
	w.Get("/:id", h.GetWorkflow)
	w.Patch("/:id", h.UpdateWorkflow)
	w.Get("/:id/graph", h.GetWorkflowGraph)

	w.Post("/:id/nodes", h.CreateWorkflowNode)
	w.Get("/:id/nodes/:nodeId", h.GetWorkflowNode)
	w.Patch("/:id/nodes/:nodeId", h.UpdateWorkflowNode)
	w.Put("/:id/nodes/:nodeId/position", h.MoveWorkflowNode)
	w.Get("/:id/nodes/:nodeId/incoming", h.GetIncomingConnections)

	w.Post("/:id/connections", h.CreateConnection)
	w.Delete("/:id/connections/:sourceId/:targetId", h.DeleteConnection)

	s := router.Group("/sessions")
	s.Post("/", h.OpenSession)
	s.Get("/:sid", h.GetSession)
	s.Delete("/:sid", h.CloseSession)
	s.Put("/:sid/mode", h.SetSessionMode)
	s.Post("/:sid/mode/toggle", h.ToggleSessionMode)
	s.Put("/:sid/workflow", h.SelectWorkflow)
	s.Put("/:sid/node", h.SelectNode)
	s.Delete("/:sid/selection", h.ClearSelection)
	s.Get("/:sid/canvas", h.GetCanvas)
	s.Post("/:sid/workflows", h.SessionCreateWorkflow)
	s.Post("/:sid/nodes", h.SessionAddNode)
	s.Put("/:sid/nodes/:nodeId/position", h.SessionMoveNode)
	s.Post("/:sid/connections", h.SessionConnect)
	s.Get("/:sid/inspector", h.GetInspector)
	s.Patch("/:sid/inspector", h.StageInspector)
	s.Post("/:sid/inspector/commit", h.CommitInspector)
	s.Delete("/:sid/inspector", h.DiscardInspector)

	router.Get("/health", h.HealthCheck)
}

func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	repositoryCheck, repOk := h.workflowService.HealthCheck(c.Context())

	status := "unhealthy"
	message := "Flowdesk API is unhealthy"
	httpStatus := http.StatusInternalServerError

	if repOk {
		status = "healthy"
		message = "Flowdesk API is healthy"
		httpStatus = http.StatusOK
	}

	return c.Status(httpStatus).JSON(fiber.Map{
		"status":  status,
		"message": message,
		"checkers": fiber.Map{
			"repository": repositoryCheck,
		},
		"sessions":  h.sessions.Len(),
		"timestamp": time.Now().UTC(),
	})
}

func (h *APIHandlers) GetWorkflows(c fiber.Ctx) error {
	req := services.ListWorkflowsRequest{}

	if raw := c.Query("status"); raw != "" {
		for _, status := range strings.Split(raw, ",") {
			req.Status = append(req.Status, models.WorkflowStatus(strings.TrimSpace(status)))
		}
	}

	workflows, err := h.workflowService.ListWorkflows(c.Context(), req)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"workflows":   workflows,
		"total_count": len(workflows),
	})
}

func (h *APIHandlers) GetWorkflow(c fiber.Ctx) error {
	workflow, err := h.workflowService.FetchByID(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(workflow)
}

func (h *APIHandlers) CreateWorkflow(c fiber.Ctx) error {
	var req CreateWorkflowRequest
	if err := h.bind(c, &req); err != nil {
		return badRequest(c, err.Error())
	}

	created, err := h.workflowService.CreateWorkflow(c.Context(), req.toService())
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *APIHandlers) UpdateWorkflow(c fiber.Ctx) error {
	var req UpdateWorkflowRequest
	if err := h.bind(c, &req); err != nil {
		return badRequest(c, err.Error())
	}

	updated, err := h.workflowService.UpdateWorkflow(c.Context(), c.Params("id"), req.toService())
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(updated)
}

// GetWorkflowGraph returns the render records of a workflow. The optional
// "selected" query parameter marks one node as selected.
func (h *APIHandlers) GetWorkflowGraph(c fiber.Ctx) error {
	workflow, err := h.workflowService.FetchByID(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(projection.Project(workflow, c.Query("selected")))
}

func (h *APIHandlers) CreateWorkflowNode(c fiber.Ctx) error {
	var req CreateNodeRequest
	if err := h.bind(c, &req); err != nil {
		return badRequest(c, err.Error())
	}

	node, err := h.workflowService.AddNode(c.Context(), c.Params("id"), req.toService())
	if err != nil {
		return handleServiceError(c, err)
	}

	if node == nil {
		return notFound(c, "workflow_not_found", "workflow not found")
	}

	return c.Status(fiber.StatusCreated).JSON(node)
}

func (h *APIHandlers) GetWorkflowNode(c fiber.Ctx) error {
	node, err := h.workflowService.GetNode(c.Context(), c.Params("id"), c.Params("nodeId"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(node)
}

func (h *APIHandlers) UpdateWorkflowNode(c fiber.Ctx) error {
	var req UpdateNodeRequest
	if err := h.bind(c, &req); err != nil {
		return badRequest(c, err.Error())
	}

	node, err := h.workflowService.UpdateNode(c.Context(), c.Params("id"), c.Params("nodeId"), services.UpdateNodeRequest{
		Title:  req.Title,
		Params: req.Params,
	})
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(node)
}

func (h *APIHandlers) MoveWorkflowNode(c fiber.Ctx) error {
	var req PositionRequest
	if err := h.bind(c, &req); err != nil {
		return badRequest(c, err.Error())
	}

	node, err := h.workflowService.MoveNode(c.Context(), c.Params("id"), c.Params("nodeId"), req.toModel())
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(node)
}

func (h *APIHandlers) GetIncomingConnections(c fiber.Ctx) error {
	sources, err := h.workflowService.Incoming(c.Context(), c.Params("id"), c.Params("nodeId"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(fiber.Map{"sources": sources})
}

func (h *APIHandlers) CreateConnection(c fiber.Ctx) error {
	var req ConnectionRequest
	if err := h.bind(c, &req); err != nil {
		return badRequest(c, err.Error())
	}

	node, err := h.workflowService.Connect(c.Context(), c.Params("id"), req.Source, req.Target)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(node)
}

func (h *APIHandlers) DeleteConnection(c fiber.Ctx) error {
	node, err := h.workflowService.Disconnect(c.Context(), c.Params("id"), c.Params("sourceId"), c.Params("targetId"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(node)
}

// bind decodes the JSON body into req and validates it.
func (h *APIHandlers) bind(c fiber.Ctx, req any) error {
	if err := c.Bind().JSON(req); err != nil {
		return errInvalidJSON
	}

	return h.validator.Struct(req)
}
