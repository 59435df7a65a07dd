package web

import (
	"errors"

	"github.com/facilityops/flowdesk/pkg/editor"
	"github.com/facilityops/flowdesk/pkg/persistence"
	"github.com/facilityops/flowdesk/pkg/services"
	"github.com/gofiber/fiber/v3"
	"github.com/moogar0880/problems"
)

func badRequest(c fiber.Ctx, detail string) error {
	problem := problems.NewStatusProblem(400).
		WithInstance(c.Path()).
		WithType("validation_error").
		WithDetail(detail)

	return c.Status(fiber.StatusBadRequest).JSON(problem)
}

func notFound(c fiber.Ctx, kind, detail string) error {
	problem := problems.NewStatusProblem(404).
		WithInstance(c.Path()).
		WithType(kind).
		WithDetail(detail)

	return c.Status(fiber.StatusNotFound).JSON(problem)
}

func internalError(c fiber.Ctx, err error) error {
	problem := problems.NewStatusProblem(500).
		WithInstance(c.Path()).
		WithType("internal_error").
		WithError(err)

	return c.Status(fiber.StatusInternalServerError).JSON(problem)
}

// handleServiceError maps store and editor errors onto problem responses.
func handleServiceError(c fiber.Ctx, err error) error {
	switch {
	case persistence.IsInvalidConnection(err):
		return invalidConnection(c, err)

	case services.IsValidationError(err), errors.Is(err, editor.ErrInvalidMode):
		return badRequest(c, err.Error())

	case errors.Is(err, editor.ErrReadOnly):
		problem := problems.NewStatusProblem(403).
			WithInstance(c.Path()).
			WithType("read_only").
			WithDetail("switch the editor to edit mode first")

		return c.Status(fiber.StatusForbidden).JSON(problem)

	case services.IsConflictError(err):
		problem := problems.NewStatusProblem(409).
			WithInstance(c.Path()).
			WithType("conflict").
			WithDetail(err.Error())

		return c.Status(fiber.StatusConflict).JSON(problem)

	case errors.Is(err, editor.ErrNoWorkflowSelected), errors.Is(err, editor.ErrNoNodeSelected):
		problem := problems.NewStatusProblem(409).
			WithInstance(c.Path()).
			WithType("nothing_selected").
			WithDetail(err.Error())

		return c.Status(fiber.StatusConflict).JSON(problem)

	case persistence.IsWorkflowNotFound(err):
		return notFound(c, "workflow_not_found", "workflow not found")

	case persistence.IsNodeNotFound(err):
		return notFound(c, "node_not_found", "node not found")

	case persistence.IsConnectionNotFound(err):
		return notFound(c, "connection_not_found", "connection not found")

	default:
		return internalError(c, err)
	}
}

// invalidConnection reports a rejected edge. Cycles conflict with the
// workflow's current shape; dangling targets and self-loops are bad input.
func invalidConnection(c fiber.Ctx, err error) error {
	status := fiber.StatusBadRequest
	if services.IsConflictError(err) {
		status = fiber.StatusConflict
	}

	problem := problems.NewStatusProblem(status).
		WithInstance(c.Path()).
		WithType("invalid_connection").
		WithDetail(err.Error())

	return c.Status(status).JSON(problem)
}
