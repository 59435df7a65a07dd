package services

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/facilityops/flowdesk/pkg/eventbus"
	"github.com/facilityops/flowdesk/pkg/events"
	"github.com/facilityops/flowdesk/pkg/models"
	"github.com/facilityops/flowdesk/pkg/otelhelper"
	"github.com/facilityops/flowdesk/pkg/persistence"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// DefaultTriggerPosition is where the seed trigger of a new workflow is drawn.
var DefaultTriggerPosition = models.Position{X: 250, Y: 100}

// Workflow is the workflow collection store. It is the only writer of the
// collection: every mutation goes through its methods and returns a copy of
// the resulting state.
type Workflow struct {
	persistence persistence.Persistence
	publisher   eventbus.EventPublisher
	tracer      trace.Tracer
	logger      *slog.Logger
	acyclic     bool

	// mu serializes mutations so read-modify-write sequences observe the latest state.
	mu sync.Mutex

	newWorkflowID func() string
	newNodeID     func() string
}

// Option configures a Workflow service.
type Option func(*Workflow)

// WithEventPublisher publishes a change event after every successful mutation.
func WithEventPublisher(publisher eventbus.EventPublisher) Option {
	return func(w *Workflow) {
		w.publisher = publisher
	}
}

// WithTracer records a span per operation.
func WithTracer(tracer trace.Tracer) Option {
	return func(w *Workflow) {
		w.tracer = tracer
	}
}

// WithLogger sets the service logger.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Workflow) {
		w.logger = logger
	}
}

// WithAcyclicGraphs rejects connections that would close a cycle.
func WithAcyclicGraphs() Option {
	return func(w *Workflow) {
		w.acyclic = true
	}
}

// WithIDGenerators overrides workflow and node id generation.
func WithIDGenerators(workflowID, nodeID func() string) Option {
	return func(w *Workflow) {
		w.newWorkflowID = workflowID
		w.newNodeID = nodeID
	}
}

// NewWorkflow creates a new workflow service.
func NewWorkflow(persistence persistence.Persistence, opts ...Option) *Workflow {
	w := &Workflow{
		persistence:   persistence,
		tracer:        otelhelper.NoopTracer(),
		logger:        slog.Default(),
		newWorkflowID: newWorkflowID,
		newNodeID:     newNodeID,
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

func newWorkflowID() string {
	return uuid.New().String()
}

// newNodeID returns a time-ordered id so later nodes sort after earlier ones.
func newNodeID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}

	return id.String()
}

// HealthCheck checks the health of the persistence layer.
func (w *Workflow) HealthCheck(ctx context.Context) (string, bool) {
	if w.persistence == nil {
		return "Persistence layer not initialized", false
	}

	err := w.persistence.HealthCheck(ctx)
	if err != nil {
		return "Persistence layer is unhealthy: " + err.Error(), false
	}

	return "Persistence layer is healthy", true
}

// ListWorkflowsRequest contains options for listing workflows.
type ListWorkflowsRequest struct {
	// Status keeps only workflows in one of these states. Empty keeps all.
	Status []models.WorkflowStatus
}

// ListWorkflows returns the collection, newest created first.
func (w *Workflow) ListWorkflows(ctx context.Context, req ListWorkflowsRequest) ([]*models.Workflow, error) {
	ctx, span := otelhelper.StartSpan(ctx, w.tracer, "workflow.list")
	defer span.End()

	for _, status := range req.Status {
		if !status.IsValid() {
			return nil, NewValidationError(
				"ListWorkflows",
				"INVALID_STATUS",
				fmt.Sprintf("invalid status '%s'", status),
				ErrInvalidStatus,
			)
		}
	}

	workflows, err := w.persistence.WorkflowRepository().List(ctx)
	if err != nil {
		otelhelper.SetError(span, err)

		return nil, fmt.Errorf("failed to list workflows: %w", err)
	}

	if len(req.Status) == 0 {
		return workflows, nil
	}

	return slices.DeleteFunc(workflows, func(workflow *models.Workflow) bool {
		return !slices.Contains(req.Status, workflow.Status)
	}), nil
}

// FetchByID retrieves a workflow by its ID.
func (w *Workflow) FetchByID(ctx context.Context, id string) (*models.Workflow, error) {
	workflow, err := w.persistence.WorkflowRepository().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if workflow == nil {
		return nil, persistence.NewWorkflowError("FetchByID", id, ErrWorkflowNotFound)
	}

	return workflow, nil
}

// Lookup probes for a workflow. Absence is reported through the boolean.
func (w *Workflow) Lookup(ctx context.Context, id string) (*models.Workflow, bool) {
	if id == "" {
		return nil, false
	}

	workflow, err := w.persistence.WorkflowRepository().GetByID(ctx, id)
	if err != nil || workflow == nil {
		return nil, false
	}

	return workflow, true
}

// FirstActive returns the newest workflow in the active state.
func (w *Workflow) FirstActive(ctx context.Context) (*models.Workflow, bool) {
	workflows, err := w.persistence.WorkflowRepository().List(ctx)
	if err != nil {
		return nil, false
	}

	for _, workflow := range workflows {
		if workflow.IsActive() {
			return workflow, true
		}
	}

	return nil, false
}

// CreateWorkflowRequest describes a workflow created from the "New Workflow" dialog.
type CreateWorkflowRequest struct {
	Name        string
	Description string
	Type        models.WorkflowType
	Icon        string
}

// CreateWorkflow builds a draft workflow seeded with one trigger node and
// prepends it to the collection.
func (w *Workflow) CreateWorkflow(ctx context.Context, req CreateWorkflowRequest) (*models.Workflow, error) {
	ctx, span := otelhelper.StartSpan(ctx, w.tracer, "workflow.create",
		attribute.String(otelhelper.WorkflowTypeKey, string(req.Type)))
	defer span.End()

	workflow := models.NewWorkflow(w.newWorkflowID(), req.Name, req.Description, req.Type)
	workflow.Icon = req.Icon

	triggerTitle := models.TriggerTitleDefault

	if req.Type == models.WorkflowTypeManual {
		nextRun := models.NextRunManual
		workflow.Schedule = models.ScheduleManual
		workflow.NextRun = &nextRun
		triggerTitle = models.TriggerTitleManual
	}

	workflow.Nodes = []*models.WorkflowNode{
		models.NewWorkflowNode(w.newNodeID(), models.NodeTypeTrigger, triggerTitle, nil, DefaultTriggerPosition),
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.persistence.WorkflowRepository().Save(ctx, workflow); err != nil {
		otelhelper.SetError(span, err)

		return nil, fmt.Errorf("failed to create workflow: %w", err)
	}

	span.SetAttributes(attribute.String(otelhelper.WorkflowIDKey, workflow.ID))
	w.logger.DebugContext(ctx, "Workflow created", "workflow_id", workflow.ID, "type", workflow.Type)

	w.publish(ctx, workflow.ID, events.WorkflowCreated{
		BaseEvent: events.NewBaseEvent(events.WorkflowCreatedEvent, workflow.ID),
		Workflow:  workflow.Clone(),
	})

	return workflow, nil
}

// Import stores workflows keeping their given order at the top of the list.
// Workflows with an existing id replace the stored one.
func (w *Workflow) Import(ctx context.Context, workflows []*models.Workflow) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	for i := len(workflows) - 1; i >= 0; i-- {
		if err := w.persistence.WorkflowRepository().Save(ctx, workflows[i]); err != nil {
			return fmt.Errorf("failed to import workflow %q: %w", workflows[i].ID, err)
		}
	}

	return nil
}

// UpdateWorkflowRequest holds inspector edits to workflow metadata. Nil fields are left unchanged.
type UpdateWorkflowRequest struct {
	Name          *string
	Description   *string
	Status        *models.WorkflowStatus
	Icon          *string
	Schedule      *string
	Zones         []string
	LinkedSystems []string
}

// IsEmpty reports whether the request changes nothing.
func (r UpdateWorkflowRequest) IsEmpty() bool {
	return r.Name == nil && r.Description == nil && r.Status == nil && r.Icon == nil &&
		r.Schedule == nil && r.Zones == nil && r.LinkedSystems == nil
}

// UpdateWorkflow applies metadata edits. Nodes are never touched.
func (w *Workflow) UpdateWorkflow(ctx context.Context, id string, req UpdateWorkflowRequest) (*models.Workflow, error) {
	ctx, span := otelhelper.StartSpan(ctx, w.tracer, "workflow.update",
		attribute.String(otelhelper.WorkflowIDKey, id))
	defer span.End()

	if err := validateUpdateWorkflowRequest(req); err != nil {
		return nil, err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	workflow, err := w.FetchByID(ctx, id)
	if err != nil {
		return nil, err
	}

	applyWorkflowUpdate(workflow, req)
	workflow.UpdatedAt = time.Now().UTC()

	if err := w.persistence.WorkflowRepository().Save(ctx, workflow); err != nil {
		otelhelper.SetError(span, err)

		return nil, fmt.Errorf("failed to update workflow: %w", err)
	}

	w.publish(ctx, workflow.ID, events.WorkflowUpdated{
		BaseEvent: events.NewBaseEvent(events.WorkflowUpdatedEvent, workflow.ID),
		Workflow:  workflow.Clone(),
	})

	return workflow, nil
}

func validateUpdateWorkflowRequest(req UpdateWorkflowRequest) error {
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		return NewValidationError("UpdateWorkflow", "EMPTY_NAME", "workflow name cannot be empty", ErrEmptyName)
	}

	if req.Status != nil && !req.Status.IsValid() {
		return NewValidationError(
			"UpdateWorkflow",
			"INVALID_STATUS",
			fmt.Sprintf("invalid status '%s'", *req.Status),
			ErrInvalidStatus,
		)
	}

	return nil
}

func applyWorkflowUpdate(workflow *models.Workflow, req UpdateWorkflowRequest) {
	if req.Name != nil {
		workflow.Name = *req.Name
	}

	if req.Description != nil {
		workflow.Description = *req.Description
	}

	if req.Status != nil {
		workflow.Status = *req.Status
	}

	if req.Icon != nil {
		workflow.Icon = *req.Icon
	}

	if req.Schedule != nil {
		workflow.Schedule = *req.Schedule
	}

	if req.Zones != nil {
		workflow.Zones = slices.Clone(req.Zones)
	}

	if req.LinkedSystems != nil {
		workflow.LinkedSystems = slices.Clone(req.LinkedSystems)
	}
}

// publish sends a change event. The mutation has already been applied, so
// failures are logged and not returned.
func (w *Workflow) publish(ctx context.Context, key string, event eventbus.Event) {
	if w.publisher == nil {
		return
	}

	if err := w.publisher.Publish(ctx, key, event); err != nil {
		w.logger.WarnContext(ctx, "Failed to publish workflow change",
			"event_type", event.GetType(), "workflow_id", key, "error", err)
	}
}
