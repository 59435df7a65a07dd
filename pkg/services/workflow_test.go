package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/facilityops/flowdesk/pkg/events"
	"github.com/facilityops/flowdesk/pkg/mocks"
	"github.com/facilityops/flowdesk/pkg/models"
	"github.com/facilityops/flowdesk/pkg/persistence"
	"github.com/facilityops/flowdesk/pkg/persistence/memory"
	"github.com/facilityops/flowdesk/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func sequence(prefix string) func() string {
	n := 0

	return func() string {
		n++

		return fmt.Sprintf("%s-%d", prefix, n)
	}
}

func newTestService(t *testing.T, opts ...Option) *Workflow {
	t.Helper()

	opts = append([]Option{WithIDGenerators(sequence("wf"), sequence("node"))}, opts...)

	return NewWorkflow(memory.NewPersistence(), opts...)
}

func TestWorkflowService_CreateWorkflow_SeedsTrigger(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name             string
		workflowType     models.WorkflowType
		expectedTitle    string
		expectedSchedule string
		expectedNextRun  *string
	}{
		{
			name:             "manual",
			workflowType:     models.WorkflowTypeManual,
			expectedTitle:    "Manual Activation",
			expectedSchedule: "Manual Trigger",
			expectedNextRun:  ptr("Manual"),
		},
		{
			name:             "scheduled",
			workflowType:     models.WorkflowTypeScheduled,
			expectedTitle:    "New Trigger",
			expectedSchedule: "Not scheduled",
		},
		{
			name:             "conditional",
			workflowType:     models.WorkflowTypeConditional,
			expectedTitle:    "New Trigger",
			expectedSchedule: "Not scheduled",
		},
		{
			name:             "event based",
			workflowType:     models.WorkflowTypeEventBased,
			expectedTitle:    "New Trigger",
			expectedSchedule: "Not scheduled",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			service := newTestService(t)

			workflow, err := service.CreateWorkflow(t.Context(), CreateWorkflowRequest{
				Name:        "X",
				Description: "created in test",
				Type:        tt.workflowType,
				Icon:        "zap",
			})
			require.NoError(t, err)

			assert.Equal(t, models.WorkflowStatusDraft, workflow.Status)
			assert.Equal(t, "zap", workflow.Icon)
			assert.Equal(t, tt.expectedSchedule, workflow.Schedule)
			assert.Equal(t, tt.expectedNextRun, workflow.NextRun)

			require.Len(t, workflow.Nodes, 1)
			assert.Equal(t, models.NodeTypeTrigger, workflow.Nodes[0].Type)
			assert.Equal(t, tt.expectedTitle, workflow.Nodes[0].Title)
			assert.Equal(t, DefaultTriggerPosition, workflow.Nodes[0].Position)
			assert.Empty(t, workflow.Nodes[0].Connections)
		})
	}
}

func TestWorkflowService_CreateWorkflow_Prepends(t *testing.T) {
	t.Parallel()

	service := newTestService(t)

	require.NoError(t, service.Import(t.Context(), []*models.Workflow{
		testutil.CreateTestWorkflow(testutil.WithWorkflowID("seed-1")),
		testutil.CreateTestWorkflow(testutil.WithWorkflowID("seed-2")),
	}))

	created, err := service.CreateWorkflow(t.Context(), CreateWorkflowRequest{Name: "New", Type: models.WorkflowTypeManual})
	require.NoError(t, err)

	workflows, err := service.ListWorkflows(t.Context(), ListWorkflowsRequest{})
	require.NoError(t, err)
	require.Len(t, workflows, 3)
	assert.Equal(t, []string{created.ID, "seed-1", "seed-2"},
		[]string{workflows[0].ID, workflows[1].ID, workflows[2].ID})
}

func TestWorkflowService_ListWorkflows_StatusFilter(t *testing.T) {
	t.Parallel()

	service := newTestService(t)
	require.NoError(t, service.Import(t.Context(), []*models.Workflow{
		testutil.CreateTestWorkflow(testutil.WithWorkflowID("a"), testutil.WithStatus(models.WorkflowStatusActive)),
		testutil.CreateTestWorkflow(testutil.WithWorkflowID("p"), testutil.WithStatus(models.WorkflowStatusPaused)),
		testutil.CreateTestWorkflow(testutil.WithWorkflowID("d"), testutil.WithStatus(models.WorkflowStatusDraft)),
	}))

	workflows, err := service.ListWorkflows(t.Context(), ListWorkflowsRequest{
		Status: []models.WorkflowStatus{models.WorkflowStatusActive, models.WorkflowStatusPaused},
	})
	require.NoError(t, err)
	require.Len(t, workflows, 2)
	assert.Equal(t, "a", workflows[0].ID)
	assert.Equal(t, "p", workflows[1].ID)

	_, err = service.ListWorkflows(t.Context(), ListWorkflowsRequest{Status: []models.WorkflowStatus{"published"}})
	require.Error(t, err)
	assert.True(t, IsValidationError(err))
}

func TestWorkflowService_FetchAndLookup(t *testing.T) {
	t.Parallel()

	service := newTestService(t)
	require.NoError(t, service.Import(t.Context(), []*models.Workflow{
		testutil.CreateTestWorkflow(testutil.WithWorkflowID("known")),
	}))

	workflow, err := service.FetchByID(t.Context(), "known")
	require.NoError(t, err)
	assert.Equal(t, "known", workflow.ID)

	_, err = service.FetchByID(t.Context(), "unknown")
	require.ErrorIs(t, err, ErrWorkflowNotFound)

	_, ok := service.Lookup(t.Context(), "unknown")
	assert.False(t, ok)

	_, ok = service.Lookup(t.Context(), "")
	assert.False(t, ok)
}

func TestWorkflowService_FirstActive(t *testing.T) {
	t.Parallel()

	service := newTestService(t)

	_, ok := service.FirstActive(t.Context())
	assert.False(t, ok)

	require.NoError(t, service.Import(t.Context(), []*models.Workflow{
		testutil.CreateTestWorkflow(testutil.WithWorkflowID("draft")),
		testutil.CreateTestWorkflow(testutil.WithWorkflowID("active-1"), testutil.WithStatus(models.WorkflowStatusActive)),
		testutil.CreateTestWorkflow(testutil.WithWorkflowID("active-2"), testutil.WithStatus(models.WorkflowStatusActive)),
	}))

	workflow, ok := service.FirstActive(t.Context())
	require.True(t, ok)
	assert.Equal(t, "active-1", workflow.ID)
}

func TestWorkflowService_UpdateWorkflow(t *testing.T) {
	t.Parallel()

	service := newTestService(t)
	require.NoError(t, service.Import(t.Context(), []*models.Workflow{
		testutil.CreateLinearWorkflow("wf", "A", "B"),
	}))

	active := models.WorkflowStatusActive
	updated, err := service.UpdateWorkflow(t.Context(), "wf", UpdateWorkflowRequest{
		Name:   ptr("Renamed"),
		Status: &active,
		Zones:  []string{"Floor 2"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)
	assert.Equal(t, models.WorkflowStatusActive, updated.Status)
	assert.Equal(t, []string{"Floor 2"}, updated.Zones)
	assert.Len(t, updated.Nodes, 2)
	assert.Equal(t, []string{"B"}, updated.Node("A").Connections)

	invalid := models.WorkflowStatus("published")
	_, err = service.UpdateWorkflow(t.Context(), "wf", UpdateWorkflowRequest{Status: &invalid})
	require.ErrorIs(t, err, ErrInvalidStatus)

	_, err = service.UpdateWorkflow(t.Context(), "wf", UpdateWorkflowRequest{Name: ptr("  ")})
	require.ErrorIs(t, err, ErrEmptyName)

	_, err = service.UpdateWorkflow(t.Context(), "missing", UpdateWorkflowRequest{Name: ptr("x")})
	require.ErrorIs(t, err, ErrWorkflowNotFound)
}

func TestWorkflowService_PublishesEvents(t *testing.T) {
	t.Parallel()

	bus := &mocks.MockEventBus{}
	bus.On("Publish", mock.Anything, "wf-1", mocks.EventOfType(events.WorkflowCreatedEvent)).Return(nil).Once()
	bus.On("Publish", mock.Anything, "wf-1", mocks.EventOfType(events.NodeAddedEvent)).Return(nil).Once()
	bus.On("Publish", mock.Anything, "wf-1", mocks.EventOfType(events.ConnectionAddedEvent)).Return(nil).Once()
	bus.On("Publish", mock.Anything, "wf-1", mocks.EventOfType(events.NodeMovedEvent)).
		Return(errors.New("broker down")).Once()

	service := newTestService(t, WithEventPublisher(bus))
	ctx := context.Background()

	workflow, err := service.CreateWorkflow(ctx, CreateWorkflowRequest{Name: "Evented", Type: models.WorkflowTypeManual})
	require.NoError(t, err)

	node, err := service.AddNode(ctx, workflow.ID, NodeSpec{Type: models.NodeTypeAction, Title: "Open Valve"})
	require.NoError(t, err)

	_, err = service.Connect(ctx, workflow.ID, workflow.Nodes[0].ID, node.ID)
	require.NoError(t, err)

	// Duplicate edges do not publish.
	_, err = service.Connect(ctx, workflow.ID, workflow.Nodes[0].ID, node.ID)
	require.NoError(t, err)

	// Publishing failures do not undo the mutation.
	moved, err := service.MoveNode(ctx, workflow.ID, node.ID, models.Position{X: 5, Y: 5})
	require.NoError(t, err)
	assert.Equal(t, models.Position{X: 5, Y: 5}, moved.Position)

	bus.AssertExpectations(t)
}

func TestWorkflowService_HealthCheck(t *testing.T) {
	t.Parallel()

	p := memory.NewPersistence()
	service := NewWorkflow(p)

	message, ok := service.HealthCheck(t.Context())
	assert.True(t, ok)
	assert.Equal(t, "Persistence layer is healthy", message)

	require.NoError(t, p.Close(t.Context()))

	_, ok = service.HealthCheck(t.Context())
	assert.False(t, ok)

	_, ok = NewWorkflow(nil).HealthCheck(t.Context())
	assert.False(t, ok)
}

func TestErrors_Classification(t *testing.T) {
	t.Parallel()

	assert.True(t, IsValidationError(persistence.NewConnectionError("Connect", "wf", "a", "z", persistence.ErrDanglingTarget)))
	assert.True(t, IsValidationError(persistence.ErrSelfLoop))
	assert.False(t, IsValidationError(persistence.ErrCycle))
	assert.True(t, IsConflictError(persistence.ErrCycle))

	err := NewValidationError("AddNode", "INVALID_NODE_TYPE", "bad type", ErrInvalidNodeType)
	assert.Equal(t, "AddNode: bad type", err.Error())
	assert.ErrorIs(t, err, ErrInvalidNodeType)
}

func ptr[T any](v T) *T {
	return &v
}
