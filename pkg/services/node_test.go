package services

import (
	"testing"

	"github.com/facilityops/flowdesk/pkg/mocks"
	"github.com/facilityops/flowdesk/pkg/models"
	"github.com/facilityops/flowdesk/pkg/persistence"
	"github.com/facilityops/flowdesk/pkg/persistence/memory"
	"github.com/facilityops/flowdesk/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestWorkflowService_AddNode_Placement(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		nodes    []*models.WorkflowNode
		expected models.Position
	}{
		{
			name:     "empty workflow uses default position",
			nodes:    []*models.WorkflowNode{},
			expected: models.Position{X: 400, Y: 300},
		},
		{
			name: "two nodes place below their centroid",
			nodes: []*models.WorkflowNode{
				testutil.CreateTestNode(testutil.WithNodeID("a"), testutil.WithPosition(100, 100)),
				testutil.CreateTestNode(testutil.WithNodeID("b"), testutil.WithPosition(300, 100)),
			},
			expected: models.Position{X: 200, Y: 250},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			service := newTestService(t)
			require.NoError(t, service.Import(t.Context(), []*models.Workflow{
				testutil.CreateTestWorkflow(testutil.WithWorkflowID("wf"), testutil.WithNodes(tt.nodes...)),
			}))

			node, err := service.AddNode(t.Context(), "wf", NodeSpec{
				Type:   models.NodeTypeAction,
				Title:  "Send Alert",
				Params: map[string]any{"channel": "sms"},
			})
			require.NoError(t, err)
			require.NotNil(t, node)

			assert.Equal(t, tt.expected, node.Position)
			assert.Empty(t, node.Connections)
			assert.Equal(t, "sms", node.Params["channel"])

			workflow, err := service.FetchByID(t.Context(), "wf")
			require.NoError(t, err)
			require.Len(t, workflow.Nodes, len(tt.nodes)+1)
			assert.Equal(t, node.ID, workflow.Nodes[len(workflow.Nodes)-1].ID)
		})
	}
}

func TestWorkflowService_AddNode_UnknownWorkflow(t *testing.T) {
	t.Parallel()

	service := newTestService(t)

	node, err := service.AddNode(t.Context(), "missing", NodeSpec{Type: models.NodeTypeAction, Title: "Noop"})
	require.NoError(t, err)
	assert.Nil(t, node)

	workflows, err := service.ListWorkflows(t.Context(), ListWorkflowsRequest{})
	require.NoError(t, err)
	assert.Empty(t, workflows)
}

func TestWorkflowService_AddNode_InvalidType(t *testing.T) {
	t.Parallel()

	service := newTestService(t)

	_, err := service.AddNode(t.Context(), "wf", NodeSpec{Type: "loop", Title: "Loop"})
	require.ErrorIs(t, err, ErrInvalidNodeType)
	assert.True(t, IsValidationError(err))
}

func TestWorkflowService_AddNode_TimeOrderedIDs(t *testing.T) {
	t.Parallel()

	service := NewWorkflow(memory.NewPersistence())
	require.NoError(t, service.Import(t.Context(), []*models.Workflow{
		testutil.CreateTestWorkflow(testutil.WithWorkflowID("wf")),
	}))

	first, err := service.AddNode(t.Context(), "wf", NodeSpec{Type: models.NodeTypeCondition, Title: "First"})
	require.NoError(t, err)

	second, err := service.AddNode(t.Context(), "wf", NodeSpec{Type: models.NodeTypeAction, Title: "Second"})
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
	assert.Less(t, first.ID, second.ID)
}

func TestWorkflowService_Connect(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		acyclic     bool
		source      string
		target      string
		expectedErr error
		expected    []string
	}{
		{
			name:     "new edge is appended",
			source:   "C",
			target:   "A",
			expected: []string{"A"},
		},
		{
			name:     "existing edge is a no-op",
			source:   "A",
			target:   "B",
			expected: []string{"B"},
		},
		{
			name:        "dangling target is rejected",
			source:      "A",
			target:      "Z",
			expectedErr: persistence.ErrDanglingTarget,
		},
		{
			name:        "self loop is rejected",
			source:      "B",
			target:      "B",
			expectedErr: persistence.ErrSelfLoop,
		},
		{
			name:        "unknown source",
			source:      "Z",
			target:      "A",
			expectedErr: persistence.ErrNodeNotFound,
		},
		{
			name:        "cycle rejected when acyclic",
			acyclic:     true,
			source:      "C",
			target:      "A",
			expectedErr: persistence.ErrCycle,
		},
		{
			name:     "forward edge accepted when acyclic",
			acyclic:  true,
			source:   "A",
			target:   "C",
			expected: []string{"B", "C"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var opts []Option
			if tt.acyclic {
				opts = append(opts, WithAcyclicGraphs())
			}

			service := newTestService(t, opts...)
			require.NoError(t, service.Import(t.Context(), []*models.Workflow{
				testutil.CreateLinearWorkflow("wf", "A", "B", "C"),
			}))

			node, err := service.Connect(t.Context(), "wf", tt.source, tt.target)
			if tt.expectedErr != nil {
				require.ErrorIs(t, err, tt.expectedErr)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.expected, node.Connections)

			stored, err := service.GetNode(t.Context(), "wf", tt.source)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, stored.Connections)
		})
	}
}

func TestWorkflowService_Connect_UnknownWorkflow(t *testing.T) {
	t.Parallel()

	service := newTestService(t)

	_, err := service.Connect(t.Context(), "missing", "A", "B")
	require.ErrorIs(t, err, ErrWorkflowNotFound)
}

func TestWorkflowService_Connect_ExistingEdgeInsideCycle(t *testing.T) {
	t.Parallel()

	bus := &mocks.MockEventBus{}
	service := newTestService(t, WithAcyclicGraphs(), WithEventPublisher(bus))
	require.NoError(t, service.Import(t.Context(), []*models.Workflow{
		testutil.CreateTestWorkflow(
			testutil.WithWorkflowID("wf"),
			testutil.WithNodes(
				testutil.CreateTestNode(testutil.WithNodeID("A"), testutil.WithConnections("B")),
				testutil.CreateTestNode(testutil.WithNodeID("B"), testutil.WithConnections("A")),
			),
		),
	}))

	node, err := service.Connect(t.Context(), "wf", "A", "B")
	require.NoError(t, err)
	assert.Equal(t, []string{"B"}, node.Connections)

	_, err = service.Connect(t.Context(), "wf", "B", "A")
	require.NoError(t, err)

	bus.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
}

func TestWorkflowService_Disconnect(t *testing.T) {
	t.Parallel()

	service := newTestService(t)
	require.NoError(t, service.Import(t.Context(), []*models.Workflow{
		testutil.CreateLinearWorkflow("wf", "A", "B", "C"),
	}))

	incoming, err := service.Incoming(t.Context(), "wf", "B")
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, incoming)

	node, err := service.Disconnect(t.Context(), "wf", "A", "B")
	require.NoError(t, err)
	assert.Empty(t, node.Connections)

	incoming, err = service.Incoming(t.Context(), "wf", "B")
	require.NoError(t, err)
	assert.Empty(t, incoming)

	_, err = service.Disconnect(t.Context(), "wf", "A", "B")
	require.ErrorIs(t, err, ErrConnectionNotFound)
	assert.True(t, persistence.IsConnectionNotFound(err))
}

func TestWorkflowService_MoveNode(t *testing.T) {
	t.Parallel()

	service := newTestService(t)
	require.NoError(t, service.Import(t.Context(), []*models.Workflow{
		testutil.CreateLinearWorkflow("wf", "A", "B"),
	}))

	moved, err := service.MoveNode(t.Context(), "wf", "B", models.Position{X: -40, Y: 12.5})
	require.NoError(t, err)
	assert.Equal(t, models.Position{X: -40, Y: 12.5}, moved.Position)

	workflow, err := service.FetchByID(t.Context(), "wf")
	require.NoError(t, err)
	assert.Equal(t, models.Position{X: -40, Y: 12.5}, workflow.Node("B").Position)
	assert.Equal(t, []string{"B"}, workflow.Node("A").Connections)

	_, err = service.MoveNode(t.Context(), "wf", "Z", models.Position{})
	require.ErrorIs(t, err, ErrNodeNotFound)
}

func TestWorkflowService_UpdateNode(t *testing.T) {
	t.Parallel()

	service := newTestService(t)
	require.NoError(t, service.Import(t.Context(), []*models.Workflow{
		testutil.CreateLinearWorkflow("wf", "A", "B"),
	}))

	updated, err := service.UpdateNode(t.Context(), "wf", "A", UpdateNodeRequest{
		Title:  ptr("Door Opened"),
		Params: map[string]any{"door": "north"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Door Opened", updated.Title)
	assert.Equal(t, map[string]any{"door": "north"}, updated.Params)
	assert.Equal(t, models.NodeTypeTrigger, updated.Type)
	assert.Equal(t, []string{"B"}, updated.Connections)

	_, err = service.UpdateNode(t.Context(), "wf", "A", UpdateNodeRequest{Title: ptr("")})
	require.ErrorIs(t, err, ErrEmptyTitle)

	_, err = service.UpdateNode(t.Context(), "wf", "Z", UpdateNodeRequest{Title: ptr("x")})
	require.ErrorIs(t, err, ErrNodeNotFound)

	_, err = service.UpdateNode(t.Context(), "missing", "A", UpdateNodeRequest{Title: ptr("x")})
	require.ErrorIs(t, err, ErrWorkflowNotFound)
}

func TestWorkflowService_ReturnsCopies(t *testing.T) {
	t.Parallel()

	service := newTestService(t)
	require.NoError(t, service.Import(t.Context(), []*models.Workflow{
		testutil.CreateLinearWorkflow("wf", "A", "B"),
	}))

	workflow, err := service.FetchByID(t.Context(), "wf")
	require.NoError(t, err)

	workflow.Nodes[0].Title = "mutated"
	workflow.Nodes[0].Connections = append(workflow.Nodes[0].Connections, "Z")

	stored, err := service.FetchByID(t.Context(), "wf")
	require.NoError(t, err)
	assert.NotEqual(t, "mutated", stored.Node("A").Title)
	assert.Equal(t, []string{"B"}, stored.Node("A").Connections)
}
