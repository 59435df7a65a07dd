package events

import (
	"encoding/json"
	"testing"

	"github.com/facilityops/flowdesk/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBaseEvent(t *testing.T) {
	t.Parallel()

	first := NewBaseEvent(NodeMovedEvent, "wf-1")
	second := NewBaseEvent(NodeMovedEvent, "wf-1")

	assert.Equal(t, NodeMovedEvent, first.Type)
	assert.Equal(t, "wf-1", first.WorkflowID)
	assert.NotEmpty(t, first.ID)
	assert.NotEqual(t, first.ID, second.ID)
	assert.False(t, first.Timestamp.IsZero())
}

func TestNew(t *testing.T) {
	t.Parallel()

	tests := []struct {
		eventType EventType
		expected  any
	}{
		{WorkflowCreatedEvent, &WorkflowCreated{}},
		{WorkflowUpdatedEvent, &WorkflowUpdated{}},
		{NodeAddedEvent, &NodeAdded{}},
		{NodeUpdatedEvent, &NodeUpdated{}},
		{NodeMovedEvent, &NodeMoved{}},
		{ConnectionAddedEvent, &ConnectionAdded{}},
		{ConnectionRemovedEvent, &ConnectionRemoved{}},
	}

	for _, tt := range tests {
		t.Run(string(tt.eventType), func(t *testing.T) {
			t.Parallel()

			event, ok := New(tt.eventType)
			require.True(t, ok)
			assert.IsType(t, tt.expected, event)
		})
	}

	_, ok := New("workflow.deleted")
	assert.False(t, ok)
}

func TestNodeMoved_DecodesIntoNew(t *testing.T) {
	t.Parallel()

	moved := NodeMoved{
		BaseEvent: NewBaseEvent(NodeMovedEvent, "wf-1"),
		NodeID:    "node-1",
		Position:  models.Position{X: 120, Y: 340},
	}

	data, err := json.Marshal(moved)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"workflow_id":"wf-1"`)

	event, ok := New(moved.GetType())
	require.True(t, ok)
	require.NoError(t, json.Unmarshal(data, event))

	decoded, ok := event.(*NodeMoved)
	require.True(t, ok)
	assert.Equal(t, "node-1", decoded.NodeID)
	assert.Equal(t, models.Position{X: 120, Y: 340}, decoded.Position)
	assert.Equal(t, moved.ID, decoded.ID)
}
