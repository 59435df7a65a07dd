// Package events defines change notifications emitted when the workflow collection is mutated.
package events

import (
	"time"

	"github.com/facilityops/flowdesk/pkg/models"
	"github.com/google/uuid"
)

type EventType string

// Topic carries every workflow graph change.
const Topic = "flowdesk.workflow.changes"

const EventMetadataKey = "key"
const EventTypeMetadataKey = "event_type"

const (
	WorkflowCreatedEvent   EventType = "workflow.created"
	WorkflowUpdatedEvent   EventType = "workflow.updated"
	NodeAddedEvent         EventType = "node.added"
	NodeUpdatedEvent       EventType = "node.updated"
	NodeMovedEvent         EventType = "node.moved"
	ConnectionAddedEvent   EventType = "connection.added"
	ConnectionRemovedEvent EventType = "connection.removed"
)

type BaseEvent struct {
	ID         string         `json:"id"`
	Type       EventType      `json:"type"`
	Timestamp  time.Time      `json:"timestamp"`
	WorkflowID string         `json:"workflow_id"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// NewBaseEvent stamps a new event for workflowID.
func NewBaseEvent(eventType EventType, workflowID string) BaseEvent {
	return BaseEvent{
		ID:         uuid.New().String(),
		Type:       eventType,
		Timestamp:  time.Now().UTC(),
		WorkflowID: workflowID,
	}
}

type WorkflowCreated struct {
	BaseEvent

	Workflow *models.Workflow `json:"workflow"`
}

func (e WorkflowCreated) GetType() EventType {
	return WorkflowCreatedEvent
}

type WorkflowUpdated struct {
	BaseEvent

	Workflow *models.Workflow `json:"workflow"`
}

func (e WorkflowUpdated) GetType() EventType {
	return WorkflowUpdatedEvent
}

type NodeAdded struct {
	BaseEvent

	Node *models.WorkflowNode `json:"node"`
}

func (e NodeAdded) GetType() EventType {
	return NodeAddedEvent
}

type NodeUpdated struct {
	BaseEvent

	Node *models.WorkflowNode `json:"node"`
}

func (e NodeUpdated) GetType() EventType {
	return NodeUpdatedEvent
}

type NodeMoved struct {
	BaseEvent

	NodeID   string          `json:"node_id"`
	Position models.Position `json:"position"`
}

func (e NodeMoved) GetType() EventType {
	return NodeMovedEvent
}

type ConnectionAdded struct {
	BaseEvent

	SourceID string `json:"source_id"`
	TargetID string `json:"target_id"`
}

func (e ConnectionAdded) GetType() EventType {
	return ConnectionAddedEvent
}

type ConnectionRemoved struct {
	BaseEvent

	SourceID string `json:"source_id"`
	TargetID string `json:"target_id"`
}

func (e ConnectionRemoved) GetType() EventType {
	return ConnectionRemovedEvent
}

// New returns an empty event value for eventType, ready to be decoded into.
func New(eventType EventType) (any, bool) {
	switch eventType {
	case WorkflowCreatedEvent:
		return &WorkflowCreated{}, true
	case WorkflowUpdatedEvent:
		return &WorkflowUpdated{}, true
	case NodeAddedEvent:
		return &NodeAdded{}, true
	case NodeUpdatedEvent:
		return &NodeUpdated{}, true
	case NodeMovedEvent:
		return &NodeMoved{}, true
	case ConnectionAddedEvent:
		return &ConnectionAdded{}, true
	case ConnectionRemovedEvent:
		return &ConnectionRemoved{}, true
	default:
		return nil, false
	}
}
