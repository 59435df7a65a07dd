// Package projection maps a workflow and a node selection onto the node and
// edge records consumed by the canvas renderer.
package projection

import (
	"maps"

	"github.com/facilityops/flowdesk/pkg/editor"
	"github.com/facilityops/flowdesk/pkg/models"
)

// Node is a renderable node. Type selects the visual template.
type Node struct {
	ID       string          `json:"id"`
	Type     models.NodeType `json:"type"`
	Position models.Position `json:"position"`
	Data     NodeData        `json:"data"`
}

// NodeData is the payload rendered inside a node.
type NodeData struct {
	Title      string         `json:"title"`
	Params     map[string]any `json:"params"`
	IsSelected bool           `json:"isSelected"`
}

// Edge is a renderable directed edge.
type Edge struct {
	ID       string `json:"id"`
	Source   string `json:"source"`
	Target   string `json:"target"`
	Animated bool   `json:"animated"`
}

// Graph is the full render payload for one workflow.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// EdgeID is the synthesized id of the edge sourceID -> targetID.
func EdgeID(sourceID, targetID string) string {
	return sourceID + "-" + targetID
}

// Project builds the render payload. It keeps no state and never mutates w.
// Connections to unknown nodes are still emitted; renderers drop them.
func Project(w *models.Workflow, selectedNodeID string) Graph {
	graph := Graph{
		Nodes: []Node{},
		Edges: []Edge{},
	}

	if w == nil {
		return graph
	}

	animated := w.Status == models.WorkflowStatusActive

	for _, node := range w.Nodes {
		if node == nil {
			continue
		}

		params := maps.Clone(node.Params)
		if params == nil {
			params = map[string]any{}
		}

		graph.Nodes = append(graph.Nodes, Node{
			ID:       node.ID,
			Type:     node.Type,
			Position: node.Position,
			Data: NodeData{
				Title:      node.Title,
				Params:     params,
				IsSelected: selectedNodeID != "" && node.ID == selectedNodeID,
			},
		})

		for _, target := range node.Connections {
			graph.Edges = append(graph.Edges, Edge{
				ID:       EdgeID(node.ID, target),
				Source:   node.ID,
				Target:   target,
				Animated: animated,
			})
		}
	}

	return graph
}

// Canvas is the graph together with the gestures the renderer may enable.
type Canvas struct {
	WorkflowID   string              `json:"workflowId,omitempty"`
	Graph        Graph               `json:"graph"`
	Mode         editor.Mode         `json:"mode"`
	Capabilities editor.Capabilities `json:"capabilities"`
}

// NewCanvas projects w for a renderer running in the given mode.
func NewCanvas(w *models.Workflow, selectedNodeID string, mode editor.Mode) Canvas {
	canvas := Canvas{
		Graph:        Project(w, selectedNodeID),
		Mode:         mode,
		Capabilities: mode.Capabilities(),
	}

	if w != nil {
		canvas.WorkflowID = w.ID
	}

	return canvas
}
