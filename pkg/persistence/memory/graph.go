package memory

import (
	"errors"
	"slices"

	"github.com/facilityops/flowdesk/pkg/models"
	"github.com/facilityops/flowdesk/pkg/persistence"
)

var errClosed = errors.New("memory persistence is closed")

// graph indexes one workflow. Nodes keep their public Connections slices; the
// adjacency sets mirror them for constant time edge lookups.
type graph struct {
	workflow *models.Workflow
	nodes    map[string]*models.WorkflowNode
	outgoing map[string]map[string]struct{}
	incoming map[string]map[string]struct{}
}

func newGraph(workflow *models.Workflow) *graph {
	g := &graph{
		workflow: workflow,
		nodes:    make(map[string]*models.WorkflowNode, len(workflow.Nodes)),
		outgoing: make(map[string]map[string]struct{}),
		incoming: make(map[string]map[string]struct{}),
	}

	// Node ids are unique and connections are ordered sets: the first node
	// with an id is kept and repeated targets are dropped.
	nodes := make([]*models.WorkflowNode, 0, len(workflow.Nodes))

	for _, node := range workflow.Nodes {
		if _, exists := g.nodes[node.ID]; exists {
			continue
		}

		connections := make([]string, 0, len(node.Connections))
		for _, target := range node.Connections {
			if g.hasEdge(node.ID, target) {
				continue
			}

			connections = append(connections, target)
			g.index(node.ID, target)
		}

		node.Connections = connections
		g.nodes[node.ID] = node
		nodes = append(nodes, node)
	}

	workflow.Nodes = nodes

	return g
}

func (g *graph) index(sourceID, targetID string) {
	if g.outgoing[sourceID] == nil {
		g.outgoing[sourceID] = make(map[string]struct{})
	}

	if g.incoming[targetID] == nil {
		g.incoming[targetID] = make(map[string]struct{})
	}

	g.outgoing[sourceID][targetID] = struct{}{}
	g.incoming[targetID][sourceID] = struct{}{}
}

func (g *graph) hasEdge(sourceID, targetID string) bool {
	_, ok := g.outgoing[sourceID][targetID]

	return ok
}

func (g *graph) saveNode(node *models.WorkflowNode) {
	if existing, ok := g.nodes[node.ID]; ok {
		existing.Title = node.Title
		existing.Params = node.Params
		existing.Position = node.Position

		return
	}

	if node.Connections == nil {
		node.Connections = []string{}
	}

	g.workflow.Nodes = append(g.workflow.Nodes, node)
	g.nodes[node.ID] = node

	for _, target := range node.Connections {
		g.index(node.ID, target)
	}
}

func (g *graph) connect(sourceID, targetID string) error {
	source, ok := g.nodes[sourceID]
	if !ok {
		return persistence.ErrNodeNotFound
	}

	if sourceID == targetID {
		return persistence.ErrSelfLoop
	}

	if _, ok := g.nodes[targetID]; !ok {
		return persistence.ErrDanglingTarget
	}

	if g.hasEdge(sourceID, targetID) {
		return nil
	}

	source.Connections = append(source.Connections, targetID)
	g.index(sourceID, targetID)

	return nil
}

func (g *graph) disconnect(sourceID, targetID string) error {
	source, ok := g.nodes[sourceID]
	if !ok {
		return persistence.ErrNodeNotFound
	}

	if !g.hasEdge(sourceID, targetID) {
		return persistence.ErrConnectionNotFound
	}

	delete(g.outgoing[sourceID], targetID)
	delete(g.incoming[targetID], sourceID)

	source.Connections = slices.DeleteFunc(source.Connections, func(id string) bool {
		return id == targetID
	})

	return nil
}

// sources returns the ids of nodes with an edge into targetID, in node order.
func (g *graph) sources(targetID string) []string {
	in := g.incoming[targetID]
	result := make([]string, 0, len(in))

	for _, node := range g.workflow.Nodes {
		if _, ok := in[node.ID]; ok && g.nodes[node.ID] == node {
			result = append(result, node.ID)
		}
	}

	return result
}

func (g *graph) reachable(fromID, toID string) bool {
	if fromID == toID {
		return true
	}

	visited := map[string]bool{fromID: true}
	queue := []string{fromID}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for next := range g.outgoing[current] {
			if next == toID {
				return true
			}

			if !visited[next] {
				visited[next] = true
				queue = append(queue, next)
			}
		}
	}

	return false
}
