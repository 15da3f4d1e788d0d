package infra

import (
	"errors"
	"fmt"
	"slices"
)

var (
	// ErrInvalidNodeID is returned by [Graph.AddNode] when the node ID is
	// empty. All nodes must have non-empty identifiers.
	ErrInvalidNodeID = errors.New("node ID must not be empty")

	// ErrDuplicateNodeID is returned by [Graph.AddNode] when a node with the
	// same ID already exists in the graph. Node IDs must be unique.
	ErrDuplicateNodeID = errors.New("duplicate node ID")

	// ErrUnknownSourceNode is returned by [Graph.AddEdge] when the From node
	// does not exist in the graph.
	ErrUnknownSourceNode = errors.New("unknown source node")

	// ErrUnknownTargetNode is returned by [Graph.AddEdge] when the To node
	// does not exist in the graph.
	ErrUnknownTargetNode = errors.New("unknown target node")

	// ErrDanglingEdge is returned by [Graph.Validate] when an edge references
	// a node that doesn't exist. This indicates an upstream graph-construction
	// bug and must be rejected before layout runs.
	ErrDanglingEdge = errors.New("edge references unknown node")
)

// Graph is the in-memory dependency graph of infrastructure services.
// Nodes are indexed by ID with adjacency lists in both directions, so
// Dependencies and Dependents run in O(1).
//
// Unlike a strict DAG, cycles are permitted: the layering engine breaks
// them during layout rather than rejecting the graph.
//
// The zero value is not usable - use New to create a Graph.
// Graph is not safe for concurrent mutation without external synchronization.
type Graph struct {
	nodes    map[string]*Node
	order    []string // insertion order for deterministic iteration
	edges    []Edge
	outgoing map[string][]string // nodeID -> dependency IDs
	incoming map[string][]string // nodeID -> dependent IDs
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		nodes:    make(map[string]*Node),
		outgoing: make(map[string][]string),
		incoming: make(map[string][]string),
	}
}

// AddNode adds a node to the graph.
// Returns ErrInvalidNodeID if the node ID is empty, or ErrDuplicateNodeID
// if a node with the same ID already exists.
func (g *Graph) AddNode(n Node) error {
	if n.ID == "" {
		return ErrInvalidNodeID
	}
	if _, exists := g.nodes[n.ID]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateNodeID, n.ID)
	}
	node := &n
	g.nodes[node.ID] = node
	g.order = append(g.order, node.ID)
	return nil
}

// AddEdge adds a directed edge between two existing nodes.
// Returns ErrUnknownSourceNode or ErrUnknownTargetNode if either endpoint
// is missing. Self-edges and parallel edges are allowed at this level;
// the grouping preprocessor de-duplicates parallel edges when asked to.
func (g *Graph) AddEdge(e Edge) error {
	if _, ok := g.nodes[e.From]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownSourceNode, e.From)
	}
	if _, ok := g.nodes[e.To]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTargetNode, e.To)
	}
	g.edges = append(g.edges, e)
	g.outgoing[e.From] = append(g.outgoing[e.From], e.To)
	g.incoming[e.To] = append(g.incoming[e.To], e.From)
	return nil
}

// Node returns the node with the given ID and true, or a zero node and
// false if not found.
func (g *Graph) Node(id string) (Node, bool) {
	n, ok := g.nodes[id]
	if !ok {
		return Node{}, false
	}
	return *n, true
}

// Nodes returns all nodes in insertion order.
// The returned slice is a copy; modifications do not affect the graph.
func (g *Graph) Nodes() []Node {
	nodes := make([]Node, 0, len(g.order))
	for _, id := range g.order {
		nodes = append(nodes, *g.nodes[id])
	}
	return nodes
}

// NodeIDs returns all node IDs in insertion order.
func (g *Graph) NodeIDs() []string { return slices.Clone(g.order) }

// Edges returns a copy of all edges in insertion order.
func (g *Graph) Edges() []Edge { return slices.Clone(g.edges) }

// NodeCount returns the number of nodes in the graph.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of edges in the graph.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// Dependencies returns the IDs of nodes this node depends on (outgoing edges).
// The returned slice should not be modified - use it as a read-only view.
func (g *Graph) Dependencies(id string) []string { return g.outgoing[id] }

// Dependents returns the IDs of nodes depending on this node (incoming edges).
// The returned slice should not be modified - use it as a read-only view.
func (g *Graph) Dependents(id string) []string { return g.incoming[id] }

// OutDegree returns the number of outgoing edges from the node.
func (g *Graph) OutDegree(id string) int { return len(g.outgoing[id]) }

// InDegree returns the number of incoming edges to the node.
func (g *Graph) InDegree(id string) int { return len(g.incoming[id]) }

// Degree returns the total number of edges touching the node.
// Used by the sizing strategy to grow highly-connected nodes.
func (g *Graph) Degree(id string) int {
	return len(g.outgoing[id]) + len(g.incoming[id])
}

// SetNodeType updates the type of an existing node.
// Returns false if the node does not exist.
func (g *Graph) SetNodeType(id string, t NodeType) bool {
	n, ok := g.nodes[id]
	if !ok {
		return false
	}
	n.Type = t
	return true
}

// Annotate updates the description and group of an existing node.
// Empty values leave the current field unchanged. Returns false if the
// node does not exist. Used by the enhancement step.
func (g *Graph) Annotate(id, description, group string) bool {
	n, ok := g.nodes[id]
	if !ok {
		return false
	}
	if description != "" {
		n.Description = description
	}
	if group != "" {
		n.Group = group
	}
	return true
}

// Validate checks graph integrity and returns nil if valid.
// It verifies that every edge references existing nodes. A dangling edge
// indicates an upstream graph-construction bug, so it fails loudly here
// rather than being silently dropped during layout.
func (g *Graph) Validate() error {
	for _, e := range g.edges {
		if _, ok := g.nodes[e.From]; !ok {
			return fmt.Errorf("%w: %s -> %s (missing %s)", ErrDanglingEdge, e.From, e.To, e.From)
		}
		if _, ok := g.nodes[e.To]; !ok {
			return fmt.Errorf("%w: %s -> %s (missing %s)", ErrDanglingEdge, e.From, e.To, e.To)
		}
	}
	return nil
}
