package layout

import "github.com/BrennerSpear/clarity/pkg/infra"

// Layering maps every node to a dependency-depth layer.
// Layer 0 contains nodes with no dependencies; a node's layer is one past
// the deepest of its dependencies.
type Layering struct {
	// Layers maps node ID to its layer index (>= 0).
	Layers map[string]int

	// CycleBroken reports whether a dependency cycle forced the remaining
	// nodes into a single shared layer. When true, nodes in that layer may
	// not reflect true dependency order.
	CycleBroken bool

	// Depth is the number of distinct layers (max layer + 1), 0 for an
	// empty graph.
	Depth int
}

// AssignLayers computes a dependency-depth layer for every node.
//
// # Algorithm
//
// AssignLayers runs Kahn-style rounds: each round collects every node
// whose entire dependency set is already layered (or empty), assigns
// those nodes the current round number, and increments the round. Edge
// direction is interpreted as "From depends on To", so leaves of the
// dependency tree land in layer 0 and dependents stack above them.
//
// # Cycles
//
// If a round finds no placeable node while unplaced nodes remain, the
// graph has a cycle. All remaining nodes are force-assigned to the
// current layer and CycleBroken is set. This trades fidelity for
// totality: layout always succeeds, but mutually-dependent nodes share a
// layer without a resolved order.
//
// # Performance
//
// Worst case O(V²+VE) over the rounds; dependency graphs of
// infrastructure services are small enough that this never matters.
func AssignLayers(g *infra.Graph) Layering {
	ids := g.NodeIDs()
	layers := make(map[string]int, len(ids))
	remaining := make(map[string]bool, len(ids))
	for _, id := range ids {
		remaining[id] = true
	}

	result := Layering{Layers: layers}

	round := 0
	for len(remaining) > 0 {
		var ready []string
		for _, id := range ids {
			if !remaining[id] {
				continue
			}
			placeable := true
			for _, dep := range g.Dependencies(id) {
				if remaining[dep] {
					placeable = false
					break
				}
			}
			if placeable {
				ready = append(ready, id)
			}
		}

		if len(ready) == 0 {
			// Cycle: force everything left into this layer and stop.
			for _, id := range ids {
				if remaining[id] {
					layers[id] = round
				}
			}
			result.CycleBroken = true
			result.Depth = round + 1
			return result
		}

		for _, id := range ready {
			layers[id] = round
			delete(remaining, id)
		}
		round++
	}

	result.Depth = round
	return result
}
