package enhance

import (
	"context"

	"github.com/BrennerSpear/clarity/pkg/infra"
)

// Annotation is one node's enhancement result.
type Annotation struct {
	ID          string `json:"id"`
	Type        string `json:"type,omitempty"`
	Description string `json:"description,omitempty"`
	Group       string `json:"group,omitempty"`
}

// Enhancer annotates graph nodes with types, descriptions, and groups.
// Implementations mutate the graph in place and must leave it valid.
type Enhancer interface {
	Enhance(ctx context.Context, g *infra.Graph) error
}

// validTypes is the closed set an annotation may assign. Anything else is
// dropped rather than propagated into the layout engine.
var validTypes = map[infra.NodeType]bool{
	infra.TypeService:  true,
	infra.TypeDatabase: true,
	infra.TypeCache:    true,
	infra.TypeQueue:    true,
	infra.TypeStorage:  true,
	infra.TypeProxy:    true,
	infra.TypeUI:       true,
	infra.TypeHelper:   true,
}

// Apply writes annotations onto the graph. Unknown node ids and invalid
// types are skipped silently: enhancement is advisory and a stale or
// hallucinated id must never fail the run. Returns the number of nodes
// that were actually changed.
func Apply(g *infra.Graph, anns []Annotation) int {
	applied := 0
	for _, a := range anns {
		n, ok := g.Node(a.ID)
		if !ok {
			continue
		}
		changed := false
		if t := infra.NodeType(a.Type); validTypes[t] && t != n.Type {
			g.SetNodeType(a.ID, t)
			changed = true
		}
		if a.Description != "" || a.Group != "" {
			desc := a.Description
			if desc == "" {
				desc = n.Description
			}
			group := a.Group
			if group == "" {
				group = n.Group
			}
			if desc != n.Description || group != n.Group {
				g.Annotate(a.ID, desc, group)
				changed = true
			}
		}
		if changed {
			applied++
		}
	}
	return applied
}
