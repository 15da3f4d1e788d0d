package enhance

import (
	"context"
	"strings"

	"github.com/BrennerSpear/clarity/pkg/infra"
)

// Heuristic is the zero-cost enhancer used when no model is configured.
// It groups services by shared name prefix and fills in boilerplate
// descriptions by type. It never changes node types: the parsers' image
// heuristics are more reliable than name squinting.
type Heuristic struct{}

// typeDescriptions are the stock descriptions for typed nodes.
var typeDescriptions = map[infra.NodeType]string{
	infra.TypeDatabase: "Persistent datastore",
	infra.TypeCache:    "In-memory cache",
	infra.TypeQueue:    "Message broker",
	infra.TypeStorage:  "Object storage",
	infra.TypeProxy:    "Traffic entry point",
	infra.TypeUI:       "User-facing frontend",
	infra.TypeHelper:   "Supporting sidecar",
	infra.TypeNetwork:  "Shared network",
	infra.TypeVolume:   "Shared volume",
}

// Enhance implements [Enhancer].
func (Heuristic) Enhance(_ context.Context, g *infra.Graph) error {
	prefixes := namePrefixCounts(g)

	var anns []Annotation
	for _, n := range g.Nodes() {
		a := Annotation{ID: n.ID}
		if n.Description == "" {
			a.Description = typeDescriptions[n.Type]
		}
		if n.Group == "" {
			if p := namePrefix(n.ID); p != "" && prefixes[p] >= 2 {
				a.Group = p
			}
		}
		anns = append(anns, a)
	}
	Apply(g, anns)
	return nil
}

// namePrefix returns the id up to the first separator: "auth-api" -> "auth".
func namePrefix(id string) string {
	if i := strings.IndexAny(id, "-_."); i > 0 {
		return id[:i]
	}
	return ""
}

func namePrefixCounts(g *infra.Graph) map[string]int {
	counts := map[string]int{}
	for _, n := range g.Nodes() {
		if p := namePrefix(n.ID); p != "" {
			counts[p]++
		}
	}
	return counts
}
