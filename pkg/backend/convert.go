package backend

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/BrennerSpear/clarity/pkg/infra"
	"github.com/BrennerSpear/clarity/pkg/layout"
)

// ============================================================================
// Partition assignment
// ============================================================================

// partitionIndex fixes the left-to-right slot for each semantic role.
// Producers sit with the API tier and consumers with the workers: both are
// services whose distinguishing trait is edge direction, not placement.
var partitionIndex = map[layout.Role]int{
	layout.RoleEntry:    0,
	layout.RoleGateway:  1,
	layout.RoleUI:       2,
	layout.RoleAPI:      3,
	layout.RoleProducer: 3,
	layout.RoleHelper:   3,
	layout.RoleWorker:   4,
	layout.RoleConsumer: 4,
	layout.RoleQueue:    5,
	layout.RoleData:     6,
}

// ============================================================================
// Options
// ============================================================================

// ConvertOptions configures the graph conversion.
type ConvertOptions struct {
	// Partitioned emits partition and port hints so the backend produces a
	// role-ordered layered diagram. When false the backend is free to place
	// nodes wherever its objective function likes.
	Partitioned bool

	// Sizer computes node dimensions. Defaults to [layout.ConnectionSizer].
	Sizer layout.Sizer

	// Rules override the role classification table. Defaults to
	// [layout.DefaultRules].
	Rules []layout.Rule
}

func (o *ConvertOptions) setDefaults() {
	if o.Sizer == nil {
		o.Sizer = layout.ConnectionSizer{}
	}
	if o.Rules == nil {
		o.Rules = layout.DefaultRules
	}
}

// ============================================================================
// Conversion
// ============================================================================

// Convert translates an infrastructure graph into the backend input format.
//
// Each node is sized by the configured strategy and then scaled by its
// resource tier, so a 2-CPU database draws larger than a 100m sidecar.
// With partitioning enabled, nodes get a partition slot from their semantic
// role and every edge endpoint is pinned to a port: south-to-north for edges
// within a partition, east-to-west for edges that cross partitions (west-to-
// east when the edge points right-to-left). Nodes that received at least one
// port carry the FIXED_SIDE constraint.
//
// Port identifiers follow the pattern "{nodeID}-{side}-{edgeIndex}", which
// keeps them unique without any extra bookkeeping: the edge index already is.
func Convert(g *infra.Graph, opts ConvertOptions) (Graph, error) {
	opts.setDefaults()

	if err := g.Validate(); err != nil {
		return Graph{}, fmt.Errorf("convert: %w", err)
	}

	roles := make(map[string]layout.Role, g.NodeCount())
	index := make(map[string]int, g.NodeCount())
	nodes := make([]Node, 0, g.NodeCount())

	for i, n := range g.Nodes() {
		role := layout.ClassifyWith(opts.Rules, n)
		roles[n.ID] = role

		w, h := opts.Sizer.Size(layout.SizeContext{
			Type:        n.Type,
			Connections: g.Degree(n.ID),
		})
		scale := resourceScale(n.Resources)

		node := Node{
			ID:     n.ID,
			Label:  n.DisplayName(),
			Width:  w * scale,
			Height: h * scale,
		}
		if opts.Partitioned {
			node.Partition = partitionIndex[role]
			node.HasPartition = true
		}
		index[n.ID] = i
		nodes = append(nodes, node)
	}

	edges := make([]Edge, 0, g.EdgeCount())
	for i, e := range g.Edges() {
		edge := Edge{
			ID:     fmt.Sprintf("%s--%s-%d", e.From, e.To, i),
			Source: e.From,
			Target: e.To,
		}
		if opts.Partitioned {
			srcSide, dstSide := portSides(partitionIndex[roles[e.From]], partitionIndex[roles[e.To]])
			edge.SourcePort = attachPort(&nodes[index[e.From]], srcSide, i)
			edge.TargetPort = attachPort(&nodes[index[e.To]], dstSide, i)
		}
		edges = append(edges, edge)
	}

	return Graph{Nodes: nodes, Edges: edges, Partitioned: opts.Partitioned}, nil
}

// portSides picks the boundary sides for an edge given the endpoint
// partitions. Same-partition edges run vertically; cross-partition edges run
// horizontally toward the higher partition.
func portSides(src, dst int) (PortSide, PortSide) {
	switch {
	case src == dst:
		return PortSouth, PortNorth
	case src < dst:
		return PortEast, PortWest
	default:
		return PortWest, PortEast
	}
}

// attachPort adds a port on the given side of the node and returns its ID.
func attachPort(n *Node, side PortSide, edgeIndex int) string {
	id := fmt.Sprintf("%s-%s-%d", n.ID, strings.ToLower(string(side)), edgeIndex)
	n.Ports = append(n.Ports, Port{ID: id, Side: side})
	n.FixedSides = true
	return id
}

// ============================================================================
// Resource tiers
// ============================================================================

// Scale factors per resource tier. Tier boundaries sit at the request sizes
// infrastructure manifests actually use: half a core and half a gig mark the
// step from sidecar to service, two of either marks a heavyweight.
const (
	scaleSmall  = 1.0
	scaleMedium = 1.1
	scaleLarge  = 1.25
	scaleXLarge = 1.4
)

// resourceScale maps resource request hints to a node scale factor.
// CPU and memory are tiered independently and the larger tier wins.
// Missing or unparseable values fall back to the small tier.
func resourceScale(r *infra.Resources) float64 {
	if r == nil {
		return scaleSmall
	}
	return max(cpuScale(r.CPU), memoryScale(r.Memory))
}

// cpuScale tiers a CPU request. Accepts millicore syntax ("500m") and plain
// core counts ("2", "0.5").
func cpuScale(s string) float64 {
	cores, ok := parseCPU(s)
	if !ok {
		return scaleSmall
	}
	switch {
	case cores < 0.5:
		return scaleSmall
	case cores < 1:
		return scaleMedium
	case cores < 2:
		return scaleLarge
	default:
		return scaleXLarge
	}
}

// memoryScale tiers a memory request. Accepts binary ("512Mi", "2Gi") and
// decimal ("512M", "2G") suffixes.
func memoryScale(s string) float64 {
	mib, ok := parseMemory(s)
	if !ok {
		return scaleSmall
	}
	switch {
	case mib < 512:
		return scaleSmall
	case mib < 1024:
		return scaleMedium
	case mib < 2048:
		return scaleLarge
	default:
		return scaleXLarge
	}
}

func parseCPU(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if m, found := strings.CutSuffix(s, "m"); found {
		v, err := strconv.ParseFloat(m, 64)
		if err != nil {
			return 0, false
		}
		return v / 1000, true
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// parseMemory returns the request in MiB. Decimal suffixes are treated as
// their binary cousins; the tier boundaries are far too coarse to care.
func parseMemory(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	units := []struct {
		suffix string
		mib    float64
	}{
		{"Ki", 1.0 / 1024}, {"Mi", 1}, {"Gi", 1024}, {"Ti", 1024 * 1024},
		{"K", 1.0 / 1024}, {"M", 1}, {"G", 1024}, {"T", 1024 * 1024},
	}
	for _, u := range units {
		if v, found := strings.CutSuffix(s, u.suffix); found {
			n, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return 0, false
			}
			return n * u.mib, true
		}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	// Bare numbers are bytes, Kubernetes style.
	return v / (1024 * 1024), true
}
