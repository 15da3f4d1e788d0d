package layout

import (
	"sort"

	"github.com/BrennerSpear/clarity/pkg/infra"
)

// Position is the layout output for the simple (non-semantic) path.
// Coordinates are the top-left corner of the node box in user units.
type Position struct {
	ID     string  `json:"id" bson:"id"`
	X      float64 `json:"x" bson:"x"`
	Y      float64 `json:"y" bson:"y"`
	Width  float64 `json:"width" bson:"width"`
	Height float64 `json:"height" bson:"height"`
	Layer  int     `json:"layer" bson:"layer"`
}

// SimpleOptions configures the simple layered layout.
type SimpleOptions struct {
	// Sizer computes node dimensions. Defaults to [ConnectionSizer].
	Sizer Sizer

	// NodeGap is the horizontal gap between nodes in a layer.
	NodeGap float64

	// RowHeight is the vertical distance between layer baselines.
	RowHeight float64

	// Barycenter enables within-layer reordering by the average position
	// of each node's neighbors in the previous layer, reducing crossings.
	Barycenter bool
}

// setDefaults fills zero-valued options with defaults.
func (o *SimpleOptions) setDefaults() {
	if o.Sizer == nil {
		o.Sizer = ConnectionSizer{}
	}
	if o.NodeGap == 0 {
		o.NodeGap = 60
	}
	if o.RowHeight == 0 {
		o.RowHeight = 160
	}
}

// SimpleResult is the output of [SimpleLayout].
type SimpleResult struct {
	Positions map[string]Position
	Layering  Layering
	Width     float64
	Height    float64
}

// SimpleLayout positions every node on a plain dependency-depth grid:
// nodes are bucketed by layer, optionally reordered with the barycenter
// heuristic, laid out left-aligned, and finally each layer is centered
// against the widest layer. Layer 0 (deepest dependencies) renders at the
// bottom, so Y decreases as layers grow.
//
// Returns an error only for malformed input (dangling edge references).
// Degenerate graphs (empty, single node, disconnected) produce a valid,
// possibly trivial, layout.
func SimpleLayout(g *infra.Graph, opts SimpleOptions) (SimpleResult, error) {
	opts.setDefaults()

	if err := g.Validate(); err != nil {
		return SimpleResult{}, err
	}

	layering := AssignLayers(g)
	result := SimpleResult{
		Positions: make(map[string]Position, g.NodeCount()),
		Layering:  layering,
	}
	if g.NodeCount() == 0 {
		return result, nil
	}

	// Bucket nodes by layer, preserving insertion order.
	buckets := make(map[int][]string, layering.Depth)
	for _, id := range g.NodeIDs() {
		l := layering.Layers[id]
		buckets[l] = append(buckets[l], id)
	}

	if opts.Barycenter {
		applyBarycenter(g, buckets, layering.Depth)
	}

	// First pass: left-aligned rows, recording each row's total width.
	rowWidths := make([]float64, layering.Depth)
	sizes := make(map[string][2]float64, g.NodeCount())
	maxWidth := 0.0
	for l := 0; l < layering.Depth; l++ {
		x := 0.0
		for i, id := range buckets[l] {
			n, _ := g.Node(id)
			w, h := opts.Sizer.Size(SizeContext{Type: n.Type, Connections: g.Degree(id)})
			sizes[id] = [2]float64{w, h}
			if i > 0 {
				x += opts.NodeGap
			}
			x += w
		}
		rowWidths[l] = x
		if x > maxWidth {
			maxWidth = x
		}
	}

	// Second pass: place rows bottom-up, centering each against the widest.
	for l := 0; l < layering.Depth; l++ {
		y := float64(layering.Depth-1-l) * opts.RowHeight
		x := (maxWidth - rowWidths[l]) / 2
		for _, id := range buckets[l] {
			size := sizes[id]
			result.Positions[id] = Position{
				ID:     id,
				X:      x,
				Y:      y,
				Width:  size[0],
				Height: size[1],
				Layer:  l,
			}
			x += size[0] + opts.NodeGap
		}
	}

	result.Width = maxWidth
	result.Height = float64(layering.Depth-1)*opts.RowHeight + maxHeight(sizes, buckets[0])
	return result, nil
}

// applyBarycenter reorders each layer (from layer 1 upward) by the average
// index of each node's same-edge neighbors in the previous layer. Nodes
// without neighbors in the previous layer keep a barycenter equal to their
// current index, so they stay roughly in place.
func applyBarycenter(g *infra.Graph, buckets map[int][]string, depth int) {
	for l := 1; l < depth; l++ {
		prev := buckets[l-1]
		prevIdx := make(map[string]int, len(prev))
		for i, id := range prev {
			prevIdx[id] = i
		}

		curr := buckets[l]
		bary := make(map[string]float64, len(curr))
		for i, id := range curr {
			sum, count := 0.0, 0
			for _, dep := range g.Dependencies(id) {
				if idx, ok := prevIdx[dep]; ok {
					sum += float64(idx)
					count++
				}
			}
			for _, dep := range g.Dependents(id) {
				if idx, ok := prevIdx[dep]; ok {
					sum += float64(idx)
					count++
				}
			}
			if count == 0 {
				bary[id] = float64(i)
			} else {
				bary[id] = sum / float64(count)
			}
		}

		sort.SliceStable(curr, func(a, b int) bool { return bary[curr[a]] < bary[curr[b]] })
	}
}

func maxHeight(sizes map[string][2]float64, ids []string) float64 {
	h := 0.0
	for _, id := range ids {
		if sizes[id][1] > h {
			h = sizes[id][1]
		}
	}
	return h
}
