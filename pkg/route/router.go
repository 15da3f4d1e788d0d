package route

import "math"

// Path is a routed orthogonal polyline: an absolute start point plus
// relative (dx, dy) points. The first point is always (0, 0) and every
// consecutive pair is axis-aligned, so a renderer can draw the polyline
// and place an arrowhead at the last segment without further geometry.
type Path struct {
	Start  Point   `json:"start" bson:"start"`
	Points []Point `json:"points" bson:"points"`
}

// End returns the absolute end point of the path.
func (p Path) End() Point {
	if len(p.Points) == 0 {
		return p.Start
	}
	last := p.Points[len(p.Points)-1]
	return Point{X: p.Start.X + last.X, Y: p.Start.Y + last.Y}
}

// RouterOptions configures a Router.
type RouterOptions struct {
	// Grid controls grid construction; see [GridOptions].
	Grid GridOptions

	// AnchorSpacing is the world-unit distance between edge anchors
	// spread along one rectangle side. Defaults to 14.
	AnchorSpacing float64

	// FallbackMargin is how far, in world units, the fallback route steps
	// outside the diagram bounds before turning toward the target.
	// Defaults to 100.
	FallbackMargin float64
}

func (o *RouterOptions) setDefaults() {
	if o.AnchorSpacing == 0 {
		o.AnchorSpacing = 14
	}
	if o.FallbackMargin == 0 {
		o.FallbackMargin = 100
	}
}

// Router computes orthogonal edge routes between node bounding boxes,
// avoiding obstacles and spreading parallel edges apart via the grid's
// congestion map.
//
// A Router is an accumulator for one diagram's routing pass: edges must
// be routed sequentially, in a deterministic order, because each accepted
// path seeds congestion that steers the next one. Create a fresh Router
// per diagram; it is not safe for concurrent use.
type Router struct {
	grid    *Grid
	opts    RouterOptions
	bounds  Rect
	offsets map[anchorKey]int // per-node-per-side edges seen so far
}

// anchorKey tracks edge anchors per node side.
type anchorKey struct {
	node string
	side Side
}

// NewRouter builds a router over the given node bounding boxes.
// Every rectangle becomes an obstacle in the routing grid.
func NewRouter(nodes map[string]Rect, opts RouterOptions) *Router {
	opts.setDefaults()
	rects := make([]Rect, 0, len(nodes))
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, r := range nodes {
		rects = append(rects, r)
		minX = math.Min(minX, r.X)
		minY = math.Min(minY, r.Y)
		maxX = math.Max(maxX, r.Right())
		maxY = math.Max(maxY, r.Bottom())
	}
	if len(nodes) == 0 {
		minX, minY, maxX, maxY = 0, 0, 0, 0
	}
	return &Router{
		grid:    NewGrid(rects, opts.Grid),
		opts:    opts,
		bounds:  Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY},
		offsets: make(map[anchorKey]int),
	}
}

// Grid exposes the router's grid for inspection in tests.
func (r *Router) Grid() *Grid { return r.grid }

// Route computes an orthogonal path from one node box to another.
//
// The edge exits and enters on the rectangle sides facing the dominant
// axis of the vector between the two centers; multiple edges on one side
// are spread by alternating offsets from the side's center. The A* search
// runs on the shared grid; if it exhausts its iteration cap or no path
// exists, Route falls back to a deterministic L/Z-shaped route outside the
// diagram bounds. Either way the result is registered into the congestion
// map, and Route never fails.
func (r *Router) Route(fromID, toID string, from, to Rect) Path {
	fromSide, toSide := facingSides(from, to)
	start := r.anchor(fromID, fromSide, from)
	end := r.anchor(toID, toSide, to)

	startCell := r.grid.resolve(start)
	endCell := r.grid.resolve(end)

	cells, ok := r.grid.search(startCell, endCell)
	if !ok {
		return r.fallback(start, end, fromSide)
	}

	// Mark the full cell path before simplifying: the congestion spread
	// needs every traversed cell, not just the corners.
	r.grid.markPath(cells)
	cells = simplify(cells)

	// Grid corners in world space, with the true anchors at both ends.
	points := make([]Point, 0, len(cells)+2)
	points = append(points, start)
	for _, c := range cells[1 : len(cells)-1] {
		points = append(points, r.grid.toWorld(c))
	}
	points = append(points, end)

	return relative(start, orthogonalize(points))
}

// facingSides picks the exit and entry sides from the dominant axis of
// the center-to-center vector.
func facingSides(from, to Rect) (Side, Side) {
	fc, tc := from.Center(), to.Center()
	dx, dy := tc.X-fc.X, tc.Y-fc.Y
	if math.Abs(dx) >= math.Abs(dy) {
		if dx >= 0 {
			return SideRight, SideLeft
		}
		return SideLeft, SideRight
	}
	if dy >= 0 {
		return SideBottom, SideTop
	}
	return SideTop, SideBottom
}

// anchor returns the world point where the next edge attaches on a node
// side. The first edge uses the side's center; subsequent edges alternate
// positive and negative offsets (+1, -1, +2, -2, ...) scaled by
// AnchorSpacing and capped so anchors stay on the side.
func (r *Router) anchor(id string, side Side, rect Rect) Point {
	key := anchorKey{node: id, side: side}
	n := r.offsets[key]
	r.offsets[key]++

	offset := 0.0
	if n > 0 {
		step := float64((n + 1) / 2)
		if n%2 == 0 {
			step = -step
		}
		offset = step * r.opts.AnchorSpacing
	}

	if side.Horizontal() {
		limit := rect.Width/2 - r.opts.AnchorSpacing/2
		offset = clampF(offset, -limit, limit)
		x := rect.X + rect.Width/2 + offset
		if side == SideTop {
			return Point{X: x, Y: rect.Y}
		}
		return Point{X: x, Y: rect.Bottom()}
	}

	limit := rect.Height/2 - r.opts.AnchorSpacing/2
	offset = clampF(offset, -limit, limit)
	y := rect.Y + rect.Height/2 + offset
	if side == SideLeft {
		return Point{X: rect.X, Y: y}
	}
	return Point{X: rect.Right(), Y: y}
}

// fallback emits a deterministic route through a corridor stepping
// outside the diagram bounds before turning toward the target: a Z shape
// normally, and a wider two-corridor detour when start and end share the
// corridor's axis (a plain Z would collapse to a straight line). The
// corridor legs run outside every obstacle; only the entry and exit stubs
// touch the diagram. The fallback is registered into the congestion map
// like any accepted path.
func (r *Router) fallback(start, end Point, exit Side) Path {
	m := r.opts.FallbackMargin
	var points []Point
	if exit.Horizontal() {
		// Horizontal corridor above or below the diagram.
		corridorY := r.bounds.Y - m
		if exit == SideBottom {
			corridorY = r.bounds.Bottom() + m
		}
		if start.X == end.X {
			corridorX := r.bounds.Right() + m
			points = []Point{
				start,
				{X: start.X, Y: corridorY},
				{X: corridorX, Y: corridorY},
				{X: corridorX, Y: end.Y},
				end,
			}
		} else {
			points = []Point{
				start,
				{X: start.X, Y: corridorY},
				{X: end.X, Y: corridorY},
				end,
			}
		}
	} else {
		// Vertical corridor left or right of the diagram.
		corridorX := r.bounds.X - m
		if exit == SideRight {
			corridorX = r.bounds.Right() + m
		}
		if start.Y == end.Y {
			corridorY := r.bounds.Bottom() + m
			points = []Point{
				start,
				{X: corridorX, Y: start.Y},
				{X: corridorX, Y: corridorY},
				{X: end.X, Y: corridorY},
				end,
			}
		} else {
			points = []Point{
				start,
				{X: corridorX, Y: start.Y},
				{X: corridorX, Y: end.Y},
				end,
			}
		}
	}

	points = orthogonalize(points)
	r.markWorldPath(points)
	return relative(start, points)
}

// markWorldPath rasterizes a world-space polyline into the congestion map.
func (r *Router) markWorldPath(points []Point) {
	var cells []coord
	for i := 0; i < len(points)-1; i++ {
		a := r.grid.toCell(points[i])
		b := r.grid.toCell(points[i+1])
		cells = append(cells, lineCells(a, b)...)
	}
	if len(cells) > 0 {
		r.grid.markPath(cells)
	}
}

// lineCells walks the axis-aligned segment from a to b, inclusive of a and
// exclusive of b (so joined segments don't double-mark corners).
func lineCells(a, b coord) []coord {
	var cells []coord
	dc, dr := sign(b.c-a.c), sign(b.r-a.r)
	for p := a; p != b; p = (coord{c: p.c + dc, r: p.r + dr}) {
		cells = append(cells, p)
		if dc == 0 && dr == 0 {
			break
		}
	}
	return cells
}

// orthogonalize inserts bend points so every consecutive pair of points is
// axis-aligned, then drops collinear and duplicate points. Anchors don't
// land exactly on cell centers, so the seams between the true anchors and
// the grid path need squaring off.
func orthogonalize(points []Point) []Point {
	if len(points) < 2 {
		return points
	}
	squared := []Point{points[0]}
	for i := 1; i < len(points); i++ {
		prev := squared[len(squared)-1]
		curr := points[i]
		if prev.X != curr.X && prev.Y != curr.Y {
			squared = append(squared, Point{X: curr.X, Y: prev.Y})
		}
		squared = append(squared, curr)
	}

	// Collapse collinear runs and duplicates.
	out := []Point{squared[0]}
	for i := 1; i < len(squared); i++ {
		curr := squared[i]
		prev := out[len(out)-1]
		if curr == prev {
			continue
		}
		if len(out) >= 2 {
			back := out[len(out)-2]
			sameX := back.X == prev.X && prev.X == curr.X
			sameY := back.Y == prev.Y && prev.Y == curr.Y
			if sameX || sameY {
				out[len(out)-1] = curr
				continue
			}
		}
		out = append(out, curr)
	}
	return out
}

// relative converts absolute points to a Path with points relative to
// start. The first point is always (0, 0).
func relative(start Point, points []Point) Path {
	path := Path{Start: start, Points: make([]Point, len(points))}
	for i, p := range points {
		path.Points[i] = Point{X: p.X - start.X, Y: p.Y - start.Y}
	}
	return path
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}

func clampF(v, lo, hi float64) float64 {
	if lo > hi {
		return (lo + hi) / 2
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
