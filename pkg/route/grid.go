package route

import "math"

// Cell is the terrain type of one grid cell.
type Cell uint8

// Cell terrain types, ordered by traversal cost.
const (
	// CellEmpty is free space.
	CellEmpty Cell = iota
	// CellObstacle is a node body; never traversable.
	CellObstacle
	// CellPadding is the buffer ring around a node; traversable but penalized.
	CellPadding
	// CellArrow marks cells already used by a routed edge; traversable but
	// heavily penalized so later edges prefer fresh cells.
	CellArrow
)

// GridOptions configures grid construction.
type GridOptions struct {
	// CellSize is the edge length of one cell in world units.
	// Routing grids are much finer than node-layout grids. Defaults to 10.
	CellSize float64

	// Margin is the world-space padding added around the union bounding
	// box of all obstacles, giving the router room to swing around the
	// diagram. Defaults to 100.
	Margin float64

	// ObstacleMargin is the hard margin, in cells, rasterized as obstacle
	// around each rectangle. Defaults to 1.
	ObstacleMargin int

	// PaddingWidth is the width, in cells, of the padded buffer ring
	// surrounding each obstacle. Defaults to 2.
	PaddingWidth int
}

func (o *GridOptions) setDefaults() {
	if o.CellSize == 0 {
		o.CellSize = 10
	}
	if o.Margin == 0 {
		o.Margin = 100
	}
	if o.ObstacleMargin == 0 {
		o.ObstacleMargin = 1
	}
	if o.PaddingWidth == 0 {
		o.PaddingWidth = 2
	}
}

// Grid is the routing search space: a cell matrix over the diagram's
// bounding box plus margin, with per-cell terrain and a fractional
// congestion counter seeded by previously routed edges.
//
// The congestion map is mutated sequentially as each edge of one diagram
// is routed. A Grid must not be shared between independent diagrams or
// reused across routing passes.
type Grid struct {
	cells    []Cell
	usage    []float64
	cols     int
	rows     int
	cellSize float64
	originX  float64
	originY  float64
}

// coord is a cell coordinate (column, row).
type coord struct{ c, r int }

// NewGrid builds a routing grid covering all obstacle rectangles.
// Each rectangle is rasterized as obstacle cells with a small hard margin,
// surrounded by a wider padded buffer ring.
func NewGrid(obstacles []Rect, opts GridOptions) *Grid {
	opts.setDefaults()

	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, o := range obstacles {
		minX = math.Min(minX, o.X)
		minY = math.Min(minY, o.Y)
		maxX = math.Max(maxX, o.Right())
		maxY = math.Max(maxY, o.Bottom())
	}
	if len(obstacles) == 0 {
		minX, minY, maxX, maxY = 0, 0, 0, 0
	}
	minX -= opts.Margin
	minY -= opts.Margin
	maxX += opts.Margin
	maxY += opts.Margin

	cols := int(math.Ceil((maxX-minX)/opts.CellSize)) + 1
	rows := int(math.Ceil((maxY-minY)/opts.CellSize)) + 1

	g := &Grid{
		cells:    make([]Cell, cols*rows),
		usage:    make([]float64, cols*rows),
		cols:     cols,
		rows:     rows,
		cellSize: opts.CellSize,
		originX:  minX,
		originY:  minY,
	}

	// Padding first so obstacles overwrite it where the rings overlap
	// the bodies.
	for _, o := range obstacles {
		g.rasterize(o, opts.ObstacleMargin+opts.PaddingWidth, CellPadding)
	}
	for _, o := range obstacles {
		g.rasterize(o, opts.ObstacleMargin, CellObstacle)
	}

	return g
}

// Cols returns the number of grid columns.
func (g *Grid) Cols() int { return g.cols }

// Rows returns the number of grid rows.
func (g *Grid) Rows() int { return g.rows }

// CellSize returns the world-unit size of one cell.
func (g *Grid) CellSize() float64 { return g.cellSize }

// rasterize marks every cell overlapping the rectangle grown by marginCells
// with the given terrain.
func (g *Grid) rasterize(r Rect, marginCells int, kind Cell) {
	m := float64(marginCells) * g.cellSize
	p0 := g.toCell(Point{X: r.X - m, Y: r.Y - m})
	p1 := g.toCell(Point{X: r.Right() + m, Y: r.Bottom() + m})
	for row := p0.r; row <= p1.r; row++ {
		for col := p0.c; col <= p1.c; col++ {
			g.cells[row*g.cols+col] = kind
		}
	}
}

// at returns the terrain of a cell. Out-of-range coordinates read as
// obstacle so the search never walks off the grid.
func (g *Grid) at(p coord) Cell {
	if p.c < 0 || p.c >= g.cols || p.r < 0 || p.r >= g.rows {
		return CellObstacle
	}
	return g.cells[p.r*g.cols+p.c]
}

// usageAt returns the congestion counter of a cell.
func (g *Grid) usageAt(p coord) float64 {
	if p.c < 0 || p.c >= g.cols || p.r < 0 || p.r >= g.rows {
		return 0
	}
	return g.usage[p.r*g.cols+p.c]
}

// addUsage increments a cell's congestion counter by delta.
func (g *Grid) addUsage(p coord, delta float64) {
	if p.c < 0 || p.c >= g.cols || p.r < 0 || p.r >= g.rows {
		return
	}
	g.usage[p.r*g.cols+p.c] += delta
}

// toCell converts a world point to a clamped cell coordinate.
func (g *Grid) toCell(p Point) coord {
	c := int(math.Floor((p.X - g.originX) / g.cellSize))
	r := int(math.Floor((p.Y - g.originY) / g.cellSize))
	return coord{c: clamp(c, 0, g.cols-1), r: clamp(r, 0, g.rows-1)}
}

// toWorld converts a cell coordinate to the world point at its center.
func (g *Grid) toWorld(p coord) Point {
	return Point{
		X: g.originX + (float64(p.c)+0.5)*g.cellSize,
		Y: g.originY + (float64(p.r)+0.5)*g.cellSize,
	}
}

// resolve converts a world point to a traversable cell. If the point lands
// on an obstacle (edge anchors sit on node boundaries, which are rasterized
// as obstacle), the search expands outward in square rings until it finds a
// traversable cell. On a finite grid with a margin this always succeeds;
// the worst case returns the original clamped cell.
func (g *Grid) resolve(p Point) coord {
	start := g.toCell(p)
	if g.at(start) != CellObstacle {
		return start
	}
	maxRing := g.cols
	if g.rows > maxRing {
		maxRing = g.rows
	}
	for ring := 1; ring <= maxRing; ring++ {
		for dr := -ring; dr <= ring; dr++ {
			for dc := -ring; dc <= ring; dc++ {
				if max(abs(dr), abs(dc)) != ring {
					continue
				}
				cand := coord{c: start.c + dc, r: start.r + dr}
				if cand.c < 0 || cand.c >= g.cols || cand.r < 0 || cand.r >= g.rows {
					continue
				}
				if g.at(cand) != CellObstacle {
					return cand
				}
			}
		}
	}
	return start
}

// markPath registers a routed path into the congestion map: every cell on
// the path gets its usage counter incremented and becomes arrow terrain,
// and cells up to sideSpread cells away perpendicular to the path pick up
// a decaying 2/distance penalty. This spread is what pushes the next
// parallel edge onto different cells.
const sideSpread = 5

func (g *Grid) markPath(path []coord) {
	for i, p := range path {
		g.addUsage(p, 1)
		if idx := p.r*g.cols + p.c; g.cells[idx] == CellEmpty {
			g.cells[idx] = CellArrow
		}

		// Perpendicular direction from the segment this cell belongs to.
		var dc, dr int
		switch {
		case i+1 < len(path):
			dc, dr = path[i+1].c-p.c, path[i+1].r-p.r
		case i > 0:
			dc, dr = p.c-path[i-1].c, p.r-path[i-1].r
		}
		perpC, perpR := -dr, -dc
		if perpC == 0 && perpR == 0 {
			// Single-cell path: spread on both axes.
			perpC, perpR = 1, 0
		}

		for d := 1; d <= sideSpread; d++ {
			penalty := 2.0 / float64(d)
			g.addUsage(coord{c: p.c + perpC*d, r: p.r + perpR*d}, penalty)
			g.addUsage(coord{c: p.c - perpC*d, r: p.r - perpR*d}, penalty)
		}
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
