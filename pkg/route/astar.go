package route

import "sort"

// Terrain and penalty costs for the A* search. Padding is cheap enough to
// cut through when the alternative is a long detour; arrow cells are
// expensive enough that a parallel edge only reuses them when boxed in.
const (
	costEmpty   = 1.0
	costPadding = 3.0
	costArrow   = 8.0

	// congestionFactor scales the fractional per-cell usage counter into
	// step cost. Combined with the 2/distance side spread in markPath this
	// makes consecutive parallel edges fan out.
	congestionFactor = 50.0

	// turnPenalty is added whenever the path changes direction, favoring
	// long straight runs over staircases.
	turnPenalty = 5.0

	// iterationCapFactor bounds the search at cols*rows*iterationCapFactor
	// expansions. Exceeding the cap is normal control flow (the caller
	// falls back to an L-route), not an error.
	iterationCapFactor = 4
)

// stepCost returns the cost of entering a cell.
func (g *Grid) stepCost(p coord) float64 {
	base := costEmpty
	switch g.at(p) {
	case CellPadding:
		base = costPadding
	case CellArrow:
		base = costArrow
	}
	return base + g.usageAt(p)*congestionFactor
}

// node is one A* search state.
type searchNode struct {
	pos    coord
	g      float64 // accumulated cost
	f      float64 // g + heuristic
	dirC   int     // incoming direction, for the turn penalty
	dirR   int
	parent int // index into the closed list, -1 for the start
}

// manhattan is the A* heuristic: grid distance with no diagonals, which
// never overestimates an orthogonal path's length.
func manhattan(a, b coord) float64 {
	return float64(abs(a.c-b.c) + abs(a.r-b.r))
}

var neighborDirs = [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}

// search runs 4-directional A* from start to goal.
// Returns the cell path including both endpoints and true on success, or
// nil and false when the goal is unreachable or the iteration cap is hit.
func (g *Grid) search(start, goal coord) ([]coord, bool) {
	if g.at(start) == CellObstacle || g.at(goal) == CellObstacle {
		return nil, false
	}
	if start == goal {
		return []coord{start}, true
	}

	maxIter := g.cols * g.rows * iterationCapFactor

	closed := make([]searchNode, 0, 256)
	visited := make(map[coord]float64)
	open := []searchNode{{pos: start, g: 0, f: manhattan(start, goal), parent: -1}}

	for iter := 0; len(open) > 0 && iter < maxIter; iter++ {
		// Simple priority structure: reorder and pop the cheapest head.
		sort.SliceStable(open, func(i, j int) bool { return open[i].f < open[j].f })
		curr := open[0]
		open = open[1:]

		if prev, ok := visited[curr.pos]; ok && prev <= curr.g {
			continue
		}
		visited[curr.pos] = curr.g

		closed = append(closed, curr)
		currIdx := len(closed) - 1

		if curr.pos == goal {
			return reconstruct(closed, currIdx), true
		}

		for _, d := range neighborDirs {
			next := coord{c: curr.pos.c + d[0], r: curr.pos.r + d[1]}
			if g.at(next) == CellObstacle {
				continue
			}
			cost := curr.g + g.stepCost(next)
			if curr.parent != -1 || curr.dirC != 0 || curr.dirR != 0 {
				if d[0] != curr.dirC || d[1] != curr.dirR {
					cost += turnPenalty
				}
			}
			if prev, ok := visited[next]; ok && prev <= cost {
				continue
			}
			open = append(open, searchNode{
				pos:    next,
				g:      cost,
				f:      cost + manhattan(next, goal),
				dirC:   d[0],
				dirR:   d[1],
				parent: currIdx,
			})
		}
	}

	return nil, false
}

// reconstruct walks parent links from the goal back to the start.
func reconstruct(closed []searchNode, idx int) []coord {
	var rev []coord
	for i := idx; i != -1; i = closed[i].parent {
		rev = append(rev, closed[i].pos)
	}
	path := make([]coord, len(rev))
	for i, p := range rev {
		path[len(rev)-1-i] = p
	}
	return path
}

// simplify collapses runs of collinear cells into their corner points,
// producing the minimal polyline with the same shape.
func simplify(path []coord) []coord {
	if len(path) <= 2 {
		return path
	}
	out := []coord{path[0]}
	for i := 1; i < len(path)-1; i++ {
		prev, curr, next := path[i-1], path[i], path[i+1]
		sameCol := prev.c == curr.c && curr.c == next.c
		sameRow := prev.r == curr.r && curr.r == next.r
		if !sameCol && !sameRow {
			out = append(out, curr)
		}
	}
	return append(out, path[len(path)-1])
}
