package route

import (
	"reflect"
	"testing"
)

func twoBoxes() map[string]Rect {
	return map[string]Rect{
		"a": {X: 0, Y: 0, Width: 100, Height: 60},
		"b": {X: 300, Y: 0, Width: 100, Height: 60},
	}
}

func TestRoute_Orthogonal(t *testing.T) {
	boxes := twoBoxes()
	r := NewRouter(boxes, RouterOptions{})

	path := r.Route("a", "b", boxes["a"], boxes["b"])

	if len(path.Points) < 2 {
		t.Fatalf("path has %d points, want >= 2", len(path.Points))
	}
	if path.Points[0] != (Point{}) {
		t.Errorf("first point = %+v, want (0,0)", path.Points[0])
	}
	for i := 1; i < len(path.Points); i++ {
		a, b := path.Points[i-1], path.Points[i]
		if a.X != b.X && a.Y != b.Y {
			t.Errorf("segment %d not axis-aligned: %+v -> %+v", i, a, b)
		}
	}
}

func TestRoute_Deterministic(t *testing.T) {
	boxes := twoBoxes()

	r1 := NewRouter(boxes, RouterOptions{})
	p1 := r1.Route("a", "b", boxes["a"], boxes["b"])

	r2 := NewRouter(boxes, RouterOptions{})
	p2 := r2.Route("a", "b", boxes["a"], boxes["b"])

	if !reflect.DeepEqual(p1, p2) {
		t.Errorf("identical inputs produced different paths:\n%+v\n%+v", p1, p2)
	}
}

func TestRoute_CongestionSpreading(t *testing.T) {
	boxes := twoBoxes()
	r := NewRouter(boxes, RouterOptions{})

	first := r.Route("a", "b", boxes["a"], boxes["b"])
	second := r.Route("a", "b", boxes["a"], boxes["b"])

	if reflect.DeepEqual(first.Points, second.Points) && first.Start == second.Start {
		t.Error("second parallel edge took an identical route despite congestion")
	}
}

func TestRoute_MarksFullPath(t *testing.T) {
	boxes := twoBoxes()
	r := NewRouter(boxes, RouterOptions{})

	r.Route("a", "b", boxes["a"], boxes["b"])

	// Every traversed cell becomes arrow terrain with usage, not just the
	// corner points: a route between the boxes crosses tens of empty cells.
	arrows := 0
	for row := 0; row < r.grid.rows; row++ {
		for col := 0; col < r.grid.cols; col++ {
			p := coord{c: col, r: row}
			if r.grid.at(p) != CellArrow {
				continue
			}
			arrows++
			if r.grid.usageAt(p) == 0 {
				t.Errorf("arrow cell %+v has zero usage", p)
			}
		}
	}
	if arrows < 8 {
		t.Errorf("route marked %d arrow cells, want a full path worth", arrows)
	}
}

func TestRoute_AvoidsObstacle(t *testing.T) {
	boxes := map[string]Rect{
		"a":    {X: 0, Y: 100, Width: 80, Height: 60},
		"wall": {X: 200, Y: 0, Width: 80, Height: 260},
		"b":    {X: 400, Y: 100, Width: 80, Height: 60},
	}
	r := NewRouter(boxes, RouterOptions{})

	path := r.Route("a", "b", boxes["a"], boxes["b"])

	wall := boxes["wall"]
	prev := path.Start
	for _, rel := range path.Points[1:] {
		curr := Point{X: path.Start.X + rel.X, Y: path.Start.Y + rel.Y}
		if segmentCrossesRect(prev, curr, wall) {
			t.Errorf("segment %+v -> %+v crosses the wall", prev, curr)
		}
		prev = curr
	}
}

// segmentCrossesRect reports whether an axis-aligned segment passes
// through the interior of a rectangle.
func segmentCrossesRect(a, b Point, r Rect) bool {
	minX, maxX := a.X, b.X
	if minX > maxX {
		minX, maxX = maxX, minX
	}
	minY, maxY := a.Y, b.Y
	if minY > maxY {
		minY, maxY = maxY, minY
	}
	return minX < r.Right() && maxX > r.X && minY < r.Bottom() && maxY > r.Y
}

func TestRoute_FallbackWhenEnclosed(t *testing.T) {
	// b is fully walled in: no path exists through the grid, so the
	// router must still return a non-empty fallback route.
	boxes := map[string]Rect{
		"a": {X: 0, Y: 200, Width: 60, Height: 40},
		"b": {X: 500, Y: 200, Width: 60, Height: 40},
		// A closed ring of walls around b, thicker than the padding ring.
		"w1": {X: 400, Y: 80, Width: 260, Height: 40},
		"w2": {X: 400, Y: 360, Width: 260, Height: 40},
		"w3": {X: 400, Y: 80, Width: 40, Height: 320},
		"w4": {X: 620, Y: 80, Width: 40, Height: 320},
	}
	r := NewRouter(boxes, RouterOptions{})

	path := r.Route("a", "b", boxes["a"], boxes["b"])

	if len(path.Points) < 2 {
		t.Fatalf("fallback returned %d points, want >= 2", len(path.Points))
	}
	if path.Points[0] != (Point{}) {
		t.Errorf("first point = %+v, want (0,0)", path.Points[0])
	}
	for i := 1; i < len(path.Points); i++ {
		a, b := path.Points[i-1], path.Points[i]
		if a.X != b.X && a.Y != b.Y {
			t.Errorf("fallback segment %d not axis-aligned: %+v -> %+v", i, a, b)
		}
	}
}

func TestAnchor_SpreadsAlongSide(t *testing.T) {
	boxes := twoBoxes()
	r := NewRouter(boxes, RouterOptions{})
	rect := boxes["a"]

	first := r.anchor("a", SideRight, rect)
	second := r.anchor("a", SideRight, rect)
	third := r.anchor("a", SideRight, rect)

	if first.Y == second.Y {
		t.Error("second anchor not offset from the first")
	}
	// Offsets alternate around the center: +1, -1, ...
	if (second.Y-first.Y)*(third.Y-first.Y) >= 0 {
		t.Errorf("offsets do not alternate: %v %v %v", first.Y, second.Y, third.Y)
	}
	for _, p := range []Point{first, second, third} {
		if p.Y < rect.Y || p.Y > rect.Bottom() {
			t.Errorf("anchor %+v left the side", p)
		}
		if p.X != rect.Right() {
			t.Errorf("anchor %+v not on the right side", p)
		}
	}
}

func TestFacingSides(t *testing.T) {
	tests := []struct {
		name     string
		from, to Rect
		exit     Side
		entry    Side
	}{
		{"east", Rect{X: 0, Width: 10, Height: 10}, Rect{X: 100, Width: 10, Height: 10}, SideRight, SideLeft},
		{"west", Rect{X: 100, Width: 10, Height: 10}, Rect{X: 0, Width: 10, Height: 10}, SideLeft, SideRight},
		{"south", Rect{Y: 0, Width: 10, Height: 10}, Rect{Y: 100, Width: 10, Height: 10}, SideBottom, SideTop},
		{"north", Rect{Y: 100, Width: 10, Height: 10}, Rect{Y: 0, Width: 10, Height: 10}, SideTop, SideBottom},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exit, entry := facingSides(tt.from, tt.to)
			if exit != tt.exit || entry != tt.entry {
				t.Errorf("facingSides() = %v/%v, want %v/%v", exit, entry, tt.exit, tt.entry)
			}
		})
	}
}

func TestPathEnd(t *testing.T) {
	p := Path{Start: Point{X: 10, Y: 20}, Points: []Point{{}, {X: 5}, {X: 5, Y: 7}}}
	if got := p.End(); got != (Point{X: 15, Y: 27}) {
		t.Errorf("End() = %+v, want (15, 27)", got)
	}
}
