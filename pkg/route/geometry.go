package route

// Point is a 2D point in world coordinates (user units).
type Point struct {
	X float64 `json:"x" bson:"x"`
	Y float64 `json:"y" bson:"y"`
}

// Rect is an axis-aligned rectangle identified by its top-left corner.
type Rect struct {
	X      float64 `json:"x" bson:"x"`
	Y      float64 `json:"y" bson:"y"`
	Width  float64 `json:"width" bson:"width"`
	Height float64 `json:"height" bson:"height"`
}

// Right returns the x coordinate of the right edge.
func (r Rect) Right() float64 { return r.X + r.Width }

// Bottom returns the y coordinate of the bottom edge.
func (r Rect) Bottom() float64 { return r.Y + r.Height }

// Center returns the rectangle's center point.
func (r Rect) Center() Point { return Point{X: r.X + r.Width/2, Y: r.Y + r.Height/2} }

// Side identifies one edge of a rectangle.
type Side int

// Rectangle sides, used for edge anchor selection.
const (
	SideTop Side = iota
	SideBottom
	SideLeft
	SideRight
)

// String returns the side name for debugging and port IDs.
func (s Side) String() string {
	switch s {
	case SideTop:
		return "top"
	case SideBottom:
		return "bottom"
	case SideLeft:
		return "left"
	default:
		return "right"
	}
}

// Horizontal reports whether the side runs horizontally (top or bottom).
func (s Side) Horizontal() bool { return s == SideTop || s == SideBottom }
