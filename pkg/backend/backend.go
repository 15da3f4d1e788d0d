package backend

import "context"

// PortSide declares which node boundary a port sits on.
type PortSide string

// Port sides, in the layered-layout convention: NORTH is the top of the
// node, EAST its right side.
const (
	PortNorth PortSide = "NORTH"
	PortSouth PortSide = "SOUTH"
	PortEast  PortSide = "EAST"
	PortWest  PortSide = "WEST"
)

// Port is a named attachment point pinned to one side of a node.
type Port struct {
	ID   string   `json:"id" bson:"id"`
	Side PortSide `json:"side" bson:"side"`
}

// Node is a layout-backend node: size hints plus optional partition and
// port constraints. The backend computes the coordinates.
type Node struct {
	ID     string  `json:"id" bson:"id"`
	Label  string  `json:"label,omitempty" bson:"label,omitempty"`
	Width  float64 `json:"width" bson:"width"`
	Height float64 `json:"height" bson:"height"`

	// Partition is the fixed left-to-right slot driven by semantic layer.
	// Only meaningful when HasPartition is set.
	Partition    int  `json:"partition,omitempty" bson:"partition,omitempty"`
	HasPartition bool `json:"has_partition,omitempty" bson:"has_partition,omitempty"`

	// Ports pin edge endpoints to declared sides. Any node with ports
	// carries the FIXED_SIDE constraint so the backend keeps them put.
	Ports      []Port `json:"ports,omitempty" bson:"ports,omitempty"`
	FixedSides bool   `json:"fixed_sides,omitempty" bson:"fixed_sides,omitempty"`
}

// Edge references its endpoints and, optionally, specific ports on them.
type Edge struct {
	ID         string `json:"id" bson:"id"`
	Source     string `json:"source" bson:"source"`
	Target     string `json:"target" bson:"target"`
	SourcePort string `json:"source_port,omitempty" bson:"source_port,omitempty"`
	TargetPort string `json:"target_port,omitempty" bson:"target_port,omitempty"`
}

// Graph is the input to a layout backend.
type Graph struct {
	Nodes       []Node `json:"nodes" bson:"nodes"`
	Edges       []Edge `json:"edges" bson:"edges"`
	Partitioned bool   `json:"partitioned,omitempty" bson:"partitioned,omitempty"`
}

// Point is an absolute 2D coordinate in the backend's output space.
type Point struct {
	X float64 `json:"x" bson:"x"`
	Y float64 `json:"y" bson:"y"`
}

// PositionedNode is a node annotated with absolute coordinates.
type PositionedNode struct {
	ID     string  `json:"id" bson:"id"`
	X      float64 `json:"x" bson:"x"`
	Y      float64 `json:"y" bson:"y"`
	Width  float64 `json:"width" bson:"width"`
	Height float64 `json:"height" bson:"height"`
}

// Section is one routed run of an edge: start, end, and the ordered bend
// points between them.
type Section struct {
	Start Point   `json:"start" bson:"start"`
	End   Point   `json:"end" bson:"end"`
	Bends []Point `json:"bends,omitempty" bson:"bends,omitempty"`
}

// EdgeRoute is the backend's routing result for one edge.
type EdgeRoute struct {
	ID       string    `json:"id" bson:"id"`
	Sections []Section `json:"sections" bson:"sections"`
}

// Result is a positioned graph returned by a layout backend.
type Result struct {
	Nodes  []PositionedNode `json:"nodes" bson:"nodes"`
	Edges  []EdgeRoute      `json:"edges" bson:"edges"`
	Width  float64          `json:"width" bson:"width"`
	Height float64          `json:"height" bson:"height"`
}

// Backend is the narrow interface to an external layered-layout engine.
// The converter only emits partition and port hints; coordinate
// assignment is entirely the backend's job. The call is synchronous with
// no partial results; cancellation goes through the context.
//
// Tests substitute a deterministic stub; production uses [Graphviz].
type Backend interface {
	Layout(ctx context.Context, g Graph) (Result, error)
}
