package render

import "github.com/BrennerSpear/clarity/pkg/infra"

// Point is an absolute canvas coordinate.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// DiagramNode is one positioned box.
type DiagramNode struct {
	ID       string         `json:"id"`
	Label    string         `json:"label"`
	Type     infra.NodeType `json:"type"`
	Role     string         `json:"role,omitempty"`
	X        float64        `json:"x"`
	Y        float64        `json:"y"`
	Width    float64        `json:"width"`
	Height   float64        `json:"height"`
	IsGroup  bool           `json:"is_group,omitempty"`
	IsHelper bool           `json:"is_helper,omitempty"`
}

// DiagramEdge is one routed connection. Points trace the full polyline
// from source anchor to target anchor in canvas coordinates.
type DiagramEdge struct {
	From      string          `json:"from"`
	To        string          `json:"to"`
	Type      infra.EdgeType  `json:"type,omitempty"`
	Direction infra.Direction `json:"direction,omitempty"`
	Points    []Point         `json:"points"`
}

// Diagram is the renderable output of a pipeline run: positioned nodes,
// routed edges, and the canvas they fit on.
type Diagram struct {
	Width       float64       `json:"width"`
	Height      float64       `json:"height"`
	Nodes       []DiagramNode `json:"nodes"`
	Edges       []DiagramEdge `json:"edges"`
	CycleBroken bool          `json:"cycle_broken,omitempty"`
}
