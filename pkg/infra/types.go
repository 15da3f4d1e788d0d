package infra

// =============================================================================
// Constants - Single Source of Truth
// =============================================================================

// NodeType classifies an infrastructure component.
// Parsers map concrete technologies (images, chart names, resource kinds)
// onto this closed set; the layout engine never sees raw technology names.
type NodeType string

// Node types produced by parsers and consumed by layout.
const (
	TypeService  NodeType = "service"
	TypeDatabase NodeType = "database"
	TypeCache    NodeType = "cache"
	TypeQueue    NodeType = "queue"
	TypeStorage  NodeType = "storage"
	TypeProxy    NodeType = "proxy"
	TypeUI       NodeType = "ui"
	TypeHelper   NodeType = "helper"
	TypeNetwork  NodeType = "network"
	TypeVolume   NodeType = "volume"
)

// EdgeType classifies the relation between two components.
type EdgeType string

// Edge types produced by parsers and enhancement.
const (
	EdgeDependsOn EdgeType = "depends_on"
	EdgeNetwork   EdgeType = "network"
	EdgeVolume    EdgeType = "volume"
	EdgeLink      EdgeType = "link"
	EdgeInferred  EdgeType = "inferred"
	EdgeSubchart  EdgeType = "subchart"
	EdgeDatabase  EdgeType = "database"
	EdgeCache     EdgeType = "cache"
)

// Direction describes how data flows along an edge, when known.
type Direction string

// Edge directions inferred by the grouping preprocessor.
const (
	DirectionRead          Direction = "read"
	DirectionWrite         Direction = "write"
	DirectionBidirectional Direction = "bidirectional"
)

// =============================================================================
// Node - Infrastructure Component
// =============================================================================

// Node is one infrastructure component in the dependency graph.
// ID must be unique within a graph and non-empty; Name defaults to ID
// for display purposes.
type Node struct {
	ID          string     `json:"id" bson:"id"`
	Name        string     `json:"name,omitempty" bson:"name,omitempty"`
	Type        NodeType   `json:"type" bson:"type"`
	Description string     `json:"description,omitempty" bson:"description,omitempty"`
	Group       string     `json:"group,omitempty" bson:"group,omitempty"`
	Resources   *Resources `json:"resources,omitempty" bson:"resources,omitempty"`
}

// Resources holds optional resource request hints attached by parsers
// (Helm values, compose deploy limits). Values keep their source syntax:
// CPU as "500m" or "2", memory as "512Mi" or "2Gi".
type Resources struct {
	CPU    string `json:"cpu,omitempty" bson:"cpu,omitempty"`
	Memory string `json:"memory,omitempty" bson:"memory,omitempty"`
}

// DisplayName returns the name if set, otherwise the ID.
func (n Node) DisplayName() string {
	if n.Name != "" {
		return n.Name
	}
	return n.ID
}

// =============================================================================
// Edge - Directed Dependency
// =============================================================================

// Edge is a directed relation between two components: From depends on To.
// Direction is optional and, when set, describes data flow rather than
// the dependency arrow itself.
type Edge struct {
	From      string    `json:"from" bson:"from"`
	To        string    `json:"to" bson:"to"`
	Type      EdgeType  `json:"type" bson:"type"`
	Direction Direction `json:"direction,omitempty" bson:"direction,omitempty"`
}
