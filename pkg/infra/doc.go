// Package infra defines the infrastructure dependency graph that all of
// Clarity operates on.
//
// Parsers (docker-compose, Helm, Terraform) and the LLM enhancement step
// produce an [*Graph]; the layout engine, router, and renderer consume it.
// The graph is deliberately small: typed nodes, typed directed edges,
// optional resource hints. Anything technology-specific is resolved into
// [NodeType] and [EdgeType] before the graph leaves a parser.
//
// # Core Types
//
//   - [Graph]: indexed in-memory graph (adjacency in both directions)
//   - [Node], [Edge]: components and directed relations
//   - [Document]: the JSON/BSON wire format
//
// # Usage
//
//	g := infra.New()
//	_ = g.AddNode(infra.Node{ID: "web", Type: infra.TypeUI})
//	_ = g.AddNode(infra.Node{ID: "db", Type: infra.TypeDatabase})
//	_ = g.AddEdge(infra.Edge{From: "web", To: "db", Type: infra.EdgeDependsOn})
//
//	if err := g.Validate(); err != nil {
//	    // dangling edge: upstream construction bug
//	}
//
// # Serialization
//
//	data, _ := infra.MarshalGraph(g)      // Graph → []byte
//	g2, _ := infra.UnmarshalGraph(data)   // []byte → Graph
//	_ = infra.WriteGraphFile(g, "infra.json")
//
// # Cycles
//
// Graphs may contain cycles (two services depending on each other is
// common in real compose files). The layering engine breaks cycles during
// layout instead of rejecting them here; see pkg/layout.
//
// # Concurrency
//
// A Graph is safe for concurrent reads but not concurrent writes.
package infra
