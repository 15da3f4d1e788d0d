// Package layout computes 2D positions for infrastructure dependency graphs.
//
// Two independent paths produce positions:
//
//   - Semantic: [Classify] assigns each node a [Role]; [SemanticLayout]
//     places roles into fixed left-to-right columns (entry → application →
//     queue → consumers → data), sizes boxes by connection count, and
//     attaches helper nodes above their parents.
//   - Simple: [AssignLayers] computes dependency-depth layers and
//     [SimpleLayout] stacks them bottom-up with optional barycenter
//     crossing reduction.
//
// [GroupBySignature] optionally runs before either path to collapse node
// sets with identical outgoing-dependency signatures into single group
// boxes with inferred read/write edge directions.
//
// Both paths are pure, deterministic functions: same graph in, same
// positions out. Neither performs I/O. Output feeds either the A* router
// (pkg/route) for internal rendering or the backend converter
// (pkg/backend) for external layout.
//
// # Degenerate input
//
// Empty graphs, single nodes, and disconnected components all produce
// valid (possibly trivial) layouts. The only loud failure is a dangling
// edge reference, which indicates an upstream bug and is rejected by
// Validate before any layout runs. Dependency cycles are broken by
// force-assigning the remaining nodes to one layer; see [Layering].
package layout
