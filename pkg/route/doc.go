// Package route computes orthogonal (right-angle) arrow routes between
// positioned node boxes.
//
// # Pipeline
//
// A [Router] wraps one diagram's routing pass:
//
//  1. Build a fine-grained [Grid] over the union bounding box of all node
//     rectangles; rasterize each rectangle as obstacle cells with a
//     padded buffer ring.
//  2. For each edge, pick exit/entry sides from the dominant axis between
//     node centers and spread anchors along busy sides.
//  3. Run 4-directional A* with Manhattan heuristic, terrain costs, a
//     congestion term, and a turn penalty.
//  4. Collapse collinear cells, register the path into the congestion map
//     (with a decaying side spread), and return a [Path] of relative
//     points.
//
// When the search exhausts its iteration cap or no path exists, the
// router emits a deterministic L/Z-shaped route through a corridor
// outside the diagram bounds instead of failing. Search exhaustion is
// normal control flow here, not an error.
//
// # Determinism and ordering
//
// Routing is deterministic: identical grids and endpoints produce
// byte-identical paths. The congestion map makes edge order observable -
// the first edge between two regions gets the straightest route and later
// ones fan out around it - so edges must be routed sequentially in a
// fixed order. Independent diagrams use independent Routers and may run
// concurrently.
package route
