// Package render turns computed layouts into output documents.
//
// # Overview
//
// The package consumes a [Diagram], the positioned-and-routed result of a
// pipeline run, and produces:
//
//   - SVG via [RenderSVG]: role-tinted boxes and orthogonal polyline
//     edges with arrowheads, suitable for direct viewing or embedding
//   - JSON via [RenderJSON]: the raw diagram document for tooling, which
//     round-trips through [ParseDiagram]
//
// Rendering is pure: both sinks are deterministic functions of the
// diagram and their options, with no I/O.
package render
