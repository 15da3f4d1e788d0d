// Package backend bridges infrastructure graphs to external layered-layout
// engines.
//
// [Convert] translates an [infra.Graph] into the backend input format:
// nodes sized by type, connection count, and resource tier, partitioned
// into role-ordered columns, with edge endpoints pinned to ports on
// declared sides. A [Backend] then computes absolute geometry; [Graphviz]
// is the production implementation, built on the dot engine.
//
// The conversion is pure and deterministic. The contract with the backend
// is intentionally thin: the converter never suggests coordinates, and the
// backend never re-interprets graph semantics.
package backend
