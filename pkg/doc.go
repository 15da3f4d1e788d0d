// Package pkg provides the core libraries for Clarity infrastructure diagrams.
//
// # Overview
//
// Clarity turns infrastructure dependency descriptions (docker-compose files,
// graph JSON documents) into 2D architecture diagrams. The pkg directory is
// organized around a three-stage pipeline:
//
//  1. [compose], [infra] - Parsing and the graph model
//  2. [layout], [route], [backend] - Geometry (positions, groups, edge paths)
//  3. [render] - Output formats (SVG, diagram JSON)
//
// with [pipeline] orchestrating the stages and [cache], [store], [enhance],
// [config], [errors] and [observability] supporting them.
//
// # Architecture
//
// The typical data flow through Clarity:
//
//	docker-compose.yml / graph JSON
//	         ↓
//	    [compose] / [infra] (parse into a dependency graph)
//	         ↓
//	    [enhance] (optional: classify nodes, infer edges)
//	         ↓
//	    [layout] + [route], or [backend] (compute geometry)
//	         ↓
//	    [render] (SVG / diagram JSON artifacts)
//
// Each stage is individually cacheable by content hash; see [cache] and
// [pipeline.Runner].
//
// # Quick Start
//
// Generate an SVG from a compose file:
//
//	import (
//	    "context"
//	    "github.com/BrennerSpear/clarity/pkg/pipeline"
//	)
//
//	opts := pipeline.Options{
//	    Source:  "docker-compose.yml",
//	    Formats: []string{pipeline.FormatSVG},
//	}
//	if err := opts.ValidateAndSetDefaults(); err != nil {
//	    return err
//	}
//
//	runner := pipeline.NewRunner(nil, nil, nil)
//	result, err := runner.Execute(context.Background(), opts)
//	if err != nil {
//	    return err
//	}
//	svg := result.Artifacts[pipeline.FormatSVG]
//
// # Main Packages
//
// ## Graph Model and Parsing
//
// [infra] - The dependency graph: typed nodes (service, database, cache,
// queue, ...), directed edges, and the JSON document format used for files,
// API payloads, caching, and run persistence.
//
// [compose] - docker-compose parser. Maps services to graph nodes, infers
// node types from images, and turns depends_on, links, networks, and volumes
// into edges.
//
// [enhance] - Optional graph enrichment. The heuristic enhancer classifies
// nodes and infers data-flow direction locally; the OpenAI enhancer asks a
// model to do the same and falls back to heuristics on failure.
//
// ## Geometry
//
// [layout] - Positioning engines. Semantic layout places nodes by
// architectural role (proxies up top, datastores at the bottom) and groups
// fungible workers; simple layout is plain layering with barycenter
// ordering.
//
// [route] - Orthogonal edge routing over a congestion-aware grid with A*
// search.
//
// [backend] - Delegates geometry to an external engine (Graphviz via
// goccy/go-graphviz) for graphs that fit classic hierarchical layout better.
//
// ## Output
//
// [render] - The Diagram type plus SVG and JSON renderers.
//
// ## Orchestration and Infrastructure
//
// [pipeline] - Complete pipeline (parse → layout → render) used by CLI and
// server. Runner adds per-stage content-hash caching on top.
//
// [cache] - Cache interface with file, Redis, and null implementations, plus
// the content-hash key scheme.
//
// [store] - Run persistence (file and MongoDB backends) for saved diagram
// runs.
//
// [config] - clarity.toml loading with defaults.
//
// [errors] - Coded errors shared across packages; [errors.Is] matches by
// code through wrap chains.
//
// [observability] - Pluggable pipeline and cache hooks for metrics and
// tracing integrations.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...          # All tests
//	go test ./pkg/layout/...   # Specific package
//
// [infra]: https://pkg.go.dev/github.com/BrennerSpear/clarity/pkg/infra
// [compose]: https://pkg.go.dev/github.com/BrennerSpear/clarity/pkg/compose
// [enhance]: https://pkg.go.dev/github.com/BrennerSpear/clarity/pkg/enhance
// [layout]: https://pkg.go.dev/github.com/BrennerSpear/clarity/pkg/layout
// [route]: https://pkg.go.dev/github.com/BrennerSpear/clarity/pkg/route
// [backend]: https://pkg.go.dev/github.com/BrennerSpear/clarity/pkg/backend
// [render]: https://pkg.go.dev/github.com/BrennerSpear/clarity/pkg/render
// [pipeline]: https://pkg.go.dev/github.com/BrennerSpear/clarity/pkg/pipeline
// [pipeline.Runner]: https://pkg.go.dev/github.com/BrennerSpear/clarity/pkg/pipeline#Runner
// [cache]: https://pkg.go.dev/github.com/BrennerSpear/clarity/pkg/cache
// [store]: https://pkg.go.dev/github.com/BrennerSpear/clarity/pkg/store
// [config]: https://pkg.go.dev/github.com/BrennerSpear/clarity/pkg/config
// [errors]: https://pkg.go.dev/github.com/BrennerSpear/clarity/pkg/errors
// [errors.Is]: https://pkg.go.dev/github.com/BrennerSpear/clarity/pkg/errors#Is
// [observability]: https://pkg.go.dev/github.com/BrennerSpear/clarity/pkg/observability
package pkg
