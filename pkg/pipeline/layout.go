package pipeline

import (
	"context"
	"sort"

	"github.com/BrennerSpear/clarity/pkg/backend"
	"github.com/BrennerSpear/clarity/pkg/errors"
	"github.com/BrennerSpear/clarity/pkg/infra"
	"github.com/BrennerSpear/clarity/pkg/layout"
	"github.com/BrennerSpear/clarity/pkg/render"
	"github.com/BrennerSpear/clarity/pkg/route"
)

// =============================================================================
// Layout Generation
// =============================================================================

// GenerateDiagram computes a positioned-and-routed diagram for any layout
// mode. This is the unified entry point for the layout stage.
func GenerateDiagram(ctx context.Context, g *infra.Graph, opts Options) (render.Diagram, error) {
	if err := opts.ValidateForLayout(); err != nil {
		return render.Diagram{}, err
	}

	switch opts.Mode {
	case ModeSemantic:
		return generateSemanticDiagram(g, opts)
	case ModeSimple:
		return generateSimpleDiagram(g, opts)
	case ModeBackend:
		return generateBackendDiagram(ctx, g, opts)
	}
	return render.Diagram{}, errors.New(errors.ErrCodeInvalidInput, "invalid mode: %q", opts.Mode)
}

// =============================================================================
// Semantic
// =============================================================================

// generateSemanticDiagram runs the semantic column layout with optional
// grouping and routes every edge orthogonally.
func generateSemanticDiagram(g *infra.Graph, opts Options) (render.Diagram, error) {
	layoutOpts := layout.SemanticOptions{}
	if !opts.NoGrouping {
		layoutOpts.Grouping = &layout.GroupingOptions{MinGroupSize: opts.MinGroupSize}
	}

	res, err := layout.SemanticLayout(g, layoutOpts)
	if err != nil {
		return render.Diagram{}, errors.Wrap(errors.ErrCodeLayoutFailed, err, "semantic layout")
	}

	groupNames := make(map[string]string, len(res.Groups))
	for _, grp := range res.Groups {
		groupNames[grp.ID] = grp.Name
	}

	diagram := render.Diagram{Width: res.Width, Height: res.Height}
	rects := make(map[string]route.Rect, len(res.Positions))
	for id, pos := range res.Positions {
		rects[id] = route.Rect{X: pos.X, Y: pos.Y, Width: pos.Width, Height: pos.Height}

		node := render.DiagramNode{
			ID:       id,
			Label:    nodeLabel(g, id, groupNames),
			Role:     string(pos.Role),
			X:        pos.X,
			Y:        pos.Y,
			Width:    pos.Width,
			Height:   pos.Height,
			IsGroup:  pos.IsGroup,
			IsHelper: pos.IsHelper,
		}
		if n, ok := g.Node(id); ok {
			node.Type = n.Type
		}
		diagram.Nodes = append(diagram.Nodes, node)
	}
	sortNodes(diagram.Nodes)

	// Edges must be routed sequentially: each accepted path seeds
	// congestion that steers the next one apart from it.
	router := route.NewRouter(rects, route.RouterOptions{
		Grid: route.GridOptions{CellSize: opts.CellSize},
	})
	for _, e := range res.Edges {
		from, okFrom := rects[e.From]
		to, okTo := rects[e.To]
		if !okFrom || !okTo {
			continue
		}
		path := router.Route(e.From, e.To, from, to)
		diagram.Edges = append(diagram.Edges, render.DiagramEdge{
			From:      e.From,
			To:        e.To,
			Type:      e.Type,
			Direction: e.Direction,
			Points:    absolutePoints(path),
		})
	}

	return diagram, nil
}

// =============================================================================
// Simple
// =============================================================================

// generateSimpleDiagram runs the dependency-depth layout and routes the
// raw graph edges.
func generateSimpleDiagram(g *infra.Graph, opts Options) (render.Diagram, error) {
	res, err := layout.SimpleLayout(g, layout.SimpleOptions{Barycenter: true})
	if err != nil {
		return render.Diagram{}, errors.Wrap(errors.ErrCodeLayoutFailed, err, "simple layout")
	}

	roles := layout.ClassifyAll(g)

	diagram := render.Diagram{
		Width:       res.Width,
		Height:      res.Height,
		CycleBroken: res.Layering.CycleBroken,
	}
	rects := make(map[string]route.Rect, len(res.Positions))
	for id, pos := range res.Positions {
		rects[id] = route.Rect{X: pos.X, Y: pos.Y, Width: pos.Width, Height: pos.Height}

		node := render.DiagramNode{
			ID:     id,
			Label:  nodeLabel(g, id, nil),
			Role:   string(roles[id]),
			X:      pos.X,
			Y:      pos.Y,
			Width:  pos.Width,
			Height: pos.Height,
		}
		if n, ok := g.Node(id); ok {
			node.Type = n.Type
		}
		diagram.Nodes = append(diagram.Nodes, node)
	}
	sortNodes(diagram.Nodes)

	router := route.NewRouter(rects, route.RouterOptions{
		Grid: route.GridOptions{CellSize: opts.CellSize},
	})
	for _, e := range g.Edges() {
		path := router.Route(e.From, e.To, rects[e.From], rects[e.To])
		diagram.Edges = append(diagram.Edges, render.DiagramEdge{
			From:      e.From,
			To:        e.To,
			Type:      e.Type,
			Direction: e.Direction,
			Points:    absolutePoints(path),
		})
	}

	return diagram, nil
}

// =============================================================================
// Backend
// =============================================================================

// generateBackendDiagram converts the graph to the backend format and
// delegates positions and routes to an external layout engine.
func generateBackendDiagram(ctx context.Context, g *infra.Graph, opts Options) (render.Diagram, error) {
	bg, err := backend.Convert(g, backend.ConvertOptions{Partitioned: !opts.Unpartitioned})
	if err != nil {
		return render.Diagram{}, err
	}

	engine := opts.Backend
	if engine == nil {
		engine = backend.Graphviz{}
	}
	res, err := engine.Layout(ctx, bg)
	if err != nil {
		return render.Diagram{}, errors.Wrap(errors.ErrCodeLayoutFailed, err, "backend layout")
	}

	roles := layout.ClassifyAll(g)

	diagram := render.Diagram{Width: res.Width, Height: res.Height}
	for _, pn := range res.Nodes {
		node := render.DiagramNode{
			ID:     pn.ID,
			Label:  nodeLabel(g, pn.ID, nil),
			Role:   string(roles[pn.ID]),
			X:      pn.X,
			Y:      pn.Y,
			Width:  pn.Width,
			Height: pn.Height,
		}
		if n, ok := g.Node(pn.ID); ok {
			node.Type = n.Type
		}
		diagram.Nodes = append(diagram.Nodes, node)
	}
	sortNodes(diagram.Nodes)

	// Converted edges preserve input order, so pair routes with the
	// original edges by index to recover type and direction.
	routes := make(map[string]backend.EdgeRoute, len(res.Edges))
	for _, er := range res.Edges {
		routes[er.ID] = er
	}
	graphEdges := g.Edges()
	for i, be := range bg.Edges {
		edge := render.DiagramEdge{From: be.Source, To: be.Target}
		if i < len(graphEdges) {
			edge.Type = graphEdges[i].Type
			edge.Direction = graphEdges[i].Direction
		}
		if er, ok := routes[be.ID]; ok {
			edge.Points = routePoints(er)
		}
		diagram.Edges = append(diagram.Edges, edge)
	}

	return diagram, nil
}

// =============================================================================
// Helpers
// =============================================================================

// sortNodes orders diagram nodes by ID so map iteration never leaks into
// the output.
func sortNodes(nodes []render.DiagramNode) {
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].ID < nodes[j].ID })
}

// nodeLabel resolves the display label: group name for synthetic groups,
// the node's display name otherwise.
func nodeLabel(g *infra.Graph, id string, groupNames map[string]string) string {
	if name, ok := groupNames[id]; ok {
		return name
	}
	if n, ok := g.Node(id); ok {
		return n.DisplayName()
	}
	return id
}

// absolutePoints expands a routed path into absolute canvas coordinates.
func absolutePoints(p route.Path) []render.Point {
	points := make([]render.Point, 0, len(p.Points))
	for _, pt := range p.Points {
		points = append(points, render.Point{X: p.Start.X + pt.X, Y: p.Start.Y + pt.Y})
	}
	return points
}

// routePoints flattens backend route sections into one polyline.
func routePoints(er backend.EdgeRoute) []render.Point {
	var points []render.Point
	for _, s := range er.Sections {
		points = append(points, render.Point{X: s.Start.X, Y: s.Start.Y})
		for _, b := range s.Bends {
			points = append(points, render.Point{X: b.X, Y: b.Y})
		}
		points = append(points, render.Point{X: s.End.X, Y: s.End.Y})
	}
	return points
}
