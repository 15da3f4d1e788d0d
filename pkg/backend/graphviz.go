package backend

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"
)

// pointsPerInch converts between DOT size attributes (inches) and the
// coordinate space of the layout output (points).
const pointsPerInch = 72.0

// Graphviz lays graphs out with the dot engine.
//
// Partition hints become same-rank subgraphs under rankdir=LR, so each
// partition renders as one column and invisible chain edges keep the
// columns in slot order. Port hints become compass-point attachments.
// The engine's attributed DOT output carries the computed geometry, which
// is read back from the pos and bb attributes.
type Graphviz struct{}

// Layout implements [Backend].
func (Graphviz) Layout(ctx context.Context, g Graph) (Result, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	parsed, err := graphviz.ParseBytes([]byte(toDOT(g)))
	if err != nil {
		return Result{}, fmt.Errorf("parse DOT: %w", err)
	}
	defer parsed.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, parsed, graphviz.Format("dot"), &buf); err != nil {
		return Result{}, fmt.Errorf("layout: %w", err)
	}
	return parseLayout(buf.Bytes(), g)
}

// ============================================================================
// DOT generation
// ============================================================================

// toDOT builds the dot-engine input for a backend graph.
func toDOT(g Graph) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fixedsize=true];\n")
	buf.WriteString("  ranksep=1.0;\n")
	buf.WriteString("  nodesep=0.4;\n")
	buf.WriteString("\n")

	for _, n := range g.Nodes {
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(nodeAttrs(n), ", "))
	}

	if g.Partitioned {
		writePartitions(&buf, g)
	}

	buf.WriteString("\n")
	for _, e := range g.Edges {
		attrs := edgeAttrs(e, g)
		if len(attrs) == 0 {
			fmt.Fprintf(&buf, "  %q -> %q;\n", e.Source, e.Target)
			continue
		}
		fmt.Fprintf(&buf, "  %q -> %q [%s];\n", e.Source, e.Target, strings.Join(attrs, ", "))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeAttrs(n Node) []string {
	label := n.Label
	if label == "" {
		label = n.ID
	}
	return []string{
		fmt.Sprintf("label=%q", label),
		fmt.Sprintf("width=%.3f", n.Width/pointsPerInch),
		fmt.Sprintf("height=%.3f", n.Height/pointsPerInch),
	}
}

// writePartitions emits one rank=same subgraph per partition and an
// invisible edge chain between consecutive partitions. With rankdir=LR the
// shared rank collapses each partition to a column and the chain pins the
// column order regardless of where the real edges point.
func writePartitions(buf *bytes.Buffer, g Graph) {
	byPartition := map[int][]string{}
	maxPartition := 0
	for _, n := range g.Nodes {
		if !n.HasPartition {
			continue
		}
		byPartition[n.Partition] = append(byPartition[n.Partition], n.ID)
		if n.Partition > maxPartition {
			maxPartition = n.Partition
		}
	}

	buf.WriteString("\n")
	var prev string
	for p := 0; p <= maxPartition; p++ {
		ids := byPartition[p]
		if len(ids) == 0 {
			continue
		}
		buf.WriteString("  { rank=same;")
		for _, id := range ids {
			fmt.Fprintf(buf, " %q;", id)
		}
		buf.WriteString(" }\n")
		if prev != "" {
			fmt.Fprintf(buf, "  %q -> %q [style=invis];\n", prev, ids[0])
		}
		prev = ids[0]
	}
}

func edgeAttrs(e Edge, g Graph) []string {
	var attrs []string
	if side, ok := portSideFor(g, e.Source, e.SourcePort); ok {
		attrs = append(attrs, fmt.Sprintf("tailport=%s", compass(side)))
	}
	if side, ok := portSideFor(g, e.Target, e.TargetPort); ok {
		attrs = append(attrs, fmt.Sprintf("headport=%s", compass(side)))
	}
	return attrs
}

func portSideFor(g Graph, nodeID, portID string) (PortSide, bool) {
	if portID == "" {
		return "", false
	}
	for _, n := range g.Nodes {
		if n.ID != nodeID {
			continue
		}
		for _, p := range n.Ports {
			if p.ID == portID {
				return p.Side, true
			}
		}
	}
	return "", false
}

func compass(s PortSide) string {
	switch s {
	case PortNorth:
		return "n"
	case PortSouth:
		return "s"
	case PortEast:
		return "e"
	default:
		return "w"
	}
}

// ============================================================================
// Layout output parsing
// ============================================================================

var (
	bbRe   = regexp.MustCompile(`bb="([\d.]+),([\d.]+),([\d.]+),([\d.]+)"`)
	posRe  = regexp.MustCompile(`pos="([^"]*)"`)
	contRe = regexp.MustCompile(`\\\r?\n`)
)

// parseLayout reads geometry back out of attributed DOT. Node pos
// attributes hold the box center; edge pos attributes hold the spline
// control points with the arrow endpoint prefixed as "e,x,y". DOT's origin
// sits bottom-left, so every y coordinate is flipped into screen space.
func parseLayout(out []byte, g Graph) (Result, error) {
	// The engine wraps long statements with backslash continuations.
	text := contRe.ReplaceAllString(string(out), "")

	bb := bbRe.FindStringSubmatch(text)
	if bb == nil {
		return Result{}, fmt.Errorf("layout output: no bounding box")
	}
	width, _ := strconv.ParseFloat(bb[3], 64)
	height, _ := strconv.ParseFloat(bb[4], 64)

	res := Result{Width: width, Height: height}

	for _, n := range g.Nodes {
		pos, err := statementPos(text, statementRe(n.ID, ""))
		if err != nil {
			return Result{}, fmt.Errorf("node %s: %w", n.ID, err)
		}
		cx, cy, err := parsePoint(pos)
		if err != nil {
			return Result{}, fmt.Errorf("node %s: %w", n.ID, err)
		}
		res.Nodes = append(res.Nodes, PositionedNode{
			ID:     n.ID,
			X:      cx - n.Width/2,
			Y:      (height - cy) - n.Height/2,
			Width:  n.Width,
			Height: n.Height,
		})
	}

	// Parallel edges share a statement shape; consume matches in order so
	// the nth duplicate pairs with the nth occurrence in the output.
	cursors := map[string]int{}
	for _, e := range g.Edges {
		key := e.Source + "\x00" + e.Target
		re := statementRe(e.Source, e.Target)
		var matches [][]string
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			// Partition chain edges share endpoints with real edges but
			// stay invisible; they never correspond to an input edge.
			if strings.Contains(m[1], "invis") {
				continue
			}
			matches = append(matches, m)
		}
		idx := cursors[key]
		cursors[key] = idx + 1
		if idx >= len(matches) {
			return Result{}, fmt.Errorf("edge %s: not found in layout output", e.ID)
		}
		pos := posRe.FindStringSubmatch(matches[idx][1])
		if pos == nil {
			return Result{}, fmt.Errorf("edge %s: no pos attribute", e.ID)
		}
		section, err := parseSpline(pos[1], height)
		if err != nil {
			return Result{}, fmt.Errorf("edge %s: %w", e.ID, err)
		}
		res.Edges = append(res.Edges, EdgeRoute{ID: e.ID, Sections: []Section{section}})
	}

	return res, nil
}

// statementRe matches a node statement (to == "") or an edge statement and
// captures the attribute list.
func statementRe(from, to string) *regexp.Regexp {
	pattern := `(?m)^\s*"?` + regexp.QuoteMeta(from) + `"?\s*`
	if to != "" {
		pattern += `->\s*"?` + regexp.QuoteMeta(to) + `"?\s*`
	}
	pattern += `\[([^\]]*)\]`
	return regexp.MustCompile(pattern)
}

func statementPos(text string, re *regexp.Regexp) (string, error) {
	for _, m := range re.FindAllStringSubmatch(text, -1) {
		if pos := posRe.FindStringSubmatch(m[1]); pos != nil {
			return pos[1], nil
		}
	}
	return "", fmt.Errorf("no pos attribute in layout output")
}

func parsePoint(s string) (float64, float64, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("malformed point %q", s)
	}
	x, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return 0, 0, fmt.Errorf("malformed point %q", s)
	}
	y, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return 0, 0, fmt.Errorf("malformed point %q", s)
	}
	return x, y, nil
}

// parseSpline decodes an edge pos attribute. The format is a space-separated
// point list, optionally prefixed with "e,x,y" (arrowhead endpoint) and
// "s,x,y" (tail endpoint).
func parseSpline(s string, height float64) (Section, error) {
	var start, end *Point
	var points []Point

	for _, tok := range strings.Fields(s) {
		switch {
		case strings.HasPrefix(tok, "e,"):
			x, y, err := parsePoint(tok[2:])
			if err != nil {
				return Section{}, err
			}
			end = &Point{X: x, Y: height - y}
		case strings.HasPrefix(tok, "s,"):
			x, y, err := parsePoint(tok[2:])
			if err != nil {
				return Section{}, err
			}
			start = &Point{X: x, Y: height - y}
		default:
			x, y, err := parsePoint(tok)
			if err != nil {
				return Section{}, err
			}
			points = append(points, Point{X: x, Y: height - y})
		}
	}

	if len(points) == 0 {
		return Section{}, fmt.Errorf("empty spline %q", s)
	}
	if start == nil {
		start = &points[0]
		points = points[1:]
	}
	if end == nil && len(points) > 0 {
		end = &points[len(points)-1]
		points = points[:len(points)-1]
	}
	if end == nil {
		end = start
	}
	return Section{Start: *start, End: *end, Bends: points}, nil
}
