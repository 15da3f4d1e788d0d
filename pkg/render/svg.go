package render

import (
	"bytes"
	"fmt"
	"strings"
)

// roleFills tints node boxes by semantic role. Types without a role fall
// back through typeFills, then defaultFill.
var roleFills = map[string]string{
	"entry":    "#fde68a",
	"gateway":  "#fcd34d",
	"ui":       "#bfdbfe",
	"api":      "#bbf7d0",
	"worker":   "#a7f3d0",
	"producer": "#bbf7d0",
	"consumer": "#a7f3d0",
	"queue":    "#fbcfe8",
	"data":     "#e9d5ff",
	"helper":   "#e5e7eb",
}

var typeFills = map[string]string{
	"database": "#e9d5ff",
	"cache":    "#e9d5ff",
	"storage":  "#e9d5ff",
	"queue":    "#fbcfe8",
	"proxy":    "#fde68a",
	"ui":       "#bfdbfe",
	"helper":   "#e5e7eb",
	"network":  "#f1f5f9",
	"volume":   "#f1f5f9",
}

const defaultFill = "#dbeafe"

// SVGOption configures SVG rendering.
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	title    string
	fontSize float64
	margin   float64
}

// WithTitle embeds a document title element.
func WithTitle(title string) SVGOption { return func(r *svgRenderer) { r.title = title } }

// WithFontSize overrides the default label size.
func WithFontSize(size float64) SVGOption { return func(r *svgRenderer) { r.fontSize = size } }

// RenderSVG renders a diagram as a standalone SVG document.
//
// Nodes draw as rounded, role-tinted boxes with centered labels; edges draw
// as orthogonal polylines with arrowheads, underneath the boxes so routes
// that brush a box edge stay tidy. Output is deterministic for a given
// diagram.
func RenderSVG(d Diagram, opts ...SVGOption) []byte {
	r := svgRenderer{fontSize: 13, margin: 20}
	for _, opt := range opts {
		opt(&r)
	}

	w := d.Width + 2*r.margin
	h := d.Height + 2*r.margin

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="%.1f %.1f %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		-r.margin, -r.margin, w, h, w, h)
	if r.title != "" {
		fmt.Fprintf(&buf, "  <title>%s</title>\n", escape(r.title))
	}
	renderDefs(&buf)

	buf.WriteString("  <g class=\"edges\">\n")
	for _, e := range d.Edges {
		renderEdge(&buf, e)
	}
	buf.WriteString("  </g>\n")

	buf.WriteString("  <g class=\"nodes\">\n")
	for _, n := range d.Nodes {
		renderNode(&buf, n, r.fontSize)
	}
	buf.WriteString("  </g>\n")

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func renderDefs(buf *bytes.Buffer) {
	buf.WriteString(`  <defs>
    <marker id="arrow" viewBox="0 0 10 10" refX="9" refY="5" markerWidth="7" markerHeight="7" orient="auto-start-reverse">
      <path d="M 0 0 L 10 5 L 0 10 z" fill="#475569"/>
    </marker>
  </defs>
`)
}

func renderNode(buf *bytes.Buffer, n DiagramNode, fontSize float64) {
	stroke := "#475569"
	dash := ""
	if n.IsGroup {
		dash = ` stroke-dasharray="6,3"`
	}
	if n.IsHelper {
		stroke = "#94a3b8"
	}
	fmt.Fprintf(buf, `    <rect id="node-%s" x="%.1f" y="%.1f" width="%.1f" height="%.1f" rx="6" fill="%s" stroke="%s" stroke-width="1.5"%s/>`+"\n",
		escape(n.ID), n.X, n.Y, n.Width, n.Height, fill(n), stroke, dash)
	fmt.Fprintf(buf, `    <text x="%.1f" y="%.1f" text-anchor="middle" dominant-baseline="middle" font-family="sans-serif" font-size="%.0f" fill="#1e293b">%s</text>`+"\n",
		n.X+n.Width/2, n.Y+n.Height/2, fontSize, escape(n.Label))
}

func renderEdge(buf *bytes.Buffer, e DiagramEdge) {
	if len(e.Points) < 2 {
		return
	}
	points := make([]string, len(e.Points))
	for i, p := range e.Points {
		points[i] = fmt.Sprintf("%.1f,%.1f", p.X, p.Y)
	}

	markers := ` marker-end="url(#arrow)"`
	switch e.Direction {
	case "read":
		markers = ` marker-start="url(#arrow)"`
	case "bidirectional":
		markers = ` marker-start="url(#arrow)" marker-end="url(#arrow)"`
	}

	dash := ""
	if e.Type == "network" || e.Type == "volume" {
		dash = ` stroke-dasharray="4,4"`
	}

	fmt.Fprintf(buf, `    <polyline points="%s" fill="none" stroke="#475569" stroke-width="1.5"%s%s/>`+"\n",
		strings.Join(points, " "), dash, markers)
}

func fill(n DiagramNode) string {
	if f, ok := roleFills[n.Role]; ok {
		return f
	}
	if f, ok := typeFills[string(n.Type)]; ok {
		return f
	}
	return defaultFill
}

func escape(s string) string {
	replacer := strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
	)
	return replacer.Replace(s)
}
