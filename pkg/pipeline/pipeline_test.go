package pipeline

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/BrennerSpear/clarity/pkg/backend"
	"github.com/BrennerSpear/clarity/pkg/cache"
	"github.com/BrennerSpear/clarity/pkg/infra"
	"github.com/BrennerSpear/clarity/pkg/render"
)

const composeFixture = `
services:
  web:
    image: nginx:1.27
    depends_on:
      - api
  api:
    image: myorg/api:latest
    depends_on:
      - postgres
      - redis
  worker-mail:
    image: myorg/worker:latest
    depends_on:
      - postgres
      - redis
  worker-billing:
    image: myorg/worker:latest
    depends_on:
      - postgres
      - redis
  postgres:
    image: postgres:16
  redis:
    image: redis:7
`

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"svg", false},
		{"json", false},
		{"png", true},
		{"invalid", true},
		{"SVG", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
	}
}

func TestValidateFormats(t *testing.T) {
	if err := ValidateFormats([]string{"svg", "json"}); err != nil {
		t.Errorf("Valid formats should pass: %v", err)
	}

	if err := ValidateFormats([]string{"svg", "invalid"}); err == nil {
		t.Error("Invalid format should fail")
	}

	// Empty slice is valid
	if err := ValidateFormats(nil); err != nil {
		t.Errorf("Empty formats should pass: %v", err)
	}
}

func TestValidateMode(t *testing.T) {
	tests := []struct {
		mode    string
		wantErr bool
	}{
		{"semantic", false},
		{"simple", false},
		{"backend", false},
		{"invalid", true},
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateMode(tt.mode)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateMode(%q) error = %v, wantErr %v", tt.mode, err, tt.wantErr)
		}
	}
}

func TestOptionsValidateForParse(t *testing.T) {
	// Missing source entirely
	opts := Options{}
	if err := opts.ValidateForParse(); err == nil {
		t.Error("Missing source should fail")
	}

	// Unresolvable parser
	opts = Options{Source: "notes.txt"}
	if err := opts.ValidateForParse(); err == nil {
		t.Error("Unknown extension without explicit parser should fail")
	}

	// Inline data with explicit parser
	opts = Options{SourceData: []byte("services: {}"), Parser: ParserCompose}
	if err := opts.ValidateForParse(); err != nil {
		t.Errorf("Inline compose options should pass: %v", err)
	}
}

func TestInferParser(t *testing.T) {
	tests := []struct {
		source string
		want   string
	}{
		{"docker-compose.yml", ParserCompose},
		{"stack.yaml", ParserCompose},
		{"graph.json", ParserJSON},
		{"compose", ParserCompose},
		{"README.md", ""},
	}

	for _, tt := range tests {
		if got := inferParser(tt.source); got != tt.want {
			t.Errorf("inferParser(%q) = %q, want %q", tt.source, got, tt.want)
		}
	}
}

func TestOptionsValidateAndSetDefaultsIdempotent(t *testing.T) {
	opts := Options{SourceData: []byte(composeFixture), Parser: ParserCompose}

	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("First validation failed: %v", err)
	}

	originalMode := opts.Mode
	originalMinGroup := opts.MinGroupSize
	originalFormats := len(opts.Formats)

	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("Second validation failed: %v", err)
	}

	if opts.Mode != originalMode {
		t.Error("Mode changed on second call")
	}
	if opts.MinGroupSize != originalMinGroup {
		t.Error("MinGroupSize changed on second call")
	}
	if len(opts.Formats) != originalFormats {
		t.Error("Formats changed on second call")
	}
}

func TestSetLayoutDefaults(t *testing.T) {
	opts := Options{}
	opts.SetLayoutDefaults()

	if opts.Mode != DefaultMode {
		t.Errorf("Mode should be %s, got %s", DefaultMode, opts.Mode)
	}
	if opts.MinGroupSize != DefaultMinGroupSize {
		t.Errorf("MinGroupSize should be %d, got %d", DefaultMinGroupSize, opts.MinGroupSize)
	}
	if opts.CellSize != DefaultCellSize {
		t.Errorf("CellSize should be %f, got %f", DefaultCellSize, opts.CellSize)
	}
}

func TestSetRenderDefaults(t *testing.T) {
	opts := Options{}
	opts.SetRenderDefaults()

	if len(opts.Formats) != 1 || opts.Formats[0] != FormatSVG {
		t.Errorf("Formats should be [svg], got %v", opts.Formats)
	}
}

func TestLayoutKeyOptsGrouping(t *testing.T) {
	opts := Options{Mode: ModeSemantic, MinGroupSize: 3}
	if got := opts.LayoutKeyOpts().MinGroupSize; got != 3 {
		t.Errorf("MinGroupSize = %d, want 3", got)
	}

	opts.NoGrouping = true
	if got := opts.LayoutKeyOpts().MinGroupSize; got != -1 {
		t.Errorf("NoGrouping should map to -1, got %d", got)
	}
}

func TestParseCompose(t *testing.T) {
	opts := Options{SourceData: []byte(composeFixture), Parser: ParserCompose}

	g, err := Parse(context.Background(), []byte(composeFixture), opts)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if g.NodeCount() != 6 {
		t.Errorf("NodeCount = %d, want 6", g.NodeCount())
	}
	if g.EdgeCount() != 7 {
		t.Errorf("EdgeCount = %d, want 7", g.EdgeCount())
	}
}

func TestParseJSONRoundTrip(t *testing.T) {
	g := infra.New()
	_ = g.AddNode(infra.Node{ID: "api", Type: infra.TypeService})
	_ = g.AddNode(infra.Node{ID: "db", Type: infra.TypeDatabase})
	_ = g.AddEdge(infra.Edge{From: "api", To: "db", Type: infra.EdgeDependsOn})

	data, err := infra.MarshalGraph(g)
	if err != nil {
		t.Fatalf("MarshalGraph failed: %v", err)
	}

	opts := Options{SourceData: data, Parser: ParserJSON}
	parsed, err := Parse(context.Background(), data, opts)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if parsed.NodeCount() != 2 || parsed.EdgeCount() != 1 {
		t.Errorf("round trip mismatch: %d nodes, %d edges", parsed.NodeCount(), parsed.EdgeCount())
	}
}

func TestGenerateDiagramSemantic(t *testing.T) {
	g := mustParseFixture(t)

	d, err := GenerateDiagram(context.Background(), g, Options{Mode: ModeSemantic})
	if err != nil {
		t.Fatalf("GenerateDiagram failed: %v", err)
	}

	if d.Width <= 0 || d.Height <= 0 {
		t.Errorf("degenerate canvas: %fx%f", d.Width, d.Height)
	}
	// api and worker share a dependency signature, so they collapse.
	var groups int
	for _, n := range d.Nodes {
		if n.IsGroup {
			groups++
		}
	}
	if groups == 0 {
		t.Error("expected at least one group box")
	}
	if len(d.Edges) == 0 {
		t.Error("expected routed edges")
	}
	for _, e := range d.Edges {
		if len(e.Points) < 2 {
			t.Errorf("edge %s->%s has %d points", e.From, e.To, len(e.Points))
		}
	}
}

func TestGenerateDiagramSemanticNoGrouping(t *testing.T) {
	g := mustParseFixture(t)

	d, err := GenerateDiagram(context.Background(), g, Options{Mode: ModeSemantic, NoGrouping: true})
	if err != nil {
		t.Fatalf("GenerateDiagram failed: %v", err)
	}
	if len(d.Nodes) != 6 {
		t.Errorf("NoGrouping should keep all 6 nodes, got %d", len(d.Nodes))
	}
	for _, n := range d.Nodes {
		if n.IsGroup {
			t.Errorf("unexpected group box %s", n.ID)
		}
	}
}

func TestGenerateDiagramSimple(t *testing.T) {
	g := mustParseFixture(t)

	d, err := GenerateDiagram(context.Background(), g, Options{Mode: ModeSimple})
	if err != nil {
		t.Fatalf("GenerateDiagram failed: %v", err)
	}
	if len(d.Nodes) != g.NodeCount() {
		t.Errorf("node count = %d, want %d", len(d.Nodes), g.NodeCount())
	}
	if len(d.Edges) != g.EdgeCount() {
		t.Errorf("edge count = %d, want %d", len(d.Edges), g.EdgeCount())
	}
	if d.CycleBroken {
		t.Error("acyclic fixture should not report a broken cycle")
	}
}

// stubBackend returns a fixed layout so backend-mode plumbing can be
// tested without a real engine.
type stubBackend struct {
	got backend.Graph
}

func (s *stubBackend) Layout(_ context.Context, g backend.Graph) (backend.Result, error) {
	s.got = g
	res := backend.Result{Width: 500, Height: 300}
	for i, n := range g.Nodes {
		res.Nodes = append(res.Nodes, backend.PositionedNode{
			ID: n.ID, X: float64(i) * 100, Y: 0, Width: n.Width, Height: n.Height,
		})
	}
	for _, e := range g.Edges {
		res.Edges = append(res.Edges, backend.EdgeRoute{
			ID: e.ID,
			Sections: []backend.Section{{
				Start: backend.Point{X: 0, Y: 0},
				End:   backend.Point{X: 100, Y: 0},
			}},
		})
	}
	return res, nil
}

func TestGenerateDiagramBackend(t *testing.T) {
	g := mustParseFixture(t)

	stub := &stubBackend{}
	d, err := GenerateDiagram(context.Background(), g, Options{Mode: ModeBackend, Backend: stub})
	if err != nil {
		t.Fatalf("GenerateDiagram failed: %v", err)
	}

	if !stub.got.Partitioned {
		t.Error("backend graph should carry partition hints by default")
	}
	if len(d.Nodes) != g.NodeCount() {
		t.Errorf("node count = %d, want %d", len(d.Nodes), g.NodeCount())
	}
	if len(d.Edges) != g.EdgeCount() {
		t.Errorf("edge count = %d, want %d", len(d.Edges), g.EdgeCount())
	}
	// Edge metadata survives the conversion round trip.
	for _, e := range d.Edges {
		if e.Type == "" {
			t.Errorf("edge %s->%s lost its type", e.From, e.To)
		}
		if len(e.Points) != 2 {
			t.Errorf("edge %s->%s has %d points, want 2", e.From, e.To, len(e.Points))
		}
	}
}

func TestGenerateDiagramBackendUnpartitioned(t *testing.T) {
	g := mustParseFixture(t)

	stub := &stubBackend{}
	_, err := GenerateDiagram(context.Background(), g, Options{Mode: ModeBackend, Backend: stub, Unpartitioned: true})
	if err != nil {
		t.Fatalf("GenerateDiagram failed: %v", err)
	}
	if stub.got.Partitioned {
		t.Error("Unpartitioned should strip partition hints")
	}
}

func TestRenderFormats(t *testing.T) {
	d := render.Diagram{
		Width:  200,
		Height: 100,
		Nodes: []render.DiagramNode{
			{ID: "api", Label: "api", X: 10, Y: 10, Width: 80, Height: 40},
		},
	}

	artifacts, err := Render(d, Options{Formats: []string{FormatSVG, FormatJSON}})
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if len(artifacts) != 2 {
		t.Fatalf("artifacts = %d, want 2", len(artifacts))
	}
	if !bytes.Contains(artifacts[FormatSVG], []byte("<svg")) {
		t.Error("svg artifact missing <svg element")
	}
	if !bytes.Contains(artifacts[FormatJSON], []byte(`"nodes"`)) {
		t.Error("json artifact missing nodes field")
	}
}

func TestRunnerExecute(t *testing.T) {
	runner := NewRunner(nil, nil, nil)
	defer runner.Close()

	opts := Options{
		SourceData: []byte(composeFixture),
		Parser:     ParserCompose,
		Formats:    []string{FormatSVG, FormatJSON},
	}

	result, err := runner.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	if result.Stats.NodeCount != 6 {
		t.Errorf("NodeCount = %d, want 6", result.Stats.NodeCount)
	}
	if result.GraphHash == "" {
		t.Error("GraphHash should be set")
	}
	if len(result.Artifacts) != 2 {
		t.Errorf("artifacts = %d, want 2", len(result.Artifacts))
	}
	if result.CacheInfo.ParseHit || result.CacheInfo.LayoutHit || result.CacheInfo.RenderHit {
		t.Error("NullCache run should not report cache hits")
	}
}

func TestRunnerExecuteCaching(t *testing.T) {
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache failed: %v", err)
	}
	runner := NewRunner(fc, nil, nil)
	defer runner.Close()

	opts := Options{
		SourceData: []byte(composeFixture),
		Parser:     ParserCompose,
	}

	first, err := runner.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("First execute failed: %v", err)
	}
	if first.CacheInfo.ParseHit || first.CacheInfo.LayoutHit || first.CacheInfo.RenderHit {
		t.Error("first run should be all misses")
	}

	second, err := runner.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("Second execute failed: %v", err)
	}
	if !second.CacheInfo.ParseHit || !second.CacheInfo.LayoutHit || !second.CacheInfo.RenderHit {
		t.Errorf("second run should be all hits, got %+v", second.CacheInfo)
	}
	if !bytes.Equal(first.Artifacts[FormatSVG], second.Artifacts[FormatSVG]) {
		t.Error("cached artifact differs from rendered one")
	}

	// Refresh bypasses the cache.
	opts.Refresh = true
	third, err := runner.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("Refresh execute failed: %v", err)
	}
	if third.CacheInfo.ParseHit || third.CacheInfo.LayoutHit || third.CacheInfo.RenderHit {
		t.Errorf("refresh run should be all misses, got %+v", third.CacheInfo)
	}
}

func TestRunnerDifferentOptionsDifferentKeys(t *testing.T) {
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache failed: %v", err)
	}
	runner := NewRunner(fc, nil, nil)
	defer runner.Close()

	opts := Options{SourceData: []byte(composeFixture), Parser: ParserCompose}
	if _, err := runner.Execute(context.Background(), opts); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	// A different mode must not reuse the semantic layout.
	opts = Options{SourceData: []byte(composeFixture), Parser: ParserCompose, Mode: ModeSimple}
	result, err := runner.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if result.CacheInfo.LayoutHit {
		t.Error("simple mode should not hit the semantic layout cache")
	}
	if !result.CacheInfo.ParseHit {
		t.Error("parse stage should hit: same source, same parser options")
	}
}

func TestRunnerExecuteInvalidSource(t *testing.T) {
	runner := NewRunner(nil, nil, nil)
	defer runner.Close()

	_, err := runner.Execute(context.Background(), Options{
		SourceData: []byte("services:\n  web:\n    depends_on: [ghost]\n"),
		Parser:     ParserCompose,
	})
	if err == nil {
		t.Fatal("dangling depends_on should fail")
	}
	if !strings.Contains(err.Error(), "parse") {
		t.Errorf("error should mention the failing stage: %v", err)
	}
}

func mustParseFixture(t *testing.T) *infra.Graph {
	t.Helper()
	g, err := Parse(context.Background(), []byte(composeFixture), Options{
		SourceData: []byte(composeFixture),
		Parser:     ParserCompose,
	})
	if err != nil {
		t.Fatalf("parse fixture: %v", err)
	}
	return g
}
