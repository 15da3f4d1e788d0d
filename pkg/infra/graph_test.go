package infra

import (
	"errors"
	"testing"
)

func TestAddNode_Duplicate(t *testing.T) {
	g := New()
	if err := g.AddNode(Node{ID: "web", Type: TypeService}); err != nil {
		t.Fatalf("AddNode() error = %v", err)
	}
	err := g.AddNode(Node{ID: "web", Type: TypeUI})
	if !errors.Is(err, ErrDuplicateNodeID) {
		t.Errorf("AddNode() error = %v, want ErrDuplicateNodeID", err)
	}
}

func TestAddNode_EmptyID(t *testing.T) {
	g := New()
	if err := g.AddNode(Node{}); !errors.Is(err, ErrInvalidNodeID) {
		t.Errorf("AddNode() error = %v, want ErrInvalidNodeID", err)
	}
}

func TestAddEdge_UnknownEndpoints(t *testing.T) {
	g := New()
	g.AddNode(Node{ID: "a", Type: TypeService})

	if err := g.AddEdge(Edge{From: "missing", To: "a"}); !errors.Is(err, ErrUnknownSourceNode) {
		t.Errorf("AddEdge() error = %v, want ErrUnknownSourceNode", err)
	}
	if err := g.AddEdge(Edge{From: "a", To: "missing"}); !errors.Is(err, ErrUnknownTargetNode) {
		t.Errorf("AddEdge() error = %v, want ErrUnknownTargetNode", err)
	}
}

func TestAdjacency(t *testing.T) {
	g := New()
	g.AddNode(Node{ID: "web", Type: TypeUI})
	g.AddNode(Node{ID: "api", Type: TypeService})
	g.AddNode(Node{ID: "db", Type: TypeDatabase})
	g.AddEdge(Edge{From: "web", To: "api", Type: EdgeDependsOn})
	g.AddEdge(Edge{From: "api", To: "db", Type: EdgeDependsOn})

	if deps := g.Dependencies("web"); len(deps) != 1 || deps[0] != "api" {
		t.Errorf("Dependencies(web) = %v, want [api]", deps)
	}
	if deps := g.Dependents("db"); len(deps) != 1 || deps[0] != "api" {
		t.Errorf("Dependents(db) = %v, want [api]", deps)
	}
	if got := g.Degree("api"); got != 2 {
		t.Errorf("Degree(api) = %d, want 2", got)
	}
}

func TestNodes_InsertionOrder(t *testing.T) {
	g := New()
	for _, id := range []string{"c", "a", "b"} {
		g.AddNode(Node{ID: id, Type: TypeService})
	}

	got := g.NodeIDs()
	want := []string{"c", "a", "b"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("NodeIDs() = %v, want %v", got, want)
		}
	}
}

func TestRoundTrip(t *testing.T) {
	g := New()
	g.AddNode(Node{ID: "api", Name: "API", Type: TypeService, Resources: &Resources{CPU: "500m", Memory: "512Mi"}})
	g.AddNode(Node{ID: "db", Type: TypeDatabase})
	g.AddEdge(Edge{From: "api", To: "db", Type: EdgeDatabase, Direction: DirectionWrite})

	data, err := MarshalGraph(g)
	if err != nil {
		t.Fatalf("MarshalGraph() error = %v", err)
	}
	g2, err := UnmarshalGraph(data)
	if err != nil {
		t.Fatalf("UnmarshalGraph() error = %v", err)
	}

	if g2.NodeCount() != 2 || g2.EdgeCount() != 1 {
		t.Fatalf("round trip: %d nodes %d edges, want 2/1", g2.NodeCount(), g2.EdgeCount())
	}
	n, ok := g2.Node("api")
	if !ok || n.Resources == nil || n.Resources.CPU != "500m" {
		t.Errorf("round trip lost resources: %+v", n)
	}
	if e := g2.Edges()[0]; e.Direction != DirectionWrite {
		t.Errorf("round trip lost direction: %+v", e)
	}
}

func TestBuild_DanglingEdge(t *testing.T) {
	_, err := Build(Document{
		Nodes: []Node{{ID: "a", Type: TypeService}},
		Edges: []Edge{{From: "a", To: "ghost"}},
	})
	if !errors.Is(err, ErrUnknownTargetNode) {
		t.Errorf("Build() error = %v, want ErrUnknownTargetNode", err)
	}
}

func TestAnnotate(t *testing.T) {
	g := New()
	g.AddNode(Node{ID: "api", Type: TypeService})

	if !g.Annotate("api", "handles requests", "backend") {
		t.Fatal("Annotate() = false, want true")
	}
	n, _ := g.Node("api")
	if n.Description != "handles requests" || n.Group != "backend" {
		t.Errorf("Annotate() result = %+v", n)
	}
	if g.Annotate("ghost", "x", "y") {
		t.Error("Annotate(ghost) = true, want false")
	}
}
