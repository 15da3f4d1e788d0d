package layout

import (
	"testing"

	"github.com/BrennerSpear/clarity/pkg/infra"
)

func groupingFixture(t *testing.T) *infra.Graph {
	t.Helper()
	return buildGraph(t,
		[]infra.Node{
			{ID: "worker-a", Type: infra.TypeService},
			{ID: "worker-b", Type: infra.TypeService},
			{ID: "db", Type: infra.TypeDatabase},
			{ID: "cache", Type: infra.TypeCache},
		},
		[]infra.Edge{
			dep("worker-a", "db"), dep("worker-a", "cache"),
			dep("worker-b", "db"), dep("worker-b", "cache"),
		},
	)
}

func TestGroupBySignature_Threshold(t *testing.T) {
	g := groupingFixture(t)

	res := GroupBySignature(g, GroupingOptions{MinGroupSize: 2})
	if len(res.Groups) != 1 {
		t.Fatalf("got %d groups, want 1", len(res.Groups))
	}
	grp := res.Groups[0]
	if len(grp.Members) != 2 {
		t.Errorf("group members = %v, want worker-a, worker-b", grp.Members)
	}
	if grp.Signature != "cache,db" {
		t.Errorf("signature = %q, want %q", grp.Signature, "cache,db")
	}
	if grp.Name != "worker-*" {
		t.Errorf("group name = %q, want %q", grp.Name, "worker-*")
	}

	// Raising the threshold above the bucket size leaves everyone alone.
	res = GroupBySignature(g, GroupingOptions{MinGroupSize: 3})
	if len(res.Groups) != 0 {
		t.Errorf("minGroupSize=3: got %d groups, want 0", len(res.Groups))
	}
	if len(res.Nodes) != 4 {
		t.Errorf("minGroupSize=3: got %d individual nodes, want 4", len(res.Nodes))
	}
}

func TestGroupBySignature_ExcludesTargets(t *testing.T) {
	// api has an incoming edge from nginx, so even though api and web
	// share a signature they must not group.
	g := buildGraph(t,
		[]infra.Node{
			{ID: "nginx", Type: infra.TypeProxy},
			{ID: "api", Type: infra.TypeService},
			{ID: "web", Type: infra.TypeService},
			{ID: "db", Type: infra.TypeDatabase},
		},
		[]infra.Edge{
			dep("nginx", "api"),
			dep("api", "db"),
			dep("web", "db"),
		},
	)

	res := GroupBySignature(g, GroupingOptions{MinGroupSize: 2})
	if len(res.Groups) != 0 {
		t.Errorf("got %d groups, want 0 (api is a target)", len(res.Groups))
	}
}

func TestGroupBySignature_ExcludeTypes(t *testing.T) {
	g := groupingFixture(t)

	res := GroupBySignature(g, GroupingOptions{
		MinGroupSize: 2,
		ExcludeTypes: []infra.NodeType{infra.TypeService},
	})
	if len(res.Groups) != 0 {
		t.Errorf("got %d groups, want 0 (services excluded)", len(res.Groups))
	}
}

func TestGroupBySignature_GroupEdges(t *testing.T) {
	g := groupingFixture(t)

	res := GroupBySignature(g, GroupingOptions{MinGroupSize: 2})

	// One edge per (group, dependency) pair; member edges are absorbed.
	if len(res.Edges) != 2 {
		t.Fatalf("got %d edges, want 2: %+v", len(res.Edges), res.Edges)
	}
	for _, e := range res.Edges {
		if e.From != res.Groups[0].ID {
			t.Errorf("edge from %s, want group-level edge", e.From)
		}
	}
}

func TestGroupBySignature_DirectionInference(t *testing.T) {
	g := buildGraph(t,
		[]infra.Node{
			{ID: "consumer-a", Type: infra.TypeService},
			{ID: "consumer-b", Type: infra.TypeService},
			{ID: "events", Type: infra.TypeQueue},
			{ID: "db", Type: infra.TypeDatabase},
		},
		[]infra.Edge{
			dep("consumer-a", "events"), dep("consumer-a", "db"),
			dep("consumer-b", "events"), dep("consumer-b", "db"),
		},
	)

	res := GroupBySignature(g, GroupingOptions{MinGroupSize: 2})
	if len(res.Groups) != 1 {
		t.Fatalf("got %d groups, want 1", len(res.Groups))
	}

	dirs := make(map[string]infra.Direction)
	for _, e := range res.Edges {
		dirs[e.To] = e.Direction
	}
	// Consumers read queues and write databases.
	if dirs["events"] != infra.DirectionRead {
		t.Errorf("direction to queue = %s, want read", dirs["events"])
	}
	if dirs["db"] != infra.DirectionWrite {
		t.Errorf("direction to db = %s, want write", dirs["db"])
	}
}

func TestGroupBySignature_FallbackName(t *testing.T) {
	// No common affix across members: name falls back to dependency types.
	g := buildGraph(t,
		[]infra.Node{
			{ID: "alpha", Type: infra.TypeService},
			{ID: "zulu", Type: infra.TypeService},
			{ID: "events", Type: infra.TypeQueue},
			{ID: "db", Type: infra.TypeDatabase},
		},
		[]infra.Edge{
			dep("alpha", "events"), dep("alpha", "db"),
			dep("zulu", "events"), dep("zulu", "db"),
		},
	)

	res := GroupBySignature(g, GroupingOptions{MinGroupSize: 2})
	if len(res.Groups) != 1 {
		t.Fatalf("got %d groups, want 1", len(res.Groups))
	}
	if got := res.Groups[0].Name; got != "db/queue clients (2)" {
		t.Errorf("group name = %q, want %q", got, "db/queue clients (2)")
	}
}

func TestGroupBySignature_EmptySignatureNeverGroups(t *testing.T) {
	g := buildGraph(t,
		[]infra.Node{svc("a"), svc("b"), svc("c")},
		nil,
	)

	res := GroupBySignature(g, GroupingOptions{MinGroupSize: 2})
	if len(res.Groups) != 0 || len(res.Nodes) != 3 {
		t.Errorf("leaf nodes grouped: %+v", res)
	}
}

func TestSignature(t *testing.T) {
	g := buildGraph(t,
		[]infra.Node{svc("a"), svc("z"), svc("m")},
		[]infra.Edge{dep("a", "z"), dep("a", "m")},
	)

	if got := Signature(g, "a"); got != "m,z" {
		t.Errorf("Signature(a) = %q, want %q (sorted)", got, "m,z")
	}
	if got := Signature(g, "z"); got != "" {
		t.Errorf("Signature(z) = %q, want empty", got)
	}
}
