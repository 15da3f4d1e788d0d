package layout

import (
	"fmt"
	"sort"
	"strings"

	"github.com/BrennerSpear/clarity/pkg/infra"
)

// =============================================================================
// Grouping Preprocessor
// =============================================================================

// Group is a synthetic node collapsing services that share an identical
// outgoing-dependency signature. Collapsing N workers that all talk to the
// same queue and database into one box keeps large diagrams readable.
type Group struct {
	ID           string   `json:"id" bson:"id"`
	Name         string   `json:"name" bson:"name"`
	Members      []string `json:"members" bson:"members"`
	Signature    string   `json:"signature" bson:"signature"`
	Dependencies []string `json:"dependencies" bson:"dependencies"`
}

// DirectedEdge is an edge in the grouped graph with an inferred data-flow
// direction. From may reference a group ID.
type DirectedEdge struct {
	From      string          `json:"from" bson:"from"`
	To        string          `json:"to" bson:"to"`
	Type      infra.EdgeType  `json:"type" bson:"type"`
	Direction infra.Direction `json:"direction" bson:"direction"`
}

// GroupingOptions configures the grouping preprocessor.
type GroupingOptions struct {
	// MinGroupSize is the minimum member count for a bucket to become a
	// group. Defaults to 2.
	MinGroupSize int

	// ExcludeTypes lists node types that are never absorbed into groups.
	ExcludeTypes []infra.NodeType

	// KeepWithIncomingEdges keeps nodes that have any incoming edge out of
	// groups: something depends on them, so they are meaningful individual
	// targets. Defaults to true; set IncludeTargets to override.
	IncludeTargets bool
}

// GroupingResult is the output of [GroupBySignature].
type GroupingResult struct {
	// Nodes are the services that remain individual.
	Nodes []infra.Node

	// Groups are the synthetic group nodes, in deterministic order.
	Groups []Group

	// Edges is the de-duplicated directed edge list over Nodes ∪ Groups.
	Edges []DirectedEdge
}

// GroupBySignature collapses nodes with identical non-empty dependency
// signatures into groups.
//
// A node's dependency signature is the sorted, comma-joined list of its
// direct dependency IDs. Nodes whose type is excluded, or which have
// incoming edges (unless IncludeTargets is set), or whose signature is
// empty, always stay individual. Buckets smaller than MinGroupSize fall
// back to individual nodes.
//
// Each group gets one outgoing edge per dependency with an inferred
// direction (see inferDirection); remaining individual nodes keep their
// original edges, de-duplicated to one edge per (from, to) pair.
func GroupBySignature(g *infra.Graph, opts GroupingOptions) GroupingResult {
	if opts.MinGroupSize <= 0 {
		opts.MinGroupSize = 2
	}

	excluded := make(map[infra.NodeType]bool, len(opts.ExcludeTypes))
	for _, t := range opts.ExcludeTypes {
		excluded[t] = true
	}

	// Bucket candidates by signature, preserving insertion order of both
	// buckets and members so group IDs are deterministic.
	var sigOrder []string
	buckets := make(map[string][]infra.Node)
	var individual []infra.Node

	for _, n := range g.Nodes() {
		sig := Signature(g, n.ID)
		collapsible := sig != "" &&
			!excluded[n.Type] &&
			(opts.IncludeTargets || g.InDegree(n.ID) == 0)
		if !collapsible {
			individual = append(individual, n)
			continue
		}
		if _, seen := buckets[sig]; !seen {
			sigOrder = append(sigOrder, sig)
		}
		buckets[sig] = append(buckets[sig], n)
	}

	result := GroupingResult{}
	grouped := make(map[string]string) // member ID -> group ID

	for _, sig := range sigOrder {
		members := buckets[sig]
		if len(members) < opts.MinGroupSize {
			individual = append(individual, members...)
			continue
		}

		deps := strings.Split(sig, ",")
		group := Group{
			ID:           fmt.Sprintf("group-%d", len(result.Groups)+1),
			Name:         groupName(g, members, deps),
			Signature:    sig,
			Dependencies: deps,
		}
		for _, m := range members {
			group.Members = append(group.Members, m.ID)
			grouped[m.ID] = group.ID
		}
		result.Groups = append(result.Groups, group)
	}

	result.Nodes = individual

	// Group-level edges first, then surviving individual edges, one per
	// (from, to) pair. Members absorbed into a group contribute no edges
	// of their own.
	seen := make(map[[2]string]bool)
	for _, grp := range result.Groups {
		role := groupSourceRole(g, grp)
		for _, dep := range grp.Dependencies {
			key := [2]string{grp.ID, dep}
			if seen[key] {
				continue
			}
			seen[key] = true
			target, _ := g.Node(dep)
			result.Edges = append(result.Edges, DirectedEdge{
				From:      grp.ID,
				To:        dep,
				Type:      edgeTypeFor(target.Type),
				Direction: inferDirection(role, target.Type),
			})
		}
	}
	for _, e := range g.Edges() {
		if _, absorbed := grouped[e.From]; absorbed {
			continue
		}
		to := e.To
		if gid, absorbed := grouped[to]; absorbed {
			to = gid
		}
		key := [2]string{e.From, to}
		if seen[key] {
			continue
		}
		seen[key] = true
		dir := e.Direction
		if dir == "" {
			source, _ := g.Node(e.From)
			target, _ := g.Node(e.To)
			dir = inferDirection(sourceRole(source.DisplayName()), target.Type)
		}
		result.Edges = append(result.Edges, DirectedEdge{From: e.From, To: to, Type: e.Type, Direction: dir})
	}

	return result
}

// Signature returns the node's dependency signature: its direct dependency
// IDs sorted and comma-joined. Nodes with no dependencies have an empty
// signature and are never grouped.
func Signature(g *infra.Graph, id string) string {
	deps := g.Dependencies(id)
	if len(deps) == 0 {
		return ""
	}
	sorted := make([]string, len(deps))
	copy(sorted, deps)
	sort.Strings(sorted)
	// Parallel edges to the same target collapse into one signature entry.
	uniq := sorted[:0]
	for i, d := range sorted {
		if i == 0 || d != sorted[i-1] {
			uniq = append(uniq, d)
		}
	}
	return strings.Join(uniq, ",")
}

// =============================================================================
// Group Naming
// =============================================================================

// groupName derives a display name for a group: a common name pattern
// across members when one exists, otherwise a description of what the
// group depends on.
func groupName(g *infra.Graph, members []infra.Node, deps []string) string {
	names := make([]string, len(members))
	for i, m := range members {
		names[i] = m.DisplayName()
	}
	if pattern := commonPattern(names); pattern != "" {
		return pattern
	}
	return dependencyName(g, deps, len(members))
}

// commonPattern detects a shared prefix/suffix across names and renders it
// as "prefix-*", "*-suffix", or "prefix-*-suffix". Affixes shorter than
// 3 characters (after stripping trailing separators) are ignored.
func commonPattern(names []string) string {
	if len(names) < 2 {
		return ""
	}
	prefix := trimSeparators(commonPrefix(names))
	suffix := trimSeparators(commonSuffix(names))
	if len(prefix) < 3 {
		prefix = ""
	}
	if len(suffix) < 3 {
		suffix = ""
	}
	// A name that is entirely prefix+suffix would render degenerately.
	if prefix != "" && suffix != "" && len(prefix)+len(suffix) >= len(names[0]) {
		suffix = ""
	}

	switch {
	case prefix != "" && suffix != "":
		return prefix + "-*-" + suffix
	case prefix != "":
		return prefix + "-*"
	case suffix != "":
		return "*-" + suffix
	default:
		return ""
	}
}

func commonPrefix(names []string) string {
	p := names[0]
	for _, n := range names[1:] {
		for !strings.HasPrefix(n, p) {
			p = p[:len(p)-1]
			if p == "" {
				return ""
			}
		}
	}
	return p
}

func commonSuffix(names []string) string {
	s := names[0]
	for _, n := range names[1:] {
		for !strings.HasSuffix(n, s) {
			s = s[1:]
			if s == "" {
				return ""
			}
		}
	}
	return s
}

func trimSeparators(s string) string {
	return strings.Trim(s, "-_.")
}

// dependencyName names a group by the types of what it depends on,
// e.g. "db/queue clients (3)".
func dependencyName(g *infra.Graph, deps []string, memberCount int) string {
	kinds := make(map[string]bool)
	for _, dep := range deps {
		n, ok := g.Node(dep)
		if !ok {
			continue
		}
		kinds[typeLabel(n.Type)] = true
	}
	labels := make([]string, 0, len(kinds))
	for k := range kinds {
		labels = append(labels, k)
	}
	sort.Strings(labels)
	if len(labels) == 0 {
		labels = []string{"service"}
	}
	return fmt.Sprintf("%s clients (%d)", strings.Join(labels, "/"), memberCount)
}

func typeLabel(t infra.NodeType) string {
	switch t {
	case infra.TypeDatabase:
		return "db"
	case infra.TypeCache:
		return "cache"
	case infra.TypeQueue:
		return "queue"
	case infra.TypeStorage:
		return "storage"
	default:
		return "service"
	}
}

// =============================================================================
// Direction Inference
// =============================================================================

// groupSourceRole classifies a group by its member names: if every member
// classifies the same way, the group inherits that role, otherwise it is
// generic.
func groupSourceRole(g *infra.Graph, grp Group) string {
	role := ""
	for _, id := range grp.Members {
		n, _ := g.Node(id)
		r := sourceRole(n.DisplayName())
		if role == "" {
			role = r
		} else if role != r {
			return "generic"
		}
	}
	if role == "" {
		return "generic"
	}
	return role
}

// sourceRole classifies an edge source by name keywords for direction
// inference. This is a narrower classification than [Classify]: only the
// distinctions that change data-flow direction matter here.
func sourceRole(name string) string {
	lower := strings.ToLower(name)
	switch {
	case strings.Contains(lower, "consumer") || strings.Contains(lower, "subscriber"):
		return "consumer"
	case strings.Contains(lower, "producer") || strings.Contains(lower, "publisher"):
		return "producer"
	case strings.Contains(lower, "worker") || strings.Contains(lower, "processor"):
		return "worker"
	default:
		return "generic"
	}
}

// inferDirection maps (source role, target type) to a data-flow direction:
//
//   - consumers read queues and write databases/caches (they drain work
//     and persist results)
//   - producers write queues
//   - workers read queues
//   - everything else defaults to bidirectional for databases/caches and
//     write for queues
func inferDirection(role string, target infra.NodeType) infra.Direction {
	type key struct {
		role   string
		target infra.NodeType
	}
	directions := map[key]infra.Direction{
		{"consumer", infra.TypeQueue}:    infra.DirectionRead,
		{"consumer", infra.TypeDatabase}: infra.DirectionWrite,
		{"consumer", infra.TypeCache}:    infra.DirectionWrite,
		{"producer", infra.TypeQueue}:    infra.DirectionWrite,
		{"worker", infra.TypeQueue}:      infra.DirectionRead,
		{"generic", infra.TypeQueue}:     infra.DirectionWrite,
		{"generic", infra.TypeDatabase}:  infra.DirectionBidirectional,
		{"generic", infra.TypeCache}:     infra.DirectionBidirectional,
	}
	if d, ok := directions[key{role, target}]; ok {
		return d
	}
	// Roles without a specific entry fall back to the generic row.
	if d, ok := directions[key{"generic", target}]; ok {
		return d
	}
	return infra.DirectionBidirectional
}

// edgeTypeFor picks the edge type for a synthetic group edge from the
// target's node type.
func edgeTypeFor(target infra.NodeType) infra.EdgeType {
	switch target {
	case infra.TypeDatabase:
		return infra.EdgeDatabase
	case infra.TypeCache:
		return infra.EdgeCache
	default:
		return infra.EdgeDependsOn
	}
}
