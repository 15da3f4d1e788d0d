package layout

import (
	"strings"

	"github.com/BrennerSpear/clarity/pkg/infra"
)

// Role is the semantic classification of a node, used to order diagram
// columns left-to-right (entry points on the left, data stores on the right).
type Role string

// The closed set of semantic roles.
const (
	RoleEntry    Role = "entry"
	RoleGateway  Role = "gateway"
	RoleUI       Role = "ui"
	RoleAPI      Role = "api"
	RoleWorker   Role = "worker"
	RoleProducer Role = "producer"
	RoleConsumer Role = "consumer"
	RoleQueue    Role = "queue"
	RoleData     Role = "data"
	RoleHelper   Role = "helper"
)

// Rule is one classification heuristic: when Match reports true for a node,
// the node gets Role. Rules are evaluated in slice order and the first match
// wins, so rule order is part of the classification contract.
type Rule struct {
	Name  string
	Match func(n infra.Node) bool
	Role  Role
}

// typeIs returns a predicate matching any of the given node types.
func typeIs(types ...infra.NodeType) func(infra.Node) bool {
	return func(n infra.Node) bool {
		for _, t := range types {
			if n.Type == t {
				return true
			}
		}
		return false
	}
}

// nameHas returns a predicate matching when the lowercased display name
// contains any of the given keywords.
func nameHas(keywords ...string) func(infra.Node) bool {
	return func(n infra.Node) bool {
		name := strings.ToLower(n.DisplayName())
		for _, kw := range keywords {
			if strings.Contains(name, kw) {
				return true
			}
		}
		return false
	}
}

// DefaultRules is the ordered classification table. Type-based rules come
// first (the parser's type field is authoritative), then name keyword rules
// from most specific to least, then the caller falls back to [RoleAPI].
//
// A name matching multiple keyword sets resolves to the first matching rule,
// e.g. "queue-worker" is a worker, not a queue.
var DefaultRules = []Rule{
	{Name: "type:proxy", Match: typeIs(infra.TypeProxy), Role: RoleEntry},
	{Name: "type:data", Match: typeIs(infra.TypeDatabase, infra.TypeStorage, infra.TypeCache), Role: RoleData},
	{Name: "type:queue", Match: typeIs(infra.TypeQueue), Role: RoleQueue},
	{Name: "type:ui", Match: typeIs(infra.TypeUI), Role: RoleUI},
	{Name: "type:helper", Match: typeIs(infra.TypeHelper), Role: RoleHelper},

	{Name: "name:entry", Match: nameHas("nginx", "traefik", "haproxy", "envoy", "ingress", "load-balancer", "loadbalancer", "reverse-proxy"), Role: RoleEntry},
	{Name: "name:gateway", Match: nameHas("gateway", "apigw"), Role: RoleGateway},
	{Name: "name:consumer", Match: nameHas("consumer", "subscriber"), Role: RoleConsumer},
	{Name: "name:producer", Match: nameHas("producer", "publisher"), Role: RoleProducer},
	{Name: "name:worker", Match: nameHas("worker", "processor", "job"), Role: RoleWorker},
	{Name: "name:queue", Match: nameHas("queue", "kafka", "rabbitmq", "nats", "broker"), Role: RoleQueue},
	{Name: "name:database", Match: nameHas("postgres", "mysql", "mariadb", "mongo", "database", "-db", "db-"), Role: RoleData},
	{Name: "name:cache", Match: nameHas("redis", "memcached", "cache"), Role: RoleData},
	{Name: "name:storage", Match: nameHas("minio", "s3", "storage"), Role: RoleData},
	{Name: "name:helper", Match: nameHas("sidecar", "exporter", "agent", "init-"), Role: RoleHelper},
	{Name: "name:ui", Match: nameHas("frontend", "web-ui", "dashboard"), Role: RoleUI},
}

// Classify assigns a semantic role to a node by evaluating [DefaultRules]
// in order. Nodes matching no rule default to [RoleAPI] (a generic
// application service).
//
// Classify is a pure function of the node's type and lowercased name.
func Classify(n infra.Node) Role {
	return ClassifyWith(DefaultRules, n)
}

// ClassifyWith evaluates a custom rule table in order and returns the first
// matching role, or [RoleAPI] if nothing matches.
func ClassifyWith(rules []Rule, n infra.Node) Role {
	for _, r := range rules {
		if r.Match(n) {
			return r.Role
		}
	}
	return RoleAPI
}

// ClassifyAll classifies every node in the graph.
// The full edge list is intentionally not consulted today; the signature
// takes the graph (not a node slice) so that future rules can use topology.
func ClassifyAll(g *infra.Graph) map[string]Role {
	roles := make(map[string]Role, g.NodeCount())
	for _, n := range g.Nodes() {
		roles[n.ID] = Classify(n)
	}
	return roles
}
