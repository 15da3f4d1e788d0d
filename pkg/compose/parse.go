package compose

import (
	"io"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/BrennerSpear/clarity/pkg/errors"
	"github.com/BrennerSpear/clarity/pkg/infra"
)

// imageTypes maps image-name keywords to node types. First match wins, so
// more specific keywords sit above generic ones.
var imageTypes = []struct {
	keyword string
	typ     infra.NodeType
}{
	{"postgres", infra.TypeDatabase},
	{"mysql", infra.TypeDatabase},
	{"mariadb", infra.TypeDatabase},
	{"mongo", infra.TypeDatabase},
	{"cockroach", infra.TypeDatabase},
	{"cassandra", infra.TypeDatabase},
	{"clickhouse", infra.TypeDatabase},
	{"elasticsearch", infra.TypeDatabase},
	{"redis", infra.TypeCache},
	{"memcached", infra.TypeCache},
	{"keydb", infra.TypeCache},
	{"kafka", infra.TypeQueue},
	{"redpanda", infra.TypeQueue},
	{"rabbitmq", infra.TypeQueue},
	{"nats", infra.TypeQueue},
	{"activemq", infra.TypeQueue},
	{"mosquitto", infra.TypeQueue},
	{"nginx", infra.TypeProxy},
	{"traefik", infra.TypeProxy},
	{"haproxy", infra.TypeProxy},
	{"envoy", infra.TypeProxy},
	{"caddy", infra.TypeProxy},
	{"minio", infra.TypeStorage},
	{"grafana", infra.TypeUI},
}

// ParseFile reads a docker-compose file and builds the dependency graph.
func ParseFile(path string) (*infra.Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open compose file %s", path)
	}
	defer f.Close()
	return Parse(f)
}

// Parse reads a docker-compose document and builds the dependency graph.
//
// Every service becomes a node, typed by image-name heuristics. depends_on
// and links become directed edges. Named volumes and custom networks become
// their own nodes so shared state and shared fabric show up in the diagram;
// the compose "default" network is omitted because every service sits on it.
//
// Output is deterministic: services are processed in name order regardless
// of document order.
func Parse(r io.Reader) (*infra.Graph, error) {
	var file File
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&file); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "decode compose document")
	}
	return Build(file)
}

// Build converts an already-decoded compose file into a graph.
func Build(file File) (*infra.Graph, error) {
	if len(file.Services) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidManifest, "compose document has no services")
	}

	names := make([]string, 0, len(file.Services))
	for name := range file.Services {
		names = append(names, name)
	}
	sort.Strings(names)

	g := infra.New()

	for _, name := range names {
		if err := errors.ValidateComposeServiceName(name); err != nil {
			return nil, err
		}
		svc := file.Services[name]
		node := infra.Node{
			ID:   name,
			Name: name,
			Type: imageType(svc.Image),
		}
		if svc.ContainerName != "" {
			node.Name = svc.ContainerName
		}
		if svc.Deploy != nil {
			limits := svc.Deploy.Resources.Limits
			if limits.CPUs != "" || limits.Memory != "" {
				node.Resources = &infra.Resources{CPU: limits.CPUs, Memory: limits.Memory}
			}
		}
		if err := g.AddNode(node); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "service %s", name)
		}
	}

	if err := addVolumeNodes(g, file, names); err != nil {
		return nil, err
	}
	if err := addNetworkNodes(g, file, names); err != nil {
		return nil, err
	}

	for _, name := range names {
		svc := file.Services[name]

		for _, dep := range svc.DependsOn {
			if err := g.AddEdge(infra.Edge{From: name, To: dep, Type: infra.EdgeDependsOn}); err != nil {
				return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "service %s depends_on %s", name, dep)
			}
		}
		for _, link := range svc.Links {
			target := linkTarget(link)
			if err := g.AddEdge(infra.Edge{From: name, To: target, Type: infra.EdgeLink}); err != nil {
				return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "service %s links %s", name, target)
			}
		}
		for _, vol := range svc.Volumes {
			if id, ok := volumeNodeID(file, vol); ok {
				// Named volume nodes were added above; the error path here
				// is unreachable with a well-formed file.
				if err := g.AddEdge(infra.Edge{From: name, To: id, Type: infra.EdgeVolume}); err != nil {
					return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "service %s volume %s", name, vol.Source)
				}
			}
		}
		for _, net := range svc.Networks {
			if net == "default" {
				continue
			}
			if err := g.AddEdge(infra.Edge{From: name, To: networkNodeID(net), Type: infra.EdgeNetwork}); err != nil {
				return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "service %s network %s", name, net)
			}
		}
	}

	return g, nil
}

func addVolumeNodes(g *infra.Graph, file File, names []string) error {
	seen := map[string]bool{}
	for _, name := range names {
		for _, vol := range file.Services[name].Volumes {
			id, ok := volumeNodeID(file, vol)
			if !ok || seen[id] {
				continue
			}
			seen[id] = true
			if err := g.AddNode(infra.Node{ID: id, Name: vol.Source, Type: infra.TypeVolume}); err != nil {
				return errors.Wrap(errors.ErrCodeInvalidManifest, err, "volume %s", vol.Source)
			}
		}
	}
	return nil
}

func addNetworkNodes(g *infra.Graph, file File, names []string) error {
	seen := map[string]bool{}
	for _, name := range names {
		for _, net := range file.Services[name].Networks {
			if net == "default" || seen[net] {
				continue
			}
			seen[net] = true
			if err := g.AddNode(infra.Node{ID: networkNodeID(net), Name: net, Type: infra.TypeNetwork}); err != nil {
				return errors.Wrap(errors.ErrCodeInvalidManifest, err, "network %s", net)
			}
		}
	}
	return nil
}

// volumeNodeID reports whether the mount refers to a named volume and, if
// so, returns its node id. Bind mounts (paths) and anonymous volumes do not
// become nodes.
func volumeNodeID(file File, vol Volume) (string, bool) {
	src := vol.Source
	if src == "" || strings.HasPrefix(src, ".") || strings.HasPrefix(src, "/") || strings.HasPrefix(src, "~") {
		return "", false
	}
	if file.Volumes != nil {
		if _, declared := file.Volumes[src]; !declared {
			return "", false
		}
	}
	return "volume:" + src, true
}

func networkNodeID(name string) string { return "network:" + name }

// linkTarget strips the optional alias from a "service:alias" link spec.
func linkTarget(link string) string {
	if i := strings.IndexByte(link, ':'); i >= 0 {
		return link[:i]
	}
	return link
}

// imageType guesses a node type from an image reference. The registry path
// and tag are stripped first so "docker.io/bitnami/postgresql:16" matches
// the postgres keyword.
func imageType(image string) infra.NodeType {
	if image == "" {
		return infra.TypeService
	}
	base := image
	if i := strings.LastIndexByte(base, '/'); i >= 0 {
		base = base[i+1:]
	}
	if i := strings.IndexByte(base, '@'); i >= 0 {
		base = base[:i]
	}
	if i := strings.IndexByte(base, ':'); i >= 0 {
		base = base[:i]
	}
	base = strings.ToLower(base)

	for _, entry := range imageTypes {
		if strings.Contains(base, entry.keyword) {
			return entry.typ
		}
	}
	return infra.TypeService
}
