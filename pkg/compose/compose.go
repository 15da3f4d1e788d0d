package compose

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// File is a parsed docker-compose document. Only the keys that carry
// dependency or sizing information are modeled; everything else is ignored.
type File struct {
	Services map[string]Service  `yaml:"services"`
	Volumes  map[string]yaml.Node `yaml:"volumes"`
	Networks map[string]yaml.Node `yaml:"networks"`
}

// Service is one compose service entry.
type Service struct {
	Image         string    `yaml:"image"`
	ContainerName string    `yaml:"container_name"`
	DependsOn     DependsOn `yaml:"depends_on"`
	Links         []string  `yaml:"links"`
	Volumes       []Volume  `yaml:"volumes"`
	Networks      Networks  `yaml:"networks"`
	Deploy        *Deploy   `yaml:"deploy"`
}

// Deploy carries the subset of deployment configuration used for sizing.
type Deploy struct {
	Resources struct {
		Limits struct {
			CPUs   string `yaml:"cpus"`
			Memory string `yaml:"memory"`
		} `yaml:"limits"`
	} `yaml:"resources"`
}

// DependsOn accepts both compose forms: the short list
// ("depends_on: [db, redis]") and the long map with per-service conditions.
type DependsOn []string

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *DependsOn) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.SequenceNode:
		var list []string
		if err := value.Decode(&list); err != nil {
			return err
		}
		*d = list
		return nil
	case yaml.MappingNode:
		// Key order in the document is preserved: content alternates
		// key, value, key, value.
		var list []string
		for i := 0; i < len(value.Content); i += 2 {
			list = append(list, value.Content[i].Value)
		}
		*d = list
		return nil
	default:
		return fmt.Errorf("line %d: depends_on must be a list or a map", value.Line)
	}
}

// Networks accepts both compose forms: a plain list of network names and a
// map with per-network options.
type Networks []string

// UnmarshalYAML implements yaml.Unmarshaler.
func (n *Networks) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.SequenceNode:
		var list []string
		if err := value.Decode(&list); err != nil {
			return err
		}
		*n = list
		return nil
	case yaml.MappingNode:
		var list []string
		for i := 0; i < len(value.Content); i += 2 {
			list = append(list, value.Content[i].Value)
		}
		*n = list
		return nil
	default:
		return fmt.Errorf("line %d: networks must be a list or a map", value.Line)
	}
}

// Volume is one service volume mount. Compose allows a short string form
// ("data:/var/lib/postgresql/data", "./conf:/etc/conf") and a long map form.
type Volume struct {
	Source string
	Target string
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (v *Volume) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		var s string
		if err := value.Decode(&s); err != nil {
			return err
		}
		v.Source, v.Target = splitVolumeSpec(s)
		return nil
	case yaml.MappingNode:
		var long struct {
			Source string `yaml:"source"`
			Target string `yaml:"target"`
		}
		if err := value.Decode(&long); err != nil {
			return err
		}
		v.Source, v.Target = long.Source, long.Target
		return nil
	default:
		return fmt.Errorf("line %d: volume must be a string or a map", value.Line)
	}
}

// splitVolumeSpec splits "source:target[:mode]". A spec without a colon is
// an anonymous volume and has no source.
func splitVolumeSpec(s string) (source, target string) {
	for i := 0; i < len(s); i++ {
		if s[i] == ':' {
			return s[:i], s[i+1:]
		}
	}
	return "", s
}
