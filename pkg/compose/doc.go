// Package compose parses docker-compose documents into infrastructure
// dependency graphs.
//
// The parser is tolerant by design: it models only the keys that carry
// dependency or sizing information (services, depends_on, links, volumes,
// networks, deploy resource limits) and ignores everything else, so any
// valid compose file of any schema version parses. Node types come from
// image-name heuristics and can be refined afterwards, for example by
// [enhance.Enhancer].
package compose
