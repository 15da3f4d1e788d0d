package pipeline

import (
	"bytes"
	"context"
	"os"

	"github.com/BrennerSpear/clarity/pkg/compose"
	"github.com/BrennerSpear/clarity/pkg/enhance"
	"github.com/BrennerSpear/clarity/pkg/errors"
	"github.com/BrennerSpear/clarity/pkg/infra"
)

// readFile wraps os.ReadFile so the options layer stays free of direct
// filesystem imports.
func readFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// Parse builds a dependency graph from the input document.
//
// The parser is selected by opts.Parser: compose files are translated
// through the compose package, JSON documents are read back directly.
// When opts.Enhance is set, the graph is annotated by the configured
// enhancer; enhancement failures are logged and otherwise ignored.
func Parse(ctx context.Context, data []byte, opts Options) (*infra.Graph, error) {
	if err := opts.ValidateForParse(); err != nil {
		return nil, err
	}

	var g *infra.Graph
	var err error
	switch opts.Parser {
	case ParserCompose:
		g, err = compose.Parse(bytes.NewReader(data))
	case ParserJSON:
		g, err = infra.UnmarshalGraph(data)
	default:
		err = errors.New(errors.ErrCodeInvalidInput, "invalid parser: %q", opts.Parser)
	}
	if err != nil {
		return nil, err
	}

	if opts.Enhance {
		enhancer := selectEnhancer(opts)
		if err := enhancer.Enhance(ctx, g); err != nil {
			// Enhancement is advisory. A failed call leaves the graph
			// structurally complete, just without annotations.
			opts.Logger.Warn("Enhancement failed", "enhancer", opts.EnhancerName(), "error", err)
		}
	}

	return g, nil
}

// selectEnhancer picks the enhancer for this run. An explicit Enhancer
// wins, then OpenAI when a key is configured, then the offline heuristic.
func selectEnhancer(opts Options) enhance.Enhancer {
	if opts.Enhancer != nil {
		return opts.Enhancer
	}
	if opts.OpenAIKey != "" {
		e, err := enhance.NewOpenAI(opts.OpenAIKey, opts.OpenAIModel)
		if err == nil {
			return e
		}
		opts.Logger.Warn("OpenAI enhancer unavailable, falling back to heuristic", "error", err)
	}
	return enhance.Heuristic{}
}
