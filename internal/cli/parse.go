package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/BrennerSpear/clarity/pkg/infra"
)

// parseOpts holds the command-line flags for the parse command.
type parseOpts struct {
	output  string
	enhance bool
	refresh bool
	noCache bool
}

// parseCommand creates the parse command: input file to graph JSON.
func (c *CLI) parseCommand() *cobra.Command {
	var opts parseOpts

	cmd := &cobra.Command{
		Use:   "parse [file]",
		Short: "Parse an infrastructure definition into a graph JSON document",
		Long: `Parse a docker-compose file into the graph JSON document the other
commands consume. Service images are classified into node types
(database, cache, queue, proxy), and depends_on, links, volumes and
networks become typed edges.

With --enhance, the graph is additionally annotated with descriptions
and logical groups, via OpenAI when an API key is configured and a
built-in heuristic otherwise.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runParse(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().BoolVar(&opts.enhance, "enhance", false, "annotate the graph with descriptions and groups")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "bypass the cache and re-parse")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")

	return cmd
}

// runParse parses the input and writes the graph JSON.
func (c *CLI) runParse(ctx context.Context, input string, opts parseOpts) error {
	runner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	pipeOpts := c.pipelineOptions()
	pipeOpts.Source = input
	pipeOpts.Enhance = opts.enhance || pipeOpts.Enhance
	pipeOpts.Refresh = opts.refresh

	track := newProgress(c.Logger)
	g, cached, err := runner.ParseWithCacheInfo(ctx, pipeOpts)
	if err != nil {
		return err
	}
	track.done(fmt.Sprintf("Parsed %s", input))
	printStats(g.NodeCount(), g.EdgeCount(), cached)

	data, err := infra.MarshalGraph(g)
	if err != nil {
		return err
	}

	if opts.output == "" {
		fmt.Println(string(data))
		return nil
	}
	if err := os.WriteFile(opts.output, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", opts.output, err)
	}
	printFile(opts.output)
	printNextStep("Next", fmt.Sprintf("%s generate %s", appName, opts.output))
	return nil
}
