package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/BrennerSpear/clarity/pkg/pipeline"
	"github.com/BrennerSpear/clarity/pkg/render"
)

// layoutCommand creates the layout command for computing diagram geometry.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output  string
		noCache bool
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "layout [file]",
		Short: "Compute diagram layout from an infrastructure definition",
		Long: `Compute diagram layout without rendering.

The layout command takes a compose file or graph JSON and computes box
positions and routed connections. The output is a diagram JSON document
that 'render' turns into SVG, useful for inspecting geometry or feeding
a custom renderer.

Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			merged := c.pipelineOptions()
			mergeFlagOptions(&merged, &opts, cmd)
			merged.Source = args[0]
			return c.runLayout(cmd.Context(), merged, output, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.diagram.json)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	addLayoutFlags(cmd, &opts)
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "bypass the cache and recompute")

	return cmd
}

// runLayout parses the input, computes the diagram, and writes it as JSON.
func (c *CLI) runLayout(ctx context.Context, opts pipeline.Options, output string, noCache bool) error {
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	opts.SetLayoutDefaults()

	g, err := runner.Parse(ctx, opts)
	if err != nil {
		return err
	}

	track := newProgress(c.Logger)
	diagram, cached, err := runner.GenerateDiagramWithCacheInfo(ctx, g, opts)
	if err != nil {
		return err
	}
	track.done(fmt.Sprintf("Computed %s layout", opts.Mode))
	printStats(len(diagram.Nodes), len(diagram.Edges), cached)

	data, err := render.RenderJSON(diagram)
	if err != nil {
		return err
	}

	if output == "" {
		output = strings.TrimSuffix(opts.Source, filepath.Ext(opts.Source)) + ".diagram.json"
	}
	if err := os.WriteFile(output, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", output, err)
	}
	printFile(output)
	printNextStep("Next", fmt.Sprintf("%s render %s", appName, output))
	return nil
}
