package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/BrennerSpear/clarity/pkg/pipeline"
	"github.com/BrennerSpear/clarity/pkg/store"
)

// generateOpts holds flags specific to the generate command.
type generateOpts struct {
	output  string
	formats string
	noCache bool
	save    bool
}

// generateCommand creates the generate command: the full parse → layout →
// render pipeline in one invocation.
func (c *CLI) generateCommand() *cobra.Command {
	var genOpts generateOpts
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "generate [file]",
		Short: "Generate an architecture diagram from a compose file or graph JSON",
		Long: `Generate an architecture diagram in one step.

The input is a docker-compose file (.yml/.yaml) or a graph JSON document
(produced by 'parse'). The pipeline classifies each service, computes the
layout, routes the connections, and writes the requested output formats.

Results are cached locally, so repeated runs with the same input and
options are fast.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			merged := c.pipelineOptions()
			mergeFlagOptions(&merged, &opts, cmd)
			merged.Source = args[0]
			if f := parseFormats(genOpts.formats); f != nil {
				merged.Formats = f
			}
			return c.runGenerate(cmd.Context(), merged, genOpts)
		},
	}

	cmd.Flags().StringVarP(&genOpts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&genOpts.formats, "format", "f", "", "output format(s): svg (default), json (comma-separated)")
	cmd.Flags().BoolVar(&genOpts.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&genOpts.save, "save", false, "persist the run in the run store")
	addLayoutFlags(cmd, &opts)
	cmd.Flags().BoolVar(&opts.Enhance, "enhance", false, "annotate the graph (OpenAI when a key is configured, heuristic otherwise)")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "bypass the cache and recompute")
	cmd.Flags().StringVar(&opts.Title, "title", "", "diagram title")

	return cmd
}

// addLayoutFlags registers the layout-stage flags shared by generate and layout.
func addLayoutFlags(cmd *cobra.Command, opts *pipeline.Options) {
	cmd.Flags().StringVarP(&opts.Mode, "mode", "m", "", "layout mode: semantic (default), simple, backend")
	cmd.Flags().BoolVar(&opts.NoGrouping, "no-grouping", false, "keep every service as an individual box")
	cmd.Flags().IntVar(&opts.MinGroupSize, "min-group-size", 0, "minimum members for a group box")
	cmd.Flags().Float64Var(&opts.CellSize, "cell-size", 0, "routing grid resolution")
	cmd.Flags().BoolVar(&opts.Unpartitioned, "unpartitioned", false, "backend mode: drop partition and port hints")
}

// mergeFlagOptions copies flag-set values over config-file defaults.
// Only flags the user actually changed override the config.
func mergeFlagOptions(dst, flags *pipeline.Options, cmd *cobra.Command) {
	if cmd.Flags().Changed("mode") {
		dst.Mode = flags.Mode
	}
	if cmd.Flags().Changed("no-grouping") {
		dst.NoGrouping = flags.NoGrouping
	}
	if cmd.Flags().Changed("min-group-size") {
		dst.MinGroupSize = flags.MinGroupSize
	}
	if cmd.Flags().Changed("cell-size") {
		dst.CellSize = flags.CellSize
	}
	if cmd.Flags().Changed("unpartitioned") {
		dst.Unpartitioned = flags.Unpartitioned
	}
	if cmd.Flags().Changed("enhance") {
		dst.Enhance = flags.Enhance
	}
	if cmd.Flags().Changed("refresh") {
		dst.Refresh = flags.Refresh
	}
	if cmd.Flags().Changed("title") {
		dst.Title = flags.Title
	}
}

// runGenerate executes the full pipeline and writes the artifacts.
func (c *CLI) runGenerate(ctx context.Context, opts pipeline.Options, genOpts generateOpts) error {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, genOpts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	spinner := newSpinner(ctx, fmt.Sprintf("Generating diagram from %s...", opts.Source))
	spinner.Start()

	result, err := runner.Execute(ctx, opts)
	if err != nil {
		spinner.StopWithError(fmt.Sprintf("Generation failed: %v", err))
		return err
	}
	spinner.StopWithSuccess(fmt.Sprintf("Generated diagram from %s", opts.Source))
	printStats(result.Stats.NodeCount, result.Stats.EdgeCount, result.CacheInfo.LayoutHit)

	base := outputBase(genOpts.output, opts.Source)
	for _, format := range opts.Formats {
		path := outputPath(base, format, len(opts.Formats) == 1, genOpts.output)
		if err := os.WriteFile(path, result.Artifacts[format], 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		printFile(path)
	}

	if genOpts.save {
		if err := c.saveRun(ctx, opts.Source, result); err != nil {
			printWarning("Run not saved: %v", err)
		}
	}

	return nil
}

// saveRun persists a pipeline result in the run store.
func (c *CLI) saveRun(ctx context.Context, source string, result *pipeline.Result) error {
	s, err := c.newStore(ctx)
	if err != nil {
		return err
	}
	defer s.Close(ctx)

	layout, err := json.Marshal(result.Diagram)
	if err != nil {
		return err
	}
	run := store.NewRun(source, result.GraphHash, result.Stats.NodeCount, result.Stats.EdgeCount, layout)
	if err := s.Save(ctx, run); err != nil {
		return err
	}
	printDetail("Saved run %s", run.ID)
	return nil
}

// outputBase derives the base output path from the output flag or input file.
func outputBase(output, input string) string {
	if output == "" {
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := filepath.Ext(output)
	if pipeline.ValidFormats[strings.TrimPrefix(ext, ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

// outputPath builds the file path for one artifact. A single format with
// an explicit output keeps the user's path verbatim.
func outputPath(base, format string, single bool, explicit string) string {
	if single && explicit != "" {
		return explicit
	}
	return base + "." + format
}
