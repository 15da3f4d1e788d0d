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

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output  string
	formats string
	title   string
}

// renderCommand creates the render command: diagram JSON to output files.
func (c *CLI) renderCommand() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render [diagram.json]",
		Short: "Render a computed diagram to SVG",
		Long: `Render a diagram JSON document (produced by 'layout') to the requested
output formats. Rendering is pure: the same diagram always produces the
same bytes.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path")
	cmd.Flags().StringVarP(&opts.formats, "format", "f", "", "output format(s): svg (default), json (comma-separated)")
	cmd.Flags().StringVar(&opts.title, "title", "", "diagram title")

	return cmd
}

// runRender loads a diagram document and writes the rendered artifacts.
func (c *CLI) runRender(ctx context.Context, input string, opts renderOpts) error {
	data, err := os.ReadFile(input)
	if err != nil {
		return fmt.Errorf("read %s: %w", input, err)
	}
	diagram, err := render.ParseDiagram(data)
	if err != nil {
		return err
	}

	pipeOpts := c.pipelineOptions()
	if f := parseFormats(opts.formats); f != nil {
		pipeOpts.Formats = f
	}
	if opts.title != "" {
		pipeOpts.Title = opts.title
	}
	pipeOpts.SetRenderDefaults()

	track := newProgress(c.Logger)
	artifacts, err := pipeline.Render(diagram, pipeOpts)
	if err != nil {
		return err
	}
	track.done(fmt.Sprintf("Rendered %d format(s)", len(artifacts)))

	base := opts.output
	if base == "" {
		base = strings.TrimSuffix(input, ".diagram.json")
		base = strings.TrimSuffix(base, filepath.Ext(base))
	}
	for _, format := range pipeOpts.Formats {
		path := outputPath(outputBase(base, input), format, len(pipeOpts.Formats) == 1, opts.output)
		if err := os.WriteFile(path, artifacts[format], 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		printFile(path)
	}
	return nil
}
