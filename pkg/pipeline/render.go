package pipeline

import (
	"github.com/BrennerSpear/clarity/pkg/errors"
	"github.com/BrennerSpear/clarity/pkg/render"
)

// Render generates output artifacts in the requested formats.
func Render(d render.Diagram, opts Options) (map[string][]byte, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, err
	}

	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		data, err := renderFormat(d, format, opts)
		if err != nil {
			return nil, err
		}
		artifacts[format] = data
	}
	return artifacts, nil
}

// renderFormat renders a single artifact.
func renderFormat(d render.Diagram, format string, opts Options) ([]byte, error) {
	switch format {
	case FormatSVG:
		var svgOpts []render.SVGOption
		if opts.Title != "" {
			svgOpts = append(svgOpts, render.WithTitle(opts.Title))
		}
		return render.RenderSVG(d, svgOpts...), nil
	case FormatJSON:
		return render.RenderJSON(d)
	}
	return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported format: %s", format)
}
