// Package pipeline provides the core diagram pipeline for Clarity.
//
// This package implements the complete parse → enhance → layout → render
// pipeline that can be used by CLI and server components. By centralizing
// this logic, we ensure consistent behavior across all entry points and
// avoid code duplication.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Parse: Build the dependency graph from a compose file or a graph
//     JSON document, optionally enhanced with richer annotations
//  2. Layout: Compute positions and routed edges for the graph
//  3. Render: Generate output in various formats (SVG, JSON)
//
// Each stage can be run independently or as part of the complete pipeline.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    Source:  "docker-compose.yml",
//	    Mode:    pipeline.ModeSemantic,
//	    Formats: []string{"svg"},
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
//
// Run individual stages:
//
//	// Parse only
//	g, err := runner.Parse(ctx, opts)
//
//	// Layout with existing graph
//	diagram, err := runner.GenerateDiagram(ctx, g, opts)
//
//	// Render with existing diagram
//	artifacts, err := runner.Render(ctx, diagram, opts)
package pipeline

import (
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/BrennerSpear/clarity/pkg/backend"
	"github.com/BrennerSpear/clarity/pkg/cache"
	"github.com/BrennerSpear/clarity/pkg/enhance"
	"github.com/BrennerSpear/clarity/pkg/errors"
	"github.com/BrennerSpear/clarity/pkg/infra"
	"github.com/BrennerSpear/clarity/pkg/render"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and Server
// =============================================================================

const (
	// DefaultMinGroupSize is the grouping threshold: buckets with fewer
	// members stay individual nodes.
	DefaultMinGroupSize = 2

	// DefaultCellSize is the routing grid resolution in user units.
	DefaultCellSize = 10.0
)

// Layout modes.
const (
	// ModeSemantic is the role-column layout with grouping and A* routing.
	ModeSemantic = "semantic"

	// ModeSimple is the plain dependency-depth layout.
	ModeSimple = "simple"

	// ModeBackend delegates geometry to an external layout engine.
	ModeBackend = "backend"
)

// DefaultMode is the default layout mode.
const DefaultMode = ModeSemantic

// Input parsers.
const (
	ParserCompose = "compose"
	ParserJSON    = "json"
)

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatJSON = "json"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:  true,
	FormatJSON: true,
}

// ValidModes is the set of supported layout modes.
var ValidModes = map[string]bool{
	ModeSemantic: true,
	ModeSimple:   true,
	ModeBackend:  true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the diagram pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Parse options
	Source      string `json:"source,omitempty"`      // input file path
	SourceData  []byte `json:"source_data,omitempty"` // inline input document
	Parser      string `json:"parser,omitempty"`      // "compose" or "json"; inferred from Source when empty
	Enhance     bool   `json:"enhance,omitempty"`
	OpenAIModel string `json:"openai_model,omitempty"`
	Refresh     bool   `json:"refresh,omitempty"`

	// Layout options
	Mode          string  `json:"mode,omitempty"`
	NoGrouping    bool    `json:"no_grouping,omitempty"`
	MinGroupSize  int     `json:"min_group_size,omitempty"`
	CellSize      float64 `json:"cell_size,omitempty"`
	Unpartitioned bool    `json:"unpartitioned,omitempty"` // backend mode: drop partition and port hints

	// Render options
	Formats []string `json:"formats,omitempty"`
	Title   string   `json:"title,omitempty"`

	// Runtime options (not serialized)
	Logger    *log.Logger      `json:"-"`
	Enhancer  enhance.Enhancer `json:"-"` // overrides enhancer selection
	Backend   backend.Backend  `json:"-"` // overrides the layout backend
	OpenAIKey string           `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Graph is the parsed dependency graph.
	Graph *infra.Graph

	// GraphHash is the content hash of the graph document.
	GraphHash string

	// Diagram is the positioned-and-routed layout.
	Diagram render.Diagram

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount  int
	EdgeCount  int
	GroupCount int
	ParseTime  time.Duration
	LayoutTime time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	ParseHit  bool // Whether parse result came from cache
	LayoutHit bool // Whether layout result came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: svg, json)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateMode checks that a layout mode is valid.
func ValidateMode(mode string) error {
	if !ValidModes[mode] {
		return errors.New(errors.ErrCodeInvalidInput, "invalid mode: %q (must be one of: semantic, simple, backend)", mode)
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults for the full pipeline.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForParse(); err != nil {
		return err
	}
	if err := o.ValidateForLayout(); err != nil {
		return err
	}
	o.SetRenderDefaults()
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForParse checks required fields for parsing.
func (o *Options) ValidateForParse() error {
	if o.Source == "" && len(o.SourceData) == 0 {
		return errors.New(errors.ErrCodeInvalidInput, "source or source_data is required")
	}
	if o.Parser == "" {
		o.Parser = inferParser(o.Source)
	}
	if o.Parser != ParserCompose && o.Parser != ParserJSON {
		return errors.New(errors.ErrCodeInvalidInput, "invalid parser: %q (must be compose or json)", o.Parser)
	}

	// Logger default
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}

	return nil
}

// SetLayoutDefaults sets default values for layout computation.
func (o *Options) SetLayoutDefaults() {
	if o.Mode == "" {
		o.Mode = DefaultMode
	}
	if o.MinGroupSize == 0 {
		o.MinGroupSize = DefaultMinGroupSize
	}
	if o.CellSize == 0 {
		o.CellSize = DefaultCellSize
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForLayout validates and sets defaults for layout computation.
func (o *Options) ValidateForLayout() error {
	o.SetLayoutDefaults()
	return ValidateMode(o.Mode)
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	return ValidateFormats(o.Formats)
}

// ReadSource returns the input document bytes, reading the source file if
// no inline data was provided.
func (o *Options) ReadSource() ([]byte, error) {
	if len(o.SourceData) > 0 {
		return o.SourceData, nil
	}
	data, err := readFile(o.Source)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "read source %s", o.Source)
	}
	return data, nil
}

// EnhancerName identifies the enhancer for cache keys and logs.
func (o *Options) EnhancerName() string {
	switch {
	case !o.Enhance:
		return ""
	case o.Enhancer != nil:
		return "custom"
	case o.OpenAIKey != "":
		model := o.OpenAIModel
		if model == "" {
			model = enhance.DefaultModel
		}
		return "openai:" + model
	default:
		return "heuristic"
	}
}

// GraphKeyOpts returns cache key options for the parse stage.
func (o *Options) GraphKeyOpts() cache.GraphKeyOpts {
	return cache.GraphKeyOpts{
		Parser:   o.Parser,
		Enhanced: o.Enhance,
		Enhancer: o.EnhancerName(),
	}
}

// LayoutKeyOpts returns cache key options for layout computation.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	minGroup := o.MinGroupSize
	if o.NoGrouping {
		minGroup = -1
	}
	return cache.LayoutKeyOpts{
		Mode:         o.Mode,
		MinGroupSize: minGroup,
		CellSize:     o.CellSize,
		Partitioned:  !o.Unpartitioned,
	}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format: format,
		Style:  o.Title,
	}
}

// inferParser guesses the parser from the source filename.
func inferParser(source string) string {
	switch strings.ToLower(filepath.Ext(source)) {
	case ".yml", ".yaml":
		return ParserCompose
	case ".json":
		return ParserJSON
	}
	base := strings.ToLower(filepath.Base(source))
	if strings.Contains(base, "compose") {
		return ParserCompose
	}
	return ""
}
