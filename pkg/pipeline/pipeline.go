// Package pipeline provides the trial rendering pipeline for ruleviz.
//
// This package implements the complete analyze → layout → plan → render
// pipeline used by the CLI, the HTTP server and the session explainer. By
// centralizing this logic, every entry point caches and renders the same
// way.
//
// # Architecture
//
// The pipeline consists of four stages:
//
//  1. Analyze: Check the trial's alignment and derive membership, links and provenance
//  2. Layout: Place the challenge, alternatives and output rows
//  3. Plan: Turn the layout and analysis into an animation script
//  4. Render: Generate output in various formats (SVG, PNG, PDF, JSON, tree)
//
// Each stage can be run independently or as part of the complete pipeline.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    Kind:     alignment.KindTree,
//	    Formats:  []string{"svg"},
//	    Animated: true,
//	}
//	result, err := runner.Execute(ctx, trial, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/ruleviz/pkg/alignment"
	"github.com/matzehuels/ruleviz/pkg/animate"
	"github.com/matzehuels/ruleviz/pkg/cache"
	"github.com/matzehuels/ruleviz/pkg/diagram"
	"github.com/matzehuels/ruleviz/pkg/errors"
	"github.com/matzehuels/ruleviz/pkg/render/styles"
	"github.com/matzehuels/ruleviz/pkg/stimulus"
	"github.com/matzehuels/ruleviz/pkg/term"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and Server
// =============================================================================

const (
	// DefaultScale is the PNG scale factor.
	DefaultScale = 2.0

	// DefaultWorkers bounds concurrent trials in [Runner.ExecuteAll].
	DefaultWorkers = 4
)

// DefaultStyle is the default visual style.
const DefaultStyle = "simple"

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
	FormatJSON = "json"
	// FormatTree is a Graphviz node-link SVG of the challenge tree.
	FormatTree = "tree"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:  true,
	FormatPNG:  true,
	FormatPDF:  true,
	FormatJSON: true,
	FormatTree: true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Analysis and layout options
	Kind    alignment.Kind `json:"kind"`
	Diagram diagram.Config `json:"diagram"`
	Codec   term.Codec     `json:"-"`
	// NoRewrite decodes trees literally instead of with term.DefaultCodec.
	NoRewrite bool `json:"no_rewrite,omitempty"`

	// Animation options
	Animated bool            `json:"animated,omitempty"`
	Timings  animate.Timings `json:"timings"`

	// Render options
	Formats []string `json:"formats,omitempty"`
	Style   string   `json:"style,omitempty"`
	Scale   float64  `json:"scale,omitempty"`
	// FrameAt captures PNGs at this offset into the animation with headless
	// Chrome instead of rsvg-convert. Zero disables it.
	FrameAt time.Duration `json:"frame_at,omitempty"`
	Refresh bool          `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	Trial    *stimulus.Trial
	Analysis *alignment.Analysis
	Diagram  *diagram.Diagram
	Script   *animate.Script

	// LayoutHash is the content hash of the diagram.
	LayoutHash string

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Units        int
	Groups       int
	Warnings     int
	AnalyzeTime  time.Duration
	LayoutTime   time.Duration
	RenderTime   time.Duration
	AnimationLen time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	LayoutHit bool // Whether the diagram came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: svg, png, pdf, json, tree)", format)
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

// ValidateStyle checks that a style is valid.
func ValidateStyle(style string) error {
	if style == "" {
		return errors.New(errors.ErrCodeInvalidStyle, "invalid style: %q (must be one of: %s)", style, strings.Join(styles.Names(), ", "))
	}
	_, err := styles.Lookup(style)
	return err
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks fields and applies defaults for the full pipeline.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	o.SetLayoutDefaults()
	o.SetRenderDefaults()
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if err := ValidateStyle(o.Style); err != nil {
		return err
	}
	if err := o.Timings.Validate(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// SetLayoutDefaults sets default values for analysis and layout.
func (o *Options) SetLayoutDefaults() {
	o.Diagram = o.Diagram.WithDefaults()
	if o.Codec.Rewrite == nil && !o.NoRewrite {
		o.Codec = term.DefaultCodec
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// SetRenderDefaults sets default values for planning and rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.Style == "" {
		o.Style = DefaultStyle
	}
	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
	if o.Timings == (animate.Timings{}) {
		o.Timings = animate.DefaultTimings()
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// Theme returns the style's theme. Unknown styles fall back to the default.
func (o *Options) Theme() styles.Theme {
	th, err := styles.Lookup(o.Style)
	if err != nil {
		return styles.Simple
	}
	return th
}

// LayoutKeyOpts returns cache key options for layout computation.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	rewrite := ""
	if o.Codec.Rewrite != nil {
		heads := make([]string, len(o.Codec.Rewrite.Heads))
		for i, h := range o.Codec.Rewrite.Heads {
			heads[i] = string(h)
		}
		rewrite = fmt.Sprintf("%s/zero=%t", strings.Join(heads, ","), o.Codec.Rewrite.ZeroArity)
	}
	d := o.Diagram.WithDefaults()
	d.Layout = d.Layout.WithDefaults()
	geometry, _ := json.Marshal(d)
	return cache.LayoutKeyOpts{
		Kind:     o.Kind.String(),
		Geometry: cache.Hash(geometry),
		Rewrite:  rewrite,
	}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	k := cache.ArtifactKeyOpts{Format: format, Style: o.Style, Animated: o.Animated}
	if o.Animated {
		k.Timings = fmt.Sprintf("%+v", o.Timings)
	}
	if format == FormatPNG {
		k.Format = fmt.Sprintf("png@%.2f/%s", o.Scale, o.FrameAt)
	}
	return k
}
