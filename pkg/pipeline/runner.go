package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/ruleviz/pkg/alignment"
	"github.com/matzehuels/ruleviz/pkg/animate"
	"github.com/matzehuels/ruleviz/pkg/cache"
	"github.com/matzehuels/ruleviz/pkg/diagram"
	"github.com/matzehuels/ruleviz/pkg/errors"
	"github.com/matzehuels/ruleviz/pkg/observability"
	"github.com/matzehuels/ruleviz/pkg/render"
	"github.com/matzehuels/ruleviz/pkg/render/nodelink"
	"github.com/matzehuels/ruleviz/pkg/render/sink"
	"github.com/matzehuels/ruleviz/pkg/stimulus"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API can use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
	// Chrome captures animation frames when Options.FrameAt is set.
	Chrome render.ChromeRasterizer
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete analyze → layout → plan → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, trial *stimulus.Trial, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	r.applyLogger(&opts)

	result := &Result{
		Trial:     trial,
		Artifacts: make(map[string][]byte),
	}

	// Stage 1: Analyze
	analyzeStart := time.Now()
	an, err := r.Analyze(ctx, trial, opts)
	if err != nil {
		return nil, fmt.Errorf("analyze: %w", err)
	}
	result.Analysis = an
	result.Stats.AnalyzeTime = time.Since(analyzeStart)
	result.Stats.Units = len(an.OutputMembers)
	result.Stats.Groups = len(an.Alignment)

	r.Logger.Info("analyzed alignment",
		"groups", result.Stats.Groups,
		"steps", an.Steps(),
		"duration", result.Stats.AnalyzeTime)

	// Stage 2: Layout
	layoutStart := time.Now()
	d, layoutHit, err := r.LayoutWithCacheInfo(ctx, trial, opts)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	result.Diagram = d
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.Stats.Warnings = len(d.Warnings)
	result.CacheInfo.LayoutHit = layoutHit
	if data, err := json.Marshal(d); err == nil {
		result.LayoutHash = cache.Hash(data)
	}

	r.Logger.Info("computed layout",
		"width", d.Width,
		"height", d.Height,
		"warnings", len(d.Warnings),
		"duration", result.Stats.LayoutTime)

	// Stage 3: Plan
	script, err := r.Plan(d, an, opts)
	if err != nil {
		return nil, fmt.Errorf("plan: %w", err)
	}
	result.Script = script
	result.Stats.AnimationLen = script.Duration()

	// Stage 4: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, d, an, script, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"animated", opts.Animated,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// ExecuteAll runs [Runner.Execute] for every trial with at most workers
// pipelines in flight. Results keep the order of trials. The first error
// cancels the remaining work.
func (r *Runner) ExecuteAll(ctx context.Context, trials []*stimulus.Trial, opts Options, workers int) ([]*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	if workers <= 0 {
		workers = DefaultWorkers
	}
	results := make([]*Result, len(trials))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, trial := range trials {
		g.Go(func() error {
			res, err := r.Execute(ctx, trial, opts)
			if err != nil {
				return fmt.Errorf("trial %d (%s): %w", i, trial.Rule, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Analyze runs the alignment analyzer on the trial's challenge and correct
// answer.
func (r *Runner) Analyze(ctx context.Context, trial *stimulus.Trial, opts Options) (*alignment.Analysis, error) {
	opts.SetLayoutDefaults()
	hooks := observability.Pipeline()
	hooks.OnAnalyzeStart(ctx, trial.Rule, opts.Kind.String())
	start := time.Now()
	an, err := trial.Analyze(opts.Kind, opts.Codec)
	groups := 0
	if an != nil {
		groups = len(an.Alignment)
	}
	hooks.OnAnalyzeComplete(ctx, trial.Rule, opts.Kind.String(), groups, time.Since(start), err)
	return an, err
}

// LayoutWithCacheInfo places the trial with caching and returns cache hit info.
func (r *Runner) LayoutWithCacheInfo(ctx context.Context, trial *stimulus.Trial, opts Options) (*diagram.Diagram, bool, error) {
	opts.SetLayoutDefaults()
	r.applyLogger(&opts)

	cacheKey := r.Keyer.LayoutKey(trial.Hash(), opts.LayoutKeyOpts())
	cacheHooks := observability.Cache()

	// Try cache first (unless refresh requested)
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			var cached diagram.Diagram
			if err := json.Unmarshal(data, &cached); err == nil {
				cacheHooks.OnCacheHit(ctx, "layout")
				return &cached, true, nil // Cache hit
			}
			// If deserialization fails, fall through to recompute
		}
		cacheHooks.OnCacheMiss(ctx, "layout")
	}

	hooks := observability.Pipeline()
	units := len(trial.Challenge) / opts.Kind.Unit()
	hooks.OnLayoutStart(ctx, opts.Kind.String(), units)
	start := time.Now()
	d, err := diagram.Build(trial, opts.Kind, opts.Diagram,
		diagram.WithCodec(opts.Codec),
		diagram.WithLogger(opts.Logger))
	warnings := 0
	if d != nil {
		warnings = len(d.Warnings)
	}
	hooks.OnLayoutComplete(ctx, opts.Kind.String(), time.Since(start), warnings, err)
	if err != nil {
		return nil, false, err
	}

	// Cache the result
	if data, err := json.Marshal(d); err == nil {
		if err := r.Cache.Set(ctx, cacheKey, data, cache.TTLLayout); err == nil {
			cacheHooks.OnCacheSet(ctx, "layout", len(data))
		}
	}

	return d, false, nil // Cache miss
}

// Layout is a convenience wrapper that calls LayoutWithCacheInfo and discards the cache hit info.
func (r *Runner) Layout(ctx context.Context, trial *stimulus.Trial, opts Options) (*diagram.Diagram, error) {
	d, _, err := r.LayoutWithCacheInfo(ctx, trial, opts)
	return d, err
}

// Plan builds the animation script for a placed trial.
func (r *Runner) Plan(d *diagram.Diagram, an *alignment.Analysis, opts Options) (*animate.Script, error) {
	opts.SetRenderDefaults()
	return animate.Plan(d, an, opts.Timings, animate.WithTheme(opts.Theme()))
}

// RenderWithCacheInfo generates artifacts with caching and returns cache hit info.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, d *diagram.Diagram, an *alignment.Analysis, script *animate.Script, opts Options) (map[string][]byte, bool, error) {
	opts.SetRenderDefaults()
	if err := ValidateFormats(opts.Formats); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)

	// Compute cache key from layout data
	layoutData, err := json.Marshal(d)
	if err != nil {
		return nil, false, fmt.Errorf("serialize layout for cache key: %w", err)
	}
	cacheKeyHash := cache.Hash(layoutData)
	cacheHooks := observability.Cache()

	// Try to get all formats from cache
	artifacts := make(map[string][]byte)
	if !opts.Refresh {
		for _, format := range opts.Formats {
			cacheKey := r.Keyer.ArtifactKey(cacheKeyHash, opts.ArtifactKeyOpts(format))
			data, hit, err := r.Cache.Get(ctx, cacheKey)
			if err != nil || !hit {
				break
			}
			artifacts[format] = data
		}
		if len(artifacts) == len(opts.Formats) {
			cacheHooks.OnCacheHit(ctx, "artifact")
			return artifacts, true, nil // All artifacts from cache
		}
		cacheHooks.OnCacheMiss(ctx, "artifact")
	}

	// Render all formats
	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, opts.Formats)
	start := time.Now()
	rendered, err := r.render(ctx, d, an, script, opts)
	hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	// Cache each format
	for format, data := range rendered {
		cacheKey := r.Keyer.ArtifactKey(cacheKeyHash, opts.ArtifactKeyOpts(format))
		if err := r.Cache.Set(ctx, cacheKey, data, cache.TTLArtifact); err == nil {
			cacheHooks.OnCacheSet(ctx, "artifact", len(data))
		}
	}

	return rendered, false, nil // Cache miss
}

// Render is a convenience wrapper that calls RenderWithCacheInfo and discards the cache hit info.
func (r *Runner) Render(ctx context.Context, d *diagram.Diagram, an *alignment.Analysis, script *animate.Script, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, d, an, script, opts)
	return artifacts, err
}

// Record plays script against a recorder, or mounts the still diagram
// when script is nil.
func (r *Runner) Record(ctx context.Context, d *diagram.Diagram, script *animate.Script, opts Options) (*animate.Recording, error) {
	opts.SetRenderDefaults()
	if script == nil {
		return animate.Still(d, opts.Theme()), nil
	}
	return animate.Record(ctx, d, opts.Theme(), script)
}

func (r *Runner) render(ctx context.Context, d *diagram.Diagram, an *alignment.Analysis, script *animate.Script, opts Options) (map[string][]byte, error) {
	out := make(map[string][]byte, len(opts.Formats))

	var svg []byte
	needSVG := false
	for _, f := range opts.Formats {
		if f == FormatSVG || f == FormatPNG || f == FormatPDF {
			needSVG = true
		}
	}
	if needSVG {
		playback := script
		if !opts.Animated {
			playback = nil
		}
		rec, err := r.Record(ctx, d, playback, opts)
		if err != nil {
			return nil, fmt.Errorf("record: %w", err)
		}
		svgOpts := []sink.SVGOption{sink.WithHover()}
		if opts.Animated {
			svgOpts = append(svgOpts, sink.WithAnimation())
		}
		svg = sink.RenderSVG(rec, svgOpts...)
	}

	for _, format := range opts.Formats {
		var data []byte
		var err error
		switch format {
		case FormatSVG:
			data = svg
		case FormatPNG:
			if opts.FrameAt > 0 {
				data, err = r.Chrome.Frame(ctx, svg, opts.FrameAt)
			} else {
				data, err = render.ToPNG(ctx, svg, opts.Scale)
			}
		case FormatPDF:
			data, err = render.ToPDF(ctx, svg)
		case FormatJSON:
			data, err = sink.RenderJSON(d, an, script)
		case FormatTree:
			data, err = r.renderTree(ctx, an, opts)
		default:
			err = fmt.Errorf("unsupported format: %s", format)
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", format, err)
		}
		out[format] = data
	}
	return out, nil
}

// renderTree draws the challenge tree with group colors and dashed
// crossing edges.
func (r *Runner) renderTree(ctx context.Context, an *alignment.Analysis, opts Options) ([]byte, error) {
	if an.InputTree == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "tree output needs a tree stimulus, got %s", an.Kind)
	}
	dot := nodelink.ToDOT(an.InputTree, nodelink.Options{
		Members: an.InputMembers,
		Links:   an.InputLinks,
		Theme:   opts.Theme(),
	})
	return nodelink.RenderSVG(ctx, dot)
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
