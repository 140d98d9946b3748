package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/ruleviz/pkg/animate"
	"github.com/matzehuels/ruleviz/pkg/pipeline"
	"github.com/matzehuels/ruleviz/pkg/stimulus"
)

// renderOpts holds the command-line flags shared by render and animate.
type renderOpts struct {
	sel      stimulusFlags
	geom     geometryFlags
	output   string  // output file, base path or directory (--all)
	formats  string  // comma-separated output formats
	style    string  // visual style, empty for the configured one
	scale    float64 // PNG scale, zero for the configured one
	all      bool    // render every trial of the domain
	workers  int     // concurrent trials with --all
	noCache  bool
	animated bool
	speed    float64       // animation speed factor
	frameAt  time.Duration // capture PNG frames at this offset
	timeline bool          // print the stage timeline
}

func (o *renderOpts) register(cmd *cobra.Command) {
	o.sel.register(cmd)
	o.geom.register(cmd)
	cmd.Flags().StringVarP(&o.output, "output", "o", "", "output file or base path (directory with --all)")
	cmd.Flags().StringVarP(&o.formats, "format", "f", "", "output formats: svg (default), png, pdf, json, tree (comma-separated)")
	cmd.Flags().StringVar(&o.style, "style", "", "visual style: simple (default), contrast")
	cmd.Flags().Float64Var(&o.scale, "scale", 0, "PNG scale factor")
	cmd.Flags().BoolVar(&o.all, "all", false, "render every trial of the domain")
	cmd.Flags().IntVar(&o.workers, "workers", 0, "trials rendered concurrently with --all (default render.workers)")
	cmd.Flags().BoolVar(&o.noCache, "no-cache", false, "disable caching")
}

// renderOptions merges the flags over the configured pipeline options.
func (c *CLI) renderOptions(o *renderOpts) pipeline.Options {
	opts := c.baseOptions()
	o.geom.apply(&opts)
	opts.Formats = parseFormats(o.formats)
	opts.Animated = o.animated
	opts.FrameAt = o.frameAt
	opts.Refresh = o.sel.refresh
	if o.style != "" {
		opts.Style = o.style
	}
	if o.scale > 0 {
		opts.Scale = o.scale
	}
	if o.speed > 0 && o.speed != 1 {
		if opts.Timings == (animate.Timings{}) {
			opts.Timings = animate.DefaultTimings()
		}
		// Faster playback shortens every duration.
		opts.Timings = opts.Timings.Scaled(1 / o.speed)
	}
	return opts
}

// renderCommand creates the render command for generating trial artifacts.
func (c *CLI) renderCommand() *cobra.Command {
	o := &renderOpts{}

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a trial diagram to SVG, PNG, PDF or JSON",
		Long: `Render the static diagram of a trial.

Formats:
  svg   the diagram with hover highlighting of aligned groups
  png   rasterized SVG (rsvg-convert, or headless Chrome with animate --frame-at)
  pdf   vector PDF (rsvg-convert)
  json  the diagram and, for animate, its planned script
  tree  a node-link drawing of the challenge tree with its groups (graphviz)

With --all every trial of the domain is rendered concurrently into the
output directory.`,
		Example: `  ruleviz render -s ./stimuli -d trees -i 0 -f svg,png
  ruleviz render -s feed.json -d lists --all -o out/lists`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd.Context(), o)
		},
	}
	o.register(cmd)

	return cmd
}

func (c *CLI) runRender(ctx context.Context, o *renderOpts) error {
	opts := c.renderOptions(o)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return err
	}

	feed, err := c.loadFeed(ctx, o.sel.source, o.sel.refresh)
	if err != nil {
		return err
	}
	domain := o.sel.domain
	if domain == "" {
		if domains := feed.Domains(); len(domains) > 0 {
			domain = domains[0]
		}
	}
	if opts.Kind, err = c.kindFor(feed, domain, o.sel.kind); err != nil {
		return err
	}

	var trials []*stimulus.Trial
	var indices []int
	if o.all {
		for i := range feed[domain] {
			trials = append(trials, &feed[domain][i])
			indices = append(indices, i)
		}
		if len(trials) == 0 {
			return fmt.Errorf("domain %q has no trials", domain)
		}
	} else {
		trial, err := feed.Trial(domain, o.sel.index)
		if err != nil {
			return err
		}
		trials, indices = []*stimulus.Trial{trial}, []int{o.sel.index}
	}

	runner, err := c.newRunner(ctx, o.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	what := "diagram"
	if opts.Animated {
		what = "animation"
	}
	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Rendering %d %s %s(s)...", len(trials), domain, what))
	spinner.Start()
	prog := newProgress(c.Logger)

	workers := o.workers
	if workers <= 0 {
		workers = c.Config.Render.Workers
	}
	results, err := runner.ExecuteAll(ctx, trials, opts, workers)
	if err != nil {
		spinner.StopWithError("Render failed")
		return err
	}
	spinner.Stop()
	if ctx.Err() != nil {
		return ctx.Err()
	}
	prog.done(fmt.Sprintf("Rendered %d trial(s)", len(results)))

	for i, res := range results {
		base := outputBase(o, domain, indices[i])
		printSuccess("%s %s", StyleHighlight.Render(res.Trial.Rule), StyleDim.Render(fmt.Sprintf("(%s #%d)", domain, indices[i])))
		if err := writeArtifacts(res, opts.Formats, base); err != nil {
			return err
		}
		printStats(res.Stats.Units, res.Stats.Groups, res.CacheInfo.LayoutHit && res.CacheInfo.RenderHit)
		if o.timeline && res.Script != nil {
			printTimeline(res.Script)
		}
	}
	if !o.animated {
		printNewline()
		printNextStep("Animate", fmt.Sprintf("ruleviz animate -d %s -i %d", domain, indices[0]))
	}
	return nil
}

// outputBase returns the path every format's extension is appended to.
func outputBase(o *renderOpts, domain string, index int) string {
	name := fmt.Sprintf("%s_%03d", domain, index)
	if o.animated {
		name += "_animated"
	}
	if o.all {
		dir := o.output
		if dir == "" {
			dir = domain
		}
		return filepath.Join(dir, name)
	}
	if o.output == "" {
		return name
	}
	ext := filepath.Ext(o.output)
	if pipeline.ValidFormats[strings.TrimPrefix(ext, ".")] {
		return strings.TrimSuffix(o.output, ext)
	}
	return o.output
}

// artifactPath names the file for one format. Tree drawings are SVG.
func artifactPath(base, format string) string {
	if format == pipeline.FormatTree {
		return base + ".tree.svg"
	}
	return base + "." + format
}

func writeArtifacts(res *pipeline.Result, formats []string, base string) error {
	for _, f := range formats {
		data, ok := res.Artifacts[f]
		if !ok {
			continue
		}
		path := artifactPath(base, f)
		if err := writeFile(path, data); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		printFile(path)
	}
	return nil
}
