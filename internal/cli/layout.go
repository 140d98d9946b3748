package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/matzehuels/ruleviz/pkg/layout"
	"github.com/matzehuels/ruleviz/pkg/pipeline"
)

// geometryFlags override the configured diagram geometry when set.
type geometryFlags struct {
	radius   float64
	gap      float64
	cellSize float64
	rowGap   float64

	flags *pflag.FlagSet
}

func (f *geometryFlags) register(cmd *cobra.Command) {
	f.flags = cmd.Flags()
	cmd.Flags().Float64Var(&f.radius, "radius", 0, "tree node radius (default: config or 18)")
	cmd.Flags().Float64Var(&f.gap, "gap", 0, "minimum gap between sibling nodes, 0 for touching (default: config or 8)")
	cmd.Flags().Float64Var(&f.cellSize, "cell-size", 0, "string cell size")
	cmd.Flags().Float64Var(&f.rowGap, "row-gap", 0, "vertical gap between rows")
}

func (f geometryFlags) apply(opts *pipeline.Options) {
	if f.radius > 0 {
		opts.Diagram.Layout.Radius = f.radius
	}
	if f.flags != nil && f.flags.Changed("gap") {
		opts.Diagram.Layout.Gap = layout.Float64(f.gap)
	}
	if f.cellSize > 0 {
		opts.Diagram.CellSize = f.cellSize
	}
	if f.rowGap > 0 {
		opts.Diagram.RowGap = f.rowGap
	}
}

// layoutCommand creates the layout command for computing trial diagrams.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		sel     stimulusFlags
		geom    geometryFlags
		output  string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "layout",
		Short: "Compute the diagram layout of a trial",
		Long: `Compute the diagram of a trial: the stimulus pair, the challenge and the
output row, with trees placed by the force-relaxed tree layout and strings
as evenly spaced cells.

The result is written as JSON. Layouts are cached locally, keyed by the
trial content and the geometry.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLayout(cmd.Context(), sel, geom, output, noCache)
		},
	}

	sel.register(cmd)
	geom.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) runLayout(ctx context.Context, sel stimulusFlags, geom geometryFlags, output string, noCache bool) error {
	trial, kind, err := c.selectTrial(ctx, sel)
	if err != nil {
		return err
	}
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts := c.baseOptions()
	opts.Kind = kind
	opts.Refresh = sel.refresh
	geom.apply(&opts)

	d, cacheHit, err := runner.LayoutWithCacheInfo(ctx, trial, opts)
	if err != nil {
		return fmt.Errorf("compute layout: %w", err)
	}
	for _, w := range d.Warnings {
		c.Logger.Warn(w)
	}

	out, err := openOutput(output)
	if err != nil {
		return err
	}
	defer out.Close()
	e := json.NewEncoder(out)
	e.SetIndent("", "  ")
	if err := e.Encode(d); err != nil {
		return err
	}

	if output != "" {
		printSuccess("Layout complete")
		printFile(output)
		printStats(len(trial.Challenge)/kind.Unit(), len(trial.Alignment), cacheHit)
		printNewline()
		printNextStep("Render", fmt.Sprintf("ruleviz render -s %s -d %s -i %d", sel.source, sel.domain, sel.index))
	}
	return nil
}
