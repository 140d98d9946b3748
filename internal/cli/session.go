package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/ruleviz/pkg/errors"
	"github.com/matzehuels/ruleviz/pkg/flow"
	"github.com/matzehuels/ruleviz/pkg/pipeline"
	"github.com/matzehuels/ruleviz/pkg/stimulus"
	"github.com/matzehuels/ruleviz/pkg/telemetry"
)

// sessionOpts holds the flags of the session command.
type sessionOpts struct {
	source     string
	domains    []string
	concepts   []int
	records    string
	csvPath    string
	explainDir string
	noDelay    bool
}

// sessionCommand creates the session command for running an experiment in
// the terminal.
func (c *CLI) sessionCommand() *cobra.Command {
	o := &sessionOpts{}

	cmd := &cobra.Command{
		Use:   "session",
		Short: "Run an experiment session on stdin",
		Long: `Run an experiment session in the terminal.

Blocks come from forced-choice domains of the feed (--domain) and from
list-routine concepts of the stimulus source (--concept). Blocks are
shuffled with session.seed and cut to session.blocks. Every answer is
recorded; after each block the rule must be described in words unless
session.skip_descriptions is set.

Forced-choice answers are 0 or 1. With --explain-dir the animated
explanation of every answered forced-choice trial is written there.`,
		Example: `  ruleviz session -s ./stimuli -d trees --records run.jsonl
  ruleviz session -s https://example.org/stimuli --concept 3 --concept 151 --csv run.csv`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runSession(cmd.Context(), o, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&o.source, "stimuli", "s", "", "stimulus directory or http(s) base URL")
	cmd.Flags().StringSliceVarP(&o.domains, "domain", "d", nil, "forced-choice domains to draw blocks from")
	cmd.Flags().IntSliceVar(&o.concepts, "concept", nil, "list-routine concept ids to draw blocks from")
	cmd.Flags().StringVar(&o.records, "records", "", "append records to this JSON lines file")
	cmd.Flags().StringVar(&o.csvPath, "csv", "", "write all records as CSV when the session ends")
	cmd.Flags().StringVar(&o.explainDir, "explain-dir", "", "write forced-choice explanations to this directory")
	cmd.Flags().BoolVar(&o.noDelay, "no-delay", false, "do not pause after incorrect answers")

	return cmd
}

func (c *CLI) runSession(ctx context.Context, o *sessionOpts, in io.Reader, out io.Writer) error {
	blocks, err := c.sessionBlocks(ctx, o)
	if err != nil {
		return err
	}

	mem := &telemetry.MemorySink{}
	sinks := telemetry.MultiSink{mem}
	if o.records != "" {
		f, err := os.OpenFile(o.records, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("open records: %w", err)
		}
		defer f.Close()
		sinks = append(sinks, telemetry.NewWriterSink(f))
	}

	flowOpts := []flow.Option{flow.WithSink(sinks), flow.WithLogger(c.Logger)}
	if o.explainDir != "" {
		runner, err := c.newRunner(ctx, false)
		if err != nil {
			return err
		}
		defer runner.Close()
		flowOpts = append(flowOpts, flow.WithExplainer(c.explainer(runner, o.explainDir)))
	}

	ctrl, err := flow.New(blocks, c.Config.FlowConfig(), flowOpts...)
	if err != nil {
		return err
	}
	c.Logger.Info("session started", "run", ctrl.RunID(), "blocks", len(blocks))

	err = playSession(ctx, ctrl, in, out, !o.noDelay)
	if o.csvPath != "" {
		if werr := writeRecordsCSV(o.csvPath, mem.Records()); werr != nil && err == nil {
			err = werr
		}
	}
	if err != nil {
		return err
	}

	p := ctrl.Progress()
	printSuccess("Session complete: %d/%d correct", p.Correct, p.Answered)
	printKeyValue("run", ctrl.RunID().String())
	if o.records != "" {
		printFile(o.records)
	}
	if o.csvPath != "" {
		printFile(o.csvPath)
	}
	return nil
}

// sessionBlocks builds and schedules the session's blocks.
func (c *CLI) sessionBlocks(ctx context.Context, o *sessionOpts) ([]flow.Block, error) {
	cfg := c.Config.Session
	var blocks []flow.Block
	if len(o.domains) > 0 || len(o.concepts) > 0 {
		src, err := c.openSource(ctx, o.source, false)
		if err != nil {
			return nil, err
		}
		if len(o.domains) > 0 {
			feed, err := src.Feed(ctx)
			if err != nil {
				return nil, err
			}
			for _, d := range o.domains {
				if _, ok := feed[d]; !ok {
					return nil, errors.New(errors.ErrCodeNotFound, "domain %q not in feed", d)
				}
				blocks = append(blocks, flow.FeedBlocks(feed, d, cfg.PerBlock)...)
			}
		}
		for _, id := range o.concepts {
			concept, err := src.Concept(ctx, id)
			if err != nil {
				return nil, err
			}
			blocks = append(blocks, flow.ConceptBlock(concept))
		}
	}
	if len(blocks) == 0 {
		return nil, fmt.Errorf("no blocks: pass --domain or --concept")
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	c.Logger.Debug("scheduling blocks", "available", len(blocks), "seed", seed)
	return flow.Schedule(blocks, cfg.Blocks, seed), nil
}

// explainer writes each forced-choice explanation as an animated SVG.
func (c *CLI) explainer(runner *pipeline.Runner, dir string) *pipeline.Explainer {
	n := 0
	return &pipeline.Explainer{
		Runner:  runner,
		Options: c.baseOptions(),
		Emit: func(_ context.Context, res *pipeline.Result) error {
			n++
			path := filepath.Join(dir, fmt.Sprintf("%03d_%s.svg", n, slug(res.Trial.Rule)))
			if err := writeFile(path, res.Artifacts[pipeline.FormatSVG]); err != nil {
				return err
			}
			printDetail("explanation: %s", path)
			return nil
		},
	}
}

// playSession drives ctrl from lines of in until the session is done.
func playSession(ctx context.Context, ctrl *flow.Controller, in io.Reader, out io.Writer, delay bool) error {
	sc := bufio.NewScanner(in)
	readLine := func(prompt string) (string, error) {
		fmt.Fprint(out, StyleHighlight.Render(prompt)+" ")
		if !sc.Scan() {
			if err := sc.Err(); err != nil {
				return "", err
			}
			return "", io.ErrUnexpectedEOF
		}
		return sc.Text(), nil
	}

	for !ctrl.Done() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if ctrl.NeedsDescription() {
			text, err := readLine("Describe the rule:")
			if err != nil {
				return err
			}
			if err := ctrl.Describe(ctx, text); err != nil {
				if errors.Is(err, errors.ErrCodeInvalidInput) {
					fmt.Fprintln(out, StyleWarning.Render(errors.UserMessage(err)))
					continue
				}
				return err
			}
			continue
		}

		p, err := ctrl.Next()
		if err != nil {
			return err
		}
		printPrompt(out, ctrl, p)
		for {
			resp, err := readLine(">")
			if err != nil {
				return err
			}
			o, err := ctrl.Respond(ctx, resp)
			if errors.Is(err, errors.ErrCodeInvalidInput) {
				fmt.Fprintln(out, StyleWarning.Render(errors.UserMessage(err)))
				continue
			}
			if err != nil {
				return err
			}
			printOutcome(out, o)
			if delay && o.Delay > 0 {
				select {
				case <-time.After(o.Delay):
				case <-ctx.Done():
					return ctx.Err()
				}
			}
			break
		}
	}
	return nil
}

func printPrompt(w io.Writer, ctrl *flow.Controller, p flow.Prompt) {
	prog := ctrl.Progress()
	if p.NewBlock {
		fmt.Fprintf(w, "\n%s\n", StyleTitle.Render(fmt.Sprintf("Rule %d of %d", p.Block+1, prog.Blocks)))
	}
	for _, ex := range p.History {
		fmt.Fprintf(w, "  %s %s %s\n", stimulus.PrettyList(ex.I), StyleDim.Render(iconArrow), stimulus.PrettyList(ex.O))
	}
	fmt.Fprintf(w, "%s %s\n", StyleDim.Render(fmt.Sprintf("[%d/%d]", p.TotalTrial, prog.Total)), StyleValue.Render(p.Input))
	if p.Task == telemetry.TaskForcedChoice {
		fmt.Fprintf(w, "  0) %s\n  1) %s\n", p.Alternatives[0], p.Alternatives[1])
	}
}

func printOutcome(w io.Writer, o flow.Outcome) {
	if o.Correct {
		fmt.Fprintf(w, "%s %s\n", styleIconSuccess.Render(iconSuccess), StyleDim.Render(o.RT.Round(time.Millisecond).String()))
		return
	}
	fmt.Fprintf(w, "%s expected %s\n", styleIconError.Render(iconError), StyleValue.Render(o.Expected))
}

func writeRecordsCSV(path string, records []telemetry.Record) error {
	out, err := openOutput(path)
	if err != nil {
		return err
	}
	defer out.Close()
	return telemetry.WriteCSV(out, records)
}

// slug keeps letters and digits of s for use in file names.
func slug(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case b.Len() > 0 && !strings.HasSuffix(b.String(), "-"):
			b.WriteByte('-')
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
