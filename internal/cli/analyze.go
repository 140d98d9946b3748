package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/ruleviz/pkg/alignment"
)

// analyzeCommand creates the analyze command for inspecting alignments.
func (c *CLI) analyzeCommand() *cobra.Command {
	var (
		sel    stimulusFlags
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Show how a trial's alignment relates challenge and answer",
		Long: `Check a trial's alignment against its challenge and correct answer and print
the derived groups, unit membership, structural links and provenance.

Provenance lists, for every output unit, the input unit it was copied from
or "new" for inserted material, with the stagger step it is revealed at.`,
		Example: `  ruleviz analyze -s ./stimuli -d trees -i 3
  ruleviz analyze -s feed.json --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			trial, kind, err := c.selectTrial(ctx, sel)
			if err != nil {
				return err
			}
			runner, err := c.newRunner(ctx, true)
			if err != nil {
				return err
			}
			defer runner.Close()

			opts := c.baseOptions()
			opts.Kind = kind
			an, err := runner.Analyze(ctx, trial, opts)
			if err != nil {
				return err
			}
			if asJSON {
				e := json.NewEncoder(cmd.OutOrStdout())
				e.SetIndent("", "  ")
				return e.Encode(an)
			}
			printAnalysis(cmd.OutOrStdout(), trial.Rule, an)
			return nil
		},
	}

	sel.register(cmd)
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the analysis as JSON")

	return cmd
}

func printAnalysis(w io.Writer, rule string, an *alignment.Analysis) {
	fmt.Fprintf(w, "%s %s\n", StyleTitle.Render(rule), StyleDim.Render("("+an.Kind.String()+")"))
	fmt.Fprintf(w, "%s %s\n", StyleDim.Render("input:    "), StyleValue.Render(an.Input))
	fmt.Fprintf(w, "%s %s\n", StyleDim.Render("output:   "), StyleValue.Render(an.Output))
	fmt.Fprintf(w, "%s %s\n\n", StyleDim.Render("flattened:"), StyleValue.Render(an.Flattened))

	orders := an.Alignment.Orders()
	var groups [][]string
	for gi, g := range an.Alignment {
		step := strconv.Itoa(orders[gi])
		if g.IsContext() {
			step = "context"
		}
		groups = append(groups, []string{
			strconv.Itoa(gi), g.String, intervals(g.Input), intervals(g.Output), step,
		})
	}
	fmt.Fprintln(w, renderTable([]string{"Group", "String", "Input", "Output", "Step"}, groups,
		func(row int) bool { return an.Alignment[row].IsContext() }))

	fmt.Fprintln(w, StyleTitle.Render("Input"))
	fmt.Fprintln(w, membershipTable(an.InputMembers, an.InputLinks))
	fmt.Fprintln(w, StyleTitle.Render("Output"))
	fmt.Fprintln(w, membershipTable(an.OutputMembers, an.OutputLinks))

	var prov [][]string
	for _, e := range an.Provenance {
		src := "new"
		if e.Status == alignment.StatusOld {
			src = strconv.Itoa(e.Source)
		}
		prov = append(prov, []string{strconv.Itoa(e.Dest), src, strconv.Itoa(e.Group), strconv.Itoa(e.Order)})
	}
	fmt.Fprintln(w, StyleTitle.Render("Provenance"))
	fmt.Fprintln(w, renderTable([]string{"Dest", "Source", "Group", "Step"}, prov,
		func(row int) bool { return an.Provenance[row].Context }))
}

// membershipTable shows each unit's group and the units it is linked to.
func membershipTable(members []alignment.Member, links []alignment.Spanner) string {
	linkedTo := make([][]string, len(members))
	for _, s := range links {
		if s.Linked {
			linkedTo[s.Parent] = append(linkedTo[s.Parent], strconv.Itoa(s.Child))
		}
	}
	rows := make([][]string, len(members))
	for i, m := range members {
		group := "-"
		if m.Aligned() {
			group = strconv.Itoa(m.Group)
		}
		rows[i] = []string{strconv.Itoa(m.Unit), group, strings.Join(linkedTo[i], ",")}
	}
	return renderTable([]string{"Unit", "Group", "Linked"}, rows,
		func(row int) bool { return !members[row].Aligned() || members[row].Context })
}

func intervals(ivs []alignment.Interval) string {
	if len(ivs) == 0 {
		return "-"
	}
	parts := make([]string, len(ivs))
	for i, iv := range ivs {
		parts[i] = iv.String()
	}
	return strings.Join(parts, " ")
}
