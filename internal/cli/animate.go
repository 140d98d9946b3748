package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/ruleviz/pkg/animate"
)

// animateCommand creates the animate command for rendering explanations.
func (c *CLI) animateCommand() *cobra.Command {
	o := &renderOpts{animated: true}

	cmd := &cobra.Command{
		Use:   "animate",
		Short: "Render the animated explanation of a trial",
		Long: `Render the animated explanation of a trial as a self-playing SVG.

The animation expands the diagram, highlights the aligned groups, lets the
highlighting soak, moves copied material and reveals new material group by
group, holds the result and collapses back.

With -f png --frame-at 3s a single frame is captured in headless Chrome.
With -f json the planned script is written next to the diagram.`,
		Example: `  ruleviz animate -s ./stimuli -d trees -i 2
  ruleviz animate -d trees -i 2 --speed 0.5 --timeline
  ruleviz animate -d lists -i 0 -f png --frame-at 2.5s`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd.Context(), o)
		},
	}
	o.register(cmd)
	cmd.Flags().Float64Var(&o.speed, "speed", 1, "playback speed factor")
	cmd.Flags().DurationVar(&o.frameAt, "frame-at", 0, "capture PNG output at this offset with headless Chrome")
	cmd.Flags().BoolVar(&o.timeline, "timeline", false, "print the stage timeline")

	return cmd
}

// printTimeline prints when each stage of script starts and how long it runs.
func printTimeline(script *animate.Script) {
	var rows [][]string
	var at time.Duration
	for _, st := range script.Stages {
		d := st.Duration()
		rows = append(rows, []string{
			st.Phase.String(),
			at.Round(time.Millisecond).String(),
			d.Round(time.Millisecond).String(),
			strconv.Itoa(len(st.Actions)),
		})
		at += d
	}
	fmt.Println(renderTable([]string{"Phase", "Start", "Duration", "Actions"}, rows, nil))
	printKeyValue("total", script.Duration().Round(time.Millisecond).String())
	printKeyValue("groups", strconv.Itoa(script.Groups))
}
