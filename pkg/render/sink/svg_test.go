package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/ruleviz/pkg/alignment"
	"github.com/matzehuels/ruleviz/pkg/animate"
	"github.com/matzehuels/ruleviz/pkg/diagram"
	"github.com/matzehuels/ruleviz/pkg/render/styles"
	"github.com/matzehuels/ruleviz/pkg/stimulus"
	"github.com/matzehuels/ruleviz/pkg/term"
)

func iv(s, e int) alignment.Interval { return alignment.Interval{Start: s, End: e} }

var swapTrial = &stimulus.Trial{
	Challenge: "A2B0C0",
	Correct:   "A2C0B0",
	Incorrect: "A2B0B0",
	Alignment: alignment.Alignment{
		{String: "A2", Input: []alignment.Interval{iv(0, 2)}, Output: []alignment.Interval{iv(0, 2)}, Context: 1},
		{String: "C0", Input: []alignment.Interval{iv(4, 6)}, Output: []alignment.Interval{iv(2, 4)}, Context: 2},
		{String: "B0", Input: []alignment.Interval{iv(2, 4)}, Output: []alignment.Interval{iv(4, 6)}, Context: 3},
	},
}

func prepare(t *testing.T) (*diagram.Diagram, *alignment.Analysis, *animate.Script) {
	t.Helper()
	d, err := diagram.Build(swapTrial, alignment.KindTree, diagram.Config{})
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	an, err := swapTrial.Analyze(alignment.KindTree, term.DefaultCodec)
	if err != nil {
		t.Fatalf("Analyze() error: %v", err)
	}
	s, err := animate.Plan(d, an, animate.DefaultTimings())
	if err != nil {
		t.Fatalf("Plan() error: %v", err)
	}
	return d, an, s
}

func TestRenderStillSVG(t *testing.T) {
	d, _, _ := prepare(t)
	svg := string(RenderSVG(animate.Still(d, styles.Simple), WithTitle("swap <children>")))

	if !strings.HasPrefix(svg, "<svg") {
		t.Fatalf("output does not start with <svg: %.40s", svg)
	}
	wantSize := fmt.Sprintf(`width="%.0f" height="%.0f"`, d.Width, d.Height)
	if !strings.Contains(svg, wantSize) {
		t.Errorf("missing %s", wantSize)
	}
	if got := strings.Count(svg, "<circle"); got != 9 {
		t.Errorf("circles = %d, want 9", got)
	}
	if strings.Contains(svg, "<animate") {
		t.Error("still output contains animation")
	}
	if !strings.Contains(svg, "<title>swap &lt;children&gt;</title>") {
		t.Error("title not escaped")
	}
	if !strings.Contains(svg, ">A</text>") {
		t.Error("missing node label")
	}
}

func TestRenderAnimatedSVG(t *testing.T) {
	d, _, s := prepare(t)
	rec, err := animate.Record(context.Background(), d, styles.Simple, s)
	if err != nil {
		t.Fatalf("Record() error: %v", err)
	}
	svg := string(RenderSVG(rec, WithAnimation(), WithHover()))

	wantHeight := fmt.Sprintf(`height="%.0f"`, d.ExpandedHeight())
	if !strings.Contains(svg, wantHeight) {
		t.Errorf("canvas not sized for the expanded diagram, want %s", wantHeight)
	}
	for _, want := range []string{
		`<animate attributeName="cx"`,
		`calcMode="spline"`,
		`visibility="hidden"`,
		`<set attributeName="visibility" to="hidden"`,
		`<style>`,
	} {
		if !strings.Contains(svg, want) {
			t.Errorf("missing %s", want)
		}
	}
	if got := strings.Count(svg, "<circle"); got != 12 {
		t.Errorf("circles = %d, want 12 (9 static + 3 spawned)", got)
	}
}

func TestClock(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"1500ms", "1.5s"},
		{"0s", "0s"},
		{"2s", "2s"},
	}
	for _, tt := range tests {
		d, _ := time.ParseDuration(tt.in)
		if got := clock(d); got != tt.want {
			t.Errorf("clock(%s) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRenderJSON(t *testing.T) {
	d, an, s := prepare(t)
	data, err := RenderJSON(d, an, s)
	if err != nil {
		t.Fatalf("RenderJSON() error: %v", err)
	}
	var out struct {
		Diagram struct {
			Width float64 `json:"width"`
		} `json:"diagram"`
		Script struct {
			Stages []struct {
				Phase string `json:"phase"`
			} `json:"stages"`
		} `json:"script"`
		Duration float64 `json:"duration_ms"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("json.Unmarshal() error: %v", err)
	}
	if out.Diagram.Width != d.Width {
		t.Errorf("Width = %v, want %v", out.Diagram.Width, d.Width)
	}
	if len(out.Script.Stages) != 5 || out.Script.Stages[0].Phase != "expanding" {
		t.Errorf("Stages = %+v", out.Script.Stages)
	}
	if out.Duration != 7250 {
		t.Errorf("Duration = %v, want 7250", out.Duration)
	}
}
