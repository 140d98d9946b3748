package pipeline

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/ruleviz/pkg/alignment"
	"github.com/matzehuels/ruleviz/pkg/animate"
	"github.com/matzehuels/ruleviz/pkg/cache"
	"github.com/matzehuels/ruleviz/pkg/stimulus"
	"github.com/matzehuels/ruleviz/pkg/term"
)

func iv(s, e int) alignment.Interval { return alignment.Interval{Start: s, End: e} }

func swapTrial() *stimulus.Trial {
	return &stimulus.Trial{
		Rule:      "swap",
		Challenge: "A2B0C0",
		Correct:   "A2C0B0",
		Incorrect: "A2B2D0E0C0",
		Target:    1,
		Alignment: alignment.Alignment{
			{String: "A2", Input: []alignment.Interval{iv(0, 2)}, Output: []alignment.Interval{iv(0, 2)}, Context: 1},
			{String: "C0", Input: []alignment.Interval{iv(4, 6)}, Output: []alignment.Interval{iv(2, 4)}, Context: 2},
			{String: "B0", Input: []alignment.Interval{iv(2, 4)}, Output: []alignment.Interval{iv(4, 6)}, Context: 3},
		},
	}
}

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"svg", false},
		{"png", false},
		{"pdf", false},
		{"json", false},
		{"tree", false},
		{"invalid", true},
		{"SVG", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
	}
}

func TestValidateFormats(t *testing.T) {
	if err := ValidateFormats([]string{"svg", "json"}); err != nil {
		t.Errorf("Valid formats should pass: %v", err)
	}

	if err := ValidateFormats([]string{"svg", "invalid"}); err == nil {
		t.Error("Invalid format should fail")
	}

	// Empty slice is valid
	if err := ValidateFormats(nil); err != nil {
		t.Errorf("Empty formats should pass: %v", err)
	}
}

func TestValidateStyle(t *testing.T) {
	tests := []struct {
		style   string
		wantErr bool
	}{
		{"simple", false},
		{"contrast", false},
		{"invalid", true},
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateStyle(tt.style)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateStyle(%q) error = %v, wantErr %v", tt.style, err, tt.wantErr)
		}
	}
}

func TestOptionsDefaults(t *testing.T) {
	opts := Options{}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults() error = %v", err)
	}

	if len(opts.Formats) != 1 || opts.Formats[0] != FormatSVG {
		t.Errorf("Formats = %v, want [svg]", opts.Formats)
	}
	if opts.Style != DefaultStyle {
		t.Errorf("Style = %q, want %q", opts.Style, DefaultStyle)
	}
	if opts.Scale != DefaultScale {
		t.Errorf("Scale = %v, want %v", opts.Scale, DefaultScale)
	}
	if opts.Timings != animate.DefaultTimings() {
		t.Errorf("Timings = %+v, want defaults", opts.Timings)
	}
	if opts.Codec.Rewrite != term.DefaultRewrite {
		t.Error("Codec should default to the crossref rewrite")
	}
	if opts.Logger == nil {
		t.Error("Logger should be set")
	}
}

func TestOptionsNoRewrite(t *testing.T) {
	opts := Options{NoRewrite: true}
	opts.SetLayoutDefaults()
	if opts.Codec.Rewrite != nil {
		t.Error("NoRewrite should keep the literal codec")
	}
	if got := opts.LayoutKeyOpts().Rewrite; got != "" {
		t.Errorf("LayoutKeyOpts().Rewrite = %q, want empty", got)
	}

	def := Options{}
	def.SetLayoutDefaults()
	if def.LayoutKeyOpts() == opts.LayoutKeyOpts() {
		t.Error("rewrite should change the layout key")
	}
}

func TestOptionsValidateAndSetDefaultsIdempotent(t *testing.T) {
	opts := Options{Formats: []string{"svg", "json"}, Style: "contrast"}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("first call error = %v", err)
	}
	first := opts
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("second call error = %v", err)
	}
	if opts.Style != first.Style || len(opts.Formats) != len(first.Formats) {
		t.Error("second call changed options")
	}
}

func TestOptionsRejects(t *testing.T) {
	tests := []struct {
		name string
		opts Options
	}{
		{"bad format", Options{Formats: []string{"gif"}}},
		{"bad style", Options{Style: "neon"}},
		{"negative timing", Options{Timings: animate.Timings{Stagger: -time.Second}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.opts.ValidateAndSetDefaults(); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestArtifactKeyOpts(t *testing.T) {
	opts := Options{}
	opts.SetRenderDefaults()

	still := opts.ArtifactKeyOpts(FormatSVG)
	if still.Timings != "" {
		t.Errorf("still artifacts should not depend on timings, got %q", still.Timings)
	}
	opts.Animated = true
	if opts.ArtifactKeyOpts(FormatSVG) == still {
		t.Error("animation should change the artifact key")
	}
	png := opts.ArtifactKeyOpts(FormatPNG)
	if !strings.HasPrefix(png.Format, "png@2.00") {
		t.Errorf("PNG key format = %q, want scale in key", png.Format)
	}
}

func TestExecute(t *testing.T) {
	runner := NewRunner(nil, nil, nil)
	res, err := runner.Execute(context.Background(), swapTrial(), Options{
		Kind:     alignment.KindTree,
		Formats:  []string{FormatSVG, FormatJSON},
		Animated: true,
	})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if res.Stats.Groups != 3 {
		t.Errorf("Groups = %d, want 3", res.Stats.Groups)
	}
	if res.Stats.AnimationLen != 7250*time.Millisecond {
		t.Errorf("AnimationLen = %v, want 7.25s", res.Stats.AnimationLen)
	}
	if res.LayoutHash == "" {
		t.Error("LayoutHash should be set")
	}
	if !strings.HasPrefix(string(res.Artifacts[FormatSVG]), "<svg") {
		t.Errorf("svg artifact does not start with <svg: %.40q", res.Artifacts[FormatSVG])
	}
	if !strings.Contains(string(res.Artifacts[FormatSVG]), "<animate") {
		t.Error("animated svg has no animate elements")
	}

	var doc struct {
		Duration float64 `json:"duration_ms"`
	}
	if err := json.Unmarshal(res.Artifacts[FormatJSON], &doc); err != nil {
		t.Fatalf("json artifact: %v", err)
	}
	if doc.Duration != 7250 {
		t.Errorf("duration_ms = %v, want 7250", doc.Duration)
	}
}

func TestExecuteInvalidAlignment(t *testing.T) {
	trial := swapTrial()
	trial.Correct = "A2B0C0"
	_, err := NewRunner(nil, nil, nil).Execute(context.Background(), trial, Options{Kind: alignment.KindTree})
	if err == nil {
		t.Fatal("expected alignment error")
	}
}

func TestLayoutCache(t *testing.T) {
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	runner := NewRunner(c, nil, nil)
	ctx := context.Background()
	opts := Options{Kind: alignment.KindTree}

	first, hit, err := runner.LayoutWithCacheInfo(ctx, swapTrial(), opts)
	if err != nil {
		t.Fatalf("first layout: %v", err)
	}
	if hit {
		t.Error("first layout should miss")
	}

	second, hit, err := runner.LayoutWithCacheInfo(ctx, swapTrial(), opts)
	if err != nil {
		t.Fatalf("second layout: %v", err)
	}
	if !hit {
		t.Error("second layout should hit")
	}
	if second.Width != first.Width || second.Height != first.Height {
		t.Errorf("cached size %vx%v, want %vx%v", second.Width, second.Height, first.Width, first.Height)
	}
	if second.Config.CellSize != first.Config.CellSize || second.Config.Padding != first.Config.Padding {
		t.Error("cached diagram lost its config")
	}

	opts.Refresh = true
	if _, hit, _ = runner.LayoutWithCacheInfo(ctx, swapTrial(), opts); hit {
		t.Error("refresh should bypass the cache")
	}
}

func TestLayoutCacheGeometry(t *testing.T) {
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	runner := NewRunner(c, nil, nil)
	ctx := context.Background()

	opts := Options{Kind: alignment.KindTree}
	opts.Diagram.Padding = 16
	if _, _, err := runner.LayoutWithCacheInfo(ctx, swapTrial(), opts); err != nil {
		t.Fatalf("first layout: %v", err)
	}

	wide := Options{Kind: alignment.KindTree}
	wide.Diagram.Padding = 80
	d, hit, err := runner.LayoutWithCacheInfo(ctx, swapTrial(), wide)
	if err != nil {
		t.Fatalf("second layout: %v", err)
	}
	if hit {
		t.Error("changed padding should miss the cache")
	}
	if d.Config.Padding != 80 {
		t.Errorf("padding = %v, want 80", d.Config.Padding)
	}

	solver := Options{Kind: alignment.KindTree}
	solver.Diagram.Padding = 16
	solver.Diagram.Layout.Tolerance = 0.5
	if solver.LayoutKeyOpts() == opts.LayoutKeyOpts() {
		t.Error("solver parameters should change the layout key")
	}
}

func TestRenderCache(t *testing.T) {
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	runner := NewRunner(c, nil, nil)
	ctx := context.Background()
	opts := Options{Kind: alignment.KindTree, Formats: []string{FormatSVG}}

	res, err := runner.Execute(ctx, swapTrial(), opts)
	if err != nil {
		t.Fatal(err)
	}
	if res.CacheInfo.RenderHit {
		t.Error("first render should miss")
	}
	res, err = runner.Execute(ctx, swapTrial(), opts)
	if err != nil {
		t.Fatal(err)
	}
	if !res.CacheInfo.LayoutHit || !res.CacheInfo.RenderHit {
		t.Errorf("second run cache info = %+v, want both hits", res.CacheInfo)
	}
}

func TestExecuteAll(t *testing.T) {
	trials := []*stimulus.Trial{swapTrial(), swapTrial(), swapTrial()}
	trials[1].Rule = "second"
	results, err := NewRunner(nil, nil, nil).ExecuteAll(context.Background(), trials, Options{Kind: alignment.KindTree}, 2)
	if err != nil {
		t.Fatalf("ExecuteAll() error = %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	if results[1].Trial.Rule != "second" {
		t.Error("results out of order")
	}

	trials[2].Correct = "A2B0C0"
	if _, err := NewRunner(nil, nil, nil).ExecuteAll(context.Background(), trials, Options{Kind: alignment.KindTree}, 2); err == nil {
		t.Error("expected error from bad trial")
	}
}

func TestExplainer(t *testing.T) {
	var got *Result
	e := &Explainer{
		Runner:  NewRunner(nil, nil, nil),
		Options: Options{Kind: alignment.KindTree},
		Emit: func(_ context.Context, res *Result) error {
			got = res
			return nil
		},
	}
	if err := e.Explain(context.Background(), swapTrial()); err != nil {
		t.Fatalf("Explain() error = %v", err)
	}
	if got == nil || !strings.Contains(string(got.Artifacts[FormatSVG]), "<animate") {
		t.Error("explanation should be an animated svg")
	}
}
