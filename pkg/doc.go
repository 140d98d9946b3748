// Package pkg provides the core libraries for ruleviz, which explains
// rule-learning stimuli with animated diagrams.
//
// # Overview
//
// A trial shows a challenge (a list or a tree in prefix encoding) and two
// candidate answers. An alignment says which parts of the correct answer
// were copied from the challenge and which are new. ruleviz lays the trial
// out and animates the hidden rule turning the challenge into the answer.
// The pkg directory is organized into these areas:
//
//  1. [term], [alignment], [layout] - Domain logic (codec, alignment analysis, placement)
//  2. [diagram], [animate] - Scene construction and the transformation animator
//  3. [render] - SVG, JSON, PNG and PDF output, plus node-link tree drawings
//  4. [stimulus], [flow], [telemetry] - Feeds, the experiment flow and trial records
//  5. [pipeline] - Orchestration (analyze → layout → plan → render)
//  6. [cache], [httputil], [config], [observability], [errors] - Infrastructure
//
// # Architecture
//
//	stimulus feed (feed.json, directory or HTTP)
//	         ↓
//	    [alignment] package (check the alignment, derive groups and provenance)
//	         ↓
//	    [diagram] package (rows placed with [layout])
//	         ↓
//	    [animate] package (plan the phases, play them on a host)
//	         ↓
//	    SVG/PNG/PDF/JSON output
//
// # Quick Start
//
// Render the animated explanation of one trial:
//
//	import (
//	    "context"
//	    "github.com/matzehuels/ruleviz/pkg/alignment"
//	    "github.com/matzehuels/ruleviz/pkg/animate"
//	    "github.com/matzehuels/ruleviz/pkg/diagram"
//	    "github.com/matzehuels/ruleviz/pkg/render/sink"
//	    "github.com/matzehuels/ruleviz/pkg/render/styles"
//	    "github.com/matzehuels/ruleviz/pkg/stimulus"
//	    "github.com/matzehuels/ruleviz/pkg/term"
//	)
//
//	// 1. Load a trial
//	feed, _ := stimulus.ReadFeedFile("stimuli/feed.json")
//	trial, _ := feed.Trial("trees", 0)
//
//	// 2. Analyze and lay it out
//	an, _ := trial.Analyze(alignment.KindTree, term.DefaultCodec)
//	d, _ := diagram.Build(trial, alignment.KindTree, diagram.Config{})
//
//	// 3. Plan and record the animation
//	script, _ := animate.Plan(d, an, animate.DefaultTimings())
//	rec, _ := animate.Record(context.Background(), d, styles.Simple, script)
//
//	// 4. Render a self-playing SVG
//	svg := sink.RenderSVG(rec, sink.WithAnimation())
//
// The [pipeline] package wraps these steps with caching and validation.
//
// # Testing
//
//	go test ./pkg/...                    # All tests
//	go test ./pkg/alignment/...          # Specific package
//	go test -run Example ./pkg/term      # Examples only
//
// [term]: https://pkg.go.dev/github.com/matzehuels/ruleviz/pkg/term
// [alignment]: https://pkg.go.dev/github.com/matzehuels/ruleviz/pkg/alignment
// [layout]: https://pkg.go.dev/github.com/matzehuels/ruleviz/pkg/layout
// [diagram]: https://pkg.go.dev/github.com/matzehuels/ruleviz/pkg/diagram
// [animate]: https://pkg.go.dev/github.com/matzehuels/ruleviz/pkg/animate
// [render]: https://pkg.go.dev/github.com/matzehuels/ruleviz/pkg/render
// [stimulus]: https://pkg.go.dev/github.com/matzehuels/ruleviz/pkg/stimulus
// [flow]: https://pkg.go.dev/github.com/matzehuels/ruleviz/pkg/flow
// [telemetry]: https://pkg.go.dev/github.com/matzehuels/ruleviz/pkg/telemetry
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/ruleviz/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/ruleviz/pkg/cache
// [httputil]: https://pkg.go.dev/github.com/matzehuels/ruleviz/pkg/httputil
// [config]: https://pkg.go.dev/github.com/matzehuels/ruleviz/pkg/config
// [observability]: https://pkg.go.dev/github.com/matzehuels/ruleviz/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/ruleviz/pkg/errors
package pkg
