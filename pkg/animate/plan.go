package animate

import (
	"time"

	"github.com/matzehuels/ruleviz/pkg/alignment"
	"github.com/matzehuels/ruleviz/pkg/diagram"
	"github.com/matzehuels/ruleviz/pkg/errors"
	"github.com/matzehuels/ruleviz/pkg/render/styles"
)

// TargetKind selects what an action operates on.
type TargetKind int

const (
	TargetCanvas TargetKind = iota
	TargetFrame
	TargetNode
	TargetLabel
	TargetEdge
	// TargetSpawned addresses a shape the script itself appends.
	TargetSpawned
)

// Target addresses a shape. Role and Index select within a scene row;
// for TargetSpawned, Index is the spawn slot.
type Target struct {
	Kind  TargetKind   `json:"kind"`
	Role  diagram.Role `json:"role,omitempty"`
	Index int          `json:"index,omitempty"`
}

// ActionKind is what an action does.
type ActionKind int

const (
	// ActSpawn appends Shape into spawn slot Target.Index.
	ActSpawn ActionKind = iota
	// ActTween starts a transition on Target.
	ActTween
	// ActAwait blocks until every transition started so far in the stage
	// has finished.
	ActAwait
	// ActWait pauses for Duration.
	ActWait
	// ActRemove deletes Target.
	ActRemove
)

// Action is one step of a stage.
type Action struct {
	Kind     ActionKind    `json:"kind"`
	Target   Target        `json:"target"`
	Shape    *Shape        `json:"shape,omitempty"`
	To       Attrs         `json:"to,omitempty"`
	Delay    time.Duration `json:"delay,omitempty"`
	Duration time.Duration `json:"duration,omitempty"`
	Easing   Easing        `json:"easing"`
}

// Stage is the work of one phase. Every transition a stage starts has
// finished before the next stage begins.
type Stage struct {
	Phase   Phase    `json:"phase"`
	Actions []Action `json:"actions"`
}

// Duration is the stage's wall time when played.
func (s Stage) Duration() time.Duration {
	var total, batch time.Duration
	for _, a := range s.Actions {
		switch a.Kind {
		case ActTween:
			batch = max(batch, a.Delay+a.Duration)
		case ActAwait:
			total += batch
			batch = 0
		case ActWait:
			total += batch + a.Duration
			batch = 0
		}
	}
	return total + batch
}

// Script is a planned animation.
type Script struct {
	Stages []Stage `json:"stages"`
	// Spawned is the number of spawn slots.
	Spawned int `json:"spawned"`
	// Groups is the number of staggered reveal steps.
	Groups int `json:"groups"`
}

// Duration is the total wall time of the script.
func (s *Script) Duration() time.Duration {
	var d time.Duration
	for _, st := range s.Stages {
		d += st.Duration()
	}
	return d
}

// PlanOption configures [Plan].
type PlanOption func(*planner)

// WithTheme colors the animation.
func WithTheme(th styles.Theme) PlanOption { return func(p *planner) { p.theme = th } }

type planner struct {
	d     *diagram.Diagram
	an    *alignment.Analysis
	t     Timings
	theme styles.Theme
	geo   geometry
	spawn int
}

// Plan turns a placed diagram and its alignment analysis into a script.
// The analysis must describe the diagram's challenge (input) and output
// rows.
func Plan(d *diagram.Diagram, an *alignment.Analysis, t Timings, opts ...PlanOption) (*Script, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	ch := d.Row(diagram.RoleChallenge)
	switch {
	case d.Kind != an.Kind:
		return nil, errors.New(errors.ErrCodeInvalidInput, "diagram is %s but analysis is %s", d.Kind, an.Kind)
	case ch == nil || ch.Encoding != an.Input:
		return nil, errors.New(errors.ErrCodeInvalidInput, "analysis input %q does not match the challenge row", an.Input)
	case d.Output.Encoding != an.Output:
		return nil, errors.New(errors.ErrCodeInvalidInput, "analysis output %q does not match the output row", an.Output)
	}

	p := &planner{d: d, an: an, t: t, theme: styles.Simple}
	for _, opt := range opts {
		opt(p)
	}
	p.geo = newGeometry(d, p.theme)

	transform, spawned := p.transform()
	return &Script{
		Stages: []Stage{
			p.expand(),
			p.highlight(),
			{Phase: PhaseSettling, Actions: []Action{{Kind: ActWait, Duration: t.Soak}}},
			transform,
			p.collapse(spawned),
		},
		Spawned: p.spawn,
		Groups:  an.Steps(),
	}, nil
}

func tween(target Target, to Attrs, delay, dur time.Duration, e Easing) Action {
	return Action{Kind: ActTween, Target: target, To: to, Delay: delay, Duration: dur, Easing: e}
}

func (p *planner) resize(height float64, dur time.Duration, e Easing) []Action {
	f := p.d.Frame()
	return []Action{
		tween(Target{Kind: TargetCanvas}, Attrs{"height": Num(height)}, 0, dur, e),
		tween(Target{Kind: TargetFrame}, Attrs{"height": Num(f.H + height - p.d.Height)}, 0, dur, e),
	}
}

func (p *planner) expand() Stage {
	return Stage{
		Phase:   PhaseExpanding,
		Actions: p.resize(p.d.ExpandedHeight(), p.t.ExpandDuration, p.t.ExpandEasing),
	}
}

// unlinked returns the challenge edges whose ends fall in different groups.
func (p *planner) unlinked() []int {
	ignored := make(map[[2]int]bool)
	for _, s := range p.an.InputLinks {
		if !s.Linked {
			ignored[[2]int{s.Parent, s.Child}] = true
		}
	}
	var out []int
	for i, e := range p.d.Row(diagram.RoleChallenge).Edges {
		if ignored[[2]int{e.From, e.To}] {
			out = append(out, i)
		}
	}
	return out
}

func (p *planner) highlight() Stage {
	st := Stage{Phase: PhaseHighlighting}
	for _, i := range p.unlinked() {
		st.Actions = append(st.Actions, tween(
			Target{Kind: TargetEdge, Role: diagram.RoleChallenge, Index: i},
			Attrs{"stroke": p.theme.Highlight, "stroke-width": Num(highlightWidth)},
			0, p.t.HighlightDuration, p.t.HighlightEasing,
		))
	}
	return st
}

func (p *planner) newSlot() Target {
	t := Target{Kind: TargetSpawned, Index: p.spawn}
	p.spawn++
	return t
}

// transform builds the staggered reveal of the output row. It returns the
// stage and every spawned target.
func (p *planner) transform() (Stage, []Target) {
	out, ch := p.d.Output, p.d.Row(diagram.RoleChallenge)
	neutralX, neutralY := out.Frame.X+out.Frame.W/2, out.Frame.Y
	st := Stage{Phase: PhaseTransforming}
	var spawns, tweens []Action
	var spawned []Target

	linked := make(map[[2]int]bool)
	for _, s := range p.an.OutputLinks {
		linked[[2]int{s.Parent, s.Child}] = s.Linked
	}

	arrival := make([]time.Duration, len(out.Elements))
	type placed struct {
		node, label Shape
		tweens      [2]Action
	}
	var nodes []placed
	for j, el := range out.Elements {
		prov, ok := p.an.Source(el.Offset)
		if !ok {
			continue
		}
		x, y, opacity, fill := neutralX, neutralY, 0.0, p.theme.GroupColor(prov.Order, prov.Context)
		if prov.Status == alignment.StatusOld {
			if i, ok := ch.ElementAt(prov.Source); ok {
				x, y, opacity, fill = ch.Elements[i].X, ch.Elements[i].Y, 1, p.theme.Node
			}
		}
		delay := time.Duration(prov.Order) * p.t.Stagger
		arrival[j] = delay + p.t.MoveDuration
		dest := p.theme.GroupColor(prov.Order, prov.Context)
		nodes = append(nodes, placed{
			node:  p.geo.node(x, y, fill, opacity),
			label: p.geo.label(el.Label, x, y, opacity),
			tweens: [2]Action{
				tween(Target{}, p.geo.at(el.X, el.Y).With(Attrs{"fill": dest, "opacity": Num(1)}), delay, p.t.MoveDuration, p.t.MoveEasing),
				tween(Target{}, p.geo.labelAt(el.X, el.Y).With(Attrs{"opacity": Num(1)}), delay, p.t.MoveDuration, p.t.MoveEasing),
			},
		})
	}

	// edges go first so nodes draw over them
	for _, e := range out.Edges {
		solid := linked[[2]int{e.From, e.To}]
		width, dash := linkedWidth, ""
		if !solid {
			width, dash = unlinkedWidth, dashPattern
		}
		shape := p.geo.edge(out.Elements[e.From], out.Elements[e.To], p.theme.Edge, width, dash, 0)
		slot := p.newSlot()
		spawned = append(spawned, slot)
		spawns = append(spawns, Action{Kind: ActSpawn, Target: slot, Shape: &shape})
		tweens = append(tweens, tween(slot, Attrs{"opacity": Num(1)},
			max(arrival[e.From], arrival[e.To]), p.t.MoveDuration/2, EaseLinear))
	}
	for _, n := range nodes {
		for k, shape := range []Shape{n.node, n.label} {
			slot := p.newSlot()
			spawned = append(spawned, slot)
			spawns = append(spawns, Action{Kind: ActSpawn, Target: slot, Shape: &shape})
			tw := n.tweens[k]
			tw.Target = slot
			tweens = append(tweens, tw)
		}
	}
	st.Actions = append(spawns, tweens...)
	return st, spawned
}

func (p *planner) collapse(spawned []Target) Stage {
	st := Stage{Phase: PhaseCollapsing}
	st.Actions = append(st.Actions, Action{Kind: ActWait, Duration: p.t.Hold})
	for _, slot := range spawned {
		st.Actions = append(st.Actions, tween(slot, Attrs{"opacity": Num(0)}, 0, p.t.CollapseDuration, EaseLinear))
	}
	for _, i := range p.unlinked() {
		st.Actions = append(st.Actions, tween(
			Target{Kind: TargetEdge, Role: diagram.RoleChallenge, Index: i},
			Attrs{"stroke": p.theme.Edge, "stroke-width": Num(edgeWidth)},
			0, p.t.CollapseDuration, EaseLinear,
		))
	}
	st.Actions = append(st.Actions, p.resize(p.d.Height, p.t.CollapseDuration, p.t.ExpandEasing)...)
	st.Actions = append(st.Actions, Action{Kind: ActAwait})
	for _, slot := range spawned {
		st.Actions = append(st.Actions, Action{Kind: ActRemove, Target: slot})
	}
	return st
}
