// Package diagram places the static rows of a forced-choice trial.
//
// A diagram stacks three rows: the challenge on top and the two answer
// alternatives below it in display order. A fourth, transient output row
// sits below the frame; it is only revealed when the animator expands the
// canvas. Rows hold positioned elements (tree nodes or string cells) and
// the edges between them (parent-child links or neighbour links).
package diagram

import (
	"fmt"
	"slices"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/ruleviz/pkg/alignment"
	"github.com/matzehuels/ruleviz/pkg/errors"
	"github.com/matzehuels/ruleviz/pkg/layout"
	"github.com/matzehuels/ruleviz/pkg/stimulus"
	"github.com/matzehuels/ruleviz/pkg/term"
)

// Role names what a row shows.
type Role int

const (
	RoleChallenge Role = iota
	RoleCorrect
	RoleIncorrect
	RoleOutput
)

var roleNames = [...]string{"challenge", "correct", "incorrect", "output"}

func (r Role) String() string {
	if int(r) < len(roleNames) {
		return roleNames[r]
	}
	return fmt.Sprintf("role(%d)", int(r))
}

// MarshalText implements encoding.TextMarshaler.
func (r Role) MarshalText() ([]byte, error) { return []byte(r.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *Role) UnmarshalText(b []byte) error {
	for i, name := range roleNames {
		if string(b) == name {
			*r = Role(i)
			return nil
		}
	}
	return errors.New(errors.ErrCodeInvalidInput, "unknown row role %q", string(b))
}

// Default geometry.
const (
	DefaultCellSize = 28.0
	DefaultCellGap  = 4.0
	DefaultRowGap   = 24.0
	DefaultPadding  = 16.0
)

// Config controls row geometry.
type Config struct {
	Layout   layout.Config `json:"layout" toml:"layout"`
	CellSize float64       `json:"cell_size" toml:"cell_size"`
	CellGap  float64       `json:"cell_gap" toml:"cell_gap"`
	RowGap   float64       `json:"row_gap" toml:"row_gap"`
	Padding  float64       `json:"padding" toml:"padding"`
}

// WithDefaults fills zero fields.
func (c Config) WithDefaults() Config {
	if c.CellSize == 0 {
		c.CellSize = DefaultCellSize
	}
	if c.CellGap == 0 {
		c.CellGap = DefaultCellGap
	}
	if c.RowGap == 0 {
		c.RowGap = DefaultRowGap
	}
	if c.Padding == 0 {
		c.Padding = DefaultPadding
	}
	return c
}

// Rect is an axis-aligned rectangle.
type Rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Element is one placed unit. X and Y are the unit's center. Offset is the
// code the label comes from; Folded holds the other codes a crossref node
// absorbed.
type Element struct {
	Unit   int     `json:"unit"`
	Offset int     `json:"offset"`
	Folded []int   `json:"folded,omitempty"`
	Label  string  `json:"label"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
}

// Edge joins two elements of the same row by index.
type Edge struct {
	From int `json:"from"`
	To   int `json:"to"`
}

// Row is one placed stimulus.
type Row struct {
	Role     Role      `json:"role"`
	Encoding string    `json:"encoding"`
	Frame    Rect      `json:"frame"`
	Elements []Element `json:"elements"`
	Edges    []Edge    `json:"edges"`
}

// ElementAt returns the index of the element standing for the code at
// character offset off.
func (r *Row) ElementAt(off int) (int, bool) {
	for i, e := range r.Elements {
		if e.Offset == off || slices.Contains(e.Folded, off) {
			return i, true
		}
	}
	return -1, false
}

// Diagram is the placed trial.
type Diagram struct {
	Kind   alignment.Kind `json:"kind"`
	Config Config         `json:"config"`
	Width  float64        `json:"width"`
	Height float64        `json:"height"`
	// ExpandDelta is how much the canvas grows to reveal the output row.
	ExpandDelta float64 `json:"expand_delta"`
	// Rows holds challenge and alternatives in display order.
	Rows   []*Row `json:"rows"`
	Output *Row   `json:"output"`
	// Warnings lists recoverable layout problems.
	Warnings []string `json:"warnings,omitempty"`
}

// Row returns the row with role r.
func (d *Diagram) Row(r Role) *Row {
	if r == RoleOutput {
		return d.Output
	}
	for _, row := range d.Rows {
		if row.Role == r {
			return row
		}
	}
	return nil
}

// Frame returns the rectangle around the static rows.
func (d *Diagram) Frame() Rect {
	p := d.Config.Padding
	return Rect{X: p / 2, Y: p / 2, W: d.Width - p, H: d.Height - p}
}

// ExpandedHeight is the canvas height while the output row is visible.
func (d *Diagram) ExpandedHeight() float64 { return d.Height + d.ExpandDelta }

// Option configures [Build].
type Option func(*builder)

// WithLogger reports layout warnings to logger.
func WithLogger(l *log.Logger) Option { return func(b *builder) { b.logger = l } }

// WithCodec sets the codec used for tree rows.
func WithCodec(c term.Codec) Option { return func(b *builder) { b.codec = c } }

type builder struct {
	cfg    Config
	kind   alignment.Kind
	codec  term.Codec
	logger *log.Logger
	warn   []string
}

// Build places trial as kind. Layout nonconvergence is not fatal: the
// approximate layout is used and the problem is listed in Warnings.
func Build(trial *stimulus.Trial, kind alignment.Kind, cfg Config, opts ...Option) (*Diagram, error) {
	b := &builder{cfg: cfg.WithDefaults(), kind: kind, codec: term.DefaultCodec}
	for _, opt := range opts {
		opt(b)
	}

	alts := trial.Alternatives()
	altRoles := [2]Role{RoleCorrect, RoleIncorrect}
	if trial.Target == 1 {
		altRoles = [2]Role{RoleIncorrect, RoleCorrect}
	}
	specs := []struct {
		role Role
		enc  string
	}{
		{RoleChallenge, trial.Challenge},
		{altRoles[0], alts[0]},
		{altRoles[1], alts[1]},
		{RoleOutput, trial.Correct},
	}

	rows := make([]*Row, len(specs))
	for i, s := range specs {
		row, err := b.row(s.role, s.enc)
		if err != nil {
			return nil, fmt.Errorf("%s row: %w", s.role, err)
		}
		rows[i] = row
	}

	d := &Diagram{Kind: kind, Config: b.cfg, Rows: rows[:3], Output: rows[3], Warnings: b.warn}
	b.stack(d)
	return d, nil
}

func (b *builder) row(role Role, enc string) (*Row, error) {
	if enc == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "empty encoding")
	}
	if b.kind == alignment.KindTree {
		return b.treeRow(role, enc)
	}
	return b.stringRow(role, enc), nil
}

func (b *builder) stringRow(role Role, s string) *Row {
	cell := b.cfg.CellSize
	pts := layout.Sequence(len(s), cell, b.cfg.CellGap)
	layout.Translate(pts, 0, cell/2)

	r := &Row{
		Role:     role,
		Encoding: s,
		Frame:    Rect{W: layout.SequenceWidth(len(s), cell, b.cfg.CellGap), H: cell},
	}
	for i, p := range pts {
		r.Elements = append(r.Elements, Element{Unit: i, Offset: i, Label: s[i : i+1], X: p.X, Y: p.Y})
		if i > 0 {
			r.Edges = append(r.Edges, Edge{From: i - 1, To: i})
		}
	}
	return r
}

func (b *builder) treeRow(role Role, enc string) (*Row, error) {
	root, err := b.codec.Decode(enc)
	if err != nil {
		return nil, err
	}
	l, err := layout.Tree(root, b.cfg.Layout)
	if err != nil {
		if !errors.Recoverable(err) {
			return nil, err
		}
		msg := fmt.Sprintf("%s row: %s", role, errors.UserMessage(err))
		b.warn = append(b.warn, msg)
		if b.logger != nil {
			b.logger.Warn("approximate layout", "row", role, "iterations", l.Iterations, "residual", l.Residual)
		}
	}

	bounds := l.Bounds()
	r := &Row{
		Role:     role,
		Encoding: enc,
		Frame:    Rect{W: bounds.Width(), H: bounds.Height()},
	}
	for i, n := range l.Nodes {
		var folded []int
		for _, off := range n.Term.CodeOffsets() {
			if off != n.Term.HeadOffset() {
				folded = append(folded, off)
			}
		}
		r.Elements = append(r.Elements, Element{
			Unit:   i,
			Offset: n.Term.HeadOffset(),
			Folded: folded,
			Label:  string(n.Term.Head.Head()),
			X:      n.X - bounds.MinX,
			Y:      n.Y - bounds.MinY,
		})
		for _, c := range n.Children {
			r.Edges = append(r.Edges, Edge{From: i, To: c})
		}
	}
	return r, nil
}

// stack centers every row horizontally and stacks them top to bottom. The
// output row goes below the static height.
func (b *builder) stack(d *Diagram) {
	p, gap := b.cfg.Padding, b.cfg.RowGap
	content := d.Output.Frame.W
	for _, r := range d.Rows {
		content = max(content, r.Frame.W)
	}
	d.Width = content + 2*p

	y := p
	place := func(r *Row) {
		dx := p + (content-r.Frame.W)/2
		for i := range r.Elements {
			r.Elements[i].X += dx
			r.Elements[i].Y += y
		}
		r.Frame.X, r.Frame.Y = dx, y
		y += r.Frame.H + gap
	}
	for _, r := range d.Rows {
		place(r)
	}
	d.Height = y - gap + p
	y = d.Height + gap/2
	place(d.Output)
	d.ExpandDelta = d.Output.Frame.H + gap
}
