package layout

import (
	"math"

	"github.com/matzehuels/ruleviz/pkg/errors"
	"github.com/matzehuels/ruleviz/pkg/term"
)

// Default solver parameters.
const (
	DefaultRadius         = 18.0
	DefaultGap            = 8.0
	DefaultAlphaDecay     = 0.0228
	DefaultAlphaTarget    = 0.2
	DefaultVelocityDecay  = 0.6
	DefaultFloatStrength  = 0.5
	DefaultCompactForce   = 1.0
	DefaultCenterForce    = 1.0
	DefaultTolerance      = 1e-3
	DefaultMaxIterations  = 3000
	defaultBoxWidthFactor = 4.0
)

// Config controls the tree solver. Zero fields take the defaults above;
// [Config.WithDefaults] shows the resolved values. Gap is a pointer so that
// an explicit 0 (touching nodes) differs from unset.
type Config struct {
	BoxWidth  float64  `json:"box_width" toml:"box_width"`
	BoxHeight float64  `json:"box_height" toml:"box_height"`
	Radius    float64  `json:"radius" toml:"radius"`
	Gap       *float64 `json:"gap,omitempty" toml:"gap"`

	// Anchor is the root position. Defaults to the top center of the box.
	Anchor *Point `json:"anchor,omitempty" toml:"-"`
	// LevelHeight is the vertical distance between generations (2*Radius).
	LevelHeight float64 `json:"level_height" toml:"level_height"`

	AlphaDecay    float64 `json:"alpha_decay" toml:"alpha_decay"`
	AlphaTarget   float64 `json:"alpha_target" toml:"alpha_target"`
	VelocityDecay float64 `json:"velocity_decay" toml:"velocity_decay"`
	FloatStrength float64 `json:"float_strength" toml:"float_strength"`
	CompactForce  float64 `json:"compact_strength" toml:"compact_strength"`
	CenterForce   float64 `json:"center_strength" toml:"center_strength"`
	Tolerance     float64 `json:"tolerance" toml:"tolerance"`
	MaxIterations int     `json:"max_iterations" toml:"max_iterations"`
}

// WithDefaults returns a copy of c with zero fields filled in.
func (c Config) WithDefaults() Config {
	setDefault(&c.Radius, DefaultRadius)
	if c.Gap == nil {
		c.Gap = Float64(DefaultGap)
	}
	setDefault(&c.LevelHeight, 2*c.Radius)
	setDefault(&c.BoxWidth, defaultBoxWidthFactor*2*c.Radius)
	setDefault(&c.AlphaDecay, DefaultAlphaDecay)
	setDefault(&c.AlphaTarget, DefaultAlphaTarget)
	setDefault(&c.VelocityDecay, DefaultVelocityDecay)
	setDefault(&c.FloatStrength, DefaultFloatStrength)
	setDefault(&c.CompactForce, DefaultCompactForce)
	setDefault(&c.CenterForce, DefaultCenterForce)
	setDefault(&c.Tolerance, DefaultTolerance)
	if c.MaxIterations <= 0 {
		c.MaxIterations = DefaultMaxIterations
	}
	if c.Anchor == nil {
		c.Anchor = &Point{X: c.BoxWidth / 2, Y: c.Radius}
	}
	return c
}

// GapValue returns the configured gap, or DefaultGap when unset.
func (c Config) GapValue() float64 {
	if c.Gap == nil {
		return DefaultGap
	}
	return *c.Gap
}

// Separation is the minimum center distance between horizontally adjacent nodes.
func (c Config) Separation() float64 { return 2*c.Radius + c.GapValue() }

// Float64 returns a pointer to v, for optional fields such as Gap.
func Float64(v float64) *float64 { return &v }

func setDefault(f *float64, v float64) {
	if *f == 0 {
		*f = v
	}
}

// Node is one arena entry. Nodes are stored in pre-order, so the subtree of
// node i is Nodes[i : i+Size].
type Node struct {
	Term     *term.Term `json:"-"`
	Label    string     `json:"label"`
	Parent   int        `json:"parent"`
	Children []int      `json:"children,omitempty"`
	Depth    int        `json:"depth"`
	Size     int        `json:"size"`
	X        float64    `json:"x"`
	Y        float64    `json:"y"`
	VX       float64    `json:"-"`
	VY       float64    `json:"-"`
}

// Pos returns the node position.
func (n *Node) Pos() Point { return Point{X: n.X, Y: n.Y} }

// TreeLayout is the solver state for one tree.
type TreeLayout struct {
	Nodes      []Node  `json:"nodes"`
	Config     Config  `json:"config"`
	Alpha      float64 `json:"alpha"`
	Iterations int     `json:"iterations"`
	Residual   float64 `json:"residual"`
	Converged  bool    `json:"converged"`

	index map[*term.Term]int
}

// Tree lays out root. A nonconvergence error still comes with a usable layout.
func Tree(root *term.Term, cfg Config) (*TreeLayout, error) {
	if root == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "layout of nil tree")
	}
	l := newArena(root, cfg.WithDefaults())
	l.seed()
	return l, l.relax()
}

// Relax re-runs the solver from the current positions with fresh alpha.
// On a converged layout this is a no-op within Tolerance.
func (l *TreeLayout) Relax() error {
	for i := range l.Nodes {
		l.Nodes[i].VX, l.Nodes[i].VY = 0, 0
	}
	return l.relax()
}

// Index returns the arena index of t, or -1.
func (l *TreeLayout) Index(t *term.Term) int {
	if i, ok := l.index[t]; ok {
		return i
	}
	return -1
}

// Root returns the root node.
func (l *TreeLayout) Root() *Node { return &l.Nodes[0] }

// Points returns node positions in pre-order.
func (l *TreeLayout) Points() []Point {
	pts := make([]Point, len(l.Nodes))
	for i := range l.Nodes {
		pts[i] = l.Nodes[i].Pos()
	}
	return pts
}

func newArena(root *term.Term, cfg Config) *TreeLayout {
	l := &TreeLayout{Config: cfg, index: make(map[*term.Term]int)}
	var build func(t *term.Term, parent, depth int) int
	build = func(t *term.Term, parent, depth int) int {
		i := len(l.Nodes)
		l.Nodes = append(l.Nodes, Node{
			Term:   t,
			Label:  string(t.Head.Head()),
			Parent: parent,
			Depth:  depth,
		})
		l.index[t] = i
		children := make([]int, 0, len(t.Children))
		for _, c := range t.Children {
			children = append(children, build(c, i, depth+1))
		}
		l.Nodes[i].Children = children
		l.Nodes[i].Size = len(l.Nodes) - i
		return i
	}
	build(root, -1, 0)
	return l
}

// seed places leaves at the tightest even spacing in pre-order and centers
// parents over their children, then moves the tree under the anchor.
func (l *TreeLayout) seed() {
	sep := l.Config.Separation()
	leaves := 0
	for i := range l.Nodes {
		if len(l.Nodes[i].Children) == 0 {
			leaves++
		}
	}
	k := 0
	for i := range l.Nodes {
		n := &l.Nodes[i]
		n.Y = l.targetY(n)
		if len(n.Children) == 0 {
			n.X = (float64(k) - float64(leaves-1)/2) * sep
			k++
		}
	}
	for i := len(l.Nodes) - 1; i >= 0; i-- {
		n := &l.Nodes[i]
		if len(n.Children) == 0 {
			continue
		}
		sum := 0.0
		for _, c := range n.Children {
			sum += l.Nodes[c].X
		}
		n.X = sum / float64(len(n.Children))
	}
	dx := l.Config.Anchor.X - l.Nodes[0].X
	for i := range l.Nodes {
		l.Nodes[i].X += dx
	}
	l.pinRoot()
}

func (l *TreeLayout) targetY(n *Node) float64 {
	return l.Config.Anchor.Y + float64(n.Depth)*l.Config.LevelHeight
}

func (l *TreeLayout) relax() error {
	cfg := l.Config
	l.Alpha = 1
	l.Converged = false
	best := math.Inf(1)
	var snapshot []Point
	for it := 0; it < cfg.MaxIterations; it++ {
		l.Residual = l.residual()
		if l.Residual < cfg.Tolerance {
			l.Converged = true
			return nil
		}
		if l.Residual < best {
			best, snapshot = l.Residual, l.Points()
		}
		l.Alpha += (cfg.AlphaTarget - l.Alpha) * cfg.AlphaDecay
		l.tick()
		l.Iterations++
	}
	l.Residual = l.residual()
	if l.Residual < cfg.Tolerance {
		l.Converged = true
		return nil
	}
	if l.Residual > best {
		l.restore(snapshot)
		l.Residual = best
	}
	return errors.New(errors.ErrCodeLayoutNonconvergence,
		"tree layout residual %.4f above tolerance %.4f after %d iterations", l.Residual, cfg.Tolerance, l.Iterations)
}

// restore moves every node back to pts and stops it.
func (l *TreeLayout) restore(pts []Point) {
	for i, p := range pts {
		n := &l.Nodes[i]
		n.X, n.Y, n.VX, n.VY = p.X, p.Y, 0, 0
	}
}

func (l *TreeLayout) tick() {
	l.applyFloat()
	l.applyCompact()
	l.applyCenter()
	decay := 1 - l.Config.VelocityDecay
	for i := range l.Nodes {
		n := &l.Nodes[i]
		n.X += n.VX
		n.Y += n.VY
		n.VX *= decay
		n.VY *= decay
	}
	l.pinRoot()
}

func (l *TreeLayout) pinRoot() {
	r := &l.Nodes[0]
	r.X, r.Y = l.Config.Anchor.X, l.Config.Anchor.Y
	r.VX, r.VY = 0, 0
}

// residual is the largest remaining error of any force.
func (l *TreeLayout) residual() float64 {
	worst := 0.0
	sep := l.Config.Separation()
	for i := range l.Nodes {
		n := &l.Nodes[i]
		worst = math.Max(worst, math.Abs(l.targetY(n)-n.Y))
		if len(n.Children) == 0 {
			continue
		}
		worst = math.Max(worst, math.Abs(l.childMean(n)-n.X))
		for j := 1; j < len(n.Children); j++ {
			worst = math.Max(worst, math.Abs(sep-l.siblingSeparation(n, j)))
		}
	}
	return worst
}
