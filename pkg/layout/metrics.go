package layout

import (
	"math"

	"github.com/matzehuels/ruleviz/pkg/term"
)

// LeafCount returns the number of leaves under t.
func LeafCount(t *term.Term) int {
	if t == nil {
		return 0
	}
	n := 0
	t.Walk(func(x *term.Term, _ int) bool {
		if x.IsLeaf() {
			n++
		}
		return true
	})
	return n
}

// Height returns the number of edges on the longest root-to-leaf path.
// A single node has height 0.
func Height(t *term.Term) int {
	if t == nil {
		return 0
	}
	h := 0
	t.Walk(func(_ *term.Term, depth int) bool {
		h = max(h, depth)
		return true
	})
	return h
}

// Bounds is an axis-aligned box.
type Bounds struct {
	MinX, MinY, MaxX, MaxY float64
}

// Width returns the horizontal extent.
func (b Bounds) Width() float64 { return b.MaxX - b.MinX }

// Height returns the vertical extent.
func (b Bounds) Height() float64 { return b.MaxY - b.MinY }

// Bounds returns the box covering every node circle.
func (l *TreeLayout) Bounds() Bounds {
	r := l.Config.Radius
	b := Bounds{MinX: math.Inf(1), MinY: math.Inf(1), MaxX: math.Inf(-1), MaxY: math.Inf(-1)}
	for _, n := range l.Nodes {
		b.MinX = math.Min(b.MinX, n.X-r)
		b.MaxX = math.Max(b.MaxX, n.X+r)
		b.MinY = math.Min(b.MinY, n.Y-r)
		b.MaxY = math.Max(b.MaxY, n.Y+r)
	}
	return b
}

// Scale returns the factor (at most 1) that fits the layout into its box.
func (l *TreeLayout) Scale() float64 {
	b := l.Bounds()
	s := 1.0
	if w := l.Config.BoxWidth; w > 0 && b.Width() > w {
		s = math.Min(s, w/b.Width())
	}
	if h := l.Config.BoxHeight; h > 0 && b.Height() > h {
		s = math.Min(s, h/b.Height())
	}
	return s
}

// MinSeparation returns the smallest horizontal distance between any two
// sibling subtrees of node i over the depths they share, or +Inf when the
// node has fewer than two children.
func (l *TreeLayout) MinSeparation(i int) float64 {
	n := &l.Nodes[i]
	best := math.Inf(1)
	for j := 1; j < len(n.Children); j++ {
		best = math.Min(best, l.siblingSeparation(n, j))
	}
	return best
}
