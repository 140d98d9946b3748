package layout

import "math"

// applyFloat pulls every node toward the row of its generation.
func (l *TreeLayout) applyFloat() {
	k := l.Config.FloatStrength * l.Alpha
	for i := range l.Nodes {
		n := &l.Nodes[i]
		n.VY += (l.targetY(n) - n.Y) * k
	}
}

// applyCompact moves sibling subtrees apart or together until the closest
// pair of nodes at any shared depth is exactly one separation apart. For the
// j-th child the left contour is the union of all earlier siblings.
func (l *TreeLayout) applyCompact() {
	sep := l.Config.Separation()
	k := l.Config.CompactForce * l.Alpha / 2
	for i := range l.Nodes {
		n := &l.Nodes[i]
		if len(n.Children) < 2 {
			continue
		}
		for j := 1; j < len(n.Children); j++ {
			shift := (sep - l.siblingSeparation(n, j)) * k
			for _, c := range n.Children[:j] {
				l.pushSubtree(c, -shift)
			}
			for _, c := range n.Children[j:] {
				l.pushSubtree(c, shift)
			}
		}
	}
}

// applyCenter pulls each parent toward the mean of its children and the
// children subtrees toward the parent by the same amount.
func (l *TreeLayout) applyCenter() {
	k := l.Config.CenterForce * l.Alpha / 2
	for i := range l.Nodes {
		n := &l.Nodes[i]
		if len(n.Children) == 0 {
			continue
		}
		diff := l.childMean(n) - n.X
		n.VX += diff * k
		for _, c := range n.Children {
			l.pushSubtree(c, -diff*k)
		}
	}
}

func (l *TreeLayout) pushSubtree(root int, dvx float64) {
	sub := l.Nodes[root : root+l.Nodes[root].Size]
	for i := range sub {
		sub[i].VX += dvx
	}
}

func (l *TreeLayout) childMean(n *Node) float64 {
	sum := 0.0
	for _, c := range n.Children {
		sum += l.Nodes[c].X
	}
	return sum / float64(len(n.Children))
}

// contour holds the extreme x of a subtree per depth below its root.
type contour struct {
	min, max []float64
}

func (l *TreeLayout) contourOf(root int) contour {
	base := l.Nodes[root].Depth
	var c contour
	for _, n := range l.Nodes[root : root+l.Nodes[root].Size] {
		d := n.Depth - base
		for len(c.min) <= d {
			c.min = append(c.min, math.Inf(1))
			c.max = append(c.max, math.Inf(-1))
		}
		c.min[d] = math.Min(c.min[d], n.X)
		c.max[d] = math.Max(c.max[d], n.X)
	}
	return c
}

// siblingSeparation returns the smallest horizontal gap between the j-th
// child's subtree and the subtrees of all children left of it, over the
// depths they share.
func (l *TreeLayout) siblingSeparation(n *Node, j int) float64 {
	right := l.contourOf(n.Children[j])
	best := math.Inf(1)
	for _, c := range n.Children[:j] {
		left := l.contourOf(c)
		depth := min(len(left.max), len(right.min))
		for d := range depth {
			best = math.Min(best, right.min[d]-left.max[d])
		}
	}
	return best
}
