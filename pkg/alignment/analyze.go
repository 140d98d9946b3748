package alignment

import (
	"strings"

	"github.com/matzehuels/ruleviz/pkg/term"
)

// FlattenedOutput concatenates the group strings in output order. The
// result has exactly the length covered by the output intervals.
func FlattenedOutput(a Alignment, kind Kind) (string, error) {
	if _, err := Validate(a, kind); err != nil {
		return "", err
	}
	occ, _ := outputOccurrences(a)
	var b strings.Builder
	for _, o := range occ {
		b.WriteString(a[o.group].String)
	}
	return b.String(), nil
}

// Member is the group assignment of one node or position.
type Member struct {
	Unit    int  `json:"unit"`
	Group   int  `json:"group"`
	Context bool `json:"context"`
	Order   int  `json:"order"`
}

// Aligned reports whether the unit belongs to any group.
func (m Member) Aligned() bool { return m.Group >= 0 }

// GroupMembership assigns each span to the group whose side intervals
// fully contain it. On the output side every span must be covered by
// exactly one group. On the input side a span may be uncovered (deleted
// material, Group -1) or covered several times (copied material); the first
// group in document order wins.
func GroupMembership(a Alignment, side Side, spans []Interval) ([]Member, error) {
	orders := a.Orders()
	out := make([]Member, len(spans))
	for ui, sp := range spans {
		m := Member{Unit: ui, Group: -1, Order: -1}
		for gi, g := range a {
			for _, iv := range g.Intervals(side) {
				if !iv.Contains(sp) {
					continue
				}
				if m.Group >= 0 && m.Group != gi && side == SideOutput {
					return nil, invalid("output unit %d at %s is covered by groups %d and %d", ui, sp, m.Group, gi)
				}
				if m.Group < 0 {
					m.Group, m.Context, m.Order = gi, g.IsContext(), orders[gi]
				}
			}
		}
		if m.Group < 0 && side == SideOutput {
			return nil, invalid("output unit %d at %s is not covered by any group", ui, sp)
		}
		out[ui] = m
	}
	return out, nil
}

// TreeSpans returns the code span of every node of root in pre-order.
// Nodes must carry offsets from decoding. A folded crossref node spans the
// code of the head it displays.
func TreeSpans(root *term.Term) []Interval {
	nodes := root.PreOrder()
	spans := make([]Interval, len(nodes))
	for i, n := range nodes {
		off := n.HeadOffset()
		spans[i] = Interval{Start: off, End: off + term.CodeWidth}
	}
	return spans
}

// StringSpans returns one single-character span per position.
func StringSpans(n int) []Interval {
	spans := make([]Interval, n)
	for i := range spans {
		spans[i] = Interval{Start: i, End: i + 1}
	}
	return spans
}

// TreeMembership is [GroupMembership] over the pre-order nodes of root.
func TreeMembership(a Alignment, side Side, root *term.Term) ([]Member, error) {
	return GroupMembership(a, side, TreeSpans(root))
}

// StringMembership is [GroupMembership] over the positions of s.
func StringMembership(a Alignment, side Side, s string) ([]Member, error) {
	return GroupMembership(a, side, StringSpans(len(s)))
}

// Spanner is a structural edge between two units, identified by pre-order
// node index for trees and position for strings.
type Spanner struct {
	Parent int  `json:"parent"`
	Child  int  `json:"child"`
	Linked bool `json:"linked"`
}

// Spanners walks root breadth-first and reports every parent-child edge.
// An edge is linked when both ends belong to the same group or both are
// context material.
func Spanners(a Alignment, side Side, root *term.Term) ([]Spanner, error) {
	members, err := TreeMembership(a, side, root)
	if err != nil {
		return nil, err
	}
	index := make(map[*term.Term]int)
	for i, n := range root.PreOrder() {
		index[n] = i
	}
	var out []Spanner
	for _, n := range root.BreadthFirst() {
		p := index[n]
		for _, c := range n.Children {
			ci := index[c]
			out = append(out, Spanner{Parent: p, Child: ci, Linked: linked(members[p], members[ci])})
		}
	}
	return out, nil
}

// SequenceSpanners reports the links between neighbouring positions of s.
func SequenceSpanners(a Alignment, side Side, s string) ([]Spanner, error) {
	members, err := StringMembership(a, side, s)
	if err != nil {
		return nil, err
	}
	var out []Spanner
	for i := 1; i < len(members); i++ {
		out = append(out, Spanner{Parent: i - 1, Child: i, Linked: linked(members[i-1], members[i])})
	}
	return out, nil
}

func linked(a, b Member) bool {
	if !a.Aligned() || !b.Aligned() {
		return false
	}
	return a.Group == b.Group || (a.Context && b.Context)
}
