package term

import (
	"slices"
	"strings"
)

// Term is a node of a decoded tree stimulus.
//
// Offset is the character offset of the node's own code in the encoding it
// was decoded from, or -1 for terms built by hand. It is not part of the
// term's identity: [Term.Equal] ignores it. Folded lists the offsets of the
// crossref codes a [RewriteRule] absorbed into the node, outermost first.
type Term struct {
	Head     Symbol  `json:"head"`
	Children []*Term `json:"children,omitempty"`
	Offset   int     `json:"-"`
	Folded   []int   `json:"-"`
}

// New builds a term from a head and children. The offset is unset.
func New(head Symbol, children ...*Term) *Term {
	return &Term{Head: head, Children: children, Offset: -1}
}

// Leaf builds a childless term.
func Leaf(head Symbol) *Term { return New(head) }

// HeadOffset is the offset of the code whose head character t displays. For
// a folded node that is the innermost absorbed code.
func (t *Term) HeadOffset() int {
	if n := len(t.Folded); n > 0 {
		return t.Folded[n-1]
	}
	return t.Offset
}

// CodeOffsets returns the offsets of every code t stands for: its own and
// the folded ones.
func (t *Term) CodeOffsets() []int {
	return append([]int{t.Offset}, t.Folded...)
}

// IsLeaf reports whether t has no children.
func (t *Term) IsLeaf() bool { return len(t.Children) == 0 }

// Equal reports whether t and o have the same heads and shape.
func (t *Term) Equal(o *Term) bool {
	if t == nil || o == nil {
		return t == o
	}
	if t.Head != o.Head || len(t.Children) != len(o.Children) {
		return false
	}
	for i := range t.Children {
		if !t.Children[i].Equal(o.Children[i]) {
			return false
		}
	}
	return true
}

// Clone returns a deep copy of t, offsets included.
func (t *Term) Clone() *Term {
	if t == nil {
		return nil
	}
	c := &Term{Head: t.Head, Offset: t.Offset, Folded: slices.Clone(t.Folded)}
	if len(t.Children) > 0 {
		c.Children = make([]*Term, len(t.Children))
		for i, ch := range t.Children {
			c.Children[i] = ch.Clone()
		}
	}
	return c
}

// Size returns the number of nodes in t.
func (t *Term) Size() int {
	n := 0
	t.Walk(func(*Term, int) bool { n++; return true })
	return n
}

// Walk visits t in pre-order with each node's depth. Returning false from fn
// skips the node's children.
func (t *Term) Walk(fn func(n *Term, depth int) bool) {
	type frame struct {
		n     *Term
		depth int
	}
	stack := []frame{{t, 0}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !fn(f.n, f.depth) {
			continue
		}
		for i := len(f.n.Children) - 1; i >= 0; i-- {
			stack = append(stack, frame{f.n.Children[i], f.depth + 1})
		}
	}
}

// PreOrder returns the nodes of t in pre-order.
func (t *Term) PreOrder() []*Term {
	var out []*Term
	t.Walk(func(n *Term, _ int) bool {
		out = append(out, n)
		return true
	})
	return out
}

// BreadthFirst returns the nodes of t level by level, left to right.
func (t *Term) BreadthFirst() []*Term {
	out := []*Term{t}
	for i := 0; i < len(out); i++ {
		out = append(out, out[i].Children...)
	}
	return out
}

// String renders t as A(B,C).
func (t *Term) String() string {
	var b strings.Builder
	t.write(&b)
	return b.String()
}

func (t *Term) write(b *strings.Builder) {
	if t == nil {
		b.WriteString("<nil>")
		return
	}
	b.WriteByte(t.Head.Head())
	if len(t.Children) == 0 {
		return
	}
	b.WriteByte('(')
	for i, c := range t.Children {
		if i > 0 {
			b.WriteByte(',')
		}
		c.write(b)
	}
	b.WriteByte(')')
}
