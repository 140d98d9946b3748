package term

import (
	"slices"
	"strings"
)

// RewriteRule folds crossref children into their combinator parent.
//
// For a node whose head is listed in Heads and which has at least one child,
// the node takes the head character of its first child and the first child
// is dropped. By default the new arity digit counts the remaining children,
// which keeps the term well formed and makes the rewrite idempotent through
// [Encode]. ZeroArity writes a literal "0" digit instead; such terms are for
// display only and do not survive re-encoding.
type RewriteRule struct {
	Heads     []Symbol
	ZeroArity bool
}

// DefaultRewrite flattens the ".2" and ".3" combinators.
var DefaultRewrite = &RewriteRule{Heads: []Symbol{".2", ".3"}}

// Applies reports whether the rule rewrites a node with head h.
func (r *RewriteRule) Applies(h Symbol) bool {
	return r != nil && slices.Contains(r.Heads, h)
}

func (r *RewriteRule) apply(t *Term) {
	if !r.Applies(t.Head) || len(t.Children) == 0 {
		return
	}
	first := t.Children[0]
	rest := t.Children[1:]
	arity := len(rest)
	if r.ZeroArity {
		arity = 0
	}
	t.Head = first.Head.WithArity(arity)
	if first.Offset >= 0 {
		t.Folded = append(append(t.Folded, first.Offset), first.Folded...)
	}
	if len(rest) == 0 {
		t.Children = nil
	} else {
		t.Children = rest
	}
}

// Codec decodes tree encodings, optionally applying a rewrite rule.
// The zero value decodes without rewriting.
type Codec struct {
	Rewrite *RewriteRule
}

// DefaultCodec applies [DefaultRewrite].
var DefaultCodec = Codec{Rewrite: DefaultRewrite}

// Decode parses a complete encoding with [DefaultCodec].
func Decode(enc string) (*Term, error) {
	return DefaultCodec.Decode(enc)
}

// Decode parses a complete encoding into its root term. Trailing data after
// the root term is an error.
func (c Codec) Decode(enc string) (*Term, error) {
	if enc == "" {
		return nil, malformed(0, "empty encoding")
	}
	if len(enc)%CodeWidth != 0 {
		return nil, malformed(len(enc)-1, "odd encoding length %d", len(enc))
	}
	cur := NewCursor(enc)
	t, err := c.decode(cur)
	if err != nil {
		return nil, err
	}
	if !cur.Done() {
		return nil, malformed(cur.Offset(), "trailing data %q after root term", enc[cur.Offset():])
	}
	return t, nil
}

// DecodeAt parses the single subterm starting at cur's position and leaves
// the cursor after it.
func (c Codec) DecodeAt(cur *Cursor) (*Term, error) {
	return c.decode(cur)
}

func (c Codec) decode(cur *Cursor) (*Term, error) {
	sym, off, err := cur.Next()
	if err != nil {
		return nil, err
	}
	t := &Term{Head: sym, Offset: off}
	if n := sym.Arity(); n > 0 {
		t.Children = make([]*Term, 0, n)
		for range n {
			child, err := c.decode(cur)
			if err != nil {
				return nil, err
			}
			t.Children = append(t.Children, child)
		}
	}
	c.Rewrite.apply(t)
	return t, nil
}

// Encode writes t back to prefix notation.
func Encode(t *Term) string {
	var b strings.Builder
	b.Grow(t.Size() * CodeWidth)
	t.Walk(func(n *Term, _ int) bool {
		b.WriteString(string(n.Head))
		return true
	})
	return b.String()
}

// Flatten returns a copy of t with r applied bottom-up, as a decode with r
// would have done.
func Flatten(t *Term, r *RewriteRule) *Term {
	c := t.Clone()
	var rec func(*Term)
	rec = func(n *Term) {
		for _, ch := range n.Children {
			rec(ch)
		}
		r.apply(n)
	}
	rec(c)
	return c
}
