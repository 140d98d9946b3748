package alignment

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/matzehuels/ruleviz/pkg/errors"
	"github.com/matzehuels/ruleviz/pkg/term"
)

// Kind selects the unit size of a stimulus.
type Kind int

const (
	// KindString stimuli have one-character units.
	KindString Kind = iota
	// KindTree stimuli have two-character node codes as units.
	KindTree
)

// Unit returns the number of characters per unit.
func (k Kind) Unit() int {
	if k == KindTree {
		return term.CodeWidth
	}
	return 1
}

func (k Kind) String() string {
	if k == KindTree {
		return "tree"
	}
	return "string"
}

// ParseKind parses "tree" or "string" (and the plural forms).
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "tree", "trees":
		return KindTree, nil
	case "string", "strings", "list", "lists":
		return KindString, nil
	}
	return KindString, errors.New(errors.ErrCodeInvalidInput, "unknown stimulus kind %q (must be tree or string)", s)
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(b []byte) error {
	v, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = v
	return nil
}

// Side selects the input or output intervals of a group.
type Side int

const (
	SideInput Side = iota
	SideOutput
)

func (s Side) String() string {
	if s == SideOutput {
		return "output"
	}
	return "input"
}

// Interval is a half-open character range [Start, End).
type Interval struct {
	Start, End int
}

// Len returns the interval length in characters.
func (iv Interval) Len() int { return iv.End - iv.Start }

// Contains reports whether o lies entirely inside iv.
func (iv Interval) Contains(o Interval) bool {
	return iv.Start <= o.Start && o.End <= iv.End
}

func (iv Interval) String() string { return fmt.Sprintf("[%d,%d)", iv.Start, iv.End) }

// MarshalJSON writes the interval as a [start, end] pair.
func (iv Interval) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]int{iv.Start, iv.End})
}

// UnmarshalJSON reads a [start, end] pair.
func (iv *Interval) UnmarshalJSON(b []byte) error {
	var pair []int
	if err := json.Unmarshal(b, &pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return errors.New(errors.ErrCodeInvalidAlignment, "interval must have 2 elements, got %d", len(pair))
	}
	iv.Start, iv.End = pair[0], pair[1]
	return nil
}

// Group is one correspondence between input and output material.
type Group struct {
	String  string     `json:"string"`
	Input   []Interval `json:"input"`
	Output  []Interval `json:"output"`
	Context int        `json:"context"`
}

// IsContext reports whether g is background material.
func (g Group) IsContext() bool { return g.Context == 1 }

// IsInsertion reports whether g has no input occurrence.
func (g Group) IsInsertion() bool { return len(g.Input) == 0 }

// Intervals returns the group's intervals on side s.
func (g Group) Intervals(s Side) []Interval {
	if s == SideOutput {
		return g.Output
	}
	return g.Input
}

// Alignment is an ordered list of groups.
type Alignment []Group

// Parse decodes an alignment from its JSON array form.
func Parse(data []byte) (Alignment, error) {
	var a Alignment
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidAlignment, err, "decode alignment")
	}
	return a, nil
}

// Orders maps group index to its reveal order: non-context groups are
// numbered from zero in document order and context groups get 0.
func (a Alignment) Orders() []int {
	orders := make([]int, len(a))
	next := 0
	for i, g := range a {
		if g.IsContext() {
			continue
		}
		orders[i] = next
		next++
	}
	return orders
}

// ChangedGroups returns the number of non-context groups.
func (a Alignment) ChangedGroups() int {
	n := 0
	for _, g := range a {
		if !g.IsContext() {
			n++
		}
	}
	return n
}

func invalid(format string, args ...any) error {
	return errors.New(errors.ErrCodeInvalidAlignment, format, args...)
}
