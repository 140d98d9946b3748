package alignment

import (
	"cmp"
	"slices"
)

// Status says whether an output unit was copied or introduced.
type Status int

const (
	StatusOld Status = iota
	StatusNew
)

func (s Status) String() string {
	if s == StatusNew {
		return "new"
	}
	return "old"
}

// MarshalText implements encoding.TextMarshaler.
func (s Status) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Element is the provenance of one output unit. Dest and Source are
// character offsets; Source is -1 for new material.
type Element struct {
	Dest    int    `json:"dest"`
	Source  int    `json:"source"`
	Status  Status `json:"status"`
	Group   int    `json:"group"`
	Order   int    `json:"order"`
	Context bool   `json:"context"`
}

// Provenance reports where every output unit came from, sorted by
// destination. Copied units take their source from the group's first input
// occurrence. Output intervals need not tile the output here, but they must
// be well formed and must not overlap.
func Provenance(a Alignment, kind Kind) ([]Element, error) {
	if err := checkIntervals(a, kind); err != nil {
		return nil, err
	}
	if _, err := outputOccurrences(a); err != nil {
		return nil, err
	}
	unit := kind.Unit()
	orders := a.Orders()
	var out []Element
	for gi, g := range a {
		for _, iv := range g.Output {
			for k := 0; k*unit < iv.Len(); k++ {
				e := Element{
					Dest:    iv.Start + k*unit,
					Source:  -1,
					Status:  StatusNew,
					Group:   gi,
					Order:   orders[gi],
					Context: g.IsContext(),
				}
				if !g.IsInsertion() {
					e.Source = g.Input[0].Start + k*unit
					e.Status = StatusOld
				}
				out = append(out, e)
			}
		}
	}
	slices.SortFunc(out, func(x, y Element) int { return cmp.Compare(x.Dest, y.Dest) })
	return out, nil
}

// ByOrder buckets elements by reveal order. Index i holds the elements
// revealed at stagger step i.
func ByOrder(elems []Element) [][]Element {
	var steps [][]Element
	for _, e := range elems {
		for len(steps) <= e.Order {
			steps = append(steps, nil)
		}
		steps[e.Order] = append(steps[e.Order], e)
	}
	return steps
}
