package alignment

import (
	"cmp"
	"slices"
)

// occurrence is one output interval of one group.
type occurrence struct {
	Interval
	group int
}

// Validate checks that every interval is well formed for kind and that the
// output intervals tile [0, total) with no gaps or overlaps. It returns the
// total output length.
func Validate(a Alignment, kind Kind) (int, error) {
	if err := checkIntervals(a, kind); err != nil {
		return 0, err
	}
	occ, err := outputOccurrences(a)
	if err != nil {
		return 0, err
	}
	if len(occ) == 0 {
		return 0, invalid("alignment has no output intervals")
	}
	if occ[0].Start != 0 {
		return 0, invalid("output gap: nothing covers [0,%d)", occ[0].Start)
	}
	for i := 1; i < len(occ); i++ {
		if prev := occ[i-1]; occ[i].Start > prev.End {
			return 0, invalid("output gap: nothing covers [%d,%d)", prev.End, occ[i].Start)
		}
	}
	return occ[len(occ)-1].End, nil
}

// Check validates a and also verifies it against concrete encodings: the
// output intervals must tile output exactly, every interval must hold its
// group's string, and input intervals must lie inside input.
func Check(a Alignment, kind Kind, input, output string) error {
	total, err := Validate(a, kind)
	if err != nil {
		return err
	}
	if total != len(output) {
		return invalid("output intervals cover %d characters, output has %d", total, len(output))
	}
	for gi, g := range a {
		for _, iv := range g.Output {
			if got := output[iv.Start:iv.End]; got != g.String {
				return invalid("group %d: output %s holds %q, want %q", gi, iv, got, g.String)
			}
		}
		for _, iv := range g.Input {
			if iv.End > len(input) {
				return invalid("group %d: input %s beyond input length %d", gi, iv, len(input))
			}
			if got := input[iv.Start:iv.End]; got != g.String {
				return invalid("group %d: input %s holds %q, want %q", gi, iv, got, g.String)
			}
		}
	}
	return nil
}

// checkIntervals enforces per-interval well-formedness: non-negative,
// non-empty, unit aligned, and as long as the group's string.
func checkIntervals(a Alignment, kind Kind) error {
	unit := kind.Unit()
	for gi, g := range a {
		if len(g.String)%unit != 0 {
			return invalid("group %d: string %q is not a whole number of %s units", gi, g.String, kind)
		}
		if g.Context < 0 {
			return invalid("group %d: context tag must not be negative, got %d", gi, g.Context)
		}
		for _, side := range []Side{SideInput, SideOutput} {
			for _, iv := range g.Intervals(side) {
				switch {
				case iv.Start < 0:
					return invalid("group %d: negative %s interval %s", gi, side, iv)
				case iv.Start >= iv.End:
					return invalid("group %d: empty %s interval %s", gi, side, iv)
				case iv.Start%unit != 0 || iv.End%unit != 0:
					return invalid("group %d: %s interval %s not aligned to %s units", gi, side, iv, kind)
				case iv.Len() != len(g.String):
					return invalid("group %d: %s interval %s has length %d, string %q has %d",
						gi, side, iv, iv.Len(), g.String, len(g.String))
				}
			}
		}
	}
	return nil
}

// outputOccurrences returns all output intervals sorted by start and fails
// if any two overlap.
func outputOccurrences(a Alignment) ([]occurrence, error) {
	var occ []occurrence
	for gi, g := range a {
		for _, iv := range g.Output {
			occ = append(occ, occurrence{Interval: iv, group: gi})
		}
	}
	slices.SortStableFunc(occ, func(x, y occurrence) int { return cmp.Compare(x.Start, y.Start) })
	for i := 1; i < len(occ); i++ {
		if prev := occ[i-1]; occ[i].Start < prev.End {
			return nil, invalid("output intervals overlap: group %d %s and group %d %s",
				prev.group, prev.Interval, occ[i].group, occ[i].Interval)
		}
	}
	return occ, nil
}
