package animate

import "fmt"

// Phase is the state of one animation.
type Phase int32

const (
	PhaseIdle Phase = iota
	PhaseExpanding
	PhaseHighlighting
	PhaseSettling
	PhaseTransforming
	PhaseCollapsing
)

var phaseNames = [...]string{"idle", "expanding", "highlighting", "settling", "transforming", "collapsing"}

func (p Phase) String() string {
	if p >= 0 && int(p) < len(phaseNames) {
		return phaseNames[p]
	}
	return fmt.Sprintf("phase(%d)", int32(p))
}

// Next returns the phase that follows p. Collapsing returns to Idle.
func (p Phase) Next() Phase {
	if p >= PhaseCollapsing || p < PhaseIdle {
		return PhaseIdle
	}
	return p + 1
}

// MarshalText implements encoding.TextMarshaler.
func (p Phase) MarshalText() ([]byte, error) { return []byte(p.String()), nil }
