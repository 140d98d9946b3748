package animate

import (
	"math"
	"strings"

	"github.com/matzehuels/ruleviz/pkg/errors"
)

// Easing is a timing curve.
type Easing int

const (
	EaseLinear Easing = iota
	EaseCubicInOut
	EaseCubicOut
	EaseQuadOut
)

var easingNames = [...]string{"linear", "cubic-in-out", "cubic-out", "quad-out"}

// Bezier control points approximating each curve, for SMIL keySplines.
var easingSplines = [...]string{"0 0 1 1", "0.65 0 0.35 1", "0.33 1 0.68 1", "0.5 1 0.89 1"}

func (e Easing) String() string {
	if e >= 0 && int(e) < len(easingNames) {
		return easingNames[e]
	}
	return "linear"
}

// ParseEasing parses an easing name.
func ParseEasing(s string) (Easing, error) {
	for i, n := range easingNames {
		if strings.EqualFold(s, n) {
			return Easing(i), nil
		}
	}
	return EaseLinear, errors.New(errors.ErrCodeInvalidInput, "unknown easing %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (e Easing) MarshalText() ([]byte, error) { return []byte(e.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (e *Easing) UnmarshalText(b []byte) error {
	v, err := ParseEasing(string(b))
	if err != nil {
		return err
	}
	*e = v
	return nil
}

// Ease maps linear progress t in [0,1] onto the curve.
func (e Easing) Ease(t float64) float64 {
	t = math.Max(0, math.Min(1, t))
	switch e {
	case EaseCubicInOut:
		if t < 0.5 {
			return 4 * t * t * t
		}
		return 1 - math.Pow(-2*t+2, 3)/2
	case EaseCubicOut:
		return 1 - math.Pow(1-t, 3)
	case EaseQuadOut:
		return 1 - (1-t)*(1-t)
	default:
		return t
	}
}

// KeySplines returns the SMIL keySplines value for the curve.
func (e Easing) KeySplines() string {
	if e >= 0 && int(e) < len(easingSplines) {
		return easingSplines[e]
	}
	return easingSplines[EaseLinear]
}
