package animate

import (
	"time"

	"github.com/matzehuels/ruleviz/pkg/errors"
)

// Timings controls the pace of an animation.
type Timings struct {
	ExpandDuration    time.Duration `json:"expand_duration" toml:"expand_duration"`
	HighlightDuration time.Duration `json:"highlight_duration" toml:"highlight_duration"`
	// Soak is the pause between highlighting and transforming.
	Soak time.Duration `json:"soak" toml:"soak"`
	// Stagger delays each correspondence group after the previous one.
	Stagger      time.Duration `json:"stagger" toml:"stagger"`
	MoveDuration time.Duration `json:"move_duration" toml:"move_duration"`
	// Hold keeps the finished output on screen before collapsing.
	Hold             time.Duration `json:"hold" toml:"hold"`
	CollapseDuration time.Duration `json:"collapse_duration" toml:"collapse_duration"`

	ExpandEasing    Easing `json:"expand_easing" toml:"expand_easing"`
	HighlightEasing Easing `json:"highlight_easing" toml:"highlight_easing"`
	MoveEasing      Easing `json:"move_easing" toml:"move_easing"`
}

// DefaultTimings returns the stock pacing.
func DefaultTimings() Timings {
	return Timings{
		ExpandDuration:    600 * time.Millisecond,
		HighlightDuration: 500 * time.Millisecond,
		Soak:              time.Second,
		Stagger:           700 * time.Millisecond,
		MoveDuration:      900 * time.Millisecond,
		Hold:              2500 * time.Millisecond,
		CollapseDuration:  600 * time.Millisecond,
		ExpandEasing:      EaseCubicOut,
		HighlightEasing:   EaseQuadOut,
		MoveEasing:        EaseCubicInOut,
	}
}

// Scaled returns t with every duration multiplied by f.
func (t Timings) Scaled(f float64) Timings {
	scale := func(d time.Duration) time.Duration { return time.Duration(float64(d) * f) }
	t.ExpandDuration = scale(t.ExpandDuration)
	t.HighlightDuration = scale(t.HighlightDuration)
	t.Soak = scale(t.Soak)
	t.Stagger = scale(t.Stagger)
	t.MoveDuration = scale(t.MoveDuration)
	t.Hold = scale(t.Hold)
	t.CollapseDuration = scale(t.CollapseDuration)
	return t
}

// Validate rejects negative durations.
func (t Timings) Validate() error {
	for name, d := range map[string]time.Duration{
		"expand_duration":    t.ExpandDuration,
		"highlight_duration": t.HighlightDuration,
		"soak":               t.Soak,
		"stagger":            t.Stagger,
		"move_duration":      t.MoveDuration,
		"hold":               t.Hold,
		"collapse_duration":  t.CollapseDuration,
	} {
		if d < 0 {
			return errors.New(errors.ErrCodeInvalidInput, "%s must not be negative, got %s", name, d)
		}
	}
	return nil
}
