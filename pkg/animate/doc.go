// Package animate plays the explanation of a forced-choice answer.
//
// An animation is planned once ([Plan]) into a [Script] of stages, one per
// [Phase], and then played by an [Animator] against a [Host]: the thing
// that owns the drawing surface. Hosts only need to append shapes, run
// attribute transitions and report when each transition has finished.
//
// The phases always run in this order:
//
//	Idle → Expanding → Highlighting → Settling → Transforming → Collapsing → Idle
//
// Expanding grows the canvas to reveal the output row. Highlighting
// recolors challenge edges that the rule ignores. Settling pauses.
// Transforming moves every output unit from its source in the challenge
// (or fades it in from a neutral point if it is new), one correspondence
// group at a time with a stagger. Collapsing holds, fades the output row
// away and shrinks the canvas back.
//
// A [Recorder] is a Host with a virtual clock. It plays a script
// instantly and keeps a timeline that the SVG sink turns into SMIL.
package animate
