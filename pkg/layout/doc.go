// Package layout computes 2D positions for stimulus diagrams.
//
// String stimuli are laid out by [Sequence] as an evenly spaced row of cells.
// Tree stimuli are laid out by [Tree], an iterative relaxation over an arena
// of nodes indexed in pre-order. Four forces act on every tick:
//
//   - float pulls each node toward the row of its depth below the root
//   - compact pushes sibling subtrees apart when their contours come closer
//     than two radii plus the gap, and pulls them together when there is slack
//   - center pulls a parent over the mean of its children and the children
//     back toward the parent
//   - fix root pins the root to the anchor after every step
//
// Forces are scaled by alpha, which decays from 1 toward [Config.AlphaTarget]
// and never reaches zero, so the solver keeps moving until it settles. It
// stops as soon as the largest residual of all forces drops below
// [Config.Tolerance]. If [Config.MaxIterations] runs out first, [Tree] returns
// the lowest-residual positions it saw together with a LAYOUT_NONCONVERGENCE
// error; callers may log it and keep going.
//
// Because the subtree of a node occupies a contiguous range of the arena,
// moving a subtree or measuring its contour is a single slice walk.
package layout
