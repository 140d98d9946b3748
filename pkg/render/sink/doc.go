// Package sink writes diagrams and their animations as SVG and JSON.
//
// The SVG writer works on an [animate.Recording]: the shapes a host was
// given and, for animated output, every attribute change with its timing.
// A still diagram is a recording with no motion ([animate.Still]); an
// animation is the recording of a played script ([animate.Record]).
// Animated documents use SMIL (<animate> and <set>), so they play in any
// browser without script.
//
//	rec, err := animate.Record(ctx, d, styles.Simple, script)
//	svg := sink.RenderSVG(rec, sink.WithAnimation(), sink.WithTitle("swap"))
//
// [RenderJSON] writes the placed diagram together with its script for
// hosts that animate in the browser.
package sink
