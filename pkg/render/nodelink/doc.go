// Package nodelink renders decoded tree stimuli as node-link diagrams.
//
// # Overview
//
// This package draws a [term.Term] with Graphviz: one circle per node,
// labelled with its head, and one line per parent-child edge. It is a
// reference view next to the relaxed layout of the diagram package, handy
// when checking what a tree encoding decodes to.
//
// # Usage
//
// Convert a term to DOT format, then render to SVG:
//
//	root, err := term.Decode("A2B0C0")
//	dot := nodelink.ToDOT(root, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// With an alignment analysis, nodes take their group colors and edges
// between groups are dashed:
//
//	dot := nodelink.ToDOT(an.InputTree, nodelink.Options{
//	    Members: an.InputMembers,
//	    Links:   an.InputLinks,
//	})
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering. PDF and PNG conversion requires librsvg (rsvg-convert).
package nodelink
