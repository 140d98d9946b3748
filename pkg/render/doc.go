// Package render turns placed diagrams into files.
//
// # Overview
//
// The subpackages do the drawing:
//
//   - [sink]: static and animated (SMIL) SVG of a diagram
//   - [nodelink]: Graphviz node-link diagrams of decoded terms
//   - [styles]: the shared color themes
//
// This package holds the format conversion both of them use.
//
// # Format Conversion
//
// [ToPDF] and [ToPNG] convert any SVG with the external rsvg-convert tool
// (from librsvg). rsvg-convert ignores animation, so for a frame from the
// middle of an animated SVG use [ChromeRasterizer], which loads the SVG in
// headless Chrome, seeks the animation clock and takes a screenshot.
//
//	svg := sink.RenderSVG(d, sink.WithTheme(styles.Simple))
//	pdf, err := render.ToPDF(ctx, svg)
//	png, err := render.ToPNG(ctx, svg, 2.0)  // 2x scale
//
//	anim := sink.RenderAnimatedSVG(d, rec)
//	frame, err := render.ChromeRasterizer{}.Frame(ctx, anim, 4*time.Second)
//
// [sink]: github.com/matzehuels/ruleviz/pkg/render/sink
// [nodelink]: github.com/matzehuels/ruleviz/pkg/render/nodelink
// [styles]: github.com/matzehuels/ruleviz/pkg/render/styles
package render
