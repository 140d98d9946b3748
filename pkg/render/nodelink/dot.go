package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/ruleviz/pkg/alignment"
	"github.com/matzehuels/ruleviz/pkg/render"
	"github.com/matzehuels/ruleviz/pkg/render/styles"
	"github.com/matzehuels/ruleviz/pkg/term"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed adds each node's code and offset to its label.
	// When false, only the head is shown.
	Detailed bool
	// Members colors nodes by alignment group, indexed by pre-order node.
	Members []alignment.Member
	// Links dashes edges whose ends belong to different groups.
	Links []alignment.Spanner
	// Theme supplies the colors. The zero value uses [styles.Simple].
	Theme styles.Theme
}

// ToDOT converts a term to Graphviz DOT format for node-link visualization.
// The resulting DOT string can be rendered using [RenderSVG], [RenderPDF], or [RenderPNG].
//
// Nodes are named by pre-order index, so the output is stable for equal
// terms.
func ToDOT(root *term.Term, opts Options) string {
	th := opts.Theme
	if th.Name == "" {
		th = styles.Simple
	}

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	fmt.Fprintf(&buf, "  node [shape=circle, style=filled, fillcolor=%q, color=%q, fontname=\"monospace\", fontsize=18];\n",
		th.Node, th.NodeStroke)
	fmt.Fprintf(&buf, "  edge [color=%q, arrowhead=none];\n", th.Edge)
	buf.WriteString("  ranksep=0.4;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	nodes := root.PreOrder()
	index := make(map[*term.Term]int, len(nodes))
	for i, n := range nodes {
		index[n] = i
		attrs := []string{fmt.Sprintf("label=%q", fmtLabel(n, opts.Detailed))}
		if i < len(opts.Members) && opts.Members[i].Aligned() {
			m := opts.Members[i]
			attrs = append(attrs, fmt.Sprintf("fillcolor=%q", th.GroupColor(m.Order, m.Context)))
		}
		fmt.Fprintf(&buf, "  n%d [%s];\n", i, strings.Join(attrs, ", "))
	}

	unlinked := make(map[[2]int]bool)
	for _, s := range opts.Links {
		if !s.Linked {
			unlinked[[2]int{s.Parent, s.Child}] = true
		}
	}
	buf.WriteString("\n")
	for _, n := range nodes {
		p := index[n]
		for _, c := range n.Children {
			ci := index[c]
			if unlinked[[2]int{p, ci}] {
				fmt.Fprintf(&buf, "  n%d -> n%d [style=dashed];\n", p, ci)
			} else {
				fmt.Fprintf(&buf, "  n%d -> n%d;\n", p, ci)
			}
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(n *term.Term, detailed bool) string {
	label := string(n.Head.Head())
	if !detailed {
		return label
	}
	if n.Offset >= 0 {
		return fmt.Sprintf("%s\n%s @%d", label, n.Head, n.HeadOffset())
	}
	return label + "\n" + string(n.Head)
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
// Returns the SVG bytes ready for display or further conversion with [render.ToPDF] or [render.ToPNG].
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}

// RenderPDF renders a DOT graph as PDF via SVG conversion.
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPDF(ctx context.Context, dot string) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPDF(ctx, svg)
}

// RenderPNG renders a DOT graph as PNG via SVG conversion.
// A scale of 2.0 produces a 2x resolution image suitable for high-DPI displays.
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPNG(ctx context.Context, dot string, scale float64) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPNG(ctx, svg, scale)
}
