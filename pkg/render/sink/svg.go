package sink

import (
	"bytes"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"time"

	"github.com/matzehuels/ruleviz/pkg/animate"
	"github.com/matzehuels/ruleviz/pkg/render/styles"
)

const interactionCSS = `
    .node, .cell { transition: stroke-width 0.2s ease; }
    .node:hover, .cell:hover { stroke-width: 3; }
    text { pointer-events: none; user-select: none; }`

type SVGOption func(*svgRenderer)

type svgRenderer struct {
	animated bool
	title    string
	style    bool
}

// WithAnimation emits the recorded motion as SMIL. Without it only the
// shapes present at time zero are drawn, in their initial state.
func WithAnimation() SVGOption { return func(r *svgRenderer) { r.animated = true } }

// WithTitle sets the document title.
func WithTitle(t string) SVGOption { return func(r *svgRenderer) { r.title = t } }

// WithHover adds hover highlighting for nodes and cells.
func WithHover() SVGOption { return func(r *svgRenderer) { r.style = true } }

// RenderSVG writes rec as a standalone SVG document. Track 0 must be the
// canvas.
func RenderSVG(rec *animate.Recording, opts ...SVGOption) []byte {
	r := svgRenderer{}
	for _, opt := range opts {
		opt(&r)
	}

	w, h := canvasSize(rec, r.animated)
	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		w, h, w, h)
	if r.title != "" {
		fmt.Fprintf(&buf, "  <title>%s</title>\n", styles.EscapeXML(r.title))
	}
	if r.style {
		fmt.Fprintf(&buf, "  <style>%s\n  </style>\n", interactionCSS)
	}
	for _, tr := range rec.Tracks {
		if !r.animated && tr.Born > 0 {
			continue
		}
		renderTrack(&buf, tr, r.animated)
	}
	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

// canvasSize is the largest extent the canvas takes during the recording.
func canvasSize(rec *animate.Recording, animated bool) (float64, float64) {
	if len(rec.Tracks) == 0 {
		return 0, 0
	}
	c := rec.Tracks[0]
	w, h := num(c.Shape.Attrs["width"]), num(c.Shape.Attrs["height"])
	if animated {
		for _, tw := range c.Tweens {
			switch tw.Attr {
			case "width":
				w = max(w, num(tw.To))
			case "height":
				h = max(h, num(tw.To))
			}
		}
	}
	return w, h
}

func num(s string) float64 {
	v, _ := strconv.ParseFloat(s, 64)
	return v
}

func tag(k animate.ShapeKind) string {
	switch k {
	case animate.ShapeCanvas, animate.ShapeRect:
		return "rect"
	case animate.ShapeCircle:
		return "circle"
	case animate.ShapeLine:
		return "line"
	default:
		return "text"
	}
}

func renderTrack(buf *bytes.Buffer, tr *animate.Track, animated bool) {
	name := tag(tr.Shape.Kind)
	fmt.Fprintf(buf, `  <%s id="s%d"`, name, tr.ID)
	if tr.Shape.Class != "" {
		fmt.Fprintf(buf, ` class="%s"`, tr.Shape.Class)
	}
	for _, k := range slices.Sorted(maps.Keys(tr.Shape.Attrs)) {
		fmt.Fprintf(buf, ` %s="%s"`, k, styles.EscapeXML(tr.Shape.Attrs[k]))
	}
	if animated && tr.Born > 0 {
		buf.WriteString(` visibility="hidden"`)
	}

	var kids bytes.Buffer
	if animated {
		renderMotion(&kids, tr)
	}
	if kids.Len() == 0 && tr.Shape.Text == "" {
		buf.WriteString("/>\n")
		return
	}
	buf.WriteString(">")
	buf.WriteString(styles.EscapeXML(tr.Shape.Text))
	if kids.Len() > 0 {
		buf.WriteString("\n")
		buf.Write(kids.Bytes())
		buf.WriteString("  ")
	}
	fmt.Fprintf(buf, "</%s>\n", name)
}

func renderMotion(buf *bytes.Buffer, tr *animate.Track) {
	if tr.Born > 0 {
		fmt.Fprintf(buf, `    <set attributeName="visibility" to="visible" begin="%s" fill="freeze"/>`+"\n", clock(tr.Born))
	}
	for _, tw := range tr.Tweens {
		if tw.Duration <= 0 || tw.From == "" {
			fmt.Fprintf(buf, `    <set attributeName="%s" to="%s" begin="%s" fill="freeze"/>`+"\n",
				tw.Attr, styles.EscapeXML(tw.To), clock(tw.End()))
			continue
		}
		fmt.Fprintf(buf, `    <animate attributeName="%s" from="%s" to="%s" begin="%s" dur="%s" fill="freeze"`,
			tw.Attr, styles.EscapeXML(tw.From), styles.EscapeXML(tw.To), clock(tw.Begin), clock(tw.Duration))
		if tw.Easing != animate.EaseLinear {
			fmt.Fprintf(buf, ` calcMode="spline" keyTimes="0;1" keySplines="%s"`, tw.Easing.KeySplines())
		}
		buf.WriteString("/>\n")
	}
	if tr.Died >= 0 {
		fmt.Fprintf(buf, `    <set attributeName="visibility" to="hidden" begin="%s" fill="freeze"/>`+"\n", clock(tr.Died))
	}
}

// clock formats d as an SMIL clock value in seconds.
func clock(d time.Duration) string {
	return strconv.FormatFloat(d.Seconds(), 'f', -1, 64) + "s"
}
