package animate

import (
	"github.com/matzehuels/ruleviz/pkg/alignment"
	"github.com/matzehuels/ruleviz/pkg/diagram"
	"github.com/matzehuels/ruleviz/pkg/render/styles"
)

// Edge stroke widths.
const (
	edgeWidth      = 1.5
	highlightWidth = 3.0
	linkedWidth    = 2.0
	unlinkedWidth  = 1.0
	dashPattern    = "4 3"
)

// Scene maps the static diagram to the shapes a host holds for it.
type Scene struct {
	Canvas ShapeID
	Frame  ShapeID
	Nodes  map[diagram.Role][]ShapeID
	Labels map[diagram.Role][]ShapeID
	Edges  map[diagram.Role][]ShapeID
}

// geometry draws elements of one diagram.
type geometry struct {
	kind   alignment.Kind
	radius float64
	cell   float64
	theme  styles.Theme
}

func newGeometry(d *diagram.Diagram, th styles.Theme) geometry {
	return geometry{
		kind:   d.Kind,
		radius: d.Config.Layout.WithDefaults().Radius,
		cell:   d.Config.WithDefaults().CellSize,
		theme:  th,
	}
}

// at returns the attributes that put an element's shape at (x, y).
func (g geometry) at(x, y float64) Attrs {
	if g.kind == alignment.KindTree {
		return Attrs{"cx": Num(x), "cy": Num(y)}
	}
	return Attrs{"x": Num(x - g.cell/2), "y": Num(y - g.cell/2)}
}

// labelAt returns the attributes that put a label at (x, y).
func (g geometry) labelAt(x, y float64) Attrs {
	return Attrs{"x": Num(x), "y": Num(y)}
}

func (g geometry) node(x, y float64, fill string, opacity float64) Shape {
	attrs := g.at(x, y).With(Attrs{
		"fill":         fill,
		"stroke":       g.theme.NodeStroke,
		"stroke-width": Num(edgeWidth),
		"opacity":      Num(opacity),
	})
	if g.kind == alignment.KindTree {
		attrs["r"] = Num(g.radius)
		return Shape{Kind: ShapeCircle, Attrs: attrs, Class: "node"}
	}
	attrs["width"], attrs["height"], attrs["rx"] = Num(g.cell), Num(g.cell), Num(3)
	return Shape{Kind: ShapeRect, Attrs: attrs, Class: "cell"}
}

func (g geometry) label(text string, x, y, opacity float64) Shape {
	size := g.cell
	if g.kind == alignment.KindTree {
		size = 2 * g.radius
	}
	return Shape{
		Kind: ShapeText,
		Text: text,
		Attrs: g.labelAt(x, y).With(Attrs{
			"fill":              g.theme.Text,
			"font-family":       g.theme.Font,
			"font-size":         Num(styles.FontSize(size, size, len(text))),
			"text-anchor":       "middle",
			"dominant-baseline": "central",
			"opacity":           Num(opacity),
		}),
		Class: "label",
	}
}

// edge draws a parent-child line for trees and an underline bar joining
// neighbouring cells for strings.
func (g geometry) edge(from, to diagram.Element, stroke string, width float64, dash string, opacity float64) Shape {
	var attrs Attrs
	if g.kind == alignment.KindTree {
		attrs = Attrs{"x1": Num(from.X), "y1": Num(from.Y), "x2": Num(to.X), "y2": Num(to.Y)}
	} else {
		y := from.Y + g.cell/2 + 4
		attrs = Attrs{"x1": Num(from.X), "y1": Num(y), "x2": Num(to.X), "y2": Num(y)}
	}
	attrs["stroke"] = stroke
	attrs["stroke-width"] = Num(width)
	attrs["opacity"] = Num(opacity)
	if dash != "" {
		attrs["stroke-dasharray"] = dash
	}
	return Shape{Kind: ShapeLine, Attrs: attrs, Class: "edge"}
}

// Mount draws the static diagram on h and returns the shape handles the
// animator needs. The output row is not drawn.
func Mount(h Host, d *diagram.Diagram, th styles.Theme) *Scene {
	g := newGeometry(d, th)
	f := d.Frame()
	s := &Scene{
		Nodes:  make(map[diagram.Role][]ShapeID),
		Labels: make(map[diagram.Role][]ShapeID),
		Edges:  make(map[diagram.Role][]ShapeID),
	}
	s.Canvas = h.Append(Shape{Kind: ShapeCanvas, Attrs: Attrs{
		"width": Num(d.Width), "height": Num(d.Height), "fill": th.Background,
	}})
	s.Frame = h.Append(Shape{Kind: ShapeRect, Class: "frame", Attrs: Attrs{
		"x": Num(f.X), "y": Num(f.Y), "width": Num(f.W), "height": Num(f.H), "rx": Num(6),
		"fill": "none", "stroke": th.Frame, "stroke-width": Num(edgeWidth),
	}})

	for _, row := range d.Rows {
		for _, e := range row.Edges {
			shape := g.edge(row.Elements[e.From], row.Elements[e.To], th.Edge, edgeWidth, "", 1)
			s.Edges[row.Role] = append(s.Edges[row.Role], h.Append(shape))
		}
		for _, el := range row.Elements {
			s.Nodes[row.Role] = append(s.Nodes[row.Role], h.Append(g.node(el.X, el.Y, th.Node, 1)))
		}
		for _, el := range row.Elements {
			s.Labels[row.Role] = append(s.Labels[row.Role], h.Append(g.label(el.Label, el.X, el.Y, 1)))
		}
	}
	return s
}
