package animate

import (
	"maps"
	"strconv"
	"time"
)

// ShapeID identifies a shape appended to a host.
type ShapeID int

// ShapeKind is the primitive a shape draws.
type ShapeKind int

const (
	// ShapeCanvas is the drawing surface itself (width, height).
	ShapeCanvas ShapeKind = iota
	ShapeRect
	ShapeCircle
	ShapeLine
	ShapeText
)

var shapeKindNames = [...]string{"canvas", "rect", "circle", "line", "text"}

func (k ShapeKind) String() string {
	if int(k) < len(shapeKindNames) {
		return shapeKindNames[k]
	}
	return "shape"
}

// MarshalText implements encoding.TextMarshaler.
func (k ShapeKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// Attrs are SVG presentation attributes.
type Attrs map[string]string

// Clone returns a copy of a.
func (a Attrs) Clone() Attrs { return maps.Clone(a) }

// With returns a copy of a with o applied on top.
func (a Attrs) With(o Attrs) Attrs {
	c := make(Attrs, len(a)+len(o))
	maps.Copy(c, a)
	maps.Copy(c, o)
	return c
}

// Num formats a coordinate or length.
func Num(v float64) string { return strconv.FormatFloat(v, 'f', 2, 64) }

// Shape is one drawable primitive.
type Shape struct {
	Kind  ShapeKind `json:"kind"`
	Attrs Attrs     `json:"attrs"`
	Text  string    `json:"text,omitempty"`
	Class string    `json:"class,omitempty"`
}

// Transition animates a shape's attributes to new values.
type Transition struct {
	ID       ShapeID       `json:"id"`
	To       Attrs         `json:"to"`
	Delay    time.Duration `json:"delay"`
	Duration time.Duration `json:"duration"`
	Easing   Easing        `json:"easing"`
}

// Host owns the drawing surface.
type Host interface {
	// Append adds a shape on top of everything drawn so far.
	Append(s Shape) ShapeID
	// Transition starts t and returns a channel that is closed when it ends.
	Transition(t Transition) <-chan struct{}
	// Remove deletes a shape.
	Remove(id ShapeID)
	// SetInteractive enables or disables user input on the surface.
	SetInteractive(on bool)
}

// Clock abstracts time for pauses.
type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
}

// SystemClock is the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time                         { return time.Now() }
func (SystemClock) After(d time.Duration) <-chan time.Time { return time.After(d) }
