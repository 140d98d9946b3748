package layout

// Point is a position in diagram coordinates (y grows downward).
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Sequence places length cells of width cellSize in a row separated by gap.
// Points are cell centers; the first cell's left edge sits at x = 0.
func Sequence(length int, cellSize, gap float64) []Point {
	if length <= 0 {
		return nil
	}
	pts := make([]Point, length)
	step := cellSize + gap
	for i := range pts {
		pts[i] = Point{X: float64(i)*step + cellSize/2}
	}
	return pts
}

// SequenceWidth returns the total width of a row produced by [Sequence].
func SequenceWidth(length int, cellSize, gap float64) float64 {
	if length <= 0 {
		return 0
	}
	return float64(length)*cellSize + float64(length-1)*gap
}

// Translate shifts every point by (dx, dy) in place and returns pts.
func Translate(pts []Point, dx, dy float64) []Point {
	for i := range pts {
		pts[i].X += dx
		pts[i].Y += dy
	}
	return pts
}
