package model

import "math"

// MillimetersPerPoint converts PDF points (1/72 inch) to millimeters.
const MillimetersPerPoint = 0.352778

// PointsToMM converts a length in points to millimeters.
func PointsToMM(pt float64) float64 {
	return pt * MillimetersPerPoint
}

// Rect is a page rectangle in PDF point space, kept exactly as the page
// description stores it: the corners are not reordered.
type Rect struct {
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
	X2 float64 `json:"x2"`
	Y2 float64 `json:"y2"`
}

// NewRect creates a rectangle from two corner points
func NewRect(x1, y1, x2, y2 float64) Rect {
	return Rect{X1: x1, Y1: y1, X2: x2, Y2: y2}
}

// Width returns the absolute horizontal extent in points
func (r Rect) Width() float64 {
	return math.Abs(r.X2 - r.X1)
}

// Height returns the absolute vertical extent in points
func (r Rect) Height() float64 {
	return math.Abs(r.Y2 - r.Y1)
}

// IsEmpty returns true if the rectangle has zero area
func (r Rect) IsEmpty() bool {
	return r.Width() == 0 || r.Height() == 0
}

// Array returns the rectangle as a PDF-style [x1 y1 x2 y2] array.
func (r Rect) Array() [4]float64 {
	return [4]float64{r.X1, r.Y1, r.X2, r.Y2}
}
