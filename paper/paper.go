// Package paper maps page dimensions to named paper formats.
package paper

import (
	"fmt"
	"math"

	"github.com/tsawler/pagecheck/model"
)

// Tolerance is the allowed difference per axis, in millimeters. A size
// exactly Tolerance away from a table entry still matches.
const Tolerance = 5.0

// Size is a standard paper size, short side first.
type Size struct {
	Name  string
	Short float64 // mm
	Long  float64 // mm
}

// sizes is checked in order; the first match wins.
var sizes = []Size{
	{Name: "A4", Short: 210, Long: 297},
	{Name: "Letter", Short: 216, Long: 279},
	{Name: "Legal", Short: 216, Long: 356},
	{Name: "A3", Short: 297, Long: 420},
	{Name: "A5", Short: 148, Long: 210},
}

// Sizes returns a copy of the standard size table in match order.
func Sizes() []Size {
	return append([]Size(nil), sizes...)
}

// Classify returns the paper format for a page of the given size in mm.
// It always returns a result; unknown sizes are named "Custom (S×L mm)".
func Classify(widthMM, heightMM float64) model.PaperFormat {
	return model.PaperFormat{
		Name:        Name(widthMM, heightMM),
		Orientation: OrientationOf(widthMM, heightMM),
	}
}

// OrientationOf returns Landscape when the page is wider than tall, as laid
// out, before any normalization.
func OrientationOf(widthMM, heightMM float64) model.Orientation {
	if widthMM > heightMM {
		return model.Landscape
	}
	return model.Portrait
}

// Name returns the standard size name for the normalized (short, long) pair.
func Name(widthMM, heightMM float64) string {
	short, long := math.Min(widthMM, heightMM), math.Max(widthMM, heightMM)

	for _, s := range sizes {
		if math.Abs(short-s.Short) <= Tolerance && math.Abs(long-s.Long) <= Tolerance {
			return s.Name
		}
	}

	return fmt.Sprintf("Custom (%.1f×%.1f mm)", short, long)
}
