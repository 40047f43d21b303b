package paper

import (
	"testing"

	"github.com/tsawler/pagecheck/model"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name        string
		w, h        float64
		wantName    string
		orientation model.Orientation
	}{
		{"A4 portrait", 210, 297, "A4", model.Portrait},
		{"A4 landscape", 297, 210, "A4", model.Landscape},
		{"A4 within tolerance", 209, 296, "A4", model.Portrait},
		{"A4 at tolerance boundary", 205, 302, "A4", model.Portrait},
		{"A4 from points", 595.276 * model.MillimetersPerPoint, 841.89 * model.MillimetersPerPoint, "A4", model.Portrait},
		{"Letter", 215.9, 279.4, "Letter", model.Portrait},
		{"Letter landscape", 279.4, 215.9, "Letter", model.Landscape},
		{"Legal", 215.9, 355.6, "Legal", model.Portrait},
		{"A3", 297, 420, "A3", model.Portrait},
		{"A5 landscape", 210, 148, "A5", model.Landscape},
		{"square counts as portrait", 100, 100, "Custom (100.0×100.0 mm)", model.Portrait},
		{"custom", 200, 290, "Custom (200.0×290.0 mm)", model.Portrait},
		{"custom landscape normalized", 290, 200, "Custom (200.0×290.0 mm)", model.Landscape},
		{"custom rounding", 123.456, 78.91, "Custom (78.9×123.5 mm)", model.Landscape},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.w, tt.h)
			if got.Name != tt.wantName {
				t.Errorf("Classify(%v, %v).Name = %q, want %q", tt.w, tt.h, got.Name, tt.wantName)
			}
			if got.Orientation != tt.orientation {
				t.Errorf("Classify(%v, %v).Orientation = %v, want %v", tt.w, tt.h, got.Orientation, tt.orientation)
			}
		})
	}
}

func TestToleranceBoundary(t *testing.T) {
	// exactly 5mm away on both axes matches; just past it does not
	if got := Name(215, 302); got != "A4" {
		t.Errorf("Name(215, 302) = %q, want A4", got)
	}
	if got := Name(204.9, 297); got == "A4" {
		t.Errorf("Name(204.9, 297) = %q, want non-A4", got)
	}
}

func TestNeighbouringSizes(t *testing.T) {
	// Letter and Legal share the short axis; the long axis decides.
	if got := Name(213, 281); got != "Letter" {
		t.Errorf("Name(213, 281) = %q, want Letter", got)
	}
	if got := Name(216, 356); got != "Legal" {
		t.Errorf("Name(216, 356) = %q, want Legal", got)
	}
	// A5's long side equals A4's short side.
	if got := Name(148, 210); got != "A5" {
		t.Errorf("Name(148, 210) = %q, want A5", got)
	}
}

func TestSizesIsCopy(t *testing.T) {
	s := Sizes()
	s[0].Name = "changed"
	if Sizes()[0].Name != "A4" {
		t.Error("Sizes() must return a copy")
	}
}
