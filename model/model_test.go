package model

import (
	"encoding/json"
	"math"
	"testing"
)

// ============================================================================
// Geometry Tests
// ============================================================================

func TestRectDimensions(t *testing.T) {
	tests := []struct {
		name          string
		rect          Rect
		width, height float64
	}{
		{"normal", NewRect(0, 0, 612, 792), 612, 792},
		{"offset", NewRect(10, 20, 110, 70), 100, 50},
		{"reversed", NewRect(612, 792, 0, 0), 612, 792},
		{"negative coords", NewRect(-10, -10, 10, 30), 20, 40},
		{"degenerate", NewRect(5, 5, 5, 5), 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.rect.Width(); got != tt.width {
				t.Errorf("Width() = %v, want %v", got, tt.width)
			}
			if got := tt.rect.Height(); got != tt.height {
				t.Errorf("Height() = %v, want %v", got, tt.height)
			}
		})
	}
}

func TestNewBoxRecord(t *testing.T) {
	raw := NewRect(36, 72, 631, 914)
	rec := NewBoxRecord(TrimBox, raw, SourcePrimary)

	if math.Abs(rec.WidthMM-595*MillimetersPerPoint) > 1e-9 {
		t.Errorf("WidthMM = %v, want %v", rec.WidthMM, 595*MillimetersPerPoint)
	}
	if math.Abs(rec.HeightMM-842*MillimetersPerPoint) > 1e-9 {
		t.Errorf("HeightMM = %v, want %v", rec.HeightMM, 842*MillimetersPerPoint)
	}
	if math.Abs(rec.OriginXMM-36*MillimetersPerPoint) > 1e-9 {
		t.Errorf("OriginXMM = %v", rec.OriginXMM)
	}
	if math.Abs(rec.OriginYMM-72*MillimetersPerPoint) > 1e-9 {
		t.Errorf("OriginYMM = %v", rec.OriginYMM)
	}
	if rec.Raw != raw {
		t.Errorf("Raw = %+v, want %+v", rec.Raw, raw)
	}
}

// ============================================================================
// BoxSet Tests
// ============================================================================

func TestBoxSetKindsOrdered(t *testing.T) {
	set := BoxSet{
		ArtBox:   NewBoxRecord(ArtBox, NewRect(0, 0, 1, 1), SourcePrimary),
		MediaBox: NewBoxRecord(MediaBox, NewRect(0, 0, 1, 1), SourcePrimary),
		TrimBox:  NewBoxRecord(TrimBox, NewRect(0, 0, 1, 1), SourcePrimary),
	}

	kinds := set.Kinds()
	want := []BoxKind{MediaBox, TrimBox, ArtBox}
	if len(kinds) != len(want) {
		t.Fatalf("Kinds() len = %d, want %d", len(kinds), len(want))
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Errorf("Kinds()[%d] = %v, want %v", i, kinds[i], want[i])
		}
	}

	if set.Has(CropBox) {
		t.Error("expected CropBox to be absent")
	}
	if _, ok := set.Get(MediaBox); !ok {
		t.Error("expected MediaBox to be present")
	}
}

func TestBoxKindText(t *testing.T) {
	for _, k := range AllBoxKinds() {
		b, err := k.MarshalText()
		if err != nil {
			t.Fatalf("MarshalText(%v) error: %v", k, err)
		}
		var back BoxKind
		if err := back.UnmarshalText(b); err != nil {
			t.Fatalf("UnmarshalText(%s) error: %v", b, err)
		}
		if back != k {
			t.Errorf("round trip %v -> %s -> %v", k, b, back)
		}
	}

	if _, err := BoxKind(42).MarshalText(); err == nil {
		t.Error("expected error for invalid kind")
	}
	if _, err := ParseBoxKind("BogusBox"); err == nil {
		t.Error("expected error for unknown name")
	}
}

// ============================================================================
// Report Tests
// ============================================================================

func TestPaperFormatKey(t *testing.T) {
	f := PaperFormat{Name: "A4", Orientation: Landscape}
	if f.Key() != "A4 (Landscape)" {
		t.Errorf("Key() = %q, want %q", f.Key(), "A4 (Landscape)")
	}
}

func TestColorModeZeroValueIsUnknown(t *testing.T) {
	var c ColorMode
	if c != ColorUnknown {
		t.Errorf("zero ColorMode = %v, want Unknown", c)
	}
}

func TestDocumentReportJSON(t *testing.T) {
	doc := &DocumentReport{
		Filename:  "sample.pdf",
		PageCount: 1,
		Pages: []*PageReport{{
			Index: 0,
			Boxes: BoxSet{
				MediaBox: NewBoxRecord(MediaBox, NewRect(0, 0, 595, 842), SourceFallback),
			},
			Format:      &PaperFormat{Name: "A4", Orientation: Portrait},
			Color:       ColorMonochrome,
			Diagnostics: []DiagnosticEvent{Infof("began analyzing page %d", 1)},
		}},
		MixedColorAlert: true,
	}

	data, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("Marshal error: %v", err)
	}

	var back DocumentReport
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal error: %v", err)
	}

	page := back.GetPage(1)
	if page == nil {
		t.Fatal("expected page 1")
	}
	rec, ok := page.MediaBox()
	if !ok {
		t.Fatal("expected MediaBox after round trip")
	}
	if rec.Source != SourceFallback {
		t.Errorf("Source = %v, want fallback", rec.Source)
	}
	if page.Color != ColorMonochrome {
		t.Errorf("Color = %v, want Monochrome", page.Color)
	}
	if page.Format == nil || page.Format.Key() != "A4 (Portrait)" {
		t.Errorf("Format = %v", page.Format)
	}
	if !back.MixedColorAlert {
		t.Error("expected MixedColorAlert to survive round trip")
	}
}

func TestDocumentReportFormats(t *testing.T) {
	a4 := &PaperFormat{Name: "A4", Orientation: Portrait}
	letter := &PaperFormat{Name: "Letter", Orientation: Portrait}
	doc := &DocumentReport{Pages: []*PageReport{
		{Index: 0, Format: a4, Color: ColorColor},
		{Index: 1, Format: nil, Color: ColorUnknown},
		{Index: 2, Format: letter, Color: ColorMonochrome},
		{Index: 3, Format: a4, Color: ColorColor},
	}}

	formats := doc.Formats()
	if len(formats) != 2 || formats[0] != "A4 (Portrait)" || formats[1] != "Letter (Portrait)" {
		t.Errorf("Formats() = %v", formats)
	}
	if n := doc.CountColor(ColorColor); n != 2 {
		t.Errorf("CountColor(Color) = %d, want 2", n)
	}
	if doc.GetPage(5) != nil {
		t.Error("expected nil for missing page")
	}
}

func TestDiagnosticString(t *testing.T) {
	d := Warningf("failed to read %s on page %d", CropBox, 3)
	if d.String() != "WARNING: failed to read CropBox on page 3" {
		t.Errorf("String() = %q", d.String())
	}
}
