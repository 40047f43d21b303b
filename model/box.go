package model

import (
	"fmt"
	"sort"
)

// BoxKind identifies one of the five standard page boxes.
type BoxKind int

const (
	// MediaBox is the boundary of the physical medium.
	MediaBox BoxKind = iota
	// CropBox is the visible region when displayed or printed.
	CropBox
	// BleedBox is the clipping region for production output.
	BleedBox
	// TrimBox is the intended finished page after trimming.
	TrimBox
	// ArtBox is the extent of meaningful content.
	ArtBox
)

var boxKindNames = [...]string{"MediaBox", "CropBox", "BleedBox", "TrimBox", "ArtBox"}

// AllBoxKinds returns the five box kinds in report order.
func AllBoxKinds() []BoxKind {
	return []BoxKind{MediaBox, CropBox, BleedBox, TrimBox, ArtBox}
}

// String returns the PDF key for the box (e.g. "MediaBox").
func (k BoxKind) String() string {
	if k < 0 || int(k) >= len(boxKindNames) {
		return fmt.Sprintf("BoxKind(%d)", int(k))
	}
	return boxKindNames[k]
}

// IsValid reports whether k is one of the five known kinds.
func (k BoxKind) IsValid() bool {
	return k >= MediaBox && k <= ArtBox
}

// MarshalText implements encoding.TextMarshaler so box kinds can key JSON maps.
func (k BoxKind) MarshalText() ([]byte, error) {
	if !k.IsValid() {
		return nil, fmt.Errorf("invalid box kind %d", int(k))
	}
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *BoxKind) UnmarshalText(b []byte) error {
	kind, err := ParseBoxKind(string(b))
	if err != nil {
		return err
	}
	*k = kind
	return nil
}

// ParseBoxKind maps a PDF key such as "TrimBox" to its BoxKind.
func ParseBoxKind(s string) (BoxKind, error) {
	for i, name := range boxKindNames {
		if name == s {
			return BoxKind(i), nil
		}
	}
	return 0, fmt.Errorf("unknown box kind %q", s)
}

// BoxSource records which data source produced a box.
type BoxSource int

const (
	// SourcePrimary means the box was read from the page dictionary.
	SourcePrimary BoxSource = iota
	// SourceFallback means the box was synthesized from the renderer's page rectangle.
	SourceFallback
)

// String returns "primary" or "fallback".
func (s BoxSource) String() string {
	if s == SourceFallback {
		return "fallback"
	}
	return "primary"
}

// MarshalText implements encoding.TextMarshaler.
func (s BoxSource) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *BoxSource) UnmarshalText(b []byte) error {
	switch string(b) {
	case "primary":
		*s = SourcePrimary
	case "fallback":
		*s = SourceFallback
	default:
		return fmt.Errorf("unknown box source %q", string(b))
	}
	return nil
}

// BoxRecord is one page box normalized to millimeters.
type BoxRecord struct {
	Kind      BoxKind   `json:"kind"`
	WidthMM   float64   `json:"width_mm"`
	HeightMM  float64   `json:"height_mm"`
	OriginXMM float64   `json:"origin_x_mm"`
	OriginYMM float64   `json:"origin_y_mm"`
	Raw       Rect      `json:"raw_points"`
	Source    BoxSource `json:"source"`
}

// NewBoxRecord builds a record from a point-space rectangle. Width and height
// are the absolute corner differences; the origin is the first corner.
func NewBoxRecord(kind BoxKind, raw Rect, source BoxSource) BoxRecord {
	return BoxRecord{
		Kind:      kind,
		WidthMM:   PointsToMM(raw.Width()),
		HeightMM:  PointsToMM(raw.Height()),
		OriginXMM: PointsToMM(raw.X1),
		OriginYMM: PointsToMM(raw.Y1),
		Raw:       raw,
		Source:    source,
	}
}

// BoxSet holds the boxes a page actually defines. Absent kinds have no entry.
type BoxSet map[BoxKind]BoxRecord

// Get returns the record for kind and whether it is present.
func (s BoxSet) Get(kind BoxKind) (BoxRecord, bool) {
	rec, ok := s[kind]
	return rec, ok
}

// Has reports whether the set contains kind.
func (s BoxSet) Has(kind BoxKind) bool {
	_, ok := s[kind]
	return ok
}

// Kinds returns the present kinds in report order.
func (s BoxSet) Kinds() []BoxKind {
	kinds := make([]BoxKind, 0, len(s))
	for k := range s {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

// Records returns the present records in report order.
func (s BoxSet) Records() []BoxRecord {
	kinds := s.Kinds()
	recs := make([]BoxRecord, len(kinds))
	for i, k := range kinds {
		recs[i] = s[k]
	}
	return recs
}
