package model

import "fmt"

// Orientation describes how a page is laid out.
type Orientation int

const (
	// Portrait means width <= height.
	Portrait Orientation = iota
	// Landscape means width > height.
	Landscape
)

// String returns "Portrait" or "Landscape".
func (o Orientation) String() string {
	if o == Landscape {
		return "Landscape"
	}
	return "Portrait"
}

// MarshalText implements encoding.TextMarshaler.
func (o Orientation) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (o *Orientation) UnmarshalText(b []byte) error {
	switch string(b) {
	case "Portrait":
		*o = Portrait
	case "Landscape":
		*o = Landscape
	default:
		return fmt.Errorf("unknown orientation %q", string(b))
	}
	return nil
}

// PaperFormat is a named paper size plus the orientation the page is laid out in.
type PaperFormat struct {
	Name        string      `json:"name"`
	Orientation Orientation `json:"orientation"`
}

// Key returns the identity used when comparing formats across pages,
// e.g. "A4 (Portrait)".
func (f PaperFormat) Key() string {
	return fmt.Sprintf("%s (%s)", f.Name, f.Orientation)
}

// String implements fmt.Stringer
func (f PaperFormat) String() string {
	return f.Key()
}

// ColorMode is the outcome of color classification for a page.
// The zero value is ColorUnknown.
type ColorMode int

const (
	// ColorUnknown means classification could not be performed.
	ColorUnknown ColorMode = iota
	// ColorColor means at least one rendered pixel carries significant color.
	ColorColor
	// ColorMonochrome means no rendered pixel exceeded the color threshold.
	ColorMonochrome
)

// String returns "Color", "Monochrome" or "Unknown".
func (c ColorMode) String() string {
	switch c {
	case ColorColor:
		return "Color"
	case ColorMonochrome:
		return "Monochrome"
	default:
		return "Unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (c ColorMode) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *ColorMode) UnmarshalText(b []byte) error {
	switch string(b) {
	case "Color":
		*c = ColorColor
	case "Monochrome":
		*c = ColorMonochrome
	case "Unknown":
		*c = ColorUnknown
	default:
		return fmt.Errorf("unknown color mode %q", string(b))
	}
	return nil
}

// PageReport holds everything learned about one page.
// It is built once during analysis and not modified afterwards.
type PageReport struct {
	Index       int               `json:"index"` // 0-based page index
	Boxes       BoxSet            `json:"boxes"`
	Format      *PaperFormat      `json:"format,omitempty"` // nil when no MediaBox was available
	Color       ColorMode         `json:"color"`
	Diagnostics []DiagnosticEvent `json:"diagnostics"`
}

// Number returns the 1-indexed page number used in reports.
func (p *PageReport) Number() int {
	return p.Index + 1
}

// MediaBox returns the page's MediaBox record, if any.
func (p *PageReport) MediaBox() (BoxRecord, bool) {
	return p.Boxes.Get(MediaBox)
}

// HasWarnings reports whether any diagnostic is a Warning or Error.
func (p *PageReport) HasWarnings() bool {
	for _, d := range p.Diagnostics {
		if d.Severity >= SeverityWarning {
			return true
		}
	}
	return false
}
